package utils

// Result struct can be used for passing data on channels together with the
// error, if any, that produced it.
type Result[T any] struct {
	Data T
	Err  error
}

// Ok wraps a value in a successful Result.
func Ok[T any](data T) Result[T] {
	return Result[T]{Data: data}
}

// Failure wraps an error in a failed Result.
func Failure[T any](err error) Result[T] {
	return Result[T]{Err: err}
}
