package clients

import (
	"context"
	"errors"
	"regexp"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/lambda"
	lambdaTypes "github.com/aws/aws-sdk-go-v2/service/lambda/types"
	"github.com/aws/smithy-go"
	cmap "github.com/orcaman/concurrent-map/v2"

	coreTypes "sg-audit/pkg/core/types"
)

var lambdaEniPattern = regexp.MustCompile("AWS Lambda VPC ENI-(?P<fnName>.+)-([a-z]|[0-9]){8}-(([a-z]|[0-9]){4}-){3}([a-z]|[0-9]){12}")

type AwsLambdaClient struct {
	client *lambda.Client
	cache  cmap.ConcurrentMap[string, *coreTypes.InterfaceOwner]
}

func NewAwsLambdaClient(cfg aws.Config) *AwsLambdaClient {
	return &AwsLambdaClient{
		client: lambda.NewFromConfig(cfg),
		cache:  cmap.New[*coreTypes.InterfaceOwner](),
	}
}

// Resolve returns the Lambda function owning the network interface, detected
// from the description of Lambda VPC ENIs. If the interface is not managed by
// Lambda, the returned value is nil.
func (c *AwsLambdaClient) Resolve(ctx context.Context, eni coreTypes.NetworkInterface) (*coreTypes.InterfaceOwner, error) {
	if eni.Type != "lambda" {
		return nil, nil
	}

	match := lambdaEniPattern.FindStringSubmatch(eni.Description)
	if len(match) == 0 {
		return nil, nil
	}
	fnName := match[lambdaEniPattern.SubexpIndex("fnName")]

	if cachedOwner, ok := c.cache.Get(fnName); ok {
		return cachedOwner, nil
	}

	fnConfig, err := c.getLambdaFunctionConfigByName(ctx, fnName)
	if err != nil {
		return nil, err
	}

	owner := &coreTypes.InterfaceOwner{
		Kind: "lambda",
		Name: fnName,
	}
	if fnConfig != nil {
		owner.Arn = fnConfig.FunctionArn
	} else {
		// The function was deleted; AWS removes its ENIs with a delay.
		owner.IsRemoved = true
	}

	c.cache.Set(fnName, owner)
	return owner, nil
}

// Get the configuration for a Lambda function. If the function does not exist, the returned value will be nil
func (c *AwsLambdaClient) getLambdaFunctionConfigByName(ctx context.Context, fnName string) (*lambdaTypes.FunctionConfiguration, error) {
	function, err := c.client.GetFunction(ctx, &lambda.GetFunctionInput{FunctionName: &fnName})
	if err != nil {
		// A missing function is expected, not an error to surface
		var apiErr smithy.APIError
		if errors.As(err, &apiErr) {
			var resourceNotFoundException *lambdaTypes.ResourceNotFoundException
			if errors.As(apiErr, &resourceNotFoundException) {
				return nil, nil
			}
		}
		return nil, err
	}

	return function.Configuration, nil
}
