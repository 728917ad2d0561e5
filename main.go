package main

import "sg-audit/cmd"

func main() {
	cmd.Execute()
}
