package main

import "github.com/devbush/compliancecheck/internal/adapters/cli"

func main() {
	cli.Execute()
}
