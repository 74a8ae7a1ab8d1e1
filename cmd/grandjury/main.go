package main

import (
	"github.com/grandjury/grandjury-go/pkg/cli"
)

func main() {
	cli.Execute()
}
