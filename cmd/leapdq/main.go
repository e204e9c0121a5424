// Package main provides the leapdq command-line tool.
package main

import (
	"os"

	"github.com/leapstack-labs/leapdq/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
