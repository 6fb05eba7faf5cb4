package main

import (
	"errors"
	"fmt"
	"os"

	"docbench/internal/cli"
	"docbench/internal/domain"
)

func main() {
	if err := cli.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(exitCode(err))
	}
}

// exitCode separates bad input from configuration and output failures.
func exitCode(err error) int {
	switch {
	case domain.IsInputError(err):
		return 2
	case errors.Is(err, cli.ErrConfig):
		return 3
	default:
		return 1
	}
}
