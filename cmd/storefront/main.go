package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/roach88/storefront/internal/cli"
)

func main() {
	err := cli.NewRootCommand().Execute()
	if err == nil {
		return
	}

	// Command failures were already reported on stdout; anything else is a
	// usage error from flag or argument parsing.
	var exitErr *cli.ExitError
	if !errors.As(err, &exitErr) {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(cli.ExitCommandError)
	}
	if exitErr.Err == nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", exitErr.Message)
	}
	os.Exit(exitErr.Code)
}
