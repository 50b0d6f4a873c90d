package cmd

import (
	"context"
	"fmt"
	"strings"
)

const usage = `llm-playground is the backend gateway for the multi-modal chat playground.

Usage:
  llm-playground serve [flags]

Commands:
  serve    Start the HTTP server
  version  Print the version

Flags:
  -h, --help  Show this help message`

const version = "1.0.0"

// Execute runs the CLI dispatcher with the provided arguments.
func Execute(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return printUsage()
	}

	switch args[0] {
	case "serve":
		return serve(ctx, args[1:])
	case "help", "-h", "--help":
		return printUsage()
	case "version", "--version":
		fmt.Println(version)
		return nil
	default:
		return fmt.Errorf("unknown command %q\n\n%s", args[0], usage)
	}
}

func printUsage() error {
	fmt.Println(strings.TrimSpace(usage))
	return nil
}
