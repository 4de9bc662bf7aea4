package main

import (
	"fmt"
	"slices"

	"github.com/urfave/cli/v3"
)

func getCommands(version string) []*cli.Command {
	return slices.Concat(
		getSystemCommands(version),
		getFunctionCommands(),
		getDataCommands(),
	)
}

// outputFormatFlag selects text or json output for reporting commands.
func outputFormatFlag() cli.Flag {
	return &cli.StringFlag{
		Name:    "format",
		Aliases: []string{"f"},
		Value:   "text",
		Usage:   "Output format: 'text' or 'json'",
		Validator: func(format string) error {
			if format != "text" && format != "json" {
				return fmt.Errorf("unsupported format %q", format)
			}
			return nil
		},
	}
}
