package main

import (
	"context"
	"fmt"
	"os"

	"github.com/urfave/cli/v3"

	"github.com/DavidCuy/p2p-solution-sls-backend/cmd/app/commands"
	"github.com/DavidCuy/p2p-solution-sls-backend/internal/app"
	"github.com/DavidCuy/p2p-solution-sls-backend/internal/config"
)

func getFunctionCommands() []*cli.Command {
	return []*cli.Command{
		{
			Name:  "lambda",
			Usage: "Start a handler under the AWS Lambda runtime",
			Flags: []cli.Flag{
				&cli.StringFlag{
					Name:    "handler",
					Aliases: []string{"n"},
					Usage:   "Handler name (defaults to LAMBDA_HANDLER, then AWS_LAMBDA_FUNCTION_NAME)",
				},
			},
			Action: func(ctx context.Context, cmd *cli.Command) error {
				return commands.RunLambda(ctx, cmd.String("handler"))
			},
		},
		{
			Name:  "invoke",
			Usage: "Run a handler once with an event read from a file or stdin",
			Flags: []cli.Flag{
				&cli.StringFlag{
					Name:     "handler",
					Aliases:  []string{"n"},
					Required: true,
					Usage:    "Handler name (e.g. request-p2p-transaction)",
				},
				&cli.StringFlag{
					Name:    "event",
					Aliases: []string{"e"},
					Usage:   "Path of the JSON event (omit to read stdin)",
				},
			},
			Action: func(ctx context.Context, cmd *cli.Command) error {
				cfg := config.Load()
				container := app.NewContainer(cfg)
				defer func() { _ = container.Shutdown(ctx) }()

				registry, err := container.LambdaRegistry()
				if err != nil {
					return fmt.Errorf("failed to initialize lambda handlers: %w", err)
				}

				in := cmd.Root().Reader
				if path := cmd.String("event"); path != "" {
					file, err := os.Open(path) //nolint:gosec // path is an operator supplied flag
					if err != nil {
						return fmt.Errorf("failed to open event: %w", err)
					}
					defer func() { _ = file.Close() }()
					in = file
				}

				return commands.RunInvoke(ctx, registry, cmd.String("handler"), in, cmd.Root().Writer)
			},
		},
		{
			Name:  "consume",
			Usage: "Process queue messages from QUEUE_SUBSCRIPTION_URL outside Lambda",
			Action: func(ctx context.Context, cmd *cli.Command) error {
				return commands.RunConsume(ctx)
			},
		},
		{
			Name:  "outbox-relay",
			Usage: "Relay pending outbox events to OUTBOX_TARGET_DRIVER",
			Action: func(ctx context.Context, cmd *cli.Command) error {
				return commands.RunOutboxRelay(ctx)
			},
		},
	}
}
