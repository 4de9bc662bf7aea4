package main

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"

	"github.com/DavidCuy/p2p-solution-sls-backend/cmd/app/commands"
	"github.com/DavidCuy/p2p-solution-sls-backend/internal/app"
	"github.com/DavidCuy/p2p-solution-sls-backend/internal/config"
)

func getSystemCommands(version string) []*cli.Command {
	return []*cli.Command{
		{
			Name:  "server",
			Usage: "Start the HTTP API server",
			Action: func(ctx context.Context, cmd *cli.Command) error {
				return commands.RunServer(ctx, version)
			},
		},
		{
			Name:  "migrate",
			Usage: "Run database migrations",
			Action: func(ctx context.Context, cmd *cli.Command) error {
				cfg := config.Load()
				container := app.NewContainer(cfg)
				defer func() { _ = container.Shutdown(ctx) }()

				connectionString, err := container.DatabaseURL(ctx)
				if err != nil {
					return err
				}
				return commands.RunMigrations(container.Logger(), cfg.DBDriver, connectionString)
			},
		},
		{
			Name:  "validate-models",
			Usage: "Check every persisted model against its database table",
			Flags: []cli.Flag{
				&cli.StringSliceFlag{
					Name:    "exclude",
					Aliases: []string{"e"},
					Usage:   "Model names to skip",
				},
				outputFormatFlag(),
			},
			Action: func(ctx context.Context, cmd *cli.Command) error {
				cfg := config.Load()
				container := app.NewContainer(cfg)
				defer func() { _ = container.Shutdown(ctx) }()

				validator, err := container.SchemaValidator(cmd.StringSlice("exclude")...)
				if err != nil {
					return fmt.Errorf("failed to initialize model validator: %w", err)
				}

				return commands.RunValidateModels(
					ctx,
					validator,
					container.Logger(),
					cmd.Root().Writer,
					cmd.String("format"),
				)
			},
		},
	}
}
