package main

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"

	"github.com/DavidCuy/p2p-solution-sls-backend/cmd/app/commands"
	"github.com/DavidCuy/p2p-solution-sls-backend/internal/app"
	"github.com/DavidCuy/p2p-solution-sls-backend/internal/config"
	"github.com/DavidCuy/p2p-solution-sls-backend/internal/storage"
)

func getDataCommands() []*cli.Command {
	return []*cli.Command{
		{
			Name:  "import-transactions",
			Usage: "Import transactions from a CSV object (source_id,dest_id,amount[,status])",
			Flags: []cli.Flag{
				&cli.StringFlag{
					Name:     "bucket-url",
					Aliases:  []string{"b"},
					Required: true,
					Usage:    "Bucket URL (e.g. s3://my-bucket?region=us-east-1 or file:///tmp/imports)",
				},
				&cli.StringFlag{
					Name:     "key",
					Aliases:  []string{"k"},
					Required: true,
					Usage:    "Object key of the CSV file",
				},
				outputFormatFlag(),
			},
			Action: func(ctx context.Context, cmd *cli.Command) error {
				cfg := config.Load()
				container := app.NewContainer(cfg)
				defer func() { _ = container.Shutdown(ctx) }()

				useCase, err := container.TransactionUseCase()
				if err != nil {
					return fmt.Errorf("failed to initialize transaction use case: %w", err)
				}

				bucket, err := storage.OpenBucket(ctx, cmd.String("bucket-url"))
				if err != nil {
					return err
				}
				defer func() { _ = bucket.Close() }()

				return commands.RunImportTransactions(
					ctx,
					useCase,
					bucket,
					container.Logger(),
					cmd.Root().Writer,
					cmd.String("key"),
					cmd.String("format"),
				)
			},
		},
	}
}
