package commands

import (
	"context"
	"fmt"
	"io"
	"log/slog"
)

// TransactionImporter inserts transactions read from a CSV stream.
type TransactionImporter interface {
	Import(ctx context.Context, r io.Reader) (int, error)
}

// ObjectOpener opens stored objects by key.
type ObjectOpener interface {
	Open(ctx context.Context, key string) (io.ReadCloser, error)
}

// RunImportTransactions loads the CSV object at key into the transactions table.
// All rows are inserted in one transaction.
func RunImportTransactions(
	ctx context.Context,
	importer TransactionImporter,
	bucket ObjectOpener,
	logger *slog.Logger,
	out io.Writer,
	key string,
	format string,
) error {
	if key == "" {
		return fmt.Errorf("key is required")
	}

	logger.Info("importing transactions", slog.String("key", key))

	reader, err := bucket.Open(ctx, key)
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", key, err)
	}
	defer func() {
		_ = reader.Close()
	}()

	count, err := importer.Import(ctx, reader)
	if err != nil {
		return fmt.Errorf("failed to import transactions: %w", err)
	}

	if format == "json" {
		if err := writeJSON(out, map[string]any{"key": key, "imported": count}); err != nil {
			return err
		}
	} else {
		_, _ = fmt.Fprintf(out, "Successfully imported %d transaction(s) from %s\n", count, key)
	}

	logger.Info("import completed", slog.String("key", key), slog.Int("count", count))
	return nil
}
