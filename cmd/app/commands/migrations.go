package commands

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
)

// migrationSources maps a DB_DRIVER value to its migration files.
var migrationSources = map[string]string{
	"postgres": "file://migrations/postgresql",
}

// RunMigrations applies every pending migration for driver. Nothing to apply
// is not an error.
func RunMigrations(logger *slog.Logger, driver, connectionString string) error {
	source, ok := migrationSources[driver]
	if !ok {
		return fmt.Errorf("failed to create migrate instance: unsupported driver %q", driver)
	}

	logger.Info("running database migrations", slog.String("driver", driver), slog.String("source", source))

	m, err := migrate.New(source, connectionString)
	if err != nil {
		return fmt.Errorf("failed to create migrate instance: %w", err)
	}
	defer closeMigrate(m, logger)

	err = m.Up()
	switch {
	case errors.Is(err, migrate.ErrNoChange):
		logger.Info("schema already up to date")
	case err != nil:
		return fmt.Errorf("failed to run migrations: %w", err)
	default:
		version, dirty, _ := m.Version()
		logger.Info("migrations applied", slog.Uint64("version", uint64(version)), slog.Bool("dirty", dirty))
	}
	return nil
}
