package commands

import (
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRunMigrations_Rejected(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	tests := []struct {
		name       string
		driver     string
		dsn        string
		wantSubstr string
	}{
		{"MySQLNotSupported", "mysql", "mysql://localhost/p2p", `unsupported driver "mysql"`},
		{"EmptyDriver", "", "postgres://localhost/p2p", `unsupported driver ""`},
		{"MalformedDSN", "postgres", "not a url", "failed to create migrate instance"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := RunMigrations(logger, tt.driver, tt.dsn)
			assert.ErrorContains(t, err, tt.wantSubstr)
		})
	}
}

func TestMigrationSources(t *testing.T) {
	assert.Equal(t, map[string]string{"postgres": "file://migrations/postgresql"}, migrationSources)
}
