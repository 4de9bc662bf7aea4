package testutil

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPostgresDSN(t *testing.T) {
	t.Setenv("TEST_POSTGRES_DSN", "")
	assert.Equal(t, defaultPostgresTestDSN, PostgresDSN())

	t.Setenv("TEST_POSTGRES_DSN", "postgres://ci@db:5432/p2p")
	assert.Equal(t, "postgres://ci@db:5432/p2p", PostgresDSN())
}

func TestMigrationsDir(t *testing.T) {
	dir, err := migrationsDir()
	require.NoError(t, err)

	assert.FileExists(t, filepath.Join(dir, "000001_create_p2p_transaction_table.up.sql"))
	assert.FileExists(t, filepath.Join(dir, "000002_create_outbox_events_table.up.sql"))
}

func TestMigrationsDir_OutsideModule(t *testing.T) {
	wd, err := os.Getwd()
	require.NoError(t, err)
	t.Cleanup(func() { _ = os.Chdir(wd) })

	require.NoError(t, os.Chdir(t.TempDir()))

	_, err = migrationsDir()
	assert.Error(t, err)
}

func TestNewPostgresDB(t *testing.T) {
	db := NewPostgresDB(t)

	first := InsertTransaction(t, db, 1, 2, "17.50", "created")
	assert.Equal(t, int64(1), first)

	Truncate(t, db)

	var count int
	require.NoError(t, db.QueryRow("SELECT COUNT(*) FROM "+TestSchema+".p2p_transaction").Scan(&count))
	assert.Zero(t, count)
	assert.Equal(t, int64(1), InsertTransaction(t, db, 3, 4, "1", "done"))
}
