package db

import (
	"io"
	"io/fs"
	"log/slog"
	"testing"

	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sevigo/review-bot/internal/config"
)

func TestDSN(t *testing.T) {
	dsn := DSN(&config.DBConfig{Host: "db", Port: 5433, Username: "u", Password: "p", Database: "reviews"})
	assert.Equal(t, "host=db port=5433 user=u password=p dbname=reviews sslmode=disable", dsn)

	dsn = DSN(&config.DBConfig{Host: "db", Port: 5432, Username: "u", Password: "p", Database: "reviews", SSLMode: "require"})
	assert.Equal(t, "host=db port=5432 user=u password=p dbname=reviews sslmode=require", dsn)
}

func TestNewDatabase_Disabled(t *testing.T) {
	db, cleanup, err := NewDatabase(t.Context(), &config.DBConfig{Enabled: false}, slog.New(slog.NewTextHandler(io.Discard, nil)))
	assert.ErrorIs(t, err, ErrDisabled)
	assert.Nil(t, db)
	require.NotNil(t, cleanup)
	cleanup()
}

func TestEmbeddedMigrations(t *testing.T) {
	entries, err := fs.ReadDir(migrationsFS, "migrations")
	require.NoError(t, err)
	assert.Len(t, entries, 2)

	src, err := iofs.New(migrationsFS, "migrations")
	require.NoError(t, err)
	defer src.Close()

	first, err := src.First()
	require.NoError(t, err)
	assert.Equal(t, uint(1), first)
}
