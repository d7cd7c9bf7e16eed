// Package db opens the optional Postgres connection that backs the review
// history and applies the embedded schema migrations.
package db

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/jmoiron/sqlx"

	// import db drivers
	_ "github.com/lib/pq"

	"github.com/sevigo/review-bot/internal/config"
)

// MigrationsTable records the applied schema version.
const MigrationsTable = "review_bot_migrations"

const pingTimeout = 5 * time.Second

//go:embed migrations/*.sql
var migrationsFS embed.FS

var (
	// ErrDisabled is returned when the review history database is switched off.
	ErrDisabled = errors.New("database is disabled")
	// ErrDirtySchema means an earlier migration stopped halfway.
	ErrDirtySchema = errors.New("database schema is dirty")
)

// DSN builds a lib/pq connection string from cfg.
func DSN(cfg *config.DBConfig) string {
	sslmode := cfg.SSLMode
	if sslmode == "" {
		sslmode = "disable"
	}
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		cfg.Host, cfg.Port, cfg.Username, cfg.Password, cfg.Database, sslmode)
}

// DB is the review history connection pool.
type DB struct {
	*sqlx.DB
	logger *slog.Logger
}

// NewDatabase connects to Postgres and brings the schema up to date. The
// returned func closes the pool and is safe to call on error.
func NewDatabase(ctx context.Context, cfg *config.DBConfig, logger *slog.Logger) (*DB, func(), error) {
	noop := func() {}
	if cfg == nil || !cfg.Enabled {
		return nil, noop, ErrDisabled
	}

	pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()

	conn, err := sqlx.ConnectContext(pingCtx, "postgres", DSN(cfg))
	if err != nil {
		return nil, noop, fmt.Errorf("failed to connect to database %q on %s: %w", cfg.Database, cfg.Host, err)
	}
	conn.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	conn.SetConnMaxIdleTime(cfg.ConnMaxIdleTime)

	db := &DB{DB: conn, logger: logger.With("component", "db", "database", cfg.Database)}
	closeFn := func() {
		if err := conn.Close(); err != nil {
			db.logger.Error("failed to close database connection", "error", err)
		}
	}

	version, err := db.Migrate()
	if err != nil {
		closeFn()
		return nil, noop, err
	}
	db.logger.Info("review history schema ready", "version", version)

	return db, closeFn, nil
}

// Migrate applies pending migrations and returns the resulting schema version.
// A dirty schema is reported, never forced.
func (db *DB) Migrate() (uint, error) {
	migrator, err := db.newMigrator()
	if err != nil {
		return 0, err
	}

	_, dirty, err := migrator.Version()
	if err != nil && !errors.Is(err, migrate.ErrNilVersion) {
		return 0, fmt.Errorf("failed to read schema version: %w", err)
	}
	if dirty {
		return 0, fmt.Errorf("%w: fix it with 'migrate force <version>' against table %s", ErrDirtySchema, MigrationsTable)
	}

	if err := migrator.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return 0, fmt.Errorf("failed to apply migrations: %w", err)
	}

	version, _, err := migrator.Version()
	if err != nil {
		return 0, fmt.Errorf("failed to read schema version: %w", err)
	}
	return version, nil
}

func (db *DB) newMigrator() (*migrate.Migrate, error) {
	source, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return nil, fmt.Errorf("failed to open embedded migrations: %w", err)
	}

	driver, err := postgres.WithInstance(db.DB.DB, &postgres.Config{MigrationsTable: MigrationsTable})
	if err != nil {
		return nil, fmt.Errorf("failed to create migration driver: %w", err)
	}

	migrator, err := migrate.NewWithInstance("iofs", source, "postgres", driver)
	if err != nil {
		return nil, fmt.Errorf("failed to create migrator: %w", err)
	}
	return migrator, nil
}
