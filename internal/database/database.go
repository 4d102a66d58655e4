package database

import (
	"context"
	"embed"
	"fmt"
	"time"

	_ "github.com/go-sql-driver/mysql"
	"github.com/jmoiron/sqlx"
	"github.com/pressly/goose/v3"
	"go.uber.org/zap"
)

//go:embed migrations/*.sql
var migrations embed.FS

// Config describes the connection pool.
type Config struct {
	DSN             string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

// OpenDB opens the MySQL pool and verifies it with a ping.
func OpenDB(config Config, logger *zap.Logger) (*sqlx.DB, error) {
	db, err := sqlx.Open("mysql", config.DSN)
	if err != nil {
		return nil, fmt.Errorf("could not open mysql: %w", err)
	}

	db.SetMaxOpenConns(config.MaxOpenConns)
	db.SetMaxIdleConns(config.MaxIdleConns)
	db.SetConnMaxLifetime(config.ConnMaxLifetime)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("could not ping mysql: %w", err)
	}

	logger.Info("MySQL connection pool established",
		zap.Int("max_open_conns", config.MaxOpenConns),
		zap.Int("max_idle_conns", config.MaxIdleConns),
		zap.Duration("conn_max_lifetime", config.ConnMaxLifetime),
	)

	return db, nil
}

// Migrate applies every pending embedded migration.
func Migrate(db *sqlx.DB, logger *zap.Logger) error {
	return RunMigrations(db, "up", logger)
}

// RunMigrations runs one goose command ("up", "down", "status", "version",
// "redo" or "reset") against the embedded migrations.
func RunMigrations(db *sqlx.DB, command string, logger *zap.Logger) error {
	goose.SetBaseFS(migrations)
	defer goose.SetBaseFS(nil)

	if err := goose.SetDialect("mysql"); err != nil {
		return fmt.Errorf("goose: failed to set dialect: %w", err)
	}

	logger.Info("Running database migrations", zap.String("command", command))
	if err := goose.RunContext(context.Background(), command, db.DB, "migrations"); err != nil {
		return fmt.Errorf("goose %s failed: %w", command, err)
	}

	version, err := goose.GetDBVersion(db.DB)
	if err != nil {
		return fmt.Errorf("goose: failed to read version: %w", err)
	}
	logger.Info("Migrations completed", zap.Int64("version", version))
	return nil
}
