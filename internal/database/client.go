// internal/database/client.go
package database

import (
	"context"
	"fmt"
	"time"

	"github.com/beenruuu/mentha/internal/config"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
)

// Client wraps the sqlx connection pool shared by all repositories.
type Client struct {
	DB *sqlx.DB
}

// Connect opens a Postgres connection pool from the database config.
func Connect(ctx context.Context, cfg config.DatabaseConfig) (*Client, error) {
	connStr := fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		cfg.Host, cfg.Port, cfg.User, cfg.Password, cfg.Name, cfg.SSLMode,
	)

	db, err := sqlx.ConnectContext(ctx, "postgres", connStr)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	db.SetMaxOpenConns(cfg.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MaxIdleConns)
	db.SetConnMaxLifetime(time.Duration(cfg.ConnMaxLifetime) * time.Second)

	if err := db.PingContext(ctx); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &Client{DB: db}, nil
}

// BeginTxx starts a transaction on the underlying pool.
func (c *Client) BeginTxx(ctx context.Context) (*sqlx.Tx, error) {
	return c.DB.BeginTxx(ctx, nil)
}

func (c *Client) Close() error {
	return c.DB.Close()
}
