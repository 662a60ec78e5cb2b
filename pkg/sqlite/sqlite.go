package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	_ "modernc.org/sqlite"
)

// Client wraps a SQLite database opened in WAL mode.
type Client struct {
	db   *sql.DB
	path string
}

// Open opens (or creates) the database at path and enables WAL so readers
// are not blocked by the ingestion writer. ":memory:" is accepted for tests.
func Open(path string) (*Client, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	if path == ":memory:" {
		// each pooled connection would get its own empty database
		db.SetMaxOpenConns(1)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA foreign_keys=ON",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("%s: %w", p, err)
		}
	}
	return &Client{db: db, path: path}, nil
}

func (c *Client) DB() *sql.DB { return c.db }

func (c *Client) Path() string { return c.path }

func (c *Client) Health(ctx context.Context) error {
	return c.db.PingContext(ctx)
}

func (c *Client) Close() error {
	return c.db.Close()
}

// Migrate runs idempotent DDL statements in order.
func (c *Client) Migrate(ctx context.Context, stmts []string) error {
	for _, s := range stmts {
		if _, err := c.db.ExecContext(ctx, s); err != nil {
			return fmt.Errorf("exec %q: %w", head(s), err)
		}
	}
	return nil
}

func head(s string) string {
	s = strings.TrimSpace(s)
	if len(s) > 40 {
		return s[:40]
	}
	return s
}

// PriceSchema mirrors the ClickHouse layout for local runs.
func PriceSchema() []string {
	return []string{
		`CREATE TABLE IF NOT EXISTS instruments (
			isin   TEXT PRIMARY KEY,
			name   TEXT NOT NULL DEFAULT '',
			ticker TEXT NOT NULL DEFAULT '',
			sector TEXT NOT NULL DEFAULT '',
			venue  TEXT NOT NULL DEFAULT '',
			active INTEGER NOT NULL DEFAULT 1
		)`,
		`CREATE TABLE IF NOT EXISTS daily_bars (
			isin   TEXT NOT NULL,
			day    TEXT NOT NULL,
			open   REAL,
			high   REAL,
			low    REAL,
			close  REAL,
			volume REAL,
			PRIMARY KEY (isin, day)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_daily_bars_day ON daily_bars(day)`,
	}
}
