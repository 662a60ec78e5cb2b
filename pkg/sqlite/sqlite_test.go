package sqlite

import (
	"context"
	"path/filepath"
	"testing"
)

func TestOpenAndMigrate(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "prices.db")
	c, err := Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer c.Close()

	for i := 0; i < 2; i++ {
		if err := c.Migrate(ctx, PriceSchema()); err != nil {
			t.Fatalf("Migrate pass %d: %v", i, err)
		}
	}

	var mode string
	if err := c.DB().QueryRowContext(ctx, "PRAGMA journal_mode").Scan(&mode); err != nil {
		t.Fatalf("journal_mode: %v", err)
	}
	if mode != "wal" {
		t.Fatalf("journal_mode = %q, want wal", mode)
	}
	if err := c.Health(ctx); err != nil {
		t.Fatalf("Health: %v", err)
	}
}

func TestMigrateReportsBadStatement(t *testing.T) {
	c, err := Open(":memory:")
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer c.Close()
	if err := c.Migrate(context.Background(), []string{"CREATE TABLE broken ("}); err == nil {
		t.Fatal("expected an error")
	}
}
