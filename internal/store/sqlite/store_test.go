package sqlite

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/listenupapp/catalog-server/internal/domain"
	"github.com/listenupapp/catalog-server/internal/store"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	dir := t.TempDir()
	dbPath := filepath.Join(dir, "test.db")
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug}))
	s, err := Open(dbPath, logger)
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestOpen(t *testing.T) {
	s := newTestStore(t)

	// Verify WAL mode is set.
	var journalMode string
	err := s.db.QueryRow("PRAGMA journal_mode").Scan(&journalMode)
	if err != nil {
		t.Fatalf("query journal_mode: %v", err)
	}
	if journalMode != "wal" {
		t.Errorf("expected wal, got %s", journalMode)
	}

	// Foreign keys must be on for every pooled connection, not just the first.
	ctx := context.Background()
	for range 3 {
		c, err := s.db.Conn(ctx)
		if err != nil {
			t.Fatalf("conn: %v", err)
		}
		defer c.Close()

		var fk int
		if err := c.QueryRowContext(ctx, "PRAGMA foreign_keys").Scan(&fk); err != nil {
			t.Fatalf("query foreign_keys: %v", err)
		}
		if fk != 1 {
			t.Errorf("expected foreign_keys=1, got %d", fk)
		}
	}

	// Verify tables exist.
	tables := []string{"categories", "products", "tags", "product_tags"}
	for _, table := range tables {
		var name string
		err := s.db.QueryRow(
			"SELECT name FROM sqlite_master WHERE type='table' AND name=?", table,
		).Scan(&name)
		if err != nil {
			t.Errorf("table %s not found: %v", table, err)
		}
	}
}

func TestOpen_Reopen(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "reopen.db")

	s1, err := Open(dbPath, nil)
	if err != nil {
		t.Fatalf("first open: %v", err)
	}
	if err := s1.CreateTag(context.Background(), makeTestTag("kept")); err != nil {
		t.Fatalf("CreateTag: %v", err)
	}
	s1.Close()

	// Schema application must be idempotent.
	s2, err := Open(dbPath, nil)
	if err != nil {
		t.Fatalf("second open: %v", err)
	}
	defer s2.Close()

	tags, err := s2.ListTags(context.Background())
	if err != nil {
		t.Fatalf("ListTags: %v", err)
	}
	if len(tags) != 1 {
		t.Errorf("expected 1 tag after reopen, got %d", len(tags))
	}
}

func TestWithTx_CommitsOnSuccess(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	err := s.WithTx(ctx, func(tx store.Tx) error {
		return tx.CreateCategory(ctx, makeTestCategory("Shirts"))
	})
	if err != nil {
		t.Fatalf("WithTx: %v", err)
	}

	cats, err := s.ListCategories(ctx)
	if err != nil {
		t.Fatalf("ListCategories: %v", err)
	}
	if len(cats) != 1 || cats[0].Name != "Shirts" {
		t.Errorf("expected committed category Shirts, got %+v", cats)
	}
}

func TestWithTx_RollsBackOnError(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	boom := errors.New("boom")

	err := s.WithTx(ctx, func(tx store.Tx) error {
		if err := tx.CreateCategory(ctx, makeTestCategory("Shirts")); err != nil {
			return err
		}
		// Reads inside the transaction observe its own writes.
		cats, err := tx.ListCategories(ctx)
		if err != nil {
			return err
		}
		if len(cats) != 1 {
			t.Errorf("expected 1 category inside tx, got %d", len(cats))
		}
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("expected boom, got %v", err)
	}

	cats, err := s.ListCategories(ctx)
	if err != nil {
		t.Fatalf("ListCategories: %v", err)
	}
	if len(cats) != 0 {
		t.Errorf("expected rollback to leave no categories, got %d", len(cats))
	}
}

func TestPing(t *testing.T) {
	s := newTestStore(t)
	if err := s.Ping(context.Background()); err != nil {
		t.Fatalf("Ping: %v", err)
	}
}

func TestOptimize(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	if err := s.CreateTag(ctx, &domain.Tag{Name: "red", CreatedAt: time.Now(), UpdatedAt: time.Now()}); err != nil {
		t.Fatalf("CreateTag: %v", err)
	}
	if err := s.Optimize(ctx); err != nil {
		t.Fatalf("Optimize: %v", err)
	}
}
