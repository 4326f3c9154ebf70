package pgstore

import (
	"context"
	"errors"
	"os"
	"testing"

	"github.com/MarkoPoloResearchLab/storefront/internal/tokenstore"
	"github.com/jackc/pgx/v5/pgxpool"
)

const databaseURLEnv = "URMART_TEST_DATABASE_URL"

// TestStoreAgainstPostgres exercises the pgx store against a live database.
func TestStoreAgainstPostgres(test *testing.T) {
	databaseURL := os.Getenv(databaseURLEnv)
	if databaseURL == "" {
		test.Skip("set " + databaseURLEnv + " to run the postgres token store test")
	}
	ctx := context.Background()
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		test.Fatalf("connect: %v", err)
	}
	defer pool.Close()

	store := New(pool)
	if err := store.EnsureSchema(ctx); err != nil {
		test.Fatalf("schema: %v", err)
	}
	if err := store.Delete(ctx); err != nil {
		test.Fatalf("reset: %v", err)
	}
	if _, err := store.Load(ctx); !errors.Is(err, tokenstore.ErrNotFound) {
		test.Fatalf("expected ErrNotFound, got %v", err)
	}
	if err := store.Save(ctx, "first"); err != nil {
		test.Fatalf("save: %v", err)
	}
	if err := store.Save(ctx, "second"); err != nil {
		test.Fatalf("overwrite: %v", err)
	}
	loaded, err := store.Load(ctx)
	if err != nil {
		test.Fatalf("load: %v", err)
	}
	if loaded != "second" {
		test.Fatalf("expected second, got %q", loaded)
	}
	if err := store.Delete(ctx); err != nil {
		test.Fatalf("delete: %v", err)
	}
}

func TestStoreRejectsEmptyToken(test *testing.T) {
	test.Parallel()
	store := New(nil)
	if err := store.Save(context.Background(), "   "); !errors.Is(err, tokenstore.ErrEmptyToken) {
		test.Fatalf("expected ErrEmptyToken, got %v", err)
	}
}
