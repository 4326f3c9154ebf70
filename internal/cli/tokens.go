package cli

import (
	"context"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/MarkoPoloResearchLab/storefront/internal/tokenstore"
	"github.com/MarkoPoloResearchLab/storefront/internal/tokenstore/gormstore"
	"github.com/MarkoPoloResearchLab/storefront/internal/tokenstore/pgstore"
	"github.com/glebarez/sqlite"
	"github.com/jackc/pgx/v5/pgxpool"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const (
	schemeMemory      = "memory"
	schemePostgres    = "postgres"
	schemeSQLite      = "sqlite"
	defaultSQLiteFile = "urmart-session.db"
	sqliteMemoryPath  = ":memory:"
)

// openTokenStore resolves dsn to a token store. The returned cleanup releases
// the underlying connection.
func openTokenStore(ctx context.Context, dsn string, driver string) (tokenstore.Store, func() error, error) {
	scheme, sqlitePath, err := resolveDriver(dsn)
	if err != nil {
		return nil, nil, err
	}
	noop := func() error { return nil }

	switch scheme {
	case schemeMemory:
		return tokenstore.NewMemory(), noop, nil
	case schemePostgres:
		if driver == driverPgx {
			return openPgxStore(ctx, dsn)
		}
		return openGormStore(postgres.Open(dsn))
	case schemeSQLite:
		return openGormStore(sqlite.Open(sqlitePath))
	default:
		return nil, nil, fmt.Errorf("unsupported token store scheme %q", scheme)
	}
}

func openGormStore(dialector gorm.Dialector) (tokenstore.Store, func() error, error) {
	db, err := gorm.Open(dialector, &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	if err != nil {
		return nil, nil, fmt.Errorf("token store open: %w", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, nil, err
	}
	if err := gormstore.Migrate(db); err != nil {
		_ = sqlDB.Close()
		return nil, nil, err
	}
	return gormstore.New(db), sqlDB.Close, nil
}

func openPgxStore(ctx context.Context, dsn string) (tokenstore.Store, func() error, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, nil, fmt.Errorf("token store open: %w", err)
	}
	store := pgstore.New(pool)
	if err := store.EnsureSchema(ctx); err != nil {
		pool.Close()
		return nil, nil, err
	}
	return store, func() error { pool.Close(); return nil }, nil
}

// resolveDriver maps a DSN to a storage scheme and, for SQLite, a file path.
func resolveDriver(dsn string) (string, string, error) {
	trimmed := strings.TrimSpace(dsn)
	if trimmed == "" {
		return "", "", fmt.Errorf("token store dsn is empty")
	}
	if strings.HasPrefix(trimmed, "memory://") {
		return schemeMemory, "", nil
	}
	if strings.HasPrefix(trimmed, "postgres://") || strings.HasPrefix(trimmed, "postgresql://") {
		return schemePostgres, "", nil
	}
	if strings.HasPrefix(trimmed, sqliteScheme) {
		parsed, err := url.Parse(trimmed)
		if err != nil {
			return "", "", fmt.Errorf("parse sqlite url: %w", err)
		}
		path := parsed.Path
		if parsed.Host != "" {
			path = parsed.Host + path
		}
		if path == "" || path == "/" {
			path = defaultSQLiteFile
		}
		sqlitePath, err := normalizeSQLitePath(path)
		return schemeSQLite, sqlitePath, err
	}
	// Anything else is a bare SQLite path.
	sqlitePath, err := normalizeSQLitePath(trimmed)
	return schemeSQLite, sqlitePath, err
}

func normalizeSQLitePath(path string) (string, error) {
	if path == sqliteMemoryPath {
		return path, nil
	}
	if !filepath.IsAbs(path) {
		path = filepath.Join(".", path)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return "", err
	}
	return path, nil
}
