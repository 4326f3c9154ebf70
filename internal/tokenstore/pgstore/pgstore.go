// Package pgstore persists the auth token in PostgreSQL through a pgx pool.
package pgstore

import (
	"context"
	"errors"
	"strings"

	"github.com/MarkoPoloResearchLab/storefront/internal/tokenstore"
	"github.com/MarkoPoloResearchLab/storefront/pkg/storefront"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const (
	errorOperationStore = "tokenstore"
	errorSubjectToken   = "token"
	errorSubjectSchema  = "schema"
	errorCodeLoad       = "load"
	errorCodeSave       = "save"
	errorCodeDelete     = "delete"
	errorCodeMigrate    = "migrate"

	sqlCreateTable = `
		create table if not exists client_kv (
			storage_key text primary key,
			value text not null,
			updated_at timestamptz not null default now()
		)
	`

	sqlSelectValue = `
		select value from client_kv where storage_key = $1
	`

	sqlUpsertValue = `
		insert into client_kv(storage_key, value, updated_at) values ($1, $2, now())
		on conflict (storage_key) do update set value = excluded.value, updated_at = excluded.updated_at
	`

	sqlDeleteValue = `
		delete from client_kv where storage_key = $1
	`
)

// Store implements tokenstore.Store using a pgx connection pool.
type Store struct {
	pool *pgxpool.Pool
	key  string
}

var _ tokenstore.Store = (*Store)(nil)

// New returns a Store backed by a pgx pool.
func New(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool, key: tokenstore.Key}
}

// EnsureSchema creates the client_kv table when missing.
func (store *Store) EnsureSchema(ctx context.Context) error {
	if _, err := store.pool.Exec(ctx, sqlCreateTable); err != nil {
		return wrapStoreError(errorSubjectSchema, errorCodeMigrate, err)
	}
	return nil
}

func (store *Store) Load(ctx context.Context) (string, error) {
	var value string
	err := store.pool.QueryRow(ctx, sqlSelectValue, store.key).Scan(&value)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", tokenstore.ErrNotFound
	}
	if err != nil {
		return "", wrapStoreError(errorSubjectToken, errorCodeLoad, err)
	}
	if strings.TrimSpace(value) == "" {
		return "", tokenstore.ErrNotFound
	}
	return value, nil
}

func (store *Store) Save(ctx context.Context, token string) error {
	trimmed := strings.TrimSpace(token)
	if trimmed == "" {
		return tokenstore.ErrEmptyToken
	}
	if _, err := store.pool.Exec(ctx, sqlUpsertValue, store.key, trimmed); err != nil {
		return wrapStoreError(errorSubjectToken, errorCodeSave, err)
	}
	return nil
}

func (store *Store) Delete(ctx context.Context) error {
	if _, err := store.pool.Exec(ctx, sqlDeleteValue, store.key); err != nil {
		return wrapStoreError(errorSubjectToken, errorCodeDelete, err)
	}
	return nil
}

func wrapStoreError(subject string, code string, err error) error {
	return storefront.WrapError(errorOperationStore, subject, code, err)
}
