// Package gormstore persists the auth token through GORM (SQLite or PostgreSQL).
package gormstore

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/MarkoPoloResearchLab/storefront/internal/tokenstore"
	"github.com/MarkoPoloResearchLab/storefront/pkg/storefront"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const (
	errorOperationStore = "tokenstore"
	errorSubjectToken   = "token"
	errorSubjectSchema  = "schema"
	errorCodeLoad       = "load"
	errorCodeSave       = "save"
	errorCodeDelete     = "delete"
	errorCodeMigrate    = "migrate"
	columnStorageKey    = "storage_key"
	columnValue         = "value"
	columnUpdatedAt     = "updated_at"
)

// ClientValue mirrors the client_kv table.
type ClientValue struct {
	StorageKey string    `gorm:"column:storage_key;primaryKey;size:64"`
	Value      string    `gorm:"not null"`
	UpdatedAt  time.Time `gorm:"not null"`
}

func (ClientValue) TableName() string { return "client_kv" }

// Store implements tokenstore.Store using GORM.
type Store struct {
	db  *gorm.DB
	key string
}

var _ tokenstore.Store = (*Store)(nil)

// New returns a Store backed by gorm.DB using the fixed token key.
func New(db *gorm.DB) *Store {
	return &Store{db: db, key: tokenstore.Key}
}

// Migrate creates the client_kv table when missing.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(&ClientValue{}); err != nil {
		return wrapStoreError(errorSubjectSchema, errorCodeMigrate, err)
	}
	return nil
}

func (store *Store) Load(ctx context.Context) (string, error) {
	var row ClientValue
	err := store.db.WithContext(ctx).
		Where(columnStorageKey+" = ?", store.key).
		Take(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", tokenstore.ErrNotFound
	}
	if err != nil {
		return "", wrapStoreError(errorSubjectToken, errorCodeLoad, err)
	}
	if strings.TrimSpace(row.Value) == "" {
		return "", tokenstore.ErrNotFound
	}
	return row.Value, nil
}

func (store *Store) Save(ctx context.Context, token string) error {
	trimmed := strings.TrimSpace(token)
	if trimmed == "" {
		return tokenstore.ErrEmptyToken
	}
	row := ClientValue{
		StorageKey: store.key,
		Value:      trimmed,
		UpdatedAt:  time.Now().UTC(),
	}
	err := store.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: columnStorageKey}},
			DoUpdates: clause.AssignmentColumns([]string{columnValue, columnUpdatedAt}),
		}).
		Create(&row).Error
	if err != nil {
		return wrapStoreError(errorSubjectToken, errorCodeSave, err)
	}
	return nil
}

func (store *Store) Delete(ctx context.Context) error {
	err := store.db.WithContext(ctx).
		Where(columnStorageKey+" = ?", store.key).
		Delete(&ClientValue{}).Error
	if err != nil {
		return wrapStoreError(errorSubjectToken, errorCodeDelete, err)
	}
	return nil
}

func wrapStoreError(subject string, code string, err error) error {
	return storefront.WrapError(errorOperationStore, subject, code, err)
}
