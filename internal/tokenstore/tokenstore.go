// Package tokenstore persists the single auth token the storefront client keeps between runs.
package tokenstore

import (
	"context"
	"errors"
	"strings"
	"sync"
)

// Key is the fixed storage key for the auth token.
const Key = "urmart_token"

var (
	// ErrNotFound is returned by Load when no token is stored.
	ErrNotFound = errors.New("token not found")
	// ErrEmptyToken rejects saving a blank token.
	ErrEmptyToken = errors.New("empty token")
)

// Store is durable client storage for the auth token.
type Store interface {
	Load(ctx context.Context) (string, error)
	Save(ctx context.Context, token string) error
	Delete(ctx context.Context) error
}

// Memory is a process-local Store.
type Memory struct {
	mu    sync.Mutex
	token string
}

// NewMemory returns an empty in-memory Store.
func NewMemory() *Memory {
	return &Memory{}
}

func (memory *Memory) Load(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	memory.mu.Lock()
	defer memory.mu.Unlock()
	if memory.token == "" {
		return "", ErrNotFound
	}
	return memory.token, nil
}

func (memory *Memory) Save(ctx context.Context, token string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	trimmed := strings.TrimSpace(token)
	if trimmed == "" {
		return ErrEmptyToken
	}
	memory.mu.Lock()
	defer memory.mu.Unlock()
	memory.token = trimmed
	return nil
}

func (memory *Memory) Delete(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	memory.mu.Lock()
	defer memory.mu.Unlock()
	memory.token = ""
	return nil
}
