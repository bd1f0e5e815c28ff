// Package store persists todo items. Two backends exist: an in-memory
// store for throwaway runs and a SQLite store for durable state.
package store

import (
	"context"
	"fmt"

	"stackpad/internal/config"
)

// Todo is the single persisted entity. IDs are assigned by the store,
// unique, and strictly increasing in insertion order.
type Todo struct {
	ID   int64  `json:"id"`
	Text string `json:"text"`
}

// TodoStore is the read/insert contract shared by all backends.
// Todos are never updated or deleted.
type TodoStore interface {
	// List returns all todos in insertion order.
	List(ctx context.Context) ([]Todo, error)

	// Insert creates a todo with the given text and returns the stored
	// record with its assigned ID.
	Insert(ctx context.Context, text string) (Todo, error)

	Close() error
}

// Open constructs the backend selected by the configuration.
func Open(cfg config.StoreConfig) (TodoStore, error) {
	switch cfg.Backend {
	case "memory":
		return NewMemoryStore(), nil
	case "sqlite", "":
		return NewSQLiteStore(cfg.DatabasePath)
	default:
		return nil, fmt.Errorf("unknown store backend: %q", cfg.Backend)
	}
}
