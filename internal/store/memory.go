package store

import (
	"context"
	"sync"
)

// MemoryStore keeps todos in a slice. State is lost on restart.
type MemoryStore struct {
	mu     sync.RWMutex
	todos  []Todo
	nextID int64
}

// NewMemoryStore returns an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{nextID: 1}
}

// List returns a copy of all todos in insertion order.
func (s *MemoryStore) List(ctx context.Context) ([]Todo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]Todo, len(s.todos))
	copy(out, s.todos)
	return out, nil
}

// Insert appends a todo and assigns the next ID.
func (s *MemoryStore) Insert(ctx context.Context, text string) (Todo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	todo := Todo{ID: s.nextID, Text: text}
	s.nextID++
	s.todos = append(s.todos, todo)
	return todo, nil
}

// Close is a no-op for the memory backend.
func (s *MemoryStore) Close() error {
	return nil
}
