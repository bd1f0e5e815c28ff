// Package assets serves the client bundle. The bundle is compiled into the
// binary; in dev mode a file watcher swaps in fresh bytes from disk so
// edits show up without a rebuild.
package assets

import (
	_ "embed"
	"fmt"
	"os"
	"sync"
)

//go:embed client.js
var embeddedBundle []byte

// Bundle holds the currently served client script.
type Bundle struct {
	mu    sync.RWMutex
	data  []byte
	stamp int64 // bumps on every swap, used for cache busting in tests
}

// NewBundle returns a bundle serving the embedded client script.
func NewBundle() *Bundle {
	return &Bundle{data: embeddedBundle}
}

// Bytes returns the current bundle contents.
func (b *Bundle) Bytes() []byte {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.data
}

// Generation returns how many times the bundle has been swapped.
func (b *Bundle) Generation() int64 {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.stamp
}

// LoadFile replaces the served bundle with the contents of path.
func (b *Bundle) LoadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read bundle %s: %w", path, err)
	}
	b.mu.Lock()
	b.data = data
	b.stamp++
	b.mu.Unlock()
	return nil
}
