package persistence

import (
	"context"
	"sync"

	"github.com/abgdnv/gocart/internal/cart"
)

// memory implements Adapter backed by an in-process map.
// It stores the serialized form, like a real backend would, so hydration paths
// (including the corrupt-data fallback) behave the same as in production.
type memory struct {
	mu   sync.RWMutex
	data map[cart.Key][]byte
}

// NewMemoryAdapter creates a new in-memory Adapter.
func NewMemoryAdapter() Adapter {
	return &memory{
		data: make(map[cart.Key][]byte),
	}
}

// Load returns the last saved item list, or an empty list when the key is
// unknown or the stored bytes fail to parse.
func (m *memory) Load(_ context.Context, key cart.Key) ([]cart.Item, error) {
	m.mu.RLock()
	raw, ok := m.data[key]
	m.mu.RUnlock()

	if !ok {
		return []cart.Item{}, nil
	}
	items, err := decodeItems(raw)
	if err != nil {
		return []cart.Item{}, nil
	}
	return items, nil
}

// Save mirrors the full item list under the key.
func (m *memory) Save(_ context.Context, key cart.Key, items []cart.Item) error {
	raw, err := encodeItems(items)
	if err != nil {
		return err
	}
	m.mu.Lock()
	m.data[key] = raw
	m.mu.Unlock()
	return nil
}
