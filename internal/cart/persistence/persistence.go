// Package persistence mirrors cart state to durable storage.
// The cart store exclusively owns the in-memory item list; adapters are passive
// mirrors the store writes to and reads from.
package persistence

import (
	"context"
	"encoding/json"

	"github.com/abgdnv/gocart/internal/cart"
)

// Adapter is the durable storage contract for cart state.
type Adapter interface {
	// Load returns the last persisted item list for the key.
	// Missing or unparseable data yields an empty list, not an error: a cart
	// fails safe to empty rather than crashing the store. Errors are reserved
	// for the backing store being unreachable.
	Load(ctx context.Context, key cart.Key) ([]cart.Item, error)

	// Save mirrors the full item list under the key. Best effort: callers log
	// and swallow failures, leaving in-memory state authoritative for the session.
	// Only items are persisted, never derived totals.
	Save(ctx context.Context, key cart.Key, items []cart.Item) error
}

// encodeItems serializes the item list verbatim; derived values are never stored.
func encodeItems(items []cart.Item) ([]byte, error) {
	return json.Marshal(items)
}

func decodeItems(raw []byte) ([]cart.Item, error) {
	var items []cart.Item
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil, err
	}
	return items, nil
}
