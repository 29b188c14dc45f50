// Package store implements the cart state store: the single authoritative owner
// of a shopper's in-memory item list.
//
// Every mutation is a total function: over-limit quantities are clamped, not
// rejected, and operations on absent lines are no-ops. After each successful
// mutation the full item list is mirrored to the persistence adapter and all
// subscribers are notified synchronously with a consistent snapshot.
package store

import (
	"context"
	"log/slog"
	"slices"
	"sync"

	"github.com/abgdnv/gocart/internal/cart"
	"github.com/abgdnv/gocart/internal/cart/persistence"
)

// Op names the mutation that produced a snapshot.
type Op string

const (
	OpNone   Op = ""
	OpAdd    Op = "add"
	OpUpdate Op = "update"
	OpRemove Op = "remove"
	OpClear  Op = "clear"
)

// Snapshot is a consistent view of the cart taken after a mutation completed.
// Items is a copy; subscribers may hold on to it without observing later writes.
type Snapshot struct {
	Op         Op
	Items      []cart.Item
	TotalItems int
	TotalPrice int64
}

// Subscriber receives a snapshot after each successful mutation, on the same
// goroutine, with the mutating call's context.
type Subscriber func(ctx context.Context, snapshot Snapshot)

// Store holds the item list for exactly one cart key.
type Store struct {
	key     cart.Key
	adapter persistence.Adapter
	logger  *slog.Logger

	mu      sync.Mutex
	items   []cart.Item
	subs    map[int]Subscriber
	nextSub int
}

// New creates a Store and hydrates it from the adapter. Hydration failures are
// logged and degrade to an empty cart; they never surface to the caller.
func New(ctx context.Context, key cart.Key, adapter persistence.Adapter, logger *slog.Logger) *Store {
	s := &Store{
		key:     key,
		adapter: adapter,
		logger:  logger.With("component", "cart_store", "tenant_id", key.TenantID),
		subs:    make(map[int]Subscriber),
	}
	items, err := adapter.Load(ctx, key)
	if err != nil {
		s.logger.WarnContext(ctx, "Failed to hydrate cart, starting empty", "error", err)
		items = nil
	}
	s.items = normalize(items)
	return s
}

// Key returns the cart key this store owns.
func (s *Store) Key() cart.Key {
	return s.key
}

// AddItem merges the item into the cart. Quantities below one are treated as one.
//   - existing line: quantity becomes min(existing+qty, stored MaxQuantity) —
//     the ceiling captured when the line was first added, not the incoming payload's
//   - new line: appended at the end with quantity min(qty, MaxQuantity)
//
// Over-limit requests clamp silently; AddItem never fails.
func (s *Store) AddItem(ctx context.Context, item cart.Item, qty int) Snapshot {
	if qty <= 0 {
		qty = 1
	}
	if item.MaxQuantity < 1 {
		item.MaxQuantity = 1
	}

	s.mu.Lock()
	if idx := s.findLocked(item.ProductID, item.ColorID()); idx >= 0 {
		line := &s.items[idx]
		line.Quantity = clamp(line.Quantity+qty, line.MaxQuantity)
	} else {
		item.Quantity = clamp(qty, item.MaxQuantity)
		s.items = append(s.items, item)
	}
	snap, subs := s.commitLocked(OpAdd)
	s.mu.Unlock()

	s.finish(ctx, snap, subs)
	return snap
}

// RemoveItem removes the unique line matching (productID, colorID).
// Removing an absent line is a no-op, not an error.
func (s *Store) RemoveItem(ctx context.Context, productID, colorID string) Snapshot {
	s.mu.Lock()
	idx := s.findLocked(productID, colorID)
	if idx < 0 {
		snap := s.snapshotLocked(OpNone)
		s.mu.Unlock()
		return snap
	}
	s.items = slices.Delete(s.items, idx, idx+1)
	snap, subs := s.commitLocked(OpRemove)
	s.mu.Unlock()

	s.finish(ctx, snap, subs)
	return snap
}

// UpdateQuantity sets the quantity of the line matching (productID, colorID).
// No match is a no-op. A non-positive quantity removes the line. Anything else
// is clamped to the line's stored MaxQuantity, same policy as AddItem.
func (s *Store) UpdateQuantity(ctx context.Context, productID, colorID string, qty int) Snapshot {
	s.mu.Lock()
	idx := s.findLocked(productID, colorID)
	if idx < 0 {
		snap := s.snapshotLocked(OpNone)
		s.mu.Unlock()
		return snap
	}
	var op Op
	if qty <= 0 {
		s.items = slices.Delete(s.items, idx, idx+1)
		op = OpRemove
	} else {
		line := &s.items[idx]
		line.Quantity = clamp(qty, line.MaxQuantity)
		op = OpUpdate
	}
	snap, subs := s.commitLocked(op)
	s.mu.Unlock()

	s.finish(ctx, snap, subs)
	return snap
}

// Clear unconditionally empties the cart and persists the empty state.
func (s *Store) Clear(ctx context.Context) Snapshot {
	s.mu.Lock()
	s.items = nil
	snap, subs := s.commitLocked(OpClear)
	s.mu.Unlock()

	s.finish(ctx, snap, subs)
	return snap
}

// Items returns a copy of the current item list in insertion order.
func (s *Store) Items() []cart.Item {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.items)
}

// TotalItems returns the sum of quantities across all lines.
func (s *Store) TotalItems() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return totalItems(s.items)
}

// TotalPrice returns the sum of price times quantity across all lines,
// in the minor units the prices were stored in.
func (s *Store) TotalPrice() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return totalPrice(s.items)
}

// Snapshot returns a consistent view of the current cart state.
func (s *Store) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked(OpNone)
}

// Subscribe registers a callback invoked synchronously after each successful
// mutation. The returned function unregisters the callback; callers must invoke
// it on teardown to avoid leaks.
func (s *Store) Subscribe(fn Subscriber) func() {
	s.mu.Lock()
	id := s.nextSub
	s.nextSub++
	s.subs[id] = fn
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		delete(s.subs, id)
		s.mu.Unlock()
	}
}

// findLocked returns the index of the line matching the identity, or -1.
func (s *Store) findLocked(productID, colorID string) int {
	return slices.IndexFunc(s.items, func(i cart.Item) bool {
		return i.SameLine(productID, colorID)
	})
}

// commitLocked captures the post-mutation snapshot together with the subscriber
// list, so every subscriber observes the same state in registration order.
func (s *Store) commitLocked(op Op) (Snapshot, []Subscriber) {
	snap := s.snapshotLocked(op)
	ids := make([]int, 0, len(s.subs))
	for id := range s.subs {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	subs := make([]Subscriber, 0, len(ids))
	for _, id := range ids {
		subs = append(subs, s.subs[id])
	}
	return snap, subs
}

func (s *Store) snapshotLocked(op Op) Snapshot {
	return Snapshot{
		Op:         op,
		Items:      slices.Clone(s.items),
		TotalItems: totalItems(s.items),
		TotalPrice: totalPrice(s.items),
	}
}

// finish mirrors the item list to the adapter and notifies subscribers, in that
// order. Persistence failures are logged and swallowed: in-memory state stays
// authoritative for the session.
func (s *Store) finish(ctx context.Context, snap Snapshot, subs []Subscriber) {
	if err := s.adapter.Save(ctx, s.key, snap.Items); err != nil {
		s.logger.ErrorContext(ctx, "Failed to persist cart, in-memory state remains authoritative", "error", err)
	}
	for _, fn := range subs {
		fn(ctx, snap)
	}
}

// normalize drops lines a correct writer could not have produced, keeping the
// invariant 0 < quantity <= maxQuantity for every hydrated line.
func normalize(items []cart.Item) []cart.Item {
	out := items[:0]
	for _, it := range items {
		if it.ProductID == "" || it.Quantity <= 0 || it.MaxQuantity <= 0 {
			continue
		}
		it.Quantity = clamp(it.Quantity, it.MaxQuantity)
		out = append(out, it)
	}
	return out
}

func clamp(qty, ceiling int) int {
	if qty > ceiling {
		return ceiling
	}
	return qty
}

func totalItems(items []cart.Item) int {
	var n int
	for _, it := range items {
		n += it.Quantity
	}
	return n
}

func totalPrice(items []cart.Item) int64 {
	var sum int64
	for _, it := range items {
		sum += it.Price * int64(it.Quantity)
	}
	return sum
}
