package service

import (
	"context"
	"log/slog"
	"testing"

	"github.com/abgdnv/gocart/internal/cart/persistence"
	"github.com/abgdnv/gocart/pkg/messaging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mockPublisher records every published event.
type mockPublisher struct {
	events []messaging.Event
	error  error
}

func (m *mockPublisher) Publish(_ context.Context, event messaging.Event) error {
	if m.error != nil {
		return m.error
	}
	m.events = append(m.events, event)
	return nil
}

func newTestService() (*Service, *mockPublisher) {
	pub := &mockPublisher{}
	return NewService(persistence.NewMemoryAdapter(), pub, slog.Default()), pub
}

func addMugDto() AddItemDto {
	return AddItemDto{
		ProductID:   "mug-01",
		Name:        "Mug",
		Price:       1050,
		Currency:    "EUR",
		Quantity:    1,
		MaxQuantity: 2,
	}
}

func Test_CartService_AddItem(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	got := svc.AddItem(ctx, "acme", "sess-1", addMugDto())

	require.Len(t, got.Items, 1)
	assert.Equal(t, "mug-01", got.Items[0].ProductID)
	assert.Equal(t, 1, got.TotalItems)
	assert.Equal(t, int64(1050), got.TotalPrice)
}

func Test_CartService_AddItem_MergesAcrossCalls(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	svc.AddItem(ctx, "acme", "sess-1", addMugDto())
	got := svc.AddItem(ctx, "acme", "sess-1", addMugDto())

	// Same identity, same session: one line, merged and clamped.
	require.Len(t, got.Items, 1)
	assert.Equal(t, 2, got.Items[0].Quantity)

	// The same product in a different tenant storefront is a separate cart.
	other := svc.AddItem(ctx, "globex", "sess-1", addMugDto())
	require.Len(t, other.Items, 1)
	assert.Equal(t, 1, other.Items[0].Quantity)
}

func Test_CartService_ColorVariant(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	red := addMugDto()
	red.Color = &ColorDto{ID: "red", Name: "Red", Hex: "#f00"}
	blue := addMugDto()
	blue.Color = &ColorDto{ID: "blue", Name: "Blue", Hex: "#00f"}

	svc.AddItem(ctx, "acme", "sess-1", red)
	got := svc.AddItem(ctx, "acme", "sess-1", blue)

	require.Len(t, got.Items, 2)
	require.NotNil(t, got.Items[0].Color)
	assert.Equal(t, "red", got.Items[0].Color.ID)
	assert.Equal(t, "blue", got.Items[1].Color.ID)
}

func Test_CartService_UpdateAndRemove(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()
	svc.AddItem(ctx, "acme", "sess-1", addMugDto())

	got := svc.UpdateQuantity(ctx, "acme", "sess-1", "mug-01", "", 2)
	require.Len(t, got.Items, 1)
	assert.Equal(t, 2, got.Items[0].Quantity)

	got = svc.UpdateQuantity(ctx, "acme", "sess-1", "mug-01", "", 0)
	assert.Empty(t, got.Items)

	// Removing an already absent line is a quiet no-op.
	got = svc.RemoveItem(ctx, "acme", "sess-1", "mug-01", "")
	assert.Empty(t, got.Items)
	assert.Equal(t, 0, got.TotalItems)
}

func Test_CartService_GetCartAndSummary(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	// Before the first mutation a session renders an empty cart, not an error.
	empty := svc.GetCart(ctx, "acme", "sess-1")
	assert.Empty(t, empty.Items)

	svc.AddItem(ctx, "acme", "sess-1", addMugDto())

	full := svc.GetCart(ctx, "acme", "sess-1")
	require.Len(t, full.Items, 1)

	summary := svc.Summary(ctx, "acme", "sess-1")
	assert.Equal(t, full.TotalItems, summary.TotalItems)
	assert.Equal(t, full.TotalPrice, summary.TotalPrice)
}

func Test_CartService_HydratesFromSharedAdapter(t *testing.T) {
	adapter := persistence.NewMemoryAdapter()
	ctx := context.Background()

	first := NewService(adapter, nil, slog.Default())
	first.AddItem(ctx, "acme", "sess-1", addMugDto())

	// A new service instance over the same mirror sees the persisted cart.
	second := NewService(adapter, nil, slog.Default())
	got := second.GetCart(ctx, "acme", "sess-1")
	require.Len(t, got.Items, 1)
	assert.Equal(t, 1, got.TotalItems)
	assert.Equal(t, int64(1050), got.TotalPrice)
}

func Test_CartService_PublishesEvents(t *testing.T) {
	svc, pub := newTestService()
	ctx := context.Background()

	svc.AddItem(ctx, "acme", "sess-1", addMugDto())
	svc.UpdateQuantity(ctx, "acme", "sess-1", "mug-01", "", 2)
	svc.Clear(ctx, "acme", "sess-1")

	require.Len(t, pub.events, 3)
	assert.Equal(t, messaging.CartUpdatedSubject, pub.events[0].Subject())
	assert.Equal(t, messaging.CartUpdatedSubject, pub.events[1].Subject())
	assert.Equal(t, messaging.CartClearedSubject, pub.events[2].Subject())
}

func Test_CartService_NoEventForNoopMutation(t *testing.T) {
	svc, pub := newTestService()
	ctx := context.Background()

	svc.RemoveItem(ctx, "acme", "sess-1", "missing", "")

	assert.Empty(t, pub.events)
}

func Test_CartService_PublishFailureDoesNotAffectCart(t *testing.T) {
	svc, pub := newTestService()
	pub.error = assert.AnError
	ctx := context.Background()

	got := svc.AddItem(ctx, "acme", "sess-1", addMugDto())

	require.Len(t, got.Items, 1)
	assert.Equal(t, 1, got.TotalItems)
}
