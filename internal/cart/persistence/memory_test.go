package persistence

import (
	"context"
	"testing"

	"github.com/abgdnv/gocart/internal/cart"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testKey = cart.Key{TenantID: "acme", SessionID: "sess-1"}

func testItems() []cart.Item {
	return []cart.Item{
		{ProductID: "A", Name: "Mug", Price: 10, Currency: "EUR", Quantity: 1, MaxQuantity: 2},
		{ProductID: "B", Name: "Shirt", Price: 5, Currency: "EUR", Quantity: 2, MaxQuantity: 3,
			Color: &cart.Color{ID: "red", Name: "Red", Hex: "#ff0000"}},
	}
}

func Test_Memory_SaveLoadRoundTrip(t *testing.T) {
	adapter := NewMemoryAdapter()
	ctx := context.Background()

	require.NoError(t, adapter.Save(ctx, testKey, testItems()))

	loaded, err := adapter.Load(ctx, testKey)
	require.NoError(t, err)
	assert.Equal(t, testItems(), loaded)
}

func Test_Memory_LoadUnknownKeyIsEmpty(t *testing.T) {
	adapter := NewMemoryAdapter()

	loaded, err := adapter.Load(context.Background(), cart.Key{TenantID: "other", SessionID: "s"})
	require.NoError(t, err)
	assert.Empty(t, loaded)
}

func Test_Memory_KeysAreIsolated(t *testing.T) {
	adapter := NewMemoryAdapter()
	ctx := context.Background()
	otherTenant := cart.Key{TenantID: "globex", SessionID: testKey.SessionID}

	require.NoError(t, adapter.Save(ctx, testKey, testItems()))

	// Same session on another tenant storefront sees its own, empty cart.
	loaded, err := adapter.Load(ctx, otherTenant)
	require.NoError(t, err)
	assert.Empty(t, loaded)
}

func Test_Memory_CorruptDataFailsSafeToEmpty(t *testing.T) {
	adapter := &memory{data: map[cart.Key][]byte{
		testKey: []byte(`{"this is": "not an item list"`),
	}}

	loaded, err := adapter.Load(context.Background(), testKey)
	require.NoError(t, err)
	assert.Empty(t, loaded)
}

func Test_Memory_SaveOverwrites(t *testing.T) {
	adapter := NewMemoryAdapter()
	ctx := context.Background()

	require.NoError(t, adapter.Save(ctx, testKey, testItems()))
	require.NoError(t, adapter.Save(ctx, testKey, []cart.Item{}))

	loaded, err := adapter.Load(ctx, testKey)
	require.NoError(t, err)
	assert.Empty(t, loaded)
}
