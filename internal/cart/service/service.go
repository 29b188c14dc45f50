// Package service provides the implementation of cart-related business logic.
package service

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/abgdnv/gocart/internal/cart"
	"github.com/abgdnv/gocart/internal/cart/persistence"
	"github.com/abgdnv/gocart/internal/cart/store"
	"github.com/abgdnv/gocart/pkg/messaging"
	"github.com/abgdnv/gocart/pkg/messaging/events"
)

// CartService defines the operations exposed to storefront surfaces.
//
// Every operation is total: over-limit quantities clamp, operations on absent
// lines are no-ops, and hydration failures degrade to an empty cart. Validation
// messaging ("out of stock" and the like) is the calling UI's responsibility.
type CartService interface {
	// GetCart returns the full item list with derived totals,
	// consumed by cart and checkout surfaces.
	GetCart(ctx context.Context, tenantID, sessionID string) *CartDto

	// Summary returns derived totals only, consumed by badge widgets.
	Summary(ctx context.Context, tenantID, sessionID string) *CartSummaryDto

	// AddItem merges the payload into the cart and returns the resulting state.
	AddItem(ctx context.Context, tenantID, sessionID string, payload AddItemDto) *CartDto

	// UpdateQuantity sets a line's quantity; non-positive values remove the line.
	UpdateQuantity(ctx context.Context, tenantID, sessionID, productID, colorID string, quantity int) *CartDto

	// RemoveItem removes the line matching (productID, colorID), if present.
	RemoveItem(ctx context.Context, tenantID, sessionID, productID, colorID string) *CartDto

	// Clear unconditionally empties the cart. Order submission calls this after
	// confirmed success; the cart never clears on its own.
	Clear(ctx context.Context, tenantID, sessionID string)
}

// Service implements CartService over one shared persistence adapter.
// It keeps one hydrated store per cart key, so all surfaces of a session
// observe the same in-memory state.
type Service struct {
	adapter   persistence.Adapter
	publisher messaging.Publisher
	logger    *slog.Logger

	mu     sync.Mutex
	stores map[cart.Key]*store.Store
}

// NewService creates a new instance of CartService with the provided adapter.
// publisher may be nil when event publishing is disabled.
func NewService(adapter persistence.Adapter, publisher messaging.Publisher, logger *slog.Logger) *Service {
	return &Service{
		adapter:   adapter,
		publisher: publisher,
		logger:    logger.With("component", "cart_service"),
		stores:    make(map[cart.Key]*store.Store),
	}
}

// AddItemDto is the add-to-cart payload product surfaces send.
// Quantity below one is treated as one; MaxQuantity reflects the stock known to
// the caller at add-time.
type AddItemDto struct {
	ProductID   string    `json:"product_id" validate:"required,max=100"`
	Name        string    `json:"name" validate:"required,max=200"`
	Price       int64     `json:"price" validate:"min=0"`
	Currency    string    `json:"currency" validate:"required,len=3"`
	Image       string    `json:"image" validate:"omitempty,max=2000"`
	Color       *ColorDto `json:"color,omitempty"`
	Quantity    int       `json:"quantity"`
	MaxQuantity int       `json:"max_quantity" validate:"required,min=1"`
}

type ColorDto struct {
	ID   string `json:"id" validate:"required,max=100"`
	Name string `json:"name" validate:"max=100"`
	Hex  string `json:"hex" validate:"max=10"`
}

// CartItemDto represents one cart line as rendered by storefront surfaces.
type CartItemDto struct {
	ProductID   string    `json:"product_id"`
	Name        string    `json:"name"`
	Price       int64     `json:"price"`
	Currency    string    `json:"currency"`
	Image       string    `json:"image,omitempty"`
	Color       *ColorDto `json:"color,omitempty"`
	Quantity    int       `json:"quantity"`
	MaxQuantity int       `json:"max_quantity"`
}

// CartDto is the full cart view with derived totals.
type CartDto struct {
	Items      []CartItemDto `json:"items"`
	TotalItems int           `json:"total_items"`
	TotalPrice int64         `json:"total_price"`
}

// CartSummaryDto carries derived totals only.
type CartSummaryDto struct {
	TotalItems int   `json:"total_items"`
	TotalPrice int64 `json:"total_price"`
}

// GetCart returns the full cart for the storefront session.
func (s *Service) GetCart(ctx context.Context, tenantID, sessionID string) *CartDto {
	return toDto(s.storeFor(ctx, tenantID, sessionID).Snapshot())
}

// Summary returns derived totals for the storefront session.
func (s *Service) Summary(ctx context.Context, tenantID, sessionID string) *CartSummaryDto {
	snap := s.storeFor(ctx, tenantID, sessionID).Snapshot()
	return &CartSummaryDto{TotalItems: snap.TotalItems, TotalPrice: snap.TotalPrice}
}

// AddItem merges the payload into the session's cart and returns the new state.
func (s *Service) AddItem(ctx context.Context, tenantID, sessionID string, payload AddItemDto) *CartDto {
	item := cart.Item{
		ProductID:   payload.ProductID,
		Name:        payload.Name,
		Price:       payload.Price,
		Currency:    payload.Currency,
		Image:       payload.Image,
		MaxQuantity: payload.MaxQuantity,
	}
	if payload.Color != nil {
		item.Color = &cart.Color{ID: payload.Color.ID, Name: payload.Color.Name, Hex: payload.Color.Hex}
	}
	snap := s.storeFor(ctx, tenantID, sessionID).AddItem(ctx, item, payload.Quantity)
	return toDto(snap)
}

// UpdateQuantity sets the quantity of one line and returns the new state.
func (s *Service) UpdateQuantity(ctx context.Context, tenantID, sessionID, productID, colorID string, quantity int) *CartDto {
	snap := s.storeFor(ctx, tenantID, sessionID).UpdateQuantity(ctx, productID, colorID, quantity)
	return toDto(snap)
}

// RemoveItem removes one line and returns the new state.
func (s *Service) RemoveItem(ctx context.Context, tenantID, sessionID, productID, colorID string) *CartDto {
	snap := s.storeFor(ctx, tenantID, sessionID).RemoveItem(ctx, productID, colorID)
	return toDto(snap)
}

// Clear empties the session's cart.
func (s *Service) Clear(ctx context.Context, tenantID, sessionID string) {
	s.storeFor(ctx, tenantID, sessionID).Clear(ctx)
}

// storeFor returns the hydrated store for the key, creating and wiring it on
// first use. The event publisher is registered as a store subscriber, so
// downstream consumers hear about every mutation regardless of which surface
// triggered it.
func (s *Service) storeFor(ctx context.Context, tenantID, sessionID string) *store.Store {
	key := cart.Key{TenantID: tenantID, SessionID: sessionID}

	s.mu.Lock()
	defer s.mu.Unlock()
	if st, ok := s.stores[key]; ok {
		return st
	}
	st := store.New(ctx, key, s.adapter, s.logger)
	st.Subscribe(func(ctx context.Context, snap store.Snapshot) {
		s.publishEvent(ctx, key, snap)
	})
	s.stores[key] = st
	return st
}

// publishEvent emits a cart event for the mutation. Publish failures never
// surface to shoppers; the mutation has already been applied and persisted.
func (s *Service) publishEvent(ctx context.Context, key cart.Key, snap store.Snapshot) {
	if s.publisher == nil {
		return
	}
	var event messaging.Event
	if snap.Op == store.OpClear {
		event = events.CartClearedEvent{
			TenantID:  key.TenantID,
			SessionID: key.SessionID,
			ClearedAt: time.Now().UTC(),
		}
	} else {
		event = events.CartUpdatedEvent{
			TenantID:   key.TenantID,
			SessionID:  key.SessionID,
			TotalItems: snap.TotalItems,
			TotalPrice: snap.TotalPrice,
			UpdatedAt:  time.Now().UTC(),
		}
	}
	if err := s.publisher.Publish(ctx, event); err != nil {
		s.logger.ErrorContext(ctx, "Failed to publish cart event", "subject", event.Subject(), "error", err)
	}
}

// toDto converts a store snapshot to a CartDto.
func toDto(snap store.Snapshot) *CartDto {
	items := make([]CartItemDto, 0, len(snap.Items))
	for _, it := range snap.Items {
		dto := CartItemDto{
			ProductID:   it.ProductID,
			Name:        it.Name,
			Price:       it.Price,
			Currency:    it.Currency,
			Image:       it.Image,
			Quantity:    it.Quantity,
			MaxQuantity: it.MaxQuantity,
		}
		if it.Color != nil {
			dto.Color = &ColorDto{ID: it.Color.ID, Name: it.Color.Name, Hex: it.Color.Hex}
		}
		items = append(items, dto)
	}
	return &CartDto{
		Items:      items,
		TotalItems: snap.TotalItems,
		TotalPrice: snap.TotalPrice,
	}
}
