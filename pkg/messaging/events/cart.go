package events

import (
	"encoding/json"
	"time"

	"github.com/abgdnv/gocart/pkg/messaging"
)

// CartUpdatedEvent is emitted after every cart mutation that leaves items in the cart.
// Totals are derived values; consumers must not treat them as a persisted source of truth.
type CartUpdatedEvent struct {
	TenantID   string    `json:"tenant_id"`
	SessionID  string    `json:"session_id"`
	TotalItems int       `json:"total_items"`
	TotalPrice int64     `json:"total_price"`
	UpdatedAt  time.Time `json:"updated_at"`
}

func (e CartUpdatedEvent) Subject() string {
	return messaging.CartUpdatedSubject
}

func (e CartUpdatedEvent) Payload() ([]byte, error) {
	return json.Marshal(e)
}

// CartClearedEvent is emitted when a cart is emptied, typically by the order
// submission flow after a confirmed checkout.
type CartClearedEvent struct {
	TenantID  string    `json:"tenant_id"`
	SessionID string    `json:"session_id"`
	ClearedAt time.Time `json:"cleared_at"`
}

func (e CartClearedEvent) Subject() string {
	return messaging.CartClearedSubject
}

func (e CartClearedEvent) Payload() ([]byte, error) {
	return json.Marshal(e)
}
