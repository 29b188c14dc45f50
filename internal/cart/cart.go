// Package cart defines the domain types for a storefront shopping cart.
package cart

// Key identifies one shopper's cart. Carts are scoped per tenant and per shopper
// session, so a shopper browsing two storefronts in the same browser never sees
// items bleed between them.
type Key struct {
	TenantID  string
	SessionID string
}

// Color is a selectable product variant. Its ID participates in line identity.
type Color struct {
	ID   string `json:"id"`
	Name string `json:"name,omitempty"`
	Hex  string `json:"hex,omitempty"`
}

// Item is one line in a cart.
// MaxQuantity is the stock ceiling captured when the line was added; the store
// clamps quantities against it and never re-checks live inventory.
type Item struct {
	ProductID   string `json:"product_id"`
	Name        string `json:"name"`
	Price       int64  `json:"price"` // Price in minor units (cents)
	Currency    string `json:"currency"`
	Image       string `json:"image,omitempty"`
	Color       *Color `json:"color,omitempty"`
	Quantity    int    `json:"quantity"`
	MaxQuantity int    `json:"max_quantity"`
}

// ColorID returns the variant component of the line identity.
// Items without a color have an empty variant component.
func (i Item) ColorID() string {
	if i.Color == nil {
		return ""
	}
	return i.Color.ID
}

// SameLine reports whether this item occupies the line identified by
// (productID, colorID). Two additions target the same line iff both components match.
func (i Item) SameLine(productID, colorID string) bool {
	return i.ProductID == productID && i.ColorID() == colorID
}
