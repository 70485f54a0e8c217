package domain

import (
	"context"
	"time"
)

// Cart domain errors.
var (
	ErrCartNotFound     = &Error{Code: ENOTFOUND, Message: "Cart not found"}
	ErrCartItemNotFound = &Error{Code: ENOTFOUND, Message: "Cart item not found"}
	ErrInvalidQuantity  = &Error{Code: EINVALID, Message: "Quantity must be greater than 0"}
	ErrOutOfStock       = &Error{Code: ECONFLICT, Message: "Requested quantity exceeds available stock"}
	ErrEmptyCart        = &Error{Code: EINVALID, Message: "Cart is empty"}
)

// CartService provides business logic for shopping cart operations.
// Carts are keyed by the opaque customer identity supplied by the auth
// collaborator; this engine trusts it without re-validating.
type CartService interface {
	// GetOrCreateCart retrieves the customer's cart, creating an empty one
	// if none exists, and returns it with a freshly computed summary.
	GetOrCreateCart(ctx context.Context, customerID string) (*CartSummary, error)

	// AddItem adds a product line to the cart or merges into an existing
	// line with the same (productID, variant) key.
	AddItem(ctx context.Context, customerID string, params AddItemParams) (*CartSummary, error)

	// UpdateItemQuantity updates the quantity of a cart line.
	// A quantity <= 0 behaves as removal.
	UpdateItemQuantity(ctx context.Context, customerID, productID, variant string, quantity int) (*CartSummary, error)

	// RemoveItem removes a line from the cart. Removing an absent line is a
	// no-op success.
	RemoveItem(ctx context.Context, customerID, productID, variant string) (*CartSummary, error)

	// ClearCart removes all lines from the cart.
	ClearCart(ctx context.Context, customerID string) (*CartSummary, error)

	// GetSummary recomputes the cart summary from current lines. Pure
	// derivation, no side effects.
	GetSummary(ctx context.Context, customerID string) (*CartSummary, error)
}

// AddItemParams contains parameters for adding a cart line.
type AddItemParams struct {
	ProductID string
	Variant   string
	Quantity  int
}

// Cart represents a lightweight cart view model.
type Cart struct {
	ID         string
	CustomerID string
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// CartItem represents a cart line with product details and calculated totals.
// Line identity is (ProductID, Variant); duplicate keys are merged, never
// duplicated. UnitPriceCents is the price captured at add time and is for
// display only; the authoritative price is re-read at order creation.
type CartItem struct {
	ProductID         string
	Variant           string
	ProductName       string
	SKU               string
	Quantity          int
	UnitPriceCents    int64
	LineSubtotalCents int64
	ImageURL          string
}

// CartSummary aggregates cart information with items and derived totals.
// It is never persisted independently; it is recomputed from the lines on
// every read so it can never go stale after a mutation.
type CartSummary struct {
	Cart          Cart
	Items         []CartItem
	ItemCount     int
	SubtotalCents int64
	DiscountCents int64
	ShippingCents int64
	TaxCents      int64
	TotalCents    int64
}
