package domain

import "context"

var ErrProductNotFound = &Error{Code: ENOTFOUND, Message: "Product not found"}

// Product is the slice of the catalog this engine consumes: the price,
// name, and SKU re-read at order time. Catalog CRUD itself is an external
// collaborator.
type Product struct {
	ID         string
	Name       string
	SKU        string
	PriceCents int64
	ImageURL   string
}

// CatalogService is the read-only catalog collaborator interface.
type CatalogService interface {
	GetProduct(ctx context.Context, productID string) (*Product, error)
}

// Coupon is a discount code applied at order creation. Invalid or expired
// coupons are silently ignored; they never fail an order.
type Coupon struct {
	Code           string
	PercentOff     int
	AmountOffCents int64
	Active         bool
	Expired        bool
}

// DiscountFor computes the discount this coupon grants on a subtotal.
// Returns 0 when the coupon is unusable.
func (c *Coupon) DiscountFor(subtotalCents int64) int64 {
	if c == nil || !c.Active || c.Expired {
		return 0
	}
	var discount int64
	if c.PercentOff > 0 {
		discount = subtotalCents * int64(c.PercentOff) / 100
	} else {
		discount = c.AmountOffCents
	}
	if discount > subtotalCents {
		discount = subtotalCents
	}
	return discount
}
