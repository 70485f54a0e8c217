package domain

import (
	"context"
	"fmt"
	"strings"
)

// Inventory domain errors.
var (
	ErrStockNotFound = &Error{Code: ENOTFOUND, Message: "No stock record for product"}
)

// StockLine names a quantity of one product/variant, as used by
// reservations and releases.
type StockLine struct {
	ProductID string
	Variant   string
	Quantity  int
}

// StockShortage describes one line that failed availability.
type StockShortage struct {
	ProductID string
	Variant   string
	Requested int
	Available int64
}

func (s StockShortage) String() string {
	if s.Variant != "" {
		return fmt.Sprintf("%s (%s): requested %d, available %d", s.ProductID, s.Variant, s.Requested, s.Available)
	}
	return fmt.Sprintf("%s: requested %d, available %d", s.ProductID, s.Requested, s.Available)
}

// InsufficientStock creates an ErrInsufficientStock-coded error naming every
// failing line, so checkout rejections can explain which item failed and why.
func InsufficientStock(op string, shortages []StockShortage) error {
	parts := make([]string, len(shortages))
	for i, s := range shortages {
		parts[i] = s.String()
	}
	return &Error{
		Code:    ECONFLICT,
		Op:      op,
		Message: "Insufficient stock: " + strings.Join(parts, "; "),
	}
}

// InventoryService is the only component allowed to mutate stock counters.
// All decrements are conditional at the data-store layer so concurrent
// demand can never oversell.
type InventoryService interface {
	// CheckAvailability returns the available count for a product/variant.
	// Read-only; used by the cart store and pre-checkout validation.
	CheckAvailability(ctx context.Context, productID, variant string) (int64, error)

	// ReserveAndDecrement atomically decrements stock for every line, or
	// for none of them. On failure it returns an insufficient-stock error
	// naming the failing line(s) and leaves no partial decrement behind.
	ReserveAndDecrement(ctx context.Context, lines []StockLine) error

	// Release restores stock for the given lines. Callers guard idempotency
	// through order state: at most one release per order.
	Release(ctx context.Context, lines []StockLine) error
}
