package repository

import "time"

// Cart is one customer's mutable pre-purchase basket.
type Cart struct {
	ID         string
	CustomerID string
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// CartItem is one cart line. Identity within a cart is (ProductID, Variant).
type CartItem struct {
	CartID         string
	ProductID      string
	Variant        string
	ProductName    string
	SKU            string
	Quantity       int32
	UnitPriceCents int64
	ImageURL       string
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// Product is the catalog read model consumed at add-to-cart and order time.
type Product struct {
	ID         string
	Name       string
	SKU        string
	PriceCents int64
	ImageURL   string
}

// InventoryLevel is the per product/variant stock counter.
// available = quantity - reserved, never negative.
type InventoryLevel struct {
	ProductID string
	Variant   string
	Quantity  int64
	Reserved  int64
	UpdatedAt time.Time
}

// Coupon is a discount code row.
type Coupon struct {
	Code           string
	PercentOff     int32
	AmountOffCents int64
	Active         bool
	ExpiresAt      *time.Time
}

// Order is the persisted order aggregate root. Addresses are stored as
// JSON documents; line items, history, and the payment live in their own
// tables.
type Order struct {
	ID              string
	OrderNumber     string
	CustomerID      string
	Status          string
	SubtotalCents   int64
	DiscountCents   int64
	ShippingCents   int64
	TaxCents        int64
	TotalCents      int64
	CouponCode      string
	Currency        string
	ShippingAddress []byte
	BillingAddress  []byte
	Notes           string
	Carrier         string
	TrackingNumber  string
	CancelReason    string
	CancelActor     string
	CancelledAt     *time.Time
	RefundStatus    string
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// OrderItem is an immutable order line snapshotted from the cart.
type OrderItem struct {
	ID             int64
	OrderID        string
	ProductID      string
	Variant        string
	ProductName    string
	SKU            string
	Quantity       int32
	UnitPriceCents int64
	LineTotalCents int64
}

// OrderStatusHistory is one entry of the append-only audit trail.
type OrderStatusHistory struct {
	ID        int64
	OrderID   string
	Status    string
	Note      string
	Actor     string
	CreatedAt time.Time
}

// Payment is the 1:1 payment record for an order.
type Payment struct {
	OrderID       string
	Method        string
	Status        string
	TransactionID string
	AmountCents   int64
	Currency      string
	PaidAt        *time.Time
	CreatedAt     time.Time
	UpdatedAt     time.Time
}
