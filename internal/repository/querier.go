package repository

import (
	"context"
	"time"
)

// CreateCartParams contains parameters for creating a cart.
type CreateCartParams struct {
	ID         string
	CustomerID string
}

// CartItemKeyParams identifies one cart line.
type CartItemKeyParams struct {
	CartID    string
	ProductID string
	Variant   string
}

// UpsertCartItemParams contains parameters for adding or merging a cart line.
type UpsertCartItemParams struct {
	CartID         string
	ProductID      string
	Variant        string
	ProductName    string
	SKU            string
	Quantity       int32
	UnitPriceCents int64
	ImageURL       string
}

// SetCartItemQuantityParams contains parameters for an absolute quantity set.
type SetCartItemQuantityParams struct {
	CartID    string
	ProductID string
	Variant   string
	Quantity  int32
}

// StockKeyParams identifies one inventory counter.
type StockKeyParams struct {
	ProductID string
	Variant   string
}

// AdjustStockParams contains parameters for a stock decrement or restore.
type AdjustStockParams struct {
	ProductID string
	Variant   string
	Quantity  int64
}

// UpsertInventoryLevelParams contains parameters for seeding a stock counter.
type UpsertInventoryLevelParams struct {
	ProductID string
	Variant   string
	Quantity  int64
}

// CreateOrderParams contains parameters for persisting a new order.
type CreateOrderParams struct {
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
}

// CreateOrderItemParams contains parameters for one immutable order line.
type CreateOrderItemParams struct {
	OrderID        string
	ProductID      string
	Variant        string
	ProductName    string
	SKU            string
	Quantity       int32
	UnitPriceCents int64
	LineTotalCents int64
}

// UpdateOrderStatusParams is a conditional status update: the write only
// lands when the order is still in FromStatus.
type UpdateOrderStatusParams struct {
	ID         string
	Status     string
	FromStatus string
}

// SetOrderTrackingParams contains shipment tracking info.
type SetOrderTrackingParams struct {
	ID             string
	Carrier        string
	TrackingNumber string
}

// SetOrderCancellationParams records the cancellation on the order row.
type SetOrderCancellationParams struct {
	ID           string
	Reason       string
	Actor        string
	RefundStatus string
}

// SetOrderRefundStatusParams updates refund progress on a cancelled or
// refunded order.
type SetOrderRefundStatusParams struct {
	ID           string
	RefundStatus string
}

// AppendOrderStatusHistoryParams appends one audit trail entry.
type AppendOrderStatusHistoryParams struct {
	OrderID string
	Status  string
	Note    string
	Actor   string
}

// CreatePaymentParams contains parameters for the order's payment record.
type CreatePaymentParams struct {
	OrderID       string
	Method        string
	Status        string
	TransactionID string
	AmountCents   int64
	Currency      string
}

// UpdatePaymentStatusParams is a conditional payment status update: the
// write only lands when the payment is still in FromStatus.
type UpdatePaymentStatusParams struct {
	OrderID       string
	Status        string
	FromStatus    string
	TransactionID string
	PaidAt        *time.Time
}

// SetPaymentTransactionIDParams links a gateway transaction to a payment.
type SetPaymentTransactionIDParams struct {
	OrderID       string
	TransactionID string
}

// Querier is the full query surface of the store. Conditional updates
// (stock decrement, status CAS) return the number of rows affected so
// callers can detect a lost race without a second read.
type Querier interface {
	// Carts
	GetCartByCustomer(ctx context.Context, customerID string) (Cart, error)
	CreateCart(ctx context.Context, arg CreateCartParams) (Cart, error)
	GetCartItems(ctx context.Context, cartID string) ([]CartItem, error)
	UpsertCartItem(ctx context.Context, arg UpsertCartItemParams) (CartItem, error)
	SetCartItemQuantity(ctx context.Context, arg SetCartItemQuantityParams) error
	RemoveCartItem(ctx context.Context, arg CartItemKeyParams) error
	ClearCart(ctx context.Context, cartID string) error

	// Catalog & coupons
	GetProduct(ctx context.Context, productID string) (Product, error)
	GetCouponByCode(ctx context.Context, code string) (Coupon, error)

	// Inventory
	GetInventoryLevel(ctx context.Context, arg StockKeyParams) (InventoryLevel, error)
	UpsertInventoryLevel(ctx context.Context, arg UpsertInventoryLevelParams) error
	DecrementStock(ctx context.Context, arg AdjustStockParams) (int64, error)
	RestoreStock(ctx context.Context, arg AdjustStockParams) error

	// Orders
	CreateOrder(ctx context.Context, arg CreateOrderParams) (Order, error)
	CreateOrderItem(ctx context.Context, arg CreateOrderItemParams) (OrderItem, error)
	GetOrder(ctx context.Context, orderID string) (Order, error)
	GetOrderForUpdate(ctx context.Context, orderID string) (Order, error)
	GetOrderByNumber(ctx context.Context, orderNumber string) (Order, error)
	ListOrdersByCustomer(ctx context.Context, customerID string) ([]Order, error)
	GetOrderItems(ctx context.Context, orderID string) ([]OrderItem, error)
	UpdateOrderStatus(ctx context.Context, arg UpdateOrderStatusParams) (int64, error)
	SetOrderTracking(ctx context.Context, arg SetOrderTrackingParams) error
	SetOrderCancellation(ctx context.Context, arg SetOrderCancellationParams) error
	SetOrderRefundStatus(ctx context.Context, arg SetOrderRefundStatusParams) error
	AppendOrderStatusHistory(ctx context.Context, arg AppendOrderStatusHistoryParams) (OrderStatusHistory, error)
	GetOrderStatusHistory(ctx context.Context, orderID string) ([]OrderStatusHistory, error)

	// Payments
	CreatePayment(ctx context.Context, arg CreatePaymentParams) (Payment, error)
	GetPaymentByOrder(ctx context.Context, orderID string) (Payment, error)
	GetPaymentByTransactionID(ctx context.Context, transactionID string) (Payment, error)
	UpdatePaymentStatus(ctx context.Context, arg UpdatePaymentStatusParams) (int64, error)
	SetPaymentTransactionID(ctx context.Context, arg SetPaymentTransactionIDParams) error
	ListStalePendingPayments(ctx context.Context, olderThan time.Time) ([]Payment, error)
}

// Store is a Querier that can also run a function inside one data-store
// transaction. Multi-step invariants (reserve-then-create, cancel-and-
// release) go through ExecTx so they commit or roll back as a unit.
type Store interface {
	Querier
	ExecTx(ctx context.Context, fn func(Querier) error) error
}

var _ Store = (*SQLStore)(nil)
