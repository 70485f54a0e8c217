package domain

import (
	"context"
	"time"
)

// Order domain errors.
var (
	ErrOrderNotFound           = &Error{Code: ENOTFOUND, Message: "Order not found"}
	ErrInsufficientStock       = &Error{Code: ECONFLICT, Message: "Insufficient stock for one or more items"}
	ErrInvalidStateTransition  = &Error{Code: ECONFLICT, Message: "Invalid order state transition"}
	ErrNotCancellable          = &Error{Code: ECONFLICT, Message: "Order can no longer be cancelled"}
	ErrPaymentAlreadyProcessed = &Error{Code: ECONFLICT, Message: "Payment transaction already processed"}
	ErrPaymentRequired         = &Error{Code: EPAYMENT, Message: "Order cannot proceed until payment is received"}
	ErrMissingShippingAddress  = &Error{Code: EINVALID, Message: "Shipping address is required"}
	ErrMissingPaymentMethod    = &Error{Code: EINVALID, Message: "Payment method is required"}
)

// OrderStatus is the fulfillment status of an order. The happy path is
// forward-only; cancelled and refunded are side exits.
type OrderStatus string

const (
	OrderPending    OrderStatus = "pending"
	OrderConfirmed  OrderStatus = "confirmed"
	OrderProcessing OrderStatus = "processing"
	OrderShipped    OrderStatus = "shipped"
	OrderDelivered  OrderStatus = "delivered"
	OrderCancelled  OrderStatus = "cancelled"
	OrderRefunded   OrderStatus = "refunded"
)

// orderTransitions is the explicit allowed-transition table. Anything not
// listed fails before any persistence attempt.
var orderTransitions = map[OrderStatus][]OrderStatus{
	OrderPending:    {OrderConfirmed, OrderCancelled},
	OrderConfirmed:  {OrderProcessing, OrderCancelled},
	OrderProcessing: {OrderShipped, OrderCancelled},
	OrderShipped:    {OrderDelivered},
	OrderDelivered:  {OrderRefunded},
	OrderCancelled:  {},
	OrderRefunded:   {},
}

// Valid reports whether s is a known order status.
func (s OrderStatus) Valid() bool {
	_, ok := orderTransitions[s]
	return ok
}

// CanTransitionTo reports whether the transition s -> next is allowed.
func (s OrderStatus) CanTransitionTo(next OrderStatus) bool {
	for _, t := range orderTransitions[s] {
		if t == next {
			return true
		}
	}
	return false
}

// Terminal reports whether s admits no further transitions except the
// explicit delivered -> refunded exit.
func (s OrderStatus) Terminal() bool {
	return len(orderTransitions[s]) == 0
}

// Cancellable reports whether an order in this status may still be cancelled.
func (s OrderStatus) Cancellable() bool {
	return s.CanTransitionTo(OrderCancelled)
}

// PaymentStatus is the payment state of an order, independent of the
// fulfillment status.
type PaymentStatus string

const (
	PaymentPending       PaymentStatus = "pending"
	PaymentPaid          PaymentStatus = "paid"
	PaymentFailed        PaymentStatus = "failed"
	PaymentRefunded      PaymentStatus = "refunded"
	PaymentPartialRefund PaymentStatus = "partial_refund"
)

var paymentTransitions = map[PaymentStatus][]PaymentStatus{
	PaymentPending:       {PaymentPaid, PaymentFailed},
	PaymentPaid:          {PaymentRefunded, PaymentPartialRefund},
	PaymentFailed:        {},
	PaymentRefunded:      {},
	PaymentPartialRefund: {},
}

// Valid reports whether s is a known payment status.
func (s PaymentStatus) Valid() bool {
	_, ok := paymentTransitions[s]
	return ok
}

// CanTransitionTo reports whether the transition s -> next is allowed.
func (s PaymentStatus) CanTransitionTo(next PaymentStatus) bool {
	for _, t := range paymentTransitions[s] {
		if t == next {
			return true
		}
	}
	return false
}

// PaymentMethod is the closed set of accepted payment methods.
type PaymentMethod string

const (
	MethodWalletTransfer PaymentMethod = "wallet_transfer"
	MethodCard           PaymentMethod = "card"
	MethodCashOnDelivery PaymentMethod = "cash_on_delivery"
)

// Valid reports whether m is a known payment method.
func (m PaymentMethod) Valid() bool {
	switch m {
	case MethodWalletTransfer, MethodCard, MethodCashOnDelivery:
		return true
	}
	return false
}

// Address is a postal address embedded in an order.
type Address struct {
	FullName   string `json:"full_name"`
	Line1      string `json:"line1"`
	Line2      string `json:"line2,omitempty"`
	City       string `json:"city"`
	State      string `json:"state,omitempty"`
	PostalCode string `json:"postal_code"`
	Country    string `json:"country"`
	Phone      string `json:"phone,omitempty"`
}

// Empty reports whether the address carries no usable data.
func (a Address) Empty() bool {
	return a.Line1 == "" && a.City == "" && a.PostalCode == ""
}

// OrderItem is a line snapshotted from the cart at order creation. Name,
// SKU, and price are frozen here; later catalog changes never touch them.
type OrderItem struct {
	ProductID      string
	Variant        string
	ProductName    string
	SKU            string
	Quantity       int
	UnitPriceCents int64
	LineTotalCents int64
}

// Payment is the payment sub-record embedded in an order. It evolves on its
// own state machine independent of the order's fulfillment status.
type Payment struct {
	Method        PaymentMethod
	Status        PaymentStatus
	TransactionID string
	AmountCents   int64
	Currency      string
	PaidAt        *time.Time
}

// StatusChange is one entry in an order's append-only audit trail.
type StatusChange struct {
	Status OrderStatus
	Note   string
	Actor  string
	At     time.Time
}

// Tracking carries shipment tracking info recorded on the shipped transition.
type Tracking struct {
	Carrier        string
	TrackingNumber string
}

// RefundStatus tracks state of a refund opened by the cancellation workflow.
// Settlement is delegated to the payment gateway; only state is tracked here.
const (
	RefundNone    = ""
	RefundPending = "pending"
	RefundDone    = "completed"
)

// Cancellation records why and by whom an order was cancelled.
type Cancellation struct {
	Reason       string
	Actor        string
	At           time.Time
	RefundStatus string
}

// Order is the immutable-line-item aggregate created from one cart snapshot.
// It is mutated only through the state machines and the cancellation
// workflow, and never deleted.
type Order struct {
	ID          string
	OrderNumber string
	CustomerID  string

	Items           []OrderItem
	ShippingAddress Address
	BillingAddress  Address

	SubtotalCents int64
	DiscountCents int64
	ShippingCents int64
	TaxCents      int64
	TotalCents    int64
	CouponCode    string
	Currency      string

	Status       OrderStatus
	Payment      Payment
	Tracking     *Tracking
	History      []StatusChange
	Cancellation *Cancellation
	Notes        string

	CreatedAt time.Time
	UpdatedAt time.Time
}

// CreateOrderParams contains the checkout input for the order factory.
type CreateOrderParams struct {
	CustomerID      string
	ShippingAddress Address
	// BillingAddress defaults to the shipping address when empty.
	BillingAddress Address
	PaymentMethod  PaymentMethod
	Notes          string
	CouponCode     string
}

// OrderService converts carts into orders and reads them back.
type OrderService interface {
	// CreateOrder converts the customer's cart into a pending order.
	// Prices and availability are re-validated against the catalog at this
	// instant; stock is reserved atomically across all lines.
	CreateOrder(ctx context.Context, params CreateOrderParams) (*Order, error)

	// GetOrder retrieves a single order by ID.
	GetOrder(ctx context.Context, orderID string) (*Order, error)

	// GetOrderByNumber retrieves a single order by its order number.
	GetOrderByNumber(ctx context.Context, orderNumber string) (*Order, error)

	// ListOrders lists a customer's orders, newest first.
	ListOrders(ctx context.Context, customerID string) ([]Order, error)
}

// TransitionParams contains input for a fulfillment status transition.
type TransitionParams struct {
	OrderID string
	To      OrderStatus
	Note    string
	Actor   string
	// Tracking is recorded when transitioning to shipped.
	Tracking *Tracking
}

// OrderStatusService drives the fulfillment state machine.
type OrderStatusService interface {
	// Transition moves an order along the allowed-transition table and
	// appends the change to the audit trail. Invalid transitions fail with
	// ErrInvalidStateTransition and leave state unchanged.
	Transition(ctx context.Context, params TransitionParams) (*Order, error)
}

// GatewayResult is the payload of a payment gateway callback.
type GatewayResult struct {
	TransactionID string
	Status        PaymentStatus
	AmountCents   int64
}

// PaymentService drives the payment state machine.
type PaymentService interface {
	// ApplyGatewayResult applies a gateway callback. Idempotent per
	// transaction ID: replays return the current order without re-applying.
	ApplyGatewayResult(ctx context.Context, result GatewayResult) (*Order, error)

	// MarkPaid records a manual payment confirmation (admin action, e.g.
	// a verified wallet transfer or cash collected on delivery).
	MarkPaid(ctx context.Context, orderID, transactionID, actor string) (*Order, error)
}

// CancellationService validates and executes order cancellation.
type CancellationService interface {
	// Cancel cancels an order that has not shipped, releases its reserved
	// stock exactly once, and opens a refund record when payment was taken.
	Cancel(ctx context.Context, orderID, reason, actor string) (*Order, error)
}
