package billing

import (
	"context"
	"time"
)

// Payment statuses as reported by a gateway. These are the gateway's view;
// mapping onto the order's payment state machine happens in the service
// layer.
const (
	StatusPending   = "pending"
	StatusSucceeded = "succeeded"
	StatusFailed    = "failed"
)

// Provider defines the interface for payment processing.
// Implementations can use Stripe, an offline settlement flow, or a mock.
type Provider interface {
	// InitiatePayment starts a payment for an order. For online providers
	// this creates a gateway transaction and returns its ID; callbacks then
	// report the outcome. Offline providers (wallet transfer, cash on
	// delivery) return a pending intent with no transaction and settle
	// through manual confirmation instead.
	InitiatePayment(ctx context.Context, params InitiatePaymentParams) (*PaymentIntent, error)

	// GetPayment retrieves the current gateway state of a transaction.
	// Used by the reconcile worker for payments whose callback never arrived.
	GetPayment(ctx context.Context, transactionID string) (*PaymentIntent, error)

	// Refund refunds a settled payment. AmountCents of zero refunds in full.
	Refund(ctx context.Context, params RefundParams) (*Refund, error)

	// VerifyWebhookSignature verifies that a callback request is authentic.
	VerifyWebhookSignature(payload []byte, signature string) error
}

// InitiatePaymentParams contains parameters for starting a payment.
type InitiatePaymentParams struct {
	// AmountCents is the amount in the smallest currency unit.
	AmountCents int64

	// Currency code (ISO 4217), e.g. "usd".
	Currency string

	// OrderID and OrderNumber are attached as gateway metadata so callbacks
	// and dashboard entries can be traced back to the order.
	OrderID     string
	OrderNumber string

	CustomerID string

	// Description appears on the customer's statement.
	Description string

	// IdempotencyKey prevents duplicate gateway transactions. The order ID
	// serves here: one order, at most one initiated payment.
	IdempotencyKey string
}

// PaymentIntent represents a gateway payment transaction.
type PaymentIntent struct {
	TransactionID string
	Status        string
	AmountCents   int64
	Currency      string

	// ClientSecret is handed to the frontend to confirm the payment.
	// Empty for offline providers.
	ClientSecret string

	CreatedAt time.Time
}

// RefundParams contains parameters for refunding a payment.
type RefundParams struct {
	TransactionID string
	// AmountCents of zero means refund the full amount.
	AmountCents int64
	Reason      string
}

// Refund represents a gateway refund.
type Refund struct {
	ID          string
	Status      string
	AmountCents int64
}
