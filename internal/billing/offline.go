package billing

import (
	"context"
	"time"
)

// OfflineProvider implements Provider for payment methods that settle outside
// any gateway: wallet transfers confirmed by an operator, and cash collected
// on delivery. Initiation is a no-op that leaves the payment pending; an
// operator marks it paid once the money actually arrives.
type OfflineProvider struct{}

// NewOfflineProvider creates a provider for out-of-band settlement.
func NewOfflineProvider() *OfflineProvider {
	return &OfflineProvider{}
}

// InitiatePayment returns a pending intent with no transaction. There is
// nothing to start; the money moves outside the system.
func (p *OfflineProvider) InitiatePayment(ctx context.Context, params InitiatePaymentParams) (*PaymentIntent, error) {
	return &PaymentIntent{
		Status:      StatusPending,
		AmountCents: params.AmountCents,
		Currency:    params.Currency,
		CreatedAt:   time.Now(),
	}, nil
}

// GetPayment has no gateway to ask.
func (p *OfflineProvider) GetPayment(ctx context.Context, transactionID string) (*PaymentIntent, error) {
	return nil, ErrTransactionNotFound
}

// Refund cannot move money back through a channel that was never used.
// Offline refunds are settled manually; the order records the refund state.
func (p *OfflineProvider) Refund(ctx context.Context, params RefundParams) (*Refund, error) {
	return nil, ErrNotRefundable
}

// VerifyWebhookSignature rejects everything; offline methods have no callbacks.
func (p *OfflineProvider) VerifyWebhookSignature(payload []byte, signature string) error {
	return ErrInvalidWebhookSignature
}
