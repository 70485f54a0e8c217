package billing

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/stripe/stripe-go/v82"
	"github.com/stripe/stripe-go/v82/paymentintent"
	"github.com/stripe/stripe-go/v82/refund"
	"github.com/stripe/stripe-go/v82/webhook"
)

// StripeProvider implements Provider using Stripe PaymentIntents.
type StripeProvider struct {
	webhookSecret string
}

// NewStripeProvider creates a new Stripe billing provider. The API key is
// set process-wide, matching how the Stripe SDK manages its default client.
func NewStripeProvider(apiKey, webhookSecret string) (*StripeProvider, error) {
	if apiKey == "" {
		return nil, ErrInvalidAPIKey
	}
	stripe.Key = apiKey
	return &StripeProvider{webhookSecret: webhookSecret}, nil
}

// InitiatePayment creates a Stripe payment intent for the order.
func (s *StripeProvider) InitiatePayment(ctx context.Context, params InitiatePaymentParams) (*PaymentIntent, error) {
	piParams := &stripe.PaymentIntentParams{
		Amount:      stripe.Int64(params.AmountCents),
		Currency:    stripe.String(params.Currency),
		Description: stripe.String(params.Description),
	}
	piParams.Context = ctx
	if params.IdempotencyKey != "" {
		piParams.SetIdempotencyKey(params.IdempotencyKey)
	}
	piParams.AddMetadata("order_id", params.OrderID)
	piParams.AddMetadata("order_number", params.OrderNumber)
	piParams.AddMetadata("customer_id", params.CustomerID)

	pi, err := paymentintent.New(piParams)
	if err != nil {
		return nil, fmt.Errorf("stripe: create payment intent: %w", err)
	}
	return fromStripeIntent(pi), nil
}

// GetPayment retrieves a payment intent by its transaction ID.
func (s *StripeProvider) GetPayment(ctx context.Context, transactionID string) (*PaymentIntent, error) {
	piParams := &stripe.PaymentIntentParams{}
	piParams.Context = ctx
	pi, err := paymentintent.Get(transactionID, piParams)
	if err != nil {
		var stripeErr *stripe.Error
		if errors.As(err, &stripeErr) && stripeErr.Code == stripe.ErrorCodeResourceMissing {
			return nil, ErrTransactionNotFound
		}
		return nil, fmt.Errorf("stripe: get payment intent: %w", err)
	}
	return fromStripeIntent(pi), nil
}

// Refund refunds a settled payment intent, in full when AmountCents is zero.
func (s *StripeProvider) Refund(ctx context.Context, params RefundParams) (*Refund, error) {
	refundParams := &stripe.RefundParams{
		PaymentIntent: stripe.String(params.TransactionID),
	}
	refundParams.Context = ctx
	if params.AmountCents > 0 {
		refundParams.Amount = stripe.Int64(params.AmountCents)
	}
	if params.Reason != "" {
		refundParams.AddMetadata("reason", params.Reason)
	}

	r, err := refund.New(refundParams)
	if err != nil {
		return nil, fmt.Errorf("stripe: create refund: %w", err)
	}
	return &Refund{
		ID:          r.ID,
		Status:      string(r.Status),
		AmountCents: r.Amount,
	}, nil
}

// VerifyWebhookSignature verifies a Stripe webhook signature.
func (s *StripeProvider) VerifyWebhookSignature(payload []byte, signature string) error {
	if _, err := webhook.ConstructEvent(payload, signature, s.webhookSecret); err != nil {
		return ErrInvalidWebhookSignature
	}
	return nil
}

func fromStripeIntent(pi *stripe.PaymentIntent) *PaymentIntent {
	return &PaymentIntent{
		TransactionID: pi.ID,
		Status:        mapStripeStatus(pi.Status),
		AmountCents:   pi.Amount,
		Currency:      string(pi.Currency),
		ClientSecret:  pi.ClientSecret,
		CreatedAt:     time.Unix(pi.Created, 0),
	}
}

func mapStripeStatus(status stripe.PaymentIntentStatus) string {
	switch status {
	case stripe.PaymentIntentStatusSucceeded:
		return StatusSucceeded
	case stripe.PaymentIntentStatusCanceled:
		return StatusFailed
	default:
		// requires_payment_method, requires_confirmation, requires_action,
		// processing: all still awaiting settlement.
		return StatusPending
	}
}
