package billing

import "errors"

var (
	// ErrInvalidAPIKey is returned when the gateway API key is invalid or missing.
	ErrInvalidAPIKey = errors.New("billing: invalid or missing API key")

	// ErrTransactionNotFound is returned when the gateway transaction does not exist.
	ErrTransactionNotFound = errors.New("billing: transaction not found")

	// ErrPaymentFailed is returned when the gateway rejects the payment (card declined, etc.)
	ErrPaymentFailed = errors.New("billing: payment failed")

	// ErrInvalidWebhookSignature is returned when callback signature verification fails.
	ErrInvalidWebhookSignature = errors.New("billing: invalid webhook signature")

	// ErrRefundFailed is returned when the gateway cannot process a refund.
	ErrRefundFailed = errors.New("billing: refund failed")

	// ErrNotRefundable is returned when refunding a payment the provider never settled,
	// e.g. an offline payment that was not collected.
	ErrNotRefundable = errors.New("billing: payment not refundable through provider")
)
