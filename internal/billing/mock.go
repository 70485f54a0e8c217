package billing

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// MockProvider is a mock billing provider for testing.
// Simulates gateway flows without calling any payment API.
type MockProvider struct {
	// InitiatePaymentFunc allows customizing payment initiation behavior
	InitiatePaymentFunc func(ctx context.Context, params InitiatePaymentParams) (*PaymentIntent, error)

	// GetPaymentFunc allows customizing payment retrieval behavior
	GetPaymentFunc func(ctx context.Context, transactionID string) (*PaymentIntent, error)

	// RefundFunc allows customizing refund behavior
	RefundFunc func(ctx context.Context, params RefundParams) (*Refund, error)

	// VerifyWebhookSignatureFunc allows customizing webhook verification behavior
	VerifyWebhookSignatureFunc func(payload []byte, signature string) error

	// PaymentIntents stores created payment intents for retrieval
	PaymentIntents map[string]*PaymentIntent

	// Refunds stores issued refunds keyed by transaction ID
	Refunds map[string]*Refund

	// CallLog tracks method calls for test assertions
	CallLog []string
}

// NewMockProvider creates a new mock billing provider.
func NewMockProvider() *MockProvider {
	return &MockProvider{
		PaymentIntents: make(map[string]*PaymentIntent),
		Refunds:        make(map[string]*Refund),
		CallLog:        []string{},
	}
}

// InitiatePayment creates a mock pending payment intent.
func (m *MockProvider) InitiatePayment(ctx context.Context, params InitiatePaymentParams) (*PaymentIntent, error) {
	m.CallLog = append(m.CallLog, fmt.Sprintf("InitiatePayment(%s, %d)", params.OrderID, params.AmountCents))

	if m.InitiatePaymentFunc != nil {
		return m.InitiatePaymentFunc(ctx, params)
	}

	pi := &PaymentIntent{
		TransactionID: "txn_" + uuid.NewString(),
		Status:        StatusPending,
		AmountCents:   params.AmountCents,
		Currency:      params.Currency,
		ClientSecret:  "txn_secret_" + uuid.NewString(),
		CreatedAt:     time.Now(),
	}
	m.PaymentIntents[pi.TransactionID] = pi
	return pi, nil
}

// GetPayment retrieves a mock payment intent.
func (m *MockProvider) GetPayment(ctx context.Context, transactionID string) (*PaymentIntent, error) {
	m.CallLog = append(m.CallLog, fmt.Sprintf("GetPayment(%s)", transactionID))

	if m.GetPaymentFunc != nil {
		return m.GetPaymentFunc(ctx, transactionID)
	}

	pi, exists := m.PaymentIntents[transactionID]
	if !exists {
		return nil, ErrTransactionNotFound
	}
	return pi, nil
}

// Refund records a mock refund for the transaction.
func (m *MockProvider) Refund(ctx context.Context, params RefundParams) (*Refund, error) {
	m.CallLog = append(m.CallLog, fmt.Sprintf("Refund(%s, %d)", params.TransactionID, params.AmountCents))

	if m.RefundFunc != nil {
		return m.RefundFunc(ctx, params)
	}

	r := &Refund{
		ID:          "re_" + uuid.NewString(),
		Status:      StatusSucceeded,
		AmountCents: params.AmountCents,
	}
	m.Refunds[params.TransactionID] = r
	return r, nil
}

// VerifyWebhookSignature accepts any non-empty signature by default.
func (m *MockProvider) VerifyWebhookSignature(payload []byte, signature string) error {
	m.CallLog = append(m.CallLog, "VerifyWebhookSignature")

	if m.VerifyWebhookSignatureFunc != nil {
		return m.VerifyWebhookSignatureFunc(payload, signature)
	}
	if signature == "" {
		return ErrInvalidWebhookSignature
	}
	return nil
}
