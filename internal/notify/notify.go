package notify

import "context"

// Event subjects published on the order lifecycle.
const (
	SubjectOrderCreated     = "orders.created"
	SubjectOrderConfirmed   = "orders.confirmed"
	SubjectOrderShipped     = "orders.shipped"
	SubjectOrderDelivered   = "orders.delivered"
	SubjectOrderCancelled   = "orders.cancelled"
	SubjectPaymentSucceeded = "payments.succeeded"
	SubjectPaymentFailed    = "payments.failed"
	SubjectRefundOpened     = "payments.refund_opened"
)

// OrderEvent is the payload published for every lifecycle notification.
// Consumers (email, analytics, ERP sync) subscribe by subject.
type OrderEvent struct {
	OrderID     string `json:"order_id"`
	OrderNumber string `json:"order_number"`
	CustomerID  string `json:"customer_id"`
	Status      string `json:"status"`
	TotalCents  int64  `json:"total_cents,omitempty"`
	Actor       string `json:"actor,omitempty"`
	Note        string `json:"note,omitempty"`
}

// Publisher emits lifecycle events. Publishing is fire-and-forget: the
// lifecycle never fails or blocks because a notification could not be
// delivered.
type Publisher interface {
	Publish(ctx context.Context, subject string, event OrderEvent)
	Close()
}
