package telemetry

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// BusinessMetrics holds Prometheus metrics for business-level observability
// of the cart and order lifecycle.
type BusinessMetrics struct {
	// Cart
	CartItemsAdded   *prometheus.CounterVec
	CartItemsRemoved *prometheus.CounterVec
	CartCleared      prometheus.Counter
	CartValue        prometheus.Histogram

	// Orders
	OrdersCreated     *prometheus.CounterVec
	OrderValue        prometheus.Histogram
	OrderItemCount    prometheus.Histogram
	OrderTransitions  *prometheus.CounterVec
	OrdersCancelled   *prometheus.CounterVec
	StockConflicts    prometheus.Counter
	OrderNumberRetry  prometheus.Counter

	// Payments
	PaymentCallbacks       *prometheus.CounterVec
	PaymentCallbackReplays prometheus.Counter
	PaymentsMarkedPaid     *prometheus.CounterVec
	RefundsOpened          prometheus.Counter
	GatewayInitFailures    prometheus.Counter

	// Reconcile worker
	ReconcileRuns     prometheus.Counter
	ReconcileResolved prometheus.Counter
}

// NewBusinessMetrics creates and registers all business metrics
func NewBusinessMetrics(namespace string) *BusinessMetrics {
	if namespace == "" {
		namespace = "verdandi"
	}

	subsystem := "business"

	return &BusinessMetrics{
		CartItemsAdded: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "cart_items_added_total",
				Help:      "Total cart line additions or merges",
			},
			[]string{"product_id"},
		),
		CartItemsRemoved: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "cart_items_removed_total",
				Help:      "Total cart line removals, including quantity-zero updates",
			},
			[]string{"product_id"},
		),
		CartCleared: promauto.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "cart_cleared_total",
				Help:      "Total explicit cart clears",
			},
		),
		CartValue: promauto.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "cart_value_cents",
				Help:      "Cart total at summary computation",
				Buckets:   prometheus.ExponentialBuckets(500, 2.5, 10),
			},
		),
		OrdersCreated: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "orders_created_total",
				Help:      "Total orders created from carts",
			},
			[]string{"payment_method"},
		),
		OrderValue: promauto.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "order_value_cents",
				Help:      "Order grand total at creation",
				Buckets:   prometheus.ExponentialBuckets(500, 2.5, 10),
			},
		),
		OrderItemCount: promauto.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "order_item_count",
				Help:      "Number of distinct lines per order",
				Buckets:   []float64{1, 2, 3, 5, 8, 13, 21},
			},
		),
		OrderTransitions: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "order_transitions_total",
				Help:      "Fulfillment status transitions, including rejected ones",
			},
			[]string{"from", "to", "outcome"},
		),
		OrdersCancelled: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "orders_cancelled_total",
				Help:      "Total order cancellations",
			},
			[]string{"actor"},
		),
		StockConflicts: promauto.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "stock_conflicts_total",
				Help:      "Checkouts rejected because stock ran out",
			},
		),
		OrderNumberRetry: promauto.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "order_number_retries_total",
				Help:      "Order number collisions that forced a regeneration",
			},
		),
		PaymentCallbacks: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "payment_callbacks_total",
				Help:      "Gateway callbacks applied to payments",
			},
			[]string{"status"},
		),
		PaymentCallbackReplays: promauto.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "payment_callback_replays_total",
				Help:      "Gateway callbacks ignored because the transaction was already processed",
			},
		),
		PaymentsMarkedPaid: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "payments_marked_paid_total",
				Help:      "Manual payment confirmations",
			},
			[]string{"method"},
		),
		RefundsOpened: promauto.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "refunds_opened_total",
				Help:      "Refund records opened by cancellation",
			},
		),
		GatewayInitFailures: promauto.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "gateway_init_failures_total",
				Help:      "Payment initiations that failed after order commit",
			},
		),
		ReconcileRuns: promauto.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "reconcile_runs_total",
				Help:      "Stale payment reconcile sweeps",
			},
		),
		ReconcileResolved: promauto.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "reconcile_resolved_total",
				Help:      "Stale payments resolved by re-polling the gateway",
			},
		),
	}
}
