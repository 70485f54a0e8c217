package worker

import (
	"context"
	"log/slog"
	"time"

	"github.com/dukerupert/verdandi/internal/billing"
	"github.com/dukerupert/verdandi/internal/domain"
	"github.com/dukerupert/verdandi/internal/repository"
	"github.com/dukerupert/verdandi/internal/telemetry"
)

// Reconciler re-polls the gateway for payments that were initiated but
// never received a callback. Lost webhooks are the normal failure mode of
// callback-driven payment flows; this worker closes the loop.
type Reconciler struct {
	store    repository.Store
	gateway  billing.Provider
	payments domain.PaymentService
	metrics  *telemetry.BusinessMetrics
	logger   *slog.Logger

	// Interval between sweeps.
	Interval time.Duration

	// StaleAfter is how long a pending payment may sit before it is
	// re-polled. Must comfortably exceed normal callback latency.
	StaleAfter time.Duration
}

// NewReconciler creates a reconcile worker with sane defaults.
func NewReconciler(store repository.Store, gateway billing.Provider, payments domain.PaymentService, metrics *telemetry.BusinessMetrics, logger *slog.Logger) *Reconciler {
	return &Reconciler{
		store:      store,
		gateway:    gateway,
		payments:   payments,
		metrics:    metrics,
		logger:     logger,
		Interval:   time.Minute,
		StaleAfter: 15 * time.Minute,
	}
}

// Run sweeps until the context is cancelled.
func (r *Reconciler) Run(ctx context.Context) {
	ticker := time.NewTicker(r.Interval)
	defer ticker.Stop()

	r.logger.Info("payment reconciler started",
		"interval", r.Interval,
		"stale_after", r.StaleAfter,
	)
	for {
		select {
		case <-ctx.Done():
			r.logger.Info("payment reconciler stopped")
			return
		case <-ticker.C:
			r.Sweep(ctx)
		}
	}
}

// Sweep runs one reconcile pass.
func (r *Reconciler) Sweep(ctx context.Context) {
	r.metrics.ReconcileRuns.Inc()

	stale, err := r.store.ListStalePendingPayments(ctx, time.Now().Add(-r.StaleAfter))
	if err != nil {
		r.logger.Error("reconcile: listing stale payments failed", "error", err)
		return
	}

	for _, payment := range stale {
		if err := r.reconcileOne(ctx, payment); err != nil {
			r.logger.Warn("reconcile: payment unresolved",
				"order_id", payment.OrderID,
				"transaction_id", payment.TransactionID,
				"error", err,
			)
		}
	}
}

func (r *Reconciler) reconcileOne(ctx context.Context, payment repository.Payment) error {
	intent, err := r.gateway.GetPayment(ctx, payment.TransactionID)
	if err != nil {
		return err
	}

	var status domain.PaymentStatus
	switch intent.Status {
	case billing.StatusSucceeded:
		status = domain.PaymentPaid
	case billing.StatusFailed:
		status = domain.PaymentFailed
	default:
		// Still genuinely pending at the gateway; leave it for a later sweep.
		return nil
	}

	if _, err := r.payments.ApplyGatewayResult(ctx, domain.GatewayResult{
		TransactionID: payment.TransactionID,
		Status:        status,
		AmountCents:   intent.AmountCents,
	}); err != nil {
		return err
	}

	r.metrics.ReconcileResolved.Inc()
	r.logger.Info("reconcile: payment resolved",
		"order_id", payment.OrderID,
		"transaction_id", payment.TransactionID,
		"status", status,
	)
	return nil
}
