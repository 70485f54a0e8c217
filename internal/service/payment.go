package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/dukerupert/verdandi/internal/domain"
	"github.com/dukerupert/verdandi/internal/notify"
	"github.com/dukerupert/verdandi/internal/repository"
	"github.com/dukerupert/verdandi/internal/telemetry"
)

type paymentService struct {
	store   repository.Store
	events  notify.Publisher
	metrics *telemetry.BusinessMetrics
	logger  *slog.Logger
}

// NewPaymentService creates the payment state machine driver.
func NewPaymentService(store repository.Store, events notify.Publisher, metrics *telemetry.BusinessMetrics, logger *slog.Logger) domain.PaymentService {
	return &paymentService{
		store:   store,
		events:  events,
		metrics: metrics,
		logger:  logger,
	}
}

// ApplyGatewayResult applies a gateway callback to the payment it names.
//
// Idempotency is per transaction ID: the conditional update only lands while
// the payment is still pending, so a replayed or raced callback falls
// through to the already-settled order without modifying anything.
//
// A successful payment confirms a pending order. If the order left pending
// before the callback arrived (cancelled mid-flight), the payment outcome is
// still recorded and the mismatch is logged for the refund workflow.
func (s *paymentService) ApplyGatewayResult(ctx context.Context, result domain.GatewayResult) (*domain.Order, error) {
	const op = "payment.ApplyGatewayResult"

	if result.TransactionID == "" {
		return nil, domain.Invalid(op, "Transaction ID is required")
	}
	if result.Status != domain.PaymentPaid && result.Status != domain.PaymentFailed {
		return nil, domain.Invalid(op, "Callback status must be paid or failed")
	}

	var (
		out      *domain.Order
		replayed bool
	)
	err := s.store.ExecTx(ctx, func(q repository.Querier) error {
		payment, err := q.GetPaymentByTransactionID(ctx, result.TransactionID)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return domain.NotFound(op, "Payment transaction", result.TransactionID)
			}
			return domain.Internal(err, op, "Failed to load payment")
		}

		order, err := q.GetOrderForUpdate(ctx, payment.OrderID)
		if err != nil {
			return domain.Internal(err, op, "Failed to load order")
		}

		if domain.PaymentStatus(payment.Status) != domain.PaymentPending {
			replayed = true
			out, err = reloadOrder(ctx, q, order.ID)
			return err
		}

		if result.AmountCents != 0 && result.AmountCents != payment.AmountCents {
			s.logger.Warn("gateway amount differs from payment record",
				"order_id", order.ID,
				"transaction_id", result.TransactionID,
				"expected_cents", payment.AmountCents,
				"reported_cents", result.AmountCents,
			)
		}

		var paidAt *time.Time
		if result.Status == domain.PaymentPaid {
			now := time.Now()
			paidAt = &now
		}
		affected, err := q.UpdatePaymentStatus(ctx, repository.UpdatePaymentStatusParams{
			OrderID:       order.ID,
			Status:        string(result.Status),
			FromStatus:    string(domain.PaymentPending),
			TransactionID: result.TransactionID,
			PaidAt:        paidAt,
		})
		if err != nil {
			return domain.Internal(err, op, "Failed to update payment status")
		}
		if affected == 0 {
			replayed = true
			out, err = reloadOrder(ctx, q, order.ID)
			return err
		}

		if result.Status == domain.PaymentPaid {
			if err := confirmOrder(ctx, q, op, order, "Payment received", "gateway"); err != nil {
				return err
			}
		}

		out, err = reloadOrder(ctx, q, order.ID)
		return err
	})
	if err != nil {
		return nil, err
	}

	if replayed {
		s.metrics.PaymentCallbackReplays.Inc()
		return out, nil
	}
	s.metrics.PaymentCallbacks.WithLabelValues(string(result.Status)).Inc()

	subject := notify.SubjectPaymentFailed
	if result.Status == domain.PaymentPaid {
		subject = notify.SubjectPaymentSucceeded
	}
	s.events.Publish(ctx, subject, notify.OrderEvent{
		OrderID:     out.ID,
		OrderNumber: out.OrderNumber,
		CustomerID:  out.CustomerID,
		Status:      string(out.Status),
		TotalCents:  out.TotalCents,
	})
	return out, nil
}

// MarkPaid records a manual payment confirmation: an operator verified a
// wallet transfer, or cash was collected on delivery.
func (s *paymentService) MarkPaid(ctx context.Context, orderID, transactionID, actor string) (*domain.Order, error) {
	const op = "payment.MarkPaid"

	if actor == "" {
		return nil, domain.Invalid(op, "Actor is required")
	}

	var (
		out    *domain.Order
		method string
	)
	err := s.store.ExecTx(ctx, func(q repository.Querier) error {
		order, err := q.GetOrderForUpdate(ctx, orderID)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return domain.ErrOrderNotFound
			}
			return domain.Internal(err, op, "Failed to load order")
		}

		payment, err := q.GetPaymentByOrder(ctx, order.ID)
		if err != nil {
			return domain.Internal(err, op, "Failed to load payment")
		}
		method = payment.Method

		now := time.Now()
		affected, err := q.UpdatePaymentStatus(ctx, repository.UpdatePaymentStatusParams{
			OrderID:       order.ID,
			Status:        string(domain.PaymentPaid),
			FromStatus:    string(domain.PaymentPending),
			TransactionID: transactionID,
			PaidAt:        &now,
		})
		if err != nil {
			return domain.Internal(err, op, "Failed to update payment status")
		}
		if affected == 0 {
			return domain.ErrPaymentAlreadyProcessed
		}

		if err := confirmOrder(ctx, q, op, order, "Payment confirmed by "+actor, actor); err != nil {
			return err
		}

		out, err = reloadOrder(ctx, q, order.ID)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.metrics.PaymentsMarkedPaid.WithLabelValues(method).Inc()
	s.events.Publish(ctx, notify.SubjectPaymentSucceeded, notify.OrderEvent{
		OrderID:     out.ID,
		OrderNumber: out.OrderNumber,
		CustomerID:  out.CustomerID,
		Status:      string(out.Status),
		TotalCents:  out.TotalCents,
		Actor:       actor,
	})
	return out, nil
}

// confirmOrder moves a pending order to confirmed after payment. An order
// that already moved on (or was cancelled before settlement) is left alone;
// the payment record keeps the truth about the money.
func confirmOrder(ctx context.Context, q repository.Querier, op string, order repository.Order, note, actor string) error {
	if domain.OrderStatus(order.Status) != domain.OrderPending {
		return nil
	}
	affected, err := q.UpdateOrderStatus(ctx, repository.UpdateOrderStatusParams{
		ID:         order.ID,
		Status:     string(domain.OrderConfirmed),
		FromStatus: string(domain.OrderPending),
	})
	if err != nil {
		return domain.Internal(err, op, "Failed to confirm order")
	}
	if affected == 0 {
		return nil
	}
	if _, err := q.AppendOrderStatusHistory(ctx, repository.AppendOrderStatusHistoryParams{
		OrderID: order.ID,
		Status:  string(domain.OrderConfirmed),
		Note:    note,
		Actor:   actor,
	}); err != nil {
		return domain.Internal(err, op, "Failed to record order history")
	}
	return nil
}
