package service

import (
	"context"
	"errors"
	"log/slog"

	"github.com/jackc/pgx/v5"

	"github.com/dukerupert/verdandi/internal/billing"
	"github.com/dukerupert/verdandi/internal/domain"
	"github.com/dukerupert/verdandi/internal/notify"
	"github.com/dukerupert/verdandi/internal/repository"
	"github.com/dukerupert/verdandi/internal/telemetry"
)

type cancellationService struct {
	store     repository.Store
	providers PaymentProviders
	events    notify.Publisher
	metrics   *telemetry.BusinessMetrics
	logger    *slog.Logger
}

// NewCancellationService creates the cancellation and refund workflow.
func NewCancellationService(store repository.Store, providers PaymentProviders, events notify.Publisher, metrics *telemetry.BusinessMetrics, logger *slog.Logger) domain.CancellationService {
	return &cancellationService{
		store:     store,
		providers: providers,
		events:    events,
		metrics:   metrics,
		logger:    logger,
	}
}

// Cancel cancels an order that has not shipped.
//
// Stock release rides on the cancellation's status update: only the writer
// whose conditional update lands gets to restore stock, so concurrent
// cancels (or a cancel racing a transition) release each unit exactly once.
//
// When payment was already taken, a refund record is opened inside the same
// transaction and settlement is attempted against the gateway afterwards.
// Offline payments stay refund-pending for manual settlement.
func (s *cancellationService) Cancel(ctx context.Context, orderID, reason, actor string) (*domain.Order, error) {
	const op = "order.Cancel"

	if actor == "" {
		actor = "customer"
	}

	var (
		out          *domain.Order
		refundNeeded bool
		payment      repository.Payment
	)
	err := s.store.ExecTx(ctx, func(q repository.Querier) error {
		order, err := q.GetOrderForUpdate(ctx, orderID)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return domain.ErrOrderNotFound
			}
			return domain.Internal(err, op, "Failed to load order")
		}

		from := domain.OrderStatus(order.Status)
		if !from.Cancellable() {
			return domain.ErrNotCancellable
		}

		affected, err := q.UpdateOrderStatus(ctx, repository.UpdateOrderStatusParams{
			ID:         order.ID,
			Status:     string(domain.OrderCancelled),
			FromStatus: string(from),
		})
		if err != nil {
			return domain.Internal(err, op, "Failed to cancel order")
		}
		if affected == 0 {
			return domain.ErrNotCancellable
		}

		items, err := q.GetOrderItems(ctx, order.ID)
		if err != nil {
			return domain.Internal(err, op, "Failed to load order items")
		}
		lines := make([]domain.StockLine, 0, len(items))
		for _, item := range items {
			lines = append(lines, domain.StockLine{
				ProductID: item.ProductID,
				Variant:   item.Variant,
				Quantity:  int(item.Quantity),
			})
		}
		if err := releaseLines(ctx, q, lines); err != nil {
			return err
		}

		payment, err = q.GetPaymentByOrder(ctx, order.ID)
		if err != nil {
			return domain.Internal(err, op, "Failed to load payment")
		}

		refundStatus := domain.RefundNone
		if domain.PaymentStatus(payment.Status) == domain.PaymentPaid {
			refundNeeded = true
			refundStatus = domain.RefundPending
		}

		if err := q.SetOrderCancellation(ctx, repository.SetOrderCancellationParams{
			ID:           order.ID,
			Reason:       reason,
			Actor:        actor,
			RefundStatus: refundStatus,
		}); err != nil {
			return domain.Internal(err, op, "Failed to record cancellation")
		}

		if _, err := q.AppendOrderStatusHistory(ctx, repository.AppendOrderStatusHistoryParams{
			OrderID: order.ID,
			Status:  string(domain.OrderCancelled),
			Note:    reason,
			Actor:   actor,
		}); err != nil {
			return domain.Internal(err, op, "Failed to record order history")
		}

		out, err = reloadOrder(ctx, q, order.ID)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.metrics.OrdersCancelled.WithLabelValues(actor).Inc()
	s.events.Publish(ctx, notify.SubjectOrderCancelled, notify.OrderEvent{
		OrderID:     out.ID,
		OrderNumber: out.OrderNumber,
		CustomerID:  out.CustomerID,
		Status:      string(out.Status),
		Actor:       actor,
		Note:        reason,
	})

	if refundNeeded {
		s.metrics.RefundsOpened.Inc()
		s.settleRefund(ctx, out, payment, reason)
	}
	return out, nil
}

// settleRefund tries to push the refund through the gateway. Failure leaves
// the refund record pending; an operator settles it and marks it completed.
func (s *cancellationService) settleRefund(ctx context.Context, order *domain.Order, payment repository.Payment, reason string) {
	s.events.Publish(ctx, notify.SubjectRefundOpened, notify.OrderEvent{
		OrderID:     order.ID,
		OrderNumber: order.OrderNumber,
		CustomerID:  order.CustomerID,
		Status:      string(order.Status),
		TotalCents:  payment.AmountCents,
	})

	provider := s.providers.For(domain.PaymentMethod(payment.Method))

	gctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), gatewayTimeout)
	defer cancel()

	_, err := provider.Refund(gctx, billing.RefundParams{
		TransactionID: payment.TransactionID,
		Reason:        reason,
	})
	if err != nil {
		if errors.Is(err, billing.ErrNotRefundable) {
			s.logger.Info("refund requires manual settlement",
				"order_id", order.ID,
				"method", payment.Method,
			)
		} else {
			s.logger.Error("gateway refund failed",
				"order_id", order.ID,
				"transaction_id", payment.TransactionID,
				"error", err,
			)
		}
		return
	}

	if _, err := s.store.UpdatePaymentStatus(gctx, repository.UpdatePaymentStatusParams{
		OrderID:       order.ID,
		Status:        string(domain.PaymentRefunded),
		FromStatus:    string(domain.PaymentPaid),
		TransactionID: payment.TransactionID,
		PaidAt:        payment.PaidAt,
	}); err != nil {
		s.logger.Error("failed to record refunded payment", "order_id", order.ID, "error", err)
		return
	}
	if err := s.store.SetOrderRefundStatus(gctx, repository.SetOrderRefundStatusParams{
		ID:           order.ID,
		RefundStatus: domain.RefundDone,
	}); err != nil {
		s.logger.Error("failed to record refund completion", "order_id", order.ID, "error", err)
		return
	}
	order.Payment.Status = domain.PaymentRefunded
	if order.Cancellation != nil {
		order.Cancellation.RefundStatus = domain.RefundDone
	}
}
