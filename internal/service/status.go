package service

import (
	"context"
	"errors"
	"log/slog"

	"github.com/jackc/pgx/v5"

	"github.com/dukerupert/verdandi/internal/domain"
	"github.com/dukerupert/verdandi/internal/notify"
	"github.com/dukerupert/verdandi/internal/repository"
	"github.com/dukerupert/verdandi/internal/telemetry"
)

type statusService struct {
	store   repository.Store
	events  notify.Publisher
	metrics *telemetry.BusinessMetrics
	logger  *slog.Logger
}

// NewOrderStatusService creates the fulfillment state machine driver.
func NewOrderStatusService(store repository.Store, events notify.Publisher, metrics *telemetry.BusinessMetrics, logger *slog.Logger) domain.OrderStatusService {
	return &statusService{
		store:   store,
		events:  events,
		metrics: metrics,
		logger:  logger,
	}
}

// Transition moves an order along the allowed-transition table.
//
// The order row is locked for the duration, the target is checked against
// the table, and the write itself is conditional on the status the decision
// was made against. A transition that loses a race therefore fails cleanly
// instead of double-applying.
//
// Cancellation is not reachable here: it releases stock and opens refunds,
// so it goes through the cancellation workflow exclusively.
func (s *statusService) Transition(ctx context.Context, params domain.TransitionParams) (*domain.Order, error) {
	const op = "order.Transition"

	if !params.To.Valid() {
		return nil, domain.Invalid(op, "Unknown order status: "+string(params.To))
	}
	if params.To == domain.OrderCancelled {
		return nil, domain.Invalid(op, "Cancellation must go through the cancel operation")
	}
	if params.Actor == "" {
		return nil, domain.Invalid(op, "Actor is required")
	}

	var (
		result *domain.Order
		from   domain.OrderStatus
	)
	err := s.store.ExecTx(ctx, func(q repository.Querier) error {
		order, err := q.GetOrderForUpdate(ctx, params.OrderID)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return domain.ErrOrderNotFound
			}
			return domain.Internal(err, op, "Failed to load order")
		}
		from = domain.OrderStatus(order.Status)

		if !from.CanTransitionTo(params.To) {
			return domain.Conflict(op, "Cannot transition order from "+string(from)+" to "+string(params.To))
		}

		payment, err := q.GetPaymentByOrder(ctx, order.ID)
		if err != nil {
			return domain.Internal(err, op, "Failed to load payment")
		}

		// Fulfillment may not start before the money is in, except for cash
		// on delivery where collection happens at the door.
		if params.To == domain.OrderProcessing &&
			domain.PaymentMethod(payment.Method) != domain.MethodCashOnDelivery &&
			domain.PaymentStatus(payment.Status) != domain.PaymentPaid {
			return domain.ErrPaymentRequired
		}

		if params.To == domain.OrderShipped {
			if params.Tracking == nil || params.Tracking.TrackingNumber == "" {
				return domain.Invalid(op, "Tracking number is required to mark an order shipped")
			}
		}

		affected, err := q.UpdateOrderStatus(ctx, repository.UpdateOrderStatusParams{
			ID:         order.ID,
			Status:     string(params.To),
			FromStatus: string(from),
		})
		if err != nil {
			return domain.Internal(err, op, "Failed to update order status")
		}
		if affected == 0 {
			return domain.ErrInvalidStateTransition
		}

		if params.To == domain.OrderShipped {
			if err := q.SetOrderTracking(ctx, repository.SetOrderTrackingParams{
				ID:             order.ID,
				Carrier:        params.Tracking.Carrier,
				TrackingNumber: params.Tracking.TrackingNumber,
			}); err != nil {
				return domain.Internal(err, op, "Failed to record tracking")
			}
		}

		// delivered -> refunded is the post-delivery return path. The
		// payment follows along when it was settled; gateway settlement of
		// the refund itself is an operator concern.
		if params.To == domain.OrderRefunded {
			if _, err := q.UpdatePaymentStatus(ctx, repository.UpdatePaymentStatusParams{
				OrderID:       order.ID,
				Status:        string(domain.PaymentRefunded),
				FromStatus:    string(domain.PaymentPaid),
				TransactionID: payment.TransactionID,
				PaidAt:        payment.PaidAt,
			}); err != nil {
				return domain.Internal(err, op, "Failed to update payment status")
			}
			if err := q.SetOrderRefundStatus(ctx, repository.SetOrderRefundStatusParams{
				ID:           order.ID,
				RefundStatus: domain.RefundPending,
			}); err != nil {
				return domain.Internal(err, op, "Failed to record refund status")
			}
		}

		if _, err := q.AppendOrderStatusHistory(ctx, repository.AppendOrderStatusHistoryParams{
			OrderID: order.ID,
			Status:  string(params.To),
			Note:    params.Note,
			Actor:   params.Actor,
		}); err != nil {
			return domain.Internal(err, op, "Failed to record order history")
		}

		result, err = reloadOrder(ctx, q, order.ID)
		return err
	})
	if err != nil {
		s.metrics.OrderTransitions.WithLabelValues(string(from), string(params.To), "rejected").Inc()
		return nil, err
	}

	s.metrics.OrderTransitions.WithLabelValues(string(from), string(params.To), "ok").Inc()
	if subject := transitionSubject(params.To); subject != "" {
		s.events.Publish(ctx, subject, notify.OrderEvent{
			OrderID:     result.ID,
			OrderNumber: result.OrderNumber,
			CustomerID:  result.CustomerID,
			Status:      string(result.Status),
			Actor:       params.Actor,
			Note:        params.Note,
		})
	}
	return result, nil
}

func transitionSubject(to domain.OrderStatus) string {
	switch to {
	case domain.OrderConfirmed:
		return notify.SubjectOrderConfirmed
	case domain.OrderShipped:
		return notify.SubjectOrderShipped
	case domain.OrderDelivered:
		return notify.SubjectOrderDelivered
	default:
		return ""
	}
}

// reloadOrder re-reads the full aggregate inside the transaction so the
// caller sees the state it just wrote.
func reloadOrder(ctx context.Context, q repository.Querier, orderID string) (*domain.Order, error) {
	order, err := q.GetOrder(ctx, orderID)
	if err != nil {
		return nil, domain.Internal(err, "order.reload", "Failed to reload order")
	}
	items, err := q.GetOrderItems(ctx, orderID)
	if err != nil {
		return nil, domain.Internal(err, "order.reload", "Failed to reload order items")
	}
	payment, err := q.GetPaymentByOrder(ctx, orderID)
	if err != nil && !errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.Internal(err, "order.reload", "Failed to reload payment")
	}
	history, err := q.GetOrderStatusHistory(ctx, orderID)
	if err != nil {
		return nil, domain.Internal(err, "order.reload", "Failed to reload order history")
	}
	return assembleOrder(order, items, payment, history), nil
}
