package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dukerupert/verdandi/internal/billing"
	"github.com/dukerupert/verdandi/internal/domain"
	"github.com/dukerupert/verdandi/internal/notify"
)

func TestCancelPendingOrder(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	order := f.placeOrder(t, "cust-1", domain.MethodCard)

	quantity, _ := f.stockLevel("prod-1", "")
	require.Equal(t, int64(8), quantity)

	got, err := f.cancels.Cancel(ctx, order.ID, "found it cheaper", "")
	require.NoError(t, err)

	assert.Equal(t, domain.OrderCancelled, got.Status)
	require.NotNil(t, got.Cancellation)
	assert.Equal(t, "found it cheaper", got.Cancellation.Reason)
	assert.Equal(t, "customer", got.Cancellation.Actor, "actor defaults to the customer")
	assert.Equal(t, domain.RefundNone, got.Cancellation.RefundStatus, "nothing was paid, nothing to refund")

	// The reserved stock went back.
	quantity, _ = f.stockLevel("prod-1", "")
	assert.Equal(t, int64(10), quantity)
	assert.True(t, f.events.has(notify.SubjectOrderCancelled))
	assert.False(t, f.events.has(notify.SubjectRefundOpened))
}

func TestCancelReleasesStockOnce(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	order := f.placeOrder(t, "cust-1", domain.MethodCard)

	_, err := f.cancels.Cancel(ctx, order.ID, "first", "customer")
	require.NoError(t, err)

	// A second cancel loses the status check and must not restore again.
	_, err = f.cancels.Cancel(ctx, order.ID, "second", "customer")
	assert.ErrorIs(t, err, domain.ErrNotCancellable)

	quantity, _ := f.stockLevel("prod-1", "")
	assert.Equal(t, int64(10), quantity)
}

func TestCancelPaidCardOrderSettlesRefund(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	order := paidOrder(t, f)
	require.Equal(t, domain.OrderConfirmed, order.Status)

	got, err := f.cancels.Cancel(ctx, order.ID, "duplicate order", "customer")
	require.NoError(t, err)

	// The card gateway refunds immediately, so the refund closes in-line.
	assert.Equal(t, domain.OrderCancelled, got.Status)
	assert.Equal(t, domain.PaymentRefunded, got.Payment.Status)
	require.NotNil(t, got.Cancellation)
	assert.Equal(t, domain.RefundDone, got.Cancellation.RefundStatus)
	assert.True(t, f.events.has(notify.SubjectRefundOpened))
	assert.Contains(t, f.gateway.Refunds, order.Payment.TransactionID)
}

func TestCancelPaidOfflineOrderLeavesRefundPending(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	order := f.placeOrder(t, "cust-1", domain.MethodWalletTransfer)
	_, err := f.payments.MarkPaid(ctx, order.ID, "wire-1", "admin")
	require.NoError(t, err)

	got, err := f.cancels.Cancel(ctx, order.ID, "out of patience", "customer")
	require.NoError(t, err)

	// Money moved outside any gateway, so it has to be returned by hand.
	// The refund record stays open for the operator.
	assert.Equal(t, domain.OrderCancelled, got.Status)
	assert.Equal(t, domain.PaymentPaid, got.Payment.Status)
	require.NotNil(t, got.Cancellation)
	assert.Equal(t, domain.RefundPending, got.Cancellation.RefundStatus)
	assert.True(t, f.events.has(notify.SubjectRefundOpened))
}

func TestCancelGatewayRefundFailure(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	f.gateway.RefundFunc = func(ctx context.Context, params billing.RefundParams) (*billing.Refund, error) {
		return nil, billing.ErrRefundFailed
	}
	order := paidOrder(t, f)

	got, err := f.cancels.Cancel(ctx, order.ID, "gateway is down today", "customer")
	require.NoError(t, err, "a failed settlement never fails the cancellation")

	assert.Equal(t, domain.OrderCancelled, got.Status)
	assert.Equal(t, domain.PaymentPaid, got.Payment.Status)
	assert.Equal(t, domain.RefundPending, got.Cancellation.RefundStatus)
}

func TestCancelNotCancellable(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	order := paidOrder(t, f)

	for _, step := range []domain.TransitionParams{
		{OrderID: order.ID, To: domain.OrderProcessing, Actor: "ops"},
		{OrderID: order.ID, To: domain.OrderShipped, Actor: "ops", Tracking: &domain.Tracking{TrackingNumber: "T1"}},
	} {
		_, err := f.status.Transition(ctx, step)
		require.NoError(t, err)
	}

	// Shipped orders are past the point of no return.
	_, err := f.cancels.Cancel(ctx, order.ID, "too late", "customer")
	assert.ErrorIs(t, err, domain.ErrNotCancellable)

	quantity, _ := f.stockLevel("prod-1", "")
	assert.Equal(t, int64(8), quantity, "stock stays reserved for the shipment")
}

func TestCancelUnknownOrder(t *testing.T) {
	f := newFixture()

	_, err := f.cancels.Cancel(context.Background(), "missing", "reason", "customer")
	assert.ErrorIs(t, err, domain.ErrOrderNotFound)
}

func TestCancelByOperator(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	order := f.placeOrder(t, "cust-1", domain.MethodCard)

	got, err := f.cancels.Cancel(ctx, order.ID, "fraud review", "ops@shop")
	require.NoError(t, err)
	assert.Equal(t, "ops@shop", got.Cancellation.Actor)

	last := got.History[len(got.History)-1]
	assert.Equal(t, domain.OrderCancelled, last.Status)
	assert.Equal(t, "ops@shop", last.Actor)
	assert.Equal(t, "fraud review", last.Note)
}
