package service

import (
	"context"
	"crypto/rand"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/dukerupert/verdandi/internal/billing"
	"github.com/dukerupert/verdandi/internal/domain"
	"github.com/dukerupert/verdandi/internal/notify"
	"github.com/dukerupert/verdandi/internal/repository"
	"github.com/dukerupert/verdandi/internal/telemetry"
)

// gatewayTimeout bounds the post-commit call that starts an online payment.
// A slow gateway leaves the order pending; it never holds the request open
// indefinitely or rolls the order back.
const gatewayTimeout = 10 * time.Second

// maxOrderNumberAttempts bounds retries on an order number collision.
const maxOrderNumberAttempts = 3

// PaymentProviders routes a payment method to the provider that settles it.
type PaymentProviders struct {
	Card    billing.Provider
	Offline billing.Provider
}

// For returns the provider responsible for the given method.
func (p PaymentProviders) For(method domain.PaymentMethod) billing.Provider {
	if method == domain.MethodCard {
		return p.Card
	}
	return p.Offline
}

type orderService struct {
	store     repository.Store
	providers PaymentProviders
	events    notify.Publisher
	metrics   *telemetry.BusinessMetrics
	pricing   Pricing
	logger    *slog.Logger
}

// NewOrderService creates the order factory and read side.
func NewOrderService(store repository.Store, providers PaymentProviders, events notify.Publisher, metrics *telemetry.BusinessMetrics, pricing Pricing, logger *slog.Logger) domain.OrderService {
	return &orderService{
		store:     store,
		providers: providers,
		events:    events,
		metrics:   metrics,
		pricing:   pricing,
		logger:    logger,
	}
}

// CreateOrder converts the customer's cart into a pending order.
//
// Everything that must hold together happens in one transaction: prices are
// re-read from the catalog, stock is decremented conditionally for every
// line, and the order, its item snapshots, the payment record, and the first
// audit entry are written before the cart is cleared. Any failure rolls the
// whole thing back, so a rejected checkout leaves the cart exactly as it
// was.
//
// Starting the gateway payment happens after commit. The money side is
// allowed to lag; the order is pending either way and the reconcile worker
// covers a lost callback.
func (s *orderService) CreateOrder(ctx context.Context, params domain.CreateOrderParams) (*domain.Order, error) {
	const op = "order.CreateOrder"

	if params.CustomerID == "" {
		return nil, domain.Invalid(op, "Customer ID is required")
	}
	if params.PaymentMethod == "" {
		return nil, domain.ErrMissingPaymentMethod
	}
	if !params.PaymentMethod.Valid() {
		return nil, domain.Invalid(op, "Unknown payment method")
	}
	if params.ShippingAddress.Empty() {
		return nil, domain.ErrMissingShippingAddress
	}
	billingAddr := params.BillingAddress
	if billingAddr.Empty() {
		billingAddr = params.ShippingAddress
	}

	cart, err := s.store.GetCartByCustomer(ctx, params.CustomerID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrEmptyCart
		}
		return nil, domain.Internal(err, op, "Failed to load cart")
	}

	shippingJSON, err := json.Marshal(params.ShippingAddress)
	if err != nil {
		return nil, domain.Internal(err, op, "Failed to encode shipping address")
	}
	billingJSON, err := json.Marshal(billingAddr)
	if err != nil {
		return nil, domain.Internal(err, op, "Failed to encode billing address")
	}

	coupon := lookupCoupon(ctx, s.store, params.CouponCode, s.logger)

	var created *domain.Order
	for attempt := 0; attempt < maxOrderNumberAttempts; attempt++ {
		orderNumber := generateOrderNumber()
		created, err = s.createInTx(ctx, op, cart, params, coupon, orderNumber, shippingJSON, billingJSON)
		if isUniqueViolation(err) {
			s.metrics.OrderNumberRetry.Inc()
			continue
		}
		break
	}
	if err != nil {
		if domain.ErrorCode(err) == domain.ECONFLICT {
			s.metrics.StockConflicts.Inc()
		}
		return nil, err
	}

	s.metrics.OrdersCreated.WithLabelValues(string(params.PaymentMethod)).Inc()
	s.metrics.OrderValue.Observe(float64(created.TotalCents))
	s.metrics.OrderItemCount.Observe(float64(len(created.Items)))
	s.events.Publish(ctx, notify.SubjectOrderCreated, notify.OrderEvent{
		OrderID:     created.ID,
		OrderNumber: created.OrderNumber,
		CustomerID:  created.CustomerID,
		Status:      string(created.Status),
		TotalCents:  created.TotalCents,
	})

	s.initiatePayment(ctx, created)
	return created, nil
}

func (s *orderService) createInTx(ctx context.Context, op string, cart repository.Cart, params domain.CreateOrderParams, coupon *domain.Coupon, orderNumber string, shippingJSON, billingJSON []byte) (*domain.Order, error) {
	var created *domain.Order
	err := s.store.ExecTx(ctx, func(q repository.Querier) error {
		cartItems, err := q.GetCartItems(ctx, cart.ID)
		if err != nil {
			return domain.Internal(err, op, "Failed to load cart items")
		}
		if len(cartItems) == 0 {
			return domain.ErrEmptyCart
		}

		// Re-read prices and product data now. The cart's captured prices
		// are display-only; what the customer pays is what the catalog says
		// at this instant.
		var subtotal int64
		lines := make([]repository.CreateOrderItemParams, 0, len(cartItems))
		stock := make([]domain.StockLine, 0, len(cartItems))
		for _, item := range cartItems {
			product, err := q.GetProduct(ctx, item.ProductID)
			if err != nil {
				if errors.Is(err, pgx.ErrNoRows) {
					return domain.WrapError(domain.ErrProductNotFound, domain.ENOTFOUND, op, "Product no longer available: "+item.ProductID)
				}
				return domain.Internal(err, op, "Failed to load product")
			}
			lineTotal := int64(item.Quantity) * product.PriceCents
			subtotal += lineTotal
			lines = append(lines, repository.CreateOrderItemParams{
				ProductID:      product.ID,
				Variant:        item.Variant,
				ProductName:    product.Name,
				SKU:            product.SKU,
				Quantity:       item.Quantity,
				UnitPriceCents: product.PriceCents,
				LineTotalCents: lineTotal,
			})
			stock = append(stock, domain.StockLine{
				ProductID: product.ID,
				Variant:   item.Variant,
				Quantity:  int(item.Quantity),
			})
		}

		if err := reserveLines(ctx, q, op, stock); err != nil {
			return err
		}

		discount := coupon.DiscountFor(subtotal)
		shipping := s.pricing.Shipping(subtotal)
		tax := s.pricing.Tax(subtotal - discount)
		total := subtotal - discount + shipping + tax

		couponCode := ""
		if discount > 0 {
			couponCode = coupon.Code
		}

		order, err := q.CreateOrder(ctx, repository.CreateOrderParams{
			ID:              uuid.NewString(),
			OrderNumber:     orderNumber,
			CustomerID:      params.CustomerID,
			Status:          string(domain.OrderPending),
			SubtotalCents:   subtotal,
			DiscountCents:   discount,
			ShippingCents:   shipping,
			TaxCents:        tax,
			TotalCents:      total,
			CouponCode:      couponCode,
			Currency:        s.pricing.Currency,
			ShippingAddress: shippingJSON,
			BillingAddress:  billingJSON,
			Notes:           params.Notes,
		})
		if err != nil {
			return err
		}

		orderItems := make([]repository.OrderItem, 0, len(lines))
		for _, line := range lines {
			line.OrderID = order.ID
			item, err := q.CreateOrderItem(ctx, line)
			if err != nil {
				return domain.Internal(err, op, "Failed to create order item")
			}
			orderItems = append(orderItems, item)
		}

		payment, err := q.CreatePayment(ctx, repository.CreatePaymentParams{
			OrderID:     order.ID,
			Method:      string(params.PaymentMethod),
			Status:      string(domain.PaymentPending),
			AmountCents: total,
			Currency:    s.pricing.Currency,
		})
		if err != nil {
			return domain.Internal(err, op, "Failed to create payment record")
		}

		history, err := q.AppendOrderStatusHistory(ctx, repository.AppendOrderStatusHistoryParams{
			OrderID: order.ID,
			Status:  string(domain.OrderPending),
			Note:    "Order created",
			Actor:   params.CustomerID,
		})
		if err != nil {
			return domain.Internal(err, op, "Failed to record order history")
		}

		if err := q.ClearCart(ctx, cart.ID); err != nil {
			return domain.Internal(err, op, "Failed to clear cart")
		}

		created = assembleOrder(order, orderItems, payment, []repository.OrderStatusHistory{history})
		return nil
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

// initiatePayment starts the gateway transaction for online methods. A
// failure here is logged and counted, never surfaced: the order already
// exists and payment can be retried or reconciled.
func (s *orderService) initiatePayment(ctx context.Context, order *domain.Order) {
	provider := s.providers.For(order.Payment.Method)

	gctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), gatewayTimeout)
	defer cancel()

	intent, err := provider.InitiatePayment(gctx, billing.InitiatePaymentParams{
		AmountCents:    order.TotalCents,
		Currency:       order.Currency,
		OrderID:        order.ID,
		OrderNumber:    order.OrderNumber,
		CustomerID:     order.CustomerID,
		Description:    "Order " + order.OrderNumber,
		IdempotencyKey: order.ID,
	})
	if err != nil {
		s.metrics.GatewayInitFailures.Inc()
		s.logger.Error("payment initiation failed",
			"order_id", order.ID,
			"method", order.Payment.Method,
			"error", err,
		)
		return
	}
	if intent.TransactionID == "" {
		return
	}

	if err := s.store.SetPaymentTransactionID(gctx, repository.SetPaymentTransactionIDParams{
		OrderID:       order.ID,
		TransactionID: intent.TransactionID,
	}); err != nil {
		s.logger.Error("failed to link gateway transaction",
			"order_id", order.ID,
			"transaction_id", intent.TransactionID,
			"error", err,
		)
		return
	}
	order.Payment.TransactionID = intent.TransactionID
}

func (s *orderService) GetOrder(ctx context.Context, orderID string) (*domain.Order, error) {
	const op = "order.GetOrder"
	order, err := s.store.GetOrder(ctx, orderID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrOrderNotFound
		}
		return nil, domain.Internal(err, op, "Failed to load order")
	}
	return s.loadDetail(ctx, op, order)
}

func (s *orderService) GetOrderByNumber(ctx context.Context, orderNumber string) (*domain.Order, error) {
	const op = "order.GetOrderByNumber"
	order, err := s.store.GetOrderByNumber(ctx, orderNumber)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrOrderNotFound
		}
		return nil, domain.Internal(err, op, "Failed to load order")
	}
	return s.loadDetail(ctx, op, order)
}

func (s *orderService) ListOrders(ctx context.Context, customerID string) ([]domain.Order, error) {
	const op = "order.ListOrders"
	if customerID == "" {
		return nil, domain.Invalid(op, "Customer ID is required")
	}
	rows, err := s.store.ListOrdersByCustomer(ctx, customerID)
	if err != nil {
		return nil, domain.Internal(err, op, "Failed to list orders")
	}
	orders := make([]domain.Order, 0, len(rows))
	for _, row := range rows {
		detail, err := s.loadDetail(ctx, op, row)
		if err != nil {
			return nil, err
		}
		orders = append(orders, *detail)
	}
	return orders, nil
}

func (s *orderService) loadDetail(ctx context.Context, op string, order repository.Order) (*domain.Order, error) {
	items, err := s.store.GetOrderItems(ctx, order.ID)
	if err != nil {
		return nil, domain.Internal(err, op, "Failed to load order items")
	}
	payment, err := s.store.GetPaymentByOrder(ctx, order.ID)
	if err != nil && !errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.Internal(err, op, "Failed to load payment")
	}
	history, err := s.store.GetOrderStatusHistory(ctx, order.ID)
	if err != nil {
		return nil, domain.Internal(err, op, "Failed to load order history")
	}
	return assembleOrder(order, items, payment, history), nil
}

// assembleOrder converts repository rows into the domain aggregate.
func assembleOrder(order repository.Order, items []repository.OrderItem, payment repository.Payment, history []repository.OrderStatusHistory) *domain.Order {
	out := &domain.Order{
		ID:            order.ID,
		OrderNumber:   order.OrderNumber,
		CustomerID:    order.CustomerID,
		SubtotalCents: order.SubtotalCents,
		DiscountCents: order.DiscountCents,
		ShippingCents: order.ShippingCents,
		TaxCents:      order.TaxCents,
		TotalCents:    order.TotalCents,
		CouponCode:    order.CouponCode,
		Currency:      order.Currency,
		Status:        domain.OrderStatus(order.Status),
		Notes:         order.Notes,
		CreatedAt:     order.CreatedAt,
		UpdatedAt:     order.UpdatedAt,
	}

	// Addresses were marshalled by this module; a decode failure would mean
	// corrupted storage, and an empty address is the safest rendering.
	_ = json.Unmarshal(order.ShippingAddress, &out.ShippingAddress)
	_ = json.Unmarshal(order.BillingAddress, &out.BillingAddress)

	out.Items = make([]domain.OrderItem, 0, len(items))
	for _, item := range items {
		out.Items = append(out.Items, domain.OrderItem{
			ProductID:      item.ProductID,
			Variant:        item.Variant,
			ProductName:    item.ProductName,
			SKU:            item.SKU,
			Quantity:       int(item.Quantity),
			UnitPriceCents: item.UnitPriceCents,
			LineTotalCents: item.LineTotalCents,
		})
	}

	out.Payment = domain.Payment{
		Method:        domain.PaymentMethod(payment.Method),
		Status:        domain.PaymentStatus(payment.Status),
		TransactionID: payment.TransactionID,
		AmountCents:   payment.AmountCents,
		Currency:      payment.Currency,
		PaidAt:        payment.PaidAt,
	}

	if order.TrackingNumber != "" || order.Carrier != "" {
		out.Tracking = &domain.Tracking{
			Carrier:        order.Carrier,
			TrackingNumber: order.TrackingNumber,
		}
	}

	if order.CancelledAt != nil {
		out.Cancellation = &domain.Cancellation{
			Reason:       order.CancelReason,
			Actor:        order.CancelActor,
			At:           *order.CancelledAt,
			RefundStatus: order.RefundStatus,
		}
	}

	out.History = make([]domain.StatusChange, 0, len(history))
	for _, h := range history {
		out.History = append(out.History, domain.StatusChange{
			Status: domain.OrderStatus(h.Status),
			Note:   h.Note,
			Actor:  h.Actor,
			At:     h.CreatedAt,
		})
	}
	return out
}

// orderNumberCharset omits ambiguous characters so numbers survive being
// read over the phone.
const orderNumberCharset = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

// generateOrderNumber produces a human-readable order number in the form
// ORD-20250129-A3K9QX. Uniqueness is enforced by the database; collisions
// are retried with a fresh suffix.
func generateOrderNumber() string {
	buf := make([]byte, 6)
	_, _ = rand.Read(buf)
	for i, b := range buf {
		buf[i] = orderNumberCharset[int(b)%len(orderNumberCharset)]
	}
	return "ORD-" + time.Now().UTC().Format("20060102") + "-" + string(buf)
}

// isUniqueViolation reports whether err is a unique constraint violation.
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
