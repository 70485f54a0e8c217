package api

import (
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/dukerupert/verdandi/internal/domain"
	"github.com/dukerupert/verdandi/internal/handler"
)

// OrderHandler serves checkout, order reads, and the operator endpoints
// that drive the state machines.
type OrderHandler struct {
	orders        domain.OrderService
	transitions   domain.OrderStatusService
	payments      domain.PaymentService
	cancellations domain.CancellationService
	logger        *slog.Logger
}

// NewOrderHandler creates a new order handler.
func NewOrderHandler(orders domain.OrderService, transitions domain.OrderStatusService, payments domain.PaymentService, cancellations domain.CancellationService, logger *slog.Logger) *OrderHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &OrderHandler{
		orders:        orders,
		transitions:   transitions,
		payments:      payments,
		cancellations: cancellations,
		logger:        logger,
	}
}

// Register mounts the order routes on the given group.
func (h *OrderHandler) Register(g *echo.Group) {
	g.POST("/orders", h.CreateOrder)
	g.GET("/orders", h.ListOrders)
	g.GET("/orders/:id", h.GetOrder)
	g.GET("/orders/number/:number", h.GetOrderByNumber)
	g.POST("/orders/:id/status", h.TransitionOrder)
	g.POST("/orders/:id/cancel", h.CancelOrder)
	g.POST("/orders/:id/mark-paid", h.MarkPaid)
}

type createOrderRequest struct {
	ShippingAddress domain.Address `json:"shipping_address" validate:"required"`
	BillingAddress  domain.Address `json:"billing_address"`
	PaymentMethod   string         `json:"payment_method" validate:"required"`
	Notes           string         `json:"notes"`
	CouponCode      string         `json:"coupon_code"`
}

// CreateOrder handles POST /api/orders: the checkout boundary that turns
// the customer's cart into a pending order.
func (h *OrderHandler) CreateOrder(c echo.Context) error {
	customer, err := customerID(c)
	if err != nil {
		return handler.Error(c, h.logger, err)
	}

	var req createOrderRequest
	if err := c.Bind(&req); err != nil {
		return handler.Error(c, h.logger, domain.Invalid("order.CreateOrder", "Invalid request body"))
	}
	if err := c.Validate(&req); err != nil {
		return handler.Error(c, h.logger, err)
	}

	order, err := h.orders.CreateOrder(c.Request().Context(), domain.CreateOrderParams{
		CustomerID:      customer,
		ShippingAddress: req.ShippingAddress,
		BillingAddress:  req.BillingAddress,
		PaymentMethod:   domain.PaymentMethod(req.PaymentMethod),
		Notes:           req.Notes,
		CouponCode:      req.CouponCode,
	})
	if err != nil {
		return handler.Error(c, h.logger, err)
	}
	return handler.OK(c, http.StatusCreated, toOrderView(order))
}

// ListOrders handles GET /api/orders.
func (h *OrderHandler) ListOrders(c echo.Context) error {
	customer, err := customerID(c)
	if err != nil {
		return handler.Error(c, h.logger, err)
	}
	orders, err := h.orders.ListOrders(c.Request().Context(), customer)
	if err != nil {
		return handler.Error(c, h.logger, err)
	}
	views := make([]OrderView, 0, len(orders))
	for i := range orders {
		views = append(views, toOrderView(&orders[i]))
	}
	return handler.OK(c, http.StatusOK, views)
}

// GetOrder handles GET /api/orders/:id. An order belonging to a different
// customer reads as not found; existence is not leaked across customers.
func (h *OrderHandler) GetOrder(c echo.Context) error {
	customer, err := customerID(c)
	if err != nil {
		return handler.Error(c, h.logger, err)
	}
	order, err := h.orders.GetOrder(c.Request().Context(), c.Param("id"))
	if err != nil {
		return handler.Error(c, h.logger, err)
	}
	if order.CustomerID != customer {
		return handler.Error(c, h.logger, domain.ErrOrderNotFound)
	}
	return handler.OK(c, http.StatusOK, toOrderView(order))
}

// GetOrderByNumber handles GET /api/orders/number/:number.
func (h *OrderHandler) GetOrderByNumber(c echo.Context) error {
	customer, err := customerID(c)
	if err != nil {
		return handler.Error(c, h.logger, err)
	}
	order, err := h.orders.GetOrderByNumber(c.Request().Context(), c.Param("number"))
	if err != nil {
		return handler.Error(c, h.logger, err)
	}
	if order.CustomerID != customer {
		return handler.Error(c, h.logger, domain.ErrOrderNotFound)
	}
	return handler.OK(c, http.StatusOK, toOrderView(order))
}

type transitionRequest struct {
	Status   string        `json:"status" validate:"required"`
	Note     string        `json:"note"`
	Tracking *TrackingView `json:"tracking"`
}

// TransitionOrder handles POST /api/orders/:id/status. This is an operator
// endpoint; the acting identity arrives in X-Actor-ID.
func (h *OrderHandler) TransitionOrder(c echo.Context) error {
	actor := c.Request().Header.Get("X-Actor-ID")
	if actor == "" {
		return handler.Error(c, h.logger, domain.Errorf(domain.EUNAUTHORIZED, "order.Transition", "Actor identity is required"))
	}

	var req transitionRequest
	if err := c.Bind(&req); err != nil {
		return handler.Error(c, h.logger, domain.Invalid("order.Transition", "Invalid request body"))
	}
	if err := c.Validate(&req); err != nil {
		return handler.Error(c, h.logger, err)
	}

	params := domain.TransitionParams{
		OrderID: c.Param("id"),
		To:      domain.OrderStatus(req.Status),
		Note:    req.Note,
		Actor:   actor,
	}
	if req.Tracking != nil {
		params.Tracking = &domain.Tracking{
			Carrier:        req.Tracking.Carrier,
			TrackingNumber: req.Tracking.TrackingNumber,
		}
	}

	order, err := h.transitions.Transition(c.Request().Context(), params)
	if err != nil {
		return handler.Error(c, h.logger, err)
	}
	return handler.OK(c, http.StatusOK, toOrderView(order))
}

type cancelRequest struct {
	Reason string `json:"reason"`
}

// CancelOrder handles POST /api/orders/:id/cancel. Customers cancel their
// own orders; operators cancel on behalf by sending X-Actor-ID without a
// customer identity. A customer identity always scopes the lookup, so a
// request carrying both headers cannot reach another customer's order.
func (h *OrderHandler) CancelOrder(c echo.Context) error {
	customer := c.Request().Header.Get("X-Customer-ID")
	actor := c.Request().Header.Get("X-Actor-ID")
	if customer == "" && actor == "" {
		return handler.Error(c, h.logger, domain.Errorf(domain.EUNAUTHORIZED, "order.Cancel", "Customer or actor identity is required"))
	}

	var req cancelRequest
	if err := c.Bind(&req); err != nil {
		return handler.Error(c, h.logger, domain.Invalid("order.Cancel", "Invalid request body"))
	}

	order, err := h.orders.GetOrder(c.Request().Context(), c.Param("id"))
	if err != nil {
		return handler.Error(c, h.logger, err)
	}
	if customer != "" {
		if order.CustomerID != customer {
			return handler.Error(c, h.logger, domain.ErrOrderNotFound)
		}
		if actor == "" {
			actor = customer
		}
	}

	cancelled, err := h.cancellations.Cancel(c.Request().Context(), order.ID, req.Reason, actor)
	if err != nil {
		return handler.Error(c, h.logger, err)
	}
	return handler.OK(c, http.StatusOK, toOrderView(cancelled))
}

type markPaidRequest struct {
	TransactionID string `json:"transaction_id"`
}

// MarkPaid handles POST /api/orders/:id/mark-paid: an operator confirming
// an out-of-band payment (verified wallet transfer, cash collected).
func (h *OrderHandler) MarkPaid(c echo.Context) error {
	actor := c.Request().Header.Get("X-Actor-ID")
	if actor == "" {
		return handler.Error(c, h.logger, domain.Errorf(domain.EUNAUTHORIZED, "payment.MarkPaid", "Actor identity is required"))
	}

	var req markPaidRequest
	if err := c.Bind(&req); err != nil {
		return handler.Error(c, h.logger, domain.Invalid("payment.MarkPaid", "Invalid request body"))
	}

	order, err := h.payments.MarkPaid(c.Request().Context(), c.Param("id"), req.TransactionID, actor)
	if err != nil {
		return handler.Error(c, h.logger, err)
	}
	return handler.OK(c, http.StatusOK, toOrderView(order))
}
