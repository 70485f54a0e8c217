package api

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/dukerupert/verdandi/internal/domain"
	"github.com/dukerupert/verdandi/internal/handler"
)

// mockCartService implements domain.CartService with overridable behavior.
type mockCartService struct {
	GetOrCreateCartFunc    func(ctx context.Context, customerID string) (*domain.CartSummary, error)
	AddItemFunc            func(ctx context.Context, customerID string, params domain.AddItemParams) (*domain.CartSummary, error)
	UpdateItemQuantityFunc func(ctx context.Context, customerID, productID, variant string, quantity int) (*domain.CartSummary, error)
	RemoveItemFunc         func(ctx context.Context, customerID, productID, variant string) (*domain.CartSummary, error)
	ClearCartFunc          func(ctx context.Context, customerID string) (*domain.CartSummary, error)
	GetSummaryFunc         func(ctx context.Context, customerID string) (*domain.CartSummary, error)
}

func (m *mockCartService) GetOrCreateCart(ctx context.Context, customerID string) (*domain.CartSummary, error) {
	if m.GetOrCreateCartFunc != nil {
		return m.GetOrCreateCartFunc(ctx, customerID)
	}
	return &domain.CartSummary{Cart: domain.Cart{CustomerID: customerID}}, nil
}

func (m *mockCartService) AddItem(ctx context.Context, customerID string, params domain.AddItemParams) (*domain.CartSummary, error) {
	if m.AddItemFunc != nil {
		return m.AddItemFunc(ctx, customerID, params)
	}
	return &domain.CartSummary{Cart: domain.Cart{CustomerID: customerID}}, nil
}

func (m *mockCartService) UpdateItemQuantity(ctx context.Context, customerID, productID, variant string, quantity int) (*domain.CartSummary, error) {
	if m.UpdateItemQuantityFunc != nil {
		return m.UpdateItemQuantityFunc(ctx, customerID, productID, variant, quantity)
	}
	return &domain.CartSummary{Cart: domain.Cart{CustomerID: customerID}}, nil
}

func (m *mockCartService) RemoveItem(ctx context.Context, customerID, productID, variant string) (*domain.CartSummary, error) {
	if m.RemoveItemFunc != nil {
		return m.RemoveItemFunc(ctx, customerID, productID, variant)
	}
	return &domain.CartSummary{Cart: domain.Cart{CustomerID: customerID}}, nil
}

func (m *mockCartService) ClearCart(ctx context.Context, customerID string) (*domain.CartSummary, error) {
	if m.ClearCartFunc != nil {
		return m.ClearCartFunc(ctx, customerID)
	}
	return &domain.CartSummary{Cart: domain.Cart{CustomerID: customerID}}, nil
}

func (m *mockCartService) GetSummary(ctx context.Context, customerID string) (*domain.CartSummary, error) {
	if m.GetSummaryFunc != nil {
		return m.GetSummaryFunc(ctx, customerID)
	}
	return &domain.CartSummary{Cart: domain.Cart{CustomerID: customerID}}, nil
}

// mockOrderService implements domain.OrderService.
type mockOrderService struct {
	CreateOrderFunc      func(ctx context.Context, params domain.CreateOrderParams) (*domain.Order, error)
	GetOrderFunc         func(ctx context.Context, orderID string) (*domain.Order, error)
	GetOrderByNumberFunc func(ctx context.Context, orderNumber string) (*domain.Order, error)
	ListOrdersFunc       func(ctx context.Context, customerID string) ([]domain.Order, error)
}

func (m *mockOrderService) CreateOrder(ctx context.Context, params domain.CreateOrderParams) (*domain.Order, error) {
	if m.CreateOrderFunc != nil {
		return m.CreateOrderFunc(ctx, params)
	}
	return &domain.Order{ID: "order-1", CustomerID: params.CustomerID, Status: domain.OrderPending}, nil
}

func (m *mockOrderService) GetOrder(ctx context.Context, orderID string) (*domain.Order, error) {
	if m.GetOrderFunc != nil {
		return m.GetOrderFunc(ctx, orderID)
	}
	return &domain.Order{ID: orderID}, nil
}

func (m *mockOrderService) GetOrderByNumber(ctx context.Context, orderNumber string) (*domain.Order, error) {
	if m.GetOrderByNumberFunc != nil {
		return m.GetOrderByNumberFunc(ctx, orderNumber)
	}
	return &domain.Order{ID: "order-1", OrderNumber: orderNumber}, nil
}

func (m *mockOrderService) ListOrders(ctx context.Context, customerID string) ([]domain.Order, error) {
	if m.ListOrdersFunc != nil {
		return m.ListOrdersFunc(ctx, customerID)
	}
	return nil, nil
}

// mockStatusService implements domain.OrderStatusService.
type mockStatusService struct {
	TransitionFunc func(ctx context.Context, params domain.TransitionParams) (*domain.Order, error)
}

func (m *mockStatusService) Transition(ctx context.Context, params domain.TransitionParams) (*domain.Order, error) {
	if m.TransitionFunc != nil {
		return m.TransitionFunc(ctx, params)
	}
	return &domain.Order{ID: params.OrderID, Status: params.To}, nil
}

// mockPaymentService implements domain.PaymentService.
type mockPaymentService struct {
	ApplyGatewayResultFunc func(ctx context.Context, result domain.GatewayResult) (*domain.Order, error)
	MarkPaidFunc           func(ctx context.Context, orderID, transactionID, actor string) (*domain.Order, error)
}

func (m *mockPaymentService) ApplyGatewayResult(ctx context.Context, result domain.GatewayResult) (*domain.Order, error) {
	if m.ApplyGatewayResultFunc != nil {
		return m.ApplyGatewayResultFunc(ctx, result)
	}
	return &domain.Order{ID: "order-1", Status: domain.OrderConfirmed}, nil
}

func (m *mockPaymentService) MarkPaid(ctx context.Context, orderID, transactionID, actor string) (*domain.Order, error) {
	if m.MarkPaidFunc != nil {
		return m.MarkPaidFunc(ctx, orderID, transactionID, actor)
	}
	return &domain.Order{ID: orderID, Status: domain.OrderConfirmed}, nil
}

// mockCancellationService implements domain.CancellationService.
type mockCancellationService struct {
	CancelFunc func(ctx context.Context, orderID, reason, actor string) (*domain.Order, error)
}

func (m *mockCancellationService) Cancel(ctx context.Context, orderID, reason, actor string) (*domain.Order, error) {
	if m.CancelFunc != nil {
		return m.CancelFunc(ctx, orderID, reason, actor)
	}
	return &domain.Order{ID: orderID, Status: domain.OrderCancelled}, nil
}

var (
	_ domain.CartService         = (*mockCartService)(nil)
	_ domain.OrderService        = (*mockOrderService)(nil)
	_ domain.OrderStatusService  = (*mockStatusService)(nil)
	_ domain.PaymentService      = (*mockPaymentService)(nil)
	_ domain.CancellationService = (*mockCancellationService)(nil)
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// newTestServer mounts the handlers the way cmd/server does.
func newTestServer(carts domain.CartService, orders domain.OrderService, transitions domain.OrderStatusService, payments domain.PaymentService, cancellations domain.CancellationService) *echo.Echo {
	e := echo.New()
	e.Validator = handler.NewRequestValidator()
	g := e.Group("/api")
	NewCartHandler(carts, testLogger()).Register(g)
	NewOrderHandler(orders, transitions, payments, cancellations, testLogger()).Register(g)
	return e
}

// do performs a request against the test server and decodes the envelope.
func do(t *testing.T, e *echo.Echo, method, path, body string, headers map[string]string) (int, handler.Response) {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	var envelope handler.Response
	if err := json.Unmarshal(rec.Body.Bytes(), &envelope); err != nil {
		t.Fatalf("invalid response envelope: %v (body: %s)", err, rec.Body.String())
	}
	return rec.Code, envelope
}

func asCustomer(id string) map[string]string {
	return map[string]string{"X-Customer-ID": id}
}
