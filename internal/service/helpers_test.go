package service

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dukerupert/verdandi/internal/billing"
	"github.com/dukerupert/verdandi/internal/domain"
	"github.com/dukerupert/verdandi/internal/notify"
)

// capturePublisher records published events for assertions.
type capturePublisher struct {
	mu     sync.Mutex
	events []capturedEvent
}

type capturedEvent struct {
	Subject string
	Event   notify.OrderEvent
}

func (p *capturePublisher) Publish(ctx context.Context, subject string, event notify.OrderEvent) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, capturedEvent{Subject: subject, Event: event})
}

func (p *capturePublisher) Close() {}

func (p *capturePublisher) subjects() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, len(p.events))
	for i, e := range p.events {
		out[i] = e.Subject
	}
	return out
}

func (p *capturePublisher) has(subject string) bool {
	for _, s := range p.subjects() {
		if s == subject {
			return true
		}
	}
	return false
}

// fixture wires every service against one fake store, a mock card gateway,
// and a capturing event publisher.
type fixture struct {
	store   *fakeStore
	events  *capturePublisher
	gateway *billing.MockProvider
	pricing Pricing

	carts     domain.CartService
	orders    domain.OrderService
	status    domain.OrderStatusService
	payments  domain.PaymentService
	cancels   domain.CancellationService
	inventory domain.InventoryService
}

func newFixture() *fixture {
	store := newFakeStore()
	events := &capturePublisher{}
	gateway := billing.NewMockProvider()
	providers := PaymentProviders{Card: gateway, Offline: billing.NewOfflineProvider()}
	pricing := Pricing{Currency: "usd", ShippingFlatCents: 500, TaxRateBps: 1000}
	metrics := testMetrics()
	logger := testLogger()

	catalog := NewCatalogService(store)
	inventory := NewInventoryService(store)
	return &fixture{
		store:     store,
		events:    events,
		gateway:   gateway,
		pricing:   pricing,
		carts:     NewCartService(store, catalog, inventory, pricing, metrics, logger),
		orders:    NewOrderService(store, providers, events, metrics, pricing, logger),
		status:    NewOrderStatusService(store, events, metrics, logger),
		payments:  NewPaymentService(store, events, metrics, logger),
		cancels:   NewCancellationService(store, providers, events, metrics, logger),
		inventory: inventory,
	}
}

func testAddress() domain.Address {
	return domain.Address{
		FullName:   "Ada Lovelace",
		Line1:      "1 Analytical Way",
		City:       "London",
		PostalCode: "N1 9GU",
		Country:    "GB",
	}
}

func checkoutParams(customerID string, method domain.PaymentMethod) domain.CreateOrderParams {
	return domain.CreateOrderParams{
		CustomerID:      customerID,
		ShippingAddress: testAddress(),
		PaymentMethod:   method,
	}
}

// placeOrder seeds a product, fills the customer's cart, and creates an
// order, failing the test on any error along the way.
func (f *fixture) placeOrder(t *testing.T, customerID string, method domain.PaymentMethod) *domain.Order {
	t.Helper()
	ctx := context.Background()

	seedProduct(f.store, "prod-1", 1000, 10)
	_, err := f.carts.AddItem(ctx, customerID, domain.AddItemParams{ProductID: "prod-1", Quantity: 2})
	require.NoError(t, err)

	order, err := f.orders.CreateOrder(ctx, checkoutParams(customerID, method))
	require.NoError(t, err)
	return order
}

// stockLevel reads the raw inventory counter for assertions.
func (f *fixture) stockLevel(productID, variant string) (quantity, reserved int64) {
	f.store.locked(func(s *fakeState) {
		level := s.stock[stockKey(productID, variant)]
		quantity, reserved = level.Quantity, level.Reserved
	})
	return quantity, reserved
}
