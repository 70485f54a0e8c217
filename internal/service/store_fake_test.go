package service

import (
	"context"
	"io"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/dukerupert/verdandi/internal/repository"
	"github.com/dukerupert/verdandi/internal/telemetry"
)

// fakeStore is an in-memory repository.Store. It reproduces the semantics
// the services rely on: conditional updates report rows affected, unique
// order numbers and transaction IDs raise 23505, and ExecTx is atomic
// (a failing function restores the pre-transaction state). The mutex
// serializes transactions the way the database serializes the row locks,
// which lets the concurrency tests run real goroutine races.
type fakeStore struct {
	mu    sync.Mutex
	state *fakeState
}

func newFakeStore() *fakeStore {
	return &fakeStore{state: newFakeState()}
}

func (f *fakeStore) ExecTx(ctx context.Context, fn func(repository.Querier) error) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	snapshot := f.state.clone()
	if err := fn(f.state); err != nil {
		f.state = snapshot
		return err
	}
	return nil
}

func (f *fakeStore) locked(fn func(*fakeState)) {
	f.mu.Lock()
	defer f.mu.Unlock()
	fn(f.state)
}

// fakeState holds the data and implements Querier without locking;
// fakeStore adds the mutex around it.
type fakeState struct {
	carts      map[string]repository.Cart // keyed by customer ID
	cartItems  map[string][]repository.CartItem
	products   map[string]repository.Product
	coupons    map[string]repository.Coupon
	stock      map[string]repository.InventoryLevel
	orders     map[string]repository.Order
	orderItems map[string][]repository.OrderItem
	history    map[string][]repository.OrderStatusHistory
	payments   map[string]repository.Payment // keyed by order ID
	nextID     int64
}

func newFakeState() *fakeState {
	return &fakeState{
		carts:      make(map[string]repository.Cart),
		cartItems:  make(map[string][]repository.CartItem),
		products:   make(map[string]repository.Product),
		coupons:    make(map[string]repository.Coupon),
		stock:      make(map[string]repository.InventoryLevel),
		orders:     make(map[string]repository.Order),
		orderItems: make(map[string][]repository.OrderItem),
		history:    make(map[string][]repository.OrderStatusHistory),
		payments:   make(map[string]repository.Payment),
	}
}

func (s *fakeState) clone() *fakeState {
	out := newFakeState()
	out.nextID = s.nextID
	for k, v := range s.carts {
		out.carts[k] = v
	}
	for k, v := range s.cartItems {
		out.cartItems[k] = append([]repository.CartItem(nil), v...)
	}
	for k, v := range s.products {
		out.products[k] = v
	}
	for k, v := range s.coupons {
		out.coupons[k] = v
	}
	for k, v := range s.stock {
		out.stock[k] = v
	}
	for k, v := range s.orders {
		out.orders[k] = v
	}
	for k, v := range s.orderItems {
		out.orderItems[k] = append([]repository.OrderItem(nil), v...)
	}
	for k, v := range s.history {
		out.history[k] = append([]repository.OrderStatusHistory(nil), v...)
	}
	for k, v := range s.payments {
		out.payments[k] = v
	}
	return out
}

func stockKey(productID, variant string) string { return productID + "|" + variant }

func uniqueViolation() error { return &pgconn.PgError{Code: "23505"} }

// --- carts ---

func (s *fakeState) GetCartByCustomer(ctx context.Context, customerID string) (repository.Cart, error) {
	cart, ok := s.carts[customerID]
	if !ok {
		return repository.Cart{}, pgx.ErrNoRows
	}
	return cart, nil
}

func (s *fakeState) CreateCart(ctx context.Context, arg repository.CreateCartParams) (repository.Cart, error) {
	if existing, ok := s.carts[arg.CustomerID]; ok {
		existing.UpdatedAt = time.Now()
		s.carts[arg.CustomerID] = existing
		return existing, nil
	}
	cart := repository.Cart{
		ID:         arg.ID,
		CustomerID: arg.CustomerID,
		CreatedAt:  time.Now(),
		UpdatedAt:  time.Now(),
	}
	s.carts[arg.CustomerID] = cart
	return cart, nil
}

func (s *fakeState) GetCartItems(ctx context.Context, cartID string) ([]repository.CartItem, error) {
	return append([]repository.CartItem(nil), s.cartItems[cartID]...), nil
}

func (s *fakeState) UpsertCartItem(ctx context.Context, arg repository.UpsertCartItemParams) (repository.CartItem, error) {
	items := s.cartItems[arg.CartID]
	for i, item := range items {
		if item.ProductID == arg.ProductID && item.Variant == arg.Variant {
			item.Quantity += arg.Quantity
			item.UnitPriceCents = arg.UnitPriceCents
			item.UpdatedAt = time.Now()
			items[i] = item
			return item, nil
		}
	}
	item := repository.CartItem{
		CartID:         arg.CartID,
		ProductID:      arg.ProductID,
		Variant:        arg.Variant,
		ProductName:    arg.ProductName,
		SKU:            arg.SKU,
		Quantity:       arg.Quantity,
		UnitPriceCents: arg.UnitPriceCents,
		ImageURL:       arg.ImageURL,
		CreatedAt:      time.Now(),
		UpdatedAt:      time.Now(),
	}
	s.cartItems[arg.CartID] = append(items, item)
	return item, nil
}

func (s *fakeState) SetCartItemQuantity(ctx context.Context, arg repository.SetCartItemQuantityParams) error {
	items := s.cartItems[arg.CartID]
	for i, item := range items {
		if item.ProductID == arg.ProductID && item.Variant == arg.Variant {
			items[i].Quantity = arg.Quantity
			items[i].UpdatedAt = time.Now()
		}
	}
	return nil
}

func (s *fakeState) RemoveCartItem(ctx context.Context, arg repository.CartItemKeyParams) error {
	items := s.cartItems[arg.CartID]
	out := items[:0]
	for _, item := range items {
		if item.ProductID == arg.ProductID && item.Variant == arg.Variant {
			continue
		}
		out = append(out, item)
	}
	s.cartItems[arg.CartID] = out
	return nil
}

func (s *fakeState) ClearCart(ctx context.Context, cartID string) error {
	s.cartItems[cartID] = nil
	return nil
}

// --- catalog ---

func (s *fakeState) GetProduct(ctx context.Context, productID string) (repository.Product, error) {
	product, ok := s.products[productID]
	if !ok {
		return repository.Product{}, pgx.ErrNoRows
	}
	return product, nil
}

func (s *fakeState) GetCouponByCode(ctx context.Context, code string) (repository.Coupon, error) {
	coupon, ok := s.coupons[code]
	if !ok {
		return repository.Coupon{}, pgx.ErrNoRows
	}
	return coupon, nil
}

// --- inventory ---

func (s *fakeState) GetInventoryLevel(ctx context.Context, arg repository.StockKeyParams) (repository.InventoryLevel, error) {
	level, ok := s.stock[stockKey(arg.ProductID, arg.Variant)]
	if !ok {
		return repository.InventoryLevel{}, pgx.ErrNoRows
	}
	return level, nil
}

func (s *fakeState) UpsertInventoryLevel(ctx context.Context, arg repository.UpsertInventoryLevelParams) error {
	key := stockKey(arg.ProductID, arg.Variant)
	level, ok := s.stock[key]
	if !ok {
		level = repository.InventoryLevel{ProductID: arg.ProductID, Variant: arg.Variant}
	}
	level.Quantity = arg.Quantity
	level.UpdatedAt = time.Now()
	s.stock[key] = level
	return nil
}

func (s *fakeState) DecrementStock(ctx context.Context, arg repository.AdjustStockParams) (int64, error) {
	key := stockKey(arg.ProductID, arg.Variant)
	level, ok := s.stock[key]
	if !ok || level.Quantity-level.Reserved < arg.Quantity {
		return 0, nil
	}
	level.Quantity -= arg.Quantity
	level.UpdatedAt = time.Now()
	s.stock[key] = level
	return 1, nil
}

func (s *fakeState) RestoreStock(ctx context.Context, arg repository.AdjustStockParams) error {
	key := stockKey(arg.ProductID, arg.Variant)
	level, ok := s.stock[key]
	if !ok {
		return nil
	}
	level.Quantity += arg.Quantity
	level.UpdatedAt = time.Now()
	s.stock[key] = level
	return nil
}

// --- orders ---

func (s *fakeState) CreateOrder(ctx context.Context, arg repository.CreateOrderParams) (repository.Order, error) {
	for _, existing := range s.orders {
		if existing.OrderNumber == arg.OrderNumber {
			return repository.Order{}, uniqueViolation()
		}
	}
	order := repository.Order{
		ID:              arg.ID,
		OrderNumber:     arg.OrderNumber,
		CustomerID:      arg.CustomerID,
		Status:          arg.Status,
		SubtotalCents:   arg.SubtotalCents,
		DiscountCents:   arg.DiscountCents,
		ShippingCents:   arg.ShippingCents,
		TaxCents:        arg.TaxCents,
		TotalCents:      arg.TotalCents,
		CouponCode:      arg.CouponCode,
		Currency:        arg.Currency,
		ShippingAddress: arg.ShippingAddress,
		BillingAddress:  arg.BillingAddress,
		Notes:           arg.Notes,
		CreatedAt:       time.Now(),
		UpdatedAt:       time.Now(),
	}
	s.orders[order.ID] = order
	return order, nil
}

func (s *fakeState) CreateOrderItem(ctx context.Context, arg repository.CreateOrderItemParams) (repository.OrderItem, error) {
	s.nextID++
	item := repository.OrderItem{
		ID:             s.nextID,
		OrderID:        arg.OrderID,
		ProductID:      arg.ProductID,
		Variant:        arg.Variant,
		ProductName:    arg.ProductName,
		SKU:            arg.SKU,
		Quantity:       arg.Quantity,
		UnitPriceCents: arg.UnitPriceCents,
		LineTotalCents: arg.LineTotalCents,
	}
	s.orderItems[arg.OrderID] = append(s.orderItems[arg.OrderID], item)
	return item, nil
}

func (s *fakeState) GetOrder(ctx context.Context, orderID string) (repository.Order, error) {
	order, ok := s.orders[orderID]
	if !ok {
		return repository.Order{}, pgx.ErrNoRows
	}
	return order, nil
}

func (s *fakeState) GetOrderForUpdate(ctx context.Context, orderID string) (repository.Order, error) {
	return s.GetOrder(ctx, orderID)
}

func (s *fakeState) GetOrderByNumber(ctx context.Context, orderNumber string) (repository.Order, error) {
	for _, order := range s.orders {
		if order.OrderNumber == orderNumber {
			return order, nil
		}
	}
	return repository.Order{}, pgx.ErrNoRows
}

func (s *fakeState) ListOrdersByCustomer(ctx context.Context, customerID string) ([]repository.Order, error) {
	var out []repository.Order
	for _, order := range s.orders {
		if order.CustomerID == customerID {
			out = append(out, order)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (s *fakeState) GetOrderItems(ctx context.Context, orderID string) ([]repository.OrderItem, error) {
	return append([]repository.OrderItem(nil), s.orderItems[orderID]...), nil
}

func (s *fakeState) UpdateOrderStatus(ctx context.Context, arg repository.UpdateOrderStatusParams) (int64, error) {
	order, ok := s.orders[arg.ID]
	if !ok || order.Status != arg.FromStatus {
		return 0, nil
	}
	order.Status = arg.Status
	order.UpdatedAt = time.Now()
	s.orders[arg.ID] = order
	return 1, nil
}

func (s *fakeState) SetOrderTracking(ctx context.Context, arg repository.SetOrderTrackingParams) error {
	order, ok := s.orders[arg.ID]
	if !ok {
		return nil
	}
	order.Carrier = arg.Carrier
	order.TrackingNumber = arg.TrackingNumber
	order.UpdatedAt = time.Now()
	s.orders[arg.ID] = order
	return nil
}

func (s *fakeState) SetOrderCancellation(ctx context.Context, arg repository.SetOrderCancellationParams) error {
	order, ok := s.orders[arg.ID]
	if !ok {
		return nil
	}
	now := time.Now()
	order.CancelReason = arg.Reason
	order.CancelActor = arg.Actor
	order.CancelledAt = &now
	order.RefundStatus = arg.RefundStatus
	order.UpdatedAt = now
	s.orders[arg.ID] = order
	return nil
}

func (s *fakeState) SetOrderRefundStatus(ctx context.Context, arg repository.SetOrderRefundStatusParams) error {
	order, ok := s.orders[arg.ID]
	if !ok {
		return nil
	}
	order.RefundStatus = arg.RefundStatus
	order.UpdatedAt = time.Now()
	s.orders[arg.ID] = order
	return nil
}

func (s *fakeState) AppendOrderStatusHistory(ctx context.Context, arg repository.AppendOrderStatusHistoryParams) (repository.OrderStatusHistory, error) {
	s.nextID++
	entry := repository.OrderStatusHistory{
		ID:        s.nextID,
		OrderID:   arg.OrderID,
		Status:    arg.Status,
		Note:      arg.Note,
		Actor:     arg.Actor,
		CreatedAt: time.Now(),
	}
	s.history[arg.OrderID] = append(s.history[arg.OrderID], entry)
	return entry, nil
}

func (s *fakeState) GetOrderStatusHistory(ctx context.Context, orderID string) ([]repository.OrderStatusHistory, error) {
	return append([]repository.OrderStatusHistory(nil), s.history[orderID]...), nil
}

// --- payments ---

func (s *fakeState) CreatePayment(ctx context.Context, arg repository.CreatePaymentParams) (repository.Payment, error) {
	payment := repository.Payment{
		OrderID:       arg.OrderID,
		Method:        arg.Method,
		Status:        arg.Status,
		TransactionID: arg.TransactionID,
		AmountCents:   arg.AmountCents,
		Currency:      arg.Currency,
		CreatedAt:     time.Now(),
		UpdatedAt:     time.Now(),
	}
	s.payments[arg.OrderID] = payment
	return payment, nil
}

func (s *fakeState) GetPaymentByOrder(ctx context.Context, orderID string) (repository.Payment, error) {
	payment, ok := s.payments[orderID]
	if !ok {
		return repository.Payment{}, pgx.ErrNoRows
	}
	return payment, nil
}

func (s *fakeState) GetPaymentByTransactionID(ctx context.Context, transactionID string) (repository.Payment, error) {
	if transactionID != "" {
		for _, payment := range s.payments {
			if payment.TransactionID == transactionID {
				return payment, nil
			}
		}
	}
	return repository.Payment{}, pgx.ErrNoRows
}

func (s *fakeState) UpdatePaymentStatus(ctx context.Context, arg repository.UpdatePaymentStatusParams) (int64, error) {
	payment, ok := s.payments[arg.OrderID]
	if !ok || payment.Status != arg.FromStatus {
		return 0, nil
	}
	payment.Status = arg.Status
	payment.TransactionID = arg.TransactionID
	payment.PaidAt = arg.PaidAt
	payment.UpdatedAt = time.Now()
	s.payments[arg.OrderID] = payment
	return 1, nil
}

func (s *fakeState) SetPaymentTransactionID(ctx context.Context, arg repository.SetPaymentTransactionIDParams) error {
	payment, ok := s.payments[arg.OrderID]
	if !ok {
		return nil
	}
	payment.TransactionID = arg.TransactionID
	payment.UpdatedAt = time.Now()
	s.payments[arg.OrderID] = payment
	return nil
}

func (s *fakeState) ListStalePendingPayments(ctx context.Context, olderThan time.Time) ([]repository.Payment, error) {
	var out []repository.Payment
	for _, payment := range s.payments {
		if payment.Status == "pending" && payment.TransactionID != "" && payment.CreatedAt.Before(olderThan) {
			out = append(out, payment)
		}
	}
	return out, nil
}

// --- locked delegation so fakeStore satisfies repository.Store ---

func (f *fakeStore) GetCartByCustomer(ctx context.Context, customerID string) (repository.Cart, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.state.GetCartByCustomer(ctx, customerID)
}

func (f *fakeStore) CreateCart(ctx context.Context, arg repository.CreateCartParams) (repository.Cart, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.state.CreateCart(ctx, arg)
}

func (f *fakeStore) GetCartItems(ctx context.Context, cartID string) ([]repository.CartItem, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.state.GetCartItems(ctx, cartID)
}

func (f *fakeStore) UpsertCartItem(ctx context.Context, arg repository.UpsertCartItemParams) (repository.CartItem, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.state.UpsertCartItem(ctx, arg)
}

func (f *fakeStore) SetCartItemQuantity(ctx context.Context, arg repository.SetCartItemQuantityParams) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.state.SetCartItemQuantity(ctx, arg)
}

func (f *fakeStore) RemoveCartItem(ctx context.Context, arg repository.CartItemKeyParams) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.state.RemoveCartItem(ctx, arg)
}

func (f *fakeStore) ClearCart(ctx context.Context, cartID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.state.ClearCart(ctx, cartID)
}

func (f *fakeStore) GetProduct(ctx context.Context, productID string) (repository.Product, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.state.GetProduct(ctx, productID)
}

func (f *fakeStore) GetCouponByCode(ctx context.Context, code string) (repository.Coupon, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.state.GetCouponByCode(ctx, code)
}

func (f *fakeStore) GetInventoryLevel(ctx context.Context, arg repository.StockKeyParams) (repository.InventoryLevel, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.state.GetInventoryLevel(ctx, arg)
}

func (f *fakeStore) UpsertInventoryLevel(ctx context.Context, arg repository.UpsertInventoryLevelParams) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.state.UpsertInventoryLevel(ctx, arg)
}

func (f *fakeStore) DecrementStock(ctx context.Context, arg repository.AdjustStockParams) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.state.DecrementStock(ctx, arg)
}

func (f *fakeStore) RestoreStock(ctx context.Context, arg repository.AdjustStockParams) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.state.RestoreStock(ctx, arg)
}

func (f *fakeStore) CreateOrder(ctx context.Context, arg repository.CreateOrderParams) (repository.Order, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.state.CreateOrder(ctx, arg)
}

func (f *fakeStore) CreateOrderItem(ctx context.Context, arg repository.CreateOrderItemParams) (repository.OrderItem, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.state.CreateOrderItem(ctx, arg)
}

func (f *fakeStore) GetOrder(ctx context.Context, orderID string) (repository.Order, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.state.GetOrder(ctx, orderID)
}

func (f *fakeStore) GetOrderForUpdate(ctx context.Context, orderID string) (repository.Order, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.state.GetOrderForUpdate(ctx, orderID)
}

func (f *fakeStore) GetOrderByNumber(ctx context.Context, orderNumber string) (repository.Order, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.state.GetOrderByNumber(ctx, orderNumber)
}

func (f *fakeStore) ListOrdersByCustomer(ctx context.Context, customerID string) ([]repository.Order, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.state.ListOrdersByCustomer(ctx, customerID)
}

func (f *fakeStore) GetOrderItems(ctx context.Context, orderID string) ([]repository.OrderItem, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.state.GetOrderItems(ctx, orderID)
}

func (f *fakeStore) UpdateOrderStatus(ctx context.Context, arg repository.UpdateOrderStatusParams) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.state.UpdateOrderStatus(ctx, arg)
}

func (f *fakeStore) SetOrderTracking(ctx context.Context, arg repository.SetOrderTrackingParams) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.state.SetOrderTracking(ctx, arg)
}

func (f *fakeStore) SetOrderCancellation(ctx context.Context, arg repository.SetOrderCancellationParams) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.state.SetOrderCancellation(ctx, arg)
}

func (f *fakeStore) SetOrderRefundStatus(ctx context.Context, arg repository.SetOrderRefundStatusParams) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.state.SetOrderRefundStatus(ctx, arg)
}

func (f *fakeStore) AppendOrderStatusHistory(ctx context.Context, arg repository.AppendOrderStatusHistoryParams) (repository.OrderStatusHistory, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.state.AppendOrderStatusHistory(ctx, arg)
}

func (f *fakeStore) GetOrderStatusHistory(ctx context.Context, orderID string) ([]repository.OrderStatusHistory, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.state.GetOrderStatusHistory(ctx, orderID)
}

func (f *fakeStore) CreatePayment(ctx context.Context, arg repository.CreatePaymentParams) (repository.Payment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.state.CreatePayment(ctx, arg)
}

func (f *fakeStore) GetPaymentByOrder(ctx context.Context, orderID string) (repository.Payment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.state.GetPaymentByOrder(ctx, orderID)
}

func (f *fakeStore) GetPaymentByTransactionID(ctx context.Context, transactionID string) (repository.Payment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.state.GetPaymentByTransactionID(ctx, transactionID)
}

func (f *fakeStore) UpdatePaymentStatus(ctx context.Context, arg repository.UpdatePaymentStatusParams) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.state.UpdatePaymentStatus(ctx, arg)
}

func (f *fakeStore) SetPaymentTransactionID(ctx context.Context, arg repository.SetPaymentTransactionIDParams) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.state.SetPaymentTransactionID(ctx, arg)
}

func (f *fakeStore) ListStalePendingPayments(ctx context.Context, olderThan time.Time) ([]repository.Payment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.state.ListStalePendingPayments(ctx, olderThan)
}

var _ repository.Store = (*fakeStore)(nil)

// --- shared test fixtures ---

var (
	metricsOnce   sync.Once
	sharedMetrics *telemetry.BusinessMetrics
)

// testMetrics returns the package-wide metrics instance. Prometheus
// collectors register globally, so the test binary creates them once.
func testMetrics() *telemetry.BusinessMetrics {
	metricsOnce.Do(func() {
		sharedMetrics = telemetry.NewBusinessMetrics("test")
	})
	return sharedMetrics
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// seedProduct registers a product with stock in one call.
func seedProduct(store *fakeStore, id string, priceCents int64, stock int64) {
	store.locked(func(s *fakeState) {
		s.products[id] = repository.Product{
			ID:         id,
			Name:       "Product " + id,
			SKU:        "SKU-" + id,
			PriceCents: priceCents,
		}
		s.stock[stockKey(id, "")] = repository.InventoryLevel{
			ProductID: id,
			Quantity:  stock,
		}
	})
}

// seedVariantStock adds a stock counter for a product variant.
func seedVariantStock(store *fakeStore, productID, variant string, quantity int64) {
	store.locked(func(s *fakeState) {
		s.stock[stockKey(productID, variant)] = repository.InventoryLevel{
			ProductID: productID,
			Variant:   variant,
			Quantity:  quantity,
		}
	})
}

// seedCoupon registers a coupon row.
func seedCoupon(store *fakeStore, coupon repository.Coupon) {
	store.locked(func(s *fakeState) {
		s.coupons[coupon.Code] = coupon
	})
}
