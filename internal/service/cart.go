package service

import (
	"context"
	"errors"
	"log/slog"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/dukerupert/verdandi/internal/domain"
	"github.com/dukerupert/verdandi/internal/repository"
	"github.com/dukerupert/verdandi/internal/telemetry"
)

type cartService struct {
	store     repository.Store
	catalog   domain.CatalogService
	inventory domain.InventoryService
	pricing   Pricing
	metrics   *telemetry.BusinessMetrics
	logger    *slog.Logger
}

// NewCartService creates the cart store. Availability checks here are
// advisory; the authoritative check happens at order creation.
func NewCartService(store repository.Store, catalog domain.CatalogService, inventory domain.InventoryService, pricing Pricing, metrics *telemetry.BusinessMetrics, logger *slog.Logger) domain.CartService {
	return &cartService{
		store:     store,
		catalog:   catalog,
		inventory: inventory,
		pricing:   pricing,
		metrics:   metrics,
		logger:    logger,
	}
}

func (s *cartService) GetOrCreateCart(ctx context.Context, customerID string) (*domain.CartSummary, error) {
	const op = "cart.GetOrCreateCart"
	if customerID == "" {
		return nil, domain.Invalid(op, "Customer ID is required")
	}
	cart, err := s.getOrCreate(ctx, op, customerID)
	if err != nil {
		return nil, err
	}
	return s.summarize(ctx, op, cart)
}

func (s *cartService) AddItem(ctx context.Context, customerID string, params domain.AddItemParams) (*domain.CartSummary, error) {
	const op = "cart.AddItem"
	if customerID == "" {
		return nil, domain.Invalid(op, "Customer ID is required")
	}
	if params.ProductID == "" {
		return nil, domain.Invalid(op, "Product ID is required")
	}
	if params.Quantity <= 0 {
		return nil, domain.ErrInvalidQuantity
	}

	product, err := s.catalog.GetProduct(ctx, params.ProductID)
	if err != nil {
		return nil, err
	}

	cart, err := s.getOrCreate(ctx, op, customerID)
	if err != nil {
		return nil, err
	}

	// Advisory availability check against the merged line quantity.
	requested := params.Quantity
	items, err := s.store.GetCartItems(ctx, cart.ID)
	if err != nil {
		return nil, domain.Internal(err, op, "Failed to load cart items")
	}
	for _, item := range items {
		if item.ProductID == params.ProductID && item.Variant == params.Variant {
			requested += int(item.Quantity)
			break
		}
	}
	if err := s.checkAvailable(ctx, params.ProductID, params.Variant, requested); err != nil {
		return nil, err
	}

	if _, err := s.store.UpsertCartItem(ctx, repository.UpsertCartItemParams{
		CartID:         cart.ID,
		ProductID:      product.ID,
		Variant:        params.Variant,
		ProductName:    product.Name,
		SKU:            product.SKU,
		Quantity:       int32(params.Quantity),
		UnitPriceCents: product.PriceCents,
		ImageURL:       product.ImageURL,
	}); err != nil {
		return nil, domain.Internal(err, op, "Failed to add cart item")
	}

	s.metrics.CartItemsAdded.WithLabelValues(product.ID).Inc()
	return s.summarize(ctx, op, cart)
}

func (s *cartService) UpdateItemQuantity(ctx context.Context, customerID, productID, variant string, quantity int) (*domain.CartSummary, error) {
	const op = "cart.UpdateItemQuantity"
	if quantity <= 0 {
		return s.RemoveItem(ctx, customerID, productID, variant)
	}
	cart, ok, err := s.lookup(ctx, op, customerID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, domain.ErrCartItemNotFound
	}

	items, err := s.store.GetCartItems(ctx, cart.ID)
	if err != nil {
		return nil, domain.Internal(err, op, "Failed to load cart items")
	}
	found := false
	for _, item := range items {
		if item.ProductID == productID && item.Variant == variant {
			found = true
			break
		}
	}
	if !found {
		return nil, domain.ErrCartItemNotFound
	}

	if err := s.checkAvailable(ctx, productID, variant, quantity); err != nil {
		return nil, err
	}

	if err := s.store.SetCartItemQuantity(ctx, repository.SetCartItemQuantityParams{
		CartID:    cart.ID,
		ProductID: productID,
		Variant:   variant,
		Quantity:  int32(quantity),
	}); err != nil {
		return nil, domain.Internal(err, op, "Failed to update cart item")
	}
	return s.summarize(ctx, op, cart)
}

func (s *cartService) RemoveItem(ctx context.Context, customerID, productID, variant string) (*domain.CartSummary, error) {
	const op = "cart.RemoveItem"
	cart, ok, err := s.lookup(ctx, op, customerID)
	if err != nil {
		return nil, err
	}
	if !ok {
		// No cart means nothing to remove; don't create one just to say so.
		return s.emptySummary(customerID), nil
	}
	// Removing a line that is not there is a no-op success.
	if err := s.store.RemoveCartItem(ctx, repository.CartItemKeyParams{
		CartID:    cart.ID,
		ProductID: productID,
		Variant:   variant,
	}); err != nil {
		return nil, domain.Internal(err, op, "Failed to remove cart item")
	}
	s.metrics.CartItemsRemoved.WithLabelValues(productID).Inc()
	return s.summarize(ctx, op, cart)
}

func (s *cartService) ClearCart(ctx context.Context, customerID string) (*domain.CartSummary, error) {
	const op = "cart.ClearCart"
	cart, ok, err := s.lookup(ctx, op, customerID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return s.emptySummary(customerID), nil
	}
	if err := s.store.ClearCart(ctx, cart.ID); err != nil {
		return nil, domain.Internal(err, op, "Failed to clear cart")
	}
	s.metrics.CartCleared.Inc()
	return s.summarize(ctx, op, cart)
}

// GetSummary is a pure read: a customer with no cart yet gets the empty
// summary and no cart row is written.
func (s *cartService) GetSummary(ctx context.Context, customerID string) (*domain.CartSummary, error) {
	const op = "cart.GetSummary"
	cart, ok, err := s.lookup(ctx, op, customerID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return s.emptySummary(customerID), nil
	}
	return s.summarize(ctx, op, cart)
}

func (s *cartService) lookup(ctx context.Context, op, customerID string) (repository.Cart, bool, error) {
	cart, err := s.store.GetCartByCustomer(ctx, customerID)
	if err == nil {
		return cart, true, nil
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return repository.Cart{}, false, nil
	}
	return repository.Cart{}, false, domain.Internal(err, op, "Failed to load cart")
}

func (s *cartService) getOrCreate(ctx context.Context, op, customerID string) (repository.Cart, error) {
	cart, ok, err := s.lookup(ctx, op, customerID)
	if err != nil || ok {
		return cart, err
	}
	// The insert upserts on customer_id, so a concurrent first request for
	// the same customer converges on one cart.
	cart, err = s.store.CreateCart(ctx, repository.CreateCartParams{
		ID:         uuid.NewString(),
		CustomerID: customerID,
	})
	if err != nil {
		return repository.Cart{}, domain.Internal(err, op, "Failed to create cart")
	}
	return cart, nil
}

func (s *cartService) emptySummary(customerID string) *domain.CartSummary {
	return &domain.CartSummary{
		Cart:  domain.Cart{CustomerID: customerID},
		Items: []domain.CartItem{},
	}
}

func (s *cartService) checkAvailable(ctx context.Context, productID, variant string, quantity int) error {
	available, err := s.inventory.CheckAvailability(ctx, productID, variant)
	if err != nil {
		if domain.ErrorCode(err) == domain.ENOTFOUND {
			// No stock record reads as nothing available.
			available = 0
		} else {
			return err
		}
	}
	if available < int64(quantity) {
		return domain.ErrOutOfStock
	}
	return nil
}

// summarize recomputes the summary from current lines. Totals are derived
// on every read, never stored.
func (s *cartService) summarize(ctx context.Context, op string, cart repository.Cart) (*domain.CartSummary, error) {
	rows, err := s.store.GetCartItems(ctx, cart.ID)
	if err != nil {
		return nil, domain.Internal(err, op, "Failed to load cart items")
	}

	summary := &domain.CartSummary{
		Cart: domain.Cart{
			ID:         cart.ID,
			CustomerID: cart.CustomerID,
			CreatedAt:  cart.CreatedAt,
			UpdatedAt:  cart.UpdatedAt,
		},
		Items: make([]domain.CartItem, 0, len(rows)),
	}
	for _, row := range rows {
		line := domain.CartItem{
			ProductID:         row.ProductID,
			Variant:           row.Variant,
			ProductName:       row.ProductName,
			SKU:               row.SKU,
			Quantity:          int(row.Quantity),
			UnitPriceCents:    row.UnitPriceCents,
			LineSubtotalCents: int64(row.Quantity) * row.UnitPriceCents,
			ImageURL:          row.ImageURL,
		}
		summary.Items = append(summary.Items, line)
		summary.ItemCount += line.Quantity
		summary.SubtotalCents += line.LineSubtotalCents
	}

	summary.ShippingCents = s.pricing.Shipping(summary.SubtotalCents)
	summary.TaxCents = s.pricing.Tax(summary.SubtotalCents - summary.DiscountCents)
	summary.TotalCents = summary.SubtotalCents - summary.DiscountCents + summary.ShippingCents + summary.TaxCents

	s.metrics.CartValue.Observe(float64(summary.TotalCents))
	return summary, nil
}
