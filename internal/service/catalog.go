package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/dukerupert/verdandi/internal/domain"
	"github.com/dukerupert/verdandi/internal/repository"
)

type catalogService struct {
	repo repository.Querier
}

// NewCatalogService creates the repository-backed catalog read model.
func NewCatalogService(repo repository.Querier) domain.CatalogService {
	return &catalogService{repo: repo}
}

func (s *catalogService) GetProduct(ctx context.Context, productID string) (*domain.Product, error) {
	product, err := s.repo.GetProduct(ctx, productID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrProductNotFound
		}
		return nil, domain.Internal(err, "catalog.GetProduct", "Failed to load product")
	}
	return &domain.Product{
		ID:         product.ID,
		Name:       product.Name,
		SKU:        product.SKU,
		PriceCents: product.PriceCents,
		ImageURL:   product.ImageURL,
	}, nil
}

// lookupCoupon resolves a coupon code leniently: unknown codes, lookup
// failures, and inactive coupons all come back as an unusable coupon rather
// than an error. A bad code never blocks checkout, it just grants nothing.
func lookupCoupon(ctx context.Context, q repository.Querier, code string, logger *slog.Logger) *domain.Coupon {
	if code == "" {
		return nil
	}
	coupon, err := q.GetCouponByCode(ctx, code)
	if err != nil {
		if !errors.Is(err, pgx.ErrNoRows) {
			logger.Warn("coupon lookup failed", "code", code, "error", err)
		}
		return nil
	}
	expired := coupon.ExpiresAt != nil && coupon.ExpiresAt.Before(time.Now())
	return &domain.Coupon{
		Code:           coupon.Code,
		PercentOff:     int(coupon.PercentOff),
		AmountOffCents: coupon.AmountOffCents,
		Active:         coupon.Active,
		Expired:        expired,
	}
}
