package service

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"github.com/dukerupert/verdandi/internal/domain"
	"github.com/dukerupert/verdandi/internal/repository"
)

type inventoryService struct {
	store repository.Store
}

// NewInventoryService creates the stock guard. All mutation goes through
// conditional decrements so concurrent checkouts cannot oversell.
func NewInventoryService(store repository.Store) domain.InventoryService {
	return &inventoryService{store: store}
}

func (s *inventoryService) CheckAvailability(ctx context.Context, productID, variant string) (int64, error) {
	level, err := s.store.GetInventoryLevel(ctx, repository.StockKeyParams{
		ProductID: productID,
		Variant:   variant,
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, domain.ErrStockNotFound
		}
		return 0, domain.Internal(err, "inventory.CheckAvailability", "Failed to read stock level")
	}
	available := level.Quantity - level.Reserved
	if available < 0 {
		available = 0
	}
	return available, nil
}

func (s *inventoryService) ReserveAndDecrement(ctx context.Context, lines []domain.StockLine) error {
	return s.store.ExecTx(ctx, func(q repository.Querier) error {
		return reserveLines(ctx, q, "inventory.ReserveAndDecrement", lines)
	})
}

func (s *inventoryService) Release(ctx context.Context, lines []domain.StockLine) error {
	return s.store.ExecTx(ctx, func(q repository.Querier) error {
		return releaseLines(ctx, q, lines)
	})
}

// reserveLines decrements stock for every line inside the caller's
// transaction. The first conditional decrement that affects zero rows
// aborts the whole batch; the returned error names every line that cannot
// be satisfied, and the rollback undoes any decrement already applied.
func reserveLines(ctx context.Context, q repository.Querier, op string, lines []domain.StockLine) error {
	for i, line := range lines {
		affected, err := q.DecrementStock(ctx, repository.AdjustStockParams{
			ProductID: line.ProductID,
			Variant:   line.Variant,
			Quantity:  int64(line.Quantity),
		})
		if err != nil {
			return domain.Internal(err, op, "Failed to decrement stock")
		}
		if affected == 0 {
			return domain.InsufficientStock(op, collectShortages(ctx, q, lines[i:]))
		}
	}
	return nil
}

// collectShortages reads availability for the given lines and reports every
// one that cannot be satisfied. Called after a decrement already failed, so
// at least one shortage is always found.
func collectShortages(ctx context.Context, q repository.Querier, lines []domain.StockLine) []domain.StockShortage {
	var shortages []domain.StockShortage
	for _, line := range lines {
		var available int64
		level, err := q.GetInventoryLevel(ctx, repository.StockKeyParams{
			ProductID: line.ProductID,
			Variant:   line.Variant,
		})
		if err == nil {
			available = level.Quantity - level.Reserved
			if available < 0 {
				available = 0
			}
		}
		if err != nil || available < int64(line.Quantity) {
			shortages = append(shortages, domain.StockShortage{
				ProductID: line.ProductID,
				Variant:   line.Variant,
				Requested: line.Quantity,
				Available: available,
			})
		}
	}
	return shortages
}

// releaseLines restores stock for the given lines inside the caller's
// transaction. Callers guarantee at-most-once through order state.
func releaseLines(ctx context.Context, q repository.Querier, lines []domain.StockLine) error {
	for _, line := range lines {
		if err := q.RestoreStock(ctx, repository.AdjustStockParams{
			ProductID: line.ProductID,
			Variant:   line.Variant,
			Quantity:  int64(line.Quantity),
		}); err != nil {
			return domain.Internal(err, "inventory.Release", "Failed to restore stock")
		}
	}
	return nil
}
