package repository

import (
	"context"
)

const getProduct = `
SELECT id, name, sku, price_cents, image_url
FROM products
WHERE id = $1
`

func (q *Queries) GetProduct(ctx context.Context, productID string) (Product, error) {
	var p Product
	row := q.db.QueryRow(ctx, getProduct, productID)
	err := row.Scan(&p.ID, &p.Name, &p.SKU, &p.PriceCents, &p.ImageURL)
	return p, err
}

const getCouponByCode = `
SELECT code, percent_off, amount_off_cents, active, expires_at
FROM coupons
WHERE code = $1
`

func (q *Queries) GetCouponByCode(ctx context.Context, code string) (Coupon, error) {
	var c Coupon
	row := q.db.QueryRow(ctx, getCouponByCode, code)
	err := row.Scan(&c.Code, &c.PercentOff, &c.AmountOffCents, &c.Active, &c.ExpiresAt)
	return c, err
}

const getInventoryLevel = `
SELECT product_id, variant, quantity, reserved, updated_at
FROM inventory_levels
WHERE product_id = $1 AND variant = $2
`

func (q *Queries) GetInventoryLevel(ctx context.Context, arg StockKeyParams) (InventoryLevel, error) {
	var l InventoryLevel
	row := q.db.QueryRow(ctx, getInventoryLevel, arg.ProductID, arg.Variant)
	err := row.Scan(&l.ProductID, &l.Variant, &l.Quantity, &l.Reserved, &l.UpdatedAt)
	return l, err
}

const upsertInventoryLevel = `
INSERT INTO inventory_levels (product_id, variant, quantity)
VALUES ($1, $2, $3)
ON CONFLICT (product_id, variant) DO UPDATE
SET quantity = EXCLUDED.quantity, updated_at = now()
`

func (q *Queries) UpsertInventoryLevel(ctx context.Context, arg UpsertInventoryLevelParams) error {
	_, err := q.db.Exec(ctx, upsertInventoryLevel, arg.ProductID, arg.Variant, arg.Quantity)
	return err
}

const decrementStock = `
UPDATE inventory_levels
SET quantity = quantity - $3, updated_at = now()
WHERE product_id = $1 AND variant = $2 AND quantity - reserved >= $3
`

// DecrementStock is the conditional decrement every reservation goes
// through. Zero rows affected means the line lost the race or the stock
// was short; the caller treats both as insufficient stock. Stock can never
// go negative through this path.
func (q *Queries) DecrementStock(ctx context.Context, arg AdjustStockParams) (int64, error) {
	tag, err := q.db.Exec(ctx, decrementStock, arg.ProductID, arg.Variant, arg.Quantity)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

const restoreStock = `
UPDATE inventory_levels
SET quantity = quantity + $3, updated_at = now()
WHERE product_id = $1 AND variant = $2
`

func (q *Queries) RestoreStock(ctx context.Context, arg AdjustStockParams) error {
	_, err := q.db.Exec(ctx, restoreStock, arg.ProductID, arg.Variant, arg.Quantity)
	return err
}
