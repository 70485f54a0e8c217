package repository

import (
	"context"
)

const getCartByCustomer = `
SELECT id, customer_id, created_at, updated_at
FROM carts
WHERE customer_id = $1
`

func (q *Queries) GetCartByCustomer(ctx context.Context, customerID string) (Cart, error) {
	var c Cart
	row := q.db.QueryRow(ctx, getCartByCustomer, customerID)
	err := row.Scan(&c.ID, &c.CustomerID, &c.CreatedAt, &c.UpdatedAt)
	return c, err
}

const createCart = `
INSERT INTO carts (id, customer_id)
VALUES ($1, $2)
ON CONFLICT (customer_id) DO UPDATE SET updated_at = now()
RETURNING id, customer_id, created_at, updated_at
`

func (q *Queries) CreateCart(ctx context.Context, arg CreateCartParams) (Cart, error) {
	var c Cart
	row := q.db.QueryRow(ctx, createCart, arg.ID, arg.CustomerID)
	err := row.Scan(&c.ID, &c.CustomerID, &c.CreatedAt, &c.UpdatedAt)
	return c, err
}

const getCartItems = `
SELECT cart_id, product_id, variant, product_name, sku, quantity, unit_price_cents, image_url, created_at, updated_at
FROM cart_items
WHERE cart_id = $1
ORDER BY created_at, product_id, variant
`

func (q *Queries) GetCartItems(ctx context.Context, cartID string) ([]CartItem, error) {
	rows, err := q.db.Query(ctx, getCartItems, cartID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []CartItem
	for rows.Next() {
		var i CartItem
		if err := rows.Scan(
			&i.CartID, &i.ProductID, &i.Variant, &i.ProductName, &i.SKU,
			&i.Quantity, &i.UnitPriceCents, &i.ImageURL, &i.CreatedAt, &i.UpdatedAt,
		); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	return items, rows.Err()
}

const upsertCartItem = `
INSERT INTO cart_items (cart_id, product_id, variant, product_name, sku, quantity, unit_price_cents, image_url)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
ON CONFLICT (cart_id, product_id, variant) DO UPDATE
SET quantity = cart_items.quantity + EXCLUDED.quantity,
    unit_price_cents = EXCLUDED.unit_price_cents,
    updated_at = now()
RETURNING cart_id, product_id, variant, product_name, sku, quantity, unit_price_cents, image_url, created_at, updated_at
`

// UpsertCartItem merges into an existing line with the same
// (product, variant) key rather than duplicating it.
func (q *Queries) UpsertCartItem(ctx context.Context, arg UpsertCartItemParams) (CartItem, error) {
	var i CartItem
	row := q.db.QueryRow(ctx, upsertCartItem,
		arg.CartID, arg.ProductID, arg.Variant, arg.ProductName, arg.SKU,
		arg.Quantity, arg.UnitPriceCents, arg.ImageURL,
	)
	err := row.Scan(
		&i.CartID, &i.ProductID, &i.Variant, &i.ProductName, &i.SKU,
		&i.Quantity, &i.UnitPriceCents, &i.ImageURL, &i.CreatedAt, &i.UpdatedAt,
	)
	return i, err
}

const setCartItemQuantity = `
UPDATE cart_items
SET quantity = $4, updated_at = now()
WHERE cart_id = $1 AND product_id = $2 AND variant = $3
`

func (q *Queries) SetCartItemQuantity(ctx context.Context, arg SetCartItemQuantityParams) error {
	_, err := q.db.Exec(ctx, setCartItemQuantity, arg.CartID, arg.ProductID, arg.Variant, arg.Quantity)
	return err
}

const removeCartItem = `
DELETE FROM cart_items
WHERE cart_id = $1 AND product_id = $2 AND variant = $3
`

func (q *Queries) RemoveCartItem(ctx context.Context, arg CartItemKeyParams) error {
	_, err := q.db.Exec(ctx, removeCartItem, arg.CartID, arg.ProductID, arg.Variant)
	return err
}

const clearCart = `
DELETE FROM cart_items
WHERE cart_id = $1
`

func (q *Queries) ClearCart(ctx context.Context, cartID string) error {
	_, err := q.db.Exec(ctx, clearCart, cartID)
	return err
}
