package repository

import "context"

const orderColumns = `
id, order_number, customer_id, status,
subtotal_cents, discount_cents, shipping_cents, tax_cents, total_cents,
coupon_code, currency, shipping_address, billing_address, notes,
carrier, tracking_number, cancel_reason, cancel_actor, cancelled_at, refund_status,
created_at, updated_at`

func scanOrder(row interface{ Scan(dest ...any) error }) (Order, error) {
	var o Order
	err := row.Scan(
		&o.ID, &o.OrderNumber, &o.CustomerID, &o.Status,
		&o.SubtotalCents, &o.DiscountCents, &o.ShippingCents, &o.TaxCents, &o.TotalCents,
		&o.CouponCode, &o.Currency, &o.ShippingAddress, &o.BillingAddress, &o.Notes,
		&o.Carrier, &o.TrackingNumber, &o.CancelReason, &o.CancelActor, &o.CancelledAt, &o.RefundStatus,
		&o.CreatedAt, &o.UpdatedAt,
	)
	return o, err
}

const createOrder = `
INSERT INTO orders (
	id, order_number, customer_id, status,
	subtotal_cents, discount_cents, shipping_cents, tax_cents, total_cents,
	coupon_code, currency, shipping_address, billing_address, notes
)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
RETURNING ` + orderColumns

func (q *Queries) CreateOrder(ctx context.Context, arg CreateOrderParams) (Order, error) {
	row := q.db.QueryRow(ctx, createOrder,
		arg.ID, arg.OrderNumber, arg.CustomerID, arg.Status,
		arg.SubtotalCents, arg.DiscountCents, arg.ShippingCents, arg.TaxCents, arg.TotalCents,
		arg.CouponCode, arg.Currency, arg.ShippingAddress, arg.BillingAddress, arg.Notes,
	)
	return scanOrder(row)
}

const createOrderItem = `
INSERT INTO order_items (order_id, product_id, variant, product_name, sku, quantity, unit_price_cents, line_total_cents)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
RETURNING id, order_id, product_id, variant, product_name, sku, quantity, unit_price_cents, line_total_cents
`

func (q *Queries) CreateOrderItem(ctx context.Context, arg CreateOrderItemParams) (OrderItem, error) {
	var i OrderItem
	row := q.db.QueryRow(ctx, createOrderItem,
		arg.OrderID, arg.ProductID, arg.Variant, arg.ProductName, arg.SKU,
		arg.Quantity, arg.UnitPriceCents, arg.LineTotalCents,
	)
	err := row.Scan(
		&i.ID, &i.OrderID, &i.ProductID, &i.Variant, &i.ProductName, &i.SKU,
		&i.Quantity, &i.UnitPriceCents, &i.LineTotalCents,
	)
	return i, err
}

const getOrder = `SELECT ` + orderColumns + ` FROM orders WHERE id = $1`

func (q *Queries) GetOrder(ctx context.Context, orderID string) (Order, error) {
	return scanOrder(q.db.QueryRow(ctx, getOrder, orderID))
}

const getOrderForUpdate = getOrder + ` FOR UPDATE`

// GetOrderForUpdate locks the order row for the rest of the transaction.
// Used where a transition races a concurrent cancel or payment callback.
func (q *Queries) GetOrderForUpdate(ctx context.Context, orderID string) (Order, error) {
	return scanOrder(q.db.QueryRow(ctx, getOrderForUpdate, orderID))
}

const getOrderByNumber = `SELECT ` + orderColumns + ` FROM orders WHERE order_number = $1`

func (q *Queries) GetOrderByNumber(ctx context.Context, orderNumber string) (Order, error) {
	return scanOrder(q.db.QueryRow(ctx, getOrderByNumber, orderNumber))
}

const listOrdersByCustomer = `SELECT ` + orderColumns + ` FROM orders WHERE customer_id = $1 ORDER BY created_at DESC`

func (q *Queries) ListOrdersByCustomer(ctx context.Context, customerID string) ([]Order, error) {
	rows, err := q.db.Query(ctx, listOrdersByCustomer, customerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var orders []Order
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		orders = append(orders, o)
	}
	return orders, rows.Err()
}

const getOrderItems = `
SELECT id, order_id, product_id, variant, product_name, sku, quantity, unit_price_cents, line_total_cents
FROM order_items
WHERE order_id = $1
ORDER BY id
`

func (q *Queries) GetOrderItems(ctx context.Context, orderID string) ([]OrderItem, error) {
	rows, err := q.db.Query(ctx, getOrderItems, orderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []OrderItem
	for rows.Next() {
		var i OrderItem
		if err := rows.Scan(
			&i.ID, &i.OrderID, &i.ProductID, &i.Variant, &i.ProductName, &i.SKU,
			&i.Quantity, &i.UnitPriceCents, &i.LineTotalCents,
		); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	return items, rows.Err()
}

const updateOrderStatus = `
UPDATE orders
SET status = $2, updated_at = now()
WHERE id = $1 AND status = $3
`

// UpdateOrderStatus writes the new status only when the order is still in
// FromStatus. Zero rows affected means a concurrent writer won; the caller
// must treat that as an invalid transition, never retry blindly.
func (q *Queries) UpdateOrderStatus(ctx context.Context, arg UpdateOrderStatusParams) (int64, error) {
	tag, err := q.db.Exec(ctx, updateOrderStatus, arg.ID, arg.Status, arg.FromStatus)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

const setOrderTracking = `
UPDATE orders
SET carrier = $2, tracking_number = $3, updated_at = now()
WHERE id = $1
`

func (q *Queries) SetOrderTracking(ctx context.Context, arg SetOrderTrackingParams) error {
	_, err := q.db.Exec(ctx, setOrderTracking, arg.ID, arg.Carrier, arg.TrackingNumber)
	return err
}

const setOrderCancellation = `
UPDATE orders
SET cancel_reason = $2, cancel_actor = $3, cancelled_at = now(), refund_status = $4, updated_at = now()
WHERE id = $1
`

func (q *Queries) SetOrderCancellation(ctx context.Context, arg SetOrderCancellationParams) error {
	_, err := q.db.Exec(ctx, setOrderCancellation, arg.ID, arg.Reason, arg.Actor, arg.RefundStatus)
	return err
}

const setOrderRefundStatus = `
UPDATE orders
SET refund_status = $2, updated_at = now()
WHERE id = $1
`

func (q *Queries) SetOrderRefundStatus(ctx context.Context, arg SetOrderRefundStatusParams) error {
	_, err := q.db.Exec(ctx, setOrderRefundStatus, arg.ID, arg.RefundStatus)
	return err
}

const appendOrderStatusHistory = `
INSERT INTO order_status_history (order_id, status, note, actor)
VALUES ($1, $2, $3, $4)
RETURNING id, order_id, status, note, actor, created_at
`

func (q *Queries) AppendOrderStatusHistory(ctx context.Context, arg AppendOrderStatusHistoryParams) (OrderStatusHistory, error) {
	var h OrderStatusHistory
	row := q.db.QueryRow(ctx, appendOrderStatusHistory, arg.OrderID, arg.Status, arg.Note, arg.Actor)
	err := row.Scan(&h.ID, &h.OrderID, &h.Status, &h.Note, &h.Actor, &h.CreatedAt)
	return h, err
}

const getOrderStatusHistory = `
SELECT id, order_id, status, note, actor, created_at
FROM order_status_history
WHERE order_id = $1
ORDER BY id
`

func (q *Queries) GetOrderStatusHistory(ctx context.Context, orderID string) ([]OrderStatusHistory, error) {
	rows, err := q.db.Query(ctx, getOrderStatusHistory, orderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var history []OrderStatusHistory
	for rows.Next() {
		var h OrderStatusHistory
		if err := rows.Scan(&h.ID, &h.OrderID, &h.Status, &h.Note, &h.Actor, &h.CreatedAt); err != nil {
			return nil, err
		}
		history = append(history, h)
	}
	return history, rows.Err()
}
