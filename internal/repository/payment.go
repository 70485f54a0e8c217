package repository

import (
	"context"
	"time"
)

const createPayment = `
INSERT INTO payments (order_id, method, status, transaction_id, amount_cents, currency)
VALUES ($1, $2, $3, $4, $5, $6)
RETURNING order_id, method, status, transaction_id, amount_cents, currency, paid_at, created_at, updated_at
`

func scanPayment(row interface{ Scan(dest ...any) error }) (Payment, error) {
	var p Payment
	err := row.Scan(
		&p.OrderID, &p.Method, &p.Status, &p.TransactionID,
		&p.AmountCents, &p.Currency, &p.PaidAt, &p.CreatedAt, &p.UpdatedAt,
	)
	return p, err
}

func (q *Queries) CreatePayment(ctx context.Context, arg CreatePaymentParams) (Payment, error) {
	row := q.db.QueryRow(ctx, createPayment,
		arg.OrderID, arg.Method, arg.Status, arg.TransactionID, arg.AmountCents, arg.Currency,
	)
	return scanPayment(row)
}

const paymentColumns = `order_id, method, status, transaction_id, amount_cents, currency, paid_at, created_at, updated_at`

const getPaymentByOrder = `SELECT ` + paymentColumns + ` FROM payments WHERE order_id = $1`

func (q *Queries) GetPaymentByOrder(ctx context.Context, orderID string) (Payment, error) {
	return scanPayment(q.db.QueryRow(ctx, getPaymentByOrder, orderID))
}

const getPaymentByTransactionID = `SELECT ` + paymentColumns + ` FROM payments WHERE transaction_id = $1`

func (q *Queries) GetPaymentByTransactionID(ctx context.Context, transactionID string) (Payment, error) {
	return scanPayment(q.db.QueryRow(ctx, getPaymentByTransactionID, transactionID))
}

const updatePaymentStatus = `
UPDATE payments
SET status = $2, transaction_id = $3, paid_at = $4, updated_at = now()
WHERE order_id = $1 AND status = $5
`

// UpdatePaymentStatus is conditional on the current status so a replayed
// gateway callback or a race against cancellation cannot double-apply.
func (q *Queries) UpdatePaymentStatus(ctx context.Context, arg UpdatePaymentStatusParams) (int64, error) {
	tag, err := q.db.Exec(ctx, updatePaymentStatus, arg.OrderID, arg.Status, arg.TransactionID, arg.PaidAt, arg.FromStatus)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

const setPaymentTransactionID = `
UPDATE payments
SET transaction_id = $2, updated_at = now()
WHERE order_id = $1
`

func (q *Queries) SetPaymentTransactionID(ctx context.Context, arg SetPaymentTransactionIDParams) error {
	_, err := q.db.Exec(ctx, setPaymentTransactionID, arg.OrderID, arg.TransactionID)
	return err
}

const listStalePendingPayments = `
SELECT ` + paymentColumns + `
FROM payments
WHERE status = 'pending' AND transaction_id <> '' AND created_at < $1
ORDER BY created_at
`

// ListStalePendingPayments returns gateway-initiated payments that never
// received a callback; the reconcile worker re-polls these.
func (q *Queries) ListStalePendingPayments(ctx context.Context, olderThan time.Time) ([]Payment, error) {
	rows, err := q.db.Query(ctx, listStalePendingPayments, olderThan)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var payments []Payment
	for rows.Next() {
		p, err := scanPayment(rows)
		if err != nil {
			return nil, err
		}
		payments = append(payments, p)
	}
	return payments, rows.Err()
}
