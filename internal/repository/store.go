package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// DBTX matches the subset of pgxpool.Pool and pgx.Tx that queries use,
// so the same Queries type runs inside and outside a transaction.
type DBTX interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Queries implements Querier against a DBTX.
type Queries struct {
	db DBTX
}

// New creates a Queries bound to the given connection or transaction.
func New(db DBTX) *Queries {
	return &Queries{db: db}
}

// SQLStore is the pgx-backed Store used in production.
type SQLStore struct {
	*Queries
	pool *pgxpool.Pool
}

// NewStore creates a Store backed by a pgx connection pool.
func NewStore(pool *pgxpool.Pool) *SQLStore {
	return &SQLStore{
		Queries: New(pool),
		pool:    pool,
	}
}

// ExecTx runs fn inside a database transaction. The transaction is rolled
// back if fn returns an error or panics.
func (s *SQLStore) ExecTx(ctx context.Context, fn func(Querier) error) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	if err := fn(New(tx)); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}
