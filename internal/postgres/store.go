// Package postgres implements store.Store against PostgreSQL using pgx.
//
// The checkout transaction runs at SERIALIZABLE isolation and is retried on
// serialization failures, realizing the durable transaction primitive the
// service layer depends on.
package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/atelierhq/atelier/internal/store"
)

const defaultMaxRetries = 5

// Store implements store.Store backed by a pgx connection pool.
type Store struct {
	pool       *pgxpool.Pool
	base       int64
	maxRetries int
}

// New creates a Store. The order counter bootstraps at base on first use.
func New(pool *pgxpool.Pool, base int64) *Store {
	return &Store{
		pool:       pool,
		base:       base,
		maxRetries: defaultMaxRetries,
	}
}

var _ store.Store = (*Store)(nil)

// RunTransaction executes fn inside a SERIALIZABLE transaction, retrying on
// serialization failure up to the configured bound. The callback must be
// free of non-idempotent side effects because it may run more than once.
func (s *Store) RunTransaction(ctx context.Context, fn func(ctx context.Context, tx store.Tx) error) error {
	for attempt := 0; attempt < s.maxRetries; attempt++ {
		if err := ctx.Err(); err != nil {
			return err
		}

		err := pgx.BeginTxFunc(ctx, s.pool, pgx.TxOptions{IsoLevel: pgx.Serializable}, func(tx pgx.Tx) error {
			return fn(ctx, &pgTx{tx: tx, base: s.base})
		})
		if err == nil {
			return nil
		}
		if !isSerializationFailure(err) {
			return err
		}
	}

	return store.ErrRetriesExhausted
}

// isSerializationFailure reports whether err is a retryable write conflict
// (serialization_failure or deadlock_detected).
func isSerializationFailure(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "40001" || pgErr.Code == "40P01"
	}
	return false
}
