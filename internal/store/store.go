// Package store is the persistent store adapter: a thin pgx wrapper
// exposing the narrow query interface described by the external Store
// contract, plus the table-specific adapters for suppliers,
// ingredients, recipes, and recipe lines.
//
// One pool-backed Store type plus an ExecTx helper used by every write
// that must span more than one statement.
package store

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Store bundles the connection pool shared by every table adapter.
type Store struct {
	pool *pgxpool.Pool
}

// New builds a Store over an already-connected pool.
func New(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

// ExecTx runs fn inside a transaction, committing on success and
// rolling back on any error fn returns. Recipe upserts use this to keep
// the recipe row and its line set atomic, per the concurrency model's
// "a recipe's lines match its last successful commit" invariant.
func (s *Store) ExecTx(ctx context.Context, fn func(pgx.Tx) error) error {
	tx, err := s.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}

	if err := fn(tx); err != nil {
		tx.Rollback(ctx)
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		tx.Rollback(ctx)
		return err
	}

	return nil
}
