// Package repo holds the hand-written pgx queries backing the pricing
// engine's collaborators. Every query scans into a fully-typed row struct
// and is mapped explicitly into the domain model, keeping the persistence
// schema out of the pure engine.
package repo

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// DBTX is satisfied by both *pgxpool.Pool and pgx.Tx so the same queries
// can run standalone or inside a checkout transaction.
type DBTX interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// Store bundles the queries around a database handle.
type Store struct {
	DB DBTX
}

// New constructs a store around the pool.
func New(pool *pgxpool.Pool) *Store {
	return &Store{DB: pool}
}

// WithTx returns a store bound to the transaction.
func (s *Store) WithTx(tx pgx.Tx) *Store {
	return &Store{DB: tx}
}
