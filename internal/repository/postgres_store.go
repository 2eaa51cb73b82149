package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresStore runs repositories against a pgx pool.
type PostgresStore struct {
	pool  *pgxpool.Pool
	repos Repositories
}

var _ Store = (*PostgresStore)(nil)

// NewPostgresStore returns a Postgres-backed store.
func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool, repos: newRepositories(pool)}
}

func (s *PostgresStore) Repositories() Repositories {
	return s.repos
}

// RunInTx executes fn in a READ COMMITTED transaction. The unique index on
// feedback(customer_id, establishment_id) is what serializes competing inserts.
func (s *PostgresStore) RunInTx(ctx context.Context, fn TxFunc) error {
	return pgx.BeginTxFunc(ctx, s.pool, pgx.TxOptions{IsoLevel: pgx.ReadCommitted}, func(tx pgx.Tx) error {
		return fn(ctx, newRepositories(tx))
	})
}

func (s *PostgresStore) Ping(ctx context.Context) error {
	if s == nil || s.pool == nil {
		return errors.New("postgres pool not configured")
	}
	return s.pool.Ping(ctx)
}
