package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// DBTX is satisfied by both *pgxpool.Pool and pgx.Tx, so the same repository
// code runs inside and outside a transaction.
type DBTX interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Repositories bundles the repositories bound to one connection or transaction.
type Repositories struct {
	Customers      CustomerRepository
	Establishments EstablishmentRepository
	Feedback       FeedbackRepository
}

// TxFunc runs inside a transaction. Returning an error rolls it back.
type TxFunc func(ctx context.Context, repos Repositories) error

// Store is the transactional storage backend.
type Store interface {
	Repositories() Repositories
	RunInTx(ctx context.Context, fn TxFunc) error
	Ping(ctx context.Context) error
}

func newRepositories(db DBTX) Repositories {
	return Repositories{
		Customers:      NewCustomerRepository(db),
		Establishments: NewEstablishmentRepository(db),
		Feedback:       NewFeedbackRepository(db),
	}
}
