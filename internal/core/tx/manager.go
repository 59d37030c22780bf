// Package tx provides transaction management abstractions.
// The issuing service depends on these interfaces, not on a specific history store.
package tx

import (
	"context"
)

// Manager defines the contract for transaction management.
// Implementations handle BEGIN, COMMIT and ROLLBACK, and store the active
// transaction in the context passed to fn so history reads and writes join it.
//
// The PostgreSQL implementation lives in infrastructure/storage/postgres.
type Manager interface {
	// RunInTransaction executes fn within a database transaction.
	// If fn returns an error, the transaction is rolled back.
	// If fn succeeds, the transaction is committed.
	//
	// Nested calls reuse the existing transaction from context.
	RunInTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}

// ReadOnlyManager extends Manager with read-only transaction support.
type ReadOnlyManager interface {
	Manager

	// ReadOnly executes fn in a read-only transaction.
	ReadOnly(ctx context.Context, fn func(ctx context.Context) error) error
}

// Locker serializes work on a key across processes for the lifetime of one transaction.
type Locker interface {
	Manager

	// RunLocked executes fn in a transaction holding the lock for key.
	RunLocked(ctx context.Context, key string, fn func(ctx context.Context) error) error
}
