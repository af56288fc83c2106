// Package storage owns the persisted transaction ledger. Two
// implementations exist: SQLite for real deployments and an in-memory map
// for tests and throwaway runs. Neither keeps a cache; every call goes
// straight to the backing store.
package storage

import (
	"context"
	"errors"

	"kasklub/internal/core"
)

// ErrNotFound is returned by DeleteByID and GetByID when no transaction
// matches the given id.
var ErrNotFound = errors.New("transaction not found")

// Store is the ledger port the HTTP layer and services depend on.
type Store interface {
	// Insert persists a transaction, assigning ID and CreatedAt when absent,
	// and returns the stored record.
	Insert(ctx context.Context, tx core.Transaction) (core.Transaction, error)

	// ListAll returns every stored transaction ordered by transaction date
	// descending, ties broken by creation time.
	ListAll(ctx context.Context) ([]core.Transaction, error)

	// GetByID returns the transaction with the given id, or ErrNotFound.
	GetByID(ctx context.Context, id string) (core.Transaction, error)

	// DeleteByID removes the matching transaction. ErrNotFound when no row
	// matched; nil when exactly one was removed.
	DeleteByID(ctx context.Context, id string) error
}
