package sheets

import (
	"context"

	"kasklub/internal/core"
)

// LedgerMirror is the outbound port for the read-only copy of the books
// the worker maintains for the club committee.
type LedgerMirror interface {
	// UpsertTransaction writes the transaction row, replacing any existing
	// row with the same id.
	UpsertTransaction(ctx context.Context, tx core.Transaction) error

	// RemoveTransaction removes the row with the given id. Removing an id
	// that is not mirrored is not an error.
	RemoveTransaction(ctx context.Context, id string) error
}
