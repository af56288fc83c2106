// Package worker consumes ledger mirror messages and keeps the committee
// spreadsheet in sync with the store.
package worker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"kasklub/internal/amqp"
	"kasklub/internal/sheets"
	"kasklub/internal/storage"
)

// MirrorWorker applies ledger change notifications to the mirror.
// The store stays authoritative: an upsert always re-reads the current
// record, so out-of-order deliveries cannot resurrect stale data.
type MirrorWorker struct {
	store  storage.Store
	mirror sheets.LedgerMirror
}

func NewMirrorWorker(store storage.Store, mirror sheets.LedgerMirror) *MirrorWorker {
	return &MirrorWorker{
		store:  store,
		mirror: mirror,
	}
}

// HandleMessage processes a single mirror message from AMQP.
func (w *MirrorWorker) HandleMessage(ctx context.Context, msg *amqp.MirrorMessage) error {
	slog.InfoContext(ctx, "Processing mirror message", "kind", msg.Kind, "id", msg.ID)

	switch msg.Kind {
	case amqp.KindUpsert:
		tx, err := w.store.GetByID(ctx, msg.ID)
		if errors.Is(err, storage.ErrNotFound) {
			// Deleted between publish and delivery; make the mirror agree.
			return w.mirror.RemoveTransaction(ctx, msg.ID)
		}
		if err != nil {
			return fmt.Errorf("get transaction from storage: %w", err)
		}
		if err := w.mirror.UpsertTransaction(ctx, tx); err != nil {
			return fmt.Errorf("mirror transaction: %w", err)
		}
		return nil

	case amqp.KindDelete:
		if err := w.mirror.RemoveTransaction(ctx, msg.ID); err != nil {
			return fmt.Errorf("remove mirrored transaction: %w", err)
		}
		return nil

	default:
		return fmt.Errorf("unknown mirror message kind %q", msg.Kind)
	}
}

// CatchUpScan re-mirrors the whole ledger. Run at startup and on a timer so
// anything the queue missed (broker down, publish failure) converges.
func (w *MirrorWorker) CatchUpScan(ctx context.Context) error {
	txs, err := w.store.ListAll(ctx)
	if err != nil {
		return fmt.Errorf("list transactions: %w", err)
	}

	var failed int
	for _, tx := range txs {
		if err := w.mirror.UpsertTransaction(ctx, tx); err != nil {
			slog.ErrorContext(ctx, "Failed to mirror transaction during catch-up",
				"id", tx.ID, "error", err)
			failed++
		}
	}

	slog.InfoContext(ctx, "Catch-up scan completed",
		"total", len(txs), "failed", failed)
	if failed > 0 {
		return fmt.Errorf("catch-up scan: %d of %d transactions failed", failed, len(txs))
	}
	return nil
}
