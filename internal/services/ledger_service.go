// Package services wires the ledger store to the optional AMQP mirror
// pipeline. The store is the source of truth: a write must land there
// before anything is published, and a failed publish never fails the
// request.
package services

import (
	"context"
	"fmt"
	"log/slog"

	"kasklub/internal/amqp"
	"kasklub/internal/core"
	"kasklub/internal/storage"
)

// MirrorPublisher publishes ledger change notifications for the worker.
type MirrorPublisher interface {
	PublishMirror(ctx context.Context, kind, id string) error
}

// LedgerService orchestrates transaction writes across storage and AMQP.
type LedgerService struct {
	store     storage.Store
	publisher MirrorPublisher
}

// NewLedgerService creates a service. publisher may be nil when the mirror
// pipeline is not configured.
func NewLedgerService(store storage.Store, publisher MirrorPublisher) *LedgerService {
	return &LedgerService{
		store:     store,
		publisher: publisher,
	}
}

// Create validates and persists a transaction, then publishes an upsert
// mirror event.
func (s *LedgerService) Create(ctx context.Context, tx core.Transaction) (core.Transaction, error) {
	if err := tx.Validate(); err != nil {
		return core.Transaction{}, err
	}

	stored, err := s.store.Insert(ctx, tx)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("save transaction: %w", err)
	}

	s.publish(ctx, amqp.KindUpsert, stored.ID)
	return stored, nil
}

// Delete removes a transaction by id and publishes a delete mirror event.
// storage.ErrNotFound propagates unchanged so the handler can answer 404.
func (s *LedgerService) Delete(ctx context.Context, id string) error {
	if err := s.store.DeleteByID(ctx, id); err != nil {
		return err
	}

	s.publish(ctx, amqp.KindDelete, id)
	return nil
}

// ListAll returns the full ledger, most recent transaction date first.
func (s *LedgerService) ListAll(ctx context.Context) ([]core.Transaction, error) {
	return s.store.ListAll(ctx)
}

// Summary re-reads the full transaction set and folds it into totals.
// No caching: the result always reflects the latest committed state.
func (s *LedgerService) Summary(ctx context.Context) (core.Summary, error) {
	txs, err := s.store.ListAll(ctx)
	if err != nil {
		return core.Summary{}, fmt.Errorf("load transactions: %w", err)
	}
	return core.ComputeSummary(txs), nil
}

func (s *LedgerService) publish(ctx context.Context, kind, id string) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.PublishMirror(ctx, kind, id); err != nil {
		// The local write already succeeded; the worker's periodic catch-up
		// scan will pick up anything the queue missed.
		slog.ErrorContext(ctx, "Failed to publish mirror message",
			"kind", kind, "id", id, "error", err)
	}
}
