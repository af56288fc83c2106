package storage

import (
	"context"
	"sort"
	"sync"
	"time"

	"kasklub/internal/core"

	"github.com/google/uuid"
)

// MemoryStore is a mutex-guarded in-memory ledger. It backs the "memory"
// data backend and the HTTP handler tests; nothing survives a restart.
type MemoryStore struct {
	mu    sync.Mutex
	items []core.Transaction
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

// Insert implements Store.
func (s *MemoryStore) Insert(_ context.Context, tx core.Transaction) (core.Transaction, error) {
	if tx.ID == "" {
		tx.ID = uuid.NewString()
	}
	if tx.CreatedAt.IsZero() {
		tx.CreatedAt = time.Now().UTC()
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.items = append(s.items, tx)
	return tx, nil
}

// ListAll implements Store. The sort is stable so transactions sharing a
// date keep their insertion order relative to each other.
func (s *MemoryStore) ListAll(_ context.Context) ([]core.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := append([]core.Transaction(nil), s.items...)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].OccurredOn.After(out[j].OccurredOn)
	})
	return out, nil
}

// GetByID implements Store.
func (s *MemoryStore) GetByID(_ context.Context, id string) (core.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, tx := range s.items {
		if tx.ID == id {
			return tx, nil
		}
	}
	return core.Transaction{}, ErrNotFound
}

// DeleteByID implements Store.
func (s *MemoryStore) DeleteByID(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, tx := range s.items {
		if tx.ID == id {
			s.items = append(s.items[:i], s.items[i+1:]...)
			return nil
		}
	}
	return ErrNotFound
}
