// Package memory provides an in-memory ledger mirror used by tests and by
// worker runs without Google Sheets configured.
package memory

import (
	"context"
	"sync"

	"kasklub/internal/core"
)

type Mirror struct {
	mu   sync.Mutex
	rows map[string]core.Transaction
}

func New() *Mirror {
	return &Mirror{rows: make(map[string]core.Transaction)}
}

// UpsertTransaction implements sheets.LedgerMirror.
func (m *Mirror) UpsertTransaction(_ context.Context, tx core.Transaction) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rows[tx.ID] = tx
	return nil
}

// RemoveTransaction implements sheets.LedgerMirror.
func (m *Mirror) RemoveTransaction(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.rows, id)
	return nil
}

// Get returns the mirrored transaction and whether it exists.
func (m *Mirror) Get(id string) (core.Transaction, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	tx, ok := m.rows[id]
	return tx, ok
}

// Len returns the number of mirrored rows.
func (m *Mirror) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.rows)
}
