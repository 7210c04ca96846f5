// Package store holds the in-memory record store used when no database
// is configured.
package store

import (
	"context"
	"fmt"
	"sync"

	"provd/internal/domain"
)

// Memory is a mutex-guarded record table. Writes are serialized, and a
// put on an existing key is rejected rather than overwritten, so an id
// collision from the signer can never silently clobber a record.
type Memory struct {
	mu      sync.Mutex
	records map[string]domain.ManifestRecord
}

func NewMemory() *Memory {
	return &Memory{records: make(map[string]domain.ManifestRecord)}
}

func (m *Memory) Put(_ context.Context, record domain.ManifestRecord) error {
	if record.ManifestID == "" {
		return fmt.Errorf("%w: manifest id is required", domain.ErrInvalidInput)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.records[record.ManifestID]; ok {
		return fmt.Errorf("%w: %s", domain.ErrDuplicateRecord, record.ManifestID)
	}
	m.records[record.ManifestID] = record
	return nil
}

func (m *Memory) Get(_ context.Context, manifestID string) (*domain.ManifestRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	record, ok := m.records[manifestID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	out := record
	return &out, nil
}

func (m *Memory) Exists(_ context.Context, manifestID string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.records[manifestID]
	return ok, nil
}
