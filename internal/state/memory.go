package state

import (
	"context"
	"sync"
)

// MemoryStore is an in-process Store.
type MemoryStore struct {
	mu     sync.RWMutex
	pages  map[string]PageRecord
	builds []BuildRecord
	closed bool
}

// NewMemoryStore returns an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{pages: make(map[string]PageRecord)}
}

func (m *MemoryStore) PageFingerprint(_ context.Context, source string) (string, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.closed {
		return "", false, ErrClosed
	}
	rec, ok := m.pages[source]
	return rec.Fingerprint, ok, nil
}

func (m *MemoryStore) RecordPage(_ context.Context, rec PageRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return ErrClosed
	}
	m.pages[rec.Source] = rec
	return nil
}

func (m *MemoryStore) ForgetPage(_ context.Context, source string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return ErrClosed
	}
	delete(m.pages, source)
	return nil
}

func (m *MemoryStore) RecordBuild(_ context.Context, rec BuildRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return ErrClosed
	}
	m.builds = append(m.builds, rec)
	return nil
}

func (m *MemoryStore) LastBuild(_ context.Context) (*BuildRecord, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.closed {
		return nil, false, ErrClosed
	}
	if len(m.builds) == 0 {
		return nil, false, nil
	}
	last := m.builds[len(m.builds)-1]
	return &last, true, nil
}

func (m *MemoryStore) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return nil
}
