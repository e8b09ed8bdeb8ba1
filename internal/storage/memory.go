package storage

import (
	"context"
	"sync"
	"time"
)

// MemoryKV keeps blobs in process memory.
type MemoryKV struct {
	mu      sync.RWMutex
	items   map[string][]byte
	updated map[string]time.Time
}

func NewMemoryKV() *MemoryKV {
	return &MemoryKV{items: make(map[string][]byte), updated: make(map[string]time.Time)}
}

func (m *MemoryKV) Load(_ context.Context, key string) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	blob, ok := m.items[key]
	if !ok {
		return nil, ErrNotFound
	}
	return append([]byte(nil), blob...), nil
}

func (m *MemoryKV) Save(_ context.Context, key string, blob []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.items[key] = append([]byte(nil), blob...)
	m.updated[key] = time.Now().UTC()
	return nil
}

func (m *MemoryKV) UpdatedAt(_ context.Context, key string) (time.Time, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	at, ok := m.updated[key]
	if !ok {
		return time.Time{}, ErrNotFound
	}
	return at, nil
}
