// Package session persists in-progress bookings and booking history behind a
// key-value port.
package session

import (
	"context"
	"errors"
	"sync"
)

// ErrNotFound is returned by KV.Get for a missing key.
var ErrNotFound = errors.New("session: key not found")

// KV is the storage port. Implementations must return ErrNotFound for
// missing keys and treat Delete of a missing key as success.
type KV interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
}

// MemoryKV is a process-local KV used in development and tests.
type MemoryKV struct {
	mu   sync.RWMutex
	data map[string][]byte
}

// NewMemoryKV returns an empty in-memory store.
func NewMemoryKV() *MemoryKV {
	return &MemoryKV{data: make(map[string][]byte)}
}

func (m *MemoryKV) Get(_ context.Context, key string) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.data[key]
	if !ok {
		return nil, ErrNotFound
	}
	return append([]byte(nil), v...), nil
}

func (m *MemoryKV) Set(_ context.Context, key string, value []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = append([]byte(nil), value...)
	return nil
}

func (m *MemoryKV) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, key)
	return nil
}

// Len reports the number of stored keys.
func (m *MemoryKV) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.data)
}

var _ KV = (*MemoryKV)(nil)
