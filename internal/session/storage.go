package session

import (
	"context"
	"sync"
)

// Storage persists the string entries of a namespace. Write must apply all
// entries atomically so that a token is never persisted without its role.
type Storage interface {
	Read(ctx context.Context, namespace string, keys ...string) (map[string]string, error)
	Write(ctx context.Context, namespace string, entries map[string]string) error
	Remove(ctx context.Context, namespace string, keys ...string) error
}

// MemoryStorage keeps entries in process memory. Entries survive a page
// reload but not a console restart.
type MemoryStorage struct {
	mu      sync.RWMutex
	entries map[string]map[string]string
}

// NewMemoryStorage constructs an empty in-memory storage.
func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{entries: make(map[string]map[string]string)}
}

// Read returns the present entries among keys.
func (m *MemoryStorage) Read(_ context.Context, namespace string, keys ...string) (map[string]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make(map[string]string, len(keys))
	ns := m.entries[namespace]
	for _, key := range keys {
		if value, ok := ns[key]; ok {
			out[key] = value
		}
	}
	return out, nil
}

// Write stores entries under namespace.
func (m *MemoryStorage) Write(_ context.Context, namespace string, entries map[string]string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	ns, ok := m.entries[namespace]
	if !ok {
		ns = make(map[string]string, len(entries))
		m.entries[namespace] = ns
	}
	for key, value := range entries {
		ns[key] = value
	}
	return nil
}

// Remove deletes keys from namespace.
func (m *MemoryStorage) Remove(_ context.Context, namespace string, keys ...string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	ns := m.entries[namespace]
	for _, key := range keys {
		delete(ns, key)
	}
	if len(ns) == 0 {
		delete(m.entries, namespace)
	}
	return nil
}
