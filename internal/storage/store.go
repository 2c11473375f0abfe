// Package storage persists ledgers, vote tables, predictions and raw feeds
// in an object store.
package storage

import (
	"context"
	"errors"
	"slices"
	"strings"
	"sync"
)

// ErrObjectNotFound is returned by Get for a missing key
var ErrObjectNotFound = errors.New("object not found")

// ObjectStore is a flat key/value store of opaque bytes
type ObjectStore interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Put(ctx context.Context, key string, data []byte) error
	List(ctx context.Context, prefix string) ([]string, error)
}

// MemoryStore is an in-process ObjectStore
type MemoryStore struct {
	mu      sync.RWMutex
	objects map[string][]byte
}

// NewMemoryStore creates an empty in-memory store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{objects: make(map[string][]byte)}
}

// Get returns a copy of the object
func (m *MemoryStore) Get(ctx context.Context, key string) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	data, ok := m.objects[key]
	if !ok {
		return nil, ErrObjectNotFound
	}
	return slices.Clone(data), nil
}

// Put stores a copy of data
func (m *MemoryStore) Put(ctx context.Context, key string, data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.objects[key] = slices.Clone(data)
	return nil
}

// List returns the sorted keys starting with prefix
func (m *MemoryStore) List(ctx context.Context, prefix string) ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var keys []string
	for k := range m.objects {
		if strings.HasPrefix(k, prefix) {
			keys = append(keys, k)
		}
	}
	slices.Sort(keys)
	return keys, nil
}

// Exists checks whether a key is present by listing its prefix
func Exists(ctx context.Context, store ObjectStore, key string) (bool, error) {
	keys, err := store.List(ctx, key)
	if err != nil {
		return false, err
	}
	return slices.Contains(keys, key), nil
}
