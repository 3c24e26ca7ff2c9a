package store

import (
	"context"
	"encoding/json"
	"slices"
	"strings"
	"sync"
)

// MemoryStore is an in-process Adapter. Its contents are lost on exit.
type MemoryStore struct {
	mu         sync.RWMutex
	data       map[string][]byte
	failWrites error
}

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{data: make(map[string][]byte)}
}

// Load returns a copy of the document stored at key.
func (m *MemoryStore) Load(_ context.Context, key string) (json.RawMessage, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	v, ok := m.data[key]
	if !ok || !json.Valid(v) {
		return nil, false
	}
	return append(json.RawMessage(nil), v...), true
}

// Save stores a copy of value at key.
func (m *MemoryStore) Save(_ context.Context, key string, value json.RawMessage) error {
	if err := checkJSON(key, value); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.failWrites != nil {
		return &StorageError{Op: "save", Key: key, Err: m.failWrites}
	}
	m.data[key] = append([]byte(nil), value...)
	return nil
}

// Remove deletes key.
func (m *MemoryStore) Remove(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.failWrites != nil {
		return &StorageError{Op: "remove", Key: key, Err: m.failWrites}
	}
	delete(m.data, key)
	return nil
}

// FailWrites makes Save and Remove fail with err, simulating a full or
// unavailable medium. A nil err restores normal behaviour.
func (m *MemoryStore) FailWrites(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failWrites = err
}

// Put stores raw bytes without validation, for seeding corrupt records.
func (m *MemoryStore) Put(key string, raw []byte) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = raw
}

// Has reports whether key holds any bytes.
func (m *MemoryStore) Has(key string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.data[key]
	return ok
}

// Keys lists stored keys with the given prefix, ordered by key.
func (m *MemoryStore) Keys(_ context.Context, prefix string) ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var keys []string
	for k := range m.data {
		if strings.HasPrefix(k, prefix) {
			keys = append(keys, k)
		}
	}
	slices.Sort(keys)
	return keys, nil
}
