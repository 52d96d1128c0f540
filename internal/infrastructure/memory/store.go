package memory

import (
	"context"
	"sync"
)

// Store is a process-local key-value store. Values are copied on the way in and out.
type Store struct {
	sync.RWMutex
	items map[string][]byte
}

func NewStore() *Store {
	return &Store{items: make(map[string][]byte)}
}

func (m *Store) GetItem(_ context.Context, key string) ([]byte, bool, error) {
	m.RLock()
	defer m.RUnlock()
	v, found := m.items[key]
	if !found {
		return nil, false, nil
	}
	return append([]byte(nil), v...), true, nil
}

func (m *Store) SetItem(_ context.Context, key string, value []byte) error {
	m.Lock()
	m.items[key] = append([]byte(nil), value...)
	m.Unlock()
	return nil
}
