package theme

import (
	"context"
	"sync"
)

// Store persists per-client preferences as plain key/value strings.
type Store interface {
	// Get reports ok=false when the client has no value for key.
	Get(ctx context.Context, clientID, key string) (value string, ok bool, err error)
	Put(ctx context.Context, clientID, key, value string) error
}

// MemoryStore keeps preferences for the life of the process.
type MemoryStore struct {
	mu    sync.RWMutex
	prefs map[string]map[string]string
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{prefs: make(map[string]map[string]string)}
}

func (m *MemoryStore) Get(_ context.Context, clientID, key string) (string, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.prefs[clientID][key]
	return v, ok, nil
}

func (m *MemoryStore) Put(_ context.Context, clientID, key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.prefs[clientID] == nil {
		m.prefs[clientID] = make(map[string]string)
	}
	m.prefs[clientID][key] = value
	return nil
}
