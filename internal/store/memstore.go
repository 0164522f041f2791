package store

import (
	"context"
	"sync"

	"snakes-arrows/internal/room"
)

// MemoryStore keeps rooms in process memory. It clones on both Load and Save
// so callers never share mutable state with the cache.
type MemoryStore struct {
	mu       sync.RWMutex
	rooms    map[string]*room.GameRoom
	idByCode map[string]string
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		rooms:    make(map[string]*room.GameRoom),
		idByCode: make(map[string]string),
	}
}

func (m *MemoryStore) Load(_ context.Context, id string) (*room.GameRoom, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	r, ok := m.rooms[id]
	if !ok {
		return nil, false, nil
	}
	return r.Clone(), true, nil
}

func (m *MemoryStore) IDByCode(_ context.Context, code string) (string, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	id, ok := m.idByCode[code]
	return id, ok, nil
}

func (m *MemoryStore) Save(_ context.Context, r *room.GameRoom) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rooms[r.ID] = r.Clone()
	m.idByCode[r.Code] = r.ID
	return nil
}
