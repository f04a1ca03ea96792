package session

import (
	"context"
	"sync"
)

// MemoryStore keeps sessions in process memory. Sessions never expire.
type MemoryStore struct {
	mu   sync.RWMutex
	data map[string]map[string]string
}

// NewMemoryStore returns an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{data: make(map[string]map[string]string)}
}

// Get returns the value of key in session id, or "" if absent.
func (s *MemoryStore) Get(_ context.Context, id, key string) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.data[id][key], nil
}

// Set stores value under key, creating the session on first write.
func (s *MemoryStore) Set(_ context.Context, id, key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.data[id]
	if !ok {
		sess = make(map[string]string)
		s.data[id] = sess
	}
	sess[key] = value
	return nil
}

// Delete removes session id.
func (s *MemoryStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.data, id)
	return nil
}

// Len returns the number of sessions held.
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.data)
}
