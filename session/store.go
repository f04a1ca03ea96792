package session

import (
	"context"
	"errors"
)

// ErrNoStore is returned by NewManager when no store is given.
var ErrNoStore = errors.New("session: store is required")

// Store persists string values per session id. Get returns "" and a nil error
// when the key is absent. Implementations must be safe for concurrent use.
type Store interface {
	Get(ctx context.Context, id, key string) (string, error)
	Set(ctx context.Context, id, key, value string) error
	Delete(ctx context.Context, id string) error
}

// Handle is one request's view of its session.
type Handle struct {
	id    string
	store Store
}

// NewHandle binds store to the session id.
func NewHandle(store Store, id string) *Handle {
	return &Handle{id: id, store: store}
}

// ID returns the session id.
func (h *Handle) ID() string {
	return h.id
}

// Get returns the value stored under key, or "" if absent.
func (h *Handle) Get(ctx context.Context, key string) (string, error) {
	return h.store.Get(ctx, h.id, key)
}

// Set stores value under key.
func (h *Handle) Set(ctx context.Context, key, value string) error {
	return h.store.Set(ctx, h.id, key, value)
}

// Clear removes the whole session from the store.
func (h *Handle) Clear(ctx context.Context) error {
	return h.store.Delete(ctx, h.id)
}
