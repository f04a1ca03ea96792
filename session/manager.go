package session

import (
	"context"
	"net/http"

	"github.com/google/uuid"
)

type ctxKey string

const handleKey ctxKey = "session_handle_ctx"

// Config holds the session cookie attributes.
type Config struct {
	CookieName     string
	CookiePath     string
	CookieDomain   string
	CookieSecure   bool
	CookieSameSite http.SameSite
	CookieMaxAge   int // in seconds
}

// Manager attaches a session Handle to each request.
type Manager struct {
	cfg   Config
	store Store
}

// NewManager returns a Manager using store. Empty config fields get defaults.
func NewManager(store Store, cfg Config) (*Manager, error) {
	if store == nil {
		return nil, ErrNoStore
	}
	if cfg.CookieName == "" {
		cfg.CookieName = "sid"
	}
	if cfg.CookiePath == "" {
		cfg.CookiePath = "/"
	}
	if cfg.CookieSameSite == 0 {
		cfg.CookieSameSite = http.SameSiteLaxMode
	}
	return &Manager{cfg: cfg, store: store}, nil
}

// Middleware reads the session cookie, issuing a fresh id when it is missing
// or not a uuid, and stores the Handle in the request context.
func (m *Manager) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := m.sessionID(w, r)
		ctx := NewContext(r.Context(), NewHandle(m.store, id))
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (m *Manager) sessionID(w http.ResponseWriter, r *http.Request) string {
	if c, err := r.Cookie(m.cfg.CookieName); err == nil {
		if _, err := uuid.Parse(c.Value); err == nil {
			return c.Value
		}
	}

	id := uuid.NewString()
	http.SetCookie(w, &http.Cookie{
		Name:     m.cfg.CookieName,
		Value:    id,
		Path:     m.cfg.CookiePath,
		Domain:   m.cfg.CookieDomain,
		MaxAge:   m.cfg.CookieMaxAge,
		SameSite: m.cfg.CookieSameSite,
		Secure:   m.cfg.CookieSecure,
		HttpOnly: true,
	})
	return id
}

// NewContext returns a copy of ctx carrying h.
func NewContext(ctx context.Context, h *Handle) context.Context {
	return context.WithValue(ctx, handleKey, h)
}

// FromContext returns the Handle stored by Middleware, if any.
func FromContext(ctx context.Context) (*Handle, bool) {
	h, ok := ctx.Value(handleKey).(*Handle)
	return h, ok && h != nil
}
