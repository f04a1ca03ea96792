package xsrf

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/JeanGrijp/go-xsrf/session"
)

// ErrNoSession is returned when the request carries no session.
var ErrNoSession = errors.New("xsrf: no session in request")

// Session is the per-request session the secret lives in. Get returns "" when
// the key is absent.
type Session interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
}

// Tokens creates secrets and derives and verifies tokens. Verify must return
// false for empty or malformed tokens.
type Tokens interface {
	NewSecret() (string, error)
	Create(secret string) string
	Verify(secret, token string) bool
}

// IgnoreFunc reports whether a request may skip verification.
type IgnoreFunc func(w http.ResponseWriter, r *http.Request) bool

// TokenExtractor returns the token presented by the client, or "".
type TokenExtractor func(w http.ResponseWriter, r *http.Request) string

// SessionFunc returns the session of the request.
type SessionFunc func(r *http.Request) (Session, error)

// ErrorHandler writes the response when the secret cannot be resolved.
type ErrorHandler func(w http.ResponseWriter, r *http.Request, err error)

// Outcome is the result of inspecting a request.
type Outcome int

const (
	// Failed means the secret could not be resolved; no token was issued.
	Failed Outcome = iota
	// Bypassed means an ignored method or the ignore hook skipped verification.
	Bypassed
	// Verified means the presented token matched the session secret.
	Verified
	// Rejected means verification was required and failed.
	Rejected
)

// String returns the outcome label used in logs and metrics.
func (o Outcome) String() string {
	switch o {
	case Bypassed:
		return "bypassed"
	case Verified:
		return "verified"
	case Rejected:
		return "rejected"
	default:
		return "error"
	}
}

// Allowed reports whether the request may continue down the chain.
func (o Outcome) Allowed() bool {
	return o == Bypassed || o == Verified
}

// Protect wraps next with XSRF protection.
//
// Behavior:
//   - resolves the session secret, creating and storing one on first use;
//     a session failure goes to the error handler and next is not called.
//   - issues a fresh token on every request: it is stored in the request
//     context (see TokenFromContext) and set as the token cookie.
//   - ignored methods and requests matched by the ignore hook go straight to next.
//   - everything else must present a token derived from the secret, otherwise
//     the response is 412 Precondition Failed with no body.
func (g *Guard) Protect(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		r, outcome, err := g.Inspect(w, r)
		if err != nil {
			g.onError(w, r, err)
			return
		}
		if !outcome.Allowed() {
			w.WriteHeader(http.StatusPreconditionFailed)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// Inspect runs the guard without writing a rejection. It returns the request
// carrying the issued token in its context, and the outcome. A non-nil error
// means the secret could not be resolved; no token was issued then.
// Adapters for other routers build on Inspect.
func (g *Guard) Inspect(w http.ResponseWriter, r *http.Request) (*http.Request, Outcome, error) {
	// 1) secret
	sess, err := g.sessionFn(r)
	if err == nil && sess == nil {
		err = ErrNoSession
	}
	if err != nil {
		g.fail(r, err)
		return r, Failed, err
	}
	secret, err := g.ResolveSecret(r.Context(), sess)
	if err != nil {
		g.fail(r, err)
		return r, Failed, err
	}

	// 2) always issue a token
	tok := g.tokens.Create(secret)
	r = r.WithContext(contextWithToken(r.Context(), tok))
	g.setCookie(w, tok)

	// 3) bypass rules, in order
	if g.bypass(w, r) {
		g.done(r, Bypassed)
		return r, Bypassed, nil
	}

	// 4) verification
	presented := g.getToken(w, r)
	if presented == "" || !g.tokens.Verify(secret, presented) {
		g.done(r, Rejected)
		return r, Rejected, nil
	}

	g.done(r, Verified)
	return r, Verified, nil
}

// ResolveSecret returns the secret stored in sess, generating and storing one
// when absent.
//
// Params:
// - ctx: request context handed to the session store.
// - sess: the request's session.
//
// Returns:
// - the session secret.
// - ErrNoSession when sess is nil; read, generation and write errors wrapped.
//
// The read and the write are not atomic: two concurrent first requests of one
// session may both generate a secret, and the last write wins.
func (g *Guard) ResolveSecret(ctx context.Context, sess Session) (string, error) {
	if sess == nil {
		return "", ErrNoSession
	}
	secret, err := sess.Get(ctx, g.cfg.SessionKey)
	if err != nil {
		return "", fmt.Errorf("xsrf: read secret: %w", err)
	}
	if secret != "" {
		return secret, nil
	}

	secret, err = g.tokens.NewSecret()
	if err != nil {
		return "", fmt.Errorf("xsrf: generate secret: %w", err)
	}
	if err := sess.Set(ctx, g.cfg.SessionKey, secret); err != nil {
		return "", fmt.Errorf("xsrf: store secret: %w", err)
	}
	return secret, nil
}

// TokenHandler returns an HTTP handler that writes the current token as
// text/plain. Mount it behind Protect.
func (g *Guard) TokenHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if tok, ok := TokenFromContext(r.Context()); ok {
			w.Header().Set("Content-Type", "text/plain; charset=utf-8")
			w.Write([]byte(tok))
			return
		}
		http.Error(w, "no token", http.StatusInternalServerError)
	})
}

func (g *Guard) bypass(w http.ResponseWriter, r *http.Request) bool {
	if _, ok := g.ignored[strings.ToUpper(r.Method)]; ok {
		return true
	}
	return g.ignore != nil && g.ignore(w, r)
}

// setCookie publishes the token. HttpOnly stays off: client scripts read it.
func (g *Guard) setCookie(w http.ResponseWriter, tok string) {
	cfg := g.cfg
	http.SetCookie(w, &http.Cookie{
		Name:     cfg.CookieName,
		Value:    tok,
		Path:     cfg.CookiePath,
		Domain:   cfg.CookieDomain,
		MaxAge:   cfg.CookieMaxAge,
		SameSite: cfg.CookieSameSite,
		Secure:   cfg.CookieSecure,
		HttpOnly: false,
	})
}

func (g *Guard) done(r *http.Request, o Outcome) {
	g.metrics.observe(o.String())
	fields := []zap.Field{zap.String("method", r.Method), zap.String("path", r.URL.Path)}
	if o == Rejected {
		g.log.Warn("xsrf token rejected", fields...)
		return
	}
	g.log.Debug("xsrf request "+o.String(), fields...)
}

func (g *Guard) fail(r *http.Request, err error) {
	g.metrics.observe(Failed.String())
	g.log.Error("xsrf secret resolution failed",
		zap.String("method", r.Method),
		zap.String("path", r.URL.Path),
		zap.Error(err),
	)
}

func sessionFromContext(r *http.Request) (Session, error) {
	h, ok := session.FromContext(r.Context())
	if !ok {
		return nil, ErrNoSession
	}
	return h, nil
}

func defaultErrorHandler(w http.ResponseWriter, _ *http.Request, _ error) {
	http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
}
