// Package xsrf provides session-bound XSRF protection for Go net/http servers.
//
// How it works
//   - Every request: the guard reads the per-session secret (creating and
//     storing it on first use), derives a fresh token from it, stores the token
//     in the request context under "xsrfToken" and sets it as the XSRF-TOKEN
//     cookie.
//   - Ignored methods (GET, HEAD, OPTIONS by default) and requests accepted by
//     the optional ignore hook continue without a check.
//   - Everything else must send back a token derived from the session secret,
//     by default in the X-XSRF-TOKEN header. Otherwise the response is
//     412 Precondition Failed with an empty body.
//
// Tokens are not stored: any token derived from the secret stays valid for the
// life of the session.
//
// # Configuration
//
// Config carries the names and cookie attributes; every field has a default.
// ConfigFromEnv reads it from XSRF_* variables. Hooks are passed as Options:
//   - WithIgnore: extra bypass rule
//   - WithTokenExtractor: where the client token is read from
//     (HeaderExtractor, QueryExtractor, FormExtractor)
//   - WithSessionFunc, WithTokens: collaborators
//   - WithErrorHandler, WithLogger, WithMetrics
//
// Typical usage
//
//	store := session.NewMemoryStore()
//	sessions, _ := session.NewManager(store, session.Config{})
//	g := xsrf.New(xsrf.Config{CookieSecure: true})
//	http.ListenAndServe(":8080", sessions.Middleware(g.Protect(appMux)))
//
// In handlers, read the token for rendering:
//
//	if tok, ok := xsrf.TokenFromContext(r.Context()); ok {
//	    // use tok in templates
//	}
package xsrf
