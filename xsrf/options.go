package xsrf

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/caarlos0/env/v11"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/JeanGrijp/go-xsrf/tokens"
)

// Config holds the serialisable guard settings. Zero values are replaced by
// defaults in New.
type Config struct {
	// Methods that skip verification, compared case-insensitively.
	// nil means GET, HEAD and OPTIONS; an empty non-nil slice verifies everything.
	IgnoredMethods []string `env:"XSRF_IGNORED_METHODS" envSeparator:","`

	// Token transport
	CookieName string `env:"XSRF_COOKIE_NAME"` // e.g.: "XSRF-TOKEN"
	HeaderName string `env:"XSRF_HEADER_NAME"` // e.g.: "X-XSRF-TOKEN"

	// Session storage key of the secret
	SessionKey string `env:"XSRF_SESSION_KEY"`

	// Cookie
	CookiePath     string        `env:"XSRF_COOKIE_PATH"`
	CookieDomain   string        `env:"XSRF_COOKIE_DOMAIN"`
	CookieSecure   bool          `env:"XSRF_COOKIE_SECURE"`
	CookieSameSite http.SameSite `env:"XSRF_COOKIE_SAME_SITE"`
	CookieMaxAge   int           `env:"XSRF_COOKIE_MAX_AGE"` // in seconds
}

// ConfigFromEnv reads Config from XSRF_* environment variables. Unset
// variables keep their zero value so New applies the defaults.
func ConfigFromEnv() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("xsrf: parse env: %w", err)
	}
	return cfg, nil
}

// Option sets a behavioural hook on the Guard.
type Option func(*Guard)

// WithIgnore adds a bypass rule checked after the ignored methods.
func WithIgnore(fn IgnoreFunc) Option {
	return func(g *Guard) {
		g.ignore = fn
	}
}

// WithTokenExtractor replaces the default header extractor.
func WithTokenExtractor(fn TokenExtractor) Option {
	return func(g *Guard) {
		if fn != nil {
			g.getToken = fn
		}
	}
}

// WithTokens replaces the default token implementation.
func WithTokens(t Tokens) Option {
	return func(g *Guard) {
		if t != nil {
			g.tokens = t
		}
	}
}

// WithSessionFunc replaces the session lookup. The default reads the handle
// stored by session.Manager.
func WithSessionFunc(fn SessionFunc) Option {
	return func(g *Guard) {
		if fn != nil {
			g.sessionFn = fn
		}
	}
}

// WithErrorHandler sets the handler for secret resolution failures.
func WithErrorHandler(fn ErrorHandler) Option {
	return func(g *Guard) {
		if fn != nil {
			g.onError = fn
		}
	}
}

// WithLogger sets the logger. Tokens and secrets are never logged.
func WithLogger(log *zap.Logger) Option {
	return func(g *Guard) {
		if log != nil {
			g.log = log
		}
	}
}

// WithMetrics registers the xsrf_requests_total counter on reg. Guards given
// the same registry share the counter. It panics if reg holds a different
// collector under that name.
func WithMetrics(reg prometheus.Registerer) Option {
	return func(g *Guard) {
		g.metrics = newMetrics(reg)
	}
}

// Guard is the XSRF filter. It is immutable after New and safe for
// concurrent use.
type Guard struct {
	cfg     Config
	ignored map[string]struct{}

	ignore    IgnoreFunc
	getToken  TokenExtractor
	tokens    Tokens
	sessionFn SessionFunc
	onError   ErrorHandler

	log     *zap.Logger
	metrics *metrics
}

func New(cfg Config, opts ...Option) *Guard {
	// reasonable defaults
	if cfg.IgnoredMethods == nil {
		cfg.IgnoredMethods = []string{http.MethodGet, http.MethodHead, http.MethodOptions}
	}
	if cfg.CookieName == "" {
		cfg.CookieName = "XSRF-TOKEN"
	}
	if cfg.HeaderName == "" {
		cfg.HeaderName = "X-XSRF-TOKEN"
	}
	if cfg.SessionKey == "" {
		cfg.SessionKey = "XSRF-SECRET"
	}
	if cfg.CookiePath == "" {
		cfg.CookiePath = "/"
	}
	if cfg.CookieSameSite == 0 {
		cfg.CookieSameSite = http.SameSiteLaxMode
	}

	ignored := make(map[string]struct{}, len(cfg.IgnoredMethods))
	for _, m := range cfg.IgnoredMethods {
		ignored[strings.ToUpper(strings.TrimSpace(m))] = struct{}{}
	}

	g := &Guard{
		cfg:       cfg,
		ignored:   ignored,
		getToken:  HeaderExtractor(cfg.HeaderName),
		tokens:    tokens.Default(),
		sessionFn: sessionFromContext,
		onError:   defaultErrorHandler,
		log:       zap.NewNop(),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Config returns the effective configuration.
func (g *Guard) Config() Config {
	cfg := g.cfg
	cfg.IgnoredMethods = append([]string(nil), g.cfg.IgnoredMethods...)
	return cfg
}
