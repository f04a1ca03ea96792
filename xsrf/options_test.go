package xsrf

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/JeanGrijp/go-xsrf/session"
)

func TestConfigFromEnv(t *testing.T) {
	t.Setenv("XSRF_IGNORED_METHODS", "GET,TRACE")
	t.Setenv("XSRF_COOKIE_NAME", "csrftoken")
	t.Setenv("XSRF_HEADER_NAME", "X-CSRFToken")
	t.Setenv("XSRF_SESSION_KEY", "_csrf")
	t.Setenv("XSRF_COOKIE_SECURE", "true")
	t.Setenv("XSRF_COOKIE_SAME_SITE", "3")
	t.Setenv("XSRF_COOKIE_MAX_AGE", "600")

	cfg, err := ConfigFromEnv()
	require.NoError(t, err)

	assert.Equal(t, []string{"GET", "TRACE"}, cfg.IgnoredMethods)
	assert.Equal(t, "csrftoken", cfg.CookieName)
	assert.Equal(t, "X-CSRFToken", cfg.HeaderName)
	assert.Equal(t, "_csrf", cfg.SessionKey)
	assert.True(t, cfg.CookieSecure)
	assert.Equal(t, http.SameSiteStrictMode, cfg.CookieSameSite)
	assert.Equal(t, 600, cfg.CookieMaxAge)
}

func TestConfigFromEnvUnsetKeepsDefaults(t *testing.T) {
	cfg, err := ConfigFromEnv()
	require.NoError(t, err)

	eff := New(cfg).Config()
	assert.Equal(t, "XSRF-TOKEN", eff.CookieName)
	assert.ElementsMatch(t, []string{"GET", "HEAD", "OPTIONS"}, eff.IgnoredMethods)
}

func TestConfigFromEnvInvalid(t *testing.T) {
	t.Setenv("XSRF_COOKIE_MAX_AGE", "forever")

	_, err := ConfigFromEnv()
	assert.Error(t, err)
}

func TestMetricsCountOutcomes(t *testing.T) {
	reg := prometheus.NewRegistry()
	g := New(Config{}, WithMetrics(reg))
	store := session.NewMemoryStore()

	token := fetchToken(t, g, store)

	post := func(header string) {
		rec := httptest.NewRecorder()
		req := withSession(httptest.NewRequest(http.MethodPost, "/submit", nil), store)
		req.Header.Set("X-XSRF-TOKEN", header)
		appHandler(g, nil).ServeHTTP(rec, req)
	}
	post(token)
	post("bad")
	post("bad")

	rec := httptest.NewRecorder()
	appHandler(g, nil).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/submit", nil))

	assert.Equal(t, 1.0, testutil.ToFloat64(g.metrics.requests.WithLabelValues("bypassed")))
	assert.Equal(t, 1.0, testutil.ToFloat64(g.metrics.requests.WithLabelValues("verified")))
	assert.Equal(t, 2.0, testutil.ToFloat64(g.metrics.requests.WithLabelValues("rejected")))
	assert.Equal(t, 1.0, testutil.ToFloat64(g.metrics.requests.WithLabelValues("error")))
}

func TestWithoutMetricsIsNoop(t *testing.T) {
	g := New(Config{})
	assert.Nil(t, g.metrics)
	fetchToken(t, g, session.NewMemoryStore())
}

func TestLogsRejectionWithoutToken(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	g := New(Config{}, WithLogger(zap.New(core)))
	store := session.NewMemoryStore()
	token := fetchToken(t, g, store)

	rec := httptest.NewRecorder()
	req := withSession(httptest.NewRequest(http.MethodPost, "/submit", nil), store)
	req.Header.Set("X-XSRF-TOKEN", "forged")
	appHandler(g, nil).ServeHTTP(rec, req)

	warns := logs.FilterLevelExact(zapcore.WarnLevel).All()
	require.Len(t, warns, 1)
	assert.Equal(t, "xsrf token rejected", warns[0].Message)
	assert.Equal(t, "/submit", warns[0].ContextMap()["path"])

	for _, entry := range logs.All() {
		for _, v := range entry.ContextMap() {
			assert.NotEqual(t, token, v, "token leaked into logs")
		}
	}
}

func TestGuardsShareRegistry(t *testing.T) {
	reg := prometheus.NewRegistry()
	first := New(Config{}, WithMetrics(reg))

	var second *Guard
	require.NotPanics(t, func() {
		second = New(Config{}, WithMetrics(reg))
	})

	fetchToken(t, first, session.NewMemoryStore())
	fetchToken(t, second, session.NewMemoryStore())

	assert.Equal(t, 2.0, testutil.ToFloat64(first.metrics.requests.WithLabelValues("bypassed")))
	assert.Same(t, first.metrics.requests, second.metrics.requests)
}

func TestMetricsNameClashPanics(t *testing.T) {
	reg := prometheus.NewRegistry()
	reg.MustRegister(prometheus.NewCounter(prometheus.CounterOpts{
		Name: "xsrf_requests_total",
		Help: "unrelated",
	}))

	assert.Panics(t, func() { New(Config{}, WithMetrics(reg)) })
}
