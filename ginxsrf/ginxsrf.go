// Package ginxsrf adapts the xsrf guard to Gin.
package ginxsrf

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/JeanGrijp/go-xsrf/session"
	"github.com/JeanGrijp/go-xsrf/xsrf"
)

// Middleware runs g on every request. The issued token is available through
// c.GetString(xsrf.TokenField) and in c.Request's context. Rejected requests
// are aborted with 412; session failures are recorded with c.Error and
// aborted with 500.
func Middleware(g *xsrf.Guard) gin.HandlerFunc {
	return func(c *gin.Context) {
		r, outcome, err := g.Inspect(c.Writer, c.Request)
		// keep gin context in sync with the request carrying the token
		c.Request = r
		if err != nil {
			_ = c.Error(err)
			c.AbortWithStatus(http.StatusInternalServerError)
			return
		}
		if tok, ok := xsrf.TokenFromContext(r.Context()); ok {
			c.Set(xsrf.TokenField, tok)
		}
		if !outcome.Allowed() {
			c.AbortWithStatus(http.StatusPreconditionFailed)
			return
		}
		c.Next()
	}
}

// Sessions runs the session middleware inside gin.
func Sessions(m *session.Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		h := m.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			c.Request = r
			c.Next()
		}))
		h.ServeHTTP(c.Writer, c.Request)
	}
}
