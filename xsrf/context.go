package xsrf

import "context"

type ctxKey string

// TokenField is the name under which the issued token is published to
// rendering layers (request context, gin context).
const TokenField = "xsrfToken"

const tokenKey ctxKey = TokenField

func contextWithToken(ctx context.Context, tok string) context.Context {
	return context.WithValue(ctx, tokenKey, tok)
}

// TokenFromContext returns the token issued for the current request.
//
// Params:
// - ctx: request context passed through Protect (or Inspect).
//
// Returns:
// - token (string) and a boolean indicating whether a token was issued.
func TokenFromContext(ctx context.Context) (string, bool) {
	s, ok := ctx.Value(tokenKey).(string)
	return s, ok && s != ""
}
