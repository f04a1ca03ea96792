// Package tokens implements the secret/token pair used by the xsrf guard.
//
// A secret is a random value held server side (usually in the session). A token
// is derived from a secret and a random salt, so every call to Create returns a
// different value, and any of them verifies against the secret that produced it.
// Nothing about issued tokens is stored.
package tokens

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"strings"

	"golang.org/x/crypto/blake2b"
)

const (
	defaultSecretLength = 18
	defaultSaltLength   = 8

	saltAlphabet = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz"
	// largest multiple of len(saltAlphabet) that fits in a byte
	saltCutoff = 256 - 256%len(saltAlphabet)
)

// ErrInvalidLength is returned by New when a length option is not positive.
var ErrInvalidLength = errors.New("tokens: length must be positive")

// Tokens creates and verifies tokens. It is safe for concurrent use.
type Tokens struct {
	secretLength int
	saltLength   int
}

// Option configures Tokens.
type Option func(*Tokens)

// WithSecretLength sets the number of random bytes in a new secret.
func WithSecretLength(n int) Option {
	return func(t *Tokens) {
		t.secretLength = n
	}
}

// WithSaltLength sets the number of salt characters prefixed to each token.
func WithSaltLength(n int) Option {
	return func(t *Tokens) {
		t.saltLength = n
	}
}

// New returns Tokens with the given options applied over the defaults.
func New(opts ...Option) (*Tokens, error) {
	t := &Tokens{
		secretLength: defaultSecretLength,
		saltLength:   defaultSaltLength,
	}
	for _, opt := range opts {
		opt(t)
	}
	if t.secretLength <= 0 || t.saltLength <= 0 {
		return nil, ErrInvalidLength
	}
	return t, nil
}

// Default returns Tokens with default lengths.
func Default() *Tokens {
	return &Tokens{
		secretLength: defaultSecretLength,
		saltLength:   defaultSaltLength,
	}
}

// NewSecret generates a url-safe random secret.
func (t *Tokens) NewSecret() (string, error) {
	b := make([]byte, t.secretLength)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}

// Create derives a new token from secret.
func (t *Tokens) Create(secret string) string {
	return tokenize(secret, randomSalt(t.saltLength))
}

// Verify reports whether token was created from secret. Empty or malformed
// tokens never verify.
func (t *Tokens) Verify(secret, token string) bool {
	if secret == "" || token == "" {
		return false
	}
	i := strings.IndexByte(token, '-')
	if i <= 0 {
		return false
	}
	expected := tokenize(secret, token[:i])
	return subtle.ConstantTimeCompare([]byte(token), []byte(expected)) == 1
}

func tokenize(secret, salt string) string {
	sum := blake2b.Sum256([]byte(salt + "-" + secret))
	return salt + "-" + base64.RawURLEncoding.EncodeToString(sum[:])
}

// randomSalt draws n characters uniformly from saltAlphabet. Bytes at or
// above saltCutoff are discarded so the modulo does not favour any character.
func randomSalt(n int) string {
	out := make([]byte, 0, n)
	buf := make([]byte, n+n/4+1)
	for len(out) < n {
		// crypto/rand.Read does not fail on supported platforms
		_, _ = rand.Read(buf)
		for _, c := range buf {
			if int(c) >= saltCutoff {
				continue
			}
			out = append(out, saltAlphabet[int(c)%len(saltAlphabet)])
			if len(out) == n {
				break
			}
		}
	}
	return string(out)
}
