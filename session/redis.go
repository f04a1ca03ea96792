package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const (
	defaultKeyPrefix = "session:"
	defaultTTL       = 24 * time.Hour
)

// RedisStore keeps each session as a Redis hash. The hash expiry slides forward
// on every read and write.
type RedisStore struct {
	client redis.UniversalClient
	prefix string
	ttl    time.Duration
	log    *zap.Logger
}

// RedisOption configures a RedisStore.
type RedisOption func(*RedisStore)

// WithKeyPrefix sets the prefix of session hash keys (default "session:").
func WithKeyPrefix(prefix string) RedisOption {
	return func(s *RedisStore) {
		s.prefix = prefix
	}
}

// WithTTL sets the idle lifetime of a session: it expires ttl after its last
// read or write. Zero disables expiry.
func WithTTL(ttl time.Duration) RedisOption {
	return func(s *RedisStore) {
		s.ttl = ttl
	}
}

// WithRedisLogger sets the logger used for failed commands.
func WithRedisLogger(log *zap.Logger) RedisOption {
	return func(s *RedisStore) {
		if log != nil {
			s.log = log
		}
	}
}

// NewRedisStore returns a store backed by client.
func NewRedisStore(client redis.UniversalClient, opts ...RedisOption) *RedisStore {
	s := &RedisStore{
		client: client,
		prefix: defaultKeyPrefix,
		ttl:    defaultTTL,
		log:    zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *RedisStore) key(id string) string {
	return s.prefix + id
}

// Get reads key from the session hash and, when a TTL is set, pushes the
// session expiry forward so sessions that are only read stay alive.
//
// Params:
// - ctx: request context.
// - id: session id.
// - key: field inside the session.
//
// Returns:
// - the stored value, or "" when the session or field is absent.
// - a wrapped error when Redis cannot be reached.
func (s *RedisStore) Get(ctx context.Context, id, key string) (string, error) {
	k := s.key(id)
	var get *redis.StringCmd
	_, _ = s.client.Pipelined(ctx, func(p redis.Pipeliner) error {
		get = p.HGet(ctx, k, key)
		if s.ttl > 0 {
			p.Expire(ctx, k, s.ttl)
		}
		return nil
	})

	v, err := get.Result()
	if errors.Is(err, redis.Nil) {
		return "", nil
	}
	if err != nil {
		s.log.Error("session get failed", zap.String("session_id", id), zap.String("key", key), zap.Error(err))
		return "", fmt.Errorf("session: get %q: %w", key, err)
	}
	return v, nil
}

// Set writes key and refreshes the session expiry.
func (s *RedisStore) Set(ctx context.Context, id, key, value string) error {
	k := s.key(id)
	_, err := s.client.Pipelined(ctx, func(p redis.Pipeliner) error {
		p.HSet(ctx, k, key, value)
		if s.ttl > 0 {
			p.Expire(ctx, k, s.ttl)
		}
		return nil
	})
	if err != nil {
		s.log.Error("session set failed", zap.String("session_id", id), zap.String("key", key), zap.Error(err))
		return fmt.Errorf("session: set %q: %w", key, err)
	}
	return nil
}

// Delete drops the whole session hash.
func (s *RedisStore) Delete(ctx context.Context, id string) error {
	if err := s.client.Del(ctx, s.key(id)).Err(); err != nil {
		return fmt.Errorf("session: delete: %w", err)
	}
	return nil
}
