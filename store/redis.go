package store

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/MrEthical07/goSignIn/token"
	"github.com/redis/go-redis/v9"
)

// ErrRedisUnavailable wraps Redis transport failures.
var ErrRedisUnavailable = errors.New("redis unavailable")

// DefaultRedisPrefix namespaces keys when no prefix is configured.
const DefaultRedisPrefix = "gsi"

// DefaultRetention keeps the auth record around after the access token
// expires so the refresh token stays usable.
const DefaultRetention = 30 * 24 * time.Hour

// Redis persists records as versioned JSON blobs under {prefix}:auth and
// {prefix}:user.
type Redis struct {
	redis     redis.UniversalClient
	prefix    string
	retention time.Duration
	now       func() time.Time
}

// NewRedis creates a store backed by the given client. An empty prefix uses
// [DefaultRedisPrefix]; a non-positive retention uses [DefaultRetention].
func NewRedis(client redis.UniversalClient, prefix string, retention time.Duration) *Redis {
	prefix = strings.TrimSuffix(strings.TrimSpace(prefix), ":")
	if prefix == "" {
		prefix = DefaultRedisPrefix
	}
	if retention <= 0 {
		retention = DefaultRetention
	}
	return &Redis{
		redis:     client,
		prefix:    prefix,
		retention: retention,
		now:       time.Now,
	}
}

func (s *Redis) authKey() string {
	return s.prefix + ":auth"
}

func (s *Redis) userKey() string {
	return s.prefix + ":user"
}

// LoadAuth returns the stored Auth, or nil when absent.
func (s *Redis) LoadAuth(ctx context.Context) (*token.Auth, error) {
	data, err := s.get(ctx, s.authKey())
	if err != nil || data == nil {
		return nil, err
	}
	return DecodeAuth(data)
}

// LoadUser returns the stored User, or nil when absent.
func (s *Redis) LoadUser(ctx context.Context) (*token.User, error) {
	data, err := s.get(ctx, s.userKey())
	if err != nil || data == nil {
		return nil, err
	}
	return DecodeUser(data)
}

func (s *Redis) get(ctx context.Context, key string) ([]byte, error) {
	data, err := s.redis.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}
	return data, nil
}

// SaveAuth writes a with a TTL of its remaining lifetime plus the retention
// window. A nil value removes the record.
func (s *Redis) SaveAuth(ctx context.Context, a *token.Auth) error {
	if a == nil {
		return s.del(ctx, s.authKey())
	}
	data, err := EncodeAuth(a)
	if err != nil {
		return err
	}
	ttl := a.ExpiresAt.Sub(s.now()) + s.retention
	if ttl <= 0 {
		ttl = s.retention
	}
	if err := s.redis.Set(ctx, s.authKey(), data, ttl).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}
	return nil
}

// SaveUser writes u without expiry. A nil value removes the record.
func (s *Redis) SaveUser(ctx context.Context, u *token.User) error {
	if u == nil {
		return s.del(ctx, s.userKey())
	}
	data, err := EncodeUser(u)
	if err != nil {
		return err
	}
	if err := s.redis.Set(ctx, s.userKey(), data, 0).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}
	return nil
}

// Clear removes both records. It is idempotent.
func (s *Redis) Clear(ctx context.Context) error {
	return s.del(ctx, s.authKey(), s.userKey())
}

func (s *Redis) del(ctx context.Context, keys ...string) error {
	if err := s.redis.Del(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}
	return nil
}

// Ping returns a point-in-time Redis availability check and latency.
func (s *Redis) Ping(ctx context.Context) (time.Duration, error) {
	start := time.Now()
	if err := s.redis.Ping(ctx).Err(); err != nil {
		return time.Since(start), fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}
	return time.Since(start), nil
}
