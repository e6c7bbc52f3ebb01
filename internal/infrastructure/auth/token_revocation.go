package auth

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// TokenRevocationStore invalidates JWT tokens before their natural expiry,
// e.g. on logout or when an account is disabled.
type TokenRevocationStore interface {
	// Revoke marks a token's JTI as revoked. ttl should be the remaining
	// lifetime of the token so the entry expires with it.
	Revoke(ctx context.Context, jti string, ttl time.Duration) error

	// IsRevoked reports whether a token's JTI has been revoked.
	IsRevoked(ctx context.Context, jti string) (bool, error)

	// RevokeUser invalidates every token a user holds by recording a
	// cutoff timestamp. Tokens issued at or before the cutoff are rejected.
	RevokeUser(ctx context.Context, userID string, ttl time.Duration) error

	// IsUserRevoked reports whether a token issued at the given time falls
	// under a user-level revocation.
	IsUserRevoked(ctx context.Context, userID string, tokenIssuedAt time.Time) (bool, error)
}

// RedisTokenRevocationStore implements TokenRevocationStore on Redis
type RedisTokenRevocationStore struct {
	client    *redis.Client
	keyPrefix string
}

// NewRedisTokenRevocationStore creates a revocation store backed by an
// existing Redis client.
func NewRedisTokenRevocationStore(client *redis.Client) *RedisTokenRevocationStore {
	return &RedisTokenRevocationStore{
		client:    client,
		keyPrefix: "auth:revoked:",
	}
}

func (s *RedisTokenRevocationStore) jtiKey(jti string) string {
	return s.keyPrefix + "jti:" + jti
}

func (s *RedisTokenRevocationStore) userKey(userID string) string {
	return s.keyPrefix + "user:" + userID
}

// Revoke marks a token's JTI as revoked
func (s *RedisTokenRevocationStore) Revoke(ctx context.Context, jti string, ttl time.Duration) error {
	if err := s.client.Set(ctx, s.jtiKey(jti), "1", ttl).Err(); err != nil {
		return fmt.Errorf("failed to revoke token: %w", err)
	}
	return nil
}

// IsRevoked reports whether a token's JTI has been revoked
func (s *RedisTokenRevocationStore) IsRevoked(ctx context.Context, jti string) (bool, error) {
	exists, err := s.client.Exists(ctx, s.jtiKey(jti)).Result()
	if err != nil {
		return false, fmt.Errorf("failed to check token revocation: %w", err)
	}
	return exists > 0, nil
}

// RevokeUser records the current time as the revocation cutoff for a user
func (s *RedisTokenRevocationStore) RevokeUser(ctx context.Context, userID string, ttl time.Duration) error {
	cutoff := time.Now().Unix()
	if err := s.client.Set(ctx, s.userKey(userID), cutoff, ttl).Err(); err != nil {
		return fmt.Errorf("failed to revoke user tokens: %w", err)
	}
	return nil
}

// IsUserRevoked reports whether a token issued at the given time falls under
// a user-level revocation cutoff
func (s *RedisTokenRevocationStore) IsUserRevoked(ctx context.Context, userID string, tokenIssuedAt time.Time) (bool, error) {
	raw, err := s.client.Get(ctx, s.userKey(userID)).Result()
	if err == redis.Nil {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to check user revocation: %w", err)
	}

	var cutoff int64
	if _, err := fmt.Sscanf(raw, "%d", &cutoff); err != nil {
		return false, fmt.Errorf("failed to parse revocation cutoff: %w", err)
	}

	return tokenIssuedAt.Unix() <= cutoff, nil
}

var _ TokenRevocationStore = (*RedisTokenRevocationStore)(nil)

// InMemoryTokenRevocationStore is a single-process implementation for tests.
type InMemoryTokenRevocationStore struct {
	mu          sync.RWMutex
	revokedJTIs map[string]time.Time // JTI -> entry expiry
	userCutoffs map[string]time.Time // userID -> revocation cutoff
}

// NewInMemoryTokenRevocationStore creates an in-memory revocation store
func NewInMemoryTokenRevocationStore() *InMemoryTokenRevocationStore {
	return &InMemoryTokenRevocationStore{
		revokedJTIs: make(map[string]time.Time),
		userCutoffs: make(map[string]time.Time),
	}
}

// Revoke marks a token's JTI as revoked
func (s *InMemoryTokenRevocationStore) Revoke(_ context.Context, jti string, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.revokedJTIs[jti] = time.Now().Add(ttl)
	return nil
}

// IsRevoked reports whether a token's JTI has been revoked
func (s *InMemoryTokenRevocationStore) IsRevoked(_ context.Context, jti string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	expiry, ok := s.revokedJTIs[jti]
	if !ok {
		return false, nil
	}
	if time.Now().After(expiry) {
		delete(s.revokedJTIs, jti)
		return false, nil
	}
	return true, nil
}

// RevokeUser records the current time as the revocation cutoff for a user
func (s *InMemoryTokenRevocationStore) RevokeUser(_ context.Context, userID string, _ time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.userCutoffs[userID] = time.Now()
	return nil
}

// IsUserRevoked reports whether a token issued at the given time falls under
// a user-level revocation cutoff
func (s *InMemoryTokenRevocationStore) IsUserRevoked(_ context.Context, userID string, tokenIssuedAt time.Time) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	cutoff, ok := s.userCutoffs[userID]
	if !ok {
		return false, nil
	}
	// UnixNano keeps sub-second precision for tests
	return tokenIssuedAt.UnixNano() <= cutoff.UnixNano(), nil
}

var _ TokenRevocationStore = (*InMemoryTokenRevocationStore)(nil)
