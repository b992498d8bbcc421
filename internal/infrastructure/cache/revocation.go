package cache

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/janhq/library-api/internal/domain/auth"
)

// RedisRevocationStore keeps revoked token ids as expiring keys.
type RedisRevocationStore struct {
	client redis.UniversalClient
}

var _ auth.RevocationStore = (*RedisRevocationStore)(nil)

// NewRedisRevocationStore creates a Redis revocation store.
func NewRedisRevocationStore(client redis.UniversalClient) *RedisRevocationStore {
	return &RedisRevocationStore{client: client}
}

func revokedKey(tokenID string) string {
	return keyPrefix + "revoked:" + tokenID
}

// Revoke stores the token id until ttl elapses.
func (s *RedisRevocationStore) Revoke(ctx context.Context, tokenID string, ttl time.Duration) error {
	if err := s.client.Set(ctx, revokedKey(tokenID), "1", ttl).Err(); err != nil {
		return fmt.Errorf("failed to revoke token: %w", err)
	}
	return nil
}

// IsRevoked reports whether the token id is on the list.
func (s *RedisRevocationStore) IsRevoked(ctx context.Context, tokenID string) (bool, error) {
	n, err := s.client.Exists(ctx, revokedKey(tokenID)).Result()
	if err != nil {
		return false, fmt.Errorf("failed to check key existence: %w", err)
	}
	return n > 0, nil
}

// MemoryRevocationStore is the single-instance fallback used without Redis.
type MemoryRevocationStore struct {
	mu      sync.Mutex
	entries map[string]time.Time
	now     func() time.Time
}

var _ auth.RevocationStore = (*MemoryRevocationStore)(nil)

// NewMemoryRevocationStore creates an in-process revocation store.
func NewMemoryRevocationStore() *MemoryRevocationStore {
	return &MemoryRevocationStore{entries: map[string]time.Time{}, now: time.Now}
}

// Revoke stores the token id until ttl elapses.
func (s *MemoryRevocationStore) Revoke(_ context.Context, tokenID string, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	for id, expires := range s.entries {
		if !now.Before(expires) {
			delete(s.entries, id)
		}
	}
	s.entries[tokenID] = now.Add(ttl)
	return nil
}

// IsRevoked reports whether the token id is on the list.
func (s *MemoryRevocationStore) IsRevoked(_ context.Context, tokenID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	expires, ok := s.entries[tokenID]
	if !ok {
		return false, nil
	}
	if !s.now().Before(expires) {
		delete(s.entries, tokenID)
		return false, nil
	}
	return true, nil
}
