package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// SessionStore tracks renewal credentials server-side so logout revokes them
// before their natural expiry. Key format: session:<token_id>
type SessionStore struct {
	client *redis.Client
}

// NewSessionStore creates a SessionStore wrapping the given Redis client.
func NewSessionStore(client *redis.Client) *SessionStore {
	return &SessionStore{client: client}
}

// Put records a renewal credential; the record expires with the credential.
func (s *SessionStore) Put(ctx context.Context, tokenID, userID string, ttl time.Duration) error {
	return s.client.Set(ctx, s.key(tokenID), userID, ttl).Err()
}

// Exists reports whether the renewal credential is still tracked.
func (s *SessionStore) Exists(ctx context.Context, tokenID string) (bool, error) {
	n, err := s.client.Exists(ctx, s.key(tokenID)).Result()
	if err != nil {
		return false, fmt.Errorf("session check: %w", err)
	}
	return n > 0, nil
}

// Delete revokes the renewal credential. Deleting a missing record is fine.
func (s *SessionStore) Delete(ctx context.Context, tokenID string) error {
	return s.client.Del(ctx, s.key(tokenID)).Err()
}

func (s *SessionStore) key(tokenID string) string {
	return fmt.Sprintf("session:%s", tokenID)
}
