/**
 * @description
 * Redis implementation of the SessionStore. Sessions are stored as JSON under
 * a prefixed key with an inactivity TTL; every Save refreshes the TTL. The
 * engine re-reads the session at the start of each turn instead of caching it
 * across turns, so a shared Redis survives process restarts.
 *
 * @dependencies
 * - context, encoding/json, time: Standard Go libraries.
 * - github.com/redis/go-redis/v9: The Redis client.
 * - internal/domain: For the Session model.
 */

package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/FredAbod/Project-Eureka-sub000/internal/domain"
)

// RedisSessionStore keeps sessions in Redis with a sliding TTL.
type RedisSessionStore struct {
	client redis.UniversalClient
	prefix string
	ttl    time.Duration
}

// NewRedisSessionStore creates a session store. A non-positive ttl falls back
// to 24 hours.
func NewRedisSessionStore(client redis.UniversalClient, prefix string, ttl time.Duration) *RedisSessionStore {
	trimmed := strings.TrimSuffix(strings.TrimSpace(prefix), ":")
	if trimmed == "" {
		trimmed = "eureka:session"
	}
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &RedisSessionStore{client: client, prefix: trimmed, ttl: ttl}
}

func (s *RedisSessionStore) key(userID string) string {
	return fmt.Sprintf("%s:%s", s.prefix, userID)
}

// Get loads the session for a user, or ErrSessionNotFound.
func (s *RedisSessionStore) Get(ctx context.Context, userID string) (*domain.Session, error) {
	raw, err := s.client.Get(ctx, s.key(userID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrSessionNotFound
		}
		return nil, fmt.Errorf("failed to load session: %w", err)
	}

	var session domain.Session
	if err := json.Unmarshal(raw, &session); err != nil {
		// Corrupt persisted state is exceptional; drop it so the user is not
		// stuck behind an unreadable session.
		_ = s.client.Del(ctx, s.key(userID)).Err()
		return nil, fmt.Errorf("failed to decode session: %w", err)
	}
	return &session, nil
}

// Save writes the session back and refreshes its TTL.
func (s *RedisSessionStore) Save(ctx context.Context, session *domain.Session) error {
	session.UpdatedAt = time.Now().UTC()
	raw, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("failed to encode session: %w", err)
	}
	if err := s.client.Set(ctx, s.key(session.UserID), raw, s.ttl).Err(); err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}
	return nil
}

// Delete removes the session.
func (s *RedisSessionStore) Delete(ctx context.Context, userID string) error {
	if err := s.client.Del(ctx, s.key(userID)).Err(); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	return nil
}

// TTL returns the configured inactivity window.
func (s *RedisSessionStore) TTL() time.Duration {
	return s.ttl
}
