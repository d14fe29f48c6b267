package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/MrSnakeDoc/bikeyard/internal/domain"
)

// SaveSessionQuery stores the query controls of a session and refreshes its TTL
func (s *Store) SaveSessionQuery(ctx context.Context, id string, q domain.Query) error {
	data, err := json.Marshal(q)
	if err != nil {
		return fmt.Errorf("failed to marshal session query: %w", err)
	}
	if err := s.client.Set(ctx, SessionKey(id), data, s.sessionTTL).Err(); err != nil {
		return fmt.Errorf("failed to save session query: %w", err)
	}
	return nil
}

// GetSessionQuery retrieves a stored session query; found is false on a miss
func (s *Store) GetSessionQuery(ctx context.Context, id string) (q domain.Query, found bool, err error) {
	data, err := s.client.Get(ctx, SessionKey(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return domain.Query{}, false, nil
		}
		return domain.Query{}, false, fmt.Errorf("failed to get session query: %w", err)
	}
	if err := json.Unmarshal(data, &q); err != nil {
		return domain.Query{}, false, fmt.Errorf("failed to unmarshal session query: %w", err)
	}
	return q.Normalize(), true, nil
}

// DeleteSessionQuery removes a stored session query
func (s *Store) DeleteSessionQuery(ctx context.Context, id string) error {
	if err := s.client.Del(ctx, SessionKey(id)).Err(); err != nil {
		return fmt.Errorf("failed to delete session query: %w", err)
	}
	return nil
}

// CountSessions counts stored session queries
func (s *Store) CountSessions(ctx context.Context) (int, error) {
	n := 0
	iter := s.client.Scan(ctx, 0, KeyPrefixSession+"*", 0).Iterator()
	for iter.Next(ctx) {
		if _, err := ExtractSessionID(iter.Val()); err == nil {
			n++
		}
	}
	if err := iter.Err(); err != nil {
		return 0, fmt.Errorf("failed to count sessions: %w", err)
	}
	return n, nil
}
