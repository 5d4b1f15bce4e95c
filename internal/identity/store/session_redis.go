package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"vowline/internal/identity/models"
	"vowline/pkg/domain"
	"vowline/pkg/platform/sentinel"
)

const sessionKeyPrefix = "session:"

// SessionRedis stores sessions as JSON values with a TTL matching the session
// expiry, so revoked and abandoned sessions both disappear from the hot path.
type SessionRedis struct {
	client redis.UniversalClient
}

func NewSessionRedis(client redis.UniversalClient) *SessionRedis {
	return &SessionRedis{client: client}
}

func (s *SessionRedis) Save(ctx context.Context, session *models.Session) error {
	payload, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("marshal session: %w", err)
	}
	ttl := time.Until(session.ExpiresAt)
	if ttl <= 0 {
		return sentinel.ErrExpired
	}
	if err := s.client.Set(ctx, sessionKeyPrefix+session.ID.String(), payload, ttl).Err(); err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	return nil
}

func (s *SessionRedis) Find(ctx context.Context, id domain.SessionID) (*models.Session, error) {
	payload, err := s.client.Get(ctx, sessionKeyPrefix+id.String()).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, sentinel.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find session: %w", err)
	}
	var session models.Session
	if err := json.Unmarshal(payload, &session); err != nil {
		return nil, fmt.Errorf("unmarshal session: %w", err)
	}
	if session.Expired(time.Now()) {
		return nil, sentinel.ErrExpired
	}
	return &session, nil
}

func (s *SessionRedis) Delete(ctx context.Context, id domain.SessionID) error {
	n, err := s.client.Del(ctx, sessionKeyPrefix+id.String()).Result()
	if err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	if n == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}
