//go:build integration

package store_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"

	"vowline/internal/identity/models"
	"vowline/internal/identity/store"
	"vowline/pkg/domain"
	"vowline/pkg/platform/sentinel"
	"vowline/pkg/testutil/containers"
)

type RedisSessionSuite struct {
	suite.Suite
	redis *containers.RedisContainer
	store *store.SessionRedis
}

func TestRedisSessionSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(RedisSessionSuite))
}

func (s *RedisSessionSuite) SetupSuite() {
	mgr := containers.GetManager()
	s.redis = mgr.GetRedis(s.T())
	s.store = store.NewSessionRedis(s.redis.Client)
}

func (s *RedisSessionSuite) SetupTest() {
	s.Require().NoError(s.redis.FlushAll(context.Background()))
}

func makeSession(ttl time.Duration) *models.Session {
	now := time.Now()
	return &models.Session{
		ID:         domain.SessionID(uuid.New()),
		UserID:     domain.UserID(uuid.New()),
		DeviceName: "Chrome on macOS",
		IP:         "203.0.113.9",
		UserAgent:  "Mozilla/5.0",
		CreatedAt:  now,
		ExpiresAt:  now.Add(ttl),
	}
}

func (s *RedisSessionSuite) TestSaveAndFind() {
	ctx := context.Background()
	sess := makeSession(time.Hour)
	s.Require().NoError(s.store.Save(ctx, sess))

	found, err := s.store.Find(ctx, sess.ID)
	s.Require().NoError(err)
	s.Equal(sess.UserID, found.UserID)
	s.Equal(sess.DeviceName, found.DeviceName)
}

func (s *RedisSessionSuite) TestExpiredSessionRejected() {
	ctx := context.Background()
	err := s.store.Save(ctx, makeSession(-time.Minute))
	s.Require().ErrorIs(err, sentinel.ErrExpired)
}

func (s *RedisSessionSuite) TestTTLEvictsSession() {
	ctx := context.Background()
	sess := makeSession(time.Second)
	s.Require().NoError(s.store.Save(ctx, sess))

	s.Require().Eventually(func() bool {
		_, err := s.store.Find(ctx, sess.ID)
		return err != nil
	}, 5*time.Second, 100*time.Millisecond)
}

func (s *RedisSessionSuite) TestDelete() {
	ctx := context.Background()
	sess := makeSession(time.Hour)
	s.Require().NoError(s.store.Save(ctx, sess))

	s.Require().NoError(s.store.Delete(ctx, sess.ID))
	_, err := s.store.Find(ctx, sess.ID)
	s.Require().ErrorIs(err, sentinel.ErrNotFound)

	s.Require().ErrorIs(s.store.Delete(ctx, sess.ID), sentinel.ErrNotFound)
}
