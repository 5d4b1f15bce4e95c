package token

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vowline/pkg/domain"
	dErrors "vowline/pkg/domain-errors"
)

var testKey = []byte("0123456789abcdef0123456789abcdef")

func newService(t *testing.T, ttl time.Duration) *Service {
	t.Helper()
	svc, err := NewService(testKey, "vowline-test", ttl)
	require.NoError(t, err)
	return svc
}

func TestNewServiceRejectsShortKey(t *testing.T) {
	_, err := NewService([]byte("short"), "vowline-test", time.Minute)
	assert.Error(t, err)
}

func TestIssueAndParse(t *testing.T) {
	svc := newService(t, 15*time.Minute)
	userID := domain.UserID(uuid.New())
	sessionID := domain.SessionID(uuid.New())
	now := time.Now()

	raw, err := svc.Issue(userID, sessionID, now, now.Add(time.Hour))
	require.NoError(t, err)

	claims, err := svc.Parse(raw)
	require.NoError(t, err)
	assert.Equal(t, userID, claims.UserID)
	assert.Equal(t, sessionID, claims.SessionID)
}

func TestExpiryCappedAtSessionExpiry(t *testing.T) {
	svc := newService(t, time.Hour)
	now := time.Now()

	// Session ends before the token TTL would; the token must not outlive it.
	raw, err := svc.Issue(domain.UserID(uuid.New()), domain.SessionID(uuid.New()), now.Add(-time.Hour), now.Add(-time.Minute))
	require.NoError(t, err)

	_, err = svc.Parse(raw)
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeUnauthorized))
}

func TestParseRejectsExpiredToken(t *testing.T) {
	svc := newService(t, time.Minute)
	past := time.Now().Add(-time.Hour)

	raw, err := svc.Issue(domain.UserID(uuid.New()), domain.SessionID(uuid.New()), past, past.Add(30*time.Minute))
	require.NoError(t, err)

	_, err = svc.Parse(raw)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeUnauthorized))
}

func TestParseRejectsForeignSignature(t *testing.T) {
	svc := newService(t, time.Minute)
	other, err := NewService([]byte("ffffffffffffffffffffffffffffffff"), "vowline-test", time.Minute)
	require.NoError(t, err)

	now := time.Now()
	raw, err := other.Issue(domain.UserID(uuid.New()), domain.SessionID(uuid.New()), now, now.Add(time.Hour))
	require.NoError(t, err)

	_, err = svc.Parse(raw)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeUnauthorized))
}

func TestParseRejectsWrongIssuer(t *testing.T) {
	svc := newService(t, time.Minute)
	other, err := NewService(testKey, "someone-else", time.Minute)
	require.NoError(t, err)

	now := time.Now()
	raw, err := other.Issue(domain.UserID(uuid.New()), domain.SessionID(uuid.New()), now, now.Add(time.Hour))
	require.NoError(t, err)

	_, err = svc.Parse(raw)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeUnauthorized))
}

func TestParseRejectsGarbage(t *testing.T) {
	svc := newService(t, time.Minute)
	_, err := svc.Parse("not-a-token")
	assert.True(t, dErrors.HasCode(err, dErrors.CodeUnauthorized))
}
