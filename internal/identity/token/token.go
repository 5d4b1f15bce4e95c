// Package token signs and verifies session bearer tokens.
package token

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"vowline/pkg/domain"
	dErrors "vowline/pkg/domain-errors"
)

// Claims is the verified content of a session token.
type Claims struct {
	UserID    domain.UserID
	SessionID domain.SessionID
}

type jwtClaims struct {
	SessionID string `json:"sid"`
	jwt.RegisteredClaims
}

// Service issues HMAC-signed JWTs that reference a server-side session. The
// signature gates parsing; authority stays with the session record so logout
// revokes immediately.
type Service struct {
	signingKey []byte
	issuer     string
	ttl        time.Duration
}

func NewService(signingKey []byte, issuer string, ttl time.Duration) (*Service, error) {
	if len(signingKey) < 32 {
		return nil, fmt.Errorf("jwt signing key must be at least 32 bytes")
	}
	return &Service{signingKey: signingKey, issuer: issuer, ttl: ttl}, nil
}

// Issue signs a token for the session, valid until the session expiry or the
// token TTL, whichever is sooner.
func (s *Service) Issue(userID domain.UserID, sessionID domain.SessionID, now time.Time, sessionExpiry time.Time) (string, error) {
	expiry := now.Add(s.ttl)
	if sessionExpiry.Before(expiry) {
		expiry = sessionExpiry
	}
	claims := jwtClaims{
		SessionID: sessionID.String(),
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    s.issuer,
			Subject:   userID.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiry),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.signingKey)
	if err != nil {
		return "", fmt.Errorf("sign session token: %w", err)
	}
	return signed, nil
}

// Parse verifies the signature, issuer, and expiry, and returns the embedded
// identifiers.
func (s *Service) Parse(raw string) (Claims, error) {
	var claims jwtClaims
	_, err := jwt.ParseWithClaims(raw, &claims,
		func(t *jwt.Token) (any, error) { return s.signingKey, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(s.issuer),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return Claims{}, dErrors.Wrap(err, dErrors.CodeUnauthorized, "invalid session token")
	}

	userID, err := domain.ParseUserID(claims.Subject)
	if err != nil {
		return Claims{}, dErrors.New(dErrors.CodeUnauthorized, "invalid session token")
	}
	sessionID, err := domain.ParseSessionID(claims.SessionID)
	if err != nil {
		return Claims{}, dErrors.New(dErrors.CodeUnauthorized, "invalid session token")
	}
	return Claims{UserID: userID, SessionID: sessionID}, nil
}
