// Package service implements login, session resolution, and password reset.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/mssola/useragent"

	"vowline/internal/access"
	"vowline/internal/identity/metrics"
	"vowline/internal/identity/models"
	"vowline/internal/identity/token"
	"vowline/pkg/domain"
	dErrors "vowline/pkg/domain-errors"
	"vowline/pkg/platform/sentinel"
	"vowline/pkg/requestcontext"
	"vowline/pkg/secrets"
)

// UserStore persists accounts.
type UserStore interface {
	Create(ctx context.Context, user *models.User) error
	Update(ctx context.Context, user *models.User) error
	FindByID(ctx context.Context, id domain.UserID) (*models.User, error)
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	FindByResetTokenHash(ctx context.Context, tokenHash string) (*models.User, error)
}

// SessionStore persists login sessions.
type SessionStore interface {
	Save(ctx context.Context, session *models.Session) error
	Find(ctx context.Context, id domain.SessionID) (*models.Session, error)
	Delete(ctx context.Context, id domain.SessionID) error
}

// GrantLister exposes the tenants a client profile has shared data with.
type GrantLister interface {
	GrantedTenantIDs(ctx context.Context, profileID domain.ClientProfileID) ([]domain.TenantID, error)
}

// TenantDirectory answers whether a tenant is currently suspended.
type TenantDirectory interface {
	TenantSuspended(ctx context.Context, id domain.TenantID) (bool, error)
}

// ProfileDirectory resolves the owning tenant of a client profile, used when
// provisioning CLIENT accounts.
type ProfileDirectory interface {
	ProfileOwner(ctx context.Context, id domain.ClientProfileID) (domain.TenantID, error)
}

// Mailer delivers transactional mail. Failures are logged, never surfaced.
type Mailer interface {
	Send(ctx context.Context, to, subject, body string) error
}

// Config carries the lockout and token lifetimes.
type Config struct {
	SessionTTL       time.Duration
	ResetTokenTTL    time.Duration
	MaxLoginFailures int
	LockoutDuration  time.Duration
}

type Service struct {
	users    UserStore
	sessions SessionStore
	tokens   *token.Service
	grants   GrantLister
	tenants  TenantDirectory
	profiles ProfileDirectory
	mailer   Mailer
	cfg      Config
	logger   *slog.Logger
	metrics  *metrics.Metrics
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) { s.logger = logger }
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

func WithMailer(m Mailer) Option {
	return func(s *Service) { s.mailer = m }
}

func WithProfileDirectory(d ProfileDirectory) Option {
	return func(s *Service) { s.profiles = d }
}

func New(users UserStore, sessions SessionStore, tokens *token.Service, grants GrantLister, tenants TenantDirectory, cfg Config, opts ...Option) *Service {
	s := &Service{
		users:    users,
		sessions: sessions,
		tokens:   tokens,
		grants:   grants,
		tenants:  tenants,
		cfg:      cfg,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// LoginResult is what a successful login hands back to the transport layer.
type LoginResult struct {
	User    *models.User
	Session *models.Session
	Token   string
}

// Login verifies credentials, enforces the failed-attempt lockout, and issues
// a session with a signed bearer token.
func (s *Service) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	now := requestcontext.Now(ctx)

	user, err := s.users.FindByEmail(ctx, strings.TrimSpace(email))
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			s.metrics.IncLoginFailures()
			return nil, dErrors.New(dErrors.CodeUnauthorized, "invalid credentials")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load user")
	}

	if user.Status != models.UserStatusActive {
		s.metrics.IncLoginFailures()
		return nil, dErrors.New(dErrors.CodeForbidden, "account is inactive")
	}
	if user.IsLockedOut(now) {
		s.metrics.IncLoginFailures()
		return nil, dErrors.New(dErrors.CodeForbidden, "account temporarily locked after repeated failures")
	}

	if err := secrets.VerifyPassword(password, user.PasswordHash); err != nil {
		wasLocked := user.LockedUntil != nil
		user.RecordLoginFailure(s.cfg.MaxLoginFailures, s.cfg.LockoutDuration, now)
		if updateErr := s.users.Update(ctx, user); updateErr != nil {
			s.logger.ErrorContext(ctx, "failed to record login failure",
				"error", updateErr,
				"user_id", user.ID,
				"request_id", requestcontext.RequestID(ctx),
			)
		}
		s.metrics.IncLoginFailures()
		if !wasLocked && user.LockedUntil != nil {
			s.metrics.IncLockouts()
			s.logger.WarnContext(ctx, "account locked after repeated login failures",
				"user_id", user.ID,
				"request_id", requestcontext.RequestID(ctx),
			)
		}
		return nil, dErrors.New(dErrors.CodeUnauthorized, "invalid credentials")
	}

	user.RecordLoginSuccess(now)
	if err := s.users.Update(ctx, user); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to update user")
	}

	session := &models.Session{
		ID:         domain.SessionID(uuid.New()),
		UserID:     user.ID,
		DeviceName: deviceName(requestcontext.UserAgent(ctx)),
		IP:         requestcontext.ClientIP(ctx),
		UserAgent:  requestcontext.UserAgent(ctx),
		CreatedAt:  now,
		ExpiresAt:  now.Add(s.cfg.SessionTTL),
	}
	if err := s.sessions.Save(ctx, session); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to create session")
	}

	signed, err := s.tokens.Issue(user.ID, session.ID, now, session.ExpiresAt)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to issue token")
	}

	s.logger.InfoContext(ctx, "user logged in",
		"user_id", user.ID,
		"session_id", session.ID,
		"device", session.DeviceName,
		"request_id", requestcontext.RequestID(ctx),
	)
	s.metrics.IncLogins()
	return &LoginResult{User: user, Session: session, Token: signed}, nil
}

// Logout revokes the session referenced by the token. Idempotent: an already
// missing session is a success.
func (s *Service) Logout(ctx context.Context, rawToken string) error {
	claims, err := s.tokens.Parse(rawToken)
	if err != nil {
		return err
	}
	if err := s.sessions.Delete(ctx, claims.SessionID); err != nil && !errors.Is(err, sentinel.ErrNotFound) {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to revoke session")
	}
	s.logger.InfoContext(ctx, "user logged out",
		"user_id", claims.UserID,
		"session_id", claims.SessionID,
		"request_id", requestcontext.RequestID(ctx),
	)
	return nil
}

// Resolve turns a bearer token into a Principal. It verifies the signature,
// confirms the session still exists, and loads account state fresh so that
// deactivation, suspension, and revocation take effect on the next request.
func (s *Service) Resolve(ctx context.Context, rawToken string) (access.Principal, error) {
	claims, err := s.tokens.Parse(rawToken)
	if err != nil {
		return access.Principal{}, err
	}

	session, err := s.sessions.Find(ctx, claims.SessionID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) || errors.Is(err, sentinel.ErrExpired) {
			return access.Principal{}, dErrors.New(dErrors.CodeUnauthorized, "session expired or revoked")
		}
		return access.Principal{}, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load session")
	}
	if session.UserID != claims.UserID {
		return access.Principal{}, dErrors.New(dErrors.CodeUnauthorized, "invalid session token")
	}

	user, err := s.users.FindByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return access.Principal{}, dErrors.New(dErrors.CodeUnauthorized, "unknown account")
		}
		return access.Principal{}, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load user")
	}

	p := access.Principal{
		UserID:          user.ID,
		Email:           user.Email,
		Role:            user.Role,
		TenantID:        user.TenantID,
		ClientProfileID: user.ClientProfileID,
		Active:          user.Status == models.UserStatusActive,
	}

	if !user.TenantID.IsNil() {
		suspended, err := s.tenants.TenantSuspended(ctx, user.TenantID)
		if err != nil {
			return access.Principal{}, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load tenant state")
		}
		p.TenantSuspended = suspended
	}

	if user.Role == access.RoleClient && !user.ClientProfileID.IsNil() {
		grants, err := s.grants.GrantedTenantIDs(ctx, user.ClientProfileID)
		if err != nil {
			return access.Principal{}, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load access grants")
		}
		p.Grants = grants
	}

	return p, nil
}

// ForgotPassword issues an opaque single-use reset token and mails it. The
// response is identical whether or not the address exists.
func (s *Service) ForgotPassword(ctx context.Context, email string) error {
	now := requestcontext.Now(ctx)

	user, err := s.users.FindByEmail(ctx, strings.TrimSpace(email))
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			s.logger.InfoContext(ctx, "password reset requested for unknown email",
				"request_id", requestcontext.RequestID(ctx),
			)
			return nil
		}
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to load user")
	}

	raw, err := secrets.GenerateToken()
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to generate reset token")
	}
	user.SetResetToken(secrets.HashToken(raw), now.Add(s.cfg.ResetTokenTTL), now)
	if err := s.users.Update(ctx, user); err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to store reset token")
	}

	if s.mailer != nil {
		body := fmt.Sprintf("Use this token to reset your password within %s: %s",
			s.cfg.ResetTokenTTL, raw)
		if err := s.mailer.Send(ctx, user.Email, "Password reset", body); err != nil {
			s.logger.ErrorContext(ctx, "failed to send reset email",
				"error", err,
				"user_id", user.ID,
				"request_id", requestcontext.RequestID(ctx),
			)
		}
	}

	s.logger.InfoContext(ctx, "password reset token issued",
		"user_id", user.ID,
		"request_id", requestcontext.RequestID(ctx),
	)
	return nil
}

// ResetPassword redeems a reset token. Expired and unknown tokens are
// indistinguishable to the caller. Success replaces the password and clears
// lockout state and the token fields in one update.
func (s *Service) ResetPassword(ctx context.Context, rawToken, newPassword string) error {
	now := requestcontext.Now(ctx)

	if len(newPassword) < 8 {
		return dErrors.New(dErrors.CodeInvalidInput, "password must be at least 8 characters")
	}

	user, err := s.users.FindByResetTokenHash(ctx, secrets.HashToken(rawToken))
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return dErrors.New(dErrors.CodeUnauthorized, "invalid or expired reset token")
		}
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to load user")
	}
	if !user.ResetTokenValid(secrets.HashToken(rawToken), now) {
		return dErrors.New(dErrors.CodeUnauthorized, "invalid or expired reset token")
	}

	hash, err := secrets.HashPassword(newPassword)
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to hash password")
	}
	user.CompleteReset(hash, now)
	if err := s.users.Update(ctx, user); err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to update password")
	}

	s.logger.InfoContext(ctx, "password reset completed",
		"user_id", user.ID,
		"request_id", requestcontext.RequestID(ctx),
	)
	s.metrics.IncPasswordResets()
	return nil
}

func deviceName(rawUA string) string {
	if rawUA == "" {
		return "unknown device"
	}
	ua := useragent.New(rawUA)
	browser, _ := ua.Browser()
	os := ua.OSInfo().Name
	switch {
	case browser != "" && os != "":
		return browser + " on " + os
	case browser != "":
		return browser
	case os != "":
		return os
	}
	return "unknown device"
}
