package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"go.uber.org/zap"

	"github.com/spec-kit/ideas-service/internal/auth"
	"github.com/spec-kit/ideas-service/internal/config"
	"github.com/spec-kit/ideas-service/internal/domain"
	"github.com/spec-kit/ideas-service/internal/events"
	"github.com/spec-kit/ideas-service/internal/observability"
	"github.com/spec-kit/ideas-service/internal/repository"
	apperrors "github.com/spec-kit/ideas-service/pkg/util/errorutil"
)

// Client-facing messages for refresh failures. Every cause gets the same one.
const (
	MsgNoRefreshToken      = "no refresh token provided"
	MsgInvalidRefreshToken = "invalid refresh token"
)

const pgUniqueViolation = "23505"

// RegisterInput describes a new account.
type RegisterInput struct {
	Name     string
	Email    string
	Password string
}

// AuthService coordinates registration, login and access-token refresh.
type AuthService struct {
	users      repository.UserRepository
	tokens     *auth.TokenManager
	throttle   *auth.LoginThrottle
	dispatcher events.Dispatcher
	logger     *zap.Logger
	metrics    *observability.Metrics
	bcryptCost int
	accessTTL  time.Duration
	refreshTTL time.Duration
}

// AuthDependencies encapsulates collaborators for the auth service.
// Throttle, Dispatcher and Metrics are optional.
type AuthDependencies struct {
	UserRepo   repository.UserRepository
	Tokens     *auth.TokenManager
	Throttle   *auth.LoginThrottle
	Dispatcher events.Dispatcher
	Logger     *zap.Logger
	Metrics    *observability.Metrics
}

// NewAuthService builds the service.
func NewAuthService(cfg config.AuthConfig, deps AuthDependencies) *AuthService {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AuthService{
		users:      deps.UserRepo,
		tokens:     deps.Tokens,
		throttle:   deps.Throttle,
		dispatcher: deps.Dispatcher,
		logger:     logger,
		metrics:    deps.Metrics,
		bcryptCost: cfg.BcryptCost,
		accessTTL:  cfg.AccessTokenTTL,
		refreshTTL: cfg.RefreshTokenTTL,
	}
}

// RefreshTTL is the lifetime of issued refresh tokens, used for the cookie Max-Age.
func (s *AuthService) RefreshTTL() time.Duration {
	return s.refreshTTL
}

// Register creates an account and opens a session for it.
func (s *AuthService) Register(ctx context.Context, in RegisterInput) (*domain.Session, error) {
	if _, err := s.users.GetByEmail(ctx, in.Email); err == nil {
		return nil, apperrors.NewConflict("user already exists", nil)
	} else if !errors.Is(err, pgx.ErrNoRows) {
		return nil, apperrors.NewInternalError(fmt.Errorf("lookup user by email: %w", err))
	}

	hash, err := auth.HashPassword(in.Password, s.bcryptCost)
	if err != nil {
		return nil, apperrors.NewInternalError(fmt.Errorf("hash password: %w", err))
	}

	user := &domain.User{
		Name:         in.Name,
		Email:        in.Email,
		PasswordHash: hash,
	}
	if err := s.users.Create(ctx, user); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
			return nil, apperrors.NewConflict("user already exists", nil)
		}
		return nil, apperrors.NewInternalError(fmt.Errorf("create user: %w", err))
	}

	session, err := s.openSession(user.Profile())
	if err != nil {
		return nil, err
	}
	s.publish(ctx, events.New(events.EventUserRegistered, user.ID, nil))
	return session, nil
}

// Login verifies credentials and opens a session. Unknown email and wrong password
// produce the same error.
func (s *AuthService) Login(ctx context.Context, email, password string) (*domain.Session, error) {
	allowed, _, err := s.throttle.Attempt(ctx, email)
	if err != nil {
		s.logger.Warn("login throttle unavailable; allowing attempt", zap.Error(err))
	}
	if !allowed {
		s.metrics.RecordAuthFailure("throttled")
		return nil, apperrors.NewTooManyRequests("too many failed login attempts, try again later")
	}

	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			auth.CompareDummyPassword(password, s.bcryptCost)
			return nil, s.loginFailed(ctx, email, "unknown_email")
		}
		return nil, apperrors.NewInternalError(fmt.Errorf("lookup user by email: %w", err))
	}
	if err := auth.ComparePassword(user.PasswordHash, password); err != nil {
		return nil, s.loginFailed(ctx, email, "wrong_password")
	}

	if err := s.throttle.Reset(ctx, email); err != nil {
		s.logger.Warn("login throttle reset failed", zap.Error(err))
	}

	session, err := s.openSession(user.Profile())
	if err != nil {
		return nil, err
	}
	s.publish(ctx, events.New(events.EventUserLoggedIn, user.ID, nil))
	return session, nil
}

// Refresh validates a refresh token and issues a new access token for its subject.
// The refresh token itself is not reissued and stays valid until its own expiry.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (*domain.Session, error) {
	if refreshToken == "" {
		s.metrics.RecordAuthFailure("no_refresh_token")
		return nil, apperrors.NewUnauthorized(MsgNoRefreshToken)
	}

	claims, err := s.tokens.ParseToken(refreshToken, domain.TokenTypeRefresh)
	if err != nil {
		kind := auth.TokenErrorKindOf(err)
		s.metrics.RecordAuthFailure("refresh_" + string(kind))
		s.logger.Info("refresh token rejected", zap.String("reason", string(kind)), zap.Error(err))
		return nil, apperrors.NewUnauthorizedCause(MsgInvalidRefreshToken, err)
	}

	profile, err := s.users.GetProfileByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			s.metrics.RecordAuthFailure("refresh_user_not_found")
			s.logger.Info("refresh token subject no longer exists", zap.String("user_id", claims.UserID))
			return nil, apperrors.NewUnauthorized(MsgInvalidRefreshToken)
		}
		return nil, apperrors.NewInternalError(fmt.Errorf("load user %s: %w", claims.UserID, err))
	}

	accessToken, accessExp, err := s.tokens.GenerateToken(profile.ID, domain.TokenTypeAccess, s.accessTTL)
	if err != nil {
		return nil, apperrors.NewInternalError(fmt.Errorf("issue access token: %w", err))
	}

	s.publish(ctx, events.New(events.EventTokenRefreshed, profile.ID, nil))
	return &domain.Session{
		User:            *profile,
		AccessToken:     accessToken,
		AccessExpiresAt: accessExp,
	}, nil
}

func (s *AuthService) openSession(profile domain.UserProfile) (*domain.Session, error) {
	accessToken, accessExp, err := s.tokens.GenerateToken(profile.ID, domain.TokenTypeAccess, s.accessTTL)
	if err != nil {
		return nil, apperrors.NewInternalError(fmt.Errorf("issue access token: %w", err))
	}
	refreshToken, refreshExp, err := s.tokens.GenerateToken(profile.ID, domain.TokenTypeRefresh, s.refreshTTL)
	if err != nil {
		return nil, apperrors.NewInternalError(fmt.Errorf("issue refresh token: %w", err))
	}
	return &domain.Session{
		User:             profile,
		AccessToken:      accessToken,
		AccessExpiresAt:  accessExp,
		RefreshToken:     refreshToken,
		RefreshExpiresAt: refreshExp,
	}, nil
}

func (s *AuthService) loginFailed(ctx context.Context, email, reason string) error {
	s.metrics.RecordAuthFailure(reason)
	s.publish(ctx, events.New(events.EventLoginFailed, "", events.LoginFailedPayload{Email: email, Reason: reason}))
	return apperrors.NewInvalidCredentials()
}

func (s *AuthService) publish(ctx context.Context, event events.Event) {
	if s.dispatcher == nil {
		return
	}
	if err := s.dispatcher.Publish(ctx, event); err != nil {
		s.logger.Warn("event handler failed", zap.String("event_type", string(event.Type)), zap.Error(err))
	}
}
