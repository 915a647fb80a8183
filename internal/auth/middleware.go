package auth

import (
	"errors"
	"fmt"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/spec-kit/ideas-service/internal/domain"
	"github.com/spec-kit/ideas-service/internal/observability"
	"github.com/spec-kit/ideas-service/internal/repository"
	apperrors "github.com/spec-kit/ideas-service/pkg/util/errorutil"
)

const userKey = "auth_user"

// Client-facing messages. Token failure subtypes are only visible in logs and metrics.
const (
	MsgNoToken      = "not authorized, no token"
	MsgTokenFailed  = "not authorized, token failed"
	MsgUserNotFound = "user not found"
)

// AuthMiddleware validates bearer access tokens and loads the caller's profile.
type AuthMiddleware struct {
	tokens  *TokenManager
	users   repository.UserRepository
	logger  *zap.Logger
	metrics *observability.Metrics
}

// NewAuthMiddleware constructs middleware.
func NewAuthMiddleware(tokens *TokenManager, users repository.UserRepository, logger *zap.Logger, metrics *observability.Metrics) *AuthMiddleware {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AuthMiddleware{tokens: tokens, users: users, logger: logger, metrics: metrics}
}

// Handle enforces authentication for protected routes.
func (m *AuthMiddleware) Handle(c *fiber.Ctx) error {
	tokenStr, ok := bearerToken(c.Get(fiber.HeaderAuthorization))
	if !ok {
		m.metrics.RecordAuthFailure("no_token")
		return apperrors.NewUnauthorized(MsgNoToken)
	}

	claims, err := m.tokens.ParseToken(tokenStr, domain.TokenTypeAccess)
	if err != nil {
		kind := TokenErrorKindOf(err)
		m.metrics.RecordAuthFailure(string(kind))
		m.logger.Info("access token rejected",
			zap.String("reason", string(kind)),
			zap.String("path", c.Path()),
			zap.Error(err))
		return apperrors.NewUnauthorizedCause(MsgTokenFailed, err)
	}

	profile, err := m.users.GetProfileByID(c.UserContext(), claims.UserID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			m.metrics.RecordAuthFailure("user_not_found")
			m.logger.Info("access token subject no longer exists", zap.String("user_id", claims.UserID))
			return apperrors.NewUnauthorized(MsgUserNotFound)
		}
		return apperrors.NewInternalError(fmt.Errorf("load user %s: %w", claims.UserID, err))
	}

	c.Locals(userKey, profile)
	return c.Next()
}

// UserFromContext retrieves the authenticated user's profile.
func UserFromContext(c *fiber.Ctx) (*domain.UserProfile, bool) {
	val := c.Locals(userKey)
	if val == nil {
		return nil, false
	}
	profile, ok := val.(*domain.UserProfile)
	return profile, ok && profile != nil
}

func bearerToken(header string) (string, bool) {
	if header == "" {
		return "", false
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return "", false
	}
	token := strings.TrimSpace(parts[1])
	if token == "" {
		return "", false
	}
	return token, true
}
