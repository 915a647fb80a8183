package auth

import (
	"errors"
	"fmt"
	"time"

	jwt "github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/spec-kit/ideas-service/internal/domain"
)

// TokenErrorKind classifies why a token was rejected.
type TokenErrorKind string

const (
	TokenMalformed    TokenErrorKind = "malformed"
	TokenBadSignature TokenErrorKind = "bad_signature"
	TokenExpired      TokenErrorKind = "expired"
	TokenWrongType    TokenErrorKind = "wrong_type"
)

// TokenError is returned by ParseToken. Kind is for logs and metrics only;
// clients always see the same unauthorized response.
type TokenError struct {
	Kind TokenErrorKind
	Err  error
}

func (e *TokenError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("token %s: %v", e.Kind, e.Err)
	}
	return "token " + string(e.Kind)
}

func (e *TokenError) Unwrap() error {
	return e.Err
}

// TokenErrorKindOf extracts the kind from err, or "" when err is not a TokenError.
func TokenErrorKindOf(err error) TokenErrorKind {
	var tokenErr *TokenError
	if errors.As(err, &tokenErr) {
		return tokenErr.Kind
	}
	return ""
}

// Claims describes JWT payload.
type Claims struct {
	UserID    string           `json:"id"`
	TokenType domain.TokenType `json:"token_type"`
	jwt.RegisteredClaims
}

// TokenManager handles issuing and validating JWT tokens.
type TokenManager struct {
	secret Secret
	now    func() time.Time
}

// TokenOption customizes a TokenManager.
type TokenOption func(*TokenManager)

// WithClock replaces time.Now, mostly for tests around expiry.
func WithClock(now func() time.Time) TokenOption {
	return func(tm *TokenManager) {
		tm.now = now
	}
}

// NewTokenManager builds a new manager around an already validated secret.
func NewTokenManager(secret Secret, opts ...TokenOption) *TokenManager {
	tm := &TokenManager{secret: secret, now: time.Now}
	for _, opt := range opts {
		opt(tm)
	}
	return tm
}

// GenerateToken builds and signs an HS256 JWT for the subject valid for ttl.
func (tm *TokenManager) GenerateToken(subjectID string, tokenType domain.TokenType, ttl time.Duration) (string, time.Time, error) {
	if subjectID == "" {
		return "", time.Time{}, errors.New("auth: empty token subject")
	}
	if ttl <= 0 {
		return "", time.Time{}, fmt.Errorf("auth: non-positive token ttl %s", ttl)
	}

	issuedAt := tm.now()
	expiresAt := issuedAt.Add(ttl)
	claims := &Claims{
		UserID:    subjectID,
		TokenType: tokenType,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   subjectID,
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(issuedAt),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString(tm.secret.bytes())
	if err != nil {
		return "", time.Time{}, err
	}
	return tokenString, claims.ExpiresAt.Time, nil
}

// ParseToken validates signature, expiry and token type, and returns the claims.
// Failures are always *TokenError.
func (tm *TokenManager) ParseToken(tokenStr string, want domain.TokenType) (*Claims, error) {
	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(tm.now),
	)

	claims := &Claims{}
	parsed, err := parser.ParseWithClaims(tokenStr, claims, func(token *jwt.Token) (interface{}, error) {
		if token.Method != jwt.SigningMethodHS256 {
			return nil, errors.New("unexpected signing method")
		}
		return tm.secret.bytes(), nil
	})
	if err != nil {
		return nil, classify(err)
	}
	if !parsed.Valid || claims.UserID == "" {
		return nil, &TokenError{Kind: TokenMalformed, Err: errors.New("missing subject")}
	}
	if claims.TokenType != want {
		return nil, &TokenError{
			Kind: TokenWrongType,
			Err:  fmt.Errorf("got %q, want %q", claims.TokenType, want),
		}
	}
	return claims, nil
}

func classify(err error) *TokenError {
	switch {
	case errors.Is(err, jwt.ErrTokenMalformed):
		return &TokenError{Kind: TokenMalformed, Err: err}
	case errors.Is(err, jwt.ErrTokenSignatureInvalid), errors.Is(err, jwt.ErrTokenUnverifiable):
		return &TokenError{Kind: TokenBadSignature, Err: err}
	case errors.Is(err, jwt.ErrTokenExpired):
		return &TokenError{Kind: TokenExpired, Err: err}
	default:
		return &TokenError{Kind: TokenMalformed, Err: err}
	}
}
