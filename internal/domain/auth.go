package domain

import "time"

// TokenType separates short-lived access tokens from long-lived refresh tokens.
type TokenType string

const (
	TokenTypeAccess  TokenType = "access"
	TokenTypeRefresh TokenType = "refresh"
)

// Session is the result of a successful register, login or refresh.
// RefreshToken is empty after a refresh because refresh tokens are not reissued.
type Session struct {
	User             UserProfile
	AccessToken      string
	AccessExpiresAt  time.Time
	RefreshToken     string
	RefreshExpiresAt time.Time
}
