package dto

import (
	"strings"

	validation "github.com/jellydator/validation"

	"github.com/spec-kit/ideas-service/internal/domain"
)

// RegisterRequest payload for new users.
type RegisterRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Normalize trims the text fields and lowercases the email.
func (r *RegisterRequest) Normalize() {
	r.Name = strings.TrimSpace(r.Name)
	r.Email = strings.ToLower(strings.TrimSpace(r.Email))
}

// Validate checks required fields.
func (r *RegisterRequest) Validate() error {
	err := validation.ValidateStruct(r,
		validation.Field(&r.Name, validation.Required.Error("name is required"), notBlank),
		validation.Field(&r.Email, validation.Required.Error("email is required"), notBlank),
		validation.Field(&r.Password, validation.Required.Error("password is required"), notBlank),
	)
	return wrapValidationError(err)
}

// LoginRequest payload for login.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Normalize trims and lowercases the email.
func (r *LoginRequest) Normalize() {
	r.Email = strings.ToLower(strings.TrimSpace(r.Email))
}

// Validate checks required fields.
func (r *LoginRequest) Validate() error {
	err := validation.ValidateStruct(r,
		validation.Field(&r.Email, validation.Required.Error("email is required"), notBlank),
		validation.Field(&r.Password, validation.Required.Error("password is required"), notBlank),
	)
	return wrapValidationError(err)
}

// AuthResponse is returned by register, login and refresh. The refresh token only
// travels in its cookie.
type AuthResponse struct {
	Message     string             `json:"message,omitempty"`
	AccessToken string             `json:"accessToken"`
	User        domain.UserProfile `json:"user"`
}

// NewAuthResponse builds the body for a session.
func NewAuthResponse(message string, session *domain.Session) AuthResponse {
	return AuthResponse{Message: message, AccessToken: session.AccessToken, User: session.User}
}

// MessageResponse carries a plain confirmation.
type MessageResponse struct {
	Message string `json:"message"`
}
