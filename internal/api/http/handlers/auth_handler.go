package handlers

import (
	"net/http"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/ideas-service/internal/api/dto"
	"github.com/spec-kit/ideas-service/internal/service"
	apperrors "github.com/spec-kit/ideas-service/pkg/util/errorutil"
)

// RefreshCookieName is the cookie holding the refresh token.
const RefreshCookieName = "refreshToken"

// AuthHandler exposes register, login, logout and refresh.
type AuthHandler struct {
	auth       *service.AuthService
	production bool
}

// NewAuthHandler constructs handler. production turns on Secure, SameSite=None cookies.
func NewAuthHandler(authService *service.AuthService, production bool) *AuthHandler {
	return &AuthHandler{auth: authService, production: production}
}

// Register handles POST /api/auth/register.
func (h *AuthHandler) Register(c *fiber.Ctx) error {
	var req dto.RegisterRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	req.Normalize()
	if err := req.Validate(); err != nil {
		return err
	}

	session, err := h.auth.Register(c.UserContext(), service.RegisterInput{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		return err
	}

	h.setRefreshCookie(c, session.RefreshToken)
	return c.Status(http.StatusCreated).JSON(dto.NewAuthResponse("user registered successfully", session))
}

// Login handles POST /api/auth/login.
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req dto.LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	req.Normalize()
	if err := req.Validate(); err != nil {
		return err
	}

	session, err := h.auth.Login(c.UserContext(), req.Email, req.Password)
	if err != nil {
		return err
	}

	h.setRefreshCookie(c, session.RefreshToken)
	return c.JSON(dto.NewAuthResponse("login successful", session))
}

// Logout handles POST /api/auth/logout. Sessions are stateless so this only clears the cookie.
func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	cookie := h.refreshCookie("")
	cookie.MaxAge = 0
	cookie.Expires = time.Unix(0, 0)
	c.Cookie(cookie)
	return c.JSON(dto.MessageResponse{Message: "logged out successfully"})
}

// Refresh handles POST /api/auth/refresh. The refresh token is read from its cookie only.
func (h *AuthHandler) Refresh(c *fiber.Ctx) error {
	session, err := h.auth.Refresh(c.UserContext(), c.Cookies(RefreshCookieName))
	if err != nil {
		return err
	}
	return c.JSON(dto.NewAuthResponse("new access token generated", session))
}

func (h *AuthHandler) setRefreshCookie(c *fiber.Ctx, token string) {
	c.Cookie(h.refreshCookie(token))
}

func (h *AuthHandler) refreshCookie(value string) *fiber.Cookie {
	sameSite := fiber.CookieSameSiteLaxMode
	if h.production {
		sameSite = fiber.CookieSameSiteNoneMode
	}
	return &fiber.Cookie{
		Name:     RefreshCookieName,
		Value:    value,
		Path:     "/",
		MaxAge:   int(h.auth.RefreshTTL().Seconds()),
		HTTPOnly: true,
		Secure:   h.production,
		SameSite: sameSite,
	}
}
