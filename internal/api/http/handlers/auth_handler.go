package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/campuskit/access-service/internal/api/dto"
	"github.com/campuskit/access-service/internal/domain"
	"github.com/campuskit/access-service/internal/service"
	apperrors "github.com/campuskit/access-service/pkg/util"
)

// RequestContext exposes the pipeline-attached request context to
// handlers without coupling them to the adapter's storage keys.
type RequestContext struct {
	Payload   func(c *fiber.Ctx) any
	Principal func(c *fiber.Ctx) (*domain.Principal, bool)
}

// AuthHandler exposes registration, login and credential endpoints.
type AuthHandler struct {
	auth *service.AuthService
	rc   RequestContext
}

// NewAuthHandler constructs the handler.
func NewAuthHandler(authService *service.AuthService, rc RequestContext) *AuthHandler {
	return &AuthHandler{auth: authService, rc: rc}
}

// Register handles POST /auth/register.
func (h *AuthHandler) Register(c *fiber.Ctx) error {
	req, ok := h.rc.Payload(c).(*dto.RegisterRequest)
	if !ok {
		return apperrors.NewInternalError(nil)
	}

	user, pair, err := h.auth.Register(c.UserContext(), req.Name, req.Email, req.Password, domain.Role(req.Role))
	if err != nil {
		return err
	}

	return c.Status(http.StatusCreated).JSON(fiber.Map{
		"data": fiber.Map{
			"user": userView(user),
			"auth": authView(pair),
		},
	})
}

// Login handles POST /auth/login.
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	req, ok := h.rc.Payload(c).(*dto.LoginRequest)
	if !ok {
		return apperrors.NewInternalError(nil)
	}

	user, pair, err := h.auth.Login(c.UserContext(), req.Email, req.Password)
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"data": fiber.Map{
			"user": userView(user),
			"auth": authView(pair),
		},
	})
}

// AdminLogin handles POST /auth/admin/login.
func (h *AuthHandler) AdminLogin(c *fiber.Ctx) error {
	req, ok := h.rc.Payload(c).(*dto.LoginRequest)
	if !ok {
		return apperrors.NewInternalError(nil)
	}

	user, pair, err := h.auth.AdminLogin(c.UserContext(), req.Email, req.Password)
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"data": fiber.Map{
			"user": userView(user),
			"auth": authView(pair),
		},
	})
}

// Refresh handles POST /auth/refresh.
func (h *AuthHandler) Refresh(c *fiber.Ctx) error {
	req, ok := h.rc.Payload(c).(*dto.RefreshRequest)
	if !ok {
		return apperrors.NewInternalError(nil)
	}

	token, exp, err := h.auth.Refresh(c.UserContext(), req.RefreshToken)
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"data": fiber.Map{"auth": dto.AuthResponse{Token: token, ExpiresAt: exp}},
	})
}

// ChangePassword handles POST /auth/password/change (authenticated).
func (h *AuthHandler) ChangePassword(c *fiber.Ctx) error {
	principal, ok := h.rc.Principal(c)
	if !ok {
		return apperrors.NewAuthenticationRequired()
	}
	req, ok := h.rc.Payload(c).(*dto.ChangePasswordRequest)
	if !ok {
		return apperrors.NewInternalError(nil)
	}

	if err := h.auth.ChangePassword(c.UserContext(), principal.ID, req.CurrentPassword, req.NewPassword); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": fiber.Map{"message": "password changed"}})
}

// RequestPasswordReset handles POST /auth/password/reset/request.
func (h *AuthHandler) RequestPasswordReset(c *fiber.Ctx) error {
	req, ok := h.rc.Payload(c).(*dto.PasswordResetRequest)
	if !ok {
		return apperrors.NewInternalError(nil)
	}

	token, err := h.auth.RequestPasswordReset(c.UserContext(), req.Email)
	if err != nil {
		return err
	}

	// The token is returned directly; mail delivery is owned elsewhere.
	return c.JSON(fiber.Map{
		"data": fiber.Map{"token": token.Token, "expires_at": token.ExpiresAt},
	})
}

// ConfirmPasswordReset handles POST /auth/password/reset/confirm.
func (h *AuthHandler) ConfirmPasswordReset(c *fiber.Ctx) error {
	req, ok := h.rc.Payload(c).(*dto.PasswordResetConfirm)
	if !ok {
		return apperrors.NewInternalError(nil)
	}

	if err := h.auth.ConfirmPasswordReset(c.UserContext(), req.Token, req.NewPassword); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": fiber.Map{"message": "password reset"}})
}

func userView(user *domain.User) dto.UserResponse {
	return dto.UserResponse{
		ID:        user.ID,
		Name:      user.Name,
		Email:     user.Email,
		Role:      string(user.Role),
		Verified:  user.Verified,
		Status:    string(user.Status),
		CreatedAt: user.CreatedAt,
		UpdatedAt: user.UpdatedAt,
	}
}

func authView(pair *service.TokenPair) dto.AuthResponse {
	return dto.AuthResponse{
		Token:            pair.SessionToken,
		ExpiresAt:        pair.SessionExpiresAt,
		RefreshToken:     pair.RefreshToken,
		RefreshExpiresAt: pair.RefreshExpiresAt,
	}
}
