package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/campuskit/access-service/internal/api/dto"
	"github.com/campuskit/access-service/internal/domain"
	"github.com/campuskit/access-service/internal/service"
	apperrors "github.com/campuskit/access-service/pkg/util"
)

// AdminUsersHandler exposes user management, guarded by MANAGE_USERS.
type AdminUsersHandler struct {
	users *service.UserService
	rc    RequestContext
}

// NewAdminUsersHandler constructs the handler.
func NewAdminUsersHandler(userService *service.UserService, rc RequestContext) *AdminUsersHandler {
	return &AdminUsersHandler{users: userService, rc: rc}
}

// Get handles GET /admin/users/:id.
func (h *AdminUsersHandler) Get(c *fiber.Ctx) error {
	user, err := h.users.Get(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": userView(user)})
}

// Update handles PUT /admin/users/:id.
func (h *AdminUsersHandler) Update(c *fiber.Ctx) error {
	req, ok := h.rc.Payload(c).(*dto.UpdateUserRequest)
	if !ok {
		return apperrors.NewInternalError(nil)
	}

	update := service.UserUpdate{
		Name:     req.Name,
		Verified: req.Verified,
	}
	if req.Role != nil {
		role := domain.Role(*req.Role)
		update.Role = &role
	}
	if req.Status != nil {
		status := domain.UserStatus(*req.Status)
		update.Status = &status
	}

	user, err := h.users.Update(c.UserContext(), c.Params("id"), update)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": userView(user)})
}

// Delete handles DELETE /admin/users/:id. Deleting your own account is
// rejected even with MANAGE_USERS held.
func (h *AdminUsersHandler) Delete(c *fiber.Ctx) error {
	principal, ok := h.rc.Principal(c)
	if !ok {
		return apperrors.NewAuthenticationRequired()
	}

	if err := h.users.Delete(c.UserContext(), principal, c.Params("id")); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": fiber.Map{"message": "user deleted"}})
}
