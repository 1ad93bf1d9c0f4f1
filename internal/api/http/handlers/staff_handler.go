package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/sla-engine/internal/api/dto"
	"github.com/spec-kit/sla-engine/internal/auth"
	"github.com/spec-kit/sla-engine/internal/service"
	apperrors "github.com/spec-kit/sla-engine/pkg/util"
)

// StaffHandler exposes staff authentication endpoints.
type StaffHandler struct {
	authService *service.AuthService
}

// NewStaffHandler constructs handler.
func NewStaffHandler(authService *service.AuthService) *StaffHandler {
	return &StaffHandler{authService: authService}
}

// Login handles POST /auth/staff/login.
func (h *StaffHandler) Login(c *fiber.Ctx) error {
	var req dto.StaffLoginRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if req.Email == "" || req.Password == "" {
		return apperrors.NewValidationError("email and password required", nil)
	}

	staff, token, exp, err := h.authService.LoginStaff(c.Context(), req.Email, req.Password)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{
		"data": fiber.Map{
			"staff": fiber.Map{
				"id":    staff.ID,
				"name":  staff.Name,
				"email": staff.Email,
				"role":  staff.Role,
			},
			"token":      token,
			"expires_at": exp,
		},
	})
}

// ChangePassword handles POST /auth/password/change.
func (h *StaffHandler) ChangePassword(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.Staff == nil {
		return apperrors.NewUnauthorized("staff required")
	}
	var req dto.PasswordChangeRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if req.CurrentPassword == "" || req.NewPassword == "" {
		return apperrors.NewValidationError("current and new password required", nil)
	}

	if err := h.authService.ChangePassword(c.Context(), principal.Staff.ID, req.CurrentPassword, req.NewPassword); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": fiber.Map{"status": "password_changed"}})
}
