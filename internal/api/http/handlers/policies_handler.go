package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/sla-engine/internal/api/dto"
	"github.com/spec-kit/sla-engine/internal/service"
	apperrors "github.com/spec-kit/sla-engine/pkg/util"
)

// PoliciesHandler manages SLA policy administration.
type PoliciesHandler struct {
	service *service.PolicyService
}

// NewPoliciesHandler constructs handler.
func NewPoliciesHandler(policyService *service.PolicyService) *PoliciesHandler {
	return &PoliciesHandler{service: policyService}
}

// Create handles POST /admin/policies.
func (h *PoliciesHandler) Create(c *fiber.Ctx) error {
	var req dto.PolicyRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	created, err := h.service.Create(c.Context(), req.ToDomain())
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": dto.NewPolicyResponse(created)})
}

// List handles GET /admin/policies.
func (h *PoliciesHandler) List(c *fiber.Ctx) error {
	policies, err := h.service.List(c.Context())
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewPolicyListResponse(policies)})
}

// Get handles GET /admin/policies/:id.
func (h *PoliciesHandler) Get(c *fiber.Ctx) error {
	policy, err := h.service.Get(c.Context(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewPolicyResponse(policy)})
}

// Update handles PUT /admin/policies/:id.
func (h *PoliciesHandler) Update(c *fiber.Ctx) error {
	var req dto.PolicyRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	policy := req.ToDomain()
	policy.ID = c.Params("id")
	updated, err := h.service.Update(c.Context(), policy)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewPolicyResponse(updated)})
}

// Delete handles DELETE /admin/policies/:id.
func (h *PoliciesHandler) Delete(c *fiber.Ctx) error {
	if err := h.service.Delete(c.Context(), c.Params("id")); err != nil {
		return err
	}
	return c.SendStatus(http.StatusNoContent)
}
