package handlers

import (
	"net/http"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/sla-engine/internal/api/dto"
	"github.com/spec-kit/sla-engine/internal/service"
	apperrors "github.com/spec-kit/sla-engine/pkg/util"
)

// TicketsHandler receives ticket lifecycle updates from the upstream
// ticketing system and feeds them into the SLA pipeline.
type TicketsHandler struct {
	sla *service.SlaService
}

// NewTicketsHandler constructs handler.
func NewTicketsHandler(slaService *service.SlaService) *TicketsHandler {
	return &TicketsHandler{sla: slaService}
}

// Register handles POST /tickets.
func (h *TicketsHandler) Register(c *fiber.Ctx) error {
	var req dto.RegisterTicketRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	ticket, err := h.sla.RegisterTicket(c.Context(), req.ToDomain())
	if err != nil {
		return mapEngineError(err)
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": dto.NewTicketResponse(ticket)})
}

// ChangeStatus handles POST /tickets/:id/status.
func (h *TicketsHandler) ChangeStatus(c *fiber.Ctx) error {
	var req dto.StatusChangeRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if req.Status == "" {
		return apperrors.NewValidationError("status required", nil)
	}
	var changedAt time.Time
	if req.ChangedAt != nil {
		changedAt = *req.ChangedAt
	}
	ticket, err := h.sla.RecordStatusChange(c.Context(), c.Params("id"), req.Status, changedAt)
	if err != nil {
		return mapEngineError(err)
	}
	return c.JSON(fiber.Map{"data": dto.NewTicketResponse(ticket)})
}

// RecordFirstResponse handles POST /tickets/:id/first-response.
func (h *TicketsHandler) RecordFirstResponse(c *fiber.Ctx) error {
	var req dto.FirstResponseRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&req); err != nil {
			return apperrors.NewValidationError("invalid payload", nil)
		}
	}
	var at time.Time
	if req.At != nil {
		at = *req.At
	}
	ticket, err := h.sla.RecordFirstResponse(c.Context(), c.Params("id"), at)
	if err != nil {
		return mapEngineError(err)
	}
	return c.JSON(fiber.Map{"data": dto.NewTicketResponse(ticket)})
}
