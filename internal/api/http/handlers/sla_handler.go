package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/sla-engine/internal/api/dto"
	"github.com/spec-kit/sla-engine/internal/service"
	"github.com/spec-kit/sla-engine/internal/slaclock"
	apperrors "github.com/spec-kit/sla-engine/pkg/util"
)

// SlaHandler exposes SLA stats and batch recomputation.
type SlaHandler struct {
	sla       *service.SlaService
	recompute *service.RecomputeService
}

// NewSlaHandler constructs handler.
func NewSlaHandler(slaService *service.SlaService, recomputeService *service.RecomputeService) *SlaHandler {
	return &SlaHandler{sla: slaService, recompute: recomputeService}
}

// GetStats handles GET /tickets/:id/sla.
func (h *SlaHandler) GetStats(c *fiber.Ctx) error {
	stats, err := h.sla.GetStats(c.Context(), c.Params("id"))
	if err != nil {
		return mapEngineError(err)
	}
	return c.JSON(fiber.Map{"data": dto.NewSlaStatsResponse(stats)})
}

// GetInstance handles GET /tickets/:id/sla/instance.
func (h *SlaHandler) GetInstance(c *fiber.Ctx) error {
	instance, err := h.sla.GetInstance(c.Context(), c.Params("id"))
	if err != nil {
		return mapEngineError(err)
	}
	return c.JSON(fiber.Map{"data": dto.NewSlaInstanceResponse(instance)})
}

// Recompute handles POST /admin/sla/recompute.
func (h *SlaHandler) Recompute(c *fiber.Ctx) error {
	var req dto.RecomputeRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&req); err != nil {
			return apperrors.NewValidationError("invalid payload", nil)
		}
	}
	report, err := h.recompute.Run(c.Context(), req.ToFilter())
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewRecomputeResponse(report)})
}

// mapEngineError translates the engine's typed errors into API errors. A
// ticket without a matching policy has no stats, which is a 404 here, not a
// failure.
func mapEngineError(err error) error {
	var policyErr *slaclock.PolicyNotFoundError
	if errors.As(err, &policyErr) {
		return apperrors.NewNotFound("sla stats", map[string]any{"ticket_id": policyErr.TicketID})
	}
	var timelineErr *slaclock.InvalidTimelineError
	if errors.As(err, &timelineErr) {
		return apperrors.NewConflict(timelineErr.Error(), map[string]any{"ticket_id": timelineErr.TicketID})
	}
	var calendarErr *slaclock.InvalidCalendarError
	if errors.As(err, &calendarErr) {
		return apperrors.NewValidationError(calendarErr.Error(), nil)
	}
	return err
}
