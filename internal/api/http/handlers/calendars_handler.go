package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/sla-engine/internal/api/dto"
	"github.com/spec-kit/sla-engine/internal/service"
	apperrors "github.com/spec-kit/sla-engine/pkg/util"
)

// CalendarsHandler manages business calendar administration.
type CalendarsHandler struct {
	service *service.CalendarService
}

// NewCalendarsHandler constructs handler.
func NewCalendarsHandler(calendarService *service.CalendarService) *CalendarsHandler {
	return &CalendarsHandler{service: calendarService}
}

// Create handles POST /admin/calendars.
func (h *CalendarsHandler) Create(c *fiber.Ctx) error {
	var req dto.CalendarRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	cal, err := req.ToDomain()
	if err != nil {
		return err
	}
	created, err := h.service.Create(c.Context(), cal)
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": dto.NewCalendarResponse(created)})
}

// List handles GET /admin/calendars.
func (h *CalendarsHandler) List(c *fiber.Ctx) error {
	cals, err := h.service.List(c.Context())
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewCalendarListResponse(cals)})
}

// Get handles GET /admin/calendars/:id.
func (h *CalendarsHandler) Get(c *fiber.Ctx) error {
	cal, err := h.service.Get(c.Context(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewCalendarResponse(cal)})
}

// Update handles PUT /admin/calendars/:id.
func (h *CalendarsHandler) Update(c *fiber.Ctx) error {
	var req dto.CalendarRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	cal, err := req.ToDomain()
	if err != nil {
		return err
	}
	cal.ID = c.Params("id")
	updated, err := h.service.Update(c.Context(), cal)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewCalendarResponse(updated)})
}

// Delete handles DELETE /admin/calendars/:id.
func (h *CalendarsHandler) Delete(c *fiber.Ctx) error {
	if err := h.service.Delete(c.Context(), c.Params("id")); err != nil {
		return err
	}
	return c.SendStatus(http.StatusNoContent)
}

// SetDefault handles POST /admin/calendars/:id/default.
func (h *CalendarsHandler) SetDefault(c *fiber.Ctx) error {
	if err := h.service.SetDefault(c.Context(), c.Params("id")); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": fiber.Map{"status": "default_set"}})
}

// AddException handles POST /admin/calendars/:id/exceptions.
func (h *CalendarsHandler) AddException(c *fiber.Ctx) error {
	var req dto.CalendarExceptionRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if req.Date == "" {
		return apperrors.NewValidationError("date required", nil)
	}
	exc, err := h.service.AddException(c.Context(), req.ToDomain(c.Params("id")))
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": dto.CalendarExceptionResponse{
		ID:        exc.ID,
		Date:      exc.Date,
		Name:      exc.Name,
		IsHoliday: exc.IsHoliday,
		Open:      exc.Open,
		Close:     exc.Close,
	}})
}

// RemoveException handles DELETE /admin/calendars/:id/exceptions/:exceptionId.
func (h *CalendarsHandler) RemoveException(c *fiber.Ctx) error {
	if err := h.service.RemoveException(c.Context(), c.Params("id"), c.Params("exceptionId")); err != nil {
		return err
	}
	return c.SendStatus(http.StatusNoContent)
}
