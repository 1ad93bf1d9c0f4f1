package service

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/spec-kit/sla-engine/internal/domain"
	"github.com/spec-kit/sla-engine/internal/repository"
	"github.com/spec-kit/sla-engine/internal/slaclock"
	apperrors "github.com/spec-kit/sla-engine/pkg/util"
)

// CalendarService manages business calendars for administrators. Every
// calendar is validated before it can reach the engine; an invalid weekday
// window is rejected here, at save time.
type CalendarService struct {
	calendars repository.CalendarRepository
	logger    *zap.Logger
}

// NewCalendarService constructs the service.
func NewCalendarService(calendars repository.CalendarRepository, logger *zap.Logger) *CalendarService {
	return &CalendarService{calendars: calendars, logger: logger}
}

// Create validates and persists a new calendar.
func (s *CalendarService) Create(ctx context.Context, cal *domain.BusinessCalendar) (*domain.BusinessCalendar, error) {
	cal.Name = strings.TrimSpace(cal.Name)
	if cal.Name == "" {
		return nil, apperrors.NewValidationError("calendar name required", nil)
	}
	if cal.Timezone == "" {
		cal.Timezone = "UTC"
	}
	if err := slaclock.ValidateCalendar(cal); err != nil {
		return nil, apperrors.NewValidationError(err.Error(), nil)
	}
	if err := s.calendars.Create(ctx, cal); err != nil {
		return nil, err
	}
	if cal.IsDefault {
		if err := s.calendars.SetDefault(ctx, cal.ID); err != nil {
			return nil, err
		}
	}
	s.logger.Info("calendar created", zap.String("calendar_id", cal.ID), zap.String("name", cal.Name))
	return cal, nil
}

// Update validates and persists calendar changes.
func (s *CalendarService) Update(ctx context.Context, cal *domain.BusinessCalendar) (*domain.BusinessCalendar, error) {
	existing, err := s.calendars.GetByID(ctx, cal.ID)
	if err != nil {
		return nil, err
	}
	cal.Exceptions = existing.Exceptions
	if err := slaclock.ValidateCalendar(cal); err != nil {
		return nil, apperrors.NewValidationError(err.Error(), nil)
	}
	if err := s.calendars.Update(ctx, cal); err != nil {
		return nil, err
	}
	return s.calendars.GetByID(ctx, cal.ID)
}

// Delete removes a calendar.
func (s *CalendarService) Delete(ctx context.Context, id string) error {
	return s.calendars.Delete(ctx, id)
}

// Get fetches one calendar with its exceptions.
func (s *CalendarService) Get(ctx context.Context, id string) (*domain.BusinessCalendar, error) {
	return s.calendars.GetByID(ctx, id)
}

// List returns all calendars.
func (s *CalendarService) List(ctx context.Context) ([]domain.BusinessCalendar, error) {
	return s.calendars.List(ctx)
}

// SetDefault makes one calendar the default, unsetting every other. The
// single-default invariant is enforced transactionally by the repository.
func (s *CalendarService) SetDefault(ctx context.Context, id string) error {
	if err := s.calendars.SetDefault(ctx, id); err != nil {
		return err
	}
	s.logger.Info("default calendar changed", zap.String("calendar_id", id))
	return nil
}

// AddException validates and attaches a date exception.
func (s *CalendarService) AddException(ctx context.Context, exc *domain.CalendarException) (*domain.CalendarException, error) {
	cal, err := s.calendars.GetByID(ctx, exc.CalendarID)
	if err != nil {
		return nil, err
	}
	probe := *cal
	probe.Exceptions = append(probe.Exceptions, *exc)
	if err := slaclock.ValidateCalendar(&probe); err != nil {
		return nil, apperrors.NewValidationError(err.Error(), nil)
	}
	if err := s.calendars.AddException(ctx, exc); err != nil {
		return nil, err
	}
	return exc, nil
}

// RemoveException detaches a date exception.
func (s *CalendarService) RemoveException(ctx context.Context, calendarID, exceptionID string) error {
	return s.calendars.RemoveException(ctx, calendarID, exceptionID)
}
