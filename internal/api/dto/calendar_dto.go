package dto

import (
	"time"

	"github.com/spec-kit/sla-engine/internal/domain"
	apperrors "github.com/spec-kit/sla-engine/pkg/util"
)

// WeekdayHoursDTO is one weekday's work window on the wire.
type WeekdayHoursDTO struct {
	Open    string `json:"open"`
	Close   string `json:"close"`
	Enabled bool   `json:"enabled"`
}

// CalendarRequest is the create/update payload. The schedule is keyed by
// lowercase weekday name; absent weekdays are disabled.
type CalendarRequest struct {
	Name      string                     `json:"name"`
	Timezone  string                     `json:"timezone"`
	Schedule  map[string]WeekdayHoursDTO `json:"schedule"`
	IsDefault bool                       `json:"is_default"`
}

// ToDomain converts the request, rejecting unknown weekday keys.
func (r *CalendarRequest) ToDomain() (*domain.BusinessCalendar, error) {
	schedule := make(domain.WeeklySchedule, len(r.Schedule))
	for name, hours := range r.Schedule {
		day, err := domain.ParseWeekday(name)
		if err != nil {
			return nil, apperrors.NewValidationError(err.Error(), nil)
		}
		schedule[day] = domain.WeekdayHours{
			Open:    hours.Open,
			Close:   hours.Close,
			Enabled: hours.Enabled,
		}
	}
	return &domain.BusinessCalendar{
		Name:      r.Name,
		Timezone:  r.Timezone,
		Schedule:  schedule,
		IsDefault: r.IsDefault,
	}, nil
}

// CalendarExceptionRequest adds a date override. Open and close are only
// meaningful when the exception is not a holiday.
type CalendarExceptionRequest struct {
	Date      string `json:"date"`
	Name      string `json:"name"`
	IsHoliday bool   `json:"is_holiday"`
	Open      string `json:"open,omitempty"`
	Close     string `json:"close,omitempty"`
}

// ToDomain converts the request for the given calendar.
func (r *CalendarExceptionRequest) ToDomain(calendarID string) *domain.CalendarException {
	return &domain.CalendarException{
		CalendarID: calendarID,
		Date:       r.Date,
		Name:       r.Name,
		IsHoliday:  r.IsHoliday,
		Open:       r.Open,
		Close:      r.Close,
	}
}

// CalendarExceptionResponse is the wire shape of one exception.
type CalendarExceptionResponse struct {
	ID        string `json:"id"`
	Date      string `json:"date"`
	Name      string `json:"name,omitempty"`
	IsHoliday bool   `json:"is_holiday"`
	Open      string `json:"open,omitempty"`
	Close     string `json:"close,omitempty"`
}

// CalendarResponse is the wire shape of a calendar.
type CalendarResponse struct {
	ID         string                      `json:"id"`
	Name       string                      `json:"name"`
	Timezone   string                      `json:"timezone"`
	Schedule   map[string]WeekdayHoursDTO  `json:"schedule"`
	Exceptions []CalendarExceptionResponse `json:"exceptions"`
	IsDefault  bool                        `json:"is_default"`
	CreatedAt  time.Time                   `json:"created_at"`
	UpdatedAt  time.Time                   `json:"updated_at"`
}

// NewCalendarResponse converts a domain calendar to its wire shape.
func NewCalendarResponse(cal *domain.BusinessCalendar) CalendarResponse {
	schedule := make(map[string]WeekdayHoursDTO, len(cal.Schedule))
	for day, hours := range cal.Schedule {
		schedule[domain.WeekdayName(day)] = WeekdayHoursDTO{
			Open:    hours.Open,
			Close:   hours.Close,
			Enabled: hours.Enabled,
		}
	}
	exceptions := make([]CalendarExceptionResponse, 0, len(cal.Exceptions))
	for _, exc := range cal.Exceptions {
		exceptions = append(exceptions, CalendarExceptionResponse{
			ID:        exc.ID,
			Date:      exc.Date,
			Name:      exc.Name,
			IsHoliday: exc.IsHoliday,
			Open:      exc.Open,
			Close:     exc.Close,
		})
	}
	return CalendarResponse{
		ID:         cal.ID,
		Name:       cal.Name,
		Timezone:   cal.Timezone,
		Schedule:   schedule,
		Exceptions: exceptions,
		IsDefault:  cal.IsDefault,
		CreatedAt:  cal.CreatedAt,
		UpdatedAt:  cal.UpdatedAt,
	}
}

// NewCalendarListResponse converts a calendar slice.
func NewCalendarListResponse(cals []domain.BusinessCalendar) []CalendarResponse {
	out := make([]CalendarResponse, 0, len(cals))
	for i := range cals {
		out = append(out, NewCalendarResponse(&cals[i]))
	}
	return out
}
