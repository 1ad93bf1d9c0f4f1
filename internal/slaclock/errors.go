package slaclock

import (
	"fmt"
	"time"

	"github.com/spec-kit/sla-engine/internal/domain"
)

// InvalidTimelineError reports an empty or malformed status history. It is
// fatal for the affected ticket's computation but must never abort a batch.
type InvalidTimelineError struct {
	TicketID string
	Reason   string
}

func (e *InvalidTimelineError) Error() string {
	return fmt.Sprintf("invalid timeline for ticket %s: %s", e.TicketID, e.Reason)
}

// InvalidCalendarError reports a weekday whose window is impossible. It is
// raised at calendar save time; the engine itself treats such a day as
// contributing zero minutes so batch jobs stay resilient.
type InvalidCalendarError struct {
	CalendarID string
	Weekday    time.Weekday
	Reason     string
}

func (e *InvalidCalendarError) Error() string {
	return fmt.Sprintf("invalid calendar %s: %s on %s", e.CalendarID, e.Reason, e.Weekday)
}

// PolicyNotFoundError means no active policy applies to a ticket. The ticket
// simply has no SLA stats; callers must not treat this as a crash.
type PolicyNotFoundError struct {
	TicketID string
}

func (e *PolicyNotFoundError) Error() string {
	return fmt.Sprintf("no applicable SLA policy for ticket %s", e.TicketID)
}

// ValidateCalendar rejects calendars whose enabled weekdays have open >= close
// or unparseable times. Exceptions with override hours are checked the same
// way. Zero enabled weekdays is valid: such a calendar yields zero business
// minutes for any span.
func ValidateCalendar(cal *domain.BusinessCalendar) error {
	for weekday, hours := range cal.Schedule {
		if !hours.Enabled {
			continue
		}
		openMin, err := minutesOfDay(hours.Open)
		if err != nil {
			return &InvalidCalendarError{CalendarID: cal.ID, Weekday: weekday, Reason: err.Error()}
		}
		closeMin, err := minutesOfDay(hours.Close)
		if err != nil {
			return &InvalidCalendarError{CalendarID: cal.ID, Weekday: weekday, Reason: err.Error()}
		}
		if openMin >= closeMin {
			return &InvalidCalendarError{CalendarID: cal.ID, Weekday: weekday, Reason: "open must be before close"}
		}
	}
	for _, exc := range cal.Exceptions {
		if exc.IsHoliday || (exc.Open == "" && exc.Close == "") {
			continue
		}
		openMin, err := minutesOfDay(exc.Open)
		if err != nil {
			return &InvalidCalendarError{CalendarID: cal.ID, Reason: fmt.Sprintf("exception %s: %v", exc.Date, err)}
		}
		closeMin, err := minutesOfDay(exc.Close)
		if err != nil {
			return &InvalidCalendarError{CalendarID: cal.ID, Reason: fmt.Sprintf("exception %s: %v", exc.Date, err)}
		}
		if openMin >= closeMin {
			return &InvalidCalendarError{CalendarID: cal.ID, Reason: fmt.Sprintf("exception %s: open must be before close", exc.Date)}
		}
	}
	return nil
}
