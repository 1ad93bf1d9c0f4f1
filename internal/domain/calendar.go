package domain

import "time"

// WeekdayHours defines one weekday's work window. Open and Close are
// calendar-local "HH:MM" strings.
type WeekdayHours struct {
	Open    string
	Close   string
	Enabled bool
}

// WeeklySchedule maps weekdays to their work windows. A weekday absent from
// the map is treated as disabled.
type WeeklySchedule map[time.Weekday]WeekdayHours

// CalendarException overrides a single calendar-local date: a holiday makes
// the day non-working, otherwise the optional hours replace the weekday's
// normal window for that date. Exceptions never implicitly expire.
type CalendarException struct {
	ID         string
	CalendarID string
	Date       string // calendar-local date, "YYYY-MM-DD"
	Name       string
	IsHoliday  bool
	Open       string
	Close      string
}

// BusinessCalendar defines an organization's working time. Exactly one
// calendar is the default at a time; the calendar service enforces that
// setting the flag on one unsets it on all others.
type BusinessCalendar struct {
	ID         string
	Name       string
	Timezone   string
	Schedule   WeeklySchedule
	Exceptions []CalendarException
	IsDefault  bool
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// ExceptionFor returns the exception for a calendar-local date, if any.
func (c *BusinessCalendar) ExceptionFor(date string) (CalendarException, bool) {
	for _, exc := range c.Exceptions {
		if exc.Date == date {
			return exc, true
		}
	}
	return CalendarException{}, false
}
