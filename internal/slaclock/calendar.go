package slaclock

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/spec-kit/sla-engine/internal/domain"
)

// LocalDate is a calendar-local date key.
type LocalDate struct {
	Year  int
	Month time.Month
	Day   int
}

// String renders the date as "YYYY-MM-DD", the key format calendar
// exceptions are stored under.
func (d LocalDate) String() string {
	return fmt.Sprintf("%04d-%02d-%02d", d.Year, int(d.Month), d.Day)
}

// Next returns the following calendar date.
func (d LocalDate) Next() LocalDate {
	next := time.Date(d.Year, d.Month, d.Day, 0, 0, 0, 0, time.UTC).AddDate(0, 0, 1)
	return LocalDate{Year: next.Year(), Month: next.Month(), Day: next.Day()}
}

// After reports whether d is a later date than other.
func (d LocalDate) After(other LocalDate) bool {
	if d.Year != other.Year {
		return d.Year > other.Year
	}
	if d.Month != other.Month {
		return d.Month > other.Month
	}
	return d.Day > other.Day
}

// Weekday returns the weekday of the local date.
func (d LocalDate) Weekday() time.Weekday {
	return time.Date(d.Year, d.Month, d.Day, 0, 0, 0, 0, time.UTC).Weekday()
}

// LocalDateTime is a calendar-local wall-clock instant.
type LocalDateTime struct {
	Date   LocalDate
	Hour   int
	Minute int
}

// Time zone handling uses fixed whole-hour UTC offsets per zone name. This is
// a known simplification: no DST transitions are modeled, and zones with
// fractional offsets are not supported. Unknown zones fall back to UTC.
var zoneOffsetHours = map[string]int{
	"UTC":                 0,
	"Europe/London":       0,
	"Europe/Lisbon":       0,
	"Europe/Berlin":       1,
	"Europe/Paris":        1,
	"Europe/Madrid":       1,
	"Europe/Rome":         1,
	"Europe/Amsterdam":    1,
	"Europe/Warsaw":       1,
	"Europe/Athens":       2,
	"Europe/Kyiv":         2,
	"Europe/Helsinki":     2,
	"Europe/Moscow":       3,
	"America/Sao_Paulo":   -3,
	"America/New_York":    -5,
	"America/Toronto":     -5,
	"America/Chicago":     -6,
	"America/Mexico_City": -6,
	"America/Denver":      -7,
	"America/Phoenix":     -7,
	"America/Los_Angeles": -8,
	"Asia/Dubai":          4,
	"Asia/Karachi":        5,
	"Asia/Dhaka":          6,
	"Asia/Bangkok":        7,
	"Asia/Shanghai":       8,
	"Asia/Singapore":      8,
	"Asia/Hong_Kong":      8,
	"Asia/Tokyo":          9,
	"Asia/Seoul":          9,
	"Australia/Sydney":    10,
	"Pacific/Auckland":    12,
}

// OffsetHours resolves a calendar's fixed UTC offset in whole hours.
func OffsetHours(cal *domain.BusinessCalendar) int {
	if offset, ok := zoneOffsetHours[cal.Timezone]; ok {
		return offset
	}
	return 0
}

// Localize maps an absolute instant to the calendar's local wall-clock time.
func Localize(instant time.Time, cal *domain.BusinessCalendar) LocalDateTime {
	shifted := instant.UTC().Add(time.Duration(OffsetHours(cal)) * time.Hour)
	return LocalDateTime{
		Date:   LocalDate{Year: shifted.Year(), Month: shifted.Month(), Day: shifted.Day()},
		Hour:   shifted.Hour(),
		Minute: shifted.Minute(),
	}
}

// LocalDateOf is Localize truncated to the date component.
func LocalDateOf(instant time.Time, cal *domain.BusinessCalendar) LocalDate {
	return Localize(instant, cal).Date
}

// IsBusinessDay reports whether a local date is a working day: its weekday is
// enabled in the weekly schedule and no holiday exception covers the date.
func IsBusinessDay(date LocalDate, cal *domain.BusinessCalendar) bool {
	hours, ok := cal.Schedule[date.Weekday()]
	if exc, found := cal.ExceptionFor(date.String()); found {
		if exc.IsHoliday {
			return false
		}
		if exc.Open != "" && exc.Close != "" {
			return true
		}
	}
	return ok && hours.Enabled
}

// workWindow returns the absolute open and close instants of a local date's
// work window. ok is false for non-business days and for days whose stored
// window is impossible (open >= close or unparseable); such days contribute
// zero minutes.
func workWindow(date LocalDate, cal *domain.BusinessCalendar) (time.Time, time.Time, bool) {
	if !IsBusinessDay(date, cal) {
		return time.Time{}, time.Time{}, false
	}

	open := ""
	closeAt := ""
	if exc, found := cal.ExceptionFor(date.String()); found && !exc.IsHoliday && exc.Open != "" && exc.Close != "" {
		open, closeAt = exc.Open, exc.Close
	} else {
		hours := cal.Schedule[date.Weekday()]
		open, closeAt = hours.Open, hours.Close
	}

	openMin, err := minutesOfDay(open)
	if err != nil {
		return time.Time{}, time.Time{}, false
	}
	closeMin, err := minutesOfDay(closeAt)
	if err != nil || openMin >= closeMin {
		return time.Time{}, time.Time{}, false
	}

	offset := time.Duration(OffsetHours(cal)) * time.Hour
	midnight := time.Date(date.Year, date.Month, date.Day, 0, 0, 0, 0, time.UTC).Add(-offset)
	dayStart := midnight.Add(time.Duration(openMin) * time.Minute)
	dayEnd := midnight.Add(time.Duration(closeMin) * time.Minute)
	return dayStart, dayEnd, true
}

// minutesOfDay parses an "HH:MM" wall-clock string into minutes past
// midnight.
func minutesOfDay(value string) (int, error) {
	parts := strings.SplitN(strings.TrimSpace(value), ":", 2)
	if len(parts) != 2 {
		return 0, fmt.Errorf("invalid time %q, expected HH:MM", value)
	}
	hour, err := strconv.Atoi(parts[0])
	if err != nil || hour < 0 || hour > 23 {
		return 0, fmt.Errorf("invalid hour in %q", value)
	}
	minute, err := strconv.Atoi(parts[1])
	if err != nil || minute < 0 || minute > 59 {
		return 0, fmt.Errorf("invalid minute in %q", value)
	}
	return hour*60 + minute, nil
}
