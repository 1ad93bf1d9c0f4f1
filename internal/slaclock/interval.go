package slaclock

import (
	"time"

	"github.com/spec-kit/sla-engine/internal/domain"
)

// BusinessMinutesBetween returns the business minutes that elapsed between
// two absolute instants against a calendar. It walks the calendar-local
// dates of the span inclusively, intersects [start, end] with each business
// day's work window, and sums the whole-minute floor of every intersection.
// Flooring happens per day-segment, not on the total, so long spans carry no
// systematic rounding bias. Non-business days contribute zero and
// end <= start yields zero.
func BusinessMinutesBetween(start, end time.Time, cal *domain.BusinessCalendar) int {
	if !end.After(start) {
		return 0
	}

	total := 0
	date := LocalDateOf(start, cal)
	last := LocalDateOf(end, cal)
	for {
		if dayStart, dayEnd, ok := workWindow(date, cal); ok {
			effectiveStart := start
			if dayStart.After(effectiveStart) {
				effectiveStart = dayStart
			}
			effectiveEnd := end
			if dayEnd.Before(effectiveEnd) {
				effectiveEnd = dayEnd
			}
			if effectiveEnd.After(effectiveStart) {
				total += int(effectiveEnd.Sub(effectiveStart) / time.Minute)
			}
		}
		if !last.After(date) {
			break
		}
		date = date.Next()
	}
	return total
}
