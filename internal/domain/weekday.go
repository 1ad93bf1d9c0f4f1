package domain

import (
	"fmt"
	"strings"
	"time"
)

var weekdayNames = map[time.Weekday]string{
	time.Monday:    "monday",
	time.Tuesday:   "tuesday",
	time.Wednesday: "wednesday",
	time.Thursday:  "thursday",
	time.Friday:    "friday",
	time.Saturday:  "saturday",
	time.Sunday:    "sunday",
}

// WeekdayName returns the lowercase weekday key used on the wire and in
// storage.
func WeekdayName(day time.Weekday) string {
	return weekdayNames[day]
}

// ParseWeekday resolves a weekday key back to time.Weekday.
func ParseWeekday(name string) (time.Weekday, error) {
	needle := strings.ToLower(strings.TrimSpace(name))
	for day, known := range weekdayNames {
		if known == needle {
			return day, nil
		}
	}
	return 0, fmt.Errorf("unknown weekday %q", name)
}
