package slaclock

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/sla-engine/internal/domain"
)

// weekdayCalendar is Mon-Fri 09:00-18:00 in the given zone.
func weekdayCalendar(timezone string) *domain.BusinessCalendar {
	schedule := domain.WeeklySchedule{}
	for day := time.Monday; day <= time.Friday; day++ {
		schedule[day] = domain.WeekdayHours{Open: "09:00", Close: "18:00", Enabled: true}
	}
	return &domain.BusinessCalendar{
		ID:       "cal-weekday",
		Name:     "Weekdays",
		Timezone: timezone,
		Schedule: schedule,
	}
}

func TestLocalize(t *testing.T) {
	tests := []struct {
		name     string
		timezone string
		instant  time.Time
		wantDate string
		wantHour int
		wantMin  int
	}{
		{
			name:     "utc passthrough",
			timezone: "UTC",
			instant:  time.Date(2024, 1, 8, 9, 30, 0, 0, time.UTC),
			wantDate: "2024-01-08",
			wantHour: 9,
			wantMin:  30,
		},
		{
			name:     "new york is five hours behind",
			timezone: "America/New_York",
			instant:  time.Date(2024, 1, 8, 14, 0, 0, 0, time.UTC),
			wantDate: "2024-01-08",
			wantHour: 9,
			wantMin:  0,
		},
		{
			name:     "tokyo crosses the date line",
			timezone: "Asia/Tokyo",
			instant:  time.Date(2024, 1, 8, 22, 15, 0, 0, time.UTC),
			wantDate: "2024-01-09",
			wantHour: 7,
			wantMin:  15,
		},
		{
			name:     "unknown zone falls back to utc",
			timezone: "Mars/Olympus_Mons",
			instant:  time.Date(2024, 1, 8, 9, 0, 0, 0, time.UTC),
			wantDate: "2024-01-08",
			wantHour: 9,
			wantMin:  0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cal := weekdayCalendar(tt.timezone)
			local := Localize(tt.instant, cal)
			assert.Equal(t, tt.wantDate, local.Date.String())
			assert.Equal(t, tt.wantHour, local.Hour)
			assert.Equal(t, tt.wantMin, local.Minute)
		})
	}
}

func TestIsBusinessDay(t *testing.T) {
	cal := weekdayCalendar("UTC")
	cal.Exceptions = []domain.CalendarException{
		{Date: "2024-01-10", Name: "Company holiday", IsHoliday: true},
		{Date: "2024-01-13", Name: "Inventory Saturday", Open: "10:00", Close: "14:00"},
	}

	tests := []struct {
		name string
		date LocalDate
		want bool
	}{
		{"regular monday", LocalDate{2024, time.January, 8}, true},
		{"regular saturday", LocalDate{2024, time.January, 6}, false},
		{"regular sunday", LocalDate{2024, time.January, 7}, false},
		{"holiday exception on a wednesday", LocalDate{2024, time.January, 10}, false},
		{"special hours exception on a saturday", LocalDate{2024, time.January, 13}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsBusinessDay(tt.date, cal))
		})
	}
}

func TestIsBusinessDayZeroEnabledWeekdays(t *testing.T) {
	cal := &domain.BusinessCalendar{ID: "cal-empty", Timezone: "UTC", Schedule: domain.WeeklySchedule{}}
	for day := 7; day <= 13; day++ {
		assert.False(t, IsBusinessDay(LocalDate{2024, time.January, day}, cal))
	}
}

func TestValidateCalendar(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(cal *domain.BusinessCalendar)
		wantErr bool
	}{
		{"valid weekday calendar", func(cal *domain.BusinessCalendar) {}, false},
		{
			"zero enabled weekdays is valid",
			func(cal *domain.BusinessCalendar) { cal.Schedule = domain.WeeklySchedule{} },
			false,
		},
		{
			"open equals close",
			func(cal *domain.BusinessCalendar) {
				cal.Schedule[time.Monday] = domain.WeekdayHours{Open: "09:00", Close: "09:00", Enabled: true}
			},
			true,
		},
		{
			"open after close",
			func(cal *domain.BusinessCalendar) {
				cal.Schedule[time.Tuesday] = domain.WeekdayHours{Open: "18:00", Close: "09:00", Enabled: true}
			},
			true,
		},
		{
			"garbage time string",
			func(cal *domain.BusinessCalendar) {
				cal.Schedule[time.Friday] = domain.WeekdayHours{Open: "nine", Close: "18:00", Enabled: true}
			},
			true,
		},
		{
			"disabled weekday is not validated",
			func(cal *domain.BusinessCalendar) {
				cal.Schedule[time.Saturday] = domain.WeekdayHours{Open: "18:00", Close: "09:00", Enabled: false}
			},
			false,
		},
		{
			"exception with inverted override hours",
			func(cal *domain.BusinessCalendar) {
				cal.Exceptions = []domain.CalendarException{{Date: "2024-01-13", Open: "14:00", Close: "10:00"}}
			},
			true,
		},
		{
			"holiday exception needs no hours",
			func(cal *domain.BusinessCalendar) {
				cal.Exceptions = []domain.CalendarException{{Date: "2024-01-10", IsHoliday: true}}
			},
			false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cal := weekdayCalendar("UTC")
			tt.mutate(cal)
			err := ValidateCalendar(cal)
			if tt.wantErr {
				var calErr *InvalidCalendarError
				require.Error(t, err)
				require.ErrorAs(t, err, &calErr)
				assert.Equal(t, cal.ID, calErr.CalendarID)
			} else {
				require.NoError(t, err)
			}
		})
	}
}

func TestMinutesOfDay(t *testing.T) {
	minutes, err := minutesOfDay("09:30")
	require.NoError(t, err)
	assert.Equal(t, 570, minutes)

	for _, bad := range []string{"", "9", "25:00", "09:61", "ab:cd"} {
		_, err := minutesOfDay(bad)
		assert.Error(t, err, "expected %q to be rejected", bad)
	}
}
