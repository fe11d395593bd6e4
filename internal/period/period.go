// Package period maps calendar days onto the periods a habit is tracked in:
// calendar days for daily habits, ISO weeks (Monday start) for weekly ones.
package period

import (
	"fmt"
	"time"

	"github.com/julianstephens/habithero/internal/constants"
	"github.com/julianstephens/habithero/internal/models"
)

const secondsPerDay = 24 * 60 * 60

// ParseDay parses a date string (YYYY-MM-DD) as midnight UTC.
func ParseDay(day string) (time.Time, error) {
	t, err := time.Parse(constants.DateFormat, day)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q (expected YYYY-MM-DD): %w", day, err)
	}
	return t, nil
}

// ValidateDay checks if the string matches the standard date format.
func ValidateDay(day string) bool {
	_, err := ParseDay(day)
	return err == nil
}

// FormatDay returns the calendar day of t in its own location.
func FormatDay(t time.Time) string {
	return t.Format(constants.DateFormat)
}

// LoadLocation loads a timezone location from an IANA timezone name.
// If the timezone is "Local" or empty, it returns the system's local timezone.
func LoadLocation(timezone string) (*time.Location, error) {
	if timezone == "" || timezone == "Local" {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(timezone)
	if err != nil {
		return nil, fmt.Errorf("invalid timezone %q: %w", timezone, err)
	}
	return loc, nil
}

// DayNumber returns the number of days between 1970-01-01 and the calendar day of t.
func DayNumber(t time.Time) int64 {
	civil := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
	return floorDiv(civil.Unix(), secondsPerDay)
}

// Index returns a monotonically increasing number for the period containing t.
// Consecutive periods have consecutive indexes.
func Index(freq models.Frequency, t time.Time) int64 {
	d := DayNumber(t)
	if freq == models.FrequencyWeekly {
		// 1970-01-01 was a Thursday; shifting by 3 makes Monday the first day.
		return floorDiv(d+3, 7)
	}
	return d
}

// Key is a human-readable label for the period containing t.
func Key(freq models.Frequency, t time.Time) string {
	if freq == models.FrequencyWeekly {
		year, week := t.ISOWeek()
		return fmt.Sprintf("%04d-W%02d", year, week)
	}
	return FormatDay(t)
}

// Elapsed counts the periods from start through end inclusive, or 0 if end is before start.
func Elapsed(freq models.Frequency, start, end time.Time) int {
	n := Index(freq, end) - Index(freq, start) + 1
	if n < 0 {
		return 0
	}
	return int(n)
}

// Start returns the first calendar day of the period containing t.
func Start(freq models.Frequency, t time.Time) time.Time {
	day := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
	if freq != models.FrequencyWeekly {
		return day
	}
	offset := (int(day.Weekday()) + 6) % 7 // Monday = 0
	return day.AddDate(0, 0, -offset)
}

func floorDiv(a, b int64) int64 {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}
