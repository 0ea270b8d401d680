package utils

import (
	"fmt"
	"time"

	"github.com/julianstephens/maestro/internal/constants"
)

// FormatLocalDate returns the zero-padded YYYY-MM-DD of t's local calendar date.
func FormatLocalDate(t time.Time) string {
	return t.In(time.Local).Format(constants.DateFormat)
}

// ParseLocalDate returns local midnight of a YYYY-MM-DD calendar date.
func ParseLocalDate(value string) (time.Time, error) {
	t, err := ParseDateInLocation(value, time.Local)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q (expected YYYY-MM-DD): %w", value, err)
	}
	return t, nil
}

// StartOfLocalDay returns local midnight of the calendar day containing t.
func StartOfLocalDay(t time.Time) time.Time {
	local := t.In(time.Local)
	return time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, time.Local)
}

// AddDaysToLocalDate moves a local day by n calendar days using date-field
// arithmetic, so DST transitions never shift the result.
func AddDaysToLocalDate(day time.Time, n int) time.Time {
	local := day.In(time.Local)
	return time.Date(local.Year(), local.Month(), local.Day()+n, 0, 0, 0, 0, time.Local)
}

// AddLocalDays returns the calendar date n days after value.
func AddLocalDays(value string, n int) (string, error) {
	day, err := ParseLocalDate(value)
	if err != nil {
		return "", err
	}
	return FormatLocalDate(AddDaysToLocalDate(day, n)), nil
}

// DaysBetweenLocalDates returns the number of local calendar days from the
// day containing from to the day containing to. It never returns a negative
// count: when from falls after to the result is 0.
func DaysBetweenLocalDates(from, to time.Time) int {
	days := dayNumber(to) - dayNumber(from)
	if days < 0 {
		return 0
	}
	return days
}

// dayNumber maps the local calendar date of t onto a continuous day count.
func dayNumber(t time.Time) int {
	local := t.In(time.Local)
	civil := time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, time.UTC)
	return int(civil.Unix() / 86400)
}

// WeekStartFor returns the first day of the week containing date, where
// startOfWeek is the weekday (0 = Sunday) that opens a week.
func WeekStartFor(date string, startOfWeek int) (string, error) {
	day, err := ParseLocalDate(date)
	if err != nil {
		return "", err
	}
	offset := (int(day.Weekday()) - startOfWeek + 7) % 7
	return FormatLocalDate(AddDaysToLocalDate(day, -offset)), nil
}

// WeekBounds returns the inclusive first and last dates of the week containing date.
func WeekBounds(date string, startOfWeek int) (string, string, error) {
	start, err := WeekStartFor(date, startOfWeek)
	if err != nil {
		return "", "", err
	}
	end, err := AddLocalDays(start, 6)
	if err != nil {
		return "", "", err
	}
	return start, end, nil
}

// LocalDateRange lists every calendar date from start to end inclusive.
func LocalDateRange(start, end string) ([]string, error) {
	first, err := ParseLocalDate(start)
	if err != nil {
		return nil, err
	}
	last, err := ParseLocalDate(end)
	if err != nil {
		return nil, err
	}

	var days []string
	for day := first; !day.After(last); day = AddDaysToLocalDate(day, 1) {
		days = append(days, FormatLocalDate(day))
	}
	return days, nil
}
