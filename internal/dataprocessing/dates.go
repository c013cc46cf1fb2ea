package dataprocessing

import (
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// serialEpoch is day zero of spreadsheet serial dates; serial 44927 is 2023-01-01.
var serialEpoch = time.Date(1899, time.December, 30, 0, 0, 0, 0, time.UTC)

// Serial day bounds covering years 0001 through 9999.
const (
	minSerialDay = -693593
	maxSerialDay = 2958465
)

var numericDatePattern = regexp.MustCompile(`^(\d{1,2})[/.\-](\d{1,2})[/.\-](\d{4}|\d{2})(?:[ T].*)?$`)

// Layouts whose field order does not depend on the day/month policy.
var unambiguousLayouts = []string{
	"2006-01-02",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006-01-02T15:04:05",
	"2006-01-02T15:04:05Z07:00",
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04:05.999999999Z07:00",
	"2006-01-02 15:04:05.999999999",
	"2006-1-2",
	"2006/01/02",
	"2006/1/2",
	"2006/01/02 15:04:05",
	"02-Jan-2006",
	"2-Jan-2006",
	"02-Jan-06",
	"2-Jan-06",
	"02 Jan 2006",
	"2 Jan 2006",
	"02 January 2006",
	"2 January 2006",
	"Jan 02, 2006",
	"Jan 2, 2006",
	"January 02, 2006",
	"January 2, 2006",
	"Jan 2 2006",
	"January 2 2006",
}

// NormalizeDates converts one column of raw cells to calendar dates.
//
// Every value is first parsed day-first. When more than half the values
// (empty ones included) fail, the whole column is reparsed month-first and
// only that result is kept. Values still unparsed are then read as
// spreadsheet serial day counts. A string parse is never overwritten by the
// serial fallback.
func NormalizeDates(values []Cell) []NullDate {
	out := parseColumn(values, true)
	failed := 0
	for _, d := range out {
		if !d.Valid {
			failed++
		}
	}
	if float64(failed) > float64(len(values))*0.5 {
		out = parseColumn(values, false)
	}

	for i, d := range out {
		if d.Valid || values[i].IsEmpty() {
			continue
		}
		if serial, ok := serialDate(values[i]); ok {
			out[i] = SomeDate(serial)
		}
	}
	return out
}

func parseColumn(values []Cell, dayFirst bool) []NullDate {
	out := make([]NullDate, len(values))
	for i, v := range values {
		if v.Kind != CellString {
			continue
		}
		if t, ok := parseDateString(v.Str, dayFirst); ok {
			out[i] = SomeDate(t)
		}
	}
	return out
}

// ParseDate reads a single date string without the serial fallback.
// Ambiguous numeric dates are read day-first, then month-first.
func ParseDate(s string) (time.Time, bool) {
	if t, ok := parseDateString(s, true); ok {
		return t, true
	}
	return parseDateString(s, false)
}

func parseDateString(raw string, dayFirst bool) (time.Time, bool) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return time.Time{}, false
	}

	for _, layout := range unambiguousLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return CalendarDay(t), true
		}
	}

	m := numericDatePattern.FindStringSubmatch(s)
	if m == nil {
		return time.Time{}, false
	}
	first, _ := strconv.Atoi(m[1])
	second, _ := strconv.Atoi(m[2])
	year, _ := strconv.Atoi(m[3])
	if len(m[3]) == 2 {
		year = expandTwoDigitYear(year)
	}

	day, month := first, second
	if !dayFirst {
		day, month = second, first
	}
	return civilDate(year, month, day)
}

// expandTwoDigitYear follows the time package pivot: 69-99 is 19xx, 00-68 is 20xx.
func expandTwoDigitYear(y int) int {
	if y >= 69 {
		return 1900 + y
	}
	return 2000 + y
}

func civilDate(year, month, day int) (time.Time, bool) {
	if month < 1 || month > 12 || day < 1 || day > 31 {
		return time.Time{}, false
	}
	t := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
	// time.Date normalizes overflow such as 31 April; reject it.
	if t.Day() != day || int(t.Month()) != month {
		return time.Time{}, false
	}
	return t, true
}

func serialDate(c Cell) (time.Time, bool) {
	var v float64
	switch c.Kind {
	case CellNumber:
		v = c.Num
	case CellString:
		f, err := strconv.ParseFloat(strings.TrimSpace(c.Str), 64)
		if err != nil {
			return time.Time{}, false
		}
		v = f
	default:
		return time.Time{}, false
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return time.Time{}, false
	}
	days := math.Floor(v)
	if days < minSerialDay || days > maxSerialDay {
		return time.Time{}, false
	}
	return serialEpoch.AddDate(0, 0, int(days)), true
}
