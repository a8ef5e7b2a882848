// Package dates converts the free-text date strings scraped from ticket
// marketplaces into comparable timestamps. All components are treated as
// local wall-clock literals: no timezone database is consulted, and the
// same reading always normalizes to the same instant regardless of which
// source dialect produced it.
package dates

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// ParseError reports a date string no known dialect could parse. The raw
// string is preserved so callers can log the data-quality problem instead
// of fabricating a date.
type ParseError struct {
	Raw    string
	Source string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("unparseable date %q from source %q", e.Raw, e.Source)
}

var months = map[string]time.Month{
	"jan": time.January, "january": time.January,
	"feb": time.February, "february": time.February,
	"mar": time.March, "march": time.March,
	"apr": time.April, "april": time.April,
	"may": time.May,
	"jun": time.June, "june": time.June,
	"jul": time.July, "july": time.July,
	"aug": time.August, "august": time.August,
	"sep": time.September, "sept": time.September, "september": time.September,
	"oct": time.October, "october": time.October,
	"nov": time.November, "november": time.November,
	"dec": time.December, "december": time.December,
}

var (
	// "2025-01-17T19:00:00Z", "2025-01-17 19:00" — timezone suffix ignored,
	// components taken as local literals.
	reAbsolute = regexp.MustCompile(`^(\d{4})-(\d{1,2})-(\d{1,2})[T ](\d{1,2}):(\d{2})`)

	// "Jan 17 2025 7:00 PM", "January 17, 2025 7:00PM"
	reMonthDayYearTime = regexp.MustCompile(`(?i)\b([a-z]{3,9})\.?\s+(\d{1,2})(?:st|nd|rd|th)?,?\s+(\d{4})\s+(\d{1,2}):(\d{2})\s*([ap])\.?m\.?`)

	// "Jan 17 7:00 PM" — year omitted, inferred as the nearest future one.
	reMonthDayTime = regexp.MustCompile(`(?i)\b([a-z]{3,9})\.?\s+(\d{1,2})(?:st|nd|rd|th)?,?\s+(\d{1,2}):(\d{2})\s*([ap])\.?m\.?`)

	// "Jan 17 2025"
	reMonthDayYear = regexp.MustCompile(`(?i)\b([a-z]{3,9})\.?\s+(\d{1,2})(?:st|nd|rd|th)?,?\s+(\d{4})`)

	// "Jan 17"
	reMonthDay = regexp.MustCompile(`(?i)\b([a-z]{3,9})\.?\s+(\d{1,2})(?:st|nd|rd|th)?\b`)

	// "today 7:00 pm", "Tomorrow"
	reRelative = regexp.MustCompile(`(?i)\b(today|tomorrow)\b(?:\s+(\d{1,2}):(\d{2})\s*([ap])\.?m\.?)?`)

	reTicketsLeft = regexp.MustCompile(`(?i)\d+\s*tickets?\s*(left|remaining)`)
	reWeekday     = regexp.MustCompile(`(?i)\b(mon|tue|tues|wed|thu|thur|thurs|fri|sat|sun)(day|nesday|sday|urday|rsday)?\b`)
	reDigitAlpha  = regexp.MustCompile(`(\d)([A-Za-z])`)
	reAlphaDigit  = regexp.MustCompile(`([A-Za-z])(\d)`)
	reSpaces      = regexp.MustCompile(`\s+`)
)

// Normalize parses raw into a timestamp with seconds zeroed. The source tag
// selects dialect-specific preprocessing; now anchors year inference for
// year-omitted and relative forms and must be injected so callers can pin
// it in tests.
func Normalize(raw, source string, now time.Time) (time.Time, error) {
	if m := reAbsolute.FindStringSubmatch(strings.TrimSpace(raw)); m != nil {
		return buildDate(atoi(m[1]), time.Month(atoi(m[2])), atoi(m[3]), atoi(m[4]), atoi(m[5])), nil
	}

	s := clean(raw, source)

	if m := reRelative.FindStringSubmatch(s); m != nil {
		day := now
		if strings.EqualFold(m[1], "tomorrow") {
			day = now.AddDate(0, 0, 1)
		}
		hour, min := 0, 0
		if m[2] != "" {
			hour = to24Hour(atoi(m[2]), m[4])
			min = atoi(m[3])
		}
		return buildDate(day.Year(), day.Month(), day.Day(), hour, min), nil
	}

	if m := reMonthDayYearTime.FindStringSubmatch(s); m != nil {
		month, ok := monthByName(m[1])
		if !ok {
			return time.Time{}, &ParseError{Raw: raw, Source: source}
		}
		return buildDate(atoi(m[3]), month, atoi(m[2]), to24Hour(atoi(m[4]), m[6]), atoi(m[5])), nil
	}

	if m := reMonthDayTime.FindStringSubmatch(s); m != nil {
		month, ok := monthByName(m[1])
		if !ok {
			return time.Time{}, &ParseError{Raw: raw, Source: source}
		}
		t := buildDate(now.Year(), month, atoi(m[2]), to24Hour(atoi(m[3]), m[5]), atoi(m[4]))
		return nearestFuture(t, now), nil
	}

	if m := reMonthDayYear.FindStringSubmatch(s); m != nil {
		month, ok := monthByName(m[1])
		if !ok {
			return time.Time{}, &ParseError{Raw: raw, Source: source}
		}
		return buildDate(atoi(m[3]), month, atoi(m[2]), 0, 0), nil
	}

	if m := reMonthDay.FindStringSubmatch(s); m != nil {
		if month, ok := monthByName(m[1]); ok {
			t := buildDate(now.Year(), month, atoi(m[2]), 0, 0)
			return nearestFuture(t, now), nil
		}
	}

	return time.Time{}, &ParseError{Raw: raw, Source: source}
}

// SameDay reports whether a and b fall on the same calendar day.
func SameDay(a, b time.Time) bool {
	return a.Year() == b.Year() && a.Month() == b.Month() && a.Day() == b.Day()
}

// SameInstant reports whether a and b agree down to the minute. Used only
// to disambiguate multiple events sharing artist, venue and day.
func SameInstant(a, b time.Time) bool {
	return SameDay(a, b) && a.Hour() == b.Hour() && a.Minute() == b.Minute()
}

// clean strips the decorations marketplaces wrap around the actual date:
// emoji, "N tickets left" annotations, day-of-week words, and (for the
// concatenated vividseats dialect) missing separators between runs of
// digits and letters.
func clean(raw, source string) string {
	var b strings.Builder
	for _, r := range raw {
		if r < 128 {
			b.WriteRune(r)
		}
	}
	s := b.String()
	if source == "vividseats" {
		s = reDigitAlpha.ReplaceAllString(s, "$1 $2")
		s = reAlphaDigit.ReplaceAllString(s, "$1 $2")
	}
	s = reTicketsLeft.ReplaceAllString(s, " ")
	s = reWeekday.ReplaceAllString(s, " ")
	return strings.TrimSpace(reSpaces.ReplaceAllString(s, " "))
}

func monthByName(name string) (time.Month, bool) {
	m, ok := months[strings.ToLower(name)]
	return m, ok
}

func to24Hour(hour int, meridiem string) int {
	switch strings.ToLower(meridiem) {
	case "p":
		if hour < 12 {
			hour += 12
		}
	case "a":
		if hour == 12 {
			hour = 0
		}
	}
	return hour
}

// nearestFuture resolves a year-omitted date: this year if still ahead of
// now, otherwise next year.
func nearestFuture(t, now time.Time) time.Time {
	if t.Before(now) {
		return t.AddDate(1, 0, 0)
	}
	return t
}

func buildDate(year int, month time.Month, day, hour, min int) time.Time {
	return time.Date(year, month, day, hour, min, 0, 0, time.UTC)
}

func atoi(s string) int {
	n, _ := strconv.Atoi(s)
	return n
}
