// Package normalize converts the free-form date and time text scraped from
// event sites into a canonical calendar date and a 12-hour display time.
//
// Sites print dates in wildly different shapes ("Sunday, Feb 01, 2026 7:00p",
// "02/15/26", ISO-8601 with an offset), so parsing is driven by an ordered
// format list that each source adapter can override. A text that matches no
// format is an explicit failure, never silently replaced with today's date.
package normalize

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"
)

// ErrUnparsedDate is returned when no date format matches the input text.
// Callers decide whether to drop or flag the record; the normalizer never
// fabricates a date.
var ErrUnparsedDate = errors.New("date text matched no known format")

// DefaultFormats is the union of date shapes seen across sources, ordered
// most-specific first. Adapters with quirkier markup pass their own list.
var DefaultFormats = []string{
	"Monday, January 2, 2006",
	"Monday, Jan 2, 2006",
	"Mon, Jan 2, 2006",
	"January 2, 2006",
	"January 2 2006",
	"Jan 2, 2006",
	"Jan 2 2006",
	"01/02/2006",
	"1/2/2006",
	"01/02/06",
	"1/2/06",
	"2 January 2006",
	"2 Jan 2006",
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02",
	"Monday, January 2",
	"Monday, Jan 2",
	"Mon, Jan 2",
	"January 2",
	"Jan 2",
}

// Result is the canonical outcome of normalizing one raw date/time pair.
type Result struct {
	Date    time.Time // start date, wall-clock midnight
	EndDate time.Time // zero unless the text described a range
	Time    string    // "H:MM AM/PM" display string, may be empty
}

// timePattern matches an embedded clock time: "7:00pm", "7:00 PM", "7:00p".
var timePattern = regexp.MustCompile(`(?i)(\d{1,2}):(\d{2})\s*([ap])\.?m?\.?`)

// rangeSeparators split "Feb 1 - Feb 3, 2026" style multi-day spans.
var rangeSeparators = []string{" - ", " – ", " to ", " through "}

// DateTime normalizes a raw date text (and optional separate time text)
// using the given ordered format list. A nil or empty list falls back to
// DefaultFormats.
func DateTime(dateText, timeText string, formats []string) (Result, error) {
	if len(formats) == 0 {
		formats = DefaultFormats
	}

	var res Result

	// A time embedded in the date text wins over the separate time field,
	// and must be stripped before date parsing or every format fails.
	cleaned := dateText
	if m := timePattern.FindStringSubmatch(dateText); m != nil {
		res.Time = renderTime(m[1], m[2], m[3])
		cleaned = timePattern.ReplaceAllString(dateText, "")
	} else if m := timePattern.FindStringSubmatch(timeText); m != nil {
		res.Time = renderTime(m[1], m[2], m[3])
	}
	cleaned = strings.Trim(strings.TrimSpace(cleaned), ",-– ")

	if start, end, ok := parseRange(cleaned, formats); ok {
		res.Date = start
		res.EndDate = end
		return res, nil
	}

	parsed, layout, err := parseFirst(cleaned, formats)
	if err != nil {
		return Result{}, fmt.Errorf("%w: %q", ErrUnparsedDate, dateText)
	}

	res.Date = toDate(adjustYear(parsed))

	// ISO-style inputs carry their own clock; surface it when the source
	// text had no separate display time.
	if res.Time == "" && strings.Contains(layout, "15:04") {
		res.Time = formatClock(parsed)
	}
	return res, nil
}

// parseFirst tries each format in order and returns the first success along
// with the layout that matched.
func parseFirst(text string, formats []string) (time.Time, string, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return time.Time{}, "", ErrUnparsedDate
	}
	for _, layout := range formats {
		if t, err := time.Parse(layout, text); err == nil {
			return t, layout, nil
		}
	}
	return time.Time{}, "", ErrUnparsedDate
}

// parseRange attempts to read the text as a "start SEP end" span. Both
// halves must parse for the range to be accepted.
func parseRange(text string, formats []string) (start, end time.Time, ok bool) {
	for _, sep := range rangeSeparators {
		left, right, found := strings.Cut(text, sep)
		if !found {
			continue
		}
		s, _, errL := parseFirst(left, formats)
		e, _, errR := parseFirst(right, formats)
		if errL != nil || errR != nil {
			continue
		}
		s = toDate(adjustYear(s))
		e = toDate(adjustYear(e))
		// "Dec 30 - Jan 2" rolls the end into the next year.
		if e.Before(s) {
			e = e.AddDate(1, 0, 0)
		}
		return s, e, true
	}
	return time.Time{}, time.Time{}, false
}

// adjustYear fills in the year for calendars printed without one. A
// yearless date parses with year zero; assume the current year, and if that
// day has already passed assume the event rolls into next year.
func adjustYear(t time.Time) time.Time {
	if t.Year() != 0 {
		return t
	}
	now := clock.Now()
	t = time.Date(now.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	if t.Before(today) {
		t = t.AddDate(1, 0, 0)
	}
	return t
}

// toDate drops the clock portion, keeping the wall-clock calendar date of
// whatever zone the text described. An ISO timestamp with an offset keeps
// its own date component rather than being shifted to UTC.
func toDate(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// renderTime builds the canonical "H:MM AM/PM" display string.
func renderTime(hour, minute, meridiem string) string {
	h := strings.TrimLeft(hour, "0")
	if h == "" {
		h = "0"
	}
	suffix := "AM"
	if strings.EqualFold(meridiem, "p") {
		suffix = "PM"
	}
	return fmt.Sprintf("%s:%s %s", h, minute, suffix)
}

// formatClock renders a parsed timestamp's clock as "H:MM AM/PM".
func formatClock(t time.Time) string {
	return strings.TrimPrefix(t.Format("3:04 PM"), "0")
}
