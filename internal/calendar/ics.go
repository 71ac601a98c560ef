// Package calendar renders curated picks as an iCalendar file so a
// digest can be imported straight into a subscriber's calendar app.
package calendar

import (
	"crypto/sha256"
	"fmt"
	"strings"
	"time"

	"github.com/atopofconscience/mehfil/internal/event"
)

// defaultDuration is assumed for events that publish a start time only.
const defaultDuration = 2 * time.Hour

// GenerateICS generates an iCalendar (.ics) document for a set of events.
// Events with a start time become timed entries in floating local time;
// the rest become all-day entries spanning EndDate when present.
func GenerateICS(events []*event.Event) string {
	var ics strings.Builder

	ics.WriteString("BEGIN:VCALENDAR\r\n")
	ics.WriteString("VERSION:2.0\r\n")
	ics.WriteString("PRODID:-//Mehfil Boston//mehfil//EN\r\n")
	ics.WriteString("CALSCALE:GREGORIAN\r\n")
	ics.WriteString("METHOD:PUBLISH\r\n")

	now := time.Now().UTC()
	for _, evt := range events {
		writeEvent(&ics, evt, now)
	}

	ics.WriteString("END:VCALENDAR\r\n")
	return ics.String()
}

func writeEvent(ics *strings.Builder, evt *event.Event, stamp time.Time) {
	date, err := evt.When()
	if err != nil {
		return
	}

	ics.WriteString("BEGIN:VEVENT\r\n")
	fmt.Fprintf(ics, "UID:%s\r\n", uid(evt))
	fmt.Fprintf(ics, "DTSTAMP:%s\r\n", stamp.Format("20060102T150405Z"))

	if start, ok := startClock(date, evt.Time); ok {
		// Floating local time: the clock the source printed, wherever
		// the reader's calendar lives.
		fmt.Fprintf(ics, "DTSTART:%s\r\n", start.Format("20060102T150405"))
		fmt.Fprintf(ics, "DTEND:%s\r\n", start.Add(defaultDuration).Format("20060102T150405"))
	} else {
		end := date.AddDate(0, 0, 1)
		if last, err := evt.EndWhen(); err == nil && last.After(date) {
			end = last.AddDate(0, 0, 1)
		}
		fmt.Fprintf(ics, "DTSTART;VALUE=DATE:%s\r\n", date.Format("20060102"))
		fmt.Fprintf(ics, "DTEND;VALUE=DATE:%s\r\n", end.Format("20060102"))
	}

	fmt.Fprintf(ics, "SUMMARY:%s\r\n", escapeICS(evt.Name))

	var descParts []string
	if evt.Description != "" {
		descParts = append(descParts, evt.Description)
	}
	if evt.Price != "" {
		descParts = append(descParts, "Admission: "+evt.Price)
	}
	if len(descParts) > 0 {
		fmt.Fprintf(ics, "DESCRIPTION:%s\r\n", escapeICS(strings.Join(descParts, "\n")))
	}

	location := evt.Location
	if evt.Address != "" {
		if location != "" {
			location += ", " + evt.Address
		} else {
			location = evt.Address
		}
	}
	if location != "" {
		fmt.Fprintf(ics, "LOCATION:%s\r\n", escapeICS(location))
	}

	if evt.HasCoordinates() {
		fmt.Fprintf(ics, "GEO:%f;%f\r\n", evt.Latitude, evt.Longitude)
	}
	if evt.URL != "" {
		fmt.Fprintf(ics, "URL:%s\r\n", evt.URL)
	}

	ics.WriteString("STATUS:CONFIRMED\r\n")
	ics.WriteString("SEQUENCE:0\r\n")
	ics.WriteString("TRANSP:OPAQUE\r\n")
	ics.WriteString("END:VEVENT\r\n")
}

// uid derives a stable identifier from the event's identity key.
func uid(evt *event.Event) string {
	sum := sha256.Sum256([]byte(evt.Key()))
	return fmt.Sprintf("%x@mehfil.com", sum[:8])
}

// startClock combines the event date with its display time, e.g. "7:00 PM".
func startClock(date time.Time, display string) (time.Time, bool) {
	if display == "" {
		return time.Time{}, false
	}
	clock, err := time.Parse("3:04 PM", strings.ToUpper(strings.TrimSpace(display)))
	if err != nil {
		return time.Time{}, false
	}
	return time.Date(date.Year(), date.Month(), date.Day(),
		clock.Hour(), clock.Minute(), 0, 0, date.Location()), true
}

// escapeICS escapes special characters according to RFC 5545
func escapeICS(s string) string {
	s = strings.ReplaceAll(s, "\\", "\\\\")
	s = strings.ReplaceAll(s, ",", "\\,")
	s = strings.ReplaceAll(s, ";", "\\;")
	s = strings.ReplaceAll(s, "\n", "\\n")
	return s
}
