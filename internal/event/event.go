package event

import (
	"fmt"
	"strings"
	"time"
)

// DateLayout is the canonical calendar-date form used in the catalog file
// and by the store gateway.
const DateLayout = "2006-01-02"

const (
	// MaxNameLen bounds the canonical event name.
	MaxNameLen = 200
	// MaxDescriptionLen bounds the canonical event description.
	MaxDescriptionLen = 500
)

// RawEvent is the untrusted record produced by a source adapter. Any field
// may be empty or garbage; adapters make no promises beyond "this is what
// the site said".
type RawEvent struct {
	Name        string
	DateText    string
	TimeText    string
	Location    string
	Address     string
	Price       string
	Description string
	URL         string
	Source      string
	// Coordinates when the source publishes them (structured data);
	// zero means unknown, never "null island".
	Latitude  float64
	Longitude float64
}

// Event is a canonical, validated event record.
type Event struct {
	Name        string   `json:"name"`
	Date        string   `json:"date"`               // YYYY-MM-DD, required
	EndDate     string   `json:"end_date,omitempty"` // set for multi-day events
	Time        string   `json:"time,omitempty"`     // display string, e.g. "7:00 PM"
	Location    string   `json:"location,omitempty"`
	Address     string   `json:"address,omitempty"`
	Price       string   `json:"price,omitempty"` // "Free" or a currency-prefixed literal
	Description string   `json:"description,omitempty"`
	Categories  []string `json:"categories"`
	Latitude    float64  `json:"latitude,omitempty"`
	Longitude   float64  `json:"longitude,omitempty"`
	URL         string   `json:"url"`
	Source      string   `json:"source"`
}

// Snapshot is the canonical catalog file: the full event set plus the time
// it was last written.
type Snapshot struct {
	Events  []*Event `json:"events"`
	Updated string   `json:"updated"`
}

// Key returns the event's identity key. Two events with the same key are
// the same event; the deduplicator keeps only one. The URL is compared
// verbatim, with no scheme or query normalization.
func (e *Event) Key() string {
	return e.URL
}

// When returns the event's start date.
func (e *Event) When() (time.Time, error) {
	return time.Parse(DateLayout, e.Date)
}

// EndWhen returns the event's end date, falling back to the start date for
// single-day events.
func (e *Event) EndWhen() (time.Time, error) {
	if e.EndDate != "" {
		return time.Parse(DateLayout, e.EndDate)
	}
	return e.When()
}

// Ongoing reports whether the event has not yet finished as of today.
// Multi-day events stay ongoing until their end date passes.
func (e *Event) Ongoing(today time.Time) bool {
	end, err := e.EndWhen()
	if err != nil {
		return false
	}
	day := time.Date(today.Year(), today.Month(), today.Day(), 0, 0, 0, 0, time.UTC)
	return !end.Before(day)
}

// HasCoordinates reports whether enrichment has already populated the
// event's location.
func (e *Event) HasCoordinates() bool {
	return e.Latitude != 0 || e.Longitude != 0
}

// Validate checks the canonical invariants: non-empty name, a parseable
// date, an identity key, and a non-empty category set.
func (e *Event) Validate() error {
	if strings.TrimSpace(e.Name) == "" {
		return fmt.Errorf("event has empty name (url=%s)", e.URL)
	}
	if _, err := e.When(); err != nil {
		return fmt.Errorf("event %q has invalid date %q: %w", e.Name, e.Date, err)
	}
	if e.EndDate != "" {
		if _, err := time.Parse(DateLayout, e.EndDate); err != nil {
			return fmt.Errorf("event %q has invalid end date %q: %w", e.Name, e.EndDate, err)
		}
	}
	if e.URL == "" {
		return fmt.Errorf("event %q has no url", e.Name)
	}
	if len(e.Categories) == 0 {
		return fmt.Errorf("event %q has no categories", e.Name)
	}
	return nil
}

// Truncate applies the canonical length bounds to name and description.
func (e *Event) Truncate() {
	e.Name = truncate(e.Name, MaxNameLen)
	e.Description = truncate(e.Description, MaxDescriptionLen)
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	// Cut on a rune boundary so truncation never splits a multibyte char.
	runes := []rune(s)
	for len(string(runes)) > max {
		runes = runes[:len(runes)-1]
	}
	return string(runes)
}

// NewSnapshot creates an empty catalog snapshot.
func NewSnapshot() *Snapshot {
	return &Snapshot{Events: []*Event{}}
}
