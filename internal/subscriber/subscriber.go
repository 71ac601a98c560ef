// Package subscriber manages the audience for personalized digests: who
// gets one, and which interests, neighborhoods, and price preferences shape
// their picks.
package subscriber

import (
	"strings"
	"time"

	"github.com/atopofconscience/mehfil/internal/curate"
)

// Subscriber is one digest recipient.
type Subscriber struct {
	Identifier   string    `json:"identifier"` // email address or phone number
	DisplayName  string    `json:"display_name,omitempty"`
	Interests    []string  `json:"interests,omitempty"`
	Location     string    `json:"location,omitempty"`
	PricePrefs   []string  `json:"price_prefs,omitempty"`
	SubscribedAt time.Time `json:"subscribed_at"`
}

// Storage persists the subscriber list.
type Storage interface {
	Load() ([]*Subscriber, error)
	Save(subs []*Subscriber) error
}

// HasPreferences reports whether this subscriber narrowed their picks at
// all. Subscribers without preferences get the general top picks.
func (s *Subscriber) HasPreferences() bool {
	if len(s.Interests) > 0 || len(s.PricePrefs) > 0 {
		return true
	}
	return s.Location != "" && !strings.EqualFold(s.Location, "all")
}

// Audience converts the subscriber's preferences to curation input.
// Subscribers with no preferences yield nil (no filtering).
func (s *Subscriber) Audience() *curate.Audience {
	if !s.HasPreferences() {
		return nil
	}
	return &curate.Audience{
		Interests:  s.Interests,
		Location:   s.Location,
		PricePrefs: s.PricePrefs,
	}
}

// Greeting renders the salutation for this subscriber's digest.
func (s *Subscriber) Greeting() string {
	if s.DisplayName == "" {
		return "Hi there,"
	}
	return "Hi " + s.DisplayName + ","
}
