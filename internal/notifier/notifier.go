package notifier

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/atopofconscience/mehfil/internal/event"
	"github.com/atopofconscience/mehfil/internal/weather"
)

// Digest is a week's worth of curated output ready for delivery.
type Digest struct {
	// Picks are the general recommendations, already curated and capped.
	Picks []*event.Event
	// Upcoming is the full pool of events inside the window, used to
	// re-curate per subscriber when preferences are present.
	Upcoming []*event.Event
	// Condition is the derived weather for the window.
	Condition weather.Condition
}

// Notifier defines the interface for delivering a weekly digest
type Notifier interface {
	// Notify delivers the digest to the channel's audience
	Notify(ctx context.Context, d *Digest) error
}

const (
	maxNameChars     = 40
	maxLocationChars = 30
)

// FormatText renders the digest as a plain-text message: a weather
// header followed by numbered picks with date, time, and location.
func FormatText(d *Digest) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s Your %d Picks This Week\n%s\n", d.Condition.Emoji(), len(d.Picks), d.Condition.Note())

	for i, evt := range d.Picks {
		b.WriteString("\n")
		fmt.Fprintf(&b, "%d. %s\n", i+1, clip(evt.Name, maxNameChars))
		b.WriteString("   " + friendlyDate(evt.Date))
		if evt.Time != "" {
			b.WriteString(" " + evt.Time)
		}
		if evt.Location != "" {
			b.WriteString("\n   " + clip(evt.Location, maxLocationChars))
		}
		if strings.Contains(strings.ToLower(evt.Price), "free") {
			b.WriteString(" - FREE")
		}
		b.WriteString("\n")
	}

	b.WriteString("\nmehfil.com\n")
	return b.String()
}

// friendlyDate reformats a canonical date as "Mon Jan 02". The raw
// value is passed through when it does not parse.
func friendlyDate(date string) string {
	t, err := time.Parse(event.DateLayout, date)
	if err != nil {
		return date
	}
	return t.Format("Mon Jan 02")
}

func clip(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max]) + "..."
}
