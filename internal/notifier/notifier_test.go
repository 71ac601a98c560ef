package notifier

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/atopofconscience/mehfil/internal/curate"
	"github.com/atopofconscience/mehfil/internal/event"
	"github.com/atopofconscience/mehfil/internal/subscriber"
	"github.com/atopofconscience/mehfil/internal/weather"
)

func sampleDigest() *Digest {
	picks := []*event.Event{
		{
			Name:     "Diwali Mela Boston",
			Date:     "2026-01-17",
			Time:     "6:00 PM",
			Location: "Cambridge Community Center",
			Price:    "Free",
			URL:      "https://example.com/diwali",
		},
		{
			Name: "Arabic Calligraphy Workshop at the Museum of Fine Arts Boston",
			Date: "2026-01-18",
			URL:  "https://example.com/calligraphy",
		},
	}
	return &Digest{Picks: picks, Upcoming: picks, Condition: weather.ConditionSnow}
}

func TestFormatText(t *testing.T) {
	got := FormatText(sampleDigest())

	wants := []string{
		"❄️ Your 2 Picks This Week",
		"cozy indoor picks",
		"1. Diwali Mela Boston",
		"Sat Jan 17 6:00 PM",
		"Cambridge Community Center - FREE",
		"2. Arabic Calligraphy Workshop at the Museu...",
		"Sun Jan 18",
		"mehfil.com",
	}
	for _, want := range wants {
		if !strings.Contains(got, want) {
			t.Errorf("FormatText() missing %q in:\n%s", want, got)
		}
	}
}

func TestFormatTweet(t *testing.T) {
	tests := []struct {
		name     string
		event    *event.Event
		contains []string
	}{
		{
			name: "complete event",
			event: &event.Event{
				Name:     "Diwali Mela Boston",
				Date:     "2026-01-17",
				Time:     "6:00 PM",
				Location: "Cambridge Community Center",
				Price:    "Free",
				URL:      "https://example.com/diwali",
			},
			contains: []string{
				"Diwali Mela Boston",
				"Sat Jan 17 6:00 PM",
				"Cambridge Community Center",
				"FREE",
				"https://example.com/diwali",
				"#Boston",
			},
		},
		{
			name: "event without time or location",
			event: &event.Event{
				Name: "Bazaar",
				Date: "2026-01-18",
				URL:  "https://example.com/bazaar",
			},
			contains: []string{"Bazaar", "Sun Jan 18", "#Mehfil"},
		},
		{
			name: "very long name gets truncated",
			event: &event.Event{
				Name: strings.Repeat("Boston Community Mehfil Night ", 12),
				Date: "2026-01-19",
				URL:  "https://example.com/long",
			},
			contains: []string{"..."},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := formatTweet(tt.event)
			if len(got) > tweetLimit {
				t.Errorf("formatTweet() length = %d, want <= %d", len(got), tweetLimit)
			}
			for _, want := range tt.contains {
				if !strings.Contains(got, want) {
					t.Errorf("formatTweet() missing %q in tweet:\n%s", want, got)
				}
			}
		})
	}
}

func TestDryRunNotifier(t *testing.T) {
	var buf bytes.Buffer
	n := NewDryRunNotifierTo(&buf)

	if err := n.Notify(context.Background(), sampleDigest()); err != nil {
		t.Fatalf("Notify() error = %v, want nil", err)
	}
	out := buf.String()
	if !strings.Contains(out, "Digest Preview") {
		t.Errorf("missing preview banner in output:\n%s", out)
	}
	if !strings.Contains(out, "2 picks") {
		t.Errorf("missing pick count in output:\n%s", out)
	}
}

type fakeMailer struct {
	sent []string // recipient emails
	html []string
	err  error
}

func (m *fakeMailer) Send(_ context.Context, toEmail, _, _, html string) error {
	if m.err != nil {
		return m.err
	}
	m.sent = append(m.sent, toEmail)
	m.html = append(m.html, html)
	return nil
}

func TestEmailNotifierPersonalizes(t *testing.T) {
	curate.SetClock(clockwork.NewFakeClockAt(time.Date(2026, 1, 15, 9, 0, 0, 0, time.UTC)))
	defer curate.SetClock(nil)

	upcoming := []*event.Event{
		{
			Name:       "Diwali Mela Boston",
			Date:       "2026-01-17",
			Categories: []string{"South Asian", "Cultural Festival"},
			URL:        "https://example.com/diwali",
		},
		{
			Name:       "Oud Night",
			Date:       "2026-01-18",
			Categories: []string{"Middle Eastern", "Music & Dance"},
			URL:        "https://example.com/oud",
		},
	}
	d := &Digest{Picks: upcoming, Upcoming: upcoming, Condition: weather.ConditionNice}

	mailer := &fakeMailer{}
	n := NewEmailNotifier(mailer, []*subscriber.Subscriber{
		{Identifier: "arab-fan@example.com", DisplayName: "Layla", Interests: []string{"arab"}},
		{Identifier: "everyone@example.com"},
	})

	if err := n.Notify(context.Background(), d); err != nil {
		t.Fatalf("Notify() error = %v, want nil", err)
	}
	if len(mailer.sent) != 2 {
		t.Fatalf("sent %d emails, want 2", len(mailer.sent))
	}

	// The arab-interest subscriber only gets the Middle Eastern pick.
	personalized := mailer.html[0]
	if !strings.Contains(personalized, "Oud Night") {
		t.Errorf("personalized email missing matching event:\n%s", personalized)
	}
	if strings.Contains(personalized, "Diwali Mela Boston") {
		t.Errorf("personalized email includes non-matching event:\n%s", personalized)
	}
	if !strings.Contains(personalized, "Hi Layla,") {
		t.Errorf("personalized email missing greeting:\n%s", personalized)
	}

	// The no-preference subscriber gets the general picks.
	general := mailer.html[1]
	if !strings.Contains(general, "Diwali Mela Boston") || !strings.Contains(general, "Oud Night") {
		t.Errorf("general email missing picks:\n%s", general)
	}
	if !strings.Contains(general, "Hi there,") {
		t.Errorf("general email missing default greeting:\n%s", general)
	}
}

func TestEmailNotifierQuietWeek(t *testing.T) {
	curate.SetClock(clockwork.NewFakeClockAt(time.Date(2026, 1, 15, 9, 0, 0, 0, time.UTC)))
	defer curate.SetClock(nil)

	upcoming := []*event.Event{
		{
			Name:       "Diwali Mela Boston",
			Date:       "2026-01-17",
			Categories: []string{"South Asian"},
			URL:        "https://example.com/diwali",
		},
	}
	d := &Digest{Picks: upcoming, Upcoming: upcoming, Condition: weather.ConditionNice}

	mailer := &fakeMailer{}
	n := NewEmailNotifier(mailer, []*subscriber.Subscriber{
		{Identifier: "arab-fan@example.com", Interests: []string{"arab"}},
	})

	if err := n.Notify(context.Background(), d); err != nil {
		t.Fatalf("Notify() error = %v, want nil", err)
	}
	if len(mailer.html) != 1 {
		t.Fatalf("sent %d emails, want 1", len(mailer.html))
	}
	if !strings.Contains(mailer.html[0], "quiet week") {
		t.Errorf("expected quiet-week body, got:\n%s", mailer.html[0])
	}
}

func TestEmailNotifierAllFailed(t *testing.T) {
	mailer := &fakeMailer{err: context.DeadlineExceeded}
	n := NewEmailNotifier(mailer, []*subscriber.Subscriber{
		{Identifier: "a@example.com"},
	})

	if err := n.Notify(context.Background(), sampleDigest()); err == nil {
		t.Error("Notify() error = nil, want error when every send fails")
	}
}
