package scrape

import (
	"context"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/atopofconscience/mehfil/internal/event"
)

// ISBCC scrapes the Islamic Society of Boston Cultural Center events
// page. The venue never moves, so location and coordinates are fixed.
type ISBCC struct {
	fetcher *Fetcher
	baseURL string
}

const (
	isbccURL      = "https://www.isbcc.org"
	isbccLocation = "Islamic Society of Boston Cultural Center"
	isbccAddress  = "100 Malcolm X Blvd, Boston, MA 02119"
	isbccLat      = 42.3307
	isbccLon      = -71.0834

	// the page lists recurring programs too; cap how many items one
	// run will take from each selector sweep
	isbccMaxItems = 20
)

// NewISBCC creates the adapter.
func NewISBCC(f *Fetcher) *ISBCC {
	return &ISBCC{fetcher: f, baseURL: isbccURL}
}

// Name identifies the source in logs and event records.
func (s *ISBCC) Name() string { return "ISBCC" }

// Scrape fetches the events page and parses whatever event markup the
// current site build uses.
func (s *ISBCC) Scrape(ctx context.Context) ([]event.RawEvent, error) {
	doc, err := s.fetcher.Document(ctx, s.baseURL+"/events")
	if err != nil {
		return nil, err
	}
	return s.parseEvents(doc), nil
}

// parseEvents tries article markup first, then event/tribe class patterns
// the site has used across WordPress rebuilds, then calendar links.
func (s *ISBCC) parseEvents(doc *goquery.Document) []event.RawEvent {
	items := doc.Find("article")
	if items.Length() == 0 {
		items = doc.Find(`div[class*="event"], div[class*="tribe"], li[class*="event"]`)
	}

	seen := make(map[string]bool)
	var raws []event.RawEvent

	items.EachWithBreak(func(i int, item *goquery.Selection) bool {
		if i >= isbccMaxItems {
			return false
		}
		raw, ok := s.parseItem(item)
		if !ok || seen[raw.URL] {
			return true
		}
		seen[raw.URL] = true
		raws = append(raws, raw)
		return true
	})

	doc.Find(`a[class*="tribe"]`).EachWithBreak(func(i int, link *goquery.Selection) bool {
		if i >= isbccMaxItems {
			return false
		}
		raw, ok := s.parseCalendarLink(link)
		if !ok || seen[raw.URL] {
			return true
		}
		seen[raw.URL] = true
		raws = append(raws, raw)
		return true
	})

	return raws
}

func (s *ISBCC) parseItem(item *goquery.Selection) (event.RawEvent, bool) {
	link := item.Find("a[href]").First()
	href, ok := link.Attr("href")
	if !ok {
		return event.RawEvent{}, false
	}

	name := strings.TrimSpace(item.Find("h2, h3, h4").First().Text())
	if name == "" {
		name = strings.TrimSpace(link.Text())
	}
	if len(name) < 3 {
		return event.RawEvent{}, false
	}

	dateText := strings.TrimSpace(item.Find("time").First().Text())
	if dateText == "" {
		dateText = strings.TrimSpace(item.Find(`span[class*="date"], div[class*="date"]`).First().Text())
	}

	description := strings.TrimSpace(item.Find(`p[class*="description"], div[class*="description"]`).First().Text())
	if description == "" {
		description = strings.TrimSpace(item.Find("p").First().Text())
	}

	return s.fixedVenue(event.RawEvent{
		Name:        name,
		DateText:    dateText,
		Description: description,
		URL:         absoluteURL(s.baseURL, href),
	}), true
}

func (s *ISBCC) parseCalendarLink(link *goquery.Selection) (event.RawEvent, bool) {
	href, ok := link.Attr("href")
	if !ok || !strings.Contains(strings.ToLower(href), "event") {
		return event.RawEvent{}, false
	}
	name := strings.TrimSpace(link.Text())
	if len(name) < 3 {
		return event.RawEvent{}, false
	}
	return s.fixedVenue(event.RawEvent{
		Name: name,
		URL:  absoluteURL(s.baseURL, href),
	}), true
}

func (s *ISBCC) fixedVenue(raw event.RawEvent) event.RawEvent {
	raw.Location = isbccLocation
	raw.Address = isbccAddress
	raw.Latitude = isbccLat
	raw.Longitude = isbccLon
	raw.Source = s.Name()
	return raw
}
