package scrape

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/atopofconscience/mehfil/internal/event"
	"github.com/atopofconscience/mehfil/internal/logger"
)

const eventbriteURL = "https://www.eventbrite.com/d/ma--boston"

// eventbriteSearches are the slugged search terms crawled per run;
// community terms first, broader interest terms after.
var eventbriteSearches = []string{
	"indian", "south-asian", "pakistani", "bengali", "desi",
	"middle-eastern", "arab", "persian", "bollywood",
	"holi", "diwali", "eid", "iftar", "nowruz",
	"painting-class", "art-workshop", "pottery", "dance-class", "crafts",
	"drawing", "mosaic", "calligraphy", "cultural", "world-music",
	"international", "asian", "global-cuisine", "cooking-class",
	"meditation", "yoga", "mindfulness",
}

// Eventbrite scrapes Boston search listings through their JSON-LD
// structured data rather than the markup, which churns constantly.
type Eventbrite struct {
	fetcher *Fetcher
	baseURL string
}

// NewEventbrite creates the adapter.
func NewEventbrite(f *Fetcher) *Eventbrite {
	return &Eventbrite{fetcher: f, baseURL: eventbriteURL}
}

// Name identifies the source in logs and event records.
func (e *Eventbrite) Name() string { return "Eventbrite" }

// Scrape runs every search term, deduplicating by URL within the run.
func (e *Eventbrite) Scrape(ctx context.Context) ([]event.RawEvent, error) {
	seen := make(map[string]bool)
	var raws []event.RawEvent

	for _, term := range eventbriteSearches {
		if err := ctx.Err(); err != nil {
			return raws, err
		}
		doc, err := e.fetcher.Document(ctx, e.baseURL+"/"+term+"/")
		if err != nil {
			logger.Warn("eventbrite search failed", logger.Fields{"term": term, "error": err.Error()})
			continue
		}
		for _, raw := range e.parseSearch(doc) {
			if raw.URL == "" || seen[raw.URL] {
				continue
			}
			seen[raw.URL] = true
			raws = append(raws, raw)
		}
	}
	return raws, nil
}

// ldEvent is the slice of schema.org Event we consume.
type ldEvent struct {
	Type        string     `json:"@type"`
	Name        string     `json:"name"`
	URL         string     `json:"url"`
	StartDate   string     `json:"startDate"`
	Description string     `json:"description"`
	Location    ldLocation `json:"location"`
	// offers may be a single object or a list of ticket classes
	Offers json.RawMessage `json:"offers"`
}

type ldLocation struct {
	Name    string    `json:"name"`
	Address ldAddress `json:"address"`
	Geo     ldGeo     `json:"geo"`
}

type ldAddress struct {
	StreetAddress   string `json:"streetAddress"`
	AddressLocality string `json:"addressLocality"`
	AddressRegion   string `json:"addressRegion"`
}

type ldGeo struct {
	Latitude  json.Number `json:"latitude"`
	Longitude json.Number `json:"longitude"`
}

type ldOffer struct {
	Price     json.Number `json:"price"`
	LowPrice  json.Number `json:"lowPrice"`
	HighPrice json.Number `json:"highPrice"`
	Currency  string      `json:"priceCurrency"`
}

type ldItemList struct {
	ItemListElement []struct {
		Item ldEvent `json:"item"`
	} `json:"itemListElement"`
}

// parseSearch pulls events out of a search page's ld+json blocks; both
// the itemList wrapper and a bare Event are handled.
func (e *Eventbrite) parseSearch(doc *goquery.Document) []event.RawEvent {
	var raws []event.RawEvent

	doc.Find(`script[type="application/ld+json"]`).Each(func(_ int, script *goquery.Selection) {
		blob := []byte(script.Text())

		var list ldItemList
		if err := json.Unmarshal(blob, &list); err == nil && len(list.ItemListElement) > 0 {
			for _, el := range list.ItemListElement {
				if el.Item.Type == "Event" {
					if raw, ok := e.toRaw(el.Item); ok {
						raws = append(raws, raw)
					}
				}
			}
			return
		}

		var single ldEvent
		if err := json.Unmarshal(blob, &single); err == nil && single.Type == "Event" {
			if raw, ok := e.toRaw(single); ok {
				raws = append(raws, raw)
			}
		}
	})

	return raws
}

func (e *Eventbrite) toRaw(ld ldEvent) (event.RawEvent, bool) {
	if ld.Name == "" {
		return event.RawEvent{}, false
	}

	raw := event.RawEvent{
		Name:        ld.Name,
		DateText:    ld.StartDate,
		Location:    ld.Location.Name,
		Description: ld.Description,
		URL:         ld.URL,
		Source:      e.Name(),
		Price:       parseOffers(ld.Offers),
	}
	if raw.Location == "" {
		raw.Location = "Boston, MA"
	}

	var parts []string
	for _, p := range []string{ld.Location.Address.StreetAddress, ld.Location.Address.AddressLocality, ld.Location.Address.AddressRegion} {
		if p != "" {
			parts = append(parts, p)
		}
	}
	raw.Address = strings.Join(parts, ", ")

	if lat, err := ld.Location.Geo.Latitude.Float64(); err == nil {
		if lon, err := ld.Location.Geo.Longitude.Float64(); err == nil {
			raw.Latitude, raw.Longitude = lat, lon
		}
	}

	return raw, true
}

// parseOffers renders a price display string out of schema.org offers.
func parseOffers(blob json.RawMessage) string {
	if len(blob) == 0 {
		return ""
	}

	var single ldOffer
	if err := json.Unmarshal(blob, &single); err == nil {
		if low, errL := single.LowPrice.Float64(); errL == nil {
			if high, errH := single.HighPrice.Float64(); errH == nil {
				return priceRange(low, high)
			}
			if low == 0 {
				return "Free"
			}
			return fmt.Sprintf("From $%s", trimZeros(low))
		}
		if p, err := single.Price.Float64(); err == nil {
			if p == 0 {
				return "Free"
			}
			if single.Currency != "" && single.Currency != "USD" {
				return fmt.Sprintf("%s %s", trimZeros(p), single.Currency)
			}
			return "$" + trimZeros(p)
		}
		return ""
	}

	var many []ldOffer
	if err := json.Unmarshal(blob, &many); err == nil && len(many) > 0 {
		var prices []float64
		for _, o := range many {
			if p, err := o.Price.Float64(); err == nil {
				prices = append(prices, p)
			}
		}
		if len(prices) == 0 {
			return ""
		}
		min, max := prices[0], prices[0]
		for _, p := range prices[1:] {
			if p < min {
				min = p
			}
			if p > max {
				max = p
			}
		}
		return priceRange(min, max)
	}

	return ""
}

func priceRange(low, high float64) string {
	switch {
	case low == 0 && high == 0:
		return "Free"
	case low == 0:
		return fmt.Sprintf("Free - $%s", trimZeros(high))
	case low == high:
		return "$" + trimZeros(low)
	default:
		return fmt.Sprintf("$%s - $%s", trimZeros(low), trimZeros(high))
	}
}

func trimZeros(f float64) string {
	s := fmt.Sprintf("%.2f", f)
	s = strings.TrimRight(s, "0")
	return strings.TrimRight(s, ".")
}
