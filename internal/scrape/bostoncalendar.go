package scrape

import (
	"context"
	"net/url"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/atopofconscience/mehfil/internal/category"
	"github.com/atopofconscience/mehfil/internal/event"
	"github.com/atopofconscience/mehfil/internal/logger"
)

const bostonCalendarURL = "https://www.thebostoncalendar.com"

// bostonCalendarSearches are the listing searches run on top of the main
// events page.
var bostonCalendarSearches = []string{
	"indian", "middle eastern", "cultural", "south asian", "persian", "arabic",
	"painting", "art class", "pottery", "dance class", "crafts", "workshop",
	"cooking class", "mosaic", "calligraphy", "yoga", "meditation", "world music",
}

// listicle headlines that show up between real events on the listing page.
var guideTitleFragments = []string{
	"best ", "top ", "things to do", "guide to", "where to",
}

var clockPattern = regexp.MustCompile(`(?i)(\d{1,2}:\d{2})([ap])`)

// BostonCalendar scrapes thebostoncalendar.com listings and detail pages.
type BostonCalendar struct {
	fetcher *Fetcher
	baseURL string
	// detail pages carry the real event website, admission, and start
	// time; skipped when false to keep tests and previews fast
	fetchDetails bool
}

// NewBostonCalendar creates the adapter.
func NewBostonCalendar(f *Fetcher) *BostonCalendar {
	return &BostonCalendar{fetcher: f, baseURL: bostonCalendarURL, fetchDetails: true}
}

// Name identifies the source in logs and event records.
func (b *BostonCalendar) Name() string { return "Boston Calendar" }

// Scrape walks the main listing plus each search, deduplicating by URL
// within the run. Individual page failures are logged and skipped.
func (b *BostonCalendar) Scrape(ctx context.Context) ([]event.RawEvent, error) {
	pages := make([]string, 0, len(bostonCalendarSearches)+1)
	pages = append(pages, b.baseURL+"/events")
	for _, term := range bostonCalendarSearches {
		pages = append(pages, b.baseURL+"/events?search="+url.QueryEscape(term))
	}

	seen := make(map[string]bool)
	var raws []event.RawEvent
	for _, page := range pages {
		if err := ctx.Err(); err != nil {
			return raws, err
		}
		doc, err := b.fetcher.Document(ctx, page)
		if err != nil {
			logger.Warn("boston calendar page failed", logger.Fields{"url": page, "error": err.Error()})
			continue
		}
		for _, raw := range b.parseListing(doc) {
			if seen[raw.URL] {
				continue
			}
			seen[raw.URL] = true
			if b.fetchDetails {
				b.enrichDetail(ctx, &raw)
			}
			raws = append(raws, raw)
		}
	}
	return raws, nil
}

// parseListing extracts relevant events from an events listing page.
func (b *BostonCalendar) parseListing(doc *goquery.Document) []event.RawEvent {
	var raws []event.RawEvent

	doc.Find("li.event").Each(func(_ int, item *goquery.Selection) {
		// Pinned listings are ads, not events.
		if item.Find("i.fa-thumbtack").Length() > 0 {
			return
		}

		link := item.Find("h3 a").First()
		href, ok := link.Attr("href")
		if !ok {
			return
		}
		name := strings.TrimSpace(link.Text())
		if name == "" || isGuideTitle(name) {
			return
		}

		dateText := strings.TrimSpace(item.Find("p.time").First().Text())
		if dateText == "" {
			return
		}

		location := strings.TrimSpace(item.Find("p.location").First().Text())
		if location == "" {
			location = "Boston, MA"
		}

		if !category.Relevant(name, "") {
			return
		}

		raws = append(raws, event.RawEvent{
			Name:     name,
			DateText: dateText,
			Location: location,
			URL:      absoluteURL(b.baseURL, href),
			Source:   b.Name(),
		})
	})

	return raws
}

// enrichDetail fills price, description, start time, and the real event
// website from the detail page. Best effort: the listing record stands on
// its own if anything here fails.
func (b *BostonCalendar) enrichDetail(ctx context.Context, raw *event.RawEvent) {
	doc, err := b.fetcher.Document(ctx, raw.URL)
	if err != nil {
		return
	}

	if raw.TimeText == "" {
		if m := clockPattern.FindStringSubmatch(doc.Find("span#starting_time").Text()); m != nil {
			meridiem := "AM"
			if strings.EqualFold(m[2], "p") {
				meridiem = "PM"
			}
			raw.TimeText = m[1] + " " + meridiem
		}
	}

	doc.Find("b").Each(func(_ int, label *goquery.Selection) {
		text := strings.ToLower(strings.TrimSpace(label.Text()))
		para := label.ParentsFiltered("p").First()
		if para.Length() == 0 {
			return
		}

		switch {
		case strings.Contains(text, "event website"):
			if href, ok := para.Find("a").First().Attr("href"); ok &&
				href != "" && !strings.Contains(href, "thebostoncalendar.com") {
				raw.URL = href
			}
		case strings.Contains(text, "admission"):
			full := strings.TrimSpace(para.Text())
			if _, value, found := strings.Cut(full, ":"); found {
				price := strings.Join(strings.Fields(value), " ")
				if len(price) > 50 {
					price = price[:50]
				}
				if price != "" {
					if strings.Contains(strings.ToLower(price), "free") {
						raw.Price = "Free"
					} else {
						raw.Price = price
					}
				}
			}
		}
	})

	if desc := strings.TrimSpace(doc.Find("div#event_description").Text()); desc != "" {
		raw.Description = desc
	}
}

func isGuideTitle(name string) bool {
	lower := strings.ToLower(name)
	for _, frag := range guideTitleFragments {
		if strings.Contains(lower, frag) {
			return true
		}
	}
	return false
}
