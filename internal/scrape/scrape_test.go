package scrape

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
)

func mustDoc(t *testing.T, html string) *goquery.Document {
	t.Helper()
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		t.Fatalf("parsing fixture HTML: %v", err)
	}
	return doc
}

func TestFetcherRetriesServerErrors(t *testing.T) {
	attempts := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		if attempts < 3 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		w.Write([]byte("<html><body><p>ok</p></body></html>"))
	}))
	defer srv.Close()

	doc, err := NewFetcher().Document(context.Background(), srv.URL)
	if err != nil {
		t.Fatalf("Document() error = %v, want nil", err)
	}
	if attempts != 3 {
		t.Errorf("attempts = %d, want 3", attempts)
	}
	if got := doc.Find("p").Text(); got != "ok" {
		t.Errorf("parsed body = %q", got)
	}
}

func TestFetcherNotFoundIsPermanent(t *testing.T) {
	attempts := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	if _, err := NewFetcher().Document(context.Background(), srv.URL); err == nil {
		t.Fatal("Document() error = nil, want error")
	}
	if attempts != 1 {
		t.Errorf("attempts = %d, want 1 (no retry on 404)", attempts)
	}
}

const bostonCalendarFixture = `<html><body><ul>
<li class="event">
  <i class="fa-thumbtack"></i>
  <h3><a href="/events/1">Pinned Promo Diwali Special</a></h3>
  <p class="time">Saturday, Feb 07, 2026</p>
</li>
<li class="event">
  <h3><a href="/events/2">Best Things To Do This Weekend</a></h3>
  <p class="time">Saturday, Feb 07, 2026</p>
</li>
<li class="event">
  <h3><a href="/events/3">Quarterly Shareholder Briefing</a></h3>
  <p class="time">Saturday, Feb 07, 2026</p>
</li>
<li class="event">
  <h3><a href="/events/4">Diwali Mela Boston</a></h3>
  <p class="time">Saturday, Feb 07, 2026 6:00pm</p>
  <p class="location">Cambridge Community Center</p>
</li>
<li class="event">
  <h3><a href="https://other.example.com/5">Pottery Workshop for Beginners</a></h3>
  <p class="time">Sunday, Feb 08, 2026</p>
</li>
</ul></body></html>`

func TestBostonCalendarParseListing(t *testing.T) {
	b := NewBostonCalendar(NewFetcher())
	raws := b.parseListing(mustDoc(t, bostonCalendarFixture))

	if len(raws) != 2 {
		names := make([]string, len(raws))
		for i, r := range raws {
			names[i] = r.Name
		}
		t.Fatalf("parsed %d events %v, want 2", len(raws), names)
	}

	first := raws[0]
	if first.Name != "Diwali Mela Boston" {
		t.Errorf("name = %q", first.Name)
	}
	if first.URL != bostonCalendarURL+"/events/4" {
		t.Errorf("relative URL not resolved: %q", first.URL)
	}
	if first.DateText != "Saturday, Feb 07, 2026 6:00pm" {
		t.Errorf("date text = %q", first.DateText)
	}
	if first.Location != "Cambridge Community Center" {
		t.Errorf("location = %q", first.Location)
	}
	if first.Source != "Boston Calendar" {
		t.Errorf("source = %q", first.Source)
	}

	second := raws[1]
	if second.URL != "https://other.example.com/5" {
		t.Errorf("absolute URL rewritten: %q", second.URL)
	}
	if second.Location != "Boston, MA" {
		t.Errorf("missing location default = %q", second.Location)
	}
}

const eventbriteFixture = `<html><head>
<script type="application/ld+json">
{
  "itemListElement": [
    {"item": {
      "@type": "Event",
      "name": "Holi Color Festival",
      "url": "https://www.eventbrite.com/e/holi-1",
      "startDate": "2026-03-07T14:00:00-05:00",
      "location": {
        "name": "Artists For Humanity EpiCenter",
        "address": {"streetAddress": "100 W 2nd St", "addressLocality": "Boston", "addressRegion": "MA"},
        "geo": {"latitude": 42.344, "longitude": -71.049}
      },
      "offers": {"lowPrice": 0, "highPrice": 25, "priceCurrency": "USD"}
    }},
    {"item": {
      "@type": "Event",
      "name": "Persian Poetry Night",
      "url": "https://www.eventbrite.com/e/poetry-2",
      "startDate": "2026-03-08",
      "location": {"name": ""},
      "offers": [{"price": 15}, {"price": 30}]
    }},
    {"item": {"@type": "Place", "name": "Not An Event"}}
  ]
}
</script>
</head><body></body></html>`

func TestEventbriteParseSearch(t *testing.T) {
	e := NewEventbrite(NewFetcher())
	raws := e.parseSearch(mustDoc(t, eventbriteFixture))

	if len(raws) != 2 {
		t.Fatalf("parsed %d events, want 2", len(raws))
	}

	holi := raws[0]
	if holi.Name != "Holi Color Festival" {
		t.Errorf("name = %q", holi.Name)
	}
	if holi.DateText != "2026-03-07T14:00:00-05:00" {
		t.Errorf("date text = %q", holi.DateText)
	}
	if holi.Address != "100 W 2nd St, Boston, MA" {
		t.Errorf("address = %q", holi.Address)
	}
	if holi.Latitude != 42.344 || holi.Longitude != -71.049 {
		t.Errorf("coordinates = %v, %v", holi.Latitude, holi.Longitude)
	}
	if holi.Price != "Free - $25" {
		t.Errorf("price = %q", holi.Price)
	}

	poetry := raws[1]
	if poetry.Location != "Boston, MA" {
		t.Errorf("missing location default = %q", poetry.Location)
	}
	if poetry.Price != "$15 - $30" {
		t.Errorf("list offers price = %q", poetry.Price)
	}
}

func TestParseOffers(t *testing.T) {
	tests := []struct {
		name string
		json string
		want string
	}{
		{"free single", `{"price": 0}`, "Free"},
		{"paid single", `{"price": 12.5, "priceCurrency": "USD"}`, "$12.5"},
		{"foreign currency", `{"price": 20, "priceCurrency": "CAD"}`, "20 CAD"},
		{"free range", `{"lowPrice": 0, "highPrice": 0}`, "Free"},
		{"from price", `{"lowPrice": 10}`, "From $10"},
		{"flat range", `{"lowPrice": 10, "highPrice": 10}`, "$10"},
		{"empty", ``, ""},
		{"all free list", `[{"price": 0}, {"price": 0}]`, "Free"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := parseOffers([]byte(tt.json)); got != tt.want {
				t.Errorf("parseOffers(%s) = %q, want %q", tt.json, got, tt.want)
			}
		})
	}
}

const isbccFixture = `<html><body>
<article>
  <h3>Community Iftar Dinner</h3>
  <time>March 05, 2026 6:30 PM</time>
  <p>Break fast together at the center.</p>
  <a href="/events/iftar-dinner">Details</a>
</article>
<article>
  <h3>AB</h3>
  <a href="/events/too-short">x</a>
</article>
<a class="tribe-event-link" href="/event/jummah-lecture">Friday Khutbah Series</a>
<a class="tribe-event-link" href="/about">Not an event link</a>
</body></html>`

func TestISBCCParseEvents(t *testing.T) {
	s := NewISBCC(NewFetcher())
	raws := s.parseEvents(mustDoc(t, isbccFixture))

	if len(raws) != 2 {
		t.Fatalf("parsed %d events, want 2", len(raws))
	}

	iftar := raws[0]
	if iftar.Name != "Community Iftar Dinner" {
		t.Errorf("name = %q", iftar.Name)
	}
	if iftar.DateText != "March 05, 2026 6:30 PM" {
		t.Errorf("date text = %q", iftar.DateText)
	}
	if iftar.Location != isbccLocation || iftar.Address != isbccAddress {
		t.Errorf("fixed venue not applied: %q / %q", iftar.Location, iftar.Address)
	}
	if iftar.Latitude != isbccLat || iftar.Longitude != isbccLon {
		t.Errorf("fixed coordinates not applied: %v, %v", iftar.Latitude, iftar.Longitude)
	}
	if iftar.URL != isbccURL+"/events/iftar-dinner" {
		t.Errorf("url = %q", iftar.URL)
	}

	lecture := raws[1]
	if lecture.Name != "Friday Khutbah Series" {
		t.Errorf("calendar link name = %q", lecture.Name)
	}
	if lecture.URL != isbccURL+"/event/jummah-lecture" {
		t.Errorf("calendar link url = %q", lecture.URL)
	}
}
