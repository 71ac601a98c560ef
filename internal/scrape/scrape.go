package scrape

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/cenkalti/backoff/v4"

	"github.com/atopofconscience/mehfil/internal/event"
)

const (
	// UserAgent mirrors a desktop browser; several sources serve empty
	// shells to obvious bots.
	UserAgent = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/121.0.0.0 Safari/537.36"
	Timeout   = 30 * time.Second

	fetchRetries = 2
)

// Adapter is one event source. Scrape returns whatever the site listed;
// cleanliness is the pipeline's problem, not the adapter's.
type Adapter interface {
	Name() string
	Scrape(ctx context.Context) ([]event.RawEvent, error)
}

// Fetcher fetches pages and parses them into goquery documents, retrying
// transient failures with exponential backoff.
type Fetcher struct {
	client *http.Client
}

// NewFetcher creates a Fetcher with the shared timeout.
func NewFetcher() *Fetcher {
	return &Fetcher{client: &http.Client{Timeout: Timeout}}
}

// Document fetches url and parses the response body as HTML. Server
// errors are retried; 4xx responses are permanent.
func (f *Fetcher) Document(ctx context.Context, url string) (*goquery.Document, error) {
	var doc *goquery.Document

	operation := func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return backoff.Permanent(fmt.Errorf("creating request: %w", err))
		}
		req.Header.Set("User-Agent", UserAgent)
		req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")

		resp, err := f.client.Do(req)
		if err != nil {
			return fmt.Errorf("fetching page: %w", err)
		}
		defer resp.Body.Close()

		if resp.StatusCode >= http.StatusInternalServerError {
			return fmt.Errorf("unexpected status code: %d", resp.StatusCode)
		}
		if resp.StatusCode != http.StatusOK {
			return backoff.Permanent(fmt.Errorf("unexpected status code: %d", resp.StatusCode))
		}

		doc, err = goquery.NewDocumentFromReader(resp.Body)
		if err != nil {
			return backoff.Permanent(fmt.Errorf("parsing HTML: %w", err))
		}
		return nil
	}

	policy := backoff.WithContext(backoff.WithMaxRetries(backoff.NewExponentialBackOff(), fetchRetries), ctx)
	if err := backoff.Retry(operation, policy); err != nil {
		return nil, fmt.Errorf("fetching %s: %w", url, err)
	}
	return doc, nil
}

// absoluteURL resolves href against base when the site links relatively.
func absoluteURL(base, href string) string {
	if href == "" {
		return ""
	}
	if len(href) >= 4 && href[:4] == "http" {
		return href
	}
	return base + href
}
