package geocode

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/cenkalti/backoff/v4"
)

const (
	nominatimBaseURL = "https://nominatim.openstreetmap.org/search"
	userAgent        = "mehfil/1.0 (github.com/atopofconscience/mehfil)"
	requestTimeout   = 10 * time.Second
)

// ErrNoResult is returned when the provider has no match for a query.
var ErrNoResult = fmt.Errorf("geocoder returned no results")

// Geocoder resolves free-text locations to coordinates. Implemented by
// NominatimClient in production and by fakes in tests.
type Geocoder interface {
	Geocode(ctx context.Context, location string) (Coordinates, error)
}

// NominatimClient geocodes via the free OpenStreetMap Nominatim API.
// Nominatim allows at most one request per second, so callers must route
// requests through a Throttle.
type NominatimClient struct {
	httpClient *http.Client
	baseURL    string
	city       string
	region     string
}

// NewNominatimClient creates a geocoding client scoped to a city and region
// ("Boston", "MA"); queries are rendered as "{location}, {city}, {region}".
func NewNominatimClient(city, region string) *NominatimClient {
	return &NominatimClient{
		httpClient: &http.Client{Timeout: requestTimeout},
		baseURL:    nominatimBaseURL,
		city:       city,
		region:     region,
	}
}

// Geocode resolves a location text to coordinates, taking the provider's
// first result. Transient failures are retried with exponential backoff.
func (c *NominatimClient) Geocode(ctx context.Context, location string) (Coordinates, error) {
	params := url.Values{
		"q":      {fmt.Sprintf("%s, %s, %s", location, c.city, c.region)},
		"format": {"json"},
		"limit":  {"1"},
	}
	fullURL := c.baseURL + "?" + params.Encode()

	var coords Coordinates
	op := func() error {
		var err error
		coords, err = c.doRequest(ctx, fullURL)
		if err == ErrNoResult {
			// An empty result set is an answer, not an outage.
			return backoff.Permanent(err)
		}
		return err
	}

	policy := backoff.WithContext(backoff.WithMaxRetries(backoff.NewExponentialBackOff(), 2), ctx)
	if err := backoff.Retry(op, policy); err != nil {
		return Coordinates{}, fmt.Errorf("geocoding %q: %w", location, err)
	}
	return coords, nil
}

func (c *NominatimClient) doRequest(ctx context.Context, fullURL string) (Coordinates, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
	if err != nil {
		return Coordinates{}, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return Coordinates{}, fmt.Errorf("fetching geocode result: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return Coordinates{}, fmt.Errorf("nominatim API error (status %d)", resp.StatusCode)
	}

	// Nominatim returns coordinates as strings.
	var results []struct {
		Lat string `json:"lat"`
		Lon string `json:"lon"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&results); err != nil {
		return Coordinates{}, fmt.Errorf("decoding response: %w", err)
	}
	if len(results) == 0 {
		return Coordinates{}, ErrNoResult
	}

	lat, err := strconv.ParseFloat(results[0].Lat, 64)
	if err != nil {
		return Coordinates{}, fmt.Errorf("parsing latitude %q: %w", results[0].Lat, err)
	}
	lon, err := strconv.ParseFloat(results[0].Lon, 64)
	if err != nil {
		return Coordinates{}, fmt.Errorf("parsing longitude %q: %w", results[0].Lon, err)
	}
	return Coordinates{Lat: lat, Lon: lon}, nil
}
