// Package weather fetches the 7-day Boston forecast from Open-Meteo and
// reduces it to the single Condition that drives indoor/outdoor curation
// bias.
package weather

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"
)

const (
	openMeteoBaseURL = "https://api.open-meteo.com/v1/forecast"
	requestTimeout   = 10 * time.Second
	forecastDays     = 7
)

// Condition is the derived weather category for the distribution window.
type Condition string

const (
	ConditionSnow     Condition = "snow"
	ConditionFreezing Condition = "freezing"
	ConditionRainy    Condition = "rainy"
	ConditionHeat     Condition = "heat"
	ConditionMixed    Condition = "mixed"
	ConditionNice     Condition = "nice"
)

// Derivation thresholds, in the units Open-Meteo reports (°C, mm, cm).
const (
	snowTotalThreshold  = 3.0  // cm over the window
	snowDaysThreshold   = 2    // distinct days with snowfall
	freezingAvgLow      = -5.0 // °C average daily low
	rainTotalThreshold  = 20.0 // mm over the window
	heatAvgHigh         = 30.0 // °C average daily high
	adverseDayThreshold = 3    // days with an adverse weather code
	// WMO weather codes 51 and above are drizzle, rain, snow, or storms.
	adverseWeatherCode = 51
)

// Snapshot holds the per-day forecast for the 7-day horizon.
type Snapshot struct {
	Dates         []string  `json:"time"`
	TempMax       []float64 `json:"temperature_2m_max"`
	TempMin       []float64 `json:"temperature_2m_min"`
	Precipitation []float64 `json:"precipitation_sum"`
	Snowfall      []float64 `json:"snowfall_sum"`
	WeatherCodes  []int     `json:"weathercode"`
}

// Note renders a short human-readable summary for digest headers.
func (c Condition) Note() string {
	switch c {
	case ConditionSnow:
		return "Snow expected this week - cozy indoor picks!"
	case ConditionFreezing:
		return "Freezing temps - warm indoor spots!"
	case ConditionRainy:
		return "Rainy week ahead - indoor events!"
	case ConditionHeat:
		return "Heat wave - stay cool indoors!"
	case ConditionMixed:
		return "Mixed weather - mostly indoor picks"
	default:
		return "Great week ahead - get outside!"
	}
}

// Emoji returns the digest-header emoji for this condition.
func (c Condition) Emoji() string {
	switch c {
	case ConditionSnow:
		return "❄️"
	case ConditionFreezing:
		return "🥶"
	case ConditionRainy:
		return "🌧️"
	case ConditionHeat:
		return "🔥"
	case ConditionMixed:
		return "🌦️"
	default:
		return "☀️"
	}
}

// PrefersIndoor reports whether curation should favor indoor events under
// this condition.
func (c Condition) PrefersIndoor() bool {
	switch c {
	case ConditionSnow, ConditionFreezing, ConditionRainy, ConditionHeat, ConditionMixed:
		return true
	}
	return false
}

// Derive reduces a forecast snapshot to a Condition. Checks run in severity
// order; the first match wins.
func Derive(s *Snapshot) Condition {
	if s == nil || len(s.TempMax) == 0 {
		return ConditionNice
	}

	var totalSnow, totalRain float64
	snowDays := 0
	for _, cm := range s.Snowfall {
		totalSnow += cm
		if cm > 0 {
			snowDays++
		}
	}
	for _, mm := range s.Precipitation {
		totalRain += mm
	}
	adverseDays := 0
	for _, code := range s.WeatherCodes {
		if code >= adverseWeatherCode {
			adverseDays++
		}
	}

	switch {
	case totalSnow >= snowTotalThreshold || snowDays >= snowDaysThreshold:
		return ConditionSnow
	case average(s.TempMin) <= freezingAvgLow:
		return ConditionFreezing
	case totalRain >= rainTotalThreshold:
		return ConditionRainy
	case average(s.TempMax) >= heatAvgHigh:
		return ConditionHeat
	case adverseDays >= adverseDayThreshold:
		return ConditionMixed
	default:
		return ConditionNice
	}
}

func average(xs []float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	var sum float64
	for _, x := range xs {
		sum += x
	}
	return sum / float64(len(xs))
}

// Client fetches forecasts from the free Open-Meteo API (no key required).
type Client struct {
	httpClient *http.Client
	baseURL    string
	lat        float64
	lon        float64
	timezone   string
}

// NewClient creates a forecast client for a fixed coordinate.
func NewClient(lat, lon float64, timezone string) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: requestTimeout},
		baseURL:    openMeteoBaseURL,
		lat:        lat,
		lon:        lon,
		timezone:   timezone,
	}
}

// Forecast fetches the 7-day daily forecast.
func (c *Client) Forecast(ctx context.Context) (*Snapshot, error) {
	params := url.Values{
		"latitude":      {fmt.Sprintf("%.4f", c.lat)},
		"longitude":     {fmt.Sprintf("%.4f", c.lon)},
		"daily":         {"temperature_2m_max,temperature_2m_min,precipitation_sum,snowfall_sum,weathercode"},
		"timezone":      {c.timezone},
		"forecast_days": {fmt.Sprintf("%d", forecastDays)},
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching forecast: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("open-meteo API error (status %d)", resp.StatusCode)
	}

	var payload struct {
		Daily Snapshot `json:"daily"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("decoding forecast: %w", err)
	}
	return &payload.Daily, nil
}
