package geocode

import (
	"context"
	"time"

	"golang.org/x/time/rate"

	"github.com/atopofconscience/mehfil/internal/event"
	"github.com/atopofconscience/mehfil/internal/logger"
)

// Throttle gates calls to the external geocoding provider. Tests inject a
// no-op so enrichment runs without real delays.
type Throttle interface {
	Wait(ctx context.Context) error
}

// NewProviderThrottle returns the production throttle: one call per second,
// which is what Nominatim's usage policy allows.
func NewProviderThrottle() Throttle {
	return rate.NewLimiter(rate.Every(time.Second), 1)
}

// NoThrottle is an unlimited Throttle for tests and for providers without a
// rate policy.
type NoThrottle struct{}

func (NoThrottle) Wait(ctx context.Context) error { return ctx.Err() }

// Enricher fills in coordinates for events that lack them. Enrichment never
// changes an event's identity and is idempotent: events that already carry
// coordinates are skipped.
type Enricher struct {
	geocoder Geocoder
	throttle Throttle
}

// NewEnricher creates an Enricher around a geocoding capability.
func NewEnricher(geocoder Geocoder, throttle Throttle) *Enricher {
	if throttle == nil {
		throttle = NewProviderThrottle()
	}
	return &Enricher{geocoder: geocoder, throttle: throttle}
}

// Enrich resolves coordinates for every event in the slice, in place, and
// returns the number of events updated. Resolution order: known-venue table,
// then the external provider, then the city-center fallback, so the
// coordinate fields are always populated once this pass has run.
func (e *Enricher) Enrich(ctx context.Context, events []*event.Event) int {
	updated := 0
	for _, evt := range events {
		if evt.HasCoordinates() {
			continue
		}

		coords := e.resolve(ctx, evt)
		evt.Latitude = coords.Lat
		evt.Longitude = coords.Lon
		updated++

		if ctx.Err() != nil {
			break
		}
	}
	return updated
}

func (e *Enricher) resolve(ctx context.Context, evt *event.Event) Coordinates {
	location := evt.Location
	if location == "" {
		location = evt.Address
	}
	if location == "" {
		return BostonCenter
	}

	if coords, ok := LookupVenue(location); ok {
		return coords
	}

	// The network path is the pipeline's latency bottleneck: one call per
	// second against the free provider.
	if err := e.throttle.Wait(ctx); err != nil {
		return BostonCenter
	}
	coords, err := e.geocoder.Geocode(ctx, location)
	if err != nil {
		logger.Warn("geocoding failed, using city center", logger.Fields{
			"event":    evt.Name,
			"location": location,
			"error":    err.Error(),
		})
		return BostonCenter
	}
	return coords
}
