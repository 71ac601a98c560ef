// Package pipeline wires the aggregation run: adapters produce raw
// listings, which are normalized, categorized, deduplicated, and pushed
// to the event store.
package pipeline

import (
	"context"
	"errors"
	"fmt"

	"github.com/atopofconscience/mehfil/internal/category"
	"github.com/atopofconscience/mehfil/internal/dedupe"
	"github.com/atopofconscience/mehfil/internal/event"
	"github.com/atopofconscience/mehfil/internal/logger"
	"github.com/atopofconscience/mehfil/internal/normalize"
	"github.com/atopofconscience/mehfil/internal/scrape"
	"github.com/atopofconscience/mehfil/internal/store"
)

// Summary counts what one run did.
type Summary struct {
	Found    int // raw listings produced by adapters
	Added    int // events created in the store
	Skipped  int // duplicates rejected by the identity key
	Unparsed int // listings whose date never parsed
	Invalid  int // normalized events that failed validation
	Errors   int // store create failures
}

// Pipeline runs the aggregation flow against a store gateway.
type Pipeline struct {
	adapters []scrape.Adapter
	gateway  store.Gateway
}

// New creates a pipeline over the given sources and store.
func New(adapters []scrape.Adapter, gateway store.Gateway) *Pipeline {
	return &Pipeline{adapters: adapters, gateway: gateway}
}

// Run executes one aggregation pass. An adapter failure is logged and the
// run continues with the remaining sources; only store access failures
// abort the run.
func (p *Pipeline) Run(ctx context.Context) (*Summary, error) {
	existing, err := p.gateway.ExistingKeys(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading existing keys: %w", err)
	}
	dd := dedupe.New(existing)

	sum := &Summary{}
	counters := logger.NewCounters()

	for _, adapter := range p.adapters {
		raws, err := adapter.Scrape(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return sum, ctx.Err()
			}
			logger.Warn("adapter failed", logger.Fields{"adapter": adapter.Name(), "error": err.Error()})
			counters.Incr("adapter_failures")
		}
		logger.Info("adapter finished", logger.Fields{"adapter": adapter.Name(), "found": len(raws)})
		sum.Found += len(raws)

		for _, raw := range raws {
			if err := ctx.Err(); err != nil {
				return sum, err
			}
			p.ingest(ctx, raw, dd, sum, counters)
		}
	}

	sum.Skipped = dd.Skipped()
	logger.Info("run complete", logger.Fields{
		"found":    sum.Found,
		"added":    sum.Added,
		"skipped":  sum.Skipped,
		"unparsed": sum.Unparsed,
		"invalid":  sum.Invalid,
		"errors":   sum.Errors,
	})
	return sum, nil
}

// ingest takes one raw listing through normalize, categorize, validate,
// dedupe, and create.
func (p *Pipeline) ingest(ctx context.Context, raw event.RawEvent, dd *dedupe.Deduplicator, sum *Summary, counters *logger.Counters) {
	evt, err := Normalize(raw)
	if err != nil {
		if errors.Is(err, normalize.ErrUnparsedDate) {
			sum.Unparsed++
			counters.Incr("unparsed_dates")
			logger.Debug("dropping listing with unparseable date", logger.Fields{
				"name": raw.Name, "date_text": raw.DateText, "source": raw.Source,
			})
			return
		}
		sum.Invalid++
		logger.Debug("dropping invalid listing", logger.Fields{"name": raw.Name, "error": err.Error()})
		return
	}

	if !dd.Admit(evt) {
		return
	}

	if err := p.gateway.Create(ctx, evt); err != nil {
		sum.Errors++
		logger.Warn("store create failed", logger.Fields{"name": evt.Name, "error": err.Error()})
		return
	}
	sum.Added++
}

// Normalize turns a raw listing into a canonical event, or reports why it
// cannot be one.
func Normalize(raw event.RawEvent) (*event.Event, error) {
	res, err := normalize.DateTime(raw.DateText, raw.TimeText, nil)
	if err != nil {
		return nil, err
	}

	evt := &event.Event{
		Name:        raw.Name,
		Date:        res.Date.Format(event.DateLayout),
		Time:        res.Time,
		Location:    raw.Location,
		Address:     raw.Address,
		Price:       raw.Price,
		Description: raw.Description,
		Categories:  category.Classify(raw.Name, raw.Description),
		Latitude:    raw.Latitude,
		Longitude:   raw.Longitude,
		URL:         raw.URL,
		Source:      raw.Source,
	}
	if !res.EndDate.IsZero() {
		evt.EndDate = res.EndDate.Format(event.DateLayout)
	}

	evt.Truncate()
	if err := evt.Validate(); err != nil {
		return nil, err
	}
	return evt, nil
}
