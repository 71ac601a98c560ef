// Package store is the gateway to the external event database. The pipeline
// pulls existing identity keys to seed deduplication, pushes admitted events
// one at a time, and runs a cleanup pass that archives events whose dates
// have passed.
package store

import (
	"context"
	"time"

	"github.com/atopofconscience/mehfil/internal/event"
	"github.com/atopofconscience/mehfil/internal/logger"
)

// Entry is a stored event's handle as returned by FindBefore: enough to
// decide keep-or-archive without fetching the full record.
type Entry struct {
	ID      string // store-side record id, used for archiving
	Key     string // identity key (url)
	EndDate string // YYYY-MM-DD, empty for single-day events
}

// Gateway is the capability surface the external store exposes.
type Gateway interface {
	// ExistingKeys returns every identity key currently stored.
	ExistingKeys(ctx context.Context) (map[string]struct{}, error)

	// Create pushes one admitted event.
	Create(ctx context.Context, evt *event.Event) error

	// FindBefore returns entries whose start date is before the given day.
	FindBefore(ctx context.Context, day time.Time) ([]Entry, error)

	// Archive removes one entry from the live set.
	Archive(ctx context.Context, id string) error
}

// CleanupResult summarizes one cleanup pass.
type CleanupResult struct {
	Archived int
	Kept     int // multi-day events still ongoing
	Errors   int
}

// Cleanup archives stored events whose dates have fully passed. A multi-day
// event matched by the before-today query is kept while its end date is
// still today or later. Per-entry failures are counted and the pass
// continues.
func Cleanup(ctx context.Context, gw Gateway, today time.Time) (CleanupResult, error) {
	var res CleanupResult

	day := time.Date(today.Year(), today.Month(), today.Day(), 0, 0, 0, 0, time.UTC)
	entries, err := gw.FindBefore(ctx, day)
	if err != nil {
		return res, err
	}

	for _, entry := range entries {
		if entry.EndDate != "" {
			end, err := time.Parse(event.DateLayout, entry.EndDate)
			if err == nil && !end.Before(day) {
				res.Kept++
				continue
			}
		}

		if err := gw.Archive(ctx, entry.ID); err != nil {
			res.Errors++
			logger.Error("archiving past event failed", logger.Fields{"id": entry.ID, "key": entry.Key}, err)
			continue
		}
		res.Archived++
	}

	return res, nil
}
