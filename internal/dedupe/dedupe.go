// Package dedupe enforces the one-stored-event-per-URL invariant. A
// Deduplicator is seeded once per run with the identity keys already in the
// store, then consulted for every candidate; a key is only ever admitted
// once across the lifetime of the catalog.
package dedupe

import "github.com/atopofconscience/mehfil/internal/event"

// Deduplicator tracks identity keys seen so far in a run.
type Deduplicator struct {
	seen    map[string]struct{}
	skipped int
}

// New creates a Deduplicator seeded with the keys already present in the
// store.
func New(existing map[string]struct{}) *Deduplicator {
	seen := make(map[string]struct{}, len(existing))
	for k := range existing {
		seen[k] = struct{}{}
	}
	return &Deduplicator{seen: seen}
}

// NewFromKeys creates a Deduplicator from a key slice.
func NewFromKeys(keys []string) *Deduplicator {
	seen := make(map[string]struct{}, len(keys))
	for _, k := range keys {
		seen[k] = struct{}{}
	}
	return &Deduplicator{seen: seen}
}

// Admit decides whether a candidate event is new. The first occurrence of
// a key is admitted and remembered; every later occurrence is rejected,
// whether it came up earlier in the run or was already in the store.
func (d *Deduplicator) Admit(evt *event.Event) bool {
	key := evt.Key()
	if _, dup := d.seen[key]; dup {
		d.skipped++
		return false
	}
	d.seen[key] = struct{}{}
	return true
}

// Skipped returns the number of rejected duplicates so far.
func (d *Deduplicator) Skipped() int {
	return d.skipped
}
