// Package cli implements the command-line interface for mehfil.
//
// The cli package provides the Cobra-based CLI: scraping sources into the
// event store, geocoding and exporting the catalog, archiving past events,
// listing subscribers, and composing the weekly digest. It wires the
// scrape, pipeline, store, curate, and notifier packages together.
package cli
