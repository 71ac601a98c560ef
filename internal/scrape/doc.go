// Package scrape collects raw event listings from community sources.
//
// Each source is an Adapter producing untrusted RawEvent records; the
// pipeline normalizes, categorizes, and deduplicates downstream. Adapters
// share one Fetcher for HTTP fetching and HTML parsing, and an adapter
// failure never aborts a run.
package scrape
