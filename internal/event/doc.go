// Package event defines the canonical event record shared by the whole
// pipeline: the untrusted RawEvent emitted by source adapters, the trusted
// Event stored in the catalog, and the Snapshot shape of the catalog file.
package event
