// Package catalog persists the canonical event set as a JSON file, the
// `{"events": [...], "updated": ts}` document the dashboard and the
// distribution tooling both read.
package catalog

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/atopofconscience/mehfil/internal/event"
)

const fileName = "events.json"

// Catalog handles loading and saving the canonical event file.
type Catalog struct {
	dataDir string
}

// New creates a Catalog rooted at dataDir, creating the directory if
// needed. A leading "~/" expands to the user's home directory.
func New(dataDir string) (*Catalog, error) {
	if strings.HasPrefix(dataDir, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("getting home directory: %w", err)
		}
		dataDir = filepath.Join(home, dataDir[2:])
	}

	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	return &Catalog{dataDir: dataDir}, nil
}

// Path returns the catalog file location.
func (c *Catalog) Path() string {
	return filepath.Join(c.dataDir, fileName)
}

// Load reads the catalog file. A missing file yields an empty snapshot, not
// an error, so a first run starts from nothing.
func (c *Catalog) Load() (*event.Snapshot, error) {
	data, err := os.ReadFile(c.Path())
	if err != nil {
		if os.IsNotExist(err) {
			return event.NewSnapshot(), nil
		}
		return nil, fmt.Errorf("reading catalog: %w", err)
	}

	var snapshot event.Snapshot
	if err := json.Unmarshal(data, &snapshot); err != nil {
		return nil, fmt.Errorf("parsing catalog: %w", err)
	}
	if snapshot.Events == nil {
		snapshot.Events = []*event.Event{}
	}
	return &snapshot, nil
}

// Save writes the event set with a fresh updated timestamp.
func (c *Catalog) Save(events []*event.Event) error {
	snapshot := &event.Snapshot{
		Events:  events,
		Updated: time.Now().UTC().Format(time.RFC3339),
	}

	data, err := json.MarshalIndent(snapshot, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding catalog: %w", err)
	}

	if err := os.WriteFile(c.Path(), data, 0644); err != nil {
		return fmt.Errorf("writing catalog: %w", err)
	}
	return nil
}
