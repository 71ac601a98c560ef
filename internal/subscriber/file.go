package subscriber

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/atopofconscience/mehfil/internal/crypto"
)

// FileStorage keeps subscribers in a local JSON file. Contact identifiers
// and display names are sealed at rest when a Sealer is provided; the
// preference fields stay readable so the file can be inspected.
type FileStorage struct {
	path   string
	sealer *crypto.Sealer
}

// NewFileStorage creates storage at the given path. sealer may be nil.
func NewFileStorage(path string, sealer *crypto.Sealer) *FileStorage {
	return &FileStorage{path: path, sealer: sealer}
}

// Load reads the subscriber list. A missing file is an empty list.
func (f *FileStorage) Load() ([]*Subscriber, error) {
	data, err := os.ReadFile(f.path)
	if err != nil {
		if os.IsNotExist(err) {
			return []*Subscriber{}, nil
		}
		return nil, fmt.Errorf("reading subscribers: %w", err)
	}

	var subs []*Subscriber
	if err := json.Unmarshal(data, &subs); err != nil {
		return nil, fmt.Errorf("parsing subscribers: %w", err)
	}

	for _, s := range subs {
		if s.Identifier, err = f.sealer.Open(s.Identifier); err != nil {
			return nil, fmt.Errorf("decrypting subscriber: %w", err)
		}
		if s.DisplayName, err = f.sealer.Open(s.DisplayName); err != nil {
			return nil, fmt.Errorf("decrypting subscriber: %w", err)
		}
	}
	return subs, nil
}

// Save writes the subscriber list, sealing contact fields.
func (f *FileStorage) Save(subs []*Subscriber) error {
	sealed := make([]*Subscriber, len(subs))
	for i, s := range subs {
		copied := *s
		var err error
		if copied.Identifier, err = f.sealer.Seal(copied.Identifier); err != nil {
			return fmt.Errorf("encrypting subscriber: %w", err)
		}
		if copied.DisplayName, err = f.sealer.Seal(copied.DisplayName); err != nil {
			return fmt.Errorf("encrypting subscriber: %w", err)
		}
		sealed[i] = &copied
	}

	data, err := json.MarshalIndent(sealed, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding subscribers: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(f.path), 0755); err != nil {
		return fmt.Errorf("creating subscriber directory: %w", err)
	}
	if err := os.WriteFile(f.path, data, 0600); err != nil {
		return fmt.Errorf("writing subscribers: %w", err)
	}
	return nil
}
