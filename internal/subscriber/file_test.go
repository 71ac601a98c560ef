package subscriber

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/atopofconscience/mehfil/internal/crypto"
)

func TestFileStorageRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "subscribers.json")
	fs := NewFileStorage(path, nil)

	subs := []*Subscriber{
		{
			Identifier:   "a@example.com",
			DisplayName:  "Ayesha",
			Interests:    []string{"desi", "food"},
			Location:     "cambridge",
			PricePrefs:   []string{"free"},
			SubscribedAt: time.Date(2026, 1, 5, 0, 0, 0, 0, time.UTC),
		},
		{Identifier: "b@example.com"},
	}

	if err := fs.Save(subs); err != nil {
		t.Fatalf("Save() error: %v", err)
	}

	loaded, err := fs.Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if len(loaded) != 2 {
		t.Fatalf("expected 2 subscribers, got %d", len(loaded))
	}
	if loaded[0].Identifier != "a@example.com" || loaded[0].DisplayName != "Ayesha" {
		t.Errorf("fields not preserved: %+v", loaded[0])
	}
	if len(loaded[0].Interests) != 2 {
		t.Errorf("interests not preserved: %v", loaded[0].Interests)
	}
}

func TestFileStorageMissingFile(t *testing.T) {
	fs := NewFileStorage(filepath.Join(t.TempDir(), "nope.json"), nil)
	subs, err := fs.Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if len(subs) != 0 {
		t.Errorf("expected empty list, got %d", len(subs))
	}
}

func TestFileStorageSealsContactFields(t *testing.T) {
	path := filepath.Join(t.TempDir(), "subscribers.json")
	sealer := crypto.NewSealer("passphrase")
	fs := NewFileStorage(path, sealer)

	subs := []*Subscriber{{Identifier: "secret@example.com", DisplayName: "Ayesha", Location: "cambridge"}}
	if err := fs.Save(subs); err != nil {
		t.Fatalf("Save() error: %v", err)
	}

	// Contact fields must not appear in cleartext on disk; preference
	// fields stay readable.
	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading file: %v", err)
	}
	if strings.Contains(string(raw), "secret@example.com") {
		t.Error("identifier stored in cleartext")
	}
	if strings.Contains(string(raw), "Ayesha") {
		t.Error("display name stored in cleartext")
	}
	if !strings.Contains(string(raw), "cambridge") {
		t.Error("location should stay readable")
	}

	// And the original subscriber slice must not be mutated by sealing.
	if subs[0].Identifier != "secret@example.com" {
		t.Error("Save mutated its input")
	}

	loaded, err := fs.Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if loaded[0].Identifier != "secret@example.com" || loaded[0].DisplayName != "Ayesha" {
		t.Errorf("decryption failed: %+v", loaded[0])
	}
}
