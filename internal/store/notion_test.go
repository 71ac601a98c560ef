package store

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/atopofconscience/mehfil/internal/event"
)

func testGateway(t *testing.T, handler http.HandlerFunc) *NotionGateway {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	gw, err := NewNotionGateway("secret-token", "db-123")
	if err != nil {
		t.Fatalf("NewNotionGateway() error: %v", err)
	}
	gw.baseURL = srv.URL
	return gw
}

func TestNewNotionGatewayRequiresCredentials(t *testing.T) {
	if _, err := NewNotionGateway("", "db"); err == nil {
		t.Error("expected error for missing token")
	}
	if _, err := NewNotionGateway("tok", ""); err == nil {
		t.Error("expected error for missing database id")
	}
}

func TestExistingKeysPaginates(t *testing.T) {
	calls := 0
	gw := testGateway(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer secret-token" {
			t.Errorf("missing auth header")
		}
		calls++
		if calls == 1 {
			w.Write([]byte(`{
				"results": [{"id":"a","properties":{"URL":{"url":"https://example.com/e/1"}}}],
				"has_more": true, "next_cursor": "c2"
			}`))
			return
		}

		var body map[string]interface{}
		json.NewDecoder(r.Body).Decode(&body)
		if body["start_cursor"] != "c2" {
			t.Errorf("expected cursor c2, got %v", body["start_cursor"])
		}
		w.Write([]byte(`{
			"results": [
				{"id":"b","properties":{"URL":{"url":"https://example.com/e/2"}}},
				{"id":"c","properties":{"URL":{"url":""}}}
			],
			"has_more": false
		}`))
	})

	keys, err := gw.ExistingKeys(context.Background())
	if err != nil {
		t.Fatalf("ExistingKeys() error: %v", err)
	}
	if len(keys) != 2 {
		t.Errorf("expected 2 keys (blank url skipped), got %d", len(keys))
	}
	if _, ok := keys["https://example.com/e/1"]; !ok {
		t.Error("missing key from first page")
	}
}

func TestFindBeforeParsesEndDates(t *testing.T) {
	gw := testGateway(t, func(w http.ResponseWriter, r *http.Request) {
		var body map[string]interface{}
		json.NewDecoder(r.Body).Decode(&body)
		filter, _ := body["filter"].(map[string]interface{})
		if filter == nil {
			t.Error("expected a date filter")
		}

		w.Write([]byte(`{
			"results": [
				{"id":"p1","properties":{
					"URL":{"url":"https://example.com/e/1"},
					"Date":{"date":{"start":"2026-03-01","end":"2026-03-12T00:00:00.000-05:00"}}
				}},
				{"id":"p2","properties":{
					"URL":{"url":"https://example.com/e/2"},
					"Date":{"date":{"start":"2026-03-01"}}
				}}
			],
			"has_more": false
		}`))
	})

	entries, err := gw.FindBefore(context.Background(), time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC))
	if err != nil {
		t.Fatalf("FindBefore() error: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(entries))
	}
	if entries[0].EndDate != "2026-03-12" {
		t.Errorf("end date should be trimmed to the date component, got %q", entries[0].EndDate)
	}
	if entries[1].EndDate != "" {
		t.Errorf("single-day entry should have empty end date, got %q", entries[1].EndDate)
	}
}

func TestCreateSendsProperties(t *testing.T) {
	var received map[string]interface{}
	gw := testGateway(t, func(w http.ResponseWriter, r *http.Request) {
		json.NewDecoder(r.Body).Decode(&received)
		w.Write([]byte(`{}`))
	})

	evt := &event.Event{
		Name:       "Nowruz Celebration",
		Date:       "2026-03-20",
		Time:       "6:00 PM",
		Location:   "Cambridge",
		Price:      "Free",
		Categories: []string{"Middle Eastern", "Cultural Festival"},
		Latitude:   42.3736,
		Longitude:  -71.1097,
		URL:        "https://example.com/e/nowruz",
		Source:     "Eventbrite",
	}

	if err := gw.Create(context.Background(), evt); err != nil {
		t.Fatalf("Create() error: %v", err)
	}

	props, _ := received["properties"].(map[string]interface{})
	if props == nil {
		t.Fatal("no properties in request body")
	}
	for _, want := range []string{"Name", "Date", "Source", "URL", "Time", "Location", "Price", "Category", "Latitude", "Longitude"} {
		if _, ok := props[want]; !ok {
			t.Errorf("missing property %s", want)
		}
	}
	if _, ok := props["Description"]; ok {
		t.Error("empty description should be omitted")
	}
}

func TestArchiveError(t *testing.T) {
	gw := testGateway(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})

	if err := gw.Archive(context.Background(), "missing-page"); err == nil {
		t.Error("expected error for non-200 response")
	}
}
