package notifier

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestBrevoMailerSend(t *testing.T) {
	var gotReq brevoSendRequest
	var gotKey string

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotKey = r.Header.Get("api-key")
		if err := json.NewDecoder(r.Body).Decode(&gotReq); err != nil {
			t.Errorf("decoding request: %v", err)
		}
		w.WriteHeader(http.StatusCreated)
	}))
	defer srv.Close()

	m, err := NewBrevoMailer("test-key")
	if err != nil {
		t.Fatalf("NewBrevoMailer() error: %v", err)
	}
	m.sendURL = srv.URL

	err = m.Send(context.Background(), "a@example.com", "Ayesha", "Your Picks", "<html></html>")
	if err != nil {
		t.Fatalf("Send() error = %v, want nil", err)
	}

	if gotKey != "test-key" {
		t.Errorf("api-key header = %q, want %q", gotKey, "test-key")
	}
	if len(gotReq.To) != 1 || gotReq.To[0].Email != "a@example.com" {
		t.Errorf("unexpected recipient: %+v", gotReq.To)
	}
	if gotReq.Subject != "Your Picks" {
		t.Errorf("subject = %q", gotReq.Subject)
	}
	if gotReq.Sender.Email != senderEmail {
		t.Errorf("sender = %q, want %q", gotReq.Sender.Email, senderEmail)
	}
}

func TestBrevoMailerSendRejected(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"code":"unauthorized"}`, http.StatusUnauthorized)
	}))
	defer srv.Close()

	m, err := NewBrevoMailer("bad-key")
	if err != nil {
		t.Fatalf("NewBrevoMailer() error: %v", err)
	}
	m.sendURL = srv.URL

	if err := m.Send(context.Background(), "a@example.com", "", "s", "<html></html>"); err == nil {
		t.Error("Send() error = nil, want error on non-201 response")
	}
}

func TestNewBrevoMailerRequiresKey(t *testing.T) {
	if _, err := NewBrevoMailer(""); err == nil {
		t.Error("NewBrevoMailer(\"\") error = nil, want error")
	}
}
