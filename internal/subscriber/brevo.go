package subscriber

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"
)

const (
	brevoAPIURL   = "https://api.brevo.com/v3"
	brevoTimeout  = 15 * time.Second
	brevoPageSize = 500
)

// BrevoClient fetches the subscriber list from the Brevo contacts API,
// where the signup form stores each contact's interests and preferences as
// custom attributes.
type BrevoClient struct {
	apiKey     string
	httpClient *http.Client
	baseURL    string
}

// NewBrevoClient creates a contacts client. The API key is required.
func NewBrevoClient(apiKey string) (*BrevoClient, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("brevo API key is required")
	}
	return &BrevoClient{
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: brevoTimeout},
		baseURL:    brevoAPIURL,
	}, nil
}

type brevoContact struct {
	Email      string `json:"email"`
	CreatedAt  string `json:"createdAt"`
	Attributes struct {
		FirstName string `json:"FIRSTNAME"`
		Interests string `json:"INTERESTS"`  // comma-separated tags
		Location  string `json:"LOCATION"`   // neighborhood or "all"
		PricePref string `json:"PRICE_PREF"` // comma-separated {free,paid}
	} `json:"attributes"`
}

// Fetch returns all contacts as subscribers.
func (c *BrevoClient) Fetch(ctx context.Context) ([]*Subscriber, error) {
	url := fmt.Sprintf("%s/contacts?limit=%d", c.baseURL, brevoPageSize)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("api-key", c.apiKey)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching contacts: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("brevo API error (status %d)", resp.StatusCode)
	}

	var payload struct {
		Contacts []brevoContact `json:"contacts"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("decoding contacts: %w", err)
	}

	subs := make([]*Subscriber, 0, len(payload.Contacts))
	for _, contact := range payload.Contacts {
		subs = append(subs, contactToSubscriber(contact))
	}
	return subs, nil
}

func contactToSubscriber(c brevoContact) *Subscriber {
	sub := &Subscriber{
		Identifier:  c.Email,
		DisplayName: c.Attributes.FirstName,
		Interests:   splitList(c.Attributes.Interests),
		Location:    c.Attributes.Location,
		PricePrefs:  splitList(c.Attributes.PricePref),
	}
	if t, err := time.Parse(time.RFC3339, c.CreatedAt); err == nil {
		sub.SubscribedAt = t
	}
	return sub
}

// splitList parses a comma-separated attribute, dropping blanks.
func splitList(s string) []string {
	if s == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(s, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
