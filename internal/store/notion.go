package store

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/atopofconscience/mehfil/internal/event"
)

const (
	notionAPIURL  = "https://api.notion.com/v1"
	notionVersion = "2022-06-28"
	notionTimeout = 15 * time.Second
)

// NotionGateway implements Gateway against a Notion database where each
// event is a page.
type NotionGateway struct {
	token      string
	databaseID string
	httpClient *http.Client
	baseURL    string
}

// NewNotionGateway creates a gateway for the given database. Token and
// database id are required.
func NewNotionGateway(token, databaseID string) (*NotionGateway, error) {
	if token == "" {
		return nil, fmt.Errorf("notion token is required")
	}
	if databaseID == "" {
		return nil, fmt.Errorf("notion database id is required")
	}
	return &NotionGateway{
		token:      token,
		databaseID: databaseID,
		httpClient: &http.Client{Timeout: notionTimeout},
		baseURL:    notionAPIURL,
	}, nil
}

// queryPage is one page of database query results.
type queryPage struct {
	Results []struct {
		ID         string `json:"id"`
		Properties struct {
			URL struct {
				URL string `json:"url"`
			} `json:"URL"`
			Date struct {
				Date struct {
					Start string `json:"start"`
					End   string `json:"end"`
				} `json:"date"`
			} `json:"Date"`
		} `json:"properties"`
	} `json:"results"`
	HasMore    bool   `json:"has_more"`
	NextCursor string `json:"next_cursor"`
}

// ExistingKeys pages through the whole database collecting event URLs.
func (g *NotionGateway) ExistingKeys(ctx context.Context) (map[string]struct{}, error) {
	keys := make(map[string]struct{})

	err := g.queryAll(ctx, nil, func(page *queryPage) {
		for _, r := range page.Results {
			if r.Properties.URL.URL != "" {
				keys[r.Properties.URL.URL] = struct{}{}
			}
		}
	})
	if err != nil {
		return nil, fmt.Errorf("fetching existing keys: %w", err)
	}
	return keys, nil
}

// FindBefore returns entries whose start date precedes the given day.
func (g *NotionGateway) FindBefore(ctx context.Context, day time.Time) ([]Entry, error) {
	filter := map[string]interface{}{
		"property": "Date",
		"date":     map[string]string{"before": day.Format(event.DateLayout)},
	}

	var entries []Entry
	err := g.queryAll(ctx, filter, func(page *queryPage) {
		for _, r := range page.Results {
			end := r.Properties.Date.Date.End
			if len(end) > 10 {
				end = end[:10] // strip any time component
			}
			entries = append(entries, Entry{
				ID:      r.ID,
				Key:     r.Properties.URL.URL,
				EndDate: end,
			})
		}
	})
	if err != nil {
		return nil, fmt.Errorf("querying past events: %w", err)
	}
	return entries, nil
}

// queryAll runs a database query with pagination, invoking collect for each
// page.
func (g *NotionGateway) queryAll(ctx context.Context, filter map[string]interface{}, collect func(*queryPage)) error {
	cursor := ""
	for {
		body := map[string]interface{}{}
		if filter != nil {
			body["filter"] = filter
		}
		if cursor != "" {
			body["start_cursor"] = cursor
		}

		var page queryPage
		url := fmt.Sprintf("%s/databases/%s/query", g.baseURL, g.databaseID)
		if err := g.doRequest(ctx, http.MethodPost, url, body, &page); err != nil {
			return err
		}
		collect(&page)

		if !page.HasMore {
			return nil
		}
		cursor = page.NextCursor
	}
}

// exportPage decodes the full property schema, used when exporting the
// database to the catalog file.
type exportPage struct {
	Results []struct {
		Properties struct {
			Name struct {
				Title []richTextSpan `json:"title"`
			} `json:"Name"`
			Date struct {
				Date struct {
					Start string `json:"start"`
					End   string `json:"end"`
				} `json:"date"`
			} `json:"Date"`
			Time        richTextProp `json:"Time"`
			Location    richTextProp `json:"Location"`
			Address     richTextProp `json:"Address"`
			Price       richTextProp `json:"Price"`
			Description richTextProp `json:"Description"`
			Source      struct {
				Select struct {
					Name string `json:"name"`
				} `json:"select"`
			} `json:"Source"`
			URL struct {
				URL string `json:"url"`
			} `json:"URL"`
			Category struct {
				MultiSelect []struct {
					Name string `json:"name"`
				} `json:"multi_select"`
			} `json:"Category"`
			Latitude struct {
				Number float64 `json:"number"`
			} `json:"Latitude"`
			Longitude struct {
				Number float64 `json:"number"`
			} `json:"Longitude"`
		} `json:"properties"`
	} `json:"results"`
	HasMore    bool   `json:"has_more"`
	NextCursor string `json:"next_cursor"`
}

type richTextSpan struct {
	PlainText string `json:"plain_text"`
}

type richTextProp struct {
	RichText []richTextSpan `json:"rich_text"`
}

func (p richTextProp) text() string {
	if len(p.RichText) == 0 {
		return ""
	}
	return p.RichText[0].PlainText
}

// Fetch pages through the whole database, reconstructing canonical
// events. Pages without a URL or start date are skipped; they cannot
// round-trip.
func (g *NotionGateway) Fetch(ctx context.Context) ([]*event.Event, error) {
	var events []*event.Event

	cursor := ""
	for {
		body := map[string]interface{}{
			"sorts": []map[string]string{{"property": "Date", "direction": "ascending"}},
		}
		if cursor != "" {
			body["start_cursor"] = cursor
		}

		var page exportPage
		url := fmt.Sprintf("%s/databases/%s/query", g.baseURL, g.databaseID)
		if err := g.doRequest(ctx, http.MethodPost, url, body, &page); err != nil {
			return nil, fmt.Errorf("fetching events: %w", err)
		}

		for _, r := range page.Results {
			props := r.Properties
			if props.URL.URL == "" || props.Date.Date.Start == "" {
				continue
			}

			var name string
			if len(props.Name.Title) > 0 {
				name = props.Name.Title[0].PlainText
			}

			start := props.Date.Date.Start
			if len(start) > 10 {
				start = start[:10]
			}
			end := props.Date.Date.End
			if len(end) > 10 {
				end = end[:10]
			}

			categories := make([]string, 0, len(props.Category.MultiSelect))
			for _, c := range props.Category.MultiSelect {
				categories = append(categories, c.Name)
			}

			events = append(events, &event.Event{
				Name:        name,
				Date:        start,
				EndDate:     end,
				Time:        props.Time.text(),
				Location:    props.Location.text(),
				Address:     props.Address.text(),
				Price:       props.Price.text(),
				Description: props.Description.text(),
				Categories:  categories,
				Latitude:    props.Latitude.Number,
				Longitude:   props.Longitude.Number,
				URL:         props.URL.URL,
				Source:      props.Source.Select.Name,
			})
		}

		if !page.HasMore {
			return events, nil
		}
		cursor = page.NextCursor
	}
}

// Create pushes one event as a new page.
func (g *NotionGateway) Create(ctx context.Context, evt *event.Event) error {
	body := map[string]interface{}{
		"parent":     map[string]string{"database_id": g.databaseID},
		"properties": eventProperties(evt),
	}
	url := g.baseURL + "/pages"
	if err := g.doRequest(ctx, http.MethodPost, url, body, nil); err != nil {
		return fmt.Errorf("creating event %q: %w", evt.Name, err)
	}
	return nil
}

// Archive marks a page as archived, removing it from the live set.
func (g *NotionGateway) Archive(ctx context.Context, id string) error {
	body := map[string]interface{}{"archived": true}
	url := g.baseURL + "/pages/" + id
	if err := g.doRequest(ctx, http.MethodPatch, url, body, nil); err != nil {
		return fmt.Errorf("archiving page %s: %w", id, err)
	}
	return nil
}

// eventProperties maps a canonical event onto the database's property
// schema. Optional fields are only written when present.
func eventProperties(evt *event.Event) map[string]interface{} {
	date := map[string]string{"start": evt.Date}
	if evt.EndDate != "" {
		date["end"] = evt.EndDate
	}

	props := map[string]interface{}{
		"Name":   titleProp(evt.Name),
		"Date":   map[string]interface{}{"date": date},
		"Source": map[string]interface{}{"select": map[string]string{"name": evt.Source}},
		"URL":    map[string]interface{}{"url": evt.URL},
	}

	if evt.Time != "" {
		props["Time"] = textProp(evt.Time)
	}
	if evt.Location != "" {
		props["Location"] = textProp(evt.Location)
	}
	if evt.Address != "" {
		props["Address"] = textProp(evt.Address)
	}
	if evt.Price != "" {
		props["Price"] = textProp(evt.Price)
	}
	if evt.Description != "" {
		props["Description"] = textProp(evt.Description)
	}
	if len(evt.Categories) > 0 {
		opts := make([]map[string]string, len(evt.Categories))
		for i, c := range evt.Categories {
			opts[i] = map[string]string{"name": c}
		}
		props["Category"] = map[string]interface{}{"multi_select": opts}
	}
	if evt.HasCoordinates() {
		props["Latitude"] = map[string]interface{}{"number": evt.Latitude}
		props["Longitude"] = map[string]interface{}{"number": evt.Longitude}
	}
	return props
}

func titleProp(s string) map[string]interface{} {
	return map[string]interface{}{
		"title": []map[string]interface{}{
			{"text": map[string]string{"content": s}},
		},
	}
}

func textProp(s string) map[string]interface{} {
	return map[string]interface{}{
		"rich_text": []map[string]interface{}{
			{"text": map[string]string{"content": s}},
		},
	}
}

func (g *NotionGateway) doRequest(ctx context.Context, method, url string, body, out interface{}) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("encoding request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+g.token)
	req.Header.Set("Notion-Version", notionVersion)
	req.Header.Set("Content-Type", "application/json")

	resp, err := g.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("notion request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		// Body intentionally dropped from the error to keep tokens and
		// page content out of logs.
		io.Copy(io.Discard, resp.Body)
		return fmt.Errorf("notion API error (status %d)", resp.StatusCode)
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("decoding response: %w", err)
		}
	}
	return nil
}
