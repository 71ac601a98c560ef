package notifier

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"html/template"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/atopofconscience/mehfil/internal/curate"
	"github.com/atopofconscience/mehfil/internal/event"
	"github.com/atopofconscience/mehfil/internal/logger"
	"github.com/atopofconscience/mehfil/internal/subscriber"
)

const (
	brevoSendURL = "https://api.brevo.com/v3/smtp/email"
	senderEmail  = "hello@mehfil.com"
	senderName   = "Mehfil Boston"
)

// Mailer sends a single HTML email.
type Mailer interface {
	Send(ctx context.Context, toEmail, toName, subject, html string) error
}

// BrevoMailer sends transactional email through the Brevo API.
type BrevoMailer struct {
	apiKey     string
	httpClient *http.Client
	sendURL    string
}

// NewBrevoMailer creates a mailer. The API key must be non-empty.
func NewBrevoMailer(apiKey string) (*BrevoMailer, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("missing Brevo API key")
	}
	return &BrevoMailer{
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: 30 * time.Second},
		sendURL:    brevoSendURL,
	}, nil
}

type brevoParty struct {
	Email string `json:"email"`
	Name  string `json:"name,omitempty"`
}

type brevoSendRequest struct {
	Sender      brevoParty   `json:"sender"`
	To          []brevoParty `json:"to"`
	Subject     string       `json:"subject"`
	HTMLContent string       `json:"htmlContent"`
}

// Send posts one email. Brevo answers 201 on acceptance.
func (m *BrevoMailer) Send(ctx context.Context, toEmail, toName, subject, html string) error {
	payload := brevoSendRequest{
		Sender:      brevoParty{Email: senderEmail, Name: senderName},
		To:          []brevoParty{{Email: toEmail, Name: toName}},
		Subject:     subject,
		HTMLContent: html,
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("encoding email: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, m.sendURL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("building email request: %w", err)
	}
	req.Header.Set("api-key", m.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := m.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("sending email: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("brevo send returned %d: %s", resp.StatusCode, strings.TrimSpace(string(detail)))
	}
	return nil
}

// EmailNotifier sends a personalized digest email to each subscriber.
// Subscribers with preferences get a fresh curation over the full
// upcoming pool; everyone else gets the general picks.
type EmailNotifier struct {
	mailer      Mailer
	subscribers []*subscriber.Subscriber
}

// NewEmailNotifier creates an email notifier for the given audience.
func NewEmailNotifier(mailer Mailer, subs []*subscriber.Subscriber) *EmailNotifier {
	return &EmailNotifier{mailer: mailer, subscribers: subs}
}

// Notify emails every subscriber. Individual send failures are logged
// and counted; an error is returned only when nothing went out.
func (n *EmailNotifier) Notify(ctx context.Context, d *Digest) error {
	if len(n.subscribers) == 0 {
		logger.Info("no subscribers to email", nil)
		return nil
	}

	subject := fmt.Sprintf("Your Boston Events This Week - %s", time.Now().Format("January 02"))

	sent, failed := 0, 0
	for _, sub := range n.subscribers {
		picks := d.Picks
		if sub.HasPreferences() {
			picks = curate.Pick(d.Upcoming, d.Condition, sub.Audience())
		}

		html, err := renderEmail(sub, picks)
		if err != nil {
			return fmt.Errorf("rendering email: %w", err)
		}

		if err := n.mailer.Send(ctx, sub.Identifier, sub.DisplayName, subject, html); err != nil {
			logger.Warn("email send failed", logger.Fields{"error": err.Error()})
			failed++
			continue
		}
		sent++
	}

	logger.Info("digest emails sent", logger.Fields{"sent": sent, "failed": failed})
	if sent == 0 && failed > 0 {
		return fmt.Errorf("all %d digest emails failed", failed)
	}
	return nil
}

type emailCard struct {
	DateStr  string
	TimeStr  string
	Name     string
	URL      string
	Location string
	Price    string
	Free     bool
}

type emailData struct {
	Greeting    string
	Interests   string
	Cards       []emailCard
	Unsubscribe template.URL
}

// unsubscribePlaceholder is substituted by Brevo at send time.
const unsubscribePlaceholder = template.URL("{{ unsubscribe }}")

var emailTmpl = template.Must(template.New("digest").Parse(`<!DOCTYPE html>
<html>
<head>
    <meta charset="utf-8">
    <meta name="viewport" content="width=device-width, initial-scale=1.0">
</head>
<body style="font-family:-apple-system,BlinkMacSystemFont,'Segoe UI',Roboto,sans-serif;background:#f7fafc;margin:0;padding:20px;">
    <div style="max-width:600px;margin:0 auto;background:#f7fafc;">
        <div style="background:linear-gradient(135deg,#1e3a5f 0%,#2c5282 100%);color:white;padding:24px;border-radius:12px 12px 0 0;text-align:center;">
            <h1 style="margin:0;font-size:28px;">☕ Mehfil</h1>
            <p style="margin:8px 0 0;opacity:0.9;">Your Weekly Boston Events</p>
        </div>
        <div style="background:white;padding:24px;border-radius:0 0 12px 12px;">
            <p style="font-size:16px;color:#2d3748;">{{.Greeting}}</p>
{{if .Cards}}
            <p style="font-size:16px;color:#2d3748;">
                Here are this week's events picked just for you based on your interests in <strong>{{.Interests}}</strong>:
            </p>
            <div style="margin:24px 0;">
{{range .Cards}}
                <div style="border:1px solid #e2e8f0;border-radius:12px;padding:16px;margin-bottom:16px;background:white;">
                    <div style="color:#718096;font-size:13px;margin-bottom:4px;">{{.DateStr}} &bull; {{.TimeStr}}</div>
                    <a href="{{.URL}}" style="color:#1e3a5f;font-size:18px;font-weight:600;text-decoration:none;">{{.Name}}</a>
                    <div style="color:#4a5568;font-size:14px;margin-top:8px;">📍 {{.Location}}</div>
{{if .Free}}
                    <div style="margin-top:8px;"><span style="background:#059669;color:white;padding:2px 8px;border-radius:4px;font-size:12px;">FREE</span></div>
{{else if .Price}}
                    <div style="margin-top:8px;"><span style="background:#c53030;color:white;padding:2px 8px;border-radius:4px;font-size:12px;">{{.Price}}</span></div>
{{end}}
                </div>
{{end}}
            </div>
{{else}}
            <p style="font-size:16px;color:#2d3748;">It's a quiet week for your interests, but there might be other great events happening!</p>
{{end}}
            <div style="text-align:center;margin-top:24px;">
                <a href="https://atopofconscience.github.io/mehfil/"
                   style="display:inline-block;background:#1e3a5f;color:white;padding:12px 32px;border-radius:8px;text-decoration:none;font-weight:600;">
                    See All Events
                </a>
            </div>
            <p style="font-size:14px;color:#718096;margin-top:32px;text-align:center;">
                You're receiving this because you signed up for Mehfil weekly picks.<br>
                <a href="{{.Unsubscribe}}" style="color:#718096;">Unsubscribe</a>
            </p>
        </div>
    </div>
</body>
</html>
`))

func renderEmail(sub *subscriber.Subscriber, picks []*event.Event) (string, error) {
	data := emailData{
		Greeting:    sub.Greeting(),
		Interests:   interestTags(sub.Interests),
		Cards:       make([]emailCard, 0, len(picks)),
		Unsubscribe: unsubscribePlaceholder,
	}

	for _, evt := range picks {
		card := emailCard{
			Name:     evt.Name,
			URL:      evt.URL,
			DateStr:  fullDate(evt.Date),
			TimeStr:  evt.Time,
			Location: evt.Location,
			Price:    evt.Price,
			Free:     strings.Contains(strings.ToLower(evt.Price), "free"),
		}
		if card.TimeStr == "" {
			card.TimeStr = "Time TBA"
		}
		if card.Location == "" {
			card.Location = "Location TBA"
		}
		if card.URL == "" {
			card.URL = "#"
		}
		data.Cards = append(data.Cards, card)
	}

	var buf bytes.Buffer
	if err := emailTmpl.Execute(&buf, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}

func interestTags(interests []string) string {
	if len(interests) == 0 {
		return "all events"
	}
	return strings.Join(interests, ", ")
}

// fullDate renders a canonical date as "Monday, January 02".
func fullDate(date string) string {
	t, err := time.Parse(event.DateLayout, date)
	if err != nil {
		return date
	}
	return t.Format("Monday, January 02")
}
