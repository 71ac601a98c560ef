package notifier

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/dghubble/go-twitter/twitter" //nolint:staticcheck // Using stable v1.1 API
	"github.com/dghubble/oauth1"

	"github.com/atopofconscience/mehfil/internal/event"
)

// tweetLimit is the Twitter character limit.
const tweetLimit = 280

// TwitterNotifier posts each pick to Twitter
type TwitterNotifier struct {
	client *twitter.Client
}

// NewTwitterNotifier creates a new Twitter notifier using environment variables
// Required environment variables:
// - TWITTER_API_KEY
// - TWITTER_API_SECRET
// - TWITTER_ACCESS_TOKEN
// - TWITTER_ACCESS_SECRET
func NewTwitterNotifier() (*TwitterNotifier, error) {
	apiKey := os.Getenv("TWITTER_API_KEY")
	apiSecret := os.Getenv("TWITTER_API_SECRET")
	accessToken := os.Getenv("TWITTER_ACCESS_TOKEN")
	accessSecret := os.Getenv("TWITTER_ACCESS_SECRET")

	if apiKey == "" || apiSecret == "" || accessToken == "" || accessSecret == "" {
		return nil, fmt.Errorf("missing required Twitter credentials in environment variables")
	}

	config := oauth1.NewConfig(apiKey, apiSecret)
	token := oauth1.NewToken(accessToken, accessSecret)
	httpClient := config.Client(oauth1.NoContext, token)
	client := twitter.NewClient(httpClient)

	return &TwitterNotifier{client: client}, nil
}

// Notify posts a tweet per pick, pausing between posts
func (n *TwitterNotifier) Notify(ctx context.Context, d *Digest) error {
	for i, evt := range d.Picks {
		tweet := formatTweet(evt)

		_, _, err := n.client.Statuses.Update(tweet, nil)
		if err != nil {
			return fmt.Errorf("posting tweet for %s: %w", evt.Name, err)
		}

		// Rate limiting: wait between tweets
		if i < len(d.Picks)-1 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(2 * time.Second):
			}
		}
	}

	return nil
}

// formatTweet formats a pick as a tweet
func formatTweet(evt *event.Event) string {
	tweet := "✨ This week in Boston!\n\n"
	tweet += fmt.Sprintf("🎉 %s\n", evt.Name)
	tweet += fmt.Sprintf("📅 %s", friendlyDate(evt.Date))
	if evt.Time != "" {
		tweet += " " + evt.Time
	}
	tweet += "\n"

	if evt.Location != "" {
		tweet += fmt.Sprintf("📍 %s\n", evt.Location)
	}
	if strings.Contains(strings.ToLower(evt.Price), "free") {
		tweet += "🎟️ FREE\n"
	}

	if evt.URL != "" {
		tweet += "\n🔗 " + evt.URL + "\n"
	}
	tweet += "\n#Boston #Mehfil"

	if len(tweet) > tweetLimit {
		tweet = tweet[:tweetLimit-3] + "..."
	}

	return tweet
}
