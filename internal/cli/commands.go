package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/atopofconscience/mehfil/internal/calendar"
	"github.com/atopofconscience/mehfil/internal/catalog"
	"github.com/atopofconscience/mehfil/internal/config"
	"github.com/atopofconscience/mehfil/internal/crypto"
	"github.com/atopofconscience/mehfil/internal/curate"
	"github.com/atopofconscience/mehfil/internal/geocode"
	"github.com/atopofconscience/mehfil/internal/logger"
	"github.com/atopofconscience/mehfil/internal/notifier"
	"github.com/atopofconscience/mehfil/internal/pipeline"
	"github.com/atopofconscience/mehfil/internal/scrape"
	"github.com/atopofconscience/mehfil/internal/store"
	"github.com/atopofconscience/mehfil/internal/subscriber"
	"github.com/atopofconscience/mehfil/internal/weather"
)

func notionGateway(cfg *config.Config) (*store.NotionGateway, error) {
	if err := cfg.RequireNotion(); err != nil {
		return nil, err
	}
	return store.NewNotionGateway(cfg.NotionToken, cfg.NotionDatabaseID)
}

func newScrapeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "scrape",
		Short: "Collect events from all sources into the store",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			gw, err := notionGateway(cfg)
			if err != nil {
				return err
			}

			fetcher := scrape.NewFetcher()
			adapters := []scrape.Adapter{
				scrape.NewBostonCalendar(fetcher),
				scrape.NewEventbrite(fetcher),
				scrape.NewISBCC(fetcher),
			}

			sum, err := pipeline.New(adapters, gw).Run(cmd.Context())
			if err != nil {
				return fmt.Errorf("running aggregation: %w", err)
			}

			fmt.Printf("Found %d listings: %d added, %d duplicates, %d unparseable dates, %d invalid, %d store errors\n",
				sum.Found, sum.Added, sum.Skipped, sum.Unparsed, sum.Invalid, sum.Errors)
			return nil
		},
	}
}

func newGeocodeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "geocode",
		Short: "Fill in coordinates for catalog events missing them",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			cat, err := catalog.New(cfg.DataDir)
			if err != nil {
				return err
			}
			snap, err := cat.Load()
			if err != nil {
				return err
			}
			if len(snap.Events) == 0 {
				fmt.Println("Catalog is empty; run export first.")
				return nil
			}

			enricher := geocode.NewEnricher(
				geocode.NewNominatimClient(cfg.City, cfg.Region),
				geocode.NewProviderThrottle(),
			)
			resolved := enricher.Enrich(cmd.Context(), snap.Events)

			if err := cat.Save(snap.Events); err != nil {
				return fmt.Errorf("saving catalog: %w", err)
			}
			fmt.Printf("Resolved coordinates for %d of %d events\n", resolved, len(snap.Events))
			return nil
		},
	}
}

func newExportCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "export",
		Short: "Export the event store to the catalog JSON file",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			gw, err := notionGateway(cfg)
			if err != nil {
				return err
			}

			events, err := gw.Fetch(cmd.Context())
			if err != nil {
				return fmt.Errorf("fetching events: %w", err)
			}

			cat, err := catalog.New(cfg.DataDir)
			if err != nil {
				return err
			}
			if err := cat.Save(events); err != nil {
				return fmt.Errorf("saving catalog: %w", err)
			}
			fmt.Printf("Exported %d events to %s\n", len(events), cat.Path())
			return nil
		},
	}
}

func newCleanupCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "cleanup",
		Short: "Archive stored events whose dates have passed",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			gw, err := notionGateway(cfg)
			if err != nil {
				return err
			}

			res, err := store.Cleanup(cmd.Context(), gw, time.Now())
			if err != nil {
				return fmt.Errorf("cleaning up store: %w", err)
			}
			fmt.Printf("Archived %d past events, kept %d still running, %d errors\n",
				res.Archived, res.Kept, res.Errors)
			return nil
		},
	}
}

func newListCmd() *cobra.Command {
	var flagFormat string
	var flagSort string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List catalog events",
		RunE: func(cmd *cobra.Command, args []string) error {
			format := OutputFormat(strings.ToLower(flagFormat))
			if format != FormatText && format != FormatJSON {
				return fmt.Errorf("invalid format: %s (must be 'text' or 'json')", flagFormat)
			}
			order := SortOrder(strings.ToLower(flagSort))
			if order != SortByDate && order != SortByName && order != SortBySource {
				return fmt.Errorf("invalid sort: %s (must be 'date', 'name', or 'source')", flagSort)
			}

			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			cat, err := catalog.New(cfg.DataDir)
			if err != nil {
				return err
			}
			snap, err := cat.Load()
			if err != nil {
				return err
			}

			sortEvents(snap.Events, order)
			return WriteEvents(os.Stdout, snap.Events, format)
		},
	}

	cmd.Flags().StringVar(&flagFormat, "format", "text", "Output format: text or json")
	cmd.Flags().StringVar(&flagSort, "sort", "date", "Sort order: date, name, or source")
	return cmd
}

func newDigestCmd() *cobra.Command {
	var flagSend bool
	var flagTweet bool
	var flagICS string

	cmd := &cobra.Command{
		Use:   "digest",
		Short: "Compose the weekly digest of weather-aware picks",
		Long: `Compose the weekly digest: derive the week's weather from the
forecast, curate up to seven picks from the catalog, and preview the
result. --send emails every subscriber a personalized digest, --tweet
posts the picks, and --ics writes a calendar file.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			cat, err := catalog.New(cfg.DataDir)
			if err != nil {
				return err
			}
			snap, err := cat.Load()
			if err != nil {
				return err
			}
			if len(snap.Events) == 0 {
				fmt.Println("Catalog is empty; run export first.")
				return nil
			}

			ctx := cmd.Context()

			// Weather failure never blocks the digest; picks just lose
			// their indoor bias.
			cond := weather.ConditionNice
			center := geocode.BostonCenter
			forecast, err := weather.NewClient(center.Lat, center.Lon, "America/New_York").Forecast(ctx)
			if err != nil {
				logger.Warn("weather fetch failed", logger.Fields{"error": err.Error()})
			} else {
				cond = weather.Derive(forecast)
			}

			picks := curate.Pick(snap.Events, cond, nil)
			digest := &notifier.Digest{Picks: picks, Upcoming: snap.Events, Condition: cond}

			if len(picks) == 0 {
				fmt.Println("No picks this week.")
				return nil
			}

			if flagICS != "" {
				ics := calendar.GenerateICS(picks)
				if err := os.WriteFile(flagICS, []byte(ics), 0644); err != nil {
					return fmt.Errorf("writing calendar file: %w", err)
				}
				fmt.Printf("Wrote %d picks to %s\n", len(picks), flagICS)
			}

			notifiers := []notifier.Notifier{}
			if flagSend {
				if err := cfg.RequireBrevo(); err != nil {
					return err
				}
				contacts, err := subscriber.NewBrevoClient(cfg.BrevoAPIKey)
				if err != nil {
					return err
				}
				subs, err := contacts.Fetch(ctx)
				if err != nil {
					return fmt.Errorf("fetching subscribers: %w", err)
				}
				mailer, err := notifier.NewBrevoMailer(cfg.BrevoAPIKey)
				if err != nil {
					return err
				}
				notifiers = append(notifiers, notifier.NewEmailNotifier(mailer, subs))
			}
			if flagTweet {
				tw, err := notifier.NewTwitterNotifier()
				if err != nil {
					return err
				}
				notifiers = append(notifiers, tw)
			}
			if len(notifiers) == 0 {
				notifiers = append(notifiers, notifier.NewDryRunNotifier())
			}

			for _, n := range notifiers {
				if err := n.Notify(ctx, digest); err != nil {
					return fmt.Errorf("delivering digest: %w", err)
				}
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&flagSend, "send", false, "Email the digest to every subscriber")
	cmd.Flags().BoolVar(&flagTweet, "tweet", false, "Post the picks to Twitter")
	cmd.Flags().StringVar(&flagICS, "ics", "", "Write the picks to an iCalendar file at this path")
	return cmd
}

func newSubscribersCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "subscribers",
		Short: "Manage the subscriber list",
	}
	cmd.AddCommand(newSubscribersListCmd())
	return cmd
}

func newSubscribersListCmd() *cobra.Command {
	var flagSync bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List subscribers and their preferences",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			if err := cfg.RequireBrevo(); err != nil {
				return err
			}

			contacts, err := subscriber.NewBrevoClient(cfg.BrevoAPIKey)
			if err != nil {
				return err
			}
			subs, err := contacts.Fetch(cmd.Context())
			if err != nil {
				return fmt.Errorf("fetching subscribers: %w", err)
			}

			for _, s := range subs {
				line := s.Identifier
				if s.DisplayName != "" {
					line += " (" + s.DisplayName + ")"
				}
				if len(s.Interests) > 0 {
					line += "  interests: " + strings.Join(s.Interests, ", ")
				}
				if s.Location != "" && !strings.EqualFold(s.Location, "all") {
					line += "  location: " + s.Location
				}
				if len(s.PricePrefs) > 0 {
					line += "  price: " + strings.Join(s.PricePrefs, ", ")
				}
				fmt.Println(line)
			}
			fmt.Printf("\nTotal: %d subscribers\n", len(subs))

			if flagSync {
				sealer := crypto.NewSealer(cfg.EncryptionKey)
				fs := subscriber.NewFileStorage(filepath.Join(cfg.DataDir, "subscribers.json"), sealer)
				if err := fs.Save(subs); err != nil {
					return fmt.Errorf("saving subscribers: %w", err)
				}
				fmt.Println("Synced subscriber list to local storage.")
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&flagSync, "sync", false, "Save the list to local encrypted storage")
	return cmd
}
