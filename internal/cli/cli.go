package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/atopofconscience/mehfil/internal/config"
	"github.com/atopofconscience/mehfil/internal/logger"
)

const (
	ExitSuccess = 0
	ExitError   = 1
)

var flagVerbose bool

// NewRootCmd creates the root command
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "mehfil",
		Short: "Aggregate and curate Boston community events",
		Long: `Mehfil collects South Asian and Middle Eastern community events in
Boston from public listings, normalizes and deduplicates them into an
event store, and composes a weather-aware weekly digest of picks.`,
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if flagVerbose {
				logger.SetDefault(logger.New(logger.LevelDebug, os.Stderr))
			}
		},
	}

	cmd.PersistentFlags().BoolVar(&flagVerbose, "verbose", false, "Enable debug logging")

	cmd.AddCommand(
		newScrapeCmd(),
		newGeocodeCmd(),
		newExportCmd(),
		newCleanupCmd(),
		newListCmd(),
		newDigestCmd(),
		newSubscribersCmd(),
	)

	return cmd
}

// loadConfig is the shared entry point for every subcommand.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("loading configuration: %w", err)
	}
	return cfg, nil
}

// Execute runs the CLI. Interrupts cancel the command context so
// in-flight scrapes and store calls stop cleanly.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := NewRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(ExitError)
	}
}
