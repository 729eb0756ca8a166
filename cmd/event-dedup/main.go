// Command event-dedup finds and removes duplicate listings from the event catalog.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/lueurxax/event-dedup/internal/app"
	"github.com/lueurxax/event-dedup/internal/output/report"
	"github.com/lueurxax/event-dedup/internal/platform/config"
)

var formatFlag string

var rootCmd = &cobra.Command{
	Use:           "event-dedup",
	Short:         "Find and remove duplicate event listings",
	Long:          "Scans upcoming catalog events day by day, groups duplicate listings with rule-based matching and an optional AI confirmation pass, and deletes the redundant copies when asked.",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&formatFlag, "format", "f", report.FormatText, "Output format: text or json")
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		if errors.Is(err, context.Canceled) {
			fmt.Fprintln(os.Stderr, "stopped")
			os.Exit(130)
		}

		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func newLogger(appEnv, level string) zerolog.Logger {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil || level == "" {
		lvl = zerolog.InfoLevel
	}

	if appEnv == "local" {
		return zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}).Level(lvl).With().Timestamp().Logger()
	}

	return zerolog.New(os.Stderr).Level(lvl).With().Timestamp().Logger()
}

// session is what every subcommand needs after startup.
type session struct {
	cfg    *config.Config
	app    *app.App
	logger *zerolog.Logger
	close  func()
}

// loadConfig reads the environment and lets mutate apply flag overrides before validation.
func loadConfig(mutate func(*config.Config)) (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	if mutate != nil {
		mutate(cfg)

		if err := cfg.Validate(); err != nil {
			return nil, fmt.Errorf("invalid flags: %w", err)
		}
	}

	return cfg, nil
}

func openSession(ctx context.Context, cfg *config.Config) (*session, error) {
	logger := newLogger(cfg.AppEnv, cfg.LogLevel)

	store, closeStore, err := app.OpenStore(ctx, cfg.Store, &logger)
	if err != nil {
		return nil, err
	}

	application, err := app.New(cfg, store, &logger)
	if err != nil {
		closeStore()
		return nil, err
	}

	return &session{cfg: cfg, app: application, logger: &logger, close: closeStore}, nil
}

func checkFormat() error {
	switch formatFlag {
	case report.FormatText, report.FormatJSON:
		return nil
	default:
		return fmt.Errorf("unknown format %q, want %q or %q", formatFlag, report.FormatText, report.FormatJSON)
	}
}
