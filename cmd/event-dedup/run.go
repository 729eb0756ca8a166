package main

import (
	"fmt"
	"os"
	"time"

	"github.com/araddon/dateparse"
	"github.com/spf13/cobra"

	"github.com/lueurxax/event-dedup/internal/app"
	"github.com/lueurxax/event-dedup/internal/core/domain"
	"github.com/lueurxax/event-dedup/internal/platform/config"
)

var runFlags struct {
	apply      bool
	noAI       bool
	maxDays    int
	delay      time.Duration
	batchSize  int
	strictness string
	sources    []string
	from       string
	until      string
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Plan duplicate removals and optionally apply them",
	Long: `Loads upcoming events, runs the rule-based sweep and the AI confirmation pass,
and prints the removal plan. Nothing is deleted unless --apply is given.`,
	Args: cobra.NoArgs,
	RunE: runRun,
}

func init() {
	f := runCmd.Flags()
	f.BoolVar(&runFlags.apply, "apply", false, "Delete the planned removals")
	f.BoolVar(&runFlags.noAI, "no-ai", false, "Skip the AI confirmation pass")
	f.IntVar(&runFlags.maxDays, "max-days", 0, "Limit the AI pass to the first N days (0 = no limit)")
	f.DurationVar(&runFlags.delay, "delay", 0, "Pause between AI day requests")
	f.IntVar(&runFlags.batchSize, "batch-size", 0, "Events deleted per batch")
	f.StringVar(&runFlags.strictness, "strictness", "", "Rule strategy: strict or graded")
	f.StringSliceVar(&runFlags.sources, "source", nil, "Only consider events from this source (repeatable)")
	f.StringVar(&runFlags.from, "from", "", "Earliest start date (default: now)")
	f.StringVar(&runFlags.until, "until", "", "Exclusive latest start date")

	rootCmd.AddCommand(runCmd)
}

func runRun(cmd *cobra.Command, _ []string) error {
	if err := checkFormat(); err != nil {
		return err
	}

	flags := cmd.Flags()

	cfg, err := loadConfig(func(c *config.Config) {
		if flags.Changed("no-ai") {
			c.AI.Enabled = !runFlags.noAI
		}
		if flags.Changed("max-days") {
			c.AI.MaxDays = runFlags.maxDays
		}
		if flags.Changed("delay") {
			c.AI.DayDelay = runFlags.delay
		}
		if flags.Changed("batch-size") {
			c.Store.DeleteBatchSize = runFlags.batchSize
		}
		if flags.Changed("strictness") {
			c.Dedup.Strictness = runFlags.strictness
		}
	})
	if err != nil {
		return err
	}

	loc, err := cfg.Location()
	if err != nil {
		return err
	}

	filter, err := buildFilter(runFlags.sources, runFlags.from, runFlags.until, loc)
	if err != nil {
		return err
	}

	s, err := openSession(cmd.Context(), cfg)
	if err != nil {
		return err
	}
	defer s.close()

	go func() {
		if err := s.app.StartHealthServer(cmd.Context()); err != nil {
			s.logger.Error().Err(err).Msg("health check server error")
		}
	}()

	return s.app.Run(cmd.Context(), app.RunOptions{
		Filter: filter,
		Apply:  runFlags.apply,
		Format: formatFlag,
	}, os.Stdout)
}

func buildFilter(srcs []string, from, until string, loc *time.Location) (domain.EventFilter, error) {
	var filter domain.EventFilter

	for _, s := range srcs {
		filter.Sources = append(filter.Sources, domain.Source(s))
	}

	var err error

	if from != "" {
		if filter.From, err = dateparse.ParseIn(from, loc); err != nil {
			return filter, fmt.Errorf("parse --from %q: %w", from, err)
		}
	}

	if until != "" {
		if filter.Until, err = dateparse.ParseIn(until, loc); err != nil {
			return filter, fmt.Errorf("parse --until %q: %w", until, err)
		}
	}

	if !filter.From.IsZero() && !filter.Until.IsZero() && !filter.Until.After(filter.From) {
		return filter, fmt.Errorf("--until %s must be after --from %s", until, from)
	}

	return filter, nil
}
