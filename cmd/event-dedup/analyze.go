package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/lueurxax/event-dedup/internal/core/domain"
)

var analyzeFlags struct {
	date    string
	sources []string
}

var analyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "Show graded duplicate groups for one day without changing anything",
	Args:  cobra.NoArgs,
	RunE:  runAnalyze,
}

func init() {
	analyzeCmd.Flags().StringVar(&analyzeFlags.date, "date", "", "Day to analyze (YYYY-MM-DD)")
	analyzeCmd.Flags().StringSliceVar(&analyzeFlags.sources, "source", nil, "Only consider events from this source (repeatable)")
	_ = analyzeCmd.MarkFlagRequired("date")

	rootCmd.AddCommand(analyzeCmd)
}

func runAnalyze(cmd *cobra.Command, _ []string) error {
	if err := checkFormat(); err != nil {
		return err
	}

	cfg, err := loadConfig(nil)
	if err != nil {
		return err
	}

	s, err := openSession(cmd.Context(), cfg)
	if err != nil {
		return err
	}
	defer s.close()

	srcs := make([]domain.Source, 0, len(analyzeFlags.sources))
	for _, src := range analyzeFlags.sources {
		srcs = append(srcs, domain.Source(src))
	}

	return s.app.Analyze(cmd.Context(), analyzeFlags.date, srcs, formatFlag, os.Stdout)
}
