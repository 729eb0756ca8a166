package main

import (
	"fmt"
	"os"
	"time"

	"github.com/araddon/dateparse"
	"github.com/spf13/cobra"
)

var usageDate string

var usageCmd = &cobra.Command{
	Use:   "usage",
	Short: "Show reasoning service token usage for a day",
	Args:  cobra.NoArgs,
	RunE:  runUsage,
}

func init() {
	usageCmd.Flags().StringVar(&usageDate, "date", "", "Day to report (default: today)")

	rootCmd.AddCommand(usageCmd)
}

func runUsage(cmd *cobra.Command, _ []string) error {
	if err := checkFormat(); err != nil {
		return err
	}

	cfg, err := loadConfig(nil)
	if err != nil {
		return err
	}

	day := time.Now().UTC()

	if usageDate != "" {
		parsed, err := dateparse.ParseIn(usageDate, time.UTC)
		if err != nil {
			return fmt.Errorf("parse --date %q: %w", usageDate, err)
		}

		day = parsed
	}

	s, err := openSession(cmd.Context(), cfg)
	if err != nil {
		return err
	}
	defer s.close()

	return s.app.Usage(cmd.Context(), day, formatFlag, os.Stdout)
}
