// Command scraper fetches fresher job postings, filters and deduplicates
// them, writes CSVs and sends a summary.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "scraper",
	Short: "Fetch, filter and report fresher job postings",
	Long: `scraper queries the configured job sources for every keyword and location,
keeps the postings that pass the acceptance policy, drops duplicates, writes
accepted_jobs.csv (and optionally rejected_jobs.csv) and sends a summary by
email and/or Telegram.

Without a schedule it runs once and exits. With --schedule (or schedule: in
the config file) it runs immediately and then on every cron tick until
interrupted.`,
	SilenceUsage: true,
	RunE:         runCmd.RunE,
}

func init() {
	rootCmd.PersistentFlags().String("config", "", "config file (default: configs/config.yaml)")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
