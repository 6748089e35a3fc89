package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/SURENDHAR-1925/Job-Track/internal/browser"
	"github.com/SURENDHAR-1925/Job-Track/internal/config"
	"github.com/SURENDHAR-1925/Job-Track/internal/logger"
	"github.com/SURENDHAR-1925/Job-Track/internal/report"
	"github.com/SURENDHAR-1925/Job-Track/internal/scraper"
)

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Manual checks for cookies and single sources",
}

var checkCookiesCmd = &cobra.Command{
	Use:   "cookies",
	Short: "Load the browser cookie files and count cookies per domain",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		cookies, err := browser.LoadCookieDir(cfg.Browser.CookiesPath)
		if err != nil {
			return err
		}
		perDomain := map[string]int{}
		for _, c := range cookies {
			if c.Domain != nil {
				perDomain[strings.TrimPrefix(*c.Domain, ".")]++
			}
		}
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "🍪 %d cookies from %s\n", len(cookies), cfg.Browser.CookiesPath)
		for _, d := range sortedKeys(perDomain) {
			fmt.Fprintf(out, "  %-30s %d\n", d, perDomain[d])
		}
		return nil
	},
}

var checkSourceCmd = &cobra.Command{
	Use:   "source <name>",
	Short: "Fetch one query from one source and show each job's verdict",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		keyword, _ := cmd.Flags().GetString("keyword")
		location, _ := cmd.Flags().GetString("location")
		if keyword == "" {
			keyword = cfg.Keywords[0]
		}
		if location == "" {
			location = cfg.Locations[0]
		}
		name := sourceID(args[0])
		cfg.Sources = []string{name}

		log, err := logger.NewLogger(cfg.Log.Env, cfg.Log.Level)
		if err != nil {
			return fmt.Errorf("%w: %v", config.ErrInvalid, err)
		}
		defer log.Sync() //nolint:errcheck

		a, err := newApp(cfg, log, false)
		if err != nil {
			return err
		}
		defer a.Close()

		q := scraper.Query{Keyword: keyword, Location: location, Source: name}
		decisions, err := a.pipeline.Probe(cmd.Context(), q)
		if err != nil {
			return err
		}
		log.Info("🔍 probe done", zap.String("source", q.Source), zap.Int("jobs", len(decisions)))

		out := cmd.OutOrStdout()
		for _, d := range decisions {
			mark := "✅"
			if !d.Accepted {
				mark = "❌"
			}
			fmt.Fprintf(out, "%s %s\n", mark, report.Headline(d.Job))
			for _, r := range d.Reasons {
				fmt.Fprintf(out, "     %s\n", r)
			}
		}
		return nil
	},
}

func init() {
	checkSourceCmd.Flags().String("keyword", "", "search keyword (default: first configured)")
	checkSourceCmd.Flags().String("location", "", "search location (default: first configured)")

	checkCmd.AddCommand(checkCookiesCmd, checkSourceCmd)
	rootCmd.AddCommand(checkCmd)
}

// sourceID matches the ids registry.Build assigns.
func sourceID(arg string) string {
	return strings.ToLower(strings.TrimSpace(arg))
}
