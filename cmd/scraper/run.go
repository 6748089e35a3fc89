package main

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/robfig/cron/v3"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/SURENDHAR-1925/Job-Track/internal/config"
	"github.com/SURENDHAR-1925/Job-Track/internal/logger"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the pipeline once, or on a cron schedule",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		if schedule, _ := cmd.Flags().GetString("schedule"); schedule != "" {
			cfg.Schedule = schedule
		}
		noNotify, _ := cmd.Flags().GetBool("no-notify")

		log, err := logger.NewLogger(cfg.Log.Env, cfg.Log.Level)
		if err != nil {
			return fmt.Errorf("%w: %v", config.ErrInvalid, err)
		}
		defer log.Sync() //nolint:errcheck

		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		a, err := newApp(cfg, log, !noNotify)
		if err != nil {
			return err
		}
		defer a.Close()

		if cfg.Schedule == "" {
			return a.runOnce(ctx)
		}
		return runScheduled(ctx, a, cfg.Schedule, log)
	},
}

func init() {
	// root runs the pipeline too, so it takes the same flags
	for _, c := range []*cobra.Command{rootCmd, runCmd} {
		c.Flags().String("schedule", "", `cron spec, e.g. "0 9 * * *" or "@every 6h"`)
		c.Flags().Bool("no-notify", false, "write CSVs but skip email and Telegram")
	}

	rootCmd.AddCommand(runCmd)
}

// runScheduled runs once immediately, then on every tick until ctx ends.
// A tick that fires while a run is still going is skipped.
func runScheduled(ctx context.Context, a *app, spec string, log *zap.Logger) error {
	cronLog := cron.PrintfLogger(zap.NewStdLog(log.Named("cron")))
	c := cron.New(cron.WithChain(cron.SkipIfStillRunning(cronLog)))

	_, err := c.AddFunc(spec, func() {
		if err := a.runOnce(ctx); err != nil {
			log.Error("❌ scheduled run failed", zap.Error(err))
		}
	})
	if err != nil {
		return fmt.Errorf("%w: schedule %q: %v", config.ErrInvalid, spec, err)
	}

	log.Info("⏰ scheduler started", zap.String("spec", spec))
	if err := a.runOnce(ctx); err != nil {
		log.Error("❌ initial run failed", zap.Error(err))
	}

	c.Start()
	<-ctx.Done()
	log.Info("⏹ stopping scheduler")
	<-c.Stop().Done()
	return nil
}
