package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

var watchFlags pipelineFlags

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Redeploy resumes whenever their templates change",
	Long:  "Runs one deployment cycle immediately, then every deploy.watch_interval; blocks until SIGINT/SIGTERM. Unchanged templates are skipped.",
	RunE:  runWatch,
}

func init() {
	rootCmd.AddCommand(watchCmd)
	registerPipelineFlags(watchCmd, &watchFlags)
}

func runWatch(cmd *cobra.Command, args []string) error {
	logger := setupLogger(debug)

	cfg, err := loadConfig(cfgPath)
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	if err := watchFlags.apply(cfg); err != nil {
		logger.Error("invalid flags", "error", err)
		os.Exit(1)
	}
	if watchFlags.dryRun {
		logger.Warn("dry run in watch mode re-renders every cycle")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	sched, closeFn, err := buildScheduler(ctx, cfg, &watchFlags, logger)
	if err != nil {
		logger.Error("failed to set up pipeline", "error", err)
		os.Exit(1)
	}
	defer closeFn()

	if err := sched.Run(ctx); err != nil {
		logger.Error("scheduler error", "error", err)
		return err
	}

	logger.Info("goodbye")
	return nil
}
