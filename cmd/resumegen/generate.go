package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/amishk599/resumegen/internal/scheduler"
)

var generateFlags pipelineFlags

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Render and publish every configured resume once",
	Long: "Reads each markdown template, renders it to HTML through the model candidates " +
		"(falling back to inference profiles when a model needs one), uploads the result and exits.",
	RunE: runGenerate,
}

func init() {
	rootCmd.AddCommand(generateCmd)
	registerPipelineFlags(generateCmd, &generateFlags)
}

func registerPipelineFlags(cmd *cobra.Command, f *pipelineFlags) {
	cmd.Flags().StringVar(&f.env, "env", "", "deployment environment: prod, beta or dev (default: deploy.env)")
	cmd.Flags().StringVar(&f.bucket, "bucket", "", "S3 bucket (default: deploy.bucket)")
	cmd.Flags().StringSliceVar(&f.templates, "template", nil, "markdown template path, repeatable (default: deploy.documents)")
	cmd.Flags().StringVar(&f.model, "model", "", "model identifier to try before the configured candidates")
	cmd.Flags().BoolVar(&f.dryRun, "dry-run", false, "write HTML under --out instead of uploading; history is not touched")
	cmd.Flags().BoolVar(&f.force, "force", false, "redeploy even if the template is unchanged")
	cmd.Flags().StringVar(&f.outDir, "out", "dist", "output directory for --dry-run")
}

func runGenerate(cmd *cobra.Command, args []string) error {
	logger := setupLogger(debug)

	cfg, err := loadConfig(cfgPath)
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	if err := generateFlags.apply(cfg); err != nil {
		logger.Error("invalid flags", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	sched, closeFn, err := buildScheduler(ctx, cfg, &generateFlags, logger)
	if err != nil {
		logger.Error("failed to set up pipeline", "error", err)
		os.Exit(1)
	}
	defer closeFn()

	sum, err := sched.RunOnce(ctx)
	for _, d := range sum.Deployed {
		fmt.Printf("%s [%s] %s\n", d.Document, d.Env, d.URL)
	}
	if !reportGenerate(logger, sum, err) {
		closeFn()
		os.Exit(1)
	}
	return nil
}

// reportGenerate logs the outcome of a generate run and reports success.
func reportGenerate(logger *slog.Logger, sum scheduler.Summary, err error) bool {
	if err != nil {
		logger.Error("generate failed",
			"deployed", len(sum.Deployed),
			"skipped", sum.Skipped,
			"failed", sum.Failed,
			"error", err,
		)
		return false
	}
	logger.Info("generate complete", "deployed", len(sum.Deployed), "skipped", sum.Skipped)
	return true
}
