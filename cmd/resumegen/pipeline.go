package main

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/amishk599/resumegen/internal/config"
	"github.com/amishk599/resumegen/internal/deployer"
	"github.com/amishk599/resumegen/internal/model"
	"github.com/amishk599/resumegen/internal/scheduler"
	"github.com/amishk599/resumegen/internal/storage"
	"github.com/amishk599/resumegen/internal/store"
)

// pipelineFlags are the overrides shared by generate and watch.
type pipelineFlags struct {
	env       string
	bucket    string
	templates []string
	model     string
	dryRun    bool
	force     bool
	outDir    string
}

func (f *pipelineFlags) apply(cfg *config.Config) error {
	if f.env != "" {
		cfg.Deploy.Env = f.env
	}
	if f.bucket != "" {
		cfg.Deploy.Bucket = f.bucket
	}
	if len(f.templates) > 0 {
		docs := make([]config.DocumentConfig, len(f.templates))
		for i, t := range f.templates {
			docs[i] = config.DocumentConfig{Template: t}
			if len(f.templates) > 1 {
				docs[i].Key = htmlName(t)
			}
		}
		cfg.Deploy.Documents = docs
	}
	if err := cfg.Deploy.CheckDocuments(); err != nil {
		return err
	}

	if !storage.ValidEnv(cfg.Deploy.Env) {
		return fmt.Errorf("unknown environment %q (want one of %v)", cfg.Deploy.Env, storage.Envs)
	}
	if !f.dryRun && cfg.Deploy.Bucket == "" {
		return fmt.Errorf("a bucket is required (--bucket or deploy.bucket) unless --dry-run is set")
	}
	return nil
}

// buildScheduler wires the full pipeline. The returned close function
// releases the history database.
func buildScheduler(ctx context.Context, cfg *config.Config, flags *pipelineFlags, logger *slog.Logger) (*scheduler.Scheduler, func(), error) {
	awsCfg, err := loadAWSConfig(ctx, cfg.Region)
	if err != nil {
		return nil, nil, err
	}

	var (
		history   model.DeploymentStore
		publisher model.Publisher
		closeFn   = func() {}
	)
	if flags.dryRun {
		logger.Info("dry run: writing output locally, history is not recorded", "out", flags.outDir)
		history = store.NewNopStore()
		publisher = storage.NewFilePublisher(flags.outDir)
	} else {
		sqlStore, err := store.NewSQLiteStore(cfg.Deploy.HistoryDB)
		if err != nil {
			return nil, nil, fmt.Errorf("open history: %w", err)
		}
		history = sqlStore
		closeFn = func() { sqlStore.Close() }
		publisher = storage.NewS3Publisher(s3.NewFromConfig(awsCfg), cfg.Deploy.Bucket, logger)
	}

	orchestrator := setupOrchestrator(cfg, awsCfg, logger)
	n := setupNotifier(cfg, newHTTPClient(), logger)

	settings := deployer.Settings{
		Env:        cfg.Deploy.Env,
		Candidates: candidateList(cfg, flags.model),
		MaxTokens:  cfg.Inference.MaxTokens,
		Deadline:   cfg.Inference.Deadline,
		Force:      flags.force,
	}
	logger.Info("pipeline configured",
		"env", settings.Env,
		"bucket", cfg.Deploy.Bucket,
		"region", regionOf(awsCfg),
		"documents", len(cfg.Deploy.Documents),
		"candidates", len(settings.Candidates),
	)

	deployers := make([]scheduler.Deployer, 0, len(cfg.Deploy.Documents))
	for _, doc := range cfg.Deploy.Documents {
		deployers = append(deployers, deployer.NewDocumentDeployer(
			deployer.Document{Template: doc.Template, Name: doc.Key},
			settings, orchestrator, publisher, history, n, logger,
		))
	}

	retention := cfg.Deploy.HistoryRetention
	if flags.dryRun {
		retention = 0
	}
	sched := scheduler.NewScheduler(deployers, cfg.Deploy.WatchInterval, cfg.Deploy.Concurrency, history, retention, logger)
	return sched, closeFn, nil
}

func regionOf(cfg aws.Config) string {
	if cfg.Region == "" {
		return "default"
	}
	return cfg.Region
}

// htmlName turns a template path into an object name: cv/resume.md -> resume.html.
func htmlName(template string) string {
	base := filepath.Base(template)
	return strings.TrimSuffix(base, filepath.Ext(base)) + ".html"
}
