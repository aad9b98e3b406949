package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/spf13/cobra"

	"github.com/amishk599/resumegen/internal/ai"
	"github.com/amishk599/resumegen/internal/config"
	"github.com/amishk599/resumegen/internal/model"
	"github.com/amishk599/resumegen/internal/notifier"
	"github.com/amishk599/resumegen/internal/ratelimit"
	"github.com/amishk599/resumegen/internal/render"
	"github.com/amishk599/resumegen/internal/retry"
)

const defaultConfigPath = "resumegen.yaml"

var (
	cfgPath string
	debug   bool
)

var rootCmd = &cobra.Command{
	Use:          "resumegen",
	Short:        "Render markdown resumes with Bedrock and publish them",
	Long:         "resumegen turns a markdown resume into a styled HTML page using Bedrock models, publishes it to S3, and carries the maintenance chores around that pipeline.",
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgPath, "config", "c", "", "path to config file (default: RESUMEGEN_CONFIG env var or ./resumegen.yaml)")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug logging")
}

// loadConfig resolves the config path and parses it.
// Priority: explicit path arg > RESUMEGEN_CONFIG env var > "./resumegen.yaml".
// A missing default file yields the built-in defaults.
func loadConfig(path string) (*config.Config, error) {
	explicit := true
	if path == "" {
		if env := os.Getenv("RESUMEGEN_CONFIG"); env != "" {
			path = env
		} else {
			path = defaultConfigPath
			explicit = false
		}
	}

	cfg, err := config.Load(path)
	if err != nil && !explicit && errors.Is(err, fs.ErrNotExist) {
		return config.Default(), nil
	}
	return cfg, err
}

func setupLogger(dbg bool) *slog.Logger {
	logLevel := slog.LevelInfo
	if dbg {
		logLevel = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: logLevel}))
}

// loadAWSConfig resolves credentials from the default chain. An empty region
// falls back to AWS_REGION or the shared config profile.
func loadAWSConfig(ctx context.Context, region string) (aws.Config, error) {
	var opts []func(*awsconfig.LoadOptions) error
	if region != "" {
		opts = append(opts, awsconfig.WithRegion(region))
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return aws.Config{}, fmt.Errorf("load aws config: %w", err)
	}
	return awsCfg, nil
}

func setupNotifier(cfg *config.Config, httpClient *http.Client, logger *slog.Logger) model.Notifier {
	switch cfg.Notification.Type {
	case "slack":
		logger.Info("using slack notifier")
		return notifier.NewSlackNotifier(cfg.Notification.WebhookURL, httpClient, logger)
	default:
		return notifier.NewLogNotifier(logger)
	}
}

// setupInvoker builds the provider and wraps it with pacing and throttle
// retries. Pacing sits inside retries so every retry is paced too.
func setupInvoker(cfg *config.Config, awsCfg aws.Config, logger *slog.Logger) model.Invoker {
	inf := cfg.Inference

	var invoker model.Invoker
	switch inf.Provider {
	case "openai":
		logger.Info("using openai-compatible provider", "base_url", inf.OpenAI.BaseURL)
		invoker = ai.NewOpenAIProvider(inf.OpenAI.BaseURL, inf.OpenAI.APIKey, &http.Client{Timeout: inf.OpenAI.Timeout})
	default:
		invoker = ai.NewBedrockProvider(ai.NewRuntimeClient(awsCfg))
	}

	if inf.MinDelay > 0 {
		invoker = ratelimit.NewRateLimitedInvoker(invoker, ratelimit.NewTargetRateLimiter(inf.MinDelay))
	}
	if inf.ThrottleRetries > 0 {
		invoker = retry.NewRetryInvoker(invoker, inf.ThrottleRetries, inf.ThrottleBackoff, logger)
	}
	return invoker
}

// setupRegistry returns the routing-profile registry for the provider.
// OpenAI-compatible backends have no profiles.
func setupRegistry(cfg *config.Config, awsCfg aws.Config) model.ProfileRegistry {
	if cfg.Inference.Provider == "openai" {
		return ai.NewNopRegistry()
	}
	return ai.NewProfileRegistry(ai.NewControlClient(awsCfg), 0)
}

func setupOrchestrator(cfg *config.Config, awsCfg aws.Config, logger *slog.Logger) *render.Orchestrator {
	resolver := render.NewProfileResolver(setupRegistry(cfg, awsCfg), logger)
	opts := render.Options{
		FailOpenOnUnknown: cfg.Inference.FailOpenOnUnknown,
		UnknownErrorLimit: cfg.Inference.UnknownErrorLimit,
	}
	return render.NewOrchestrator(setupInvoker(cfg, awsCfg, logger), resolver, opts, logger)
}

// candidateList puts the override first, then the configured models or the
// built-in defaults.
func candidateList(cfg *config.Config, override string) []string {
	defaults := cfg.Inference.Models
	if len(defaults) == 0 {
		defaults = render.DefaultModels
	}
	return render.Candidates(override, defaults)
}

func newHTTPClient() *http.Client {
	return &http.Client{Timeout: 30 * time.Second}
}
