package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/amishk599/resumegen/internal/storage"
)

// Config is the root configuration for resumegen.
type Config struct {
	Region       string // empty uses the SDK default chain
	Inference    InferenceConfig
	Deploy       DeployConfig
	Locks        LocksConfig
	Notification NotificationConfig
	Lint         LintConfig
}

// InferenceConfig controls candidate selection and the orchestrator policy.
type InferenceConfig struct {
	Provider          string   // "bedrock" or "openai"
	Models            []string // candidate order; empty uses the built-in list
	MaxTokens         int
	Deadline          time.Duration // per orchestration run, zero for none
	FailOpenOnUnknown bool
	UnknownErrorLimit int // zero means unlimited
	ThrottleRetries   int
	ThrottleBackoff   time.Duration
	MinDelay          time.Duration // gap between calls to the same target, zero disables pacing
	OpenAI            OpenAIConfig
}

// OpenAIConfig configures the OpenAI-compatible backend.
type OpenAIConfig struct {
	BaseURL string
	APIKey  string // expanded from env var by Load
	Timeout time.Duration
}

// DocumentConfig describes one markdown source to render.
type DocumentConfig struct {
	Template string `yaml:"template"`
	Key      string `yaml:"key"` // object name within the environment
}

// DeployConfig controls publishing and the watch loop.
type DeployConfig struct {
	Bucket           string
	Env              string
	Documents        []DocumentConfig
	Concurrency      int
	WatchInterval    time.Duration
	HistoryDB        string
	HistoryRetention time.Duration
}

// CheckDocuments requires a template per document and a distinct object name
// per document, an empty key counting as index.html.
func (d DeployConfig) CheckDocuments() error {
	seen := make(map[string]string, len(d.Documents))
	for i, doc := range d.Documents {
		if doc.Template == "" {
			return fmt.Errorf("deploy.documents[%d].template is required", i)
		}
		name := doc.Key
		if name == "" {
			name = storage.DefaultObjectName
		}
		if prev, ok := seen[name]; ok {
			return fmt.Errorf("deploy.documents: %s and %s both publish to %q; set distinct keys", prev, doc.Template, name)
		}
		seen[name] = doc.Template
	}
	return nil
}

// LocksConfig points at the state-lock table.
type LocksConfig struct {
	Table             string `yaml:"table"`
	StaleAfterMinutes int    `yaml:"stale_after_minutes"`
}

// NotificationConfig controls which notifier is used and its settings.
type NotificationConfig struct {
	Type       string `yaml:"type"`        // "log" or "slack"
	WebhookURL string `yaml:"webhook_url"` // required if type is "slack"
}

// LintConfig lists the markdown files lint-fix repairs.
type LintConfig struct {
	Files         []string `yaml:"files"`
	FenceLanguage string   `yaml:"fence_language"`
	Headings      []string `yaml:"headings"`
}

const (
	defaultOpenAIBaseURL = "https://api.openai.com/v1"
	defaultTemplate      = "resume_template.md"
	slackWebhookPrefix   = "https://hooks.slack.com/"
)

// Default returns the configuration used when no config file exists.
func Default() *Config {
	return &Config{
		Inference: InferenceConfig{
			Provider:          "bedrock",
			MaxTokens:         4096,
			Deadline:          5 * time.Minute,
			FailOpenOnUnknown: true,
			ThrottleRetries:   2,
			ThrottleBackoff:   2 * time.Second,
			OpenAI: OpenAIConfig{
				BaseURL: defaultOpenAIBaseURL,
				Timeout: 2 * time.Minute,
			},
		},
		Deploy: DeployConfig{
			Env:              "prod",
			Documents:        []DocumentConfig{{Template: defaultTemplate}},
			Concurrency:      1,
			WatchInterval:    10 * time.Minute,
			HistoryDB:        "resumegen.db",
			HistoryRetention: 30 * 24 * time.Hour,
		},
		Locks: LocksConfig{
			StaleAfterMinutes: 30,
		},
		Notification: NotificationConfig{Type: "log"},
		Lint: LintConfig{
			Files:         []string{"README.md", defaultTemplate},
			FenceLanguage: "text",
		},
	}
}

// rawConfig is used for YAML unmarshaling (snake_case fields and duration as string).
type rawConfig struct {
	Region       string             `yaml:"region"`
	Inference    rawInferenceConfig `yaml:"inference"`
	Deploy       rawDeployConfig    `yaml:"deploy"`
	Locks        LocksConfig        `yaml:"locks"`
	Notification NotificationConfig `yaml:"notification"`
	Lint         LintConfig         `yaml:"lint"`
}

type rawInferenceConfig struct {
	Provider          string          `yaml:"provider"`
	Models            []string        `yaml:"models"`
	MaxTokens         int             `yaml:"max_tokens"`
	Deadline          string          `yaml:"deadline"`
	FailOpenOnUnknown *bool           `yaml:"fail_open_on_unknown"`
	UnknownErrorLimit int             `yaml:"unknown_error_limit"`
	ThrottleRetries   *int            `yaml:"throttle_retries"`
	ThrottleBackoff   string          `yaml:"throttle_backoff"`
	MinDelay          string          `yaml:"min_delay"`
	OpenAI            rawOpenAIConfig `yaml:"openai"`
}

type rawOpenAIConfig struct {
	BaseURL string `yaml:"base_url"`
	APIKey  string `yaml:"api_key"`
	Timeout string `yaml:"timeout"`
}

type rawDeployConfig struct {
	Bucket           string           `yaml:"bucket"`
	Env              string           `yaml:"env"`
	Documents        []DocumentConfig `yaml:"documents"`
	Concurrency      int              `yaml:"concurrency"`
	WatchInterval    string           `yaml:"watch_interval"`
	HistoryDB        string           `yaml:"history_db"`
	HistoryRetention string           `yaml:"history_retention"`
}

// Load reads and parses the YAML config file at path, fills defaults for
// omitted settings, validates it, and returns Config.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	// Expand environment variables
	expanded := os.ExpandEnv(string(data))

	var raw rawConfig
	if err := yaml.Unmarshal([]byte(expanded), &raw); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	cfg := Default()
	cfg.Region = raw.Region

	inf := &cfg.Inference
	if raw.Inference.Provider != "" {
		inf.Provider = raw.Inference.Provider
	}
	inf.Models = raw.Inference.Models
	if raw.Inference.MaxTokens != 0 {
		inf.MaxTokens = raw.Inference.MaxTokens
	}
	if raw.Inference.FailOpenOnUnknown != nil {
		inf.FailOpenOnUnknown = *raw.Inference.FailOpenOnUnknown
	}
	inf.UnknownErrorLimit = raw.Inference.UnknownErrorLimit
	if raw.Inference.ThrottleRetries != nil {
		inf.ThrottleRetries = *raw.Inference.ThrottleRetries
	}
	if raw.Inference.OpenAI.BaseURL != "" {
		inf.OpenAI.BaseURL = raw.Inference.OpenAI.BaseURL
	}
	inf.OpenAI.APIKey = raw.Inference.OpenAI.APIKey

	dep := &cfg.Deploy
	dep.Bucket = raw.Deploy.Bucket
	if raw.Deploy.Env != "" {
		dep.Env = raw.Deploy.Env
	}
	if len(raw.Deploy.Documents) > 0 {
		dep.Documents = raw.Deploy.Documents
	}
	if raw.Deploy.Concurrency != 0 {
		dep.Concurrency = raw.Deploy.Concurrency
	}
	if raw.Deploy.HistoryDB != "" {
		dep.HistoryDB = raw.Deploy.HistoryDB
	}

	durations := []struct {
		name  string
		value string
		dest  *time.Duration
	}{
		{"inference.deadline", raw.Inference.Deadline, &inf.Deadline},
		{"inference.throttle_backoff", raw.Inference.ThrottleBackoff, &inf.ThrottleBackoff},
		{"inference.min_delay", raw.Inference.MinDelay, &inf.MinDelay},
		{"inference.openai.timeout", raw.Inference.OpenAI.Timeout, &inf.OpenAI.Timeout},
		{"deploy.watch_interval", raw.Deploy.WatchInterval, &dep.WatchInterval},
		{"deploy.history_retention", raw.Deploy.HistoryRetention, &dep.HistoryRetention},
	}
	for _, d := range durations {
		if d.value == "" {
			continue
		}
		parsed, err := time.ParseDuration(d.value)
		if err != nil {
			return nil, fmt.Errorf("parse %s %q: %w", d.name, d.value, err)
		}
		*d.dest = parsed
	}

	if raw.Locks.Table != "" {
		cfg.Locks.Table = raw.Locks.Table
	}
	if raw.Locks.StaleAfterMinutes != 0 {
		cfg.Locks.StaleAfterMinutes = raw.Locks.StaleAfterMinutes
	}

	if raw.Notification.Type != "" {
		cfg.Notification = raw.Notification
	}

	if len(raw.Lint.Files) > 0 {
		cfg.Lint.Files = raw.Lint.Files
	}
	if raw.Lint.FenceLanguage != "" {
		cfg.Lint.FenceLanguage = raw.Lint.FenceLanguage
	}
	cfg.Lint.Headings = raw.Lint.Headings

	if err := validate(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

func validate(cfg *Config) error {
	inf := cfg.Inference
	switch inf.Provider {
	case "bedrock":
	case "openai":
		if inf.OpenAI.APIKey == "" {
			return fmt.Errorf("inference.openai.api_key is required when provider is \"openai\"")
		}
	default:
		return fmt.Errorf("inference.provider must be \"bedrock\" or \"openai\", got %q", inf.Provider)
	}
	for i, m := range inf.Models {
		if strings.TrimSpace(m) == "" {
			return fmt.Errorf("inference.models[%d] is empty", i)
		}
	}
	if inf.MaxTokens <= 0 {
		return fmt.Errorf("inference.max_tokens must be positive, got %d", inf.MaxTokens)
	}
	if inf.Deadline < 0 || inf.ThrottleBackoff < 0 || inf.MinDelay < 0 {
		return fmt.Errorf("inference durations must not be negative")
	}
	if inf.UnknownErrorLimit < 0 || inf.ThrottleRetries < 0 {
		return fmt.Errorf("inference.unknown_error_limit and throttle_retries must not be negative")
	}

	dep := cfg.Deploy
	switch dep.Env {
	case "prod", "beta", "dev":
	default:
		return fmt.Errorf("deploy.env must be one of prod, beta, dev, got %q", dep.Env)
	}
	if err := dep.CheckDocuments(); err != nil {
		return err
	}
	if dep.Concurrency < 1 {
		return fmt.Errorf("deploy.concurrency must be at least 1, got %d", dep.Concurrency)
	}
	if dep.WatchInterval <= 0 {
		return fmt.Errorf("deploy.watch_interval must be positive, got %v", dep.WatchInterval)
	}

	if cfg.Locks.StaleAfterMinutes <= 0 {
		return fmt.Errorf("locks.stale_after_minutes must be positive, got %d", cfg.Locks.StaleAfterMinutes)
	}

	switch cfg.Notification.Type {
	case "log":
	case "slack":
		if cfg.Notification.WebhookURL == "" {
			return fmt.Errorf("notification.webhook_url is required when type is \"slack\"")
		}
		if !strings.HasPrefix(cfg.Notification.WebhookURL, slackWebhookPrefix) {
			return fmt.Errorf("notification.webhook_url must start with %s", slackWebhookPrefix)
		}
	default:
		return fmt.Errorf("notification.type must be \"log\" or \"slack\", got %q", cfg.Notification.Type)
	}

	return nil
}
