package model

import (
	"context"
	"time"
)

// RenderRequest is built once per run and never mutated.
type RenderRequest struct {
	Document    string // source markdown
	Instruction string // instruction template rendered around Document
	MaxTokens   int
}

// RoutingProfile fronts one or more underlying model versions.
type RoutingProfile struct {
	ID     string
	Models []string // underlying model references, usually ARNs
}

// Rendering is the successful result of an orchestration run.
type Rendering struct {
	Text     string
	Target   string // identifier that produced Text
	Profile  string // routing profile used, empty for a direct hit
	Attempts int
	RunID    string
}

// Deployment records one published artifact.
type Deployment struct {
	ID         string
	Document   string // template path
	Digest     string // sha256 of the template contents
	Env        string
	Key        string // object key the HTML was published under
	Target     string
	Profile    string // routing profile, empty for a direct hit
	URL        string
	DeployedAt time.Time
}

// StaleLock is a lock-table item older than the configured threshold.
type StaleLock struct {
	LockID     string
	Created    string // raw timestamp as stored
	AgeMinutes int
	Who        string // lock holder, when recorded
	Operation  string
}

// Invoker performs exactly one inference call routed to target.
// Failures are *InvocationError values with a classified Kind.
type Invoker interface {
	Invoke(ctx context.Context, target string, req RenderRequest) (string, error)
}

// ProfileRegistry lists system-defined routing profiles.
type ProfileRegistry interface {
	ListProfiles(ctx context.Context) ([]RoutingProfile, error)
}

// Publisher writes an artifact and returns a URL it can be read from.
type Publisher interface {
	Publish(ctx context.Context, key string, body []byte, contentType string) (string, error)
}

// DeploymentStore remembers what was last published under each object key.
type DeploymentStore interface {
	// LatestDigest returns the template digest of the newest deployment to
	// key in env, or "" when there is none.
	LatestDigest(key, env string) (string, error)
	Record(d Deployment) error
	Recent(limit int) ([]Deployment, error)
	Cleanup(olderThan time.Duration) error
}

// Notifier announces successful deployments.
type Notifier interface {
	Notify(deployments []Deployment) error
}
