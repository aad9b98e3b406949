package deployer

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"text/template"
	"time"

	"github.com/google/uuid"

	"github.com/amishk599/resumegen/internal/ai"
	"github.com/amishk599/resumegen/internal/model"
	"github.com/amishk599/resumegen/internal/storage"
)

const contentTypeHTML = "text/html"

// Document is one markdown source and the object name it is served under.
type Document struct {
	Template string // path to the markdown source
	Name     string // object name within the environment, empty for index.html
}

// Settings are shared by every document deployed in one invocation.
type Settings struct {
	Env        string
	Candidates []string
	MaxTokens  int
	Deadline   time.Duration // per orchestration run, zero for none
	Force      bool          // deploy even when the template digest is unchanged
	Prompt     *template.Template
}

// DocumentDeployer owns the full pipeline for a single document:
// read → digest → skip if the live object came from this digest → render → publish → notify → record.
type DocumentDeployer struct {
	doc       Document
	settings  Settings
	renderer  Renderer
	publisher model.Publisher
	store     model.DeploymentStore
	notifier  model.Notifier
	logger    *slog.Logger
}

// NewDocumentDeployer creates a deployer wired with all its dependencies.
func NewDocumentDeployer(
	doc Document,
	settings Settings,
	renderer Renderer,
	publisher model.Publisher,
	store model.DeploymentStore,
	notifier model.Notifier,
	logger *slog.Logger,
) *DocumentDeployer {
	if settings.Prompt == nil {
		settings.Prompt = ai.ResumeTemplate
	}
	return &DocumentDeployer{
		doc:       doc,
		settings:  settings,
		renderer:  renderer,
		publisher: publisher,
		store:     store,
		notifier:  notifier,
		logger:    logger.With("document", doc.Template, "env", settings.Env),
	}
}

// Name identifies the deployer in logs.
func (d *DocumentDeployer) Name() string { return d.doc.Template }

// Deploy runs one cycle. It returns the recorded deployment, or ok=false when
// the template was skipped as already deployed.
func (d *DocumentDeployer) Deploy(ctx context.Context) (dep model.Deployment, ok bool, err error) {
	key, err := storage.ObjectKey(d.settings.Env, d.doc.Name)
	if err != nil {
		return model.Deployment{}, false, err
	}

	source, err := os.ReadFile(d.doc.Template)
	if err != nil {
		return model.Deployment{}, false, fmt.Errorf("reading template %s: %w", d.doc.Template, err)
	}
	digest := Digest(source)

	if !d.settings.Force {
		live, err := d.store.LatestDigest(key, d.settings.Env)
		if err != nil {
			return model.Deployment{}, false, fmt.Errorf("deploying %s: checking history: %w", d.doc.Template, err)
		}
		if live == digest {
			d.logger.Info("template unchanged, skipping", "key", key, "digest", digest[:12])
			return model.Deployment{}, false, nil
		}
	}

	d.logger.Info("loaded template", "chars", len(source))

	req, err := ai.BuildRenderRequest(d.settings.Prompt, string(source), d.settings.MaxTokens)
	if err != nil {
		return model.Deployment{}, false, err
	}

	renderCtx := ctx
	if d.settings.Deadline > 0 {
		var cancel context.CancelFunc
		renderCtx, cancel = context.WithTimeout(ctx, d.settings.Deadline)
		defer cancel()
	}

	rendering, err := d.renderer.Render(renderCtx, req, d.settings.Candidates)
	if err != nil {
		return model.Deployment{}, false, fmt.Errorf("rendering %s: %w", d.doc.Template, err)
	}
	html := StripCodeFence(rendering.Text)
	d.logger.Info("generated html", "chars", len(html), "target", rendering.Target, "run_id", rendering.RunID)

	url, err := d.publisher.Publish(ctx, key, []byte(html), contentTypeHTML)
	if err != nil {
		return model.Deployment{}, false, fmt.Errorf("publishing %s: %w", d.doc.Template, err)
	}

	dep = model.Deployment{
		ID:         uuid.NewString(),
		Document:   d.doc.Template,
		Digest:     digest,
		Env:        d.settings.Env,
		Key:        key,
		Target:     rendering.Target,
		Profile:    rendering.Profile,
		URL:        url,
		DeployedAt: time.Now(),
	}

	// Notification failures are logged only; the object is already published.
	if err := d.notifier.Notify([]model.Deployment{dep}); err != nil {
		d.logger.Error("notification failed", "error", err)
	}

	if err := d.store.Record(dep); err != nil {
		return dep, true, fmt.Errorf("deploying %s: recording: %w", d.doc.Template, err)
	}

	d.logger.Info("deployed", "url", url, "target", dep.Target)
	return dep, true, nil
}

// Digest returns the hex sha256 of a template.
func Digest(b []byte) string {
	sum := sha256.Sum256(b)
	return hex.EncodeToString(sum[:])
}

// StripCodeFence unwraps output the model wrapped in a single markdown code
// block, such as ```html ... ```. Anything else is returned trimmed.
func StripCodeFence(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") || !strings.HasSuffix(s, "```") || len(s) < 6 {
		return s
	}
	body := strings.TrimSuffix(s, "```")
	nl := strings.IndexByte(body, '\n')
	if nl < 0 {
		return s
	}
	return strings.TrimSpace(body[nl+1:])
}
