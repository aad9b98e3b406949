package notifier

import (
	"log/slog"

	"github.com/amishk599/resumegen/internal/model"
)

// Ensure LogNotifier implements model.Notifier.
var _ model.Notifier = (*LogNotifier)(nil)

// LogNotifier writes deployments to the given logger as structured messages.
type LogNotifier struct {
	logger *slog.Logger
}

// NewLogNotifier returns a notifier that logs each deployment via slog.
func NewLogNotifier(logger *slog.Logger) *LogNotifier {
	return &LogNotifier{logger: logger}
}

// Notify logs each deployment. Returns nil (stdout logging does not fail).
func (n *LogNotifier) Notify(deployments []model.Deployment) error {
	for _, d := range deployments {
		args := []any{"document", d.Document, "env", d.Env, "target", d.Target, "url", d.URL}
		if d.Profile != "" {
			args = append(args, "profile", d.Profile)
		}
		n.logger.Info("resume deployed", args...)
	}
	return nil
}
