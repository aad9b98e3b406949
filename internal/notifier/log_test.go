package notifier

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"

	"github.com/amishk599/resumegen/internal/model"
)

func TestLogNotifier_Notify_zeroDeployments(t *testing.T) {
	n := NewLogNotifier(discardLogger())
	if err := n.Notify(nil); err != nil {
		t.Errorf("Notify(nil) = %v, want nil", err)
	}
	if err := n.Notify([]model.Deployment{}); err != nil {
		t.Errorf("Notify([]) = %v, want nil", err)
	}
}

func TestLogNotifier_Notify_logsEachDeployment(t *testing.T) {
	var buf bytes.Buffer
	n := NewLogNotifier(slog.New(slog.NewTextHandler(&buf, nil)))

	err := n.Notify([]model.Deployment{
		sampleDeployment("prod"),
		{Document: "cv.md", Env: "dev", Target: "m2", Profile: "us.anthropic.claude", URL: "https://example.com/dev"},
	})
	if err != nil {
		t.Errorf("Notify() = %v, want nil", err)
	}

	out := buf.String()
	if got := strings.Count(out, "resume deployed"); got != 2 {
		t.Errorf("expected 2 log lines, got %d:\n%s", got, out)
	}
	if !strings.Contains(out, "profile=us.anthropic.claude") {
		t.Errorf("expected profile attribute in output:\n%s", out)
	}
}
