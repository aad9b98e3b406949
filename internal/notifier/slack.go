package notifier

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/amishk599/resumegen/internal/model"
)

// Ensure SlackNotifier implements model.Notifier.
var _ model.Notifier = (*SlackNotifier)(nil)

// SlackNotifier announces deployments in a Slack channel via Incoming Webhooks.
type SlackNotifier struct {
	webhookURL string
	httpClient *http.Client
	logger     *slog.Logger
}

// NewSlackNotifier returns a notifier that posts each deployment to Slack via webhook.
func NewSlackNotifier(webhookURL string, httpClient *http.Client, logger *slog.Logger) *SlackNotifier {
	return &SlackNotifier{
		webhookURL: webhookURL,
		httpClient: httpClient,
		logger:     logger,
	}
}

// Notify sends each deployment as a separate Slack message using Block Kit.
// Returns an error only if ALL messages fail. Individual failures are logged.
func (s *SlackNotifier) Notify(deployments []model.Deployment) error {
	if len(deployments) == 0 {
		return nil
	}

	failures := 0
	for i, d := range deployments {
		if i > 0 {
			time.Sleep(500 * time.Millisecond)
		}

		if err := s.sendMessage(d); err != nil {
			s.logger.Error("slack notification failed", "document", d.Document, "env", d.Env, "error", err)
			failures++
		}
	}

	sent := len(deployments) - failures
	if failures == len(deployments) {
		return fmt.Errorf("all %d slack notifications failed", failures)
	}
	s.logger.Info("slack notifications complete", "sent", sent, "failed", failures)
	return nil
}

func (s *SlackNotifier) sendMessage(d model.Deployment) error {
	body, err := json.Marshal(buildPayload(d))
	if err != nil {
		return fmt.Errorf("marshal slack payload: %w", err)
	}

	status, retryAfter, err := s.post(body)
	if err != nil {
		return err
	}

	if status == http.StatusTooManyRequests {
		s.logger.Warn("slack rate limited, retrying", "retry_after", retryAfter)
		time.Sleep(retryAfter)

		status, _, err = s.post(body)
		if err != nil {
			return fmt.Errorf("retry: %w", err)
		}
		if status != http.StatusOK {
			return fmt.Errorf("slack returned %d on retry", status)
		}
		s.logger.Info("slack message sent", "document", d.Document, "env", d.Env, "retried", true)
		return nil
	}

	if status != http.StatusOK {
		return fmt.Errorf("slack returned %d", status)
	}
	s.logger.Info("slack message sent", "document", d.Document, "env", d.Env)
	return nil
}

// post sends body to the webhook and returns the status with the requested
// Retry-After delay (at least one second).
func (s *SlackNotifier) post(body []byte) (int, time.Duration, error) {
	resp, err := s.httpClient.Post(s.webhookURL, "application/json", bytes.NewReader(body))
	if err != nil {
		return 0, 0, fmt.Errorf("post to slack: %w", err)
	}
	defer resp.Body.Close()

	secs, _ := strconv.Atoi(resp.Header.Get("Retry-After"))
	if secs <= 0 {
		secs = 1
	}
	return resp.StatusCode, time.Duration(secs) * time.Second, nil
}

// Block Kit payload types.

type slackPayload struct {
	Blocks []slackBlock `json:"blocks"`
}

type slackBlock struct {
	Type     string         `json:"type"`
	Text     *slackText     `json:"text,omitempty"`
	Fields   []slackText    `json:"fields,omitempty"`
	Elements []slackElement `json:"elements,omitempty"`
}

type slackText struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

type slackElement struct {
	Type  string    `json:"type"`
	Text  slackText `json:"text"`
	URL   string    `json:"url"`
	Style string    `json:"style"`
}

// SendTestMessage sends a sample deployment for env to verify the integration works.
func SendTestMessage(n model.Notifier, env string) error {
	key := "index.html"
	if env != "prod" {
		key = env + "/index.html"
	}
	return n.Notify([]model.Deployment{{
		ID:         "test-001",
		Document:   "resume_template.md",
		Env:        env,
		Target:     "anthropic.claude-3-haiku-20240307-v1:0",
		URL:        "https://example-bucket.s3.us-east-1.amazonaws.com/" + key,
		DeployedAt: time.Now(),
	}})
}

func buildPayload(d model.Deployment) slackPayload {
	served := "`" + d.Target + "`"
	if d.Profile != "" {
		served += " via `" + d.Profile + "`"
	}

	deployedAt := d.DeployedAt
	if deployedAt.IsZero() {
		deployedAt = time.Now()
	}

	return slackPayload{Blocks: []slackBlock{
		{
			Type: "header",
			Text: &slackText{Type: "plain_text", Text: "📄 Resume deployed to " + d.Env},
		},
		{
			Type: "section",
			Fields: []slackText{
				{Type: "mrkdwn", Text: "*Document:*\n" + d.Document},
				{Type: "mrkdwn", Text: "*Environment:*\n" + d.Env},
			},
		},
		{
			Type: "section",
			Fields: []slackText{
				{Type: "mrkdwn", Text: "*Model:*\n" + served},
				{Type: "mrkdwn", Text: "*Deployed:*\n" + deployedAt.UTC().Format(time.RFC1123)},
			},
		},
		{
			Type: "actions",
			Elements: []slackElement{
				{
					Type:  "button",
					Text:  slackText{Type: "plain_text", Text: "View Resume"},
					URL:   d.URL,
					Style: "primary",
				},
			},
		},
		{Type: "divider"},
	}}
}
