package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/amishk599/resumegen/internal/model"
)

// Ensure OpenAIProvider implements model.Invoker.
var _ model.Invoker = (*OpenAIProvider)(nil)

// OpenAIProvider calls an OpenAI-compatible /chat/completions endpoint. The
// invocation target is sent as the model name.
type OpenAIProvider struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

// NewOpenAIProvider creates a provider targeting an OpenAI-compatible API.
func NewOpenAIProvider(baseURL, apiKey string, httpClient *http.Client) *OpenAIProvider {
	return &OpenAIProvider{
		baseURL:    baseURL,
		apiKey:     apiKey,
		httpClient: httpClient,
	}
}

// chatRequest mirrors the OpenAI /v1/chat/completions request body.
type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
	MaxTokens   int           `json:"max_tokens"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// chatResponse mirrors the relevant fields of the OpenAI response.
type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Error *apiError `json:"error,omitempty"`
}

type apiError struct {
	Message string `json:"message"`
	Type    string `json:"type"`
}

// Invoke sends one chat completion request routed to target.
func (p *OpenAIProvider) Invoke(ctx context.Context, target string, req model.RenderRequest) (string, error) {
	body, err := json.Marshal(chatRequest{
		Model:       target,
		Messages:    []chatMessage{{Role: "user", Content: req.Instruction}},
		Temperature: 0.2,
		MaxTokens:   req.MaxTokens,
	})
	if err != nil {
		return "", fmt.Errorf("marshal llm request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, p.baseURL+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("create llm request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+p.apiKey)

	resp, err := p.httpClient.Do(httpReq)
	if err != nil {
		return "", Classify(target, fmt.Errorf("llm request: %w", err))
	}
	defer resp.Body.Close()

	respBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", Classify(target, fmt.Errorf("read llm response: %w", err))
	}

	if resp.StatusCode != http.StatusOK {
		return "", Classify(target, &model.HTTPError{
			StatusCode: resp.StatusCode,
			RetryAfter: parseRetryAfter(resp.Header.Get("Retry-After")),
			Err:        errors.New(errorMessage(respBytes)),
		})
	}

	var chatResp chatResponse
	if err := json.Unmarshal(respBytes, &chatResp); err != nil {
		return "", malformed(target, fmt.Errorf("parse llm response: %w", err))
	}
	if chatResp.Error != nil {
		return "", Classify(target, fmt.Errorf("llm error (%s): %s", chatResp.Error.Type, chatResp.Error.Message))
	}
	if len(chatResp.Choices) == 0 || chatResp.Choices[0].Message.Content == "" {
		return "", malformed(target, errors.New("llm returned no content"))
	}

	return chatResp.Choices[0].Message.Content, nil
}

func malformed(target string, err error) *model.InvocationError {
	return &model.InvocationError{
		Target:  target,
		Kind:    model.KindMalformedResponse,
		Message: err.Error(),
		Err:     err,
	}
}

// errorMessage prefers the structured error message and falls back to the raw body.
func errorMessage(body []byte) string {
	var r chatResponse
	if err := json.Unmarshal(body, &r); err == nil && r.Error != nil && r.Error.Message != "" {
		return r.Error.Message
	}
	return string(body)
}

func parseRetryAfter(v string) time.Duration {
	secs, err := strconv.Atoi(v)
	if err != nil || secs <= 0 {
		return 0
	}
	return time.Duration(secs) * time.Second
}
