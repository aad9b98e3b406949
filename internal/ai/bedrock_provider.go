package ai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"

	"github.com/amishk599/resumegen/internal/model"
)

// Ensure BedrockProvider implements model.Invoker.
var _ model.Invoker = (*BedrockProvider)(nil)

const anthropicVersion = "bedrock-2023-05-31"

// BedrockProvider invokes Anthropic models on Bedrock through InvokeModel.
// The target may be a foundation model id or an inference profile id.
type BedrockProvider struct {
	client RuntimeAPI
}

// NewBedrockProvider creates a provider over a bedrock-runtime client.
func NewBedrockProvider(client RuntimeAPI) *BedrockProvider {
	return &BedrockProvider{client: client}
}

// messagesRequest mirrors the Anthropic messages body accepted by Bedrock.
type messagesRequest struct {
	AnthropicVersion string        `json:"anthropic_version"`
	MaxTokens        int           `json:"max_tokens"`
	Messages         []chatMessage `json:"messages"`
}

type messagesResponse struct {
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
}

// Invoke sends one InvokeModel request. Service errors are classified here;
// a response without generated text is a MalformedResponse.
func (p *BedrockProvider) Invoke(ctx context.Context, target string, req model.RenderRequest) (string, error) {
	body, err := json.Marshal(messagesRequest{
		AnthropicVersion: anthropicVersion,
		MaxTokens:        req.MaxTokens,
		Messages:         []chatMessage{{Role: "user", Content: req.Instruction}},
	})
	if err != nil {
		return "", fmt.Errorf("marshal bedrock request: %w", err)
	}

	out, err := p.client.InvokeModel(ctx, &bedrockruntime.InvokeModelInput{
		ModelId:     aws.String(target),
		ContentType: aws.String("application/json"),
		Accept:      aws.String("application/json"),
		Body:        body,
	})
	if err != nil {
		return "", Classify(target, err)
	}

	text, err := extractText(out.Body)
	if err != nil {
		return "", &model.InvocationError{
			Target:  target,
			Kind:    model.KindMalformedResponse,
			Message: err.Error(),
			Err:     err,
		}
	}
	return text, nil
}

// extractText returns the first non-empty text block of a messages response.
func extractText(body []byte) (string, error) {
	var resp messagesResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return "", fmt.Errorf("parse bedrock response: %w", err)
	}
	if len(resp.Content) == 0 {
		return "", errors.New("bedrock response has no content blocks")
	}
	for _, c := range resp.Content {
		if (c.Type == "" || c.Type == "text") && c.Text != "" {
			return c.Text, nil
		}
	}
	return "", errors.New("bedrock response has no text content")
}
