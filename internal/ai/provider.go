package ai

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/bedrock"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"
)

// RuntimeAPI is the subset of the bedrock-runtime client used for invocation.
type RuntimeAPI interface {
	InvokeModel(ctx context.Context, params *bedrockruntime.InvokeModelInput, optFns ...func(*bedrockruntime.Options)) (*bedrockruntime.InvokeModelOutput, error)
}

// NewRuntimeClient builds a bedrock-runtime client with SDK retries turned
// off: one Invoke is one network call, and retry policy lives with the caller.
func NewRuntimeClient(cfg aws.Config) *bedrockruntime.Client {
	return bedrockruntime.NewFromConfig(cfg, func(o *bedrockruntime.Options) {
		o.Retryer = aws.NopRetryer{}
	})
}

// NewControlClient builds the bedrock control-plane client used to list
// inference profiles.
func NewControlClient(cfg aws.Config) *bedrock.Client {
	return bedrock.NewFromConfig(cfg)
}
