package retry

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"time"

	"github.com/amishk599/resumegen/internal/model"
)

// Ensure RetryInvoker implements model.Invoker.
var _ model.Invoker = (*RetryInvoker)(nil)

// RetryInvoker is a decorator that retries throttled invocations with
// exponential backoff and jitter before reporting the failure upward. Every
// other outcome, success or failure, is returned after the first call.
type RetryInvoker struct {
	inner      model.Invoker
	maxRetries int
	baseDelay  time.Duration
	logger     *slog.Logger
}

// NewRetryInvoker wraps an Invoker with throttle retries.
// maxRetries is the number of additional attempts after the first throttle.
// baseDelay is the delay before the first retry, doubled on each subsequent retry.
func NewRetryInvoker(inner model.Invoker, maxRetries int, baseDelay time.Duration, logger *slog.Logger) *RetryInvoker {
	return &RetryInvoker{
		inner:      inner,
		maxRetries: maxRetries,
		baseDelay:  baseDelay,
		logger:     logger,
	}
}

// Invoke calls the wrapped invoker, retrying while it reports KindThrottled.
func (r *RetryInvoker) Invoke(ctx context.Context, target string, req model.RenderRequest) (string, error) {
	text, err := r.inner.Invoke(ctx, target, req)
	if !isRetryable(err) {
		return text, err
	}

	lastErr := err
	for attempt := 1; attempt <= r.maxRetries; attempt++ {
		delay := r.backoffDelay(attempt, lastErr)

		r.logger.Warn("retrying after throttle",
			"target", target,
			"attempt", attempt,
			"max_retries", r.maxRetries,
			"delay", delay,
			"error", lastErr,
		)

		select {
		case <-ctx.Done():
			return "", fmt.Errorf("retry cancelled: %w", ctx.Err())
		case <-time.After(delay):
		}

		text, err = r.inner.Invoke(ctx, target, req)
		if !isRetryable(err) {
			return text, err
		}
		lastErr = err
	}

	return "", lastErr
}

// backoffDelay computes the delay for a given attempt with ±30% jitter.
// If the error includes a Retry-After duration (HTTP 429), that takes precedence.
func (r *RetryInvoker) backoffDelay(attempt int, err error) time.Duration {
	var httpErr *model.HTTPError
	if errors.As(err, &httpErr) && httpErr.RetryAfter > 0 {
		return httpErr.RetryAfter
	}

	// Exponential: baseDelay * 2^(attempt-1)
	delay := r.baseDelay
	for i := 1; i < attempt; i++ {
		delay *= 2
	}

	jitter := float64(delay) * 0.3
	return time.Duration(float64(delay) + (rand.Float64()*2-1)*jitter)
}

// isRetryable returns true only for throttling; capacity restrictions,
// access denials and malformed responses are the orchestrator's business.
func isRetryable(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	return model.KindOf(err) == model.KindThrottled
}
