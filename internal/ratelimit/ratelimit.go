package ratelimit

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/amishk599/resumegen/internal/model"
)

// TargetRateLimiter enforces a minimum delay between calls routed to the same
// inference target. It is shared by concurrent runs in batch mode.
type TargetRateLimiter struct {
	mu       sync.Mutex
	nextSlot map[string]time.Time // key: target identifier
	minDelay time.Duration
}

// NewTargetRateLimiter creates a limiter that spaces consecutive calls to the
// same target at least minDelay apart.
func NewTargetRateLimiter(minDelay time.Duration) *TargetRateLimiter {
	return &TargetRateLimiter{
		nextSlot: make(map[string]time.Time),
		minDelay: minDelay,
	}
}

// Wait blocks until the caller's reserved slot for target arrives.
// Returns an error if the context is cancelled while waiting.
func (r *TargetRateLimiter) Wait(ctx context.Context, target string) error {
	r.mu.Lock()
	now := time.Now()
	slot, ok := r.nextSlot[target]
	if !ok || slot.Before(now) {
		slot = now
	}
	// Reserve before unlocking so concurrent callers queue behind each other.
	r.nextSlot[target] = slot.Add(r.minDelay)
	r.mu.Unlock()

	remaining := slot.Sub(now)
	if remaining <= 0 {
		return nil
	}

	select {
	case <-ctx.Done():
		return fmt.Errorf("rate limiter wait for %s: %w", target, ctx.Err())
	case <-time.After(remaining):
	}
	return nil
}

// Ensure RateLimitedInvoker implements model.Invoker.
var _ model.Invoker = (*RateLimitedInvoker)(nil)

// RateLimitedInvoker is a decorator that paces calls per target before
// delegating to the wrapped Invoker.
type RateLimitedInvoker struct {
	inner   model.Invoker
	limiter *TargetRateLimiter
}

// NewRateLimitedInvoker wraps an Invoker with per-target pacing.
// All runs sharing a backend should share the same limiter instance.
func NewRateLimitedInvoker(inner model.Invoker, limiter *TargetRateLimiter) *RateLimitedInvoker {
	return &RateLimitedInvoker{inner: inner, limiter: limiter}
}

// Invoke waits for the limiter, then delegates.
func (i *RateLimitedInvoker) Invoke(ctx context.Context, target string, req model.RenderRequest) (string, error) {
	if err := i.limiter.Wait(ctx, target); err != nil {
		return "", err
	}
	return i.inner.Invoke(ctx, target, req)
}
