package ratelimit

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/amishk599/resumegen/internal/model"
)

func TestWait_SameTarget_EnforcesMinDelay(t *testing.T) {
	limiter := NewTargetRateLimiter(100 * time.Millisecond)
	ctx := context.Background()

	// First call should return immediately.
	if err := limiter.Wait(ctx, "m1"); err != nil {
		t.Fatalf("first wait: %v", err)
	}

	start := time.Now()
	if err := limiter.Wait(ctx, "m1"); err != nil {
		t.Fatalf("second wait: %v", err)
	}
	elapsed := time.Since(start)

	// Should have waited at least ~100ms (allow 80ms for timer jitter).
	if elapsed < 80*time.Millisecond {
		t.Errorf("expected >= 80ms wait, got %v", elapsed)
	}
}

func TestWait_DifferentTargets_NoCrossBlocking(t *testing.T) {
	limiter := NewTargetRateLimiter(200 * time.Millisecond)
	ctx := context.Background()

	if err := limiter.Wait(ctx, "m1"); err != nil {
		t.Fatalf("m1 wait: %v", err)
	}

	start := time.Now()
	if err := limiter.Wait(ctx, "m2"); err != nil {
		t.Fatalf("m2 wait: %v", err)
	}
	if elapsed := time.Since(start); elapsed > 50*time.Millisecond {
		t.Errorf("expected m2 wait to be near-instant, got %v", elapsed)
	}
}

func TestWait_ConcurrentCallersAreSpaced(t *testing.T) {
	limiter := NewTargetRateLimiter(50 * time.Millisecond)
	ctx := context.Background()

	start := time.Now()
	var wg sync.WaitGroup
	for range 3 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := limiter.Wait(ctx, "m1"); err != nil {
				t.Errorf("wait: %v", err)
			}
		}()
	}
	wg.Wait()

	// Three callers need slots at 0, 50 and 100ms.
	if elapsed := time.Since(start); elapsed < 80*time.Millisecond {
		t.Errorf("expected >= 80ms for three queued callers, got %v", elapsed)
	}
}

func TestWait_ContextCancellation(t *testing.T) {
	limiter := NewTargetRateLimiter(5 * time.Second)

	if err := limiter.Wait(context.Background(), "m1"); err != nil {
		t.Fatalf("first wait: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := limiter.Wait(ctx, "m1")
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

type recordingInvoker struct {
	called bool
}

func (r *recordingInvoker) Invoke(_ context.Context, _ string, _ model.RenderRequest) (string, error) {
	r.called = true
	return "ok", nil
}

func TestRateLimitedInvoker_WaitsBeforeDelegating(t *testing.T) {
	limiter := NewTargetRateLimiter(100 * time.Millisecond)
	inner := &recordingInvoker{}
	inv := NewRateLimitedInvoker(inner, limiter)
	ctx := context.Background()

	if _, err := inv.Invoke(ctx, "m1", model.RenderRequest{}); err != nil {
		t.Fatalf("first invoke: %v", err)
	}
	if !inner.called {
		t.Fatal("inner invoker was not called on first invoke")
	}

	inner.called = false

	start := time.Now()
	if _, err := inv.Invoke(ctx, "m1", model.RenderRequest{}); err != nil {
		t.Fatalf("second invoke: %v", err)
	}
	if !inner.called {
		t.Fatal("inner invoker was not called on second invoke")
	}
	if elapsed := time.Since(start); elapsed < 80*time.Millisecond {
		t.Errorf("expected >= 80ms wait on second invoke, got %v", elapsed)
	}
}
