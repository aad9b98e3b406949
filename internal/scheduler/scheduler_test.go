package scheduler

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/amishk599/resumegen/internal/model"
)

// --- Mock implementations ---

// countingDeployer counts Deploy calls and returns a fixed outcome.
type countingDeployer struct {
	name  string
	calls atomic.Int32
	ok    bool
	err   error
	delay time.Duration

	recorder *orderRecorder
}

func (d *countingDeployer) Name() string { return d.name }

func (d *countingDeployer) Deploy(_ context.Context) (model.Deployment, bool, error) {
	d.calls.Add(1)
	if d.recorder != nil {
		d.recorder.record(d.name)
	}
	if d.delay > 0 {
		time.Sleep(d.delay)
	}
	if d.err != nil {
		return model.Deployment{}, false, d.err
	}
	if !d.ok {
		return model.Deployment{}, false, nil
	}
	return model.Deployment{Document: d.name}, true, nil
}

type orderRecorder struct {
	mu    sync.Mutex
	order []string
}

func (r *orderRecorder) record(name string) {
	r.mu.Lock()
	r.order = append(r.order, name)
	r.mu.Unlock()
}

type cleanupCounter struct {
	calls     atomic.Int32
	olderThan time.Duration
}

func (c *cleanupCounter) LatestDigest(string, string) (string, error) { return "", nil }
func (c *cleanupCounter) Record(model.Deployment) error                { return nil }
func (c *cleanupCounter) Recent(int) ([]model.Deployment, error)       { return nil, nil }
func (c *cleanupCounter) Cleanup(olderThan time.Duration) error {
	c.calls.Add(1)
	c.olderThan = olderThan
	return nil
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// --- Tests ---

func TestRunOnce_Summary(t *testing.T) {
	deployers := []Deployer{
		&countingDeployer{name: "a.md", ok: true},
		&countingDeployer{name: "b.md"},
		&countingDeployer{name: "c.md", err: errors.New("exhausted")},
	}
	s := NewScheduler(deployers, time.Hour, 2, nil, 0, discardLogger())

	sum, err := s.RunOnce(context.Background())
	if err == nil {
		t.Fatal("expected joined error for failed deployer")
	}
	if len(sum.Deployed) != 1 || sum.Deployed[0].Document != "a.md" {
		t.Errorf("Deployed = %+v", sum.Deployed)
	}
	if sum.Skipped != 1 || sum.Failed != 1 {
		t.Errorf("Skipped = %d, Failed = %d, want 1 and 1", sum.Skipped, sum.Failed)
	}
}

func TestRunOnce_OneFailureOthersStillRun(t *testing.T) {
	failing := &countingDeployer{name: "failing", err: errors.New("boom")}
	healthy := &countingDeployer{name: "healthy", ok: true}
	s := NewScheduler([]Deployer{failing, healthy}, time.Hour, 1, nil, 0, discardLogger())

	if _, err := s.RunOnce(context.Background()); err == nil {
		t.Fatal("expected error")
	}
	if healthy.calls.Load() != 1 {
		t.Errorf("healthy deployer calls = %d, want 1", healthy.calls.Load())
	}
}

func TestRunOnce_SequentialPreservesOrder(t *testing.T) {
	rec := &orderRecorder{}
	var deployers []Deployer
	for _, name := range []string{"d1", "d2", "d3"} {
		deployers = append(deployers, &countingDeployer{name: name, recorder: rec})
	}
	s := NewScheduler(deployers, time.Hour, 0, nil, 0, discardLogger())

	if _, err := s.RunOnce(context.Background()); err != nil {
		t.Fatalf("RunOnce: %v", err)
	}

	want := []string{"d1", "d2", "d3"}
	if len(rec.order) != len(want) {
		t.Fatalf("order = %v, want %v", rec.order, want)
	}
	for i := range want {
		if rec.order[i] != want[i] {
			t.Fatalf("order = %v, want %v", rec.order, want)
		}
	}
}

func TestRunOnce_ConcurrencyOverlapsDocuments(t *testing.T) {
	var deployers []Deployer
	for _, name := range []string{"d1", "d2", "d3"} {
		deployers = append(deployers, &countingDeployer{name: name, delay: 100 * time.Millisecond})
	}
	s := NewScheduler(deployers, time.Hour, 3, nil, 0, discardLogger())

	start := time.Now()
	if _, err := s.RunOnce(context.Background()); err != nil {
		t.Fatalf("RunOnce: %v", err)
	}
	if elapsed := time.Since(start); elapsed > 250*time.Millisecond {
		t.Errorf("elapsed %v: expected documents to run concurrently", elapsed)
	}
}

func TestRunOnce_PrunesHistory(t *testing.T) {
	history := &cleanupCounter{}
	s := NewScheduler([]Deployer{&countingDeployer{name: "a"}}, time.Hour, 1, history, 72*time.Hour, discardLogger())

	if _, err := s.RunOnce(context.Background()); err != nil {
		t.Fatalf("RunOnce: %v", err)
	}
	if history.calls.Load() != 1 || history.olderThan != 72*time.Hour {
		t.Errorf("cleanup calls = %d olderThan = %v", history.calls.Load(), history.olderThan)
	}

	noRetention := &cleanupCounter{}
	s = NewScheduler(nil, time.Hour, 1, noRetention, 0, discardLogger())
	s.RunOnce(context.Background())
	if noRetention.calls.Load() != 0 {
		t.Error("cleanup should not run without a retention period")
	}
}

func TestRun_CancelReturnsPromptly(t *testing.T) {
	s := NewScheduler([]Deployer{&countingDeployer{name: "a"}}, time.Hour, 1, nil, 0, discardLogger())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- s.Run(ctx)
	}()

	time.Sleep(100 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("expected nil error on cancel, got: %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("scheduler did not return within 2s after cancel")
	}
}

func TestRun_DeploysEachInterval(t *testing.T) {
	d := &countingDeployer{name: "a"}
	s := NewScheduler([]Deployer{d}, 100*time.Millisecond, 1, nil, 0, discardLogger())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- s.Run(ctx)
	}()

	// Allow time for at least two full passes (deploy → sleep interval → deploy).
	time.Sleep(250 * time.Millisecond)
	cancel()
	<-done

	if got := d.calls.Load(); got < 2 {
		t.Errorf("deploy calls = %d, want >= 2", got)
	}
}
