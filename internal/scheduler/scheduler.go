package scheduler

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/amishk599/resumegen/internal/model"
)

// Deployer runs one deployment cycle for a single document.
// *deployer.DocumentDeployer satisfies it.
type Deployer interface {
	Name() string
	Deploy(ctx context.Context) (model.Deployment, bool, error)
}

// Summary counts the outcomes of one cycle.
type Summary struct {
	Deployed []model.Deployment
	Skipped  int
	Failed   int
}

// Scheduler runs every deployer once per cycle with bounded concurrency.
// Each deployer performs its own orchestration run.
type Scheduler struct {
	deployers   []Deployer
	interval    time.Duration
	concurrency int
	history     model.DeploymentStore
	retention   time.Duration
	logger      *slog.Logger
}

// NewScheduler creates a scheduler. concurrency below 1 runs documents one at
// a time. History older than retention is pruned after each cycle when both
// history and retention are set.
func NewScheduler(
	deployers []Deployer,
	interval time.Duration,
	concurrency int,
	history model.DeploymentStore,
	retention time.Duration,
	logger *slog.Logger,
) *Scheduler {
	if concurrency < 1 {
		concurrency = 1
	}
	return &Scheduler{
		deployers:   deployers,
		interval:    interval,
		concurrency: concurrency,
		history:     history,
		retention:   retention,
		logger:      logger,
	}
}

// Run starts the watch loop. It runs one immediate cycle, then ticks on the
// configured interval. It returns nil when ctx is cancelled (graceful shutdown).
func (s *Scheduler) Run(ctx context.Context) error {
	s.logger.Info("starting scheduler",
		"interval", s.interval.String(),
		"documents", len(s.deployers),
		"concurrency", s.concurrency,
	)

	// Run one immediate cycle.
	s.cycle(ctx)

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("shutting down scheduler")
			return nil
		case <-time.After(s.interval):
			s.cycle(ctx)
		}
	}
}

// RunOnce runs a single cycle and returns the joined deployment errors.
func (s *Scheduler) RunOnce(ctx context.Context) (Summary, error) {
	sum, errs := s.deployAll(ctx)
	s.prune()
	return sum, errors.Join(errs...)
}

func (s *Scheduler) cycle(ctx context.Context) {
	sum, _ := s.deployAll(ctx)
	s.prune()
	if ctx.Err() != nil {
		return
	}
	s.logger.Info("cycle complete",
		"deployed", len(sum.Deployed),
		"skipped", sum.Skipped,
		"failed", sum.Failed,
	)
}

func (s *Scheduler) deployAll(ctx context.Context) (Summary, []error) {
	var (
		mu   sync.Mutex
		sum  Summary
		errs []error
	)

	g := new(errgroup.Group)
	g.SetLimit(s.concurrency)

	for _, d := range s.deployers {
		if ctx.Err() != nil {
			break
		}
		g.Go(func() error {
			dep, ok, err := d.Deploy(ctx)

			mu.Lock()
			defer mu.Unlock()
			switch {
			case err != nil:
				s.logger.Error("deploy failed", "document", d.Name(), "error", err)
				sum.Failed++
				errs = append(errs, fmt.Errorf("%s: %w", d.Name(), err))
			case ok:
				sum.Deployed = append(sum.Deployed, dep)
			default:
				sum.Skipped++
			}
			// Failures are collected, never returned, so siblings keep running.
			return nil
		})
	}
	_ = g.Wait()

	return sum, errs
}

func (s *Scheduler) prune() {
	if s.history == nil || s.retention <= 0 {
		return
	}
	if err := s.history.Cleanup(s.retention); err != nil {
		s.logger.Warn("history cleanup failed", "error", err)
	}
}
