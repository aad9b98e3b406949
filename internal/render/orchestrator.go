package render

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/amishk599/resumegen/internal/model"
)

var (
	// ErrExhausted is matched by errors.Is on every ExhaustedError.
	ErrExhausted = errors.New("all candidates failed")
	// ErrNoCandidates is the last error of a run given no identifiers.
	ErrNoCandidates = errors.New("no candidate identifiers")
)

// ExhaustedError ends a run in which no attempt succeeded. Last is the most
// recent failure, or the context error when the deadline expired.
type ExhaustedError struct {
	Last     error
	Attempts int
}

func (e *ExhaustedError) Error() string {
	return fmt.Sprintf("render exhausted after %d attempts: %v", e.Attempts, e.Last)
}

func (e *ExhaustedError) Unwrap() []error {
	return []error{ErrExhausted, e.Last}
}

// Options tune how the orchestrator treats unclassified failures.
type Options struct {
	// FailOpenOnUnknown advances to the next candidate on an Unknown failure.
	// When false the first Unknown failure aborts the run.
	FailOpenOnUnknown bool
	// UnknownErrorLimit aborts the run once this many candidate attempts have
	// failed with Unknown. Zero means no limit.
	UnknownErrorLimit int
}

// DefaultOptions fails open with no limit.
func DefaultOptions() Options {
	return Options{FailOpenOnUnknown: true}
}

// Orchestrator tries candidates strictly in order and falls back to a routing
// profile when a candidate is capacity restricted. Worst case it makes
// 2*len(candidates) calls.
type Orchestrator struct {
	invoker  model.Invoker
	resolver *ProfileResolver
	opts     Options
	logger   *slog.Logger
}

// NewOrchestrator wires an orchestrator. resolver may be nil, in which case
// capacity-restricted candidates are simply skipped.
func NewOrchestrator(invoker model.Invoker, resolver *ProfileResolver, opts Options, logger *slog.Logger) *Orchestrator {
	if resolver == nil {
		resolver = NewProfileResolver(nil, logger)
	}
	return &Orchestrator{
		invoker:  invoker,
		resolver: resolver,
		opts:     opts,
		logger:   logger,
	}
}

// Render produces rendered text for req. It returns the first success, the
// fatal error that aborted the run, or an *ExhaustedError carrying the last
// failure. Each call owns its own resolver session.
func (o *Orchestrator) Render(ctx context.Context, req model.RenderRequest, candidates []string) (model.Rendering, error) {
	runID := uuid.NewString()
	logger := o.logger.With("run_id", runID)
	session := o.resolver.Session()

	if len(candidates) == 0 {
		return model.Rendering{}, &ExhaustedError{Last: ErrNoCandidates}
	}

	var (
		lastErr  error
		attempts int
		unknowns int
	)

	for i, id := range candidates {
		if err := ctx.Err(); err != nil {
			return o.exhausted(logger, err, attempts)
		}

		out := o.attempt(ctx, logger, id, req)
		attempts++

		switch out.Kind {
		case OutcomeSuccess:
			logger.Info("render succeeded", "target", id, "attempts", attempts)
			return model.Rendering{Text: out.Text, Target: id, Attempts: attempts, RunID: runID}, nil
		case OutcomeFatal:
			logger.Error("render aborted", "target", id, "reason", out.Reason, "error", out.Err)
			return model.Rendering{}, out.Err
		}

		lastErr = out.Err
		if err := ctx.Err(); err != nil {
			return o.exhausted(logger, err, attempts)
		}

		if out.Reason == model.KindUnknown {
			unknowns++
			if o.escalateUnknown(unknowns) {
				logger.Error("render aborted on unknown error", "target", id, "unknown_failures", unknowns, "error", out.Err)
				return model.Rendering{}, out.Err
			}
		}

		if out.Reason != model.KindCapacityRestricted {
			continue
		}

		prefix := ModelPrefix(id)
		profile, ok := session.Resolve(ctx, prefix)
		if !ok {
			logger.Info("skipping capacity-restricted candidate", "target", id, "prefix", prefix, "remaining", len(candidates)-i-1)
			continue
		}
		if err := ctx.Err(); err != nil {
			return o.exhausted(logger, err, attempts)
		}

		// Exactly one attempt through the profile; its failures are never
		// resolved again.
		pout := o.attempt(ctx, logger, profile.ID, req)
		attempts++
		if pout.Kind == OutcomeSuccess {
			logger.Info("render succeeded via profile", "target", id, "profile", profile.ID, "attempts", attempts)
			return model.Rendering{
				Text:     pout.Text,
				Target:   id,
				Profile:  profile.ID,
				Attempts: attempts,
				RunID:    runID,
			}, nil
		}
		lastErr = pout.Err
	}

	if err := ctx.Err(); err != nil {
		return o.exhausted(logger, err, attempts)
	}
	return o.exhausted(logger, lastErr, attempts)
}

func (o *Orchestrator) attempt(ctx context.Context, logger *slog.Logger, target string, req model.RenderRequest) Outcome {
	logger.Debug("invoking", "target", target)
	text, err := o.invoker.Invoke(ctx, target, req)
	out := classifyOutcome(target, text, err)

	switch {
	case out.Kind == OutcomeSuccess:
		logger.Debug("attempt succeeded", "target", target, "chars", len(out.Text))
	case out.Reason == model.KindAccessDenied:
		logger.Warn("access denied for target", "target", target, "error", out.Err)
	default:
		logger.Warn("attempt failed", "target", target, "outcome", out.Kind, "reason", out.Reason, "error", out.Err)
	}
	return out
}

func (o *Orchestrator) escalateUnknown(unknowns int) bool {
	if !o.opts.FailOpenOnUnknown {
		return true
	}
	return o.opts.UnknownErrorLimit > 0 && unknowns >= o.opts.UnknownErrorLimit
}

func (o *Orchestrator) exhausted(logger *slog.Logger, last error, attempts int) (model.Rendering, error) {
	logger.Error("render exhausted", "attempts", attempts, "error", last)
	return model.Rendering{}, &ExhaustedError{Last: last, Attempts: attempts}
}
