package render

import "github.com/amishk599/resumegen/internal/model"

// OutcomeKind is the orchestrator's view of one attempt.
type OutcomeKind int

const (
	OutcomeSuccess OutcomeKind = iota
	OutcomeRetryable
	OutcomeFatal
)

func (k OutcomeKind) String() string {
	switch k {
	case OutcomeSuccess:
		return "success"
	case OutcomeRetryable:
		return "retryable"
	default:
		return "fatal"
	}
}

// Outcome is the tagged result of a single invocation attempt.
type Outcome struct {
	Kind   OutcomeKind
	Text   string
	Reason model.ErrorKind // set for failures
	Err    error
}

// classifyOutcome maps an Invoker result onto an Outcome. Empty text from a
// "successful" call counts as a malformed response.
func classifyOutcome(target, text string, err error) Outcome {
	if err == nil {
		if text == "" {
			return Outcome{
				Kind:   OutcomeFatal,
				Reason: model.KindMalformedResponse,
				Err: &model.InvocationError{
					Target:  target,
					Kind:    model.KindMalformedResponse,
					Message: "empty generated text",
				},
			}
		}
		return Outcome{Kind: OutcomeSuccess, Text: text}
	}

	kind := model.KindOf(err)
	if kind.Fatal() {
		return Outcome{Kind: OutcomeFatal, Reason: kind, Err: err}
	}
	return Outcome{Kind: OutcomeRetryable, Reason: kind, Err: err}
}
