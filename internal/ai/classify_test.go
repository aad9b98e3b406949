package ai

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/amishk599/resumegen/internal/model"
)

func TestClassifyMessage(t *testing.T) {
	tests := []struct {
		code, msg string
		want      model.ErrorKind
	}{
		{"ValidationException", "Invocation with ON-DEMAND THROUGHPUT isn't supported", model.KindCapacityRestricted},
		{"ValidationException", "Retry with the ARN of an Inference Profile", model.KindCapacityRestricted},
		{"AccessDeniedException", "not authorized", model.KindAccessDenied},
		{"", "You don't have Access to the model", model.KindAccessDenied},
		{"ThrottlingException", "rate exceeded", model.KindThrottled},
		{"ServiceUnavailableException", "", model.KindThrottled},
		{"", "Too Many Requests", model.KindThrottled},
		{"ValidationException", "prompt is too long", model.KindUnknown},
		{"", "", model.KindUnknown},
	}
	for _, tt := range tests {
		if got := ClassifyMessage(tt.code, tt.msg); got != tt.want {
			t.Errorf("ClassifyMessage(%q, %q) = %v, want %v", tt.code, tt.msg, got, tt.want)
		}
	}
}

func TestClassify_KeepsExistingInvocationError(t *testing.T) {
	orig := &model.InvocationError{Target: "m1", Kind: model.KindMalformedResponse}
	if got := Classify("m2", orig); got != orig {
		t.Errorf("expected the original error back, got %v", got)
	}
}

func TestClassify_PlainErrors(t *testing.T) {
	got := Classify("m1", context.DeadlineExceeded)
	if got.Kind != model.KindUnknown || got.Target != "m1" {
		t.Errorf("got %+v", got)
	}
	if !errors.Is(got, context.DeadlineExceeded) {
		t.Error("expected wrapped cause to be preserved")
	}
}

func TestBuildRenderRequest(t *testing.T) {
	req, err := BuildRenderRequest(ResumeTemplate, "# Jane Doe\n\n- Go", 4096)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if req.MaxTokens != 4096 || req.Document != "# Jane Doe\n\n- Go" {
		t.Errorf("req = %+v", req)
	}
	if want := "# Jane Doe\n\n- Go"; !strings.Contains(req.Instruction, want) {
		t.Errorf("instruction does not embed the document:\n%s", req.Instruction)
	}
	if !strings.Contains(req.Instruction, "complete HTML document") {
		t.Errorf("instruction missing template text:\n%s", req.Instruction)
	}
}
