package render

import (
	"context"
	"errors"
	"testing"

	"github.com/amishk599/resumegen/internal/model"
)

var snapshot = []model.RoutingProfile{
	{ID: "us.anthropic.claude-3-haiku-20240307-v1:0", Models: []string{
		"arn:aws:bedrock:us-east-1::foundation-model/anthropic.claude-3-haiku-20240307-v1:0",
		"arn:aws:bedrock:us-west-2::foundation-model/anthropic.claude-3-haiku-20240307-v1:0",
	}},
	{ID: "us.anthropic.claude-3-5-sonnet-20241022-v2:0", Models: []string{
		"arn:aws:bedrock:us-east-1::foundation-model/anthropic.claude-3-5-sonnet-20241022-v2:0",
	}},
}

func TestModelPrefix(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"anthropic.claude-3-5-sonnet-20241022-v2:0", "anthropic.claude-3-5-sonnet-20241022-v2"},
		{"m1", "m1"},
		{"a:b:c", "a"},
		{"", ""},
	}
	for _, tt := range tests {
		if got := ModelPrefix(tt.in); got != tt.want {
			t.Errorf("ModelPrefix(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestMatchProfile_FirstMatchWins(t *testing.T) {
	p, ok := MatchProfile(snapshot, "anthropic.claude-3-5-sonnet-20241022-v2")
	if !ok {
		t.Fatal("expected a match")
	}
	if p.ID != "us.anthropic.claude-3-5-sonnet-20241022-v2:0" {
		t.Errorf("ID = %q", p.ID)
	}

	// "anthropic.claude-3" is contained by both; the first in order wins.
	p, ok = MatchProfile(snapshot, "anthropic.claude-3")
	if !ok || p.ID != snapshot[0].ID {
		t.Errorf("got %q, want first profile", p.ID)
	}
}

func TestMatchProfile_NoMatchOrEmptyPrefix(t *testing.T) {
	if _, ok := MatchProfile(snapshot, "meta.llama3"); ok {
		t.Error("expected no match")
	}
	if _, ok := MatchProfile(snapshot, ""); ok {
		t.Error("empty prefix must not match")
	}
}

func TestResolve_Idempotent(t *testing.T) {
	reg := &stubRegistry{profiles: snapshot}
	s := NewProfileResolver(reg, discardLogger()).Session()

	first, ok1 := s.Resolve(context.Background(), "anthropic.claude-3-haiku-20240307-v1")
	second, ok2 := s.Resolve(context.Background(), "anthropic.claude-3-haiku-20240307-v1")
	if !ok1 || !ok2 || first.ID != second.ID {
		t.Fatalf("expected same profile twice, got %q/%v and %q/%v", first.ID, ok1, second.ID, ok2)
	}
	if reg.calls != 1 {
		t.Errorf("registry scanned %d times, want 1", reg.calls)
	}
}

func TestResolve_RegistryErrorIsNotCached(t *testing.T) {
	reg := &stubRegistry{err: errors.New("boom")}
	s := NewProfileResolver(reg, discardLogger()).Session()

	if _, ok := s.Resolve(context.Background(), "anthropic.claude-3"); ok {
		t.Fatal("expected no profile on registry error")
	}

	reg.err = nil
	reg.profiles = snapshot
	if _, ok := s.Resolve(context.Background(), "anthropic.claude-3"); !ok {
		t.Fatal("expected profile once registry recovers")
	}
	if reg.calls != 2 {
		t.Errorf("registry scanned %d times, want 2", reg.calls)
	}
}

func TestResolve_NilRegistry(t *testing.T) {
	if _, ok := NewProfileResolver(nil, discardLogger()).Resolve(context.Background(), "m1"); ok {
		t.Error("nil registry must never resolve")
	}
}

func TestCandidates(t *testing.T) {
	defaults := []string{"a", "b"}

	got := Candidates("x", defaults)
	if len(got) != 3 || got[0] != "x" || got[1] != "a" || got[2] != "b" {
		t.Errorf("Candidates(x) = %v", got)
	}

	got = Candidates("  ", defaults)
	if len(got) != 2 || got[0] != "a" {
		t.Errorf("Candidates(blank) = %v", got)
	}

	// Duplicates are preserved and the defaults slice is not aliased.
	got = Candidates("a", defaults)
	got[1] = "mutated"
	if len(got) != 3 || defaults[0] != "a" {
		t.Errorf("Candidates(a) = %v, defaults = %v", got, defaults)
	}
}
