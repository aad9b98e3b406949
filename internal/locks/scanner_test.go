package locks

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"github.com/amishk599/resumegen/internal/model"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// fakeDynamo serves pages of items in order and records deletions.
type fakeDynamo struct {
	pages     [][]map[string]types.AttributeValue
	scanCalls int
	scanErr   error
	deleted   []string
	deleteErr map[string]error
}

func (f *fakeDynamo) Scan(_ context.Context, _ *dynamodb.ScanInput, _ ...func(*dynamodb.Options)) (*dynamodb.ScanOutput, error) {
	if f.scanErr != nil {
		return nil, f.scanErr
	}
	out := &dynamodb.ScanOutput{}
	if f.scanCalls < len(f.pages) {
		out.Items = f.pages[f.scanCalls]
	}
	f.scanCalls++
	if f.scanCalls < len(f.pages) {
		out.LastEvaluatedKey = map[string]types.AttributeValue{
			"LockID": &types.AttributeValueMemberS{Value: "cursor"},
		}
	}
	return out, nil
}

func (f *fakeDynamo) DeleteItem(_ context.Context, in *dynamodb.DeleteItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.DeleteItemOutput, error) {
	id := in.Key["LockID"].(*types.AttributeValueMemberS).Value
	if err := f.deleteErr[id]; err != nil {
		return nil, err
	}
	f.deleted = append(f.deleted, id)
	return &dynamodb.DeleteItemOutput{}, nil
}

func mapItem(lockID, created string) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{
		"LockID": &types.AttributeValueMemberS{Value: lockID},
		"Info": &types.AttributeValueMemberM{Value: map[string]types.AttributeValue{
			"Created": &types.AttributeValueMemberS{Value: created},
		}},
	}
}

func jsonItem(lockID, info string) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{
		"LockID": &types.AttributeValueMemberS{Value: lockID},
		"Info":   &types.AttributeValueMemberS{Value: info},
	}
}

var now = time.Date(2025, 11, 27, 22, 30, 8, 0, time.UTC)

func TestFindStale_ThresholdIsStrict(t *testing.T) {
	// Created 45 minutes before now.
	item := mapItem("state/prod.tfstate", "2025-11-27 21:45:08.391889026 +0000 UTC")

	tests := []struct {
		threshold time.Duration
		wantStale bool
	}{
		{30 * time.Minute, true},
		{60 * time.Minute, false},
		{45 * time.Minute, false}, // 44m59.6s old
	}
	for _, tt := range tests {
		client := &fakeDynamo{pages: [][]map[string]types.AttributeValue{{item}}}
		s := NewScanner(client, "locks", discardLogger())

		stale, err := s.FindStale(context.Background(), tt.threshold, now)
		if err != nil {
			t.Fatalf("threshold %v: unexpected error: %v", tt.threshold, err)
		}
		if got := len(stale) == 1; got != tt.wantStale {
			t.Errorf("threshold %v: stale = %v, want %v", tt.threshold, got, tt.wantStale)
		}
	}
}

func TestFindStale_ReportsAgeAndRawCreated(t *testing.T) {
	created := "2025-11-27 21:30:08 +0000 UTC"
	client := &fakeDynamo{pages: [][]map[string]types.AttributeValue{{mapItem("a", created)}}}
	s := NewScanner(client, "locks", discardLogger())

	stale, err := s.FindStale(context.Background(), 30*time.Minute, now)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(stale) != 1 {
		t.Fatalf("expected 1 stale lock, got %d", len(stale))
	}
	if stale[0].LockID != "a" || stale[0].Created != created || stale[0].AgeMinutes != 60 {
		t.Errorf("unexpected lock: %+v", stale[0])
	}
}

func TestFindStale_ScansAllPages(t *testing.T) {
	client := &fakeDynamo{pages: [][]map[string]types.AttributeValue{
		{mapItem("a", "2025-11-27 20:00:00 +0000 UTC")},
		{mapItem("b", "2025-11-27 22:29:00 +0000 UTC")},
		{mapItem("c", "2025-11-27 19:00:00 +0000 UTC")},
	}}
	s := NewScanner(client, "locks", discardLogger())

	stale, err := s.FindStale(context.Background(), 30*time.Minute, now)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if client.scanCalls != 3 {
		t.Errorf("expected 3 scan calls, got %d", client.scanCalls)
	}
	if len(stale) != 2 || stale[0].LockID != "a" || stale[1].LockID != "c" {
		t.Errorf("unexpected stale locks: %+v", stale)
	}
}

func TestFindStale_InfoAsJSONString(t *testing.T) {
	info := `{"ID":"1","Operation":"OperationTypeApply","Who":"ci@runner","Created":"2025-11-27T20:00:00.5Z"}`
	client := &fakeDynamo{pages: [][]map[string]types.AttributeValue{{jsonItem("a", info)}}}
	s := NewScanner(client, "locks", discardLogger())

	stale, err := s.FindStale(context.Background(), 30*time.Minute, now)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(stale) != 1 {
		t.Fatalf("expected 1 stale lock, got %d", len(stale))
	}
	if stale[0].Who != "ci@runner" || stale[0].Operation != "OperationTypeApply" {
		t.Errorf("unexpected lock metadata: %+v", stale[0])
	}
}

func TestFindStale_SkipsUnreadableItems(t *testing.T) {
	client := &fakeDynamo{pages: [][]map[string]types.AttributeValue{{
		// Digest entries carry no Info.
		{"LockID": &types.AttributeValueMemberS{Value: "state-md5"}, "Digest": &types.AttributeValueMemberS{Value: "abc"}},
		mapItem("bad-time", "yesterday"),
		jsonItem("bad-json", "{not json"),
		mapItem("", "2025-11-27 20:00:00 +0000 UTC"),
	}}}
	s := NewScanner(client, "locks", discardLogger())

	stale, err := s.FindStale(context.Background(), 30*time.Minute, now)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(stale) != 0 {
		t.Errorf("expected no stale locks, got %+v", stale)
	}
}

func TestFindStale_ScanError(t *testing.T) {
	client := &fakeDynamo{scanErr: errors.New("ResourceNotFoundException")}
	s := NewScanner(client, "locks", discardLogger())

	if _, err := s.FindStale(context.Background(), 30*time.Minute, now); err == nil {
		t.Fatal("expected error")
	}
}

func TestDeleteStale_DeletesByKeyAndStopsOnError(t *testing.T) {
	client := &fakeDynamo{deleteErr: map[string]error{"b": errors.New("boom")}}
	s := NewScanner(client, "locks", discardLogger())

	n, err := s.DeleteStale(context.Background(), []model.StaleLock{
		{LockID: "a"}, {LockID: "b"}, {LockID: "c"},
	})
	if err == nil {
		t.Fatal("expected error")
	}
	if n != 1 {
		t.Errorf("deleted = %d, want 1", n)
	}
	if len(client.deleted) != 1 || client.deleted[0] != "a" {
		t.Errorf("unexpected deletions: %v", client.deleted)
	}
}
