package tui

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/amishk599/resumegen/internal/model"
)

func press(t *testing.T, m lockPickerModel, keys ...tea.KeyMsg) lockPickerModel {
	t.Helper()
	for _, k := range keys {
		next, _ := m.Update(k)
		m = next.(lockPickerModel)
	}
	return m
}

var (
	keyDown  = tea.KeyMsg{Type: tea.KeyDown}
	keyUp    = tea.KeyMsg{Type: tea.KeyUp}
	keySpace = tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}}
	keyEnter = tea.KeyMsg{Type: tea.KeyEnter}
	keyQuit  = tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'q'}}
	keyAll   = tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'a'}}
)

func sampleLocks() []model.StaleLock {
	return []model.StaleLock{
		{LockID: "state/prod", AgeMinutes: 45, Who: "ci@runner", Operation: "OperationTypeApply"},
		{LockID: "state/beta", AgeMinutes: 90},
		{LockID: "state/dev", AgeMinutes: 31},
	}
}

func TestLockPicker_ToggleAndConfirm(t *testing.T) {
	m := press(t, newLockPicker(sampleLocks()), keySpace, keyDown, keyDown, keySpace, keyEnter)

	if !m.confirmed {
		t.Fatal("expected picker to be confirmed")
	}
	got := m.chosen()
	if len(got) != 2 || got[0].LockID != "state/prod" || got[1].LockID != "state/dev" {
		t.Errorf("chosen = %+v", got)
	}
}

func TestLockPicker_CursorStaysInBounds(t *testing.T) {
	m := press(t, newLockPicker(sampleLocks()), keyUp, keyDown, keyDown, keyDown, keyDown)
	if m.cursor != 2 {
		t.Errorf("cursor = %d, want 2", m.cursor)
	}
}

func TestLockPicker_SelectAllThenNone(t *testing.T) {
	m := press(t, newLockPicker(sampleLocks()), keyAll)
	if len(m.chosen()) != 3 {
		t.Fatalf("expected all selected, got %d", len(m.chosen()))
	}
	m = press(t, m, keyAll)
	if len(m.chosen()) != 0 {
		t.Errorf("expected none selected, got %d", len(m.chosen()))
	}
}

func TestLockPicker_QuitDiscardsSelection(t *testing.T) {
	m := press(t, newLockPicker(sampleLocks()), keySpace, keyQuit)
	if m.confirmed {
		t.Error("quit must not confirm the selection")
	}
}

func TestLockPicker_ViewShowsMetadataForCursor(t *testing.T) {
	view := newLockPicker(sampleLocks()).View()
	if !strings.Contains(view, "OperationTypeApply by ci@runner") {
		t.Errorf("view missing lock metadata:\n%s", view)
	}
	if !strings.Contains(view, "state/beta") {
		t.Errorf("view missing lock ids:\n%s", view)
	}
}

func TestTables(t *testing.T) {
	out := LocksTable(sampleLocks())
	for _, want := range []string{"LOCK ID", "state/prod", "45"} {
		if !strings.Contains(out, want) {
			t.Errorf("locks table missing %q:\n%s", want, out)
		}
	}

	out = DeploymentsTable([]model.Deployment{{Env: "prod", Document: "resume.md", Target: "m1", Profile: "p1", URL: "https://x"}})
	if !strings.Contains(out, "m1 (via p1)") {
		t.Errorf("deployments table missing profile:\n%s", out)
	}

	out = ProfilesTable([]model.RoutingProfile{{ID: "us.anthropic.claude", Models: []string{"arn:a", "arn:b"}}})
	if !strings.Contains(out, "arn:b") {
		t.Errorf("profiles table missing model:\n%s", out)
	}
}
