package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/amishk599/resumegen/internal/model"
)

var (
	pickerTitleStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(lipgloss.Color("39")).
				Padding(1, 0, 1, 2)

	pickerItemStyle = lipgloss.NewStyle().
			Padding(0, 0, 0, 4)

	pickerSelectedStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("39")).
				Bold(true).
				Padding(0, 0, 0, 2)

	pickerMetaStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("245")).
			Padding(0, 0, 0, 8)

	pickerHintStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240")).
			Padding(1, 0, 0, 2)
)

type lockPickerModel struct {
	locks     []model.StaleLock
	cursor    int
	selected  map[int]bool
	confirmed bool
}

func newLockPicker(locks []model.StaleLock) lockPickerModel {
	return lockPickerModel{locks: locks, selected: make(map[int]bool)}
}

func (m lockPickerModel) Init() tea.Cmd {
	return nil
}

func (m lockPickerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	msgKey, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	switch {
	case key.Matches(msgKey, pickerKeys.Quit):
		m.confirmed = false
		return m, tea.Quit
	case key.Matches(msgKey, pickerKeys.Up):
		if m.cursor > 0 {
			m.cursor--
		}
	case key.Matches(msgKey, pickerKeys.Down):
		if m.cursor < len(m.locks)-1 {
			m.cursor++
		}
	case key.Matches(msgKey, pickerKeys.Toggle):
		if len(m.locks) > 0 {
			m.selected[m.cursor] = !m.selected[m.cursor]
		}
	case key.Matches(msgKey, pickerKeys.All):
		all := len(m.chosen()) < len(m.locks)
		for i := range m.locks {
			m.selected[i] = all
		}
	case key.Matches(msgKey, pickerKeys.Confirm):
		m.confirmed = true
		return m, tea.Quit
	}
	return m, nil
}

func (m lockPickerModel) View() string {
	var b strings.Builder
	b.WriteString(pickerTitleStyle.Render(fmt.Sprintf("Stale locks (%d): select locks to delete", len(m.locks))))
	b.WriteString("\n")

	for i, l := range m.locks {
		check := "[ ]"
		if m.selected[i] {
			check = "[x]"
		}
		label := fmt.Sprintf("%s %s  %d min", check, l.LockID, l.AgeMinutes)
		if i == m.cursor {
			b.WriteString(pickerSelectedStyle.Render("> " + label))
		} else {
			b.WriteString(pickerItemStyle.Render(label))
		}
		b.WriteString("\n")
		if meta := lockMeta(l); i == m.cursor && meta != "" {
			b.WriteString(pickerMetaStyle.Render(meta))
			b.WriteString("\n")
		}
	}

	b.WriteString(pickerHintStyle.Render(pickerKeys.hint()))
	return b.String()
}

func lockMeta(l model.StaleLock) string {
	switch {
	case l.Operation != "" && l.Who != "":
		return l.Operation + " by " + l.Who
	case l.Who != "":
		return "held by " + l.Who
	default:
		return l.Operation
	}
}

// chosen returns the selected locks in display order.
func (m lockPickerModel) chosen() []model.StaleLock {
	var out []model.StaleLock
	for i, l := range m.locks {
		if m.selected[i] {
			out = append(out, l)
		}
	}
	return out
}

// RunLockPicker shows an interactive multi-select over stale locks.
// Returns the locks the user confirmed for deletion, or nil if they quit.
func RunLockPicker(locks []model.StaleLock) ([]model.StaleLock, error) {
	p := tea.NewProgram(newLockPicker(locks))
	result, err := p.Run()
	if err != nil {
		return nil, err
	}

	final := result.(lockPickerModel)
	if !final.confirmed {
		return nil, nil
	}
	return final.chosen(), nil
}
