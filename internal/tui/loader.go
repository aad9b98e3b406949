package tui

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// ErrCancelled is returned when the user interrupts a loader.
var ErrCancelled = errors.New("cancelled")

type loadDoneMsg[T any] struct {
	result T
	err    error
}

type loaderModel[T any] struct {
	label   string
	timeout time.Duration
	loadFn  func(ctx context.Context) (T, error)
	spinner spinner.Model
	result  T
	err     error
	done    bool
}

func (m loaderModel[T]) Init() tea.Cmd {
	return tea.Batch(m.doLoad(), m.spinner.Tick)
}

func (m loaderModel[T]) doLoad() tea.Cmd {
	loadFn, timeout := m.loadFn, m.timeout
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		result, err := loadFn(ctx)
		return loadDoneMsg[T]{result: result, err: err}
	}
}

func (m loaderModel[T]) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case loadDoneMsg[T]:
		m.result = msg.result
		m.err = msg.err
		m.done = true
		return m, tea.Quit
	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			m.done = true
			m.err = ErrCancelled
			return m, tea.Quit
		}
	}
	return m, nil
}

func (m loaderModel[T]) View() string {
	if m.done {
		return ""
	}
	return fmt.Sprintf("%s %s...\n", m.spinner.View(), m.label)
}

// RunLoader shows a spinner while loadFn runs. It renders inline (no alt screen).
func RunLoader[T any](label string, timeout time.Duration, loadFn func(ctx context.Context) (T, error)) (T, error) {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("33"))

	m := loaderModel[T]{
		label:   label,
		timeout: timeout,
		loadFn:  loadFn,
		spinner: sp,
	}
	var zero T
	result, err := tea.NewProgram(m).Run()
	if err != nil {
		return zero, err
	}
	final := result.(loaderModel[T])
	return final.result, final.err
}
