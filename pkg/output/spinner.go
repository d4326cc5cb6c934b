package output

import (
	"fmt"
	"os"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"
)

// RunWithSpinner runs fn while a spinner is rendered on stderr. When stderr
// is not a terminal (CI, pipes) fn runs without any animation.
func RunWithSpinner(message string, fn func() error) error {
	if !isTerminal(os.Stderr) {
		return fn()
	}

	done := make(chan error, 1)
	go func() {
		done <- fn()
	}()

	m := newSpinnerModel(message)
	p := tea.NewProgram(m, tea.WithOutput(os.Stderr), tea.WithInput(nil))

	finished := make(chan struct{})
	go func() {
		defer close(finished)
		if _, err := p.Run(); err != nil {
			_ = err
		}
	}()

	err := <-done
	p.Send(spinnerDoneMsg{err: err})

	select {
	case <-finished:
	case <-time.After(200 * time.Millisecond):
		p.Quit()
		<-finished
	}

	return err
}

func isTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}

type spinnerModel struct {
	spinner spinner.Model
	message string
	done    bool
	err     error
}

type spinnerDoneMsg struct {
	err error
}

func newSpinnerModel(message string) *spinnerModel {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("205"))
	return &spinnerModel{
		spinner: s,
		message: message,
	}
}

func (m *spinnerModel) Init() tea.Cmd {
	return m.spinner.Tick
}

func (m *spinnerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case spinnerDoneMsg:
		m.done = true
		m.err = msg.err
		return m, tea.Quit
	case spinner.TickMsg:
		if !m.done {
			var cmd tea.Cmd
			m.spinner, cmd = m.spinner.Update(msg)
			return m, cmd
		}
	}
	return m, nil
}

func (m *spinnerModel) View() string {
	if m.done {
		if m.err != nil {
			return fmt.Sprintf("❌ %s\n", m.message)
		}
		return fmt.Sprintf("✅ %s\n", m.message)
	}
	return fmt.Sprintf("%s %s...", m.spinner.View(), m.message)
}
