package browse

import (
	"context"
	"errors"
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/amishk599/ghboard/internal/processor"
)

// ErrCancelled is returned when the user aborts loading with ctrl+c.
var ErrCancelled = errors.New("cancelled")

var spinnerFrames = []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}

// ProcessFunc runs one board and reports the outcome.
type ProcessFunc func(ctx context.Context) (processor.Report, error)

type processDoneMsg struct {
	report processor.Report
	err    error
}

type spinnerTickMsg struct{}

type loaderModel struct {
	board     string
	processFn ProcessFunc
	timeout   time.Duration
	frame     int
	report    processor.Report
	err       error
	done      bool
}

func (m loaderModel) Init() tea.Cmd {
	return tea.Batch(m.doProcess(), m.tick())
}

func (m loaderModel) doProcess() tea.Cmd {
	processFn, timeout := m.processFn, m.timeout
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		report, err := processFn(ctx)
		return processDoneMsg{report: report, err: err}
	}
}

func (m loaderModel) tick() tea.Cmd {
	return tea.Tick(80*time.Millisecond, func(time.Time) tea.Msg {
		return spinnerTickMsg{}
	})
}

func (m loaderModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case processDoneMsg:
		m.report = msg.report
		m.err = msg.err
		m.done = true
		return m, tea.Quit
	case spinnerTickMsg:
		m.frame = (m.frame + 1) % len(spinnerFrames)
		return m, m.tick()
	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			m.done = true
			m.err = ErrCancelled
			return m, tea.Quit
		}
	}
	return m, nil
}

func (m loaderModel) View() string {
	if m.done {
		return ""
	}
	spinner := lipgloss.NewStyle().Foreground(lipgloss.Color("33")).Render(spinnerFrames[m.frame])
	return fmt.Sprintf("%s Processing board %s...\n", spinner, m.board)
}

// RunLoader shows a spinner while processFn runs. It renders inline (no alt screen).
func RunLoader(board string, timeout time.Duration, processFn ProcessFunc) (processor.Report, error) {
	m := loaderModel{
		board:     board,
		processFn: processFn,
		timeout:   timeout,
	}
	p := tea.NewProgram(m)
	result, err := p.Run()
	if err != nil {
		return processor.Report{}, err
	}
	final := result.(loaderModel)
	return final.report, final.err
}
