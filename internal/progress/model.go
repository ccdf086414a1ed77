package progress

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4")).
			Padding(0, 1)

	barFilledStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#04B575"))

	barEmptyStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#626262"))

	detailStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#A8A8A8"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF6B6B")).
			Bold(true)

	successStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#04B575")).
			Bold(true)
)

const barWidth = 40

// eventMsg carries one Event into the bubbletea update loop.
type eventMsg Event

// doneMsg signals the watched operation finished.
type doneMsg struct{ err error }

// Model is a bubbletea model showing a title, a spinner or percent bar,
// and the latest status line, for either a base backup in progress or a
// restore replaying WAL.
type Model struct {
	title   string
	spinner spinner.Model
	percent float64
	message string
	done    bool
	err     error

	events <-chan Event
	result <-chan error
}

// New builds a Model that reads Events from events until result fires.
func New(title string, events <-chan Event, result <-chan error) Model {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("#FFD93D"))
	return Model{
		title:   title,
		spinner: s,
		percent: -1,
		events:  events,
		result:  result,
	}
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, waitForEvent(m.events), waitForResult(m.result))
}

func waitForEvent(events <-chan Event) tea.Cmd {
	return func() tea.Msg {
		e, ok := <-events
		if !ok {
			return nil
		}
		return eventMsg(e)
	}
}

func waitForResult(result <-chan error) tea.Cmd {
	return func() tea.Msg {
		err := <-result
		return doneMsg{err: err}
	}
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case eventMsg:
		m.message = msg.Message
		m.percent = msg.Percent
		return m, waitForEvent(m.events)

	case doneMsg:
		m.done = true
		m.err = msg.err
		return m, tea.Quit

	case spinner.TickMsg:
		if m.done {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		if m.done {
			return m, tea.Quit
		}
	}
	return m, nil
}

func (m Model) View() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render(m.title))
	b.WriteString("\n\n")

	if m.done {
		if m.err != nil {
			b.WriteString(errorStyle.Render(fmt.Sprintf("failed: %v", m.err)))
		} else {
			b.WriteString(successStyle.Render("done"))
		}
		b.WriteString("\n")
		return b.String()
	}

	if m.percent >= 0 {
		b.WriteString(renderBar(m.percent))
		b.WriteString("\n")
	} else {
		b.WriteString(m.spinner.View())
		b.WriteString(" working\n")
	}
	if m.message != "" {
		b.WriteString(detailStyle.Render(m.message))
		b.WriteString("\n")
	}
	return b.String()
}

func renderBar(percent float64) string {
	if percent < 0 {
		percent = 0
	}
	if percent > 100 {
		percent = 100
	}
	filled := int(percent / 100 * barWidth)
	bar := barFilledStyle.Render(strings.Repeat("█", filled)) +
		barEmptyStyle.Render(strings.Repeat("░", barWidth-filled))
	return fmt.Sprintf("[%s] %3.0f%%", bar, percent)
}
