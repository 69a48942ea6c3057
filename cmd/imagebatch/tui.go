package main

import (
	"fmt"
	"math"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/Skryldev/imagebatch/core"
)

var (
	colorInk     = lipgloss.Color("#E5E9F0")
	colorDim     = lipgloss.Color("#7A8291")
	colorAccent  = lipgloss.Color("#88C0D0")
	colorSuccess = lipgloss.Color("#A3BE8C")
	colorWarn    = lipgloss.Color("#EBCB8B")

	titleStyle   = lipgloss.NewStyle().Bold(true).Foreground(colorAccent)
	labelStyle   = lipgloss.NewStyle().Foreground(colorInk)
	barStyle     = lipgloss.NewStyle().Foreground(colorAccent)
	dimStyle     = lipgloss.NewStyle().Foreground(colorDim)
	successStyle = lipgloss.NewStyle().Foreground(colorSuccess)
	warnStyle    = lipgloss.NewStyle().Foreground(colorWarn)
)

// progressModel renders batch progress received on updates until the
// channel closes.
type progressModel struct {
	updates  <-chan core.BatchProgress
	title    string
	started  time.Time
	width    int
	last     core.BatchProgress
	quitting bool
}

type progressMsg core.BatchProgress

type progressDoneMsg struct{}

func newProgressModel(title string, total int, updates <-chan core.BatchProgress) progressModel {
	return progressModel{
		updates: updates,
		title:   title,
		started: time.Now(),
		last:    core.BatchProgress{Total: total},
	}
}

func (m progressModel) Init() tea.Cmd {
	return listenForProgress(m.updates)
}

func (m progressModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case progressMsg:
		m.last = core.BatchProgress(msg)
		return m, listenForProgress(m.updates)
	case progressDoneMsg:
		m.quitting = true
		return m, tea.Quit
	case tea.WindowSizeMsg:
		m.width = msg.Width
		return m, nil
	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC {
			m.quitting = true
			return m, tea.Quit
		}
		return m, nil
	default:
		return m, nil
	}
}

func (m progressModel) View() string {
	if m.quitting {
		return ""
	}

	barWidth := 40
	if m.width > 0 {
		barWidth = int(math.Min(60, float64(m.width-10)))
		if barWidth < 20 {
			barWidth = 20
		}
	}

	elapsed := time.Since(m.started).Round(time.Millisecond)
	if m.last.Done {
		elapsed = m.last.TotalElapsed.Round(time.Millisecond)
	}

	status := dimStyle.Render("waiting for first file")
	if m.last.LastCompletedName != "" {
		status = dimStyle.Render("last: ") + labelStyle.Render(m.last.LastCompletedName)
	}
	if m.last.Done {
		status = successStyle.Render("done")
	}

	lines := []string{
		titleStyle.Render(m.title),
		labelStyle.Render(fmt.Sprintf("Files: %d/%d", m.last.Completed, m.last.Total)),
		status,
		dimStyle.Render(fmt.Sprintf("Elapsed: %s", elapsed)),
		barStyle.Render(renderBar(barWidth, m.last.Fraction())),
	}
	return strings.Join(lines, "\n")
}

func listenForProgress(updates <-chan core.BatchProgress) tea.Cmd {
	return func() tea.Msg {
		p, ok := <-updates
		if !ok {
			return progressDoneMsg{}
		}
		return progressMsg(p)
	}
}

func renderBar(width int, ratio float64) string {
	filled := int(math.Round(ratio * float64(width)))
	if filled > width {
		filled = width
	}
	if filled < 0 {
		filled = 0
	}
	return "[" + strings.Repeat("=", filled) + strings.Repeat(" ", width-filled) + "]"
}
