// internal/tui/app.go
//
// A small bubbletea view that shows a run while it happens: a spinner, a
// progress bar over the candidate count, and the most recent per-file lines.
// The inserter still does all of its work on a single goroutine; this view
// only receives its results as messages.

package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/kingrea/dynpages/internal/inserter"
	"github.com/kingrea/dynpages/internal/report"
)

const (
	maxVisibleLines = 12
	maxBarWidth     = 60
)

var (
	counterStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#AAAAAA"))
	hintStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#888888"))
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF6B6B")).Bold(true)
)

type resultMsg inserter.Result

type runFinishedMsg struct {
	report inserter.Report
	err    error
}

// App is the bubbletea model for a single run.
type App struct {
	opts     inserter.Options
	base     string
	total    int
	results  []inserter.Result
	spinner  spinner.Model
	progress progress.Model
	cancel   context.CancelFunc

	finished bool
	aborted  bool
	report   inserter.Report
	err      error
}

// NewApp builds the view. total may be 0 when the candidate count is not
// known up front; the bar is hidden in that case.
func NewApp(opts inserter.Options, base string, total int, cancel context.CancelFunc) *App {
	return &App{
		opts:  opts,
		base:  base,
		total: total,
		spinner: spinner.New(
			spinner.WithSpinner(spinner.Dot),
			spinner.WithStyle(lipgloss.NewStyle().Foreground(lipgloss.Color("#5B8DEF"))),
		),
		progress: progress.New(progress.WithDefaultGradient(), progress.WithWidth(40)),
		cancel:   cancel,
	}
}

func (a *App) Init() tea.Cmd {
	return a.spinner.Tick
}

func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.progress.Width = min(maxBarWidth, max(10, msg.Width-4))
		return a, nil
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q", "esc":
			if !a.finished {
				a.aborted = true
				if a.cancel != nil {
					a.cancel()
				}
			}
			return a, tea.Quit
		}
		return a, nil
	case resultMsg:
		a.results = append(a.results, inserter.Result(msg))
		return a, nil
	case runFinishedMsg:
		a.finished = true
		a.report = msg.report
		a.err = msg.err
		return a, tea.Quit
	case spinner.TickMsg:
		if a.finished {
			return a, nil
		}
		var cmd tea.Cmd
		a.spinner, cmd = a.spinner.Update(msg)
		return a, cmd
	}
	return a, nil
}

func (a *App) View() string {
	var b strings.Builder
	b.WriteString(report.HeaderLine(a.opts, a.base))
	b.WriteString("\n\n")

	start := 0
	if len(a.results) > maxVisibleLines {
		start = len(a.results) - maxVisibleLines
		b.WriteString(hintStyle.Render(fmt.Sprintf("  ... %d earlier files", start)))
		b.WriteString("\n")
	}
	for _, res := range a.results[start:] {
		b.WriteString(report.ResultLine(res, a.base))
		b.WriteString("\n")
	}

	if !a.finished {
		b.WriteString("\n")
		b.WriteString(a.spinner.View())
		b.WriteString(" ")
		b.WriteString(counterStyle.Render(a.counter()))
		if a.total > 0 {
			b.WriteString("\n")
			b.WriteString(a.progress.ViewAs(a.percent()))
		}
		b.WriteString("\n")
		if a.aborted {
			b.WriteString(hintStyle.Render("stopping after the current file..."))
		} else {
			b.WriteString(hintStyle.Render("q to stop"))
		}
		b.WriteString("\n")
		return b.String()
	}

	b.WriteString("\n")
	b.WriteString(report.SummaryLine(a.report))
	b.WriteString("\n")
	if detail := report.DetailLine(a.report); detail != "" {
		b.WriteString(detail)
		b.WriteString("\n")
	}
	if a.err != nil {
		b.WriteString(errorStyle.Render("error: " + a.err.Error()))
		b.WriteString("\n")
	}
	return b.String()
}

func (a *App) counter() string {
	if a.total > 0 {
		return fmt.Sprintf("%d/%d files checked", len(a.results), a.total)
	}
	return fmt.Sprintf("%d files checked", len(a.results))
}

func (a *App) percent() float64 {
	if a.total <= 0 {
		return 0
	}
	p := float64(len(a.results)) / float64(a.total)
	if p > 1 {
		return 1
	}
	return p
}
