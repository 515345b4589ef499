package tui

import (
	"errors"
	"path/filepath"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/kingrea/dynpages/internal/inserter"
)

func testOptions(base string) inserter.Options {
	return inserter.Options{Root: filepath.Join(base, "app"), Target: "page.tsx"}
}

func expectQuit(t *testing.T, cmd tea.Cmd) {
	t.Helper()
	if cmd == nil {
		t.Fatalf("expected quit command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Fatalf("expected tea.QuitMsg")
	}
}

func TestAppShowsResultsAsTheyArrive(t *testing.T) {
	base := t.TempDir()
	app := NewApp(testOptions(base), base, 2, nil)

	model, _ := app.Update(resultMsg{Path: filepath.Join(base, "app", "page.tsx"), Outcome: inserter.OutcomeModified})
	app = model.(*App)

	view := app.View()
	if !strings.Contains(view, "✓ "+filepath.Join("app", "page.tsx")) {
		t.Fatalf("expected modified line in view:\n%s", view)
	}
	if !strings.Contains(view, "1/2 files checked") {
		t.Fatalf("expected counter in view:\n%s", view)
	}
	if got := app.percent(); got != 0.5 {
		t.Fatalf("percent = %v, want 0.5", got)
	}
}

func TestAppQuitsWithSummaryWhenRunFinishes(t *testing.T) {
	base := t.TempDir()
	app := NewApp(testOptions(base), base, 1, nil)
	rep := inserter.Report{
		Modified: 1,
		Results:  []inserter.Result{{Path: filepath.Join(base, "app", "page.tsx"), Outcome: inserter.OutcomeModified}},
	}

	model, cmd := app.Update(runFinishedMsg{report: rep})
	expectQuit(t, cmd)
	app = model.(*App)
	if !app.finished {
		t.Fatalf("expected finished state")
	}
	if view := app.View(); !strings.Contains(view, "Done! 1 file modified.") {
		t.Fatalf("expected summary in view:\n%s", view)
	}
}

func TestAppShowsRunError(t *testing.T) {
	base := t.TempDir()
	app := NewApp(testOptions(base), base, 0, nil)
	model, _ := app.Update(runFinishedMsg{err: errors.New("walk app: no such file or directory")})
	view := model.(*App).View()
	if !strings.Contains(view, "error: walk app: no such file or directory") {
		t.Fatalf("expected error in view:\n%s", view)
	}
}

func TestAppQuitCancelsRun(t *testing.T) {
	base := t.TempDir()
	cancelled := false
	app := NewApp(testOptions(base), base, 3, func() { cancelled = true })

	model, cmd := app.Update(tea.KeyMsg{Type: tea.KeyCtrlC})
	expectQuit(t, cmd)
	if !cancelled {
		t.Fatalf("expected quitting mid-run to cancel the inserter")
	}
	if !model.(*App).aborted {
		t.Fatalf("expected aborted state")
	}
}

func TestAppTrimsOldLines(t *testing.T) {
	base := t.TempDir()
	app := NewApp(testOptions(base), base, 0, nil)
	for i := 0; i < maxVisibleLines+3; i++ {
		app.Update(resultMsg{Path: filepath.Join(base, "app", "p", "page.tsx"), Outcome: inserter.OutcomeNoMarker})
	}
	view := app.View()
	if !strings.Contains(view, "... 3 earlier files") {
		t.Fatalf("expected trimmed hint:\n%s", view)
	}
	if strings.Count(view, "(no use client directive)") != maxVisibleLines {
		t.Fatalf("expected %d visible lines", maxVisibleLines)
	}
}
