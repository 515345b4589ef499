package tui

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/kingrea/dynpages/internal/inserter"
)

type runOutcome struct {
	report inserter.Report
	err    error
}

// Run executes the inserter behind the progress view and returns the same
// report and error a plain run would. Quitting the view cancels the run
// before the next file.
func Run(ctx context.Context, opts inserter.Options, base string, options ...inserter.Option) (inserter.Report, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	total := 0
	if candidates, err := inserter.New(opts).Candidates(ctx); err == nil {
		total = len(candidates)
	}

	program := tea.NewProgram(NewApp(opts, base, total, cancel))
	options = append(options, inserter.WithObserver(func(res inserter.Result) {
		program.Send(resultMsg(res))
	}))

	finished := make(chan runOutcome, 1)
	go func() {
		rep, err := inserter.New(opts, options...).Run(ctx)
		finished <- runOutcome{report: rep, err: err}
		program.Send(runFinishedMsg{report: rep, err: err})
	}()

	if _, err := program.Run(); err != nil {
		cancel()
		out := <-finished
		if out.err != nil {
			return out.report, out.err
		}
		return out.report, fmt.Errorf("tui: %w", err)
	}
	out := <-finished
	return out.report, out.err
}
