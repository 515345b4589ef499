// Package report renders run progress for humans: a header, one line per
// candidate file, and a closing summary.
package report

import (
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/kingrea/dynpages/internal/inserter"
)

var (
	headerStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#5B8DEF")).Bold(true)
	modifiedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#4CAF50")).Bold(true)
	skippedStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#999999"))
	failedStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF6B6B")).Bold(true)
	summaryStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#F7B801")).Bold(true)
	detailStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#A0AEC0"))
)

// Printer writes progress lines to w. Paths are shown relative to base
// when possible.
type Printer struct {
	w    io.Writer
	base string
}

// NewPrinter returns a printer that writes to w.
func NewPrinter(w io.Writer, base string) *Printer {
	return &Printer{w: w, base: base}
}

// Header announces the run.
func (p *Printer) Header(opts inserter.Options) {
	fmt.Fprintln(p.w, HeaderLine(opts, p.base))
	fmt.Fprintln(p.w)
}

// Result prints the line for one candidate.
func (p *Printer) Result(res inserter.Result) {
	fmt.Fprintln(p.w, ResultLine(res, p.base))
}

// Summary prints the closing totals.
func (p *Printer) Summary(rep inserter.Report) {
	fmt.Fprintln(p.w)
	fmt.Fprintln(p.w, SummaryLine(rep))
	if detail := DetailLine(rep); detail != "" {
		fmt.Fprintln(p.w, detail)
	}
}

// HeaderLine is the styled run announcement.
func HeaderLine(opts inserter.Options, base string) string {
	text := fmt.Sprintf("Adding dynamic directives to %s files under %s", opts.Target, displayPath(opts.Root, base))
	if opts.DryRun {
		text += " (dry run)"
	}
	return headerStyle.Render(text + "...")
}

// ResultLine is the styled line for one candidate.
func ResultLine(res inserter.Result, base string) string {
	path := displayPath(res.Path, base)
	switch res.Outcome {
	case inserter.OutcomeModified:
		return "  " + modifiedStyle.Render("✓") + " " + path
	case inserter.OutcomeAlreadyConfigured:
		return "  " + skippedStyle.Render("⊘ "+path+" (already configured)")
	case inserter.OutcomeNoMarker:
		return "  " + skippedStyle.Render("· "+path+" (no use client directive)")
	case inserter.OutcomeFailed:
		return "  " + failedStyle.Render("✗") + " " + path + ": " + errorText(res.Err)
	default:
		return "  ? " + path
	}
}

// SummaryLine is the styled total.
func SummaryLine(rep inserter.Report) string {
	if rep.DryRun {
		return summaryStyle.Render(fmt.Sprintf("Dry run: %s would be modified.", files(rep.Modified)))
	}
	return summaryStyle.Render(fmt.Sprintf("Done! %s modified.", files(rep.Modified)))
}

// DetailLine breaks down the non-modified outcomes, or returns "" when
// every candidate was modified.
func DetailLine(rep inserter.Report) string {
	var parts []string
	if n := rep.Count(inserter.OutcomeAlreadyConfigured); n > 0 {
		parts = append(parts, fmt.Sprintf("%d already configured", n))
	}
	if n := rep.Count(inserter.OutcomeNoMarker); n > 0 {
		parts = append(parts, fmt.Sprintf("%d without use client", n))
	}
	if n := rep.Count(inserter.OutcomeFailed); n > 0 {
		parts = append(parts, fmt.Sprintf("%d failed", n))
	}
	if len(parts) == 0 {
		return ""
	}
	return detailStyle.Render(strings.Join(parts, ", "))
}

func files(n int) string {
	if n == 1 {
		return "1 file"
	}
	return fmt.Sprintf("%d files", n)
}

func errorText(err error) string {
	if err == nil {
		return "unknown error"
	}
	// FileError already names the path, which the line shows.
	var ferr *inserter.FileError
	if errors.As(err, &ferr) {
		return fmt.Sprintf("%s: %v", ferr.Op, ferr.Cause())
	}
	return err.Error()
}

func displayPath(path, base string) string {
	if base == "" {
		return path
	}
	rel, err := filepath.Rel(base, path)
	if err != nil || strings.HasPrefix(rel, "..") {
		return path
	}
	return rel
}
