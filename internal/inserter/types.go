package inserter

import (
	"errors"
	"fmt"
	"io/fs"
)

// Outcome is what happened to one candidate file.
type Outcome int

const (
	// OutcomeModified means the directives were inserted (or would have
	// been, in a dry run).
	OutcomeModified Outcome = iota
	// OutcomeAlreadyConfigured means the file already declares `dynamic`.
	OutcomeAlreadyConfigured
	// OutcomeNoMarker means the file has no client directive to anchor on.
	OutcomeNoMarker
	// OutcomeFailed means the file could not be read or written.
	OutcomeFailed
)

func (o Outcome) String() string {
	switch o {
	case OutcomeModified:
		return "modified"
	case OutcomeAlreadyConfigured:
		return "already-configured"
	case OutcomeNoMarker:
		return "no-marker"
	case OutcomeFailed:
		return "failed"
	default:
		return fmt.Sprintf("outcome(%d)", int(o))
	}
}

// Result pairs a candidate path with its outcome.
type Result struct {
	Path    string
	Outcome Outcome
	// Err is set only for OutcomeFailed.
	Err error
}

// Report summarizes a run.
type Report struct {
	Root   string
	Target string
	DryRun bool

	// Modified counts results with OutcomeModified.
	Modified int

	// Results holds one entry per processed candidate, in walk order.
	Results []Result
}

func (r *Report) add(res Result) {
	r.Results = append(r.Results, res)
	if res.Outcome == OutcomeModified {
		r.Modified++
	}
}

// Count returns how many results have outcome o.
func (r Report) Count(o Outcome) int {
	n := 0
	for _, res := range r.Results {
		if res.Outcome == o {
			n++
		}
	}
	return n
}

// Failures returns the failed results.
func (r Report) Failures() []Result {
	var out []Result
	for _, res := range r.Results {
		if res.Outcome == OutcomeFailed {
			out = append(out, res)
		}
	}
	return out
}

// Op names the filesystem step that failed.
type Op string

const (
	OpRead  Op = "read"
	OpWrite Op = "write"
	OpWalk  Op = "walk"
)

// ErrInvalidEncoding is wrapped in a read FileError when a candidate is not
// valid UTF-8.
var ErrInvalidEncoding = errors.New("content is not valid UTF-8")

// FileError is an unrecoverable I/O failure on one path.
type FileError struct {
	Op   Op
	Path string
	Err  error
}

func (e *FileError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.Path, e.Cause())
}

// Cause returns the underlying error without the op and path an
// *fs.PathError would repeat.
func (e *FileError) Cause() error {
	var pe *fs.PathError
	if errors.As(e.Err, &pe) {
		return pe.Err
	}
	return e.Err
}

func (e *FileError) Unwrap() error {
	return e.Err
}
