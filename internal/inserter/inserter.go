// internal/inserter/inserter.go
//
// The inserter walks a source tree, picks the files whose base name matches
// the target, and runs the directive rule over each one in turn. Files are
// handled strictly one at a time in filepath.WalkDir's lexical order.

package inserter

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"unicode/utf8"

	"github.com/kingrea/dynpages/internal/directive"
	"go.uber.org/zap"
)

// Options describes a single run.
type Options struct {
	// Root is the directory walked recursively.
	Root string
	// Target is matched exactly against each file's base name.
	Target string
	// DryRun decides every outcome but never writes.
	DryRun bool
	// ContinueOnError records failures and keeps going instead of aborting
	// on the first one.
	ContinueOnError bool
}

// Inserter patches candidate files under Options.Root.
type Inserter struct {
	opts      Options
	logger    *zap.Logger
	observers []func(Result)
	writeFile func(name string, data []byte, perm fs.FileMode) error
}

// Option customizes an Inserter during construction.
type Option func(*Inserter)

// WithLogger routes diagnostics to logger.
func WithLogger(logger *zap.Logger) Option {
	return func(i *Inserter) {
		if logger != nil {
			i.logger = logger
		}
	}
}

// WithObserver registers fn to be called with every result as soon as it
// is known, before the next file is read.
func WithObserver(fn func(Result)) Option {
	return func(i *Inserter) {
		if fn != nil {
			i.observers = append(i.observers, fn)
		}
	}
}

// New builds an inserter for opts.
func New(opts Options, options ...Option) *Inserter {
	ins := &Inserter{
		opts:      opts,
		logger:    zap.NewNop(),
		writeFile: os.WriteFile,
	}
	for _, opt := range options {
		opt(ins)
	}
	return ins
}

// Run processes every candidate under the root and returns the report.
// In the default mode the first failure stops the run and is returned along
// with the results gathered so far. With ContinueOnError every failure is
// recorded and the joined failures are returned once the walk completes.
func (i *Inserter) Run(ctx context.Context) (Report, error) {
	report := Report{
		Root:   i.opts.Root,
		Target: i.opts.Target,
		DryRun: i.opts.DryRun,
	}
	var failures []error

	fail := func(path string, err error) error {
		i.logger.Warn("candidate failed", zap.String("path", path), zap.Error(err))
		i.record(&report, Result{Path: path, Outcome: OutcomeFailed, Err: err})
		if !i.opts.ContinueOnError {
			return err
		}
		failures = append(failures, err)
		return nil
	}

	err := i.walk(ctx,
		func(path string) error {
			outcome, err := i.ProcessFile(path)
			if err != nil {
				return fail(path, err)
			}
			i.logger.Debug("candidate processed", zap.String("path", path), zap.Stringer("outcome", outcome))
			i.record(&report, Result{Path: path, Outcome: outcome})
			return nil
		},
		func(ferr *FileError) error {
			return fail(ferr.Path, ferr)
		},
	)
	if err != nil {
		return report, err
	}
	if len(failures) > 0 {
		return report, errors.Join(failures...)
	}
	return report, nil
}

// Candidates lists the files Run would process, in the same order. Any
// walk error is returned immediately.
func (i *Inserter) Candidates(ctx context.Context) ([]string, error) {
	var paths []string
	err := i.walk(ctx,
		func(path string) error {
			paths = append(paths, path)
			return nil
		},
		func(ferr *FileError) error { return ferr },
	)
	if err != nil {
		return nil, err
	}
	return paths, nil
}

// ProcessFile applies the directive rule to the file at path and writes the
// result back when something was inserted.
func (i *Inserter) ProcessFile(path string) (Outcome, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return OutcomeFailed, &FileError{Op: OpRead, Path: path, Err: err}
	}
	if !utf8.Valid(data) {
		return OutcomeFailed, &FileError{Op: OpRead, Path: path, Err: ErrInvalidEncoding}
	}

	patched, decision := directive.Apply(string(data))
	switch decision {
	case directive.AlreadyConfigured:
		return OutcomeAlreadyConfigured, nil
	case directive.NoMarker:
		return OutcomeNoMarker, nil
	}

	if i.opts.DryRun {
		return OutcomeModified, nil
	}
	if err := i.writeFile(path, []byte(patched), 0o644); err != nil {
		return OutcomeFailed, &FileError{Op: OpWrite, Path: path, Err: err}
	}
	i.logger.Debug("directives inserted", zap.String("path", path))
	return OutcomeModified, nil
}

func (i *Inserter) walk(ctx context.Context, visit func(path string) error, walkFailed func(*FileError) error) error {
	return filepath.WalkDir(i.opts.Root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return walkFailed(&FileError{Op: OpWalk, Path: path, Err: err})
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if d.IsDir() || d.Name() != i.opts.Target {
			return nil
		}
		if d.Type()&fs.ModeSymlink != 0 && linksToDir(path) {
			return nil
		}
		return visit(path)
	})
}

// linksToDir reports whether the symlink at path resolves to a directory.
// A dangling link is left to the read, which reports it.
func linksToDir(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}

func (i *Inserter) record(report *Report, res Result) {
	report.add(res)
	for _, fn := range i.observers {
		fn(res)
	}
}
