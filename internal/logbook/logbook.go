package logbook

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"
)

// Level represents the severity of a journal entry.
type Level string

const (
	LevelInfo  Level = "INFO"
	LevelWarn  Level = "WARN"
	LevelError Level = "ERROR"
)

// Logbook is the append-only run journal: one line per patched file, per
// failure, and per run boundary, so a tree's patch history survives the
// terminal session.
type Logbook struct {
	path string
	now  func() time.Time
	mu   sync.Mutex
}

// New creates a logbook that writes to the provided path.
func New(path string) (*Logbook, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("logbook: ensure dir: %w", err)
	}
	return &Logbook{path: path, now: time.Now}, nil
}

// Path returns the file backing this logbook.
func (l *Logbook) Path() string {
	if l == nil {
		return ""
	}
	return l.path
}

// Append writes a single entry. A nil logbook discards everything so
// callers can hold one unconditionally.
func (l *Logbook) Append(level Level, message string) error {
	if l == nil {
		return nil
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	line := fmt.Sprintf("%s %-5s %s\n",
		l.now().UTC().Format(time.RFC3339),
		string(level),
		strings.TrimSpace(message),
	)
	file, err := os.OpenFile(l.path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("logbook: open %s: %w", l.path, err)
	}
	defer file.Close()
	if _, err := file.WriteString(line); err != nil {
		return fmt.Errorf("logbook: append: %w", err)
	}
	return nil
}

// Tail returns up to maxLines of the most recent entries.
func (l *Logbook) Tail(maxLines int) ([]string, error) {
	if l == nil || maxLines <= 0 {
		return nil, nil
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	file, err := os.Open(l.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("logbook: open %s: %w", l.path, err)
	}
	defer file.Close()

	var lines []string
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		lines = append(lines, scanner.Text())
		if len(lines) > maxLines {
			lines = lines[1:]
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("logbook: read %s: %w", l.path, err)
	}
	return lines, nil
}

// RunStarted records the settings a run was started with.
func (l *Logbook) RunStarted(root, target string, dryRun bool) error {
	mode := "write"
	if dryRun {
		mode = "dry-run"
	}
	return l.Append(LevelInfo, fmt.Sprintf("run started root=%s target=%s mode=%s", root, target, mode))
}

// Modified records a file that received the directives.
func (l *Logbook) Modified(path string) error {
	return l.Append(LevelInfo, "modified "+path)
}

// Failed records a file that could not be processed.
func (l *Logbook) Failed(path string, cause error) error {
	return l.Append(LevelError, fmt.Sprintf("failed %s: %v", path, cause))
}

// RunFinished records the run summary. A non-nil cause marks an aborted run.
// Dry runs count files that would have been modified.
func (l *Logbook) RunFinished(modified, candidates int, dryRun bool, cause error) error {
	key := "modified"
	if dryRun {
		key = "would_modify"
	}
	if cause != nil {
		return l.Append(LevelWarn, fmt.Sprintf("run aborted %s=%d candidates=%d: %v", key, modified, candidates, cause))
	}
	return l.Append(LevelInfo, fmt.Sprintf("run finished %s=%d candidates=%d", key, modified, candidates))
}
