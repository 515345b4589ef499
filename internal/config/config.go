// internal/config/config.go
//
// This package resolves the settings for a dynpages run.
// Settings come from (lowest to highest precedence): built-in defaults, a
// .env file in the project directory, .dynpages.yaml, the process
// environment, and finally CLI flags applied by the caller.

package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	// FileName is the project config file looked up in the project directory.
	FileName = ".dynpages.yaml"

	// DefaultRootDirectory is the Next.js app router directory.
	DefaultRootDirectory = "app"

	// DefaultTargetFilename is the route file the directives are added to.
	DefaultTargetFilename = "page.tsx"

	EnvRoot            = "DYNPAGES_ROOT"
	EnvTarget          = "DYNPAGES_TARGET"
	EnvJournal         = "DYNPAGES_JOURNAL"
	EnvDryRun          = "DYNPAGES_DRY_RUN"
	EnvContinueOnError = "DYNPAGES_CONTINUE_ON_ERROR"

	dotEnvFile = ".env"
)

const defaultConfigYAML = `# dynpages configuration
# Directory scanned recursively, relative to this file's directory.
root_directory: app

# Only files with exactly this base name are patched.
target_filename: page.tsx

# Report what would change without writing any file.
dry_run: false

# Keep going after a read/write failure and report every failure at the end.
continue_on_error: false

# Optional run journal (relative paths resolve against this directory).
# journal: .dynpages/journal.log
`

// FileConfig models .dynpages.yaml.
type FileConfig struct {
	RootDirectory   string `yaml:"root_directory"`
	TargetFilename  string `yaml:"target_filename"`
	DryRun          *bool  `yaml:"dry_run,omitempty"`
	ContinueOnError *bool  `yaml:"continue_on_error,omitempty"`
	Journal         string `yaml:"journal,omitempty"`
}

// Config holds the resolved settings for a run.
type Config struct {
	// ProjectDir is the directory relative paths are resolved against.
	ProjectDir string

	// RootDir is the absolute directory that is walked.
	RootDir string

	// TargetFilename is compared against each file's base name.
	TargetFilename string

	DryRun          bool
	ContinueOnError bool

	// JournalPath is empty when no journal should be written.
	JournalPath string

	// Source is the config file that was read, or empty if none was found.
	Source string
}

// Default returns the built-in settings for projectDir.
func Default(projectDir string) *Config {
	return &Config{
		ProjectDir:     projectDir,
		RootDir:        resolvePath(projectDir, DefaultRootDirectory),
		TargetFilename: DefaultTargetFilename,
	}
}

// Load resolves settings for projectDir. An empty configPath means
// ProjectDir/.dynpages.yaml, which may be absent. An explicit configPath
// must exist.
func Load(projectDir, configPath string) (*Config, error) {
	abs, err := filepath.Abs(projectDir)
	if err != nil {
		return nil, fmt.Errorf("config: resolve project dir: %w", err)
	}
	cfg := Default(abs)

	env, err := readDotEnv(filepath.Join(abs, dotEnvFile))
	if err != nil {
		return nil, err
	}

	explicit := strings.TrimSpace(configPath) != ""
	path := filepath.Join(abs, FileName)
	if explicit {
		path = resolvePath(abs, configPath)
	}
	if err := cfg.loadFile(path, explicit); err != nil {
		return nil, err
	}

	if err := cfg.applyEnv(env); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// SetRoot points the run at dir, resolved against ProjectDir.
func (c *Config) SetRoot(dir string) {
	c.RootDir = resolvePath(c.ProjectDir, dir)
}

// SetJournal enables the run journal at path, resolved against ProjectDir.
// An empty path disables it.
func (c *Config) SetJournal(path string) {
	c.JournalPath = resolvePath(c.ProjectDir, path)
}

// Validate checks the settings after every source has been applied.
func (c *Config) Validate() error {
	if c == nil {
		return fmt.Errorf("config: nil receiver")
	}
	if strings.TrimSpace(c.RootDir) == "" {
		return fmt.Errorf("config: root_directory is required")
	}
	target := strings.TrimSpace(c.TargetFilename)
	if target == "" {
		return fmt.Errorf("config: target_filename is required")
	}
	if target != c.TargetFilename {
		return fmt.Errorf("config: target_filename %q has surrounding whitespace", c.TargetFilename)
	}
	if strings.ContainsAny(target, `/\`) || target == "." || target == ".." {
		return fmt.Errorf("config: target_filename %q must be a base name, not a path", target)
	}
	return nil
}

// WriteDefault creates ProjectDir/.dynpages.yaml with commented defaults.
// An existing file is left alone; created reports whether one was written.
func WriteDefault(projectDir string) (path string, created bool, err error) {
	path = filepath.Join(projectDir, FileName)
	if _, err := os.Stat(path); err == nil {
		return path, false, nil
	} else if !errors.Is(err, fs.ErrNotExist) {
		return path, false, err
	}
	if err := os.WriteFile(path, []byte(defaultConfigYAML), 0o644); err != nil {
		return path, false, fmt.Errorf("config: write %s: %w", path, err)
	}
	return path, true, nil
}

func (c *Config) loadFile(path string, required bool) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) && !required {
			return nil
		}
		return fmt.Errorf("config: read %s: %w", path, err)
	}

	var parsed FileConfig
	if err := yaml.Unmarshal(data, &parsed); err != nil {
		return fmt.Errorf("config: parse %s: %w", path, err)
	}

	// Relative paths inside the file are relative to the file itself.
	base := filepath.Dir(path)
	if root := strings.TrimSpace(parsed.RootDirectory); root != "" {
		c.RootDir = resolvePath(base, root)
	}
	if target := strings.TrimSpace(parsed.TargetFilename); target != "" {
		c.TargetFilename = target
	}
	if parsed.DryRun != nil {
		c.DryRun = *parsed.DryRun
	}
	if parsed.ContinueOnError != nil {
		c.ContinueOnError = *parsed.ContinueOnError
	}
	if journal := strings.TrimSpace(parsed.Journal); journal != "" {
		c.JournalPath = resolvePath(base, journal)
	}
	c.Source = path
	return nil
}

// applyEnv layers environment values on top of the file settings. Values
// already present in the process environment win over the .env file.
func (c *Config) applyEnv(dotEnv map[string]string) error {
	lookup := func(key string) (string, bool) {
		if v, ok := os.LookupEnv(key); ok {
			return v, true
		}
		v, ok := dotEnv[key]
		return v, ok
	}
	if v, ok := lookup(EnvRoot); ok && strings.TrimSpace(v) != "" {
		c.SetRoot(v)
	}
	if v, ok := lookup(EnvTarget); ok && strings.TrimSpace(v) != "" {
		c.TargetFilename = strings.TrimSpace(v)
	}
	if v, ok := lookup(EnvJournal); ok && strings.TrimSpace(v) != "" {
		c.SetJournal(v)
	}
	if v, ok := lookup(EnvDryRun); ok {
		b, err := parseBool(EnvDryRun, v)
		if err != nil {
			return err
		}
		c.DryRun = b
	}
	if v, ok := lookup(EnvContinueOnError); ok {
		b, err := parseBool(EnvContinueOnError, v)
		if err != nil {
			return err
		}
		c.ContinueOnError = b
	}
	return nil
}

func readDotEnv(path string) (map[string]string, error) {
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("config: stat %s: %w", path, err)
	}
	values, err := godotenv.Read(path)
	if err != nil {
		return nil, fmt.Errorf("config: parse %s: %w", path, err)
	}
	return values, nil
}

func parseBool(key, value string) (bool, error) {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return false, nil
	}
	b, err := strconv.ParseBool(trimmed)
	if err != nil {
		return false, fmt.Errorf("config: %s: %q is not a boolean", key, value)
	}
	return b, nil
}

func resolvePath(base, candidate string) string {
	trimmed := strings.TrimSpace(candidate)
	if trimmed == "" {
		return ""
	}
	if filepath.IsAbs(trimmed) {
		return filepath.Clean(trimmed)
	}
	return filepath.Clean(filepath.Join(base, trimmed))
}
