package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestLoadDefaultsWhenMissing(t *testing.T) {
	projectDir := t.TempDir()
	cfg, err := Load(projectDir, "")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.RootDir != filepath.Join(projectDir, "app") {
		t.Fatalf("expected default root under project dir, got %s", cfg.RootDir)
	}
	if cfg.TargetFilename != "page.tsx" {
		t.Fatalf("expected default target page.tsx, got %q", cfg.TargetFilename)
	}
	if cfg.DryRun || cfg.ContinueOnError {
		t.Fatalf("expected fail-fast write mode by default")
	}
	if cfg.JournalPath != "" || cfg.Source != "" {
		t.Fatalf("expected no journal and no source, got %q / %q", cfg.JournalPath, cfg.Source)
	}
}

func TestLoadParsesYaml(t *testing.T) {
	projectDir := t.TempDir()
	configYAML := strings.TrimSpace(`
root_directory: src/app
target_filename: page.jsx
dry_run: true
continue_on_error: true
journal: .dynpages/journal.log
`)
	if err := os.WriteFile(filepath.Join(projectDir, FileName), []byte(configYAML), 0644); err != nil {
		t.Fatal(err)
	}
	cfg, err := Load(projectDir, "")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.RootDir != filepath.Join(projectDir, "src", "app") {
		t.Fatalf("expected resolved root, got %s", cfg.RootDir)
	}
	if cfg.TargetFilename != "page.jsx" {
		t.Fatalf("wrong target: %s", cfg.TargetFilename)
	}
	if !cfg.DryRun || !cfg.ContinueOnError {
		t.Fatalf("expected dry_run and continue_on_error to be set")
	}
	if cfg.JournalPath != filepath.Join(projectDir, ".dynpages", "journal.log") {
		t.Fatalf("expected resolved journal, got %s", cfg.JournalPath)
	}
	if cfg.Source != filepath.Join(projectDir, FileName) {
		t.Fatalf("expected source to be recorded, got %s", cfg.Source)
	}
}

func TestLoadExplicitConfigMustExist(t *testing.T) {
	projectDir := t.TempDir()
	if _, err := Load(projectDir, "missing.yaml"); err == nil {
		t.Fatalf("expected error for missing explicit config")
	}
}

func TestLoadExplicitConfigResolvesRelativeToFile(t *testing.T) {
	projectDir := t.TempDir()
	nested := filepath.Join(projectDir, "configs")
	if err := os.MkdirAll(nested, 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(nested, "dyn.yaml"), []byte("root_directory: ../web/app\n"), 0644); err != nil {
		t.Fatal(err)
	}
	cfg, err := Load(projectDir, filepath.Join("configs", "dyn.yaml"))
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.RootDir != filepath.Join(projectDir, "web", "app") {
		t.Fatalf("expected root relative to config file, got %s", cfg.RootDir)
	}
}

func TestLoadEnvironmentOverridesFile(t *testing.T) {
	projectDir := t.TempDir()
	if err := os.WriteFile(filepath.Join(projectDir, FileName), []byte("root_directory: app\ntarget_filename: page.tsx\n"), 0644); err != nil {
		t.Fatal(err)
	}
	t.Setenv(EnvRoot, "pages")
	t.Setenv(EnvTarget, "index.tsx")
	t.Setenv(EnvDryRun, "true")

	cfg, err := Load(projectDir, "")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.RootDir != filepath.Join(projectDir, "pages") {
		t.Fatalf("expected env root, got %s", cfg.RootDir)
	}
	if cfg.TargetFilename != "index.tsx" {
		t.Fatalf("expected env target, got %s", cfg.TargetFilename)
	}
	if !cfg.DryRun {
		t.Fatalf("expected env dry run")
	}
}

func TestLoadDotEnvLosesToProcessEnvironment(t *testing.T) {
	projectDir := t.TempDir()
	dotEnv := EnvRoot + "=from-dotenv\n" + EnvTarget + "=route.tsx\n"
	if err := os.WriteFile(filepath.Join(projectDir, ".env"), []byte(dotEnv), 0644); err != nil {
		t.Fatal(err)
	}
	t.Setenv(EnvRoot, "from-process")

	cfg, err := Load(projectDir, "")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.RootDir != filepath.Join(projectDir, "from-process") {
		t.Fatalf("expected process env to win, got %s", cfg.RootDir)
	}
	if cfg.TargetFilename != "route.tsx" {
		t.Fatalf("expected .env target, got %s", cfg.TargetFilename)
	}
}

func TestLoadValidation(t *testing.T) {
	cases := map[string]string{
		"path target":    "target_filename: app/page.tsx\n",
		"dot target":     "target_filename: ..\n",
		"backslash path": "target_filename: 'app\\page.tsx'\n",
		"bad yaml":       "root_directory: [\n",
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			projectDir := t.TempDir()
			if err := os.WriteFile(filepath.Join(projectDir, FileName), []byte(body), 0644); err != nil {
				t.Fatal(err)
			}
			_, err := Load(projectDir, "")
			if err == nil {
				t.Fatalf("expected error for %s", name)
			}
			if !strings.HasPrefix(err.Error(), "config:") {
				t.Fatalf("expected config-prefixed error, got %v", err)
			}
		})
	}
}

func TestLoadRejectsInvalidBoolean(t *testing.T) {
	t.Setenv(EnvContinueOnError, "sometimes")
	if _, err := Load(t.TempDir(), ""); err == nil {
		t.Fatalf("expected error for invalid boolean")
	}
}

func TestWriteDefaultDoesNotOverwrite(t *testing.T) {
	projectDir := t.TempDir()
	path, created, err := WriteDefault(projectDir)
	if err != nil {
		t.Fatalf("WriteDefault returned error: %v", err)
	}
	if !created {
		t.Fatalf("expected file to be created")
	}
	cfg, err := Load(projectDir, "")
	if err != nil {
		t.Fatalf("default config should load: %v", err)
	}
	if cfg.RootDir != filepath.Join(projectDir, DefaultRootDirectory) || cfg.TargetFilename != DefaultTargetFilename {
		t.Fatalf("default file should reproduce defaults, got %s / %s", cfg.RootDir, cfg.TargetFilename)
	}

	if err := os.WriteFile(path, []byte("target_filename: custom.tsx\n"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, created, err := WriteDefault(projectDir); err != nil || created {
		t.Fatalf("expected existing file to be kept, created=%v err=%v", created, err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "target_filename: custom.tsx\n" {
		t.Fatalf("existing config was overwritten: %q", data)
	}
}

func TestSetJournalEmptyDisables(t *testing.T) {
	cfg := Default(t.TempDir())
	cfg.SetJournal("logs/run.log")
	if cfg.JournalPath == "" {
		t.Fatalf("expected journal path")
	}
	cfg.SetJournal("")
	if cfg.JournalPath != "" {
		t.Fatalf("expected journal to be disabled, got %s", cfg.JournalPath)
	}
}
