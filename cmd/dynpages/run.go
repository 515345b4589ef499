package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/kingrea/dynpages/internal/config"
	"github.com/kingrea/dynpages/internal/inserter"
	"github.com/kingrea/dynpages/internal/logbook"
	"github.com/kingrea/dynpages/internal/report"
	"github.com/kingrea/dynpages/internal/tui"
)

func (c *cli) runPatch(cmd *cobra.Command, args []string) error {
	cfg, err := c.resolveConfig(cmd, args)
	if err != nil {
		return err
	}
	c.logger.Debug("configuration resolved",
		zap.String("project", cfg.ProjectDir),
		zap.String("source", cfg.Source),
		zap.String("root", cfg.RootDir),
		zap.String("target", cfg.TargetFilename),
		zap.Bool("dry_run", cfg.DryRun),
		zap.Bool("continue_on_error", cfg.ContinueOnError),
	)

	book, err := openJournal(cfg)
	if err != nil {
		return err
	}
	c.journalErr(book.RunStarted(cfg.RootDir, cfg.TargetFilename, cfg.DryRun))

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	opts := inserter.Options{
		Root:            cfg.RootDir,
		Target:          cfg.TargetFilename,
		DryRun:          cfg.DryRun,
		ContinueOnError: cfg.ContinueOnError,
	}
	options := []inserter.Option{
		inserter.WithLogger(c.logger),
		inserter.WithObserver(func(res inserter.Result) {
			switch {
			case res.Outcome == inserter.OutcomeFailed:
				c.journalErr(book.Failed(res.Path, res.Err))
			case res.Outcome == inserter.OutcomeModified && !cfg.DryRun:
				c.journalErr(book.Modified(res.Path))
			}
		}),
	}

	var (
		rep    inserter.Report
		runErr error
	)
	if c.useTUI {
		rep, runErr = tui.Run(ctx, opts, cfg.ProjectDir, options...)
	} else {
		printer := report.NewPrinter(cmd.OutOrStdout(), cfg.ProjectDir)
		printer.Header(opts)
		options = append(options, inserter.WithObserver(printer.Result))
		rep, runErr = inserter.New(opts, options...).Run(ctx)
		if runErr == nil || cfg.ContinueOnError {
			printer.Summary(rep)
		}
	}

	c.journalErr(book.RunFinished(rep.Modified, len(rep.Results), cfg.DryRun, runErr))
	if runErr != nil {
		return runErr
	}
	c.logger.Debug("run finished", zap.Int("modified", rep.Modified), zap.Int("candidates", len(rep.Results)))
	return nil
}

// resolveConfig loads file and environment settings, then applies the flags
// the user actually passed.
func (c *cli) resolveConfig(cmd *cobra.Command, args []string) (*config.Config, error) {
	project, err := c.project()
	if err != nil {
		return nil, err
	}
	cfg, err := config.Load(project, c.configFile)
	if err != nil {
		return nil, err
	}

	flags := cmd.Flags()
	if len(args) == 1 && flags.Changed("root") {
		return nil, fmt.Errorf("root given both as argument and --root")
	}
	if len(args) == 1 {
		cfg.SetRoot(args[0])
	}
	if flags.Changed("root") {
		cfg.SetRoot(c.root)
	}
	if flags.Changed("target") {
		cfg.TargetFilename = c.target
	}
	if flags.Changed("dry-run") {
		cfg.DryRun = c.dryRun
	}
	if flags.Changed("continue-on-error") {
		cfg.ContinueOnError = c.continueOnError
	}
	if flags.Changed("journal") {
		cfg.SetJournal(c.journal)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *cli) project() (string, error) {
	if c.projectDir != "" {
		return c.projectDir, nil
	}
	wd, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("determine working directory: %w", err)
	}
	return wd, nil
}

func (c *cli) journalErr(err error) {
	if err != nil {
		c.logger.Warn("journal write failed", zap.Error(err))
	}
}

// openJournal returns nil when no journal is configured; a nil logbook
// discards entries.
func openJournal(cfg *config.Config) (*logbook.Logbook, error) {
	if cfg.JournalPath == "" {
		return nil, nil
	}
	book, err := logbook.New(cfg.JournalPath)
	if err != nil {
		return nil, fmt.Errorf("open journal: %w", err)
	}
	return book, nil
}

func (c *cli) newInitCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Write a default " + config.FileName + " to the project directory",
		Args:  cobra.NoArgs,
		RunE: c.withShutdown(func(cmd *cobra.Command, args []string) error {
			project, err := c.project()
			if err != nil {
				return err
			}
			path, created, err := config.WriteDefault(project)
			if err != nil {
				return err
			}
			if created {
				fmt.Fprintf(cmd.OutOrStdout(), "Created %s\n", path)
			} else {
				fmt.Fprintf(cmd.OutOrStdout(), "%s already exists, left unchanged\n", path)
			}
			return nil
		}),
	}
}

func (c *cli) newJournalCmd() *cobra.Command {
	var lines int
	cmd := &cobra.Command{
		Use:   "journal",
		Short: "Print the most recent run journal entries",
		Args:  cobra.NoArgs,
		RunE: c.withShutdown(func(cmd *cobra.Command, args []string) error {
			cfg, err := c.resolveConfig(cmd, nil)
			if err != nil {
				return err
			}
			if cfg.JournalPath == "" {
				return fmt.Errorf("no journal configured; set journal in %s or pass --journal", config.FileName)
			}
			book, err := logbook.New(cfg.JournalPath)
			if err != nil {
				return err
			}
			entries, err := book.Tail(lines)
			if err != nil {
				return err
			}
			if len(entries) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "Journal is empty.")
				return nil
			}
			for _, entry := range entries {
				fmt.Fprintln(cmd.OutOrStdout(), entry)
			}
			return nil
		}),
	}
	cmd.Flags().IntVarP(&lines, "lines", "n", 20, "number of entries to show")
	return cmd
}
