// cmd/dynpages/main.go
//
// Entry point for the dynpages CLI.
// Running `dynpages` from a Next.js project inserts the force-dynamic
// directives into every client page.tsx under app/.

package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/kingrea/dynpages/internal/config"
	"github.com/kingrea/dynpages/internal/logging"
)

// cli carries flag values and the logger between cobra hooks and RunE.
type cli struct {
	projectDir      string
	configFile      string
	root            string
	target          string
	journal         string
	logFile         string
	dryRun          bool
	continueOnError bool
	verbose         bool
	useTUI          bool

	logger   *zap.Logger
	closeLog func() error
}

func newRootCmd() *cobra.Command {
	c := &cli{logger: zap.NewNop()}

	rootCmd := &cobra.Command{
		Use:   "dynpages [root]",
		Short: "Force dynamic rendering on Next.js client pages",
		Long: `dynpages walks a Next.js app directory and, in every page.tsx that starts
with a "use client" directive, inserts:

  export const dynamic = 'force-dynamic';
  export const revalidate = 0;

right after the directive. Files that already export "dynamic" are left
alone, so running it again is safe.

Settings are read from .dynpages.yaml and DYNPAGES_* variables (also from
.env); flags win over both.`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			logger, closeLog, err := logging.New(logging.Options{Verbose: c.verbose, File: c.logFile})
			if err != nil {
				return fmt.Errorf("failed to initialize logger: %w", err)
			}
			c.logger = logger
			c.closeLog = closeLog
			return nil
		},
		RunE: c.withShutdown(c.runPatch),
	}

	pf := rootCmd.PersistentFlags()
	pf.StringVarP(&c.projectDir, "project", "C", "", "project directory (defaults to the working directory)")
	pf.StringVar(&c.configFile, "config", "", "config file (defaults to <project>/"+config.FileName+")")
	pf.StringVar(&c.journal, "journal", "", "append run entries to this journal file")
	pf.StringVar(&c.logFile, "log-file", "", "also write diagnostics to this file as JSON")
	pf.BoolVarP(&c.verbose, "verbose", "v", false, "enable debug diagnostics")

	f := rootCmd.Flags()
	f.StringVar(&c.root, "root", "", "directory to scan (default \""+config.DefaultRootDirectory+"\")")
	f.StringVar(&c.target, "target", "", "file name to patch (default \""+config.DefaultTargetFilename+"\")")
	f.BoolVarP(&c.dryRun, "dry-run", "n", false, "report what would change without writing")
	f.BoolVar(&c.continueOnError, "continue-on-error", false, "keep going after a file fails and report all failures")
	f.BoolVar(&c.useTUI, "tui", false, "show a live progress view")

	rootCmd.AddCommand(c.newInitCmd(), c.newJournalCmd())
	return rootCmd
}

// withShutdown flushes and closes the logger once fn returns. Cobra skips
// post-run hooks when RunE fails, so this runs from a defer instead.
func (c *cli) withShutdown(fn func(*cobra.Command, []string) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		defer c.shutdown()
		return fn(cmd, args)
	}
}

func (c *cli) shutdown() {
	_ = c.logger.Sync()
	if c.closeLog != nil {
		if err := c.closeLog(); err != nil {
			fmt.Fprintln(os.Stderr, "dynpages: close log file:", err)
		}
		c.closeLog = nil
	}
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "dynpages:", err)
		os.Exit(1)
	}
}
