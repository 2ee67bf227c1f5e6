// Package cmd provides the CLI commands for scribe.
package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/Aman-CERP/scribe/internal/config"
	serrors "github.com/Aman-CERP/scribe/internal/errors"
	"github.com/Aman-CERP/scribe/internal/logging"
	"github.com/Aman-CERP/scribe/internal/profiling"
	"github.com/Aman-CERP/scribe/pkg/version"
)

// Profiling flags
var (
	profileOpts profiling.Options
	profiler    *profiling.Session
)

// Debug logging flag
var (
	debugMode      bool
	loggingCleanup func()
)

// NewRootCmd creates the root command for the scribe CLI.
func NewRootCmd() *cobra.Command {
	var opts editOptions

	cmd := &cobra.Command{
		Use:   "scribe [file]",
		Short: "Terminal text editor with wraparound find",
		Long: `scribe is a small terminal text editor built around find:
Ctrl+F to type a pattern, Enter for the first match, Ctrl+N and Ctrl+P to
walk forward and backward. Searches wrap around the ends of the document
and accept literal text or regular expressions (Ctrl+R).

Run 'scribe <file>' to edit a file, 'scribe find' to search from scripts
and 'scribe serve' to expose find to AI assistants over MCP.`,
		Version:       version.Version,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runEdit(cmd.Context(), cmd, firstArg(args), opts)
		},
	}

	cmd.SetVersionTemplate("scribe version {{.Version}}\n")
	addEditFlags(cmd, &opts)

	cmd.PersistentFlags().StringVar(&profileOpts.CPU, "profile-cpu", "", "Write CPU profile to file")
	cmd.PersistentFlags().StringVar(&profileOpts.Heap, "profile-mem", "", "Write memory profile to file")
	cmd.PersistentFlags().StringVar(&profileOpts.Trace, "profile-trace", "", "Write execution trace to file")
	cmd.PersistentFlags().BoolVar(&debugMode, "debug", false, "Enable debug logging to ~/.scribe/logs/")

	cmd.PersistentPreRunE = startProfilingAndLogging
	cmd.PersistentPostRunE = stopProfilingAndLogging

	cmd.AddCommand(newEditCmd())
	cmd.AddCommand(newFindCmd())
	cmd.AddCommand(newServeCmd())
	cmd.AddCommand(newConfigCmd())
	cmd.AddCommand(newLogsCmd())
	cmd.AddCommand(newVersionCmd())

	return cmd
}

// startProfilingAndLogging starts profiling and debug logging if flags are set.
// Without --debug, logging is discarded until a command installs its file
// logger: stdout and stderr belong to the editor or the MCP transport.
func startProfilingAndLogging(_ *cobra.Command, _ []string) error {
	if debugMode {
		cfg := logging.DefaultConfig()
		cfg.Level = "debug"
		cleanup, err := logging.SetupDefault(cfg)
		if err != nil {
			return fmt.Errorf("failed to setup debug logging: %w", err)
		}
		loggingCleanup = cleanup
		slog.Info("Debug logging enabled",
			slog.String("log_file", cfg.FilePath),
			slog.String("version", version.Version))
	} else {
		logging.Silence()
	}

	if profileOpts.Enabled() {
		s, err := profiling.Start(profileOpts)
		if err != nil {
			return err
		}
		profiler = s
	}
	return nil
}

// stopProfilingAndLogging stops profiling and flushes the log file.
func stopProfilingAndLogging(_ *cobra.Command, _ []string) error {
	err := profiler.Stop()
	profiler = nil

	if loggingCleanup != nil {
		slog.Debug("Logging stopped")
		loggingCleanup()
		loggingCleanup = nil
	}
	return err
}

// setupCommandLogging installs the file logger described by cfg for
// long-running commands. --debug takes precedence.
func setupCommandLogging(cfg *config.Config) error {
	if loggingCleanup != nil {
		return nil
	}
	lc := logging.DefaultConfig()
	lc.Level = cfg.Logging.Level
	lc.MaxSizeMB = cfg.Logging.MaxSizeMB
	lc.MaxFiles = cfg.Logging.MaxFiles

	cleanup, err := logging.SetupDefault(lc)
	if err != nil {
		return err
	}
	loggingCleanup = cleanup
	return nil
}

// Execute runs the root command with a context cancelled on SIGINT/SIGTERM.
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	root := NewRootCmd()
	err := root.ExecuteContext(ctx)
	// PersistentPostRunE is skipped when RunE fails.
	_ = stopProfilingAndLogging(root, nil)
	if err != nil {
		fmt.Fprintln(os.Stderr, serrors.FormatForCLI(err))
	}
	return err
}

// loadConfigForDir loads layered configuration for the project enclosing dir.
func loadConfigForDir(dir string) (*config.Config, error) {
	root, err := config.FindProjectRoot(dir)
	if err != nil {
		root = dir
	}
	return config.Load(root)
}

func firstArg(args []string) string {
	if len(args) == 0 {
		return ""
	}
	return args[0]
}
