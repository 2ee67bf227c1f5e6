package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Aman-CERP/scribe/internal/logging"
	"github.com/Aman-CERP/scribe/internal/search"
	"github.com/Aman-CERP/scribe/internal/ui"
)

type logsOptions struct {
	follow  bool
	lines   int
	level   string
	grep    string
	regex   bool
	noColor bool
	logFile string
}

func newLogsCmd() *cobra.Command {
	var opts logsOptions

	cmd := &cobra.Command{
		Use:   "logs",
		Short: "View scribe logs",
		Long: `View and tail the scribe log file (~/.scribe/logs/scribe.log).

The editor and the MCP server log there; --debug raises the level to debug.
--grep keeps lines containing a literal, or with --regex a regular
expression, using the same matcher as the editor's find.`,
		Example: `  scribe logs                       # last 50 lines
  scribe logs -f                    # follow new entries
  scribe logs --level warn          # warnings and errors only
  scribe logs --grep find           # lines mentioning "find"
  scribe logs --regex --grep 'found":(true|false)'`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runLogs(cmd.Context(), cmd, opts)
		},
	}

	cmd.Flags().BoolVarP(&opts.follow, "follow", "f", false, "Follow log output (like tail -f)")
	cmd.Flags().IntVarP(&opts.lines, "lines", "n", 50, "Number of lines to show")
	cmd.Flags().StringVar(&opts.level, "level", "", "Minimum level: debug, info, warn, error")
	cmd.Flags().StringVarP(&opts.grep, "grep", "g", "", "Keep lines containing this pattern")
	cmd.Flags().BoolVar(&opts.regex, "regex", false, "Treat --grep as a regular expression")
	cmd.Flags().BoolVar(&opts.noColor, "no-color", false, "Disable colored output")
	cmd.Flags().StringVar(&opts.logFile, "file", "", "Path to log file")

	return cmd
}

func runLogs(ctx context.Context, cmd *cobra.Command, opts logsOptions) error {
	if ctx == nil {
		ctx = context.Background()
	}

	match, err := lineMatcher(opts.grep, opts.regex)
	if err != nil {
		return err
	}

	path, err := logging.FindLogFile(opts.logFile)
	if err != nil {
		return err
	}

	viewer := logging.NewViewer(logging.ViewerConfig{
		Level:   opts.level,
		Match:   match,
		NoColor: opts.noColor || ui.DetectNoColor() || !ui.IsTTY(cmd.OutOrStdout()),
	}, cmd.OutOrStdout())

	errOut := cmd.ErrOrStderr()
	fmt.Fprintf(errOut, "Log file: %s\n", path)
	if opts.follow {
		fmt.Fprintln(errOut, "Following... (Ctrl+C to stop)")
	}
	fmt.Fprintln(errOut, "---")

	entries, err := viewer.Tail(path, opts.lines)
	if err != nil {
		return err
	}
	viewer.Print(entries)

	if !opts.follow {
		return nil
	}

	ch := make(chan logging.LogEntry, 64)
	done := make(chan error, 1)
	go func() {
		done <- viewer.Follow(ctx, path, ch)
	}()
	for {
		select {
		case e := <-ch:
			viewer.Print([]logging.LogEntry{e})
		case err := <-done:
			return err
		}
	}
}

// lineMatcher builds a --grep filter on the search engine. An empty
// pattern keeps every line.
func lineMatcher(pattern string, useRegex bool) (func(string) bool, error) {
	if pattern == "" {
		return nil, nil
	}
	engine := search.NewEngine()
	// Compile once up front so a bad expression fails before any output.
	if _, err := engine.Search("", 0, pattern, useRegex, search.Start); err != nil {
		return nil, err
	}
	return func(line string) bool {
		res, err := engine.Search(line, 0, pattern, useRegex, search.Start)
		return err == nil && res.Found
	}, nil
}
