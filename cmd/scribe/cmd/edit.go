package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/Aman-CERP/scribe/internal/buffer"
	"github.com/Aman-CERP/scribe/internal/config"
	"github.com/Aman-CERP/scribe/internal/controller"
	"github.com/Aman-CERP/scribe/internal/search"
	"github.com/Aman-CERP/scribe/internal/ui"
	"github.com/Aman-CERP/scribe/internal/watcher"
)

type editOptions struct {
	regex   bool
	pattern string
	noWatch bool
}

func addEditFlags(cmd *cobra.Command, opts *editOptions) {
	cmd.Flags().BoolVarP(&opts.regex, "regex", "r", false, "Start with regular expression mode on")
	cmd.Flags().StringVarP(&opts.pattern, "pattern", "p", "", "Initial search pattern")
	cmd.Flags().BoolVar(&opts.noWatch, "no-watch", false, "Do not watch the file for external changes")
}

func newEditCmd() *cobra.Command {
	var opts editOptions

	cmd := &cobra.Command{
		Use:   "edit [file]",
		Short: "Open a file in the editor",
		Long: `Open a file in the terminal editor. A file that does not exist yet is
created on the first save (Ctrl+S).

Keys:
  Ctrl+F          focus the search field
  Enter           first match from the top of the document
  Ctrl+N, F3      next match, wrapping to the top
  Ctrl+P, Shift+F3  previous match, wrapping to the bottom
  Ctrl+R          toggle regular expressions
  Ctrl+Q          quit`,
		Example: `  scribe edit notes.txt
  scribe edit --regex --pattern 'TODO|FIXME' main.go`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runEdit(cmd.Context(), cmd, firstArg(args), opts)
		},
	}
	addEditFlags(cmd, &opts)
	return cmd
}

func runEdit(ctx context.Context, cmd *cobra.Command, path string, opts editOptions) error {
	if ctx == nil {
		ctx = context.Background()
	}
	out := cmd.OutOrStdout()
	if !ui.IsTTY(out) {
		return fmt.Errorf("the editor needs a terminal (use 'scribe find' in scripts): %w", ui.ErrNotTTY)
	}

	cfg, err := loadEditConfig(path)
	if err != nil {
		return err
	}
	if err := setupCommandLogging(cfg); err != nil {
		return err
	}

	backend, err := search.ParseBackend(cfg.Search.RegexEngine)
	if err != nil {
		return err
	}
	engine := search.NewEngine(search.WithBackend(backend), search.WithCacheSize(cfg.Search.CacheSize))

	buf := buffer.New("")
	if path != "" {
		abs, err := filepath.Abs(path)
		if err != nil {
			return fmt.Errorf("resolve %s: %w", path, err)
		}
		path = abs
		if buf, err = buffer.Open(path); err != nil {
			return err
		}
	}
	buf.SetLockTimeout(cfg.LockTimeoutDuration())

	ctrl := controller.New(buf, engine, controller.WithRegex(cfg.Search.UseRegex || opts.regex))
	if opts.pattern != "" {
		ctrl.SetPattern(opts.pattern)
	}
	disp := controller.NewDispatcher(ctrl)
	defer disp.Close()

	edOpts := []ui.EditorOption{
		ui.WithTabWidth(cfg.Editor.TabWidth),
		ui.WithStyles(ui.GetStyles(ui.DetectNoColor())),
	}

	var w *watcher.FileWatcher
	if path != "" && cfg.Editor.Watch && !opts.noWatch {
		w, err = watcher.New(watcher.Options{DebounceWindow: cfg.WatchDebounceDuration()})
		if err != nil {
			return err
		}
		edOpts = append(edOpts, ui.WithFileEvents(w.Events()))
	}

	slog.Info("Opening editor",
		slog.String("path", path),
		slog.String("regex_engine", string(backend)),
		slog.Bool("watch", w != nil))

	g, gctx := errgroup.WithContext(ctx)
	runCtx, cancel := context.WithCancel(gctx)
	defer cancel()

	if w != nil {
		g.Go(func() error {
			if err := w.Start(runCtx, path); err != nil && !errors.Is(err, context.Canceled) {
				// The editor keeps working without change notifications.
				slog.Warn("File watcher stopped", slog.String("error", err.Error()))
			}
			return nil
		})
		g.Go(func() error {
			for err := range w.Errors() {
				slog.Warn("File watcher error", slog.String("error", err.Error()))
			}
			return nil
		})
	}

	g.Go(func() error {
		defer cancel()
		if w != nil {
			defer func() { _ = w.Stop() }()
		}
		return ui.Run(runCtx, ui.NewEditor(ctrl, disp, edOpts...), out)
	})

	return g.Wait()
}

// loadEditConfig loads configuration for the project enclosing path, or the
// working directory for an unnamed buffer.
func loadEditConfig(path string) (*config.Config, error) {
	if path != "" {
		return config.LoadForFile(path)
	}
	cwd, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("failed to get current directory: %w", err)
	}
	return loadConfigForDir(cwd)
}
