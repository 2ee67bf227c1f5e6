package cmd

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/Aman-CERP/scribe/internal/buffer"
	serrors "github.com/Aman-CERP/scribe/internal/errors"
	"github.com/Aman-CERP/scribe/internal/output"
	"github.com/Aman-CERP/scribe/internal/search"
)

type findOptions struct {
	regex     bool
	direction string
	caret     int
	all       bool
	format    string
}

// findMatch is one match in JSON output. Line and Column are 1-based.
type findMatch struct {
	Start   int    `json:"start"`
	End     int    `json:"end"`
	Line    int    `json:"line"`
	Column  int    `json:"column"`
	Text    string `json:"text"`
	Wrapped bool   `json:"wrapped,omitempty"`
}

type findReport struct {
	Pattern   string      `json:"pattern"`
	Regex     bool        `json:"regex"`
	Direction string      `json:"direction"`
	Found     bool        `json:"found"`
	Matches   []findMatch `json:"matches"`
}

func newFindCmd() *cobra.Command {
	var opts findOptions

	cmd := &cobra.Command{
		Use:   "find <pattern> [file]",
		Short: "Find a pattern in a file",
		Long: `Find a pattern the way the editor does, without opening it.

The search starts at --caret and wraps around the end of the document.
Offsets are counted in characters (Unicode code points). With no file, or
with '-', the document is read from standard input.

Directions:
  start     first match from the top; --caret is ignored
  next      first match at or after the caret
  prev      last match ending before the caret`,
		Example: `  scribe find TODO main.go
  scribe find --regex 'func \w+' --all main.go
  scribe find --direction prev --caret 120 needle notes.txt
  cat notes.txt | scribe find --format json needle`,
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := ""
			if len(args) == 2 {
				path = args[1]
			}
			err := runFind(cmd, args[0], path, opts)
			if err != nil && opts.format == "json" {
				// Scripts reading JSON get the error in the same format.
				if data, jerr := serrors.FormatJSON(err); jerr == nil {
					_, _ = fmt.Fprintln(cmd.OutOrStdout(), string(data))
				}
			}
			return err
		},
	}

	cmd.Flags().BoolVarP(&opts.regex, "regex", "r", false, "Treat the pattern as a regular expression")
	cmd.Flags().StringVarP(&opts.direction, "direction", "d", "start", "Search direction: start, next, prev")
	cmd.Flags().IntVarP(&opts.caret, "caret", "c", 0, "Caret offset in characters")
	cmd.Flags().BoolVarP(&opts.all, "all", "a", false, "List every match from the top of the document")
	cmd.Flags().StringVarP(&opts.format, "format", "f", "text", "Output format: text, json")

	return cmd
}

func runFind(cmd *cobra.Command, pattern, path string, opts findOptions) error {
	if opts.format != "text" && opts.format != "json" {
		return serrors.ValidationError(fmt.Sprintf("invalid format %q", opts.format), nil).
			WithSuggestion("use text or json")
	}
	dir, err := search.ParseDirection(opts.direction)
	if err != nil {
		return err
	}

	cwd, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("failed to get current directory: %w", err)
	}
	cfg, err := loadConfigForDir(cwd)
	if err != nil {
		return err
	}
	backend, err := search.ParseBackend(cfg.Search.RegexEngine)
	if err != nil {
		return err
	}
	engine := search.NewEngine(search.WithBackend(backend), search.WithCacheSize(cfg.Search.CacheSize))

	buf, err := loadFindDocument(cmd.InOrStdin(), path)
	if err != nil {
		return err
	}
	doc := buf.Contents()

	var results []search.Result
	if opts.all {
		results, err = findAll(engine, doc, pattern, opts.regex)
	} else {
		var res search.Result
		res, err = engine.Search(doc, opts.caret, pattern, opts.regex, dir)
		if res.Found {
			results = append(results, res)
		}
	}
	if err != nil {
		return err
	}

	report := findReport{
		Pattern:   pattern,
		Regex:     opts.regex,
		Direction: dir.String(),
		Found:     len(results) > 0,
		Matches:   make([]findMatch, 0, len(results)),
	}
	runes := []rune(doc)
	for _, r := range results {
		line, col := buf.OffsetLineCol(r.Start)
		report.Matches = append(report.Matches, findMatch{
			Start:   r.Start,
			End:     r.End,
			Line:    line + 1,
			Column:  col + 1,
			Text:    string(runes[r.Start:r.End]),
			Wrapped: r.Wrapped,
		})
	}

	if opts.format == "json" {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(report)
	}
	return printFindText(cmd, buf, path, report)
}

// findAll walks forward from the top until the search wraps.
func findAll(engine *search.Engine, doc, pattern string, useRegex bool) ([]search.Result, error) {
	var results []search.Result
	res, err := engine.Search(doc, 0, pattern, useRegex, search.Start)
	for err == nil && res.Found {
		results = append(results, res)
		caret := res.End
		if res.Start == res.End {
			// An empty match at the caret would be found again.
			caret++
			if caret > len([]rune(doc)) {
				break
			}
		}
		res, err = engine.Search(doc, caret, pattern, useRegex, search.Forward)
		if res.Wrapped {
			break
		}
	}
	return results, err
}

func printFindText(cmd *cobra.Command, buf *buffer.Buffer, path string, report findReport) error {
	out := output.New(cmd.OutOrStdout())
	if f, ok := cmd.OutOrStdout().(*os.File); ok {
		out = output.NewForFile(f)
	}

	if !report.Found {
		out.Warningf("No match for %q", report.Pattern)
		return nil
	}

	label := ""
	if path != "" && path != "-" {
		label = filepath.ToSlash(path)
	}
	lines := buf.Lines()
	for _, m := range report.Matches {
		text := lines[m.Line-1]
		colEnd := m.Column - 1 + len([]rune(m.Text))
		out.Match(label, m.Line, m.Column, text, m.Column-1, colEnd)
	}
	return nil
}

// loadFindDocument reads path, or r when path is empty or "-".
func loadFindDocument(r io.Reader, path string) (*buffer.Buffer, error) {
	if path == "" || path == "-" {
		data, err := io.ReadAll(r)
		if err != nil {
			return nil, serrors.IOError("cannot read standard input", err)
		}
		return buffer.New(string(data)), nil
	}

	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, serrors.New(serrors.ErrCodeFileNotFound,
				fmt.Sprintf("file not found: %s", path), err).
				WithSuggestion("check the path")
		}
		return nil, serrors.IOError(fmt.Sprintf("cannot read %s", path), err)
	}
	return buffer.Open(path)
}
