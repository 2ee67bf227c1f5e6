package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/Aman-CERP/scribe/internal/mcp"
	"github.com/Aman-CERP/scribe/internal/search"
)

func newServeCmd() *cobra.Command {
	var (
		transport string
		root      string
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the find tool over MCP",
		Long: `Start a Model Context Protocol server exposing the 'find' tool.

The tool takes inline document text or a path relative to --root and
returns the match range, the matched text and the new caret.

stdout carries JSON-RPC messages only. Logs go to ~/.scribe/logs/.`,
		Example: `  # Claude Desktop / Cursor style configuration
  {"command": "scribe", "args": ["serve", "--root", "/path/to/project"]}`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}
			return runServe(ctx, transport, root)
		},
	}

	cmd.Flags().StringVar(&transport, "transport", "stdio", "Transport: stdio")
	cmd.Flags().StringVar(&root, "root", "", "Directory file paths are resolved against (default: current directory)")

	return cmd
}

func runServe(ctx context.Context, transport, root string) error {
	if transport != "stdio" {
		return fmt.Errorf("unknown transport: %s (supported: stdio)", transport)
	}
	if root == "" {
		cwd, err := os.Getwd()
		if err != nil {
			return fmt.Errorf("failed to get current directory: %w", err)
		}
		root = cwd
	}
	if info, err := os.Stat(root); err != nil || !info.IsDir() {
		return fmt.Errorf("root %s is not a directory", root)
	}

	cfg, err := loadConfigForDir(root)
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

	srv, err := mcp.NewServer(engine, root)
	if err != nil {
		return err
	}
	slog.Info("Serving find tool", slog.String("root", srv.Root()), slog.String("regex_engine", string(backend)))
	return srv.Serve(ctx, transport)
}
