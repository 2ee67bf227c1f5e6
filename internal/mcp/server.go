package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/Aman-CERP/scribe/internal/buffer"
	serrors "github.com/Aman-CERP/scribe/internal/errors"
	"github.com/Aman-CERP/scribe/internal/search"
	"github.com/Aman-CERP/scribe/pkg/version"
)

// ServerName is the implementation name reported to clients.
const ServerName = "scribe"

// Server is the MCP server for scribe.
type Server struct {
	mcp      *mcp.Server
	engine   *search.Engine
	rootPath string
	logger   *slog.Logger
}

// ToolInfo contains information about a registered tool.
type ToolInfo struct {
	Name        string
	Description string
}

// NewServer creates a server that resolves relative paths against rootPath.
// A nil engine gets a default one.
func NewServer(engine *search.Engine, rootPath string) (*Server, error) {
	if engine == nil {
		engine = search.NewEngine()
	}
	if rootPath == "" {
		rootPath = "."
	}
	root, err := filepath.Abs(rootPath)
	if err != nil {
		return nil, fmt.Errorf("resolve server root: %w", err)
	}

	s := &Server{
		engine:   engine,
		rootPath: root,
		logger:   slog.Default(),
	}
	s.mcp = mcp.NewServer(
		&mcp.Implementation{Name: ServerName, Version: version.Version},
		nil,
	)
	s.registerTools()
	return s, nil
}

// MCPServer returns the underlying MCP server instance.
func (s *Server) MCPServer() *mcp.Server {
	return s.mcp
}

// Info returns the server name and version.
func (s *Server) Info() (name, ver string) {
	return ServerName, version.Version
}

// Root returns the directory relative paths are resolved against.
func (s *Server) Root() string {
	return s.rootPath
}

// ListTools returns all registered tools.
func (s *Server) ListTools() []ToolInfo {
	return []ToolInfo{{Name: FindToolName, Description: findToolDescription}}
}

// CallTool invokes a tool by name with JSON-like arguments.
func (s *Server) CallTool(ctx context.Context, name string, args map[string]any) (any, error) {
	switch name {
	case FindToolName:
		var in FindInput
		raw, err := json.Marshal(args)
		if err == nil {
			err = json.Unmarshal(raw, &in)
		}
		if err != nil {
			return nil, NewInvalidParamsError(fmt.Sprintf("invalid arguments: %v", err))
		}
		return s.handleFind(ctx, in)
	default:
		return nil, NewMethodNotFoundError(name)
	}
}

func (s *Server) registerTools() {
	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        FindToolName,
		Description: findToolDescription,
	}, s.mcpFindHandler)
	s.logger.Debug("Registered tool", slog.String("name", FindToolName))
}

// mcpFindHandler is the MCP SDK handler for the find tool.
func (s *Server) mcpFindHandler(ctx context.Context, _ *mcp.CallToolRequest, input FindInput) (
	*mcp.CallToolResult,
	FindOutput,
	error,
) {
	out, err := s.handleFind(ctx, input)
	if err != nil {
		return nil, FindOutput{}, err
	}
	return nil, *out, nil
}

// handleFind runs one search. Errors are *MCPError values.
func (s *Server) handleFind(ctx context.Context, in FindInput) (*FindOutput, error) {
	if err := ctx.Err(); err != nil {
		return nil, MapError(err)
	}
	if (in.Document == nil) == (in.Path == "") {
		return nil, NewInvalidParamsError("exactly one of document or path is required")
	}

	dir := search.Start
	if in.Direction != "" {
		d, err := search.ParseDirection(in.Direction)
		if err != nil {
			return nil, MapError(err)
		}
		dir = d
	}

	doc, err := s.document(in)
	if err != nil {
		return nil, MapError(err)
	}

	start := time.Now()
	requestID := uuid.NewString()
	res, err := s.engine.Search(doc, in.Caret, in.Pattern, in.Regex, dir)
	if err != nil {
		s.logger.Info("find rejected",
			append([]any{slog.String("request_id", requestID)}, serrors.LogAttrs(err)...)...)
		return nil, MapError(err)
	}

	n := utf8.RuneCountInString(doc)
	out := &FindOutput{Caret: min(max(in.Caret, 0), n)}
	if res.Found {
		out.Found = true
		out.Start = res.Start
		out.End = res.End
		out.Wrapped = res.Wrapped
		out.Caret = res.End
		out.Match = string([]rune(doc)[res.Start:res.End])
	}

	s.logger.Info("find completed",
		slog.String("request_id", requestID),
		slog.String("direction", dir.String()),
		slog.Bool("regex", in.Regex),
		slog.Bool("found", res.Found),
		slog.Duration("duration", time.Since(start)))
	return out, nil
}

// document returns the text to search: the inline document or the file.
func (s *Server) document(in FindInput) (string, error) {
	if in.Document != nil {
		return *in.Document, nil
	}

	path, err := s.resolvePath(in.Path)
	if err != nil {
		return "", err
	}
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", serrors.New(serrors.ErrCodeFileNotFound,
				fmt.Sprintf("file not found: %s", in.Path), err)
		}
		return "", serrors.IOError(fmt.Sprintf("cannot read %s", in.Path), err)
	}
	buf, err := buffer.Open(path)
	if err != nil {
		return "", err
	}
	return buf.Contents(), nil
}

// resolvePath maps p into the server root, rejecting paths that escape it.
func (s *Server) resolvePath(p string) (string, error) {
	full := p
	if !filepath.IsAbs(full) {
		full = filepath.Join(s.rootPath, full)
	}
	full = filepath.Clean(full)

	rel, err := filepath.Rel(s.rootPath, full)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", NewInvalidParamsError(fmt.Sprintf("invalid path: %s is outside %s", p, s.rootPath))
	}
	return full, nil
}

// Serve starts the server with the specified transport.
func (s *Server) Serve(ctx context.Context, transport string) error {
	s.logger.Info("Starting MCP server",
		slog.String("transport", transport),
		slog.String("root", s.rootPath))

	switch transport {
	case "stdio", "":
		err := s.mcp.Run(ctx, &mcp.StdioTransport{})
		if err != nil && !errors.Is(err, context.Canceled) {
			s.logger.Error("MCP server stopped with error", slog.String("error", err.Error()))
			return err
		}
		s.logger.Info("MCP server stopped gracefully")
		return nil
	default:
		return fmt.Errorf("unknown transport: %s (supported: stdio)", transport)
	}
}
