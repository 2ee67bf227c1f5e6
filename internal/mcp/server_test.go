package mcp

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Aman-CERP/scribe/internal/search"
)

func newTestServer(t *testing.T) (*Server, string) {
	t.Helper()
	root := t.TempDir()
	srv, err := NewServer(search.NewEngine(), root)
	require.NoError(t, err)
	return srv, root
}

func str(s string) *string { return &s }

func requireMCPError(t *testing.T, err error, code int) *MCPError {
	t.Helper()
	require.Error(t, err)
	var mcpErr *MCPError
	require.True(t, errors.As(err, &mcpErr), "expected *MCPError, got %T", err)
	assert.Equal(t, code, mcpErr.Code)
	return mcpErr
}

func TestNewServer_Defaults(t *testing.T) {
	srv, err := NewServer(nil, "")
	require.NoError(t, err)

	name, _ := srv.Info()
	assert.Equal(t, "scribe", name)
	assert.NotNil(t, srv.MCPServer())
	assert.True(t, filepath.IsAbs(srv.Root()))

	tools := srv.ListTools()
	require.Len(t, tools, 1)
	assert.Equal(t, FindToolName, tools[0].Name)
}

func TestHandleFind_ForwardWalkAndWrap(t *testing.T) {
	// Given: the foo/bar/baz document
	srv, _ := newTestServer(t)
	doc := str("foo bar foo baz")
	ctx := context.Background()

	// When: searching from the start, then forward twice
	first, err := srv.handleFind(ctx, FindInput{Document: doc, Pattern: "foo"})
	require.NoError(t, err)
	second, err := srv.handleFind(ctx, FindInput{Document: doc, Pattern: "foo", Direction: "next", Caret: first.Caret})
	require.NoError(t, err)
	third, err := srv.handleFind(ctx, FindInput{Document: doc, Pattern: "foo", Direction: "forward", Caret: second.Caret})
	require.NoError(t, err)

	// Then: matches walk and wrap
	assert.Equal(t, FindOutput{Found: true, Start: 0, End: 3, Match: "foo", Caret: 3}, *first)
	assert.Equal(t, FindOutput{Found: true, Start: 8, End: 11, Match: "foo", Caret: 11}, *second)
	assert.Equal(t, FindOutput{Found: true, Start: 0, End: 3, Match: "foo", Caret: 3, Wrapped: true}, *third)
}

func TestHandleFind_RegexBackward(t *testing.T) {
	srv, _ := newTestServer(t)

	out, err := srv.handleFind(context.Background(), FindInput{
		Document: str("aXaYaZ"), Caret: 6, Pattern: "a.", Regex: true, Direction: "backward",
	})

	require.NoError(t, err)
	assert.Equal(t, 4, out.Start)
	assert.Equal(t, 6, out.End)
	assert.Equal(t, "aZ", out.Match)
}

func TestHandleFind_NotFoundKeepsClampedCaret(t *testing.T) {
	srv, _ := newTestServer(t)

	out, err := srv.handleFind(context.Background(), FindInput{Document: str("héllo"), Caret: 99, Pattern: "z"})

	require.NoError(t, err)
	assert.False(t, out.Found)
	assert.Equal(t, 5, out.Caret)
}

func TestHandleFind_EmptyDocumentIsAllowed(t *testing.T) {
	srv, _ := newTestServer(t)

	out, err := srv.handleFind(context.Background(), FindInput{Document: str(""), Pattern: "a"})

	require.NoError(t, err)
	assert.False(t, out.Found)
}

func TestHandleFind_InvalidPatternIsInvalidParams(t *testing.T) {
	srv, _ := newTestServer(t)

	_, err := srv.handleFind(context.Background(), FindInput{Document: str("abc"), Pattern: "(", Regex: true})

	mcpErr := requireMCPError(t, err, ErrCodeInvalidParams)
	assert.NotEmpty(t, mcpErr.Message)
}

func TestHandleFind_InvalidDirection(t *testing.T) {
	srv, _ := newTestServer(t)

	_, err := srv.handleFind(context.Background(), FindInput{Document: str("abc"), Pattern: "a", Direction: "sideways"})

	requireMCPError(t, err, ErrCodeInvalidParams)
}

func TestHandleFind_DocumentXorPath(t *testing.T) {
	srv, _ := newTestServer(t)
	ctx := context.Background()

	_, err := srv.handleFind(ctx, FindInput{Pattern: "a"})
	requireMCPError(t, err, ErrCodeInvalidParams)

	_, err = srv.handleFind(ctx, FindInput{Document: str("a"), Path: "a.txt", Pattern: "a"})
	requireMCPError(t, err, ErrCodeInvalidParams)
}

func TestHandleFind_Path(t *testing.T) {
	srv, root := newTestServer(t)
	require.NoError(t, os.MkdirAll(filepath.Join(root, "docs"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(root, "docs", "a.txt"), []byte("one two one"), 0o644))
	ctx := context.Background()

	t.Run("relative path", func(t *testing.T) {
		out, err := srv.handleFind(ctx, FindInput{Path: "docs/a.txt", Pattern: "one", Caret: 1, Direction: "next"})
		require.NoError(t, err)
		assert.Equal(t, 8, out.Start)
	})

	t.Run("absolute path inside root", func(t *testing.T) {
		out, err := srv.handleFind(ctx, FindInput{Path: filepath.Join(root, "docs", "a.txt"), Pattern: "two"})
		require.NoError(t, err)
		assert.Equal(t, 4, out.Start)
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := srv.handleFind(ctx, FindInput{Path: "docs/missing.txt", Pattern: "x"})
		requireMCPError(t, err, ErrCodeFileNotFound)
	})

	t.Run("escaping the root", func(t *testing.T) {
		_, err := srv.handleFind(ctx, FindInput{Path: "../outside.txt", Pattern: "x"})
		requireMCPError(t, err, ErrCodeInvalidParams)
	})
}

func TestHandleFind_CancelledContext(t *testing.T) {
	srv, _ := newTestServer(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := srv.handleFind(ctx, FindInput{Document: str("a"), Pattern: "a"})

	requireMCPError(t, err, ErrCodeTimeout)
}

func TestCallTool(t *testing.T) {
	srv, _ := newTestServer(t)
	ctx := context.Background()

	result, err := srv.CallTool(ctx, "find", map[string]any{
		"document":  "aXaYaZ",
		"caret":     float64(6),
		"pattern":   "a.",
		"regex":     true,
		"direction": "prev",
	})
	require.NoError(t, err)
	out, ok := result.(*FindOutput)
	require.True(t, ok)
	assert.Equal(t, 4, out.Start)

	_, err = srv.CallTool(ctx, "grep", nil)
	requireMCPError(t, err, ErrCodeMethodNotFound)

	_, err = srv.CallTool(ctx, "find", map[string]any{"document": "x", "caret": "not a number", "pattern": "x"})
	requireMCPError(t, err, ErrCodeInvalidParams)
}

func TestMCPFindHandler(t *testing.T) {
	srv, _ := newTestServer(t)

	res, out, err := srv.mcpFindHandler(context.Background(), nil, FindInput{Document: str("abc"), Pattern: "c"})
	require.NoError(t, err)
	assert.Nil(t, res)
	assert.Equal(t, FindOutput{Found: true, Start: 2, End: 3, Match: "c", Caret: 3}, out)

	_, _, err = srv.mcpFindHandler(context.Background(), nil, FindInput{Document: str("abc"), Pattern: "[", Regex: true})
	requireMCPError(t, err, ErrCodeInvalidParams)
}

func TestServe_UnknownTransport(t *testing.T) {
	srv, _ := newTestServer(t)

	err := srv.Serve(context.Background(), "sse")

	assert.ErrorContains(t, err, "unknown transport")
}
