package cmd

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Aman-CERP/scribe/internal/search"
)

func logFixture(t *testing.T) string {
	t.Helper()
	dir := isolate(t)
	path := filepath.Join(dir, "scribe.log")
	writeFile(t, path, strings.Join([]string{
		`{"time":"2026-01-02T03:04:05Z","level":"DEBUG","msg":"Registered tool","name":"find"}`,
		`{"time":"2026-01-02T03:04:06Z","level":"INFO","msg":"find completed","found":true}`,
		`{"time":"2026-01-02T03:04:07Z","level":"WARN","msg":"File watcher error","error":"boom"}`,
	}, "\n")+"\n")
	return path
}

func TestLogsCmd_Tail(t *testing.T) {
	path := logFixture(t)

	out, err := execute(t, "", "logs", "--file", path, "-n", "2")

	require.NoError(t, err)
	assert.Contains(t, out, "Log file: "+path)
	assert.NotContains(t, out, "Registered tool")
	assert.Contains(t, out, "find completed")
	assert.Contains(t, out, "File watcher error")
}

func TestLogsCmd_LevelFilter(t *testing.T) {
	path := logFixture(t)

	out, err := execute(t, "", "logs", "--file", path, "--level", "warn")

	require.NoError(t, err)
	assert.NotContains(t, out, "find completed")
	assert.Contains(t, out, "File watcher error")
}

func TestLogsCmd_Grep(t *testing.T) {
	path := logFixture(t)

	t.Run("literal", func(t *testing.T) {
		out, err := execute(t, "", "logs", "--file", path, "--grep", "watcher")
		require.NoError(t, err)
		assert.Contains(t, out, "File watcher error")
		assert.NotContains(t, out, "find completed")
	})

	t.Run("regex", func(t *testing.T) {
		out, err := execute(t, "", "logs", "--file", path, "--regex", "--grep", `"found":(true|false)`)
		require.NoError(t, err)
		assert.Contains(t, out, "find completed")
		assert.NotContains(t, out, "Registered tool")
	})

	t.Run("invalid regex", func(t *testing.T) {
		_, err := execute(t, "", "logs", "--file", path, "--regex", "--grep", "(")
		assert.True(t, search.IsInvalidPattern(err), "got %v", err)
	})
}

func TestLogsCmd_MissingFile(t *testing.T) {
	dir := isolate(t)

	_, err := execute(t, "", "logs", "--file", filepath.Join(dir, "nope.log"))

	assert.ErrorContains(t, err, "log file not found")
}

func TestLineMatcher_EmptyPatternKeepsAll(t *testing.T) {
	match, err := lineMatcher("", false)

	require.NoError(t, err)
	assert.Nil(t, match)
}
