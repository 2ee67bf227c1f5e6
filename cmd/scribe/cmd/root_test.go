package cmd

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Aman-CERP/scribe/internal/ui"
	"github.com/Aman-CERP/scribe/pkg/version"
)

func TestRootCmd_ShowsHelp(t *testing.T) {
	// Given: a root command

	// When: executing with --help
	out, err := execute(t, "", "--help")

	// Then: it should show usage and every subcommand
	require.NoError(t, err)
	assert.Contains(t, out, "scribe [file]")
	for _, sub := range []string{"edit", "find", "serve", "config", "logs", "version"} {
		assert.Contains(t, out, sub)
	}
}

func TestRootCmd_VersionFlag(t *testing.T) {
	out, err := execute(t, "", "--version")

	require.NoError(t, err)
	assert.Equal(t, "scribe version "+version.Version+"\n", out)
}

func TestRootCmd_EditorNeedsTerminal(t *testing.T) {
	// Given: output captured in a buffer rather than a terminal
	dir := isolate(t)

	for _, args := range [][]string{
		{filepath.Join(dir, "notes.txt")},
		{"edit", filepath.Join(dir, "notes.txt")},
		{"edit"},
	} {
		// When: opening the editor
		_, err := execute(t, "", args...)

		// Then: it fails before touching the file
		assert.ErrorIs(t, err, ui.ErrNotTTY, "args %v", args)
		assert.NoFileExists(t, filepath.Join(dir, "notes.txt"))
	}
}

func TestRootCmd_RejectsExtraArgs(t *testing.T) {
	_, err := execute(t, "", "a.txt", "b.txt")

	assert.Error(t, err)
}

func TestRootCmd_ProfilingFlags(t *testing.T) {
	// Given: a heap profile requested for a quick command
	dir := isolate(t)
	heap := filepath.Join(dir, "heap.prof")

	// When: running version with --profile-mem
	_, err := execute(t, "", "--profile-mem", heap, "version", "--short")

	// Then: the profile is written when the command finishes
	require.NoError(t, err)
	assert.FileExists(t, heap)
}

func TestServeCmd_ValidatesBeforeServing(t *testing.T) {
	isolate(t)

	_, err := execute(t, "", "serve", "--transport", "sse")
	assert.ErrorContains(t, err, "unknown transport")

	_, err = execute(t, "", "serve", "--root", filepath.Join(t.TempDir(), "missing"))
	assert.ErrorContains(t, err, "is not a directory")
}
