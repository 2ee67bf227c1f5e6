package errors

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatForUser_BasicError(t *testing.T) {
	// Given: a ScribeError
	err := New(ErrCodeInvalidPattern, "missing closing )", nil)

	// When: formatting without debug
	result := FormatForUser(err, false)

	// Then: the message is shown without the code
	assert.Equal(t, "missing closing )", result)
}

func TestFormatForUser_DebugAddsCodeAndSuggestion(t *testing.T) {
	err := New(ErrCodeFileLocked, "notes.txt is locked", nil).
		WithSuggestion("another scribe is saving this file")

	result := FormatForUser(err, true)

	assert.Contains(t, result, "notes.txt is locked")
	assert.Contains(t, result, "another scribe is saving this file")
	assert.Contains(t, result, "[ERR_208_FILE_LOCKED]")
}

func TestFormatForUser_StandardErrorAndNil(t *testing.T) {
	assert.Equal(t, "plain", FormatForUser(errors.New("plain"), false))
	assert.Equal(t, "", FormatForUser(nil, false))
}

func TestFormatForCLI_IncludesDetailsAndCode(t *testing.T) {
	// Given: an error with details and a hint
	err := New(ErrCodeInvalidPattern, "missing closing )", nil).
		WithDetail("pattern", "(").
		WithSuggestion("escape it as \\(")

	// When: formatting for CLI
	result := FormatForCLI(err)

	// Then: each part is on its own line
	assert.Contains(t, result, "Error: missing closing )\n")
	assert.Contains(t, result, "  Hint: escape it as \\(\n")
	assert.Contains(t, result, "  pattern: (\n")
	assert.Contains(t, result, "  Code: ERR_407_INVALID_PATTERN\n")
}

func TestFormatForCLI_WrapsStandardError(t *testing.T) {
	result := FormatForCLI(errors.New("disk on fire"))

	assert.Contains(t, result, "Error: disk on fire")
	assert.Contains(t, result, ErrCodeInternal)
	assert.Equal(t, "", FormatForCLI(nil))
}

func TestFormatJSON_RoundTripsFields(t *testing.T) {
	// Given: an error with a cause
	cause := errors.New("error parsing regexp: missing closing )")
	err := New(ErrCodeInvalidPattern, cause.Error(), cause).WithDetail("pattern", "(")

	// When: formatting as JSON
	data, jerr := FormatJSON(err)
	require.NoError(t, jerr)

	// Then: the document decodes with all fields
	var decoded map[string]any
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, ErrCodeInvalidPattern, decoded["code"])
	assert.Equal(t, "VALIDATION", decoded["category"])
	assert.Equal(t, "ERROR", decoded["severity"])
	assert.Equal(t, cause.Error(), decoded["cause"])
	assert.Equal(t, false, decoded["retryable"])
	assert.Equal(t, map[string]any{"pattern": "("}, decoded["details"])
}

func TestFormatJSON_Nil(t *testing.T) {
	data, err := FormatJSON(nil)
	require.NoError(t, err)
	assert.Equal(t, "null", string(data))
}

func TestLogAttrs(t *testing.T) {
	// Given: a coded error whose cause carries the same text
	cause := errors.New("bad")
	err := New(ErrCodeInvalidPattern, "bad", cause).WithDetail("pattern", "(")

	attrs := LogAttrs(err)

	// Then: code, message, category and details, but no duplicate cause
	assert.Len(t, attrs, 4)
	assert.Len(t, LogAttrs(errors.New("x")), 1)
	assert.Nil(t, LogAttrs(nil))
}
