package errors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScribeError_Unwrap_PreservesOriginalError(t *testing.T) {
	// Given: an original error
	originalErr := errors.New("missing ) at end of pattern")

	// When: wrapping with ScribeError
	se := New(ErrCodeInvalidPattern, "missing ) at end of pattern", originalErr)

	// Then: unwrapping returns original error
	require.NotNil(t, se)
	assert.Equal(t, originalErr, errors.Unwrap(se))
	assert.True(t, errors.Is(se, originalErr))
}

func TestScribeError_Error_ReturnsFormattedMessage(t *testing.T) {
	tests := []struct {
		name     string
		code     string
		message  string
		expected string
	}{
		{
			name:     "config error",
			code:     ErrCodeConfigInvalid,
			message:  "unknown regex engine",
			expected: "[ERR_102_CONFIG_INVALID] unknown regex engine",
		},
		{
			name:     "file error",
			code:     ErrCodeFileNotFound,
			message:  "notes.txt not found",
			expected: "[ERR_201_FILE_NOT_FOUND] notes.txt not found",
		},
		{
			name:     "pattern error",
			code:     ErrCodeInvalidPattern,
			message:  "missing closing )",
			expected: "[ERR_407_INVALID_PATTERN] missing closing )",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := New(tt.code, tt.message, nil)
			assert.Equal(t, tt.expected, err.Error())
		})
	}
}

func TestScribeError_Is_MatchesByCode(t *testing.T) {
	err1 := New(ErrCodeInvalidPattern, "pattern A", nil)
	err2 := New(ErrCodeInvalidPattern, "pattern B", nil)

	assert.True(t, errors.Is(err1, err2))
	assert.False(t, errors.Is(err1, New(ErrCodeFileLocked, "locked", nil)))
}

func TestScribeError_WithDetail_AddsContext(t *testing.T) {
	err := New(ErrCodeInvalidPattern, "bad pattern", nil).
		WithDetail("pattern", "(").
		WithSuggestion("escape the parenthesis")

	assert.Equal(t, "(", err.Details["pattern"])
	assert.Equal(t, "escape the parenthesis", err.Suggestion)
}

func TestScribeError_CategoryFromCode(t *testing.T) {
	tests := []struct {
		code         string
		wantCategory Category
	}{
		{ErrCodeConfigNotFound, CategoryConfig},
		{ErrCodeConfigInvalid, CategoryConfig},
		{ErrCodeFileNotFound, CategoryIO},
		{ErrCodeFileLocked, CategoryIO},
		{ErrCodeInvalidPattern, CategoryValidation},
		{ErrCodeInvalidDirection, CategoryValidation},
		{ErrCodeInternal, CategoryInternal},
		{ErrCodeWatchFailed, CategoryInternal},
		{"BAD", CategoryInternal},
	}

	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			err := New(tt.code, "test message", nil)
			assert.Equal(t, tt.wantCategory, err.Category)
		})
	}
}

func TestScribeError_SeverityAndRetryable(t *testing.T) {
	tests := []struct {
		code          string
		wantSeverity  Severity
		wantRetryable bool
	}{
		{ErrCodeDiskFull, SeverityFatal, false},
		{ErrCodeFileLocked, SeverityWarning, true},
		{ErrCodeInvalidPattern, SeverityError, false},
		{ErrCodeFileNotFound, SeverityError, false},
	}

	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			err := New(tt.code, "test message", nil)
			assert.Equal(t, tt.wantSeverity, err.Severity)
			assert.Equal(t, tt.wantRetryable, err.Retryable)
			assert.Equal(t, tt.wantRetryable, IsRetryable(err))
			assert.Equal(t, tt.wantSeverity == SeverityFatal, IsFatal(err))
		})
	}
}

func TestWrap_NilReturnsNil(t *testing.T) {
	assert.Nil(t, Wrap(ErrCodeInternal, nil))
}

func TestWrap_CreatesScribeErrorFromError(t *testing.T) {
	originalErr := errors.New("something went wrong")

	se := Wrap(ErrCodeInternal, originalErr)

	require.NotNil(t, se)
	assert.Equal(t, ErrCodeInternal, se.Code)
	assert.Equal(t, "something went wrong", se.Message)
	assert.Equal(t, originalErr, se.Cause)
}

func TestHasCode_FindsWrappedScribeError(t *testing.T) {
	// Given: a ScribeError wrapped by fmt.Errorf
	inner := New(ErrCodeInvalidPattern, "bad", nil)
	outer := fmt.Errorf("search: %w", inner)

	// Then: HasCode sees through the wrapping, GetCode does not
	assert.True(t, HasCode(outer, ErrCodeInvalidPattern))
	assert.False(t, HasCode(outer, ErrCodeFileLocked))
	assert.Equal(t, "", GetCode(outer))
	assert.Equal(t, ErrCodeInvalidPattern, GetCode(inner))
	assert.Equal(t, CategoryValidation, GetCategory(inner))
	assert.False(t, HasCode(nil, ErrCodeInvalidPattern))
}

func TestConstructors_SetCategory(t *testing.T) {
	assert.Equal(t, CategoryConfig, ConfigError("bad yaml", nil).Category)
	assert.Equal(t, CategoryIO, IOError("cannot read", nil).Category)
	assert.Equal(t, CategoryValidation, ValidationError("bad caret", nil).Category)
	assert.Equal(t, CategoryInternal, InternalError("boom", nil).Category)
}
