package search

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/coregx/coregex"

	serrors "github.com/Aman-CERP/scribe/internal/errors"
)

// Matcher locates matches inside a window of text.
// Locations are byte offsets relative to the window, as {start, end}.
// A nil location means no match.
type Matcher interface {
	// First returns the first match in s.
	First(s string) []int
	// Last returns the last match in s.
	Last(s string) []int
}

// Backend names a regular expression implementation.
type Backend string

const (
	// BackendStdlib uses the standard library's RE2 engine.
	BackendStdlib Backend = "stdlib"
	// BackendCoregex uses github.com/coregx/coregex.
	BackendCoregex Backend = "coregex"
)

// ParseBackend validates a backend name. The empty string selects stdlib.
func ParseBackend(s string) (Backend, error) {
	switch Backend(strings.ToLower(s)) {
	case "", BackendStdlib:
		return BackendStdlib, nil
	case BackendCoregex:
		return BackendCoregex, nil
	default:
		return "", fmt.Errorf("unknown regex engine %q (want stdlib or coregex)", s)
	}
}

// literalMatcher matches an exact substring.
// Backward search returns the last occurrence, which may overlap an
// earlier one.
type literalMatcher struct {
	needle string
}

func (m literalMatcher) First(s string) []int {
	if m.needle == "" {
		return nil
	}
	i := strings.Index(s, m.needle)
	if i < 0 {
		return nil
	}
	return []int{i, i + len(m.needle)}
}

func (m literalMatcher) Last(s string) []int {
	if m.needle == "" {
		return nil
	}
	i := strings.LastIndex(s, m.needle)
	if i < 0 {
		return nil
	}
	return []int{i, i + len(m.needle)}
}

// indexer is the subset of *regexp.Regexp and *coregex.Regex used here.
type indexer interface {
	FindStringIndex(s string) []int
	FindAllStringIndex(s string, n int) [][]int
}

// regexMatcher wraps a compiled expression from either backend.
type regexMatcher struct {
	re indexer
}

func (m regexMatcher) First(s string) []int {
	return m.re.FindStringIndex(s)
}

// Last enumerates all non-overlapping matches left to right and keeps the
// final one.
func (m regexMatcher) Last(s string) []int {
	all := m.re.FindAllStringIndex(s, -1)
	if len(all) == 0 {
		return nil
	}
	return all[len(all)-1]
}

// compileRegex compiles pattern with the given backend.
func compileRegex(backend Backend, pattern string) (Matcher, error) {
	if pattern == "" {
		return nil, invalidPattern(pattern, "empty pattern", nil)
	}

	var (
		re  indexer
		err error
	)
	switch backend {
	case BackendCoregex:
		re, err = coregex.Compile(pattern)
	default:
		re, err = regexp.Compile(pattern)
	}
	if err != nil {
		return nil, invalidPattern(pattern, err.Error(), err)
	}
	return regexMatcher{re: re}, nil
}

func invalidPattern(pattern, msg string, cause error) *serrors.ScribeError {
	return serrors.New(serrors.ErrCodeInvalidPattern, msg, cause).
		WithDetail("pattern", pattern)
}
