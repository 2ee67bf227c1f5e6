package search

import (
	"fmt"
	"strings"

	serrors "github.com/Aman-CERP/scribe/internal/errors"
)

// Direction selects which match a search navigates to.
type Direction int

const (
	// Start finds the first match in the document, ignoring the caret.
	Start Direction = iota
	// Forward finds the first match at or after the caret, wrapping to Start.
	Forward
	// Backward finds the last match ending at or before the caret, wrapping to the
	// last match of the whole document.
	Backward
)

// String returns the string representation of the direction.
func (d Direction) String() string {
	switch d {
	case Start:
		return "start"
	case Forward:
		return "forward"
	case Backward:
		return "backward"
	default:
		return "unknown"
	}
}

// Valid reports whether d is one of the defined directions.
func (d Direction) Valid() bool {
	return d >= Start && d <= Backward
}

// ParseDirection parses a direction name as typed on the command line or
// sent by an MCP client.
func ParseDirection(s string) (Direction, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "start", "first":
		return Start, nil
	case "forward", "next", "fwd":
		return Forward, nil
	case "backward", "prev", "previous", "back":
		return Backward, nil
	default:
		return Start, serrors.New(serrors.ErrCodeInvalidDirection,
			fmt.Sprintf("unknown direction %q", s), nil).
			WithSuggestion("use start, next or prev")
	}
}

// Result is the outcome of a search.
// When Found is false, Start and End are zero and carry no meaning.
type Result struct {
	Found bool
	// Start and End are rune offsets of the match, end exclusive.
	Start int
	End   int
	// Wrapped is set when the match came from the wraparound pass.
	Wrapped bool
}

// NotFound is the zero Result.
var NotFound = Result{}

// Len returns the match length in runes.
func (r Result) Len() int {
	return r.End - r.Start
}

// String formats the result as "[start,end)" or "not found".
func (r Result) String() string {
	if !r.Found {
		return "not found"
	}
	return fmt.Sprintf("[%d,%d)", r.Start, r.End)
}

// IsInvalidPattern reports whether err (or anything it wraps) is an invalid
// pattern failure.
func IsInvalidPattern(err error) bool {
	return serrors.HasCode(err, serrors.ErrCodeInvalidPattern)
}
