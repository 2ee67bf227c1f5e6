package errors

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"sort"
	"strings"
)

// asScribe returns err as a ScribeError, wrapping foreign errors as internal.
func asScribe(err error) *ScribeError {
	if se, ok := err.(*ScribeError); ok {
		return se
	}
	return Wrap(ErrCodeInternal, err)
}

// FormatForUser returns a message suitable for a status line.
// Foreign errors are returned verbatim; ScribeErrors drop the code unless debug is set.
func FormatForUser(err error, debug bool) string {
	if err == nil {
		return ""
	}

	se, ok := err.(*ScribeError)
	if !ok {
		return err.Error()
	}

	msg := se.Message
	if se.Suggestion != "" {
		msg += " (" + se.Suggestion + ")"
	}
	if debug {
		msg += " [" + se.Code + "]"
	}
	return msg
}

// FormatForCLI formats an error for CLI output.
// Uses a concise format suitable for terminal display.
func FormatForCLI(err error) string {
	if err == nil {
		return ""
	}

	se := asScribe(err)

	var sb strings.Builder
	fmt.Fprintf(&sb, "Error: %s\n", se.Message)
	if se.Suggestion != "" {
		fmt.Fprintf(&sb, "  Hint: %s\n", se.Suggestion)
	}
	for _, k := range sortedKeys(se.Details) {
		fmt.Fprintf(&sb, "  %s: %s\n", k, se.Details[k])
	}
	fmt.Fprintf(&sb, "  Code: %s\n", se.Code)

	return sb.String()
}

// jsonError is the JSON representation of an error.
type jsonError struct {
	Code       string            `json:"code"`
	Message    string            `json:"message"`
	Category   string            `json:"category"`
	Severity   string            `json:"severity"`
	Details    map[string]string `json:"details,omitempty"`
	Suggestion string            `json:"suggestion,omitempty"`
	Cause      string            `json:"cause,omitempty"`
	Retryable  bool              `json:"retryable"`
}

// FormatJSON returns a JSON representation of the error.
// Used by `scribe find --format json`.
func FormatJSON(err error) ([]byte, error) {
	if err == nil {
		return json.Marshal(nil)
	}

	se := asScribe(err)
	je := jsonError{
		Code:       se.Code,
		Message:    se.Message,
		Category:   string(se.Category),
		Severity:   string(se.Severity),
		Details:    se.Details,
		Suggestion: se.Suggestion,
		Retryable:  se.Retryable,
	}
	if se.Cause != nil {
		je.Cause = se.Cause.Error()
	}

	return json.Marshal(je)
}

// LogAttrs returns slog attributes describing err.
//
//	slog.Warn("search failed", errors.LogAttrs(err)...)
func LogAttrs(err error) []any {
	if err == nil {
		return nil
	}

	se, ok := err.(*ScribeError)
	if !ok {
		return []any{slog.String("error", err.Error())}
	}

	attrs := []any{
		slog.String("error_code", se.Code),
		slog.String("error", se.Message),
		slog.String("category", string(se.Category)),
	}
	if se.Cause != nil && se.Cause.Error() != se.Message {
		attrs = append(attrs, slog.String("cause", se.Cause.Error()))
	}
	for _, k := range sortedKeys(se.Details) {
		attrs = append(attrs, slog.String("detail_"+k, se.Details[k]))
	}
	return attrs
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
