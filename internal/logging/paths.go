package logging

import (
	"fmt"
	"os"
	"path/filepath"
)

// DefaultLogDir returns ~/.scribe/logs, or a temp dir fallback.
func DefaultLogDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(os.TempDir(), ".scribe", "logs")
	}
	return filepath.Join(home, ".scribe", "logs")
}

// DefaultLogPath returns the log file written by --debug.
func DefaultLogPath() string {
	return filepath.Join(DefaultLogDir(), "scribe.log")
}

// FindLogFile resolves the log file to view: the explicit path when given,
// otherwise DefaultLogPath.
func FindLogFile(explicit string) (string, error) {
	if explicit != "" {
		if _, err := os.Stat(explicit); err != nil {
			return "", fmt.Errorf("log file not found: %s", explicit)
		}
		return explicit, nil
	}

	path := DefaultLogPath()
	if _, err := os.Stat(path); err != nil {
		return "", fmt.Errorf("no log file found, run scribe with --debug first\nExpected at: %s", path)
	}
	return path, nil
}
