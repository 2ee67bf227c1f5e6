package buffer

import (
	"context"
	"fmt"
	"time"

	"github.com/gofrs/flock"

	serrors "github.com/Aman-CERP/scribe/internal/errors"
)

// LockSuffix is appended to a file path to name its save lock.
const LockSuffix = ".lock"

// SaveLock is an advisory cross-process lock guarding writes to one file.
// Two scribe instances saving the same file serialize on it.
type SaveLock struct {
	path   string
	flock  *flock.Flock
	locked bool
}

// NewSaveLock creates the lock for target. The lock file is <target>.lock.
func NewSaveLock(target string) *SaveLock {
	lockPath := target + LockSuffix
	return &SaveLock{
		path:  lockPath,
		flock: flock.New(lockPath),
	}
}

// TryLock attempts to acquire the lock without blocking.
// A lock held elsewhere is reported as a retryable ERR_208_FILE_LOCKED error.
func (l *SaveLock) TryLock() error {
	acquired, err := l.flock.TryLock()
	if err != nil {
		return serrors.New(serrors.ErrCodeFilePermission,
			fmt.Sprintf("cannot lock %s", l.path), err)
	}
	if !acquired {
		return serrors.New(serrors.ErrCodeFileLocked,
			fmt.Sprintf("%s is locked by another process", l.path), nil).
			WithSuggestion("wait for the other editor to finish saving")
	}
	l.locked = true
	return nil
}

// Acquire retries TryLock with backoff until it succeeds, ctx is done, or
// the timeout budget is spent.
func (l *SaveLock) Acquire(ctx context.Context, timeout time.Duration) error {
	return serrors.Retry(ctx, serrors.RetryConfigFor(timeout), l.TryLock)
}

// Unlock releases the lock. It is safe to call on an unlocked SaveLock.
func (l *SaveLock) Unlock() error {
	if !l.locked {
		return nil
	}
	l.locked = false
	if err := l.flock.Unlock(); err != nil {
		return fmt.Errorf("failed to release lock: %w", err)
	}
	return nil
}

// Path returns the path to the lock file.
func (l *SaveLock) Path() string {
	return l.path
}

// IsLocked returns true if the lock is currently held.
func (l *SaveLock) IsLocked() bool {
	return l.locked
}
