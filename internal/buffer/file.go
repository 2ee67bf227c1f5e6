package buffer

import (
	"context"
	stderrors "errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"time"
	"unicode/utf8"

	serrors "github.com/Aman-CERP/scribe/internal/errors"
)

// DefaultLockTimeout bounds how long Save waits for the save lock.
const DefaultLockTimeout = 2 * time.Second

// MaxFileSize is the largest file Open will load.
const MaxFileSize = 64 << 20

// Open loads path into a new buffer. A missing file yields an empty buffer
// bound to path, so the first Save creates it.
func Open(path string) (*Buffer, error) {
	b := New("")
	b.path = path

	text, err := readFile(path)
	if err != nil {
		if stderrors.Is(err, fs.ErrNotExist) {
			return b, nil
		}
		return nil, err
	}
	b.text = []rune(text)
	return b, nil
}

// SetLockTimeout sets how long Save waits for another process's save lock.
func (b *Buffer) SetLockTimeout(d time.Duration) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.lockTimeout = d
}

// Save writes the buffer to its backing file.
func (b *Buffer) Save(ctx context.Context) error {
	path := b.Path()
	if path == "" {
		return serrors.New(serrors.ErrCodeInvalidPath, "buffer has no file name", nil).
			WithSuggestion("use save as")
	}
	return b.SaveAs(ctx, path)
}

// SaveAs writes the buffer to path under the save lock and rebinds the
// buffer to path. The write goes to a temporary file that is renamed into
// place, so readers never observe a partial file.
func (b *Buffer) SaveAs(ctx context.Context, path string) error {
	snap := b.Snapshot()

	b.mu.RLock()
	timeout := b.lockTimeout
	b.mu.RUnlock()

	lock := NewSaveLock(path)
	if err := lock.Acquire(ctx, timeout); err != nil {
		return err
	}
	defer func() {
		if err := lock.Unlock(); err != nil {
			slog.Warn("save lock release failed", slog.String("path", lock.Path()), slog.String("error", err.Error()))
		}
	}()

	if err := writeAtomic(path, []byte(snap.Text)); err != nil {
		return err
	}

	b.mu.Lock()
	b.path = path
	// Edits made while writing keep the buffer dirty.
	b.dirty = string(b.text) != snap.Text
	b.mu.Unlock()

	slog.Debug("file saved", slog.String("path", path), slog.Int("runes", utf8.RuneCountInString(snap.Text)))
	return nil
}

// Reload replaces the text with the current file contents, keeping the
// caret in range and clearing the selection and the dirty flag.
func (b *Buffer) Reload() error {
	path := b.Path()
	if path == "" {
		return nil
	}
	text, err := readFile(path)
	if err != nil {
		return err
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	b.text = []rune(text)
	b.caret = b.clamp(b.caret)
	b.hasSel = false
	b.dirty = false
	b.rev++
	return nil
}

// ReloadIfChanged reloads a clean buffer whose file differs from the text.
// A dirty buffer is never replaced; it reports ErrCodeFileChanged so the
// caller can warn. The bool reports whether the text was replaced.
func (b *Buffer) ReloadIfChanged() (bool, error) {
	path := b.Path()
	if path == "" {
		return false, nil
	}
	text, err := readFile(path)
	if err != nil {
		if stderrors.Is(err, fs.ErrNotExist) {
			return false, nil
		}
		return false, err
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	if string(b.text) == text {
		return false, nil
	}
	if b.dirty {
		return false, serrors.New(serrors.ErrCodeFileChanged,
			fmt.Sprintf("%s changed on disk", path), nil).
			WithSuggestion("save to overwrite or reopen to discard your edits")
	}
	b.text = []rune(text)
	b.caret = b.clamp(b.caret)
	b.hasSel = false
	b.rev++
	return true, nil
}

func readFile(path string) (string, error) {
	info, err := os.Stat(path)
	if err != nil {
		if stderrors.Is(err, fs.ErrNotExist) {
			return "", err
		}
		return "", ioError(path, err)
	}
	if info.IsDir() {
		return "", serrors.New(serrors.ErrCodeInvalidPath, fmt.Sprintf("%s is a directory", path), nil)
	}
	if info.Size() > MaxFileSize {
		return "", serrors.New(serrors.ErrCodeFileTooLarge,
			fmt.Sprintf("%s is too large (%d bytes)", path, info.Size()), nil).
			WithDetail("limit", fmt.Sprintf("%d", MaxFileSize))
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return "", ioError(path, err)
	}
	if !utf8.Valid(data) {
		return "", serrors.New(serrors.ErrCodeFileCorrupt, fmt.Sprintf("%s is not valid UTF-8", path), nil)
	}
	return string(data), nil
}

func writeAtomic(path string, data []byte) error {
	mode := fs.FileMode(0o644)
	if info, err := os.Stat(path); err == nil {
		mode = info.Mode().Perm()
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return ioError(path, err)
	}
	tmpName := tmp.Name()
	cleanup := func() { _ = os.Remove(tmpName) }

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		cleanup()
		return ioError(path, err)
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		cleanup()
		return ioError(path, err)
	}
	if err := tmp.Close(); err != nil {
		cleanup()
		return ioError(path, err)
	}
	if err := os.Chmod(tmpName, mode); err != nil {
		cleanup()
		return ioError(path, err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		cleanup()
		return ioError(path, err)
	}
	return nil
}

// ioError classifies a filesystem error.
func ioError(path string, err error) error {
	var code string
	switch {
	case stderrors.Is(err, fs.ErrPermission):
		code = serrors.ErrCodeFilePermission
	case stderrors.Is(err, fs.ErrNotExist):
		code = serrors.ErrCodeFileNotFound
	default:
		code = serrors.ErrCodeInternal
	}
	return serrors.New(code, err.Error(), err).WithDetail("path", path)
}
