// Package buffer holds the text being edited together with its caret,
// selection and backing file.
//
// Offsets are rune offsets. All methods are safe for concurrent use.
package buffer

import (
	"strings"
	"sync"
	"time"
)

// Selection is a half-open rune range [Start, End).
type Selection struct {
	Start int
	End   int
}

// Empty reports whether the selection covers no text.
func (s Selection) Empty() bool {
	return s.Start == s.End
}

// Snapshot is an immutable copy of the buffer state taken under lock.
type Snapshot struct {
	Text      string
	Caret     int
	Selection Selection
	HasSel    bool
	// Revision changes whenever the text changes.
	Revision uint64
}

// Buffer is an editable document with a caret and an optional selection.
type Buffer struct {
	mu     sync.RWMutex
	text   []rune
	caret  int
	sel    Selection
	hasSel bool
	rev    uint64

	path        string
	dirty       bool
	lockTimeout time.Duration
}

// New creates an unnamed buffer holding text with the caret at 0.
func New(text string) *Buffer {
	return &Buffer{text: []rune(text), lockTimeout: DefaultLockTimeout}
}

// Contents returns the full text.
func (b *Buffer) Contents() string {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return string(b.text)
}

// Len returns the text length in runes.
func (b *Buffer) Len() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.text)
}

// CaretOffset returns the caret position.
func (b *Buffer) CaretOffset() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.caret
}

// SetCaret moves the caret, clamped to [0, Len], and clears the selection.
func (b *Buffer) SetCaret(n int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.caret = b.clamp(n)
	b.hasSel = false
}

// Selection returns the active selection and whether one exists.
func (b *Buffer) Selection() (Selection, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.sel, b.hasSel
}

// SelectedText returns the selected text, or "" without a selection.
func (b *Buffer) SelectedText() string {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if !b.hasSel {
		return ""
	}
	return string(b.text[b.sel.Start:b.sel.End])
}

// Select selects [start, end) and moves the caret to end.
// Bounds are clamped and swapped if reversed.
func (b *Buffer) Select(start, end int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	start, end = b.clamp(start), b.clamp(end)
	if start > end {
		start, end = end, start
	}
	b.sel = Selection{Start: start, End: end}
	b.hasSel = true
	b.caret = end
}

// ClearSelection drops the selection, leaving the caret in place.
func (b *Buffer) ClearSelection() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.hasSel = false
}

// Insert replaces the selection (if any) with s, or inserts s at the caret.
// The caret ends up after the inserted text.
func (b *Buffer) Insert(s string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.deleteSelection()

	ins := []rune(s)
	text := make([]rune, 0, len(b.text)+len(ins))
	text = append(text, b.text[:b.caret]...)
	text = append(text, ins...)
	text = append(text, b.text[b.caret:]...)
	b.text = text
	b.caret += len(ins)
	if len(ins) > 0 {
		b.touch()
	}
}

// DeleteBackward deletes the selection, or the rune before the caret.
func (b *Buffer) DeleteBackward() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.deleteSelection() || b.caret == 0 {
		return
	}
	b.text = append(b.text[:b.caret-1], b.text[b.caret:]...)
	b.caret--
	b.touch()
}

// DeleteForward deletes the selection, or the rune after the caret.
func (b *Buffer) DeleteForward() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.deleteSelection() || b.caret == len(b.text) {
		return
	}
	b.text = append(b.text[:b.caret], b.text[b.caret+1:]...)
	b.touch()
}

// deleteSelection removes selected text. Callers hold mu.
func (b *Buffer) deleteSelection() bool {
	if !b.hasSel {
		return false
	}
	b.hasSel = false
	if b.sel.Empty() {
		return false
	}
	b.text = append(b.text[:b.sel.Start], b.text[b.sel.End:]...)
	b.caret = b.sel.Start
	b.touch()
	return true
}

// MoveLeft moves the caret one rune left.
func (b *Buffer) MoveLeft() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.hasSel = false
	if b.caret > 0 {
		b.caret--
	}
}

// MoveRight moves the caret one rune right.
func (b *Buffer) MoveRight() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.hasSel = false
	if b.caret < len(b.text) {
		b.caret++
	}
}

// MoveUp moves the caret to the same column of the previous line,
// or to the end of that line if it is shorter.
func (b *Buffer) MoveUp() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.hasSel = false
	start := b.lineStart(b.caret)
	if start == 0 {
		b.caret = 0
		return
	}
	col := b.caret - start
	prevStart := b.lineStart(start - 1)
	b.caret = min(prevStart+col, start-1)
}

// MoveDown moves the caret to the same column of the next line.
func (b *Buffer) MoveDown() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.hasSel = false
	end := b.lineEnd(b.caret)
	if end == len(b.text) {
		b.caret = end
		return
	}
	col := b.caret - b.lineStart(b.caret)
	nextStart := end + 1
	b.caret = min(nextStart+col, b.lineEnd(nextStart))
}

// Home moves the caret to the start of its line.
func (b *Buffer) Home() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.hasSel = false
	b.caret = b.lineStart(b.caret)
}

// End moves the caret to the end of its line.
func (b *Buffer) End() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.hasSel = false
	b.caret = b.lineEnd(b.caret)
}

// LineCol returns the zero-based line and column of the caret.
func (b *Buffer) LineCol() (line, col int) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.lineCol(b.caret)
}

// OffsetLineCol converts a rune offset to a zero-based line and column.
func (b *Buffer) OffsetLineCol(offset int) (line, col int) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.lineCol(b.clamp(offset))
}

func (b *Buffer) lineCol(offset int) (line, col int) {
	start := 0
	for i := 0; i < offset; i++ {
		if b.text[i] == '\n' {
			line++
			start = i + 1
		}
	}
	return line, offset - start
}

// Lines returns the text split on newlines.
func (b *Buffer) Lines() []string {
	return strings.Split(b.Contents(), "\n")
}

// SetText replaces the whole text, puts the caret at 0 and clears the
// selection. The buffer is marked dirty.
func (b *Buffer) SetText(s string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.text = []rune(s)
	b.caret = 0
	b.hasSel = false
	b.touch()
}

// Snapshot copies the current state.
func (b *Buffer) Snapshot() Snapshot {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return Snapshot{
		Text:      string(b.text),
		Caret:     b.caret,
		Selection: b.sel,
		HasSel:    b.hasSel,
		Revision:  b.rev,
	}
}

// Revision returns a counter that changes whenever the text changes.
func (b *Buffer) Revision() uint64 {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.rev
}

// SelectAt selects [start, end) only if the text is still at revision rev.
// It reports whether the selection was applied.
func (b *Buffer) SelectAt(rev uint64, start, end int) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.rev != rev {
		return false
	}
	start, end = b.clamp(start), b.clamp(end)
	b.sel = Selection{Start: min(start, end), End: max(start, end)}
	b.hasSel = true
	b.caret = b.sel.End
	return true
}

// Path returns the backing file path, or "" for an unnamed buffer.
func (b *Buffer) Path() string {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.path
}

// Dirty reports whether the buffer has unsaved changes.
func (b *Buffer) Dirty() bool {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.dirty
}

// touch records a text change. Callers hold mu.
func (b *Buffer) touch() {
	b.dirty = true
	b.rev++
}

func (b *Buffer) clamp(n int) int {
	return max(0, min(n, len(b.text)))
}

func (b *Buffer) lineStart(offset int) int {
	for offset > 0 && b.text[offset-1] != '\n' {
		offset--
	}
	return offset
}

func (b *Buffer) lineEnd(offset int) int {
	for offset < len(b.text) && b.text[offset] != '\n' {
		offset++
	}
	return offset
}
