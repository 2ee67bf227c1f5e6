package ui

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/Aman-CERP/scribe/internal/buffer"
	"github.com/Aman-CERP/scribe/internal/controller"
	serrors "github.com/Aman-CERP/scribe/internal/errors"
	"github.com/Aman-CERP/scribe/internal/search"
	"github.com/Aman-CERP/scribe/internal/watcher"
)

type focus int

const (
	focusText focus = iota
	focusSearch
)

type statusKind int

const (
	statusInfo statusKind = iota
	statusWarn
	statusError
)

// chrome is the number of lines around the text area: header, search
// bar, status line and help line.
const chrome = 4

// Messages.
type (
	resultMsg    controller.Response
	fileEventMsg watcher.FileEvent
	savedMsg     struct{ err error }
)

// Editor is the bubbletea model of the editor window.
type Editor struct {
	ctrl   *controller.Controller
	disp   *controller.Dispatcher
	buf    *buffer.Buffer
	events <-chan watcher.FileEvent

	input   textinput.Model
	spinner spinner.Model
	help    help.Model
	keys    keyMap
	styles  Styles

	focus    focus
	width    int
	height   int
	top      int
	left     int
	tabWidth int

	// pending is the sequence number of the search awaiting a result.
	pending  uint64
	status   string
	kind     statusKind
	quitting bool
}

// EditorOption configures an Editor.
type EditorOption func(*Editor)

// WithFileEvents makes the editor react to changes of the file on disk.
func WithFileEvents(events <-chan watcher.FileEvent) EditorOption {
	return func(e *Editor) {
		e.events = events
	}
}

// WithTabWidth sets the number of columns a tab occupies.
func WithTabWidth(n int) EditorOption {
	return func(e *Editor) {
		if n > 0 {
			e.tabWidth = n
		}
	}
}

// WithStyles overrides the default styles.
func WithStyles(s Styles) EditorOption {
	return func(e *Editor) {
		e.styles = s
	}
}

// NewEditor creates the editor model. Searches are submitted to disp,
// which must belong to ctrl.
func NewEditor(ctrl *controller.Controller, disp *controller.Dispatcher, opts ...EditorOption) *Editor {
	input := textinput.New()
	input.Prompt = "Find: "
	input.Placeholder = "pattern"
	input.SetValue(ctrl.Pattern())

	sp := spinner.New()
	sp.Spinner = spinner.Dot

	e := &Editor{
		ctrl:     ctrl,
		disp:     disp,
		buf:      ctrl.Buffer(),
		input:    input,
		spinner:  sp,
		help:     help.New(),
		keys:     defaultKeyMap(),
		styles:   GetStyles(DetectNoColor()),
		width:    80,
		height:   24,
		tabWidth: 4,
	}
	for _, opt := range opts {
		opt(e)
	}
	e.spinner.Style = e.styles.Info
	return e
}

// Init implements tea.Model.
func (m *Editor) Init() tea.Cmd {
	cmds := []tea.Cmd{waitForResult(m.disp.Results())}
	if m.events != nil {
		cmds = append(cmds, waitForFileEvent(m.events))
	}
	return tea.Batch(cmds...)
}

func waitForResult(ch <-chan controller.Response) tea.Cmd {
	return func() tea.Msg {
		resp, ok := <-ch
		if !ok {
			return nil
		}
		return resultMsg(resp)
	}
}

func waitForFileEvent(ch <-chan watcher.FileEvent) tea.Cmd {
	return func() tea.Msg {
		ev, ok := <-ch
		if !ok {
			return nil
		}
		return fileEventMsg(ev)
	}
}

// Update implements tea.Model.
func (m *Editor) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.input.Width = max(msg.Width-len(m.input.Prompt)-1, 1)
		m.help.Width = msg.Width
		m.scrollToCaret()
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case resultMsg:
		m.handleResult(controller.Response(msg))
		return m, waitForResult(m.disp.Results())

	case fileEventMsg:
		m.handleFileEvent(watcher.FileEvent(msg))
		return m, waitForFileEvent(m.events)

	case savedMsg:
		if msg.err != nil {
			m.setStatus(statusError, serrors.FormatForUser(msg.err, false))
		} else {
			m.setStatus(statusInfo, "Saved "+m.fileName())
		}
		return m, nil

	case spinner.TickMsg:
		if m.pending == 0 {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	if m.focus == focusSearch {
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m *Editor) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		m.quitting = true
		return m, tea.Quit
	case key.Matches(msg, m.keys.Find):
		m.focus = focusSearch
		return m, m.input.Focus()
	case key.Matches(msg, m.keys.Next):
		return m, m.submit(search.Forward)
	case key.Matches(msg, m.keys.Prev):
		return m, m.submit(search.Backward)
	case key.Matches(msg, m.keys.Regex):
		if m.ctrl.ToggleRegex() {
			m.setStatus(statusInfo, "Regex on")
		} else {
			m.setStatus(statusInfo, "Regex off")
		}
		return m, nil
	case key.Matches(msg, m.keys.Save):
		return m, m.save()
	}

	if m.focus == focusSearch {
		switch {
		case key.Matches(msg, m.keys.Start):
			return m, m.submit(search.Start)
		case key.Matches(msg, m.keys.Escape):
			m.focus = focusText
			m.input.Blur()
			return m, nil
		}
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		return m, cmd
	}

	m.edit(msg)
	m.scrollToCaret()
	return m, nil
}

// edit applies a key to the buffer.
func (m *Editor) edit(msg tea.KeyMsg) {
	switch msg.Type {
	case tea.KeyRunes:
		m.buf.Insert(string(msg.Runes))
	case tea.KeySpace:
		m.buf.Insert(" ")
	case tea.KeyEnter:
		m.buf.Insert("\n")
	case tea.KeyTab:
		m.buf.Insert("\t")
	case tea.KeyBackspace:
		m.buf.DeleteBackward()
	case tea.KeyDelete:
		m.buf.DeleteForward()
	case tea.KeyLeft:
		m.buf.MoveLeft()
	case tea.KeyRight:
		m.buf.MoveRight()
	case tea.KeyUp:
		m.buf.MoveUp()
	case tea.KeyDown:
		m.buf.MoveDown()
	case tea.KeyHome:
		m.buf.Home()
	case tea.KeyEnd:
		m.buf.End()
	}
}

func (m *Editor) submit(dir search.Direction) tea.Cmd {
	m.ctrl.SetPattern(m.input.Value())
	req, err := m.disp.Submit(dir)
	if err != nil {
		m.setStatus(statusError, err.Error())
		return nil
	}
	m.pending = req.Seq
	m.status = ""
	return m.spinner.Tick
}

func (m *Editor) handleResult(resp controller.Response) {
	if resp.Seq != m.pending {
		return
	}
	m.pending = 0

	switch {
	case resp.Err != nil:
		if errors.Is(resp.Err, context.Canceled) {
			return
		}
		m.setStatus(statusError, serrors.FormatForUser(resp.Err, false))
	case !resp.Outcome.Result.Found:
		m.setStatus(statusWarn, fmt.Sprintf("No match for %q", m.ctrl.Pattern()))
	case !resp.Outcome.Applied:
		m.setStatus(statusWarn, "Text changed during search, search again")
	default:
		line, col := m.buf.OffsetLineCol(resp.Outcome.Result.Start)
		text := fmt.Sprintf("Match at %d:%d", line+1, col+1)
		if resp.Outcome.Result.Wrapped {
			text += " (wrapped)"
		}
		m.setStatus(statusInfo, text)
		m.scrollToCaret()
	}
}

func (m *Editor) handleFileEvent(ev watcher.FileEvent) {
	switch ev.Operation {
	case watcher.OpDelete, watcher.OpRename:
		m.setStatus(statusWarn, m.fileName()+" was removed on disk")
		return
	}

	reloaded, err := m.buf.ReloadIfChanged()
	switch {
	case serrors.HasCode(err, serrors.ErrCodeFileChanged):
		m.setStatus(statusWarn, m.fileName()+" changed on disk, unsaved edits kept")
	case err != nil:
		slog.Warn("reload failed", serrors.LogAttrs(err)...)
		m.setStatus(statusError, serrors.FormatForUser(err, false))
	case reloaded:
		m.setStatus(statusInfo, "Reloaded "+m.fileName())
		m.scrollToCaret()
	}
}

func (m *Editor) save() tea.Cmd {
	buf := m.buf
	return func() tea.Msg {
		return savedMsg{err: buf.Save(context.Background())}
	}
}

func (m *Editor) setStatus(kind statusKind, text string) {
	m.kind = kind
	m.status = text
}

func (m *Editor) fileName() string {
	if p := m.buf.Path(); p != "" {
		return filepath.Base(p)
	}
	return "[untitled]"
}

func (m *Editor) textHeight() int {
	return max(m.height-chrome, 1)
}

// scrollToCaret adjusts the viewport so the caret is visible.
func (m *Editor) scrollToCaret() {
	snap := m.buf.Snapshot()
	lines := strings.Split(snap.Text, "\n")
	line, col := lineCol(snap.Text, snap.Caret)
	vcol := visualCol([]rune(lines[line]), col, m.tabWidth)

	h := m.textHeight()
	if line < m.top {
		m.top = line
	} else if line >= m.top+h {
		m.top = line - h + 1
	}

	w := max(m.width, 1)
	if vcol < m.left {
		m.left = vcol
	} else if vcol >= m.left+w {
		m.left = vcol - w + 1
	}
}

// View implements tea.Model.
func (m *Editor) View() string {
	if m.quitting {
		return ""
	}
	snap := m.buf.Snapshot()
	return lipgloss.JoinVertical(lipgloss.Left,
		m.renderHeader(snap),
		m.input.View(),
		m.renderText(snap),
		m.renderStatus(),
		m.help.ShortHelpView(m.keys.ShortHelp()),
	)
}

func (m *Editor) renderHeader(snap buffer.Snapshot) string {
	parts := []string{m.styles.Header.Render(m.fileName())}
	if m.buf.Dirty() {
		parts = append(parts, m.styles.Dirty.Render("[+]"))
	}
	box := "[ ]"
	if m.ctrl.UseRegex() {
		box = "[x]"
	}
	parts = append(parts, m.styles.Checkbox.Render(box+" Regex"))

	line, col := lineCol(snap.Text, snap.Caret)
	parts = append(parts, m.styles.Position.Render(fmt.Sprintf("%d:%d", line+1, col+1)))
	return strings.Join(parts, "  ")
}

func (m *Editor) renderStatus() string {
	if m.pending != 0 {
		return m.spinner.View() + " Searching..."
	}
	switch m.kind {
	case statusWarn:
		return m.styles.Warning.Render(m.status)
	case statusError:
		return m.styles.Error.Render(m.status)
	default:
		return m.styles.Info.Render(m.status)
	}
}

func (m *Editor) renderText(snap buffer.Snapshot) string {
	lines := strings.Split(snap.Text, "\n")
	h := m.textHeight()

	offset := 0
	for i := 0; i < m.top && i < len(lines); i++ {
		offset += len([]rune(lines[i])) + 1
	}

	out := make([]string, 0, h)
	for i := m.top; i < m.top+h; i++ {
		if i >= len(lines) {
			out = append(out, m.styles.Dim.Render("~"))
			continue
		}
		runes := []rune(lines[i])
		out = append(out, m.renderLine(runes, offset, snap))
		offset += len(runes) + 1
	}
	return strings.Join(out, "\n")
}

type cellClass int

const (
	cellPlain cellClass = iota
	cellSelected
	cellCaret
)

// renderLine draws one line starting at rune offset base, clipped to the
// horizontal viewport.
func (m *Editor) renderLine(runes []rune, base int, snap buffer.Snapshot) string {
	classOf := func(off int) cellClass {
		switch {
		case off == snap.Caret && m.focus == focusText:
			return cellCaret
		case snap.HasSel && off >= snap.Selection.Start && off < snap.Selection.End:
			return cellSelected
		}
		return cellPlain
	}

	var (
		b     strings.Builder
		run   strings.Builder
		cur   cellClass
		vcol  int
		width = max(m.width, 1)
	)
	flush := func() {
		if run.Len() == 0 {
			return
		}
		switch cur {
		case cellCaret:
			b.WriteString(m.styles.Caret.Render(run.String()))
		case cellSelected:
			b.WriteString(m.styles.Selection.Render(run.String()))
		default:
			b.WriteString(run.String())
		}
		run.Reset()
	}
	put := func(s string, class cellClass) {
		if vcol < m.left || vcol >= m.left+width {
			vcol++
			return
		}
		if class != cur {
			flush()
			cur = class
		}
		run.WriteString(s)
		vcol++
	}

	for i, r := range runes {
		class := classOf(base + i)
		if r == '\t' {
			n := m.tabWidth - vcol%m.tabWidth
			for j := 0; j < n; j++ {
				// Only the first cell of a tab carries the caret.
				c := class
				if j > 0 && c == cellCaret {
					c = cellPlain
				}
				put(" ", c)
			}
			continue
		}
		put(string(r), class)
	}
	if classOf(base+len(runes)) == cellCaret {
		put(" ", cellCaret)
	}
	flush()
	return b.String()
}

// lineCol returns the zero-based line and column of a rune offset in text.
func lineCol(text string, offset int) (line, col int) {
	start := 0
	i := 0
	for _, r := range text {
		if i >= offset {
			break
		}
		if r == '\n' {
			line++
			start = i + 1
		}
		i++
	}
	return line, offset - start
}

// visualCol is the screen column of rune col in line with tabs expanded.
func visualCol(line []rune, col, tabWidth int) int {
	v := 0
	for i := 0; i < col && i < len(line); i++ {
		if line[i] == '\t' {
			v += tabWidth - v%tabWidth
		} else {
			v++
		}
	}
	return v
}
