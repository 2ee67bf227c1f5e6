package search

import (
	"unicode/utf8"

	lru "github.com/hashicorp/golang-lru/v2"

	serrors "github.com/Aman-CERP/scribe/internal/errors"
)

// DefaultCacheSize is the number of compiled expressions kept by NewEngine.
const DefaultCacheSize = 128

// Engine runs searches with a configured regex backend and an optional
// cache of compiled expressions. An Engine is safe for concurrent use.
type Engine struct {
	backend Backend
	cache   *lru.Cache[string, Matcher]
}

// EngineOption configures an Engine.
type EngineOption func(*Engine)

// WithBackend selects the regex implementation.
func WithBackend(b Backend) EngineOption {
	return func(e *Engine) {
		e.backend = b
	}
}

// WithCacheSize sets the compiled-expression cache size. Zero or a negative
// size disables caching.
func WithCacheSize(size int) EngineOption {
	return func(e *Engine) {
		if size <= 0 {
			e.cache = nil
			return
		}
		e.cache, _ = lru.New[string, Matcher](size)
	}
}

// NewEngine creates an engine using the stdlib backend and a cache of
// DefaultCacheSize unless overridden.
func NewEngine(opts ...EngineOption) *Engine {
	e := &Engine{backend: BackendStdlib}
	e.cache, _ = lru.New[string, Matcher](DefaultCacheSize)
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Backend returns the regex backend in use.
func (e *Engine) Backend() Backend {
	return e.backend
}

var defaultEngine = NewEngine(WithCacheSize(0))

// Search runs a search with the stdlib backend and no cache.
func Search(document string, caret int, pattern string, useRegex bool, dir Direction) (Result, error) {
	return defaultEngine.Search(document, caret, pattern, useRegex, dir)
}

// Search locates the match selected by dir relative to caret.
//
// caret is a rune offset and is clamped to [0, runes(document)]. An empty
// literal pattern never matches. An empty or malformed regex fails with an
// ERR_407_INVALID_PATTERN error and no result.
func (e *Engine) Search(document string, caret int, pattern string, useRegex bool, dir Direction) (Result, error) {
	if !dir.Valid() {
		return NotFound, serrors.New(serrors.ErrCodeInvalidDirection, "unknown direction "+dir.String(), nil)
	}

	m, err := e.matcher(pattern, useRegex)
	if err != nil {
		return NotFound, err
	}

	caret = clamp(caret, 0, utf8.RuneCountInString(document))

	if r, ok := scan(document, m, primaryWindow(document, caret, dir), dir != Backward); ok {
		return r, nil
	}

	switch dir {
	case Forward:
		if r, ok := scan(document, m, window{0, len(document)}, true); ok {
			r.Wrapped = true
			return r, nil
		}
	case Backward:
		if r, ok := scan(document, m, window{0, len(document)}, false); ok {
			r.Wrapped = true
			return r, nil
		}
	}
	return NotFound, nil
}

// window is a byte range [from, to) of the document.
type window struct {
	from, to int
}

// primaryWindow returns the first-pass window for dir. The backward window
// holds the runes before the caret, so a match may end exactly at the caret.
func primaryWindow(document string, caret int, dir Direction) window {
	switch dir {
	case Forward:
		return window{runeToByte(document, caret), len(document)}
	case Backward:
		return window{0, runeToByte(document, caret)}
	default:
		return window{0, len(document)}
	}
}

// scan applies m to the window and re-bases the match onto the document.
func scan(document string, m Matcher, w window, first bool) (Result, bool) {
	text := document[w.from:w.to]

	var loc []int
	if first {
		loc = m.First(text)
	} else {
		loc = m.Last(text)
	}
	if loc == nil {
		return NotFound, false
	}

	return Result{
		Found: true,
		Start: byteToRune(document, w.from+loc[0]),
		End:   byteToRune(document, w.from+loc[1]),
	}, true
}

// matcher returns a compiled matcher for pattern, consulting the cache for
// regexes. Compile failures are not cached.
func (e *Engine) matcher(pattern string, useRegex bool) (Matcher, error) {
	if !useRegex {
		return literalMatcher{needle: pattern}, nil
	}

	key := string(e.backend) + "\x00" + pattern
	if e.cache != nil {
		if m, ok := e.cache.Get(key); ok {
			return m, nil
		}
	}

	m, err := compileRegex(e.backend, pattern)
	if err != nil {
		return nil, err
	}
	if e.cache != nil {
		e.cache.Add(key, m)
	}
	return m, nil
}

// CacheLen returns the number of cached expressions.
func (e *Engine) CacheLen() int {
	if e.cache == nil {
		return 0
	}
	return e.cache.Len()
}
