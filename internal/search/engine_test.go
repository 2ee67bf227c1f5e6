package search

import (
	"fmt"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func found(start, end int) Result {
	return Result{Found: true, Start: start, End: end}
}

func wrapped(start, end int) Result {
	return Result{Found: true, Start: start, End: end, Wrapped: true}
}

func TestSearch_Literal(t *testing.T) {
	const doc = "foo bar foo baz"

	tests := []struct {
		name  string
		caret int
		dir   Direction
		want  Result
	}{
		{name: "start ignores caret", caret: 9, dir: Start, want: found(0, 3)},
		{name: "forward from zero", caret: 0, dir: Forward, want: found(0, 3)},
		{name: "forward skips match behind caret", caret: 3, dir: Forward, want: found(8, 11)},
		{name: "forward from inside match", caret: 1, dir: Forward, want: found(8, 11)},
		{name: "forward wraps to first", caret: 11, dir: Forward, want: wrapped(0, 3)},
		{name: "forward at end wraps", caret: 15, dir: Forward, want: wrapped(0, 3)},
		{name: "backward from end", caret: 15, dir: Backward, want: found(8, 11)},
		{name: "backward match ending at caret", caret: 11, dir: Backward, want: found(8, 11)},
		{name: "backward from selection start", caret: 8, dir: Backward, want: found(0, 3)},
		{name: "backward wraps to last", caret: 2, dir: Backward, want: wrapped(8, 11)},
		{name: "backward at zero wraps", caret: 0, dir: Backward, want: wrapped(8, 11)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Search(doc, tt.caret, "foo", false, tt.dir)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestSearch_ForwardScenario(t *testing.T) {
	// Given: a document with two occurrences and a caret at the start
	const doc = "foo bar foo baz"
	caret := 0

	// When: searching forward three times, moving the caret to each match end
	var got []Result
	for range 3 {
		r, err := Search(doc, caret, "foo", false, Forward)
		require.NoError(t, err)
		require.True(t, r.Found)
		got = append(got, r)
		caret = r.End
	}

	// Then: both matches are visited and the third call wraps
	assert.Equal(t, []Result{found(0, 3), found(8, 11), wrapped(0, 3)}, got)
}

func TestSearch_RegexBackwardKeepsLastLeftToRightMatch(t *testing.T) {
	tests := []struct {
		name    string
		doc     string
		pattern string
		caret   int
		want    Result
	}{
		{name: "last match before end", doc: "aXaYaZ", pattern: "a.", caret: 6, want: found(4, 6)},
		{name: "window cut at caret", doc: "aXaYaZ", pattern: "a.", caret: 5, want: found(2, 4)},
		{name: "wrap to last in document", doc: "aXaYaZ", pattern: "a.", caret: 1, want: wrapped(4, 6)},
		{name: "greedy match swallows later start", doc: "abab", pattern: "a.*b", caret: 4, want: found(0, 4)},
		{name: "non-overlapping enumeration", doc: "aaa", pattern: "aa", caret: 3, want: found(0, 2)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Search(tt.doc, tt.caret, tt.pattern, true, Backward)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestSearch_LiteralBackwardAllowsOverlap(t *testing.T) {
	// Literal backward takes the last occurrence even when it overlaps an
	// earlier one, unlike the regex enumeration above.
	got, err := Search("aaa", 3, "aa", false, Backward)

	require.NoError(t, err)
	assert.Equal(t, found(1, 3), got)
}

func TestSearch_RegexForward(t *testing.T) {
	const doc = "foo bar foo baz"

	tests := []struct {
		name    string
		pattern string
		caret   int
		dir     Direction
		want    Result
	}{
		{name: "start", pattern: `ba.`, caret: 10, dir: Start, want: found(4, 7)},
		{name: "forward", pattern: `ba.`, caret: 5, dir: Forward, want: found(12, 15)},
		{name: "forward wraps", pattern: `b\w+`, caret: 13, dir: Forward, want: wrapped(4, 7)},
		{name: "anchor binds to window start", pattern: `^foo`, caret: 8, dir: Forward, want: found(8, 11)},
		{name: "empty match at caret", pattern: `x*`, caret: 3, dir: Forward, want: found(3, 3)},
		{name: "empty match at end", pattern: `x*`, caret: 15, dir: Forward, want: found(15, 15)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Search(doc, tt.caret, tt.pattern, true, tt.dir)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestSearch_InvalidPattern(t *testing.T) {
	for _, pattern := range []string{"(", "a[", "*", ""} {
		for _, dir := range []Direction{Start, Forward, Backward} {
			t.Run(fmt.Sprintf("%q/%s", pattern, dir), func(t *testing.T) {
				got, err := Search("hello (world)", 3, pattern, true, dir)

				require.Error(t, err)
				assert.True(t, IsInvalidPattern(err))
				assert.Equal(t, NotFound, got)
			})
		}
	}
}

func TestSearch_InvalidPatternOnlyInRegexMode(t *testing.T) {
	got, err := Search("hello (world)", 0, "(", false, Forward)

	require.NoError(t, err)
	assert.Equal(t, found(6, 7), got)
}

func TestSearch_NoMatchAnywhere(t *testing.T) {
	for _, useRegex := range []bool{false, true} {
		for _, dir := range []Direction{Start, Forward, Backward} {
			for caret := 0; caret <= 11; caret++ {
				got, err := Search("hello world", caret, "zzz", useRegex, dir)
				require.NoError(t, err)
				assert.Equal(t, NotFound, got, "regex=%v dir=%s caret=%d", useRegex, dir, caret)
			}
		}
	}
}

func TestSearch_EmptyLiteralNeverMatches(t *testing.T) {
	for _, doc := range []string{"", "abc"} {
		for _, dir := range []Direction{Start, Forward, Backward} {
			got, err := Search(doc, 1, "", false, dir)
			require.NoError(t, err)
			assert.False(t, got.Found, "doc=%q dir=%s", doc, dir)
		}
	}
}

func TestSearch_EmptyDocument(t *testing.T) {
	got, err := Search("", 0, "a", false, Forward)
	require.NoError(t, err)
	assert.Equal(t, NotFound, got)

	got, err = Search("", 0, "x*", true, Start)
	require.NoError(t, err)
	assert.Equal(t, found(0, 0), got)
}

func TestSearch_ClampsCaret(t *testing.T) {
	const doc = "foo bar foo baz"

	tests := []struct {
		name  string
		caret int
		dir   Direction
		want  Result
	}{
		{name: "negative forward", caret: -5, dir: Forward, want: found(0, 3)},
		{name: "negative backward wraps", caret: -5, dir: Backward, want: wrapped(8, 11)},
		{name: "past end backward", caret: 100, dir: Backward, want: found(8, 11)},
		{name: "past end forward wraps", caret: 100, dir: Forward, want: wrapped(0, 3)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Search(doc, tt.caret, "foo", false, tt.dir)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestSearch_RuneOffsets(t *testing.T) {
	// h é l l o _ w ö r l d _ h é l l o
	// 0 1 2 3 4 5 6 7 8 9 ...           16
	const doc = "héllo wörld héllo"

	tests := []struct {
		name     string
		doc      string
		pattern  string
		useRegex bool
		caret    int
		dir      Direction
		want     Result
	}{
		{name: "literal forward", doc: doc, pattern: "héllo", caret: 1, dir: Forward, want: found(12, 17)},
		{name: "literal backward", doc: doc, pattern: "llo", caret: 17, dir: Backward, want: found(14, 17)},
		{name: "regex start", doc: doc, pattern: "ö.", useRegex: true, dir: Start, want: found(7, 9)},
		{name: "regex backward", doc: doc, pattern: `\pL+`, useRegex: true, caret: 11, dir: Backward, want: found(6, 11)},
		{name: "astral runes", doc: "😀a😀a", pattern: "a", caret: 2, dir: Forward, want: found(3, 4)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Search(tt.doc, tt.caret, tt.pattern, tt.useRegex, tt.dir)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestSearch_BoundaryTotality(t *testing.T) {
	docs := []string{"", "a", "abc abc", "héllo", "\n\n", "😀x😀"}
	patterns := []struct {
		pattern  string
		useRegex bool
	}{
		{"a", false},
		{"", false},
		{"c a", false},
		{"😀", false},
		{".", true},
		{"x*", true},
		{`\w+`, true},
		{`$`, true},
	}

	for _, doc := range docs {
		n := utf8.RuneCountInString(doc)
		for _, p := range patterns {
			for _, dir := range []Direction{Start, Forward, Backward} {
				for caret := -1; caret <= n+1; caret++ {
					got, err := Search(doc, caret, p.pattern, p.useRegex, dir)
					require.NoError(t, err)
					if !got.Found {
						continue
					}
					assert.True(t, 0 <= got.Start && got.Start <= got.End && got.End <= n,
						"doc=%q pattern=%q dir=%s caret=%d got=%s", doc, p.pattern, dir, caret, got)
				}
			}
		}
	}
}

func TestSearch_InvalidDirection(t *testing.T) {
	_, err := Search("abc", 0, "a", false, Direction(7))

	require.Error(t, err)
	assert.False(t, IsInvalidPattern(err))
}

func TestEngine_BackendsAgree(t *testing.T) {
	stdlib := NewEngine(WithBackend(BackendStdlib))
	core := NewEngine(WithBackend(BackendCoregex))
	require.Equal(t, BackendCoregex, core.Backend())

	const doc = "id=42 name=foo id=7 name=barbaz id=1234"
	patterns := []string{`id=\d+`, `name=[a-z]+`, `fo+`, `a.`, `\d`}

	for _, pattern := range patterns {
		for _, dir := range []Direction{Start, Forward, Backward} {
			for caret := 0; caret <= len(doc); caret += 5 {
				want, err := stdlib.Search(doc, caret, pattern, true, dir)
				require.NoError(t, err)
				got, err := core.Search(doc, caret, pattern, true, dir)
				require.NoError(t, err)
				assert.Equal(t, want, got, "pattern=%q dir=%s caret=%d", pattern, dir, caret)
			}
		}
	}
}

func TestEngine_CoregexInvalidPattern(t *testing.T) {
	e := NewEngine(WithBackend(BackendCoregex))

	_, err := e.Search("abc", 0, "(", true, Forward)

	assert.True(t, IsInvalidPattern(err))
}

func TestEngine_Cache(t *testing.T) {
	// Given: an engine with room for two expressions
	e := NewEngine(WithCacheSize(2))

	// When: the same pattern is used repeatedly
	for range 3 {
		_, err := e.Search("abc", 0, "b", true, Forward)
		require.NoError(t, err)
	}

	// Then: it is compiled once
	assert.Equal(t, 1, e.CacheLen())

	// Literal patterns and compile failures are never cached
	_, _ = e.Search("abc", 0, "b", false, Forward)
	_, _ = e.Search("abc", 0, "(", true, Forward)
	assert.Equal(t, 1, e.CacheLen())

	// Capacity is bounded
	_, _ = e.Search("abc", 0, "c", true, Forward)
	_, _ = e.Search("abc", 0, "a", true, Forward)
	assert.Equal(t, 2, e.CacheLen())
}

func TestEngine_CacheIsInvisible(t *testing.T) {
	cached := NewEngine(WithCacheSize(4))
	uncached := NewEngine(WithCacheSize(0))
	assert.Equal(t, 0, uncached.CacheLen())

	const doc = "one two three two one"
	for _, dir := range []Direction{Start, Forward, Backward} {
		for caret := 0; caret <= len(doc); caret++ {
			want, err := uncached.Search(doc, caret, `t\w+`, true, dir)
			require.NoError(t, err)
			got, err := cached.Search(doc, caret, `t\w+`, true, dir)
			require.NoError(t, err)
			assert.Equal(t, want, got)
		}
	}
}
