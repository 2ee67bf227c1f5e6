package controller

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Aman-CERP/scribe/internal/buffer"
	"github.com/Aman-CERP/scribe/internal/search"
)

func newController(text string, opts ...Option) *Controller {
	return New(buffer.New(text), search.NewEngine(), opts...)
}

func TestController_NextMatchWalksAndWraps(t *testing.T) {
	// Given: a buffer with two occurrences
	c := newController("foo bar foo baz")
	c.SetPattern("foo")
	ctx := context.Background()

	// When/Then: next visits both matches and wraps
	var spans []search.Result
	for range 3 {
		out, err := c.NextMatch(ctx)
		require.NoError(t, err)
		require.True(t, out.Applied)
		spans = append(spans, out.Result)
	}

	assert.Equal(t, 0, spans[0].Start)
	assert.Equal(t, 8, spans[1].Start)
	assert.Equal(t, 0, spans[2].Start)
	assert.True(t, spans[2].Wrapped)

	sel, ok := c.Buffer().Selection()
	assert.True(t, ok)
	assert.Equal(t, buffer.Selection{Start: 0, End: 3}, sel)
	assert.Equal(t, 3, c.Buffer().CaretOffset())
}

func TestController_PreviousMatchDoesNotRefindSelection(t *testing.T) {
	// Given: the second match is selected
	c := newController("foo bar foo baz")
	c.SetPattern("foo")
	c.Buffer().Select(8, 11)

	// When: going to the previous match
	out, err := c.PreviousMatch(context.Background())

	// Then: the first match is selected
	require.NoError(t, err)
	assert.Equal(t, 0, out.Result.Start)
	sel, _ := c.Buffer().Selection()
	assert.Equal(t, buffer.Selection{Start: 0, End: 3}, sel)

	// And again wraps to the last match
	out, err = c.PreviousMatch(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 8, out.Result.Start)
	assert.True(t, out.Result.Wrapped)
}

func TestController_PreviousMatchWithoutSelectionUsesCaret(t *testing.T) {
	c := newController("aXaYaZ", WithRegex(true))
	c.SetPattern("a.")
	c.Buffer().SetCaret(6)

	out, err := c.PreviousMatch(context.Background())

	require.NoError(t, err)
	assert.Equal(t, 4, out.Result.Start)
	assert.Equal(t, 6, out.Result.End)
}

func TestController_StartSearchIgnoresCaret(t *testing.T) {
	c := newController("foo bar foo baz")
	c.SetPattern("foo")
	c.Buffer().SetCaret(12)

	out, err := c.StartSearch(context.Background())

	require.NoError(t, err)
	assert.Equal(t, 0, out.Result.Start)
	assert.Equal(t, search.Start, out.Direction)
}

func TestController_InvalidPatternLeavesStateUnchanged(t *testing.T) {
	// Given: a selection and an invalid regex
	c := newController("hello (world)", WithRegex(true))
	c.SetPattern("(")
	c.Buffer().Select(0, 5)
	before := c.Buffer().Snapshot()

	// When: searching in each direction
	for _, dir := range []search.Direction{search.Start, search.Forward, search.Backward} {
		out, err := c.Find(context.Background(), dir)

		// Then: the error surfaces and nothing moves
		require.Error(t, err)
		assert.True(t, search.IsInvalidPattern(err))
		assert.False(t, out.Applied)
	}
	assert.Equal(t, before, c.Buffer().Snapshot())
}

func TestController_NotFoundIsNoOp(t *testing.T) {
	c := newController("hello world")
	c.SetPattern("zzz")
	c.Buffer().SetCaret(4)

	out, err := c.NextMatch(context.Background())

	require.NoError(t, err)
	assert.False(t, out.Result.Found)
	assert.False(t, out.Applied)
	assert.Equal(t, 4, c.Buffer().CaretOffset())
}

func TestController_ToggleRegex(t *testing.T) {
	c := newController("a.c abc")
	c.SetPattern("a.c")
	assert.False(t, c.UseRegex())

	out, err := c.Find(context.Background(), search.Backward)
	require.NoError(t, err)
	assert.Equal(t, 0, out.Result.Start, "literal dot")

	assert.True(t, c.ToggleRegex())
	c.Buffer().SetCaret(7)
	out, err = c.Find(context.Background(), search.Backward)
	require.NoError(t, err)
	assert.Equal(t, 4, out.Result.Start, "regex dot")

	c.SetUseRegex(false)
	assert.False(t, c.UseRegex())
	assert.Equal(t, "a.c", c.Pattern())
}

func TestController_CancelledContext(t *testing.T) {
	c := newController("foo")
	c.SetPattern("foo")
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := c.NextMatch(ctx)

	assert.ErrorIs(t, err, context.Canceled)
	_, ok := c.Buffer().Selection()
	assert.False(t, ok)
}

func TestNew_NilEngine(t *testing.T) {
	c := New(buffer.New("x"), nil)
	c.SetPattern("x")

	out, err := c.StartSearch(context.Background())

	require.NoError(t, err)
	assert.True(t, out.Result.Found)
}
