package watcher

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestOperation_String(t *testing.T) {
	tests := []struct {
		name string
		op   Operation
		want string
	}{
		{"create", OpCreate, "CREATE"},
		{"modify", OpModify, "MODIFY"},
		{"delete", OpDelete, "DELETE"},
		{"rename", OpRename, "RENAME"},
		{"unknown", Operation(99), "UNKNOWN"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.op.String())
		})
	}
}

func TestOptions_WithDefaults(t *testing.T) {
	// Given: options with only the debounce window set
	opts := Options{DebounceWindow: 50 * time.Millisecond}

	// When: applying defaults
	got := opts.WithDefaults()

	// Then: zero values are filled in, explicit values kept
	assert.Equal(t, 50*time.Millisecond, got.DebounceWindow)
	assert.Equal(t, time.Second, got.PollInterval)
	assert.Equal(t, 16, got.EventBufferSize)
	assert.False(t, got.ForcePolling)
}
