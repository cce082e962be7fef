package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewJSONLoggerWritesFields(t *testing.T) {
	var buf bytes.Buffer
	log := New(Config{Level: "debug", Format: "json", Output: &buf})

	log.With(String("component", "scheduler")).Warn(context.Background(), "draw failed",
		Uint64("instance", 3),
		Err(errors.New("boom")),
	)

	var rec map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &rec))
	assert.Equal(t, "WARN", rec["level"])
	assert.Equal(t, "draw failed", rec["msg"])
	assert.Equal(t, "scheduler", rec["component"])
	assert.Equal(t, float64(3), rec["instance"])
	assert.Equal(t, "boom", rec["error"])
}

func TestLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	log := New(Config{Level: "warn", Output: &buf})

	log.Info(context.Background(), "hidden")
	assert.Zero(t, buf.Len())

	log.Error(context.Background(), "shown")
	assert.Contains(t, buf.String(), "shown")
}

func TestNoopAndOrNoop(t *testing.T) {
	assert.NotPanics(t, func() {
		Noop().With(Int("a", 1)).Error(context.Background(), "dropped")
	})
	assert.Equal(t, Noop(), OrNoop(nil))

	custom := New(Config{Output: &bytes.Buffer{}})
	assert.Same(t, custom, OrNoop(custom))
}

func TestErrNil(t *testing.T) {
	assert.Equal(t, Field{Key: "error", Value: ""}, Err(nil))
}
