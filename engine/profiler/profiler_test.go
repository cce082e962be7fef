package profiler

import (
	"testing"
	"time"

	"github.com/Carmen-Shannon/oxy-atmosphere/engine/atmosphere_pass"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClock struct{ t time.Time }

func (c *fakeClock) now() time.Time { return c.t }

func TestProfiler_AccumulatesUntilInterval(t *testing.T) {
	clock := &fakeClock{t: time.Unix(0, 0)}
	p := NewProfiler(nil, WithClock(clock.now), WithInterval(time.Second))

	inside := atmosphere_pass.FrameReport{
		CameraInside: true,
		Exterior:     []uint64{1, 2},
		Interior:     []uint64{1, 2},
		Skipped:      map[uint64]atmosphere_pass.SkipReason{3: atmosphere_pass.SkipDegenerate},
	}
	outside := atmosphere_pass.FrameReport{Exterior: []uint64{1}, Failed: 1}

	clock.t = clock.t.Add(400 * time.Millisecond)
	_, done := p.Tick(inside)
	assert.False(t, done)

	clock.t = clock.t.Add(600 * time.Millisecond)
	w, done := p.Tick(outside)
	require.True(t, done)
	assert.Equal(t, 2, w.Frames)
	assert.Equal(t, 5, w.Draws)
	assert.Equal(t, 1, w.Failed)
	assert.Equal(t, 1, w.InsideFrames)
	assert.Equal(t, 1, w.Skipped)
	assert.InDelta(t, 2.0, w.FPS, 1e-9)
}

func TestProfiler_ResetsAfterWindow(t *testing.T) {
	clock := &fakeClock{t: time.Unix(0, 0)}
	p := NewProfiler(nil, WithClock(clock.now), WithInterval(time.Second))

	clock.t = clock.t.Add(time.Second)
	_, done := p.Tick(atmosphere_pass.FrameReport{Exterior: []uint64{1}})
	require.True(t, done)

	clock.t = clock.t.Add(time.Second)
	w, done := p.Tick(atmosphere_pass.FrameReport{})
	require.True(t, done)
	assert.Equal(t, 1, w.Frames)
	assert.Zero(t, w.Draws)
}

func TestProfiler_IgnoresNonPositiveInterval(t *testing.T) {
	p := NewProfiler(nil, WithInterval(0))
	assert.Equal(t, time.Second, p.updateInterval)
}
