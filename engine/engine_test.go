package engine

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/Carmen-Shannon/oxy-atmosphere/engine/atmosphere_pass"
	"github.com/Carmen-Shannon/oxy-atmosphere/engine/camera"
	"github.com/Carmen-Shannon/oxy-atmosphere/engine/profiler"
	"github.com/Carmen-Shannon/oxy-atmosphere/engine/scene"
	"github.com/Carmen-Shannon/oxy-atmosphere/internal/logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingPresenter struct {
	presents atomic.Int64
}

func (p *countingPresenter) Present() error { p.presents.Add(1); return nil }
func (p *countingPresenter) Resize(int, int) {}

type countingScene struct {
	scene.Scene
	polls atomic.Int64
}

func (s *countingScene) Active() bool {
	s.polls.Add(1)
	return s.Scene.Active()
}

func newRenderLoop(t *testing.T, s scene.Scene, p Presenter) *engine {
	t.Helper()
	t.Cleanup(s.Close)
	return &engine{
		quitChannel: make(chan struct{}),
		scene:       s,
		presenter:   p,
		log:         logging.Noop(),
		profiler:    profiler.NewProfiler(logging.Noop()),
	}
}

func TestFrameDelay(t *testing.T) {
	assert.Zero(t, frameDelay(true, 0, time.Millisecond))
	assert.Equal(t, 6*time.Millisecond, frameDelay(true, 10*time.Millisecond, 4*time.Millisecond))
	assert.Zero(t, frameDelay(true, 10*time.Millisecond, 20*time.Millisecond))

	assert.Equal(t, idleFrameInterval, frameDelay(false, 0, 0))
	assert.Equal(t, idleFrameInterval-time.Millisecond, frameDelay(false, 0, time.Millisecond))
	assert.Equal(t, 50*time.Millisecond, frameDelay(false, 50*time.Millisecond, 0))
}

func TestHandleRender_InactiveSceneIdles(t *testing.T) {
	sc := &countingScene{Scene: scene.NewScene("idle", camera.NewCamera(), &atmosphere_pass.RecordingSink{}, scene.WithActive(false))}
	presenter := &countingPresenter{}
	e := newRenderLoop(t, sc, presenter)

	var rendered atomic.Int64
	e.renderCallback = func(atmosphere_pass.FrameReport, error) { rendered.Add(1) }

	e.wg.Add(1)
	go e.handleRender()
	time.Sleep(100 * time.Millisecond)

	polls := sc.polls.Load()
	assert.Positive(t, polls)
	assert.Less(t, polls, int64(50), "inactive scene is polled, not spun on")
	assert.Zero(t, presenter.presents.Load())
	assert.Zero(t, rendered.Load())

	sc.SetActive(true)
	require.Eventually(t, func() bool { return rendered.Load() > 0 }, time.Second, 5*time.Millisecond)
	assert.Positive(t, presenter.presents.Load())

	e.signalQuit()
	done := make(chan struct{})
	go func() {
		e.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		require.FailNow(t, "render loop did not stop after quit")
	}
}
