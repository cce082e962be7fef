package profiler

import (
	"context"
	"runtime"
	"time"

	"github.com/Carmen-Shannon/oxy-atmosphere/engine/atmosphere_pass"
	"github.com/Carmen-Shannon/oxy-atmosphere/internal/logging"
)

// Window summarizes the frames seen during one update interval.
type Window struct {
	Frames       int
	FPS          float64
	Draws        int
	Failed       int
	InsideFrames int
	Skipped      int
	HeapMB       float64
	AllocRateMB  float64
	GCCount      uint32
	MaxPauseUs   uint64
}

// Profiler tracks frame rate, atmosphere draw counts and memory statistics.
// It logs a summary each time the update interval elapses.
type Profiler struct {
	log            logging.Logger
	now            func() time.Time
	updateInterval time.Duration

	lastTime       time.Time
	current        Window
	memStats       runtime.MemStats
	lastGCCount    uint32
	lastTotalAlloc uint64
}

// ProfilerOption configures a Profiler.
type ProfilerOption func(*Profiler)

// WithInterval sets how often a summary is produced. Non-positive values are ignored.
func WithInterval(d time.Duration) ProfilerOption {
	return func(p *Profiler) {
		if d > 0 {
			p.updateInterval = d
		}
	}
}

// WithClock replaces the wall clock.
func WithClock(now func() time.Time) ProfilerOption {
	return func(p *Profiler) {
		if now != nil {
			p.now = now
		}
	}
}

// NewProfiler creates a new Profiler. The update interval defaults to 1 second.
//
// Parameters:
//   - log: destination for summaries, nil for none
//   - opts: profiler options
//
// Returns:
//   - *Profiler: the newly created profiler instance
func NewProfiler(log logging.Logger, opts ...ProfilerOption) *Profiler {
	p := &Profiler{
		log:            logging.OrNoop(log),
		now:            time.Now,
		updateInterval: time.Second,
	}
	for _, opt := range opts {
		opt(p)
	}
	p.lastTime = p.now()
	return p
}

// Tick records one scheduled frame. When the update interval has elapsed the
// accumulated window is logged, returned, and reset.
//
// Parameters:
//   - report: the scheduler's report for the frame
//
// Returns:
//   - Window: the completed window, zero when none completed
//   - bool: true if a window completed on this tick
func (p *Profiler) Tick(report atmosphere_pass.FrameReport) (Window, bool) {
	p.current.Frames++
	p.current.Draws += report.Draws()
	p.current.Failed += report.Failed
	p.current.Skipped += len(report.Skipped)
	if report.CameraInside {
		p.current.InsideFrames++
	}

	currentTime := p.now()
	elapsed := currentTime.Sub(p.lastTime)
	if elapsed < p.updateInterval {
		return Window{}, false
	}

	w := p.current
	w.FPS = float64(w.Frames) / elapsed.Seconds()

	runtime.ReadMemStats(&p.memStats)
	w.HeapMB = float64(p.memStats.Alloc) / 1024 / 1024
	w.AllocRateMB = float64(p.memStats.TotalAlloc-p.lastTotalAlloc) / 1024 / 1024 / elapsed.Seconds()
	w.GCCount = p.memStats.NumGC

	// PauseNs is a circular buffer of the last 256 pauses
	startIdx := p.lastGCCount
	if w.GCCount-startIdx > 256 {
		startIdx = w.GCCount - 256
	}
	for i := startIdx; i < w.GCCount; i++ {
		w.MaxPauseUs = max(w.MaxPauseUs, p.memStats.PauseNs[i%256]/1000)
	}

	p.log.Info(context.Background(), "frame stats",
		logging.Any("fps", w.FPS),
		logging.Int("frames", w.Frames),
		logging.Int("draws", w.Draws),
		logging.Int("failed", w.Failed),
		logging.Int("inside_frames", w.InsideFrames),
		logging.Int("skipped", w.Skipped),
		logging.Any("heap_mb", w.HeapMB),
		logging.Any("alloc_rate_mb_s", w.AllocRateMB),
		logging.Any("max_gc_pause_us", w.MaxPauseUs),
	)

	p.current = Window{}
	p.lastTime = currentTime
	p.lastGCCount = w.GCCount
	p.lastTotalAlloc = p.memStats.TotalAlloc
	return w, true
}
