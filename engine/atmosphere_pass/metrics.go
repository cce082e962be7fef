package atmosphere_pass

import "time"

// MetricsRecorder receives per-frame scheduling statistics.
// *observability.AtmosphereCollector satisfies it.
type MetricsRecorder interface {
	SetActiveInstances(n int)
	SetCameraInside(inside bool)
	IncDraw(pass string)
	IncDrawError(pass string)
	IncSkipped(reason string)
	ObserveSchedule(d time.Duration)
}

type noopRecorder struct{}

func (noopRecorder) SetActiveInstances(int)        {}
func (noopRecorder) SetCameraInside(bool)          {}
func (noopRecorder) IncDraw(string)                {}
func (noopRecorder) IncDrawError(string)           {}
func (noopRecorder) IncSkipped(string)             {}
func (noopRecorder) ObserveSchedule(time.Duration) {}
