package observability

import (
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// AtmosphereCollector bundles Prometheus metrics for atmosphere pass scheduling.
// All recording methods are safe to call on a nil collector.
type AtmosphereCollector struct {
	gatherer prometheus.Gatherer

	ActiveInstances  prometheus.Gauge
	CameraInside     prometheus.Gauge
	Draws            *prometheus.CounterVec
	DrawErrors       *prometheus.CounterVec
	Skipped          *prometheus.CounterVec
	ScheduleDuration prometheus.Histogram
}

// NewAtmosphereCollector registers atmosphere metrics against the provided
// registerer, defaulting to the global Prometheus registry when nil.
func NewAtmosphereCollector(reg prometheus.Registerer) (*AtmosphereCollector, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	gatherer := prometheus.DefaultGatherer
	if g, ok := reg.(prometheus.Gatherer); ok {
		gatherer = g
	}

	active, err := registerGauge(reg, prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "atmosphere_active_instances",
		Help: "Number of atmosphere instances in the registry at the last scheduling run.",
	}), "atmosphere_active_instances")
	if err != nil {
		return nil, err
	}

	inside, err := registerGauge(reg, prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "atmosphere_camera_inside",
		Help: "1 when the camera was inside at least one atmosphere at the last scheduling run.",
	}), "atmosphere_camera_inside")
	if err != nil {
		return nil, err
	}

	draws, err := registerCounterVec(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "atmosphere_draws_total",
		Help: "Draws submitted to the draw sink, labeled by pass.",
	}, []string{"pass"}), "atmosphere_draws_total")
	if err != nil {
		return nil, err
	}

	drawErrors, err := registerCounterVec(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "atmosphere_draw_errors_total",
		Help: "Draws rejected by the draw sink, labeled by pass.",
	}, []string{"pass"}), "atmosphere_draw_errors_total")
	if err != nil {
		return nil, err
	}

	skipped, err := registerCounterVec(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "atmosphere_skipped_instances_total",
		Help: "Active instances skipped during scheduling, labeled by reason.",
	}, []string{"reason"}), "atmosphere_skipped_instances_total")
	if err != nil {
		return nil, err
	}

	duration, err := registerHistogram(reg, prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "atmosphere_schedule_duration_seconds",
		Help:    "Wall time of one atmosphere scheduling run.",
		Buckets: []float64{0.00005, 0.0001, 0.00025, 0.0005, 0.001, 0.0025, 0.005, 0.01, 0.025},
	}), "atmosphere_schedule_duration_seconds")
	if err != nil {
		return nil, err
	}

	return &AtmosphereCollector{
		gatherer:         gatherer,
		ActiveInstances:  active,
		CameraInside:     inside,
		Draws:            draws,
		DrawErrors:       drawErrors,
		Skipped:          skipped,
		ScheduleDuration: duration,
	}, nil
}

// Handler exposes a ready-to-use /metrics handler.
func (c *AtmosphereCollector) Handler() http.Handler {
	gatherer := prometheus.DefaultGatherer
	if c != nil && c.gatherer != nil {
		gatherer = c.gatherer
	}
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}

func (c *AtmosphereCollector) SetActiveInstances(n int) {
	if c == nil || c.ActiveInstances == nil {
		return
	}
	c.ActiveInstances.Set(float64(n))
}

func (c *AtmosphereCollector) SetCameraInside(inside bool) {
	if c == nil || c.CameraInside == nil {
		return
	}
	if inside {
		c.CameraInside.Set(1)
		return
	}
	c.CameraInside.Set(0)
}

func (c *AtmosphereCollector) IncDraw(pass string) {
	if c == nil || c.Draws == nil {
		return
	}
	c.Draws.WithLabelValues(pass).Inc()
}

func (c *AtmosphereCollector) IncDrawError(pass string) {
	if c == nil || c.DrawErrors == nil {
		return
	}
	c.DrawErrors.WithLabelValues(pass).Inc()
}

func (c *AtmosphereCollector) IncSkipped(reason string) {
	if c == nil || c.Skipped == nil {
		return
	}
	c.Skipped.WithLabelValues(reason).Inc()
}

func (c *AtmosphereCollector) ObserveSchedule(d time.Duration) {
	if c == nil || c.ScheduleDuration == nil {
		return
	}
	c.ScheduleDuration.Observe(d.Seconds())
}

func registerCounterVec(reg prometheus.Registerer, vec *prometheus.CounterVec, name string) (*prometheus.CounterVec, error) {
	if err := reg.Register(vec); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(*prometheus.CounterVec); ok {
				return existing, nil
			}
			return nil, fmt.Errorf("collector %s already registered with incompatible type", name)
		}
		return nil, err
	}
	return vec, nil
}

func registerHistogram(reg prometheus.Registerer, h prometheus.Histogram, name string) (prometheus.Histogram, error) {
	if err := reg.Register(h); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(prometheus.Histogram); ok {
				return existing, nil
			}
			return nil, fmt.Errorf("collector %s already registered with incompatible type", name)
		}
		return nil, err
	}
	return h, nil
}

func registerGauge(reg prometheus.Registerer, gauge prometheus.Gauge, name string) (prometheus.Gauge, error) {
	if err := reg.Register(gauge); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(prometheus.Gauge); ok {
				return existing, nil
			}
			return nil, fmt.Errorf("collector %s already registered with incompatible type", name)
		}
		return nil, err
	}
	return gauge, nil
}
