package observability

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	dto "github.com/prometheus/client_model/go"
)

func TestAtmosphereCollectorRecords(t *testing.T) {
	reg := prometheus.NewRegistry()
	collector, err := NewAtmosphereCollector(reg)
	if err != nil {
		t.Fatalf("NewAtmosphereCollector: %v", err)
	}

	collector.SetActiveInstances(3)
	collector.SetCameraInside(true)
	collector.IncDraw("exterior")
	collector.IncDraw("exterior")
	collector.IncDraw("interior")
	collector.IncDrawError("interior")
	collector.IncSkipped("degenerate_geometry")
	collector.ObserveSchedule(200 * time.Microsecond)

	if got := testutil.ToFloat64(collector.ActiveInstances); got != 3 {
		t.Fatalf("atmosphere_active_instances = %v, want 3", got)
	}
	if got := testutil.ToFloat64(collector.CameraInside); got != 1 {
		t.Fatalf("atmosphere_camera_inside = %v, want 1", got)
	}
	if got := testutil.ToFloat64(collector.Draws.WithLabelValues("exterior")); got != 2 {
		t.Fatalf("atmosphere_draws_total{pass=exterior} = %v, want 2", got)
	}
	if got := testutil.ToFloat64(collector.DrawErrors.WithLabelValues("interior")); got != 1 {
		t.Fatalf("atmosphere_draw_errors_total{pass=interior} = %v, want 1", got)
	}
	if got := testutil.ToFloat64(collector.Skipped.WithLabelValues("degenerate_geometry")); got != 1 {
		t.Fatalf("atmosphere_skipped_instances_total = %v, want 1", got)
	}
	if count := histogramSampleCount(t, reg, "atmosphere_schedule_duration_seconds"); count != 1 {
		t.Fatalf("atmosphere_schedule_duration_seconds sample_count = %d, want 1", count)
	}

	collector.SetCameraInside(false)
	if got := testutil.ToFloat64(collector.CameraInside); got != 0 {
		t.Fatalf("atmosphere_camera_inside = %v, want 0", got)
	}
}

func TestAtmosphereCollectorReusesRegistered(t *testing.T) {
	reg := prometheus.NewRegistry()
	first, err := NewAtmosphereCollector(reg)
	if err != nil {
		t.Fatalf("first NewAtmosphereCollector: %v", err)
	}
	second, err := NewAtmosphereCollector(reg)
	if err != nil {
		t.Fatalf("second NewAtmosphereCollector: %v", err)
	}

	first.IncDraw("exterior")
	if got := testutil.ToFloat64(second.Draws.WithLabelValues("exterior")); got != 1 {
		t.Fatalf("shared counter = %v, want 1", got)
	}
}

func TestNilCollectorIsSafe(t *testing.T) {
	var c *AtmosphereCollector
	c.SetActiveInstances(1)
	c.SetCameraInside(true)
	c.IncDraw("exterior")
	c.IncDrawError("exterior")
	c.IncSkipped("invalid_settings")
	c.ObserveSchedule(time.Millisecond)
}

func TestMetricsHandlerExposesAtmosphereMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	collector, err := NewAtmosphereCollector(reg)
	if err != nil {
		t.Fatalf("NewAtmosphereCollector: %v", err)
	}
	collector.SetActiveInstances(2)
	collector.IncDraw("exterior")
	collector.IncSkipped("invalid_settings")
	collector.ObserveSchedule(time.Millisecond)

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	rr := httptest.NewRecorder()
	collector.Handler().ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("/metrics status = %d, want 200", rr.Code)
	}
	body := rr.Body.String()
	for _, metric := range []string{
		"atmosphere_active_instances 2",
		"atmosphere_draws_total",
		"atmosphere_skipped_instances_total",
		"atmosphere_schedule_duration_seconds",
	} {
		if !strings.Contains(body, metric) {
			t.Fatalf("expected %q in /metrics output", metric)
		}
	}
}

func histogramSampleCount(t *testing.T, gatherer prometheus.Gatherer, name string) uint64 {
	t.Helper()

	metrics, err := gatherer.Gather()
	if err != nil {
		t.Fatalf("gather metrics: %v", err)
	}
	for _, mf := range metrics {
		if mf.GetName() != name {
			continue
		}
		for _, m := range mf.Metric {
			if h := histogramOf(m); h != nil {
				return h.GetSampleCount()
			}
		}
	}
	return 0
}

func histogramOf(m *dto.Metric) *dto.Histogram {
	return m.GetHistogram()
}
