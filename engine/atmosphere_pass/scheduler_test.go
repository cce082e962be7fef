package atmosphere_pass

import (
	"context"
	"errors"
	"testing"

	"github.com/Carmen-Shannon/oxy-atmosphere/engine/atmosphere"
	"github.com/Carmen-Shannon/oxy-atmosphere/engine/camera"
	"github.com/Carmen-Shannon/oxy-atmosphere/engine/game_object"
	"github.com/Carmen-Shannon/oxy-atmosphere/engine/light"
	"github.com/Carmen-Shannon/oxy-atmosphere/engine/planet_atmosphere"
	"github.com/Carmen-Shannon/oxy-atmosphere/internal/observability"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

var testAssets = AssetMap{
	Meshes:  map[string]MeshHandle{MeshName: "sphere"},
	Shaders: map[string]ShaderHandle{ShaderName: "atmosphere"},
}

func newTestScheduler(t *testing.T, reg planet_atmosphere.Registry, sink DrawSink, opts ...PassSchedulerBuilderOption) PassScheduler {
	t.Helper()
	opts = append([]PassSchedulerBuilderOption{WithWorkers(2)}, opts...)
	ps := NewPassScheduler(reg, sink, opts...)
	t.Cleanup(ps.Close)
	require.NoError(t, ps.LoadResources(context.Background(), testAssets))
	return ps
}

func addPlanet(reg planet_atmosphere.Registry, profile atmosphere.Profile, scale float32, pos [3]float32) (planet_atmosphere.Instance, game_object.GameObject) {
	obj := game_object.NewGameObject(
		game_object.WithScale(scale, scale, scale),
		game_object.WithPosition(pos[0], pos[1], pos[2]),
	)
	inst := planet_atmosphere.NewInstance(reg, planet_atmosphere.WithProfile(profile), planet_atmosphere.WithGameObject(obj))
	inst.Enable()
	return inst, obj
}

func cameraAt(x, y, z float32, opts ...camera.CameraBuilderOption) camera.Camera {
	return camera.NewCamera(append([]camera.CameraBuilderOption{camera.WithPosition(x, y, z)}, opts...)...)
}

func TestSchedule_ScenarioA_CameraOutside(t *testing.T) {
	reg := planet_atmosphere.NewRegistry()
	inst, _ := addPlanet(reg, atmosphere.NewProfile(), 1, [3]float32{})
	sink := &RecordingSink{}
	ps := newTestScheduler(t, reg, sink)

	report, err := ps.Schedule(context.Background(), FrameInput{Frame: 1, Camera: cameraAt(0, 0, 5)})
	require.NoError(t, err)

	assert.Equal(t, FrameExterior, report.State)
	assert.False(t, report.CameraInside)
	assert.Equal(t, []uint64{inst.ID()}, report.Exterior)
	assert.Empty(t, report.Interior)

	cmds := sink.Commands()
	require.Len(t, cmds, 1)
	assert.Equal(t, PassExterior, cmds[0].Pass)
	assert.Equal(t, MeshHandle("sphere"), cmds[0].Mesh)
	assert.Equal(t, ShaderHandle("atmosphere"), cmds[0].Shader)
	assert.Equal(t, []uint64{1}, sink.Frames())
}

func TestSchedule_ScenarioB_CameraInside(t *testing.T) {
	reg := planet_atmosphere.NewRegistry()
	inst, _ := addPlanet(reg, atmosphere.NewProfile(), 1, [3]float32{})
	sink := &RecordingSink{}
	ps := newTestScheduler(t, reg, sink)

	report, err := ps.Schedule(context.Background(), FrameInput{Frame: 1, Camera: cameraAt(0, 0, 1)})
	require.NoError(t, err)

	assert.Equal(t, FrameInterior, report.State)
	assert.True(t, report.CameraInside)
	assert.Equal(t, []uint64{inst.ID()}, report.Interior)

	cmds := sink.Commands()
	require.Len(t, cmds, 2)
	assert.Equal(t, PassExterior, cmds[0].Pass)
	assert.Equal(t, PassInterior, cmds[1].Pass)
	assert.Equal(t, int32(0), cmds[0].Params.Named()[ParamShaderPassIndex])
	assert.Equal(t, int32(1), cmds[1].Params.Named()[ParamShaderPassIndex])

	// both passes share every parameter except the pass kind
	assert.Equal(t, cmds[0].Params, cmds[1].Params.WithPass(PassExterior))
	assert.Equal(t, cmds[0].Transform, cmds[1].Transform)
}

func TestSchedule_CameraOnShellIsOutside(t *testing.T) {
	reg := planet_atmosphere.NewRegistry()
	addPlanet(reg, atmosphere.NewProfile(), 1, [3]float32{})
	ps := newTestScheduler(t, reg, &RecordingSink{})

	report, err := ps.Schedule(context.Background(), FrameInput{Camera: cameraAt(0, 2, 0)})
	require.NoError(t, err)
	assert.False(t, report.CameraInside)
}

func TestSchedule_ScenarioC_DisabledInstance(t *testing.T) {
	reg := planet_atmosphere.NewRegistry()
	inst, _ := addPlanet(reg, atmosphere.NewProfile(), 1, [3]float32{})
	sink := &RecordingSink{}
	ps := newTestScheduler(t, reg, sink)

	inst.Disable()
	report, err := ps.Schedule(context.Background(), FrameInput{Frame: 2, Camera: cameraAt(0, 0, 1)})
	require.NoError(t, err)
	assert.Equal(t, FrameIdle, report.State)
	assert.Empty(t, sink.Commands())
	assert.Empty(t, sink.Frames(), "idle frames never reach the sink")
}

func TestSchedule_ScenarioD_NullInnerSettings(t *testing.T) {
	reg := planet_atmosphere.NewRegistry()
	inst, _ := addPlanet(reg, atmosphere.NewProfile(), 1, [3]float32{})
	sink := &RecordingSink{}
	ps := newTestScheduler(t, reg, sink)

	inst.SetProfile(atmosphere.NewProfile(atmosphere.WithSettings(nil)))
	report, err := ps.Schedule(context.Background(), FrameInput{Camera: cameraAt(0, 0, 5)})
	require.NoError(t, err)
	assert.Equal(t, FrameIdle, report.State)
	assert.Empty(t, sink.Commands())
}

func TestSchedule_ScenarioE_SharedProfileScales(t *testing.T) {
	reg := planet_atmosphere.NewRegistry()
	profile := atmosphere.NewProfile()
	addPlanet(reg, profile, 2, [3]float32{-50, 0, 0})
	addPlanet(reg, profile, 4, [3]float32{50, 0, 0})
	sink := &RecordingSink{}
	ps := newTestScheduler(t, reg, sink)

	_, err := ps.Schedule(context.Background(), FrameInput{Camera: cameraAt(0, 0, 100)})
	require.NoError(t, err)

	cmds := sink.Commands()
	require.Len(t, cmds, 2)
	small, large := cmds[0].Params, cmds[1].Params
	assert.Equal(t, 2*small.PlanetRadius, large.PlanetRadius)
	assert.Equal(t, 2*small.AtmosphereRadius, large.AtmosphereRadius)
	assert.Equal(t, small.RayleighScatteringCoeff, large.RayleighScatteringCoeff)
	assert.Equal(t, small.MieG, large.MieG)
	assert.Equal(t, small.OzoneCenterAltitudeNorm, large.OzoneCenterAltitudeNorm)
}

func TestSchedule_DrawOrderFollowsRegistry(t *testing.T) {
	reg := planet_atmosphere.NewRegistry()
	profile := atmosphere.NewProfile()
	var want []uint64
	for i := range 8 {
		inst, _ := addPlanet(reg, profile, 1, [3]float32{float32(i) * 10, 0, 0})
		want = append(want, inst.ID())
	}
	ps := newTestScheduler(t, reg, &RecordingSink{}, WithWorkers(4))

	report, err := ps.Schedule(context.Background(), FrameInput{Camera: cameraAt(0, 100, 0)})
	require.NoError(t, err)
	assert.Equal(t, want, report.Exterior)
}

func TestSchedule_Idempotent(t *testing.T) {
	reg := planet_atmosphere.NewRegistry()
	profile := atmosphere.NewProfile()
	addPlanet(reg, profile, 1, [3]float32{})
	addPlanet(reg, profile, 3, [3]float32{20, 0, 0})
	sink := &RecordingSink{}
	ps := newTestScheduler(t, reg, sink)
	in := FrameInput{Frame: 7, Camera: cameraAt(0, 0, 1.5)}

	first, err := ps.Schedule(context.Background(), in)
	require.NoError(t, err)
	firstCmds := sink.Commands()
	sink.Reset()

	second, err := ps.Schedule(context.Background(), in)
	require.NoError(t, err)
	assert.Equal(t, first, second)
	assert.Equal(t, firstCmds, sink.Commands())
}

func TestSchedule_DegenerateInstanceIsIsolated(t *testing.T) {
	reg := planet_atmosphere.NewRegistry()
	flat := atmosphere.DefaultSettings()
	flat.AtmosphereHeight = 0
	bad, _ := addPlanet(reg, atmosphere.NewProfile(atmosphere.WithSettings(flat)), 1, [3]float32{})
	good, _ := addPlanet(reg, atmosphere.NewProfile(), 1, [3]float32{10, 0, 0})
	sink := &RecordingSink{}
	ps := newTestScheduler(t, reg, sink)

	report, err := ps.Schedule(context.Background(), FrameInput{Camera: cameraAt(0, 0, 50)})
	require.NoError(t, err)
	require.True(t, reg.Contains(bad), "zero-height atmospheres stay registered")
	assert.Equal(t, []uint64{good.ID()}, report.Exterior)
	assert.Equal(t, map[uint64]SkipReason{bad.ID(): SkipDegenerate}, report.Skipped)
}

func TestSchedule_SinkErrorDoesNotStopBatch(t *testing.T) {
	reg := planet_atmosphere.NewRegistry()
	profile := atmosphere.NewProfile()
	first, _ := addPlanet(reg, profile, 1, [3]float32{})
	second, _ := addPlanet(reg, profile, 1, [3]float32{10, 0, 0})
	errRejected := errors.New("rejected")
	sink := &RecordingSink{Failing: func(cmd DrawCommand) error {
		if cmd.InstanceID == first.ID() {
			return errRejected
		}
		return nil
	}}
	collector, err := observability.NewAtmosphereCollector(prometheus.NewRegistry())
	require.NoError(t, err)
	ps := newTestScheduler(t, reg, sink, WithMetrics(collector))

	report, err := ps.Schedule(context.Background(), FrameInput{Camera: cameraAt(0, 0, 0.5)})
	require.Error(t, err)
	assert.ErrorIs(t, err, errRejected)
	assert.Equal(t, 2, report.Failed)
	assert.Equal(t, []uint64{second.ID()}, report.Exterior)
	assert.Equal(t, []uint64{second.ID()}, report.Interior)
	assert.Equal(t, float64(2), testutil.ToFloat64(collector.DrawErrors.WithLabelValues("exterior"))+testutil.ToFloat64(collector.DrawErrors.WithLabelValues("interior")))
}

func TestSchedule_ResourcesMissing(t *testing.T) {
	reg := planet_atmosphere.NewRegistry()
	addPlanet(reg, atmosphere.NewProfile(), 1, [3]float32{})
	sink := &RecordingSink{}
	ps := NewPassScheduler(reg, sink, WithWorkers(1))
	defer ps.Close()

	assert.Equal(t, ResourcesNotLoaded, ps.Status())
	report, err := ps.Schedule(context.Background(), FrameInput{Camera: cameraAt(0, 0, 5)})
	require.NoError(t, err)
	assert.Equal(t, FrameNotReady, report.State)

	err = ps.LoadResources(context.Background(), AssetMap{Meshes: testAssets.Meshes})
	assert.ErrorIs(t, err, ErrShaderUnavailable)
	assert.Equal(t, ResourcesShaderMissing, ps.Status())

	err = ps.LoadResources(context.Background(), AssetMap{Shaders: testAssets.Shaders})
	assert.ErrorIs(t, err, ErrMeshUnavailable)
	assert.Equal(t, ResourcesMeshMissing, ps.Status())

	for range 3 {
		report, err = ps.Schedule(context.Background(), FrameInput{Camera: cameraAt(0, 0, 5)})
		require.NoError(t, err)
		assert.Equal(t, FrameNotReady, report.State)
	}
	assert.Empty(t, sink.Commands())

	require.NoError(t, ps.LoadResources(context.Background(), testAssets))
	assert.Equal(t, ResourcesReady, ps.Status())
	report, err = ps.Schedule(context.Background(), FrameInput{Camera: cameraAt(0, 0, 5)})
	require.NoError(t, err)
	assert.Equal(t, 1, report.Draws())
}

func TestSchedule_CameraFiltering(t *testing.T) {
	reg := planet_atmosphere.NewRegistry()
	addPlanet(reg, atmosphere.NewProfile(), 1, [3]float32{})
	sink := &RecordingSink{}
	ps := newTestScheduler(t, reg, sink)

	cases := map[string]struct {
		cam  camera.Camera
		want FrameState
	}{
		"preview":   {cameraAt(0, 0, 5, camera.WithPreview(true)), FrameCameraSkipped},
		"offscreen": {cameraAt(0, 0, 5, camera.WithRenderType(camera.RenderTypeOffscreen)), FrameCameraSkipped},
		"overlay":   {cameraAt(0, 0, 5, camera.WithRenderType(camera.RenderTypeOverlay)), FrameExterior},
		"base":      {cameraAt(0, 0, 5), FrameExterior},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			sink.Reset()
			report, err := ps.Schedule(context.Background(), FrameInput{Camera: tc.cam})
			require.NoError(t, err)
			assert.Equal(t, tc.want, report.State)
			if tc.want == FrameCameraSkipped {
				assert.Empty(t, sink.Commands())
			}
		})
	}

	_, err := ps.Schedule(context.Background(), FrameInput{})
	assert.ErrorIs(t, err, ErrNoCamera)
}

func TestSchedule_SunDirectionSharedByFrame(t *testing.T) {
	reg := planet_atmosphere.NewRegistry()
	profile := atmosphere.NewProfile()
	addPlanet(reg, profile, 1, [3]float32{})
	addPlanet(reg, profile, 1, [3]float32{10, 0, 0})
	sink := &RecordingSink{}
	ps := newTestScheduler(t, reg, sink)

	sun := light.NewLight(light.LightTypeDirectional, light.WithDirection(0, 0, 2))
	report, err := ps.Schedule(context.Background(), FrameInput{
		Camera: cameraAt(0, 0, 50),
		Lights: []light.Light{light.NewLight(light.LightTypePoint), sun},
	})
	require.NoError(t, err)
	assert.Equal(t, [3]float32{0, 0, -1}, report.SunDirection)
	for _, cmd := range sink.Commands() {
		assert.Equal(t, [3]float32{0, 0, -1}, cmd.Params.SunDirection)
	}
}

func TestSunDirection_Fallback(t *testing.T) {
	assert.Equal(t, FallbackSunDirection, SunDirection(nil))
	assert.Equal(t, FallbackSunDirection, SunDirection([]light.Light{light.NewLight(light.LightTypePoint)}))

	off := light.NewLight(light.LightTypeDirectional, light.WithDirection(1, 0, 0), light.WithEnabled(false))
	assert.Equal(t, FallbackSunDirection, SunDirection([]light.Light{off}))

	zero := light.NewLight(light.LightTypeDirectional, light.WithDirection(0, 0, 0))
	assert.Equal(t, FallbackSunDirection, SunDirection([]light.Light{zero}))
}

func TestSchedule_RecordsMetricsAndSpan(t *testing.T) {
	reg := planet_atmosphere.NewRegistry()
	addPlanet(reg, atmosphere.NewProfile(), 1, [3]float32{})

	promReg := prometheus.NewRegistry()
	collector, err := observability.NewAtmosphereCollector(promReg)
	require.NoError(t, err)

	spans := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(spans))
	t.Cleanup(func() { _ = tp.Shutdown(context.Background()) })

	ps := newTestScheduler(t, reg, &RecordingSink{}, WithMetrics(collector), WithTracer(tp.Tracer("test")))
	_, err = ps.Schedule(context.Background(), FrameInput{Frame: 3, Camera: cameraAt(0, 0, 1)})
	require.NoError(t, err)

	assert.Equal(t, float64(1), testutil.ToFloat64(collector.ActiveInstances))
	assert.Equal(t, float64(1), testutil.ToFloat64(collector.CameraInside))
	assert.Equal(t, float64(1), testutil.ToFloat64(collector.Draws.WithLabelValues("exterior")))
	assert.Equal(t, float64(1), testutil.ToFloat64(collector.Draws.WithLabelValues("interior")))

	ended := spans.Ended()
	require.Len(t, ended, 1)
	assert.Equal(t, "atmosphere.Schedule", ended[0].Name())
}

func TestNewPassScheduler_PanicsOnNilDependencies(t *testing.T) {
	assert.Panics(t, func() { NewPassScheduler(nil, &RecordingSink{}) })
	assert.Panics(t, func() { NewPassScheduler(planet_atmosphere.NewRegistry(), nil) })
}
