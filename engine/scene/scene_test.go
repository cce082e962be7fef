package scene

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/Carmen-Shannon/oxy-atmosphere/engine/atmosphere"
	"github.com/Carmen-Shannon/oxy-atmosphere/engine/atmosphere_pass"
	"github.com/Carmen-Shannon/oxy-atmosphere/engine/camera"
	"github.com/Carmen-Shannon/oxy-atmosphere/engine/game_object"
	"github.com/Carmen-Shannon/oxy-atmosphere/engine/light"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testAssets = atmosphere_pass.AssetMap{
	Meshes:  map[string]atmosphere_pass.MeshHandle{atmosphere_pass.MeshName: "sphere"},
	Shaders: map[string]atmosphere_pass.ShaderHandle{atmosphere_pass.ShaderName: "atmosphere"},
}

type bindingSink struct {
	atmosphere_pass.RecordingSink
	bound []camera.Camera
}

func (b *bindingSink) SetCamera(cam camera.Camera) {
	b.bound = append(b.bound, cam)
}

func newTestScene(t *testing.T, cam camera.Camera, sink atmosphere_pass.DrawSink, opts ...SceneBuilderOption) Scene {
	t.Helper()
	s := NewScene("test", cam, sink, append([]SceneBuilderOption{WithComputeWorkers(2)}, opts...)...)
	t.Cleanup(s.Close)
	require.NoError(t, s.LoadResources(context.Background(), testAssets))
	return s
}

type activeGauge struct {
	mu     sync.Mutex
	values []int
}

func (g *activeGauge) SetActiveInstances(n int) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.values = append(g.values, n)
}
func (g *activeGauge) SetCameraInside(bool)          {}
func (g *activeGauge) IncDraw(string)                {}
func (g *activeGauge) IncDrawError(string)           {}
func (g *activeGauge) IncSkipped(string)             {}
func (g *activeGauge) ObserveSchedule(time.Duration) {}

func (g *activeGauge) recorded() []int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return append([]int(nil), g.values...)
}

func TestNewScene_PanicsOnNil(t *testing.T) {
	assert.Panics(t, func() { NewScene("x", nil, &atmosphere_pass.RecordingSink{}) })
	assert.Panics(t, func() { NewScene("x", camera.NewCamera(), nil) })
}

func TestScene_AddPlanetJoinsRegistry(t *testing.T) {
	s := newTestScene(t, camera.NewCamera(), &atmosphere_pass.RecordingSink{})

	p := s.AddPlanet("earth", atmosphere.NewProfile(), game_object.WithScale(2, 2, 2))
	assert.True(t, p.Instance.Enabled())
	assert.True(t, s.Registry().Contains(p.Instance))
	assert.Equal(t, "earth", p.Object.Name())
	assert.Len(t, s.Planets(), 1)
}

func TestScene_PlanetWithoutProfileIsNotActive(t *testing.T) {
	s := newTestScene(t, camera.NewCamera(), &atmosphere_pass.RecordingSink{})

	p := s.AddPlanet("rock", nil)
	assert.False(t, s.Registry().Contains(p.Instance))
	assert.Len(t, s.Planets(), 1)
}

func TestScene_RemovePlanet(t *testing.T) {
	s := newTestScene(t, camera.NewCamera(), &atmosphere_pass.RecordingSink{})
	first := s.AddPlanet("a", atmosphere.NewProfile())
	second := s.AddPlanet("b", atmosphere.NewProfile(), game_object.WithPosition(10, 0, 0))

	assert.True(t, s.RemovePlanet(first.Instance.ID()))
	assert.False(t, s.RemovePlanet(first.Instance.ID()))
	assert.False(t, first.Instance.Enabled())
	assert.False(t, s.Registry().Contains(first.Instance))

	planets := s.Planets()
	require.Len(t, planets, 1)
	assert.Equal(t, second.Instance.ID(), planets[0].Instance.ID())
}

func TestScene_RenderOutside(t *testing.T) {
	sink := &bindingSink{}
	cam := camera.NewCamera(camera.WithPosition(0, 0, 5))
	s := newTestScene(t, cam, sink)
	p := s.AddPlanet("earth", atmosphere.NewProfile())

	report, err := s.Render(context.Background())
	require.NoError(t, err)

	assert.Equal(t, uint64(1), report.Frame)
	assert.Equal(t, atmosphere_pass.FrameExterior, report.State)
	assert.Equal(t, []uint64{p.Instance.ID()}, report.Exterior)
	assert.Len(t, sink.Commands(), 1)
	require.Len(t, sink.bound, 1)
	assert.Same(t, cam, sink.bound[0])
}

func TestScene_RenderInsideDrawsBothPasses(t *testing.T) {
	sink := &atmosphere_pass.RecordingSink{}
	s := newTestScene(t, camera.NewCamera(camera.WithPosition(0, 0, 1)), sink)
	s.AddPlanet("earth", atmosphere.NewProfile())

	report, err := s.Render(context.Background())
	require.NoError(t, err)

	assert.True(t, report.CameraInside)
	cmds := sink.Commands()
	require.Len(t, cmds, 2)
	assert.Equal(t, atmosphere_pass.PassExterior, cmds[0].Pass)
	assert.Equal(t, atmosphere_pass.PassInterior, cmds[1].Pass)
}

func TestScene_RenderFrameNumbersIncrease(t *testing.T) {
	sink := &atmosphere_pass.RecordingSink{}
	s := newTestScene(t, camera.NewCamera(), sink)
	s.AddPlanet("earth", atmosphere.NewProfile())

	for range 3 {
		_, err := s.Render(context.Background())
		require.NoError(t, err)
	}
	assert.Equal(t, []uint64{1, 2, 3}, sink.Frames())
}

func TestScene_RenderUsesSceneLights(t *testing.T) {
	sink := &atmosphere_pass.RecordingSink{}
	s := newTestScene(t, camera.NewCamera(), sink,
		WithLights(light.NewLight(light.LightTypeDirectional, light.WithDirection(0, -1, 0))))
	s.AddPlanet("earth", atmosphere.NewProfile())
	assert.Len(t, s.Lights(), 1)

	report, err := s.Render(context.Background())
	require.NoError(t, err)
	assert.Equal(t, atmosphere_pass.SunDirection(s.Lights()), report.SunDirection)
}

func TestScene_AdvanceRotatesPlanets(t *testing.T) {
	s := newTestScene(t, camera.NewCamera(), &atmosphere_pass.RecordingSink{})
	p := s.AddPlanet("earth", atmosphere.NewProfile(), game_object.WithRotationSpeed(0, 1, 0))

	s.Advance(0.5)
	assert.InDelta(t, 0.5, p.Object.Rotation()[1], 1e-6)
}

func TestScene_SetActiveAndCamera(t *testing.T) {
	s := newTestScene(t, camera.NewCamera(), &atmosphere_pass.RecordingSink{}, WithActive(false))
	assert.False(t, s.Active())
	s.SetActive(true)
	assert.True(t, s.Active())

	cam := camera.NewCamera(camera.WithName("other"))
	s.SetCamera(cam)
	s.SetCamera(nil)
	assert.Same(t, cam, s.Camera())
}

func TestScene_MembershipChangesReachMetrics(t *testing.T) {
	gauge := &activeGauge{}
	s := newTestScene(t, camera.NewCamera(), &atmosphere_pass.RecordingSink{}, WithMetrics(gauge))

	earth := s.AddPlanet("earth", atmosphere.NewProfile())
	s.AddPlanet("mars", atmosphere.NewProfile())
	s.AddPlanet("rock", nil)
	assert.Equal(t, []int{1, 2}, gauge.recorded())

	require.True(t, s.RemovePlanet(earth.Instance.ID()))
	assert.Equal(t, []int{1, 2, 1}, gauge.recorded())
}
