package atmosphere_pass

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/Carmen-Shannon/automation/tools/worker"
	"github.com/Carmen-Shannon/oxy-atmosphere/common"
	"github.com/Carmen-Shannon/oxy-atmosphere/engine/camera"
	"github.com/Carmen-Shannon/oxy-atmosphere/engine/light"
	"github.com/Carmen-Shannon/oxy-atmosphere/engine/planet_atmosphere"
	"github.com/Carmen-Shannon/oxy-atmosphere/internal/logging"
	"github.com/Carmen-Shannon/oxy-atmosphere/internal/observability"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// ErrNoCamera is returned by Schedule when the frame input carries no camera.
var ErrNoCamera = errors.New("atmosphere schedule: no camera")

// FallbackSunDirection is the sun direction used when the scene has no principal directional light.
var FallbackSunDirection = [3]float32{0, -1, 0}

// FrameState is the terminal state a Schedule call reached.
type FrameState int

const (
	// FrameNotReady means the mesh or shader is unavailable; nothing was submitted.
	FrameNotReady FrameState = iota
	// FrameCameraSkipped means the camera is a preview or non-base, non-overlay camera.
	FrameCameraSkipped
	// FrameIdle means the registry had no active instances.
	FrameIdle
	// FrameExterior means only the exterior pass ran.
	FrameExterior
	// FrameInterior means the camera was inside an atmosphere and both passes ran.
	FrameInterior
)

func (s FrameState) String() string {
	switch s {
	case FrameNotReady:
		return "not_ready"
	case FrameCameraSkipped:
		return "camera_skipped"
	case FrameIdle:
		return "idle"
	case FrameExterior:
		return "exterior"
	case FrameInterior:
		return "interior"
	default:
		return "unknown"
	}
}

// FrameInput is everything the scheduler reads about the frame besides the registry.
type FrameInput struct {
	Frame  uint64
	Camera camera.Camera
	Lights []light.Light
}

// FrameReport summarizes one Schedule call.
type FrameReport struct {
	Frame        uint64
	State        FrameState
	CameraInside bool
	SunDirection [3]float32
	// Exterior and Interior list the instance IDs drawn by each pass, in submission order.
	Exterior []uint64
	Interior []uint64
	// Skipped maps instance IDs that produced no draw to the reason.
	Skipped map[uint64]SkipReason
	// Failed counts draws the sink rejected.
	Failed int
}

// Draws returns the total number of draws the sink accepted.
func (r FrameReport) Draws() int {
	return len(r.Exterior) + len(r.Interior)
}

// passSchedulerImpl is the implementation of the PassScheduler interface.
type passSchedulerImpl struct {
	mu *sync.Mutex

	registry planet_atmosphere.Registry
	sink     DrawSink
	res      resources

	log     logging.Logger
	metrics MetricsRecorder
	tracer  trace.Tracer

	workers int
	pool    worker.DynamicWorkerPool
}

// PassScheduler submits the exterior and interior atmosphere passes for a frame.
//
// Per camera, the scheduler reads the registry's active instances, builds one parameter set
// per instance, submits the exterior pass, tests whether the camera sits inside any
// atmosphere, and if so submits the interior pass with the same parameters. Instances with
// invalid settings or degenerate geometry are skipped without affecting the others.
type PassScheduler interface {
	// LoadResources resolves the proxy mesh and shader. Until it succeeds every Schedule call is a no-op.
	// A failure is logged here, once, and not on every frame.
	//
	// Parameters:
	//   - ctx: context for logging
	//   - assets: the asset collaborator
	//
	// Returns:
	//   - error: ErrMeshUnavailable or ErrShaderUnavailable on failure
	LoadResources(ctx context.Context, assets AssetSource) error

	// Status returns the current resource status.
	//
	// Returns:
	//   - ResourceStatus: ready, not loaded, mesh missing or shader missing
	Status() ResourceStatus

	// Schedule runs the pass state machine for one camera.
	//
	// Parameters:
	//   - ctx: context carrying the parent trace span
	//   - in: frame number, camera and scene lights
	//
	// Returns:
	//   - FrameReport: what was drawn and skipped
	//   - error: ErrNoCamera, or the joined sink errors; the report is valid either way
	Schedule(ctx context.Context, in FrameInput) (FrameReport, error)

	// Close stops the parameter worker pool.
	Close()
}

var _ PassScheduler = &passSchedulerImpl{}

// NewPassScheduler creates a PassScheduler reading from the given registry and drawing into the given sink.
// Panics if either is nil.
//
// Parameters:
//   - registry: the instance registry to schedule
//   - sink: the draw submission sink
//   - opts: variadic list of PassSchedulerBuilderOption functions
//
// Returns:
//   - PassScheduler: the new scheduler
func NewPassScheduler(registry planet_atmosphere.Registry, sink DrawSink, opts ...PassSchedulerBuilderOption) PassScheduler {
	if registry == nil {
		panic("atmosphere_pass: nil registry")
	}
	if sink == nil {
		panic("atmosphere_pass: nil draw sink")
	}
	ps := &passSchedulerImpl{
		mu:       &sync.Mutex{},
		registry: registry,
		sink:     sink,
		log:      logging.Noop(),
		metrics:  noopRecorder{},
		workers:  defaultWorkers(),
	}
	for _, opt := range opts {
		opt(ps)
	}
	if ps.tracer == nil {
		ps.tracer = defaultTracer()
	}
	ps.pool = worker.NewDynamicWorkerPool(ps.workers, 256, 1*time.Second)
	return ps
}

func (ps *passSchedulerImpl) LoadResources(ctx context.Context, assets AssetSource) error {
	res, err := resolveResources(assets)

	ps.mu.Lock()
	ps.res = res
	ps.mu.Unlock()

	if err != nil {
		ps.log.Error(ctx, "atmosphere resources unavailable, rendering disabled",
			logging.String("mesh", MeshName),
			logging.String("shader", ShaderName),
			logging.String("status", res.status.String()),
			logging.Err(err),
		)
		return fmt.Errorf("load atmosphere resources: %w", err)
	}
	ps.log.Debug(ctx, "atmosphere resources loaded", logging.String("mesh", string(res.mesh)), logging.String("shader", string(res.shader)))
	return nil
}

func (ps *passSchedulerImpl) Status() ResourceStatus {
	ps.mu.Lock()
	defer ps.mu.Unlock()
	return ps.res.status
}

func (ps *passSchedulerImpl) Close() {
	ps.pool.Stop()
}

func (ps *passSchedulerImpl) Schedule(ctx context.Context, in FrameInput) (FrameReport, error) {
	start := time.Now()
	ctx, span := ps.tracer.Start(ctx, "atmosphere.Schedule", trace.WithAttributes(observability.FrameKey.Int64(int64(in.Frame))))
	defer span.End()

	report := FrameReport{Frame: in.Frame, SunDirection: SunDirection(in.Lights)}
	defer func() {
		span.SetAttributes(
			attribute.String("state", report.State.String()),
			attribute.Int("draws", report.Draws()),
			attribute.Bool("camera_inside", report.CameraInside),
		)
	}()

	ps.mu.Lock()
	res := ps.res
	ps.mu.Unlock()
	if res.status != ResourcesReady {
		report.State = FrameNotReady
		return report, nil
	}

	if in.Camera == nil {
		span.RecordError(ErrNoCamera)
		return report, ErrNoCamera
	}
	if !participates(in.Camera) {
		report.State = FrameCameraSkipped
		return report, nil
	}

	active := ps.registry.ActiveInstances()
	ps.metrics.SetActiveInstances(len(active))
	if len(active) == 0 {
		report.State = FrameIdle
		ps.metrics.SetCameraInside(false)
		ps.metrics.ObserveSchedule(time.Since(start))
		return report, nil
	}

	prep, snaps := ps.prepare(active, report.SunDirection)
	ps.sink.BeginFrame(in.Frame)

	var errs []error
	report.State = FrameExterior
	report.Exterior, errs = ps.submitPass(ctx, PassExterior, prep, res, &report, errs)

	report.CameraInside = cameraInside(in.Camera.Position(), snaps)
	ps.metrics.SetCameraInside(report.CameraInside)
	if report.CameraInside {
		report.State = FrameInterior
		report.Interior, errs = ps.submitPass(ctx, PassInterior, prep, res, &report, errs)
	}

	for _, p := range prep {
		if p.skip == SkipNone {
			continue
		}
		if report.Skipped == nil {
			report.Skipped = make(map[uint64]SkipReason)
		}
		report.Skipped[p.id] = p.skip
		ps.metrics.IncSkipped(string(p.skip))
	}

	ps.metrics.ObserveSchedule(time.Since(start))
	err := errors.Join(errs...)
	if err != nil {
		span.RecordError(err)
	}
	return report, err
}

// prepare snapshots every active instance and builds its parameter set on the worker pool.
// Results are indexed by registry position, so submission order is unaffected by scheduling.
func (ps *passSchedulerImpl) prepare(active []planet_atmosphere.Instance, sunDirection [3]float32) ([]prepared, []planet_atmosphere.Snapshot) {
	prep := make([]prepared, len(active))
	snaps := make([]planet_atmosphere.Snapshot, len(active))

	var wg sync.WaitGroup
	for idx, inst := range active {
		wg.Add(1)
		ps.pool.SubmitTask(worker.Task{
			ID: idx,
			Do: func() (any, error) {
				defer wg.Done()
				snap := inst.Snapshot()
				params, transform, skip := BuildParameterSet(snap, sunDirection)
				snaps[idx] = snap
				prep[idx] = prepared{id: snap.ID, params: params, transform: transform, skip: skip}
				return nil, nil
			},
		})
	}
	wg.Wait()
	return prep, snaps
}

func (ps *passSchedulerImpl) submitPass(ctx context.Context, pass PassKind, prep []prepared, res resources, report *FrameReport, errs []error) ([]uint64, []error) {
	var drawn []uint64
	for _, p := range prep {
		if p.skip != SkipNone {
			continue
		}
		cmd := DrawCommand{
			InstanceID: p.id,
			Mesh:       res.mesh,
			Shader:     res.shader,
			Transform:  p.transform,
			Pass:       pass,
			Params:     p.params.WithPass(pass),
		}
		if err := ps.sink.Submit(cmd); err != nil {
			report.Failed++
			ps.metrics.IncDrawError(pass.String())
			ps.log.Warn(ctx, "atmosphere draw rejected",
				logging.Uint64("instance", p.id),
				logging.String("pass", pass.String()),
				logging.Err(err),
			)
			errs = append(errs, fmt.Errorf("%s draw for instance %d: %w", pass, p.id, err))
			continue
		}
		ps.metrics.IncDraw(pass.String())
		drawn = append(drawn, p.id)
	}
	return drawn, errs
}

// SunDirection returns the normalized direction towards the sun: the negated forward vector of
// the principal directional light, or FallbackSunDirection when there is none.
//
// Parameters:
//   - lights: the scene's lights
//
// Returns:
//   - [3]float32: the unit sun direction
func SunDirection(lights []light.Light) [3]float32 {
	sun, ok := light.Principal(lights)
	if !ok {
		return FallbackSunDirection
	}
	dir := common.Normalize3(common.Negate3(sun.Direction()))
	if common.LengthSq3(dir) == 0 {
		return FallbackSunDirection
	}
	return dir
}

// participates reports whether atmosphere passes run for the camera.
func participates(cam camera.Camera) bool {
	if cam.Preview() {
		return false
	}
	rt := cam.RenderType()
	return rt == camera.RenderTypeBase || rt == camera.RenderTypeOverlay
}

// cameraInside reports whether the camera position lies strictly inside any valid instance's atmosphere radius.
func cameraInside(pos [3]float32, snaps []planet_atmosphere.Snapshot) bool {
	for _, s := range snaps {
		if s.Settings == nil {
			continue
		}
		if common.DistanceSq3(pos, s.Position) < s.AtmosphereRadius*s.AtmosphereRadius {
			return true
		}
	}
	return false
}
