package renderer

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"sync"

	"github.com/Carmen-Shannon/oxy-atmosphere/engine/atmosphere_pass"
	"github.com/Carmen-Shannon/oxy-atmosphere/engine/camera"
	"github.com/Carmen-Shannon/oxy-atmosphere/engine/renderer/mesh"
	"github.com/Carmen-Shannon/oxy-atmosphere/engine/renderer/pipeline"
	"github.com/Carmen-Shannon/oxy-atmosphere/engine/window"
	"github.com/Carmen-Shannon/oxy-atmosphere/internal/logging"
	"github.com/cogentcore/webgpu/wgpu"
)

// AtmosphereShaderSource is the built-in single-scattering atmosphere shader.
// Its bind groups match camera.GPUCameraUniform (group 0) and
// atmosphere_pass.GPUAtmosphereUniform (group 1).
//
//go:embed assets/atmosphere.wgsl
var AtmosphereShaderSource string

const (
	// ProxySphereSegments and ProxySphereRings set the tessellation of the built-in proxy mesh.
	ProxySphereSegments = 48
	ProxySphereRings    = 24
)

var ErrDuplicateAsset = errors.New("asset already registered")

// shaderPipelines holds the two pipelines a shader is compiled into.
// The exterior shell culls back faces; the interior shell culls front faces so
// the far side of the sphere is drawn while the camera is inside it.
type shaderPipelines struct {
	exterior pipeline.Pipeline
	interior pipeline.Pipeline
}

// renderer is the implementation of the Renderer interface.
type renderer struct {
	mu  *sync.Mutex
	log logging.Logger

	backendType RendererBackendType
	backend     RendererBackend

	meshes  map[atmosphere_pass.MeshHandle]*gpuMesh
	shaders map[atmosphere_pass.ShaderHandle]shaderPipelines

	frame    uint64
	frameErr error

	// Pre-creation config collected from builder options
	forceFallbackAdapter bool
	skipBuiltinAssets    bool
	pendingPresentMode   *PresentMode
	pendingMSAA          *MSAASampleCount
	pendingClearColor    *[4]float64
}

// Renderer draws atmosphere shells through WebGPU.
//
// A Renderer is both the DrawSink and the AssetSource of a PassScheduler: the scheduler resolves
// the proxy mesh and shader by name from it, then submits each frame's draws to it. The caller
// sets the camera before scheduling and calls Present once scheduling is done.
type Renderer interface {
	atmosphere_pass.DrawSink
	atmosphere_pass.AssetSource

	// RegisterMesh uploads a mesh and makes it resolvable by name.
	//
	// Parameters:
	//   - name: the asset name
	//   - m: the mesh geometry
	//
	// Returns:
	//   - error: ErrDuplicateAsset if the name is taken, or an upload error
	RegisterMesh(name string, m mesh.Mesh) error

	// RegisterShader compiles a WGSL module into exterior and interior pipelines and makes it
	// resolvable by name.
	//
	// Parameters:
	//   - name: the asset name
	//   - source: the WGSL source exposing vs_main and fs_main
	//
	// Returns:
	//   - error: ErrDuplicateAsset if the name is taken, or a pipeline creation error
	RegisterShader(name, source string) error

	// SetCamera uploads the view-projection and position of the camera for the next frame.
	//
	// Parameters:
	//   - cam: the camera being rendered
	SetCamera(cam camera.Camera)

	// Resize configures the underlying backend to handle a new surface size.
	//
	// Parameters:
	//   - width: the new width of the surface in pixels
	//   - height: the new height of the surface in pixels
	Resize(width, height int)

	// SetPresentMode changes the present mode, applied on the next Resize.
	//
	// Parameters:
	//   - mode: the PresentMode to use
	SetPresentMode(mode PresentMode)

	// Present finishes the frame opened by BeginFrame and shows it. When no frame was opened,
	// a clear-only frame is presented instead.
	//
	// Returns:
	//   - error: the error that prevented the frame from being acquired, if any
	Present() error

	// Release frees every GPU resource held by the renderer.
	Release()
}

var _ Renderer = &renderer{}

// NewRenderer creates a Renderer on the given window's surface and registers the built-in
// proxy sphere and atmosphere shader under atmosphere_pass.MeshName and atmosphere_pass.ShaderName.
//
// Parameters:
//   - backendType: the type of rendering backend to use (e.g., WGPU)
//   - win: the window providing the surface descriptor and initial size
//   - options: variadic list of RendererBuilderOption functions to configure the Renderer
//
// Returns:
//   - Renderer: the configured renderer
//   - error: an error if the built-in assets could not be created
func NewRenderer(backendType RendererBackendType, win window.Window, options ...RendererBuilderOption) (Renderer, error) {
	if win == nil {
		panic("renderer: window must not be nil")
	}
	r := &renderer{
		mu:          &sync.Mutex{},
		log:         logging.Noop(),
		backendType: backendType,
		meshes:      make(map[atmosphere_pass.MeshHandle]*gpuMesh),
		shaders:     make(map[atmosphere_pass.ShaderHandle]shaderPipelines),
	}

	for _, opt := range options {
		opt(r)
	}

	msaa := MSAA4x
	if r.pendingMSAA != nil {
		msaa = *r.pendingMSAA
	}

	cameraSize := uint64((&camera.GPUCameraUniform{}).Size())
	drawSize := uint64((&atmosphere_pass.GPUAtmosphereUniform{}).Size())
	switch backendType {
	case BackendTypeWGPU:
		fallthrough
	default:
		r.backend = newWGPURendererBackend(win.SurfaceDescriptor(), r.forceFallbackAdapter, msaa, cameraSize, drawSize)
	}

	if r.pendingPresentMode != nil {
		r.backend.SetPresentMode(*r.pendingPresentMode)
	}
	if r.pendingClearColor != nil {
		r.backend.SetClearColor(*r.pendingClearColor)
	}
	r.backend.ConfigureSurface(win.Width(), win.Height())

	if r.skipBuiltinAssets {
		return r, nil
	}

	sphere, err := mesh.NewUVSphere(atmosphere_pass.MeshRadius, ProxySphereSegments, ProxySphereRings)
	if err != nil {
		return nil, err
	}
	if err := r.RegisterMesh(atmosphere_pass.MeshName, sphere); err != nil {
		return nil, err
	}
	if err := r.RegisterShader(atmosphere_pass.ShaderName, AtmosphereShaderSource); err != nil {
		return nil, err
	}
	return r, nil
}

func (r *renderer) Mesh(name string) (atmosphere_pass.MeshHandle, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	h := atmosphere_pass.MeshHandle(name)
	_, ok := r.meshes[h]
	return h, ok
}

func (r *renderer) Shader(name string) (atmosphere_pass.ShaderHandle, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	h := atmosphere_pass.ShaderHandle(name)
	_, ok := r.shaders[h]
	return h, ok
}

func (r *renderer) RegisterMesh(name string, m mesh.Mesh) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	h := atmosphere_pass.MeshHandle(name)
	if _, ok := r.meshes[h]; ok {
		return fmt.Errorf("%w: mesh %s", ErrDuplicateAsset, name)
	}
	gm, err := r.backend.UploadMesh(name, m)
	if err != nil {
		return err
	}
	r.meshes[h] = gm
	r.log.Debug(context.Background(), "mesh registered",
		logging.String("mesh", name), logging.Int("indices", m.IndexCount()))
	return nil
}

func (r *renderer) RegisterShader(name, source string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	h := atmosphere_pass.ShaderHandle(name)
	if _, ok := r.shaders[h]; ok {
		return fmt.Errorf("%w: shader %s", ErrDuplicateAsset, name)
	}

	sp := shaderPipelines{
		exterior: pipeline.NewPipeline(name+"/"+atmosphere_pass.PassExterior.String(), source,
			pipeline.WithCullMode(wgpu.CullModeBack)),
		interior: pipeline.NewPipeline(name+"/"+atmosphere_pass.PassInterior.String(), source,
			pipeline.WithCullMode(wgpu.CullModeFront)),
	}
	for _, p := range []pipeline.Pipeline{sp.exterior, sp.interior} {
		if err := r.backend.RegisterRenderPipeline(p); err != nil {
			return fmt.Errorf("register %s: %w", p.PipelineKey(), err)
		}
	}
	r.shaders[h] = sp
	r.log.Debug(context.Background(), "shader registered", logging.String("shader", name))
	return nil
}

func (r *renderer) SetCamera(cam camera.Camera) {
	if cam == nil {
		return
	}
	u := cam.Uniform()
	r.backend.WriteCamera(u.Marshal())
}

func (r *renderer) BeginFrame(frame uint64) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.frame = frame
	r.frameErr = nil
	if r.backend.FrameActive() {
		return
	}
	if err := r.backend.BeginFrame(); err != nil {
		r.frameErr = fmt.Errorf("frame %d: %w", frame, err)
		r.log.Warn(context.Background(), "failed to acquire frame",
			logging.Uint64("frame", frame), logging.Err(err))
	}
}

func (r *renderer) Submit(cmd atmosphere_pass.DrawCommand) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.frameErr != nil {
		return r.frameErr
	}
	m, ok := r.meshes[cmd.Mesh]
	if !ok {
		return fmt.Errorf("%w: %s", atmosphere_pass.ErrMeshUnavailable, cmd.Mesh)
	}
	sp, ok := r.shaders[cmd.Shader]
	if !ok {
		return fmt.Errorf("%w: %s", atmosphere_pass.ErrShaderUnavailable, cmd.Shader)
	}

	p := sp.exterior
	if cmd.Pass == atmosphere_pass.PassInterior {
		p = sp.interior
	}
	u := atmosphere_pass.NewGPUAtmosphereUniform(cmd)
	if err := r.backend.Draw(p, m, u.Marshal()); err != nil {
		return fmt.Errorf("draw instance %d (%s): %w", cmd.InstanceID, cmd.Pass, err)
	}
	return nil
}

func (r *renderer) Resize(width, height int) {
	r.backend.ConfigureSurface(width, height)
}

func (r *renderer) SetPresentMode(mode PresentMode) {
	r.backend.SetPresentMode(mode)
}

func (r *renderer) Present() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	err := r.frameErr
	r.frameErr = nil
	if err != nil {
		return err
	}

	if !r.backend.FrameActive() {
		if err := r.backend.BeginFrame(); err != nil {
			return err
		}
	}
	r.backend.EndFrame()
	r.backend.Present()
	return nil
}

func (r *renderer) Release() {
	r.mu.Lock()
	defer r.mu.Unlock()

	for h, m := range r.meshes {
		m.release()
		delete(r.meshes, h)
	}
	for h, sp := range r.shaders {
		for _, p := range []pipeline.Pipeline{sp.exterior, sp.interior} {
			if rp := p.Pipeline(); rp != nil {
				rp.Release()
			}
		}
		delete(r.shaders, h)
	}
	r.backend.Release()
}
