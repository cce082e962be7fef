package atmosphere_pass

import "sync"

// MeshHandle identifies a mesh owned by the graphics backend.
type MeshHandle string

// ShaderHandle identifies a shader owned by the graphics backend.
type ShaderHandle string

// DrawCommand is one atmosphere draw: the proxy mesh, its world transform, the shading path
// and the named parameter bundle.
type DrawCommand struct {
	InstanceID uint64
	Mesh       MeshHandle
	Shader     ShaderHandle
	Transform  [16]float32
	Pass       PassKind
	Params     ParameterSet
}

// DrawSink accepts draw commands for the graphics backend.
// Implementations must preserve submission order within a frame.
type DrawSink interface {
	// BeginFrame is called once per scheduled frame before any Submit.
	//
	// Parameters:
	//   - frame: the frame number being scheduled
	BeginFrame(frame uint64)

	// Submit enqueues one draw.
	//
	// Parameters:
	//   - cmd: the draw to enqueue
	//
	// Returns:
	//   - error: non-nil if the backend rejected the draw
	Submit(cmd DrawCommand) error
}

// RecordingSink is a DrawSink that keeps every submitted command in order.
// Failing, when set, is consulted per command and its error returned instead of recording.
type RecordingSink struct {
	mu       sync.Mutex
	frames   []uint64
	commands []DrawCommand
	Failing  func(cmd DrawCommand) error
}

var _ DrawSink = &RecordingSink{}

func (r *RecordingSink) BeginFrame(frame uint64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.frames = append(r.frames, frame)
}

func (r *RecordingSink) Submit(cmd DrawCommand) error {
	if r.Failing != nil {
		if err := r.Failing(cmd); err != nil {
			return err
		}
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.commands = append(r.commands, cmd)
	return nil
}

// Commands returns a copy of the recorded commands.
func (r *RecordingSink) Commands() []DrawCommand {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]DrawCommand, len(r.commands))
	copy(out, r.commands)
	return out
}

// Frames returns the frame numbers passed to BeginFrame.
func (r *RecordingSink) Frames() []uint64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]uint64, len(r.frames))
	copy(out, r.frames)
	return out
}

// Reset drops everything recorded so far.
func (r *RecordingSink) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.frames = nil
	r.commands = nil
}

// NamedParams returns the named bundle of every recorded command, in order.
func (r *RecordingSink) NamedParams() []map[string]any {
	cmds := r.Commands()
	out := make([]map[string]any, 0, len(cmds))
	for _, c := range cmds {
		out = append(out, c.Params.Named())
	}
	return out
}
