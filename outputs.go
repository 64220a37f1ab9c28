package layershell

import (
	"sync"

	"github.com/neurlang/wayland/wl"

	"github.com/wlkit/layershell/xdgoutput"
)

// outputState is the set of properties a compositor describes an output
// with. It accumulates in Output.pending and becomes visible only on done.
type outputState struct {
	x, y           int32
	width, height  int32
	physicalWidth  int32
	physicalHeight int32
	refresh        int32
	scale          int32
	transform      int32
	maker, model   string
	logicalX       int32
	logicalY       int32
	logicalWidth   int32
	logicalHeight  int32
	name           string
	description    string
}

// Output is one compositor output. Property events arrive in bursts; the
// burst is committed atomically when the done marker lands, so readers never
// observe a half-applied burst.
type Output struct {
	registryName uint32
	proxy        *wl.Output
	xdg          *xdgoutput.Output

	mu      sync.RWMutex
	pending outputState
	current outputState
	ready   bool
}

// ID returns the registry name of the output. It identifies the output for
// the lifetime of the connection.
func (o *Output) ID() uint32 { return o.registryName }

// Name returns the compositor-assigned output name ("DP-1", "HDMI-A-2"),
// empty until the compositor supports xdg-output and has sent it.
func (o *Output) Name() string {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return o.current.name
}

// Description returns the human-readable output description, if any.
func (o *Output) Description() string {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return o.current.description
}

// Position returns the output position in the global compositor space.
func (o *Output) Position() (x, y int32) {
	o.mu.RLock()
	defer o.mu.RUnlock()
	if o.current.logicalWidth != 0 {
		return o.current.logicalX, o.current.logicalY
	}
	return o.current.x, o.current.y
}

// Size returns the output size in logical pixels. Falls back to the current
// mode divided by scale when xdg-output is unavailable.
func (o *Output) Size() (width, height int32) {
	o.mu.RLock()
	defer o.mu.RUnlock()
	if o.current.logicalWidth != 0 {
		return o.current.logicalWidth, o.current.logicalHeight
	}
	s := o.current.scale
	if s < 1 {
		s = 1
	}
	return o.current.width / s, o.current.height / s
}

// PixelSize returns the current mode size in device pixels.
func (o *Output) PixelSize() (width, height int32) {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return o.current.width, o.current.height
}

// Scale returns the output scale factor, at least 1.
func (o *Output) Scale() int32 {
	o.mu.RLock()
	defer o.mu.RUnlock()
	if o.current.scale < 1 {
		return 1
	}
	return o.current.scale
}

// Refresh returns the refresh rate of the current mode in mHz.
func (o *Output) Refresh() int32 {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return o.current.refresh
}

// Model returns the output make and model as reported by the compositor.
func (o *Output) Model() (maker, model string) {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return o.current.maker, o.current.model
}

// Ready reports whether the first property burst has been committed.
func (o *Output) Ready() bool {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return o.ready
}

// Pending mutators, called from event handlers. Values stage in pending
// until commit.

func (o *Output) applyGeometry(x, y, physW, physH, transform int32, maker, model string) {
	o.mu.Lock()
	o.pending.x = x
	o.pending.y = y
	o.pending.physicalWidth = physW
	o.pending.physicalHeight = physH
	o.pending.transform = transform
	o.pending.maker = maker
	o.pending.model = model
	o.mu.Unlock()
}

func (o *Output) applyMode(flags uint32, width, height, refresh int32) {
	if flags&wl.OutputModeCurrent == 0 {
		return
	}
	o.mu.Lock()
	o.pending.width = width
	o.pending.height = height
	o.pending.refresh = refresh
	o.mu.Unlock()
}

func (o *Output) applyScale(factor int32) {
	o.mu.Lock()
	o.pending.scale = factor
	o.mu.Unlock()
}

func (o *Output) applyLogicalPosition(x, y int32) {
	o.mu.Lock()
	o.pending.logicalX = x
	o.pending.logicalY = y
	o.mu.Unlock()
}

func (o *Output) applyLogicalSize(w, h int32) {
	o.mu.Lock()
	o.pending.logicalWidth = w
	o.pending.logicalHeight = h
	o.mu.Unlock()
}

func (o *Output) applyName(name string) {
	o.mu.Lock()
	o.pending.name = name
	o.mu.Unlock()
}

func (o *Output) applyDescription(desc string) {
	o.mu.Lock()
	o.pending.description = desc
	o.mu.Unlock()
}

// commit makes the pending burst visible.
func (o *Output) commit() {
	o.mu.Lock()
	o.current = o.pending
	o.ready = true
	o.mu.Unlock()
	log.Debug().
		Uint32("output", o.registryName).
		Str("name", o.current.name).
		Int32("width", o.current.width).
		Int32("height", o.current.height).
		Int32("scale", o.current.scale).
		Msg("output state committed")
}

// wl_output handlers. The Output registers itself for its own proxy events.

func (o *Output) HandleOutputGeometry(ev wl.OutputGeometryEvent) {
	o.applyGeometry(ev.X, ev.Y, ev.PhysicalWidth, ev.PhysicalHeight, ev.Transform, ev.Make, ev.Model)
}

func (o *Output) HandleOutputMode(ev wl.OutputModeEvent) {
	o.applyMode(ev.Flags, ev.Width, ev.Height, ev.Refresh)
}

func (o *Output) HandleOutputScale(ev wl.OutputScaleEvent) {
	o.applyScale(ev.Factor)
}

func (o *Output) HandleOutputDone(ev wl.OutputDoneEvent) {
	o.commit()
}

// xdgOutputListener forwards zxdg_output_v1 events into the same pending
// state. Separate type because its done handler would collide with the
// wl_output one.
type xdgOutputListener struct {
	out *Output
}

func (l *xdgOutputListener) HandleOutputLogicalPosition(ev xdgoutput.OutputLogicalPositionEvent) {
	l.out.applyLogicalPosition(ev.X, ev.Y)
}

func (l *xdgOutputListener) HandleOutputLogicalSize(ev xdgoutput.OutputLogicalSizeEvent) {
	l.out.applyLogicalSize(ev.Width, ev.Height)
}

func (l *xdgOutputListener) HandleOutputDone(ev xdgoutput.OutputDoneEvent) {
	// Older compositors send this instead of wl_output.done.
	l.out.commit()
}

func (l *xdgOutputListener) HandleOutputName(ev xdgoutput.OutputNameEvent) {
	l.out.applyName(ev.Name)
}

func (l *xdgOutputListener) HandleOutputDescription(ev xdgoutput.OutputDescriptionEvent) {
	l.out.applyDescription(ev.Description)
}

// OutputRegistry tracks the outputs advertised by the compositor in arrival
// order.
type OutputRegistry struct {
	mu     sync.RWMutex
	order  []uint32
	byName map[uint32]*Output
}

func newOutputRegistry() *OutputRegistry {
	return &OutputRegistry{byName: make(map[uint32]*Output)}
}

// Outputs returns all known outputs in the order they were advertised.
func (r *OutputRegistry) Outputs() []*Output {
	r.mu.RLock()
	defer r.mu.RUnlock()
	outs := make([]*Output, 0, len(r.order))
	for _, name := range r.order {
		outs = append(outs, r.byName[name])
	}
	return outs
}

// Get looks an output up by its registry name.
func (r *OutputRegistry) Get(name uint32) (*Output, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	o, ok := r.byName[name]
	return o, ok
}

// ByName looks an output up by its xdg-output name, e.g. "DP-1".
func (r *OutputRegistry) ByName(name string) (*Output, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, rn := range r.order {
		if o := r.byName[rn]; o.Name() == name {
			return o, true
		}
	}
	return nil, false
}

func (r *OutputRegistry) add(o *Output) {
	r.mu.Lock()
	if _, dup := r.byName[o.registryName]; !dup {
		r.order = append(r.order, o.registryName)
		r.byName[o.registryName] = o
	}
	r.mu.Unlock()
}

// remove drops the output and returns it, or nil if unknown.
func (r *OutputRegistry) remove(name uint32) *Output {
	r.mu.Lock()
	defer r.mu.Unlock()
	o, ok := r.byName[name]
	if !ok {
		return nil
	}
	delete(r.byName, name)
	for i, n := range r.order {
		if n == name {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
	return o
}
