package layershell

import (
	"image"
	"sync"

	"github.com/neurlang/wayland/wl"
	"github.com/neurlang/wayland/wlclient"
	"github.com/pkg/errors"

	"github.com/wlkit/layershell/wlr"
	"github.com/wlkit/layershell/xdgoutput"
)

// Versions requested for the core globals.
const (
	compositorVersion uint32 = 4
	shmVersion        uint32 = 1
	seatVersion       uint32 = 7
	outputVersion     uint32 = 3
)

// Client owns the compositor connection and everything discovered on it.
// All event callbacks fire on the goroutine that calls Dispatch or Run.
type Client struct {
	display    *wl.Display
	registry   *wl.Registry
	compositor *wl.Compositor
	shm        *wl.Shm
	seat       *wl.Seat
	shell      *wlr.LayerShell
	xdgManager *xdgoutput.Manager

	outputs  *OutputRegistry
	input    *inputRouter
	surfaces map[uint32]*LayerSurface

	done     chan struct{}
	stopOnce sync.Once

	// OnOutputAdded fires when a new output global appears, before its
	// first property burst is committed. Check Output.Ready.
	OnOutputAdded func(*Output)
	// OnOutputRemoved fires after the output left the registry and its
	// surfaces were detached.
	OnOutputRemoved func(*Output)
}

// Connect dials the compositor named by WAYLAND_DISPLAY and discovers the
// globals this library needs. It fails with a ProtocolViolation if the
// compositor does not expose zwlr_layer_shell_v1.
func Connect() (*Client, error) {
	display, err := wlclient.DisplayConnect(nil)
	if err != nil {
		return nil, &ConnectionError{Err: err}
	}

	c := &Client{
		display:  display,
		outputs:  newOutputRegistry(),
		surfaces: make(map[uint32]*LayerSurface),
		done:     make(chan struct{}),
	}
	c.input = newInputRouter(c.surfaceByID)

	c.registry, err = display.GetRegistry()
	if err != nil {
		return nil, &ConnectionError{Err: errors.Wrap(err, "get registry")}
	}
	c.registry.AddGlobalHandler(c)
	c.registry.AddGlobalRemoveHandler(c)

	if err := wlclient.DisplayRoundtrip(display); err != nil {
		return nil, &ConnectionError{Err: errors.Wrap(err, "registry roundtrip")}
	}

	if c.compositor == nil {
		return nil, &ConnectionError{Err: errors.New("compositor global missing")}
	}
	if c.shm == nil {
		return nil, &ConnectionError{Err: errors.New("wl_shm global missing")}
	}
	if c.shell == nil {
		return nil, &ProtocolViolation{
			Object: "wl_registry",
			Reason: "compositor does not support " + wlr.InterfaceName,
		}
	}

	// A second roundtrip collects the initial output property bursts.
	if err := wlclient.DisplayRoundtrip(display); err != nil {
		return nil, &ConnectionError{Err: errors.Wrap(err, "output roundtrip")}
	}

	log.Info().Int("outputs", len(c.outputs.Outputs())).Msg("connected")
	return c, nil
}

// HandleRegistryGlobal binds the globals this library cares about.
func (c *Client) HandleRegistryGlobal(ev wl.RegistryGlobalEvent) {
	switch ev.Interface {
	case "wl_compositor":
		c.compositor = wlclient.RegistryBindCompositorInterface(c.registry, ev.Name, compositorVersion)
	case "wl_shm":
		c.shm = wlclient.RegistryBindShmInterface(c.registry, ev.Name, shmVersion)
	case "wl_seat":
		if c.seat == nil {
			c.seat = wlclient.RegistryBindSeatInterface(c.registry, ev.Name, seatVersion)
			c.input.bindSeat(c.seat)
		}
	case "wl_output":
		proxy := wlclient.RegistryBindOutputInterface(c.registry, ev.Name, outputVersion)
		o := &Output{registryName: ev.Name, proxy: proxy}
		proxy.AddGeometryHandler(o)
		proxy.AddModeHandler(o)
		proxy.AddScaleHandler(o)
		proxy.AddDoneHandler(o)
		if c.xdgManager != nil {
			c.attachXdgOutput(o)
		}
		c.outputs.add(o)
		log.Debug().Uint32("output", ev.Name).Msg("output added")
		if c.OnOutputAdded != nil {
			c.OnOutputAdded(o)
		}
	case wlr.InterfaceName:
		c.shell = wlr.BindLayerShell(c.registry, ev.Name, ev.Version)
	case xdgoutput.InterfaceName:
		c.xdgManager = xdgoutput.BindManager(c.registry, ev.Name, ev.Version)
		for _, o := range c.outputs.Outputs() {
			if o.xdg == nil {
				c.attachXdgOutput(o)
			}
		}
	}
}

// HandleRegistryGlobalRemove detaches surfaces bound to a removed output.
func (c *Client) HandleRegistryGlobalRemove(ev wl.RegistryGlobalRemoveEvent) {
	o := c.outputs.remove(ev.Name)
	if o == nil {
		return
	}
	log.Info().Uint32("output", ev.Name).Str("name", o.Name()).Msg("output removed")
	for _, s := range c.surfaceList() {
		if s.cfg.Output == o {
			s.detach()
			c.input.detachSurface(s)
		}
	}
	if c.OnOutputRemoved != nil {
		c.OnOutputRemoved(o)
	}
}

func (c *Client) attachXdgOutput(o *Output) {
	xdg, err := c.xdgManager.GetXdgOutput(o.proxy)
	if err != nil {
		log.Error().Err(err).Uint32("output", o.registryName).Msg("get xdg output failed")
		return
	}
	o.xdg = xdg
	xdgoutput.OutputAddListener(xdg, &xdgOutputListener{out: o})
}

// Outputs returns the output registry.
func (c *Client) Outputs() *OutputRegistry { return c.outputs }

// CreateLayerSurface creates a surface with the layer shell role and starts
// the configure handshake. The surface cannot present buffers until the
// first configure; see WaitForConfigure.
func (c *Client) CreateLayerSurface(cfg Config) (*LayerSurface, error) {
	remote, err := c.newSurfaceRemote(cfg)
	if err != nil {
		return nil, err
	}
	s := newLayerSurface(c, remote, cfg)
	c.listenSurface(remote, s)
	c.rememberSurface(s)
	if err := s.start(); err != nil {
		s.Destroy()
		return nil, err
	}
	return s, nil
}

func (c *Client) newSurfaceRemote(cfg Config) (*wlrRemote, error) {
	surface, err := c.compositor.CreateSurface()
	if err != nil {
		return nil, &ConnectionError{Err: errors.Wrap(err, "create surface")}
	}
	var outputProxy *wl.Output
	if cfg.Output != nil {
		outputProxy = cfg.Output.proxy
	}
	layer, err := c.shell.GetLayerSurface(surface, outputProxy, uint32(cfg.Layer), cfg.withDefaults().Namespace)
	if err != nil {
		return nil, &ConnectionError{Err: errors.Wrap(err, "get layer surface")}
	}
	return &wlrRemote{
		surface: surface,
		layer:   layer,
		buffers: newSurfaceBuffers(c.shm),
	}, nil
}

func (c *Client) listenSurface(remote *wlrRemote, s *LayerSurface) {
	wlr.LayerSurfaceAddListener(remote.layer, &surfaceListener{s: s})
}

func (c *Client) rememberSurface(s *LayerSurface) {
	c.surfaces[s.remote.ID()] = s
}

func (c *Client) forgetSurface(s *LayerSurface) {
	delete(c.surfaces, s.remote.ID())
	c.input.detachSurface(s)
}

func (c *Client) surfaceByID(id uint32) *LayerSurface {
	return c.surfaces[id]
}

func (c *Client) surfaceList() []*LayerSurface {
	list := make([]*LayerSurface, 0, len(c.surfaces))
	for _, s := range c.surfaces {
		list = append(list, s)
	}
	return list
}

// Dispatch blocks until the connection delivers a batch of events and runs
// their handlers.
func (c *Client) Dispatch() error {
	if err := wlclient.DisplayDispatch(c.display); err != nil {
		return &ConnectionError{Err: err}
	}
	return nil
}

// Roundtrip flushes outgoing requests and waits until the compositor has
// processed them all.
func (c *Client) Roundtrip() error {
	if err := wlclient.DisplayRoundtrip(c.display); err != nil {
		return &ConnectionError{Err: err}
	}
	return nil
}

// Close destroys all surfaces and disconnects. The Client is unusable
// afterwards.
func (c *Client) Close() {
	c.Stop()
	for _, s := range c.surfaceList() {
		s.Destroy()
	}
	if c.xdgManager != nil {
		_ = c.xdgManager.Destroy()
	}
	if c.shell != nil {
		_ = c.shell.Destroy()
	}
	wlclient.DisplayDisconnect(c.display)
	log.Info().Msg("disconnected")
}

// surfaceListener forwards protocol events into the surface state machine.
type surfaceListener struct {
	s *LayerSurface
}

func (l *surfaceListener) HandleLayerSurfaceConfigure(ev wlr.LayerSurfaceConfigureEvent) {
	l.s.handleConfigure(ev.Serial, ev.Width, ev.Height)
}

func (l *surfaceListener) HandleLayerSurfaceClosed(ev wlr.LayerSurfaceClosedEvent) {
	l.s.handleClosed()
}

// wlrRemote is the live surfaceRemote: one wl_surface with the layer role
// plus its shm backing.
type wlrRemote struct {
	surface   *wl.Surface
	layer     *wlr.LayerSurface
	buffers   *surfaceBuffers
	destroyed bool
}

func (r *wlrRemote) ID() uint32 { return uint32(r.surface.Id()) }

func (r *wlrRemote) ApplyConfig(cfg Config) error {
	if err := r.layer.SetAnchor(uint32(cfg.Anchor)); err != nil {
		return errors.Wrap(err, "set_anchor")
	}
	if err := r.layer.SetMargin(cfg.Margins.Top, cfg.Margins.Right, cfg.Margins.Bottom, cfg.Margins.Left); err != nil {
		return errors.Wrap(err, "set_margin")
	}
	if err := r.layer.SetExclusiveZone(cfg.ExclusiveZone); err != nil {
		return errors.Wrap(err, "set_exclusive_zone")
	}
	if err := r.layer.SetKeyboardInteractivity(uint32(cfg.Keyboard)); err != nil {
		return errors.Wrap(err, "set_keyboard_interactivity")
	}
	if err := r.layer.SetSize(cfg.Width, cfg.Height); err != nil {
		return errors.Wrap(err, "set_size")
	}
	return errors.Wrap(r.surface.Commit(), "commit")
}

func (r *wlrRemote) SetSize(width, height uint32) error {
	return r.layer.SetSize(width, height)
}

func (r *wlrRemote) SetAnchor(a Anchor) error {
	return r.layer.SetAnchor(uint32(a))
}

func (r *wlrRemote) SetExclusiveZone(zone int32) error {
	return r.layer.SetExclusiveZone(zone)
}

func (r *wlrRemote) SetMargins(m Margins) error {
	return r.layer.SetMargin(m.Top, m.Right, m.Bottom, m.Left)
}

func (r *wlrRemote) SetKeyboardInteractivity(mode KeyboardMode) error {
	return r.layer.SetKeyboardInteractivity(uint32(mode))
}

func (r *wlrRemote) SetLayer(l Layer) error {
	return r.layer.SetLayer(uint32(l))
}

func (r *wlrRemote) AckConfigure(serial uint32) error {
	return r.layer.AckConfigure(serial)
}

func (r *wlrRemote) Commit() error {
	return r.surface.Commit()
}

func (r *wlrRemote) Frame(done func()) error {
	cb, err := r.surface.Frame()
	if err != nil {
		return err
	}
	cb.AddDoneHandler(&frameListener{fn: done})
	return nil
}

func (r *wlrRemote) Present(img *image.RGBA) error {
	b := img.Bounds()
	slot, err := r.buffers.acquire(int32(b.Dx()), int32(b.Dy()))
	if err != nil {
		return err
	}
	copyRGBAToARGB(slot.data, int(r.buffers.stride), img)
	if err := r.surface.Attach(slot.buffer, 0, 0); err != nil {
		return errors.Wrap(err, "attach")
	}
	if err := r.surface.Damage(0, 0, int32(b.Dx()), int32(b.Dy())); err != nil {
		return errors.Wrap(err, "damage")
	}
	slot.busy = true
	return errors.Wrap(r.surface.Commit(), "commit")
}

func (r *wlrRemote) Destroy() {
	if r.destroyed {
		return
	}
	r.destroyed = true
	r.buffers.destroy()
	_ = r.layer.Destroy()
	_ = r.surface.Destroy()
}

// frameListener runs a frame callback exactly once.
type frameListener struct {
	fn   func()
	done bool
}

func (f *frameListener) HandleCallbackDone(ev wl.CallbackDoneEvent) {
	if f.done {
		return
	}
	f.done = true
	f.fn()
}
