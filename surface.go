package layershell

import (
	"image"

	"github.com/pkg/errors"

	"github.com/wlkit/layershell/wlr"
)

// Layer selects which compositor layer a surface renders in, bottom to top.
type Layer uint32

const (
	LayerBackground Layer = Layer(wlr.LayerBackground)
	LayerBottom     Layer = Layer(wlr.LayerBottom)
	LayerTop        Layer = Layer(wlr.LayerTop)
	LayerOverlay    Layer = Layer(wlr.LayerOverlay)
)

// Anchor is a bitfield of output edges a surface is pinned to.
type Anchor uint32

const (
	AnchorTop    Anchor = Anchor(wlr.AnchorTop)
	AnchorBottom Anchor = Anchor(wlr.AnchorBottom)
	AnchorLeft   Anchor = Anchor(wlr.AnchorLeft)
	AnchorRight  Anchor = Anchor(wlr.AnchorRight)
)

// KeyboardMode controls how a surface takes keyboard focus.
type KeyboardMode uint32

const (
	KeyboardNone      KeyboardMode = KeyboardMode(wlr.KeyboardInteractivityNone)
	KeyboardExclusive KeyboardMode = KeyboardMode(wlr.KeyboardInteractivityExclusive)
	KeyboardOnDemand  KeyboardMode = KeyboardMode(wlr.KeyboardInteractivityOnDemand)
)

// Margins are the distances kept from the anchored output edges.
type Margins struct {
	Top, Right, Bottom, Left int32
}

// Config describes a layer surface at creation time. A zero Width or Height
// leaves that axis to the compositor. ExclusiveZone -1 reserves the whole
// anchored edge, 0 reserves nothing. A nil Output lets the compositor pick.
type Config struct {
	Layer         Layer
	Anchor        Anchor
	Width         uint32
	Height        uint32
	ExclusiveZone int32
	Margins       Margins
	Keyboard      KeyboardMode
	Namespace     string
	Output        *Output
}

// DefaultConfig returns a config for a 30 px bar anchored to the top edge,
// spanning the output width, with an exclusive zone.
func DefaultConfig() Config {
	return Config{
		Layer:         LayerTop,
		Anchor:        AnchorTop | AnchorLeft | AnchorRight,
		Height:        30,
		ExclusiveZone: -1,
		Keyboard:      KeyboardOnDemand,
		Namespace:     "layershell",
	}
}

func (c Config) withDefaults() Config {
	if c.Namespace == "" {
		c.Namespace = "layershell"
	}
	return c
}

// Phase is the lifecycle state of a layer surface.
type Phase uint32

const (
	// PhaseCreated covers the window between object creation and the
	// initial commit.
	PhaseCreated Phase = iota
	// PhaseAwaitingConfigure waits for the first configure event.
	PhaseAwaitingConfigure
	// PhaseConfigured means the surface has a negotiated size and may
	// present buffers.
	PhaseConfigured
	// PhaseDetached means the bound output disappeared. Rebind or destroy.
	PhaseDetached
	// PhaseDestroyed is terminal, reached by Destroy or a closed event.
	PhaseDestroyed
)

func (p Phase) String() string {
	switch p {
	case PhaseCreated:
		return "created"
	case PhaseAwaitingConfigure:
		return "awaiting-configure"
	case PhaseConfigured:
		return "configured"
	case PhaseDetached:
		return "detached"
	case PhaseDestroyed:
		return "destroyed"
	default:
		return "unknown"
	}
}

// surfaceRemote is the protocol side of a layer surface. The live
// implementation talks zwlr_layer_surface_v1; tests substitute a recorder so
// the state machine can be driven with plain values.
type surfaceRemote interface {
	// ID returns the wl_surface object id, used as the input routing key.
	ID() uint32
	// ApplyConfig sends the full set of placement requests followed by a
	// commit, entering the configure handshake.
	ApplyConfig(cfg Config) error
	SetSize(width, height uint32) error
	SetAnchor(a Anchor) error
	SetExclusiveZone(zone int32) error
	SetMargins(m Margins) error
	SetKeyboardInteractivity(mode KeyboardMode) error
	SetLayer(l Layer) error
	AckConfigure(serial uint32) error
	Commit() error
	// Frame arms a one-shot frame callback. It takes effect with the next
	// commit.
	Frame(done func()) error
	// Present converts and attaches a pixel buffer of the committed size,
	// then commits.
	Present(img *image.RGBA) error
	// Destroy tears the protocol objects down. Safe to call twice.
	Destroy()
}

// LayerSurface is a wl_surface with the layer shell role and the client-side
// state machine around it. All methods must be called from the dispatch
// goroutine, like every other callback-facing API here.
type LayerSurface struct {
	client *Client
	remote surfaceRemote
	cfg    Config

	phase      Phase
	width      uint32
	height     uint32
	lastSerial uint32
	hasSerial  bool

	renderer   Renderer
	dirty      bool
	frameArmed bool

	// OnConfigure fires after each acknowledged configure with the
	// resolved size.
	OnConfigure func(width, height uint32)
	// OnClosed fires once when the compositor closes the surface.
	OnClosed func()

	OnPointerEnter  func(PointerEvent)
	OnPointerMotion func(PointerEvent)
	OnPointerLeave  func()
	OnPointerButton func(ButtonEvent)
	OnPointerScroll func(ScrollEvent)
	OnKey           func(KeyEvent)
}

func newLayerSurface(c *Client, remote surfaceRemote, cfg Config) *LayerSurface {
	return &LayerSurface{
		client: c,
		remote: remote,
		cfg:    cfg.withDefaults(),
		phase:  PhaseCreated,
	}
}

// start performs the initial commit that opens the configure handshake.
func (s *LayerSurface) start() error {
	if err := s.remote.ApplyConfig(s.cfg); err != nil {
		return errors.Wrap(err, "initial surface commit")
	}
	s.phase = PhaseAwaitingConfigure
	log.Debug().
		Uint32("surface", s.remote.ID()).
		Str("namespace", s.cfg.Namespace).
		Msg("layer surface created")
	return nil
}

// Phase returns the current lifecycle phase.
func (s *LayerSurface) Phase() Phase { return s.phase }

// Size returns the negotiated size in logical pixels. Zero until the first
// configure.
func (s *LayerSurface) Size() (width, height uint32) { return s.width, s.height }

// Config returns the surface configuration as currently requested.
func (s *LayerSurface) Config() Config { return s.cfg }

// Output returns the output the surface is bound to, nil if the compositor
// chose one.
func (s *LayerSurface) Output() *Output { return s.cfg.Output }

func (s *LayerSurface) scale() int32 {
	if s.cfg.Output != nil {
		return s.cfg.Output.Scale()
	}
	return 1
}

// handleConfigure runs the ack side of the configure handshake.
func (s *LayerSurface) handleConfigure(serial, width, height uint32) {
	switch s.phase {
	case PhaseDestroyed, PhaseDetached:
		log.Debug().Uint32("serial", serial).Stringer("phase", s.phase).
			Msg("configure dropped")
		return
	}
	if s.hasSerial && serial <= s.lastSerial {
		log.Debug().
			Uint32("serial", serial).
			Uint32("acked", s.lastSerial).
			Msg("stale configure ignored")
		return
	}

	rw, rh := s.resolveSize(width, height)
	if err := s.remote.AckConfigure(serial); err != nil {
		log.Error().Err(err).Uint32("serial", serial).Msg("ack_configure failed")
		return
	}
	s.lastSerial = serial
	s.hasSerial = true
	s.width, s.height = rw, rh
	s.phase = PhaseConfigured

	log.Debug().
		Uint32("serial", serial).
		Uint32("width", rw).
		Uint32("height", rh).
		Msg("configure acknowledged")

	if s.OnConfigure != nil {
		s.OnConfigure(rw, rh)
	}
	if s.renderer != nil {
		s.dirty = true
		s.renderNow()
	}
}

// resolveSize merges a compositor proposal with the caller preference. A
// non-zero configured dimension is authoritative for its axis; a zero one
// adopts the proposal.
func (s *LayerSurface) resolveSize(proposedW, proposedH uint32) (uint32, uint32) {
	w, h := proposedW, proposedH
	if s.cfg.Width != 0 {
		w = s.cfg.Width
	}
	if s.cfg.Height != 0 {
		h = s.cfg.Height
	}
	// A compositor may propose 0 on an axis it leaves to the client.
	if w == 0 {
		w = s.width
	}
	if h == 0 {
		h = s.height
	}
	return w, h
}

// handleClosed handles the compositor withdrawing the surface.
func (s *LayerSurface) handleClosed() {
	if s.phase == PhaseDestroyed {
		return
	}
	s.phase = PhaseDestroyed
	s.frameArmed = false
	s.remote.Destroy()
	if s.client != nil {
		s.client.forgetSurface(s)
	}
	log.Debug().Uint32("surface", s.remote.ID()).Msg("surface closed by compositor")
	if s.OnClosed != nil {
		s.OnClosed()
	}
}

// detach marks the surface unusable after its output disappeared. The caller
// may Rebind to another output or Destroy it.
func (s *LayerSurface) detach() {
	if s.phase == PhaseDestroyed || s.phase == PhaseDetached {
		return
	}
	s.phase = PhaseDetached
	s.frameArmed = false
	log.Info().Uint32("surface", s.remote.ID()).Msg("output removed, surface detached")
}

// Resize requests a new size. The negotiated size changes only when the
// compositor answers with the next configure.
func (s *LayerSurface) Resize(width, height uint32) error {
	if err := s.usable(); err != nil {
		return err
	}
	if s.phase != PhaseConfigured {
		return ErrSurfaceNotConfigured
	}
	s.cfg.Width, s.cfg.Height = width, height
	if err := s.remote.SetSize(width, height); err != nil {
		return errors.Wrap(err, "set_size")
	}
	return errors.Wrap(s.remote.Commit(), "commit")
}

// SetExclusiveZone updates the reserved area along the anchored edge.
func (s *LayerSurface) SetExclusiveZone(zone int32) error {
	if err := s.usable(); err != nil {
		return err
	}
	s.cfg.ExclusiveZone = zone
	if err := s.remote.SetExclusiveZone(zone); err != nil {
		return errors.Wrap(err, "set_exclusive_zone")
	}
	return errors.Wrap(s.remote.Commit(), "commit")
}

// SetMargins updates the margins from the anchored edges.
func (s *LayerSurface) SetMargins(m Margins) error {
	if err := s.usable(); err != nil {
		return err
	}
	s.cfg.Margins = m
	if err := s.remote.SetMargins(m); err != nil {
		return errors.Wrap(err, "set_margin")
	}
	return errors.Wrap(s.remote.Commit(), "commit")
}

// SetKeyboardInteractivity updates how the surface takes keyboard focus.
func (s *LayerSurface) SetKeyboardInteractivity(mode KeyboardMode) error {
	if err := s.usable(); err != nil {
		return err
	}
	s.cfg.Keyboard = mode
	if err := s.remote.SetKeyboardInteractivity(mode); err != nil {
		return errors.Wrap(err, "set_keyboard_interactivity")
	}
	return errors.Wrap(s.remote.Commit(), "commit")
}

// SetLayer moves the surface to another layer.
func (s *LayerSurface) SetLayer(l Layer) error {
	if err := s.usable(); err != nil {
		return err
	}
	s.cfg.Layer = l
	if err := s.remote.SetLayer(l); err != nil {
		return errors.Wrap(err, "set_layer")
	}
	return errors.Wrap(s.remote.Commit(), "commit")
}

// Rebind recreates the surface on another output after a detach. The stored
// configuration is replayed and the configure handshake starts over.
func (s *LayerSurface) Rebind(o *Output) error {
	if s.phase == PhaseDestroyed {
		return ErrSurfaceDestroyed
	}
	if s.client == nil {
		return &ProtocolViolation{Object: "layer_surface", Reason: "surface has no connection"}
	}
	s.client.forgetSurface(s)
	s.remote.Destroy()

	s.cfg.Output = o
	remote, err := s.client.newSurfaceRemote(s.cfg)
	if err != nil {
		return errors.Wrap(err, "rebind")
	}
	s.remote = remote
	s.phase = PhaseCreated
	s.width, s.height = 0, 0
	s.hasSerial = false
	s.frameArmed = false
	s.client.listenSurface(remote, s)
	s.client.rememberSurface(s)
	return s.start()
}

// WaitForConfigure dispatches events until the first configure is
// acknowledged. Useful right after creation, before entering Run.
func (s *LayerSurface) WaitForConfigure() error {
	if s.client == nil {
		return &ProtocolViolation{Object: "layer_surface", Reason: "surface has no connection"}
	}
	for s.phase == PhaseAwaitingConfigure {
		if err := s.client.Dispatch(); err != nil {
			return err
		}
	}
	switch s.phase {
	case PhaseConfigured:
		return nil
	case PhaseDetached:
		return ErrOutputDetached
	default:
		return ErrSurfaceDestroyed
	}
}

// Destroy tears the surface down. Safe to call more than once.
func (s *LayerSurface) Destroy() {
	if s.phase == PhaseDestroyed {
		return
	}
	s.phase = PhaseDestroyed
	s.frameArmed = false
	s.remote.Destroy()
	if s.client != nil {
		s.client.forgetSurface(s)
	}
	log.Debug().Uint32("surface", s.remote.ID()).Msg("surface destroyed")
}

// usable rejects operations on detached or destroyed surfaces.
func (s *LayerSurface) usable() error {
	switch s.phase {
	case PhaseDestroyed:
		return ErrSurfaceDestroyed
	case PhaseDetached:
		return ErrOutputDetached
	}
	return nil
}
