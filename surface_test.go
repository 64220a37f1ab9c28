package layershell

import (
	"errors"
	"image"
	"testing"
)

// fakeRemote records protocol side effects so the state machine can be
// driven without a compositor.
type fakeRemote struct {
	id           uint32
	calls        []string
	acks         []uint32
	sizes        [][2]uint32
	frames       []func()
	presented    []*image.RGBA
	destroyCount int
	presentErr   error
}

func (f *fakeRemote) ID() uint32 { return f.id }

func (f *fakeRemote) ApplyConfig(cfg Config) error {
	f.calls = append(f.calls, "apply_config")
	return nil
}

func (f *fakeRemote) SetSize(w, h uint32) error {
	f.calls = append(f.calls, "set_size")
	f.sizes = append(f.sizes, [2]uint32{w, h})
	return nil
}

func (f *fakeRemote) SetAnchor(a Anchor) error { f.calls = append(f.calls, "set_anchor"); return nil }

func (f *fakeRemote) SetExclusiveZone(zone int32) error {
	f.calls = append(f.calls, "set_exclusive_zone")
	return nil
}

func (f *fakeRemote) SetMargins(m Margins) error { f.calls = append(f.calls, "set_margin"); return nil }
func (f *fakeRemote) SetKeyboardInteractivity(KeyboardMode) error {
	f.calls = append(f.calls, "set_keyboard_interactivity")
	return nil
}
func (f *fakeRemote) SetLayer(l Layer) error { f.calls = append(f.calls, "set_layer"); return nil }

func (f *fakeRemote) AckConfigure(serial uint32) error {
	f.calls = append(f.calls, "ack_configure")
	f.acks = append(f.acks, serial)
	return nil
}

func (f *fakeRemote) Commit() error { f.calls = append(f.calls, "commit"); return nil }

func (f *fakeRemote) Frame(done func()) error {
	f.calls = append(f.calls, "frame")
	f.frames = append(f.frames, done)
	return nil
}

func (f *fakeRemote) Present(img *image.RGBA) error {
	if f.presentErr != nil {
		return f.presentErr
	}
	f.calls = append(f.calls, "present")
	f.presented = append(f.presented, img)
	return nil
}

func (f *fakeRemote) Destroy() { f.destroyCount++ }

// fireFrame delivers the oldest armed frame callback.
func (f *fakeRemote) fireFrame() {
	if len(f.frames) == 0 {
		return
	}
	cb := f.frames[0]
	f.frames = f.frames[1:]
	cb()
}

func newTestSurface(t *testing.T, cfg Config) (*LayerSurface, *fakeRemote) {
	t.Helper()
	fr := &fakeRemote{id: 7}
	s := newLayerSurface(nil, fr, cfg)
	if err := s.start(); err != nil {
		t.Fatalf("start: %v", err)
	}
	if s.Phase() != PhaseAwaitingConfigure {
		t.Fatalf("phase after start = %v, want %v", s.Phase(), PhaseAwaitingConfigure)
	}
	return s, fr
}

func TestConfigureTopBar(t *testing.T) {
	cfg := Config{
		Layer:         LayerTop,
		Anchor:        AnchorTop | AnchorLeft | AnchorRight,
		Height:        40,
		ExclusiveZone: -1,
	}
	s, fr := newTestSurface(t, cfg)

	var gotW, gotH uint32
	var calls int
	s.OnConfigure = func(w, h uint32) {
		gotW, gotH = w, h
		calls++
	}

	s.handleConfigure(1, 1920, 0)

	if s.Phase() != PhaseConfigured {
		t.Errorf("phase = %v, want %v", s.Phase(), PhaseConfigured)
	}
	if w, h := s.Size(); w != 1920 || h != 40 {
		t.Errorf("size = %dx%d, want 1920x40", w, h)
	}
	if calls != 1 || gotW != 1920 || gotH != 40 {
		t.Errorf("OnConfigure calls=%d size=%dx%d, want 1 call with 1920x40", calls, gotW, gotH)
	}
	if len(fr.acks) != 1 || fr.acks[0] != 1 {
		t.Errorf("acks = %v, want [1]", fr.acks)
	}
}

func TestResolveSize(t *testing.T) {
	tests := []struct {
		name         string
		cfgW, cfgH   uint32
		propW, propH uint32
		wantW, wantH uint32
	}{
		{"caller height wins", 0, 40, 1920, 64, 1920, 40},
		{"caller both win", 300, 200, 1920, 1080, 300, 200},
		{"compositor decides", 0, 0, 800, 600, 800, 600},
		{"zero proposal keeps caller axis", 0, 40, 2560, 0, 2560, 40},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, _ := newTestSurface(t, Config{Width: tt.cfgW, Height: tt.cfgH})
			s.handleConfigure(1, tt.propW, tt.propH)
			if w, h := s.Size(); w != tt.wantW || h != tt.wantH {
				t.Errorf("size = %dx%d, want %dx%d", w, h, tt.wantW, tt.wantH)
			}
		})
	}
}

func TestStaleConfigureSerialIgnored(t *testing.T) {
	s, fr := newTestSurface(t, Config{Height: 40})
	var calls int
	s.OnConfigure = func(w, h uint32) { calls++ }

	s.handleConfigure(5, 1000, 0)
	s.handleConfigure(5, 2000, 0) // duplicate
	s.handleConfigure(4, 3000, 0) // stale

	if len(fr.acks) != 1 || fr.acks[0] != 5 {
		t.Errorf("acks = %v, want [5]", fr.acks)
	}
	if calls != 1 {
		t.Errorf("OnConfigure calls = %d, want 1", calls)
	}
	if w, _ := s.Size(); w != 1000 {
		t.Errorf("width = %d, want 1000 (stale configure must not apply)", w)
	}

	s.handleConfigure(6, 1280, 0)
	if w, _ := s.Size(); w != 1280 {
		t.Errorf("width = %d after newer serial, want 1280", w)
	}
	if len(fr.acks) != 2 || fr.acks[1] != 6 {
		t.Errorf("acks = %v, want [5 6]", fr.acks)
	}
}

func TestPresentBeforeConfigure(t *testing.T) {
	s, _ := newTestSurface(t, Config{Height: 40})
	img := image.NewRGBA(image.Rect(0, 0, 10, 10))
	if err := s.Present(img); !errors.Is(err, ErrSurfaceNotConfigured) {
		t.Errorf("Present before configure = %v, want ErrSurfaceNotConfigured", err)
	}
}

func TestPresentSizeMismatch(t *testing.T) {
	s, _ := newTestSurface(t, Config{Width: 100, Height: 40})
	s.handleConfigure(1, 0, 0)

	img := image.NewRGBA(image.Rect(0, 0, 99, 40))
	err := s.Present(img)
	var pv *ProtocolViolation
	if !errors.As(err, &pv) {
		t.Fatalf("Present with wrong size = %v, want ProtocolViolation", err)
	}
}

func TestPresentAfterDetach(t *testing.T) {
	s, _ := newTestSurface(t, Config{Width: 100, Height: 40})
	s.handleConfigure(1, 0, 0)

	img := image.NewRGBA(image.Rect(0, 0, 100, 40))
	if err := s.Present(img); err != nil {
		t.Fatalf("Present while configured: %v", err)
	}

	s.detach()
	if s.Phase() != PhaseDetached {
		t.Fatalf("phase = %v, want %v", s.Phase(), PhaseDetached)
	}
	err := s.Present(img)
	if !errors.Is(err, ErrOutputDetached) {
		t.Errorf("Present after detach = %v, want ErrOutputDetached", err)
	}
	if !errors.Is(err, ErrSurfaceDetached) {
		t.Errorf("ErrOutputDetached should match ErrSurfaceDetached")
	}
}

func TestPresentAfterDestroy(t *testing.T) {
	s, _ := newTestSurface(t, Config{Width: 100, Height: 40})
	s.handleConfigure(1, 0, 0)
	s.Destroy()

	img := image.NewRGBA(image.Rect(0, 0, 100, 40))
	if err := s.Present(img); !errors.Is(err, ErrSurfaceDestroyed) {
		t.Errorf("Present after destroy = %v, want ErrSurfaceDestroyed", err)
	}
}

func TestDestroyIdempotent(t *testing.T) {
	s, fr := newTestSurface(t, Config{Height: 40})
	s.Destroy()
	s.Destroy()
	s.Destroy()
	if fr.destroyCount != 1 {
		t.Errorf("remote destroy count = %d, want 1", fr.destroyCount)
	}
	if s.Phase() != PhaseDestroyed {
		t.Errorf("phase = %v, want %v", s.Phase(), PhaseDestroyed)
	}
}

func TestClosedFiresOnceAndCancelsFrames(t *testing.T) {
	s, fr := newTestSurface(t, Config{Width: 100, Height: 40})
	s.handleConfigure(1, 0, 0)

	var closed int
	s.OnClosed = func() { closed++ }

	var frameFired bool
	if err := s.RequestFrame(func() { frameFired = true }); err != nil {
		t.Fatalf("RequestFrame: %v", err)
	}

	s.handleClosed()
	s.handleClosed()

	if closed != 1 {
		t.Errorf("OnClosed calls = %d, want 1", closed)
	}
	if s.Phase() != PhaseDestroyed {
		t.Errorf("phase = %v, want %v", s.Phase(), PhaseDestroyed)
	}

	// A late callback from the compositor must be dropped.
	fr.fireFrame()
	if frameFired {
		t.Errorf("frame callback fired after close")
	}
}

func TestConfigureAfterCloseDropped(t *testing.T) {
	s, fr := newTestSurface(t, Config{Height: 40})
	s.handleClosed()
	s.handleConfigure(1, 1920, 0)
	if len(fr.acks) != 0 {
		t.Errorf("acks = %v, want none after close", fr.acks)
	}
}

func TestResizeRequiresConfigured(t *testing.T) {
	s, fr := newTestSurface(t, Config{Height: 40})
	if err := s.Resize(500, 40); !errors.Is(err, ErrSurfaceNotConfigured) {
		t.Fatalf("Resize before configure = %v, want ErrSurfaceNotConfigured", err)
	}

	s.handleConfigure(1, 1920, 0)
	if err := s.Resize(500, 50); err != nil {
		t.Fatalf("Resize: %v", err)
	}
	if len(fr.sizes) == 0 || fr.sizes[len(fr.sizes)-1] != [2]uint32{500, 50} {
		t.Errorf("set_size calls = %v, want trailing [500 50]", fr.sizes)
	}
	// The negotiated size must wait for the next configure.
	if w, h := s.Size(); w != 1920 || h != 40 {
		t.Errorf("size changed to %dx%d before configure", w, h)
	}
	s.handleConfigure(2, 500, 50)
	if w, h := s.Size(); w != 500 || h != 50 {
		t.Errorf("size = %dx%d after configure, want 500x50", w, h)
	}
}

func TestAckPrecedesFirstPresent(t *testing.T) {
	s, fr := newTestSurface(t, Config{Height: 40})
	s.SetRenderer(RendererFunc(func(w, h uint32) *image.RGBA {
		return image.NewRGBA(image.Rect(0, 0, int(w), int(h)))
	}))
	s.handleConfigure(1, 1920, 0)

	ack, present := -1, -1
	for i, call := range fr.calls {
		if call == "ack_configure" && ack < 0 {
			ack = i
		}
		if call == "present" && present < 0 {
			present = i
		}
	}
	if ack < 0 || present < 0 {
		t.Fatalf("calls = %v, want both ack_configure and present", fr.calls)
	}
	if ack > present {
		t.Errorf("present at %d before ack at %d", present, ack)
	}
}

func TestLiveUpdatesGatedByPhase(t *testing.T) {
	s, _ := newTestSurface(t, Config{Height: 40})
	s.handleConfigure(1, 1920, 0)
	s.detach()

	if err := s.SetExclusiveZone(0); !errors.Is(err, ErrOutputDetached) {
		t.Errorf("SetExclusiveZone on detached = %v, want ErrOutputDetached", err)
	}
	if err := s.SetLayer(LayerOverlay); !errors.Is(err, ErrOutputDetached) {
		t.Errorf("SetLayer on detached = %v, want ErrOutputDetached", err)
	}
}

func TestPhaseString(t *testing.T) {
	tests := []struct {
		phase Phase
		want  string
	}{
		{PhaseCreated, "created"},
		{PhaseAwaitingConfigure, "awaiting-configure"},
		{PhaseConfigured, "configured"},
		{PhaseDetached, "detached"},
		{PhaseDestroyed, "destroyed"},
		{Phase(99), "unknown"},
	}
	for _, tt := range tests {
		if got := tt.phase.String(); got != tt.want {
			t.Errorf("Phase(%d).String() = %q, want %q", tt.phase, got, tt.want)
		}
	}
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	if cfg.Height != 30 {
		t.Errorf("Height = %d, want 30", cfg.Height)
	}
	if cfg.Layer != LayerTop {
		t.Errorf("Layer = %d, want LayerTop", cfg.Layer)
	}
	if cfg.Anchor != AnchorTop|AnchorLeft|AnchorRight {
		t.Errorf("Anchor = %d, want top|left|right", cfg.Anchor)
	}
	if cfg.ExclusiveZone != -1 {
		t.Errorf("ExclusiveZone = %d, want -1", cfg.ExclusiveZone)
	}
	if cfg.Keyboard != KeyboardOnDemand {
		t.Errorf("Keyboard = %d, want on-demand", cfg.Keyboard)
	}
}
