package layershell

import (
	"testing"
)

func newTestRouter(surfaces ...*LayerSurface) *inputRouter {
	table := make(map[uint32]*LayerSurface)
	for _, s := range surfaces {
		table[s.remote.ID()] = s
	}
	return newInputRouter(func(id uint32) *LayerSurface { return table[id] })
}

func TestPointerFocusLifecycle(t *testing.T) {
	s, fr := newTestSurface(t, Config{Height: 40})
	s.handleConfigure(1, 1920, 0)
	r := newTestRouter(s)

	var entered, motions, left int
	var last PointerEvent
	s.OnPointerEnter = func(ev PointerEvent) { entered++; last = ev }
	s.OnPointerMotion = func(ev PointerEvent) { motions++; last = ev }
	s.OnPointerLeave = func() { left++ }

	r.pointerEnter(fr.id, 10, 20)
	if entered != 1 || last.X != 10 || last.Y != 20 {
		t.Fatalf("enter: calls=%d pos=(%v,%v), want 1 call at (10,20)", entered, last.X, last.Y)
	}

	r.pointerMotion(15, 25)
	if motions != 1 || last.X != 15 || last.Y != 25 {
		t.Fatalf("motion: calls=%d pos=(%v,%v), want 1 call at (15,25)", motions, last.X, last.Y)
	}

	r.pointerLeave()
	if left != 1 {
		t.Fatalf("leave calls = %d, want 1", left)
	}

	// Without a focus record nothing is delivered.
	r.pointerMotion(99, 99)
	if motions != 1 {
		t.Errorf("motion after leave delivered, calls = %d", motions)
	}
}

func TestPointerUnknownSurfaceDropped(t *testing.T) {
	s, _ := newTestSurface(t, Config{Height: 40})
	r := newTestRouter(s)

	var entered int
	s.OnPointerEnter = func(PointerEvent) { entered++ }

	r.pointerEnter(9999, 1, 1)
	if entered != 0 {
		t.Errorf("enter for unknown surface delivered")
	}
	if r.pointerFocus != nil {
		t.Errorf("focus set for unknown surface")
	}
}

func TestPointerScaleTranslation(t *testing.T) {
	o := &Output{registryName: 1}
	o.pending.scale = 2
	o.commit()

	s, fr := newTestSurface(t, Config{Height: 40, Output: o})
	s.handleConfigure(1, 1920, 0)
	r := newTestRouter(s)

	var last PointerEvent
	s.OnPointerEnter = func(ev PointerEvent) { last = ev }

	r.pointerEnter(fr.id, 100, 60)
	if last.X != 50 || last.Y != 30 {
		t.Errorf("scaled position = (%v,%v), want (50,30)", last.X, last.Y)
	}
}

func TestPointerButtonCarriesPosition(t *testing.T) {
	s, fr := newTestSurface(t, Config{Height: 40})
	s.handleConfigure(1, 1920, 0)
	r := newTestRouter(s)

	var got ButtonEvent
	s.OnPointerButton = func(ev ButtonEvent) { got = ev }

	r.pointerEnter(fr.id, 42, 13)
	r.pointerButton(0x110, true)
	if !got.Pressed || got.Button != 0x110 || got.X != 42 || got.Y != 13 {
		t.Errorf("button event = %+v, want pressed BTN_LEFT at (42,13)", got)
	}

	r.pointerButton(0x110, false)
	if got.Pressed {
		t.Errorf("release not delivered")
	}
}

func TestScrollDelivery(t *testing.T) {
	s, fr := newTestSurface(t, Config{Height: 40})
	s.handleConfigure(1, 1920, 0)
	r := newTestRouter(s)

	var got ScrollEvent
	s.OnPointerScroll = func(ev ScrollEvent) { got = ev }

	r.pointerEnter(fr.id, 0, 0)
	r.pointerAxis(0, 15)
	if got.Axis != 0 || got.Value != 15 {
		t.Errorf("scroll = %+v, want axis 0 value 15", got)
	}
}

func TestKeyboardModeGating(t *testing.T) {
	tests := []struct {
		name      string
		mode      KeyboardMode
		delivered bool
	}{
		{"none never delivers", KeyboardNone, false},
		{"exclusive delivers", KeyboardExclusive, true},
		{"on-demand delivers", KeyboardOnDemand, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, fr := newTestSurface(t, Config{Height: 40, Keyboard: tt.mode})
			s.handleConfigure(1, 1920, 0)
			r := newTestRouter(s)

			var keys int
			s.OnKey = func(KeyEvent) { keys++ }

			r.keyboardEnter(fr.id)
			r.key(30, true)
			if got := keys > 0; got != tt.delivered {
				t.Errorf("delivered = %v, want %v", got, tt.delivered)
			}
		})
	}
}

func TestKeyCarriesModifiers(t *testing.T) {
	s, fr := newTestSurface(t, Config{Height: 40, Keyboard: KeyboardOnDemand})
	s.handleConfigure(1, 1920, 0)
	r := newTestRouter(s)

	var got KeyEvent
	s.OnKey = func(ev KeyEvent) { got = ev }

	r.keyboardEnter(fr.id)
	r.modifiers(Modifiers{Depressed: 4})
	r.key(30, true)
	if got.Modifiers.Depressed != 4 {
		t.Errorf("modifiers = %+v, want depressed 4", got.Modifiers)
	}
}

func TestKeyboardLeaveClearsFocus(t *testing.T) {
	s, fr := newTestSurface(t, Config{Height: 40, Keyboard: KeyboardOnDemand})
	s.handleConfigure(1, 1920, 0)
	r := newTestRouter(s)

	var keys int
	s.OnKey = func(KeyEvent) { keys++ }

	r.keyboardEnter(fr.id)
	r.keyboardLeave()
	r.key(30, true)
	if keys != 0 {
		t.Errorf("key delivered after keyboard leave")
	}
}

func TestDetachSurfaceClearsFocus(t *testing.T) {
	s, fr := newTestSurface(t, Config{Height: 40, Keyboard: KeyboardOnDemand})
	s.handleConfigure(1, 1920, 0)
	r := newTestRouter(s)

	r.pointerEnter(fr.id, 0, 0)
	r.keyboardEnter(fr.id)
	r.detachSurface(s)

	if r.pointerFocus != nil || r.keyboardFocus != nil {
		t.Errorf("focus survived surface detach")
	}
}
