package layershell

import (
	"github.com/neurlang/wayland/wl"
)

// PointerEvent carries a surface-local position in logical pixels.
type PointerEvent struct {
	X, Y float64
}

// ButtonEvent is a pointer button press or release at the last known
// position. Button values are linux input event codes (BTN_LEFT = 0x110).
type ButtonEvent struct {
	Button  uint32
	Pressed bool
	X, Y    float64
}

// ScrollEvent is an axis event. Axis 0 is vertical, 1 horizontal; Value is
// the scroll distance in logical pixels.
type ScrollEvent struct {
	Axis  uint32
	Value float64
}

// Modifiers is the xkb modifier state attached to key events.
type Modifiers struct {
	Depressed uint32
	Latched   uint32
	Locked    uint32
	Group     uint32
}

// KeyEvent is a keyboard key press or release. Key values are linux keycodes.
type KeyEvent struct {
	Key       uint32
	Pressed   bool
	Modifiers Modifiers
}

const (
	pointerStatePressed  = 1
	keyboardStatePressed = 1
)

// inputRouter owns the seat devices and routes their events to the focused
// layer surface. Pointer and keyboard focus are tracked independently.
type inputRouter struct {
	lookup   func(surfaceID uint32) *LayerSurface
	seat     *wl.Seat
	pointer  *wl.Pointer
	keyboard *wl.Keyboard

	pointerFocus  *LayerSurface
	keyboardFocus *LayerSurface
	x, y          float64
	mods          Modifiers
}

func newInputRouter(lookup func(uint32) *LayerSurface) *inputRouter {
	return &inputRouter{lookup: lookup}
}

// bindSeat starts capability tracking on the seat.
func (r *inputRouter) bindSeat(seat *wl.Seat) {
	r.seat = seat
	seat.AddCapabilitiesHandler(r)
}

func (r *inputRouter) HandleSeatCapabilities(ev wl.SeatCapabilitiesEvent) {
	if ev.Capabilities&wl.SeatCapabilityPointer != 0 && r.pointer == nil {
		pointer, err := r.seat.GetPointer()
		if err != nil {
			log.Error().Err(err).Msg("get pointer failed")
		} else {
			r.pointer = pointer
			pointer.AddEnterHandler(r)
			pointer.AddLeaveHandler(r)
			pointer.AddMotionHandler(r)
			pointer.AddButtonHandler(r)
			pointer.AddAxisHandler(r)
			log.Debug().Msg("pointer acquired")
		}
	}
	if ev.Capabilities&wl.SeatCapabilityPointer == 0 && r.pointer != nil {
		r.pointer = nil
		r.clearPointerFocus()
		log.Debug().Msg("pointer lost")
	}
	if ev.Capabilities&wl.SeatCapabilityKeyboard != 0 && r.keyboard == nil {
		keyboard, err := r.seat.GetKeyboard()
		if err != nil {
			log.Error().Err(err).Msg("get keyboard failed")
		} else {
			r.keyboard = keyboard
			keyboard.AddEnterHandler(r)
			keyboard.AddLeaveHandler(r)
			keyboard.AddKeyHandler(r)
			keyboard.AddModifiersHandler(r)
			log.Debug().Msg("keyboard acquired")
		}
	}
	if ev.Capabilities&wl.SeatCapabilityKeyboard == 0 && r.keyboard != nil {
		r.keyboard = nil
		r.keyboardFocus = nil
		log.Debug().Msg("keyboard lost")
	}
}

// Pointer routing. Raw coordinates become logical by dividing through the
// focused surface's output scale.

func (r *inputRouter) pointerEnter(surfaceID uint32, x, y float64) {
	s := r.lookup(surfaceID)
	if s == nil {
		log.Debug().Uint32("surface", surfaceID).Msg("pointer enter for unknown surface")
		return
	}
	scale := float64(s.scale())
	r.pointerFocus = s
	r.x, r.y = x/scale, y/scale
	if s.OnPointerEnter != nil {
		s.OnPointerEnter(PointerEvent{X: r.x, Y: r.y})
	}
}

func (r *inputRouter) pointerMotion(x, y float64) {
	s := r.pointerFocus
	if s == nil {
		// No focus record, nothing to deliver to.
		return
	}
	scale := float64(s.scale())
	r.x, r.y = x/scale, y/scale
	if s.OnPointerMotion != nil {
		s.OnPointerMotion(PointerEvent{X: r.x, Y: r.y})
	}
}

func (r *inputRouter) pointerLeave() {
	s := r.pointerFocus
	if s == nil {
		return
	}
	r.pointerFocus = nil
	if s.OnPointerLeave != nil {
		s.OnPointerLeave()
	}
}

func (r *inputRouter) pointerButton(button uint32, pressed bool) {
	s := r.pointerFocus
	if s == nil {
		return
	}
	if s.OnPointerButton != nil {
		s.OnPointerButton(ButtonEvent{Button: button, Pressed: pressed, X: r.x, Y: r.y})
	}
}

func (r *inputRouter) pointerAxis(axis uint32, value float64) {
	s := r.pointerFocus
	if s == nil {
		return
	}
	if s.OnPointerScroll != nil {
		s.OnPointerScroll(ScrollEvent{Axis: axis, Value: value / float64(s.scale())})
	}
}

func (r *inputRouter) clearPointerFocus() {
	r.pointerFocus = nil
}

// Keyboard routing. Surfaces with KeyboardNone never receive key events even
// if the compositor focuses them.

func (r *inputRouter) keyboardEnter(surfaceID uint32) {
	s := r.lookup(surfaceID)
	if s == nil {
		log.Debug().Uint32("surface", surfaceID).Msg("keyboard enter for unknown surface")
		return
	}
	r.keyboardFocus = s
}

func (r *inputRouter) keyboardLeave() {
	r.keyboardFocus = nil
}

func (r *inputRouter) key(key uint32, pressed bool) {
	s := r.keyboardFocus
	if s == nil || s.cfg.Keyboard == KeyboardNone {
		return
	}
	if s.OnKey != nil {
		s.OnKey(KeyEvent{Key: key, Pressed: pressed, Modifiers: r.mods})
	}
}

func (r *inputRouter) modifiers(m Modifiers) {
	r.mods = m
}

// detachSurface drops focus records pointing at a surface that went away.
func (r *inputRouter) detachSurface(s *LayerSurface) {
	if r.pointerFocus == s {
		r.pointerFocus = nil
	}
	if r.keyboardFocus == s {
		r.keyboardFocus = nil
	}
}

// Protocol adapters.

func (r *inputRouter) HandlePointerEnter(ev wl.PointerEnterEvent) {
	if ev.Surface == nil {
		return
	}
	r.pointerEnter(uint32(ev.Surface.Id()), float64(ev.SurfaceX), float64(ev.SurfaceY))
}

func (r *inputRouter) HandlePointerLeave(ev wl.PointerLeaveEvent) {
	r.pointerLeave()
}

func (r *inputRouter) HandlePointerMotion(ev wl.PointerMotionEvent) {
	r.pointerMotion(float64(ev.SurfaceX), float64(ev.SurfaceY))
}

func (r *inputRouter) HandlePointerButton(ev wl.PointerButtonEvent) {
	r.pointerButton(ev.Button, ev.State == pointerStatePressed)
}

func (r *inputRouter) HandlePointerAxis(ev wl.PointerAxisEvent) {
	r.pointerAxis(ev.Axis, float64(ev.Value))
}

func (r *inputRouter) HandleKeyboardEnter(ev wl.KeyboardEnterEvent) {
	if ev.Surface == nil {
		return
	}
	r.keyboardEnter(uint32(ev.Surface.Id()))
}

func (r *inputRouter) HandleKeyboardLeave(ev wl.KeyboardLeaveEvent) {
	r.keyboardLeave()
}

func (r *inputRouter) HandleKeyboardKey(ev wl.KeyboardKeyEvent) {
	r.key(ev.Key, ev.State == keyboardStatePressed)
}

func (r *inputRouter) HandleKeyboardModifiers(ev wl.KeyboardModifiersEvent) {
	r.modifiers(Modifiers{
		Depressed: ev.ModsDepressed,
		Latched:   ev.ModsLatched,
		Locked:    ev.ModsLocked,
		Group:     ev.Group,
	})
}
