// Package wlr implements the client side of the zwlr_layer_shell_v1
// protocol on top of github.com/neurlang/wayland.
package wlr

import (
	"sync"

	// wl is used indirectly through type aliases
	"github.com/neurlang/wayland/wl"
)

// Use the wl package explicitly in type declarations to avoid the "imported and not used" error
var _ wl.BaseProxy // This line ensures the wl package is used

// Layer values accepted by GetLayerSurface and SetLayer.
const (
	LayerBackground uint32 = iota
	LayerBottom
	LayerTop
	LayerOverlay
)

// Anchor bitfield values accepted by SetAnchor.
const (
	AnchorTop    uint32 = 1
	AnchorBottom uint32 = 2
	AnchorLeft   uint32 = 4
	AnchorRight  uint32 = 8
)

// Keyboard interactivity values accepted by SetKeyboardInteractivity.
const (
	KeyboardInteractivityNone uint32 = iota
	KeyboardInteractivityExclusive
	KeyboardInteractivityOnDemand
)

// Error constants for zwlr_layer_shell_v1
const (
	ShellErrorRole uint32 = iota
	ShellErrorInvalidLayer
	ShellErrorAlreadyConstructed
)

// Error constants for zwlr_layer_surface_v1
const (
	SurfaceErrorInvalidSurfaceState uint32 = iota
	SurfaceErrorInvalidSize
	SurfaceErrorInvalidAnchor
	SurfaceErrorInvalidKeyboardInteractivity
	SurfaceErrorInvalidExclusiveEdge
)

// Protocol request constants for zwlr_layer_shell_v1
const (
	ShellRequestGetLayerSurface uint32 = iota
	ShellRequestDestroy
)

// Protocol request constants for zwlr_layer_surface_v1
const (
	SurfaceRequestSetSize uint32 = iota
	SurfaceRequestSetAnchor
	SurfaceRequestSetExclusiveZone
	SurfaceRequestSetMargin
	SurfaceRequestSetKeyboardInteractivity
	SurfaceRequestGetPopup
	SurfaceRequestAckConfigure
	SurfaceRequestDestroy
	SurfaceRequestSetLayer
	SurfaceRequestSetExclusiveEdge
)

// Protocol event constants for zwlr_layer_surface_v1
const (
	SurfaceEventConfigure uint32 = iota
	SurfaceEventClosed
)

// LayerShell represents a zwlr_layer_shell_v1 object
type LayerShell struct {
	BaseProxy
}

// NewLayerShell is a constructor for the LayerShell object
func NewLayerShell(ctx *Context) *LayerShell {
	ret := new(LayerShell)
	ctx.Register(ret)
	return ret
}

// GetLayerSurface assigns the layer surface role to a wl_surface. The output
// may be nil, in which case the compositor picks one.
func (sh *LayerShell) GetLayerSurface(surface *WlSurface, output *WlOutput, layer uint32, namespace string) (*LayerSurface, error) {
	retId := NewLayerSurface(sh.Context())
	var outputProxy Proxy
	if output != nil {
		outputProxy = output
	}
	return retId, sh.Context().SendRequest(sh, ShellRequestGetLayerSurface, retId, surface, outputProxy, layer, namespace)
}

// Destroy destroys the layer shell object. Surfaces created through it
// stay alive.
func (sh *LayerShell) Destroy() error {
	return sh.Context().SendRequest(sh, ShellRequestDestroy)
}

// Dispatch dispatches event for LayerShell
func (sh *LayerShell) Dispatch(event *Event) {
	// No events to dispatch for the shell
}

// LayerSurface represents a zwlr_layer_surface_v1 object
type LayerSurface struct {
	BaseProxy
	mu                           sync.RWMutex
	privateLayerSurfaceConfigure []LayerSurfaceConfigureHandler
	privateLayerSurfaceClosed    []LayerSurfaceClosedHandler
}

// NewLayerSurface is a constructor for the LayerSurface object
func NewLayerSurface(ctx *Context) *LayerSurface {
	ret := new(LayerSurface)
	ctx.Register(ret)
	return ret
}

// SetSize sets the size of the surface in surface-local coordinates. A zero
// dimension asks the compositor to choose it.
func (s *LayerSurface) SetSize(width, height uint32) error {
	return s.Context().SendRequest(s, SurfaceRequestSetSize, width, height)
}

// SetAnchor anchors the surface to the given edges of its output.
func (s *LayerSurface) SetAnchor(anchor uint32) error {
	return s.Context().SendRequest(s, SurfaceRequestSetAnchor, anchor)
}

// SetExclusiveZone requests that the compositor avoid occluding the anchored
// edge. -1 asks for the whole edge, 0 for none.
func (s *LayerSurface) SetExclusiveZone(zone int32) error {
	return s.Context().SendRequest(s, SurfaceRequestSetExclusiveZone, zone)
}

// SetMargin sets the margins from the anchored edges.
func (s *LayerSurface) SetMargin(top, right, bottom, left int32) error {
	return s.Context().SendRequest(s, SurfaceRequestSetMargin, top, right, bottom, left)
}

// SetKeyboardInteractivity sets how keyboard focus is handled for the surface.
func (s *LayerSurface) SetKeyboardInteractivity(mode uint32) error {
	return s.Context().SendRequest(s, SurfaceRequestSetKeyboardInteractivity, mode)
}

// AckConfigure acknowledges a configure event
func (s *LayerSurface) AckConfigure(serial uint32) error {
	return s.Context().SendRequest(s, SurfaceRequestAckConfigure, serial)
}

// Destroy destroys the layer surface object
func (s *LayerSurface) Destroy() error {
	return s.Context().SendRequest(s, SurfaceRequestDestroy)
}

// SetLayer moves the surface to another layer. Since version 2.
func (s *LayerSurface) SetLayer(layer uint32) error {
	return s.Context().SendRequest(s, SurfaceRequestSetLayer, layer)
}

// SetExclusiveEdge picks which anchored edge the exclusive zone applies to.
// Since version 5.
func (s *LayerSurface) SetExclusiveEdge(edge uint32) error {
	return s.Context().SendRequest(s, SurfaceRequestSetExclusiveEdge, edge)
}

// Dispatch dispatches event for LayerSurface
func (s *LayerSurface) Dispatch(event *Event) {
	switch event.Opcode {
	case SurfaceEventConfigure:
		if len(s.privateLayerSurfaceConfigure) > 0 {
			ev := LayerSurfaceConfigureEvent{}
			ev.Serial = event.Uint32()
			ev.Width = event.Uint32()
			ev.Height = event.Uint32()
			s.mu.RLock()
			for _, h := range s.privateLayerSurfaceConfigure {
				h.HandleLayerSurfaceConfigure(ev)
			}
			s.mu.RUnlock()
		}
	case SurfaceEventClosed:
		if len(s.privateLayerSurfaceClosed) > 0 {
			ev := LayerSurfaceClosedEvent{}
			s.mu.RLock()
			for _, h := range s.privateLayerSurfaceClosed {
				h.HandleLayerSurfaceClosed(ev)
			}
			s.mu.RUnlock()
		}
	}
}

// LayerSurfaceConfigureEvent represents the configure event
type LayerSurfaceConfigureEvent struct {
	Serial uint32
	Width  uint32
	Height uint32
}

// LayerSurfaceClosedEvent represents the closed event
type LayerSurfaceClosedEvent struct {
}

// LayerSurfaceConfigureHandler is the handler interface for LayerSurfaceConfigureEvent
type LayerSurfaceConfigureHandler interface {
	HandleLayerSurfaceConfigure(LayerSurfaceConfigureEvent)
}

// AddConfigureHandler adds the Configure handler
func (s *LayerSurface) AddConfigureHandler(h LayerSurfaceConfigureHandler) {
	if h != nil {
		s.mu.Lock()
		s.privateLayerSurfaceConfigure = append(s.privateLayerSurfaceConfigure, h)
		s.mu.Unlock()
	}
}

// RemoveConfigureHandler removes the Configure handler
func (s *LayerSurface) RemoveConfigureHandler(h LayerSurfaceConfigureHandler) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, e := range s.privateLayerSurfaceConfigure {
		if e == h {
			s.privateLayerSurfaceConfigure = append(s.privateLayerSurfaceConfigure[:i], s.privateLayerSurfaceConfigure[i+1:]...)
			break
		}
	}
}

// LayerSurfaceClosedHandler is the handler interface for LayerSurfaceClosedEvent
type LayerSurfaceClosedHandler interface {
	HandleLayerSurfaceClosed(LayerSurfaceClosedEvent)
}

// AddClosedHandler adds the Closed handler
func (s *LayerSurface) AddClosedHandler(h LayerSurfaceClosedHandler) {
	if h != nil {
		s.mu.Lock()
		s.privateLayerSurfaceClosed = append(s.privateLayerSurfaceClosed, h)
		s.mu.Unlock()
	}
}

// RemoveClosedHandler removes the Closed handler
func (s *LayerSurface) RemoveClosedHandler(h LayerSurfaceClosedHandler) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, e := range s.privateLayerSurfaceClosed {
		if e == h {
			s.privateLayerSurfaceClosed = append(s.privateLayerSurfaceClosed[:i], s.privateLayerSurfaceClosed[i+1:]...)
			break
		}
	}
}
