// Package wlr implements the client side of the zwlr_layer_shell_v1
// protocol on top of github.com/neurlang/wayland.
package wlr

import (
	"github.com/neurlang/wayland/wl"
)

// Basic type aliases for compatibility
type BaseProxy = wl.BaseProxy
type Event = wl.Event
type Context = wl.Context
type Proxy = wl.Proxy
type WlSurface = wl.Surface
type WlOutput = wl.Output

// InterfaceName is the global advertised by compositors supporting the
// protocol.
const InterfaceName = "zwlr_layer_shell_v1"

// MaxVersion is the highest protocol version these bindings understand.
const MaxVersion uint32 = 4

// BindLayerShell binds to the zwlr_layer_shell_v1 interface
func BindLayerShell(r *wl.Registry, name uint32, version uint32) *LayerShell {
	// Get the context from the registry
	ctx, _ := wl.GetUserData[wl.Context](r)

	if version > MaxVersion {
		version = MaxVersion
	}

	// Create a new shell instance
	shell := NewLayerShell(ctx)

	// Bind it to the interface
	_ = r.Bind(name, InterfaceName, version, shell)

	return shell
}

// LayerSurfaceAddListener adds all listeners for layer surface events
func LayerSurfaceAddListener(s *LayerSurface, h interface{}) {
	if handler, ok := h.(LayerSurfaceConfigureHandler); ok {
		s.AddConfigureHandler(handler)
	}
	if handler, ok := h.(LayerSurfaceClosedHandler); ok {
		s.AddClosedHandler(handler)
	}
}

// LayerSurfaceRemoveListener removes previously added listeners
func LayerSurfaceRemoveListener(s *LayerSurface, h interface{}) {
	if handler, ok := h.(LayerSurfaceConfigureHandler); ok {
		s.RemoveConfigureHandler(handler)
	}
	if handler, ok := h.(LayerSurfaceClosedHandler); ok {
		s.RemoveClosedHandler(handler)
	}
}
