// Package xdgoutput implements the client side of the zxdg_output_manager_v1
// protocol on top of github.com/neurlang/wayland.
package xdgoutput

import (
	"github.com/neurlang/wayland/wl"
)

// Basic type aliases for compatibility
type BaseProxy = wl.BaseProxy
type Event = wl.Event
type Context = wl.Context
type Proxy = wl.Proxy
type WlOutput = wl.Output

// InterfaceName is the global advertised by compositors supporting the
// protocol.
const InterfaceName = "zxdg_output_manager_v1"

// MaxVersion is the highest protocol version these bindings understand.
const MaxVersion uint32 = 3

// BindManager binds to the zxdg_output_manager_v1 interface
func BindManager(r *wl.Registry, name uint32, version uint32) *Manager {
	ctx, _ := wl.GetUserData[wl.Context](r)

	if version > MaxVersion {
		version = MaxVersion
	}

	manager := NewManager(ctx)
	_ = r.Bind(name, InterfaceName, version, manager)

	return manager
}

// OutputAddListener adds all listeners for xdg output events
func OutputAddListener(o *Output, h interface{}) {
	if handler, ok := h.(OutputLogicalPositionHandler); ok {
		o.AddLogicalPositionHandler(handler)
	}
	if handler, ok := h.(OutputLogicalSizeHandler); ok {
		o.AddLogicalSizeHandler(handler)
	}
	if handler, ok := h.(OutputDoneHandler); ok {
		o.AddDoneHandler(handler)
	}
	if handler, ok := h.(OutputNameHandler); ok {
		o.AddNameHandler(handler)
	}
	if handler, ok := h.(OutputDescriptionHandler); ok {
		o.AddDescriptionHandler(handler)
	}
}
