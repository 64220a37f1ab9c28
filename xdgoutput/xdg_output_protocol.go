// Package xdgoutput implements the client side of the zxdg_output_manager_v1
// protocol on top of github.com/neurlang/wayland.
package xdgoutput

import (
	"sync"

	// wl is used indirectly through type aliases
	"github.com/neurlang/wayland/wl"
)

// Use the wl package explicitly in type declarations to avoid the "imported and not used" error
var _ wl.BaseProxy // This line ensures the wl package is used

// Protocol request constants for zxdg_output_manager_v1
const (
	ManagerRequestDestroy uint32 = iota
	ManagerRequestGetXdgOutput
)

// Protocol request constants for zxdg_output_v1
const (
	OutputRequestDestroy uint32 = iota
)

// Protocol event constants for zxdg_output_v1
const (
	OutputEventLogicalPosition uint32 = iota
	OutputEventLogicalSize
	OutputEventDone
	OutputEventName
	OutputEventDescription
)

// Manager represents a zxdg_output_manager_v1 object
type Manager struct {
	BaseProxy
}

// NewManager is a constructor for the Manager object
func NewManager(ctx *Context) *Manager {
	ret := new(Manager)
	ctx.Register(ret)
	return ret
}

// Destroy destroys the manager. Outputs created through it stay alive.
func (m *Manager) Destroy() error {
	return m.Context().SendRequest(m, ManagerRequestDestroy)
}

// GetXdgOutput creates an xdg_output extending the given wl_output.
func (m *Manager) GetXdgOutput(output *WlOutput) (*Output, error) {
	retId := NewOutput(m.Context())
	return retId, m.Context().SendRequest(m, ManagerRequestGetXdgOutput, retId, output)
}

// Dispatch dispatches event for Manager
func (m *Manager) Dispatch(event *Event) {
	// No events to dispatch for the manager
}

// Output represents a zxdg_output_v1 object
type Output struct {
	BaseProxy
	mu                           sync.RWMutex
	privateOutputLogicalPosition []OutputLogicalPositionHandler
	privateOutputLogicalSize     []OutputLogicalSizeHandler
	privateOutputDone            []OutputDoneHandler
	privateOutputName            []OutputNameHandler
	privateOutputDescription     []OutputDescriptionHandler
}

// NewOutput is a constructor for the Output object
func NewOutput(ctx *Context) *Output {
	ret := new(Output)
	ctx.Register(ret)
	return ret
}

// Destroy destroys the xdg output object
func (o *Output) Destroy() error {
	return o.Context().SendRequest(o, OutputRequestDestroy)
}

// Dispatch dispatches event for Output
func (o *Output) Dispatch(event *Event) {
	switch event.Opcode {
	case OutputEventLogicalPosition:
		if len(o.privateOutputLogicalPosition) > 0 {
			ev := OutputLogicalPositionEvent{}
			ev.X = int32(event.Uint32())
			ev.Y = int32(event.Uint32())
			o.mu.RLock()
			for _, h := range o.privateOutputLogicalPosition {
				h.HandleOutputLogicalPosition(ev)
			}
			o.mu.RUnlock()
		}
	case OutputEventLogicalSize:
		if len(o.privateOutputLogicalSize) > 0 {
			ev := OutputLogicalSizeEvent{}
			ev.Width = int32(event.Uint32())
			ev.Height = int32(event.Uint32())
			o.mu.RLock()
			for _, h := range o.privateOutputLogicalSize {
				h.HandleOutputLogicalSize(ev)
			}
			o.mu.RUnlock()
		}
	case OutputEventDone:
		if len(o.privateOutputDone) > 0 {
			ev := OutputDoneEvent{}
			o.mu.RLock()
			for _, h := range o.privateOutputDone {
				h.HandleOutputDone(ev)
			}
			o.mu.RUnlock()
		}
	case OutputEventName:
		if len(o.privateOutputName) > 0 {
			ev := OutputNameEvent{}
			ev.Name = event.String()
			o.mu.RLock()
			for _, h := range o.privateOutputName {
				h.HandleOutputName(ev)
			}
			o.mu.RUnlock()
		}
	case OutputEventDescription:
		if len(o.privateOutputDescription) > 0 {
			ev := OutputDescriptionEvent{}
			ev.Description = event.String()
			o.mu.RLock()
			for _, h := range o.privateOutputDescription {
				h.HandleOutputDescription(ev)
			}
			o.mu.RUnlock()
		}
	}
}

// OutputLogicalPositionEvent represents the logical_position event
type OutputLogicalPositionEvent struct {
	X int32
	Y int32
}

// OutputLogicalSizeEvent represents the logical_size event
type OutputLogicalSizeEvent struct {
	Width  int32
	Height int32
}

// OutputDoneEvent represents the done event. Deprecated since version 3 in
// favor of wl_output.done, still sent by older compositors.
type OutputDoneEvent struct {
}

// OutputNameEvent represents the name event
type OutputNameEvent struct {
	Name string
}

// OutputDescriptionEvent represents the description event
type OutputDescriptionEvent struct {
	Description string
}

// OutputLogicalPositionHandler is the handler interface for OutputLogicalPositionEvent
type OutputLogicalPositionHandler interface {
	HandleOutputLogicalPosition(OutputLogicalPositionEvent)
}

// AddLogicalPositionHandler adds the LogicalPosition handler
func (o *Output) AddLogicalPositionHandler(h OutputLogicalPositionHandler) {
	if h != nil {
		o.mu.Lock()
		o.privateOutputLogicalPosition = append(o.privateOutputLogicalPosition, h)
		o.mu.Unlock()
	}
}

// OutputLogicalSizeHandler is the handler interface for OutputLogicalSizeEvent
type OutputLogicalSizeHandler interface {
	HandleOutputLogicalSize(OutputLogicalSizeEvent)
}

// AddLogicalSizeHandler adds the LogicalSize handler
func (o *Output) AddLogicalSizeHandler(h OutputLogicalSizeHandler) {
	if h != nil {
		o.mu.Lock()
		o.privateOutputLogicalSize = append(o.privateOutputLogicalSize, h)
		o.mu.Unlock()
	}
}

// OutputDoneHandler is the handler interface for OutputDoneEvent
type OutputDoneHandler interface {
	HandleOutputDone(OutputDoneEvent)
}

// AddDoneHandler adds the Done handler
func (o *Output) AddDoneHandler(h OutputDoneHandler) {
	if h != nil {
		o.mu.Lock()
		o.privateOutputDone = append(o.privateOutputDone, h)
		o.mu.Unlock()
	}
}

// OutputNameHandler is the handler interface for OutputNameEvent
type OutputNameHandler interface {
	HandleOutputName(OutputNameEvent)
}

// AddNameHandler adds the Name handler
func (o *Output) AddNameHandler(h OutputNameHandler) {
	if h != nil {
		o.mu.Lock()
		o.privateOutputName = append(o.privateOutputName, h)
		o.mu.Unlock()
	}
}

// OutputDescriptionHandler is the handler interface for OutputDescriptionEvent
type OutputDescriptionHandler interface {
	HandleOutputDescription(OutputDescriptionEvent)
}

// AddDescriptionHandler adds the Description handler
func (o *Output) AddDescriptionHandler(h OutputDescriptionHandler) {
	if h != nil {
		o.mu.Lock()
		o.privateOutputDescription = append(o.privateOutputDescription, h)
		o.mu.Unlock()
	}
}
