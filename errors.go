package layershell

import (
	"errors"
	"fmt"
)

// Sentinel errors returned by surface operations. All are recoverable: the
// surface object stays usable (or, for ErrSurfaceDestroyed, stays inert).
var (
	// ErrSurfaceNotConfigured is returned when a buffer is presented or a
	// resize is requested before the first configure round completed.
	ErrSurfaceNotConfigured = errors.New("surface not configured")

	// ErrSurfaceDetached is returned for operations on a surface whose
	// backing resources are gone.
	ErrSurfaceDetached = errors.New("surface detached")

	// ErrOutputDetached is returned when the output a surface was bound to
	// disappeared. It matches ErrSurfaceDetached under errors.Is.
	ErrOutputDetached = fmt.Errorf("output removed: %w", ErrSurfaceDetached)

	// ErrSurfaceDestroyed is returned for operations on a destroyed or
	// compositor-closed surface.
	ErrSurfaceDestroyed = errors.New("surface destroyed")
)

// ConnectionError wraps a failure of the compositor connection itself.
// It is fatal: the Client must be discarded.
type ConnectionError struct {
	Err error
}

func (e *ConnectionError) Error() string {
	return fmt.Sprintf("wayland connection: %v", e.Err)
}

func (e *ConnectionError) Unwrap() error { return e.Err }

// ProtocolViolation reports a misuse of the protocol, either by the caller
// or by the compositor. It is fatal for the object named in it.
type ProtocolViolation struct {
	Object string
	Reason string
}

func (e *ProtocolViolation) Error() string {
	return fmt.Sprintf("protocol violation on %s: %s", e.Object, e.Reason)
}
