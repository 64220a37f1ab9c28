package layershell

import (
	"image"

	"github.com/pkg/errors"
)

// Renderer produces a frame of exactly the requested size. It runs on the
// dispatch goroutine, so it must not block.
type Renderer interface {
	Render(width, height uint32) *image.RGBA
}

// RendererFunc adapts a function to the Renderer interface.
type RendererFunc func(width, height uint32) *image.RGBA

func (f RendererFunc) Render(width, height uint32) *image.RGBA { return f(width, height) }

// Present converts the image to a shared-memory buffer and commits it. The
// image bounds must match the negotiated surface size.
func (s *LayerSurface) Present(img *image.RGBA) error {
	switch s.phase {
	case PhaseDestroyed:
		return ErrSurfaceDestroyed
	case PhaseDetached:
		return ErrOutputDetached
	case PhaseCreated, PhaseAwaitingConfigure:
		return ErrSurfaceNotConfigured
	}
	b := img.Bounds()
	if uint32(b.Dx()) != s.width || uint32(b.Dy()) != s.height {
		return &ProtocolViolation{
			Object: "layer_surface",
			Reason: "buffer size does not match the configured surface size",
		}
	}
	return errors.Wrap(s.remote.Present(img), "present")
}

// RequestFrame arms a one-shot frame callback. The callback fires when the
// compositor is ready for the next frame and has to be re-armed explicitly.
func (s *LayerSurface) RequestFrame(done func()) error {
	if err := s.usable(); err != nil {
		return err
	}
	if s.phase != PhaseConfigured {
		return ErrSurfaceNotConfigured
	}
	if s.frameArmed {
		return nil
	}
	s.frameArmed = true
	return errors.Wrap(s.remote.Frame(func() {
		// Discarded if the surface was closed or detached meanwhile.
		if !s.frameArmed || s.phase != PhaseConfigured {
			return
		}
		s.frameArmed = false
		done()
	}), "frame")
}

// SetRenderer switches the surface to automatic mode: the renderer is
// invoked after each configure and whenever the surface is dirty, paced by
// frame callbacks.
func (s *LayerSurface) SetRenderer(r Renderer) {
	s.renderer = r
	if r != nil && s.phase == PhaseConfigured {
		s.dirty = true
		s.renderNow()
	}
}

// MarkDirty schedules one redraw. With a frame callback in flight the redraw
// waits for it, otherwise it happens immediately.
func (s *LayerSurface) MarkDirty() {
	s.dirty = true
	if s.renderer == nil || s.phase != PhaseConfigured {
		return
	}
	if s.frameArmed {
		return
	}
	s.renderNow()
}

func (s *LayerSurface) renderNow() {
	if s.renderer == nil || s.phase != PhaseConfigured || !s.dirty {
		return
	}
	s.dirty = false
	img := s.renderer.Render(s.width, s.height)
	if img == nil {
		return
	}
	// The frame request rides on the commit Present performs.
	if err := s.RequestFrame(func() { s.renderNow() }); err != nil {
		log.Error().Err(err).Msg("frame request failed")
	}
	if err := s.Present(img); err != nil {
		log.Error().Err(err).Msg("render present failed")
	}
}

// copyRGBAToARGB converts img into little-endian ARGB8888, the baseline
// format every wl_shm implementation offers. image.RGBA is already
// premultiplied, so this is a channel swap.
func copyRGBAToARGB(dst []byte, stride int, img *image.RGBA) {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	for y := 0; y < h; y++ {
		src := img.Pix[y*img.Stride : y*img.Stride+w*4]
		row := dst[y*stride : y*stride+w*4]
		for x := 0; x < w; x++ {
			row[x*4+0] = src[x*4+2]
			row[x*4+1] = src[x*4+1]
			row[x*4+2] = src[x*4+0]
			row[x*4+3] = src[x*4+3]
		}
	}
}
