package commands

import (
	"image"
	"image/color"
	"image/draw"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"

	"github.com/wlkit/layershell"
)

// barRenderer fills the bar with the background color and draws the label.
type barRenderer struct {
	bg   color.RGBA
	fg   color.RGBA
	text string
}

func newBarRenderer(cfg *Config) (*barRenderer, error) {
	bg, err := parseColor(cfg.Background)
	if err != nil {
		return nil, err
	}
	fg, err := parseColor(cfg.Foreground)
	if err != nil {
		return nil, err
	}
	return &barRenderer{bg: bg, fg: fg, text: cfg.Text}, nil
}

func (r *barRenderer) Render(width, height uint32) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, int(width), int(height)))
	draw.Draw(img, img.Bounds(), image.NewUniform(r.bg), image.Point{}, draw.Src)

	if r.text != "" {
		face := basicfont.Face7x13
		baseline := (int(height) + face.Ascent - face.Descent) / 2
		d := font.Drawer{
			Dst:  img,
			Src:  image.NewUniform(r.fg),
			Face: face,
			Dot:  fixed.P(8, baseline),
		}
		d.DrawString(r.text)
	}
	return img
}

var _ layershell.Renderer = (*barRenderer)(nil)
