package render

import (
	"image"

	"github.com/cjeanneret/snapmerge/internal/frame"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

// ButtonStyle controls how the on-screen button is painted.
type ButtonStyle struct {
	Fill  frame.BGR
	Text  frame.BGR
	Label string
}

// DefaultButtonStyle is a gray box with a white "SHOOT" label.
func DefaultButtonStyle() ButtonStyle {
	return ButtonStyle{
		Fill:  frame.BGR{B: 100, G: 100, R: 100},
		Text:  frame.White,
		Label: "SHOOT",
	}
}

// Button paints a filled box covering r (both corners inclusive, the same
// convention the click hit-test uses) and centers the label inside it.
func Button(f *frame.Frame, r image.Rectangle, s ButtonStyle) {
	FillRect(f, r, s.Fill)
	if s.Label == "" {
		return
	}

	face := basicfont.Face7x13
	r = r.Canon()
	textWidth := font.MeasureString(face, s.Label).Ceil()
	ascent := face.Metrics().Ascent.Ceil()
	x := r.Min.X + (r.Dx()-textWidth)/2
	y := r.Min.Y + (r.Dy()+ascent)/2

	d := &font.Drawer{
		Dst:  f,
		Src:  image.NewUniform(s.Text.RGBA()),
		Face: face,
		Dot:  fixed.P(x, y),
	}
	d.DrawString(s.Label)
}
