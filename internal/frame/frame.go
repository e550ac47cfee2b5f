// Package frame defines the 3-channel pixel buffer shared by the camera,
// the overlay renderer and the compositor.
//
// Pixels are stored in BGR order, three bytes per pixel, rows packed
// without padding. Frame implements draw.Image so it can be handed to
// image/png, golang.org/x/image/font and friends directly.
package frame

import (
	"bytes"
	"image"
	"image/color"
	"image/draw"
)

// Channels is the number of bytes per pixel.
const Channels = 3

// BGR is a single pixel in the frame's channel order.
type BGR struct {
	B, G, R uint8
}

// Common colors.
var (
	White = BGR{255, 255, 255}
	Black = BGR{0, 0, 0}
	Red   = BGR{B: 0, G: 0, R: 255}
)

// RGBA converts the pixel to an opaque color.RGBA.
func (c BGR) RGBA() color.RGBA {
	return color.RGBA{R: c.R, G: c.G, B: c.B, A: 0xff}
}

// FromColor converts any color to BGR, dropping alpha.
func FromColor(c color.Color) BGR {
	r := color.RGBAModel.Convert(c).(color.RGBA)
	return BGR{B: r.B, G: r.G, R: r.R}
}

// Frame is a fixed-size rectangular BGR buffer.
type Frame struct {
	Width  int
	Height int
	Pix    []uint8
}

// New allocates a zeroed (black) frame.
// Negative dimensions are clamped to zero.
func New(width, height int) *Frame {
	if width < 0 {
		width = 0
	}
	if height < 0 {
		height = 0
	}
	return &Frame{
		Width:  width,
		Height: height,
		Pix:    make([]uint8, width*height*Channels),
	}
}

// Filled allocates a frame where every pixel is c.
func Filled(width, height int, c BGR) *Frame {
	f := New(width, height)
	for i := 0; i < len(f.Pix); i += Channels {
		f.Pix[i], f.Pix[i+1], f.Pix[i+2] = c.B, c.G, c.R
	}
	return f
}

// FromImage copies an arbitrary image into a new frame. Alpha is discarded.
func FromImage(img image.Image) *Frame {
	b := img.Bounds()
	f := New(b.Dx(), b.Dy())
	for y := 0; y < f.Height; y++ {
		for x := 0; x < f.Width; x++ {
			f.SetBGR(x, y, FromColor(img.At(b.Min.X+x, b.Min.Y+y)))
		}
	}
	return f
}

// Empty reports whether the frame has zero area.
func (f *Frame) Empty() bool {
	return f == nil || f.Width <= 0 || f.Height <= 0
}

// Size returns the frame dimensions as a point.
func (f *Frame) Size() image.Point {
	return image.Pt(f.Width, f.Height)
}

// Stride is the number of bytes per row.
func (f *Frame) Stride() int {
	return f.Width * Channels
}

// Offset returns the index of pixel (x, y) in Pix.
func (f *Frame) Offset(x, y int) int {
	return y*f.Stride() + x*Channels
}

// InBounds reports whether (x, y) addresses a pixel of the frame.
func (f *Frame) InBounds(x, y int) bool {
	return x >= 0 && y >= 0 && x < f.Width && y < f.Height
}

// BGRAt returns the pixel at (x, y). Out of range coordinates return black.
func (f *Frame) BGRAt(x, y int) BGR {
	if !f.InBounds(x, y) {
		return Black
	}
	i := f.Offset(x, y)
	return BGR{B: f.Pix[i], G: f.Pix[i+1], R: f.Pix[i+2]}
}

// SetBGR writes the pixel at (x, y). Out of range coordinates are ignored.
func (f *Frame) SetBGR(x, y int, c BGR) {
	if !f.InBounds(x, y) {
		return
	}
	i := f.Offset(x, y)
	f.Pix[i], f.Pix[i+1], f.Pix[i+2] = c.B, c.G, c.R
}

// Clone returns a deep copy.
func (f *Frame) Clone() *Frame {
	if f == nil {
		return nil
	}
	c := &Frame{Width: f.Width, Height: f.Height, Pix: make([]uint8, len(f.Pix))}
	copy(c.Pix, f.Pix)
	return c
}

// Equal reports whether both frames have the same size and identical bytes.
func (f *Frame) Equal(o *Frame) bool {
	if f == nil || o == nil {
		return f == o
	}
	return f.Width == o.Width && f.Height == o.Height && bytes.Equal(f.Pix, o.Pix)
}

// ColorModel implements image.Image.
func (f *Frame) ColorModel() color.Model {
	return color.RGBAModel
}

// Bounds implements image.Image.
func (f *Frame) Bounds() image.Rectangle {
	return image.Rect(0, 0, f.Width, f.Height)
}

// At implements image.Image.
func (f *Frame) At(x, y int) color.Color {
	return f.BGRAt(x, y).RGBA()
}

// Opaque reports that every pixel is fully opaque; image/png uses it to
// pick a 3-channel encoding.
func (f *Frame) Opaque() bool {
	return true
}

// Set implements draw.Image.
func (f *Frame) Set(x, y int, c color.Color) {
	f.SetBGR(x, y, FromColor(c))
}

var _ draw.Image = (*Frame)(nil)
