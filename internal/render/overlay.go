// Package render draws the cosmetic decorations of the live view: the
// centered crosshair, the selfie mirror and the SHOOT button glyph.
package render

import (
	"image"

	"github.com/cjeanneret/snapmerge/internal/frame"
)

// Overlay describes the crosshair burned into display frames.
type Overlay struct {
	InnerRadius     int
	OuterRadius     int
	CrossHalfLength int
	Thickness       int
	Color           frame.BGR
	Mirror          bool
}

// DefaultOverlay matches the reference viewer: red rings of radius 30 and
// 60, a cross reaching 80 px from the center, 3 px strokes, mirrored.
func DefaultOverlay() Overlay {
	return Overlay{
		InnerRadius:     30,
		OuterRadius:     60,
		CrossHalfLength: 80,
		Thickness:       3,
		Color:           frame.Red,
		Mirror:          true,
	}
}

// Center returns the geometric center of f, recomputed on every call.
func Center(f *frame.Frame) image.Point {
	return image.Pt(f.Width/2, f.Height/2)
}

// Apply returns a new display buffer: a copy of src with the rings and the
// cross drawn at its center, then mirrored horizontally if o.Mirror is set.
// src is never modified.
func (o Overlay) Apply(src *frame.Frame) *frame.Frame {
	dst := src.Clone()
	c := Center(dst)

	Circle(dst, c, o.InnerRadius, o.Thickness, o.Color)
	Circle(dst, c, o.OuterRadius, o.Thickness, o.Color)
	Line(dst, image.Pt(c.X, c.Y-o.CrossHalfLength), image.Pt(c.X, c.Y+o.CrossHalfLength), o.Thickness, o.Color)
	Line(dst, image.Pt(c.X-o.CrossHalfLength, c.Y), image.Pt(c.X+o.CrossHalfLength, c.Y), o.Thickness, o.Color)

	if o.Mirror {
		FlipHorizontal(dst)
	}
	return dst
}

// Circle strokes a ring of the given radius and thickness. Pixels outside
// the frame are clipped.
func Circle(f *frame.Frame, center image.Point, radius, thickness int, c frame.BGR) {
	if radius <= 0 {
		return
	}
	if thickness < 1 {
		thickness = 1
	}
	// band is [radius - t/2, radius + t/2], compared on doubled values to stay in integers
	inner := 2*radius - thickness
	outer := 2*radius + thickness
	if inner < 0 {
		inner = 0
	}
	reach := radius + thickness/2 + 1
	for dy := -reach; dy <= reach; dy++ {
		for dx := -reach; dx <= reach; dx++ {
			d2 := 4 * (dx*dx + dy*dy)
			if d2 >= inner*inner && d2 <= outer*outer {
				f.SetBGR(center.X+dx, center.Y+dy, c)
			}
		}
	}
}

// Line strokes an axis-aligned segment from a to b inclusive. Diagonal
// segments are not needed by the overlay and are drawn as their bounding box.
func Line(f *frame.Frame, a, b image.Point, thickness int, c frame.BGR) {
	if thickness < 1 {
		thickness = 1
	}
	half := thickness / 2
	r := image.Rectangle{Min: a, Max: b}.Canon()
	if r.Dx() >= r.Dy() {
		r.Min.Y -= half
		r.Max.Y += thickness - 1 - half
	} else {
		r.Min.X -= half
		r.Max.X += thickness - 1 - half
	}
	FillRect(f, r, c)
}

// FillRect paints every pixel of r, bounds inclusive on both ends.
func FillRect(f *frame.Frame, r image.Rectangle, c frame.BGR) {
	r = r.Canon()
	for y := r.Min.Y; y <= r.Max.Y; y++ {
		for x := r.Min.X; x <= r.Max.X; x++ {
			f.SetBGR(x, y, c)
		}
	}
}

// FlipHorizontal mirrors f in place around its vertical axis.
func FlipHorizontal(f *frame.Frame) {
	for y := 0; y < f.Height; y++ {
		for l, r := 0, f.Width-1; l < r; l, r = l+1, r-1 {
			li, ri := f.Offset(l, y), f.Offset(r, y)
			for k := 0; k < frame.Channels; k++ {
				f.Pix[li+k], f.Pix[ri+k] = f.Pix[ri+k], f.Pix[li+k]
			}
		}
	}
}
