package render

import (
	"image"
	"testing"

	"github.com/cjeanneret/snapmerge/internal/frame"
)

// gradient returns a frame where no two columns look alike, so mirroring
// and accidental writes are easy to detect.
func gradient(w, h int) *frame.Frame {
	f := frame.New(w, h)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			f.SetBGR(x, y, frame.BGR{B: uint8(x), G: uint8(y), R: uint8(x + y)})
		}
	}
	return f
}

// ---------- Overlay.Apply ----------

func TestApply_DoesNotMutateInput(t *testing.T) {
	src := gradient(200, 180)
	before := src.Clone()

	_ = DefaultOverlay().Apply(src)

	if !src.Equal(before) {
		t.Fatal("Apply modified its input frame")
	}
}

func TestApply_ReturnsNewBufferWithSameSize(t *testing.T) {
	src := gradient(64, 48)
	out := DefaultOverlay().Apply(src)

	if out == src {
		t.Fatal("Apply must return a new frame")
	}
	if out.Width != src.Width || out.Height != src.Height {
		t.Errorf("size = %dx%d, want %dx%d", out.Width, out.Height, src.Width, src.Height)
	}
}

func TestApply_DrawsAtCenter(t *testing.T) {
	o := DefaultOverlay()
	o.Mirror = false
	src := frame.New(640, 480)

	out := o.Apply(src)

	cases := []struct {
		name string
		x, y int
	}{
		{"center", 320, 240},
		{"inner_ring_right", 350, 240},
		{"outer_ring_top", 320, 180},
		{"cross_left_tip", 240, 240},
		{"cross_bottom_tip", 320, 320},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := out.BGRAt(tc.x, tc.y); got != frame.Red {
				t.Errorf("pixel (%d,%d) = %+v, want red", tc.x, tc.y, got)
			}
		})
	}

	if got := out.BGRAt(320+45, 240+10); got != frame.Black {
		t.Errorf("pixel between rings = %+v, want untouched", got)
	}
	if got := out.BGRAt(320, 240+85); got != frame.Black {
		t.Errorf("pixel past cross tip = %+v, want untouched", got)
	}
}

func TestApply_FollowsFrameSize(t *testing.T) {
	o := DefaultOverlay()
	o.Mirror = false

	for _, size := range []image.Point{{640, 480}, {320, 240}, {1280, 720}} {
		out := o.Apply(frame.New(size.X, size.Y))
		if got := out.BGRAt(size.X/2, size.Y/2); got != frame.Red {
			t.Errorf("%v: center not drawn", size)
		}
	}
}

func TestApply_MirrorsHorizontally(t *testing.T) {
	o := DefaultOverlay()
	o.InnerRadius, o.OuterRadius, o.CrossHalfLength = 0, 0, 0
	o.Thickness = 1
	o.Color = frame.BGR{B: 7, G: 7, R: 7}
	src := gradient(10, 4)
	src.SetBGR(5, 2, frame.BGR{B: 7, G: 7, R: 7}) // the 1px cross at the center

	out := o.Apply(src)

	for y := 0; y < src.Height; y++ {
		for x := 0; x < src.Width; x++ {
			if out.BGRAt(x, y) != src.BGRAt(src.Width-1-x, y) {
				t.Fatalf("pixel (%d,%d) is not the mirror of (%d,%d)", x, y, src.Width-1-x, y)
			}
		}
	}
}

func TestApply_TinyFrameClips(t *testing.T) {
	out := DefaultOverlay().Apply(frame.New(3, 2))
	if out.Width != 3 || out.Height != 2 {
		t.Errorf("size = %dx%d, want 3x2", out.Width, out.Height)
	}
}

// ---------- FlipHorizontal ----------

func TestFlipHorizontal_Twice(t *testing.T) {
	f := gradient(7, 3)
	orig := f.Clone()
	FlipHorizontal(f)
	if f.Equal(orig) {
		t.Fatal("single flip should change an asymmetric frame")
	}
	FlipHorizontal(f)
	if !f.Equal(orig) {
		t.Error("double flip should restore the frame")
	}
}

// ---------- Button ----------

func TestButton_FillsInclusiveRect(t *testing.T) {
	f := frame.New(640, 480)
	style := DefaultButtonStyle()
	style.Label = ""
	r := image.Rect(500, 400, 620, 450)

	Button(f, r, style)

	for _, p := range []image.Point{{500, 400}, {620, 450}, {620, 400}, {500, 450}} {
		if got := f.BGRAt(p.X, p.Y); got != style.Fill {
			t.Errorf("corner %v = %+v, want fill", p, got)
		}
	}
	for _, p := range []image.Point{{499, 400}, {621, 450}, {500, 399}, {500, 451}} {
		if got := f.BGRAt(p.X, p.Y); got != frame.Black {
			t.Errorf("outside %v = %+v, want untouched", p, got)
		}
	}
}

func TestButton_DrawsLabel(t *testing.T) {
	f := frame.New(640, 480)
	style := DefaultButtonStyle()
	r := image.Rect(500, 400, 620, 450)

	Button(f, r, style)

	text := 0
	for y := r.Min.Y; y <= r.Max.Y; y++ {
		for x := r.Min.X; x <= r.Max.X; x++ {
			if f.BGRAt(x, y) == style.Text {
				text++
			}
		}
	}
	if text == 0 {
		t.Error("expected label pixels inside the button")
	}
}
