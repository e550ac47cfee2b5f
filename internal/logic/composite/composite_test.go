package composite

import (
	"errors"
	"testing"

	"github.com/cjeanneret/snapmerge/internal/frame"
)

var (
	pxA = frame.BGR{B: 1, G: 2, R: 3}
	pxB = frame.BGR{B: 4, G: 5, R: 6}
	pxC = frame.BGR{B: 7, G: 8, R: 9}
	pxD = frame.BGR{B: 10, G: 11, R: 12}
)

func capture2x2() *frame.Frame {
	c := frame.New(2, 2)
	c.SetBGR(0, 0, pxA)
	c.SetBGR(1, 0, pxB)
	c.SetBGR(0, 1, pxC)
	c.SetBGR(1, 1, pxD)
	return c
}

// patterned fills a frame with a mix of marker and non-marker pixels.
func patterned(w, h int) *frame.Frame {
	f := frame.New(w, h)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			if (x*7+y*3)%4 == 0 {
				f.SetBGR(x, y, frame.White)
			} else {
				f.SetBGR(x, y, frame.BGR{B: uint8(x), G: uint8(y), R: 200})
			}
		}
	}
	return f
}

func TestComposite_FourByFourScenario(t *testing.T) {
	tmpl := frame.Filled(4, 4, frame.White)
	tmpl.SetBGR(0, 0, frame.Red)

	out, err := Composite(tmpl, capture2x2())
	if err != nil {
		t.Fatalf("Composite: %v", err)
	}

	want := [4][4]frame.BGR{
		{frame.Red, pxB, pxA, pxB},
		{pxC, pxD, pxC, pxD},
		{pxA, pxB, pxA, pxB},
		{pxC, pxD, pxC, pxD},
	}
	for y := 0; y < 4; y++ {
		for x := 0; x < 4; x++ {
			if got := out.BGRAt(x, y); got != want[y][x] {
				t.Errorf("pixel (%d,%d) = %+v, want %+v", x, y, got, want[y][x])
			}
		}
	}
}

func TestComposite_PerPixelContract(t *testing.T) {
	cases := []struct {
		name   string
		tw, th int
		cw, ch int
	}{
		{"capture_smaller", 13, 9, 3, 2},
		{"capture_larger", 5, 4, 640, 480},
		{"capture_1x1", 6, 6, 1, 1},
		{"capture_tall", 8, 3, 1, 7},
		{"same_size", 10, 10, 10, 10},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			tmpl := patterned(tc.tw, tc.th)
			shot := patterned(tc.cw, tc.ch)
			for i := range shot.Pix {
				shot.Pix[i] ^= 0x5a
			}

			out, err := Composite(tmpl, shot)
			if err != nil {
				t.Fatalf("Composite: %v", err)
			}
			if out.Width != tc.tw || out.Height != tc.th {
				t.Fatalf("size = %dx%d, want template size %dx%d", out.Width, out.Height, tc.tw, tc.th)
			}
			for y := 0; y < tc.th; y++ {
				for x := 0; x < tc.tw; x++ {
					var want frame.BGR
					if tmpl.BGRAt(x, y) == frame.White {
						want = shot.BGRAt(x%tc.cw, y%tc.ch)
					} else {
						want = tmpl.BGRAt(x, y)
					}
					if got := out.BGRAt(x, y); got != want {
						t.Fatalf("pixel (%d,%d) = %+v, want %+v", x, y, got, want)
					}
				}
			}
		})
	}
}

func TestComposite_NearWhiteIsKept(t *testing.T) {
	nearWhite := []frame.BGR{
		{B: 254, G: 255, R: 255},
		{B: 255, G: 254, R: 255},
		{B: 255, G: 255, R: 254},
	}
	tmpl := frame.New(len(nearWhite), 1)
	for x, c := range nearWhite {
		tmpl.SetBGR(x, 0, c)
	}

	out, err := Composite(tmpl, frame.Filled(1, 1, pxA))
	if err != nil {
		t.Fatalf("Composite: %v", err)
	}
	if !out.Equal(tmpl) {
		t.Error("near-white pixels must not be replaced")
	}
}

func TestComposite_Deterministic(t *testing.T) {
	tmpl := patterned(31, 17)
	shot := patterned(5, 3)

	first, err := Composite(tmpl, shot)
	if err != nil {
		t.Fatal(err)
	}
	second, err := Composite(tmpl, shot)
	if err != nil {
		t.Fatal(err)
	}
	if !first.Equal(second) {
		t.Error("two runs with the same inputs differ")
	}
}

func TestComposite_InputsUntouched(t *testing.T) {
	tmpl := patterned(9, 9)
	shot := capture2x2()
	tmplBefore, capBefore := tmpl.Clone(), shot.Clone()

	out, err := Composite(tmpl, shot)
	if err != nil {
		t.Fatal(err)
	}
	if !tmpl.Equal(tmplBefore) || !shot.Equal(capBefore) {
		t.Error("Composite modified an input")
	}
	if &out.Pix[0] == &tmpl.Pix[0] {
		t.Error("result shares storage with the template")
	}
}

func TestComposite_InvalidCapture(t *testing.T) {
	tmpl := frame.Filled(4, 4, frame.White)
	cases := []struct {
		name string
		shot *frame.Frame
	}{
		{"nil", nil},
		{"zero_width", frame.New(0, 5)},
		{"zero_height", frame.New(5, 0)},
		{"zero_both", frame.New(0, 0)},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			out, err := Composite(tmpl, tc.shot)
			if !errors.Is(err, ErrInvalidCapture) {
				t.Errorf("err = %v, want ErrInvalidCapture", err)
			}
			if out != nil {
				t.Error("no result expected on failure")
			}
		})
	}
}

func TestComposite_NilTemplate(t *testing.T) {
	if _, err := Composite(nil, capture2x2()); !errors.Is(err, ErrInvalidTemplate) {
		t.Errorf("err = %v, want ErrInvalidTemplate", err)
	}
}

func TestComposite_EmptyTemplate(t *testing.T) {
	out, err := Composite(frame.New(0, 0), capture2x2())
	if err != nil {
		t.Fatalf("empty template should succeed, got %v", err)
	}
	if out.Width != 0 || out.Height != 0 {
		t.Errorf("size = %dx%d, want 0x0", out.Width, out.Height)
	}
}

func TestMarkerCount(t *testing.T) {
	tmpl := frame.Filled(3, 2, frame.White)
	tmpl.SetBGR(1, 1, frame.Red)
	if got := MarkerCount(tmpl); got != 5 {
		t.Errorf("MarkerCount = %d, want 5", got)
	}
	if got := MarkerCount(nil); got != 0 {
		t.Errorf("MarkerCount(nil) = %d, want 0", got)
	}
}
