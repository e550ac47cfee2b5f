package webcam

import (
	"testing"

	"github.com/cjeanneret/snapmerge/internal/frame"
	"gocv.io/x/gocv"
)

func TestFrameMatRoundTrip(t *testing.T) {
	f := frame.New(5, 3)
	for y := 0; y < f.Height; y++ {
		for x := 0; x < f.Width; x++ {
			f.SetBGR(x, y, frame.BGR{B: uint8(x * 40), G: uint8(y * 80), R: uint8(x + y)})
		}
	}

	mat, err := FrameToMat(f)
	if err != nil {
		t.Fatalf("FrameToMat: %v", err)
	}
	defer mat.Close()
	if mat.Cols() != 5 || mat.Rows() != 3 || mat.Channels() != 3 {
		t.Fatalf("mat = %dx%d c%d", mat.Cols(), mat.Rows(), mat.Channels())
	}

	back, err := MatToFrame(mat)
	if err != nil {
		t.Fatalf("MatToFrame: %v", err)
	}
	if !back.Equal(f) {
		t.Error("round trip changed pixels")
	}
}

func TestMatToFrame_Gray(t *testing.T) {
	mat, err := gocv.NewMatFromBytes(2, 2, gocv.MatTypeCV8UC1, []byte{0, 50, 100, 255})
	if err != nil {
		t.Fatal(err)
	}
	defer mat.Close()

	f, err := MatToFrame(mat)
	if err != nil {
		t.Fatalf("MatToFrame: %v", err)
	}
	if got := f.BGRAt(1, 1); got != frame.White {
		t.Errorf("(1,1) = %+v, want white", got)
	}
	if got := f.BGRAt(1, 0); got != (frame.BGR{B: 50, G: 50, R: 50}) {
		t.Errorf("(1,0) = %+v, want gray 50", got)
	}
}

func TestDevice_ReadBeforeOpen(t *testing.T) {
	d := NewDevice(0)
	if _, err := d.Read(); err == nil {
		t.Error("expected error reading an unopened device")
	}
	if err := d.Close(); err != nil {
		t.Errorf("Close on unopened device: %v", err)
	}
}
