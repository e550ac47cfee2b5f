package camera

import (
	"errors"
	"image"
	"io"
	"testing"

	"github.com/cjeanneret/snapmerge/internal/frame"
	"github.com/cjeanneret/snapmerge/internal/render"
)

// recordingDevice serves scripted frames and records lifecycle calls.
type recordingDevice struct {
	openErr error
	size    image.Point
	frames  []*frame.Frame
	reads   int
	opens   int
	closes  int
}

func (d *recordingDevice) Open(width, height int) (image.Point, error) {
	d.opens++
	if d.openErr != nil {
		return image.Point{}, d.openErr
	}
	if d.size == (image.Point{}) {
		d.size = image.Pt(width, height)
	}
	return d.size, nil
}

func (d *recordingDevice) Read() (*frame.Frame, error) {
	if d.reads >= len(d.frames) {
		return nil, io.EOF
	}
	f := d.frames[d.reads]
	d.reads++
	if f == nil {
		return nil, errors.New("transient read failure")
	}
	return f, nil
}

func (d *recordingDevice) Close() error {
	d.closes++
	return nil
}

func newTestSource(dev Device) *Source {
	return NewSource(dev, 4, 3, render.DefaultOverlay())
}

// ---------- Open ----------

func TestSource_OpenFailure(t *testing.T) {
	dev := &recordingDevice{openErr: errors.New("no such device")}
	s := newTestSource(dev)

	err := s.Open()
	if !errors.Is(err, ErrDeviceUnavailable) {
		t.Fatalf("err = %v, want ErrDeviceUnavailable", err)
	}
	if s.IsOpen() {
		t.Error("source must not be open after a failed Open")
	}
	if _, ok := s.Acquire(); ok {
		t.Error("Acquire must not deliver frames after a failed Open")
	}
	if err := s.Close(); err != nil {
		t.Errorf("Close: %v", err)
	}
	if dev.closes != 0 {
		t.Errorf("device closed %d times, want 0 (never opened)", dev.closes)
	}
}

func TestSource_OpenRejectsZeroResolution(t *testing.T) {
	dev := &recordingDevice{size: image.Pt(0, 480)}
	s := newTestSource(dev)
	if err := s.Open(); !errors.Is(err, ErrDeviceUnavailable) {
		t.Fatalf("err = %v, want ErrDeviceUnavailable", err)
	}
	if dev.closes != 1 {
		t.Errorf("device should be released after rejection, closes = %d", dev.closes)
	}
}

func TestSource_OpenRecordsDeviceSize(t *testing.T) {
	dev := &recordingDevice{size: image.Pt(8, 6)}
	s := newTestSource(dev)
	if err := s.Open(); err != nil {
		t.Fatal(err)
	}
	if s.Size() != image.Pt(8, 6) {
		t.Errorf("Size = %v, want (8,6)", s.Size())
	}
	if err := s.Open(); err != nil {
		t.Fatal(err)
	}
	if dev.opens != 1 {
		t.Errorf("second Open reached the device, opens = %d", dev.opens)
	}
}

// ---------- Acquire ----------

func TestSource_AcquireSequence(t *testing.T) {
	good := frame.New(4, 3)
	dev := &recordingDevice{frames: []*frame.Frame{good, nil, frame.New(5, 3), frame.New(0, 0)}}
	s := newTestSource(dev)
	if err := s.Open(); err != nil {
		t.Fatal(err)
	}

	if f, ok := s.Acquire(); !ok || f != good {
		t.Fatalf("first Acquire = (%v, %v), want the scripted frame", f, ok)
	}
	for i, desc := range []string{"read error", "size mismatch", "empty frame", "end of stream"} {
		if f, ok := s.Acquire(); ok || f != nil {
			t.Errorf("Acquire #%d (%s) = (%v, %v), want no frame", i+2, desc, f, ok)
		}
	}
}

// ---------- RenderOverlay ----------

func TestSource_RenderOverlayLeavesRawFrame(t *testing.T) {
	s := NewSource(&recordingDevice{}, 640, 480, render.DefaultOverlay())
	raw := frame.Filled(640, 480, frame.BGR{B: 10, G: 20, R: 30})
	before := raw.Clone()

	display := s.RenderOverlay(raw)

	if !raw.Equal(before) {
		t.Fatal("RenderOverlay mutated the raw frame")
	}
	if display.Equal(raw) {
		t.Error("display frame should carry the overlay")
	}
}

// ---------- Close ----------

func TestSource_CloseIdempotent(t *testing.T) {
	dev := &recordingDevice{}
	s := newTestSource(dev)
	if err := s.Open(); err != nil {
		t.Fatal(err)
	}
	for i := 0; i < 3; i++ {
		if err := s.Close(); err != nil {
			t.Fatalf("Close #%d: %v", i+1, err)
		}
	}
	if dev.closes != 1 {
		t.Errorf("device closed %d times, want 1", dev.closes)
	}
	if s.IsOpen() {
		t.Error("source still open after Close")
	}
	if err := s.Open(); !errors.Is(err, ErrDeviceUnavailable) {
		t.Errorf("reopening a closed source: err = %v, want ErrDeviceUnavailable", err)
	}
}

// ---------- SyntheticDevice ----------

func TestSyntheticDevice_MaxFrames(t *testing.T) {
	dev := NewSyntheticDevice(0, 2)
	size, err := dev.Open(16, 9)
	if err != nil {
		t.Fatal(err)
	}
	if size != image.Pt(16, 9) {
		t.Errorf("size = %v, want (16,9)", size)
	}
	for i := 0; i < 2; i++ {
		f, err := dev.Read()
		if err != nil {
			t.Fatalf("Read #%d: %v", i+1, err)
		}
		if f.Width != 16 || f.Height != 9 {
			t.Errorf("frame size = %dx%d", f.Width, f.Height)
		}
	}
	if _, err := dev.Read(); !errors.Is(err, io.EOF) {
		t.Errorf("err = %v, want io.EOF", err)
	}
}

func TestSyntheticDevice_FramesChange(t *testing.T) {
	dev := NewSyntheticDevice(0, 0)
	if _, err := dev.Open(8, 8); err != nil {
		t.Fatal(err)
	}
	a, _ := dev.Read()
	b, _ := dev.Read()
	if a.Equal(b) {
		t.Error("consecutive synthetic frames should differ")
	}
}

func TestSyntheticDevice_RejectsBadResolution(t *testing.T) {
	if _, err := NewSyntheticDevice(0, 0).Open(0, 10); err == nil {
		t.Error("expected error for zero width")
	}
	if _, err := NewSyntheticDevice(0, 0).Read(); err == nil {
		t.Error("expected error reading an unopened device")
	}
}

func TestSyntheticDevice_ImplementsDevice(t *testing.T) {
	var _ Device = NewSyntheticDevice(30, 0) // compile-time check
}
