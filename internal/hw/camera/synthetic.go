package camera

import (
	"errors"
	"image"
	"io"
	"time"

	"github.com/cjeanneret/snapmerge/internal/debug"
	"github.com/cjeanneret/snapmerge/internal/frame"
)

// SyntheticDevice produces a moving test pattern. It stands in for a real
// webcam during development, the same way the mock GPIO driver stands in
// for a Raspberry Pi.
type SyntheticDevice struct {
	// FPS paces Read; 0 disables pacing.
	FPS int
	// MaxFrames ends the stream after that many frames; 0 means endless.
	MaxFrames int

	size   image.Point
	count  int
	last   time.Time
	opened bool
}

// NewSyntheticDevice creates a test-pattern device.
func NewSyntheticDevice(fps, maxFrames int) *SyntheticDevice {
	return &SyntheticDevice{FPS: fps, MaxFrames: maxFrames}
}

// Open implements Device. The pattern honours any positive resolution.
func (d *SyntheticDevice) Open(width, height int) (image.Point, error) {
	if width <= 0 || height <= 0 {
		return image.Point{}, errors.New("synthetic: resolution must be positive")
	}
	d.size = image.Pt(width, height)
	d.count = 0
	d.opened = true
	debug.Info("Using SYNTHETIC camera (development mode)")
	return d.size, nil
}

// Read implements Device.
func (d *SyntheticDevice) Read() (*frame.Frame, error) {
	if !d.opened {
		return nil, errors.New("synthetic: device not open")
	}
	if d.MaxFrames > 0 && d.count >= d.MaxFrames {
		return nil, io.EOF
	}
	d.pace()

	f := frame.New(d.size.X, d.size.Y)
	shift := d.count * 4
	for y := 0; y < f.Height; y++ {
		for x := 0; x < f.Width; x++ {
			f.SetBGR(x, y, frame.BGR{
				B: uint8(x + shift),
				G: uint8(y + shift/2),
				R: uint8((x ^ y) + shift),
			})
		}
	}
	d.count++
	return f, nil
}

func (d *SyntheticDevice) pace() {
	if d.FPS <= 0 {
		return
	}
	interval := time.Second / time.Duration(d.FPS)
	if !d.last.IsZero() {
		if wait := interval - time.Since(d.last); wait > 0 {
			time.Sleep(wait)
		}
	}
	d.last = time.Now()
}

// Close implements Device.
func (d *SyntheticDevice) Close() error {
	d.opened = false
	return nil
}

var _ Device = (*SyntheticDevice)(nil)
