package camera

import (
	"errors"
	"fmt"
	"image"

	"github.com/cjeanneret/snapmerge/internal/debug"
	"github.com/cjeanneret/snapmerge/internal/frame"
	"github.com/cjeanneret/snapmerge/internal/render"
)

// ErrDeviceUnavailable is returned by Source.Open when the camera cannot be opened.
var ErrDeviceUnavailable = errors.New("camera: device unavailable")

// Device is the low-level interface to a frame producer.
// It represents an abstract "camera", regardless of how it's reached
// (OpenCV, a test pattern, a recording, etc.).
type Device interface {
	// Open acquires the device, asking for the given resolution.
	// It returns the resolution the device actually delivers.
	Open(width, height int) (image.Point, error)
	// Read returns the next raw frame. Any error means no frame was read.
	Read() (*frame.Frame, error)
	// Close releases the device.
	Close() error
}

// Source wraps a Device for one capture session. It produces raw frames
// and their display variant with the crosshair burned in.
//
// Frame dimensions are fixed when Open succeeds and never change for the
// lifetime of the Source.
type Source struct {
	dev     Device
	width   int
	height  int
	overlay render.Overlay

	size   image.Point
	opened bool
	closed bool
}

// NewSource creates a Source that will open dev at width x height.
func NewSource(dev Device, width, height int, overlay render.Overlay) *Source {
	return &Source{
		dev:     dev,
		width:   width,
		height:  height,
		overlay: overlay,
	}
}

// Open acquires the device. On failure the error wraps ErrDeviceUnavailable
// and the source must not be used to acquire frames.
func (s *Source) Open() error {
	if s.closed {
		return fmt.Errorf("%w: source already closed", ErrDeviceUnavailable)
	}
	if s.opened {
		return nil
	}
	size, err := s.dev.Open(s.width, s.height)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrDeviceUnavailable, err)
	}
	if size.X <= 0 || size.Y <= 0 {
		_ = s.dev.Close()
		return fmt.Errorf("%w: device reported resolution %dx%d", ErrDeviceUnavailable, size.X, size.Y)
	}
	s.size = size
	s.opened = true
	debug.Verbose("Camera: opened at %dx%d (requested %dx%d)", size.X, size.Y, s.width, s.height)
	return nil
}

// IsOpen reports whether the device is currently held.
func (s *Source) IsOpen() bool {
	return s.opened && !s.closed
}

// Size returns the session's frame size. It is zero until Open succeeds.
func (s *Source) Size() image.Point {
	return s.size
}

// Acquire returns a fresh raw frame, or ok=false when no frame is
// available (end of stream or a failed read). It never returns an error;
// the caller decides what a missed frame means.
func (s *Source) Acquire() (f *frame.Frame, ok bool) {
	if !s.IsOpen() {
		return nil, false
	}
	f, err := s.dev.Read()
	if err != nil {
		debug.Live("Camera: no frame (%v)", err)
		return nil, false
	}
	if f.Empty() {
		debug.Live("Camera: empty frame")
		return nil, false
	}
	if f.Width != s.size.X || f.Height != s.size.Y {
		debug.Live("Camera: frame size %dx%d differs from session size %dx%d", f.Width, f.Height, s.size.X, s.size.Y)
		return nil, false
	}
	return f, true
}

// RenderOverlay returns the display variant of f. f is left untouched.
func (s *Source) RenderOverlay(f *frame.Frame) *frame.Frame {
	return s.overlay.Apply(f)
}

// Close releases the device. It is safe to call more than once; only the
// first call reaches the device, and only if it was opened.
func (s *Source) Close() error {
	if s.closed {
		return nil
	}
	s.closed = true
	if !s.opened {
		return nil
	}
	debug.Verbose("Camera: releasing device")
	return s.dev.Close()
}
