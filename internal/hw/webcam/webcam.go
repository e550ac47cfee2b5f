// Package webcam connects the capture loop to OpenCV: a VideoCapture
// device as the frame producer and a HighGUI window as a local viewer.
package webcam

import (
	"errors"
	"fmt"
	"image"
	"io"

	"github.com/cjeanneret/snapmerge/internal/debug"
	"github.com/cjeanneret/snapmerge/internal/frame"
	"github.com/cjeanneret/snapmerge/internal/hw/camera"
	"gocv.io/x/gocv"
)

// Device is a camera.Device backed by gocv.VideoCapture.
type Device struct {
	id  int
	cap *gocv.VideoCapture
	mat gocv.Mat // reused between reads
}

// NewDevice returns an unopened device for the given OpenCV index.
func NewDevice(id int) *Device {
	return &Device{id: id}
}

// Open implements camera.Device.
func (d *Device) Open(width, height int) (image.Point, error) {
	if d.cap != nil {
		return d.size(), nil
	}
	vc, err := gocv.OpenVideoCapture(d.id)
	if err != nil {
		return image.Point{}, fmt.Errorf("error opening camera %d: %v", d.id, err)
	}
	if !vc.IsOpened() {
		vc.Close()
		return image.Point{}, fmt.Errorf("camera %d is not open", d.id)
	}

	vc.Set(gocv.VideoCaptureFrameWidth, float64(width))
	vc.Set(gocv.VideoCaptureFrameHeight, float64(height))

	d.cap = vc
	d.mat = gocv.NewMat()
	size := d.size()
	debug.Verbose("Webcam %d: requested %dx%d, device reports %dx%d", d.id, width, height, size.X, size.Y)
	return size, nil
}

func (d *Device) size() image.Point {
	return image.Pt(
		int(d.cap.Get(gocv.VideoCaptureFrameWidth)),
		int(d.cap.Get(gocv.VideoCaptureFrameHeight)),
	)
}

// Read implements camera.Device. The returned frame owns its pixels.
func (d *Device) Read() (*frame.Frame, error) {
	if d.cap == nil {
		return nil, errors.New("webcam: device not open")
	}
	if ok := d.cap.Read(&d.mat); !ok {
		return nil, io.EOF
	}
	if d.mat.Empty() {
		return nil, errors.New("webcam: empty frame")
	}
	return MatToFrame(d.mat)
}

// Close implements camera.Device.
func (d *Device) Close() error {
	if d.cap == nil {
		return nil
	}
	err := d.cap.Close()
	d.mat.Close()
	d.cap = nil
	if err != nil {
		return fmt.Errorf("error closing camera %d: %v", d.id, err)
	}
	return nil
}

var _ camera.Device = (*Device)(nil)

// MatToFrame copies a Mat into a BGR frame, converting gray and BGRA input.
func MatToFrame(m gocv.Mat) (*frame.Frame, error) {
	src := m
	switch m.Channels() {
	case 3:
	case 1, 4:
		conv := gocv.NewMat()
		defer conv.Close()
		code := gocv.ColorGrayToBGR
		if m.Channels() == 4 {
			code = gocv.ColorBGRAToBGR
		}
		gocv.CvtColor(m, &conv, code)
		if conv.Empty() {
			return nil, fmt.Errorf("webcam: convert %d channels failed", m.Channels())
		}
		src = conv
	default:
		return nil, fmt.Errorf("webcam: unsupported channel count %d", m.Channels())
	}

	data := src.ToBytes()
	f := frame.New(src.Cols(), src.Rows())
	if len(data) != len(f.Pix) {
		return nil, fmt.Errorf("webcam: unexpected buffer size %d for %dx%d", len(data), f.Width, f.Height)
	}
	copy(f.Pix, data)
	return f, nil
}

// FrameToMat wraps a copy of f's pixels in a new Mat. The caller closes it.
func FrameToMat(f *frame.Frame) (gocv.Mat, error) {
	return gocv.NewMatFromBytes(f.Height, f.Width, gocv.MatTypeCV8UC3, f.Pix)
}

// Probe returns the indexes below limit that can be opened.
func Probe(limit int) []int {
	var ids []int
	for i := 0; i < limit; i++ {
		vc, err := gocv.OpenVideoCapture(i)
		if err != nil {
			continue
		}
		if vc.IsOpened() {
			ids = append(ids, i)
		}
		vc.Close()
	}
	return ids
}
