package composite

import (
	"errors"

	"github.com/cjeanneret/snapmerge/internal/frame"
)

var (
	// ErrInvalidCapture is returned when the captured image has zero area.
	ErrInvalidCapture = errors.New("composite: captured image must be at least 1x1")
	// ErrInvalidTemplate is returned when no template is given.
	ErrInvalidTemplate = errors.New("composite: template is nil")
)

// Marker is the exact pixel value that marks where the capture is inlaid.
// Matching is exact per channel; near-white pixels are kept as they are.
var Marker = frame.White

// Composite returns a new image the size of template where every marker
// pixel at (x, y) is replaced by captured[y mod Hc, x mod Wc] and every
// other pixel is copied from template. The capture therefore tiles the
// template in both axes. Neither input is modified.
func Composite(template, captured *frame.Frame) (*frame.Frame, error) {
	if template == nil {
		return nil, ErrInvalidTemplate
	}
	if captured.Empty() {
		return nil, ErrInvalidCapture
	}

	out := template.Clone()
	tw, th := template.Width, template.Height
	cw, ch := captured.Width, captured.Height
	tStride, cStride := template.Stride(), captured.Stride()

	for y := 0; y < th; y++ {
		row := y * tStride
		srcRow := (y % ch) * cStride
		for x := 0; x < tw; x++ {
			i := row + x*frame.Channels
			if out.Pix[i] != Marker.B || out.Pix[i+1] != Marker.G || out.Pix[i+2] != Marker.R {
				continue
			}
			j := srcRow + (x%cw)*frame.Channels
			copy(out.Pix[i:i+frame.Channels], captured.Pix[j:j+frame.Channels])
		}
	}
	return out, nil
}

// MarkerCount returns how many pixels of template would be replaced.
func MarkerCount(template *frame.Frame) int {
	if template == nil {
		return 0
	}
	n := 0
	for i := 0; i+frame.Channels <= len(template.Pix); i += frame.Channels {
		if template.Pix[i] == Marker.B && template.Pix[i+1] == Marker.G && template.Pix[i+2] == Marker.R {
			n++
		}
	}
	return n
}
