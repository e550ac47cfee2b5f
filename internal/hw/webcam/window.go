package webcam

import (
	"github.com/cjeanneret/snapmerge/internal/debug"
	"github.com/cjeanneret/snapmerge/internal/frame"
	"github.com/cjeanneret/snapmerge/internal/input"
	"gocv.io/x/gocv"
)

// KeyEscape is the key code that cancels a session from the window.
const KeyEscape = 27

// Window shows display frames in a HighGUI window and reports left clicks
// and the escape key. It is both a presenter and an input source: Present
// queues the image, Poll pumps the window's event loop.
//
// HighGUI windows must be driven from the goroutine that created them.
// The mouse callback runs inside WaitKey, so pending needs no lock.
type Window struct {
	win     *gocv.Window
	pending []input.Event
}

// NewWindow opens a named window and starts listening for clicks.
func NewWindow(name string) *Window {
	w := &Window{win: gocv.NewWindow(name)}
	w.win.SetMouseHandler(w.onMouse, nil)
	return w
}

func (w *Window) onMouse(event, x, y, _ int, _ interface{}) {
	if event != int(gocv.MouseEventLeftButtonDown) {
		return
	}
	w.pending = append(w.pending, input.ClickAt(x, y))
}

// Present implements capture.Presenter.
func (w *Window) Present(display *frame.Frame) {
	mat, err := FrameToMat(display)
	if err != nil {
		debug.Error(err)
		return
	}
	defer mat.Close()
	w.win.IMShow(mat)
}

// Poll implements input.Source.
func (w *Window) Poll() []input.Event {
	return w.events(w.win.WaitKey(1))
}

// events hands over the clicks seen since the last poll, followed by a
// cancel when key is escape. A negative key means no key was pressed.
func (w *Window) events(key int) []input.Event {
	out := w.pending
	w.pending = nil
	if key < 0 {
		return out
	}
	if key&0xff == KeyEscape {
		return append(out, input.CancelRequest())
	}
	debug.Trace("Window: key %d ignored", key)
	return out
}

// Close destroys the window.
func (w *Window) Close() error {
	return w.win.Close()
}
