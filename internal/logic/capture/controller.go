package capture

import (
	"context"
	"fmt"

	"github.com/cjeanneret/snapmerge/internal/debug"
	"github.com/cjeanneret/snapmerge/internal/frame"
	"github.com/cjeanneret/snapmerge/internal/hw/camera"
	"github.com/cjeanneret/snapmerge/internal/input"
	"github.com/cjeanneret/snapmerge/internal/logic/trigger"
	"github.com/cjeanneret/snapmerge/internal/render"
)

// State is the lifecycle position of a capture session.
type State int

const (
	// Idle means Run has not been called yet.
	Idle State = iota
	Running
	DoneCaptured
	DoneCancelled
	DoneNoDevice
)

func (s State) String() string {
	switch s {
	case Idle:
		return "IDLE"
	case Running:
		return "RUNNING"
	case DoneCaptured:
		return "DONE_CAPTURED"
	case DoneCancelled:
		return "DONE_CANCELLED"
	case DoneNoDevice:
		return "DONE_NO_DEVICE"
	default:
		return fmt.Sprintf("STATE(%d)", int(s))
	}
}

// Terminal reports whether s ends a session.
func (s State) Terminal() bool {
	return s == DoneCaptured || s == DoneCancelled || s == DoneNoDevice
}

// Presenter shows a display frame to the operator. The frame belongs to
// the presenter once handed over; the loop never touches it again.
type Presenter interface {
	Present(display *frame.Frame)
}

// PresenterFunc adapts a function to Presenter.
type PresenterFunc func(display *frame.Frame)

func (f PresenterFunc) Present(display *frame.Frame) { f(display) }

// Presenters fans a display frame out to several presenters.
type Presenters []Presenter

func (ps Presenters) Present(display *frame.Frame) {
	for _, p := range ps {
		if p != nil {
			p.Present(display)
		}
	}
}

// Result is the only externally visible output of a session.
type Result struct {
	State State
	// Capture is the raw frame of the iteration in which the trigger fired,
	// nil unless State is DoneCaptured.
	Capture *frame.Frame
	// Frames is the number of display frames presented.
	Frames int
}

// Captured reports whether the session produced a frame.
func (r *Result) Captured() bool {
	return r.State == DoneCaptured && r.Capture != nil
}

// Session drives one acquisition loop: acquire, overlay, present, drain
// input, decide. Everything runs on the caller's goroutine.
type Session struct {
	source    *camera.Source
	input     input.Source
	presenter Presenter
	trigger   *trigger.State
	style     render.ButtonStyle
	state     State
}

// NewSession prepares a session over an unopened source. The trigger
// state is created fresh and lives as long as the session.
func NewSession(src *camera.Source, in input.Source, p Presenter, button trigger.Button, style render.ButtonStyle) *Session {
	if p == nil {
		p = Presenters(nil)
	}
	return &Session{
		source:    src,
		input:     in,
		presenter: p,
		trigger:   trigger.NewState(button),
		style:     style,
	}
}

// State returns the current state.
func (s *Session) State() State {
	return s.state
}

// Run opens the source and loops until the trigger fires, a cancel is
// requested, ctx is done or the source runs out of frames. The source is
// closed exactly once on every path.
//
// A single missed frame ends the session as cancelled; there is no retry.
// The returned error is non-nil only when the device could not be opened,
// in which case the state is DoneNoDevice and the loop never ran.
func (s *Session) Run(ctx context.Context) (*Result, error) {
	defer func() {
		if err := s.source.Close(); err != nil {
			debug.Error(fmt.Errorf("close camera: %w", err))
		}
	}()

	res := &Result{}

	if err := s.source.Open(); err != nil {
		s.transition(DoneNoDevice)
		res.State = s.state
		return res, err
	}
	s.transition(Running)

	for {
		select {
		case <-ctx.Done():
			debug.Live("Session: context done (%v)", ctx.Err())
			s.transition(DoneCancelled)
			res.State = s.state
			return res, nil
		default:
		}

		raw, ok := s.source.Acquire()
		if !ok {
			s.transition(DoneCancelled)
			res.State = s.state
			return res, nil
		}
		debug.Frame(res.Frames+1, raw.Width, raw.Height)

		display := s.source.RenderOverlay(raw)
		render.Button(display, s.trigger.Button().Rect(), s.style)
		s.presenter.Present(display)
		res.Frames++

		cancel := s.drain()

		if s.trigger.IsFired() {
			res.Capture = raw
			s.transition(DoneCaptured)
			res.State = s.state
			return res, nil
		}
		if cancel {
			s.transition(DoneCancelled)
			res.State = s.state
			return res, nil
		}
	}
}

// drain applies every pending event before the caller checks the trigger.
func (s *Session) drain() (cancel bool) {
	if s.input == nil {
		return false
	}
	for _, ev := range s.input.Poll() {
		switch ev.Kind {
		case input.Click:
			s.trigger.HandleClick(ev.X, ev.Y)
		case input.Cancel:
			debug.Live("Session: cancel requested")
			cancel = true
		}
	}
	return cancel
}

func (s *Session) transition(to State) {
	debug.Transition(s.state.String(), to.String())
	s.state = to
}
