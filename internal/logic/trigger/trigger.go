package trigger

import (
	"image"

	"github.com/cjeanneret/snapmerge/internal/debug"
)

// Button is the fixed on-screen SHOOT region in display coordinates.
// The region is inclusive on every edge: [X, X+Width] x [Y, Y+Height].
type Button struct {
	X      int
	Y      int
	Width  int
	Height int
}

// DefaultButton is the bottom-right button of a 640x480 view.
func DefaultButton() Button {
	return Button{X: 500, Y: 400, Width: 120, Height: 50}
}

// Contains reports whether (x, y) falls inside the button, edges included.
func (b Button) Contains(x, y int) bool {
	return x >= b.X && x <= b.X+b.Width && y >= b.Y && y <= b.Y+b.Height
}

// Rect returns the button as a rectangle whose Max corner is inclusive.
func (b Button) Rect() image.Rectangle {
	return image.Rect(b.X, b.Y, b.X+b.Width, b.Y+b.Height)
}

// Center returns the middle of the button.
func (b Button) Center() image.Point {
	return image.Pt(b.X+b.Width/2, b.Y+b.Height/2)
}

// State records whether the shoot action happened during one capture
// session. It only ever goes from not fired to fired.
//
// State is owned by a single control flow and is not safe for concurrent
// use; concurrent input must be queued and drained by that control flow.
type State struct {
	button Button
	fired  bool
}

// NewState returns an unfired state for the given button.
func NewState(b Button) *State {
	return &State{button: b}
}

// HandleClick fires the trigger if (x, y) lies inside the button.
// Clicks elsewhere are ignored. It reports whether the click hit.
func (s *State) HandleClick(x, y int) bool {
	hit := s.button.Contains(x, y)
	debug.Click(x, y, hit)
	if hit {
		s.fired = true
	}
	return hit
}

// IsFired reports whether a click has landed on the button.
func (s *State) IsFired() bool {
	return s.fired
}

// Button returns the region this state hit-tests against.
func (s *State) Button() Button {
	return s.button
}
