package input

import (
	"image"

	"github.com/cjeanneret/snapmerge/internal/debug"
	"github.com/cjeanneret/snapmerge/internal/hw/gpio"
)

// Buttons polls physical push buttons wired between a GPIO pin and
// ground. A press of the shoot button becomes a click at ShootAt, so it
// goes through the same hit-test as a pointer click; a press of the
// cancel button becomes a cancel request.
//
// Presses are edge-triggered: holding a button down yields one event.
type Buttons struct {
	gpio      gpio.Driver
	shootPin  int
	cancelPin int
	shootAt   image.Point

	shootDown  bool
	cancelDown bool
}

// NewButtons configures the pins as pulled-up inputs. A pin number of 0
// disables that button.
func NewButtons(g gpio.Driver, shootPin, cancelPin int, shootAt image.Point) (*Buttons, error) {
	for _, pin := range []int{shootPin, cancelPin} {
		if pin == 0 {
			continue
		}
		if err := g.SetupInput(pin, gpio.PullUp); err != nil {
			return nil, err
		}
	}
	debug.Verbose("Buttons: shoot pin %d, cancel pin %d, shoot maps to %v", shootPin, cancelPin, shootAt)
	return &Buttons{
		gpio:      g,
		shootPin:  shootPin,
		cancelPin: cancelPin,
		shootAt:   shootAt,
	}, nil
}

// Poll implements Source. Read errors are logged and treated as released.
func (b *Buttons) Poll() []Event {
	var out []Event
	if b.pressed(b.shootPin, &b.shootDown) {
		out = append(out, ClickAt(b.shootAt.X, b.shootAt.Y))
	}
	if b.pressed(b.cancelPin, &b.cancelDown) {
		out = append(out, CancelRequest())
	}
	return out
}

// pressed reports a High to Low transition on pin and updates down.
func (b *Buttons) pressed(pin int, down *bool) bool {
	if pin == 0 {
		return false
	}
	level, err := b.gpio.ReadPin(pin)
	if err != nil {
		debug.Error(err)
		*down = false
		return false
	}
	now := level == gpio.Low
	edge := now && !*down
	*down = now
	if edge {
		debug.Live("Buttons: pin %d pressed", pin)
	}
	return edge
}
