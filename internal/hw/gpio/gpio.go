// Package gpio reads push buttons wired to GPIO pins. The real driver
// talks to a Raspberry Pi through go-rpio; the mock keeps levels in
// memory for development on a PC and for tests.
package gpio

import (
	"fmt"
	"sync"

	"github.com/cjeanneret/snapmerge/internal/debug"
)

// Level represents the logical state of a GPIO pin.
type Level bool

const (
	Low  Level = false
	High Level = true
)

func (l Level) String() string {
	if l == High {
		return "high"
	}
	return "low"
}

// Pull selects the internal resistor of an input pin.
type Pull int

const (
	PullNone Pull = iota
	// PullUp is the usual wiring for a button that shorts the pin to
	// ground: idle reads High, pressed reads Low.
	PullUp
	PullDown
)

func (p Pull) String() string {
	switch p {
	case PullNone:
		return "none"
	case PullUp:
		return "up"
	case PullDown:
		return "down"
	default:
		return fmt.Sprintf("pull(%d)", int(p))
	}
}

// Driver reads input pins. Pins must be set up before they are read.
type Driver interface {
	SetupInput(pin int, pull Pull) error
	ReadPin(pin int) (Level, error)
	Close() error
}

// NewDriver creates a GPIO driver based on the chosen mode.
// If mock is true, returns a MockDriver (for dev/test).
// If mock is false, returns a real RPiDriver (for Raspberry Pi).
func NewDriver(mock bool) (Driver, error) {
	if mock {
		debug.Info("Using MOCK GPIO driver (development mode)")
		return NewMockDriver(), nil
	}
	return NewRPiRealDriver()
}

// MockDriver keeps pin levels in memory. A pin set up with a pull
// resistor idles at the level the resistor pulls to; SetLevel simulates a
// button.
type MockDriver struct {
	mu     sync.Mutex
	pulls  map[int]Pull
	levels map[int]Level
}

// NewMockDriver returns an empty mock.
func NewMockDriver() *MockDriver {
	return &MockDriver{
		pulls:  make(map[int]Pull),
		levels: make(map[int]Level),
	}
}

func (m *MockDriver) SetupInput(pin int, pull Pull) error {
	debug.GPIO("SetupInput", pin, pull)
	m.mu.Lock()
	defer m.mu.Unlock()
	m.pulls[pin] = pull
	return nil
}

func (m *MockDriver) ReadPin(pin int) (Level, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	pull, ok := m.pulls[pin]
	if !ok {
		return Low, fmt.Errorf("gpio: pin %d read before setup", pin)
	}
	level, forced := m.levels[pin]
	if !forced {
		level = pull == PullUp
	}
	debug.GPIO("ReadPin", pin, level)
	return level, nil
}

// SetLevel forces the level later reads return, e.g. to press a button.
func (m *MockDriver) SetLevel(pin int, level Level) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.levels[pin] = level
}

// Release drops a forced level so the pin floats back to its pull.
func (m *MockDriver) Release(pin int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.levels, pin)
}

func (m *MockDriver) Close() error {
	debug.Trace("GPIO Close (mock)")
	return nil
}
