// Package input carries pointer clicks and cancel requests from the
// presentation layer to the capture loop.
//
// Producers may live on any goroutine (HTTP handlers, a preview window,
// GPIO buttons); the capture loop consumes them with Poll, which never
// blocks. Events only take effect when the loop drains them.
package input

import (
	"fmt"
	"sync"

	"github.com/cjeanneret/snapmerge/internal/debug"
)

// Kind distinguishes input events.
type Kind int

const (
	// Click is a pointer press at X, Y in display coordinates.
	Click Kind = iota
	// Cancel asks the session to stop without capturing.
	Cancel
)

func (k Kind) String() string {
	switch k {
	case Click:
		return "click"
	case Cancel:
		return "cancel"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Event is one user action.
type Event struct {
	Kind Kind
	X    int
	Y    int
}

// ClickAt builds a click event.
func ClickAt(x, y int) Event {
	return Event{Kind: Click, X: x, Y: y}
}

// CancelRequest builds a cancel event.
func CancelRequest() Event {
	return Event{Kind: Cancel}
}

// Source is anything the capture loop can drain once per iteration.
// Poll returns every event pending at call time, oldest first, and must
// not block.
type Source interface {
	Poll() []Event
}

// DefaultQueueSize bounds the events buffered between two drains.
const DefaultQueueSize = 64

// Queue buffers events pushed from other goroutines until the next Poll.
type Queue struct {
	mu      sync.Mutex
	pending []Event
	limit   int
	dropped int
}

// NewQueue creates a queue holding at most limit events between polls.
// A non-positive limit uses DefaultQueueSize.
func NewQueue(limit int) *Queue {
	if limit <= 0 {
		limit = DefaultQueueSize
	}
	return &Queue{limit: limit}
}

// Push appends an event. When the queue is full the event is dropped and
// Push returns false; Cancel events are always accepted.
func (q *Queue) Push(ev Event) bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	if len(q.pending) >= q.limit && ev.Kind != Cancel {
		q.dropped++
		debug.Trace("Input: queue full, dropped %s", ev.Kind)
		return false
	}
	q.pending = append(q.pending, ev)
	return true
}

// Poll implements Source.
func (q *Queue) Poll() []Event {
	q.mu.Lock()
	defer q.mu.Unlock()
	if len(q.pending) == 0 {
		return nil
	}
	out := q.pending
	q.pending = nil
	return out
}

// Reset discards pending events, e.g. leftovers from a previous session.
func (q *Queue) Reset() {
	q.mu.Lock()
	q.pending = nil
	q.mu.Unlock()
}

// Dropped returns how many events were rejected because the queue was full.
func (q *Queue) Dropped() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.dropped
}

// Merge combines several sources into one. Each Poll drains the sources
// in the order given and concatenates their events.
func Merge(sources ...Source) Source {
	return merged(sources)
}

type merged []Source

func (m merged) Poll() []Event {
	var out []Event
	for _, s := range m {
		if s == nil {
			continue
		}
		out = append(out, s.Poll()...)
	}
	return out
}
