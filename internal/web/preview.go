package web

import (
	"bytes"
	"image/jpeg"
	"net/http"
	"sync"
	"time"

	"github.com/cjeanneret/snapmerge/internal/debug"
	"github.com/cjeanneret/snapmerge/internal/frame"
	"github.com/cjeanneret/snapmerge/internal/input"
	"github.com/gorilla/websocket"
)

const previewWriteWait = 2 * time.Second

// PreviewMessage is what a browser may send over the preview socket.
type PreviewMessage struct {
	Type string `json:"type"` // "click" or "cancel"
	X    int    `json:"x"`
	Y    int    `json:"y"`
}

// Preview streams display frames to browsers as binary JPEG messages.
// It is a capture presenter: Present never blocks on a slow client, each
// client only ever holds the most recent frame.
type Preview struct {
	quality  int
	events   *input.Queue
	upgrader websocket.Upgrader

	mu      sync.RWMutex
	clients map[*previewClient]struct{}
}

type previewClient struct {
	conn *websocket.Conn
	send chan []byte
}

// NewPreview creates a preview hub. Messages from clients are pushed to
// events when it is non-nil.
func NewPreview(quality int, events *input.Queue) *Preview {
	if quality <= 0 || quality > 100 {
		quality = jpeg.DefaultQuality
	}
	return &Preview{
		quality: quality,
		events:  events,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool { return true },
		},
		clients: make(map[*previewClient]struct{}),
	}
}

// Clients returns the number of connected viewers.
func (p *Preview) Clients() int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return len(p.clients)
}

// Present implements capture.Presenter. Frames are only encoded when
// somebody is watching.
func (p *Preview) Present(display *frame.Frame) {
	if p.Clients() == 0 || display.Empty() {
		return
	}
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, display, &jpeg.Options{Quality: p.quality}); err != nil {
		debug.Error(err)
		return
	}
	data := buf.Bytes()

	p.mu.RLock()
	defer p.mu.RUnlock()
	for c := range p.clients {
		select {
		case c.send <- data:
		default:
			// replace the stale frame
			select {
			case <-c.send:
			default:
			}
			select {
			case c.send <- data:
			default:
			}
		}
	}
}

// ServeHTTP upgrades the request and serves one viewer until it leaves.
func (p *Preview) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := p.upgrader.Upgrade(w, r, nil)
	if err != nil {
		debug.Verbose("Preview: upgrade from %s failed: %v", r.RemoteAddr, err)
		return
	}
	c := &previewClient{conn: conn, send: make(chan []byte, 1)}

	p.mu.Lock()
	p.clients[c] = struct{}{}
	p.mu.Unlock()
	debug.Verbose("Preview: viewer %s connected", r.RemoteAddr)

	go c.writeLoop()
	p.readLoop(c)

	p.remove(c)
	debug.Verbose("Preview: viewer %s left", r.RemoteAddr)
}

func (p *Preview) readLoop(c *previewClient) {
	for {
		var msg PreviewMessage
		if err := c.conn.ReadJSON(&msg); err != nil {
			return
		}
		if p.events == nil {
			continue
		}
		switch msg.Type {
		case "click":
			p.events.Push(input.ClickAt(msg.X, msg.Y))
		case "cancel":
			p.events.Push(input.CancelRequest())
		default:
			debug.Trace("Preview: ignored message type %q", msg.Type)
		}
	}
}

func (c *previewClient) writeLoop() {
	for data := range c.send {
		c.conn.SetWriteDeadline(time.Now().Add(previewWriteWait))
		if err := c.conn.WriteMessage(websocket.BinaryMessage, data); err != nil {
			c.conn.Close()
			return
		}
	}
}

func (p *Preview) remove(c *previewClient) {
	p.mu.Lock()
	if _, ok := p.clients[c]; ok {
		delete(p.clients, c)
		close(c.send)
	}
	p.mu.Unlock()
	c.conn.Close()
}

// Close disconnects every viewer.
func (p *Preview) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()
	for c := range p.clients {
		delete(p.clients, c)
		close(c.send)
		c.conn.Close()
	}
}
