package web

import (
	"context"
	"encoding/json"
	"errors"
	"io/fs"
	"net/http"
	"sync"
	"time"

	"github.com/cjeanneret/snapmerge/internal/debug"
	"github.com/cjeanneret/snapmerge/internal/input"
	"github.com/cjeanneret/snapmerge/internal/journal"
	"github.com/cjeanneret/snapmerge/internal/logic/composite"
)

// CaptureOutcome summarises a finished capture session.
type CaptureOutcome struct {
	State       string `json:"state"`
	Frames      int    `json:"frames"`
	CapturePath string `json:"capture_path,omitempty"`
}

// RunCaptureFunc runs one capture session to completion.
// It is called from the POST /run handler in a goroutine.
type RunCaptureFunc func(ctx context.Context) (CaptureOutcome, error)

// CompositeRequest selects the images of a composite. Empty fields fall
// back to the configured template and the latest capture.
type CompositeRequest struct {
	Template string `json:"template"`
	Capture  string `json:"capture"`
}

// CompositeOutcome describes a written composite.
type CompositeOutcome struct {
	Output  string `json:"output"`
	Markers int    `json:"markers"`
	Width   int    `json:"width"`
	Height  int    `json:"height"`
}

// RunCompositeFunc builds and saves a composite.
type RunCompositeFunc func(ctx context.Context, req CompositeRequest) (CompositeOutcome, error)

// ButtonView is the SHOOT button rectangle in display coordinates.
type ButtonView struct {
	X      int    `json:"x"`
	Y      int    `json:"y"`
	Width  int    `json:"width"`
	Height int    `json:"height"`
	Label  string `json:"label"`
}

// ViewConfig tells the browser how to map pointer positions onto the
// display frame.
type ViewConfig struct {
	Width  int        `json:"width"`
	Height int        `json:"height"`
	Mirror bool       `json:"mirror"`
	Button ButtonView `json:"button"`
}

// ClickRequest is the body of POST /click.
type ClickRequest struct {
	X *int `json:"x"`
	Y *int `json:"y"`
}

// Handlers holds dependencies for HTTP handlers.
type Handlers struct {
	Broadcaster  *StatusBroadcaster
	Input        *input.Queue
	Preview      *Preview
	RunCapture   RunCaptureFunc
	RunComposite RunCompositeFunc
	View         ViewConfig
	ResultPath   string

	baseCtx   context.Context
	runningMu sync.Mutex
	running   bool
	last      *CaptureOutcome
	staticFS  fs.FS
}

// NewHandlers creates handlers with the given dependencies.
// If runCapture or runComposite is nil, the matching route returns
// 503 Service Unavailable.
func NewHandlers(deps Deps, staticFS fs.FS) *Handlers {
	q := deps.Input
	if q == nil {
		q = input.NewQueue(0)
	}
	b := deps.Broadcaster
	if b == nil {
		b = NewStatusBroadcaster()
	}
	return &Handlers{
		Broadcaster:  b,
		Input:        q,
		Preview:      deps.Preview,
		RunCapture:   deps.RunCapture,
		RunComposite: deps.RunComposite,
		View:         deps.View,
		ResultPath:   deps.ResultPath,
		baseCtx:      context.Background(),
		staticFS:     staticFS,
	}
}

// Running reports whether a capture session is in progress.
func (h *Handlers) Running() bool {
	h.runningMu.Lock()
	defer h.runningMu.Unlock()
	return h.running
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// HandleConfig returns the view geometry as JSON.
func (h *Handlers) HandleConfig(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.View)
}

// HandleStatus reports whether a session runs and how the last one ended.
func (h *Handlers) HandleStatus(w http.ResponseWriter, r *http.Request) {
	h.runningMu.Lock()
	resp := struct {
		Running bool            `json:"running"`
		Last    *CaptureOutcome `json:"last,omitempty"`
		Viewers int             `json:"viewers"`
	}{Running: h.running, Last: h.last}
	h.runningMu.Unlock()
	if h.Preview != nil {
		resp.Viewers = h.Preview.Clients()
	}
	writeJSON(w, http.StatusOK, resp)
}

// HandleResult serves the last composite image.
func (h *Handlers) HandleResult(w http.ResponseWriter, r *http.Request) {
	if h.ResultPath == "" {
		http.Error(w, "not found", http.StatusNotFound)
		return
	}
	w.Header().Set("Cache-Control", "no-store")
	http.ServeFile(w, r, h.ResultPath)
}

// ServeIndex serves the main HTML page (root path only).
func (h *Handlers) ServeIndex(w http.ResponseWriter, r *http.Request) {
	data, err := fs.ReadFile(h.staticFS, "index.html")
	if err != nil {
		http.Error(w, "not found", http.StatusNotFound)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write(data)
}

// HandleRun handles POST /run to start a capture session.
func (h *Handlers) HandleRun(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if h.RunCapture == nil {
		http.Error(w, "capture not configured", http.StatusServiceUnavailable)
		return
	}

	h.runningMu.Lock()
	if h.running {
		h.runningMu.Unlock()
		http.Error(w, "capture already in progress", http.StatusConflict)
		return
	}
	h.running = true
	h.runningMu.Unlock()

	// Leftover clicks from a previous session must not fire this one.
	h.Input.Reset()

	// Run in goroutine; clear running when done
	go func() {
		var outcome CaptureOutcome
		defer func() {
			h.runningMu.Lock()
			h.running = false
			h.last = &outcome
			h.runningMu.Unlock()
		}()

		out, err := h.RunCapture(h.baseCtx)
		if err != nil {
			outcome = CaptureOutcome{State: "ERROR"}
			h.Broadcaster.Broadcast("error", "Capture failed: "+err.Error())
			debug.Error(err)
			return
		}
		outcome = out
		h.Broadcaster.Broadcast("info", "Session ended: "+out.State)
	}()

	writeJSON(w, http.StatusAccepted, map[string]string{"status": "started"})
}

// HandleClick handles POST /click: a pointer press on the preview.
func (h *Handlers) HandleClick(w http.ResponseWriter, r *http.Request) {
	var req ClickRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid JSON", http.StatusBadRequest)
		return
	}
	if req.X == nil || req.Y == nil {
		http.Error(w, "x and y are required", http.StatusBadRequest)
		return
	}
	if !h.Running() {
		http.Error(w, "no capture session running", http.StatusConflict)
		return
	}
	if !h.Input.Push(input.ClickAt(*req.X, *req.Y)) {
		http.Error(w, "too many pending clicks", http.StatusTooManyRequests)
		return
	}
	writeJSON(w, http.StatusAccepted, map[string]string{"status": "queued"})
}

// HandleCancel handles POST /cancel.
func (h *Handlers) HandleCancel(w http.ResponseWriter, r *http.Request) {
	if !h.Running() {
		http.Error(w, "no capture session running", http.StatusConflict)
		return
	}
	h.Input.Push(input.CancelRequest())
	writeJSON(w, http.StatusAccepted, map[string]string{"status": "queued"})
}

// HandleComposite handles POST /composite. It runs synchronously: a
// composite is a single pass over the template.
func (h *Handlers) HandleComposite(w http.ResponseWriter, r *http.Request) {
	if h.RunComposite == nil {
		http.Error(w, "composite not configured", http.StatusServiceUnavailable)
		return
	}
	var req CompositeRequest
	if r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid JSON", http.StatusBadRequest)
			return
		}
	}

	out, err := h.RunComposite(r.Context(), req)
	switch {
	case err == nil:
		h.Broadcaster.Broadcast("info", "Composite saved to "+out.Output)
		writeJSON(w, http.StatusOK, out)
	case errors.Is(err, journal.ErrNoCapture):
		http.Error(w, "no capture yet: take a photo first", http.StatusConflict)
	case errors.Is(err, composite.ErrInvalidCapture), errors.Is(err, composite.ErrInvalidTemplate):
		http.Error(w, err.Error(), http.StatusUnprocessableEntity)
	default:
		debug.Error(err)
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

// HandleStatusStream handles GET /status/stream for SSE.
func (h *Handlers) HandleStatusStream(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming not supported", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no") // nginx

	ch, unsub := h.Broadcaster.Subscribe()
	defer unsub()

	w.Write([]byte(": connected\n\n"))
	flusher.Flush()

	// Heartbeat while idle
	ticker := time.NewTicker(30 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case msg, ok := <-ch:
			if !ok {
				return
			}
			w.Write([]byte("data: " + msg + "\n\n"))
			flusher.Flush()

		case <-ticker.C:
			w.Write([]byte(": heartbeat\n\n"))
			flusher.Flush()

		case <-r.Context().Done():
			return
		}
	}
}
