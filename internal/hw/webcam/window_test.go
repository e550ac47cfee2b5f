package webcam

import (
	"testing"

	"github.com/cjeanneret/snapmerge/internal/input"
	"gocv.io/x/gocv"
)

func TestWindow_LeftClickReachesPoll(t *testing.T) {
	w := &Window{}
	w.onMouse(int(gocv.MouseEventMove), 1, 1, 0, nil)
	w.onMouse(int(gocv.MouseEventLeftButtonDown), 510, 410, 0, nil)
	w.onMouse(int(gocv.MouseEventLeftButtonUp), 510, 410, 0, nil)
	w.onMouse(int(gocv.MouseEventRightButtonDown), 20, 20, 0, nil)

	got := w.events(-1)
	if len(got) != 1 || got[0] != input.ClickAt(510, 410) {
		t.Fatalf("events = %v, want one click at (510,410)", got)
	}
	if again := w.events(-1); len(again) != 0 {
		t.Errorf("second poll = %v, want nothing", again)
	}
}

func TestWindow_EscapeAfterClicks(t *testing.T) {
	w := &Window{}
	w.onMouse(int(gocv.MouseEventLeftButtonDown), 3, 4, 0, nil)

	got := w.events(KeyEscape)
	if len(got) != 2 || got[0] != input.ClickAt(3, 4) || got[1].Kind != input.Cancel {
		t.Fatalf("events = %v, want click then cancel", got)
	}
	if other := w.events('a'); len(other) != 0 {
		t.Errorf("plain key = %v, want nothing", other)
	}
}
