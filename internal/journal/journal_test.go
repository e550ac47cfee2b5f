package journal

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"
)

func openTestJournal(t *testing.T) *Journal {
	t.Helper()
	j, err := Open(filepath.Join(t.TempDir(), "db", "journal.db"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { j.Close() })
	return j
}

func TestLatestCapture_EmptyJournal(t *testing.T) {
	j := openTestJournal(t)
	if _, err := j.LatestCapture(context.Background()); !errors.Is(err, ErrNoCapture) {
		t.Errorf("err = %v, want ErrNoCapture", err)
	}
}

func TestLatestCapture_SkipsSessionsWithoutCapture(t *testing.T) {
	j := openTestJournal(t)
	ctx := context.Background()
	base := time.Date(2026, 10, 19, 12, 0, 0, 0, time.UTC)

	first, err := j.RecordSession(ctx, Session{
		StartedAt: base, EndedAt: base.Add(time.Second),
		State: "DONE_CAPTURED", Frames: 12, CapturePath: "images/a.png",
	})
	if err != nil {
		t.Fatal(err)
	}
	if first.ID == "" {
		t.Fatal("RecordSession should assign an ID")
	}
	if _, err := j.RecordSession(ctx, Session{
		StartedAt: base.Add(time.Minute), EndedAt: base.Add(2 * time.Minute),
		State: "DONE_CANCELLED", Frames: 40,
	}); err != nil {
		t.Fatal(err)
	}

	got, err := j.LatestCapture(ctx)
	if err != nil {
		t.Fatalf("LatestCapture: %v", err)
	}
	if got.ID != first.ID || got.CapturePath != "images/a.png" || got.Frames != 12 {
		t.Errorf("LatestCapture = %+v, want the captured session", got)
	}
	if !got.StartedAt.Equal(base) {
		t.Errorf("StartedAt = %v, want %v", got.StartedAt, base)
	}
}

func TestSessions_NewestFirstWithLimit(t *testing.T) {
	j := openTestJournal(t)
	ctx := context.Background()
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 3; i++ {
		at := base.Add(time.Duration(i) * time.Hour)
		if _, err := j.RecordSession(ctx, Session{StartedAt: at, EndedAt: at, State: "DONE_CANCELLED", Frames: i}); err != nil {
			t.Fatal(err)
		}
	}

	all, err := j.Sessions(ctx, 0)
	if err != nil {
		t.Fatal(err)
	}
	if len(all) != 3 || all[0].Frames != 2 || all[2].Frames != 0 {
		t.Errorf("Sessions = %+v", all)
	}
	two, err := j.Sessions(ctx, 2)
	if err != nil {
		t.Fatal(err)
	}
	if len(two) != 2 {
		t.Errorf("limit 2 returned %d", len(two))
	}
}

func TestRecordComposite(t *testing.T) {
	j := openTestJournal(t)
	ctx := context.Background()
	now := time.Now()
	s, err := j.RecordSession(ctx, Session{StartedAt: now, EndedAt: now, State: "DONE_CAPTURED", CapturePath: "c.png"})
	if err != nil {
		t.Fatal(err)
	}

	if _, err := j.RecordComposite(ctx, Composite{
		SessionID: s.ID, TemplatePath: "t.png", CapturePath: "c.png", OutputPath: "r.png", Markers: 99,
	}); err != nil {
		t.Fatalf("RecordComposite: %v", err)
	}
	if _, err := j.RecordComposite(ctx, Composite{
		TemplatePath: "t2.png", CapturePath: "other.png", OutputPath: "r2.png",
	}); err != nil {
		t.Fatalf("RecordComposite without session: %v", err)
	}

	list, err := j.Composites(ctx, 0)
	if err != nil {
		t.Fatal(err)
	}
	if len(list) != 2 {
		t.Fatalf("Composites = %d, want 2", len(list))
	}
	var linked Composite
	for _, c := range list {
		if c.OutputPath == "r.png" {
			linked = c
		}
	}
	if linked.SessionID != s.ID || linked.Markers != 99 || linked.CreatedAt.IsZero() {
		t.Errorf("linked composite = %+v", linked)
	}
}

func TestRecordComposite_UnknownSessionRejected(t *testing.T) {
	j := openTestJournal(t)
	_, err := j.RecordComposite(context.Background(), Composite{
		SessionID: "does-not-exist", TemplatePath: "t", CapturePath: "c", OutputPath: "o",
	})
	if err == nil {
		t.Error("expected foreign key violation")
	}
}
