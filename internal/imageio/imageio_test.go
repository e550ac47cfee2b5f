package imageio

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/cjeanneret/snapmerge/internal/frame"
)

func sample() *frame.Frame {
	f := frame.Filled(5, 3, frame.White)
	f.SetBGR(0, 0, frame.Red)
	f.SetBGR(4, 2, frame.BGR{B: 1, G: 2, R: 3})
	return f
}

func TestFormatFor(t *testing.T) {
	cases := []struct {
		path    string
		want    Format
		wantErr bool
	}{
		{"out/result.png", PNG, false},
		{"OUT.PNG", PNG, false},
		{"capture.bmp", BMP, false},
		{"capture.jpg", "", true},
		{"capture", "", true},
	}
	for _, tc := range cases {
		t.Run(tc.path, func(t *testing.T) {
			got, err := FormatFor(tc.path)
			if tc.wantErr {
				if !errors.Is(err, ErrUnsupportedFormat) {
					t.Errorf("err = %v, want ErrUnsupportedFormat", err)
				}
				return
			}
			if err != nil || got != tc.want {
				t.Errorf("FormatFor = (%q, %v), want %q", got, err, tc.want)
			}
		})
	}
}

func TestWriteRead_LosslessRoundTrip(t *testing.T) {
	for _, name := range []string{"a.png", "b.bmp"} {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "nested", "dir", name)
			want := sample()

			if err := Write(path, want); err != nil {
				t.Fatalf("Write: %v", err)
			}
			got, err := Read(path)
			if err != nil {
				t.Fatalf("Read: %v", err)
			}
			if !got.Equal(want) {
				t.Error("pixels changed across a lossless round trip")
			}
		})
	}
}

func TestWrite_LeavesNoTempFiles(t *testing.T) {
	dir := t.TempDir()
	if err := Write(filepath.Join(dir, "x.png"), sample()); err != nil {
		t.Fatal(err)
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 {
		t.Errorf("directory has %d entries, want only the output", len(entries))
	}
}

func TestWrite_Rejects(t *testing.T) {
	dir := t.TempDir()
	if err := Write(filepath.Join(dir, "x.jpg"), sample()); !errors.Is(err, ErrUnsupportedFormat) {
		t.Errorf("jpg: err = %v, want ErrUnsupportedFormat", err)
	}
	if err := Write(filepath.Join(dir, "x.png"), frame.New(0, 0)); err == nil {
		t.Error("expected error writing an empty frame")
	}
	if err := Write(filepath.Join(dir, "x.png"), nil); err == nil {
		t.Error("expected error writing a nil frame")
	}
}

func TestRead_Errors(t *testing.T) {
	if _, err := Read(filepath.Join(t.TempDir(), "missing.png")); err == nil {
		t.Error("expected error for a missing file")
	}
	if _, err := Decode(bytes.NewReader([]byte("not an image"))); err == nil {
		t.Error("expected error for garbage input")
	}
}
