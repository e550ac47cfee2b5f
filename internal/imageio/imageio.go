// Package imageio reads templates and writes captures and composites.
// Only lossless formats are written so that marker pixels survive a
// save/load round trip.
package imageio

import (
	"errors"
	"fmt"
	"image"
	_ "image/jpeg" // templates may be supplied as JPEG; markers rarely survive it, but reading is allowed
	"image/png"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/cjeanneret/snapmerge/internal/frame"
	"golang.org/x/image/bmp"
)

// ErrUnsupportedFormat is returned when asked to write a format that is
// not lossless or not known.
var ErrUnsupportedFormat = errors.New("imageio: unsupported output format")

// Format is a lossless output encoding.
type Format string

const (
	PNG Format = "png"
	BMP Format = "bmp"
)

// FormatFor picks the output format from a file extension.
func FormatFor(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".png":
		return PNG, nil
	case ".bmp":
		return BMP, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, filepath.Ext(path))
	}
}

// Decode reads any registered image format into a frame.
func Decode(r io.Reader) (*frame.Frame, error) {
	img, _, err := image.Decode(r)
	if err != nil {
		return nil, fmt.Errorf("decode image: %w", err)
	}
	return frame.FromImage(img), nil
}

// Read loads the image at path.
func Read(path string) (*frame.Frame, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open image: %w", err)
	}
	defer f.Close()

	fr, err := Decode(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return fr, nil
}

// Encode writes fr to w in the given format.
func Encode(w io.Writer, fr *frame.Frame, format Format) error {
	switch format {
	case PNG:
		return png.Encode(w, fr)
	case BMP:
		return bmp.Encode(w, fr)
	default:
		return fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
	}
}

// Write saves fr at path, creating parent directories as needed. The file
// is written to a temporary name first and renamed into place.
func Write(path string, fr *frame.Frame) error {
	if fr.Empty() {
		return errors.New("imageio: refusing to write an empty image")
	}
	format, err := FormatFor(path)
	if err != nil {
		return err
	}
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".snapmerge-*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName) // no-op once renamed

	if err := Encode(tmp, fr, format); err != nil {
		tmp.Close()
		return fmt.Errorf("encode %s: %w", format, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		return fmt.Errorf("rename into place: %w", err)
	}
	return nil
}
