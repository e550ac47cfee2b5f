package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Camera types
const (
	CameraWebcam    = "webcam"    // OpenCV video capture device
	CameraSynthetic = "synthetic" // generated test pattern
)

// CameraConfig describes which device feeds the capture loop.
type CameraConfig struct {
	Type      string `yaml:"type"`       // "webcam" or "synthetic"
	DeviceID  int    `yaml:"device_id"`  // OpenCV device index (some machines need 1 instead of 0)
	Width     int    `yaml:"width"`      // requested frame width in pixels
	Height    int    `yaml:"height"`     // requested frame height in pixels
	FPS       int    `yaml:"fps"`        // synthetic camera pacing
	MaxFrames int    `yaml:"max_frames"` // synthetic camera: end of stream after N frames (0 = endless)
}

// OverlayConfig describes the crosshair drawn on the live view.
type OverlayConfig struct {
	InnerRadius     int   `yaml:"inner_radius"`
	OuterRadius     int   `yaml:"outer_radius"`
	CrossHalfLength int   `yaml:"cross_half_length"`
	Thickness       int   `yaml:"thickness"`
	Mirror          *bool `yaml:"mirror,omitempty"` // default true (selfie view)
}

// ButtonConfig is the on-screen SHOOT button, in display coordinates.
type ButtonConfig struct {
	X      int    `yaml:"x"`
	Y      int    `yaml:"y"`
	Width  int    `yaml:"width"`
	Height int    `yaml:"height"`
	Label  string `yaml:"label"`
}

// WindowConfig controls the desktop preview window.
type WindowConfig struct {
	Enabled bool   `yaml:"enabled"`
	Name    string `yaml:"name"`
}

// GPIOConfig wires optional hardware push buttons (BCM numbering, active LOW).
type GPIOConfig struct {
	Mock      bool `yaml:"mock"`       // use mock GPIO (true=dev/test, false=real Raspberry Pi)
	ShootPin  int  `yaml:"shoot_pin"`  // 0 = not used
	CancelPin int  `yaml:"cancel_pin"` // 0 = not used
}

// PathsConfig holds the conventional file locations.
type PathsConfig struct {
	Capture  string `yaml:"capture"`  // raw snapshot written after a capture
	Template string `yaml:"template"` // default template for compositing
	Result   string `yaml:"result"`   // composite output
	Journal  string `yaml:"journal"`  // SQLite session journal
}

// WebConfig configures the browser shell.
type WebConfig struct {
	Addr           string `yaml:"addr"`
	PreviewQuality int    `yaml:"preview_quality"` // JPEG quality of preview frames (1-100)
	ShutdownMs     int    `yaml:"shutdown_ms"`
}

// DefaultsConfig contains generic parameters.
type DefaultsConfig struct {
	DebugLevel int `yaml:"debug_level"` // debug level 0-4 (0=off, 1=info, 2=live, 3=verbose, 4=trace)
}

// Config aggregates all application configuration.
type Config struct {
	Camera   CameraConfig   `yaml:"camera"`
	Overlay  OverlayConfig  `yaml:"overlay"`
	Button   ButtonConfig   `yaml:"button"`
	Window   WindowConfig   `yaml:"window"`
	GPIO     GPIOConfig     `yaml:"gpio"`
	Paths    PathsConfig    `yaml:"paths"`
	Web      WebConfig      `yaml:"web"`
	Defaults DefaultsConfig `yaml:"defaults"`
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	cfg := &Config{}
	if err := cfg.applyDefaults(); err != nil {
		panic(err) // defaults are always valid
	}
	return cfg
}

// Load reads a YAML file and returns the configuration.
// An empty path yields the defaults.
func Load(path string) (*Config, error) {
	if path == "" {
		return Default(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}
	return Parse(data)
}

// Parse decodes YAML configuration, fills defaults and validates it.
func Parse(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("unmarshal yaml: %w", err)
	}
	if err := cfg.applyDefaults(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) applyDefaults() error {
	// Camera
	if c.Camera.Type == "" {
		c.Camera.Type = CameraWebcam
	}
	if c.Camera.Type != CameraWebcam && c.Camera.Type != CameraSynthetic {
		return fmt.Errorf("unsupported camera type: %s", c.Camera.Type)
	}
	if c.Camera.DeviceID < 0 {
		return fmt.Errorf("camera.device_id must be >= 0, got %d", c.Camera.DeviceID)
	}
	if c.Camera.Width < 0 || c.Camera.Height < 0 {
		return fmt.Errorf("camera resolution must be positive, got %dx%d", c.Camera.Width, c.Camera.Height)
	}
	if c.Camera.Width == 0 {
		c.Camera.Width = 640
	}
	if c.Camera.Height == 0 {
		c.Camera.Height = 480
	}
	if c.Camera.FPS < 0 || c.Camera.FPS > 240 {
		return fmt.Errorf("camera.fps must be between 0 and 240, got %d", c.Camera.FPS)
	}
	if c.Camera.FPS == 0 {
		c.Camera.FPS = 30
	}
	if c.Camera.MaxFrames < 0 {
		return fmt.Errorf("camera.max_frames must be >= 0, got %d", c.Camera.MaxFrames)
	}

	// Overlay (reference viewer: rings 30/60, cross 80, 3px)
	if c.Overlay.InnerRadius <= 0 {
		c.Overlay.InnerRadius = 30
	}
	if c.Overlay.OuterRadius <= 0 {
		c.Overlay.OuterRadius = 60
	}
	if c.Overlay.CrossHalfLength <= 0 {
		c.Overlay.CrossHalfLength = 80
	}
	if c.Overlay.Thickness <= 0 {
		c.Overlay.Thickness = 3
	}
	if c.Overlay.Mirror == nil {
		mirror := true
		c.Overlay.Mirror = &mirror
	}

	// Button (bottom right of a 640x480 view)
	if c.Button.Width < 0 || c.Button.Height < 0 {
		return fmt.Errorf("button size must be positive, got %dx%d", c.Button.Width, c.Button.Height)
	}
	if c.Button.Width == 0 && c.Button.Height == 0 && c.Button.X == 0 && c.Button.Y == 0 {
		c.Button.X, c.Button.Y = 500, 400
	}
	if c.Button.Width == 0 {
		c.Button.Width = 120
	}
	if c.Button.Height == 0 {
		c.Button.Height = 50
	}
	if c.Button.Label == "" {
		c.Button.Label = "SHOOT"
	}

	if c.Window.Name == "" {
		c.Window.Name = "Camera View"
	}

	if c.GPIO.ShootPin < 0 || c.GPIO.CancelPin < 0 {
		return fmt.Errorf("gpio pins must be >= 0")
	}
	if c.GPIO.ShootPin != 0 && c.GPIO.ShootPin == c.GPIO.CancelPin {
		return fmt.Errorf("gpio.shoot_pin and gpio.cancel_pin must differ, both are %d", c.GPIO.ShootPin)
	}

	// Paths
	if c.Paths.Capture == "" {
		c.Paths.Capture = "images/camera_capture.png"
	}
	if c.Paths.Template == "" {
		c.Paths.Template = "images/google.png"
	}
	if c.Paths.Result == "" {
		c.Paths.Result = "output_images/result.png"
	}
	if c.Paths.Journal == "" {
		c.Paths.Journal = "snapmerge.db"
	}

	// Web
	if c.Web.Addr == "" {
		c.Web.Addr = ":8080"
	}
	if c.Web.PreviewQuality < 0 || c.Web.PreviewQuality > 100 {
		return fmt.Errorf("web.preview_quality must be between 1 and 100, got %d", c.Web.PreviewQuality)
	}
	if c.Web.PreviewQuality == 0 {
		c.Web.PreviewQuality = 75
	}
	if c.Web.ShutdownMs <= 0 {
		c.Web.ShutdownMs = 5000
	}

	if c.Defaults.DebugLevel < 0 || c.Defaults.DebugLevel > 4 {
		return fmt.Errorf("defaults.debug_level must be between 0 and 4, got %d", c.Defaults.DebugLevel)
	}
	return nil
}

// MirrorView reports whether the live view is flipped horizontally.
func (c *Config) MirrorView() bool {
	return c.Overlay.Mirror == nil || *c.Overlay.Mirror
}

// FrameInterval returns the synthetic camera's time between frames,
// 0 when pacing is off.
func (c *Config) FrameInterval() time.Duration {
	if c.Camera.FPS <= 0 {
		return 0
	}
	return time.Second / time.Duration(c.Camera.FPS)
}

// ShutdownTimeout returns how long the web server waits for open requests.
func (c *Config) ShutdownTimeout() time.Duration {
	return time.Duration(c.Web.ShutdownMs) * time.Millisecond
}

// ButtonsEnabled reports whether any hardware button is wired.
func (c *Config) ButtonsEnabled() bool {
	return c.GPIO.ShootPin != 0 || c.GPIO.CancelPin != 0
}
