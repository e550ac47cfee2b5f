package main

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cjeanneret/snapmerge/internal/config"
	"github.com/cjeanneret/snapmerge/internal/debug"
	"github.com/cjeanneret/snapmerge/internal/frame"
	"github.com/cjeanneret/snapmerge/internal/hw/camera"
	"github.com/cjeanneret/snapmerge/internal/hw/gpio"
	"github.com/cjeanneret/snapmerge/internal/hw/webcam"
	"github.com/cjeanneret/snapmerge/internal/imageio"
	"github.com/cjeanneret/snapmerge/internal/input"
	"github.com/cjeanneret/snapmerge/internal/journal"
	"github.com/cjeanneret/snapmerge/internal/logic/capture"
	"github.com/cjeanneret/snapmerge/internal/logic/trigger"
	"github.com/cjeanneret/snapmerge/internal/render"
	"github.com/cjeanneret/snapmerge/internal/web"
	"github.com/spf13/cobra"
)

var captureOpts struct {
	output    string
	noWindow  bool
	synthetic bool
}

var captureCmd = &cobra.Command{
	Use:   "capture",
	Short: "Open the camera and save a snapshot when SHOOT is pressed",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cmd.SilenceUsage = true
		if captureOpts.output != "" {
			cfg.Paths.Capture = captureOpts.output
		}
		if captureOpts.synthetic {
			cfg.Camera.Type = config.CameraSynthetic
		}

		j, err := openJournal()
		if err != nil {
			return err
		}
		rig := &captureRig{cfg: cfg, journal: j, window: cfg.Window.Enabled && !captureOpts.noWindow}
		if cfg.ButtonsEnabled() {
			drv, err := gpio.NewDriver(cfg.GPIO.Mock)
			if err != nil {
				return fmt.Errorf("init GPIO failed: %w", err)
			}
			defer drv.Close()
			rig.gpio = drv
		}

		out, err := rig.run(cmd.Context())
		if err != nil {
			return err
		}
		if out.CapturePath == "" {
			fmt.Println("No photo taken.")
			return nil
		}
		fmt.Printf("Photo saved to %s\n", out.CapturePath)
		return nil
	},
}

func init() {
	captureCmd.Flags().StringVarP(&captureOpts.output, "output", "o", "", "where to save the snapshot (default: paths.capture)")
	captureCmd.Flags().BoolVar(&captureOpts.noWindow, "no-window", false, "do not open the desktop preview window")
	captureCmd.Flags().BoolVar(&captureOpts.synthetic, "synthetic", false, "use the generated test pattern instead of a webcam")
	rootCmd.AddCommand(captureCmd)
}

// captureRig assembles one capture session from configuration and the
// presentation layers available to the running command.
type captureRig struct {
	cfg     *config.Config
	journal *journal.Journal

	// queue carries clicks from the web shell; nil on the command line.
	queue *input.Queue
	// presenters receive display frames in addition to the window.
	presenters capture.Presenters
	window     bool
	gpio       gpio.Driver

	// device overrides the configured camera; used by tests.
	device camera.Device
}

// run executes a session, saves the snapshot if one was taken and records
// the session in the journal. The error is non-nil when the camera could
// not be opened or the snapshot could not be written.
func (r *captureRig) run(ctx context.Context) (web.CaptureOutcome, error) {
	cfg := r.cfg
	debug.Section("Capture session")

	debug.Step(1, "Preparing camera")
	dev := r.device
	if dev == nil {
		dev = newDevice(cfg)
	}
	debug.Value("Camera type", cfg.Camera.Type)
	debug.Value("Frame interval", cfg.FrameInterval())
	src := camera.NewSource(dev, cfg.Camera.Width, cfg.Camera.Height, overlayFromConfig(cfg))

	debug.Step(2, "Wiring presenters and inputs")
	button := buttonFromConfig(cfg)
	presenters := append(capture.Presenters(nil), r.presenters...)
	var sources []input.Source
	if r.queue != nil {
		sources = append(sources, r.queue)
	}
	if r.window {
		win := webcam.NewWindow(cfg.Window.Name)
		defer win.Close()
		presenters = append(presenters, win)
		sources = append(sources, win)
	}
	if r.gpio != nil {
		buttons, err := input.NewButtons(r.gpio, cfg.GPIO.ShootPin, cfg.GPIO.CancelPin, button.Center())
		if err != nil {
			return web.CaptureOutcome{}, fmt.Errorf("setup buttons: %w", err)
		}
		sources = append(sources, buttons)
	}

	debug.Step(3, "Running session")
	session := capture.NewSession(src, input.Merge(sources...), presenters, button, styleFromConfig(cfg))
	started := time.Now()
	res, runErr := session.Run(ctx)

	out := web.CaptureOutcome{State: res.State.String(), Frames: res.Frames}
	if isNoDevice(runErr) {
		fmt.Println("Camera not detected. Check the connection.")
	}
	if res.Captured() {
		if err := imageio.Write(cfg.Paths.Capture, res.Capture); err != nil {
			return out, fmt.Errorf("save capture: %w", err)
		}
		debug.Saved("capture", cfg.Paths.Capture)
		out.CapturePath = cfg.Paths.Capture
	}
	debug.Outcome(out.State, out.Frames, res.Captured())

	if r.journal != nil {
		// Background: a Ctrl+C that ended the session must not lose its record.
		_, err := r.journal.RecordSession(context.Background(), journal.Session{
			StartedAt:   started,
			EndedAt:     time.Now(),
			State:       out.State,
			Frames:      out.Frames,
			CapturePath: out.CapturePath,
		})
		if err != nil {
			debug.Error(err)
		}
	}

	if runErr != nil {
		return out, runErr
	}
	return out, nil
}

// newDevice selects a camera implementation based on configuration.
func newDevice(cfg *config.Config) camera.Device {
	switch cfg.Camera.Type {
	case config.CameraSynthetic:
		return camera.NewSyntheticDevice(cfg.Camera.FPS, cfg.Camera.MaxFrames)
	default:
		return webcam.NewDevice(cfg.Camera.DeviceID)
	}
}

func overlayFromConfig(cfg *config.Config) render.Overlay {
	return render.Overlay{
		InnerRadius:     cfg.Overlay.InnerRadius,
		OuterRadius:     cfg.Overlay.OuterRadius,
		CrossHalfLength: cfg.Overlay.CrossHalfLength,
		Thickness:       cfg.Overlay.Thickness,
		Color:           frame.Red,
		Mirror:          cfg.MirrorView(),
	}
}

func buttonFromConfig(cfg *config.Config) trigger.Button {
	return trigger.Button{
		X:      cfg.Button.X,
		Y:      cfg.Button.Y,
		Width:  cfg.Button.Width,
		Height: cfg.Button.Height,
	}
}

func styleFromConfig(cfg *config.Config) render.ButtonStyle {
	s := render.DefaultButtonStyle()
	s.Label = cfg.Button.Label
	return s
}

// isNoDevice reports whether err came from a camera that could not be opened.
func isNoDevice(err error) bool {
	return errors.Is(err, camera.ErrDeviceUnavailable)
}
