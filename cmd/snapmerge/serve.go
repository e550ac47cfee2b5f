package main

import (
	"fmt"
	"io"
	"os"

	"github.com/cjeanneret/snapmerge/internal/debug"
	"github.com/cjeanneret/snapmerge/internal/hw/gpio"
	"github.com/cjeanneret/snapmerge/internal/input"
	"github.com/cjeanneret/snapmerge/internal/logic/capture"
	"github.com/cjeanneret/snapmerge/internal/web"
	"github.com/spf13/cobra"
)

var serveAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the live view, SHOOT button and compositing over HTTP",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cmd.SilenceUsage = true
		if serveAddr != "" {
			cfg.Web.Addr = serveAddr
		}
		j, err := openJournal()
		if err != nil {
			return err
		}

		broadcaster := web.NewStatusBroadcaster()
		debug.SetOutput(io.MultiWriter(os.Stdout, web.BroadcastWriter(broadcaster)))

		queue := input.NewQueue(0)
		preview := web.NewPreview(cfg.Web.PreviewQuality, queue)

		// HighGUI needs the main goroutine; sessions started over HTTP run
		// on their own, so the browser is the only viewer here.
		rig := &captureRig{
			cfg:        cfg,
			journal:    j,
			queue:      queue,
			presenters: capture.Presenters{preview},
		}
		if cfg.ButtonsEnabled() {
			drv, err := gpio.NewDriver(cfg.GPIO.Mock)
			if err != nil {
				return fmt.Errorf("init GPIO failed: %w", err)
			}
			defer drv.Close()
			rig.gpio = drv
		}
		comp := &compositor{journal: j, defaultTemplate: cfg.Paths.Template, defaultResult: cfg.Paths.Result}

		srv := web.NewServer(cfg.Web.Addr, web.Deps{
			Broadcaster:  broadcaster,
			Input:        queue,
			Preview:      preview,
			RunCapture:   rig.run,
			RunComposite: comp.run,
			View:         viewFromConfig(),
			ResultPath:   cfg.Paths.Result,
		})
		srv.ShutdownTimeout = cfg.ShutdownTimeout()
		return srv.Run(cmd.Context())
	},
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "listen address (default: web.addr)")
	rootCmd.AddCommand(serveCmd)
}

func viewFromConfig() web.ViewConfig {
	return web.ViewConfig{
		Width:  cfg.Camera.Width,
		Height: cfg.Camera.Height,
		Mirror: cfg.MirrorView(),
		Button: web.ButtonView{
			X:      cfg.Button.X,
			Y:      cfg.Button.Y,
			Width:  cfg.Button.Width,
			Height: cfg.Button.Height,
			Label:  cfg.Button.Label,
		},
	}
}
