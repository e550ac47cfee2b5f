package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/cjeanneret/snapmerge/internal/debug"
	"github.com/cjeanneret/snapmerge/internal/frame"
	"github.com/cjeanneret/snapmerge/internal/imageio"
	"github.com/cjeanneret/snapmerge/internal/journal"
	"github.com/cjeanneret/snapmerge/internal/logic/composite"
	"github.com/cjeanneret/snapmerge/internal/web"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
)

var compositeOpts struct {
	capture string
	output  string
}

var compositeCmd = &cobra.Command{
	Use:   "composite [template...]",
	Short: "Replace the white pixels of templates with the last snapshot",
	Long: `Replace every pure white pixel of each template with the captured photo,
tiled from the top-left corner, and save the result.

Without arguments the configured template is used. With several templates
each result is named <result>_<template>.png next to the configured result.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cmd.SilenceUsage = true
		j, err := openJournal()
		if err != nil {
			return err
		}
		c := &compositor{journal: j, defaultTemplate: cfg.Paths.Template, defaultResult: cfg.Paths.Result}
		if compositeOpts.output != "" {
			c.defaultResult = compositeOpts.output
		}

		if len(args) <= 1 {
			req := web.CompositeRequest{Capture: compositeOpts.capture}
			if len(args) == 1 {
				req.Template = args[0]
			}
			out, err := c.run(cmd.Context(), req)
			if errors.Is(err, journal.ErrNoCapture) {
				return errors.New("no photo yet: run \"snapmerge capture\" first")
			}
			if err != nil {
				return err
			}
			fmt.Printf("Composite saved to %s (%d pixels replaced)\n", out.Output, out.Markers)
			return nil
		}
		return c.batch(cmd.Context(), compositeOpts.capture, args)
	},
}

func init() {
	compositeCmd.Flags().StringVar(&compositeOpts.capture, "capture", "", "photo to merge (default: latest capture in the journal)")
	compositeCmd.Flags().StringVarP(&compositeOpts.output, "output", "o", "", "result path (default: paths.result)")
	rootCmd.AddCommand(compositeCmd)
}

// compositor merges snapshots into templates and records the results.
type compositor struct {
	journal         *journal.Journal
	defaultTemplate string
	defaultResult   string
}

// resolveCapture picks the snapshot to merge: the explicit path if given,
// otherwise the latest capture in the journal.
func (c *compositor) resolveCapture(ctx context.Context, explicit string) (path, sessionID string, err error) {
	if explicit != "" {
		return explicit, "", nil
	}
	if c.journal == nil {
		return "", "", journal.ErrNoCapture
	}
	s, err := c.journal.LatestCapture(ctx)
	if err != nil {
		return "", "", err
	}
	return s.CapturePath, s.ID, nil
}

func (c *compositor) loadCapture(ctx context.Context, explicit string) (*frame.Frame, string, string, error) {
	path, sessionID, err := c.resolveCapture(ctx, explicit)
	if err != nil {
		return nil, "", "", err
	}
	shot, err := imageio.Read(path)
	if err != nil {
		return nil, "", "", fmt.Errorf("%w: %v", composite.ErrInvalidCapture, err)
	}
	debug.Verbose("Capture %s: %dx%d", path, shot.Width, shot.Height)
	return shot, path, sessionID, nil
}

// run builds one composite. It is shared by the command line and the web
// shell.
func (c *compositor) run(ctx context.Context, req web.CompositeRequest) (web.CompositeOutcome, error) {
	shot, capturePath, sessionID, err := c.loadCapture(ctx, req.Capture)
	if err != nil {
		return web.CompositeOutcome{}, err
	}
	tpl := req.Template
	if tpl == "" {
		tpl = c.defaultTemplate
	}
	return c.one(ctx, shot, capturePath, sessionID, tpl, c.defaultResult)
}

// batch composites every template with the same snapshot.
func (c *compositor) batch(ctx context.Context, explicitCapture string, templates []string) error {
	shot, capturePath, sessionID, err := c.loadCapture(ctx, explicitCapture)
	if err != nil {
		return err
	}

	bar := progressbar.NewOptions(len(templates),
		progressbar.OptionSetDescription("Merging"),
		progressbar.OptionSetWriter(os.Stderr),
		progressbar.OptionShowCount(),
	)
	var failed []string
	for _, tpl := range templates {
		if err := ctx.Err(); err != nil {
			return err
		}
		out := outputName(c.defaultResult, tpl)
		if _, err := c.one(ctx, shot, capturePath, sessionID, tpl, out); err != nil {
			debug.Error(err)
			failed = append(failed, tpl)
		}
		bar.Add(1)
	}
	bar.Finish()
	fmt.Fprintln(os.Stderr)

	debug.Summary("Batch composite")
	debug.Info("%d written, %d failed", len(templates)-len(failed), len(failed))
	if len(failed) > 0 {
		return fmt.Errorf("%d of %d templates failed: %s", len(failed), len(templates), strings.Join(failed, ", "))
	}
	fmt.Printf("%d composites written next to %s\n", len(templates), c.defaultResult)
	return nil
}

func (c *compositor) one(ctx context.Context, shot *frame.Frame, capturePath, sessionID, templatePath, outputPath string) (web.CompositeOutcome, error) {
	tpl, err := imageio.Read(templatePath)
	if err != nil {
		return web.CompositeOutcome{}, fmt.Errorf("%w: %v", composite.ErrInvalidTemplate, err)
	}
	result, err := composite.Composite(tpl, shot)
	if err != nil {
		return web.CompositeOutcome{}, fmt.Errorf("%s: %w", templatePath, err)
	}
	if err := imageio.Write(outputPath, result); err != nil {
		return web.CompositeOutcome{}, fmt.Errorf("save composite: %w", err)
	}
	markers := composite.MarkerCount(tpl)
	debug.Saved("composite", outputPath)

	if c.journal != nil {
		_, err := c.journal.RecordComposite(ctx, journal.Composite{
			SessionID:    sessionID,
			TemplatePath: templatePath,
			CapturePath:  capturePath,
			OutputPath:   outputPath,
			Markers:      markers,
		})
		if err != nil {
			debug.Error(err)
		}
	}
	return web.CompositeOutcome{Output: outputPath, Markers: markers, Width: result.Width, Height: result.Height}, nil
}

// outputName derives a batch result path: output_images/result.png and
// templates/google.jpg give output_images/result_google.png.
func outputName(result, template string) string {
	dir := filepath.Dir(result)
	stem := strings.TrimSuffix(filepath.Base(result), filepath.Ext(result))
	tstem := strings.TrimSuffix(filepath.Base(template), filepath.Ext(template))
	return filepath.Join(dir, stem+"_"+tstem+".png")
}
