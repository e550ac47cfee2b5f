package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/cjeanneret/snapmerge/internal/config"
	"github.com/cjeanneret/snapmerge/internal/debug"
	"github.com/cjeanneret/snapmerge/internal/journal"
	"github.com/spf13/cobra"
)

// Version is the application version.
const Version = "0.1.0"

var (
	cfgPath    string
	debugLevel int

	// cfg is loaded once before any subcommand runs.
	cfg *config.Config
	// jrnl is opened on demand by openJournal.
	jrnl *journal.Journal
)

var rootCmd = &cobra.Command{
	Use:     "snapmerge",
	Short:   "Webcam snapshot with an on-screen shutter, merged into template images",
	Version: Version,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = loadConfig(cfgPath, cmd.Flags().Changed("config"))
		if err != nil {
			return err
		}
		if cmd.Flags().Changed("debug") {
			cfg.Defaults.DebugLevel = debugLevel
		}

		debug.Init(cfg.Defaults.DebugLevel)
		debug.Section("Initialization")
		debug.Value("Config path", cfgPath)
		debug.Value("Debug level", cfg.Defaults.DebugLevel)
		debug.PrintStruct("Camera config", cfg.Camera)
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if jrnl != nil {
			if err := jrnl.Close(); err != nil {
				debug.Error(fmt.Errorf("closing journal: %w", err))
			}
			jrnl = nil
		}
	},
}

// Execute runs the root command with a context cancelled on SIGINT/SIGTERM.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	rootCmd.SetVersionTemplate(`{{printf "%s\n" .Version}}`)

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgPath, "config", "c", filepath.Join("configs", "default.yaml"), "path to config file")
	rootCmd.PersistentFlags().IntVarP(&debugLevel, "debug", "d", 0, "debug level 0-4 (overrides config)")
}

// loadConfig reads path. A missing default file falls back to built-in
// defaults; a missing file the user asked for is an error.
func loadConfig(path string, explicit bool) (*config.Config, error) {
	c, err := config.Load(path)
	if err == nil {
		return c, nil
	}
	if !explicit && errors.Is(err, os.ErrNotExist) {
		return config.Default(), nil
	}
	return nil, fmt.Errorf("load config failed: %w", err)
}

// openJournal opens the session journal configured in cfg once.
func openJournal() (*journal.Journal, error) {
	if jrnl != nil {
		return jrnl, nil
	}
	j, err := journal.Open(cfg.Paths.Journal)
	if err != nil {
		return nil, fmt.Errorf("open journal: %w", err)
	}
	debug.Value("Journal", j.Path())
	jrnl = j
	return j, nil
}
