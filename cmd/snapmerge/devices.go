package main

import (
	"fmt"

	"github.com/cjeanneret/snapmerge/internal/hw/webcam"
	"github.com/spf13/cobra"
)

var devicesMax int

var devicesCmd = &cobra.Command{
	Use:   "devices",
	Short: "List the camera indexes OpenCV can open",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		ids := webcam.Probe(devicesMax)
		if len(ids) == 0 {
			fmt.Println("No camera found.")
			return
		}
		for _, id := range ids {
			marker := ""
			if id == cfg.Camera.DeviceID {
				marker = " (configured)"
			}
			fmt.Printf("camera %d%s\n", id, marker)
		}
	},
}

func init() {
	devicesCmd.Flags().IntVar(&devicesMax, "max", 10, "highest index to probe (exclusive)")
	rootCmd.AddCommand(devicesCmd)
}
