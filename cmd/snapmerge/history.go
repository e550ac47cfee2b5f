package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

var historyLimit int

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List recent capture sessions and composites",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cmd.SilenceUsage = true
		j, err := openJournal()
		if err != nil {
			return err
		}
		ctx := cmd.Context()

		sessions, err := j.Sessions(ctx, historyLimit)
		if err != nil {
			return err
		}
		composites, err := j.Composites(ctx, historyLimit)
		if err != nil {
			return err
		}

		if len(sessions) == 0 && len(composites) == 0 {
			fmt.Println("No sessions recorded yet.")
			return nil
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 0, 3, ' ', 0)
		fmt.Fprintln(w, "SESSION\tSTARTED\tSTATE\tFRAMES\tCAPTURE")
		fmt.Fprintln(w, "-------\t-------\t-----\t------\t-------")
		for _, s := range sessions {
			fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%s\n", shortID(s.ID), s.StartedAt.Local().Format("2006-01-02 15:04:05"), s.State, s.Frames, orDash(s.CapturePath))
		}
		w.Flush()

		if len(composites) > 0 {
			fmt.Println()
			w = tabwriter.NewWriter(os.Stdout, 0, 0, 3, ' ', 0)
			fmt.Fprintln(w, "COMPOSITE\tCREATED\tTEMPLATE\tPIXELS\tOUTPUT")
			fmt.Fprintln(w, "---------\t-------\t--------\t------\t------")
			for _, c := range composites {
				fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%s\n", shortID(c.ID), c.CreatedAt.Local().Format("2006-01-02 15:04:05"), c.TemplatePath, c.Markers, c.OutputPath)
			}
			w.Flush()
		}
		return nil
	},
}

func init() {
	historyCmd.Flags().IntVarP(&historyLimit, "limit", "n", 20, "number of entries to show (0 = all)")
	rootCmd.AddCommand(historyCmd)
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
