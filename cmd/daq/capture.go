package main

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/camac-tools/camacdaq/internal/capture"
)

var captureOpts struct {
	targets  string
	interval time.Duration
	count    int
	out      string
	store    string
}

var captureCmd = &cobra.Command{
	Use:   "capture",
	Short: "Record repeated reads to CSV and the run store",
	Long: `Capture samples every target in the list NAME:A:F;NAME2:A2:F2 at a
fixed interval, recording each reading to a CSV file and, when a store
path is given, to the SQLite run store.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		targets, err := capture.ParseTargets(captureOpts.targets)
		if err != nil {
			return err
		}

		var recorders []capture.Recorder

		if captureOpts.out != "" {
			if dir := filepath.Dir(captureOpts.out); dir != "." {
				if err := os.MkdirAll(dir, 0o755); err != nil {
					return fmt.Errorf("create output directory: %w", err)
				}
			}
			f, err := os.Create(captureOpts.out)
			if err != nil {
				return fmt.Errorf("create CSV: %w", err)
			}
			defer f.Close()
			recorders = append(recorders, capture.NewCSVRecorder(f))
		}

		if captureOpts.store != "" {
			store, err := capture.OpenStore(captureOpts.store)
			if err != nil {
				return err
			}
			defer store.Close()
			runID, err := store.BeginRun(session.Mode(), targets)
			if err != nil {
				return err
			}
			fmt.Printf("run %s\n", runID)
			recorders = append(recorders, store)
		}

		if len(recorders) == 0 {
			return fmt.Errorf("nothing to record: give --out and/or --store")
		}

		n, err := capture.Run(session, targets, capture.Options{
			Interval: captureOpts.interval,
			Count:    captureOpts.count,
		}, recorders...)
		if err != nil {
			return err
		}
		fmt.Printf("Recorded %d samples.\n", n)
		return nil
	},
}

func init() {
	captureCmd.Flags().StringVar(&captureOpts.targets, "targets", "", `target list, e.g. "QVT:0:0;GATE:0:0"`)
	captureCmd.Flags().DurationVar(&captureOpts.interval, "interval", 500*time.Millisecond, "pause between sampling cycles")
	captureCmd.Flags().IntVar(&captureOpts.count, "count", 10, "number of sampling cycles")
	captureCmd.Flags().StringVar(&captureOpts.out, "out", "", "CSV output path")
	captureCmd.Flags().StringVar(&captureOpts.store, "store", "", "SQLite run store path")
	captureCmd.MarkFlagRequired("targets")
}
