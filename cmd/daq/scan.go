package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/camac-tools/camacdaq/internal/scan"
)

var scanOpts struct {
	branch   int
	crate    int
	nStart   int
	nEnd     int
	aStart   int
	aEnd     int
	function int
	delay    time.Duration
}

var scanCmd = &cobra.Command{
	Use:   "scan",
	Short: "Sweep the crate for responsive station/subaddress pairs",
	RunE: func(cmd *cobra.Command, args []string) error {
		opts := scan.Options{
			Branch:          scanOpts.branch,
			Crate:           scanOpts.crate,
			StationStart:    scanOpts.nStart,
			StationEnd:      scanOpts.nEnd,
			SubaddressStart: scanOpts.aStart,
			SubaddressEnd:   scanOpts.aEnd,
			Function:        scanOpts.function,
			Delay:           scanOpts.delay,
		}
		fmt.Printf("# Scanning N=%d..%d A=%d..%d F=%d (B=%d C=%d)\n",
			scanOpts.nStart, scanOpts.nEnd, scanOpts.aStart, scanOpts.aEnd,
			scanOpts.function, scanOpts.branch, scanOpts.crate)

		hits, err := scan.Run(session, opts)
		for _, h := range hits {
			fmt.Printf("OK  N=%02d A=%02d F=%02d  Data=%7d (0x%06X)  Q=1\n",
				h.Station, h.Subaddress, h.Function, h.Data, h.Data)
		}
		if err != nil {
			return err
		}
		fmt.Printf("# Done. Found %d responsive addresses.\n", len(hits))
		return nil
	},
}

func init() {
	scanCmd.Flags().IntVarP(&scanOpts.branch, "branch", "b", 1, "branch")
	scanCmd.Flags().IntVarP(&scanOpts.crate, "crate", "c", 1, "crate")
	scanCmd.Flags().IntVar(&scanOpts.nStart, "n-start", 1, "first station")
	scanCmd.Flags().IntVar(&scanOpts.nEnd, "n-end", 23, "last station")
	scanCmd.Flags().IntVar(&scanOpts.aStart, "a-start", 0, "first subaddress")
	scanCmd.Flags().IntVar(&scanOpts.aEnd, "a-end", 15, "last subaddress")
	scanCmd.Flags().IntVarP(&scanOpts.function, "func", "f", 0, "read function (0..7)")
	scanCmd.Flags().DurationVar(&scanOpts.delay, "delay", 0, "pause between operations")
}
