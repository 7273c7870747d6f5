package main

import (
	"github.com/spf13/cobra"

	"github.com/camac-tools/camacdaq/pkg/types"
)

var readFunction int

var readCmd = &cobra.Command{
	Use:   "read NAME ADDRESS",
	Short: "Read a data word from a module",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		subaddress, err := parseInt(args[1])
		if err != nil {
			return err
		}
		res, err := session.Run(args[0], subaddress, readFunction, nil)
		if err != nil {
			return err
		}
		printResult(res, types.DirectionRead)
		return nil
	},
}

func init() {
	readCmd.Flags().IntVarP(&readFunction, "function", "f", 0, "CAMAC read function (0..7)")
}
