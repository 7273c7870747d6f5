package main

import (
	"github.com/spf13/cobra"

	"github.com/camac-tools/camacdaq/pkg/types"
)

var writeCmd = &cobra.Command{
	Use:   "write NAME ADDRESS FUNCTION DATA",
	Short: "Write a data word to a module",
	Long:  "Write DATA (decimal or 0x-prefixed hex) to a module using a write-class function (16..23).",
	Args:  cobra.ExactArgs(4),
	RunE: func(cmd *cobra.Command, args []string) error {
		subaddress, err := parseInt(args[1])
		if err != nil {
			return err
		}
		function, err := parseInt(args[2])
		if err != nil {
			return err
		}
		data, err := parseWord(args[3])
		if err != nil {
			return err
		}
		res, err := session.Run(args[0], subaddress, function, &data)
		if err != nil {
			return err
		}
		printResult(res, types.DirectionWrite)
		return nil
	},
}
