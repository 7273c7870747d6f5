package main

import (
	"github.com/spf13/cobra"

	"github.com/camac-tools/camacdaq/pkg/types"
)

var controlCmd = &cobra.Command{
	Use:   "control NAME ADDRESS FUNCTION",
	Short: "Issue a control-class function to a module",
	Args:  cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		subaddress, err := parseInt(args[1])
		if err != nil {
			return err
		}
		function, err := parseInt(args[2])
		if err != nil {
			return err
		}
		res, err := session.Run(args[0], subaddress, function, nil)
		if err != nil {
			return err
		}
		printResult(res, types.DirectionControl)
		return nil
	},
}
