package main

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List configured modules",
	RunE: func(cmd *cobra.Command, args []string) error {
		crateMap := session.CrateMap()
		names := crateMap.Names()
		sort.Strings(names)
		for _, name := range names {
			entry, _ := crateMap.Lookup(name)
			line := fmt.Sprintf("%-6s  B=%d C=%d N=%d", entry.Name, entry.Branch, entry.Crate, entry.Station)
			if entry.Comment != "" {
				line += "  " + entry.Comment
			}
			fmt.Println(line)
		}
		return nil
	},
}
