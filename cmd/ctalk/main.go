// Package main provides ctalk, an interactive console for issuing raw
// CAMAC operations by crate/station/subaddress numbers.
package main

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/camac-tools/camacdaq/internal/cratecfg"
	"github.com/camac-tools/camacdaq/internal/dispatch"
	"github.com/camac-tools/camacdaq/pkg/camacdaq"
	"github.com/camac-tools/camacdaq/pkg/types"
)

var (
	flagCfg      string
	flagMode     string
	flagLib      string
	flagResource string
)

var rootCmd = &cobra.Command{
	Use:          "ctalk",
	Short:        "Interactive talk to CAMAC",
	Version:      camacdaq.Version,
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		crateMap := types.CrateMap{}
		if flagCfg != "" {
			var err error
			crateMap, err = cratecfg.Load(flagCfg)
			if err != nil {
				return err
			}
		}

		cfg := types.Config{
			Mode:     flagMode,
			LibPath:  flagLib,
			Resource: flagResource,
		}
		session, err := dispatch.New(cfg, crateMap)
		if err != nil {
			return err
		}
		if err := session.Open(); err != nil {
			return err
		}
		defer session.Close()

		talk(session, os.Stdin)
		return nil
	},
}

func init() {
	rootCmd.Flags().StringVar(&flagCfg, "cfg", "", "crate configuration file (optional)")
	rootCmd.Flags().StringVar(&flagMode, "mode", types.ModeAuto, "backend mode: mock, real, gpib, or auto")
	rootCmd.Flags().StringVar(&flagLib, "lib", "", "path to the native CAMAC driver library")
	rootCmd.Flags().StringVar(&flagResource, "resource", "", "transport address of the crate controller (gpib mode)")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

const banner = `
*****************************
* Interactive talk to CAMAC *
*****************************
Commands:
  C crate station address function [data]
  B [branch]  - get/set branch (local)
  D [level]   - set debug level
  Q / E       - quit/exit`

// talk runs the console loop until EOF or a quit command.
func talk(session *dispatch.Dispatcher, in *os.File) {
	fmt.Println(banner)
	fmt.Printf("backend: %s\n", session.Mode())

	branch := 1
	scanner := bufio.NewScanner(in)
	for {
		fmt.Print("CAMAC> ")
		if !scanner.Scan() {
			fmt.Println()
			return
		}
		line := strings.TrimSpace(strings.ReplaceAll(scanner.Text(), ",", " "))
		if line == "" {
			continue
		}
		toks := strings.Fields(line)
		switch strings.ToUpper(toks[0]) {
		case "Q", "QUIT", "E", "EXIT":
			return
		case "B", "BRANCH":
			if len(toks) == 1 {
				fmt.Printf("\tBranch: %d\n", branch)
				continue
			}
			b, err := parseInt(toks[1])
			if err != nil {
				fmt.Println("!! Branch must be integer")
				continue
			}
			branch = b
			fmt.Printf("\tBranch: %d\n", branch)
		case "D", "DEBUG":
			level := 1
			if len(toks) > 1 {
				l, err := parseInt(toks[1])
				if err != nil {
					fmt.Println("!! Debug level must be integer")
					continue
				}
				level = l
			}
			session.SetDebug(level)
			fmt.Printf("\tDebug: %d\n", level)
		case "C", "CAMAC":
			doCamac(session, branch, toks[1:])
		default:
			fmt.Println("Unknown command. Try: C, B, D, Q/E")
		}
	}
}

// doCamac parses and executes one raw C command.
func doCamac(session *dispatch.Dispatcher, branch int, toks []string) {
	if len(toks) < 4 {
		fmt.Println("Usage: C crate station address function [data]")
		return
	}
	nums := make([]int, 4)
	for i := 0; i < 4; i++ {
		n, err := parseInt(toks[i])
		if err != nil {
			fmt.Println("!! All numeric fields must be integers (0x.. ok)")
			return
		}
		nums[i] = n
	}
	crate, station, subaddress, function := nums[0], nums[1], nums[2], nums[3]

	if subaddress < 0 || subaddress > types.MaxSubaddress ||
		function < 0 || function > types.MaxFunction ||
		station < 0 || station > types.MaxStation {
		fmt.Println("!! N must be 0..31, A 0..15, F 0..31")
		return
	}

	cmd := types.Command{
		Module:     fmt.Sprintf("N%d", station),
		Branch:     branch,
		Crate:      crate,
		Station:    station,
		Subaddress: subaddress,
		Function:   function,
		Direction:  types.DirectionOf(function),
	}
	if cmd.Direction == types.DirectionWrite {
		if len(toks) < 5 {
			fmt.Println("!! Write function needs a data word")
			return
		}
		data, err := parseWord(toks[4])
		if err != nil || data > types.DataMask {
			fmt.Println("!! Data must be a 24-bit word (0x.. ok)")
			return
		}
		cmd.Data = data
	}

	res, err := session.Execute(cmd)
	if err != nil {
		fmt.Printf("!! %v\n", err)
		return
	}
	switch cmd.Direction {
	case types.DirectionRead:
		fmt.Printf("\tData: %6d (Dec), %5X (Hex), Q: %v\n", res.Data, res.Data, res.Q)
	case types.DirectionWrite:
		fmt.Printf("\tData written, Q: %v\n", res.Q)
	default:
		fmt.Printf("\tQ: %v\n", res.Q)
	}
}

// parseInt accepts decimal and 0x-prefixed literals.
func parseInt(arg string) (int, error) {
	n, err := strconv.ParseInt(arg, 0, 32)
	return int(n), err
}

func parseWord(arg string) (uint32, error) {
	n, err := strconv.ParseUint(arg, 0, 32)
	return uint32(n), err
}
