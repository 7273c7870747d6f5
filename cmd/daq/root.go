// Root command for the daq CLI.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/camac-tools/camacdaq/internal/cratecfg"
	"github.com/camac-tools/camacdaq/internal/dispatch"
	"github.com/camac-tools/camacdaq/pkg/camacdaq"
	"github.com/camac-tools/camacdaq/pkg/types"
)

// Exit codes, one per error kind, so scripts can tell a wiring problem
// from a bad invocation from a driver fault.
const (
	exitSuccess     = 0
	exitValidation  = 1
	exitUnavailable = 2
	exitProtocol    = 3
	exitTransport   = 4
	exitFailure     = 5
)

// Global flag values.
var (
	flagConfig   string // tool configuration file (daq.yaml)
	flagCrateCfg string // crate map file (daq.cfg)
	flagMode     string
	flagLib      string
	flagResource string
	flagAuditDir string
)

// session is the Dispatcher for this invocation, opened by
// PersistentPreRunE and closed in main on every exit path.
var session *dispatch.Dispatcher

var rootCmd = &cobra.Command{
	Use:   "daq",
	Short: "daq issues CAMAC commands against a real or simulated crate",
	Long: `daq resolves symbolic module names through a crate configuration file
and executes CAMAC operations through the selected backend: the native
GPIB driver library, a KS-3988 crate controller over a byte transport,
or an in-memory simulated crate.`,
	Version:           camacdaq.Version,
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: initSession,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "", "tool configuration file (default: ./daq.yaml)")
	rootCmd.PersistentFlags().StringVar(&flagCrateCfg, "cfg", "", "crate configuration file mapping module names to stations")
	rootCmd.PersistentFlags().StringVar(&flagMode, "mode", "", "backend mode: mock, real, gpib, or auto")
	rootCmd.PersistentFlags().StringVar(&flagLib, "lib", "", "path to the native CAMAC driver library")
	rootCmd.PersistentFlags().StringVar(&flagResource, "resource", "", "transport address of the crate controller (gpib mode)")
	rootCmd.PersistentFlags().StringVar(&flagAuditDir, "audit-dir", "", "directory for the per-command audit log")

	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(readCmd)
	rootCmd.AddCommand(writeCmd)
	rootCmd.AddCommand(controlCmd)
	rootCmd.AddCommand(scanCmd)
	rootCmd.AddCommand(captureCmd)
	rootCmd.AddCommand(versionCmd)
}

// initSession loads configuration, the crate map, and opens the
// dispatcher. Commands that touch no crate skip it.
func initSession(cmd *cobra.Command, args []string) error {
	switch cmd.Name() {
	case "version", "init", "help":
		return nil
	}

	cfg, crateCfgPath, err := loadConfig()
	if err != nil {
		return err
	}

	crateMap := types.CrateMap{}
	if crateCfgPath != "" {
		crateMap, err = cratecfg.Load(crateCfgPath)
		if err != nil {
			// The scan command sweeps raw stations and works without
			// a module map.
			if cmd.Name() != "scan" {
				return err
			}
			crateMap = types.CrateMap{}
		}
	}

	session, err = dispatch.New(cfg, crateMap)
	if err != nil {
		return err
	}
	if err := session.Open(); err != nil {
		session = nil
		return err
	}
	return nil
}

// closeSession releases the dispatcher. Safe to call when no session
// was opened.
func closeSession() {
	if session != nil {
		if err := session.Close(); err != nil {
			fmt.Fprintln(os.Stderr, "warning: close session:", err)
		}
		session = nil
	}
}

// exitCode maps an error to the CLI's exit code by its kind.
func exitCode(err error) int {
	if err == nil {
		return exitSuccess
	}
	switch types.KindOf(err) {
	case types.KindValidation:
		return exitValidation
	case types.KindBackendUnavailable:
		return exitUnavailable
	case types.KindProtocol:
		return exitProtocol
	case types.KindTransport, types.KindDriver:
		return exitTransport
	default:
		return exitFailure
	}
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("daq v%s\n", camacdaq.Version)
	},
}
