// Package main provides the daq CLI: named CAMAC operations against a
// real or simulated crate, plus scan and capture tooling.
package main

import (
	"fmt"
	"os"
)

func main() {
	err := rootCmd.Execute()
	// The session is closed on every exit path, including command
	// failures, so a leaked GPIB resource cannot block later runs.
	closeSession()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(exitCode(err))
	}
}
