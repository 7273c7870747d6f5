package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/camac-tools/camacdaq/pkg/types"
)

// sampleCrateCfg seeds a new working directory with the legacy column
// format so operators have a template to edit.
const sampleCrateCfg = `* CAMAC crate configuration
* name  branch  crate  station  comment
QVT   1 1 2   LeCroy qVt
GATE  1 1 9   gate generator
`

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Write default configuration files",
	Long:  "Create daq.yaml and a sample daq.cfg in the current directory. Existing files are left untouched.",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := writeIfMissing("daq.yaml", defaultConfigYAML()); err != nil {
			return err
		}
		if err := writeIfMissing("daq.cfg", []byte(sampleCrateCfg)); err != nil {
			return err
		}
		fmt.Println("Configuration initialized")
		return nil
	},
}

func defaultConfigYAML() []byte {
	cfg := types.Config{
		Mode:       types.ModeAuto,
		RetryLimit: types.DefaultRetryLimit,
		RetryDelay: types.DefaultRetryDelay,
		Timeout:    types.DefaultTimeout,
	}
	data, err := yaml.Marshal(&cfg)
	if err != nil {
		// Config is a plain struct; marshalling cannot fail at runtime.
		panic(err)
	}
	return data
}

// writeIfMissing creates path with the given content unless it already
// exists (idempotent).
func writeIfMissing(path string, content []byte) error {
	if _, err := os.Stat(path); err == nil {
		return nil
	} else if !os.IsNotExist(err) {
		return fmt.Errorf("stat %s: %w", path, err)
	}
	return os.WriteFile(path, content, 0o644)
}
