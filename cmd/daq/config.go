// Configuration loading for the daq CLI. Precedence per key:
// flag > environment (CAMACDAQ_*) > daq.yaml > default.
package main

import (
	"fmt"

	"github.com/spf13/viper"

	"github.com/camac-tools/camacdaq/pkg/types"
)

const (
	configFileName = "daq"
	configFileType = "yaml"
	envPrefix      = "CAMACDAQ"

	cfgKeyMode       = "mode"
	cfgKeyLibPath    = "lib_path"
	cfgKeyResource   = "resource"
	cfgKeyWidthBytes = "width_bytes"
	cfgKeyRetryLimit = "retry_limit"
	cfgKeyRetryDelay = "retry_delay"
	cfgKeyTimeout    = "timeout"
	cfgKeyAuditDir   = "audit_dir"
	cfgKeyCrateCfg   = "crate_cfg"
)

// loadConfig assembles the session Config and the crate map path from
// the config file, environment, and global flags. A missing config file
// is not an error.
func loadConfig() (types.Config, string, error) {
	v := viper.New()
	v.SetDefault(cfgKeyMode, types.ModeAuto)
	v.SetDefault(cfgKeyCrateCfg, "daq.cfg")

	v.SetConfigName(configFileName)
	v.SetConfigType(configFileType)
	if flagConfig != "" {
		v.SetConfigFile(flagConfig)
	} else {
		v.AddConfigPath(".")
	}

	v.SetEnvPrefix(envPrefix)
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		// A missing default daq.yaml is fine; anything else (explicit
		// file missing, parse failure) is reported.
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return types.Config{}, "", fmt.Errorf("read config: %w", err)
		}
	}

	// Flags take precedence over file and environment.
	if flagMode != "" {
		v.Set(cfgKeyMode, flagMode)
	}
	if flagLib != "" {
		v.Set(cfgKeyLibPath, flagLib)
	}
	if flagResource != "" {
		v.Set(cfgKeyResource, flagResource)
	}
	if flagAuditDir != "" {
		v.Set(cfgKeyAuditDir, flagAuditDir)
	}
	if flagCrateCfg != "" {
		v.Set(cfgKeyCrateCfg, flagCrateCfg)
	}

	cfg := types.Config{
		Mode:       v.GetString(cfgKeyMode),
		LibPath:    v.GetString(cfgKeyLibPath),
		Resource:   v.GetString(cfgKeyResource),
		WidthBytes: v.GetInt(cfgKeyWidthBytes),
		RetryLimit: v.GetInt(cfgKeyRetryLimit),
		RetryDelay: v.GetDuration(cfgKeyRetryDelay),
		Timeout:    v.GetDuration(cfgKeyTimeout),
		AuditDir:   v.GetString(cfgKeyAuditDir),
	}
	if err := cfg.Validate(); err != nil {
		return types.Config{}, "", err
	}
	return cfg, v.GetString(cfgKeyCrateCfg), nil
}
