package config

import (
	"fmt"
	"strings"

	"github.com/dmitrijs2005/filevault/internal/flagx"
	"github.com/mitchellh/mapstructure"
	"github.com/spf13/viper"
)

// EnvPrefix prefixes every environment override, e.g. FILEVAULT_AUTH_SECRET_KEY.
const EnvPrefix = "FILEVAULT"

// parseFile overlays the config file at path (json, yaml or toml, chosen by
// extension) and FILEVAULT_* environment variables onto cfg. An empty path
// applies the environment only.
func parseFile(cfg *Config, path string) error {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// viper only resolves environment variables for keys it already knows,
	// so the current values are registered first.
	var current map[string]any
	if err := mapstructure.Decode(cfg, &current); err != nil {
		return fmt.Errorf("failed to flatten defaults: %w", err)
	}
	if err := v.MergeConfigMap(current); err != nil {
		return fmt.Errorf("failed to register defaults: %w", err)
	}

	if path != "" {
		format, err := flagx.ConfigFormat(path)
		if err != nil {
			return err
		}
		v.SetConfigFile(path)
		v.SetConfigType(format)
		if err := v.MergeInConfig(); err != nil {
			return fmt.Errorf("failed to read config file: %w", err)
		}
	}

	if err := v.Unmarshal(cfg); err != nil {
		return fmt.Errorf("failed to unmarshal config: %w", err)
	}
	return nil
}
