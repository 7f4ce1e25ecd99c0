package config

import (
	"os"
	"path/filepath"

	"github.com/pelletier/go-toml/v2"
	"github.com/spf13/viper"

	"github.com/codetrellis/implgen/errors"
)

// WriteDefault writes a config file populated with the current defaults.
// Fails if the file already exists; the user's edits are never clobbered.
func WriteDefault(configPath string) error {
	if _, err := os.Stat(configPath); err == nil {
		return errors.Newf("config file %s already exists", configPath)
	}

	v := viper.New()
	SetDefaults(v)

	cfg, err := LoadWithViper(v)
	if err != nil {
		return err
	}

	return Write(configPath, cfg)
}

// Write persists a configuration to a TOML file
func Write(configPath string, cfg *Config) error {
	if err := os.MkdirAll(filepath.Dir(configPath), 0755); err != nil {
		return errors.Wrapf(err, "failed to create config directory for %s", configPath)
	}

	// Marshal through an alias map so keys match the mapstructure names
	data, err := toml.Marshal(map[string]interface{}{
		"generator": map[string]interface{}{
			"binary":                   cfg.Generator.Binary,
			"timeout_seconds":          cfg.Generator.TimeoutSeconds,
			"fallback_receiver_letter": cfg.Generator.FallbackReceiverLetter,
		},
		"search": map[string]interface{}{
			"timeout_seconds":      cfg.Search.TimeoutSeconds,
			"debounce_millis":      cfg.Search.DebounceMillis,
			"queries_per_second":   cfg.Search.QueriesPerSecond,
			"max_results":          cfg.Search.MaxResults,
			"gopls_binary":         cfg.Search.GoplsBinary,
			"init_timeout_seconds": cfg.Search.InitTimeoutSecond,
		},
		"log": map[string]interface{}{
			"json": cfg.Log.JSON,
		},
	})
	if err != nil {
		return errors.Wrap(err, "failed to marshal config to TOML")
	}

	if err := os.WriteFile(configPath, data, 0644); err != nil {
		return errors.Wrapf(err, "failed to write config file %s", configPath)
	}

	return nil
}
