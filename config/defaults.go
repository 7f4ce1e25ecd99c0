package config

import (
	"github.com/spf13/viper"
)

// SetDefaults configures default values for all configuration options
func SetDefaults(v *viper.Viper) {
	// Generator defaults
	v.SetDefault("generator.binary", "impl")
	v.SetDefault("generator.timeout_seconds", 30)         // generation runs to completion or this deadline
	v.SetDefault("generator.fallback_receiver_letter", "r") // used when the derived prefix is empty

	// Search defaults
	v.SetDefault("search.timeout_seconds", 5) // degrade to empty rather than block
	v.SetDefault("search.debounce_millis", 80)
	v.SetDefault("search.queries_per_second", 10.0)
	v.SetDefault("search.max_results", 50)
	v.SetDefault("search.gopls_binary", "gopls")
	v.SetDefault("search.init_timeout_seconds", 15)

	// Log defaults
	v.SetDefault("log.json", false)
}
