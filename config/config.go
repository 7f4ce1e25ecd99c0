package config

// Config represents the implgen configuration
type Config struct {
	Generator GeneratorConfig `mapstructure:"generator"`
	Search    SearchConfig    `mapstructure:"search"`
	Log       LogConfig       `mapstructure:"log"`
}

// GeneratorConfig configures the external stub-generation subprocess
type GeneratorConfig struct {
	Binary                 string `mapstructure:"binary"`                   // generation utility name or path (default: impl)
	TimeoutSeconds         int    `mapstructure:"timeout_seconds"`          // subprocess runs to completion or this deadline
	FallbackReceiverLetter string `mapstructure:"fallback_receiver_letter"` // substituted when the derived receiver prefix is empty
}

// SearchConfig configures the workspace symbol search
type SearchConfig struct {
	TimeoutSeconds    int     `mapstructure:"timeout_seconds"`     // search degrades to empty past this deadline
	DebounceMillis    int     `mapstructure:"debounce_millis"`     // coalesces rapid re-queries while typing
	QueriesPerSecond  float64 `mapstructure:"queries_per_second"`  // rate cap on the language-analysis backend
	MaxResults        int     `mapstructure:"max_results"`         // picker entry cap
	GoplsBinary       string  `mapstructure:"gopls_binary"`        // symbol backend binary (default: gopls)
	InitTimeoutSecond int     `mapstructure:"init_timeout_seconds"`
}

// LogConfig configures log output
type LogConfig struct {
	JSON bool `mapstructure:"json"` // structured JSON instead of console output
}
