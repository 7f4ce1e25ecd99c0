package commands

import (
	"fmt"

	"github.com/pelletier/go-toml/v2"
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/codetrellis/implgen/config"
	"github.com/codetrellis/implgen/errors"
)

// ConfigCmd manages implgen configuration
var ConfigCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage implgen configuration",
	Long: `Display and manage implgen configuration.

Configuration sources (in order of precedence):
1. Environment variables (IMPLGEN_* prefix)
2. Project config (./implgen.toml, searched upward)
3. User config (~/.implgen/implgen.toml)
4. Default values

Examples:
  implgen config show    # Show effective configuration
  implgen config init    # Write a default user config file`,
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show effective configuration",
	RunE:  runConfigShow,
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a default user config file",
	Long:  "Create ~/.implgen/implgen.toml populated with the default values. Refuses to overwrite an existing file.",
	RunE:  runConfigInit,
}

func init() {
	ConfigCmd.AddCommand(configShowCmd)
	ConfigCmd.AddCommand(configInitCmd)
}

func runConfigShow(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return errors.Wrap(err, "failed to load configuration")
	}

	data, err := toml.Marshal(cfg)
	if err != nil {
		return errors.Wrap(err, "failed to render configuration")
	}

	fmt.Print(string(data))
	return nil
}

func runConfigInit(cmd *cobra.Command, args []string) error {
	path := config.UserConfigPath()
	if path == "" {
		return errors.New("cannot determine user config path")
	}

	if err := config.WriteDefault(path); err != nil {
		return err
	}

	pterm.Success.Printf("Wrote default configuration to %s\n", path)
	return nil
}
