package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/codetrellis/implgen/cmd/implgen/commands"
	"github.com/codetrellis/implgen/config"
	"github.com/codetrellis/implgen/logger"
)

var rootCmd = &cobra.Command{
	Use:   "implgen",
	Short: "implgen - Generate interface method stubs from the cursor position",
	Long: `implgen - Editor companion for generating interface method stubs.

Point it at a type declaration in a Go source file and an interface search
query; it finds matching interfaces across the workspace, resolves generic
type parameters from the declaring file, runs the stub generator, and inserts
the methods after the type declaration.

Available commands:
  generate - Generate stubs at a cursor position
  config   - Manage configuration
  version  - Show version information

Examples:
  implgen generate Writer --file main.go --line 4 --col 6
  implgen config show
  implgen version`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// Initialize the global logger before any command runs
		cfg, err := config.Load()
		if err != nil {
			return fmt.Errorf("failed to load configuration: %w", err)
		}
		if err := logger.Initialize(cfg.Log.JSON); err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		logger.Cleanup()
	},
}

func init() {
	rootCmd.AddCommand(commands.GenerateCmd)
	rootCmd.AddCommand(commands.ConfigCmd)
	rootCmd.AddCommand(commands.VersionCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
