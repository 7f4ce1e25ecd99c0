package commands

import (
	"context"
	"path/filepath"
	"time"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
	"golang.org/x/time/rate"

	"github.com/codetrellis/implgen/assist"
	"github.com/codetrellis/implgen/config"
	"github.com/codetrellis/implgen/errors"
	"github.com/codetrellis/implgen/generics"
	"github.com/codetrellis/implgen/langserver/gopls"
	"github.com/codetrellis/implgen/logger"
	"github.com/codetrellis/implgen/picker"
	"github.com/codetrellis/implgen/stubgen"
	"github.com/codetrellis/implgen/symbols"
	"github.com/codetrellis/implgen/syntax"
)

var (
	generateFile      string
	generateLine      int
	generateCol       int
	generateWorkspace string
	generateFirst     bool
)

// GenerateCmd runs one stub-generation flow
var GenerateCmd = &cobra.Command{
	Use:   "generate <query>",
	Short: "Generate interface method stubs at the cursor position",
	Long: `Generate interface method stubs for the type declaration under the cursor.

Searches the workspace for interfaces matching the query through a gopls
subprocess, prompts for a selection, and inserts the generated methods
immediately after the type declaration.

Examples:
  implgen generate Writer --file main.go --line 4 --col 6
  implgen generate Stringer --file types.go --line 12 --col 5 --first`,
	Args: cobra.ExactArgs(1),
	RunE: runGenerate,
}

func init() {
	GenerateCmd.Flags().StringVarP(&generateFile, "file", "f", "", "File being edited (required)")
	GenerateCmd.Flags().IntVarP(&generateLine, "line", "l", 0, "Zero-based cursor line (required)")
	GenerateCmd.Flags().IntVarP(&generateCol, "col", "c", 0, "Zero-based cursor column (required)")
	GenerateCmd.Flags().StringVarP(&generateWorkspace, "workspace", "w", "", "Workspace root (default: directory of --file)")
	GenerateCmd.Flags().BoolVar(&generateFirst, "first", false, "Take the top-ranked match without prompting")
	GenerateCmd.MarkFlagRequired("file")
	GenerateCmd.MarkFlagRequired("line")
	GenerateCmd.MarkFlagRequired("col")
}

func runGenerate(cmd *cobra.Command, args []string) error {
	query := args[0]

	cfg, err := config.Load()
	if err != nil {
		return errors.Wrap(err, "failed to load configuration")
	}

	filePath, err := filepath.Abs(generateFile)
	if err != nil {
		return errors.Wrapf(err, "cannot resolve %s", generateFile)
	}

	workspace := generateWorkspace
	if workspace == "" {
		workspace = filepath.Dir(filePath)
	}
	workspace, err = filepath.Abs(workspace)
	if err != nil {
		return errors.Wrapf(err, "cannot resolve workspace %s", generateWorkspace)
	}

	engine, err := syntax.NewEngine()
	if err != nil {
		return err
	}

	backend, err := gopls.NewStdioClient(cfg.Search.GoplsBinary)
	if err != nil {
		return errors.Wrap(err, "failed to start symbol backend")
	}

	initCtx, cancelInit := context.WithTimeout(cmd.Context(),
		time.Duration(cfg.Search.InitTimeoutSecond)*time.Second)
	defer cancelInit()
	if err := backend.Initialize(initCtx, workspace); err != nil {
		return err
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := backend.Shutdown(shutdownCtx); err != nil {
			logger.Logger.Warnw("symbol backend shutdown failed", "error", err)
		}
	}()

	resolver := symbols.NewResolver(backend, logger.Logger, symbols.Options{
		Timeout:     time.Duration(cfg.Search.TimeoutSeconds) * time.Second,
		Debounce:    time.Duration(cfg.Search.DebounceMillis) * time.Millisecond,
		RateLimit:   rate.Limit(cfg.Search.QueriesPerSecond),
		MaxResults:  cfg.Search.MaxResults,
		ContextFile: filePath,
	})

	generator := stubgen.NewGenerator(stubgen.Config{
		Binary:                 cfg.Generator.Binary,
		FallbackReceiverLetter: cfg.Generator.FallbackReceiverLetter,
		Timeout:                time.Duration(cfg.Generator.TimeoutSeconds) * time.Second,
		Logger:                 logger.Logger,
	})

	selectFn := picker.SelectFunc(picker.TerminalSelect)
	if generateFirst {
		selectFn = picker.First
	}

	session := assist.NewSession(
		engine,
		resolver,
		generics.NewInspector(engine, logger.Logger),
		generator,
		selectFn,
		logger.Logger,
	)

	if err := session.Run(cmd.Context(), assist.Params{
		FilePath: filePath,
		Line:     generateLine,
		Column:   generateCol,
		Query:    query,
	}); err != nil {
		if errors.Is(err, errors.ErrPreconditionFailed) {
			pterm.Warning.Println("Cursor is not on a type declaration name")
		}
		return err
	}

	return nil
}
