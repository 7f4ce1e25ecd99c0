// Package assist orchestrates one generation flow: cursor position to
// receiver, workspace search, interface selection, type-parameter recovery,
// stub generation, insertion, write-back. The precondition check is the only
// user-visible failure; everything past it degrades to a logged no-op.
package assist

import (
	"context"
	"path"
	"path/filepath"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/codetrellis/implgen/buffer"
	"github.com/codetrellis/implgen/errors"
	"github.com/codetrellis/implgen/insert"
	"github.com/codetrellis/implgen/picker"
	"github.com/codetrellis/implgen/stubgen"
	"github.com/codetrellis/implgen/symbols"
	"github.com/codetrellis/implgen/syntax"
)

// SymbolSearcher finds workspace interface symbols for a query
type SymbolSearcher interface {
	Search(ctx context.Context, query string) ([]symbols.InterfaceSymbol, error)
}

// TypeParamResolver recovers an interface's type parameters from its
// declaring file
type TypeParamResolver interface {
	ResolveTypeParameters(ctx context.Context, filePath, interfaceName string) []string
}

// StubGenerator produces stub method lines, or nil when generation failed
type StubGenerator interface {
	Generate(ctx context.Context, req stubgen.Request) []string
}

// Params describes one invocation: the edited file, the zero-based cursor
// position, and the interface search query.
type Params struct {
	FilePath string
	Line     int
	Column   int
	Query    string
}

// Session wires the pipeline components for repeated invocations
type Session struct {
	engine    *syntax.Engine
	searcher  SymbolSearcher
	inspector TypeParamResolver
	generator StubGenerator
	inserter  *insert.Inserter
	selectFn  picker.SelectFunc
	logger    *zap.SugaredLogger
}

// NewSession creates a session. selectFn chooses among ranked search results;
// pass picker.TerminalSelect for interactive use.
func NewSession(
	engine *syntax.Engine,
	searcher SymbolSearcher,
	inspector TypeParamResolver,
	generator StubGenerator,
	selectFn picker.SelectFunc,
	logger *zap.SugaredLogger,
) *Session {
	return &Session{
		engine:    engine,
		searcher:  searcher,
		inspector: inspector,
		generator: generator,
		inserter:  insert.NewInserter(logger),
		selectFn:  selectFn,
		logger:    logger,
	}
}

// Run executes one generation flow end to end. A failed precondition (the
// cursor is not on a type declaration name) is returned to the caller; deeper
// failures are logged under the invocation id and the file is left untouched.
func (s *Session) Run(ctx context.Context, p Params) error {
	log := s.logger.With("invocation", uuid.New().String(), "file", p.FilePath)

	doc, err := buffer.Load(p.FilePath)
	if err != nil {
		return errors.Wrapf(err, "cannot load %s", p.FilePath)
	}
	defer doc.Release()

	src := doc.Bytes()
	tree, err := s.engine.Parse(ctx, src)
	if err != nil {
		return err
	}
	defer tree.Close()

	// Precondition gate: fails before any search or subprocess I/O
	receiver, err := syntax.ReceiverTypeAt(tree, p.Line, p.Column)
	if err != nil {
		return err
	}
	receiverText := receiver.Content(src)
	receiverParams := syntax.TypeParamsForReceiver(receiver, src)

	log.Infow("searching workspace interfaces",
		"query", p.Query,
		"receiver", receiverText)

	syms, err := s.searcher.Search(ctx, p.Query)
	if err != nil {
		if errors.IsStaleSearch(err) {
			log.Debugw("search superseded", "query", p.Query)
			return nil
		}
		log.Errorw("symbol search failed", "query", p.Query, "error", err)
		return nil
	}

	entries := picker.Rank(p.Query, picker.FromSymbols(syms))
	if len(entries) == 0 {
		log.Infow("no matching interfaces", "query", p.Query)
		return nil
	}

	chosen, err := s.selectFn(entries)
	if err != nil {
		log.Infow("selection dismissed", "error", err)
		return nil
	}

	// Ordering is strict: type parameters before generation before insertion
	typeParams := s.inspector.ResolveTypeParameters(ctx, chosen.Filename, chosen.SymbolName)

	lines := s.generator.Generate(ctx, stubgen.Request{
		ReceiverText:       receiverText,
		ReceiverTypeParams: receiverParams,
		InterfaceName:      chosen.SymbolName,
		PackageQualifier:   qualifierFor(chosen, p.FilePath),
		TypeParams:         typeParams,
		WorkingDir:         filepath.Dir(p.FilePath),
	})
	if len(lines) == 0 {
		return nil
	}

	if err := s.inserter.Insert(doc, receiver, lines); err != nil {
		log.Errorw("insertion failed", "error", err)
		return nil
	}

	if err := doc.WriteBack(); err != nil {
		return err
	}

	log.Infow("stubs inserted",
		"interface", chosen.SymbolName,
		"lines", len(lines))
	return nil
}

// qualifierFor derives the package qualifier for the chosen interface: the
// last element of its container name. An interface declared in the edited
// file's own directory needs no qualifier.
func qualifierFor(entry picker.Entry, editedFile string) string {
	if entry.Value.ContainerName == "" {
		return ""
	}
	if filepath.Dir(entry.Filename) == filepath.Dir(editedFile) {
		return ""
	}
	return path.Base(entry.Value.ContainerName)
}
