// Package generics recovers an interface's type-parameter list from its
// declaring file. The lookup never fails its caller: every internal error is
// logged and yields the empty list, and the scratch document is released on
// every branch.
package generics

import (
	"context"

	"go.uber.org/zap"

	"github.com/codetrellis/implgen/buffer"
	"github.com/codetrellis/implgen/syntax"
)

// Inspector resolves type parameters for interfaces found by symbol search
type Inspector struct {
	engine *syntax.Engine
	logger *zap.SugaredLogger
}

// NewInspector creates an inspector over the given syntax engine
func NewInspector(engine *syntax.Engine, logger *zap.SugaredLogger) *Inspector {
	return &Inspector{
		engine: engine,
		logger: logger,
	}
}

// ResolveTypeParameters returns the ordered type-parameter names of the named
// interface as declared in filePath, or the empty list when the interface is
// non-generic or any step fails.
func (i *Inspector) ResolveTypeParameters(ctx context.Context, filePath, interfaceName string) []string {
	doc, err := buffer.Load(filePath)
	if err != nil {
		i.logger.Warnw("generics inspection skipped, file unavailable",
			"file", filePath,
			"interface", interfaceName,
			"error", err)
		return nil
	}
	defer doc.Release()

	src := doc.Bytes()
	tree, err := i.engine.Parse(ctx, src)
	if err != nil {
		i.logger.Warnw("generics inspection skipped, parse failed",
			"file", filePath,
			"interface", interfaceName,
			"error", err)
		return nil
	}
	defer tree.Close()

	for _, decl := range i.engine.FindInterfaceDeclarations(tree, src) {
		if decl.Name != interfaceName {
			continue
		}

		name, params, ok := i.engine.FindGenericNameAndParams(decl.Decl, src)
		if !ok || name != interfaceName {
			// Declared here but non-generic
			return nil
		}
		return syntax.ExtractTypeParameterNames(params, src)
	}

	i.logger.Debugw("interface not declared in file",
		"file", filePath,
		"interface", interfaceName)
	return nil
}
