// Package insert places generated stub text into the edited document,
// anchored after the receiver's enclosing type declaration.
package insert

import (
	sitter "github.com/smacker/go-tree-sitter"
	"go.uber.org/zap"

	"github.com/codetrellis/implgen/buffer"
	"github.com/codetrellis/implgen/errors"
	"github.com/codetrellis/implgen/syntax"
)

// Inserter writes generated lines into a document
type Inserter struct {
	logger *zap.SugaredLogger
}

// NewInserter creates an inserter
func NewInserter(logger *zap.SugaredLogger) *Inserter {
	return &Inserter{logger: logger}
}

// Insert places a blank separator line followed by the generated lines,
// verbatim and unformatted, immediately after the last line of the receiver's
// enclosing declaration. Inserting nothing is a no-op, not an error.
func (i *Inserter) Insert(doc *buffer.Document, receiver *sitter.Node, lines []string) error {
	if len(lines) == 0 {
		return nil
	}

	decl, err := syntax.EnclosingDeclaration(receiver)
	if err != nil {
		return err
	}

	endLine := int(decl.EndPoint().Row)
	if endLine >= doc.LineCount() {
		return errors.Wrapf(errors.ErrStructuralAnchorMissing,
			"declaration ends at line %d but document has %d lines", endLine, doc.LineCount())
	}

	inserted := make([]string, 0, len(lines)+1)
	inserted = append(inserted, "")
	inserted = append(inserted, lines...)

	if err := doc.InsertLines(endLine, inserted); err != nil {
		return errors.Wrap(err, "failed to insert generated lines")
	}

	i.logger.Debugw("inserted generated stubs",
		"afterLine", endLine,
		"lineCount", len(lines))
	return nil
}
