// Package syntax evaluates fixed structural patterns against parsed Go
// source using tree-sitter. Three patterns cover the pipeline: interface
// declarations, generic name + type-parameter list within a declaration, and
// parameter names within a type-parameter list.
package syntax

import (
	"context"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/golang"

	"github.com/codetrellis/implgen/errors"
)

// Pattern 1: a type declaration whose spec's type is an interface type.
const interfaceDeclPattern = `
(type_declaration
  (type_spec
    name: (type_identifier) @iface.name
    type: (interface_type)) @iface.spec) @iface.decl
`

// Pattern 2: within a candidate declaration, a type spec carrying a name, an
// explicit type-parameter list, and an interface type. Absence of a match
// means "non-generic", not an error.
const genericInterfacePattern = `
(type_spec
  name: (type_identifier) @generic.name
  type_parameters: (type_parameter_list) @generic.params
  type: (interface_type))
`

// Engine compiles the fixed patterns once and evaluates them against parsed
// trees. A fresh tree-sitter parser is created per Parse call; parser
// instances are not safe for concurrent reuse.
type Engine struct {
	lang           *sitter.Language
	interfaceQuery *sitter.Query
	genericQuery   *sitter.Query
}

// InterfaceDecl is one interface declaration discovered by pattern 1
type InterfaceDecl struct {
	Name string
	Decl *sitter.Node // the type_declaration node
	Spec *sitter.Node // the type_spec node
}

// NewEngine compiles the structural patterns for the Go grammar
func NewEngine() (*Engine, error) {
	lang := golang.GetLanguage()

	interfaceQuery, err := sitter.NewQuery([]byte(interfaceDeclPattern), lang)
	if err != nil {
		return nil, errors.Wrap(err, "failed to compile interface declaration pattern")
	}

	genericQuery, err := sitter.NewQuery([]byte(genericInterfacePattern), lang)
	if err != nil {
		return nil, errors.Wrap(err, "failed to compile generic interface pattern")
	}

	return &Engine{
		lang:           lang,
		interfaceQuery: interfaceQuery,
		genericQuery:   genericQuery,
	}, nil
}

// Parse builds a syntax tree for the given source. The caller owns the
// returned tree and must Close it.
func (e *Engine) Parse(ctx context.Context, src []byte) (*sitter.Tree, error) {
	parser := sitter.NewParser()
	parser.SetLanguage(e.lang)

	tree, err := parser.ParseCtx(ctx, nil, src)
	if err != nil {
		return nil, errors.Wrap(err, "tree-sitter parse failed")
	}
	return tree, nil
}

// FindInterfaceDeclarations evaluates pattern 1 over the whole tree and
// returns every interface declaration in document order.
func (e *Engine) FindInterfaceDeclarations(tree *sitter.Tree, src []byte) []InterfaceDecl {
	cursor := sitter.NewQueryCursor()
	defer cursor.Close()
	cursor.Exec(e.interfaceQuery, tree.RootNode())

	var decls []InterfaceDecl
	for {
		match, ok := cursor.NextMatch()
		if !ok {
			break
		}
		match = cursor.FilterPredicates(match, src)

		var decl InterfaceDecl
		for _, capture := range match.Captures {
			switch e.interfaceQuery.CaptureNameForId(capture.Index) {
			case "iface.name":
				decl.Name = capture.Node.Content(src)
			case "iface.spec":
				decl.Spec = capture.Node
			case "iface.decl":
				decl.Decl = capture.Node
			}
		}
		if decl.Name != "" && decl.Spec != nil {
			decls = append(decls, decl)
		}
	}
	return decls
}

// FindGenericNameAndParams evaluates pattern 2 within a candidate declaration
// node. ok is false for non-generic interfaces; that is not an error.
func (e *Engine) FindGenericNameAndParams(decl *sitter.Node, src []byte) (name string, params *sitter.Node, ok bool) {
	if decl == nil {
		return "", nil, false
	}

	cursor := sitter.NewQueryCursor()
	defer cursor.Close()
	cursor.Exec(e.genericQuery, decl)

	for {
		match, matched := cursor.NextMatch()
		if !matched {
			break
		}
		match = cursor.FilterPredicates(match, src)

		for _, capture := range match.Captures {
			switch e.genericQuery.CaptureNameForId(capture.Index) {
			case "generic.name":
				name = capture.Node.Content(src)
			case "generic.params":
				params = capture.Node
			}
		}
		if name != "" && params != nil {
			return name, params, true
		}
	}
	return "", nil, false
}

// ExtractTypeParameterNames evaluates pattern 3: each parameter's name
// identifier within a type-parameter list, declaration order preserved.
// Walking children by field keeps the extraction stable across grammar
// revisions that renamed the inner declaration node.
func ExtractTypeParameterNames(params *sitter.Node, src []byte) []string {
	if params == nil {
		return nil
	}

	var names []string
	for i := 0; i < int(params.NamedChildCount()); i++ {
		decl := params.NamedChild(i)
		found := false
		for j := 0; j < int(decl.ChildCount()); j++ {
			if decl.FieldNameForChild(j) == "name" {
				names = append(names, decl.Child(j).Content(src))
				found = true
			}
		}
		if !found && decl.Type() == "identifier" {
			names = append(names, decl.Content(src))
		}
	}
	return names
}

// RenderTypeParams renders an ordered parameter list as "[a, b]", or "" when
// the list is empty.
func RenderTypeParams(names []string) string {
	if len(names) == 0 {
		return ""
	}
	return "[" + strings.Join(names, ", ") + "]"
}

// ReceiverTypeAt resolves the cursor position (zero-based row and column) to
// the receiver type identifier of a type declaration. This is the
// precondition gate: it fails before any I/O when the cursor is not on a
// qualifying identifier.
func ReceiverTypeAt(tree *sitter.Tree, row, column int) (*sitter.Node, error) {
	point := sitter.Point{Row: uint32(row), Column: uint32(column)}
	node := tree.RootNode().NamedDescendantForPointRange(point, point)
	if node == nil || node.Type() != "type_identifier" {
		return nil, errors.Wrapf(errors.ErrPreconditionFailed, "%d:%d", row, column)
	}

	parent := node.Parent()
	if parent == nil || parent.Type() != "type_spec" {
		return nil, errors.Wrapf(errors.ErrPreconditionFailed, "%d:%d is not a type declaration name", row, column)
	}

	// The cursor must be on the declared name, not on a type mentioned in the
	// spec's body.
	nameNode := parent.ChildByFieldName("name")
	if nameNode == nil || nameNode.StartByte() != node.StartByte() {
		return nil, errors.Wrapf(errors.ErrPreconditionFailed, "%d:%d is not the declared type name", row, column)
	}

	return node, nil
}

// TypeParamsForReceiver recovers the receiver's own type-parameter names from
// its parent declaration, if present. Non-generic receivers yield nil.
func TypeParamsForReceiver(receiver *sitter.Node, src []byte) []string {
	if receiver == nil {
		return nil
	}
	spec := receiver.Parent()
	if spec == nil || spec.Type() != "type_spec" {
		return nil
	}
	return ExtractTypeParameterNames(spec.ChildByFieldName("type_parameters"), src)
}

// EnclosingDeclaration walks receiver -> parent -> grandparent to the
// enclosing type declaration. Both links must be present.
func EnclosingDeclaration(receiver *sitter.Node) (*sitter.Node, error) {
	if receiver == nil {
		return nil, errors.Wrap(errors.ErrStructuralAnchorMissing, "nil receiver node")
	}
	parent := receiver.Parent()
	if parent == nil {
		return nil, errors.Wrap(errors.ErrStructuralAnchorMissing, "receiver has no parent")
	}
	grandparent := parent.Parent()
	if grandparent == nil {
		return nil, errors.Wrap(errors.ErrStructuralAnchorMissing, "receiver has no enclosing declaration")
	}
	return grandparent, nil
}
