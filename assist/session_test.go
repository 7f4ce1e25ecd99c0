package assist

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/codetrellis/implgen/errors"
	"github.com/codetrellis/implgen/picker"
	"github.com/codetrellis/implgen/stubgen"
	"github.com/codetrellis/implgen/symbols"
	"github.com/codetrellis/implgen/syntax"
)

const editedSource = `package main

type Foo struct {
	name string
}
`

type fakeSearcher struct {
	results []symbols.InterfaceSymbol
	err     error
	calls   int
}

func (f *fakeSearcher) Search(ctx context.Context, query string) ([]symbols.InterfaceSymbol, error) {
	f.calls++
	return f.results, f.err
}

type fakeInspector struct {
	params map[string][]string
}

func (f *fakeInspector) ResolveTypeParameters(ctx context.Context, filePath, interfaceName string) []string {
	return f.params[interfaceName]
}

type fakeGenerator struct {
	lines []string
	reqs  []stubgen.Request
}

func (f *fakeGenerator) Generate(ctx context.Context, req stubgen.Request) []string {
	f.reqs = append(f.reqs, req)
	return f.lines
}

func writeEdited(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "main.go")
	require.NoError(t, os.WriteFile(path, []byte(editedSource), 0644))
	return path
}

func newSession(t *testing.T, searcher SymbolSearcher, inspector TypeParamResolver, generator StubGenerator) *Session {
	t.Helper()
	engine, err := syntax.NewEngine()
	require.NoError(t, err)
	return NewSession(engine, searcher, inspector, generator, picker.First, zap.NewNop().Sugar())
}

func TestRunEndToEnd(t *testing.T) {
	path := writeEdited(t)

	searcher := &fakeSearcher{results: []symbols.InterfaceSymbol{
		{Name: "Writer", ContainerName: "io", DeclaringFile: "/usr/lib/go/src/io/io.go"},
	}}
	inspector := &fakeInspector{}
	stubs := []string{
		"func (f *Foo) Write(p []byte) (n int, err error) {",
		"\tpanic(\"not implemented\")",
		"}",
	}
	generator := &fakeGenerator{lines: stubs}

	session := newSession(t, searcher, inspector, generator)
	require.NoError(t, session.Run(context.Background(), Params{
		FilePath: path,
		Line:     2,
		Column:   5,
		Query:    "Writer",
	}))

	require.Len(t, generator.reqs, 1)
	req := generator.reqs[0]
	assert.Equal(t, "Foo", req.ReceiverText)
	assert.Equal(t, "Writer", req.InterfaceName)
	assert.Equal(t, "io", req.PackageQualifier)
	assert.Equal(t, filepath.Dir(path), req.WorkingDir)

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	lines := strings.Split(string(content), "\n")
	assert.Equal(t, "}", lines[4])
	assert.Equal(t, "", lines[5], "one blank line separates declaration and stubs")
	assert.Equal(t, stubs[0], lines[6])
	assert.Equal(t, stubs[1], lines[7])
	assert.Equal(t, stubs[2], lines[8])
}

func TestRunPreconditionFailsBeforeSearch(t *testing.T) {
	path := writeEdited(t)
	searcher := &fakeSearcher{}

	session := newSession(t, searcher, &fakeInspector{}, &fakeGenerator{})
	err := session.Run(context.Background(), Params{
		FilePath: path,
		Line:     3, // on the struct field, not the type name
		Column:   2,
		Query:    "Writer",
	})

	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrPreconditionFailed))
	assert.Zero(t, searcher.calls, "no search I/O before the precondition passes")
}

func TestRunStaleSearchIsSilent(t *testing.T) {
	path := writeEdited(t)
	searcher := &fakeSearcher{err: errors.ErrStaleSearch}
	generator := &fakeGenerator{lines: []string{"func (f *Foo) X() {}"}}

	session := newSession(t, searcher, &fakeInspector{}, generator)
	require.NoError(t, session.Run(context.Background(), Params{
		FilePath: path, Line: 2, Column: 5, Query: "Writer",
	}))

	assert.Empty(t, generator.reqs, "a superseded search generates nothing")
	content, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, editedSource, string(content), "file untouched")
}

func TestRunGenerationFailureLeavesFileUntouched(t *testing.T) {
	path := writeEdited(t)
	searcher := &fakeSearcher{results: []symbols.InterfaceSymbol{
		{Name: "Writer", ContainerName: "io", DeclaringFile: "/elsewhere/io.go"},
	}}

	session := newSession(t, searcher, &fakeInspector{}, &fakeGenerator{lines: nil})
	require.NoError(t, session.Run(context.Background(), Params{
		FilePath: path, Line: 2, Column: 5, Query: "Writer",
	}))

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, editedSource, string(content))
}

func TestRunNoResultsIsNoOp(t *testing.T) {
	path := writeEdited(t)
	generator := &fakeGenerator{lines: []string{"func (f *Foo) X() {}"}}

	session := newSession(t, &fakeSearcher{}, &fakeInspector{}, generator)
	require.NoError(t, session.Run(context.Background(), Params{
		FilePath: path, Line: 2, Column: 5, Query: "Nothing",
	}))
	assert.Empty(t, generator.reqs)
}

func TestRunGenericInterfaceCarriesTypeParams(t *testing.T) {
	path := writeEdited(t)
	searcher := &fakeSearcher{results: []symbols.InterfaceSymbol{
		{Name: "Cache", ContainerName: "store", DeclaringFile: "/elsewhere/store.go"},
	}}
	inspector := &fakeInspector{params: map[string][]string{
		"Cache": {"T", "K"},
	}}
	generator := &fakeGenerator{lines: []string{"func (f *Foo) Lookup(k K) (T, bool) {}"}}

	session := newSession(t, searcher, inspector, generator)
	require.NoError(t, session.Run(context.Background(), Params{
		FilePath: path, Line: 2, Column: 5, Query: "Cache",
	}))

	require.Len(t, generator.reqs, 1)
	assert.Equal(t, []string{"T", "K"}, generator.reqs[0].TypeParams)
}

func TestQualifierFor(t *testing.T) {
	edited := "/work/app/main.go"

	assert.Equal(t, "io", qualifierFor(picker.Entry{
		SymbolName: "Writer",
		Filename:   "/usr/lib/go/src/io/io.go",
		Value:      picker.Value{ContainerName: "io"},
	}, edited))

	assert.Equal(t, "store", qualifierFor(picker.Entry{
		SymbolName: "Cache",
		Filename:   "/work/store/store.go",
		Value:      picker.Value{ContainerName: "github.com/acme/app/store"},
	}, edited), "container paths reduce to their last element")

	assert.Equal(t, "", qualifierFor(picker.Entry{
		SymbolName: "Local",
		Filename:   "/work/app/types.go",
		Value:      picker.Value{ContainerName: "main"},
	}, edited), "same-directory interfaces need no qualifier")

	assert.Equal(t, "", qualifierFor(picker.Entry{SymbolName: "Bare"}, edited))
}
