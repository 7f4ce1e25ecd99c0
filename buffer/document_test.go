package buffer

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/codetrellis/implgen/errors"
)

func writeTemp(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "src.go")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoad(t *testing.T) {
	path := writeTemp(t, "package main\n\ntype Foo struct{}\n")

	doc, err := Load(path)
	require.NoError(t, err)
	defer doc.Release()

	assert.Equal(t, path, doc.Path())
	assert.Equal(t, 4, doc.LineCount()) // trailing newline yields a final empty line
	assert.Equal(t, "package main", doc.Line(0))
	assert.Equal(t, "type Foo struct{}", doc.Line(2))
}

func TestLoadFileNotFound(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.go"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrFileNotFound))
}

func TestLoadEmptyFile(t *testing.T) {
	path := writeTemp(t, "")

	_, err := Load(path)
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrEmptyBuffer))
}

func TestInsertLines(t *testing.T) {
	doc := FromLines([]string{"a", "b", "c"})

	require.NoError(t, doc.InsertLines(0, []string{"x", "y"}))
	assert.Equal(t, []string{"a", "x", "y", "b", "c"}, doc.Lines())

	// Insert at top
	require.NoError(t, doc.InsertLines(-1, []string{"top"}))
	assert.Equal(t, "top", doc.Line(0))

	// Out of range
	assert.Error(t, doc.InsertLines(99, []string{"z"}))
	assert.Error(t, doc.InsertLines(-2, []string{"z"}))
}

func TestWriteBackRoundTrip(t *testing.T) {
	path := writeTemp(t, "one\ntwo\n")

	doc, err := Load(path)
	require.NoError(t, err)

	require.NoError(t, doc.InsertLines(1, []string{"between"}))
	require.NoError(t, doc.WriteBack())

	reloaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"one", "two", "between", ""}, reloaded.Lines())
}

func TestReleaseIsIdempotent(t *testing.T) {
	doc := FromLines([]string{"a"})

	doc.Release()
	doc.Release() // must not panic
	assert.True(t, doc.Released())

	// Mutation after release fails instead of corrupting state
	assert.Error(t, doc.InsertLines(0, []string{"b"}))
}

func TestWriteBackWithoutFile(t *testing.T) {
	doc := FromLines([]string{"a"})
	assert.Error(t, doc.WriteBack())
}
