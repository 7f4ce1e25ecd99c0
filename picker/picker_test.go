package picker

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/codetrellis/implgen/symbols"
)

func TestFromSymbols(t *testing.T) {
	entries := FromSymbols([]symbols.InterfaceSymbol{
		{Name: "Storer", ContainerName: "store", DeclaringFile: "/src/store/store.go"},
		{Name: "Tracker", DeclaringFile: "/src/track.go"},
	})

	require.Len(t, entries, 2)
	assert.Equal(t, "Storer", entries[0].SymbolName)
	assert.Equal(t, "/src/store/store.go", entries[0].Filename)
	assert.Equal(t, "store", entries[0].Value.ContainerName)
	assert.Equal(t, "", entries[1].Value.ContainerName)
}

func TestEntryJSONShape(t *testing.T) {
	raw, err := json.Marshal(Entry{
		SymbolName: "Storer",
		Filename:   "/src/store.go",
		Value:      Value{ContainerName: "store"},
	})
	require.NoError(t, err)
	assert.JSONEq(t,
		`{"symbol_name":"Storer","filename":"/src/store.go","value":{"containerName":"store"}}`,
		string(raw))
}

func TestRankPrefersCloserMatches(t *testing.T) {
	entries := []Entry{
		{SymbolName: "StateOperator"},
		{SymbolName: "Storer"},
		{SymbolName: "Handler"},
	}

	ranked := Rank("stor", entries)
	require.Len(t, ranked, 2, "non-matching entries are dropped")
	assert.Equal(t, "Storer", ranked[0].SymbolName)
	assert.Equal(t, "StateOperator", ranked[1].SymbolName)
}

func TestRankEmptyQueryKeepsOrder(t *testing.T) {
	entries := []Entry{{SymbolName: "B"}, {SymbolName: "A"}}
	assert.Equal(t, entries, Rank("", entries))
}

func TestFirst(t *testing.T) {
	entry, err := First([]Entry{{SymbolName: "Storer"}, {SymbolName: "Tracker"}})
	require.NoError(t, err)
	assert.Equal(t, "Storer", entry.SymbolName)

	_, err = First(nil)
	assert.Error(t, err)
}

func TestLabel(t *testing.T) {
	assert.Equal(t, "store.Storer (/src/store.go)", Entry{
		SymbolName: "Storer",
		Filename:   "/src/store.go",
		Value:      Value{ContainerName: "store"},
	}.Label())
	assert.Equal(t, "Tracker (/src/track.go)", Entry{
		SymbolName: "Tracker",
		Filename:   "/src/track.go",
	}.Label())
}
