// Package picker presents interface search results for selection. Entries
// serialize to the editor-facing shape; ranking orders them by fuzzy
// closeness to the query before display.
package picker

import (
	"fmt"
	"sort"

	"github.com/lithammer/fuzzysearch/fuzzy"
	"github.com/pterm/pterm"

	"github.com/codetrellis/implgen/errors"
	"github.com/codetrellis/implgen/symbols"
)

// Value carries the container the symbol was declared in
type Value struct {
	ContainerName string `json:"containerName"`
}

// Entry is one selectable search result
type Entry struct {
	SymbolName string `json:"symbol_name"`
	Filename   string `json:"filename"`
	Value      Value  `json:"value"`
}

// Label renders the entry the way it is shown in a selection list
func (e Entry) Label() string {
	if e.Value.ContainerName == "" {
		return fmt.Sprintf("%s (%s)", e.SymbolName, e.Filename)
	}
	return fmt.Sprintf("%s.%s (%s)", e.Value.ContainerName, e.SymbolName, e.Filename)
}

// FromSymbols converts resolved interface symbols into selectable entries,
// preserving order.
func FromSymbols(syms []symbols.InterfaceSymbol) []Entry {
	entries := make([]Entry, 0, len(syms))
	for _, s := range syms {
		entries = append(entries, Entry{
			SymbolName: s.Name,
			Filename:   s.DeclaringFile,
			Value:      Value{ContainerName: s.ContainerName},
		})
	}
	return entries
}

// Rank orders entries by fuzzy closeness of their symbol name to the query.
// Entries the query does not match at all are dropped; an empty query keeps
// the incoming order.
func Rank(query string, entries []Entry) []Entry {
	if query == "" {
		return entries
	}

	type ranked struct {
		entry    Entry
		distance int
	}
	var kept []ranked
	for _, e := range entries {
		rank := fuzzy.RankMatchFold(query, e.SymbolName)
		if rank < 0 {
			continue
		}
		kept = append(kept, ranked{entry: e, distance: rank})
	}

	sort.SliceStable(kept, func(i, j int) bool {
		return kept[i].distance < kept[j].distance
	})

	ordered := make([]Entry, 0, len(kept))
	for _, r := range kept {
		ordered = append(ordered, r.entry)
	}
	return ordered
}

// SelectFunc chooses one entry from a ranked list. Implementations return the
// chosen entry, or an error when the user dismisses the list.
type SelectFunc func(entries []Entry) (Entry, error)

// First selects the top-ranked entry without prompting
func First(entries []Entry) (Entry, error) {
	if len(entries) == 0 {
		return Entry{}, errors.New("no entries to select from")
	}
	return entries[0], nil
}

// TerminalSelect prompts on the terminal with an interactive list
func TerminalSelect(entries []Entry) (Entry, error) {
	if len(entries) == 0 {
		return Entry{}, errors.New("no entries to select from")
	}
	if len(entries) == 1 {
		return entries[0], nil
	}

	labels := make([]string, 0, len(entries))
	byLabel := make(map[string]Entry, len(entries))
	for _, e := range entries {
		label := e.Label()
		labels = append(labels, label)
		byLabel[label] = e
	}

	chosen, err := pterm.DefaultInteractiveSelect.
		WithOptions(labels).
		WithDefaultText("Select interface to implement").
		Show()
	if err != nil {
		return Entry{}, errors.Wrap(err, "selection aborted")
	}

	entry, ok := byLabel[chosen]
	if !ok {
		return Entry{}, errors.Newf("selection %q not among entries", chosen)
	}
	return entry, nil
}
