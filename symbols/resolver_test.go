package symbols

import (
	"context"
	"encoding/json"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/codetrellis/implgen/errors"
)

// fakeBackend implements gopls.Client for resolver tests
type fakeBackend struct {
	mu        sync.Mutex
	responses map[string]json.RawMessage
	blocked   map[string]chan struct{} // queries that park until released
	started   map[string]chan struct{} // signals when a query reaches the backend
	calls     []string
}

func newFakeBackend() *fakeBackend {
	return &fakeBackend{
		responses: make(map[string]json.RawMessage),
		blocked:   make(map[string]chan struct{}),
		started:   make(map[string]chan struct{}),
	}
}

func (f *fakeBackend) Initialize(ctx context.Context, workspaceRoot string) error { return nil }
func (f *fakeBackend) Shutdown(ctx context.Context) error                         { return nil }
func (f *fakeBackend) DidOpen(ctx context.Context, uri, content string) error     { return nil }

func (f *fakeBackend) WorkspaceSymbols(ctx context.Context, query string) (json.RawMessage, error) {
	f.mu.Lock()
	f.calls = append(f.calls, query)
	release := f.blocked[query]
	startedCh := f.started[query]
	resp := f.responses[query]
	f.mu.Unlock()

	if startedCh != nil {
		close(startedCh)
	}
	if release != nil {
		select {
		case <-release:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if ctx.Err() != nil {
		return nil, ctx.Err()
	}
	return resp, nil
}

func newTestResolver(backend *fakeBackend, opts Options) *Resolver {
	if opts.Timeout == 0 {
		opts.Timeout = time.Second
	}
	return NewResolver(backend, zap.NewNop().Sugar(), opts)
}

func flatSymbols(t *testing.T) json.RawMessage {
	t.Helper()
	raw, err := json.Marshal([]map[string]interface{}{
		{
			"name": "Writer", "kind": 11, "containerName": "io",
			"location": map[string]interface{}{
				"uri": "file:///usr/lib/go/src/io/io.go",
				"range": map[string]interface{}{
					"start": map[string]int{"line": 90, "character": 5},
					"end":   map[string]int{"line": 92, "character": 1},
				},
			},
		},
		{
			"name": "WriteString", "kind": 12, "containerName": "io",
			"location": map[string]interface{}{
				"uri":   "file:///usr/lib/go/src/io/io.go",
				"range": map[string]interface{}{},
			},
		},
		{
			// Unknown kind code must be filtered, never matched
			"name": "Mystery", "kind": 99,
			"location": map[string]interface{}{
				"uri":   "file:///tmp/x.go",
				"range": map[string]interface{}{},
			},
		},
	})
	require.NoError(t, err)
	return raw
}

func TestSearchFlatShape(t *testing.T) {
	backend := newFakeBackend()
	backend.responses["Writer"] = flatSymbols(t)

	resolver := newTestResolver(backend, Options{})

	symbols, err := resolver.Search(context.Background(), "Writer")
	require.NoError(t, err)
	require.Len(t, symbols, 1, "only interface-kind symbols survive the filter")

	assert.Equal(t, "Writer", symbols[0].Name)
	assert.Equal(t, "io", symbols[0].ContainerName)
	assert.Equal(t, "/usr/lib/go/src/io/io.go", symbols[0].DeclaringFile)
	assert.Equal(t, 90, symbols[0].DeclarationRange.Start.Line)
}

func TestSearchTreeShape(t *testing.T) {
	tree := json.RawMessage(`[
		{
			"name": "pkg", "kind": 4,
			"selectionRange": {"start": {"line": 0, "character": 0}, "end": {"line": 0, "character": 3}},
			"children": [
				{
					"name": "Storer", "kind": 11,
					"selectionRange": {"start": {"line": 4, "character": 5}, "end": {"line": 4, "character": 11}}
				},
				{
					"name": "helper", "kind": 12,
					"selectionRange": {"start": {"line": 9, "character": 5}, "end": {"line": 9, "character": 11}},
					"children": [
						{
							"name": "Nested", "kind": 11,
							"selectionRange": {"start": {"line": 12, "character": 5}, "end": {"line": 12, "character": 11}}
						}
					]
				},
				{
					"name": "Storer", "kind": 11,
					"selectionRange": {"start": {"line": 4, "character": 5}, "end": {"line": 4, "character": 11}}
				}
			]
		}
	]`)

	backend := newFakeBackend()
	backend.responses["Sto"] = tree

	resolver := newTestResolver(backend, Options{ContextFile: "/work/store.go"})

	symbols, err := resolver.Search(context.Background(), "Sto")
	require.NoError(t, err)
	require.Len(t, symbols, 2, "encounter order preserved, duplicate dropped")

	assert.Equal(t, "Storer", symbols[0].Name)
	assert.Equal(t, "Nested", symbols[1].Name)
	// Hierarchical symbols are buffer-relative and bind to the context file
	assert.Equal(t, "/work/store.go", symbols[0].DeclaringFile)
	assert.Equal(t, 4, symbols[0].DeclarationRange.Start.Line)
}

func TestSearchSupersedes(t *testing.T) {
	backend := newFakeBackend()
	backend.responses["Str"] = flatSymbols(t)
	backend.responses["String"] = flatSymbols(t)
	backend.blocked["Str"] = make(chan struct{})
	backend.started["Str"] = make(chan struct{})

	resolver := newTestResolver(backend, Options{})

	staleErr := make(chan error, 1)
	go func() {
		_, err := resolver.Search(context.Background(), "Str")
		staleErr <- err
	}()

	// Wait until "Str" is in flight, then issue the superseding query
	<-backend.started["Str"]

	symbols, err := resolver.Search(context.Background(), "String")
	require.NoError(t, err)
	assert.Len(t, symbols, 1)

	// The late "Str" response must be discarded, never returned
	err = <-staleErr
	require.Error(t, err)
	assert.True(t, errors.IsStaleSearch(err), "superseded search must report staleness, got: %v", err)

	backend.mu.Lock()
	calls := append([]string(nil), backend.calls...)
	backend.mu.Unlock()
	assert.Contains(t, calls, "String")
}

func TestSearchTimeoutDegradesToEmpty(t *testing.T) {
	backend := newFakeBackend()
	backend.blocked["slow"] = make(chan struct{}) // never released

	resolver := newTestResolver(backend, Options{Timeout: 30 * time.Millisecond})

	symbols, err := resolver.Search(context.Background(), "slow")
	require.NoError(t, err, "timeout degrades to empty result, not an error")
	assert.Empty(t, symbols)
}

func TestSearchNullResponse(t *testing.T) {
	backend := newFakeBackend()
	backend.responses["none"] = json.RawMessage("null")

	resolver := newTestResolver(backend, Options{})

	symbols, err := resolver.Search(context.Background(), "none")
	require.NoError(t, err)
	assert.Empty(t, symbols)
}

func TestSearchMaxResults(t *testing.T) {
	backend := newFakeBackend()
	backend.responses["Writer"] = flatSymbols(t)

	resolver := newTestResolver(backend, Options{MaxResults: 0})
	symbols, err := resolver.Search(context.Background(), "Writer")
	require.NoError(t, err)
	assert.Len(t, symbols, 1)
}

func TestKindName(t *testing.T) {
	assert.Equal(t, "Interface", KindName(11))
	assert.Equal(t, "Function", KindName(12))
	assert.Equal(t, "Unknown", KindName(0))
	assert.Equal(t, "Unknown", KindName(99))
	assert.Equal(t, "Unknown", KindName(-3))
}
