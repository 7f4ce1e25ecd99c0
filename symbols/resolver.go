// Package symbols resolves workspace interface symbols through a
// language-analysis backend. Searches are cancelable and superseding: each
// call from the same resolver cancels the one before it, and a response for a
// superseded query never reaches the caller.
package symbols

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/codetrellis/implgen/errors"
	"github.com/codetrellis/implgen/langserver/gopls"
)

// Options tunes resolver behavior
type Options struct {
	Timeout    time.Duration // per-search deadline; expiry degrades to empty
	Debounce   time.Duration // wait absorbing keystroke bursts before querying
	RateLimit  rate.Limit    // backend queries per second
	MaxResults int           // cap on returned symbols; 0 = unlimited
	// ContextFile is the buffer the search runs against. Hierarchical
	// responses carry buffer-relative positions only, so their symbols are
	// attributed to this file.
	ContextFile string
}

// Resolver runs workspace symbol searches with last-issued-wins semantics.
// The monotonic request id and the previous cancel func are the only state
// shared across invocations.
type Resolver struct {
	backend gopls.Client
	logger  *zap.SugaredLogger
	opts    Options
	limiter *rate.Limiter

	mu         sync.Mutex
	lastID     uint64
	cancelPrev context.CancelFunc
}

// NewResolver creates a resolver over the given backend
func NewResolver(backend gopls.Client, logger *zap.SugaredLogger, opts Options) *Resolver {
	if opts.Timeout <= 0 {
		opts.Timeout = 5 * time.Second
	}
	limit := opts.RateLimit
	if limit <= 0 {
		limit = rate.Inf
	}
	return &Resolver{
		backend: backend,
		logger:  logger,
		opts:    opts,
		limiter: rate.NewLimiter(limit, 1),
	}
}

// rawSymbol decodes both response shapes the backend may answer with: a flat
// SymbolInformation (embedded Location) or a hierarchical symbol with a
// buffer-relative selection range and children. Location presence is the tag.
type rawSymbol struct {
	Name           string      `json:"name"`
	Kind           int         `json:"kind"`
	ContainerName  string      `json:"containerName,omitempty"`
	Location       *Location   `json:"location,omitempty"`
	SelectionRange *Range      `json:"selectionRange,omitempty"`
	Children       []rawSymbol `json:"children,omitempty"`
}

// Search queries the backend and returns interface symbols only.
//
// Each call supersedes any in-flight call from the same resolver: the prior
// request is canceled first, and if this request is itself superseded before
// its response lands, ErrStaleSearch is returned instead of the stale result.
// A deadline expiry degrades to an empty list with a logged warning.
func (r *Resolver) Search(ctx context.Context, query string) ([]InterfaceSymbol, error) {
	r.mu.Lock()
	if r.cancelPrev != nil {
		r.cancelPrev()
	}
	r.lastID++
	id := r.lastID
	searchCtx, cancel := context.WithTimeout(ctx, r.opts.Timeout)
	r.cancelPrev = cancel
	r.mu.Unlock()
	defer cancel()

	// Absorb keystroke bursts: only the last query of a burst survives the
	// debounce window.
	if r.opts.Debounce > 0 {
		timer := time.NewTimer(r.opts.Debounce)
		select {
		case <-searchCtx.Done():
			timer.Stop()
			return nil, r.classifyDone(searchCtx, id, query)
		case <-timer.C:
		}
	}

	if err := r.limiter.Wait(searchCtx); err != nil {
		return nil, r.classifyDone(searchCtx, id, query)
	}

	raw, err := r.backend.WorkspaceSymbols(searchCtx, query)

	// A response for a superseded query must never reach the caller,
	// regardless of whether the backend returned it successfully.
	if r.isStale(id) {
		return nil, errors.Wrapf(errors.ErrStaleSearch, "query %q", query)
	}

	if err != nil {
		if searchCtx.Err() == context.DeadlineExceeded {
			r.logger.Warnw("symbol search timed out, returning empty result",
				"query", query,
				"timeout", r.opts.Timeout)
			return []InterfaceSymbol{}, nil
		}
		return nil, errors.Wrapf(err, "workspace symbol search %q", query)
	}

	return r.decode(raw), nil
}

// classifyDone maps a canceled search context to its cause: superseded by a
// newer query, or timed out (which degrades to empty).
func (r *Resolver) classifyDone(searchCtx context.Context, id uint64, query string) error {
	if r.isStale(id) {
		return errors.Wrapf(errors.ErrStaleSearch, "query %q", query)
	}
	if searchCtx.Err() == context.DeadlineExceeded {
		return errors.Wrapf(errors.ErrSearchTimeout, "query %q", query)
	}
	return searchCtx.Err()
}

// isStale reports whether a newer search has been issued since id
func (r *Resolver) isStale(id uint64) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return id != r.lastID
}

// decode parses the raw response, collects symbols from either shape, and
// keeps interface-kind symbols only.
func (r *Resolver) decode(raw json.RawMessage) []InterfaceSymbol {
	if len(raw) == 0 || string(raw) == "null" {
		return []InterfaceSymbol{}
	}

	var rawSymbols []rawSymbol
	if err := json.Unmarshal(raw, &rawSymbols); err != nil {
		r.logger.Warnw("failed to decode symbol response", "error", err)
		return []InterfaceSymbol{}
	}

	results := make([]InterfaceSymbol, 0, len(rawSymbols))
	seen := make(map[string]bool)
	r.collect(rawSymbols, &results, seen)

	if r.opts.MaxResults > 0 && len(results) > r.opts.MaxResults {
		results = results[:r.opts.MaxResults]
	}
	return results
}

// collect recursively gathers interface symbols, preserving encounter order
// without duplication. Flat symbols carry their own file location;
// hierarchical symbols are attributed to the context file.
func (r *Resolver) collect(rawSymbols []rawSymbol, out *[]InterfaceSymbol, seen map[string]bool) {
	for _, raw := range rawSymbols {
		if KindName(raw.Kind) == "Interface" {
			sym, ok := r.toInterfaceSymbol(raw)
			if ok {
				key := fmt.Sprintf("%s\x00%s\x00%d:%d",
					sym.DeclaringFile, sym.Name,
					sym.DeclarationRange.Start.Line, sym.DeclarationRange.Start.Character)
				if !seen[key] {
					seen[key] = true
					*out = append(*out, sym)
				}
			}
		}
		if len(raw.Children) > 0 {
			r.collect(raw.Children, out, seen)
		}
	}
}

// toInterfaceSymbol converts one raw symbol of either shape
func (r *Resolver) toInterfaceSymbol(raw rawSymbol) (InterfaceSymbol, bool) {
	switch {
	case raw.Location != nil:
		return InterfaceSymbol{
			Name:             raw.Name,
			ContainerName:    raw.ContainerName,
			DeclaringFile:    uriToPath(raw.Location.URI),
			DeclarationRange: raw.Location.Range,
		}, true
	case raw.SelectionRange != nil:
		return InterfaceSymbol{
			Name:             raw.Name,
			ContainerName:    raw.ContainerName,
			DeclaringFile:    r.opts.ContextFile,
			DeclarationRange: *raw.SelectionRange,
		}, true
	default:
		return InterfaceSymbol{}, false
	}
}
