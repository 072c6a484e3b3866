// Package listing resolves MVS locations into their children by trying several
// query forms and listing commands until one of them yields results.
package listing

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"time"

	"golang.org/x/time/rate"

	"github.com/brettbedarf/mvsfs"
	"github.com/brettbedarf/mvsfs/internal/metrics"
	"github.com/brettbedarf/mvsfs/internal/util"
)

// DefaultPageSize is used when ListChildren is called with a page size below 1.
const DefaultPageSize = 200

var (
	// ErrListingFailed is returned when every candidate/strategy attempt failed
	// with an error. Empty results are not a failure.
	ErrListingFailed = errors.New("all listing strategies failed")

	// ErrNoClient is returned when the engine has no transport to list with.
	ErrNoClient = errors.New("no listing client configured")
)

// Engine lists the children of a location through a [mvsfs.ListingClient].
// It holds no per-listing state and may be reused, but calls must not overlap
// on one client.
type Engine struct {
	client  mvsfs.ListingClient
	metrics *metrics.Metrics
	pacing  time.Duration
}

// Option configures an [Engine].
type Option func(*Engine)

// WithMetrics records strategy attempts and delivery counts on m.
func WithMetrics(m *metrics.Metrics) Option {
	return func(e *Engine) { e.metrics = m }
}

// WithPacing sets the pause between pages of a buffered result. Zero disables
// pacing.
func WithPacing(d time.Duration) Option {
	return func(e *Engine) { e.pacing = d }
}

// New creates an Engine listing through client.
func New(client mvsfs.ListingClient, opts ...Option) *Engine {
	e := &Engine{client: client}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// ListChildren resolves the children of loc and hands them to sink in pages of
// at most pageSize entries.
//
// Root and Member locations are not listable and produce one empty final page
// without touching the transport. Transport errors fall through to the next
// strategy or candidate; only when every attempt errors is ErrListingFailed
// returned, and then no page is delivered. Cancelling ctx stops delivery
// without a final page and is not an error.
func (e *Engine) ListChildren(ctx context.Context, loc mvsfs.Location, pageSize int, sink mvsfs.PageSink) error {
	logger := util.GetLogger("Listing.ListChildren")
	if pageSize < 1 {
		pageSize = DefaultPageSize
	}
	if sink == nil {
		sink = func([]mvsfs.VirtualResource, bool) {}
	}

	switch loc.Kind() {
	case mvsfs.KindRoot, mvsfs.KindMember:
		logger.Debug().Stringer("location", loc).Msg("Location is not listable")
		e.emit(sink, []mvsfs.VirtualResource{}, true)
		return nil
	}
	if e.client == nil {
		return ErrNoClient
	}

	candidates := buildQueryCandidates(loc)
	logger.Debug().
		Stringer("location", loc).
		Str("query", loc.QueryPath()).
		Strs("candidates", candidates).
		Msg("Listing children")

	var (
		results  []mvsfs.VirtualResource
		errs     []error
		attempts int
	)
search:
	for _, candidate := range candidates {
		for _, s := range e.strategies() {
			if ctx.Err() != nil {
				logger.Debug().Stringer("location", loc).Msg("Listing cancelled")
				return nil
			}
			attempts++
			out, err := s.run(ctx, candidate, loc, pageSize, sink)
			if err != nil {
				logger.Warn().Err(err).Str("strategy", s.name).Str("query", candidate).Msg("Listing strategy failed")
				e.metrics.RecordAttempt(s.name, metrics.OutcomeError)
				errs = append(errs, fmt.Errorf("%s %s: %w", s.name, candidate, err))
				continue
			}
			if out.streamed {
				e.metrics.RecordAttempt(s.name, metrics.OutcomeHit)
				logger.Debug().Str("strategy", s.name).Str("query", candidate).Msg("Listing streamed")
				return nil
			}
			if len(out.items) > 0 {
				e.metrics.RecordAttempt(s.name, metrics.OutcomeHit)
				logger.Debug().
					Str("strategy", s.name).
					Str("query", candidate).
					Int("items", len(out.items)).
					Msg("Listing strategy succeeded")
				results = out.items
				break search
			}
			e.metrics.RecordAttempt(s.name, metrics.OutcomeEmpty)
		}
	}

	if ctx.Err() != nil {
		return nil
	}
	if len(results) == 0 && attempts > 0 && len(errs) == attempts {
		return fmt.Errorf("%w for %s: %w", ErrListingFailed, loc.LogicalPath(), errors.Join(errs...))
	}
	e.deliverPaged(ctx, results, pageSize, sink)
	return nil
}

// strategyResult is what one strategy attempt produced. streamed means pages
// were already handed to the sink and the listing is complete.
type strategyResult struct {
	items    []mvsfs.VirtualResource
	streamed bool
}

type strategy struct {
	name string
	run  func(ctx context.Context, query string, parent mvsfs.Location, pageSize int, sink mvsfs.PageSink) (strategyResult, error)
}

// Strategy names as they appear in logs and metrics
const (
	StrategyNames = "nlst"
	StrategyPaged = "list-paged"
	StrategyRaw   = "list-raw"
)

// strategies returns the listing strategies in the order they are tried.
func (e *Engine) strategies() []strategy {
	return []strategy{
		{name: StrategyNames, run: e.listNames},
		{name: StrategyPaged, run: e.listPaged},
		{name: StrategyRaw, run: e.listRaw},
	}
}

// listNames runs the bulk name-only listing.
func (e *Engine) listNames(ctx context.Context, query string, parent mvsfs.Location, _ int, _ mvsfs.PageSink) (strategyResult, error) {
	names, err := e.client.ListNames(ctx, query)
	if err != nil {
		return strategyResult{}, err
	}
	return strategyResult{items: newResolver(parent, e.metrics).resolveNames(ctx, names)}, nil
}

// listPaged streams a parsed listing page by page. Once a page has been
// delivered the listing is complete: a later transport error or a tail of
// pages that resolve to nothing still ends with an empty final page.
func (e *Engine) listPaged(ctx context.Context, query string, parent mvsfs.Location, pageSize int, sink mvsfs.PageSink) (strategyResult, error) {
	logger := util.GetLogger("Listing.Paged")

	it, err := e.client.ListFilesPaged(ctx, query, pageSize)
	if err != nil {
		return strategyResult{}, err
	}
	if it == nil {
		return strategyResult{}, nil
	}

	r := newResolver(parent, e.metrics)
	delivered, lastSent := false, false
	for it.HasNext() && ctx.Err() == nil {
		page, err := it.Next(pageSize)
		if err != nil {
			if !delivered {
				return strategyResult{}, err
			}
			logger.Warn().Err(err).Str("query", query).Msg("Paged listing ended early")
			break
		}
		if len(page) == 0 {
			break
		}
		items := r.resolveEntries(ctx, page)
		if len(items) == 0 || ctx.Err() != nil {
			continue
		}
		isLast := !it.HasNext()
		e.emit(sink, items, isLast)
		delivered, lastSent = true, isLast
	}

	if delivered && !lastSent && ctx.Err() == nil {
		e.emit(sink, []mvsfs.VirtualResource{}, true)
	}
	return strategyResult{streamed: delivered}, nil
}

// listRaw runs the bulk parsed listing, recovering names from raw lines where
// the parser gave up.
func (e *Engine) listRaw(ctx context.Context, query string, parent mvsfs.Location, _ int, _ mvsfs.PageSink) (strategyResult, error) {
	entries, err := e.client.ListFiles(ctx, query)
	if err != nil {
		return strategyResult{}, err
	}
	return strategyResult{items: newResolver(parent, e.metrics).resolveEntries(ctx, entries)}, nil
}

// deliverPaged chunks a buffered result into pages. An empty result is one
// empty final page. Delivery stops silently on cancellation.
func (e *Engine) deliverPaged(ctx context.Context, results []mvsfs.VirtualResource, pageSize int, sink mvsfs.PageSink) {
	if len(results) == 0 {
		e.emit(sink, []mvsfs.VirtualResource{}, true)
		return
	}

	limiter := rate.NewLimiter(rate.Inf, 1)
	if e.pacing > 0 {
		limiter = rate.NewLimiter(rate.Every(e.pacing), 1)
	}
	for start := 0; start < len(results); start += pageSize {
		// first Wait returns immediately; later ones pace the consumer
		if err := limiter.Wait(ctx); err != nil {
			return
		}
		end := min(start+pageSize, len(results))
		e.emit(sink, slices.Clone(results[start:end]), end == len(results))
	}
}

func (e *Engine) emit(sink mvsfs.PageSink, items []mvsfs.VirtualResource, isLast bool) {
	sink(items, isLast)
	e.metrics.RecordPage()
}
