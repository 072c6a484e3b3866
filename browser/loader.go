// Package browser runs listings in the background and exposes the browse
// operations a file manager needs: navigate, refresh, cancel and filter.
package browser

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/brettbedarf/mvsfs"
	"github.com/brettbedarf/mvsfs/internal/metrics"
	"github.com/brettbedarf/mvsfs/internal/util"
	"github.com/brettbedarf/mvsfs/store"
)

// ErrShutdown is returned when a load is requested after Shutdown.
var ErrShutdown = errors.New("page loader is shut down")

// Lister lists the children of a location page by page.
// [listing.Engine] is the production implementation.
type Lister interface {
	ListChildren(ctx context.Context, loc mvsfs.Location, pageSize int, sink mvsfs.PageSink) error
}

// Option configures a [PageLoader].
type Option func(*PageLoader)

// WithMetrics records load durations on m.
func WithMetrics(m *metrics.Metrics) Option {
	return func(p *PageLoader) { p.metrics = m }
}

// loadJob is one requested load. phase and firstPage are guarded by
// PageLoader.mu.
type loadJob struct {
	id       string
	loc      mvsfs.Location
	pageSize int
	ctx      context.Context
	cancel   context.CancelFunc
	started  time.Time
	done     chan struct{} // closed once the worker is finished with the job

	phase     Phase
	firstPage bool
	err       error
}

func (j *loadJob) event(typ EventType, count int) LoadEvent {
	return LoadEvent{
		Type: typ,
		State: LoadState{
			ID:       j.id,
			Location: j.loc,
			Phase:    j.phase,
			Count:    count,
			Err:      j.err,
		},
	}
}

// PageLoader runs at most one listing at a time on a single background
// worker and merges its pages into a [store.ResultStore].
//
// Starting a load cancels the previous one; once LoadChildren or
// CancelCurrentLoad returns, no page of an earlier load reaches the store.
// Store listeners run while a page is being merged and must not call back
// into the loader. Loader subscribers are notified outside of any lock.
type PageLoader struct {
	lister  Lister
	store   *store.ResultStore
	metrics *metrics.Metrics

	mu      sync.Mutex
	current *loadJob // latest requested load
	pending *loadJob // requested but not yet picked up by the worker
	closed  bool

	wake chan struct{}
	wg   sync.WaitGroup
	subs *util.Subscribers[LoadEvent]
}

// NewPageLoader creates a loader merging into st and starts its worker.
// Call Shutdown to release the worker.
func NewPageLoader(lister Lister, st *store.ResultStore, opts ...Option) *PageLoader {
	p := &PageLoader{
		lister: lister,
		store:  st,
		wake:   make(chan struct{}, 1),
		subs:   util.NewSubscribers[LoadEvent](),
	}
	for _, opt := range opts {
		opt(p)
	}

	p.wg.Add(1)
	go p.run()
	return p
}

// LoadChildren cancels any load in flight, clears the store and schedules a
// listing of loc. It returns the new load's id without waiting for the
// listing.
func (p *PageLoader) LoadChildren(loc mvsfs.Location, pageSize int) (string, error) {
	logger := util.GetLogger("PageLoader.LoadChildren")

	ctx, cancel := context.WithCancel(context.Background())
	job := &loadJob{
		id:       uuid.NewString(),
		loc:      loc,
		pageSize: pageSize,
		ctx:      ctx,
		cancel:   cancel,
		started:  time.Now(),
		done:     make(chan struct{}),
		phase:    PhaseLoading,
	}

	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		cancel()
		return "", ErrShutdown
	}
	var events []LoadEvent
	if ev, ok := p.cancelLocked(); ok {
		events = append(events, ev)
	}
	if skipped := p.pending; skipped != nil {
		// superseded before the worker got to it
		p.pending = nil
		p.finish(skipped, skipped.phase)
	}
	p.current = job
	p.store.Clear()
	p.store.SetLoading(true)
	events = append(events, job.event(EventStarted, 0))
	p.mu.Unlock()

	p.notify(events...)

	// hand over to the worker only after subscribers saw the start
	p.mu.Lock()
	if p.closed || p.current != job {
		p.mu.Unlock()
		p.finish(job, PhaseCancelled)
		return job.id, nil
	}
	p.pending = job
	select {
	case p.wake <- struct{}{}:
	default:
	}
	p.mu.Unlock()

	logger.Debug().Str("load", job.id).Stringer("location", loc).Int("pageSize", pageSize).Msg("Load scheduled")
	return job.id, nil
}

// CancelCurrentLoad cancels the load in flight, if any, and marks loading as
// finished right away. The worker may still be inside a listing call; its
// results are discarded.
func (p *PageLoader) CancelCurrentLoad() {
	p.mu.Lock()
	ev, ok := p.cancelLocked()
	p.store.SetLoading(false)
	p.mu.Unlock()

	if ok {
		logger := util.GetLogger("PageLoader.Cancel")
		logger.Debug().Str("load", ev.State.ID).Msg("Load cancelled")
		p.notify(ev)
	}
}

// Shutdown cancels any load, waits for the worker to exit and drops all
// subscriptions. Later loads fail with [ErrShutdown]. Safe to call twice.
func (p *PageLoader) Shutdown() {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return
	}
	p.closed = true
	ev, cancelled := p.cancelLocked()
	if p.pending != nil {
		p.finish(p.pending, p.pending.phase)
		p.pending = nil
	}
	p.store.SetLoading(false)
	close(p.wake)
	p.mu.Unlock()

	if cancelled {
		p.notify(ev)
	}
	p.wg.Wait()
	p.subs.Clear()
	logger := util.GetLogger("PageLoader.Shutdown")
	logger.Debug().Msg("Page loader stopped")
}

// Wait blocks until the worker is done with the latest load.
func (p *PageLoader) Wait() {
	p.mu.Lock()
	job := p.current
	p.mu.Unlock()
	if job != nil {
		<-job.done
	}
}

// State returns a snapshot of the latest load.
func (p *PageLoader) State() LoadState {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.current == nil {
		return LoadState{Location: mvsfs.Root(), Phase: PhaseIdle}
	}
	return p.current.event(EventStarted, p.store.Len()).State
}

// CurrentLocation returns the location of the latest load, Root if none.
func (p *PageLoader) CurrentLocation() mvsfs.Location {
	return p.State().Location
}

// IsLoading reports whether a load is in progress.
func (p *PageLoader) IsLoading() bool {
	return p.store.IsLoading()
}

// Subscribe registers fn for load events and returns its unsubscribe func.
func (p *PageLoader) Subscribe(fn func(LoadEvent)) (unsubscribe func()) {
	return p.subs.Subscribe(fn)
}

func (p *PageLoader) run() {
	defer p.wg.Done()
	for range p.wake {
		for job := p.takePending(); job != nil; job = p.takePending() {
			p.execute(job)
		}
	}
}

func (p *PageLoader) takePending() *loadJob {
	p.mu.Lock()
	defer p.mu.Unlock()
	job := p.pending
	p.pending = nil
	return job
}

func (p *PageLoader) execute(job *loadJob) {
	logger := util.GetLogger("PageLoader.Load").With().Str("load", job.id).Stringer("location", job.loc).Logger()
	logger.Info().Msg("Loading children")

	var err error
	if job.ctx.Err() == nil {
		err = p.lister.ListChildren(job.ctx, job.loc, job.pageSize, func(items []mvsfs.VirtualResource, isLast bool) {
			p.deliver(job, items, isLast)
		})
	}

	p.mu.Lock()
	var events []LoadEvent
	if job.phase == PhaseLoading {
		if err != nil {
			job.phase = PhaseFailed
			job.err = err
			events = append(events, job.event(EventFailed, p.store.Len()))
		} else {
			// lister returned without a final page
			job.phase = PhaseCompleted
			events = append(events, job.event(EventCompleted, p.store.Len()))
		}
		p.store.SetLoading(false)
	}
	phase := job.phase
	p.mu.Unlock()

	switch phase {
	case PhaseFailed:
		logger.Error().Err(err).Msg("Load failed")
	case PhaseCancelled:
		logger.Debug().Msg("Load cancelled")
	default:
		logger.Info().Int("count", p.store.Len()).Dur("took", time.Since(job.started)).Msg("Load complete")
	}
	p.notify(events...)
	p.finish(job, phase)
}

// deliver merges one page of job into the store unless job was superseded or
// cancelled.
func (p *PageLoader) deliver(job *loadJob, items []mvsfs.VirtualResource, isLast bool) {
	p.mu.Lock()
	if p.current != job || job.phase != PhaseLoading {
		p.mu.Unlock()
		return
	}
	added := p.store.AddItems(items)
	count := p.store.Len()

	var events []LoadEvent
	if len(added) > 0 {
		typ := EventPage
		if !job.firstPage {
			job.firstPage = true
			typ = EventFirstPage
		}
		events = append(events, job.event(typ, count))
	}
	if isLast {
		job.phase = PhaseCompleted
		p.store.SetLoading(false)
		events = append(events, job.event(EventCompleted, count))
	}
	p.mu.Unlock()

	p.notify(events...)
}

// cancelLocked cancels the current job. ok is true if it was still loading.
func (p *PageLoader) cancelLocked() (ev LoadEvent, ok bool) {
	job := p.current
	if job == nil {
		return ev, false
	}
	job.cancel()
	if job.phase != PhaseLoading {
		return ev, false
	}
	job.phase = PhaseCancelled
	return job.event(EventCancelled, p.store.Len()), true
}

// finish releases a job the worker is done with or will never run.
func (p *PageLoader) finish(job *loadJob, phase Phase) {
	outcome := metrics.LoadCompleted
	switch phase {
	case PhaseCancelled:
		outcome = metrics.LoadCancelled
	case PhaseFailed:
		outcome = metrics.LoadFailed
	}
	p.metrics.ObserveLoad(outcome, job.started)
	job.cancel()
	close(job.done)
}

func (p *PageLoader) notify(events ...LoadEvent) {
	for _, ev := range events {
		p.subs.Notify(ev)
	}
}
