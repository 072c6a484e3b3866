package browser

import (
	"fmt"
	"sync"

	"github.com/brettbedarf/mvsfs"
	"github.com/brettbedarf/mvsfs/config"
	"github.com/brettbedarf/mvsfs/internal/util"
	"github.com/brettbedarf/mvsfs/store"
)

// RootHint is the status shown at the virtual root, which cannot be listed.
const RootHint = "Enter a high level qualifier (e.g. USERID) to browse datasets"

// Browser is the UI-facing side of the MVS virtual filesystem. All methods
// return without waiting for the network; results arrive through the
// subscription callbacks, which run on the loader's worker or the caller's
// goroutine.
type Browser struct {
	store    *store.ResultStore
	loader   *PageLoader
	pageSize int

	mu       sync.Mutex
	location mvsfs.Location

	viewSubs    *util.Subscribers[struct{}]
	loadingSubs *util.Subscribers[LoadingState]
	errorSubs   *util.Subscribers[string]
	statusSubs  *util.Subscribers[string]
	unsubscribe func()
}

// NewBrowser creates a browser listing through lister, starting at Root.
// cfg supplies the page size and initial filter; nil uses the defaults.
func NewBrowser(lister Lister, cfg *config.Config, opts ...Option) *Browser {
	if cfg == nil {
		cfg = config.NewDefaultConfig()
	}
	st := store.New()
	st.SetFilterPattern(cfg.FilterPattern)

	b := &Browser{
		store:       st,
		loader:      NewPageLoader(lister, st, opts...),
		pageSize:    cfg.PageSize,
		location:    mvsfs.Root(),
		viewSubs:    util.NewSubscribers[struct{}](),
		loadingSubs: util.NewSubscribers[LoadingState](),
		errorSubs:   util.NewSubscribers[string](),
		statusSubs:  util.NewSubscribers[string](),
	}
	b.unsubscribe = b.loader.Subscribe(b.onLoadEvent)
	return b
}

// Navigate parses path and navigates to it. See [Browser.NavigateTo].
func (b *Browser) Navigate(path string) error {
	return b.NavigateTo(mvsfs.Parse(path))
}

// NavigateDataset navigates into name as a dataset, listing its members.
func (b *Browser) NavigateDataset(name string) error {
	if mvsfs.Unquote(name) == "" {
		return b.NavigateTo(mvsfs.Root())
	}
	return b.NavigateTo(mvsfs.NewDataset(name))
}

// NavigateTo makes loc the current location and starts loading its children.
//
// Root clears the view and shows [RootHint] without loading. A member cannot
// be listed; it only produces a status message and the view is left as is.
func (b *Browser) NavigateTo(loc mvsfs.Location) error {
	logger := util.GetLogger("Browser.Navigate")

	switch loc.Kind() {
	case mvsfs.KindMember:
		logger.Debug().Stringer("location", loc).Msg("Member is not listable")
		b.statusSubs.Notify(fmt.Sprintf("%s is a member and cannot be listed", loc.LogicalPath()))
		return nil

	case mvsfs.KindRoot:
		b.loader.CancelCurrentLoad()
		b.store.Clear()
		b.setLocation(loc)
		b.statusSubs.Notify(RootHint)
		b.viewSubs.Notify(struct{}{})
		b.loadingSubs.Notify(LoadingState{})
		return nil
	}

	b.setLocation(loc)
	if _, err := b.loader.LoadChildren(loc, b.pageSize); err != nil {
		return err
	}
	b.viewSubs.Notify(struct{}{})
	return nil
}

// OpenResource navigates into res if it is a directory and reports whether
// it did.
func (b *Browser) OpenResource(res mvsfs.VirtualResource) (bool, error) {
	if !res.IsDirectory() {
		b.statusSubs.Notify(fmt.Sprintf("%s is a member and cannot be listed", res.OpenPath()))
		return false, nil
	}
	return true, b.NavigateTo(res.Location)
}

// Refresh reloads the current location.
func (b *Browser) Refresh() error {
	return b.NavigateTo(b.CurrentLocation())
}

// CancelLoading stops the current load, keeping what was loaded so far.
func (b *Browser) CancelLoading() {
	b.loader.CancelCurrentLoad()
}

// SetFilter sets the view filter. A leading "/" makes it a regex.
func (b *Browser) SetFilter(pattern string) {
	b.store.SetFilterPattern(pattern)
	b.viewSubs.Notify(struct{}{})
}

// Filter returns the active filter pattern.
func (b *Browser) Filter() string {
	return b.store.FilterPattern()
}

// ViewModel returns the filtered, sorted entries of the current location.
func (b *Browser) ViewModel() []mvsfs.VirtualResource {
	return b.store.ViewModel()
}

// IsLoading reports whether a load is in progress.
func (b *Browser) IsLoading() bool {
	return b.store.IsLoading()
}

// LoadState returns a snapshot of the latest load.
func (b *Browser) LoadState() LoadState {
	return b.loader.State()
}

// Wait blocks until the latest load's worker side has finished.
func (b *Browser) Wait() {
	b.loader.Wait()
}

// CurrentLocation returns the location being browsed.
func (b *Browser) CurrentLocation() mvsfs.Location {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.location
}

// CurrentPath returns the logical path being browsed, empty at Root.
func (b *Browser) CurrentPath() string {
	return b.CurrentLocation().LogicalPath()
}

// OnViewChanged registers fn to be called whenever the view model may have
// changed.
func (b *Browser) OnViewChanged(fn func()) (unsubscribe func()) {
	return b.viewSubs.Subscribe(func(struct{}) { fn() })
}

// OnLoadingChanged registers fn for loading state and count updates.
func (b *Browser) OnLoadingChanged(fn func(LoadingState)) (unsubscribe func()) {
	return b.loadingSubs.Subscribe(fn)
}

// OnError registers fn for load failures.
func (b *Browser) OnError(fn func(message string)) (unsubscribe func()) {
	return b.errorSubs.Subscribe(fn)
}

// OnStatus registers fn for informational status messages.
func (b *Browser) OnStatus(fn func(message string)) (unsubscribe func()) {
	return b.statusSubs.Subscribe(fn)
}

// Shutdown stops the loader and drops all subscriptions.
func (b *Browser) Shutdown() {
	b.unsubscribe()
	b.loader.Shutdown()
	b.store.Close()
	b.viewSubs.Clear()
	b.loadingSubs.Clear()
	b.errorSubs.Clear()
	b.statusSubs.Clear()
}

func (b *Browser) setLocation(loc mvsfs.Location) {
	b.mu.Lock()
	b.location = loc
	b.mu.Unlock()
}

func (b *Browser) onLoadEvent(ev LoadEvent) {
	st := ev.State
	switch ev.Type {
	case EventStarted:
		b.loadingSubs.Notify(LoadingState{Loading: true})
		b.statusSubs.Notify(fmt.Sprintf("Loading %s ...", st.Location.LogicalPath()))
	case EventFirstPage:
		b.viewSubs.Notify(struct{}{})
		b.loadingSubs.Notify(LoadingState{Loading: true, Count: st.Count})
		b.statusSubs.Notify(fmt.Sprintf("%d entries loaded, loading more ...", st.Count))
	case EventPage:
		b.viewSubs.Notify(struct{}{})
		b.loadingSubs.Notify(LoadingState{Loading: true, Count: st.Count})
	case EventCompleted:
		b.viewSubs.Notify(struct{}{})
		b.loadingSubs.Notify(LoadingState{Count: st.Count})
		b.statusSubs.Notify(fmt.Sprintf("%d entries", st.Count))
	case EventCancelled:
		b.loadingSubs.Notify(LoadingState{Count: st.Count})
		b.statusSubs.Notify(fmt.Sprintf("Loading cancelled after %d entries", st.Count))
	case EventFailed:
		b.loadingSubs.Notify(LoadingState{Count: st.Count})
		b.errorSubs.Notify(fmt.Sprintf("Listing %s failed: %v", st.Location.LogicalPath(), st.Err))
	}
}
