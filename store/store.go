// Package store holds the resources loaded for the location being browsed and
// derives the filtered, sorted view shown to the user.
package store

import (
	"regexp"
	"slices"
	"strings"
	"sync"

	"github.com/brettbedarf/mvsfs"
	"github.com/brettbedarf/mvsfs/internal/util"
)

// Event is what changed in a [ResultStore].
type Event int

const (
	EventItemsAdded Event = iota
	EventCleared
	EventFilterChanged
	EventLoadingChanged
)

// LessFunc orders two resources for the view.
type LessFunc func(a, b mvsfs.VirtualResource) bool

// DefaultLess puts directories (anything but members) first, then orders by
// display name ignoring case.
func DefaultLess(a, b mvsfs.VirtualResource) bool {
	if ad, bd := a.IsDirectory(), b.IsDirectory(); ad != bd {
		return ad
	}
	return strings.ToLower(a.DisplayName()) < strings.ToLower(b.DisplayName())
}

// ResultStore is a deduplicating, insertion-ordered collection of resources.
// All methods are safe for concurrent use; listeners are notified after the
// store lock is released.
type ResultStore struct {
	mu          sync.Mutex
	byKey       map[string]struct{}
	items       []mvsfs.VirtualResource // insertion order
	loading     bool
	loadedCount int
	filter      string
	matcher     func(name string) bool // nil when unfiltered
	less        LessFunc

	subs *util.Subscribers[Event]
}

func New() *ResultStore {
	return &ResultStore{
		byKey: make(map[string]struct{}),
		less:  DefaultLess,
		subs:  util.NewSubscribers[Event](),
	}
}

// AddItems inserts every item whose key is not present yet and returns the
// subset actually added, in input order.
func (s *ResultStore) AddItems(items []mvsfs.VirtualResource) []mvsfs.VirtualResource {
	if len(items) == 0 {
		return nil
	}

	s.mu.Lock()
	var added []mvsfs.VirtualResource
	for _, it := range items {
		key := it.Key()
		if _, ok := s.byKey[key]; ok {
			continue
		}
		s.byKey[key] = struct{}{}
		s.items = append(s.items, it)
		added = append(added, it)
	}
	s.loadedCount = len(s.items)
	s.mu.Unlock()

	if len(added) > 0 {
		s.subs.Notify(EventItemsAdded)
	}
	return added
}

// Clear empties the store and resets the loaded count and loading flag.
// The filter is kept.
func (s *ResultStore) Clear() {
	s.mu.Lock()
	clear(s.byKey)
	s.items = nil
	s.loadedCount = 0
	s.loading = false
	s.mu.Unlock()

	s.subs.Notify(EventCleared)
}

// SetFilterPattern stores the trimmed pattern; empty disables filtering.
//
// A pattern starting with "/" is a case-insensitive regular expression
// matched anywhere in the display name, so "/^AB" and "/^AB.*" select the
// same names. Anything else, including a "/" pattern that does not compile,
// is a case-insensitive substring match on the raw pattern.
func (s *ResultStore) SetFilterPattern(pattern string) {
	pattern = strings.TrimSpace(pattern)
	matcher := compileFilter(pattern)

	s.mu.Lock()
	s.filter = pattern
	s.matcher = matcher
	s.mu.Unlock()

	s.subs.Notify(EventFilterChanged)
}

// FilterPattern returns the active filter pattern.
func (s *ResultStore) FilterPattern() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.filter
}

// SetLess replaces the view ordering. A nil less restores [DefaultLess].
func (s *ResultStore) SetLess(less LessFunc) {
	if less == nil {
		less = DefaultLess
	}
	s.mu.Lock()
	s.less = less
	s.mu.Unlock()
}

// ViewModel returns a sorted snapshot of the entries matching the filter.
func (s *ResultStore) ViewModel() []mvsfs.VirtualResource {
	s.mu.Lock()
	view := make([]mvsfs.VirtualResource, 0, len(s.items))
	for _, it := range s.items {
		if s.matcher == nil || s.matcher(it.DisplayName()) {
			view = append(view, it)
		}
	}
	less := s.less
	s.mu.Unlock()

	slices.SortStableFunc(view, func(a, b mvsfs.VirtualResource) int {
		switch {
		case less(a, b):
			return -1
		case less(b, a):
			return 1
		default:
			return 0
		}
	})
	return view
}

// AllItems returns an unfiltered snapshot in insertion order.
func (s *ResultStore) AllItems() []mvsfs.VirtualResource {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.items)
}

// Len returns the number of stored entries, ignoring the filter.
func (s *ResultStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.items)
}

// LoadedCount returns how many entries the current load has contributed.
func (s *ResultStore) LoadedCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loadedCount
}

// SetLoading updates the loading flag, notifying listeners on change.
func (s *ResultStore) SetLoading(loading bool) {
	s.mu.Lock()
	changed := s.loading != loading
	s.loading = loading
	s.mu.Unlock()

	if changed {
		s.subs.Notify(EventLoadingChanged)
	}
}

// IsLoading reports whether a load is in progress.
func (s *ResultStore) IsLoading() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loading
}

// Subscribe registers fn for store events and returns its unsubscribe func.
func (s *ResultStore) Subscribe(fn func(Event)) (unsubscribe func()) {
	return s.subs.Subscribe(fn)
}

// Close drops all subscriptions.
func (s *ResultStore) Close() {
	s.subs.Clear()
}

func compileFilter(pattern string) func(string) bool {
	if pattern == "" {
		return nil
	}
	if len(pattern) > 1 && strings.HasPrefix(pattern, "/") {
		if re, err := regexp.Compile("(?i)" + pattern[1:]); err == nil {
			return re.MatchString
		}
		logger := util.GetLogger("Store.Filter")
		logger.Debug().Str("pattern", pattern).Msg("Invalid filter regex, matching as text")
	}
	needle := strings.ToLower(pattern)
	return func(name string) bool {
		return strings.Contains(strings.ToLower(name), needle)
	}
}
