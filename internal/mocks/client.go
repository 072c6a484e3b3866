package mocks

import (
	"context"

	"github.com/brettbedarf/mvsfs"
	"github.com/stretchr/testify/mock"
)

// MockListingClient implements mvsfs.ListingClient for testing across packages
type MockListingClient struct {
	mock.Mock
}

func (m *MockListingClient) ListNames(ctx context.Context, queryPath string) ([]string, error) {
	args := m.Called(ctx, queryPath)

	// Handle function return types (for complex tests)
	if fn, ok := args.Get(0).(func(context.Context, string) []string); ok {
		return fn(ctx, queryPath), args.Error(1)
	}

	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

func (m *MockListingClient) ListFilesPaged(ctx context.Context, queryPath string, pageSize int) (mvsfs.PageIterator, error) {
	args := m.Called(ctx, queryPath, pageSize)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(mvsfs.PageIterator), args.Error(1)
}

func (m *MockListingClient) ListFiles(ctx context.Context, queryPath string) ([]mvsfs.FileEntry, error) {
	args := m.Called(ctx, queryPath)

	if fn, ok := args.Get(0).(func(context.Context, string) []mvsfs.FileEntry); ok {
		return fn(ctx, queryPath), args.Error(1)
	}

	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]mvsfs.FileEntry), args.Error(1)
}

var _ mvsfs.ListingClient = (*MockListingClient)(nil)

// MockPageIterator implements mvsfs.PageIterator for testing across packages
type MockPageIterator struct {
	mock.Mock
}

func (m *MockPageIterator) HasNext() bool {
	args := m.Called()
	return args.Bool(0)
}

func (m *MockPageIterator) Next(n int) ([]mvsfs.FileEntry, error) {
	args := m.Called(n)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]mvsfs.FileEntry), args.Error(1)
}

var _ mvsfs.PageIterator = (*MockPageIterator)(nil)

// SlicePageIterator is a PageIterator over fixed pages. Next ignores n and
// returns the next page; Errs[i], if set, is returned instead of page i.
type SlicePageIterator struct {
	Pages [][]mvsfs.FileEntry
	Errs  map[int]error
	// OnNext, if set, is called with the page index before it is returned
	OnNext func(i int)

	pos int
}

func (it *SlicePageIterator) HasNext() bool {
	return it.pos < len(it.Pages)
}

func (it *SlicePageIterator) Next(_ int) ([]mvsfs.FileEntry, error) {
	i := it.pos
	it.pos++
	if it.OnNext != nil {
		it.OnNext(i)
	}
	if err, ok := it.Errs[i]; ok {
		return nil, err
	}
	return it.Pages[i], nil
}

// Served reports how many pages were requested.
func (it *SlicePageIterator) Served() int {
	return it.pos
}

var _ mvsfs.PageIterator = (*SlicePageIterator)(nil)

// NamedEntries builds parsed entries with only names set.
func NamedEntries(names ...string) []mvsfs.FileEntry {
	entries := make([]mvsfs.FileEntry, 0, len(names))
	for _, n := range names {
		entries = append(entries, mvsfs.FileEntry{Name: n, Size: -1})
	}
	return entries
}
