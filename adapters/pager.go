package adapters

import "github.com/brettbedarf/mvsfs"

// slicePager pages through an already fetched listing.
type slicePager struct {
	entries []mvsfs.FileEntry
	pos     int
}

func newSlicePager(entries []mvsfs.FileEntry) *slicePager {
	return &slicePager{entries: entries}
}

func (p *slicePager) HasNext() bool {
	return p.pos < len(p.entries)
}

func (p *slicePager) Next(n int) ([]mvsfs.FileEntry, error) {
	if n < 1 {
		n = len(p.entries)
	}
	end := min(p.pos+n, len(p.entries))
	page := p.entries[p.pos:end]
	p.pos = end
	return page, nil
}

var _ mvsfs.PageIterator = (*slicePager)(nil)
