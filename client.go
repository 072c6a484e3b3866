// Package mvsfs contains the core domain types of the MVS virtual filesystem:
// dataset name quoting, namespace locations and the listing primitives a
// transport has to provide.
package mvsfs

import (
	"context"
	"time"
)

// FileEntry is one entry of a parsed LIST response.
type FileEntry struct {
	Name      string    // parsed name; empty if the server line could not be parsed
	Size      int64     // bytes; negative if unknown
	Timestamp time.Time // zero if unknown
	RawLine   string    // the unparsed server line, if available
}

// PageIterator walks a parsed LIST response in pages.
type PageIterator interface {
	HasNext() bool
	// Next returns up to n entries
	Next(n int) ([]FileEntry, error)
}

// ListingClient is the subset of an FTP session the listing engine needs.
// Implementations own connection management; calls are made from a single
// background worker and are not interrupted mid-command.
type ListingClient interface {
	// ListNames runs a name-only listing (NLST)
	ListNames(ctx context.Context, queryPath string) ([]string, error)

	// ListFilesPaged runs a parsed listing (LIST) and returns an iterator
	// over its pages
	ListFilesPaged(ctx context.Context, queryPath string, pageSize int) (PageIterator, error)

	// ListFiles runs a parsed listing (LIST) in one go
	ListFiles(ctx context.Context, queryPath string) ([]FileEntry, error)
}

// PageSink receives listing results page by page. Exactly one page of a
// completed listing has isLast set; a cancelled listing may never send it.
type PageSink func(items []VirtualResource, isLast bool)
