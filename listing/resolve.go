package listing

import (
	"context"
	"strings"

	"github.com/brettbedarf/mvsfs"
	"github.com/brettbedarf/mvsfs/internal/metrics"
	"github.com/brettbedarf/mvsfs/internal/util"
)

// Reasons an entry is dropped during resolution
const (
	skipBlank     = "blank"
	skipSelf      = "self"
	skipDuplicate = "duplicate"
)

// resolver turns raw server names into typed child resources of one parent.
// It deduplicates by uppercase logical path, keeping the first occurrence.
// Not safe for concurrent use.
type resolver struct {
	parent    mvsfs.Location
	parentKey string // unquoted, uppercase parent path
	seen      map[string]struct{}
	metrics   *metrics.Metrics
	logger    util.Logger
}

func newResolver(parent mvsfs.Location, m *metrics.Metrics) *resolver {
	return &resolver{
		parent:    parent,
		parentKey: strings.ToUpper(mvsfs.Unquote(parent.LogicalPath())),
		seen:      make(map[string]struct{}),
		metrics:   m,
		logger:    util.GetLogger("Listing.Resolve"),
	}
}

// resolve maps one raw name to a child location. ok is false for blank names,
// the parent itself (servers list a sequential dataset as its own child) and
// names already seen.
func (r *resolver) resolve(rawName string) (loc mvsfs.Location, ok bool) {
	name := strings.TrimSpace(rawName)
	if mvsfs.Unquote(name) == "" {
		r.metrics.RecordSkipped(skipBlank)
		return loc, false
	}
	if strings.ToUpper(mvsfs.Unquote(name)) == r.parentKey {
		r.logger.Trace().Str("name", name).Msg("Skipping parent entry")
		r.metrics.RecordSkipped(skipSelf)
		return loc, false
	}

	// case of the server's name is preserved
	loc = r.parent.CreateChild(name)
	if loc.Equal(r.parent) {
		r.metrics.RecordSkipped(skipSelf)
		return loc, false
	}

	key := loc.Key()
	if _, dup := r.seen[key]; dup {
		r.metrics.RecordSkipped(skipDuplicate)
		return loc, false
	}
	r.seen[key] = struct{}{}
	r.metrics.RecordResolved(1)
	return loc, true
}

// resolveNames resolves a name-only listing. Stops early on cancellation.
func (r *resolver) resolveNames(ctx context.Context, names []string) []mvsfs.VirtualResource {
	results := make([]mvsfs.VirtualResource, 0, len(names))
	for _, name := range names {
		if ctx.Err() != nil {
			break
		}
		if loc, ok := r.resolve(name); ok {
			results = append(results, mvsfs.NewVirtualResource(loc))
		}
	}
	return results
}

// resolveEntries resolves parsed listing entries, falling back to the raw
// line for entries without a parsed name. Stops early on cancellation.
func (r *resolver) resolveEntries(ctx context.Context, entries []mvsfs.FileEntry) []mvsfs.VirtualResource {
	results := make([]mvsfs.VirtualResource, 0, len(entries))
	for _, entry := range entries {
		if ctx.Err() != nil {
			break
		}
		name := entry.Name
		if strings.TrimSpace(name) == "" {
			name = extractNameFromRawLine(entry.RawLine)
		}
		loc, ok := r.resolve(name)
		if !ok {
			continue
		}
		results = append(results, resourceFromEntry(loc, entry))
	}
	return results
}

func resourceFromEntry(loc mvsfs.Location, entry mvsfs.FileEntry) mvsfs.VirtualResource {
	res := mvsfs.NewVirtualResource(loc)
	if entry.Size > 0 {
		res.Size = entry.Size
	}
	if !entry.Timestamp.IsZero() {
		res.LastModified = entry.Timestamp.UnixMilli()
	}
	if attrs, ok := parseDatasetAttrs(entry.RawLine); ok {
		res.RecordFormat = attrs.recordFormat
		res.LogicalRecordLength = attrs.lrecl
	}
	return res
}
