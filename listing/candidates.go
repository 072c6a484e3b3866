package listing

import (
	"slices"
	"strings"

	"github.com/brettbedarf/mvsfs"
)

// buildQueryCandidates returns the query forms to try for loc, most specific
// first and without duplicates.
//
// Datasets try the member pattern 'DSN(*)' ahead of the plain query. Every
// location then tries its query path as-is, uppercased and fully unquoted
// since servers disagree on case handling and on quoting.
func buildQueryCandidates(loc mvsfs.Location) []string {
	var candidates []string
	add := func(c string) {
		if c != "" && !slices.Contains(candidates, c) {
			candidates = append(candidates, c)
		}
	}

	if loc.Kind() == mvsfs.KindDataset && !strings.Contains(loc.LogicalPath(), "(") {
		add(mvsfs.Normalize(mvsfs.Unquote(loc.LogicalPath()) + "(*)"))
	}

	query := loc.QueryPath()
	add(query)

	unquoted := mvsfs.Unquote(query)
	if upper := strings.ToUpper(unquoted); upper != unquoted {
		add(mvsfs.Normalize(upper))
	}
	if unquoted != query {
		add(unquoted)
	}
	return candidates
}
