package listing

import (
	"strconv"
	"strings"
	"unicode"
)

// maxDatasetNameLen is the longest fully qualified MVS dataset name.
const maxDatasetNameLen = 44

// extractNameFromRawLine pulls a dataset name out of an unparsed LIST line.
// z/OS puts the Dsname in the last column, so the last whitespace separated
// token is used if it looks like a dataset name. Returns "" otherwise.
func extractNameFromRawLine(raw string) string {
	fields := strings.Fields(raw)
	if len(fields) == 0 {
		return ""
	}
	last := fields[len(fields)-1]
	// column header of the dataset listing
	if strings.EqualFold(last, "Dsname") {
		return ""
	}
	if !isValidDatasetName(last) {
		return ""
	}
	return last
}

// isValidDatasetName accepts up to 44 ASCII letters, digits and . @ # $ ( ).
func isValidDatasetName(name string) bool {
	if name == "" || len(name) > maxDatasetNameLen {
		return false
	}
	for _, r := range name {
		if r <= unicode.MaxASCII && (unicode.IsLetter(r) || unicode.IsDigit(r)) {
			continue
		}
		switch r {
		case '.', '@', '#', '$', '(', ')':
			continue
		}
		return false
	}
	return true
}

// datasetAttrs are the record attributes found in a dataset LIST line.
type datasetAttrs struct {
	recordFormat string
	lrecl        int
}

// parseDatasetAttrs reads Recfm and Lrecl from a line in the z/OS dataset
// listing layout:
//
//	Volume Unit    Referred Ext Used Recfm Lrecl BlkSz Dsorg Dsname
//	VOL001 3390   2024/01/15  1   15  FB      80 27920  PO  USERID.DATA.SET
//
// Migrated or otherwise short lines report ok=false.
func parseDatasetAttrs(raw string) (attrs datasetAttrs, ok bool) {
	fields := strings.Fields(raw)
	n := len(fields)
	if n < 10 {
		return attrs, false
	}
	recfm := fields[n-5]
	for _, r := range recfm {
		if r > unicode.MaxASCII || !unicode.IsLetter(r) {
			return attrs, false
		}
	}
	lrecl, err := strconv.Atoi(fields[n-4])
	if err != nil || lrecl < 0 {
		return attrs, false
	}
	return datasetAttrs{recordFormat: recfm, lrecl: lrecl}, true
}
