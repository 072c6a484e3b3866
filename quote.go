package mvsfs

import "strings"

// EmptyQuoted is the quoted literal used for an empty dataset name.
const EmptyQuoted = "''"

// Normalize returns path wrapped in exactly one pair of single quotes.
// Surrounding whitespace, all leading/trailing quotes and trailing dots of
// non-wildcard names are stripped first, so "''HLQ''", "HLQ." and "'HLQ'"
// all normalize to 'HLQ'. Empty or all-quote input yields [EmptyQuoted].
func Normalize(path string) string {
	stripped := stripTrailingDots(Unquote(path))
	if stripped == "" {
		return EmptyQuoted
	}
	return "'" + stripped + "'"
}

// Unquote strips surrounding whitespace and all leading and trailing single
// quotes. It never re-adds quotes.
func Unquote(path string) string {
	s := strings.TrimSpace(path)
	start, end := 0, len(s)
	for start < end && s[start] == '\'' {
		start++
	}
	for end > start && s[end-1] == '\'' {
		end--
	}
	return s[start:end]
}

// IsQuoted reports whether path carries exactly one pair of outer quotes.
func IsQuoted(path string) bool {
	s := strings.TrimSpace(path)
	if len(s) < 2 {
		return false
	}
	return s[0] == '\'' && s[len(s)-1] == '\'' && !strings.HasPrefix(s, "''")
}

// HasWildcard reports whether the unquoted path contains an MVS wildcard
// character (* or %).
func HasWildcard(path string) bool {
	return strings.ContainsAny(Unquote(path), "*%")
}

// ToWildcardQuery turns a logical path into a qualifier browse query:
// 'HLQ' -> 'HLQ.*'. Paths already ending in * are only re-quoted.
func ToWildcardQuery(logicalPath string) string {
	unquoted := Unquote(logicalPath)
	if unquoted == "" {
		return EmptyQuoted
	}
	if strings.HasSuffix(unquoted, "*") {
		return Normalize(unquoted)
	}
	return Normalize(unquoted + ".*")
}

// ExtractHLQ returns the high level qualifier of a dataset or member path.
//
//	'USERID.DATA.SET'  -> USERID
//	'USERID.PDS(MEM)'  -> USERID
//	'USERID(MEM)'      -> USERID
func ExtractHLQ(datasetName string) string {
	unquoted := Unquote(datasetName)
	if unquoted == "" {
		return ""
	}
	if dot := strings.IndexByte(unquoted, '.'); dot > 0 {
		return unquoted[:dot]
	}
	if paren := strings.IndexByte(unquoted, '('); paren > 0 {
		return unquoted[:paren]
	}
	return unquoted
}

// stripTrailingDots drops dangling qualifier separators ("HLQ..") but leaves
// wildcard patterns alone.
func stripTrailingDots(s string) string {
	for !strings.HasSuffix(s, "*") {
		trimmed := Unquote(strings.TrimRight(s, "."))
		if trimmed == s {
			break
		}
		s = trimmed
	}
	return s
}
