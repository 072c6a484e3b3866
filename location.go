package mvsfs

import (
	"fmt"
	"strings"
)

// Kind classifies a node of the MVS namespace.
type Kind int

const (
	// KindRoot is the virtual root above all high level qualifiers. It has no
	// server-side query form.
	KindRoot Kind = iota
	// KindQualifier is a high level qualifier or any dotted qualifier prefix,
	// browsed with a wildcard query ('HLQ.*').
	KindQualifier
	// KindDataset is a dataset whose children are PDS members or sub-datasets.
	KindDataset
	// KindMember is a PDS member. It has no children.
	KindMember
)

func (k Kind) String() string {
	switch k {
	case KindRoot:
		return "root"
	case KindQualifier:
		return "qualifier"
	case KindDataset:
		return "dataset"
	case KindMember:
		return "member"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// maxMemberNameLen is the longest name a PDS member can have.
const maxMemberNameLen = 8

// Location is an immutable value identifying one namespace node.
//
// The logical path is the canonical singly-quoted form used for display and as
// the deduplication key. Root is the only location with an empty logical path.
type Location struct {
	kind        Kind
	logicalPath string
	displayName string
}

// Root returns the virtual root location.
func Root() Location {
	return Location{kind: KindRoot}
}

// NewQualifier creates a qualifier location. The display name is the last
// qualifier segment.
func NewQualifier(path string) Location {
	normalized := Normalize(path)
	return Location{
		kind:        KindQualifier,
		logicalPath: normalized,
		displayName: lastQualifier(Unquote(normalized)),
	}
}

// NewDataset creates a dataset location from a (possibly quoted) dataset name.
func NewDataset(name string) Location {
	normalized := Normalize(name)
	return Location{
		kind:        KindDataset,
		logicalPath: normalized,
		displayName: lastQualifier(Unquote(normalized)),
	}
}

// NewMember creates a member location from a full member path like
// 'DATASET(MEMBER)'.
func NewMember(path string) Location {
	normalized := Normalize(path)
	return Location{
		kind:        KindMember,
		logicalPath: normalized,
		displayName: memberName(Unquote(normalized)),
	}
}

// Parse classifies a user typed path.
//
// Blank input is Root, a path with both parentheses is a Member and anything
// else is a Qualifier. A bare top segment ("USERID") and a dotted path
// ("USERID.DATA") resolve identically and only differ in display name.
func Parse(rawPath string) Location {
	unquoted := Unquote(Normalize(rawPath))
	if unquoted == "" {
		return Root()
	}
	if strings.Contains(unquoted, "(") && strings.Contains(unquoted, ")") {
		return NewMember(unquoted)
	}
	return NewQualifier(unquoted)
}

// Kind returns the location's kind.
func (l Location) Kind() Kind { return l.kind }

// LogicalPath returns the canonical quoted path; empty for Root.
func (l Location) LogicalPath() string { return l.logicalPath }

// DisplayName returns the last qualifier segment or the member name.
func (l Location) DisplayName() string { return l.displayName }

// IsRoot reports whether l is the virtual root.
func (l Location) IsRoot() bool { return l.kind == KindRoot }

// IsDirectory reports whether the location can have children.
func (l Location) IsDirectory() bool { return l.kind != KindMember }

// Key returns the case-insensitive identity of the location.
func (l Location) Key() string { return strings.ToUpper(l.logicalPath) }

// Equal reports whether both locations have the same kind and logical path,
// ignoring case.
func (l Location) Equal(other Location) bool {
	return l.kind == other.kind && strings.EqualFold(l.logicalPath, other.logicalPath)
}

// QueryPath derives the path sent to the server when listing l.
//
//	Root       -> ''
//	Qualifier  -> 'HLQ.*'
//	Dataset    -> 'DSN'         (member listing)
//	Member     -> 'DSN(MEM)'    (not listable)
func (l Location) QueryPath() string {
	switch l.kind {
	case KindRoot:
		return EmptyQuoted
	case KindQualifier:
		return ToWildcardQuery(l.logicalPath)
	default:
		return l.logicalPath
	}
}

// CreateChild resolves a raw listing entry name against l.
//
// Servers are inconsistent about returning bare or fully qualified names, so
// an entry that already starts with the parent path is used as-is and anything
// else is treated as relative to the parent. Wildcard qualifiers resolve
// against their fixed prefix. Members have no children, and an empty name or
// the parent's own name resolves to l itself.
func (l Location) CreateChild(rawChildName string) Location {
	child := Unquote(rawChildName)
	if child == "" {
		return l
	}
	parent := Unquote(l.logicalPath)

	switch l.kind {
	case KindRoot:
		return NewQualifier(child)

	case KindQualifier:
		parent = fixedPrefix(parent)
		if parent == "" {
			return NewQualifier(child)
		}
		if strings.EqualFold(child, parent) {
			return l
		}
		if hasPathPrefix(child, parent, ".") {
			return NewQualifier(child)
		}
		return NewQualifier(parent + "." + child)

	case KindDataset:
		if hasPathPrefix(child, parent, "(") && strings.HasSuffix(child, ")") {
			return NewMember(child)
		}
		if !strings.Contains(child, ".") && len(child) <= maxMemberNameLen {
			return NewMember(parent + "(" + child + ")")
		}
		if hasPathPrefix(child, parent, ".") {
			return NewDataset(child)
		}
		return NewDataset(parent + "." + child)

	default:
		return l
	}
}

func (l Location) String() string {
	return fmt.Sprintf("%s[%s]", l.kind, l.logicalPath)
}

// hasPathPrefix reports whether child starts with parent+sep, ignoring case.
func hasPathPrefix(child, parent, sep string) bool {
	prefix := parent + sep
	return len(child) > len(prefix) && strings.EqualFold(child[:len(prefix)], prefix)
}

// fixedPrefix drops the first wildcarded qualifier and everything after it,
// so 'HLQ.*' and 'HLQ.D*' resolve children like 'HLQ'. A wildcard in the
// first qualifier leaves no prefix.
func fixedPrefix(path string) string {
	wild := strings.IndexAny(path, "*%")
	if wild < 0 {
		return path
	}
	dot := strings.LastIndexByte(path[:wild], '.')
	if dot < 0 {
		return ""
	}
	return path[:dot]
}

func lastQualifier(path string) string {
	if dot := strings.LastIndexByte(path, '.'); dot >= 0 && dot < len(path)-1 {
		return path[dot+1:]
	}
	return path
}

func memberName(path string) string {
	start := strings.IndexByte(path, '(')
	end := strings.IndexByte(path, ')')
	if start >= 0 && end > start {
		return path[start+1 : end]
	}
	return path
}
