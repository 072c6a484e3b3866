package mvsfs

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name        string
		in          string
		kind        Kind
		logicalPath string
		displayName string
		queryPath   string
	}{
		{"empty", "", KindRoot, "", "", EmptyQuoted},
		{"blank", "   ", KindRoot, "", "", EmptyQuoted},
		{"quotes only", "''", KindRoot, "", "", EmptyQuoted},
		{"hlq", "USERID", KindQualifier, "'USERID'", "USERID", "'USERID.*'"},
		{"quoted hlq", "'USERID'", KindQualifier, "'USERID'", "USERID", "'USERID.*'"},
		{"dotted path", "USERID.DATA.SET", KindQualifier, "'USERID.DATA.SET'", "SET", "'USERID.DATA.SET.*'"},
		{"trailing dot", "USERID.", KindQualifier, "'USERID'", "USERID", "'USERID.*'"},
		{"wildcard", "USERID.*", KindQualifier, "'USERID.*'", "*", "'USERID.*'"},
		{"member", "USERID.PDS(MEMBER)", KindMember, "'USERID.PDS(MEMBER)'", "MEMBER", "'USERID.PDS(MEMBER)'"},
		{"quoted member", "'USERID.PDS(MEMBER)'", KindMember, "'USERID.PDS(MEMBER)'", "MEMBER", "'USERID.PDS(MEMBER)'"},
		{"unbalanced paren", "USERID.PDS(MEM", KindQualifier, "'USERID.PDS(MEM'", "PDS(MEM", "'USERID.PDS(MEM.*'"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			loc := Parse(tt.in)
			assert.Equal(t, tt.kind, loc.Kind())
			assert.Equal(t, tt.logicalPath, loc.LogicalPath())
			assert.Equal(t, tt.displayName, loc.DisplayName())
			assert.Equal(t, tt.queryPath, loc.QueryPath())
		})
	}
}

func TestParse_TopSegmentAndDottedPathResolveAlike(t *testing.T) {
	t.Parallel()

	top := Parse("USERID")
	dotted := Parse("USERID.DATA")

	assert.Equal(t, top.Kind(), dotted.Kind())
	assert.Equal(t, top.CreateChild("X").Kind(), dotted.CreateChild("X").Kind())
}

func TestDataset_QueryPathIsItself(t *testing.T) {
	t.Parallel()

	loc := NewDataset("USERID.PDS")
	assert.Equal(t, KindDataset, loc.Kind())
	assert.Equal(t, "'USERID.PDS'", loc.QueryPath())
	assert.Equal(t, "PDS", loc.DisplayName())
}

func TestCreateChild(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name        string
		parent      Location
		child       string
		kind        Kind
		logicalPath string
		displayName string
	}{
		{"root child is qualifier", Root(), "USERID", KindQualifier, "'USERID'", "USERID"},
		{"root child quoted", Root(), "'SYS1'", KindQualifier, "'SYS1'", "SYS1"},
		{"qualifier relative child", NewQualifier("USERID"), "DATA.SET", KindQualifier, "'USERID.DATA.SET'", "SET"},
		{"qualifier fully qualified child", NewQualifier("USERID"), "USERID.DATA.SET", KindQualifier, "'USERID.DATA.SET'", "SET"},
		{"qualifier child ignores case of prefix", NewQualifier("userid"), "USERID.DATA", KindQualifier, "'USERID.DATA'", "DATA"},
		{"qualifier sharing a prefix is relative", NewQualifier("USER"), "USERID.X", KindQualifier, "'USER.USERID.X'", "X"},
		{"wildcard qualifier child", NewQualifier("USERID.*"), "USERID.CNTL", KindQualifier, "'USERID.CNTL'", "CNTL"},
		{"wildcard qualifier relative child", NewQualifier("USERID.*"), "CNTL", KindQualifier, "'USERID.CNTL'", "CNTL"},
		{"prefix wildcard qualifier takes names as-is", Parse("'USER*'"), "USER1.DATA", KindQualifier, "'USER1.DATA'", "DATA"},
		{"partial wildcard qualifier fully qualified child", Parse("HLQ.D*"), "HLQ.DATA", KindQualifier, "'HLQ.DATA'", "DATA"},
		{"partial wildcard qualifier relative child", Parse("HLQ.D*"), "DATA", KindQualifier, "'HLQ.DATA'", "DATA"},
		{"percent wildcard qualifier", Parse("HLQ.A%C.*"), "HLQ.ABC.X", KindQualifier, "'HLQ.ABC.X'", "X"},
		{"dataset bare member", NewDataset("USERID.PDS"), "MEMBER1", KindMember, "'USERID.PDS(MEMBER1)'", "MEMBER1"},
		{"dataset qualified member", NewDataset("USERID.DATA.SET"), "USERID.DATA.SET(MEMB1)", KindMember, "'USERID.DATA.SET(MEMB1)'", "MEMB1"},
		{"dataset quoted member", NewDataset("USERID.PDS"), "'MEM'", KindMember, "'USERID.PDS(MEM)'", "MEM"},
		{"dataset long name is sub-dataset", NewDataset("USERID.PDS"), "LONGNAME9", KindDataset, "'USERID.PDS.LONGNAME9'", "LONGNAME9"},
		{"dataset dotted relative child", NewDataset("USERID"), "DATA.SET", KindDataset, "'USERID.DATA.SET'", "SET"},
		{"dataset qualified sub-dataset", NewDataset("USERID.DATA"), "USERID.DATA.BACKUP", KindDataset, "'USERID.DATA.BACKUP'", "BACKUP"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := tt.parent.CreateChild(tt.child)
			assert.Equal(t, tt.kind, got.Kind())
			assert.Equal(t, tt.logicalPath, got.LogicalPath())
			assert.Equal(t, tt.displayName, got.DisplayName())
		})
	}
}

func TestCreateChild_ReturnsParent(t *testing.T) {
	t.Parallel()

	member := NewMember("USERID.PDS(MEM)")
	assert.Equal(t, member, member.CreateChild("OTHER"), "members have no children")

	ds := NewDataset("USERID.PDS")
	assert.Equal(t, ds, ds.CreateChild(""))
	assert.Equal(t, ds, ds.CreateChild("''"))

	wild := NewQualifier("HLQ.*")
	assert.Equal(t, wild, wild.CreateChild("HLQ"), "qualifier listed under its own wildcard")
	assert.Equal(t, wild, wild.CreateChild("'hlq'"))

	q := NewQualifier("HLQ")
	assert.Equal(t, q, q.CreateChild("HLQ"))
}

func TestCreateChild_NeverReturnsParentForDistinctChild(t *testing.T) {
	t.Parallel()

	parents := []Location{Root(), NewQualifier("HLQ"), NewQualifier("HLQ.DATA"), NewDataset("HLQ.PDS")}
	children := []string{"A", "hlq.x", "HLQ.DATA.Y", "MEM1", "'Q'", "HLQ.PDS(M)", "LONGERNAME"}

	for _, p := range parents {
		for _, c := range children {
			if Normalize(c) == p.Key() {
				continue
			}
			assert.False(t, p.CreateChild(c).Equal(p), "%s.CreateChild(%q) collapsed to parent", p, c)
		}
	}
}

func TestLocation_IsDirectory(t *testing.T) {
	t.Parallel()

	assert.True(t, Root().IsDirectory())
	assert.True(t, NewQualifier("USERID").IsDirectory())
	assert.True(t, NewDataset("USERID.PDS").IsDirectory())
	assert.False(t, NewMember("USERID.PDS(MEM)").IsDirectory())
	assert.True(t, Root().IsRoot())
	assert.False(t, NewQualifier("USERID").IsRoot())
}

func TestLocation_EqualAndKey(t *testing.T) {
	t.Parallel()

	a := NewDataset("userid.pds")
	b := NewDataset("'USERID.PDS'")

	assert.True(t, a.Equal(b))
	assert.Equal(t, a.Key(), b.Key())
	assert.Equal(t, "'USERID.PDS'", a.Key())
	assert.False(t, a.Equal(NewQualifier("USERID.PDS")), "kind is part of identity")
	assert.True(t, Root().Equal(Parse("")))
}

func TestLocation_String(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "dataset['USERID.PDS']", NewDataset("USERID.PDS").String())
	assert.Equal(t, "root[]", Root().String())
	assert.Equal(t, "kind(9)", Kind(9).String())
}

func TestVirtualResource(t *testing.T) {
	t.Parallel()

	res := NewVirtualResource(NewMember("USERID.PDS(MEM)"))
	require.Equal(t, KindMember, res.Kind())
	assert.Equal(t, "MEM", res.DisplayName())
	assert.Equal(t, "'USERID.PDS(MEM)'", res.OpenPath())
	assert.Equal(t, "'USERID.PDS(MEM)'", res.Key())
	assert.False(t, res.IsDirectory())
	assert.Zero(t, res.Size)
}
