package listing

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

const (
	listHeader = "Volume Unit    Referred Ext Used Recfm Lrecl BlkSz Dsorg Dsname"
	listPDS    = "VOL001 3390   2024/01/15  1   15  FB      80 27920  PO  USERID.DATA.SET"
	listVB     = "VOL002 3390   2023/11/02  2    4  VB     255 27998  PS  USERID.LOG.DATA"
	listMigr   = "Migrated                                                USERID.OLD.DATA"
)

func TestExtractNameFromRawLine(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		raw  string
		want string
	}{
		{"dataset line", listPDS, "USERID.DATA.SET"},
		{"migrated dataset", listMigr, "USERID.OLD.DATA"},
		{"header row", listHeader, ""},
		{"empty", "", ""},
		{"whitespace", "   \t ", ""},
		{"national characters", "x y USER#1.$DATA@X", "USER#1.$DATA@X"},
		{"member path", "USERID.PDS(MEM)", "USERID.PDS(MEM)"},
		{"unix style path", "drwxr-xr-x 2 user group 4096 Jan 1 00:00 some/dir", ""},
		{"quoted name", "'USERID.DATA'", ""},
		{"exactly 44 characters", strings.Repeat("A", 44), strings.Repeat("A", 44)},
		{"too long", strings.Repeat("A", 45), ""},
		{"non-ascii letter", "x y ÄBC.X", ""},
		{"non-ascii digit", "x y USER١.X", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, extractNameFromRawLine(tt.raw))
		})
	}
}

func TestParseDatasetAttrs(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		raw    string
		want   datasetAttrs
		wantOK bool
	}{
		{"fixed block", listPDS, datasetAttrs{recordFormat: "FB", lrecl: 80}, true},
		{"variable block", listVB, datasetAttrs{recordFormat: "VB", lrecl: 255}, true},
		{"header row", listHeader, datasetAttrs{}, false},
		{"migrated", listMigr, datasetAttrs{}, false},
		{"empty", "", datasetAttrs{}, false},
		{"non-ascii recfm", "VOL001 3390   2024/01/15  1   15  FÄ      80 27920  PO  USERID.DATA.SET", datasetAttrs{}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, ok := parseDatasetAttrs(tt.raw)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}
