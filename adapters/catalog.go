package adapters

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"slices"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/brettbedarf/mvsfs"
	"github.com/brettbedarf/mvsfs/internal/util"
)

// ErrStrategyDisabled is returned by a catalog client for a listing command
// its source has switched off, as some hosts refuse NLST or LIST.
var ErrStrategyDisabled = errors.New("listing command not supported")

// Catalog commands that can be disabled
const (
	CatalogNames = "nlst"  // ListNames
	CatalogPaged = "paged" // ListFilesPaged
	CatalogList  = "list"  // ListFiles
)

const (
	maxMemberLen   = 8
	maxDatasetLen  = 44
	catalogDateFmt = "2006/01/02"
	listHeaderLine = "Volume Unit    Referred Ext Used Recfm Lrecl BlkSz Dsorg Dsname"
	memberIDColumn = "MVSFS"
)

// CatalogDataset describes one dataset of a [CatalogSource].
type CatalogDataset struct {
	Name     string   `yaml:"name" json:"name"`
	Members  []string `yaml:"members,omitempty" json:"members,omitempty"`
	Dsorg    string   `yaml:"dsorg,omitempty" json:"dsorg,omitempty"` // PO or PS; PO when members are given
	Recfm    string   `yaml:"recfm,omitempty" json:"recfm,omitempty"` // Default FB
	Lrecl    int      `yaml:"lrecl,omitempty" json:"lrecl,omitempty"` // Default 80
	Volume   string   `yaml:"volume,omitempty" json:"volume,omitempty"`
	Referred string   `yaml:"referred,omitempty" json:"referred,omitempty"` // yyyy/mm/dd
	Migrated bool     `yaml:"migrated,omitempty" json:"migrated,omitempty"`
}

// CatalogSource is an in-memory MVS catalog. The switches make it behave like
// the different FTP servers the listing engine has to cope with.
type CatalogSource struct {
	Datasets []CatalogDataset `yaml:"datasets" json:"datasets"`

	// Disabled commands fail with ErrStrategyDisabled; see CatalogNames etc.
	Disabled []string `yaml:"disabled,omitempty" json:"disabled,omitempty"`
	// RejectQuoted fails every query wrapped in single quotes
	RejectQuoted bool `yaml:"reject_quoted,omitempty" json:"reject_quoted,omitempty"`
	// RawOnly leaves dataset names of LIST entries unparsed, with a header line
	RawOnly bool `yaml:"raw_only,omitempty" json:"raw_only,omitempty"`
	// QualifiedMembers returns members as DSN(MEMBER) instead of bare names
	QualifiedMembers bool `yaml:"qualified_members,omitempty" json:"qualified_members,omitempty"`
}

// RegisterCatalog registers the catalog provider on r.
func RegisterCatalog(r *Registry) {
	r.Register(CatalogSourceType, ProviderFunc(func(raw []byte) (mvsfs.ListingClient, error) {
		var src CatalogSource
		if err := yaml.Unmarshal(raw, &src); err != nil {
			return nil, err
		}
		return NewCatalogClient(src)
	}))
}

type catalogEntry struct {
	CatalogDataset
	referred time.Time
}

// CatalogClient implements [mvsfs.ListingClient] over a [CatalogSource].
// It is read-only after creation and safe for concurrent use.
type CatalogClient struct {
	src      CatalogSource
	datasets []catalogEntry // sorted by name
	byName   map[string]int
	disabled map[string]bool
}

// NewCatalogClient validates src and indexes its datasets. Names are
// uppercased.
func NewCatalogClient(src CatalogSource) (*CatalogClient, error) {
	c := &CatalogClient{
		src:      src,
		byName:   make(map[string]int, len(src.Datasets)),
		disabled: make(map[string]bool, len(src.Disabled)),
	}
	for _, d := range src.Disabled {
		c.disabled[strings.ToLower(strings.TrimSpace(d))] = true
	}

	for _, ds := range src.Datasets {
		entry, err := newCatalogEntry(ds)
		if err != nil {
			return nil, err
		}
		if _, dup := c.byName[entry.Name]; dup {
			return nil, fmt.Errorf("catalog: duplicate dataset %s", entry.Name)
		}
		c.byName[entry.Name] = 0
		c.datasets = append(c.datasets, entry)
	}
	slices.SortFunc(c.datasets, func(a, b catalogEntry) int { return strings.Compare(a.Name, b.Name) })
	for i, ds := range c.datasets {
		c.byName[ds.Name] = i
	}
	return c, nil
}

func newCatalogEntry(ds CatalogDataset) (catalogEntry, error) {
	name := strings.ToUpper(mvsfs.Unquote(ds.Name))
	if name == "" || len(name) > maxDatasetLen || strings.ContainsAny(name, "()*% ") {
		return catalogEntry{}, fmt.Errorf("catalog: invalid dataset name %q", ds.Name)
	}
	ds.Name = name

	members := make([]string, 0, len(ds.Members))
	for _, m := range ds.Members {
		m = strings.ToUpper(strings.TrimSpace(m))
		if m == "" || len(m) > maxMemberLen || strings.ContainsAny(m, ".()") {
			return catalogEntry{}, fmt.Errorf("catalog: invalid member %q in %s", m, name)
		}
		members = append(members, m)
	}
	slices.Sort(members)
	ds.Members = slices.Compact(members)

	ds.Dsorg = strings.ToUpper(ds.Dsorg)
	if ds.Dsorg == "" {
		ds.Dsorg = "PS"
		if len(ds.Members) > 0 {
			ds.Dsorg = "PO"
		}
	}
	if ds.Recfm == "" {
		ds.Recfm = "FB"
	}
	if ds.Lrecl == 0 {
		ds.Lrecl = 80
	}
	if ds.Volume == "" {
		ds.Volume = "VOL001"
	}

	entry := catalogEntry{CatalogDataset: ds}
	if ds.Referred != "" {
		t, err := time.Parse(catalogDateFmt, ds.Referred)
		if err != nil {
			return catalogEntry{}, fmt.Errorf("catalog: invalid referred date for %s: %w", name, err)
		}
		entry.referred = t
	}
	return entry, nil
}

// ListNames answers NLST: dataset names for dataset patterns, member names for
// a partitioned dataset.
func (c *CatalogClient) ListNames(ctx context.Context, queryPath string) ([]string, error) {
	entries, err := c.query(ctx, CatalogNames, queryPath)
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, e.Name)
	}
	return names, nil
}

// ListFilesPaged answers LIST in pages.
func (c *CatalogClient) ListFilesPaged(ctx context.Context, queryPath string, _ int) (mvsfs.PageIterator, error) {
	entries, err := c.query(ctx, CatalogPaged, queryPath)
	if err != nil {
		return nil, err
	}
	return newSlicePager(c.asListing(entries)), nil
}

// ListFiles answers LIST.
func (c *CatalogClient) ListFiles(ctx context.Context, queryPath string) ([]mvsfs.FileEntry, error) {
	entries, err := c.query(ctx, CatalogList, queryPath)
	if err != nil {
		return nil, err
	}
	return c.asListing(entries), nil
}

// query resolves a query path to parsed entries with names and raw lines.
//
//	'HLQ.*'      datasets under HLQ, any depth
//	'A.B%.*X'    * and % match within one qualifier
//	'DSN(*)'     members of DSN matching the member pattern
//	'DSN'        members of a PDS, or the dataset itself
func (c *CatalogClient) query(ctx context.Context, command, queryPath string) ([]mvsfs.FileEntry, error) {
	logger := util.GetLogger("Catalog.Query")

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if c.disabled[command] {
		return nil, fmt.Errorf("%w: %s", ErrStrategyDisabled, command)
	}
	if c.src.RejectQuoted && strings.HasPrefix(strings.TrimSpace(queryPath), "'") {
		return nil, fmt.Errorf("501 quoted data set names not accepted: %s", queryPath)
	}

	q := strings.ToUpper(mvsfs.Unquote(queryPath))
	var entries []mvsfs.FileEntry
	switch {
	case q == "":
		// no catalog-wide listing
	case strings.Contains(q, "("):
		entries = c.memberQuery(q)
	case mvsfs.HasWildcard(q):
		entries = c.patternQuery(q)
	default:
		entries = c.exactQuery(q)
	}
	logger.Trace().Str("command", command).Str("query", queryPath).Int("entries", len(entries)).Msg("Catalog query")
	return entries, nil
}

func (c *CatalogClient) memberQuery(q string) []mvsfs.FileEntry {
	open := strings.IndexByte(q, '(')
	dsn := q[:open]
	pattern := strings.TrimSuffix(q[open+1:], ")")
	i, ok := c.byName[dsn]
	if !ok {
		return nil
	}
	re := globToRegexp(pattern, false)
	var entries []mvsfs.FileEntry
	for _, m := range c.datasets[i].Members {
		if re.MatchString(m) {
			entries = append(entries, c.memberEntry(c.datasets[i], m))
		}
	}
	return entries
}

func (c *CatalogClient) patternQuery(q string) []mvsfs.FileEntry {
	re := globToRegexp(q, true)
	var entries []mvsfs.FileEntry
	for _, ds := range c.datasets {
		if re.MatchString(ds.Name) {
			entries = append(entries, c.datasetEntry(ds))
		}
	}
	return entries
}

func (c *CatalogClient) exactQuery(q string) []mvsfs.FileEntry {
	i, ok := c.byName[q]
	if !ok {
		return nil
	}
	ds := c.datasets[i]
	if ds.Dsorg != "PO" {
		return []mvsfs.FileEntry{c.datasetEntry(ds)}
	}
	entries := make([]mvsfs.FileEntry, 0, len(ds.Members))
	for _, m := range ds.Members {
		entries = append(entries, c.memberEntry(ds, m))
	}
	return entries
}

func (c *CatalogClient) datasetEntry(ds catalogEntry) mvsfs.FileEntry {
	return mvsfs.FileEntry{
		Name:      ds.Name,
		Size:      -1,
		Timestamp: ds.referred,
		RawLine:   datasetLine(ds),
	}
}

func (c *CatalogClient) memberEntry(ds catalogEntry, member string) mvsfs.FileEntry {
	name := member
	if c.src.QualifiedMembers {
		name = ds.Name + "(" + member + ")"
	}
	return mvsfs.FileEntry{
		Name:      name,
		Size:      -1,
		Timestamp: ds.referred,
		RawLine:   memberLine(ds, member),
	}
}

// asListing applies the RawOnly switch to a LIST response.
func (c *CatalogClient) asListing(entries []mvsfs.FileEntry) []mvsfs.FileEntry {
	if !c.src.RawOnly || len(entries) == 0 {
		return entries
	}
	out := make([]mvsfs.FileEntry, 0, len(entries)+1)
	out = append(out, mvsfs.FileEntry{Size: -1, RawLine: listHeaderLine})
	for _, e := range entries {
		if !strings.Contains(e.Name, "(") && !isMemberLine(e.RawLine) {
			e.Name = ""
		}
		out = append(out, e)
	}
	return out
}

// datasetLine renders a dataset in the z/OS LIST layout.
func datasetLine(ds catalogEntry) string {
	if ds.Migrated {
		return fmt.Sprintf("%-56s %s", "Migrated", ds.Name)
	}
	referred := "**NONE**"
	if !ds.referred.IsZero() {
		referred = ds.referred.Format(catalogDateFmt)
	}
	return fmt.Sprintf("%-6s %-4s %10s %3d %4d  %-5s %5d %5d  %-4s %s",
		ds.Volume, "3390", referred, 1, 1+len(ds.Members)/10, ds.Recfm, ds.Lrecl, blockSize(ds.Lrecl), ds.Dsorg, ds.Name)
}

// memberLine renders a member in the z/OS member LIST layout, name first.
func memberLine(ds catalogEntry, member string) string {
	date := "2024/01/01"
	if !ds.referred.IsZero() {
		date = ds.referred.Format(catalogDateFmt)
	}
	return fmt.Sprintf("%-8s 01.00 %s %s 00:00    1    1    0 %s", member, date, date, memberIDColumn)
}

func isMemberLine(raw string) bool {
	return strings.HasSuffix(raw, " "+memberIDColumn)
}

// blockSize returns the largest multiple of lrecl fitting half a 3390 track.
func blockSize(lrecl int) int {
	if lrecl <= 0 {
		return 0
	}
	return 27998 / lrecl * lrecl
}

// globToRegexp converts an MVS name pattern. * and % match within a
// qualifier; with trailingAny a final ".*" matches any number of qualifiers.
func globToRegexp(pattern string, trailingAny bool) *regexp.Regexp {
	suffix := ""
	if trailingAny && strings.HasSuffix(pattern, ".*") {
		pattern = strings.TrimSuffix(pattern, ".*")
		suffix = `\..+`
	}
	var b strings.Builder
	b.WriteString("^")
	for _, r := range pattern {
		switch r {
		case '*':
			b.WriteString(`[^.]*`)
		case '%':
			b.WriteString(`[^.]`)
		default:
			b.WriteString(regexp.QuoteMeta(string(r)))
		}
	}
	b.WriteString(suffix)
	b.WriteString("$")
	return regexp.MustCompile(b.String())
}

var _ mvsfs.ListingClient = (*CatalogClient)(nil)
