package store

import (
	"fmt"
	"sync"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/brettbedarf/mvsfs"
)

func dataset(name string) mvsfs.VirtualResource {
	return mvsfs.NewVirtualResource(mvsfs.NewDataset(name))
}

func member(path string) mvsfs.VirtualResource {
	return mvsfs.NewVirtualResource(mvsfs.NewMember(path))
}

func displayNames(items []mvsfs.VirtualResource) []string {
	out := make([]string, 0, len(items))
	for _, it := range items {
		out = append(out, it.DisplayName())
	}
	return out
}

func TestAddItems_Dedup(t *testing.T) {
	t.Parallel()

	s := New()
	added := s.AddItems([]mvsfs.VirtualResource{dataset("HLQ.A"), dataset("HLQ.B")})
	require.Len(t, added, 2)

	added = s.AddItems([]mvsfs.VirtualResource{dataset("hlq.a"), dataset("HLQ.C"), dataset("HLQ.C")})

	assert.Equal(t, []string{"C"}, displayNames(added), "only new keys are returned")
	assert.Equal(t, 3, s.Len())
	assert.Equal(t, 3, s.LoadedCount())
	assert.Equal(t, "A", s.AllItems()[0].DisplayName(), "first occurrence wins")
	assert.Equal(t, "'HLQ.A'", s.AllItems()[0].OpenPath())
}

func TestAddItems_SamePathAnyCaseAddsOnce(t *testing.T) {
	t.Parallel()

	for _, pair := range [][2]string{
		{"HLQ.DATA", "hlq.data"},
		{"'HLQ.DATA'", "HLQ.DATA"},
		{"Hlq.Pds", "HLQ.PDS"},
	} {
		s := New()
		s.AddItems([]mvsfs.VirtualResource{dataset(pair[0])})
		s.AddItems([]mvsfs.VirtualResource{dataset(pair[1])})
		assert.Equal(t, 1, s.Len(), "%q and %q must dedup", pair[0], pair[1])
	}
}

func TestAddItems_Empty(t *testing.T) {
	t.Parallel()

	s := New()
	var events []Event
	s.Subscribe(func(ev Event) { events = append(events, ev) })

	assert.Empty(t, s.AddItems(nil))
	assert.Empty(t, events, "nothing added, nothing notified")
}

func TestViewModel_SortsDirectoriesFirst(t *testing.T) {
	t.Parallel()

	s := New()
	s.AddItems([]mvsfs.VirtualResource{
		member("HLQ.PDS(AAA)"),
		dataset("HLQ.zeta"),
		member("HLQ.PDS(bbb)"),
		dataset("HLQ.Alpha"),
		mvsfs.NewVirtualResource(mvsfs.NewQualifier("HLQ.MIDDLE")),
	})

	want := []string{"Alpha", "MIDDLE", "zeta", "AAA", "bbb"}
	if diff := cmp.Diff(want, displayNames(s.ViewModel())); diff != "" {
		t.Errorf("view order mismatch (-want +got):\n%s", diff)
	}
}

func TestViewModel_Filter(t *testing.T) {
	t.Parallel()

	items := []mvsfs.VirtualResource{
		dataset("HLQ.ABC"),
		dataset("HLQ.XABX"),
		dataset("HLQ.abend"),
		dataset("HLQ.OTHER"),
		member("HLQ.PDS(CAB)"),
	}

	tests := []struct {
		pattern string
		want    []string
	}{
		{"", []string{"ABC", "abend", "OTHER", "XABX", "CAB"}},
		{"ab", []string{"ABC", "abend", "XABX", "CAB"}},
		{"  AB  ", []string{"ABC", "abend", "XABX", "CAB"}},
		{"/^AB.*", []string{"ABC", "abend"}},
		{"/^ab", []string{"ABC", "abend"}},
		{"/X$", []string{"XABX"}},
		{"/", []string{}},
		{"/[ab", []string{}}, // invalid regex matches the raw text
		{"nomatch", []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.pattern, func(t *testing.T) {
			t.Parallel()
			s := New()
			s.AddItems(items)
			s.SetFilterPattern(tt.pattern)

			assert.Equal(t, tt.want, displayNames(s.ViewModel()))
			assert.Equal(t, 5, s.Len(), "filter must not drop stored entries")
		})
	}
}

func TestViewModel_InvalidRegexFallsBackToText(t *testing.T) {
	t.Parallel()

	s := New()
	s.AddItems([]mvsfs.VirtualResource{
		mvsfs.NewVirtualResource(mvsfs.NewQualifier("HLQ./[AB")),
		dataset("HLQ.AB"),
	})
	s.SetFilterPattern("/[ab")

	view := s.ViewModel()
	require.Len(t, view, 1)
	assert.Equal(t, "'HLQ./[AB'", view[0].OpenPath())
}

func TestSetFilterPattern_Trims(t *testing.T) {
	t.Parallel()

	s := New()
	s.SetFilterPattern("  cntl ")
	assert.Equal(t, "cntl", s.FilterPattern())
}

func TestSetLess(t *testing.T) {
	t.Parallel()

	s := New()
	s.AddItems([]mvsfs.VirtualResource{dataset("HLQ.A"), dataset("HLQ.C"), dataset("HLQ.B")})

	s.SetLess(func(a, b mvsfs.VirtualResource) bool { return a.DisplayName() > b.DisplayName() })
	assert.Equal(t, []string{"C", "B", "A"}, displayNames(s.ViewModel()))

	s.SetLess(nil)
	assert.Equal(t, []string{"A", "B", "C"}, displayNames(s.ViewModel()))
}

func TestClear(t *testing.T) {
	t.Parallel()

	s := New()
	s.SetFilterPattern("A")
	s.SetLoading(true)
	s.AddItems([]mvsfs.VirtualResource{dataset("HLQ.A")})

	s.Clear()

	assert.Equal(t, 0, s.Len())
	assert.Equal(t, 0, s.LoadedCount())
	assert.False(t, s.IsLoading())
	assert.Empty(t, s.ViewModel())
	assert.Equal(t, "A", s.FilterPattern(), "filter survives clear")

	s.AddItems([]mvsfs.VirtualResource{dataset("HLQ.A")})
	assert.Equal(t, 1, s.Len(), "keys must be forgotten on clear")
}

func TestSubscribe_Events(t *testing.T) {
	t.Parallel()

	s := New()
	var mu sync.Mutex
	var events []Event
	unsubscribe := s.Subscribe(func(ev Event) {
		mu.Lock()
		events = append(events, ev)
		mu.Unlock()
	})

	s.SetLoading(true)
	s.SetLoading(true) // unchanged
	s.AddItems([]mvsfs.VirtualResource{dataset("HLQ.A")})
	s.AddItems([]mvsfs.VirtualResource{dataset("HLQ.A")}) // duplicate
	s.SetFilterPattern("x")
	s.Clear()
	unsubscribe()
	s.SetLoading(true)

	assert.Equal(t, []Event{EventLoadingChanged, EventItemsAdded, EventFilterChanged, EventCleared}, events)
}

func TestResultStore_ConcurrentAccess(t *testing.T) {
	t.Parallel()

	s := New()
	var wg sync.WaitGroup

	for w := range 4 {
		wg.Go(func() {
			for i := range 50 {
				s.AddItems([]mvsfs.VirtualResource{dataset(fmt.Sprintf("HLQ.W%d.D%02d", w, i))})
			}
		})
	}
	for range 4 {
		wg.Go(func() {
			for range 50 {
				view := s.ViewModel()
				assert.LessOrEqual(t, len(view), 200)
				s.SetFilterPattern("W")
			}
		})
	}
	wg.Wait()

	assert.Equal(t, 200, s.Len())
}
