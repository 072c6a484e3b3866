package util

import (
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSubscribers_NotifyAndUnsubscribe(t *testing.T) {
	t.Parallel()

	s := NewSubscribers[string]()
	var a, b []string
	unsubA := s.Subscribe(func(ev string) { a = append(a, ev) })
	s.Subscribe(func(ev string) { b = append(b, ev) })

	s.Notify("first")
	unsubA()
	unsubA()
	s.Notify("second")

	assert.Equal(t, []string{"first"}, a)
	assert.Equal(t, []string{"first", "second"}, b)
	assert.Equal(t, 1, s.Len())

	s.Clear()
	assert.Equal(t, 0, s.Len())
}

func TestSubscribers_Concurrent(t *testing.T) {
	t.Parallel()

	s := NewSubscribers[int]()
	var total atomic.Int64
	var wg sync.WaitGroup

	for range 50 {
		wg.Go(func() {
			unsub := s.Subscribe(func(n int) { total.Add(int64(n)) })
			s.Notify(0)
			unsub()
		})
	}
	wg.Wait()

	assert.Equal(t, 0, s.Len())
	assert.Equal(t, int64(0), total.Load())
}
