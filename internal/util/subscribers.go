package util

import (
	"sync/atomic"

	"github.com/puzpuzpuz/xsync/v4"
)

// Subscribers is a concurrent registry of callbacks receiving events of type T.
// The zero value is not usable; create one with [NewSubscribers].
type Subscribers[T any] struct {
	lastID    atomic.Uint64 // last subscription id handed out
	listeners *xsync.Map[uint64, func(T)]
}

func NewSubscribers[T any]() *Subscribers[T] {
	return &Subscribers[T]{listeners: xsync.NewMap[uint64, func(T)]()}
}

// Subscribe registers fn and returns a func that removes it again.
// Calling the returned func more than once is a no-op.
func (s *Subscribers[T]) Subscribe(fn func(T)) (unsubscribe func()) {
	id := s.lastID.Add(1)
	s.listeners.Store(id, fn)
	return func() { s.listeners.Delete(id) }
}

// Notify calls every registered callback with ev on the caller's goroutine.
// Callbacks run in no particular order.
func (s *Subscribers[T]) Notify(ev T) {
	s.listeners.Range(func(_ uint64, fn func(T)) bool {
		fn(ev)
		return true
	})
}

// Len returns the number of registered callbacks.
func (s *Subscribers[T]) Len() int {
	return s.listeners.Size()
}

// Clear removes all callbacks.
func (s *Subscribers[T]) Clear() {
	s.listeners.Clear()
}
