// Package view holds the per-page view state of the dashboard: subscribable
// stores, collection viewers with a loading/error/ready lifecycle, the derived
// views rendered from them, and the user edit workflow.
package view

import "sync"

// Store is a mutex-guarded value with change notification. Subscribers are
// invoked synchronously, in subscription order, after the value changed; they
// must not call Update on the same store.
type Store[S any] struct {
	notifyMu sync.Mutex
	mu       sync.Mutex
	value    S
	subs     []subscription[S]
	nextID   uint64
	closed   bool
}

type subscription[S any] struct {
	id uint64
	fn func(S)
}

// NewStore returns a store holding initial.
func NewStore[S any](initial S) *Store[S] {
	return &Store[S]{value: initial}
}

// Get returns a copy of the current value.
func (s *Store[S]) Get() S {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.value
}

// Subscribe registers fn for future changes and returns its cancel func.
func (s *Store[S]) Subscribe(fn func(S)) func() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return func() {}
	}
	s.nextID++
	id := s.nextID
	s.subs = append(s.subs, subscription[S]{id: id, fn: fn})
	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		for i, sub := range s.subs {
			if sub.id == id {
				s.subs = append(s.subs[:i:i], s.subs[i+1:]...)
				return
			}
		}
	}
}

// Update applies fn to the value. fn reports whether it changed anything;
// subscribers are only notified when it did. Update is a no-op once the store
// is closed and returns false.
func (s *Store[S]) Update(fn func(*S) bool) bool {
	s.notifyMu.Lock()
	defer s.notifyMu.Unlock()

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return false
	}
	if !fn(&s.value) {
		s.mu.Unlock()
		return false
	}
	value := s.value
	subs := append([]subscription[S](nil), s.subs...)
	s.mu.Unlock()

	for _, sub := range subs {
		sub.fn(value)
	}
	return true
}

// Close drops all subscribers and freezes the value.
func (s *Store[S]) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	s.subs = nil
}
