package view

import (
	"context"
	"errors"
	"sync"

	"example.com/octofit/internal/observability"
)

// Status is the lifecycle position of a collection viewer.
type Status string

const (
	StatusLoading Status = "loading"
	StatusError   Status = "error"
	StatusReady   Status = "ready"
)

// ErrUnmounted is returned by Wait when the viewer is torn down first.
var ErrUnmounted = errors.New("view unmounted")

// State is the observable state of a collection viewer.
type State[T any] struct {
	Status     Status
	Data       T
	Err        string
	Refreshing bool // a Reload is in flight; Data still holds the previous result
}

// settled reports whether no fetch is pending.
func (s State[T]) settled() bool {
	return s.Status != StatusLoading && !s.Refreshing
}

// Fetcher loads the data behind a viewer.
type Fetcher[T any] func(ctx context.Context) (T, error)

// Collection fetches one dataset on mount and exposes it through a Store.
type Collection[T any] struct {
	name  string
	fetch Fetcher[T]
	store *Store[State[T]]

	mu        sync.Mutex
	mounted   bool
	closed    bool
	inflight  bool
	queued    bool
	ctx       context.Context
	cancel    context.CancelFunc
	unmounted chan struct{}
}

// NewCollection builds an unmounted viewer in the loading state. The name
// labels its load metrics.
func NewCollection[T any](name string, fetch Fetcher[T]) *Collection[T] {
	return &Collection[T]{
		name:      name,
		fetch:     fetch,
		store:     NewStore(State[T]{Status: StatusLoading}),
		unmounted: make(chan struct{}),
	}
}

// Name returns the label the viewer was built with.
func (c *Collection[T]) Name() string { return c.name }

// Mount issues the initial load in the background. The request lives until
// ctx ends or Unmount is called. Only the first call has any effect.
func (c *Collection[T]) Mount(ctx context.Context) {
	c.mu.Lock()
	if c.mounted || c.closed {
		c.mu.Unlock()
		return
	}
	c.mounted = true
	c.ctx, c.cancel = context.WithCancel(ctx)
	c.inflight = true
	runCtx := c.ctx
	c.mu.Unlock()

	go c.run(runCtx)
}

// Reload re-fetches the collection while keeping the current data visible.
// It reports false when the viewer is not mounted, already torn down, or a
// fetch is already in flight.
func (c *Collection[T]) Reload() bool {
	return c.reload(false)
}

// refetch is Reload for callers that just changed the backing data: a fetch
// already in flight may have started before the change, so another one is
// queued behind it.
func (c *Collection[T]) refetch() bool {
	return c.reload(true)
}

func (c *Collection[T]) reload(queue bool) bool {
	c.mu.Lock()
	if !c.mounted || c.closed {
		c.mu.Unlock()
		return false
	}
	if c.inflight {
		c.queued = c.queued || queue
		c.mu.Unlock()
		return queue
	}
	c.inflight = true
	runCtx := c.ctx
	c.mu.Unlock()

	c.store.Update(func(s *State[T]) bool {
		s.Refreshing = true
		return true
	})
	go c.run(runCtx)
	return true
}

// run fetches until no reload is queued. The in-flight flag is cleared in the
// same store update that publishes the settled state, so a caller woken by
// Wait always sees the viewer idle.
func (c *Collection[T]) run(ctx context.Context) {
	for {
		data, err := c.fetch(ctx)

		again := false
		next := StatusReady
		if err != nil {
			next = StatusError
		}
		published := c.store.Update(func(s *State[T]) bool {
			c.mu.Lock()
			defer c.mu.Unlock()
			if c.closed {
				return false
			}
			again = c.queued
			c.queued = false
			c.inflight = again
			s.Refreshing = again
			if err != nil {
				s.Status = StatusError
				s.Err = err.Error()
				return true
			}
			s.Status = StatusReady
			s.Data = data
			s.Err = ""
			return true
		})
		if !published {
			return
		}
		observability.RecordViewLoad(c.name, string(next))
		if !again {
			return
		}
	}
}

// State returns the current state.
func (c *Collection[T]) State() State[T] {
	return c.store.Get()
}

// Subscribe registers fn for state changes.
func (c *Collection[T]) Subscribe(fn func(State[T])) func() {
	return c.store.Subscribe(fn)
}

// Wait blocks until no fetch is pending, ctx ends, or the viewer is unmounted.
// A fetch that never completes keeps Wait blocked until ctx ends.
func (c *Collection[T]) Wait(ctx context.Context) (State[T], error) {
	settled := make(chan State[T], 1)
	unsubscribe := c.store.Subscribe(func(s State[T]) {
		if s.settled() {
			select {
			case settled <- s:
			default:
			}
		}
	})
	defer unsubscribe()

	if s := c.store.Get(); s.settled() {
		return s, nil
	}

	select {
	case s := <-settled:
		return s, nil
	case <-c.unmounted:
		return c.store.Get(), ErrUnmounted
	case <-ctx.Done():
		return c.store.Get(), ctx.Err()
	}
}

// Unmount cancels any in-flight fetch. Completions arriving afterwards are
// discarded and the state no longer changes.
func (c *Collection[T]) Unmount() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.closed = true
	cancel := c.cancel
	c.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	c.store.Close()
	close(c.unmounted)
}
