// Package fetch implements the data-fetch lifecycle shared by every screen:
// a keyed resource with a tri-state view, stale-response discarding,
// mutations that patch loaded state in place, and client-side pagination.
package fetch

import (
	"context"
	"errors"
	"reflect"
	"sync"

	"github.com/turnupspot/turnupspot-client/internal/api"
)

// ErrSuperseded is returned by a load whose result was discarded because a
// newer load started or the resource closed.
var ErrSuperseded = errors.New("fetch superseded by a newer request")

// ErrClosed is returned by loads on a closed resource
var ErrClosed = errors.New("resource closed")

type State int

const (
	Idle State = iota
	Loading
	Ready
	Failed
)

func (s State) String() string {
	switch s {
	case Loading:
		return "loading"
	case Ready:
		return "ready"
	case Failed:
		return "failed"
	default:
		return "idle"
	}
}

// View is what a screen renders from a resource
type View[T any] struct {
	State State
	Data  T
	Err   error
	// NotFound is set when the failure was a 404
	NotFound bool
}

// Message is the display text of a failed view
func (v View[T]) Message() string {
	return api.MessageOf(v.Err)
}

// Loader fetches a resource value
type Loader[T any] func(ctx context.Context) (T, error)

// Resource owns one fetched value. Only the response of the latest load is
// applied; earlier in-flight loads are canceled and their results ignored.
type Resource[T any] struct {
	load Loader[T]

	mu       sync.Mutex
	gen      uint64
	cancel   context.CancelFunc
	deps     []any
	synced   bool
	closed   bool
	view     View[T]
	watchers []func(View[T])
	// pending patches made while a load was in flight, replayed on its data
	pending []func(T) T
}

func NewResource[T any](load Loader[T]) *Resource[T] {
	return &Resource[T]{load: load}
}

// Sync loads the resource when deps differ from the previous call, or on
// the first call. It is a no-op otherwise.
func (r *Resource[T]) Sync(ctx context.Context, deps ...any) error {
	r.mu.Lock()
	if r.synced && reflect.DeepEqual(r.deps, deps) {
		r.mu.Unlock()
		return nil
	}
	r.deps = deps
	r.synced = true
	r.mu.Unlock()
	return r.Refetch(ctx)
}

// Refetch loads the resource unconditionally. It blocks until the load
// settles and returns its error, or ErrSuperseded when the result was
// dropped.
func (r *Resource[T]) Refetch(ctx context.Context) error {
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return ErrClosed
	}
	if r.cancel != nil {
		r.cancel()
	}
	r.gen++
	gen := r.gen
	loadCtx, cancel := context.WithCancel(ctx)
	r.cancel = cancel
	r.view = View[T]{State: Loading, Data: r.view.Data}
	r.emitLocked()
	r.mu.Unlock()

	data, err := r.load(loadCtx)

	r.mu.Lock()
	defer r.mu.Unlock()
	cancel()
	if gen != r.gen || r.closed {
		return ErrSuperseded
	}
	r.cancel = nil
	pending := r.pending
	r.pending = nil
	if err != nil {
		var zero T
		r.view = View[T]{State: Failed, Data: zero, Err: err, NotFound: api.IsNotFound(err)}
	} else {
		for _, fn := range pending {
			data = fn(data)
		}
		r.view = View[T]{State: Ready, Data: data}
	}
	r.emitLocked()
	return err
}

// View returns the current view
func (r *Resource[T]) View() View[T] {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.view
}

// Patch replaces loaded data in place. While a load is in flight fn is
// applied to the data on screen and again to the response when it lands,
// so fn must be safe to apply twice. It reports false and does nothing
// when the resource is idle, failed or closed.
func (r *Resource[T]) Patch(fn func(T) T) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	switch {
	case r.closed:
		return false
	case r.view.State == Loading:
		r.pending = append(r.pending, fn)
	case r.view.State != Ready:
		return false
	}
	r.view.Data = fn(r.view.Data)
	r.emitLocked()
	return true
}

// OnChange registers fn to be called after every view transition.
// fn runs with the resource locked and must not call back into it.
func (r *Resource[T]) OnChange(fn func(View[T])) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.watchers = append(r.watchers, fn)
}

// Close cancels any in-flight load. Later loads fail with ErrClosed.
func (r *Resource[T]) Close() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.closed = true
	r.pending = nil
	r.gen++
	if r.cancel != nil {
		r.cancel()
		r.cancel = nil
	}
}

func (r *Resource[T]) emitLocked() {
	for _, fn := range r.watchers {
		fn(r.view)
	}
}
