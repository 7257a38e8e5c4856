// Package loading tracks how many backend requests are in flight so a
// single busy indicator can be driven for the whole process.
package loading

import "sync"

// Signal is the read side of a Counter handed to consumers
type Signal interface {
	IsLoading() bool
	Count() int
	OnChange(fn func(loading bool))
}

// Counter is a floor-clamped count of outstanding requests.
// The HTTP client is its only writer; everyone else gets its Signal.
type Counter struct {
	// emitMu serializes a state change with the delivery of its
	// transition so watchers never observe true/false out of order.
	emitMu sync.Mutex

	mu       sync.Mutex
	count    int
	watchers []func(loading bool)
}

// New creates an idle counter
func New() *Counter {
	return &Counter{}
}

// increment records the dispatch of one request
func (c *Counter) increment() {
	c.emitMu.Lock()
	defer c.emitMu.Unlock()

	c.mu.Lock()
	c.count++
	started := c.count == 1
	watchers := c.watchers
	c.mu.Unlock()

	if started {
		emit(watchers, true)
	}
}

// decrement records the settle of one request. It never goes below zero.
func (c *Counter) decrement() {
	c.emitMu.Lock()
	defer c.emitMu.Unlock()

	c.mu.Lock()
	if c.count == 0 {
		c.mu.Unlock()
		return
	}
	c.count--
	stopped := c.count == 0
	watchers := c.watchers
	c.mu.Unlock()

	if stopped {
		emit(watchers, false)
	}
}

// Begin increments the counter and returns a function that decrements it.
// The returned function is safe to call more than once; only the first
// call has an effect.
func (c *Counter) Begin() (done func()) {
	c.increment()
	var once sync.Once
	return func() {
		once.Do(c.decrement)
	}
}

// Signal returns a read-only view of c
func (c *Counter) Signal() Signal {
	return signal{c: c}
}

type signal struct{ c *Counter }

func (s signal) IsLoading() bool { return s.c.IsLoading() }
func (s signal) Count() int { return s.c.Count() }
func (s signal) OnChange(fn func(loading bool)) { s.c.OnChange(fn) }

// IsLoading reports whether at least one request is outstanding
func (c *Counter) IsLoading() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.count > 0
}

// Count returns the number of outstanding requests
func (c *Counter) Count() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.count
}

// OnChange registers fn to be called whenever IsLoading flips.
// fn must not call Begin or the done it returns.
func (c *Counter) OnChange(fn func(loading bool)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	watchers := make([]func(bool), len(c.watchers), len(c.watchers)+1)
	copy(watchers, c.watchers)
	c.watchers = append(watchers, fn)
}

func emit(watchers []func(bool), loading bool) {
	for _, fn := range watchers {
		fn(loading)
	}
}
