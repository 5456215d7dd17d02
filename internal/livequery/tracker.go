// Package livequery re-runs a query whenever its parameters change and
// publishes only the newest answer. An in-flight fetch is cancelled as soon
// as it is superseded.
package livequery

import (
	"context"
	"sync"
)

// Fetch computes a result for params.
type Fetch[P, R any] func(ctx context.Context, params P) (R, error)

// Result is one published answer. Gen increases with every Set or Refresh.
type Result[R any] struct {
	Gen   uint64
	Value R
	Err   error
}

// Tracker owns the fetch for one subscription.
type Tracker[P, R any] struct {
	fetch Fetch[P, R]
	base  context.Context

	mu      sync.Mutex
	gen     uint64
	params  P
	hasSet  bool
	cancel  context.CancelFunc
	closed  bool
	latest  *Result[R]
	subs    map[int]func(Result[R])
	nextSub int

	// deliver serialises publication so a stale result can never be handed
	// out after a newer one.
	deliver sync.Mutex
	wg      sync.WaitGroup
}

// New creates a tracker whose fetches run under ctx.
func New[P, R any](ctx context.Context, fetch Fetch[P, R]) *Tracker[P, R] {
	return &Tracker[P, R]{fetch: fetch, base: ctx, subs: make(map[int]func(Result[R]))}
}

// Subscribe registers fn for every future result and returns a function that
// removes it. fn runs on the fetching goroutine and must not block for long.
// fn may call the returned function but must not call Close on t: Close
// waits for fn to return.
func (t *Tracker[P, R]) Subscribe(fn func(Result[R])) func() {
	t.mu.Lock()
	id := t.nextSub
	t.nextSub++
	t.subs[id] = fn
	t.mu.Unlock()
	return func() {
		t.mu.Lock()
		delete(t.subs, id)
		t.mu.Unlock()
	}
}

// Set records new parameters and starts a fetch, cancelling any fetch still
// running. It returns the generation of the new fetch, or 0 once closed.
func (t *Tracker[P, R]) Set(params P) uint64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.closed {
		return 0
	}
	t.params = params
	t.hasSet = true
	return t.startLocked()
}

// Refresh re-runs the fetch with the current parameters. It does nothing
// before the first Set.
func (t *Tracker[P, R]) Refresh() uint64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.closed || !t.hasSet {
		return 0
	}
	return t.startLocked()
}

func (t *Tracker[P, R]) startLocked() uint64 {
	if t.cancel != nil {
		t.cancel()
	}
	t.gen++
	gen := t.gen
	ctx, cancel := context.WithCancel(t.base)
	t.cancel = cancel
	params := t.params
	t.wg.Add(1)
	go t.run(ctx, cancel, gen, params)
	return gen
}

func (t *Tracker[P, R]) run(ctx context.Context, cancel context.CancelFunc, gen uint64, params P) {
	defer t.wg.Done()
	defer cancel()
	v, err := t.fetch(ctx, params)

	t.deliver.Lock()
	defer t.deliver.Unlock()
	t.mu.Lock()
	if gen != t.gen || t.closed || ctx.Err() != nil {
		t.mu.Unlock()
		return
	}
	res := Result[R]{Gen: gen, Value: v, Err: err}
	t.latest = &res
	subs := make([]func(Result[R]), 0, len(t.subs))
	for _, fn := range t.subs {
		subs = append(subs, fn)
	}
	t.mu.Unlock()
	for _, fn := range subs {
		fn(res)
	}
}

// Latest returns the most recently published result.
func (t *Tracker[P, R]) Latest() (Result[R], bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.latest == nil {
		return Result[R]{}, false
	}
	return *t.latest, true
}

// Params returns the current parameters.
func (t *Tracker[P, R]) Params() (P, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.params, t.hasSet
}

// Close cancels any running fetch and waits for it, and for any subscriber
// still handling its result, to return. Nothing is published afterwards.
// Close must not be called from a subscriber.
func (t *Tracker[P, R]) Close() {
	t.mu.Lock()
	t.closed = true
	if t.cancel != nil {
		t.cancel()
	}
	t.mu.Unlock()
	t.wg.Wait()
}
