package live

import (
	"context"
	"encoding/json"
	"fmt"
	"slices"
	"sort"
	"sync"

	"github.com/matthewbaird/intake/internal/event"
)

// Query is a named dashboard read a client can subscribe to.
type Query struct {
	Name string
	// Watches lists entity types and event types whose events refresh
	// subscriptions to this query.
	Watches []string
	Fetch   func(ctx context.Context, params json.RawMessage) (any, error)
}

func (q *Query) dependsOn(evt event.DomainEvent) bool {
	if slices.Contains(q.Watches, evt.EventType) {
		return true
	}
	for _, w := range q.Watches {
		if evt.Touches(w) {
			return true
		}
	}
	return false
}

// Registry holds the queries clients may subscribe to.
type Registry struct {
	mu      sync.RWMutex
	queries map[string]*Query
}

func NewRegistry() *Registry {
	return &Registry{queries: make(map[string]*Query)}
}

// Register adds q, replacing any query with the same name.
func (r *Registry) Register(q Query) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.queries[q.Name] = &q
}

func (r *Registry) Lookup(name string) (*Query, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	q, ok := r.queries[name]
	return q, ok
}

// Names returns the registered query names, sorted.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.queries))
	for n := range r.queries {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Decode unmarshals query params into T. Empty params yield T's zero value.
func Decode[T any](params json.RawMessage) (T, error) {
	var v T
	if len(params) == 0 || string(params) == "null" {
		return v, nil
	}
	if err := json.Unmarshal(params, &v); err != nil {
		return v, fmt.Errorf("decoding params: %w", err)
	}
	return v, nil
}

// DecodeOnto unmarshals query params over v, keeping v's values for anything
// the params leave out.
func DecodeOnto[T any](params json.RawMessage, v *T) error {
	if len(params) == 0 || string(params) == "null" {
		return nil
	}
	if err := json.Unmarshal(params, v); err != nil {
		return fmt.Errorf("decoding params: %w", err)
	}
	return nil
}
