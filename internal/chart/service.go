package chart

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
)

var (
	ErrNotFound = errors.New("chart: not found")
	ErrExists   = errors.New("chart: already exists")
)

// Service owns the lifecycle of mounted charts. Dashboards create a chart
// once, push new configurations with Update and Destroy it on teardown.
type Service interface {
	Create(ctx context.Context, id string, cfg Config) error
	Update(ctx context.Context, id string, cfg Config) error
	Destroy(ctx context.Context, id string) error
}

// Mounted is a chart known to a Registry.
type Mounted struct {
	ID       string `json:"id"`
	Config   Config `json:"config"`
	Revision int    `json:"revision"`
}

// Registry is the in-memory Service. It also keeps the latest configuration
// of each chart so late subscribers can be brought up to date.
type Registry struct {
	mu     sync.RWMutex
	charts map[string]*Mounted
}

// NewRegistry creates an empty Registry.
func NewRegistry() *Registry {
	return &Registry{charts: make(map[string]*Mounted)}
}

func (r *Registry) Create(_ context.Context, id string, cfg Config) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.charts[id]; ok {
		return fmt.Errorf("%w: %s", ErrExists, id)
	}
	r.charts[id] = &Mounted{ID: id, Config: cfg, Revision: 1}
	return nil
}

func (r *Registry) Update(_ context.Context, id string, cfg Config) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	m, ok := r.charts[id]
	if !ok {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	m.Config = cfg
	m.Revision++
	return nil
}

func (r *Registry) Destroy(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.charts[id]; !ok {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	delete(r.charts, id)
	return nil
}

// Get returns a copy of a mounted chart.
func (r *Registry) Get(id string) (Mounted, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	m, ok := r.charts[id]
	if !ok {
		return Mounted{}, false
	}
	return *m, true
}

// IDs lists mounted charts in order.
func (r *Registry) IDs() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	ids := make([]string, 0, len(r.charts))
	for id := range r.charts {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Upsert creates the chart on first use and updates it afterwards.
func Upsert(ctx context.Context, s Service, id string, cfg Config) error {
	err := s.Update(ctx, id, cfg)
	if errors.Is(err, ErrNotFound) {
		return s.Create(ctx, id, cfg)
	}
	return err
}
