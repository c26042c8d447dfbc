package workspace

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/hashicorp/golang-lru/simplelru"
	"golang.org/x/sync/singleflight"

	"github.com/Alijeyrad/medchart/internal/chart"
)

// Registry holds the live managers of recently active clinicians. An evicted
// manager is rebuilt from the state store the next time it is needed.
type Registry struct {
	fetcher chart.Fetcher
	store   StateStore
	opts    Options
	logger  *slog.Logger

	mu  *sync.Mutex
	lru *simplelru.LRU

	// builds collapses concurrent restores of the same owner.
	builds singleflight.Group
}

func NewRegistry(size int, fetcher chart.Fetcher, store StateStore, opts Options) (*Registry, error) {
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	r := &Registry{
		fetcher: fetcher,
		store:   store,
		opts:    opts,
		logger:  opts.Logger,
		mu:      &sync.Mutex{},
	}

	lru, err := simplelru.NewLRU(size, r.onEvict)
	if err != nil {
		return nil, fmt.Errorf("create workspace cache: %w", err)
	}
	r.lru = lru
	return r, nil
}

// Get returns the manager of owner, restoring it on first use.
func (r *Registry) Get(ctx context.Context, owner string) (*Manager, error) {
	if m := r.cached(owner); m != nil {
		return m, nil
	}

	v, err, _ := r.builds.Do(owner, func() (any, error) {
		if m := r.cached(owner); m != nil {
			return m, nil
		}
		m := NewManager(owner, r.fetcher, r.store, r.opts)
		if err := m.Restore(ctx); err != nil {
			return nil, fmt.Errorf("restore workspace: %w", err)
		}

		r.mu.Lock()
		defer r.mu.Unlock()
		_ = r.lru.Add(owner, m)
		return m, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*Manager), nil
}

func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.lru.Len()
}

// Wait blocks until every live manager has finished its background fetches.
func (r *Registry) Wait() {
	r.mu.Lock()
	managers := make([]*Manager, 0, r.lru.Len())
	for _, k := range r.lru.Keys() {
		if v, ok := r.lru.Peek(k); ok {
			managers = append(managers, v.(*Manager))
		}
	}
	r.mu.Unlock()

	for _, m := range managers {
		m.Wait()
	}
}

func (r *Registry) cached(owner string) *Manager {
	r.mu.Lock()
	defer r.mu.Unlock()
	if v, ok := r.lru.Get(owner); ok {
		return v.(*Manager)
	}
	return nil
}

func (r *Registry) onEvict(key, value any) {
	m := value.(*Manager)
	m.retire()
	recordTabs(context.Background(), -int64(len(m.Snapshot().Tabs)))
	r.logger.Debug("workspace evicted from memory", "workspace", key)
}
