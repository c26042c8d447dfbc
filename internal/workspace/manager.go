// Package workspace keeps the per-clinician tab session: which patient charts
// are open, which tab is active, and one chart context per loaded tab.
package workspace

import (
	"context"
	"errors"
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/samber/lo"
	"github.com/sourcegraph/conc"
	"github.com/sourcegraph/conc/pool"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/Alijeyrad/medchart/internal/chart"
)

type Options struct {
	// FetchTimeout bounds one profile fetch. Zero means no timeout.
	FetchTimeout time.Duration
	// WarmConcurrency bounds concurrent fetches when restoring.
	WarmConcurrency int
	Logger          *slog.Logger
}

// Manager owns the open tabs of one clinician. All methods are safe for
// concurrent use.
type Manager struct {
	owner   string
	fetcher chart.Fetcher
	store   StateStore
	opts    Options
	logger  *slog.Logger

	mu      sync.Mutex
	tabs    []Entry
	active  int64
	charts  map[int64]*chart.Context
	loading map[int64]struct{}
	// retired is set once the registry evicts the manager. A retired manager
	// still answers in-flight requests but no longer writes to the store.
	retired bool

	wg conc.WaitGroup
}

func NewManager(owner string, fetcher chart.Fetcher, store StateStore, opts Options) *Manager {
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.WarmConcurrency <= 0 {
		opts.WarmConcurrency = 4
	}
	return &Manager{
		owner:   owner,
		fetcher: fetcher,
		store:   store,
		opts:    opts,
		logger:  opts.Logger.With("workspace", owner),
		active:  TabHome,
		charts:  map[int64]*chart.Context{},
		loading: map[int64]struct{}{},
	}
}

func (m *Manager) Owner() string {
	return m.owner
}

// Open appends the entry if it is not open yet and makes it active either
// way. The chart is fetched in the background when it is not cached.
func (m *Manager) Open(ctx context.Context, e Entry) error {
	if e.ID <= 0 {
		return ErrInvalidTab
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.isOpenLocked(e.ID) {
		m.tabs = append(m.tabs, e)
		recordTabs(ctx, 1)
	}
	m.active = e.ID
	m.fetchLocked(e.ID)
	m.persistLocked(ctx)
	return nil
}

// Close removes a tab and drops its chart. When the closed tab was active the
// pointer moves to the entry at index-1 of the remaining list (index taken
// before removal), else to the first remaining entry, else home.
func (m *Manager) Close(ctx context.Context, id int64) error {
	if IsSentinel(id) {
		return ErrSentinelTab
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	_, idx, ok := lo.FindIndexOf(m.tabs, func(e Entry) bool { return e.ID == id })
	if !ok {
		return nil
	}

	m.tabs = slices.Delete(slices.Clone(m.tabs), idx, idx+1)
	delete(m.charts, id)
	recordTabs(ctx, -1)

	if m.active == id {
		m.active = nextActive(m.tabs, idx)
	}
	m.persistLocked(ctx)
	return nil
}

func nextActive(remaining []Entry, closedIndex int) int64 {
	switch {
	case closedIndex > 0:
		return remaining[closedIndex-1].ID
	case len(remaining) > 0:
		return remaining[0].ID
	default:
		return TabHome
	}
}

// Activate moves the pointer to a sentinel or an open tab, fetching the chart
// if it is not cached.
func (m *Manager) Activate(ctx context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	switch {
	case IsSentinel(id):
	case m.isOpenLocked(id):
		m.fetchLocked(id)
	default:
		return ErrTabNotOpen
	}

	m.active = id
	m.persistLocked(ctx)
	return nil
}

// SyncEntry refreshes the tab entry of id from its loaded chart, so a renamed
// patient or a corrected date of birth shows on the tab strip. It reports
// whether the entry changed.
func (m *Manager) SyncEntry(ctx context.Context, id int64) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	ch, ok := m.charts[id]
	if !ok {
		return false
	}
	_, idx, ok := lo.FindIndexOf(m.tabs, func(e Entry) bool { return e.ID == id })
	if !ok {
		return false
	}
	p := ch.Profile()
	next := NewEntry(p.ID, p.FirstName, p.LastName, p.DOB)
	if m.tabs[idx] == next {
		return false
	}
	m.tabs = slices.Clone(m.tabs)
	m.tabs[idx] = next
	m.persistLocked(ctx)
	return true
}

// Chart returns the loaded chart of an open tab. It is absent while the
// first fetch is in flight or after it failed.
func (m *Manager) Chart(id int64) (*chart.Context, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.charts[id]
	return c, ok
}

// IsOpen reports whether id is an open patient tab.
func (m *Manager) IsOpen(id int64) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.isOpenLocked(id)
}

func (m *Manager) Active() int64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.active
}

func (m *Manager) Snapshot() State {
	m.mu.Lock()
	defer m.mu.Unlock()

	st := State{
		Tabs:    slices.Clone(m.tabs),
		Active:  m.active,
		Loaded:  []int64{},
		Loading: []int64{},
	}
	if st.Tabs == nil {
		st.Tabs = []Entry{}
	}
	for _, e := range m.tabs {
		if _, ok := m.charts[e.ID]; ok {
			st.Loaded = append(st.Loaded, e.ID)
		}
		if _, ok := m.loading[e.ID]; ok {
			st.Loading = append(st.Loading, e.ID)
		}
	}
	return st
}

// Restore replaces the in-memory state with the persisted one and warms the
// chart of every restored tab. Duplicate entries are dropped and an active
// pointer naming a tab that is not open falls back to home.
func (m *Manager) Restore(ctx context.Context) error {
	tabs, active, err := m.store.Load(ctx, m.owner)
	if err != nil {
		if !errors.Is(err, ErrCorruptState) {
			return err
		}
		m.logger.Warn("discarding corrupt workspace state", "error", err)
		tabs, active = nil, TabHome
	}

	tabs = lo.UniqBy(lo.Filter(tabs, func(e Entry, _ int) bool { return e.ID > 0 }),
		func(e Entry) int64 { return e.ID })

	m.mu.Lock()
	recordTabs(ctx, int64(len(tabs)-len(m.tabs)))
	m.tabs = tabs
	m.charts = map[int64]*chart.Context{}
	m.active = active
	if !IsSentinel(active) && !m.isOpenLocked(active) {
		m.active = TabHome
	}

	var warm []int64
	for _, e := range m.tabs {
		if m.claimLocked(e.ID) {
			warm = append(warm, e.ID)
		}
	}
	m.mu.Unlock()

	if len(warm) > 0 {
		m.wg.Go(func() {
			p := pool.New().WithMaxGoroutines(m.opts.WarmConcurrency)
			for _, id := range warm {
				p.Go(func() { m.fetch(id) })
			}
			p.Wait()
		})
	}
	return nil
}

// Wait blocks until every background fetch started so far has finished.
func (m *Manager) Wait() {
	m.wg.Wait()
}

func (m *Manager) isOpenLocked(id int64) bool {
	return lo.ContainsBy(m.tabs, func(e Entry) bool { return e.ID == id })
}

// claimLocked marks id as loading unless it is cached or already loading.
func (m *Manager) claimLocked(id int64) bool {
	if _, ok := m.charts[id]; ok {
		return false
	}
	if _, ok := m.loading[id]; ok {
		return false
	}
	m.loading[id] = struct{}{}
	return true
}

func (m *Manager) fetchLocked(id int64) {
	if !m.claimLocked(id) {
		return
	}
	m.wg.Go(func() { m.fetch(id) })
}

func (m *Manager) fetch(id int64) {
	ctx := context.Background()
	if m.opts.FetchTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, m.opts.FetchTimeout)
		defer cancel()
	}

	ctx, span := tracer.Start(ctx, "workspace.fetch", trace.WithAttributes(attribute.Int64("patient.id", id)))
	defer span.End()

	profile, err := m.fetcher.FullProfile(ctx, id)
	if err == nil && profile == nil {
		err = errors.New("empty profile")
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "profile fetch failed")
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.loading, id)

	if err != nil {
		recordFetch(ctx, "error")
		m.logger.Error("failed to fetch patient profile", "patient_id", id, "error", err)
		return
	}
	if !m.isOpenLocked(id) {
		recordFetch(ctx, "discarded")
		return
	}
	recordFetch(ctx, "ok")
	m.charts[id] = chart.New(m.fetcher, profile, m.opts.Logger)
}

// retire stops the manager from persisting. Called on eviction so a stale
// manager can not overwrite the state of its successor.
func (m *Manager) retire() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.retired = true
}

func (m *Manager) persistLocked(ctx context.Context) {
	if m.retired {
		m.logger.Debug("workspace retired, change kept in memory only")
		return
	}
	if err := m.store.Save(ctx, m.owner, m.tabs, m.active); err != nil {
		m.logger.Warn("failed to persist workspace", "error", err)
	}
}
