package workspace

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistryReturnsSameManager(t *testing.T) {
	r, err := NewRegistry(2, newFakeFetcher(), NewMemoryStore(), Options{})
	require.NoError(t, err)
	ctx := context.Background()

	a, err := r.Get(ctx, "doc-1")
	require.NoError(t, err)
	b, err := r.Get(ctx, "doc-1")
	require.NoError(t, err)
	assert.Same(t, a, b)
}

func TestRegistryRebuildsEvictedManagerFromStore(t *testing.T) {
	store := NewMemoryStore()
	r, err := NewRegistry(1, newFakeFetcher(), store, Options{})
	require.NoError(t, err)
	ctx := context.Background()

	first, err := r.Get(ctx, "doc-1")
	require.NoError(t, err)
	require.NoError(t, first.Open(ctx, entry(10)))
	require.NoError(t, first.Open(ctx, entry(11)))

	_, err = r.Get(ctx, "doc-2")
	require.NoError(t, err)
	assert.Equal(t, 1, r.Len())

	again, err := r.Get(ctx, "doc-1")
	require.NoError(t, err)
	assert.NotSame(t, first, again)
	r.Wait()

	st := again.Snapshot()
	assert.Equal(t, []int64{10, 11}, ids(st.Tabs))
	assert.Equal(t, int64(11), st.Active)
	assert.ElementsMatch(t, []int64{10, 11}, st.Loaded)
}

func TestRegistryRejectsInvalidSize(t *testing.T) {
	_, err := NewRegistry(0, newFakeFetcher(), NewMemoryStore(), Options{})
	require.Error(t, err)
}

// gatedStore holds every Load until gate is closed and counts the loads.
type gatedStore struct {
	*MemoryStore
	gate    chan struct{}
	entered chan struct{}
	loads   atomic.Int32
}

func (s *gatedStore) Load(ctx context.Context, owner string) ([]Entry, int64, error) {
	if s.loads.Add(1) == 1 {
		close(s.entered)
	}
	<-s.gate
	return s.MemoryStore.Load(ctx, owner)
}

func TestRegistryConcurrentFirstGetRestoresOnce(t *testing.T) {
	mem := NewMemoryStore()
	ctx := context.Background()
	require.NoError(t, mem.Save(ctx, "doc-1", []Entry{entry(10)}, 10))

	store := &gatedStore{MemoryStore: mem, gate: make(chan struct{}), entered: make(chan struct{})}
	f := newFakeFetcher()
	r, err := NewRegistry(2, f, store, Options{})
	require.NoError(t, err)

	const callers = 8
	got := make([]*Manager, callers)
	var wg sync.WaitGroup
	for i := range callers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			m, err := r.Get(ctx, "doc-1")
			assert.NoError(t, err)
			got[i] = m
		}()
	}

	<-store.entered
	close(store.gate)
	wg.Wait()
	r.Wait()

	assert.Equal(t, int32(1), store.loads.Load())
	for _, m := range got[1:] {
		assert.Same(t, got[0], m)
	}
	assert.Equal(t, 1, f.callCount(10))
}

func TestEvictedManagerStopsPersisting(t *testing.T) {
	store := NewMemoryStore()
	r, err := NewRegistry(1, newFakeFetcher(), store, Options{})
	require.NoError(t, err)
	ctx := context.Background()

	stale, err := r.Get(ctx, "doc-1")
	require.NoError(t, err)
	require.NoError(t, stale.Open(ctx, entry(10)))

	_, err = r.Get(ctx, "doc-2")
	require.NoError(t, err)

	fresh, err := r.Get(ctx, "doc-1")
	require.NoError(t, err)
	require.NoError(t, fresh.Open(ctx, entry(11)))

	// a request still holding the evicted manager must not clobber the
	// successor's state
	require.NoError(t, stale.Close(ctx, 10))
	r.Wait()
	stale.Wait()

	tabs, active, err := store.Load(ctx, "doc-1")
	require.NoError(t, err)
	assert.Equal(t, []int64{10, 11}, ids(tabs))
	assert.Equal(t, int64(11), active)
}
