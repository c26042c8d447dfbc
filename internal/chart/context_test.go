package chart

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Alijeyrad/medchart/internal/patient"
)

type fakeFetcher struct {
	mu       sync.Mutex
	profiles map[int64]*patient.Profile
	err      error
	calls    atomic.Int32
}

func (f *fakeFetcher) FullProfile(_ context.Context, id int64) (*patient.Profile, error) {
	f.calls.Add(1)
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	p, ok := f.profiles[id]
	if !ok {
		return nil, errors.New("not found")
	}
	return p, nil
}

func (f *fakeFetcher) set(p *patient.Profile, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if p != nil {
		f.profiles[p.ID] = p
	}
	f.err = err
}

func profile(id int64, allergies ...string) *patient.Profile {
	p := &patient.Profile{ID: id, FirstName: "Grace", LastName: "Hopper", Phone: "+15555550100"}
	for i, a := range allergies {
		p.Allergies = append(p.Allergies, patient.Allergy{ID: int64(i + 1), Allergen: a})
	}
	return p
}

func newContext(t *testing.T, p *patient.Profile) (*Context, *fakeFetcher) {
	t.Helper()
	f := &fakeFetcher{profiles: map[int64]*patient.Profile{p.ID: p}}
	return New(f, p, nil), f
}

func TestRefetchReplacesWholeAggregate(t *testing.T) {
	c, f := newContext(t, profile(1, "Peanut", "Latex"))

	f.set(profile(1, "Peanut"), nil)
	require.NoError(t, c.Refetch(context.Background()))

	got := c.Profile()
	require.Len(t, got.Allergies, 1, "records removed server side disappear")
	assert.Equal(t, "Peanut", got.Allergies[0].Allergen)
	assert.Equal(t, uint64(1), c.Version())
}

func TestRefetchFailureKeepsPreviousData(t *testing.T) {
	c, f := newContext(t, profile(1, "Peanut"))
	notified := 0
	c.Subscribe(func(*patient.Profile) { notified++ })

	f.set(nil, errors.New("network down"))
	err := c.Refetch(context.Background())
	require.Error(t, err)

	assert.Equal(t, "Peanut", c.Profile().Allergies[0].Allergen)
	assert.Equal(t, uint64(0), c.Version())
	assert.Zero(t, notified)
}

func TestProfileIsASnapshot(t *testing.T) {
	c, _ := newContext(t, profile(1, "Peanut"))

	snap := c.Profile()
	snap.FirstName = "changed"
	snap.Allergies[0].Allergen = "changed"

	again := c.Profile()
	assert.Equal(t, "Grace", again.FirstName)
	assert.Equal(t, "Peanut", again.Allergies[0].Allergen)
}

func TestUpdateFieldMergesOneField(t *testing.T) {
	c, f := newContext(t, profile(1, "Peanut"))

	require.NoError(t, c.UpdateField("phone", "555-0199"))

	got := c.Profile()
	assert.Equal(t, "555-0199", got.Phone)
	assert.Equal(t, "Grace", got.FirstName)
	assert.Len(t, got.Allergies, 1)
	assert.Zero(t, f.calls.Load(), "no round trip")
}

func TestUpdateFieldWeakDecoding(t *testing.T) {
	c, _ := newContext(t, profile(1))

	require.NoError(t, c.UpdateField("dob", "1906-12-09"))
	assert.Equal(t, time.Date(1906, 12, 9, 0, 0, 0, 0, time.UTC), c.Profile().DOB)

	require.NoError(t, c.UpdateField("insurance_member_id", 12345))
	assert.Equal(t, "12345", c.Profile().InsuranceMemberID)
}

func TestUpdateFieldReplacesListFields(t *testing.T) {
	c, _ := newContext(t, profile(1, "Peanut", "Latex", "Penicillin"))

	require.NoError(t, c.UpdateField("allergies", []patient.Allergy{{ID: 9, Allergen: "Dust"}}))
	got := c.Profile().Allergies
	require.Len(t, got, 1)
	assert.Equal(t, patient.Allergy{ID: 9, Allergen: "Dust"}, got[0])

	// decoded JSON never merges into the element at the same index
	require.NoError(t, c.UpdateField("allergies", []any{map[string]any{"id": 5}}))
	got = c.Profile().Allergies
	require.Len(t, got, 1)
	assert.Equal(t, int64(5), got[0].ID)
	assert.Empty(t, got[0].Allergen)

	require.NoError(t, c.UpdateField("allergies", []any{}))
	assert.Empty(t, c.Profile().Allergies)
	assert.Equal(t, uint64(3), c.Version())
}

func TestUpdateFieldReplacesMapFields(t *testing.T) {
	p := profile(1)
	p.History = map[patient.HistoryKind][]patient.HistoryNote{
		patient.HistoryHabits: {{ID: 1, Kind: patient.HistoryHabits, Note: "smokes"}},
	}
	c, _ := newContext(t, p)

	require.NoError(t, c.UpdateField("history", map[string]any{}))
	assert.Empty(t, c.Profile().History)

	require.NoError(t, c.UpdateField("history", map[string]any{
		"diet": []any{map[string]any{"id": 2, "note": "vegan", "created_at": "2024-03-01"}},
	}))
	h := c.Profile().History
	require.Len(t, h, 1)
	require.Len(t, h[patient.HistoryDiet], 1)
	assert.Equal(t, "vegan", h[patient.HistoryDiet][0].Note)
	assert.Equal(t, time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC), h[patient.HistoryDiet][0].CreatedAt)
}

func TestUpdateFieldTypedValueIsCopied(t *testing.T) {
	c, _ := newContext(t, profile(1))
	created := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	in := []patient.Allergy{{ID: 3, Allergen: "Egg", CreatedAt: created}}

	require.NoError(t, c.UpdateField("allergies", in))
	in[0].Allergen = "changed"

	got := c.Profile().Allergies
	assert.Equal(t, "Egg", got[0].Allergen)
	assert.Equal(t, created, got[0].CreatedAt)
}

func TestUpdateFieldRejectsUnknownAndImmutable(t *testing.T) {
	c, _ := newContext(t, profile(1))

	require.ErrorIs(t, c.UpdateField("favourite_colour", "blue"), ErrUnknownField)
	require.ErrorIs(t, c.UpdateField("id", 2), ErrImmutableField)
	assert.Equal(t, uint64(0), c.Version())
}

func TestUpdateFieldLastWriteWins(t *testing.T) {
	c, _ := newContext(t, profile(1))

	require.NoError(t, c.UpdateField("pronouns", "she/her"))
	require.NoError(t, c.UpdateField("pronouns", "they/them"))
	assert.Equal(t, "they/them", c.Profile().Pronouns)
	assert.Equal(t, uint64(2), c.Version())
}

func TestSubscribersNotifiedOncePerChange(t *testing.T) {
	c, _ := newContext(t, profile(1))

	var (
		a, b int
		last string
	)
	unsubA := c.Subscribe(func(*patient.Profile) { a++ })
	c.Subscribe(func(p *patient.Profile) {
		b++
		last = p.Address
	})

	require.NoError(t, c.UpdateField("address", "new"))
	assert.Equal(t, "new", last)

	unsubA()
	unsubA()
	require.NoError(t, c.Refetch(context.Background()))

	assert.Equal(t, 1, a)
	assert.Equal(t, 2, b)
	assert.Empty(t, last, "refetch restores the server value")
}

func TestRefetchUsesHeldPatientID(t *testing.T) {
	c, f := newContext(t, profile(7))
	f.set(profile(8), nil)

	require.NoError(t, c.Refetch(context.Background()))
	assert.Equal(t, int64(7), c.Profile().ID)
}

func TestEditingSetIsPerWidget(t *testing.T) {
	c, _ := newContext(t, profile(1))

	c.Editing("allergies").Add(3)
	assert.True(t, c.Editing("allergies").Contains(3))
	assert.False(t, c.Editing("problems").Contains(3))
}

func TestConcurrentRefetchAndRead(t *testing.T) {
	c, _ := newContext(t, profile(1, "Peanut"))

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			_ = c.Refetch(context.Background())
		}()
		go func() {
			defer wg.Done()
			_ = c.Profile()
		}()
	}
	wg.Wait()
	assert.Equal(t, uint64(20), c.Version())
}
