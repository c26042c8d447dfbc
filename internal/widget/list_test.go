package widget

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Alijeyrad/medchart/internal/action"
	"github.com/Alijeyrad/medchart/internal/chart"
	"github.com/Alijeyrad/medchart/internal/patient"
	"github.com/Alijeyrad/medchart/pkg/validate"
)

type noteInput struct {
	Note string `json:"note" validate:"required"`
}

// notesBackend is an in-memory server for diet history notes.
type notesBackend struct {
	mu      sync.Mutex
	notes   []patient.HistoryNote
	nextID  int64
	fail    error
	fetches int

	// fetchFail breaks profile reloads without touching writes
	fetchFail error
}

func (b *notesBackend) FullProfile(_ context.Context, id int64) (*patient.Profile, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.fetches++
	if b.fetchFail != nil {
		return nil, b.fetchFail
	}
	return &patient.Profile{
		ID:      id,
		History: map[patient.HistoryKind][]patient.HistoryNote{patient.HistoryDiet: append([]patient.HistoryNote(nil), b.notes...)},
	}, nil
}

func (b *notesBackend) actions() Actions[noteInput] {
	return Actions[noteInput]{
		Create: func(ctx context.Context, patientID int64, in noteInput) action.Result {
			return action.Run(ctx, nil, "create note", "created", func(context.Context) (any, error) {
				b.mu.Lock()
				defer b.mu.Unlock()
				if b.fail != nil {
					return nil, b.fail
				}
				b.nextID++
				b.notes = append(b.notes, patient.HistoryNote{
					ID: b.nextID, PatientID: patientID, Kind: patient.HistoryDiet, Note: in.Note,
					CreatedAt: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC).Add(time.Duration(b.nextID) * time.Hour),
				})
				return b.nextID, nil
			})
		},
		Edit: func(ctx context.Context, _ int64, id int64, in noteInput) action.Result {
			return action.Run(ctx, nil, "edit note", "updated", func(context.Context) (any, error) {
				b.mu.Lock()
				defer b.mu.Unlock()
				if b.fail != nil {
					return nil, b.fail
				}
				for i := range b.notes {
					if b.notes[i].ID == id {
						b.notes[i].Note = in.Note
						return nil, nil
					}
				}
				return nil, errors.New("not found")
			})
		},
		Delete: func(ctx context.Context, _ int64, id int64) action.Result {
			return action.Run(ctx, nil, "delete note", "deleted", func(context.Context) (any, error) {
				b.mu.Lock()
				defer b.mu.Unlock()
				if b.fail != nil {
					return nil, b.fail
				}
				for i := range b.notes {
					if b.notes[i].ID == id {
						b.notes = append(b.notes[:i], b.notes[i+1:]...)
						return nil, nil
					}
				}
				return nil, errors.New("not found")
			})
		},
	}
}

func selectDiet(p *patient.Profile) []patient.HistoryNote {
	return p.History[patient.HistoryDiet]
}

func newDietList(t *testing.T) (*List[patient.HistoryNote, noteInput], *notesBackend, *chart.Context) {
	t.Helper()
	b := &notesBackend{}
	initial, err := b.FullProfile(context.Background(), 1)
	require.NoError(t, err)
	c := chart.New(b, initial, nil)
	return NewList("diet", c, selectDiet, b.actions()), b, c
}

func notes(recs []patient.HistoryNote) []string {
	out := make([]string, 0, len(recs))
	for _, r := range recs {
		out = append(out, r.Note)
	}
	return out
}

func TestCreateAppearsOnlyAfterRefetch(t *testing.T) {
	l, b, c := newDietList(t)
	ctx := context.Background()

	res := l.Create(ctx, noteInput{Note: "vegetarian"})
	require.True(t, res.ActionSucceeded)
	assert.Equal(t, []string{"vegetarian"}, notes(l.Records()))
	assert.Equal(t, uint64(1), c.Version())
	assert.Equal(t, 2, b.fetches)
}

func TestFailedActionLeavesListUnchanged(t *testing.T) {
	l, b, c := newDietList(t)
	ctx := context.Background()
	require.True(t, l.Create(ctx, noteInput{Note: "keto"}).ActionSucceeded)

	b.fail = errors.New("db unavailable")
	for _, res := range []action.Result{
		l.Create(ctx, noteInput{Note: "paleo"}),
		l.Edit(ctx, 1, noteInput{Note: "paleo"}),
		l.Delete(ctx, 1),
	} {
		assert.False(t, res.ActionSucceeded)
		assert.Contains(t, res.Message, "db unavailable")
	}
	assert.Equal(t, []string{"keto"}, notes(l.Records()))
	assert.Equal(t, uint64(1), c.Version())
}

func TestFailedReloadMarksResultStale(t *testing.T) {
	l, b, c := newDietList(t)
	ctx := context.Background()
	require.True(t, l.Create(ctx, noteInput{Note: "keto"}).ActionSucceeded)

	b.fetchFail = errors.New("profile service down")
	for _, res := range []action.Result{
		l.Create(ctx, noteInput{Note: "paleo"}),
		l.Edit(ctx, 1, noteInput{Note: "low sodium"}),
		l.Delete(ctx, 2),
	} {
		assert.True(t, res.ActionSucceeded)
		assert.True(t, res.Stale)
		assert.Contains(t, res.Message, "chart not refreshed")
	}
	// writes landed, the chart still shows the last good aggregate
	assert.Equal(t, []string{"keto"}, notes(l.Records()))
	assert.Equal(t, uint64(1), c.Version())

	b.fetchFail = nil
	res := l.Create(ctx, noteInput{Note: "vegan"})
	assert.False(t, res.Stale)
	assert.Equal(t, []string{"low sodium", "vegan"}, notes(l.Records()))
}

func TestEditClearsEditModeOnSuccessOnly(t *testing.T) {
	l, b, _ := newDietList(t)
	ctx := context.Background()
	require.True(t, l.Create(ctx, noteInput{Note: "keto"}).ActionSucceeded)

	assert.True(t, l.ToggleEdit(1))
	b.fail = errors.New("nope")
	l.Edit(ctx, 1, noteInput{Note: "x"})
	assert.True(t, l.Editing(1), "failed edit stays in edit mode")

	b.fail = nil
	require.True(t, l.Edit(ctx, 1, noteInput{Note: "low carb"}).ActionSucceeded)
	assert.False(t, l.Editing(1))
	assert.Equal(t, []string{"low carb"}, notes(l.Records()))
}

func TestDeleteClearsEditModeRegardless(t *testing.T) {
	l, b, _ := newDietList(t)
	ctx := context.Background()
	require.True(t, l.Create(ctx, noteInput{Note: "keto"}).ActionSucceeded)

	l.ToggleEdit(1)
	b.fail = errors.New("nope")
	l.Delete(ctx, 1)
	assert.False(t, l.Editing(1))
	assert.Len(t, l.Records(), 1)

	b.fail = nil
	require.True(t, l.Delete(ctx, 1).ActionSucceeded)
	assert.Empty(t, l.Records())
}

func TestToggleEdit(t *testing.T) {
	l, _, c := newDietList(t)
	assert.True(t, l.ToggleEdit(4))
	assert.True(t, l.Editing(4))
	assert.True(t, c.Editing("diet").Contains(4), "flags live on the chart")
	assert.False(t, l.ToggleEdit(4))
	assert.False(t, l.Editing(4))
}

func TestRecordsSortedByCreation(t *testing.T) {
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	p := &patient.Profile{ID: 1, Allergies: []patient.Allergy{
		{ID: 3, Allergen: "c", CreatedAt: base.Add(2 * time.Hour)},
		{ID: 2, Allergen: "b", CreatedAt: base},
		{ID: 1, Allergen: "a", CreatedAt: base},
	}}
	c := chart.New(&notesBackend{}, p, nil)
	l := NewList("allergies", c, func(p *patient.Profile) []patient.Allergy { return p.Allergies }, Actions[noteInput]{})

	got := l.Records()
	require.Len(t, got, 3)
	assert.Equal(t, []int64{1, 2, 3}, []int64{got[0].ID, got[1].ID, got[2].ID})
}

func TestKindValidatesBeforeAction(t *testing.T) {
	b := &notesBackend{}
	initial, _ := b.FullProfile(context.Background(), 1)
	c := chart.New(b, initial, nil)
	k := NewKind("diet", selectDiet, b.actions())

	_, err := k.Create(context.Background(), c, []byte(`{"note":""}`))
	var verr *validate.Error
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "is required", verr.Fields["note"])

	_, err = k.Create(context.Background(), c, []byte(`{`))
	var bad ErrBadBody
	require.ErrorAs(t, err, &bad)
	assert.Empty(t, b.notes)

	res, err := k.Create(context.Background(), c, []byte(`{"note":"vegan"}`))
	require.NoError(t, err)
	assert.True(t, res.ActionSucceeded)

	items := k.Items(c).([]Item[patient.HistoryNote])
	require.Len(t, items, 1)
	assert.Equal(t, "vegan", items[0].Record.Note)
	assert.False(t, items[0].Editing)
	assert.Equal(t, "diet", k.Name())
}
