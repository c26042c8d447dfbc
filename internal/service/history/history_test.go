package history

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Alijeyrad/medchart/internal/patient"
	"github.com/Alijeyrad/medchart/internal/store"
)

type fakeRepo struct {
	calls int
	kind  patient.HistoryKind
	note  string
	err   error
}

func (f *fakeRepo) CreateHistoryNote(_ context.Context, _ int64, kind patient.HistoryKind, note string) (int64, error) {
	f.calls++
	f.kind, f.note = kind, note
	return 1, f.err
}

func (f *fakeRepo) UpdateHistoryNote(_ context.Context, _ int64, kind patient.HistoryKind, _ int64, note string) error {
	f.calls++
	f.kind, f.note = kind, note
	return f.err
}

func (f *fakeRepo) DeleteHistoryNote(_ context.Context, _ int64, kind patient.HistoryKind, _ int64) error {
	f.calls++
	f.kind = kind
	return f.err
}

func TestCreateScopedToKind(t *testing.T) {
	repo := &fakeRepo{}
	_, err := New(repo).Create(context.Background(), 1, patient.HistoryExercise, Request{Note: " runs 5k weekly "})
	require.NoError(t, err)
	assert.Equal(t, patient.HistoryExercise, repo.kind)
	assert.Equal(t, "runs 5k weekly", repo.note)
}

func TestUnknownKindNeverReachesStore(t *testing.T) {
	repo := &fakeRepo{}
	svc := New(repo)
	ctx := context.Background()

	_, err := svc.Create(ctx, 1, "astrology", Request{Note: "x"})
	assert.ErrorIs(t, err, ErrUnknownKind)
	assert.ErrorIs(t, svc.Update(ctx, 1, "astrology", 2, Request{Note: "x"}), ErrUnknownKind)
	assert.ErrorIs(t, svc.Delete(ctx, 1, "astrology", 2), ErrUnknownKind)
	assert.Zero(t, repo.calls)
}

func TestNoteOfOtherKindIsNotFound(t *testing.T) {
	err := New(&fakeRepo{err: store.ErrNotFound}).Delete(context.Background(), 1, patient.HistoryDiet, 9)
	assert.ErrorIs(t, err, ErrNotFound)
}
