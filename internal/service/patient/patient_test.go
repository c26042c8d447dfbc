package patient

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Alijeyrad/medchart/internal/patient"
	"github.com/Alijeyrad/medchart/internal/service/demographics"
	"github.com/Alijeyrad/medchart/internal/store"
	"github.com/Alijeyrad/medchart/pkg/validate"
)

type fakeRepo struct {
	got   store.NewPatient
	calls int
}

func (f *fakeRepo) CreatePatient(_ context.Context, in store.NewPatient) (*patient.Patient, error) {
	f.calls++
	f.got = in
	return &patient.Patient{ID: 77, FirstName: in.FirstName, LastName: in.LastName, DOB: in.DOB}, nil
}

func newService(repo *fakeRepo) Service {
	return New(repo, demographics.New(nil, demographics.Config{PhoneRegion: "US"}))
}

func TestCreateNormalizesContact(t *testing.T) {
	repo := &fakeRepo{}
	p, err := newService(repo).Create(context.Background(), CreatePatientRequest{
		FirstName: " Ada ",
		LastName:  "Lovelace",
		DOB:       "1990-12-10",
		Phone:     "201 555 0123",
		Email:     "Ada@Example.com",
	})
	require.NoError(t, err)
	assert.Equal(t, int64(77), p.ID)
	assert.Equal(t, "Ada", repo.got.FirstName)
	assert.Equal(t, time.Date(1990, 12, 10, 0, 0, 0, 0, time.UTC), repo.got.DOB)
	assert.Equal(t, "+12015550123", repo.got.Phone)
	assert.Equal(t, "ada@example.com", repo.got.Email)
}

func TestCreateValidation(t *testing.T) {
	repo := &fakeRepo{}
	_, err := newService(repo).Create(context.Background(), CreatePatientRequest{FirstName: "Ada", DOB: "10/12/1990"})

	var verr *validate.Error
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "is required", verr.Fields["last_name"])
	assert.Equal(t, "must be a date formatted as 2006-01-02", verr.Fields["dob"])
	assert.Zero(t, repo.calls)
}

func TestCreateRejectsBadPhone(t *testing.T) {
	repo := &fakeRepo{}
	_, err := newService(repo).Create(context.Background(), CreatePatientRequest{
		FirstName: "Ada", LastName: "Lovelace", DOB: "1990-12-10", Phone: "12",
	})
	var verr *validate.Error
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Fields, "phone")
	assert.Zero(t, repo.calls)
}
