package store

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"entgo.io/ent/dialect"
	entsql "entgo.io/ent/dialect/sql"
	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Alijeyrad/medchart/internal/patient"
)

type prefixSealer struct{}

func (prefixSealer) Seal(s string) (string, error) { return "sealed:" + s, nil }

func (prefixSealer) Open(s string) (string, error) {
	if !strings.HasPrefix(s, "sealed:") {
		return "", errors.New("not sealed")
	}
	return strings.TrimPrefix(s, "sealed:"), nil
}

var fixedNow = time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)

func newMockStore(t *testing.T) (*Store, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	drv := entsql.OpenDB(dialect.Postgres, db)
	return New(drv, prefixSealer{}, WithClock(func() time.Time { return fixedNow })), mock
}

func patientRow(id int64) *sqlmock.Rows {
	return sqlmock.NewRows([]string{
		"id", "first_name", "last_name", "dob", "sex", "pronouns",
		"phone", "email", "address",
		"insurance_provider", "insurance_member_id", "insurance_group",
		"provider_name", "created_at", "updated_at",
	}).AddRow(
		id, "Ada", "Lovelace", time.Date(1985, 12, 10, 0, 0, 0, 0, time.UTC), "female", "she/her",
		"+15555550100", "ada@example.com", "1 Analytical Way",
		"Acme Health", "M-1", "G-1",
		"Dr. Babbage", fixedNow, fixedNow,
	)
}

func TestFullProfileNotFound(t *testing.T) {
	s, mock := newMockStore(t)
	mock.ExpectQuery(`FROM "patients"`).WillReturnRows(sqlmock.NewRows([]string{"id"}))

	_, err := s.FullProfile(context.Background(), 404)
	require.ErrorIs(t, err, ErrNotFound)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestFullProfileAssemblesAggregate(t *testing.T) {
	s, mock := newMockStore(t)
	mock.MatchExpectationsInOrder(false)
	doctor := uuid.New()
	older := fixedNow.Add(-time.Hour)

	mock.ExpectQuery(`FROM "patients"`).WillReturnRows(patientRow(1))
	mock.ExpectQuery(`FROM "allergies"`).WillReturnRows(
		sqlmock.NewRows([]string{"id", "allergen_id", "name", "allergen_name", "reaction", "severity", "note", "created_at"}).
			AddRow(10, 3, "Penicillin", "", "hives", "moderate", "", older).
			AddRow(11, nil, nil, "Cat dander", "sneezing", "mild", "", fixedNow),
	)
	mock.ExpectQuery(`FROM "drug_intolerances"`).WillReturnRows(
		sqlmock.NewRows([]string{"id", "drug_id", "name", "reaction", "note", "created_at"}).
			AddRow(20, 5, "Codeine", "nausea", "", fixedNow),
	)
	mock.ExpectQuery(`FROM "problems"`).WillReturnRows(
		sqlmock.NewRows([]string{"id", "description", "status", "note", "created_at"}).
			AddRow(30, "Hypertension", "active", "", fixedNow),
	)
	mock.ExpectQuery(`FROM "problem_codes"`).WillReturnRows(
		sqlmock.NewRows([]string{"problem_id", "code", "description"}).
			AddRow(30, "I10", "Essential (primary) hypertension"),
	)
	mock.ExpectQuery(`FROM "appointments"`).WillReturnRows(
		sqlmock.NewRows([]string{"id", "doctor_id", "starts_at", "ends_at", "reason", "status", "created_at"}).
			AddRow(40, doctor.String(), fixedNow, fixedNow.Add(30*time.Minute), "follow-up", "scheduled", fixedNow),
	)
	mock.ExpectQuery(`FROM "history_notes"`).WillReturnRows(
		sqlmock.NewRows([]string{"id", "kind", "note", "created_at"}).
			AddRow(50, "diet", "vegetarian", fixedNow).
			AddRow(51, "exercise", "runs twice a week", fixedNow),
	)
	mock.ExpectQuery(`FROM "family_history"`).WillReturnRows(
		sqlmock.NewRows([]string{"id", "relative", "condition", "note", "created_at"}).
			AddRow(60, "mother", "type 2 diabetes", "", fixedNow),
	)
	mock.ExpectQuery(`FROM "confidential_notes"`).WillReturnRows(
		sqlmock.NewRows([]string{"id", "author_id", "body_encrypted", "created_at"}).
			AddRow(70, doctor.String(), "sealed:private", fixedNow).
			AddRow(71, doctor.String(), "garbage", fixedNow),
	)
	mock.ExpectQuery(`FROM "survey_responses"`).WillReturnRows(
		sqlmock.NewRows([]string{"id", "survey", "score", "answers", "created_at"}).
			AddRow(80, "phq9", 12, []byte(`{"q1":"often"}`), fixedNow),
	)

	p, err := s.FullProfile(context.Background(), 1)
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())

	assert.Equal(t, "Ada", p.FirstName)
	assert.Equal(t, "Dr. Babbage", p.ProviderName)

	require.Len(t, p.Allergies, 2)
	assert.Equal(t, "Penicillin", p.Allergies[0].Allergen)
	require.NotNil(t, p.Allergies[0].AllergenID)
	assert.Equal(t, int64(3), *p.Allergies[0].AllergenID)
	assert.Equal(t, "Cat dander", p.Allergies[1].Allergen)
	assert.Nil(t, p.Allergies[1].AllergenID)

	require.Len(t, p.DrugIntolerances, 1)
	assert.Equal(t, "Codeine", p.DrugIntolerances[0].Drug)

	require.Len(t, p.Problems, 1)
	assert.Equal(t, []patient.ICD10Code{{Code: "I10", Description: "Essential (primary) hypertension"}}, p.Problems[0].Codes)

	require.Len(t, p.Appointments, 1)
	assert.Equal(t, doctor, p.Appointments[0].DoctorID)

	assert.Len(t, p.History[patient.HistoryDiet], 1)
	assert.Len(t, p.History[patient.HistoryExercise], 1)
	assert.Empty(t, p.History[patient.HistorySocial])

	require.Len(t, p.FamilyHistory, 1)
	assert.Equal(t, patient.RelativeMother, p.FamilyHistory[0].Relative)

	require.Len(t, p.ConfidentialNotes, 1, "undecryptable notes are skipped")
	assert.Equal(t, "private", p.ConfidentialNotes[0].Body)

	require.Len(t, p.Surveys, 1)
	assert.Equal(t, "often", p.Surveys[0].Answers["q1"])
}

func TestFullProfileEmptyListsAreNotNil(t *testing.T) {
	s, mock := newMockStore(t)
	mock.MatchExpectationsInOrder(false)

	mock.ExpectQuery(`FROM "patients"`).WillReturnRows(patientRow(2))
	for _, table := range []string{"allergies", "drug_intolerances", "problems", "appointments", "history_notes", "family_history", "confidential_notes", "survey_responses"} {
		mock.ExpectQuery(`FROM "` + table + `"`).WillReturnRows(sqlmock.NewRows([]string{"id"}))
	}

	p, err := s.FullProfile(context.Background(), 2)
	require.NoError(t, err)
	assert.NotNil(t, p.Allergies)
	assert.NotNil(t, p.Problems)
	assert.NotNil(t, p.History)
	assert.NotNil(t, p.Surveys)
}

func TestCreateAllergyReturnsID(t *testing.T) {
	s, mock := newMockStore(t)
	mock.ExpectQuery(`INSERT INTO "allergies"`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(7))

	id, err := s.CreateAllergy(context.Background(), 1, AllergyInput{Allergen: "Latex", Severity: "severe"})
	require.NoError(t, err)
	assert.Equal(t, int64(7), id)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateAllergyNotFound(t *testing.T) {
	s, mock := newMockStore(t)
	mock.ExpectExec(`UPDATE "allergies"`).WillReturnResult(sqlmock.NewResult(0, 0))

	err := s.UpdateAllergy(context.Background(), 1, 99, AllergyInput{Allergen: "Latex"})
	require.ErrorIs(t, err, ErrNotFound)
}

func TestDeleteHistoryNoteScopedByKind(t *testing.T) {
	s, mock := newMockStore(t)
	mock.ExpectExec(`DELETE FROM "history_notes" WHERE .*"kind"`).
		WithArgs(int64(5), int64(1), "diet").
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, s.DeleteHistoryNote(context.Background(), 1, patient.HistoryDiet, 5))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateProblemWritesCodesInTransaction(t *testing.T) {
	s, mock := newMockStore(t)
	mock.ExpectBegin()
	mock.ExpectQuery(`INSERT INTO "problems"`).WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(12))
	mock.ExpectExec(`INSERT INTO "problem_codes"`).
		WithArgs(int64(12), "E11.9", int64(12), "I10").
		WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectCommit()

	id, err := s.CreateProblem(context.Background(), 1, ProblemInput{
		Description: "Diabetes with hypertension",
		Status:      "active",
		Codes:       []string{"E11.9", "I10"},
	})
	require.NoError(t, err)
	assert.Equal(t, int64(12), id)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateProblemRollsBackOnCodeFailure(t *testing.T) {
	s, mock := newMockStore(t)
	mock.ExpectBegin()
	mock.ExpectQuery(`INSERT INTO "problems"`).WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(12))
	mock.ExpectExec(`INSERT INTO "problem_codes"`).
		WillReturnError(&pq.Error{Code: "23503", Constraint: "problem_codes_icd10_codes_code"})
	mock.ExpectRollback()

	_, err := s.CreateProblem(context.Background(), 1, ProblemInput{Description: "x", Codes: []string{"ZZZ"}})
	require.ErrorIs(t, err, ErrInvalidReference)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateConfidentialNoteStoresCiphertext(t *testing.T) {
	s, mock := newMockStore(t)
	author := uuid.New()
	mock.ExpectQuery(`INSERT INTO "confidential_notes"`).
		WithArgs(int64(1), sqlmock.AnyArg(), "sealed:secret", fixedNow, fixedNow).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(3))

	id, err := s.CreateConfidentialNote(context.Background(), 1, author, "secret")
	require.NoError(t, err)
	assert.Equal(t, int64(3), id)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateDemographicRejectsUnknownField(t *testing.T) {
	s, _ := newMockStore(t)
	err := s.UpdateDemographic(context.Background(), 1, "allergies", "x")
	require.Error(t, err)
}

func TestSearchDrugs(t *testing.T) {
	s, mock := newMockStore(t)
	mock.ExpectQuery(`FROM "drugs" WHERE .*ILIKE`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name"}).AddRow(1, "Amoxicillin").AddRow(2, "Ampicillin"))

	drugs, err := s.SearchDrugs(context.Background(), "am", 10)
	require.NoError(t, err)
	assert.Equal(t, []patient.Drug{{ID: 1, Name: "Amoxicillin"}, {ID: 2, Name: "Ampicillin"}}, drugs)
}
