package store

import (
	"context"
	"fmt"
	"time"

	entsql "entgo.io/ent/dialect/sql"
	"github.com/sourcegraph/conc/pool"

	"github.com/Alijeyrad/medchart/internal/patient"
)

// DemographicColumns maps the editable single-valued profile fields to their
// column. Keys are the aggregate's JSON field names.
var DemographicColumns = map[string]string{
	"first_name":          "first_name",
	"last_name":           "last_name",
	"dob":                 "dob",
	"sex":                 "sex",
	"pronouns":            "pronouns",
	"phone":               "phone",
	"email":               "email",
	"address":             "address",
	"insurance_provider":  "insurance_provider",
	"insurance_member_id": "insurance_member_id",
	"insurance_group":     "insurance_group",
	"provider_name":       "provider_name",
}

type NewPatient struct {
	FirstName string
	LastName  string
	DOB       time.Time
	Sex       string
	Pronouns  string
	Phone     string
	Email     string
	Address   string
}

func (s *Store) CreatePatient(ctx context.Context, in NewPatient) (*patient.Patient, error) {
	now := s.now()
	id, err := insertID(ctx, s.drv, psql.Insert("patients").
		Columns("first_name", "last_name", "dob", "sex", "pronouns", "phone", "email", "address", "created_at", "updated_at").
		Values(in.FirstName, in.LastName, in.DOB, in.Sex, in.Pronouns, in.Phone, in.Email, in.Address, now, now))
	if err != nil {
		return nil, fmt.Errorf("insert patient: %w", err)
	}
	return &patient.Patient{ID: id, FirstName: in.FirstName, LastName: in.LastName, DOB: in.DOB, CreatedAt: now}, nil
}

// UpdateDemographic sets one single-valued profile field.
func (s *Store) UpdateDemographic(ctx context.Context, patientID int64, field string, value any) error {
	col, ok := DemographicColumns[field]
	if !ok {
		return fmt.Errorf("unknown demographic field %q", field)
	}
	err := execOne(ctx, s.drv, psql.Update("patients").
		Set(col, value).
		Set("updated_at", s.now()).
		Where(entsql.EQ("id", patientID)))
	if err != nil {
		return fmt.Errorf("update patient %d %s: %w", patientID, field, err)
	}
	return nil
}

// SearchPatients matches first or last name, case-insensitively.
func (s *Store) SearchPatients(ctx context.Context, q string, limit int) ([]patient.Patient, error) {
	var out []patient.Patient
	sel := psql.Select("id", "first_name", "last_name", "dob", "created_at").
		From(psql.Table("patients")).
		Where(entsql.Or(entsql.ContainsFold("first_name", q), entsql.ContainsFold("last_name", q))).
		OrderBy("last_name", "first_name").
		Limit(limit)
	err := query(ctx, s.drv, sel, func(rows *entsql.Rows) error {
		var p patient.Patient
		if err := rows.Scan(&p.ID, &p.FirstName, &p.LastName, &p.DOB, &p.CreatedAt); err != nil {
			return err
		}
		out = append(out, p)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("search patients: %w", err)
	}
	return out, nil
}

// FullProfile loads the complete aggregate of one patient. The clinical lists
// are read concurrently once the patient row is known to exist.
func (s *Store) FullProfile(ctx context.Context, patientID int64) (*patient.Profile, error) {
	p, err := s.profileRow(ctx, patientID)
	if err != nil {
		return nil, err
	}

	loaders := []func(context.Context, *patient.Profile) error{
		s.loadAllergies,
		s.loadDrugIntolerances,
		s.loadProblems,
		s.loadAppointments,
		s.loadHistory,
		s.loadFamilyHistory,
		s.loadConfidentialNotes,
		s.loadSurveys,
	}

	lists := make([]patient.Profile, len(loaders))
	pl := pool.New().WithErrors().WithContext(ctx).WithCancelOnError()
	for i, load := range loaders {
		pl.Go(func(ctx context.Context) error {
			lists[i].ID = patientID
			return load(ctx, &lists[i])
		})
	}
	if err := pl.Wait(); err != nil {
		return nil, fmt.Errorf("load profile %d: %w", patientID, err)
	}

	for _, l := range lists {
		mergeLists(p, &l)
	}
	return p, nil
}

func mergeLists(dst, src *patient.Profile) {
	if src.Allergies != nil {
		dst.Allergies = src.Allergies
	}
	if src.DrugIntolerances != nil {
		dst.DrugIntolerances = src.DrugIntolerances
	}
	if src.Problems != nil {
		dst.Problems = src.Problems
	}
	if src.Appointments != nil {
		dst.Appointments = src.Appointments
	}
	if src.History != nil {
		dst.History = src.History
	}
	if src.FamilyHistory != nil {
		dst.FamilyHistory = src.FamilyHistory
	}
	if src.ConfidentialNotes != nil {
		dst.ConfidentialNotes = src.ConfidentialNotes
	}
	if src.Surveys != nil {
		dst.Surveys = src.Surveys
	}
}

func (s *Store) profileRow(ctx context.Context, patientID int64) (*patient.Profile, error) {
	var (
		p     patient.Profile
		found bool
	)
	sel := psql.Select(
		"id", "first_name", "last_name", "dob", "sex", "pronouns",
		"phone", "email", "address",
		"insurance_provider", "insurance_member_id", "insurance_group",
		"provider_name", "created_at", "updated_at",
	).From(psql.Table("patients")).Where(entsql.EQ("id", patientID))

	err := query(ctx, s.drv, sel, func(rows *entsql.Rows) error {
		found = true
		return rows.Scan(
			&p.ID, &p.FirstName, &p.LastName, &p.DOB, &p.Sex, &p.Pronouns,
			&p.Phone, &p.Email, &p.Address,
			&p.InsuranceProvider, &p.InsuranceMemberID, &p.InsuranceGroup,
			&p.ProviderName, &p.CreatedAt, &p.UpdatedAt,
		)
	})
	if err != nil {
		return nil, fmt.Errorf("load patient %d: %w", patientID, err)
	}
	if !found {
		return nil, ErrNotFound
	}

	p.Allergies = []patient.Allergy{}
	p.DrugIntolerances = []patient.DrugIntolerance{}
	p.Problems = []patient.Problem{}
	p.Appointments = []patient.Appointment{}
	p.History = map[patient.HistoryKind][]patient.HistoryNote{}
	p.FamilyHistory = []patient.FamilyHistoryEntry{}
	p.ConfidentialNotes = []patient.ConfidentialNote{}
	p.Surveys = []patient.SurveyResponse{}
	return &p, nil
}
