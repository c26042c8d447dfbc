package store

import (
	"context"
	"database/sql"
	"fmt"

	entsql "entgo.io/ent/dialect/sql"

	"github.com/Alijeyrad/medchart/internal/patient"
)

// AllergyInput carries either a catalogue allergen id or a free-text name.
type AllergyInput struct {
	AllergenID *int64
	Allergen   string
	Reaction   string
	Severity   string
	Note       string
}

func (s *Store) CreateAllergy(ctx context.Context, patientID int64, in AllergyInput) (int64, error) {
	now := s.now()
	id, err := insertID(ctx, s.drv, psql.Insert("allergies").
		Columns("patient_id", "allergen_id", "allergen_name", "reaction", "severity", "note", "created_at", "updated_at").
		Values(patientID, in.AllergenID, in.Allergen, in.Reaction, in.Severity, in.Note, now, now))
	if err != nil {
		return 0, fmt.Errorf("insert allergy: %w", err)
	}
	return id, nil
}

func (s *Store) UpdateAllergy(ctx context.Context, patientID, id int64, in AllergyInput) error {
	err := execOne(ctx, s.drv, psql.Update("allergies").
		Set("allergen_id", in.AllergenID).
		Set("allergen_name", in.Allergen).
		Set("reaction", in.Reaction).
		Set("severity", in.Severity).
		Set("note", in.Note).
		Set("updated_at", s.now()).
		Where(ownedBy(patientID, id)))
	if err != nil {
		return fmt.Errorf("update allergy %d: %w", id, err)
	}
	return nil
}

func (s *Store) DeleteAllergy(ctx context.Context, patientID, id int64) error {
	if err := execOne(ctx, s.drv, psql.Delete("allergies").Where(ownedBy(patientID, id))); err != nil {
		return fmt.Errorf("delete allergy %d: %w", id, err)
	}
	return nil
}

func (s *Store) loadAllergies(ctx context.Context, p *patient.Profile) error {
	a := psql.Table("allergies")
	g := psql.Table("allergens")
	sel := psql.Select().From(a)
	sel = sel.LeftJoin(g).On(a.C("allergen_id"), g.C("id")).
		Select(a.C("id"), a.C("allergen_id"), g.C("name"), a.C("allergen_name"), a.C("reaction"), a.C("severity"), a.C("note"), a.C("created_at")).
		Where(entsql.EQ(a.C("patient_id"), p.ID)).
		OrderBy(a.C("created_at"), a.C("id"))

	return query(ctx, s.drv, sel, func(rows *entsql.Rows) error {
		var (
			al         patient.Allergy
			allergenID sql.NullInt64
			catalogue  sql.NullString
			freeText   string
		)
		if err := rows.Scan(&al.ID, &allergenID, &catalogue, &freeText, &al.Reaction, &al.Severity, &al.Note, &al.CreatedAt); err != nil {
			return err
		}
		al.PatientID = p.ID
		al.Allergen = freeText
		if allergenID.Valid {
			id := allergenID.Int64
			al.AllergenID = &id
		}
		if catalogue.Valid {
			al.Allergen = catalogue.String
		}
		p.Allergies = append(p.Allergies, al)
		return nil
	})
}
