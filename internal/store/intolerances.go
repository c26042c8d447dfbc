package store

import (
	"context"
	"fmt"

	entsql "entgo.io/ent/dialect/sql"

	"github.com/Alijeyrad/medchart/internal/patient"
)

type DrugIntoleranceInput struct {
	DrugID   int64
	Reaction string
	Note     string
}

func (s *Store) CreateDrugIntolerance(ctx context.Context, patientID int64, in DrugIntoleranceInput) (int64, error) {
	now := s.now()
	id, err := insertID(ctx, s.drv, psql.Insert("drug_intolerances").
		Columns("patient_id", "drug_id", "reaction", "note", "created_at", "updated_at").
		Values(patientID, in.DrugID, in.Reaction, in.Note, now, now))
	if err != nil {
		return 0, fmt.Errorf("insert drug intolerance: %w", err)
	}
	return id, nil
}

func (s *Store) UpdateDrugIntolerance(ctx context.Context, patientID, id int64, in DrugIntoleranceInput) error {
	err := execOne(ctx, s.drv, psql.Update("drug_intolerances").
		Set("drug_id", in.DrugID).
		Set("reaction", in.Reaction).
		Set("note", in.Note).
		Set("updated_at", s.now()).
		Where(ownedBy(patientID, id)))
	if err != nil {
		return fmt.Errorf("update drug intolerance %d: %w", id, err)
	}
	return nil
}

func (s *Store) DeleteDrugIntolerance(ctx context.Context, patientID, id int64) error {
	if err := execOne(ctx, s.drv, psql.Delete("drug_intolerances").Where(ownedBy(patientID, id))); err != nil {
		return fmt.Errorf("delete drug intolerance %d: %w", id, err)
	}
	return nil
}

func (s *Store) loadDrugIntolerances(ctx context.Context, p *patient.Profile) error {
	di := psql.Table("drug_intolerances")
	d := psql.Table("drugs")
	sel := psql.Select().From(di)
	sel = sel.Join(d).On(di.C("drug_id"), d.C("id")).
		Select(di.C("id"), di.C("drug_id"), d.C("name"), di.C("reaction"), di.C("note"), di.C("created_at")).
		Where(entsql.EQ(di.C("patient_id"), p.ID)).
		OrderBy(di.C("created_at"), di.C("id"))

	return query(ctx, s.drv, sel, func(rows *entsql.Rows) error {
		var r patient.DrugIntolerance
		if err := rows.Scan(&r.ID, &r.DrugID, &r.Drug, &r.Reaction, &r.Note, &r.CreatedAt); err != nil {
			return err
		}
		r.PatientID = p.ID
		p.DrugIntolerances = append(p.DrugIntolerances, r)
		return nil
	})
}
