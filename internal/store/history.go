package store

import (
	"context"
	"fmt"

	entsql "entgo.io/ent/dialect/sql"

	"github.com/Alijeyrad/medchart/internal/patient"
)

func (s *Store) CreateHistoryNote(ctx context.Context, patientID int64, kind patient.HistoryKind, note string) (int64, error) {
	now := s.now()
	id, err := insertID(ctx, s.drv, psql.Insert("history_notes").
		Columns("patient_id", "kind", "note", "created_at", "updated_at").
		Values(patientID, string(kind), note, now, now))
	if err != nil {
		return 0, fmt.Errorf("insert %s note: %w", kind, err)
	}
	return id, nil
}

func (s *Store) UpdateHistoryNote(ctx context.Context, patientID int64, kind patient.HistoryKind, id int64, note string) error {
	err := execOne(ctx, s.drv, psql.Update("history_notes").
		Set("note", note).
		Set("updated_at", s.now()).
		Where(entsql.And(ownedBy(patientID, id), entsql.EQ("kind", string(kind)))))
	if err != nil {
		return fmt.Errorf("update %s note %d: %w", kind, id, err)
	}
	return nil
}

func (s *Store) DeleteHistoryNote(ctx context.Context, patientID int64, kind patient.HistoryKind, id int64) error {
	err := execOne(ctx, s.drv, psql.Delete("history_notes").
		Where(entsql.And(ownedBy(patientID, id), entsql.EQ("kind", string(kind)))))
	if err != nil {
		return fmt.Errorf("delete %s note %d: %w", kind, id, err)
	}
	return nil
}

func (s *Store) loadHistory(ctx context.Context, p *patient.Profile) error {
	p.History = map[patient.HistoryKind][]patient.HistoryNote{}
	sel := psql.Select("id", "kind", "note", "created_at").
		From(psql.Table("history_notes")).
		Where(entsql.EQ("patient_id", p.ID)).
		OrderBy("created_at", "id")

	return query(ctx, s.drv, sel, func(rows *entsql.Rows) error {
		var (
			n    patient.HistoryNote
			kind string
		)
		if err := rows.Scan(&n.ID, &kind, &n.Note, &n.CreatedAt); err != nil {
			return err
		}
		n.PatientID = p.ID
		n.Kind = patient.HistoryKind(kind)
		p.History[n.Kind] = append(p.History[n.Kind], n)
		return nil
	})
}

type FamilyHistoryInput struct {
	Relative  patient.Relative
	Condition string
	Note      string
}

func (s *Store) CreateFamilyHistory(ctx context.Context, patientID int64, in FamilyHistoryInput) (int64, error) {
	now := s.now()
	id, err := insertID(ctx, s.drv, psql.Insert("family_history").
		Columns("patient_id", "relative", "condition", "note", "created_at", "updated_at").
		Values(patientID, string(in.Relative), in.Condition, in.Note, now, now))
	if err != nil {
		return 0, fmt.Errorf("insert family history: %w", err)
	}
	return id, nil
}

func (s *Store) UpdateFamilyHistory(ctx context.Context, patientID, id int64, in FamilyHistoryInput) error {
	err := execOne(ctx, s.drv, psql.Update("family_history").
		Set("relative", string(in.Relative)).
		Set("condition", in.Condition).
		Set("note", in.Note).
		Set("updated_at", s.now()).
		Where(ownedBy(patientID, id)))
	if err != nil {
		return fmt.Errorf("update family history %d: %w", id, err)
	}
	return nil
}

func (s *Store) DeleteFamilyHistory(ctx context.Context, patientID, id int64) error {
	if err := execOne(ctx, s.drv, psql.Delete("family_history").Where(ownedBy(patientID, id))); err != nil {
		return fmt.Errorf("delete family history %d: %w", id, err)
	}
	return nil
}

func (s *Store) loadFamilyHistory(ctx context.Context, p *patient.Profile) error {
	sel := psql.Select("id", "relative", "condition", "note", "created_at").
		From(psql.Table("family_history")).
		Where(entsql.EQ("patient_id", p.ID)).
		OrderBy("created_at", "id")

	return query(ctx, s.drv, sel, func(rows *entsql.Rows) error {
		var (
			e   patient.FamilyHistoryEntry
			rel string
		)
		if err := rows.Scan(&e.ID, &rel, &e.Condition, &e.Note, &e.CreatedAt); err != nil {
			return err
		}
		e.PatientID = p.ID
		e.Relative = patient.Relative(rel)
		p.FamilyHistory = append(p.FamilyHistory, e)
		return nil
	})
}
