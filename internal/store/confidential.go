package store

import (
	"context"
	"fmt"

	entsql "entgo.io/ent/dialect/sql"
	"github.com/google/uuid"

	"github.com/Alijeyrad/medchart/internal/patient"
)

func (s *Store) CreateConfidentialNote(ctx context.Context, patientID int64, authorID uuid.UUID, body string) (int64, error) {
	sealed, err := s.sealer.Seal(body)
	if err != nil {
		return 0, fmt.Errorf("seal confidential note: %w", err)
	}
	now := s.now()
	id, err := insertID(ctx, s.drv, psql.Insert("confidential_notes").
		Columns("patient_id", "author_id", "body_encrypted", "created_at", "updated_at").
		Values(patientID, authorID, sealed, now, now))
	if err != nil {
		return 0, fmt.Errorf("insert confidential note: %w", err)
	}
	return id, nil
}

func (s *Store) UpdateConfidentialNote(ctx context.Context, patientID, id int64, body string) error {
	sealed, err := s.sealer.Seal(body)
	if err != nil {
		return fmt.Errorf("seal confidential note: %w", err)
	}
	err = execOne(ctx, s.drv, psql.Update("confidential_notes").
		Set("body_encrypted", sealed).
		Set("updated_at", s.now()).
		Where(ownedBy(patientID, id)))
	if err != nil {
		return fmt.Errorf("update confidential note %d: %w", id, err)
	}
	return nil
}

func (s *Store) DeleteConfidentialNote(ctx context.Context, patientID, id int64) error {
	if err := execOne(ctx, s.drv, psql.Delete("confidential_notes").Where(ownedBy(patientID, id))); err != nil {
		return fmt.Errorf("delete confidential note %d: %w", id, err)
	}
	return nil
}

// loadConfidentialNotes decrypts each note. A note that fails to open is
// skipped and logged so one bad row does not hide the whole chart.
func (s *Store) loadConfidentialNotes(ctx context.Context, p *patient.Profile) error {
	sel := psql.Select("id", "author_id", "body_encrypted", "created_at").
		From(psql.Table("confidential_notes")).
		Where(entsql.EQ("patient_id", p.ID)).
		OrderBy("created_at", "id")

	return query(ctx, s.drv, sel, func(rows *entsql.Rows) error {
		var (
			n      patient.ConfidentialNote
			sealed string
		)
		if err := rows.Scan(&n.ID, &n.AuthorID, &sealed, &n.CreatedAt); err != nil {
			return err
		}
		body, err := s.sealer.Open(sealed)
		if err != nil {
			s.logger.Error("failed to decrypt confidential note", "note_id", n.ID, "patient_id", p.ID, "error", err)
			return nil
		}
		n.PatientID = p.ID
		n.Body = body
		p.ConfidentialNotes = append(p.ConfidentialNotes, n)
		return nil
	})
}
