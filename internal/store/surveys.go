package store

import (
	"context"
	"encoding/json"
	"fmt"

	entsql "entgo.io/ent/dialect/sql"

	"github.com/Alijeyrad/medchart/internal/patient"
)

type SurveyInput struct {
	Survey  string
	Score   int
	Answers map[string]string
}

func (s *Store) CreateSurveyResponse(ctx context.Context, patientID int64, in SurveyInput) (int64, error) {
	answers, err := json.Marshal(in.Answers)
	if err != nil {
		return 0, fmt.Errorf("encode answers: %w", err)
	}
	now := s.now()
	id, err := insertID(ctx, s.drv, psql.Insert("survey_responses").
		Columns("patient_id", "survey", "score", "answers", "created_at", "updated_at").
		Values(patientID, in.Survey, in.Score, answers, now, now))
	if err != nil {
		return 0, fmt.Errorf("insert survey response: %w", err)
	}
	return id, nil
}

func (s *Store) UpdateSurveyResponse(ctx context.Context, patientID, id int64, in SurveyInput) error {
	answers, err := json.Marshal(in.Answers)
	if err != nil {
		return fmt.Errorf("encode answers: %w", err)
	}
	err = execOne(ctx, s.drv, psql.Update("survey_responses").
		Set("survey", in.Survey).
		Set("score", in.Score).
		Set("answers", answers).
		Set("updated_at", s.now()).
		Where(ownedBy(patientID, id)))
	if err != nil {
		return fmt.Errorf("update survey response %d: %w", id, err)
	}
	return nil
}

func (s *Store) DeleteSurveyResponse(ctx context.Context, patientID, id int64) error {
	if err := execOne(ctx, s.drv, psql.Delete("survey_responses").Where(ownedBy(patientID, id))); err != nil {
		return fmt.Errorf("delete survey response %d: %w", id, err)
	}
	return nil
}

func (s *Store) loadSurveys(ctx context.Context, p *patient.Profile) error {
	sel := psql.Select("id", "survey", "score", "answers", "created_at").
		From(psql.Table("survey_responses")).
		Where(entsql.EQ("patient_id", p.ID)).
		OrderBy("created_at", "id")

	return query(ctx, s.drv, sel, func(rows *entsql.Rows) error {
		var (
			r   patient.SurveyResponse
			raw []byte
		)
		if err := rows.Scan(&r.ID, &r.Survey, &r.Score, &raw, &r.CreatedAt); err != nil {
			return err
		}
		if len(raw) > 0 {
			if err := json.Unmarshal(raw, &r.Answers); err != nil {
				return fmt.Errorf("decode answers of survey response %d: %w", r.ID, err)
			}
		}
		r.PatientID = p.ID
		p.Surveys = append(p.Surveys, r)
		return nil
	})
}
