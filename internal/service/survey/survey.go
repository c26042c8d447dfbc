package survey

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/samber/lo"

	"github.com/Alijeyrad/medchart/internal/store"
)

// Request is one completed questionnaire. Score is the instrument's total,
// normalized to 0..100.
type Request struct {
	Survey  string            `json:"survey" validate:"required,max=100"`
	Score   int               `json:"score" validate:"min=0,max=100"`
	Answers map[string]string `json:"answers" validate:"max=200"`
}

type Service interface {
	Create(ctx context.Context, patientID int64, req Request) (int64, error)
	Update(ctx context.Context, patientID, id int64, req Request) error
	Delete(ctx context.Context, patientID, id int64) error
}

type Repo interface {
	CreateSurveyResponse(ctx context.Context, patientID int64, in store.SurveyInput) (int64, error)
	UpdateSurveyResponse(ctx context.Context, patientID, id int64, in store.SurveyInput) error
	DeleteSurveyResponse(ctx context.Context, patientID, id int64) error
}

type surveyService struct {
	repo Repo
}

func New(repo Repo) Service {
	return &surveyService{repo: repo}
}

func (s *surveyService) Create(ctx context.Context, patientID int64, req Request) (int64, error) {
	id, err := s.repo.CreateSurveyResponse(ctx, patientID, toInput(req))
	if err != nil {
		return 0, mapErr("create survey response", err)
	}
	return id, nil
}

func (s *surveyService) Update(ctx context.Context, patientID, id int64, req Request) error {
	if err := s.repo.UpdateSurveyResponse(ctx, patientID, id, toInput(req)); err != nil {
		return mapErr("update survey response", err)
	}
	return nil
}

func (s *surveyService) Delete(ctx context.Context, patientID, id int64) error {
	if err := s.repo.DeleteSurveyResponse(ctx, patientID, id); err != nil {
		return mapErr("delete survey response", err)
	}
	return nil
}

// toInput drops unanswered questions.
func toInput(req Request) store.SurveyInput {
	answers := lo.PickBy(req.Answers, func(_ string, v string) bool {
		return strings.TrimSpace(v) != ""
	})
	return store.SurveyInput{
		Survey:  strings.TrimSpace(req.Survey),
		Score:   req.Score,
		Answers: answers,
	}
}

func mapErr(op string, err error) error {
	if errors.Is(err, store.ErrNotFound) {
		return ErrNotFound
	}
	return fmt.Errorf("%s: %w", op, err)
}
