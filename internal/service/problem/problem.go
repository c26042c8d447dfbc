package problem

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/samber/lo"

	"github.com/Alijeyrad/medchart/internal/store"
)

// Request is a problem-list entry with zero or more ICD-10 codes.
type Request struct {
	Description string   `json:"description" validate:"required,max=500"`
	Status      string   `json:"status" validate:"omitempty,oneof=active resolved inactive"`
	Note        string   `json:"note" validate:"max=2000"`
	Codes       []string `json:"codes" validate:"max=20,dive,required,max=10"`
}

type Service interface {
	Create(ctx context.Context, patientID int64, req Request) (int64, error)
	Update(ctx context.Context, patientID, id int64, req Request) error
	Delete(ctx context.Context, patientID, id int64) error
}

type Repo interface {
	CreateProblem(ctx context.Context, patientID int64, in store.ProblemInput) (int64, error)
	UpdateProblem(ctx context.Context, patientID, id int64, in store.ProblemInput) error
	DeleteProblem(ctx context.Context, patientID, id int64) error
}

type problemService struct {
	repo Repo
}

func New(repo Repo) Service {
	return &problemService{repo: repo}
}

func (s *problemService) Create(ctx context.Context, patientID int64, req Request) (int64, error) {
	id, err := s.repo.CreateProblem(ctx, patientID, toInput(req))
	if err != nil {
		return 0, mapErr("create problem", err)
	}
	return id, nil
}

// Update replaces the problem's codes with req.Codes.
func (s *problemService) Update(ctx context.Context, patientID, id int64, req Request) error {
	if err := s.repo.UpdateProblem(ctx, patientID, id, toInput(req)); err != nil {
		return mapErr("update problem", err)
	}
	return nil
}

func (s *problemService) Delete(ctx context.Context, patientID, id int64) error {
	if err := s.repo.DeleteProblem(ctx, patientID, id); err != nil {
		return mapErr("delete problem", err)
	}
	return nil
}

func toInput(req Request) store.ProblemInput {
	status := req.Status
	if status == "" {
		status = "active"
	}
	codes := lo.Uniq(lo.Map(req.Codes, func(c string, _ int) string {
		return strings.ToUpper(strings.TrimSpace(c))
	}))
	return store.ProblemInput{
		Description: strings.TrimSpace(req.Description),
		Status:      status,
		Note:        req.Note,
		Codes:       codes,
	}
}

func mapErr(op string, err error) error {
	switch {
	case errors.Is(err, store.ErrNotFound):
		return ErrNotFound
	case errors.Is(err, store.ErrInvalidReference):
		return ErrUnknownCode
	}
	return fmt.Errorf("%s: %w", op, err)
}
