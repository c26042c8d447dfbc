package intolerance

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/Alijeyrad/medchart/internal/store"
)

// Request names a catalogue drug picked from the drug typeahead.
type Request struct {
	DrugID   int64  `json:"drug_id" validate:"required,gt=0"`
	Reaction string `json:"reaction" validate:"max=500"`
	Note     string `json:"note" validate:"max=2000"`
}

type Service interface {
	Create(ctx context.Context, patientID int64, req Request) (int64, error)
	Update(ctx context.Context, patientID, id int64, req Request) error
	Delete(ctx context.Context, patientID, id int64) error
}

type Repo interface {
	CreateDrugIntolerance(ctx context.Context, patientID int64, in store.DrugIntoleranceInput) (int64, error)
	UpdateDrugIntolerance(ctx context.Context, patientID, id int64, in store.DrugIntoleranceInput) error
	DeleteDrugIntolerance(ctx context.Context, patientID, id int64) error
}

type intoleranceService struct {
	repo Repo
}

func New(repo Repo) Service {
	return &intoleranceService{repo: repo}
}

func (s *intoleranceService) Create(ctx context.Context, patientID int64, req Request) (int64, error) {
	id, err := s.repo.CreateDrugIntolerance(ctx, patientID, toInput(req))
	if err != nil {
		return 0, mapErr("create drug intolerance", err)
	}
	return id, nil
}

func (s *intoleranceService) Update(ctx context.Context, patientID, id int64, req Request) error {
	if err := s.repo.UpdateDrugIntolerance(ctx, patientID, id, toInput(req)); err != nil {
		return mapErr("update drug intolerance", err)
	}
	return nil
}

func (s *intoleranceService) Delete(ctx context.Context, patientID, id int64) error {
	if err := s.repo.DeleteDrugIntolerance(ctx, patientID, id); err != nil {
		return mapErr("delete drug intolerance", err)
	}
	return nil
}

func toInput(req Request) store.DrugIntoleranceInput {
	return store.DrugIntoleranceInput{
		DrugID:   req.DrugID,
		Reaction: strings.TrimSpace(req.Reaction),
		Note:     req.Note,
	}
}

func mapErr(op string, err error) error {
	switch {
	case errors.Is(err, store.ErrNotFound):
		return ErrNotFound
	case errors.Is(err, store.ErrInvalidReference):
		return ErrUnknownDrug
	}
	return fmt.Errorf("%s: %w", op, err)
}
