package familyhistory

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/Alijeyrad/medchart/internal/patient"
	"github.com/Alijeyrad/medchart/internal/store"
)

// Request is one condition of one relative. Relative must be one of
// patient.Relatives.
type Request struct {
	Relative  patient.Relative `json:"relative" validate:"required,oneof=mother father sibling child maternal_grandparent paternal_grandparent other"`
	Condition string           `json:"condition" validate:"required,max=500"`
	Note      string           `json:"note" validate:"max=2000"`
}

type Service interface {
	Create(ctx context.Context, patientID int64, req Request) (int64, error)
	Update(ctx context.Context, patientID, id int64, req Request) error
	Delete(ctx context.Context, patientID, id int64) error
}

type Repo interface {
	CreateFamilyHistory(ctx context.Context, patientID int64, in store.FamilyHistoryInput) (int64, error)
	UpdateFamilyHistory(ctx context.Context, patientID, id int64, in store.FamilyHistoryInput) error
	DeleteFamilyHistory(ctx context.Context, patientID, id int64) error
}

type familyHistoryService struct {
	repo Repo
}

func New(repo Repo) Service {
	return &familyHistoryService{repo: repo}
}

func (s *familyHistoryService) Create(ctx context.Context, patientID int64, req Request) (int64, error) {
	in, err := toInput(req)
	if err != nil {
		return 0, err
	}
	id, err := s.repo.CreateFamilyHistory(ctx, patientID, in)
	if err != nil {
		return 0, mapErr("create family history", err)
	}
	return id, nil
}

func (s *familyHistoryService) Update(ctx context.Context, patientID, id int64, req Request) error {
	in, err := toInput(req)
	if err != nil {
		return err
	}
	if err := s.repo.UpdateFamilyHistory(ctx, patientID, id, in); err != nil {
		return mapErr("update family history", err)
	}
	return nil
}

func (s *familyHistoryService) Delete(ctx context.Context, patientID, id int64) error {
	if err := s.repo.DeleteFamilyHistory(ctx, patientID, id); err != nil {
		return mapErr("delete family history", err)
	}
	return nil
}

func toInput(req Request) (store.FamilyHistoryInput, error) {
	rel := patient.Relative(strings.ToLower(strings.TrimSpace(string(req.Relative))))
	if !rel.Valid() {
		return store.FamilyHistoryInput{}, ErrUnknownRelative
	}
	return store.FamilyHistoryInput{
		Relative:  rel,
		Condition: strings.TrimSpace(req.Condition),
		Note:      req.Note,
	}, nil
}

func mapErr(op string, err error) error {
	if errors.Is(err, store.ErrNotFound) {
		return ErrNotFound
	}
	return fmt.Errorf("%s: %w", op, err)
}
