package allergy

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/Alijeyrad/medchart/internal/store"
)

// ---------------------------------------------------------------------------
// DTOs
// ---------------------------------------------------------------------------

// Request is the body of an allergy create or edit. Either a catalogue
// allergen id or a free-text allergen name must be given.
type Request struct {
	AllergenID *int64 `json:"allergen_id" validate:"omitempty,gt=0"`
	Allergen   string `json:"allergen" validate:"required_without=AllergenID,max=200"`
	Reaction   string `json:"reaction" validate:"max=500"`
	Severity   string `json:"severity" validate:"omitempty,oneof=mild moderate severe"`
	Note       string `json:"note" validate:"max=2000"`
}

// ---------------------------------------------------------------------------
// Service interface
// ---------------------------------------------------------------------------

type Service interface {
	Create(ctx context.Context, patientID int64, req Request) (int64, error)
	Update(ctx context.Context, patientID, id int64, req Request) error
	Delete(ctx context.Context, patientID, id int64) error
}

// Repo is the slice of the store this service writes through.
type Repo interface {
	CreateAllergy(ctx context.Context, patientID int64, in store.AllergyInput) (int64, error)
	UpdateAllergy(ctx context.Context, patientID, id int64, in store.AllergyInput) error
	DeleteAllergy(ctx context.Context, patientID, id int64) error
}

// ---------------------------------------------------------------------------
// Implementation
// ---------------------------------------------------------------------------

type allergyService struct {
	repo Repo
}

func New(repo Repo) Service {
	return &allergyService{repo: repo}
}

func (s *allergyService) Create(ctx context.Context, patientID int64, req Request) (int64, error) {
	id, err := s.repo.CreateAllergy(ctx, patientID, toInput(req))
	if err != nil {
		return 0, mapErr("create allergy", err)
	}
	return id, nil
}

func (s *allergyService) Update(ctx context.Context, patientID, id int64, req Request) error {
	if err := s.repo.UpdateAllergy(ctx, patientID, id, toInput(req)); err != nil {
		return mapErr("update allergy", err)
	}
	return nil
}

func (s *allergyService) Delete(ctx context.Context, patientID, id int64) error {
	if err := s.repo.DeleteAllergy(ctx, patientID, id); err != nil {
		return mapErr("delete allergy", err)
	}
	return nil
}

func toInput(req Request) store.AllergyInput {
	return store.AllergyInput{
		AllergenID: req.AllergenID,
		Allergen:   strings.TrimSpace(req.Allergen),
		Reaction:   strings.TrimSpace(req.Reaction),
		Severity:   req.Severity,
		Note:       req.Note,
	}
}

func mapErr(op string, err error) error {
	switch {
	case errors.Is(err, store.ErrNotFound):
		return ErrNotFound
	case errors.Is(err, store.ErrInvalidReference):
		return ErrUnknownAllergen
	}
	return fmt.Errorf("%s: %w", op, err)
}
