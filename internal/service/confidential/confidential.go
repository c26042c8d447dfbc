// Package confidential serves notes that are stored encrypted and attributed
// to the clinician who wrote them.
package confidential

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/Alijeyrad/medchart/internal/store"
	"github.com/Alijeyrad/medchart/pkg/reqctx"
)

type Request struct {
	Body string `json:"body" validate:"required,max=8000"`
}

type Service interface {
	Create(ctx context.Context, patientID int64, req Request) (int64, error)
	Update(ctx context.Context, patientID, id int64, req Request) error
	Delete(ctx context.Context, patientID, id int64) error
}

type Repo interface {
	CreateConfidentialNote(ctx context.Context, patientID int64, authorID uuid.UUID, body string) (int64, error)
	UpdateConfidentialNote(ctx context.Context, patientID, id int64, body string) error
	DeleteConfidentialNote(ctx context.Context, patientID, id int64) error
}

type confidentialService struct {
	repo Repo
}

func New(repo Repo) Service {
	return &confidentialService{repo: repo}
}

func (s *confidentialService) Create(ctx context.Context, patientID int64, req Request) (int64, error) {
	author, ok := reqctx.UserIDFromContext(ctx)
	if !ok || author == uuid.Nil {
		return 0, ErrNoAuthor
	}
	id, err := s.repo.CreateConfidentialNote(ctx, patientID, author, req.Body)
	if err != nil {
		return 0, mapErr("create confidential note", err)
	}
	return id, nil
}

func (s *confidentialService) Update(ctx context.Context, patientID, id int64, req Request) error {
	if err := s.repo.UpdateConfidentialNote(ctx, patientID, id, req.Body); err != nil {
		return mapErr("update confidential note", err)
	}
	return nil
}

func (s *confidentialService) Delete(ctx context.Context, patientID, id int64) error {
	if err := s.repo.DeleteConfidentialNote(ctx, patientID, id); err != nil {
		return mapErr("delete confidential note", err)
	}
	return nil
}

func mapErr(op string, err error) error {
	if errors.Is(err, store.ErrNotFound) {
		return ErrNotFound
	}
	return fmt.Errorf("%s: %w", op, err)
}
