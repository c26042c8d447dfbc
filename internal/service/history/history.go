// Package history serves the note-shaped history sections of the chart
// (past medical, social, diet and the rest). Every operation is scoped to one
// kind, so a note can only be edited from the section it belongs to.
package history

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/Alijeyrad/medchart/internal/patient"
	"github.com/Alijeyrad/medchart/internal/store"
)

type Request struct {
	Note string `json:"note" validate:"required,max=4000"`
}

type Service interface {
	Create(ctx context.Context, patientID int64, kind patient.HistoryKind, req Request) (int64, error)
	Update(ctx context.Context, patientID int64, kind patient.HistoryKind, id int64, req Request) error
	Delete(ctx context.Context, patientID int64, kind patient.HistoryKind, id int64) error
}

type Repo interface {
	CreateHistoryNote(ctx context.Context, patientID int64, kind patient.HistoryKind, note string) (int64, error)
	UpdateHistoryNote(ctx context.Context, patientID int64, kind patient.HistoryKind, id int64, note string) error
	DeleteHistoryNote(ctx context.Context, patientID int64, kind patient.HistoryKind, id int64) error
}

type historyService struct {
	repo Repo
}

func New(repo Repo) Service {
	return &historyService{repo: repo}
}

func (s *historyService) Create(ctx context.Context, patientID int64, kind patient.HistoryKind, req Request) (int64, error) {
	if !kind.Valid() {
		return 0, ErrUnknownKind
	}
	id, err := s.repo.CreateHistoryNote(ctx, patientID, kind, strings.TrimSpace(req.Note))
	if err != nil {
		return 0, mapErr("create "+string(kind)+" note", err)
	}
	return id, nil
}

func (s *historyService) Update(ctx context.Context, patientID int64, kind patient.HistoryKind, id int64, req Request) error {
	if !kind.Valid() {
		return ErrUnknownKind
	}
	if err := s.repo.UpdateHistoryNote(ctx, patientID, kind, id, strings.TrimSpace(req.Note)); err != nil {
		return mapErr("update "+string(kind)+" note", err)
	}
	return nil
}

func (s *historyService) Delete(ctx context.Context, patientID int64, kind patient.HistoryKind, id int64) error {
	if !kind.Valid() {
		return ErrUnknownKind
	}
	if err := s.repo.DeleteHistoryNote(ctx, patientID, kind, id); err != nil {
		return mapErr("delete "+string(kind)+" note", err)
	}
	return nil
}

func mapErr(op string, err error) error {
	if errors.Is(err, store.ErrNotFound) {
		return ErrNotFound
	}
	return fmt.Errorf("%s: %w", op, err)
}
