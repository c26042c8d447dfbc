package appointment

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/Alijeyrad/medchart/internal/store"
	"github.com/Alijeyrad/medchart/pkg/reqctx"
)

// ---------------------------------------------------------------------------
// DTOs
// ---------------------------------------------------------------------------

// Request carries no doctor id: the doctor is always the authenticated
// caller.
type Request struct {
	StartsAt time.Time `json:"starts_at" validate:"required"`
	EndsAt   time.Time `json:"ends_at" validate:"required,gtfield=StartsAt"`
	Reason   string    `json:"reason" validate:"max=500"`
	Status   string    `json:"status" validate:"omitempty,oneof=scheduled completed cancelled no_show"`
}

// ---------------------------------------------------------------------------
// Service interface
// ---------------------------------------------------------------------------

type Service interface {
	Create(ctx context.Context, patientID int64, req Request) (int64, error)
	Update(ctx context.Context, patientID, id int64, req Request) error
	Delete(ctx context.Context, patientID, id int64) error
}

type Repo interface {
	CreateAppointment(ctx context.Context, patientID int64, in store.AppointmentInput) (int64, error)
	UpdateAppointment(ctx context.Context, patientID, id int64, in store.AppointmentInput) error
	DeleteAppointment(ctx context.Context, patientID, id int64) error
	DoctorHasOverlap(ctx context.Context, doctorID uuid.UUID, start, end time.Time, excludeID int64) (bool, error)
}

// ---------------------------------------------------------------------------
// Implementation
// ---------------------------------------------------------------------------

type appointmentService struct {
	repo Repo
}

func New(repo Repo) Service {
	return &appointmentService{repo: repo}
}

func (s *appointmentService) Create(ctx context.Context, patientID int64, req Request) (int64, error) {
	in, err := s.prepare(ctx, 0, req)
	if err != nil {
		return 0, err
	}
	id, err := s.repo.CreateAppointment(ctx, patientID, in)
	if err != nil {
		return 0, mapErr("create appointment", err)
	}
	return id, nil
}

func (s *appointmentService) Update(ctx context.Context, patientID, id int64, req Request) error {
	in, err := s.prepare(ctx, id, req)
	if err != nil {
		return err
	}
	if err := s.repo.UpdateAppointment(ctx, patientID, id, in); err != nil {
		return mapErr("update appointment", err)
	}
	return nil
}

func (s *appointmentService) Delete(ctx context.Context, patientID, id int64) error {
	if err := s.repo.DeleteAppointment(ctx, patientID, id); err != nil {
		return mapErr("delete appointment", err)
	}
	return nil
}

// prepare stamps the acting doctor and checks the slot. Cancelled
// appointments do not hold their slot.
func (s *appointmentService) prepare(ctx context.Context, excludeID int64, req Request) (store.AppointmentInput, error) {
	doctorID, ok := reqctx.UserIDFromContext(ctx)
	if !ok || doctorID == uuid.Nil {
		return store.AppointmentInput{}, ErrNoActor
	}
	if !req.EndsAt.After(req.StartsAt) {
		return store.AppointmentInput{}, ErrInvalidRange
	}
	status := req.Status
	if status == "" {
		status = "scheduled"
	}

	if status != "cancelled" {
		busy, err := s.repo.DoctorHasOverlap(ctx, doctorID, req.StartsAt, req.EndsAt, excludeID)
		if err != nil {
			return store.AppointmentInput{}, fmt.Errorf("check doctor availability: %w", err)
		}
		if busy {
			return store.AppointmentInput{}, ErrSlotNotAvailable
		}
	}

	return store.AppointmentInput{
		DoctorID: doctorID,
		StartsAt: req.StartsAt.UTC(),
		EndsAt:   req.EndsAt.UTC(),
		Reason:   strings.TrimSpace(req.Reason),
		Status:   status,
	}, nil
}

func mapErr(op string, err error) error {
	if errors.Is(err, store.ErrNotFound) {
		return ErrNotFound
	}
	return fmt.Errorf("%s: %w", op, err)
}
