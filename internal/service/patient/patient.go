// Package patient registers new patients from the new-patient tab.
package patient

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/Alijeyrad/medchart/internal/patient"
	"github.com/Alijeyrad/medchart/internal/service/demographics"
	"github.com/Alijeyrad/medchart/internal/store"
	"github.com/Alijeyrad/medchart/pkg/validate"
)

// ---------------------------------------------------------------------------
// DTOs
// ---------------------------------------------------------------------------

type CreatePatientRequest struct {
	FirstName string `json:"first_name" validate:"required,max=100"`
	LastName  string `json:"last_name" validate:"required,max=100"`
	DOB       string `json:"dob" validate:"required,datetime=2006-01-02"`
	Sex       string `json:"sex" validate:"omitempty,oneof=female male intersex unknown"`
	Pronouns  string `json:"pronouns" validate:"max=50"`
	Phone     string `json:"phone" validate:"max=32"`
	Email     string `json:"email" validate:"omitempty,email,max=254"`
	Address   string `json:"address" validate:"max=500"`
}

// ---------------------------------------------------------------------------
// Service interface
// ---------------------------------------------------------------------------

type Service interface {
	Create(ctx context.Context, req CreatePatientRequest) (*patient.Patient, error)
}

type Repo interface {
	CreatePatient(ctx context.Context, in store.NewPatient) (*patient.Patient, error)
}

// ---------------------------------------------------------------------------
// Implementation
// ---------------------------------------------------------------------------

type patientService struct {
	repo  Repo
	demog demographics.Service
}

// New returns the service. Contact fields are normalized the same way the
// demographics editor normalizes them.
func New(repo Repo, demog demographics.Service) Service {
	return &patientService{repo: repo, demog: demog}
}

func (s *patientService) Create(ctx context.Context, req CreatePatientRequest) (*patient.Patient, error) {
	if err := validate.Struct(req); err != nil {
		return nil, err
	}

	in := store.NewPatient{
		FirstName: strings.TrimSpace(req.FirstName),
		LastName:  strings.TrimSpace(req.LastName),
		Sex:       req.Sex,
		Pronouns:  strings.TrimSpace(req.Pronouns),
		Address:   strings.TrimSpace(req.Address),
	}

	dob, err := s.demog.Normalize("dob", req.DOB)
	if err != nil {
		return nil, err
	}
	t, ok := dob.(time.Time)
	if !ok {
		return nil, ErrInvalidDOB
	}
	in.DOB = t

	phone, err := s.demog.Normalize("phone", req.Phone)
	if err != nil {
		return nil, err
	}
	in.Phone = phone.(string)

	email, err := s.demog.Normalize("email", req.Email)
	if err != nil {
		return nil, err
	}
	in.Email = email.(string)

	p, err := s.repo.CreatePatient(ctx, in)
	if err != nil {
		return nil, fmt.Errorf("create patient: %w", err)
	}
	return p, nil
}
