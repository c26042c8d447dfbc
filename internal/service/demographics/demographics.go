// Package demographics updates the single-valued fields of a patient
// (contact, insurance, provider and identity). Values are normalized before
// they are written so the caller can merge exactly what was stored into its
// open chart.
package demographics

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/nyaruka/phonenumbers"

	"github.com/Alijeyrad/medchart/internal/store"
	"github.com/Alijeyrad/medchart/pkg/validate"
)

// ---------------------------------------------------------------------------
// Service interface
// ---------------------------------------------------------------------------

type Service interface {
	// Normalize checks value for field and returns the value to store.
	// Failures are *validate.Error or ErrUnknownField.
	Normalize(field string, value any) (any, error)
	// Update writes an already normalized value.
	Update(ctx context.Context, patientID int64, field string, value any) error
}

type Repo interface {
	UpdateDemographic(ctx context.Context, patientID int64, field string, value any) error
}

type Config struct {
	// PhoneRegion is the ISO 3166 region used for numbers given without a
	// country code.
	PhoneRegion string
}

// ---------------------------------------------------------------------------
// Implementation
// ---------------------------------------------------------------------------

type demographicsService struct {
	repo   Repo
	region string
}

func New(repo Repo, cfg Config) Service {
	region := strings.ToUpper(cfg.PhoneRegion)
	if region == "" {
		region = "US"
	}
	return &demographicsService{repo: repo, region: region}
}

func (s *demographicsService) Normalize(field string, value any) (any, error) {
	if _, ok := store.DemographicColumns[field]; !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownField, field)
	}

	str, ok := asString(value)
	if !ok {
		return nil, invalid(field, "must be a string")
	}
	str = strings.TrimSpace(str)

	switch field {
	case "first_name", "last_name":
		if err := validate.Var(field, str, "required,max=100"); err != nil {
			return nil, err
		}
		return str, nil
	case "dob":
		return parseDOB(field, str)
	case "phone":
		return s.normalizePhone(field, str)
	case "email":
		if err := validate.Var(field, str, "omitempty,email,max=254"); err != nil {
			return nil, err
		}
		return strings.ToLower(str), nil
	case "sex":
		if err := validate.Var(field, str, "omitempty,oneof=female male intersex unknown"); err != nil {
			return nil, err
		}
		return str, nil
	}

	if err := validate.Var(field, str, "max=500"); err != nil {
		return nil, err
	}
	return str, nil
}

func (s *demographicsService) Update(ctx context.Context, patientID int64, field string, value any) error {
	err := s.repo.UpdateDemographic(ctx, patientID, field, value)
	switch {
	case err == nil:
		return nil
	case errors.Is(err, store.ErrNotFound):
		return ErrPatientNotFound
	}
	return fmt.Errorf("update %s: %w", field, err)
}

func (s *demographicsService) normalizePhone(field, raw string) (string, error) {
	if raw == "" {
		return "", nil
	}
	num, err := phonenumbers.Parse(raw, s.region)
	if err != nil || !phonenumbers.IsValidNumber(num) {
		return "", invalid(field, "must be a valid phone number")
	}
	return phonenumbers.Format(num, phonenumbers.E164), nil
}

func parseDOB(field, raw string) (time.Time, error) {
	for _, layout := range []string{time.DateOnly, time.RFC3339} {
		t, err := time.Parse(layout, raw)
		if err != nil {
			continue
		}
		t = t.UTC().Truncate(24 * time.Hour)
		if t.After(time.Now()) {
			return time.Time{}, invalid(field, "must not be in the future")
		}
		return t, nil
	}
	return time.Time{}, invalid(field, "must be a date formatted as 2006-01-02")
}

func asString(v any) (string, bool) {
	switch x := v.(type) {
	case nil:
		return "", true
	case string:
		return x, true
	case fmt.Stringer:
		return x.String(), true
	}
	return "", false
}

func invalid(field, msg string) error {
	return &validate.Error{Fields: map[string]string{field: msg}}
}
