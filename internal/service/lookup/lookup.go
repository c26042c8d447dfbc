// Package lookup backs the typeahead inputs of the chart. Results are capped
// and ranked so that prefix matches come first. A lookup never fails: errors
// are logged and an empty list is returned.
package lookup

import (
	"cmp"
	"context"
	"log/slog"
	"slices"
	"strings"

	"github.com/samber/lo"

	"github.com/Alijeyrad/medchart/internal/patient"
)

const (
	MaxResults = 10
	candidates = 50
)

type Service interface {
	Patients(ctx context.Context, q string) []patient.Patient
	Drugs(ctx context.Context, q string) []patient.Drug
	ICD10Codes(ctx context.Context, q string) []patient.ICD10Code
	Allergens(ctx context.Context, q string) []patient.Allergen
}

type Repo interface {
	SearchPatients(ctx context.Context, q string, limit int) ([]patient.Patient, error)
	SearchDrugs(ctx context.Context, q string, limit int) ([]patient.Drug, error)
	SearchICD10(ctx context.Context, q string, limit int) ([]patient.ICD10Code, error)
	SearchAllergens(ctx context.Context, q string, limit int) ([]patient.Allergen, error)
}

type lookupService struct {
	repo   Repo
	logger *slog.Logger
}

func New(repo Repo, logger *slog.Logger) Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &lookupService{repo: repo, logger: logger.With("component", "lookup")}
}

func (s *lookupService) Patients(ctx context.Context, q string) []patient.Patient {
	return search(ctx, s, "patients", q, s.repo.SearchPatients, func(p patient.Patient) []string {
		return []string{p.LastName, p.FirstName}
	})
}

func (s *lookupService) Drugs(ctx context.Context, q string) []patient.Drug {
	return search(ctx, s, "drugs", q, s.repo.SearchDrugs, func(d patient.Drug) []string {
		return []string{d.Name}
	})
}

// ICD10Codes ranks a code prefix above a description prefix.
func (s *lookupService) ICD10Codes(ctx context.Context, q string) []patient.ICD10Code {
	return search(ctx, s, "icd10", q, s.repo.SearchICD10, func(c patient.ICD10Code) []string {
		return []string{c.Code, c.Description}
	})
}

func (s *lookupService) Allergens(ctx context.Context, q string) []patient.Allergen {
	return search(ctx, s, "allergens", q, s.repo.SearchAllergens, func(a patient.Allergen) []string {
		return []string{a.Name}
	})
}

// search runs fetch and orders the candidates by the first key that q
// prefixes, then by the keys themselves.
func search[T any](
	ctx context.Context,
	s *lookupService,
	name, q string,
	fetch func(context.Context, string, int) ([]T, error),
	keys func(T) []string,
) []T {
	q = strings.TrimSpace(q)
	if q == "" {
		return []T{}
	}

	found, err := fetch(ctx, q, candidates)
	if err != nil {
		s.logger.ErrorContext(ctx, "lookup failed", "lookup", name, "query", q, "error", err)
		return []T{}
	}

	lq := strings.ToLower(q)
	rank := func(v T) int {
		_, idx, ok := lo.FindIndexOf(keys(v), func(k string) bool {
			return strings.HasPrefix(strings.ToLower(k), lq)
		})
		if !ok {
			return len(keys(v))
		}
		return idx
	}

	slices.SortStableFunc(found, func(a, b T) int {
		if c := cmp.Compare(rank(a), rank(b)); c != 0 {
			return c
		}
		ka, kb := keys(a), keys(b)
		for i := range min(len(ka), len(kb)) {
			if c := cmp.Compare(strings.ToLower(ka[i]), strings.ToLower(kb[i])); c != 0 {
				return c
			}
		}
		return 0
	})

	if len(found) > MaxResults {
		found = found[:MaxResults]
	}
	if found == nil {
		found = []T{}
	}
	return found
}
