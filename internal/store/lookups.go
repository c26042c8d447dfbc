package store

import (
	"context"
	"fmt"

	entsql "entgo.io/ent/dialect/sql"

	"github.com/Alijeyrad/medchart/internal/patient"
)

func (s *Store) SearchDrugs(ctx context.Context, q string, limit int) ([]patient.Drug, error) {
	var out []patient.Drug
	err := s.searchNamed(ctx, "drugs", q, limit, func(id int64, name string) {
		out = append(out, patient.Drug{ID: id, Name: name})
	})
	if err != nil {
		return nil, fmt.Errorf("search drugs: %w", err)
	}
	return out, nil
}

func (s *Store) SearchAllergens(ctx context.Context, q string, limit int) ([]patient.Allergen, error) {
	var out []patient.Allergen
	err := s.searchNamed(ctx, "allergens", q, limit, func(id int64, name string) {
		out = append(out, patient.Allergen{ID: id, Name: name})
	})
	if err != nil {
		return nil, fmt.Errorf("search allergens: %w", err)
	}
	return out, nil
}

// SearchICD10 matches the code or its description.
func (s *Store) SearchICD10(ctx context.Context, q string, limit int) ([]patient.ICD10Code, error) {
	var out []patient.ICD10Code
	sel := psql.Select("code", "description").
		From(psql.Table("icd10_codes")).
		Where(entsql.Or(entsql.ContainsFold("code", q), entsql.ContainsFold("description", q))).
		OrderBy("code").
		Limit(limit)
	err := query(ctx, s.drv, sel, func(rows *entsql.Rows) error {
		var c patient.ICD10Code
		if err := rows.Scan(&c.Code, &c.Description); err != nil {
			return err
		}
		out = append(out, c)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("search icd10 codes: %w", err)
	}
	return out, nil
}

func (s *Store) searchNamed(ctx context.Context, table, q string, limit int, add func(int64, string)) error {
	sel := psql.Select("id", "name").
		From(psql.Table(table)).
		Where(entsql.ContainsFold("name", q)).
		OrderBy("name").
		Limit(limit)
	return query(ctx, s.drv, sel, func(rows *entsql.Rows) error {
		var (
			id   int64
			name string
		)
		if err := rows.Scan(&id, &name); err != nil {
			return err
		}
		add(id, name)
		return nil
	})
}
