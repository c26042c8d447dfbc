package store

import (
	"context"
	"fmt"

	"entgo.io/ent/dialect"
	entsql "entgo.io/ent/dialect/sql"

	"github.com/Alijeyrad/medchart/internal/patient"
)

type ProblemInput struct {
	Description string
	Status      string
	Note        string
	Codes       []string
}

func (s *Store) CreateProblem(ctx context.Context, patientID int64, in ProblemInput) (int64, error) {
	var id int64
	err := s.withTx(ctx, func(tx dialect.Tx) error {
		now := s.now()
		var err error
		id, err = insertID(ctx, tx, psql.Insert("problems").
			Columns("patient_id", "description", "status", "note", "created_at", "updated_at").
			Values(patientID, in.Description, in.Status, in.Note, now, now))
		if err != nil {
			return err
		}
		return insertProblemCodes(ctx, tx, id, in.Codes)
	})
	if err != nil {
		return 0, fmt.Errorf("insert problem: %w", err)
	}
	return id, nil
}

// UpdateProblem rewrites the problem row and replaces its code set.
func (s *Store) UpdateProblem(ctx context.Context, patientID, id int64, in ProblemInput) error {
	err := s.withTx(ctx, func(tx dialect.Tx) error {
		err := execOne(ctx, tx, psql.Update("problems").
			Set("description", in.Description).
			Set("status", in.Status).
			Set("note", in.Note).
			Set("updated_at", s.now()).
			Where(ownedBy(patientID, id)))
		if err != nil {
			return err
		}
		stmt, args := psql.Delete("problem_codes").Where(entsql.EQ("problem_id", id)).Query()
		if err := tx.Exec(ctx, stmt, args, nil); err != nil {
			return err
		}
		return insertProblemCodes(ctx, tx, id, in.Codes)
	})
	if err != nil {
		return fmt.Errorf("update problem %d: %w", id, err)
	}
	return nil
}

func (s *Store) DeleteProblem(ctx context.Context, patientID, id int64) error {
	if err := execOne(ctx, s.drv, psql.Delete("problems").Where(ownedBy(patientID, id))); err != nil {
		return fmt.Errorf("delete problem %d: %w", id, err)
	}
	return nil
}

func insertProblemCodes(ctx context.Context, conn dialect.ExecQuerier, problemID int64, codes []string) error {
	if len(codes) == 0 {
		return nil
	}
	ins := psql.Insert("problem_codes").Columns("problem_id", "code")
	for _, c := range codes {
		ins = ins.Values(problemID, c)
	}
	stmt, args := ins.Query()
	if err := conn.Exec(ctx, stmt, args, nil); err != nil {
		return translate(err)
	}
	return nil
}

func (s *Store) loadProblems(ctx context.Context, p *patient.Profile) error {
	sel := psql.Select("id", "description", "status", "note", "created_at").
		From(psql.Table("problems")).
		Where(entsql.EQ("patient_id", p.ID)).
		OrderBy("created_at", "id")

	index := map[int64]int{}
	err := query(ctx, s.drv, sel, func(rows *entsql.Rows) error {
		pr := patient.Problem{PatientID: p.ID, Codes: []patient.ICD10Code{}}
		if err := rows.Scan(&pr.ID, &pr.Description, &pr.Status, &pr.Note, &pr.CreatedAt); err != nil {
			return err
		}
		index[pr.ID] = len(p.Problems)
		p.Problems = append(p.Problems, pr)
		return nil
	})
	if err != nil || len(p.Problems) == 0 {
		return err
	}

	pc := psql.Table("problem_codes")
	c := psql.Table("icd10_codes")
	pr := psql.Table("problems")
	codes := psql.Select().From(pc)
	codes = codes.Join(c).On(pc.C("code"), c.C("code")).
		Join(pr).On(pc.C("problem_id"), pr.C("id")).
		Select(pc.C("problem_id"), c.C("code"), c.C("description")).
		Where(entsql.EQ(pr.C("patient_id"), p.ID)).
		OrderBy(c.C("code"))

	return query(ctx, s.drv, codes, func(rows *entsql.Rows) error {
		var (
			problemID int64
			code      patient.ICD10Code
		)
		if err := rows.Scan(&problemID, &code.Code, &code.Description); err != nil {
			return err
		}
		if i, ok := index[problemID]; ok {
			p.Problems[i].Codes = append(p.Problems[i].Codes, code)
		}
		return nil
	})
}
