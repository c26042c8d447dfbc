// Package store is the relational persistence layer of the chart: patient
// aggregates, their clinical records and the lookup catalogues. Queries are
// built with the ent SQL builder and run on a plain ent driver.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"entgo.io/ent/dialect"
	entsql "entgo.io/ent/dialect/sql"
	"github.com/lib/pq"
)

var (
	ErrNotFound         = errors.New("record not found")
	ErrInvalidReference = errors.New("referenced record does not exist")
)

// Sealer encrypts values that must not be stored in plain text.
type Sealer interface {
	Seal(plaintext string) (string, error)
	Open(ciphertext string) (string, error)
}

var psql = entsql.Dialect(dialect.Postgres)

type Store struct {
	drv    dialect.Driver
	sealer Sealer
	logger *slog.Logger
	now    func() time.Time
}

type Option func(*Store)

func WithLogger(l *slog.Logger) Option {
	return func(s *Store) { s.logger = l }
}

func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

func New(drv dialect.Driver, sealer Sealer, opts ...Option) *Store {
	s := &Store{
		drv:    drv,
		sealer: sealer,
		logger: slog.Default(),
		now:    func() time.Time { return time.Now().UTC() },
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

func (s *Store) Close() error {
	return s.drv.Close()
}

// query runs q and calls scan once per row.
func query(ctx context.Context, conn dialect.ExecQuerier, q entsql.Querier, scan func(*entsql.Rows) error) error {
	stmt, args := q.Query()
	rows := &entsql.Rows{}
	if err := conn.Query(ctx, stmt, args, rows); err != nil {
		return translate(err)
	}
	defer rows.Close()

	for rows.Next() {
		if err := scan(rows); err != nil {
			return err
		}
	}
	return rows.Err()
}

// insertID runs an INSERT ... RETURNING id and returns the new id.
func insertID(ctx context.Context, conn dialect.ExecQuerier, b *entsql.InsertBuilder) (int64, error) {
	var id int64
	found := false
	err := query(ctx, conn, b.Returning("id"), func(rows *entsql.Rows) error {
		found = true
		return rows.Scan(&id)
	})
	if err != nil {
		return 0, err
	}
	if !found {
		return 0, fmt.Errorf("insert returned no id")
	}
	return id, nil
}

// execOne runs an UPDATE or DELETE that must touch at least one row.
func execOne(ctx context.Context, conn dialect.ExecQuerier, q entsql.Querier) error {
	stmt, args := q.Query()
	var res sql.Result
	if err := conn.Exec(ctx, stmt, args, &res); err != nil {
		return translate(err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// withTx runs fn in a transaction, rolling back on error.
func (s *Store) withTx(ctx context.Context, fn func(tx dialect.Tx) error) error {
	tx, err := s.drv.Tx(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	if err := fn(tx); err != nil {
		if rerr := tx.Rollback(); rerr != nil {
			s.logger.Warn("rollback failed", "error", rerr)
		}
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

func translate(err error) error {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == "23503" {
		return fmt.Errorf("%w: %s", ErrInvalidReference, pqErr.Constraint)
	}
	return err
}

// ownedBy matches a record by id within one patient's chart.
func ownedBy(patientID, id int64) *entsql.Predicate {
	return entsql.And(entsql.EQ("id", id), entsql.EQ("patient_id", patientID))
}
