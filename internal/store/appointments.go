package store

import (
	"context"
	"fmt"
	"time"

	entsql "entgo.io/ent/dialect/sql"
	"github.com/google/uuid"

	"github.com/Alijeyrad/medchart/internal/patient"
)

type AppointmentInput struct {
	DoctorID uuid.UUID
	StartsAt time.Time
	EndsAt   time.Time
	Reason   string
	Status   string
}

func (s *Store) CreateAppointment(ctx context.Context, patientID int64, in AppointmentInput) (int64, error) {
	now := s.now()
	id, err := insertID(ctx, s.drv, psql.Insert("appointments").
		Columns("patient_id", "doctor_id", "starts_at", "ends_at", "reason", "status", "created_at", "updated_at").
		Values(patientID, in.DoctorID, in.StartsAt, in.EndsAt, in.Reason, in.Status, now, now))
	if err != nil {
		return 0, fmt.Errorf("insert appointment: %w", err)
	}
	return id, nil
}

// UpdateAppointment reschedules an appointment. The booking doctor is kept.
func (s *Store) UpdateAppointment(ctx context.Context, patientID, id int64, in AppointmentInput) error {
	err := execOne(ctx, s.drv, psql.Update("appointments").
		Set("starts_at", in.StartsAt).
		Set("ends_at", in.EndsAt).
		Set("reason", in.Reason).
		Set("status", in.Status).
		Set("updated_at", s.now()).
		Where(ownedBy(patientID, id)))
	if err != nil {
		return fmt.Errorf("update appointment %d: %w", id, err)
	}
	return nil
}

func (s *Store) DeleteAppointment(ctx context.Context, patientID, id int64) error {
	if err := execOne(ctx, s.drv, psql.Delete("appointments").Where(ownedBy(patientID, id))); err != nil {
		return fmt.Errorf("delete appointment %d: %w", id, err)
	}
	return nil
}

// DoctorHasOverlap reports whether doctorID already has an appointment
// intersecting [start, end), ignoring excludeID.
func (s *Store) DoctorHasOverlap(ctx context.Context, doctorID uuid.UUID, start, end time.Time, excludeID int64) (bool, error) {
	sel := psql.Select("id").
		From(psql.Table("appointments")).
		Where(entsql.And(
			entsql.EQ("doctor_id", doctorID),
			entsql.NEQ("id", excludeID),
			entsql.NEQ("status", "cancelled"),
			entsql.LT("starts_at", end),
			entsql.GT("ends_at", start),
		)).
		Limit(1)

	found := false
	err := query(ctx, s.drv, sel, func(rows *entsql.Rows) error {
		found = true
		var id int64
		return rows.Scan(&id)
	})
	if err != nil {
		return false, fmt.Errorf("check appointment overlap: %w", err)
	}
	return found, nil
}

func (s *Store) loadAppointments(ctx context.Context, p *patient.Profile) error {
	sel := psql.Select("id", "doctor_id", "starts_at", "ends_at", "reason", "status", "created_at").
		From(psql.Table("appointments")).
		Where(entsql.EQ("patient_id", p.ID)).
		OrderBy("created_at", "id")

	return query(ctx, s.drv, sel, func(rows *entsql.Rows) error {
		var a patient.Appointment
		if err := rows.Scan(&a.ID, &a.DoctorID, &a.StartsAt, &a.EndsAt, &a.Reason, &a.Status, &a.CreatedAt); err != nil {
			return err
		}
		a.PatientID = p.ID
		p.Appointments = append(p.Appointments, a)
		return nil
	})
}
