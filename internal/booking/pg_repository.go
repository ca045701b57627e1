package booking

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

const uniqueViolation = "23505"

type PgRepository struct {
	pool *pgxpool.Pool
}

func NewPgRepository(pool *pgxpool.Pool) *PgRepository {
	return &PgRepository{pool: pool}
}

// Helpers

func scanAppointment(row pgx.Row) (*Appointment, error) {
	var a Appointment

	err := row.Scan(
		&a.ID,
		&a.PatientID,
		&a.DoctorID,
		&a.ScheduledFor,
		&a.Status,
		&a.Notes,
		&a.CreatedAt,
		&a.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrAppointmentNotFound
		}
		return nil, err
	}

	return &a, nil
}

// Interface methods

func (r *PgRepository) GetByID(ctx context.Context, id uuid.UUID) (*Appointment, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT id, patient_id, doctor_id, scheduled_for, status, notes, created_at, updated_at
		FROM appointments
		WHERE id = $1
	`, id)
	return scanAppointment(row)
}

func (r *PgRepository) FindActiveConflict(ctx context.Context, doctorID uuid.UUID, instant time.Time) (*Appointment, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT id, patient_id, doctor_id, scheduled_for, status, notes, created_at, updated_at
		FROM appointments
		WHERE doctor_id = $1 AND scheduled_for = $2 AND status = 'booked'
	`, doctorID, instant)
	return scanAppointment(row)
}

func (r *PgRepository) Insert(ctx context.Context, patientID, doctorID uuid.UUID, instant time.Time, notes string) (*Appointment, error) {
	id := uuid.New()

	row := r.pool.QueryRow(ctx, `
		INSERT INTO appointments (id, patient_id, doctor_id, scheduled_for, status, notes, created_at, updated_at)
		VALUES ($1, $2, $3, $4, 'booked', $5, now(), now())
		RETURNING id, patient_id, doctor_id, scheduled_for, status, notes, created_at, updated_at
	`, id, patientID, doctorID, instant, notes)

	appt, err := scanAppointment(row)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return nil, ErrSlotTaken
		}
		return nil, err
	}

	return appt, nil
}

func (r *PgRepository) UpdateStatus(ctx context.Context, id uuid.UUID, from, to AppointmentStatus) (*Appointment, error) {
	row := r.pool.QueryRow(ctx, `
		UPDATE appointments
		SET status = $2,
		    updated_at = now()
		WHERE id = $1
		  AND status = $3
		RETURNING id, patient_id, doctor_id, scheduled_for, status, notes, created_at, updated_at
	`, id, to, from)

	return scanAppointment(row)
}

func (r *PgRepository) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `
		DELETE FROM appointments
		WHERE id = $1
	`, id)
	if err != nil {
		return fmt.Errorf("delete appointment: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrAppointmentNotFound
	}
	return nil
}

func (r *PgRepository) ListByPatient(ctx context.Context, patientID uuid.UUID) ([]PatientAppointment, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT a.id, a.patient_id, a.doctor_id, a.scheduled_for, a.status, a.notes,
		       a.created_at, a.updated_at,
		       COALESCE(d.name, ''), COALESCE(d.specialty, '')
		FROM appointments a
		LEFT JOIN doctors d ON d.id = a.doctor_id
		WHERE a.patient_id = $1
		ORDER BY a.scheduled_for
	`, patientID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []PatientAppointment
	for rows.Next() {
		var pa PatientAppointment
		err := rows.Scan(
			&pa.ID,
			&pa.PatientID,
			&pa.DoctorID,
			&pa.ScheduledFor,
			&pa.Status,
			&pa.Notes,
			&pa.CreatedAt,
			&pa.UpdatedAt,
			&pa.Doctor.Name,
			&pa.Doctor.Specialty,
		)
		if err != nil {
			return nil, err
		}
		pa.Doctor.ID = pa.DoctorID
		result = append(result, pa)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return result, nil
}

func (r *PgRepository) ListByDoctor(ctx context.Context, doctorID uuid.UUID) ([]DoctorAppointment, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT a.id, a.patient_id, a.doctor_id, a.scheduled_for, a.status, a.notes,
		       a.created_at, a.updated_at,
		       COALESCE(p.name, ''), COALESCE(p.email, '')
		FROM appointments a
		LEFT JOIN patients p ON p.id = a.patient_id
		WHERE a.doctor_id = $1
		ORDER BY a.scheduled_for
	`, doctorID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []DoctorAppointment
	for rows.Next() {
		var da DoctorAppointment
		err := rows.Scan(
			&da.ID,
			&da.PatientID,
			&da.DoctorID,
			&da.ScheduledFor,
			&da.Status,
			&da.Notes,
			&da.CreatedAt,
			&da.UpdatedAt,
			&da.Patient.Name,
			&da.Patient.Email,
		)
		if err != nil {
			return nil, err
		}
		da.Patient.ID = da.PatientID
		result = append(result, da)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return result, nil
}

func (r *PgRepository) ListBookedBetween(ctx context.Context, doctorID uuid.UUID, from, to time.Time) ([]Appointment, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, patient_id, doctor_id, scheduled_for, status, notes, created_at, updated_at
		FROM appointments
		WHERE doctor_id = $1
		  AND scheduled_for >= $2
		  AND scheduled_for <= $3
		  AND status = 'booked'
	`, doctorID, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []Appointment
	for rows.Next() {
		a, err := scanAppointment(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *a)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return result, nil
}

func (r *PgRepository) FindElapsedBooked(ctx context.Context, before time.Time) ([]Appointment, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, patient_id, doctor_id, scheduled_for, status, notes, created_at, updated_at
		FROM appointments
		WHERE status = 'booked'
		  AND scheduled_for < $1
	`, before)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []Appointment
	for rows.Next() {
		a, err := scanAppointment(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *a)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return result, nil
}
