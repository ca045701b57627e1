package schedule

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PgRepository struct {
	pool *pgxpool.Pool
}

func NewPgRepository(pool *pgxpool.Pool) *PgRepository {
	return &PgRepository{pool: pool}
}

func scanWeeklySchedule(row pgx.Row) (*WeeklySchedule, error) {
	var ws WeeklySchedule
	var raw []byte

	err := row.Scan(
		&ws.DoctorID,
		&raw,
		&ws.CreatedAt,
		&ws.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrScheduleNotFound
		}
		return nil, err
	}

	if err := json.Unmarshal(raw, &ws.Week); err != nil {
		return nil, fmt.Errorf("decode week column: %w", err)
	}

	return &ws, nil
}

func (r *PgRepository) Upsert(ctx context.Context, doctorID uuid.UUID, week WeekSchedule) (*WeeklySchedule, error) {
	raw, err := json.Marshal(week)
	if err != nil {
		return nil, fmt.Errorf("encode week column: %w", err)
	}

	row := r.pool.QueryRow(ctx, `
		INSERT INTO weekly_schedules (doctor_id, week, created_at, updated_at)
		VALUES ($1, $2, now(), now())
		ON CONFLICT (doctor_id) DO UPDATE
		SET week = EXCLUDED.week,
		    updated_at = now()
		RETURNING doctor_id, week, created_at, updated_at
	`, doctorID, raw)

	return scanWeeklySchedule(row)
}

func (r *PgRepository) Get(ctx context.Context, doctorID uuid.UUID) (*WeeklySchedule, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT doctor_id, week, created_at, updated_at
		FROM weekly_schedules
		WHERE doctor_id = $1
	`, doctorID)
	return scanWeeklySchedule(row)
}

func (r *PgRepository) Delete(ctx context.Context, doctorID uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `
		DELETE FROM weekly_schedules
		WHERE doctor_id = $1
	`, doctorID)
	if err != nil {
		return fmt.Errorf("delete weekly schedule: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrScheduleNotFound
	}
	return nil
}
