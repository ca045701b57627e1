package schedule

import (
	"context"
	"errors"

	"github.com/google/uuid"
)

var (
	ErrScheduleNotFound = errors.New("weekly schedule not found")
)

// Repository contains all DB interactions needed by the schedule service.
type Repository interface {
	Upsert(ctx context.Context, doctorID uuid.UUID, week WeekSchedule) (*WeeklySchedule, error)
	Get(ctx context.Context, doctorID uuid.UUID) (*WeeklySchedule, error)
	Delete(ctx context.Context, doctorID uuid.UUID) error
}
