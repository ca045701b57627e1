package schedule

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type Service struct {
	repo Repository
	log  *zap.Logger
}

func NewService(repo Repository, log *zap.Logger) *Service {
	return &Service{
		repo: repo,
		log:  log,
	}
}

// SetWeek replaces the whole weekly template for a doctor, creating it if
// absent. The doctor id is not checked against the directory: a template may
// be written before the doctor record exists.
func (s *Service) SetWeek(ctx context.Context, doctorID uuid.UUID, week WeekSchedule) (*WeeklySchedule, error) {
	saved, err := s.repo.Upsert(ctx, doctorID, week.Normalize())
	if err != nil {
		return nil, fmt.Errorf("upsert weekly schedule: %w", err)
	}

	s.log.Info("weekly schedule saved",
		zap.String("doctor_id", doctorID.String()),
	)

	return saved, nil
}

func (s *Service) GetWeek(ctx context.Context, doctorID uuid.UUID) (*WeeklySchedule, error) {
	ws, err := s.repo.Get(ctx, doctorID)
	if err != nil {
		return nil, err
	}
	return ws, nil
}

func (s *Service) DeleteWeek(ctx context.Context, doctorID uuid.UUID) error {
	if err := s.repo.Delete(ctx, doctorID); err != nil {
		return err
	}

	s.log.Info("weekly schedule deleted",
		zap.String("doctor_id", doctorID.String()),
	)

	return nil
}
