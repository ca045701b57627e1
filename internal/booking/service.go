package booking

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	redisclient "github.com/docbook/booking-service/internal/redis"
)

var (
	// ErrInvalidSchedule means the scheduledFor value could not be parsed.
	ErrInvalidSchedule = errors.New("invalid scheduledFor date")

	// ErrSlotContended means another booking for the same doctor/instant
	// holds the lock right now; the client should retry.
	ErrSlotContended = errors.New("slot is currently being booked, please retry")
)

// scheduleLayouts are the accepted scheduledFor formats. All are treated as
// naive local time; no timezone normalization happens anywhere.
var scheduleLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04",
}

// ParseScheduledFor parses a booking instant, returning ErrInvalidSchedule
// for anything unreadable.
func ParseScheduledFor(raw string) (time.Time, error) {
	for _, layout := range scheduleLayouts {
		if t, err := time.ParseInLocation(layout, raw, time.Local); err == nil {
			return t, nil
		}
	}
	return time.Time{}, ErrInvalidSchedule
}

type Service struct {
	repo   Repository
	locker redisclient.Locker
	log    *zap.Logger
}

func NewService(repo Repository, locker redisclient.Locker, log *zap.Logger) *Service {
	return &Service{
		repo:   repo,
		locker: locker,
		log:    log,
	}
}

// Book validates and atomically creates an appointment. A per
// doctor-per-instant lock serializes the pre-check and the insert so that
// two concurrent requests for the same slot cannot both pass the check; the
// partial unique index catches anything the lock misses.
//
// The doctor's live status (available/busy/offline) is deliberately not
// consulted: scheduled-slot availability is orthogonal to it.
func (s *Service) Book(ctx context.Context, doctorID, patientID uuid.UUID, scheduledFor, notes string) (*Appointment, error) {
	instant, err := ParseScheduledFor(scheduledFor)
	if err != nil {
		return nil, err
	}

	var created *Appointment

	err = s.locker.WithBookingLock(ctx, doctorID, instant, func(lockCtx context.Context) error {
		existing, err := s.repo.FindActiveConflict(lockCtx, doctorID, instant)
		if err != nil && !errors.Is(err, ErrAppointmentNotFound) {
			return fmt.Errorf("check active conflict: %w", err)
		}
		if existing != nil {
			return ErrSlotTaken
		}

		appt, err := s.repo.Insert(lockCtx, patientID, doctorID, instant, notes)
		if err != nil {
			return fmt.Errorf("insert appointment: %w", err)
		}

		created = appt
		return nil
	})

	if err != nil {
		if errors.Is(err, redisclient.ErrLockNotAcquired) {
			return nil, ErrSlotContended
		}
		return nil, err
	}

	s.log.Info("appointment booked",
		zap.String("appointment_id", created.ID.String()),
		zap.String("doctor_id", doctorID.String()),
		zap.String("patient_id", patientID.String()),
		zap.Time("scheduled_for", created.ScheduledFor),
	)

	return created, nil
}

// Cancel transitions an appointment to cancelled. Cancelling an already
// cancelled appointment returns it unchanged. The cancelled row stays as
// history but no longer blocks the doctor/instant pair.
func (s *Service) Cancel(ctx context.Context, id uuid.UUID) (*Appointment, error) {
	appt, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if appt.Status == StatusCancelled {
		return appt, nil
	}

	updated, err := s.repo.UpdateStatus(ctx, id, appt.Status, StatusCancelled)
	if err != nil {
		return nil, fmt.Errorf("cancel appointment: %w", err)
	}

	s.log.Info("appointment cancelled",
		zap.String("appointment_id", id.String()),
	)

	return updated, nil
}

// Remove hard-deletes an appointment regardless of status. Administrative
// escape hatch, not part of the normal booking flow.
func (s *Service) Remove(ctx context.Context, id uuid.UUID) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}

	s.log.Info("appointment deleted",
		zap.String("appointment_id", id.String()),
	)

	return nil
}

func (s *Service) ListForPatient(ctx context.Context, patientID uuid.UUID) ([]PatientAppointment, error) {
	appts, err := s.repo.ListByPatient(ctx, patientID)
	if err != nil {
		return nil, fmt.Errorf("list appointments by patient: %w", err)
	}
	return appts, nil
}

func (s *Service) ListForDoctor(ctx context.Context, doctorID uuid.UUID) ([]DoctorAppointment, error) {
	appts, err := s.repo.ListByDoctor(ctx, doctorID)
	if err != nil {
		return nil, fmt.Errorf("list appointments by doctor: %w", err)
	}
	return appts, nil
}

// CompleteElapsed marks booked appointments whose start instant passed the
// cutoff as completed. Called periodically by the completion worker; the
// core never flips this status on its own.
func (s *Service) CompleteElapsed(ctx context.Context, cutoff time.Time) error {
	elapsed, err := s.repo.FindElapsedBooked(ctx, cutoff)
	if err != nil {
		return fmt.Errorf("find elapsed booked appointments: %w", err)
	}

	for _, appt := range elapsed {
		_, err := s.repo.UpdateStatus(ctx, appt.ID, StatusBooked, StatusCompleted)
		if err != nil && !errors.Is(err, ErrAppointmentNotFound) {
			s.log.Error("failed to complete appointment",
				zap.String("appointment_id", appt.ID.String()),
				zap.Error(err),
			)
			continue
		}
	}

	if len(elapsed) > 0 {
		s.log.Info("completed elapsed appointments", zap.Int("count", len(elapsed)))
	}

	return nil
}
