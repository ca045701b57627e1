package booking

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

var (
	ErrAppointmentNotFound = errors.New("appointment not found")

	// ErrSlotTaken is returned both by the pre-check and by Insert when the
	// partial unique index rejects a concurrent double booking.
	ErrSlotTaken = errors.New("slot already booked")
)

// Repository contains all DB interactions needed by the booking service.
type Repository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*Appointment, error)

	// FindActiveConflict reports an existing booked appointment for the
	// doctor at that exact instant, ErrAppointmentNotFound when free.
	FindActiveConflict(ctx context.Context, doctorID uuid.UUID, instant time.Time) (*Appointment, error)

	// Insert creates a booked appointment. A unique-index violation from a
	// concurrent insert is translated to ErrSlotTaken.
	Insert(ctx context.Context, patientID, doctorID uuid.UUID, instant time.Time, notes string) (*Appointment, error)

	UpdateStatus(ctx context.Context, id uuid.UUID, from, to AppointmentStatus) (*Appointment, error)
	Delete(ctx context.Context, id uuid.UUID) error

	// Listings with denormalized counterpart info
	ListByPatient(ctx context.Context, patientID uuid.UUID) ([]PatientAppointment, error)
	ListByDoctor(ctx context.Context, doctorID uuid.UUID) ([]DoctorAppointment, error)

	// For the availability resolver
	ListBookedBetween(ctx context.Context, doctorID uuid.UUID, from, to time.Time) ([]Appointment, error)

	// For the completion worker
	FindElapsedBooked(ctx context.Context, before time.Time) ([]Appointment, error)
}
