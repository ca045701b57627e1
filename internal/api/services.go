package api

import (
	"context"

	"github.com/google/uuid"

	"github.com/docbook/booking-service/internal/booking"
	"github.com/docbook/booking-service/internal/directory"
	"github.com/docbook/booking-service/internal/schedule"
)

// Service interfaces consumed by the handlers. Declared here so handler
// tests can substitute stubs.

type BookingService interface {
	Book(ctx context.Context, doctorID, patientID uuid.UUID, scheduledFor, notes string) (*booking.Appointment, error)
	Cancel(ctx context.Context, id uuid.UUID) (*booking.Appointment, error)
	Remove(ctx context.Context, id uuid.UUID) error
	ListForPatient(ctx context.Context, patientID uuid.UUID) ([]booking.PatientAppointment, error)
	ListForDoctor(ctx context.Context, doctorID uuid.UUID) ([]booking.DoctorAppointment, error)
}

type AvailabilityService interface {
	AvailableSlots(ctx context.Context, doctorID uuid.UUID, date string) ([]schedule.Slot, error)
}

type ScheduleService interface {
	SetWeek(ctx context.Context, doctorID uuid.UUID, week schedule.WeekSchedule) (*schedule.WeeklySchedule, error)
	GetWeek(ctx context.Context, doctorID uuid.UUID) (*schedule.WeeklySchedule, error)
	DeleteWeek(ctx context.Context, doctorID uuid.UUID) error
}

type DirectoryService interface {
	RegisterDoctor(ctx context.Context, in directory.RegisterDoctorInput) (*directory.Doctor, error)
	LoginDoctor(ctx context.Context, email, password string) (string, *directory.Doctor, error)
	GetDoctor(ctx context.Context, id uuid.UUID) (*directory.Doctor, error)
	UpdateDoctor(ctx context.Context, id uuid.UUID, upd directory.DoctorUpdate) (*directory.Doctor, error)
	ListDoctors(ctx context.Context) ([]directory.Doctor, error)
	NearbyDoctors(ctx context.Context, lat, lng, radiusMeters float64, specialty string) ([]directory.NearbyDoctor, error)
	SetDoctorStatus(ctx context.Context, id uuid.UUID, status directory.DoctorStatus) (*directory.Doctor, error)

	RegisterPatient(ctx context.Context, in directory.RegisterPatientInput) (*directory.Patient, error)
	LoginPatient(ctx context.Context, email, password string) (string, *directory.Patient, error)
	GetPatient(ctx context.Context, id uuid.UUID) (*directory.Patient, error)
	UpdatePatient(ctx context.Context, id uuid.UUID, upd directory.PatientUpdate) (*directory.Patient, error)
}
