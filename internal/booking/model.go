package booking

import (
	"time"

	"github.com/google/uuid"
)

type AppointmentStatus string

const (
	StatusBooked    AppointmentStatus = "booked"
	StatusCancelled AppointmentStatus = "cancelled"
	StatusCompleted AppointmentStatus = "completed"
)

// Appointment is one concrete booked instance of a template slot. Only the
// start instant is stored; the slot range lives in the weekly template.
type Appointment struct {
	ID           uuid.UUID
	PatientID    uuid.UUID
	DoctorID     uuid.UUID
	ScheduledFor time.Time
	Status       AppointmentStatus
	Notes        string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

type DoctorSummary struct {
	ID        uuid.UUID
	Name      string
	Specialty string
}

type PatientSummary struct {
	ID    uuid.UUID
	Name  string
	Email string
}

// PatientAppointment is an appointment listed for a patient, carrying the
// counterpart doctor's display fields.
type PatientAppointment struct {
	Appointment
	Doctor DoctorSummary
}

// DoctorAppointment is an appointment listed for a doctor, carrying the
// counterpart patient's display fields.
type DoctorAppointment struct {
	Appointment
	Patient PatientSummary
}
