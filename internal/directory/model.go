package directory

import (
	"time"

	"github.com/google/uuid"
)

// DoctorStatus is the live presence flag broadcast over the real-time
// channel. It never gates booking: a slot can be booked for an offline
// doctor.
type DoctorStatus string

const (
	StatusAvailable DoctorStatus = "available"
	StatusBusy      DoctorStatus = "busy"
	StatusOffline   DoctorStatus = "offline"
)

func (s DoctorStatus) Valid() bool {
	return s == StatusAvailable || s == StatusBusy || s == StatusOffline
}

type Doctor struct {
	ID              uuid.UUID
	Name            string
	Email           string
	PasswordHash    string
	Specialty       string
	Qualifications  []string
	Bio             string
	ClinicAddress   string
	Phone           string
	ExperienceYears int
	Fee             float64
	Status          DoctorStatus
	Lat             float64
	Lng             float64
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

type Patient struct {
	ID           uuid.UUID
	Name         string
	Email        string
	PasswordHash string
	DateOfBirth  *time.Time
	Gender       string
	Phone        string
	Address      string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// DoctorUpdate carries the whitelisted profile fields; nil means unchanged.
type DoctorUpdate struct {
	Name            *string
	Specialty       *string
	Qualifications  []string
	Bio             *string
	ClinicAddress   *string
	Phone           *string
	ExperienceYears *int
	Fee             *float64
	Lat             *float64
	Lng             *float64
}

// PatientUpdate carries the whitelisted profile fields; nil means unchanged.
type PatientUpdate struct {
	Name        *string
	DateOfBirth *time.Time
	Gender      *string
	Phone       *string
	Address     *string
}

// NearbyDoctor is a directory entry with its distance from the search
// point, in meters.
type NearbyDoctor struct {
	Doctor
	DistanceMeters float64
}
