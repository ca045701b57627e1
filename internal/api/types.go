package api

import (
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/docbook/booking-service/internal/booking"
	"github.com/docbook/booking-service/internal/directory"
	"github.com/docbook/booking-service/internal/schedule"
)

var validate = validator.New()

// Requests

type BookAppointmentRequest struct {
	UserID       string `json:"userId" validate:"required,uuid"`
	ScheduledFor string `json:"scheduledFor" validate:"required"`
	Notes        string `json:"notes"`
}

type UpsertScheduleRequest struct {
	Doctor   string                `json:"doctor" validate:"required,uuid"`
	Schedule schedule.WeekSchedule `json:"schedule"`
}

type RegisterRequest struct {
	Name      string `json:"name" validate:"required"`
	Email     string `json:"email" validate:"required,email"`
	Password  string `json:"password" validate:"required,min=8"`
	Specialty string `json:"specialty"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type UpdateDoctorProfileRequest struct {
	Name            *string  `json:"name"`
	Specialty       *string  `json:"specialty"`
	Qualifications  []string `json:"qualifications"`
	Bio             *string  `json:"bio"`
	ClinicAddress   *string  `json:"clinicAddress"`
	Phone           *string  `json:"phone"`
	ExperienceYears *int     `json:"experience"`
	Fee             *float64 `json:"fee"`
	Lat             *float64 `json:"lat"`
	Lng             *float64 `json:"lng"`
}

type UpdatePatientProfileRequest struct {
	Name        *string `json:"name"`
	DateOfBirth *string `json:"dob"`
	Gender      *string `json:"gender"`
	Phone       *string `json:"phone"`
	Address     *string `json:"address"`
}

type SetStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=available busy offline"`
}

// Responses

type AppointmentResponse struct {
	ID           uuid.UUID `json:"id"`
	DoctorID     uuid.UUID `json:"doctorId"`
	UserID       uuid.UUID `json:"userId"`
	ScheduledFor time.Time `json:"scheduledFor"`
	Status       string    `json:"status"`
	Notes        string    `json:"notes,omitempty"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

func toAppointmentResponse(a *booking.Appointment) AppointmentResponse {
	return AppointmentResponse{
		ID:           a.ID,
		DoctorID:     a.DoctorID,
		UserID:       a.PatientID,
		ScheduledFor: a.ScheduledFor,
		Status:       string(a.Status),
		Notes:        a.Notes,
		CreatedAt:    a.CreatedAt,
		UpdatedAt:    a.UpdatedAt,
	}
}

type DoctorSummaryResponse struct {
	Name      string `json:"name"`
	Specialty string `json:"specialty"`
}

type PatientSummaryResponse struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

type PatientAppointmentResponse struct {
	AppointmentResponse
	Doctor DoctorSummaryResponse `json:"doctor"`
}

type DoctorAppointmentResponse struct {
	AppointmentResponse
	User PatientSummaryResponse `json:"user"`
}

type AvailableSlotsResponse struct {
	AvailableSlots []schedule.Slot `json:"availableSlots"`
}

type ScheduleResponse struct {
	Doctor    uuid.UUID             `json:"doctor"`
	Schedule  schedule.WeekSchedule `json:"schedule"`
	UpdatedAt time.Time             `json:"updatedAt"`
}

type DoctorResponse struct {
	ID              uuid.UUID `json:"id"`
	Name            string    `json:"name"`
	Email           string    `json:"email"`
	Specialty       string    `json:"specialty"`
	Qualifications  []string  `json:"qualifications"`
	Bio             string    `json:"bio,omitempty"`
	ClinicAddress   string    `json:"clinicAddress,omitempty"`
	Phone           string    `json:"phone,omitempty"`
	ExperienceYears int       `json:"experience"`
	Fee             float64   `json:"fee"`
	Status          string    `json:"status"`
	Lat             float64   `json:"lat"`
	Lng             float64   `json:"lng"`
}

func toDoctorResponse(d *directory.Doctor) DoctorResponse {
	return DoctorResponse{
		ID:              d.ID,
		Name:            d.Name,
		Email:           d.Email,
		Specialty:       d.Specialty,
		Qualifications:  d.Qualifications,
		Bio:             d.Bio,
		ClinicAddress:   d.ClinicAddress,
		Phone:           d.Phone,
		ExperienceYears: d.ExperienceYears,
		Fee:             d.Fee,
		Status:          string(d.Status),
		Lat:             d.Lat,
		Lng:             d.Lng,
	}
}

type NearbyDoctorResponse struct {
	DoctorResponse
	DistanceMeters float64 `json:"distanceMeters"`
}

type PatientResponse struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	Email       string    `json:"email"`
	DateOfBirth *string   `json:"dob,omitempty"`
	Gender      string    `json:"gender,omitempty"`
	Phone       string    `json:"phone,omitempty"`
	Address     string    `json:"address,omitempty"`
}

func toPatientResponse(p *directory.Patient) PatientResponse {
	resp := PatientResponse{
		ID:      p.ID,
		Name:    p.Name,
		Email:   p.Email,
		Gender:  p.Gender,
		Phone:   p.Phone,
		Address: p.Address,
	}
	if p.DateOfBirth != nil {
		dob := p.DateOfBirth.Format("2006-01-02")
		resp.DateOfBirth = &dob
	}
	return resp
}

type TokenResponse struct {
	Token  string           `json:"token"`
	Doctor *DoctorResponse  `json:"doctor,omitempty"`
	User   *PatientResponse `json:"user,omitempty"`
}

type MessageResponse struct {
	Message string `json:"message"`
}
