package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/docbook/booking-service/internal/auth"
	"github.com/docbook/booking-service/internal/availability"
	"github.com/docbook/booking-service/internal/booking"
	"github.com/docbook/booking-service/internal/schedule"
)

type Handlers struct {
	booking      BookingService
	availability AvailabilityService
	schedule     ScheduleService
	directory    DirectoryService
	log          *zap.Logger
}

func NewHandlers(bookingSvc BookingService, availabilitySvc AvailabilityService, scheduleSvc ScheduleService, directorySvc DirectoryService, log *zap.Logger) *Handlers {
	return &Handlers{
		booking:      bookingSvc,
		availability: availabilitySvc,
		schedule:     scheduleSvc,
		directory:    directorySvc,
		log:          log,
	}
}

// internalError hides the underlying failure from the client; the details
// go to the log with the request id.
func (h *Handlers) internalError(w http.ResponseWriter, r *http.Request, err error) {
	h.log.Error("unhandled error",
		zap.String("request_id", GetRequestID(r.Context())),
		zap.String("path", r.URL.Path),
		zap.Error(err),
	)
	writeError(w, http.StatusInternalServerError, "internal_error", "unexpected server error")
}

func (h *Handlers) AvailableSlots(w http.ResponseWriter, r *http.Request) {
	doctorID, err := uuid.Parse(chi.URLParam(r, "doctorId"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_doctor_id", "doctorId must be a valid UUID")
		return
	}

	date := r.URL.Query().Get("date")

	slots, err := h.availability.AvailableSlots(r.Context(), doctorID, date)
	if err != nil {
		switch {
		case errors.Is(err, availability.ErrInvalidDate):
			writeError(w, http.StatusBadRequest, "invalid_date", "date must be YYYY-MM-DD")
		case errors.Is(err, schedule.ErrScheduleNotFound):
			writeError(w, http.StatusNotFound, "schedule_not_found", "doctor schedule not found")
		default:
			h.internalError(w, r, err)
		}
		return
	}

	writeJSON(w, http.StatusOK, AvailableSlotsResponse{AvailableSlots: slots})
}

func (h *Handlers) BookAppointment(w http.ResponseWriter, r *http.Request) {
	doctorID, err := uuid.Parse(chi.URLParam(r, "doctorId"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_doctor_id", "doctorId must be a valid UUID")
		return
	}

	var req BookAppointmentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request_body", "could not parse JSON")
		return
	}
	if err := validate.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, "validation_error", err.Error())
		return
	}

	patientID, err := uuid.Parse(req.UserID)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_user_id", "userId must be a valid UUID")
		return
	}

	appt, err := h.booking.Book(r.Context(), doctorID, patientID, req.ScheduledFor, req.Notes)
	if err != nil {
		switch {
		case errors.Is(err, booking.ErrInvalidSchedule):
			writeError(w, http.StatusBadRequest, "invalid_scheduled_for", "scheduledFor is not a valid date-time")
		case errors.Is(err, booking.ErrSlotTaken):
			writeError(w, http.StatusConflict, "slot_already_booked", "slot already booked")
		case errors.Is(err, booking.ErrSlotContended):
			writeError(w, http.StatusConflict, "slot_being_booked", "slot is currently being booked, please retry shortly")
		default:
			h.internalError(w, r, err)
		}
		return
	}

	writeJSON(w, http.StatusCreated, toAppointmentResponse(appt))
}

func (h *Handlers) CancelAppointment(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_appointment_id", "id must be a valid UUID")
		return
	}

	appt, err := h.booking.Cancel(r.Context(), id)
	if err != nil {
		if errors.Is(err, booking.ErrAppointmentNotFound) {
			writeError(w, http.StatusNotFound, "appointment_not_found", "appointment not found")
			return
		}
		h.internalError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, toAppointmentResponse(appt))
}

func (h *Handlers) DeleteAppointment(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_appointment_id", "id must be a valid UUID")
		return
	}

	if err := h.booking.Remove(r.Context(), id); err != nil {
		if errors.Is(err, booking.ErrAppointmentNotFound) {
			writeError(w, http.StatusNotFound, "appointment_not_found", "appointment not found")
			return
		}
		h.internalError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, MessageResponse{Message: "appointment deleted"})
}

func (h *Handlers) ListUserAppointments(w http.ResponseWriter, r *http.Request) {
	userID, err := uuid.Parse(chi.URLParam(r, "userId"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_user_id", "userId must be a valid UUID")
		return
	}

	appts, err := h.booking.ListForPatient(r.Context(), userID)
	if err != nil {
		h.internalError(w, r, err)
		return
	}

	// Empty result is a 404 here, mirroring the patient-facing contract.
	if len(appts) == 0 {
		writeError(w, http.StatusNotFound, "no_appointments", "no appointments found")
		return
	}

	resp := make([]PatientAppointmentResponse, 0, len(appts))
	for i := range appts {
		resp = append(resp, PatientAppointmentResponse{
			AppointmentResponse: toAppointmentResponse(&appts[i].Appointment),
			Doctor: DoctorSummaryResponse{
				Name:      appts[i].Doctor.Name,
				Specialty: appts[i].Doctor.Specialty,
			},
		})
	}

	writeJSON(w, http.StatusOK, map[string]any{"appointments": resp})
}

func (h *Handlers) ListDoctorAppointments(w http.ResponseWriter, r *http.Request) {
	doctorID, ok := AuthSubject(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "missing_token", "authentication required")
		return
	}
	if role, _ := AuthRole(r.Context()); role != auth.RoleDoctor {
		writeError(w, http.StatusForbidden, "forbidden", "doctor role required")
		return
	}

	appts, err := h.booking.ListForDoctor(r.Context(), doctorID)
	if err != nil {
		h.internalError(w, r, err)
		return
	}

	resp := make([]DoctorAppointmentResponse, 0, len(appts))
	for i := range appts {
		resp = append(resp, DoctorAppointmentResponse{
			AppointmentResponse: toAppointmentResponse(&appts[i].Appointment),
			User: PatientSummaryResponse{
				Name:  appts[i].Patient.Name,
				Email: appts[i].Patient.Email,
			},
		})
	}

	writeJSON(w, http.StatusOK, map[string]any{"appointments": resp})
}
