package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/google/uuid"

	"github.com/docbook/booking-service/internal/schedule"
)

func (h *Handlers) UpsertSchedule(w http.ResponseWriter, r *http.Request) {
	var req UpsertScheduleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request_body", "could not parse JSON")
		return
	}
	if err := validate.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, "validation_error", err.Error())
		return
	}

	doctorID, err := uuid.Parse(req.Doctor)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_doctor_id", "doctor must be a valid UUID")
		return
	}

	saved, err := h.schedule.SetWeek(r.Context(), doctorID, req.Schedule)
	if err != nil {
		h.internalError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, ScheduleResponse{
		Doctor:    saved.DoctorID,
		Schedule:  saved.Week,
		UpdatedAt: saved.UpdatedAt,
	})
}

func (h *Handlers) GetSchedule(w http.ResponseWriter, r *http.Request) {
	doctorID, err := uuid.Parse(r.URL.Query().Get("doctorId"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_doctor_id", "doctorId query parameter must be a valid UUID")
		return
	}

	ws, err := h.schedule.GetWeek(r.Context(), doctorID)
	if err != nil {
		if errors.Is(err, schedule.ErrScheduleNotFound) {
			writeError(w, http.StatusNotFound, "schedule_not_found", "doctor weekly schedule not found")
			return
		}
		h.internalError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, ScheduleResponse{
		Doctor:    ws.DoctorID,
		Schedule:  ws.Week,
		UpdatedAt: ws.UpdatedAt,
	})
}

func (h *Handlers) DeleteSchedule(w http.ResponseWriter, r *http.Request) {
	doctorID, err := uuid.Parse(r.URL.Query().Get("doctorId"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_doctor_id", "doctorId query parameter must be a valid UUID")
		return
	}

	if err := h.schedule.DeleteWeek(r.Context(), doctorID); err != nil {
		if errors.Is(err, schedule.ErrScheduleNotFound) {
			writeError(w, http.StatusNotFound, "schedule_not_found", "doctor weekly schedule not found")
			return
		}
		h.internalError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, MessageResponse{Message: "weekly schedule deleted"})
}
