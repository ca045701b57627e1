package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/docbook/booking-service/internal/auth"
	"github.com/docbook/booking-service/internal/directory"
)

// Doctors

func (h *Handlers) RegisterDoctor(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request_body", "could not parse JSON")
		return
	}
	if err := validate.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, "validation_error", err.Error())
		return
	}

	d, err := h.directory.RegisterDoctor(r.Context(), directory.RegisterDoctorInput{
		Name:      req.Name,
		Email:     req.Email,
		Password:  req.Password,
		Specialty: req.Specialty,
	})
	if err != nil {
		if errors.Is(err, directory.ErrEmailTaken) {
			writeError(w, http.StatusBadRequest, "email_taken", "email already registered")
			return
		}
		h.internalError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, toDoctorResponse(d))
}

func (h *Handlers) LoginDoctor(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request_body", "could not parse JSON")
		return
	}
	if err := validate.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, "validation_error", err.Error())
		return
	}

	token, d, err := h.directory.LoginDoctor(r.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, directory.ErrInvalidCredentials) {
			writeError(w, http.StatusBadRequest, "invalid_credentials", "invalid credentials")
			return
		}
		h.internalError(w, r, err)
		return
	}

	resp := toDoctorResponse(d)
	writeJSON(w, http.StatusOK, TokenResponse{Token: token, Doctor: &resp})
}

func (h *Handlers) GetDoctor(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_doctor_id", "id must be a valid UUID")
		return
	}

	d, err := h.directory.GetDoctor(r.Context(), id)
	if err != nil {
		if errors.Is(err, directory.ErrDoctorNotFound) {
			writeError(w, http.StatusNotFound, "doctor_not_found", "doctor not found")
			return
		}
		h.internalError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, toDoctorResponse(d))
}

func (h *Handlers) GetDoctorProfile(w http.ResponseWriter, r *http.Request) {
	doctorID, ok := requireRole(w, r, auth.RoleDoctor)
	if !ok {
		return
	}

	d, err := h.directory.GetDoctor(r.Context(), doctorID)
	if err != nil {
		if errors.Is(err, directory.ErrDoctorNotFound) {
			writeError(w, http.StatusNotFound, "doctor_not_found", "doctor not found")
			return
		}
		h.internalError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, toDoctorResponse(d))
}

func (h *Handlers) UpdateDoctorProfile(w http.ResponseWriter, r *http.Request) {
	doctorID, ok := requireRole(w, r, auth.RoleDoctor)
	if !ok {
		return
	}

	var req UpdateDoctorProfileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request_body", "could not parse JSON")
		return
	}

	d, err := h.directory.UpdateDoctor(r.Context(), doctorID, directory.DoctorUpdate{
		Name:            req.Name,
		Specialty:       req.Specialty,
		Qualifications:  req.Qualifications,
		Bio:             req.Bio,
		ClinicAddress:   req.ClinicAddress,
		Phone:           req.Phone,
		ExperienceYears: req.ExperienceYears,
		Fee:             req.Fee,
		Lat:             req.Lat,
		Lng:             req.Lng,
	})
	if err != nil {
		if errors.Is(err, directory.ErrDoctorNotFound) {
			writeError(w, http.StatusNotFound, "doctor_not_found", "doctor not found")
			return
		}
		h.internalError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, toDoctorResponse(d))
}

func (h *Handlers) ListDoctors(w http.ResponseWriter, r *http.Request) {
	doctors, err := h.directory.ListDoctors(r.Context())
	if err != nil {
		h.internalError(w, r, err)
		return
	}

	resp := make([]DoctorResponse, 0, len(doctors))
	for i := range doctors {
		resp = append(resp, toDoctorResponse(&doctors[i]))
	}

	writeJSON(w, http.StatusOK, resp)
}

func (h *Handlers) NearbyDoctors(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	lat, latErr := strconv.ParseFloat(q.Get("lat"), 64)
	lng, lngErr := strconv.ParseFloat(q.Get("lng"), 64)
	if latErr != nil || lngErr != nil {
		writeError(w, http.StatusBadRequest, "missing_coordinates", "lat and lng query parameters are required")
		return
	}

	radius := 5000.0
	if raw := q.Get("radius"); raw != "" {
		parsed, err := strconv.ParseFloat(raw, 64)
		if err != nil || parsed <= 0 {
			writeError(w, http.StatusBadRequest, "invalid_radius", "radius must be a positive number of meters")
			return
		}
		radius = parsed
	}

	doctors, err := h.directory.NearbyDoctors(r.Context(), lat, lng, radius, q.Get("specialty"))
	if err != nil {
		h.internalError(w, r, err)
		return
	}

	resp := make([]NearbyDoctorResponse, 0, len(doctors))
	for i := range doctors {
		resp = append(resp, NearbyDoctorResponse{
			DoctorResponse: toDoctorResponse(&doctors[i].Doctor),
			DistanceMeters: doctors[i].DistanceMeters,
		})
	}

	writeJSON(w, http.StatusOK, resp)
}

func (h *Handlers) SetDoctorStatus(w http.ResponseWriter, r *http.Request) {
	doctorID, ok := requireRole(w, r, auth.RoleDoctor)
	if !ok {
		return
	}

	var req SetStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request_body", "could not parse JSON")
		return
	}
	if err := validate.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, "validation_error", err.Error())
		return
	}

	d, err := h.directory.SetDoctorStatus(r.Context(), doctorID, directory.DoctorStatus(req.Status))
	if err != nil {
		switch {
		case errors.Is(err, directory.ErrDoctorNotFound):
			writeError(w, http.StatusNotFound, "doctor_not_found", "doctor not found")
		case errors.Is(err, directory.ErrInvalidStatus):
			writeError(w, http.StatusBadRequest, "invalid_status", "status must be available, busy, or offline")
		default:
			h.internalError(w, r, err)
		}
		return
	}

	writeJSON(w, http.StatusOK, toDoctorResponse(d))
}

// Patients

func (h *Handlers) RegisterUser(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request_body", "could not parse JSON")
		return
	}
	if err := validate.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, "validation_error", err.Error())
		return
	}

	p, err := h.directory.RegisterPatient(r.Context(), directory.RegisterPatientInput{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		if errors.Is(err, directory.ErrEmailTaken) {
			writeError(w, http.StatusBadRequest, "email_taken", "email already registered")
			return
		}
		h.internalError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, toPatientResponse(p))
}

func (h *Handlers) LoginUser(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request_body", "could not parse JSON")
		return
	}
	if err := validate.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, "validation_error", err.Error())
		return
	}

	token, p, err := h.directory.LoginPatient(r.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, directory.ErrInvalidCredentials) {
			writeError(w, http.StatusBadRequest, "invalid_credentials", "invalid credentials")
			return
		}
		h.internalError(w, r, err)
		return
	}

	resp := toPatientResponse(p)
	writeJSON(w, http.StatusOK, TokenResponse{Token: token, User: &resp})
}

func (h *Handlers) GetUserProfile(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireRole(w, r, auth.RolePatient)
	if !ok {
		return
	}

	p, err := h.directory.GetPatient(r.Context(), userID)
	if err != nil {
		if errors.Is(err, directory.ErrPatientNotFound) {
			writeError(w, http.StatusNotFound, "user_not_found", "user not found")
			return
		}
		h.internalError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, toPatientResponse(p))
}

func (h *Handlers) UpdateUserProfile(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireRole(w, r, auth.RolePatient)
	if !ok {
		return
	}

	var req UpdatePatientProfileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request_body", "could not parse JSON")
		return
	}

	upd := directory.PatientUpdate{
		Name:    req.Name,
		Gender:  req.Gender,
		Phone:   req.Phone,
		Address: req.Address,
	}
	if req.DateOfBirth != nil {
		dob, err := time.Parse("2006-01-02", *req.DateOfBirth)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid_dob", "dob must be YYYY-MM-DD")
			return
		}
		upd.DateOfBirth = &dob
	}

	p, err := h.directory.UpdatePatient(r.Context(), userID, upd)
	if err != nil {
		if errors.Is(err, directory.ErrPatientNotFound) {
			writeError(w, http.StatusNotFound, "user_not_found", "user not found")
			return
		}
		h.internalError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, toPatientResponse(p))
}

// requireRole enforces that the request is authenticated with the given
// role, writing the error response itself when not.
func requireRole(w http.ResponseWriter, r *http.Request, role auth.Role) (uuid.UUID, bool) {
	subject, ok := AuthSubject(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "missing_token", "authentication required")
		return uuid.Nil, false
	}
	if got, _ := AuthRole(r.Context()); got != role {
		writeError(w, http.StatusForbidden, "forbidden", string(role)+" role required")
		return uuid.Nil, false
	}
	return subject, true
}
