package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/docbook/booking-service/internal/auth"
	"github.com/docbook/booking-service/internal/availability"
	"github.com/docbook/booking-service/internal/booking"
	"github.com/docbook/booking-service/internal/directory"
	"github.com/docbook/booking-service/internal/schedule"
)

// stubServices implements every handler-facing service interface via
// function fields so each test wires only what it exercises.
type stubServices struct {
	book           func(ctx context.Context, doctorID, patientID uuid.UUID, scheduledFor, notes string) (*booking.Appointment, error)
	cancel         func(ctx context.Context, id uuid.UUID) (*booking.Appointment, error)
	remove         func(ctx context.Context, id uuid.UUID) error
	listForPatient func(ctx context.Context, patientID uuid.UUID) ([]booking.PatientAppointment, error)
	listForDoctor  func(ctx context.Context, doctorID uuid.UUID) ([]booking.DoctorAppointment, error)

	availableSlots func(ctx context.Context, doctorID uuid.UUID, date string) ([]schedule.Slot, error)

	setWeek    func(ctx context.Context, doctorID uuid.UUID, week schedule.WeekSchedule) (*schedule.WeeklySchedule, error)
	getWeek    func(ctx context.Context, doctorID uuid.UUID) (*schedule.WeeklySchedule, error)
	deleteWeek func(ctx context.Context, doctorID uuid.UUID) error

	registerPatient func(ctx context.Context, in directory.RegisterPatientInput) (*directory.Patient, error)
	loginPatient    func(ctx context.Context, email, password string) (string, *directory.Patient, error)
}

func (s *stubServices) Book(ctx context.Context, doctorID, patientID uuid.UUID, scheduledFor, notes string) (*booking.Appointment, error) {
	return s.book(ctx, doctorID, patientID, scheduledFor, notes)
}

func (s *stubServices) Cancel(ctx context.Context, id uuid.UUID) (*booking.Appointment, error) {
	return s.cancel(ctx, id)
}

func (s *stubServices) Remove(ctx context.Context, id uuid.UUID) error {
	return s.remove(ctx, id)
}

func (s *stubServices) ListForPatient(ctx context.Context, patientID uuid.UUID) ([]booking.PatientAppointment, error) {
	return s.listForPatient(ctx, patientID)
}

func (s *stubServices) ListForDoctor(ctx context.Context, doctorID uuid.UUID) ([]booking.DoctorAppointment, error) {
	return s.listForDoctor(ctx, doctorID)
}

func (s *stubServices) AvailableSlots(ctx context.Context, doctorID uuid.UUID, date string) ([]schedule.Slot, error) {
	return s.availableSlots(ctx, doctorID, date)
}

func (s *stubServices) SetWeek(ctx context.Context, doctorID uuid.UUID, week schedule.WeekSchedule) (*schedule.WeeklySchedule, error) {
	return s.setWeek(ctx, doctorID, week)
}

func (s *stubServices) GetWeek(ctx context.Context, doctorID uuid.UUID) (*schedule.WeeklySchedule, error) {
	return s.getWeek(ctx, doctorID)
}

func (s *stubServices) DeleteWeek(ctx context.Context, doctorID uuid.UUID) error {
	return s.deleteWeek(ctx, doctorID)
}

func (s *stubServices) RegisterDoctor(ctx context.Context, in directory.RegisterDoctorInput) (*directory.Doctor, error) {
	panic("not wired")
}

func (s *stubServices) LoginDoctor(ctx context.Context, email, password string) (string, *directory.Doctor, error) {
	panic("not wired")
}

func (s *stubServices) GetDoctor(ctx context.Context, id uuid.UUID) (*directory.Doctor, error) {
	panic("not wired")
}

func (s *stubServices) UpdateDoctor(ctx context.Context, id uuid.UUID, upd directory.DoctorUpdate) (*directory.Doctor, error) {
	panic("not wired")
}

func (s *stubServices) ListDoctors(ctx context.Context) ([]directory.Doctor, error) {
	panic("not wired")
}

func (s *stubServices) NearbyDoctors(ctx context.Context, lat, lng, radiusMeters float64, specialty string) ([]directory.NearbyDoctor, error) {
	panic("not wired")
}

func (s *stubServices) SetDoctorStatus(ctx context.Context, id uuid.UUID, status directory.DoctorStatus) (*directory.Doctor, error) {
	panic("not wired")
}

func (s *stubServices) RegisterPatient(ctx context.Context, in directory.RegisterPatientInput) (*directory.Patient, error) {
	return s.registerPatient(ctx, in)
}

func (s *stubServices) LoginPatient(ctx context.Context, email, password string) (string, *directory.Patient, error) {
	return s.loginPatient(ctx, email, password)
}

func (s *stubServices) GetPatient(ctx context.Context, id uuid.UUID) (*directory.Patient, error) {
	panic("not wired")
}

func (s *stubServices) UpdatePatient(ctx context.Context, id uuid.UUID, upd directory.PatientUpdate) (*directory.Patient, error) {
	panic("not wired")
}

var testTokens = auth.NewTokenManager("handler-test-secret", time.Hour)

func newTestRouter(stub *stubServices) http.Handler {
	log := zap.NewNop()
	handlers := NewHandlers(stub, stub, stub, stub, log)
	return NewRouter(RouterConfig{
		Handlers:      handlers,
		Tokens:        testTokens,
		Log:           log,
		Env:           "test",
		Version:       "test",
		CORSOrigins:   []string{"*"},
		AuthRateLimit: 1000,
	})
}

func bearerFor(t *testing.T, id uuid.UUID, role auth.Role) string {
	t.Helper()
	token, err := testTokens.Issue(id, role)
	require.NoError(t, err)
	return "Bearer " + token
}

func doJSON(t *testing.T, router http.Handler, method, target, authz string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}

	req := httptest.NewRequest(method, target, &buf)
	req.Header.Set("Content-Type", "application/json")
	if authz != "" {
		req.Header.Set("Authorization", authz)
	}

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func sampleAppointment(doctorID, patientID uuid.UUID) *booking.Appointment {
	return &booking.Appointment{
		ID:           uuid.New(),
		PatientID:    patientID,
		DoctorID:     doctorID,
		ScheduledFor: time.Date(2024, 5, 6, 9, 0, 0, 0, time.Local),
		Status:       booking.StatusBooked,
		CreatedAt:    time.Now(),
		UpdatedAt:    time.Now(),
	}
}

func TestBookAppointment_Created(t *testing.T) {
	doctorID := uuid.New()
	patientID := uuid.New()

	stub := &stubServices{
		book: func(ctx context.Context, dID, pID uuid.UUID, scheduledFor, notes string) (*booking.Appointment, error) {
			assert.Equal(t, doctorID, dID)
			assert.Equal(t, patientID, pID)
			assert.Equal(t, "2024-05-06T09:00:00", scheduledFor)
			return sampleAppointment(dID, pID), nil
		},
	}
	router := newTestRouter(stub)

	rec := doJSON(t, router, http.MethodPost, "/api/appointments/"+doctorID.String(),
		bearerFor(t, patientID, auth.RolePatient),
		map[string]string{"userId": patientID.String(), "scheduledFor": "2024-05-06T09:00:00"})

	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var resp AppointmentResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, doctorID, resp.DoctorID)
	assert.Equal(t, patientID, resp.UserID)
	assert.Equal(t, "booked", resp.Status)
}

func TestBookAppointment_Conflict(t *testing.T) {
	stub := &stubServices{
		book: func(ctx context.Context, dID, pID uuid.UUID, scheduledFor, notes string) (*booking.Appointment, error) {
			return nil, booking.ErrSlotTaken
		},
	}
	router := newTestRouter(stub)

	rec := doJSON(t, router, http.MethodPost, "/api/appointments/"+uuid.NewString(),
		bearerFor(t, uuid.New(), auth.RolePatient),
		map[string]string{"userId": uuid.NewString(), "scheduledFor": "2024-05-06T09:00:00"})

	require.Equal(t, http.StatusConflict, rec.Code)

	var resp ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "slot_already_booked", resp.Error)
}

func TestBookAppointment_Contended(t *testing.T) {
	stub := &stubServices{
		book: func(ctx context.Context, dID, pID uuid.UUID, scheduledFor, notes string) (*booking.Appointment, error) {
			return nil, booking.ErrSlotContended
		},
	}
	router := newTestRouter(stub)

	rec := doJSON(t, router, http.MethodPost, "/api/appointments/"+uuid.NewString(),
		bearerFor(t, uuid.New(), auth.RolePatient),
		map[string]string{"userId": uuid.NewString(), "scheduledFor": "2024-05-06T09:00:00"})

	require.Equal(t, http.StatusConflict, rec.Code)

	var resp ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "slot_being_booked", resp.Error)
}

func TestBookAppointment_InvalidScheduledFor(t *testing.T) {
	stub := &stubServices{
		book: func(ctx context.Context, dID, pID uuid.UUID, scheduledFor, notes string) (*booking.Appointment, error) {
			return nil, booking.ErrInvalidSchedule
		},
	}
	router := newTestRouter(stub)

	rec := doJSON(t, router, http.MethodPost, "/api/appointments/"+uuid.NewString(),
		bearerFor(t, uuid.New(), auth.RolePatient),
		map[string]string{"userId": uuid.NewString(), "scheduledFor": "whenever"})

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestBookAppointment_MissingUserID(t *testing.T) {
	router := newTestRouter(&stubServices{})

	rec := doJSON(t, router, http.MethodPost, "/api/appointments/"+uuid.NewString(),
		bearerFor(t, uuid.New(), auth.RolePatient),
		map[string]string{"scheduledFor": "2024-05-06T09:00:00"})

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestBookAppointment_Unauthenticated(t *testing.T) {
	router := newTestRouter(&stubServices{})

	rec := doJSON(t, router, http.MethodPost, "/api/appointments/"+uuid.NewString(), "",
		map[string]string{"userId": uuid.NewString(), "scheduledFor": "2024-05-06T09:00:00"})

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAvailableSlots_OK(t *testing.T) {
	stub := &stubServices{
		availableSlots: func(ctx context.Context, doctorID uuid.UUID, date string) ([]schedule.Slot, error) {
			assert.Equal(t, "2024-05-06", date)
			return []schedule.Slot{{StartTime: "09:30", EndTime: "10:00"}}, nil
		},
	}
	router := newTestRouter(stub)

	rec := doJSON(t, router, http.MethodGet,
		"/api/appointments/"+uuid.NewString()+"/slots?date=2024-05-06",
		bearerFor(t, uuid.New(), auth.RolePatient), nil)

	require.Equal(t, http.StatusOK, rec.Code)

	var resp AvailableSlotsResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.AvailableSlots, 1)
	assert.Equal(t, "09:30", resp.AvailableSlots[0].StartTime)
}

func TestAvailableSlots_InvalidDate(t *testing.T) {
	stub := &stubServices{
		availableSlots: func(ctx context.Context, doctorID uuid.UUID, date string) ([]schedule.Slot, error) {
			return nil, availability.ErrInvalidDate
		},
	}
	router := newTestRouter(stub)

	rec := doJSON(t, router, http.MethodGet,
		"/api/appointments/"+uuid.NewString()+"/slots?date=05-06-2024",
		bearerFor(t, uuid.New(), auth.RolePatient), nil)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAvailableSlots_NoSchedule(t *testing.T) {
	stub := &stubServices{
		availableSlots: func(ctx context.Context, doctorID uuid.UUID, date string) ([]schedule.Slot, error) {
			return nil, schedule.ErrScheduleNotFound
		},
	}
	router := newTestRouter(stub)

	rec := doJSON(t, router, http.MethodGet,
		"/api/appointments/"+uuid.NewString()+"/slots?date=2024-05-06",
		bearerFor(t, uuid.New(), auth.RolePatient), nil)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestCancelAppointment_OK(t *testing.T) {
	apptID := uuid.New()
	stub := &stubServices{
		cancel: func(ctx context.Context, id uuid.UUID) (*booking.Appointment, error) {
			require.Equal(t, apptID, id)
			a := sampleAppointment(uuid.New(), uuid.New())
			a.ID = apptID
			a.Status = booking.StatusCancelled
			return a, nil
		},
	}
	router := newTestRouter(stub)

	rec := doJSON(t, router, http.MethodPatch, "/api/appointments/"+apptID.String()+"/cancel",
		bearerFor(t, uuid.New(), auth.RolePatient), nil)

	require.Equal(t, http.StatusOK, rec.Code)

	var resp AppointmentResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "cancelled", resp.Status)
}

func TestCancelAppointment_NotFound(t *testing.T) {
	stub := &stubServices{
		cancel: func(ctx context.Context, id uuid.UUID) (*booking.Appointment, error) {
			return nil, booking.ErrAppointmentNotFound
		},
	}
	router := newTestRouter(stub)

	rec := doJSON(t, router, http.MethodPatch, "/api/appointments/"+uuid.NewString()+"/cancel",
		bearerFor(t, uuid.New(), auth.RolePatient), nil)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestDeleteAppointment_OK(t *testing.T) {
	stub := &stubServices{
		remove: func(ctx context.Context, id uuid.UUID) error { return nil },
	}
	router := newTestRouter(stub)

	rec := doJSON(t, router, http.MethodDelete, "/api/appointments/"+uuid.NewString()+"/delete",
		bearerFor(t, uuid.New(), auth.RolePatient), nil)

	require.Equal(t, http.StatusOK, rec.Code)

	var resp MessageResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "appointment deleted", resp.Message)
}

func TestListUserAppointments_EmptyIs404(t *testing.T) {
	stub := &stubServices{
		listForPatient: func(ctx context.Context, patientID uuid.UUID) ([]booking.PatientAppointment, error) {
			return nil, nil
		},
	}
	router := newTestRouter(stub)

	rec := doJSON(t, router, http.MethodGet, "/api/appointments/user/"+uuid.NewString(),
		bearerFor(t, uuid.New(), auth.RolePatient), nil)

	require.Equal(t, http.StatusNotFound, rec.Code)

	var resp ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "no_appointments", resp.Error)
}

func TestListUserAppointments_OK(t *testing.T) {
	patientID := uuid.New()
	stub := &stubServices{
		listForPatient: func(ctx context.Context, pID uuid.UUID) ([]booking.PatientAppointment, error) {
			require.Equal(t, patientID, pID)
			return []booking.PatientAppointment{
				{
					Appointment: *sampleAppointment(uuid.New(), pID),
					Doctor:      booking.DoctorSummary{Name: "Dr. Rao", Specialty: "Cardiology"},
				},
			}, nil
		},
	}
	router := newTestRouter(stub)

	rec := doJSON(t, router, http.MethodGet, "/api/appointments/user/"+patientID.String(),
		bearerFor(t, patientID, auth.RolePatient), nil)

	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Appointments []PatientAppointmentResponse `json:"appointments"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.Appointments, 1)
	assert.Equal(t, "Dr. Rao", resp.Appointments[0].Doctor.Name)
}

func TestListDoctorAppointments_RequiresDoctorRole(t *testing.T) {
	router := newTestRouter(&stubServices{})

	rec := doJSON(t, router, http.MethodGet, "/api/appointments/doctor",
		bearerFor(t, uuid.New(), auth.RolePatient), nil)

	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestListDoctorAppointments_OK(t *testing.T) {
	doctorID := uuid.New()
	stub := &stubServices{
		listForDoctor: func(ctx context.Context, dID uuid.UUID) ([]booking.DoctorAppointment, error) {
			require.Equal(t, doctorID, dID)
			return []booking.DoctorAppointment{
				{
					Appointment: *sampleAppointment(dID, uuid.New()),
					Patient:     booking.PatientSummary{Name: "Asha", Email: "asha@example.com"},
				},
			}, nil
		},
	}
	router := newTestRouter(stub)

	rec := doJSON(t, router, http.MethodGet, "/api/appointments/doctor",
		bearerFor(t, doctorID, auth.RoleDoctor), nil)

	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Appointments []DoctorAppointmentResponse `json:"appointments"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.Appointments, 1)
	assert.Equal(t, "Asha", resp.Appointments[0].User.Name)
}

func TestUpsertSchedule_OK(t *testing.T) {
	doctorID := uuid.New()
	stub := &stubServices{
		setWeek: func(ctx context.Context, dID uuid.UUID, week schedule.WeekSchedule) (*schedule.WeeklySchedule, error) {
			require.Equal(t, doctorID, dID)
			assert.True(t, week.Mon.Active)
			return &schedule.WeeklySchedule{DoctorID: dID, Week: week.Normalize(), UpdatedAt: time.Now()}, nil
		},
	}
	router := newTestRouter(stub)

	rec := doJSON(t, router, http.MethodPost, "/api/doctors/availability", "",
		map[string]any{
			"doctor": doctorID.String(),
			"schedule": map[string]any{
				"mon": map[string]any{
					"active": true,
					"slots":  []map[string]string{{"startTime": "09:00", "endTime": "09:30"}},
				},
			},
		})

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp ScheduleResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, doctorID, resp.Doctor)
	assert.Equal(t, "09:00", resp.Schedule.Mon.Slots[0].StartTime)
}

func TestUpsertSchedule_MissingDoctor(t *testing.T) {
	router := newTestRouter(&stubServices{})

	rec := doJSON(t, router, http.MethodPost, "/api/doctors/availability", "",
		map[string]any{"schedule": map[string]any{}})

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGetSchedule_NotFound(t *testing.T) {
	stub := &stubServices{
		getWeek: func(ctx context.Context, doctorID uuid.UUID) (*schedule.WeeklySchedule, error) {
			return nil, schedule.ErrScheduleNotFound
		},
	}
	router := newTestRouter(stub)

	rec := doJSON(t, router, http.MethodGet, "/api/doctors/availability?doctorId="+uuid.NewString(), "", nil)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestDeleteSchedule_OK(t *testing.T) {
	stub := &stubServices{
		deleteWeek: func(ctx context.Context, doctorID uuid.UUID) error { return nil },
	}
	router := newTestRouter(stub)

	rec := doJSON(t, router, http.MethodDelete, "/api/doctors/availability?doctorId="+uuid.NewString(), "", nil)

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRegisterUser_Created(t *testing.T) {
	stub := &stubServices{
		registerPatient: func(ctx context.Context, in directory.RegisterPatientInput) (*directory.Patient, error) {
			return &directory.Patient{ID: uuid.New(), Name: in.Name, Email: in.Email}, nil
		},
	}
	router := newTestRouter(stub)

	rec := doJSON(t, router, http.MethodPost, "/api/users/register", "",
		map[string]string{"name": "Asha", "email": "asha@example.com", "password": "Password123!"})

	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var resp PatientResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "asha@example.com", resp.Email)
}

func TestRegisterUser_ShortPassword(t *testing.T) {
	router := newTestRouter(&stubServices{})

	rec := doJSON(t, router, http.MethodPost, "/api/users/register", "",
		map[string]string{"name": "Asha", "email": "asha@example.com", "password": "short"})

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestLoginUser_InvalidCredentials(t *testing.T) {
	stub := &stubServices{
		loginPatient: func(ctx context.Context, email, password string) (string, *directory.Patient, error) {
			return "", nil, directory.ErrInvalidCredentials
		},
	}
	router := newTestRouter(stub)

	rec := doJSON(t, router, http.MethodPost, "/api/users/login", "",
		map[string]string{"email": "asha@example.com", "password": "wrongpass"})

	require.Equal(t, http.StatusBadRequest, rec.Code)

	var resp ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "invalid_credentials", resp.Error)
}

func TestLoginUser_OK(t *testing.T) {
	patientID := uuid.New()
	stub := &stubServices{
		loginPatient: func(ctx context.Context, email, password string) (string, *directory.Patient, error) {
			token, err := testTokens.Issue(patientID, auth.RolePatient)
			require.NoError(t, err)
			return token, &directory.Patient{ID: patientID, Name: "Asha", Email: email}, nil
		},
	}
	router := newTestRouter(stub)

	rec := doJSON(t, router, http.MethodPost, "/api/users/login", "",
		map[string]string{"email": "asha@example.com", "password": "Password123!"})

	require.Equal(t, http.StatusOK, rec.Code)

	var resp TokenResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.NotEmpty(t, resp.Token)
	require.NotNil(t, resp.User)
	assert.Equal(t, patientID, resp.User.ID)

	gotID, gotRole, err := testTokens.Verify(resp.Token)
	require.NoError(t, err)
	assert.Equal(t, patientID, gotID)
	assert.Equal(t, auth.RolePatient, gotRole)
}

func TestRequestIDHeaderEchoed(t *testing.T) {
	stub := &stubServices{
		deleteWeek: func(ctx context.Context, doctorID uuid.UUID) error { return nil },
	}
	router := newTestRouter(stub)

	req := httptest.NewRequest(http.MethodDelete, "/api/doctors/availability?doctorId="+uuid.NewString(), nil)
	req.Header.Set("X-Request-ID", "req-42")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, "req-42", rec.Header().Get("X-Request-ID"))
}
