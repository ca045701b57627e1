package directory

import (
	"context"
	"errors"

	"github.com/google/uuid"
)

var (
	ErrDoctorNotFound  = errors.New("doctor not found")
	ErrPatientNotFound = errors.New("patient not found")
	ErrEmailTaken      = errors.New("email already registered")
)

// Repository contains all DB interactions needed by the directory service.
type Repository interface {
	CreateDoctor(ctx context.Context, d *Doctor) error
	GetDoctorByID(ctx context.Context, id uuid.UUID) (*Doctor, error)
	GetDoctorByEmail(ctx context.Context, email string) (*Doctor, error)
	UpdateDoctor(ctx context.Context, id uuid.UUID, upd DoctorUpdate) (*Doctor, error)
	SetDoctorStatus(ctx context.Context, id uuid.UUID, status DoctorStatus) (*Doctor, error)
	ListDoctors(ctx context.Context) ([]Doctor, error)
	ListNearbyDoctors(ctx context.Context, lat, lng, radiusMeters float64, specialty string) ([]NearbyDoctor, error)

	CreatePatient(ctx context.Context, p *Patient) error
	GetPatientByID(ctx context.Context, id uuid.UUID) (*Patient, error)
	GetPatientByEmail(ctx context.Context, email string) (*Patient, error)
	UpdatePatient(ctx context.Context, id uuid.UUID, upd PatientUpdate) (*Patient, error)
}
