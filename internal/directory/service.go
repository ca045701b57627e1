package directory

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/docbook/booking-service/internal/auth"
	redisclient "github.com/docbook/booking-service/internal/redis"
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidStatus      = errors.New("invalid doctor status")
)

type Service struct {
	repo       Repository
	tokens     *auth.TokenManager
	status     redisclient.StatusPublisher
	bcryptCost int
	log        *zap.Logger
}

func NewService(repo Repository, tokens *auth.TokenManager, status redisclient.StatusPublisher, bcryptCost int, log *zap.Logger) *Service {
	return &Service{
		repo:       repo,
		tokens:     tokens,
		status:     status,
		bcryptCost: bcryptCost,
		log:        log,
	}
}

type RegisterDoctorInput struct {
	Name      string
	Email     string
	Password  string
	Specialty string
}

func (s *Service) RegisterDoctor(ctx context.Context, in RegisterDoctorInput) (*Doctor, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), s.bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	d := &Doctor{
		ID:             uuid.New(),
		Name:           in.Name,
		Email:          in.Email,
		PasswordHash:   string(hash),
		Specialty:      in.Specialty,
		Qualifications: []string{},
		Status:         StatusOffline,
	}

	if err := s.repo.CreateDoctor(ctx, d); err != nil {
		return nil, err
	}

	s.log.Info("doctor registered", zap.String("doctor_id", d.ID.String()))
	return d, nil
}

// LoginDoctor checks credentials and issues an access token. Unknown email
// and wrong password both map to ErrInvalidCredentials.
func (s *Service) LoginDoctor(ctx context.Context, email, password string) (string, *Doctor, error) {
	d, err := s.repo.GetDoctorByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, ErrDoctorNotFound) {
			return "", nil, ErrInvalidCredentials
		}
		return "", nil, fmt.Errorf("load doctor: %w", err)
	}

	if bcrypt.CompareHashAndPassword([]byte(d.PasswordHash), []byte(password)) != nil {
		return "", nil, ErrInvalidCredentials
	}

	token, err := s.tokens.Issue(d.ID, auth.RoleDoctor)
	if err != nil {
		return "", nil, err
	}

	return token, d, nil
}

func (s *Service) GetDoctor(ctx context.Context, id uuid.UUID) (*Doctor, error) {
	return s.repo.GetDoctorByID(ctx, id)
}

func (s *Service) UpdateDoctor(ctx context.Context, id uuid.UUID, upd DoctorUpdate) (*Doctor, error) {
	return s.repo.UpdateDoctor(ctx, id, upd)
}

func (s *Service) ListDoctors(ctx context.Context) ([]Doctor, error) {
	return s.repo.ListDoctors(ctx)
}

func (s *Service) NearbyDoctors(ctx context.Context, lat, lng, radiusMeters float64, specialty string) ([]NearbyDoctor, error) {
	if specialty == "all" {
		specialty = ""
	}
	return s.repo.ListNearbyDoctors(ctx, lat, lng, radiusMeters, specialty)
}

// SetDoctorStatus updates the live status and broadcasts the change. The
// broadcast is fire-and-forget: a publish failure is logged, not returned.
func (s *Service) SetDoctorStatus(ctx context.Context, id uuid.UUID, status DoctorStatus) (*Doctor, error) {
	if !status.Valid() {
		return nil, ErrInvalidStatus
	}

	d, err := s.repo.SetDoctorStatus(ctx, id, status)
	if err != nil {
		return nil, err
	}

	if err := s.status.PublishDoctorStatus(ctx, id, string(status)); err != nil {
		s.log.Error("doctor status broadcast failed",
			zap.String("doctor_id", id.String()),
			zap.Error(err),
		)
	}

	return d, nil
}

type RegisterPatientInput struct {
	Name     string
	Email    string
	Password string
}

func (s *Service) RegisterPatient(ctx context.Context, in RegisterPatientInput) (*Patient, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), s.bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	p := &Patient{
		ID:           uuid.New(),
		Name:         in.Name,
		Email:        in.Email,
		PasswordHash: string(hash),
	}

	if err := s.repo.CreatePatient(ctx, p); err != nil {
		return nil, err
	}

	s.log.Info("patient registered", zap.String("patient_id", p.ID.String()))
	return p, nil
}

func (s *Service) LoginPatient(ctx context.Context, email, password string) (string, *Patient, error) {
	p, err := s.repo.GetPatientByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, ErrPatientNotFound) {
			return "", nil, ErrInvalidCredentials
		}
		return "", nil, fmt.Errorf("load patient: %w", err)
	}

	if bcrypt.CompareHashAndPassword([]byte(p.PasswordHash), []byte(password)) != nil {
		return "", nil, ErrInvalidCredentials
	}

	token, err := s.tokens.Issue(p.ID, auth.RolePatient)
	if err != nil {
		return "", nil, err
	}

	return token, p, nil
}

func (s *Service) GetPatient(ctx context.Context, id uuid.UUID) (*Patient, error) {
	return s.repo.GetPatientByID(ctx, id)
}

func (s *Service) UpdatePatient(ctx context.Context, id uuid.UUID, upd PatientUpdate) (*Patient, error) {
	return s.repo.UpdatePatient(ctx, id, upd)
}
