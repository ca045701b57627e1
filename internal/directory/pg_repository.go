package directory

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

const uniqueViolation = "23505"

const doctorColumns = `id, name, email, password_hash, specialty, qualifications, bio,
	clinic_address, phone, experience_years, fee, status, lat, lng, created_at, updated_at`

const patientColumns = `id, name, email, password_hash, date_of_birth, gender, phone,
	address, created_at, updated_at`

type PgRepository struct {
	pool *pgxpool.Pool
}

func NewPgRepository(pool *pgxpool.Pool) *PgRepository {
	return &PgRepository{pool: pool}
}

// Helpers

func scanDoctor(row pgx.Row) (*Doctor, error) {
	var d Doctor

	err := row.Scan(
		&d.ID,
		&d.Name,
		&d.Email,
		&d.PasswordHash,
		&d.Specialty,
		&d.Qualifications,
		&d.Bio,
		&d.ClinicAddress,
		&d.Phone,
		&d.ExperienceYears,
		&d.Fee,
		&d.Status,
		&d.Lat,
		&d.Lng,
		&d.CreatedAt,
		&d.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrDoctorNotFound
		}
		return nil, err
	}

	return &d, nil
}

func scanPatient(row pgx.Row) (*Patient, error) {
	var p Patient

	err := row.Scan(
		&p.ID,
		&p.Name,
		&p.Email,
		&p.PasswordHash,
		&p.DateOfBirth,
		&p.Gender,
		&p.Phone,
		&p.Address,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrPatientNotFound
		}
		return nil, err
	}

	return &p, nil
}

func translateUnique(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		return ErrEmailTaken
	}
	return err
}

// Doctor methods

func (r *PgRepository) CreateDoctor(ctx context.Context, d *Doctor) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO doctors (id, name, email, password_hash, specialty, qualifications,
		                     bio, clinic_address, phone, experience_years, fee, status,
		                     lat, lng, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, now(), now())
	`, d.ID, d.Name, d.Email, d.PasswordHash, d.Specialty, d.Qualifications,
		d.Bio, d.ClinicAddress, d.Phone, d.ExperienceYears, d.Fee, d.Status, d.Lat, d.Lng)
	if err != nil {
		return translateUnique(err)
	}
	return nil
}

func (r *PgRepository) GetDoctorByID(ctx context.Context, id uuid.UUID) (*Doctor, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT `+doctorColumns+`
		FROM doctors
		WHERE id = $1
	`, id)
	return scanDoctor(row)
}

func (r *PgRepository) GetDoctorByEmail(ctx context.Context, email string) (*Doctor, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT `+doctorColumns+`
		FROM doctors
		WHERE email = $1
	`, email)
	return scanDoctor(row)
}

func (r *PgRepository) UpdateDoctor(ctx context.Context, id uuid.UUID, upd DoctorUpdate) (*Doctor, error) {
	row := r.pool.QueryRow(ctx, `
		UPDATE doctors
		SET name             = COALESCE($2, name),
		    specialty        = COALESCE($3, specialty),
		    qualifications   = COALESCE($4, qualifications),
		    bio              = COALESCE($5, bio),
		    clinic_address   = COALESCE($6, clinic_address),
		    phone            = COALESCE($7, phone),
		    experience_years = COALESCE($8, experience_years),
		    fee              = COALESCE($9, fee),
		    lat              = COALESCE($10, lat),
		    lng              = COALESCE($11, lng),
		    updated_at       = now()
		WHERE id = $1
		RETURNING `+doctorColumns+`
	`, id, upd.Name, upd.Specialty, upd.Qualifications, upd.Bio, upd.ClinicAddress,
		upd.Phone, upd.ExperienceYears, upd.Fee, upd.Lat, upd.Lng)
	return scanDoctor(row)
}

func (r *PgRepository) SetDoctorStatus(ctx context.Context, id uuid.UUID, status DoctorStatus) (*Doctor, error) {
	row := r.pool.QueryRow(ctx, `
		UPDATE doctors
		SET status = $2,
		    updated_at = now()
		WHERE id = $1
		RETURNING `+doctorColumns+`
	`, id, status)
	return scanDoctor(row)
}

func (r *PgRepository) ListDoctors(ctx context.Context) ([]Doctor, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+doctorColumns+`
		FROM doctors
		ORDER BY name
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []Doctor
	for rows.Next() {
		d, err := scanDoctor(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *d)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return result, nil
}

// ListNearbyDoctors orders doctors by haversine distance from the search
// point and keeps those within the radius, optionally filtered by
// specialty ('' means any).
func (r *PgRepository) ListNearbyDoctors(ctx context.Context, lat, lng, radiusMeters float64, specialty string) ([]NearbyDoctor, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+doctorColumns+`,
		       2 * 6371000 * asin(sqrt(
		           pow(sin(radians(lat - $1) / 2), 2) +
		           cos(radians($1)) * cos(radians(lat)) *
		           pow(sin(radians(lng - $2) / 2), 2)
		       )) AS distance_meters
		FROM doctors
		WHERE ($4 = '' OR specialty = $4)
		  AND 2 * 6371000 * asin(sqrt(
		          pow(sin(radians(lat - $1) / 2), 2) +
		          cos(radians($1)) * cos(radians(lat)) *
		          pow(sin(radians(lng - $2) / 2), 2)
		      )) <= $3
		ORDER BY distance_meters
	`, lat, lng, radiusMeters, specialty)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []NearbyDoctor
	for rows.Next() {
		var nd NearbyDoctor
		err := rows.Scan(
			&nd.ID,
			&nd.Name,
			&nd.Email,
			&nd.PasswordHash,
			&nd.Specialty,
			&nd.Qualifications,
			&nd.Bio,
			&nd.ClinicAddress,
			&nd.Phone,
			&nd.ExperienceYears,
			&nd.Fee,
			&nd.Status,
			&nd.Lat,
			&nd.Lng,
			&nd.CreatedAt,
			&nd.UpdatedAt,
			&nd.DistanceMeters,
		)
		if err != nil {
			return nil, err
		}
		result = append(result, nd)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return result, nil
}

// Patient methods

func (r *PgRepository) CreatePatient(ctx context.Context, p *Patient) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO patients (id, name, email, password_hash, date_of_birth, gender,
		                      phone, address, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, now(), now())
	`, p.ID, p.Name, p.Email, p.PasswordHash, p.DateOfBirth, p.Gender, p.Phone, p.Address)
	if err != nil {
		return translateUnique(err)
	}
	return nil
}

func (r *PgRepository) GetPatientByID(ctx context.Context, id uuid.UUID) (*Patient, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT `+patientColumns+`
		FROM patients
		WHERE id = $1
	`, id)
	return scanPatient(row)
}

func (r *PgRepository) GetPatientByEmail(ctx context.Context, email string) (*Patient, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT `+patientColumns+`
		FROM patients
		WHERE email = $1
	`, email)
	return scanPatient(row)
}

func (r *PgRepository) UpdatePatient(ctx context.Context, id uuid.UUID, upd PatientUpdate) (*Patient, error) {
	row := r.pool.QueryRow(ctx, `
		UPDATE patients
		SET name          = COALESCE($2, name),
		    date_of_birth = COALESCE($3, date_of_birth),
		    gender        = COALESCE($4, gender),
		    phone         = COALESCE($5, phone),
		    address       = COALESCE($6, address),
		    updated_at    = now()
		WHERE id = $1
		RETURNING `+patientColumns+`
	`, id, upd.Name, upd.DateOfBirth, upd.Gender, upd.Phone, upd.Address)
	return scanPatient(row)
}
