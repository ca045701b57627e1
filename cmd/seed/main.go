package main

import (
	"context"
	"encoding/json"
	"flag"
	"log"
	"os"
	"time"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"golang.org/x/crypto/bcrypt"

	"github.com/docbook/booking-service/internal/db"
	"github.com/docbook/booking-service/internal/schedule"
)

// Every seeded account gets this password so local clients can log in.
const devPassword = "Password123!"

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)

	doctors := flag.Int("doctors", 50, "number of doctors to seed")
	patients := flag.Int("patients", 500, "number of patients to seed")
	applySchema := flag.Bool("apply-schema", true, "apply the database schema before seeding")
	flag.Parse()

	log.Println("seed starting")

	dsn := os.Getenv("POSTGRES_DSN")
	if dsn == "" {
		log.Fatal("POSTGRES_DSN is required")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	pool, err := db.ConnectPostgres(ctx, dsn)
	if err != nil {
		log.Fatalf("connect postgres: %v", err)
	}
	defer pool.Close()

	if *applySchema {
		if err := db.ApplySchema(context.Background(), pool); err != nil {
			log.Fatalf("apply schema: %v", err)
		}
		log.Println("schema applied")
	}

	gofakeit.Seed(time.Now().UnixNano())

	hash, err := bcrypt.GenerateFromPassword([]byte(devPassword), bcrypt.MinCost)
	if err != nil {
		log.Fatalf("hash dev password: %v", err)
	}

	if err := seedDoctors(context.Background(), pool, *doctors, string(hash)); err != nil {
		log.Fatalf("seed doctors: %v", err)
	}
	if err := seedPatients(context.Background(), pool, *patients, string(hash)); err != nil {
		log.Fatalf("seed patients: %v", err)
	}

	log.Println("seed complete")
}

func seedDoctors(ctx context.Context, pool *pgxpool.Pool, count int, passwordHash string) error {
	log.Printf("seeding %d doctors", count)

	specialties := []string{
		"Dermatology",
		"Cardiology",
		"General Practice",
		"Orthopedics",
		"Endocrinology",
		"Neurology",
		"Pediatrics",
		"Psychiatry",
		"Ophthalmology",
		"ENT",
	}

	for i := 0; i < count; i++ {
		id := uuid.New()

		_, err := pool.Exec(ctx, `
			INSERT INTO doctors (id, name, email, password_hash, specialty, qualifications,
			                     bio, clinic_address, phone, experience_years, fee, status,
			                     lat, lng, created_at, updated_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, 'offline', $12, $13, now(), now())
		`,
			id,
			gofakeit.Name(),
			gofakeit.Email(),
			passwordHash,
			specialties[i%len(specialties)],
			[]string{"MBBS", "MD"},
			gofakeit.Sentence(12),
			gofakeit.Address().Address,
			gofakeit.Phone(),
			gofakeit.Number(1, 35),
			float64(gofakeit.Number(20, 200)),
			gofakeit.Float64Range(12.90, 13.10),
			gofakeit.Float64Range(77.50, 77.70),
		)
		if err != nil {
			return err
		}

		if err := seedWeeklySchedule(ctx, pool, id); err != nil {
			return err
		}
	}

	return nil
}

// seedWeeklySchedule gives each doctor a Mon-Sat morning template with
// 30 minute slots.
func seedWeeklySchedule(ctx context.Context, pool *pgxpool.Pool, doctorID uuid.UUID) error {
	slots := []schedule.Slot{
		{StartTime: "09:00", EndTime: "09:30"},
		{StartTime: "09:30", EndTime: "10:00"},
		{StartTime: "10:00", EndTime: "10:30"},
		{StartTime: "10:30", EndTime: "11:00"},
		{StartTime: "11:00", EndTime: "11:30"},
		{StartTime: "11:30", EndTime: "12:00"},
	}

	working := schedule.DaySchedule{Active: true, Slots: slots}

	week := schedule.WeekSchedule{
		Mon: working,
		Tue: working,
		Wed: working,
		Thu: working,
		Fri: working,
		Sat: working,
	}.Normalize()

	raw, err := json.Marshal(week)
	if err != nil {
		return err
	}

	_, err = pool.Exec(ctx, `
		INSERT INTO weekly_schedules (doctor_id, week, created_at, updated_at)
		VALUES ($1, $2, now(), now())
		ON CONFLICT (doctor_id) DO UPDATE SET week = EXCLUDED.week, updated_at = now()
	`, doctorID, raw)
	return err
}

func seedPatients(ctx context.Context, pool *pgxpool.Pool, count int, passwordHash string) error {
	log.Printf("seeding %d patients", count)

	for i := 0; i < count; i++ {
		dob := gofakeit.DateRange(
			time.Date(1950, 1, 1, 0, 0, 0, 0, time.UTC),
			time.Date(2008, 12, 31, 0, 0, 0, 0, time.UTC),
		)

		_, err := pool.Exec(ctx, `
			INSERT INTO patients (id, name, email, password_hash, date_of_birth, gender,
			                      phone, address, created_at, updated_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, now(), now())
		`,
			uuid.New(),
			gofakeit.Name(),
			gofakeit.Email(),
			passwordHash,
			dob,
			gofakeit.Gender(),
			gofakeit.Phone(),
			gofakeit.Address().Address,
		)
		if err != nil {
			return err
		}
	}

	return nil
}
