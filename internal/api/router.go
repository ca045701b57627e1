package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/docbook/booking-service/internal/auth"
)

type RouterConfig struct {
	Handlers      *Handlers
	Tokens        *auth.TokenManager
	PgPool        *pgxpool.Pool
	Redis         *redis.Client
	Log           *zap.Logger
	Env           string
	Version       string
	CORSOrigins   []string
	AuthRateLimit int
}

func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	r.Use(RequestIDMiddleware)
	r.Use(LoggingMiddleware(cfg.Log))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "PATCH", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Authorization", "Content-Type", "X-Request-ID"},
		AllowCredentials: true,
	}))

	requireAuth := RequireAuth(cfg.Tokens)
	authLimit := httprate.LimitByIP(cfg.AuthRateLimit, time.Minute)

	// Health endpoints
	health := NewHealthHandler(cfg.PgPool, cfg.Redis, cfg.Env, cfg.Version)
	r.Get("/health/live", health.Liveness)
	r.Get("/health/ready", health.Readiness)

	h := cfg.Handlers

	r.Route("/api/users", func(r chi.Router) {
		r.With(authLimit).Post("/register", h.RegisterUser)
		r.With(authLimit).Post("/login", h.LoginUser)
		r.With(requireAuth).Get("/profile", h.GetUserProfile)
		r.With(requireAuth).Patch("/profile", h.UpdateUserProfile)
	})

	r.Route("/api/doctors", func(r chi.Router) {
		r.With(authLimit).Post("/register", h.RegisterDoctor)
		r.With(authLimit).Post("/login", h.LoginDoctor)
		r.With(requireAuth).Get("/profile", h.GetDoctorProfile)
		r.With(requireAuth).Patch("/profile", h.UpdateDoctorProfile)
		r.With(requireAuth).Put("/status", h.SetDoctorStatus)
		r.Get("/all", h.ListDoctors)
		r.Get("/nearby", h.NearbyDoctors)
		r.Post("/availability", h.UpsertSchedule)
		r.Get("/availability", h.GetSchedule)
		r.Delete("/availability", h.DeleteSchedule)
		r.Get("/{id}", h.GetDoctor)
	})

	r.Route("/api/appointments", func(r chi.Router) {
		r.Use(requireAuth)
		r.Get("/{doctorId}/slots", h.AvailableSlots)
		r.Post("/{doctorId}", h.BookAppointment)
		r.Get("/user/{userId}", h.ListUserAppointments)
		r.Get("/doctor", h.ListDoctorAppointments)
		r.Patch("/{id}/cancel", h.CancelAppointment)
		r.Delete("/{id}/delete", h.DeleteAppointment)
	})

	return r
}
