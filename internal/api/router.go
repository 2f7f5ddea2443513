package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	"github.com/clinicdesk/appointment-book/internal/appointment"
	"github.com/clinicdesk/appointment-book/internal/catalog"
	"github.com/clinicdesk/appointment-book/internal/schedule"
	"github.com/clinicdesk/appointment-book/internal/warranty"
	"github.com/clinicdesk/appointment-book/pkg/logging"
)

type RouterConfig struct {
	Service        *appointment.Service
	Warranty       *warranty.Engine
	ScheduleStore  *schedule.Store
	CatalogStore   *catalog.Store
	PgPool         *pgxpool.Pool
	Redis          *redis.Client
	Logger         *logging.Logger
	ReminderWindow time.Duration
	Env            string
	Version        string
}

func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	r.Use(RequestIDMiddleware)
	r.Use(LoggingMiddleware(cfg.Logger))

	// Health and metrics
	health := NewHealthHandler(cfg.PgPool, cfg.Redis, cfg.Env, cfg.Version)
	r.Get("/health/live", health.Liveness)
	r.Get("/health/ready", health.Readiness)
	r.Handle("/metrics", promhttp.Handler())

	// Appointment lifecycle
	r.Post("/appointments", scheduleAppointmentHandler(cfg.Service))
	r.Get("/appointments", listAppointmentsHandler(cfg.Service))
	r.Get("/appointments/{id}", getAppointmentHandler(cfg.Service))
	r.Patch("/appointments/{id}", editAppointmentHandler(cfg.Service))
	r.Delete("/appointments/{id}", deleteAppointmentHandler(cfg.Service))
	r.Post("/appointments/{id}/finish", finishAppointmentHandler(cfg.Service))
	r.Post("/appointments/{id}/status", changeStatusHandler(cfg.Service))
	r.Post("/appointments/{id}/reminder-sent", markReminderSentHandler(cfg.Service))

	// Patients
	r.Get("/patients", listPatientsHandler(cfg.Service))
	r.Get("/patients/{id}", getPatientHandler(cfg.Service))
	r.Patch("/patients/{id}", updatePatientHandler(cfg.Service))
	r.Post("/patients/{id}/status", setPatientStatusHandler(cfg.Service))
	r.Delete("/patients/{id}", deletePatientHandler(cfg.Service))
	r.Get("/patients/{id}/appointments", listPatientAppointmentsHandler(cfg.Service))
	r.Get("/patients/{id}/warranty", patientWarrantyHandler(cfg.Service, cfg.Warranty))

	// Day projections
	r.Get("/days/{date}/slots", daySlotsHandler(cfg.Service, cfg.ScheduleStore))
	r.Get("/days/{date}/summary", daySummaryHandler(cfg.Service))

	// Reminder worklist
	r.Get("/reminders", pendingRemindersHandler(cfg.Service, cfg.ReminderWindow))

	// Settings
	r.Get("/settings/schedule", getScheduleSettingsHandler(cfg.ScheduleStore))
	r.Put("/settings/schedule", putScheduleSettingsHandler(cfg.ScheduleStore))
	r.Get("/settings/catalog", getCatalogSettingsHandler(cfg.CatalogStore))
	r.Put("/settings/catalog", putCatalogSettingsHandler(cfg.CatalogStore))

	return r
}
