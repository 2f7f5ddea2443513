package main

import (
	"context"
	"log"
	"net/http"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/clinicdesk/appointment-book/internal/appointment"
	"github.com/clinicdesk/appointment-book/internal/config"
	"github.com/clinicdesk/appointment-book/internal/db"
	"github.com/clinicdesk/appointment-book/internal/observability/metrics"
	"github.com/clinicdesk/appointment-book/internal/reminder"
	redisclient "github.com/clinicdesk/appointment-book/internal/redis"
	"github.com/clinicdesk/appointment-book/pkg/logging"
)

// The worker keeps the latest collection snapshot in memory (refreshed by the
// change feed) and recomputes the due-reminder worklist on every refresh and
// on a timer, so the list stays current as time passes even without writes.
// It derives and logs only; delivery stays with the front desk.

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)
	log.Println("reminder-worker starting up")

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config load error: %v", err)
	}

	logger := logging.New(cfg.LogLevel)
	log.Printf("running reminder worker in env=%s interval=%s window=%s", cfg.Env, cfg.WorkerInterval, cfg.ReminderWindow)

	rootCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Connect Postgres
	pgCtx, cancelPg := context.WithTimeout(rootCtx, 10*time.Second)
	pgPool, err := db.ConnectPostgres(pgCtx, cfg.PostgresDSN)
	cancelPg()
	if err != nil {
		log.Fatalf("postgres connection error: %v", err)
	}
	defer pgPool.Close()
	log.Println("connected to Postgres")

	rdb, err := redisclient.NewRedisClient(cfg.RedisAddr, cfg.RedisUsername, cfg.RedisPassword)
	if err != nil {
		log.Fatalf("redis connection error: %v", err)
	}
	defer func() {
		if err := rdb.Close(); err != nil {
			log.Printf("error closing redis: %v", err)
		}
	}()
	log.Println("connected to Redis")

	repo := appointment.NewPgRepository(pgPool)
	notifier := redisclient.NewChangeNotifier(rdb, "")
	watcher := appointment.NewWatcher(repo, notifier, logger)
	reminderMetrics := metrics.NewReminderMetrics(nil)

	var mu sync.Mutex
	var latest appointment.Snapshot

	recompute := func() {
		mu.Lock()
		snap := latest
		mu.Unlock()

		due := reminder.Pending(snap.Appointments, snap.Patients, time.Now(), cfg.ReminderWindow)
		reminderMetrics.ObserveRun(len(due), nil)

		for _, d := range due {
			logger.Info("reminder due",
				"appointment_id", d.AppointmentID,
				"patient", d.PatientName,
				"phone", d.PatientPhone,
				"service", d.ServiceType,
				"scheduled_at", d.ScheduledAt,
				"preference", d.Preference,
			)
		}
		logger.Info("reminder run complete", "due", len(due))
	}

	unsubscribe, err := watcher.Subscribe(rootCtx,
		func(snap appointment.Snapshot) {
			mu.Lock()
			latest = snap
			mu.Unlock()
			recompute()
		},
		func(err error) {
			logger.Warn("snapshot feed error", "error", err)
			reminderMetrics.ObserveRun(0, err)
		},
	)
	if err != nil {
		log.Fatalf("subscribe snapshot feed: %v", err)
	}
	defer unsubscribe()

	// Expose worker metrics.
	metricsSrv := &http.Server{
		Addr:              ":" + cfg.HTTPPort,
		Handler:           promhttp.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		if err := metricsSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Printf("metrics server error: %v", err)
		}
	}()
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		_ = metricsSrv.Shutdown(shutdownCtx)
	}()

	ticker := time.NewTicker(cfg.WorkerInterval)
	defer ticker.Stop()

	for {
		select {
		case <-rootCtx.Done():
			log.Println("shutdown signal received, stopping reminder worker")
			return
		case <-ticker.C:
			recompute()
		}
	}
}
