package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/clinicdesk/appointment-book/internal/api"
	"github.com/clinicdesk/appointment-book/internal/appointment"
	"github.com/clinicdesk/appointment-book/internal/catalog"
	"github.com/clinicdesk/appointment-book/internal/config"
	"github.com/clinicdesk/appointment-book/internal/db"
	"github.com/clinicdesk/appointment-book/internal/observability/metrics"
	redisclient "github.com/clinicdesk/appointment-book/internal/redis"
	"github.com/clinicdesk/appointment-book/internal/schedule"
	"github.com/clinicdesk/appointment-book/internal/warranty"
	"github.com/clinicdesk/appointment-book/pkg/logging"
)

const version = "0.3.0"

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)
	log.Println("api-server starting up")

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config load error: %v", err)
	}

	logger := logging.New(cfg.LogLevel)
	log.Printf("running in env=%s http_port=%s tz=%s", cfg.Env, cfg.HTTPPort, cfg.ClinicTimezone)

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

	// Connect Redis
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

	// Settings are read once at startup; the settings endpoints mutate the
	// stores for the next boot.
	catStore := catalog.NewStore(rdb)
	catCtx, cancelCat := context.WithTimeout(rootCtx, 5*time.Second)
	cat, err := catStore.Get(catCtx)
	cancelCat()
	if err != nil {
		log.Fatalf("load service catalog: %v", err)
	}
	schedStore := schedule.NewStore(rdb)

	repo := appointment.NewPgRepository(pgPool)
	engine := warranty.NewEngine(cat, cfg.WarrantyPeriod)
	notifier := redisclient.NewChangeNotifier(rdb, "")
	lifecycleMetrics := metrics.NewLifecycleMetrics(nil)

	svc := appointment.NewService(repo, cat, engine, cfg.Location(), logger,
		appointment.WithNotifier(notifier),
		appointment.WithMetrics(lifecycleMetrics),
	)

	router := api.NewRouter(api.RouterConfig{
		Service:        svc,
		Warranty:       engine,
		ScheduleStore:  schedStore,
		CatalogStore:   catStore,
		PgPool:         pgPool,
		Redis:          rdb,
		Logger:         logger,
		ReminderWindow: cfg.ReminderWindow,
		Env:            cfg.Env,
		Version:        version,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.HTTPPort,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		log.Printf("listening on :%s", cfg.HTTPPort)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("http server error: %v", err)
		}
	}()

	<-rootCtx.Done()
	log.Println("shutting down api-server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("graceful shutdown error: %v", err)
	}
}
