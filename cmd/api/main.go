package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"

	"github.com/vetdesk/clinic-api/config"
	"github.com/vetdesk/clinic-api/internal/accesscode"
	"github.com/vetdesk/clinic-api/internal/email"
	"github.com/vetdesk/clinic-api/internal/handler"
	authHandler "github.com/vetdesk/clinic-api/internal/handler/auth"
	petHandler "github.com/vetdesk/clinic-api/internal/handler/pet"
	recordHandler "github.com/vetdesk/clinic-api/internal/handler/record"
	"github.com/vetdesk/clinic-api/internal/middleware"
	"github.com/vetdesk/clinic-api/internal/recordlock"
	"github.com/vetdesk/clinic-api/internal/repository/postgres"
	"github.com/vetdesk/clinic-api/internal/router"
	"github.com/vetdesk/clinic-api/internal/service/audit"
	authService "github.com/vetdesk/clinic-api/internal/service/auth"
	petService "github.com/vetdesk/clinic-api/internal/service/pet"
	recordService "github.com/vetdesk/clinic-api/internal/service/record"
	"github.com/vetdesk/clinic-api/internal/session"
	"github.com/vetdesk/clinic-api/internal/worker"
	"github.com/vetdesk/clinic-api/pkg/auth"
	"github.com/vetdesk/clinic-api/pkg/logger"
	"github.com/vetdesk/clinic-api/pkg/metrics"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	lg := logger.NewLogger(&logger.Config{
		Level:      logger.ParseLevel(cfg.LogLevel),
		TimeFormat: time.RFC3339,
		Output:     os.Stderr,
		Pretty:     cfg.LogPretty,
	})
	log.Logger = lg.Zerolog()

	db, err := postgres.NewDB(cfg.Database)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer db.Close()

	base := postgres.NewBaseRepository(db)
	userRepo := postgres.NewUserRepository(base)
	petRepo := postgres.NewPetRepository(base)
	recordRepo := postgres.NewMedicalRecordRepository(base)
	vaccinationRepo := postgres.NewVaccinationRepository(base)
	auditRepo := postgres.NewAuditRepository(base)
	tokenRepo := postgres.NewTokenRepository(base)

	sessions, err := newSessionStore(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize session store")
	}

	m := metrics.New("clinic")
	emailSvc := email.WithBreaker(email.NewSMTPService(cfg.SMTP))
	jwtSvc := auth.NewJWTService(cfg.JWT)

	issuer := accesscode.NewIssuer(sessions, emailSvc, cfg.AccessCode, m)
	lock := recordlock.New(sessions)

	auditSvc := audit.NewService(auditRepo)
	authSvc := authService.NewService(userRepo, jwtSvc, tokenRepo, emailSvc, sessions, auditSvc)
	petSvc := petService.NewService(petRepo, vaccinationRepo, auditSvc)
	recordSvc := recordService.NewService(recordRepo, issuer, lock, auditSvc, m)

	authMw := middleware.NewAuthMiddleware(authSvc, userRepo)

	workerCtx, stopWorkers := context.WithCancel(context.Background())
	defer stopWorkers()
	retention := worker.NewAuditRetentionWorker(auditRepo, cfg.Audit.RetentionDays, cfg.Audit.CleanupInterval)
	go retention.Start(workerCtx)

	r := router.NewRouter(
		authMw,
		authHandler.NewHandler(authSvc),
		petHandler.NewHandler(petSvc),
		recordHandler.NewHandler(recordSvc),
		handler.NewHandler(),
		router.RouterConfig{
			RateLimit: middleware.RateLimiterConfig{
				Rate:  rate.Limit(cfg.RateLimit.RequestsPerSecond),
				Burst: cfg.RateLimit.Burst,
			},
			RateLimitOn:   cfg.RateLimit.Enabled,
			CORSConfig:    middleware.DefaultCORSConfig(),
			MetricsPrefix: "clinic_http",
		},
	)
	r.Setup()

	srv := &http.Server{
		Addr:           fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:        r.Engine(),
		ReadTimeout:    cfg.Server.ReadTimeout,
		WriteTimeout:   cfg.Server.WriteTimeout,
		MaxHeaderBytes: cfg.Server.MaxHeaderBytes,
	}

	go func() {
		log.Info().Int("port", cfg.Server.Port).Msg("starting server")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server failed")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down server")
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal().Err(err).Msg("forced shutdown")
	}
	log.Info().Msg("server stopped")
}

func newSessionStore(cfg *config.Config) (session.Store, error) {
	if cfg.Session.Backend != "redis" {
		return session.NewMemoryStore(), nil
	}

	opts, err := redis.ParseURL(cfg.Redis.URL)
	if err != nil {
		return nil, fmt.Errorf("invalid redis url: %w", err)
	}
	client := redis.NewClient(opts)
	if err := client.Ping(context.Background()).Err(); err != nil {
		return nil, fmt.Errorf("redis unreachable: %w", err)
	}
	return session.NewRedisStore(client), nil
}
