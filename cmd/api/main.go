package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/medagenda/clinic-api/internal/billing/stripe"
	"github.com/medagenda/clinic-api/internal/config"
	"github.com/medagenda/clinic-api/internal/email"
	"github.com/medagenda/clinic-api/internal/handler"
	appointmentHandler "github.com/medagenda/clinic-api/internal/handler/appointment"
	authHandler "github.com/medagenda/clinic-api/internal/handler/auth"
	billingHandler "github.com/medagenda/clinic-api/internal/handler/billing"
	clinicHandler "github.com/medagenda/clinic-api/internal/handler/clinic"
	dashboardHandler "github.com/medagenda/clinic-api/internal/handler/dashboard"
	doctorHandler "github.com/medagenda/clinic-api/internal/handler/doctor"
	patientHandler "github.com/medagenda/clinic-api/internal/handler/patient"
	"github.com/medagenda/clinic-api/internal/middleware"
	"github.com/medagenda/clinic-api/internal/repository/postgres"
	"github.com/medagenda/clinic-api/internal/router"
	appointmentService "github.com/medagenda/clinic-api/internal/service/appointment"
	authService "github.com/medagenda/clinic-api/internal/service/auth"
	billingService "github.com/medagenda/clinic-api/internal/service/billing"
	clinicService "github.com/medagenda/clinic-api/internal/service/clinic"
	dashboardService "github.com/medagenda/clinic-api/internal/service/dashboard"
	doctorService "github.com/medagenda/clinic-api/internal/service/doctor"
	patientService "github.com/medagenda/clinic-api/internal/service/patient"
	jwtauth "github.com/medagenda/clinic-api/pkg/auth"
	"github.com/medagenda/clinic-api/pkg/logger"
	"github.com/medagenda/clinic-api/pkg/messaging/redis"
	"github.com/medagenda/clinic-api/pkg/metrics"
	"github.com/medagenda/clinic-api/pkg/security"
	"github.com/medagenda/clinic-api/pkg/worker"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	appLogger := logger.NewLogger(nil)

	db, err := postgres.NewDB(cfg.Database)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer db.Close()

	base := postgres.NewBaseRepository(db)
	userRepo := postgres.NewUserRepository(base)
	clinicRepo := postgres.NewClinicRepository(base)
	doctorRepo := postgres.NewDoctorRepository(base)
	patientRepo := postgres.NewPatientRepository(base)
	appointmentRepo := postgres.NewAppointmentRepository(base)
	outboxRepo := postgres.NewOutboxRepository(base)

	gateway, err := stripe.NewGateway(cfg.Stripe.SecretKey, cfg.Stripe.WebhookSecret)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize billing gateway")
	}

	appMetrics := metrics.NewMetrics("medagenda", "api")

	var mailer email.Service = email.NoopService{}
	if cfg.Email.Enabled {
		mailer = email.NewSMTPService(email.Config{
			Host:     cfg.Email.Host,
			Port:     cfg.Email.Port,
			Username: cfg.Email.Username,
			Password: cfg.Email.Password,
			From:     cfg.Email.From,
		})
	}

	tokens := jwtauth.NewJWTService(cfg.JWT.Secret, cfg.JWT.ExpiryHours)
	hasher := security.NewBcryptHasher(0)

	authSvc := authService.NewService(userRepo, tokens, hasher)
	clinicSvc := clinicService.NewService(clinicRepo, outboxRepo, appLogger)
	doctorSvc := doctorService.NewService(doctorRepo)
	patientSvc := patientService.NewService(patientRepo)
	appointmentSvc := appointmentService.NewService(appointmentRepo, patientRepo, doctorRepo, mailer, appLogger)
	dashboardSvc := dashboardService.NewService(doctorRepo, patientRepo, appointmentRepo)
	billingSvc := billingService.NewService(gateway, userRepo, outboxRepo, appLogger, appMetrics)

	authMiddleware := middleware.NewAuthMiddleware(authSvc, clinicSvc)

	h := handler.NewHandler()
	r := router.NewRouter(
		authMiddleware,
		authHandler.NewHandler(authSvc),
		billingHandler.NewHandler(billingSvc, appMetrics),
		clinicHandler.NewHandler(clinicSvc),
		doctorHandler.NewHandler(doctorSvc),
		patientHandler.NewHandler(patientSvc),
		appointmentHandler.NewHandler(appointmentSvc),
		dashboardHandler.NewHandler(dashboardSvc),
		h,
		router.RouterConfig{
			RateLimit: middleware.RateLimiterConfig{
				RPS:   cfg.RateLimit.RPS,
				Burst: cfg.RateLimit.Burst,
			},
			CORSConfig:    middleware.DefaultCORSConfig(),
			MetricsPrefix: "medagenda_http",
		},
	)
	r.Setup()

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      r.Engine(),
		ReadTimeout:  time.Duration(cfg.Server.TimeoutSeconds) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.TimeoutSeconds) * time.Second,
	}

	broker, err := redis.NewRedisBroker(redis.Config{
		URL:          cfg.Redis.URL,
		MaxRetries:   cfg.Redis.MaxRetries,
		PoolSize:     cfg.Redis.PoolSize,
		MinIdleConns: cfg.Redis.MinIdleConns,
	}, appLogger.Zerolog())
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to Redis")
	}
	defer broker.Close()

	processorCtx, stopProcessor := context.WithCancel(context.Background())
	defer stopProcessor()

	outboxProcessor := worker.NewOutboxProcessor(outboxRepo, broker, worker.OutboxProcessorConfig{
		BatchSize:     cfg.Outbox.BatchSize,
		PollInterval:  time.Duration(cfg.Outbox.PollIntervalSeconds) * time.Second,
		RetryAttempts: cfg.Outbox.RetryAttempts,
		RetryDelay:    time.Duration(cfg.Outbox.RetryDelaySeconds) * time.Second,
	}, appLogger, appMetrics)
	go outboxProcessor.Start(processorCtx)

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("failed to start server")
		}
	}()
	log.Info().Int("port", cfg.Server.Port).Msg("server started")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("shutting down server...")

	stopProcessor()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal().Err(err).Msg("server forced to shutdown")
	}

	log.Info().Msg("server exited properly")
}
