package main

import (
	"context"
	"crypto/tls"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	"github.com/movementhq/booking-platform/cmd/mainconfig"
	"github.com/movementhq/booking-platform/internal/api/router"
	"github.com/movementhq/booking-platform/internal/appointments"
	"github.com/movementhq/booking-platform/internal/booking"
	"github.com/movementhq/booking-platform/internal/cancellation"
	appconfig "github.com/movementhq/booking-platform/internal/config"
	"github.com/movementhq/booking-platform/internal/directory"
	"github.com/movementhq/booking-platform/internal/http/handlers"
	"github.com/movementhq/booking-platform/internal/notify"
	"github.com/movementhq/booking-platform/internal/observability/metrics"
	"github.com/movementhq/booking-platform/internal/schedule"
	"github.com/movementhq/booking-platform/pkg/logging"
)

func main() {
	// Load .env if present, then configuration
	_ = godotenv.Load()
	cfg := appconfig.Load()

	// Initialize logger
	var logger *logging.Logger
	if cfg.Env == "development" {
		logger = logging.NewText(cfg.LogLevel)
	} else {
		logger = logging.New(cfg.LogLevel)
	}
	logger.Info("starting booking-platform API server",
		"env", cfg.Env,
		"port", cfg.Port,
	)

	awsCfg, err := mainconfig.LoadAWSConfig(context.Background(), cfg)
	if err != nil {
		logger.Error("failed to load AWS config", "error", err)
		os.Exit(1)
	}
	dynamoClient := dynamodb.NewFromConfig(awsCfg)

	redisOptions := &redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
	}
	if cfg.RedisTLS {
		redisOptions.TLSConfig = &tls.Config{MinVersion: tls.VersionTLS12}
	}
	redisClient := redis.NewClient(redisOptions)

	// Repositories and domain services
	registry := prometheus.DefaultRegisterer
	bookingMetrics := metrics.NewBookingMetrics(registry)

	professionalsRepo := directory.NewRepository(dynamoClient, cfg.ProfessionalsTable, logger)
	directoryCache := directory.NewCache(redisClient, professionalsRepo, cfg.DirectoryCacheTTL, logger)

	appointmentsRepo := appointments.NewRepository(dynamoClient, cfg.AppointmentsTable, appointments.Indexes{
		Slot:     cfg.SlotIndexName,
		Document: cfg.DocumentIndexName,
		Phone:    cfg.PhoneIndexName,
	}, logger)

	resolver := schedule.NewResolver(appointmentsRepo, cfg.AvailabilityFailPolicy == appconfig.FailOpen, logger)
	linkBuilder := notify.NewLinkBuilder(cfg.WhatsAppBaseURL, cfg.WhatsAppCountryCode, cfg.DefaultContactMsg, cfg.BookingSignature)

	bookingSvc := booking.NewService(appointmentsRepo, directoryCache, linkBuilder, bookingMetrics,
		cfg.WhatsAppCountryCode, cfg.AtomicReservations, logger)
	cancellationSvc := cancellation.NewService(appointmentsRepo, bookingMetrics,
		cfg.WhatsAppCountryCode, cfg.AtomicReservations, logger)

	// Handlers
	directoryHandler := directory.NewHandler(directoryCache, professionalsRepo, logger)
	availabilityHandler := handlers.NewAvailabilityHandler(directoryCache, resolver, linkBuilder, bookingMetrics, logger)
	reservationHandler := handlers.NewReservationHandler(bookingSvc, logger)
	cancellationHandler := handlers.NewCancellationHandler(cancellationSvc, logger)
	adminAppointments := handlers.NewAdminAppointmentsHandler(appointmentsRepo, logger)

	// Setup router
	r := router.New(&router.Config{
		Logger:              logger,
		DirectoryHandler:    directoryHandler,
		AvailabilityHandler: availabilityHandler,
		ReservationHandler:  reservationHandler,
		CancellationHandler: cancellationHandler,
		AdminAppointments:   adminAppointments,
		AdminAuthSecret:     cfg.AdminJWTSecret,
		MetricsHandler:      promhttp.Handler(),
		CORSAllowedOrigins:  cfg.CORSAllowedOrigins,
	})

	// Create HTTP server
	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		logger.Info("server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}

	logger.Info("server stopped")
}
