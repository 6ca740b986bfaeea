package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Dandev001/maxed-homes-sub003/internal/domain"
	"github.com/Dandev001/maxed-homes-sub003/internal/repository"
	"github.com/Dandev001/maxed-homes-sub003/internal/service"
	"github.com/Dandev001/maxed-homes-sub003/internal/worker"
	"github.com/Dandev001/maxed-homes-sub003/pkg/config"
	"github.com/Dandev001/maxed-homes-sub003/pkg/database"
	"github.com/Dandev001/maxed-homes-sub003/pkg/logger"
	pkgredis "github.com/Dandev001/maxed-homes-sub003/pkg/redis"
)

// Standalone expiration sweeper. Deploy this instead of the in-process
// sweeper when the API tier runs more than one replica, so only one
// process sweeps.
func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Initialize logger
	logCfg := &logger.Config{
		Level:       cfg.App.Environment,
		ServiceName: "booking-sweeper",
		Development: cfg.IsDevelopment(),
	}
	if err := logger.Init(logCfg); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()

	appLog := logger.Get()
	appLog.Info("Starting booking expiration sweeper...")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Initialize database connection
	dbCfg := &database.PostgresConfig{
		Host:          cfg.Database.Host,
		Port:          cfg.Database.Port,
		User:          cfg.Database.User,
		Password:      cfg.Database.Password,
		Database:      cfg.Database.DBName,
		SSLMode:       cfg.Database.SSLMode,
		MaxConns:      10,
		MinConns:      2,
		MaxRetries:    3,
		RetryInterval: 2 * time.Second,
	}
	db, err := database.NewPostgres(ctx, dbCfg)
	if err != nil {
		appLog.Fatal(fmt.Sprintf("Failed to connect to database: %v", err))
	}
	defer db.Close()
	appLog.Info("Database connected")

	// Redis is optional here; without it expired bookings simply age out
	// of the cache by TTL instead of being invalidated.
	var bookingCache repository.BookingCache
	redisClient, err := pkgredis.NewClient(ctx, &pkgredis.Config{
		Host:     cfg.Redis.Host,
		Port:     cfg.Redis.Port,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if err != nil {
		appLog.Warn(fmt.Sprintf("Redis connection failed, cache invalidation disabled: %v", err))
	} else {
		defer redisClient.Close()
		bookingCache = repository.NewRedisBookingCache(redisClient, cfg.Booking.CacheTTL)
		appLog.Info("Redis connected")
	}

	// Initialize Kafka event publisher
	var eventPublisher service.EventPublisher
	eventPublisher, err = service.NewKafkaEventPublisher(ctx, &service.EventPublisherConfig{
		Brokers:     cfg.Kafka.Brokers,
		Topic:       cfg.Kafka.EventTopic,
		ServiceName: "booking-sweeper",
		ClientID:    "booking-sweeper",
	})
	if err != nil {
		appLog.Warn(fmt.Sprintf("Kafka connection failed, using no-op publisher: %v", err))
		eventPublisher = service.NewNoOpEventPublisher()
	}
	defer eventPublisher.Close()

	// Initialize repositories and service
	bookingRepo := repository.NewPostgresBookingRepository(db.Pool())
	propertyRepo := repository.NewPostgresPropertyRepository(db.Pool())

	bookingService := service.NewBookingService(
		bookingRepo,
		propertyRepo,
		bookingCache,
		eventPublisher,
		&service.BookingServiceConfig{
			Rates: domain.PricingRates{
				ServiceFeeBps: cfg.Booking.ServiceFeeBps,
				TaxBps:        cfg.Booking.TaxBps,
				CommissionBps: cfg.Booking.CommissionBps,
			},
			PaymentDeadline: cfg.Booking.PaymentDeadline,
			SweepMaxRetries: cfg.Booking.SweepMaxRetries,
		},
	)

	// Create and start the sweeper
	sweeper := worker.NewExpirationSweeper(bookingService, &worker.ExpirationSweeperConfig{
		SweepInterval: cfg.Booking.SweepInterval,
		BatchSize:     cfg.Booking.SweepBatchSize,
	})
	if err := sweeper.Start(ctx); err != nil {
		appLog.Fatal(fmt.Sprintf("Failed to start sweeper: %v", err))
	}

	appLog.Info("Expiration sweeper started successfully")

	// Wait for interrupt signal for graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	appLog.Info("Shutting down sweeper...")
	sweeper.Stop()
	cancel()

	appLog.Info("Sweeper exited gracefully")
}
