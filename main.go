package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/Dandev001/maxed-homes-sub003/internal/di"
	"github.com/Dandev001/maxed-homes-sub003/internal/domain"
	"github.com/Dandev001/maxed-homes-sub003/internal/metrics"
	"github.com/Dandev001/maxed-homes-sub003/internal/repository"
	"github.com/Dandev001/maxed-homes-sub003/internal/service"
	"github.com/Dandev001/maxed-homes-sub003/internal/worker"
	"github.com/Dandev001/maxed-homes-sub003/pkg/config"
	"github.com/Dandev001/maxed-homes-sub003/pkg/database"
	"github.com/Dandev001/maxed-homes-sub003/pkg/logger"
	pkgredis "github.com/Dandev001/maxed-homes-sub003/pkg/redis"
	"github.com/Dandev001/maxed-homes-sub003/pkg/telemetry"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Initialize logger
	logCfg := &logger.Config{
		Level:       cfg.App.Environment,
		ServiceName: cfg.App.Name,
		Development: cfg.IsDevelopment(),
	}
	if err := logger.Init(logCfg); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()

	appLog := logger.Get()
	appLog.Info("Starting booking engine...")

	ctx := context.Background()

	// Initialize tracing
	if _, err := telemetry.Init(ctx, &telemetry.Config{
		Enabled:        cfg.OTel.Enabled,
		ServiceName:    cfg.OTel.ServiceName,
		ServiceVersion: cfg.App.Version,
		Environment:    cfg.App.Environment,
		CollectorAddr:  cfg.OTel.CollectorAddr,
		SampleRatio:    cfg.OTel.SampleRatio,
	}); err != nil {
		appLog.Warn(fmt.Sprintf("Tracing init failed, continuing without: %v", err))
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = telemetry.Shutdown(shutdownCtx)
	}()

	// Initialize metrics
	if cfg.OTel.Enabled {
		if _, err := telemetry.InitMetrics(ctx, cfg.OTel.ServiceName, cfg.OTel.CollectorAddr); err != nil {
			appLog.Warn(fmt.Sprintf("Metrics init failed, continuing without: %v", err))
		}
	}
	if err := metrics.Init(); err != nil {
		appLog.Warn(fmt.Sprintf("Failed to register metrics: %v", err))
	}

	// Initialize database connection
	dbCfg := &database.PostgresConfig{
		Host:            cfg.Database.Host,
		Port:            cfg.Database.Port,
		User:            cfg.Database.User,
		Password:        cfg.Database.Password,
		Database:        cfg.Database.DBName,
		SSLMode:         cfg.Database.SSLMode,
		MaxConns:        int32(cfg.Database.MaxOpenConns),
		MinConns:        int32(cfg.Database.MaxIdleConns),
		MaxConnLifetime: cfg.Database.ConnMaxLifetime,
		MaxConnIdleTime: cfg.Database.ConnMaxIdleTime,
		ConnectTimeout:  5 * time.Second,
		MaxRetries:      3,
		RetryInterval:   1 * time.Second,
		EnableTracing:   cfg.OTel.Enabled,
		ServiceName:     cfg.App.Name,
	}
	db, err := database.NewPostgres(ctx, dbCfg)
	if err != nil {
		appLog.Fatal(fmt.Sprintf("Database connection failed: %v", err))
	}
	defer db.Close()
	appLog.Info(fmt.Sprintf("Database connected (pool: min=%d, max=%d)", dbCfg.MinConns, dbCfg.MaxConns))

	// Initialize Redis connection; the booking cache is an optimization
	// only, so a failed connection downgrades to uncached reads.
	var redisClient *pkgredis.Client
	var bookingCache repository.BookingCache
	redisCfg := &pkgredis.Config{
		Host:         cfg.Redis.Host,
		Port:         cfg.Redis.Port,
		Password:     cfg.Redis.Password,
		DB:           cfg.Redis.DB,
		PoolSize:     cfg.Redis.PoolSize,
		MinIdleConns: cfg.Redis.MinIdleConns,
		DialTimeout:  cfg.Redis.DialTimeout,
		ReadTimeout:  cfg.Redis.ReadTimeout,
		WriteTimeout: cfg.Redis.WriteTimeout,
	}
	redisClient, err = pkgredis.NewClient(ctx, redisCfg)
	if err != nil {
		appLog.Warn(fmt.Sprintf("Redis connection failed, running without read cache: %v", err))
		redisClient = nil
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
		ServiceName: cfg.App.Name,
		ClientID:    cfg.Kafka.ClientID,
	})
	if err != nil {
		appLog.Warn(fmt.Sprintf("Kafka connection failed, using no-op publisher: %v", err))
		eventPublisher = service.NewNoOpEventPublisher()
	} else {
		appLog.Info("Kafka event publisher connected")
	}
	defer eventPublisher.Close()

	// Initialize repositories
	bookingRepo := repository.NewPostgresBookingRepository(db.Pool())
	propertyRepo := repository.NewPostgresPropertyRepository(db.Pool())

	// Build dependency injection container
	container := di.NewContainer(&di.ContainerConfig{
		DB:             db,
		Redis:          redisClient,
		BookingRepo:    bookingRepo,
		PropertyRepo:   propertyRepo,
		BookingCache:   bookingCache,
		EventPublisher: eventPublisher,
		ServiceConfig: &service.BookingServiceConfig{
			Rates: domain.PricingRates{
				ServiceFeeBps: cfg.Booking.ServiceFeeBps,
				TaxBps:        cfg.Booking.TaxBps,
				CommissionBps: cfg.Booking.CommissionBps,
			},
			PaymentDeadline: cfg.Booking.PaymentDeadline,
			SweepMaxRetries: cfg.Booking.SweepMaxRetries,
		},
		SweeperConfig: &worker.ExpirationSweeperConfig{
			SweepInterval: cfg.Booking.SweepInterval,
			BatchSize:     cfg.Booking.SweepBatchSize,
		},
	})

	// Start the in-process expiration sweeper
	sweeperCtx, stopSweeper := context.WithCancel(ctx)
	defer stopSweeper()
	if err := container.ExpirationSweeper.Start(sweeperCtx); err != nil {
		appLog.Fatal(fmt.Sprintf("Failed to start expiration sweeper: %v", err))
	}
	defer container.ExpirationSweeper.Stop()

	// Setup Gin
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery())

	// Health check endpoints
	router.GET("/health", container.HealthHandler.Health)
	router.GET("/ready", container.HealthHandler.Ready)

	// API routes
	v1 := router.Group("/api/v1")
	{
		v1.GET("/status", func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{
				"status":  "ok",
				"version": cfg.App.Version,
				"service": cfg.App.Name,
			})
		})

		bookings := v1.Group("/bookings")
		bookings.Use(guestIDMiddleware())
		{
			bookings.POST("", container.BookingHandler.CreateBooking)
			bookings.GET("", container.BookingHandler.GetGuestBookings)
			bookings.GET("/:id", container.BookingHandler.GetBooking)
			bookings.POST("/:id/approve", container.BookingHandler.ApproveBooking)
			bookings.POST("/:id/reject", container.BookingHandler.RejectBooking)
			bookings.POST("/:id/payment", container.BookingHandler.SubmitPayment)
			bookings.POST("/:id/payment/confirm", container.BookingHandler.ConfirmPayment)
			bookings.POST("/:id/payment/reject", container.BookingHandler.RejectPayment)
			bookings.POST("/:id/cancel", container.BookingHandler.CancelBooking)
			bookings.POST("/:id/complete", container.BookingHandler.CompleteBooking)
		}

		v1.GET("/properties/:id/bookings", container.BookingHandler.GetPropertyBookings)

		admin := v1.Group("/admin")
		{
			admin.POST("/bookings/expire", container.BookingHandler.ExpireOverdue)
			admin.GET("/sweeper/stats", func(c *gin.Context) {
				c.JSON(http.StatusOK, container.ExpirationSweeper.GetStats())
			})
		}
	}

	// Create HTTP server
	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadTimeout:       cfg.Server.ReadTimeout,
		WriteTimeout:      cfg.Server.WriteTimeout,
		IdleTimeout:       cfg.Server.IdleTimeout,
		ReadHeaderTimeout: 2 * time.Second,
		MaxHeaderBytes:    1 << 20, // 1MB
	}

	// Start server in goroutine
	go func() {
		appLog.Info(fmt.Sprintf("Booking engine listening on %s", addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			appLog.Fatal(fmt.Sprintf("Failed to start server: %v", err))
		}
	}()

	// Wait for interrupt signal for graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	appLog.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		appLog.Fatal(fmt.Sprintf("Server forced to shutdown: %v", err))
	}

	appLog.Info("Server exited gracefully")
}

// guestIDMiddleware extracts the authenticated guest id from the
// X-Guest-ID header. Authentication itself is handled upstream at the
// gateway; this service trusts the forwarded identity.
func guestIDMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if guestID := c.GetHeader("X-Guest-ID"); guestID != "" {
			c.Set("guest_id", guestID)
		}
		c.Next()
	}
}
