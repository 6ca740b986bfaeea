package di

import (
	"github.com/Dandev001/maxed-homes-sub003/internal/handler"
	"github.com/Dandev001/maxed-homes-sub003/internal/repository"
	"github.com/Dandev001/maxed-homes-sub003/internal/service"
	"github.com/Dandev001/maxed-homes-sub003/internal/worker"
	"github.com/Dandev001/maxed-homes-sub003/pkg/database"
	"github.com/Dandev001/maxed-homes-sub003/pkg/redis"
)

// Container holds all dependencies for the booking engine
type Container struct {
	// Infrastructure
	DB    *database.PostgresDB
	Redis *redis.Client

	// Repositories
	BookingRepo  repository.BookingRepository
	PropertyRepo repository.PropertyRepository
	BookingCache repository.BookingCache

	// Publishers
	EventPublisher service.EventPublisher

	// Services
	BookingService service.BookingService

	// Workers
	ExpirationSweeper *worker.ExpirationSweeper

	// Handlers
	HealthHandler  *handler.HealthHandler
	BookingHandler *handler.BookingHandler
}

// ContainerConfig contains configuration for building the container
type ContainerConfig struct {
	DB             *database.PostgresDB
	Redis          *redis.Client
	BookingRepo    repository.BookingRepository
	PropertyRepo   repository.PropertyRepository
	BookingCache   repository.BookingCache
	EventPublisher service.EventPublisher
	ServiceConfig  *service.BookingServiceConfig
	SweeperConfig  *worker.ExpirationSweeperConfig
}

// NewContainer creates a new dependency injection container
func NewContainer(cfg *ContainerConfig) *Container {
	c := &Container{
		DB:             cfg.DB,
		Redis:          cfg.Redis,
		BookingRepo:    cfg.BookingRepo,
		PropertyRepo:   cfg.PropertyRepo,
		BookingCache:   cfg.BookingCache,
		EventPublisher: cfg.EventPublisher,
	}

	// Initialize services
	c.BookingService = service.NewBookingService(
		c.BookingRepo,
		c.PropertyRepo,
		c.BookingCache,
		c.EventPublisher,
		cfg.ServiceConfig,
	)

	// Initialize workers
	c.ExpirationSweeper = worker.NewExpirationSweeper(c.BookingService, cfg.SweeperConfig)

	// Initialize handlers
	c.HealthHandler = handler.NewHealthHandler(c.DB, c.Redis)
	c.BookingHandler = handler.NewBookingHandler(c.BookingService)

	return c
}
