package worker

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/Dandev001/maxed-homes-sub003/internal/metrics"
	"github.com/Dandev001/maxed-homes-sub003/internal/service"
	"github.com/Dandev001/maxed-homes-sub003/pkg/logger"
)

// ExpirationSweeperConfig contains configuration for the expiration sweeper
type ExpirationSweeperConfig struct {
	// SweepInterval is the interval between sweeps for overdue bookings
	SweepInterval time.Duration
	// BatchSize is the number of bookings to process in each sweep
	BatchSize int
}

// DefaultExpirationSweeperConfig returns default configuration
func DefaultExpirationSweeperConfig() *ExpirationSweeperConfig {
	return &ExpirationSweeperConfig{
		SweepInterval: 15 * time.Minute,
		BatchSize:     100,
	}
}

// ExpirationSweeper periodically moves bookings past their payment
// deadline to expired. Each booking goes through the same validated
// transition path as an interactive operation; a failure on one booking
// never aborts the rest of the pass.
type ExpirationSweeper struct {
	bookingService service.BookingService
	config         *ExpirationSweeperConfig
	log            *logger.Logger
	stopCh         chan struct{}
	wg             sync.WaitGroup
	mu             sync.Mutex
	running        bool

	// Stats
	totalExpired     int64
	totalFailed      int64
	lastSweepTime    time.Time
	lastExpiredCount int
}

// NewExpirationSweeper creates a new expiration sweeper
func NewExpirationSweeper(bookingService service.BookingService, config *ExpirationSweeperConfig) *ExpirationSweeper {
	if config == nil {
		config = DefaultExpirationSweeperConfig()
	}
	if config.SweepInterval <= 0 {
		config.SweepInterval = 15 * time.Minute
	}
	if config.BatchSize <= 0 {
		config.BatchSize = 100
	}

	return &ExpirationSweeper{
		bookingService: bookingService,
		config:         config,
		log:            logger.Get(),
		stopCh:         make(chan struct{}),
	}
}

// Start starts the expiration sweeper
func (w *ExpirationSweeper) Start(ctx context.Context) error {
	w.mu.Lock()
	if w.running {
		w.mu.Unlock()
		return fmt.Errorf("expiration sweeper already running")
	}
	w.running = true
	w.mu.Unlock()

	w.log.Info("Starting expiration sweeper")

	w.wg.Add(1)
	go w.run(ctx)

	return nil
}

// Stop stops the expiration sweeper
func (w *ExpirationSweeper) Stop() {
	w.mu.Lock()
	if !w.running {
		w.mu.Unlock()
		return
	}
	w.running = false
	w.mu.Unlock()

	w.log.Info("Stopping expiration sweeper")
	close(w.stopCh)
	w.wg.Wait()
	w.log.Info("Expiration sweeper stopped")
}

// run sweeps on a fixed interval until stopped
func (w *ExpirationSweeper) run(ctx context.Context) {
	defer w.wg.Done()

	ticker := time.NewTicker(w.config.SweepInterval)
	defer ticker.Stop()

	// Run immediately on start
	w.Sweep(ctx)

	for {
		select {
		case <-ctx.Done():
			return
		case <-w.stopCh:
			return
		case <-ticker.C:
			w.Sweep(ctx)
		}
	}
}

// Sweep runs a single expiration pass. It is idempotent: bookings already
// expired no longer match the selection predicate and are skipped.
func (w *ExpirationSweeper) Sweep(ctx context.Context) {
	start := time.Now()

	result, err := w.bookingService.ExpireOverdue(ctx, w.config.BatchSize)
	if err != nil {
		w.log.Error(fmt.Sprintf("Expiration sweep failed: %v", err))
		return
	}

	w.mu.Lock()
	w.lastSweepTime = start
	w.lastExpiredCount = result.Expired
	w.totalExpired += int64(result.Expired)
	w.totalFailed += int64(result.Failed)
	w.mu.Unlock()

	metrics.RecordSweepDuration(ctx, time.Since(start).Seconds())

	if result.Expired > 0 || result.Failed > 0 {
		w.log.Info(fmt.Sprintf("Expiration sweep done: expired=%d failed=%d duration=%s",
			result.Expired, result.Failed, time.Since(start)))
	}
}

// GetStats returns sweeper statistics
func (w *ExpirationSweeper) GetStats() *ExpirationSweeperStats {
	w.mu.Lock()
	defer w.mu.Unlock()

	return &ExpirationSweeperStats{
		IsRunning:        w.running,
		TotalExpired:     w.totalExpired,
		TotalFailed:      w.totalFailed,
		LastSweepTime:    w.lastSweepTime,
		LastExpiredCount: w.lastExpiredCount,
	}
}

// ExpirationSweeperStats contains sweeper statistics
type ExpirationSweeperStats struct {
	IsRunning        bool      `json:"is_running"`
	TotalExpired     int64     `json:"total_expired"`
	TotalFailed      int64     `json:"total_failed"`
	LastSweepTime    time.Time `json:"last_sweep_time"`
	LastExpiredCount int       `json:"last_expired_count"`
}
