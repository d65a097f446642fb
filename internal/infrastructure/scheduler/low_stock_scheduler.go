package scheduler

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Scanner is the scan operation the scheduler drives. It returns the
// number of records flagged on this pass.
type Scanner interface {
	Scan(ctx context.Context) (int, error)
}

// Config holds low stock scheduler configuration
type Config struct {
	Enabled  bool
	Interval time.Duration
	// ScanTimeout bounds a single scan pass
	ScanTimeout time.Duration
}

// DefaultConfig returns default scheduler configuration
func DefaultConfig() Config {
	return Config{
		Enabled:     true,
		Interval:    15 * time.Minute,
		ScanTimeout: time.Minute,
	}
}

// LowStockScheduler periodically runs the low stock scan. The scan is
// read-only, so overlapping with other writers is safe; passes never
// overlap each other because they run on one goroutine.
type LowStockScheduler struct {
	config  Config
	scanner Scanner
	logger  *zap.Logger

	cancel    context.CancelFunc
	wg        sync.WaitGroup
	mu        sync.Mutex
	isRunning bool
}

// NewLowStockScheduler creates a new scheduler instance
func NewLowStockScheduler(config Config, scanner Scanner, logger *zap.Logger) *LowStockScheduler {
	if config.Interval <= 0 {
		config.Interval = DefaultConfig().Interval
	}
	if config.ScanTimeout <= 0 {
		config.ScanTimeout = DefaultConfig().ScanTimeout
	}
	return &LowStockScheduler{
		config:  config,
		scanner: scanner,
		logger:  logger,
	}
}

// Start starts the scan loop
func (s *LowStockScheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.isRunning {
		s.mu.Unlock()
		return nil
	}
	s.isRunning = true
	s.mu.Unlock()

	ctx, cancel := context.WithCancel(ctx)
	s.cancel = cancel

	s.wg.Add(1)
	go s.loop(ctx)

	s.logger.Info("low stock scheduler started",
		zap.Duration("interval", s.config.Interval),
	)
	return nil
}

// Stop gracefully stops the scheduler
func (s *LowStockScheduler) Stop(ctx context.Context) error {
	s.mu.Lock()
	if !s.isRunning {
		s.mu.Unlock()
		return nil
	}
	s.isRunning = false
	s.mu.Unlock()

	if s.cancel != nil {
		s.cancel()
	}

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		s.logger.Info("low stock scheduler stopped")
		return nil
	case <-ctx.Done():
		s.logger.Warn("low stock scheduler stop timed out")
		return ctx.Err()
	}
}

func (s *LowStockScheduler) loop(ctx context.Context) {
	defer s.wg.Done()

	ticker := time.NewTicker(s.config.Interval)
	defer ticker.Stop()

	// One pass at startup so alerts don't wait a full interval
	s.runScan(ctx)

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.runScan(ctx)
		}
	}
}

func (s *LowStockScheduler) runScan(ctx context.Context) {
	scanCtx, cancel := context.WithTimeout(ctx, s.config.ScanTimeout)
	defer cancel()

	flagged, err := s.scanner.Scan(scanCtx)
	if err != nil {
		s.logger.Error("low stock scan failed", zap.Error(err))
		return
	}
	if flagged > 0 {
		s.logger.Info("low stock scan completed", zap.Int("flagged", flagged))
	} else {
		s.logger.Debug("low stock scan completed, nothing flagged")
	}
}
