// Package scheduler runs the periodic maintenance jobs of the API process.
package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
)

// LogRequestPurger deletes request log rows created before a cutoff
type LogRequestPurger interface {
	DeleteBefore(ctx context.Context, before time.Time) (int64, error)
}

// LogCleanupConfig holds configuration for the request log cleanup
type LogCleanupConfig struct {
	// Retention is how long rows are kept. Zero disables the job.
	Retention time.Duration

	// Hour is the local hour the daily purge runs at
	Hour int

	// CheckInterval is how often to check if it's time to run
	CheckInterval time.Duration
}

// DefaultLogCleanupConfig returns default cleanup configuration
func DefaultLogCleanupConfig() LogCleanupConfig {
	return LogCleanupConfig{
		Retention:     30 * 24 * time.Hour,
		Hour:          3,
		CheckInterval: time.Minute,
	}
}

func (c LogCleanupConfig) validate() error {
	if c.Retention < 0 {
		return fmt.Errorf("%w: negative retention", ErrInvalidConfig)
	}
	if c.Hour < 0 || c.Hour > 23 {
		return fmt.Errorf("%w: hour %d out of range", ErrInvalidConfig, c.Hour)
	}
	if c.CheckInterval <= 0 {
		return fmt.Errorf("%w: check interval must be positive", ErrInvalidConfig)
	}
	return nil
}

// LogCleanup purges old request log rows once a day
type LogCleanup struct {
	config LogCleanupConfig
	repo   LogRequestPurger
	logger *zap.Logger
	now    func() time.Time

	cancel      context.CancelFunc
	wg          sync.WaitGroup
	mu          sync.Mutex
	isRunning   bool
	lastRunDate string
}

// NewLogCleanup creates the cleanup job
func NewLogCleanup(config LogCleanupConfig, repo LogRequestPurger, logger *zap.Logger) (*LogCleanup, error) {
	if err := config.validate(); err != nil {
		return nil, err
	}
	return &LogCleanup{
		config: config,
		repo:   repo,
		logger: logger,
		now:    time.Now,
	}, nil
}

// Start starts the check loop. It is a no-op when retention is zero.
func (c *LogCleanup) Start(ctx context.Context) error {
	if c.config.Retention == 0 {
		c.logger.Info("Request log cleanup disabled")
		return nil
	}

	c.mu.Lock()
	if c.isRunning {
		c.mu.Unlock()
		return nil
	}
	c.isRunning = true
	c.mu.Unlock()

	ctx, cancel := context.WithCancel(ctx)
	c.cancel = cancel

	c.wg.Add(1)
	go c.runLoop(ctx)

	c.logger.Info("Request log cleanup started",
		zap.Duration("retention", c.config.Retention),
		zap.Int("hour", c.config.Hour),
		zap.Duration("check_interval", c.config.CheckInterval),
	)
	return nil
}

// Stop stops the loop and waits for a running purge to finish, or for ctx
func (c *LogCleanup) Stop(ctx context.Context) error {
	c.mu.Lock()
	if !c.isRunning {
		c.mu.Unlock()
		return nil
	}
	c.isRunning = false
	c.mu.Unlock()

	if c.cancel != nil {
		c.cancel()
	}

	done := make(chan struct{})
	go func() {
		c.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		c.logger.Info("Request log cleanup stopped")
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (c *LogCleanup) runLoop(ctx context.Context) {
	defer c.wg.Done()

	ticker := time.NewTicker(c.config.CheckInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			c.checkAndRun(ctx)
		}
	}
}

// checkAndRun purges once per day, during the configured hour
func (c *LogCleanup) checkAndRun(ctx context.Context) bool {
	now := c.now()
	if now.Hour() != c.config.Hour {
		return false
	}

	today := now.Format("2006-01-02")
	c.mu.Lock()
	if c.lastRunDate == today {
		c.mu.Unlock()
		return false
	}
	c.lastRunDate = today
	c.mu.Unlock()

	if _, err := c.RunOnce(ctx); err != nil {
		c.logger.Error("Request log cleanup failed", zap.Error(err))
	}
	return true
}

// RunOnce deletes every row older than the retention and returns how many were removed
func (c *LogCleanup) RunOnce(ctx context.Context) (int64, error) {
	cutoff := c.now().Add(-c.config.Retention)
	deleted, err := c.repo.DeleteBefore(ctx, cutoff)
	if err != nil {
		return 0, err
	}
	c.logger.Info("Request log cleanup completed",
		zap.Time("cutoff", cutoff),
		zap.Int64("deleted", deleted),
	)
	return deleted, nil
}
