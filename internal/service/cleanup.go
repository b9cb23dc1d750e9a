package service

import (
	"context"
	"log"
	"sync"
	"time"

	"gw2vault-api/internal/repository"
)

// CleanupConfig holds configuration for the cleanup scheduler.
type CleanupConfig struct {
	// StaleThreshold is the age after which a snapshot nobody refreshed is
	// deleted. Default: 30 days
	StaleThreshold time.Duration

	// Interval is how often the cleanup runs. Default: 6 hours
	Interval time.Duration

	// InitialDelay postpones the first run after Start. Default: 1 minute
	InitialDelay time.Duration
}

// CleanupScheduler periodically removes stale snapshots.
type CleanupScheduler struct {
	repo      repository.SnapshotRepository
	config    CleanupConfig
	ticker    *time.Ticker
	stopCh    chan struct{}
	stopOnce  sync.Once
	isRunning bool
	mu        sync.Mutex
}

// NewCleanupScheduler creates a new cleanup scheduler.
func NewCleanupScheduler(repo repository.SnapshotRepository, config CleanupConfig) *CleanupScheduler {
	if config.StaleThreshold <= 0 {
		config.StaleThreshold = 30 * 24 * time.Hour
	}
	if config.Interval <= 0 {
		config.Interval = 6 * time.Hour
	}
	if config.InitialDelay <= 0 {
		config.InitialDelay = time.Minute
	}

	return &CleanupScheduler{
		repo:   repo,
		config: config,
		stopCh: make(chan struct{}),
	}
}

// Start begins the cleanup scheduler.
func (s *CleanupScheduler) Start() {
	s.mu.Lock()
	if s.isRunning {
		s.mu.Unlock()
		return
	}
	s.isRunning = true
	s.ticker = time.NewTicker(s.config.Interval)
	s.mu.Unlock()

	log.Printf("[CleanupScheduler] Started - Interval: %v, Threshold: %v",
		s.config.Interval, s.config.StaleThreshold)

	go func() {
		select {
		case <-time.After(s.config.InitialDelay):
			s.runCleanup()
		case <-s.stopCh:
		}
	}()

	go s.run()
}

// run is the main cleanup loop.
func (s *CleanupScheduler) run() {
	for {
		select {
		case <-s.ticker.C:
			s.runCleanup()
		case <-s.stopCh:
			log.Printf("[CleanupScheduler] Stopped")
			return
		}
	}
}

// runCleanup performs the actual cleanup.
func (s *CleanupScheduler) runCleanup() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	deleted, err := s.repo.DeleteStale(ctx, s.config.StaleThreshold)
	if err != nil {
		log.Printf("[CleanupScheduler] Error during cleanup: %v", err)
		return
	}

	if deleted > 0 {
		log.Printf("[CleanupScheduler] Removed %d stale snapshots", deleted)
	} else {
		log.Printf("[CleanupScheduler] No stale snapshots")
	}
}

// Stop stops the cleanup scheduler.
func (s *CleanupScheduler) Stop() {
	s.stopOnce.Do(func() {
		s.mu.Lock()
		defer s.mu.Unlock()

		if s.ticker != nil {
			s.ticker.Stop()
		}
		close(s.stopCh)
		s.isRunning = false
	})
}

// RunNow removes stale snapshots immediately.
func (s *CleanupScheduler) RunNow(ctx context.Context) (int64, error) {
	return s.repo.DeleteStale(ctx, s.config.StaleThreshold)
}
