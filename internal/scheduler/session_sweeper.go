package scheduler

import (
	"context"
	"time"

	"github.com/MrSnakeDoc/bikeyard/internal/logger"
)

const (
	// DefaultSessionIdleTTL is the idle time after which a session is closed
	DefaultSessionIdleTTL = 30 * time.Minute
)

// SessionRegistry is the part of the session registry the sweeper needs.
type SessionRegistry interface {
	Idle(threshold time.Duration) []string
	Delete(ctx context.Context, id string) error
}

// SessionSweeper periodically closes idle sessions
type SessionSweeper struct {
	registry  SessionRegistry
	logger    logger.Logger
	interval  time.Duration
	threshold time.Duration
	stopCh    chan struct{}
	doneCh    chan struct{}
}

// NewSessionSweeper creates a new session sweeper
func NewSessionSweeper(
	registry SessionRegistry,
	log logger.Logger,
	interval time.Duration,
	threshold time.Duration,
) *SessionSweeper {
	if threshold <= 0 {
		threshold = DefaultSessionIdleTTL
	}
	if interval <= 0 {
		interval = time.Minute
	}

	return &SessionSweeper{
		registry:  registry,
		logger:    log,
		interval:  interval,
		threshold: threshold,
		stopCh:    make(chan struct{}),
		doneCh:    make(chan struct{}),
	}
}

// Start begins the periodic sweep
func (ss *SessionSweeper) Start(ctx context.Context) {
	ticker := time.NewTicker(ss.interval)
	go func() {
		defer close(ss.doneCh)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				ss.Sweep(ctx)
			case <-ss.stopCh:
				return
			case <-ctx.Done():
				return
			}
		}
	}()
}

// Stop stops the sweeper and waits for its goroutine
func (ss *SessionSweeper) Stop() {
	close(ss.stopCh)
	<-ss.doneCh
}

// Sweep closes the sessions idle for longer than the threshold and returns
// how many were closed.
func (ss *SessionSweeper) Sweep(ctx context.Context) int {
	closed := 0
	for _, id := range ss.registry.Idle(ss.threshold) {
		if err := ss.registry.Delete(ctx, id); err != nil {
			ss.logger.Debug("idle session already gone",
				logger.String("session_id", id),
				logger.Error(err))
			continue
		}
		closed++
	}

	if closed > 0 {
		ss.logger.Info("closed idle sessions",
			logger.Int("closed", closed),
			logger.Duration("idle_threshold", ss.threshold))
	} else {
		ss.logger.Debug("no idle sessions to close")
	}
	return closed
}
