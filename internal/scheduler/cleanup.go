// Package scheduler runs the periodic removal of old rejected referrals.
package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"referralhub/internal/models"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// Cleaner removes rejected referrals older than its configured age, measured from now
type Cleaner interface {
	CleanupRejected(ctx context.Context, now time.Time) (*models.CleanupResult, error)
}

// CleanupScheduler wraps robfig/cron and triggers the rejected-referral cleanup
type CleanupScheduler struct {
	cron    *cron.Cron
	cleaner Cleaner
	spec    string
	timeout time.Duration
	now     func() time.Time
	logger  *zap.Logger

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// Option customizes a CleanupScheduler
type Option func(*CleanupScheduler)

// WithClock replaces the wall clock used to compute the cleanup cutoff
func WithClock(now func() time.Time) Option {
	return func(s *CleanupScheduler) { s.now = now }
}

// WithRunTimeout bounds a single cleanup run
func WithRunTimeout(d time.Duration) Option {
	return func(s *CleanupScheduler) { s.timeout = d }
}

// NewCleanupScheduler creates a scheduler that fires every interval
func NewCleanupScheduler(cleaner Cleaner, interval time.Duration, logger *zap.Logger, opts ...Option) (*CleanupScheduler, error) {
	if cleaner == nil {
		return nil, fmt.Errorf("cleaner is required")
	}
	if interval < time.Second {
		return nil, fmt.Errorf("cleanup interval must be at least 1s, got %s", interval)
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	cronLogger := &zapCronLogger{logger: logger.Sugar()}
	s := &CleanupScheduler{
		cron: cron.New(
			cron.WithLogger(cronLogger),
			cron.WithChain(cron.Recover(cronLogger), cron.SkipIfStillRunning(cronLogger)),
		),
		cleaner: cleaner,
		spec:    fmt.Sprintf("@every %s", interval),
		timeout: 5 * time.Minute,
		now:     time.Now,
		logger:  logger,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Start registers the job, starts the cron loop and runs one cleanup immediately
func (s *CleanupScheduler) Start(ctx context.Context) error {
	runCtx, cancel := context.WithCancel(ctx)

	id, err := s.cron.AddFunc(s.spec, func() { s.run(runCtx) })
	if err != nil {
		cancel()
		return fmt.Errorf("cron.AddFunc: %w", err)
	}
	s.cancel = cancel

	// the startup run shares the entry's chain so it is recovered and never overlaps a tick
	job := s.cron.Entry(id).WrappedJob

	s.cron.Start()
	s.logger.Info("Cleanup scheduler started", zap.String("spec", s.spec))

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		job.Run()
	}()

	return nil
}

// Stop halts the cron loop and waits for a running cleanup to finish or ctx to expire
func (s *CleanupScheduler) Stop(ctx context.Context) error {
	cronDone := s.cron.Stop()
	if s.cancel != nil {
		defer s.cancel()
	}

	done := make(chan struct{})
	go func() {
		<-cronDone.Done()
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		s.logger.Info("Cleanup scheduler stopped")
		return nil
	case <-ctx.Done():
		s.logger.Warn("Cleanup scheduler stop timed out")
		return ctx.Err()
	}
}

// RunOnce performs a single cleanup at the scheduler's current time
func (s *CleanupScheduler) RunOnce(ctx context.Context) (*models.CleanupResult, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	return s.cleaner.CleanupRejected(ctx, s.now())
}

// run logs and swallows failures so the next tick still fires
func (s *CleanupScheduler) run(ctx context.Context) {
	if ctx.Err() != nil {
		return
	}

	start := time.Now()
	result, err := s.RunOnce(ctx)
	if err != nil {
		s.logger.Error("Rejected referral cleanup failed", zap.Error(err))
		return
	}

	s.logger.Info(result.Message,
		zap.Int64("deleted_count", result.DeletedCount),
		zap.Time("cutoff", result.CutoffDate),
		zap.Duration("duration", time.Since(start)),
	)
}

// zapCronLogger adapts zap to cron.Logger
type zapCronLogger struct {
	logger *zap.SugaredLogger
}

func (l *zapCronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.logger.Debugw("cron: "+msg, keysAndValues...)
}

func (l *zapCronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.logger.Errorw("cron: "+msg, append(keysAndValues, "error", err)...)
}
