package services

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

// CronService manages scheduled background jobs
type CronService struct {
	cron       *cron.Cron
	reconciler *ReconciliationService
	schedule   string
	limiter    *RateLimitService
	timeout    time.Duration
	logger     *logrus.Logger
}

// loginAttemptCleanupSchedule runs at the top of every hour
const loginAttemptCleanupSchedule = "0 0 * * * *"

// NewCronService creates a CronService. schedule uses the six-field
// (seconds-first) cron format, e.g. "0 */10 * * * *".
func NewCronService(reconciler *ReconciliationService, schedule string, logger *logrus.Logger) *CronService {
	return &CronService{
		cron:       cron.New(cron.WithSeconds(), cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger))),
		reconciler: reconciler,
		schedule:   schedule,
		timeout:    2 * time.Minute,
		logger:     logger,
	}
}

// WithLoginAttemptCleanup adds an hourly purge of expired login attempts
func (s *CronService) WithLoginAttemptCleanup(limiter *RateLimitService) *CronService {
	s.limiter = limiter
	return s
}

// Start schedules the jobs and starts the scheduler
func (s *CronService) Start() error {
	if _, err := s.cron.AddFunc(s.schedule, s.reconcileJob); err != nil {
		return fmt.Errorf("failed to schedule reconciliation job: %w", err)
	}
	s.logger.WithField("schedule", s.schedule).Info("Scheduled: room/booking reconciliation")

	if s.limiter != nil {
		if _, err := s.cron.AddFunc(loginAttemptCleanupSchedule, s.cleanupLoginAttemptsJob); err != nil {
			return fmt.Errorf("failed to schedule login attempt cleanup: %w", err)
		}
		s.logger.Info("Scheduled: login attempt cleanup (hourly)")
	}

	s.cron.Start()
	s.logger.Info("Cron service started")
	return nil
}

// Stop stops the scheduler and waits for a running job to finish
func (s *CronService) Stop() {
	s.logger.Info("Stopping cron service...")
	<-s.cron.Stop().Done()
	s.logger.Info("Cron service stopped")
}

func (s *CronService) reconcileJob() {
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()

	if _, err := s.reconciler.Run(ctx); err != nil {
		s.logger.WithError(err).Error("[CRON] Reconciliation sweep failed")
	}
}

func (s *CronService) cleanupLoginAttemptsJob() {
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()

	deleted, err := s.limiter.Cleanup(ctx)
	if err != nil {
		s.logger.WithError(err).Error("[CRON] Login attempt cleanup failed")
		return
	}
	if deleted > 0 {
		s.logger.WithField("deleted", deleted).Info("[CRON] Cleaned up expired login attempts")
	}
}
