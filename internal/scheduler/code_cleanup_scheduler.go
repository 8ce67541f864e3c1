package scheduler

import (
	"time"

	"github.com/carauction/carauction-backend/internal/app/service"
	"github.com/carauction/carauction-backend/pkg/logger"
	"github.com/robfig/cron/v3"
)

// ExpiredCodeCleaner clears code pairs issued before cutoff.
type ExpiredCodeCleaner interface {
	ClearExpiredCodes(cutoff time.Time) (int64, error)
}

// CodeCleanupScheduler periodically nulls out verification and reset codes
// that can no longer be redeemed.
type CodeCleanupScheduler struct {
	cron     *cron.Cron
	cleaner  ExpiredCodeCleaner
	clock    service.Clock
	schedule string
}

func NewCodeCleanupScheduler(cleaner ExpiredCodeCleaner, schedule string, clock service.Clock) *CodeCleanupScheduler {
	if clock == nil {
		clock = service.SystemClock
	}
	return &CodeCleanupScheduler{
		cron:     cron.New(),
		cleaner:  cleaner,
		clock:    clock,
		schedule: schedule,
	}
}

func (s *CodeCleanupScheduler) Start() error {
	_, err := s.cron.AddFunc(s.schedule, func() {
		if _, err := s.RunOnce(); err != nil {
			logger.Error("Failed to clear expired codes from scheduler", err)
		}
	})
	if err != nil {
		logger.Error("Failed to add cron job for code cleanup", err, map[string]interface{}{
			"schedule": s.schedule,
		})
		return err
	}

	s.cron.Start()
	logger.Info("Code cleanup scheduler started", map[string]interface{}{
		"schedule": s.schedule,
	})
	return nil
}

// RunOnce clears every code older than the code TTL.
func (s *CodeCleanupScheduler) RunOnce() (int64, error) {
	cutoff := s.clock().Add(-service.CodeTTL)
	cleared, err := s.cleaner.ClearExpiredCodes(cutoff)
	if err != nil {
		return 0, err
	}
	if cleared > 0 {
		logger.Info("Cleared expired codes", map[string]interface{}{
			"cleared": cleared,
			"cutoff":  cutoff,
		})
	}
	return cleared, nil
}

func (s *CodeCleanupScheduler) Stop() {
	logger.Info("Stopping code cleanup scheduler...")
	<-s.cron.Stop().Done()
	logger.Info("Code cleanup scheduler stopped")
}
