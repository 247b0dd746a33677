package cron

import (
	"context"
	"fmt"
	"time"

	"github.com/angelmondragon/haulhub-backend/pkg/logger"
)

const defaultRetentionDays = 30

type notificationSweeper interface {
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
	DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error)
}

// NotificationCleanupJobParams configure the notification cleanup job.
type NotificationCleanupJobParams struct {
	Logger     *logger.Logger
	Repository notificationSweeper
	// RetentionDays bounds how long delivered notifications outlive their
	// creation regardless of expiry stamps.
	RetentionDays int
}

// NewNotificationCleanupJob purges notifications past their expiry stamp and
// anything older than the retention window.
func NewNotificationCleanupJob(params NotificationCleanupJobParams) (Job, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.Repository == nil {
		return nil, fmt.Errorf("notifications repository required")
	}
	retention := params.RetentionDays
	if retention <= 0 {
		retention = defaultRetentionDays
	}
	return &notificationCleanupJob{
		logg:      params.Logger,
		repo:      params.Repository,
		retention: retention,
		now:       time.Now,
	}, nil
}

type notificationCleanupJob struct {
	logg      *logger.Logger
	repo      notificationSweeper
	retention int
	now       func() time.Time
}

func (j *notificationCleanupJob) Name() string { return "notification-cleanup" }

func (j *notificationCleanupJob) Run(ctx context.Context) error {
	now := j.now().UTC()

	expired, err := j.repo.DeleteExpired(ctx, now)
	if err != nil {
		return fmt.Errorf("expired sweep: %w", err)
	}

	cutoff := now.Add(-time.Duration(j.retention) * 24 * time.Hour)
	aged, err := j.repo.DeleteOlderThan(ctx, cutoff)
	if err != nil {
		return fmt.Errorf("retention sweep: %w", err)
	}

	logCtx := j.logg.WithFields(ctx, map[string]any{
		"cutoff":         cutoff,
		"retention_days": j.retention,
		"expired_rows":   expired,
		"aged_rows":      aged,
	})
	j.logg.Info(logCtx, "notification cleanup complete")
	return nil
}
