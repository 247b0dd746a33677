package cron

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/angelmondragon/haulhub-backend/pkg/logger"
)

type fakeNotificationSweeper struct {
	expiredRows int64
	agedRows    int64
	expiredErr  error
	agedErr     error

	lastNow    time.Time
	lastCutoff time.Time
}

func (f *fakeNotificationSweeper) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	f.lastNow = now
	return f.expiredRows, f.expiredErr
}

func (f *fakeNotificationSweeper) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	f.lastCutoff = cutoff
	return f.agedRows, f.agedErr
}

func newCleanupJob(t *testing.T, repo *fakeNotificationSweeper, retention int) *notificationCleanupJob {
	t.Helper()
	jobIface, err := NewNotificationCleanupJob(NotificationCleanupJobParams{
		Logger:        logger.New(logger.Options{ServiceName: "test"}),
		Repository:    repo,
		RetentionDays: retention,
	})
	if err != nil {
		t.Fatalf("NewNotificationCleanupJob: %v", err)
	}
	job, ok := jobIface.(*notificationCleanupJob)
	if !ok {
		t.Fatalf("expected notificationCleanupJob, got %T", jobIface)
	}
	return job
}

func TestNotificationCleanupSweepsExpiredAndAged(t *testing.T) {
	now := time.Date(2026, 2, 28, 0, 0, 0, 0, time.UTC)
	repo := &fakeNotificationSweeper{expiredRows: 7, agedRows: 12}
	job := newCleanupJob(t, repo, 30)
	job.now = func() time.Time { return now }

	if err := job.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}

	if !repo.lastNow.Equal(now) {
		t.Fatalf("expected expiry sweep at %s, got %s", now, repo.lastNow)
	}
	wantCutoff := now.Add(-30 * 24 * time.Hour)
	if !repo.lastCutoff.Equal(wantCutoff) {
		t.Fatalf("expected cutoff %s, got %s", wantCutoff, repo.lastCutoff)
	}
}

func TestNotificationCleanupDefaultsRetention(t *testing.T) {
	job := newCleanupJob(t, &fakeNotificationSweeper{}, 0)
	if job.retention != defaultRetentionDays {
		t.Fatalf("expected default retention, got %d", job.retention)
	}
}

func TestNotificationCleanupPropagatesErrors(t *testing.T) {
	repo := &fakeNotificationSweeper{expiredErr: errors.New("boom")}
	job := newCleanupJob(t, repo, 30)

	if err := job.Run(context.Background()); err == nil {
		t.Fatal("expected error")
	}

	repo = &fakeNotificationSweeper{agedErr: errors.New("boom")}
	job = newCleanupJob(t, repo, 30)
	if err := job.Run(context.Background()); err == nil {
		t.Fatal("expected error")
	}
}
