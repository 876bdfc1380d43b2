package cron

import (
	"context"
	"testing"
	"time"

	"gorm.io/gorm"

	"github.com/sproutlane/microfarm-backend/pkg/logger"
)

type nopTxRunner struct{}

func (nopTxRunner) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error { return fn(nil) }

type fakeOutboxRetentionRepo struct {
	cutoff      time.Time
	minAttempts int
	deleted     int64
}

func (f *fakeOutboxRetentionRepo) DeletePublishedBefore(_ context.Context, _ *gorm.DB, cutoff time.Time, minAttemptCount int) (int64, error) {
	f.cutoff = cutoff
	f.minAttempts = minAttemptCount
	return f.deleted, nil
}

func TestOutboxRetentionJobUsesConfiguredWindow(t *testing.T) {
	repo := &fakeOutboxRetentionRepo{deleted: 7}
	job, err := NewOutboxRetentionJob(OutboxRetentionJobParams{
		Logger:      logger.New(logger.Options{ServiceName: "cron-test"}),
		DB:          nopTxRunner{},
		Repository:  repo,
		Retention:   10,
		MinAttempts: 3,
	})
	if err != nil {
		t.Fatalf("NewOutboxRetentionJob: %v", err)
	}
	fixed := time.Date(2025, 6, 15, 0, 0, 0, 0, time.UTC)
	job.(*outboxRetentionJob).now = func() time.Time { return fixed }

	if err := job.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if want := fixed.AddDate(0, 0, -10); !repo.cutoff.Equal(want) {
		t.Fatalf("expected cutoff %s, got %s", want, repo.cutoff)
	}
	if repo.minAttempts != 3 {
		t.Fatalf("expected min attempts 3, got %d", repo.minAttempts)
	}
}

type fakeNotificationCleanupRepo struct {
	cutoff  time.Time
	deleted int64
}

func (f *fakeNotificationCleanupRepo) DeleteReadBefore(_ context.Context, _ *gorm.DB, cutoff time.Time) (int64, error) {
	f.cutoff = cutoff
	return f.deleted, nil
}

func TestNotificationCleanupJobDefaultsRetention(t *testing.T) {
	repo := &fakeNotificationCleanupRepo{deleted: 2}
	job, err := NewNotificationCleanupJob(NotificationCleanupJobParams{
		Logger:     logger.New(logger.Options{ServiceName: "cron-test"}),
		DB:         nopTxRunner{},
		Repository: repo,
	})
	if err != nil {
		t.Fatalf("NewNotificationCleanupJob: %v", err)
	}
	fixed := time.Date(2025, 6, 15, 0, 0, 0, 0, time.UTC)
	job.(*notificationCleanupJob).now = func() time.Time { return fixed }

	if err := job.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if want := fixed.AddDate(0, 0, -notificationRetentionDays); !repo.cutoff.Equal(want) {
		t.Fatalf("expected cutoff %s, got %s", want, repo.cutoff)
	}
}
