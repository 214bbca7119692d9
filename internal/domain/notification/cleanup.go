package notification

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"
)

// unread notifications survive twice as long as read ones
const unreadRetentionFactor = 2

// CleanupJob handles notification retention cleanup
type CleanupJob struct {
	repo          Repository
	retentionDays int
	now           func() time.Time
}

// NewCleanupJob creates a cleanup job
func NewCleanupJob(repo Repository, retentionDays int) *CleanupJob {
	if retentionDays <= 0 {
		retentionDays = 90
	}
	return &CleanupJob{repo: repo, retentionDays: retentionDays, now: time.Now}
}

// Start runs the cleanup immediately, then on every tick until ctx is done.
func (j *CleanupJob) Start(ctx context.Context, interval time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	j.run(ctx)
	for {
		select {
		case <-ctx.Done():
			log.Info().Msg("Notification cleanup job stopped")
			return nil
		case <-ticker.C:
			j.run(ctx)
		}
	}
}

func (j *CleanupJob) run(ctx context.Context) {
	if _, err := j.RunOnce(ctx); err != nil {
		log.Error().Err(err).Msg("Failed to cleanup old notifications")
	}
}

// RunOnce deletes read notifications past retention and unread ones past
// twice the retention.
func (j *CleanupJob) RunOnce(ctx context.Context) (int64, error) {
	now := j.now()
	read, err := j.repo.DeleteBefore(ctx, now.AddDate(0, 0, -j.retentionDays), true)
	if err != nil {
		return 0, err
	}
	unread, err := j.repo.DeleteBefore(ctx, now.AddDate(0, 0, -j.retentionDays*unreadRetentionFactor), false)
	if err != nil {
		return read, err
	}
	if total := read + unread; total > 0 {
		log.Info().
			Int64("deleted_read", read).
			Int64("deleted_unread", unread).
			Int("retention_days", j.retentionDays).
			Msg("Cleaned up old notifications")
	}
	return read + unread, nil
}
