package cron

import (
	"context"
	"time"

	"github.com/luckygram/backend/internal/domain"
	"github.com/luckygram/backend/pkg/xcontext"
)

// SnapshotBackupCronJob ships a full store snapshot to the backup bucket.
type SnapshotBackupCronJob struct {
	backupDomain domain.BackupDomain
	interval     time.Duration
}

func NewSnapshotBackupCronJob(
	backupDomain domain.BackupDomain, interval time.Duration,
) *SnapshotBackupCronJob {
	if interval <= 0 {
		interval = time.Hour
	}

	return &SnapshotBackupCronJob{backupDomain: backupDomain, interval: interval}
}

func (job *SnapshotBackupCronJob) Do(ctx context.Context) {
	if err := job.backupDomain.Upload(ctx); err != nil {
		xcontext.Logger(ctx).Errorf("Cannot upload snapshot: %v", err)
	}
}

func (job *SnapshotBackupCronJob) RunNow() bool {
	return false
}

func (job *SnapshotBackupCronJob) Next() time.Time {
	return time.Now().Add(job.interval)
}
