package cron

import (
	"context"
	"time"

	"github.com/luckygram/backend/internal/domain"
)

// WizardCleanupCronJob discards creation dialogs that have been idle longer
// than the configured timeout.
type WizardCleanupCronJob struct {
	wizardDomain domain.WizardDomain
}

func NewWizardCleanupCronJob(wizardDomain domain.WizardDomain) *WizardCleanupCronJob {
	return &WizardCleanupCronJob{wizardDomain: wizardDomain}
}

func (job *WizardCleanupCronJob) Do(ctx context.Context) {
	job.wizardDomain.CleanupExpired(ctx)
}

func (job *WizardCleanupCronJob) RunNow() bool {
	return false
}

func (job *WizardCleanupCronJob) Next() time.Time {
	return time.Now().Add(time.Minute)
}
