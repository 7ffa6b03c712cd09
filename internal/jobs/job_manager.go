package jobs

import (
	"fmt"
	"log/slog"

	"fulfillment/internal/core/ports"
)

// JobManager coordinates all scheduled jobs in the application.
// Provides a unified interface to start and stop all background jobs.
type JobManager struct {
	policyRefreshJob *PolicyRefreshJob
}

// NewJobManager creates a new job manager with all required jobs.
func NewJobManager(
	policy ports.NotificationPolicy,
	refreshSchedule string,
	logger *slog.Logger,
) *JobManager {
	return &JobManager{
		policyRefreshJob: NewPolicyRefreshJob(policy, refreshSchedule, logger),
	}
}

// StartAll starts all scheduled jobs.
// Returns an error if any job fails to start.
func (jm *JobManager) StartAll() error {
	if err := jm.policyRefreshJob.Start(); err != nil {
		return fmt.Errorf("failed to start policy refresh job: %w", err)
	}

	return nil
}

// StopAll stops all scheduled jobs gracefully.
func (jm *JobManager) StopAll() {
	jm.policyRefreshJob.Stop()
}
