package jobs

import (
	"context"
	"log/slog"

	"fulfillment/internal/core/ports"

	"github.com/robfig/cron/v3"
)

// PolicyRefreshJob periodically re-fetches the notification policy so the
// cached copy tracks changes made on the hosting platform.
type PolicyRefreshJob struct {
	policy   ports.NotificationPolicy
	schedule string
	cron     *cron.Cron
	logger   *slog.Logger
}

// NewPolicyRefreshJob creates a job refreshing the policy on the given cron
// schedule, e.g. "@every 1m".
func NewPolicyRefreshJob(policy ports.NotificationPolicy, schedule string, logger *slog.Logger) *PolicyRefreshJob {
	return &PolicyRefreshJob{
		policy:   policy,
		schedule: schedule,
		cron:     cron.New(),
		logger:   logger.With("component", "policy_refresh_job"),
	}
}

// Start begins the periodic refresh.
func (j *PolicyRefreshJob) Start() error {
	_, err := j.cron.AddFunc(j.schedule, func() {
		ctx := context.Background()

		if err := j.policy.Refresh(ctx); err != nil {
			// Stale policy is tolerable; lookups fail open anyway.
			j.logger.WarnContext(ctx, "Policy refresh failed", "error", err)
		}
	})

	if err != nil {
		return err
	}

	j.cron.Start()
	j.logger.InfoContext(context.Background(), "Policy refresh job started", "schedule", j.schedule)
	return nil
}

// Stop stops the refresh job.
func (j *PolicyRefreshJob) Stop() {
	j.cron.Stop()
	j.logger.InfoContext(context.Background(), "Policy refresh job stopped")
}
