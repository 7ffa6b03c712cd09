// Package jobs provides scheduled background tasks for the fulfillment
// workflow.
//
// This package implements cron-based jobs using github.com/robfig/cron/v3
// to handle periodic operations required by the service.
//
// # Available Jobs
//
// 1. PolicyRefreshJob - Periodically re-fetches the notification policy from
// the hosting platform so muted roles take effect without a restart.
//
// # Usage
//
// Jobs are managed through JobManager which provides a unified interface:
//
//	jobManager := jobs.NewJobManager(policy, "@every 1m", logger)
//
//	if err := jobManager.StartAll(); err != nil {
//		log.Fatal("Failed to start jobs:", err)
//	}
//
//	defer jobManager.StopAll()
//
// # Error Handling
//
// A failed refresh is logged and the previous cached policy stays in use;
// policy lookups fail open, so a stale or missing policy never drops
// notifications.
package jobs
