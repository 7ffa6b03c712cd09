package ports

import (
	"context"

	"fulfillment/internal/core/domain/model/stage"
)

// NotificationPolicy decides whether a given role should be notified when a
// stage activates. Policies are fetched from an external source and cached;
// a policy lookup failure must fail open (notify) rather than silently drop
// messages.
type NotificationPolicy interface {
	// ShouldNotify reports whether the role receives notifications for the
	// stage. Implementations return true when the policy source is
	// unavailable.
	ShouldNotify(ctx context.Context, role string, s stage.Stage) bool

	// Refresh re-fetches the policy from its source, replacing the cached
	// copy. Called periodically by the background refresh job.
	Refresh(ctx context.Context) error
}
