package ports

import (
	"context"

	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/core/domain/model/stage"
)

// StageRepository is the persistence contract for per-stage workflow state:
// decision records, lock records, and the current-stage marker. All state is
// scoped to a single order.
type StageRepository interface {
	// GetDecision retrieves the decision record of a ranked stage.
	// Returns errs.ErrObjectNotFound when the stage was never saved.
	GetDecision(ctx context.Context, orderID kernel.UUID, s stage.Stage) (stage.Decision, error)

	// GetDecisionSet reports which stage decisions exist for the order,
	// feeding the current-stage inference on session load.
	GetDecisionSet(ctx context.Context, orderID kernel.UUID) (stage.DecisionSet, error)

	// SaveDecision upserts the decision record of a ranked stage.
	SaveDecision(ctx context.Context, orderID kernel.UUID, decision stage.Decision) error

	// GetLock retrieves the lock record of a lockable stage.
	// Stages that were never locked report the unlocked record.
	GetLock(ctx context.Context, orderID kernel.UUID, s stage.Stage) (stage.LockRecord, error)

	// SaveLock upserts the lock record of a lockable stage.
	SaveLock(ctx context.Context, orderID kernel.UUID, s stage.Stage, lock stage.LockRecord) error

	// GetMarker retrieves the persisted current-stage marker.
	// Returns nil without error when no marker was ever saved.
	GetMarker(ctx context.Context, orderID kernel.UUID) (*stage.Marker, error)

	// SaveMarker upserts the current-stage marker.
	SaveMarker(ctx context.Context, orderID kernel.UUID, marker stage.Marker) error
}
