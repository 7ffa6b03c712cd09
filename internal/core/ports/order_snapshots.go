package ports

import (
	"context"

	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/core/domain/model/order"
)

// OrderSnapshots is the contract for order composition: the buyer, the line
// items, their sellers, and courier assignments. The hosting marketplace owns
// orders and pushes each snapshot in whole via Add; the workflow only reads.
type OrderSnapshots interface {
	// Get retrieves one order by its identifier.
	// Returns errs.ErrObjectNotFound when no order exists.
	Get(ctx context.Context, orderID kernel.UUID) (*order.Order, error)

	// GetByParticipant retrieves every order the actor participates in as
	// buyer, seller, or courier. Used for role resolution.
	GetByParticipant(ctx context.Context, actorID kernel.ActorID) ([]*order.Order, error)

	// Add stores the snapshot pushed by the hosting marketplace, replacing
	// any previous snapshot of the same order in whole.
	Add(ctx context.Context, aggregate *order.Order) error
}
