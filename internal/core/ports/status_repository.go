// Package ports defines the collaborator interfaces the workflow core depends
// on. These interfaces establish contracts between the domain layer and
// infrastructure, enabling dependency inversion and testability.
package ports

import (
	"context"

	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/core/domain/model/order"
)

// StatusRepository is the persistence contract for per-item lifecycle
// statuses. Statuses are keyed by (order, product); exactly one status exists
// per product identifier at any time, so Save is an upsert.
type StatusRepository interface {
	// Get retrieves the status of a single line item.
	// Items that were never saved report StatusPending.
	Get(ctx context.Context, orderID kernel.UUID, productID kernel.ProductID) (order.ItemStatus, error)

	// GetAll retrieves every persisted status for the order.
	GetAll(ctx context.Context, orderID kernel.UUID) (map[kernel.ProductID]order.ItemStatus, error)

	// Save upserts the status of a single line item.
	Save(ctx context.Context, orderID kernel.UUID, productID kernel.ProductID, status order.ItemStatus) error
}
