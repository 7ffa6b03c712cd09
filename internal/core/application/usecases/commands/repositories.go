// Package commands contains the decision recorders: business operations that
// modify workflow state. Implements the Command pattern for write operations
// in the CQRS architecture. All commands follow a consistent pattern:
// validation, role resolution, transaction management, and persistence.
package commands

import (
	"context"

	"fulfillment/internal/core/ports"
)

// Unit of Work interfaces provide transaction management for command handlers.
// These abstractions ensure data consistency across aggregate boundaries.
type (
	// TxManager handles database transaction lifecycle.
	// Ensures atomic operations across multiple repository calls.
	TxManager interface {
		Begin(ctx context.Context) error
		Commit(ctx context.Context) error
		Rollback(ctx context.Context) error
	}

	// StatusRepoFactory provides access to the item status repository within a transaction.
	StatusRepoFactory interface {
		StatusRepository() ports.StatusRepository
	}

	// StageRepoFactory provides access to the stage state repository within a transaction.
	StageRepoFactory interface {
		StageRepository() ports.StageRepository
	}

	// WorkflowUoW manages transactions spanning item statuses and stage state.
	// Every recorder writes both in one transaction: a stage's decision record
	// and lock record are committed together with the status updates or not at
	// all.
	WorkflowUoW interface {
		TxManager
		StatusRepoFactory
		StageRepoFactory
	}

	// WorkflowUoWFactory creates new workflow unit of work instances.
	WorkflowUoWFactory interface {
		Create() WorkflowUoW
	}
)
