// Package queries contains read operations for rendering the workflow.
// Implements the Query side of the CQRS architecture: handlers read the
// persisted stage state directly, bypassing the domain aggregates.
package queries

import (
	"errors"

	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/pkg/guard"
)

var ErrGetOrderProgressQueryIsNotConstructed = errors.New(
	"GetOrderProgressQuery must be created via NewGetOrderProgressQuery constructor",
)

// GetOrderProgressQuery retrieves everything the renderer needs to draw the
// stepper for one order and one acting user: the active stage, per-item
// statuses, lock flags, exception indicators, and the actor's allowed stages.
type GetOrderProgressQuery struct { //nolint:recvcheck //using for validation
	orderID kernel.UUID
	actorID kernel.ActorID

	guard guard.ConstructorGuard
}

// NewGetOrderProgressQuery creates a query for the order's workflow progress
// as seen by the given actor.
func NewGetOrderProgressQuery(orderID kernel.UUID, actorID kernel.ActorID) (GetOrderProgressQuery, error) {
	q := GetOrderProgressQuery{
		guard: guard.NewConstructorGuard(),
	}

	if err := errors.Join(
		q.setOrderID(orderID),
		q.setActorID(actorID),
	); err != nil {
		return GetOrderProgressQuery{}, err
	}

	return q, nil
}

// Validate ensures the query was created through the constructor.
func (q GetOrderProgressQuery) Validate() error {
	return q.guard.Validate(ErrGetOrderProgressQueryIsNotConstructed)
}

// OrderID returns the target order's identifier.
func (q GetOrderProgressQuery) OrderID() kernel.UUID {
	return q.orderID
}

// ActorID returns the viewing user's identifier.
func (q GetOrderProgressQuery) ActorID() kernel.ActorID {
	return q.actorID
}

func (q *GetOrderProgressQuery) setOrderID(orderID kernel.UUID) error {
	if err := orderID.Validate(); err != nil {
		return err
	}
	q.orderID = orderID
	return nil
}

func (q *GetOrderProgressQuery) setActorID(actorID kernel.ActorID) error {
	if err := actorID.Validate(); err != nil {
		return err
	}
	q.actorID = actorID
	return nil
}

// StageRefResponse identifies a stage in a response payload.
type StageRefResponse struct {
	ID     string
	Name   string
	Number int
}

// ItemProgressResponse is one line item with its lifecycle status.
type ItemProgressResponse struct {
	ProductID string
	Name      string
	Quantity  int
	SellerID  string
	Status    string
}

// StageLockResponse reports the commit flag of one lockable stage.
type StageLockResponse struct {
	Stage    string
	Locked   bool
	LockedBy string
}

// GetOrderProgressQueryResponse is the full render model for the stepper.
type GetOrderProgressQueryResponse struct {
	OrderID             kernel.UUID
	Role                string
	CurrentStage        StageRefResponse
	Items               []ItemProgressResponse
	Locks               []StageLockResponse
	ExceptionIndicators []string
	AllowedStages       []string
}
