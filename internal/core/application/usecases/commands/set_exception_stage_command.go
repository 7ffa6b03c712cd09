package commands

import (
	"errors"
	"fmt"

	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/core/domain/model/stage"
	"fulfillment/internal/pkg/guard"
)

var (
	ErrSetExceptionStageCommandIsNotConstructed = errors.New(
		"SetExceptionStageCommand must be created via NewSetExceptionStageCommand constructor",
	)

	// ErrStageIsNotException is returned when the command targets a ranked
	// stage; those advance only through the activation gate.
	ErrStageIsNotException = errors.New("only exception stages can be set explicitly")
)

// SetExceptionStageCommand represents an explicit marker override to one of
// the exception stages (cancelled, rejected, returned). This is the only path
// that bypasses the activation gate.
type SetExceptionStageCommand struct { //nolint:recvcheck //using for validation
	orderID kernel.UUID
	actorID kernel.ActorID
	stage   stage.Stage

	guard guard.ConstructorGuard
}

// NewSetExceptionStageCommand creates a command to surface an exception stage
// as the active one. Validates the order id, the acting user, and that the
// target is an exception stage.
func NewSetExceptionStageCommand(
	orderID kernel.UUID,
	actorID kernel.ActorID,
	target stage.Stage,
) (SetExceptionStageCommand, error) {
	cmd := SetExceptionStageCommand{
		guard: guard.NewConstructorGuard(),
	}

	if err := errors.Join(
		cmd.setOrderID(orderID),
		cmd.setActorID(actorID),
		cmd.setStage(target),
	); err != nil {
		return SetExceptionStageCommand{}, err
	}

	return cmd, nil
}

// Validate ensures the command was created through the constructor.
func (c SetExceptionStageCommand) Validate() error {
	return c.guard.Validate(ErrSetExceptionStageCommandIsNotConstructed)
}

// OrderID returns the target order's identifier.
func (c SetExceptionStageCommand) OrderID() kernel.UUID {
	return c.orderID
}

// ActorID returns the acting user's identifier.
func (c SetExceptionStageCommand) ActorID() kernel.ActorID {
	return c.actorID
}

// Stage returns the exception stage to surface.
func (c SetExceptionStageCommand) Stage() stage.Stage {
	return c.stage
}

func (c *SetExceptionStageCommand) setOrderID(orderID kernel.UUID) error {
	if err := orderID.Validate(); err != nil {
		return err
	}
	c.orderID = orderID
	return nil
}

func (c *SetExceptionStageCommand) setActorID(actorID kernel.ActorID) error {
	if err := actorID.Validate(); err != nil {
		return err
	}
	c.actorID = actorID
	return nil
}

func (c *SetExceptionStageCommand) setStage(target stage.Stage) error {
	if err := target.Validate(); err != nil {
		return err
	}
	if !target.IsException() {
		return fmt.Errorf("%w: %s", ErrStageIsNotException, target)
	}
	c.stage = target
	return nil
}
