package commands

import (
	"errors"

	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/core/domain/model/stage"
	"fulfillment/internal/pkg/guard"
)

var ErrRecordConfirmationCommandIsNotConstructed = errors.New(
	"RecordConfirmationCommand must be created via NewRecordConfirmationCommand constructor",
)

// RecordConfirmationCommand represents a seller's accept/reject save over the
// buyer-selected items they own.
type RecordConfirmationCommand struct { //nolint:recvcheck //using for validation
	orderID  kernel.UUID
	actorID  kernel.ActorID
	decision stage.ConfirmationDecision

	guard guard.ConstructorGuard
}

// NewRecordConfirmationCommand creates a command to record the seller's
// confirmation decisions. Validates the order id, the acting user, and that
// no product key is both confirmed and rejected.
func NewRecordConfirmationCommand(
	orderID kernel.UUID,
	actorID kernel.ActorID,
	confirmedKeys []kernel.ProductID,
	rejectedKeys []kernel.ProductID,
) (RecordConfirmationCommand, error) {
	cmd := RecordConfirmationCommand{
		guard: guard.NewConstructorGuard(),
	}

	if err := errors.Join(
		cmd.setOrderID(orderID),
		cmd.setActorID(actorID),
		cmd.setDecision(confirmedKeys, rejectedKeys),
	); err != nil {
		return RecordConfirmationCommand{}, err
	}

	return cmd, nil
}

// Validate ensures the command was created through the constructor.
func (c RecordConfirmationCommand) Validate() error {
	return c.guard.Validate(ErrRecordConfirmationCommandIsNotConstructed)
}

// OrderID returns the target order's identifier.
func (c RecordConfirmationCommand) OrderID() kernel.UUID {
	return c.orderID
}

// ActorID returns the acting user's identifier.
func (c RecordConfirmationCommand) ActorID() kernel.ActorID {
	return c.actorID
}

// Decision returns the validated confirmation decision record.
func (c RecordConfirmationCommand) Decision() stage.ConfirmationDecision {
	return c.decision
}

func (c *RecordConfirmationCommand) setOrderID(orderID kernel.UUID) error {
	if err := orderID.Validate(); err != nil {
		return err
	}
	c.orderID = orderID
	return nil
}

func (c *RecordConfirmationCommand) setActorID(actorID kernel.ActorID) error {
	if err := actorID.Validate(); err != nil {
		return err
	}
	c.actorID = actorID
	return nil
}

func (c *RecordConfirmationCommand) setDecision(confirmed, rejected []kernel.ProductID) error {
	decision, err := stage.NewConfirmationDecision(confirmed, rejected)
	if err != nil {
		return err
	}
	c.decision = decision
	return nil
}
