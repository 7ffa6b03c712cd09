package commands

import (
	"errors"

	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/core/domain/model/stage"
	"fulfillment/internal/pkg/guard"
)

var ErrRecordShippingCommandIsNotConstructed = errors.New(
	"RecordShippingCommand must be created via NewRecordShippingCommand constructor",
)

// RecordShippingCommand represents the handover save: which confirmed items
// went out with a courier and which were held back.
type RecordShippingCommand struct { //nolint:recvcheck //using for validation
	orderID  kernel.UUID
	actorID  kernel.ActorID
	decision stage.ShippingDecision

	guard guard.ConstructorGuard
}

// NewRecordShippingCommand creates a command to record the shipping
// decisions. Validates the order id, the acting user, and that no product key
// is both shipped and held.
func NewRecordShippingCommand(
	orderID kernel.UUID,
	actorID kernel.ActorID,
	shippedKeys []kernel.ProductID,
	heldKeys []kernel.ProductID,
) (RecordShippingCommand, error) {
	cmd := RecordShippingCommand{
		guard: guard.NewConstructorGuard(),
	}

	if err := errors.Join(
		cmd.setOrderID(orderID),
		cmd.setActorID(actorID),
		cmd.setDecision(shippedKeys, heldKeys),
	); err != nil {
		return RecordShippingCommand{}, err
	}

	return cmd, nil
}

// Validate ensures the command was created through the constructor.
func (c RecordShippingCommand) Validate() error {
	return c.guard.Validate(ErrRecordShippingCommandIsNotConstructed)
}

// OrderID returns the target order's identifier.
func (c RecordShippingCommand) OrderID() kernel.UUID {
	return c.orderID
}

// ActorID returns the acting user's identifier.
func (c RecordShippingCommand) ActorID() kernel.ActorID {
	return c.actorID
}

// Decision returns the validated shipping decision record.
func (c RecordShippingCommand) Decision() stage.ShippingDecision {
	return c.decision
}

func (c *RecordShippingCommand) setOrderID(orderID kernel.UUID) error {
	if err := orderID.Validate(); err != nil {
		return err
	}
	c.orderID = orderID
	return nil
}

func (c *RecordShippingCommand) setActorID(actorID kernel.ActorID) error {
	if err := actorID.Validate(); err != nil {
		return err
	}
	c.actorID = actorID
	return nil
}

func (c *RecordShippingCommand) setDecision(shipped, held []kernel.ProductID) error {
	decision, err := stage.NewShippingDecision(shipped, held)
	if err != nil {
		return err
	}
	c.decision = decision
	return nil
}
