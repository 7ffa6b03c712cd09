package commands

import (
	"errors"

	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/pkg/guard"
)

var ErrRecordDeliveryCommandIsNotConstructed = errors.New(
	"RecordDeliveryCommand must be created via NewRecordDeliveryCommand constructor",
)

// RecordDeliveryCommand represents the receipt acknowledgment save: the
// product keys the receiver checked off as delivered. Every shipped item
// left unchecked at save time is reclassified as returned.
type RecordDeliveryCommand struct { //nolint:recvcheck //using for validation
	orderID       kernel.UUID
	actorID       kernel.ActorID
	deliveredKeys []kernel.ProductID

	guard guard.ConstructorGuard
}

// NewRecordDeliveryCommand creates a command to record the delivery
// acknowledgment. Validates the order id, the acting user, and each key.
func NewRecordDeliveryCommand(
	orderID kernel.UUID,
	actorID kernel.ActorID,
	deliveredKeys []kernel.ProductID,
) (RecordDeliveryCommand, error) {
	cmd := RecordDeliveryCommand{
		guard: guard.NewConstructorGuard(),
	}

	if err := errors.Join(
		cmd.setOrderID(orderID),
		cmd.setActorID(actorID),
		cmd.setDeliveredKeys(deliveredKeys),
	); err != nil {
		return RecordDeliveryCommand{}, err
	}

	return cmd, nil
}

// Validate ensures the command was created through the constructor.
func (c RecordDeliveryCommand) Validate() error {
	return c.guard.Validate(ErrRecordDeliveryCommandIsNotConstructed)
}

// OrderID returns the target order's identifier.
func (c RecordDeliveryCommand) OrderID() kernel.UUID {
	return c.orderID
}

// ActorID returns the acting user's identifier.
func (c RecordDeliveryCommand) ActorID() kernel.ActorID {
	return c.actorID
}

// DeliveredKeys returns the acknowledged product keys.
func (c RecordDeliveryCommand) DeliveredKeys() []kernel.ProductID {
	return c.deliveredKeys
}

func (c *RecordDeliveryCommand) setOrderID(orderID kernel.UUID) error {
	if err := orderID.Validate(); err != nil {
		return err
	}
	c.orderID = orderID
	return nil
}

func (c *RecordDeliveryCommand) setActorID(actorID kernel.ActorID) error {
	if err := actorID.Validate(); err != nil {
		return err
	}
	c.actorID = actorID
	return nil
}

func (c *RecordDeliveryCommand) setDeliveredKeys(keys []kernel.ProductID) error {
	for _, key := range keys {
		if err := key.Validate(); err != nil {
			return err
		}
	}
	c.deliveredKeys = keys
	return nil
}
