package commands

import (
	"errors"

	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/core/domain/model/stage"
	"fulfillment/internal/pkg/guard"
)

var (
	ErrRecordReviewCommandIsNotConstructed = errors.New(
		"RecordReviewCommand must be created via NewRecordReviewCommand constructor",
	)

	// ErrDestructiveChangeNotConfirmed is returned when a review save drops a
	// previously selected item without the destructive-change confirmation.
	ErrDestructiveChangeNotConfirmed = errors.New(
		"unselecting a selected item requires explicit confirmation",
	)
)

// RecordReviewCommand represents the buyer's item-selection save: which
// product keys stay in the order and which are cancelled.
//
// Example:
//
//	cmd, err := NewRecordReviewCommand(orderID, buyerID, selected, unselected, true)
//	if err != nil {
//	    return fmt.Errorf("invalid review data: %w", err)
//	}
//
//	handler := NewRecordReviewCommandHandler(uowFactory, snapshots, admins, dispatcher, locks)
//	if err := handler.Handle(ctx, cmd); err != nil {
//	    return fmt.Errorf("failed to record review: %w", err)
//	}
type RecordReviewCommand struct { //nolint:recvcheck //using for validation
	orderID            kernel.UUID
	actorID            kernel.ActorID
	decision           stage.ReviewDecision
	confirmDestructive bool

	guard guard.ConstructorGuard
}

// NewRecordReviewCommand creates a command to record the buyer's review
// decisions. Validates the order id, the acting user, and that no product key
// appears on both sides of the selection.
func NewRecordReviewCommand(
	orderID kernel.UUID,
	actorID kernel.ActorID,
	selectedKeys []kernel.ProductID,
	unselectedKeys []kernel.ProductID,
	confirmDestructive bool,
) (RecordReviewCommand, error) {
	cmd := RecordReviewCommand{
		confirmDestructive: confirmDestructive,
		guard:              guard.NewConstructorGuard(),
	}

	if err := errors.Join(
		cmd.setOrderID(orderID),
		cmd.setActorID(actorID),
		cmd.setDecision(selectedKeys, unselectedKeys),
	); err != nil {
		return RecordReviewCommand{}, err
	}

	return cmd, nil
}

// Validate ensures the command was created through the constructor.
// Returns ErrRecordReviewCommandIsNotConstructed if validation fails.
func (c RecordReviewCommand) Validate() error {
	return c.guard.Validate(ErrRecordReviewCommandIsNotConstructed)
}

// OrderID returns the target order's identifier.
func (c RecordReviewCommand) OrderID() kernel.UUID {
	return c.orderID
}

// ActorID returns the acting user's identifier.
func (c RecordReviewCommand) ActorID() kernel.ActorID {
	return c.actorID
}

// Decision returns the validated review decision record.
func (c RecordReviewCommand) Decision() stage.ReviewDecision {
	return c.decision
}

// ConfirmDestructive reports whether the actor confirmed dropping previously
// selected items.
func (c RecordReviewCommand) ConfirmDestructive() bool {
	return c.confirmDestructive
}

func (c *RecordReviewCommand) setOrderID(orderID kernel.UUID) error {
	if err := orderID.Validate(); err != nil {
		return err
	}
	c.orderID = orderID
	return nil
}

func (c *RecordReviewCommand) setActorID(actorID kernel.ActorID) error {
	if err := actorID.Validate(); err != nil {
		return err
	}
	c.actorID = actorID
	return nil
}

func (c *RecordReviewCommand) setDecision(selected, unselected []kernel.ProductID) error {
	decision, err := stage.NewReviewDecision(selected, unselected)
	if err != nil {
		return err
	}
	c.decision = decision
	return nil
}
