package commands

import (
	"context"
	"fmt"

	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/core/domain/model/order"
	"fulfillment/internal/core/domain/model/role"
	"fulfillment/internal/core/domain/model/stage"
	"fulfillment/internal/core/domain/services"
	"fulfillment/internal/core/ports"
	"fulfillment/internal/notifications"
)

// StepDispatcher publishes stage activation events after a save commits.
// Dispatch never influences the outcome of the save; failures stay inside
// the dispatcher.
type StepDispatcher interface {
	DispatchStepActivation(ctx context.Context, event notifications.StepEvent)
	DispatchSubStepActivation(ctx context.Context, event notifications.StepEvent)
}

// recorderCore carries the collaborators every decision recorder shares and
// the sequencing logic common to all of them.
type recorderCore struct {
	uowFactory  WorkflowUoWFactory
	snapshots   ports.OrderSnapshots
	admins      role.AdminList
	progression services.StageProgressionService
	dispatcher  StepDispatcher
	locks       *OrderLocks
}

func newRecorderCore(
	uowFactory WorkflowUoWFactory,
	snapshots ports.OrderSnapshots,
	admins role.AdminList,
	dispatcher StepDispatcher,
	locks *OrderLocks,
) recorderCore {
	return recorderCore{
		uowFactory:  uowFactory,
		snapshots:   snapshots,
		admins:      admins,
		progression: services.NewStageProgressionService(),
		dispatcher:  dispatcher,
		locks:       locks,
	}
}

// participant bundles what every recorder resolves before touching state.
type participant struct {
	order *order.Order
	role  role.Role
}

// authorize loads the order snapshot, resolves the actor's role against it,
// and checks the permission table for the target stage. Nothing is written
// before this passes.
func (c recorderCore) authorize(
	ctx context.Context,
	orderID kernel.UUID,
	actor kernel.ActorID,
	target stage.Stage,
) (participant, error) {
	o, err := c.snapshots.Get(ctx, orderID)
	if err != nil {
		return participant{}, err
	}

	r, err := role.Resolve(actor, []*order.Order{o}, c.admins)
	if err != nil {
		return participant{}, err
	}

	if !role.IsStageAllowed(r, target) {
		return participant{}, fmt.Errorf("%w: role %s, stage %s",
			role.ErrPermissionDenied, r, target)
	}

	return participant{order: o, role: r}, nil
}

// visibleItems scopes the order's line items to what the actor may act on:
// buyer and admin see everything, a seller their own items, a courier the
// items assigned to them.
func (p participant) visibleItems(actor kernel.ActorID) []order.OrderItem {
	switch p.role {
	case role.Seller:
		return p.order.ItemsOwnedBy(actor)
	case role.Courier:
		return p.order.ItemsAssignedTo(actor)
	default:
		return p.order.Items()
	}
}

// ensureUnlocked enforces the one-way stage lock: once a lockable stage's
// decisions are committed, only an admin may re-save them.
func (c recorderCore) ensureUnlocked(
	ctx context.Context,
	stageRepo ports.StageRepository,
	orderID kernel.UUID,
	s stage.Stage,
	r role.Role,
) error {
	if !s.IsLockable() {
		return nil
	}

	lock, err := stageRepo.GetLock(ctx, orderID, s)
	if err != nil {
		return err
	}
	if lock.Locked() && r != role.Admin {
		return fmt.Errorf("%w: %s", stage.ErrStageLocked, s)
	}
	return nil
}

// currentStage reconstructs the active stage from the persisted marker,
// falling back to inference over the saved decision set.
func (c recorderCore) currentStage(
	ctx context.Context,
	stageRepo ports.StageRepository,
	orderID kernel.UUID,
) (stage.Stage, error) {
	marker, err := stageRepo.GetMarker(ctx, orderID)
	if err != nil {
		return stage.StageUnknown, err
	}

	saved, err := stageRepo.GetDecisionSet(ctx, orderID)
	if err != nil {
		return stage.StageUnknown, err
	}

	return stage.InferCurrentStage(marker, saved), nil
}

// advanceMarker moves the marker through the activation gate after the given
// stage committed its decisions. A gate refusal is not an error: the save
// stands and the marker stays in place.
func (c recorderCore) advanceMarker(
	ctx context.Context,
	stageRepo ports.StageRepository,
	orderID kernel.UUID,
	current, completed stage.Stage,
) error {
	marker, ok := c.progression.AdvanceAfterSave(current, completed)
	if !ok {
		return nil
	}
	return stageRepo.SaveMarker(ctx, orderID, marker)
}

// statusOf reads an item's lifecycle status, defaulting to pending for items
// that were never saved.
func statusOf(statuses map[kernel.ProductID]order.ItemStatus, key kernel.ProductID) order.ItemStatus {
	if status, ok := statuses[key]; ok {
		return status
	}
	return order.StatusPending
}

// moveStatus walks an item status toward target, routing through the
// intermediate edge where the machine demands one: an unconfirmed item being
// rejected passes through confirmed, a delivered item being returned passes
// back through shipped.
func moveStatus(current, target order.ItemStatus) (order.ItemStatus, error) {
	if current == target {
		return current, nil
	}

	via := current
	switch {
	case current == order.StatusPending && target == order.StatusRejected:
		via = order.StatusConfirmed
	case current == order.StatusDelivered && target == order.StatusReturned:
		via = order.StatusShipped
	}

	if via != current {
		moved, err := current.TransitionTo(via)
		if err != nil {
			return order.StatusUnknown, err
		}
		current = moved
	}
	return current.TransitionTo(target)
}

// saveStatuses upserts every changed status, leaving untouched keys alone.
func saveStatuses(
	ctx context.Context,
	statusRepo ports.StatusRepository,
	orderID kernel.UUID,
	changes map[kernel.ProductID]order.ItemStatus,
) error {
	for key, status := range changes {
		if err := statusRepo.Save(ctx, orderID, key, status); err != nil {
			return err
		}
	}
	return nil
}
