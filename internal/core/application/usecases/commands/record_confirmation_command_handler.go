package commands

import (
	"context"

	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/core/domain/model/order"
	"fulfillment/internal/core/domain/model/role"
	"fulfillment/internal/core/domain/model/stage"
	"fulfillment/internal/core/ports"
	"fulfillment/internal/notifications"
)

// RecordConfirmationCommandHandler persists a seller's accept/reject split
// over the buyer-selected items they own. Saving commits the confirmation
// stage's lock in the same transaction; once locked, only an admin may
// re-save. The marker advances confirmed -> shipped through the activation
// gate, and rejected items trigger the rejection sub-wave.
type RecordConfirmationCommandHandler struct {
	recorderCore
}

// NewRecordConfirmationCommandHandler creates a handler for confirmation saves.
func NewRecordConfirmationCommandHandler(
	uowFactory WorkflowUoWFactory,
	snapshots ports.OrderSnapshots,
	admins role.AdminList,
	dispatcher StepDispatcher,
	locks *OrderLocks,
) RecordConfirmationCommandHandler {
	return RecordConfirmationCommandHandler{
		recorderCore: newRecorderCore(uowFactory, snapshots, admins, dispatcher, locks),
	}
}

// Handle processes the confirmation save.
// The actor's reach is their own items that survived review; keys outside
// that scope are ignored rather than failing the save.
func (h *RecordConfirmationCommandHandler) Handle(ctx context.Context, cmd RecordConfirmationCommand) error {
	if err := cmd.Validate(); err != nil {
		return err
	}

	h.locks.Lock(cmd.OrderID())
	defer h.locks.Unlock(cmd.OrderID())

	p, err := h.authorize(ctx, cmd.OrderID(), cmd.ActorID(), stage.Confirmed)
	if err != nil {
		return err
	}

	uow := h.uowFactory.Create()
	if err = uow.Begin(ctx); err != nil {
		return err
	}
	defer func() {
		_ = uow.Rollback(ctx)
	}()

	stageRepo := uow.StageRepository()
	statusRepo := uow.StatusRepository()

	if err = h.ensureUnlocked(ctx, stageRepo, cmd.OrderID(), stage.Confirmed, p.role); err != nil {
		return err
	}

	current, err := h.currentStage(ctx, stageRepo, cmd.OrderID())
	if err != nil {
		return err
	}

	statuses, err := statusRepo.GetAll(ctx, cmd.OrderID())
	if err != nil {
		return err
	}

	// scope: the actor's items that the buyer kept in the order
	reach := make(map[string]bool)
	for _, item := range p.visibleItems(cmd.ActorID()) {
		if statusOf(statuses, item.ProductID()) != order.StatusCancelled {
			reach[item.ProductID().String()] = true
		}
	}

	decision := cmd.Decision()
	changes := make(map[kernel.ProductID]order.ItemStatus)
	touched := make([]kernel.ProductID, 0, len(decision.Selected())+len(decision.Deselected()))
	rejected := make([]kernel.ProductID, 0, len(decision.Deselected()))

	for _, key := range decision.Selected() {
		if !reach[key.String()] {
			continue
		}
		from := statusOf(statuses, key)
		moved, moveErr := moveStatus(from, order.StatusConfirmed)
		if moveErr != nil {
			return moveErr
		}
		if moved != from {
			changes[key] = moved
			touched = append(touched, key)
		}
	}

	for _, key := range decision.Deselected() {
		if !reach[key.String()] {
			continue
		}
		from := statusOf(statuses, key)
		moved, moveErr := moveStatus(from, order.StatusRejected)
		if moveErr != nil {
			return moveErr
		}
		if moved != from {
			changes[key] = moved
			touched = append(touched, key)
			rejected = append(rejected, key)
		}
	}

	if err = saveStatuses(ctx, statusRepo, cmd.OrderID(), changes); err != nil {
		return err
	}
	if err = stageRepo.SaveDecision(ctx, cmd.OrderID(), decision); err != nil {
		return err
	}

	lock, err := stage.NewLockRecord(cmd.ActorID())
	if err != nil {
		return err
	}
	if err = stageRepo.SaveLock(ctx, cmd.OrderID(), stage.Confirmed, lock); err != nil {
		return err
	}

	if err = h.advanceMarker(ctx, stageRepo, cmd.OrderID(), current, stage.Confirmed); err != nil {
		return err
	}

	if err = uow.Commit(ctx); err != nil {
		return err
	}

	h.dispatcher.DispatchStepActivation(ctx, notifications.StepEvent{
		Order:       p.order,
		Stage:       stage.Confirmed,
		TriggeredBy: cmd.ActorID(),
		TouchedKeys: touched,
	})
	if len(rejected) > 0 {
		h.dispatcher.DispatchSubStepActivation(ctx, notifications.StepEvent{
			Order:       p.order,
			Stage:       stage.Rejected,
			TriggeredBy: cmd.ActorID(),
			TouchedKeys: rejected,
		})
	}

	return nil
}
