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

// RecordDeliveryCommandHandler persists the receipt acknowledgment. Checked
// keys move shipped -> delivered; every shipped item in the actor's reach
// left unchecked is reclassified as returned. Saving commits the delivery
// stage's lock. The marker does not advance (delivered is the final ranked
// stage); returned items trigger the return sub-wave scoped to their
// stakeholders.
type RecordDeliveryCommandHandler struct {
	recorderCore
}

// NewRecordDeliveryCommandHandler creates a handler for delivery saves.
func NewRecordDeliveryCommandHandler(
	uowFactory WorkflowUoWFactory,
	snapshots ports.OrderSnapshots,
	admins role.AdminList,
	dispatcher StepDispatcher,
	locks *OrderLocks,
) RecordDeliveryCommandHandler {
	return RecordDeliveryCommandHandler{
		recorderCore: newRecorderCore(uowFactory, snapshots, admins, dispatcher, locks),
	}
}

// Handle processes the delivery save.
func (h *RecordDeliveryCommandHandler) Handle(ctx context.Context, cmd RecordDeliveryCommand) error {
	if err := cmd.Validate(); err != nil {
		return err
	}

	h.locks.Lock(cmd.OrderID())
	defer h.locks.Unlock(cmd.OrderID())

	p, err := h.authorize(ctx, cmd.OrderID(), cmd.ActorID(), stage.Delivered)
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

	if err = h.ensureUnlocked(ctx, stageRepo, cmd.OrderID(), stage.Delivered, p.role); err != nil {
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

	checked := make(map[string]bool, len(cmd.DeliveredKeys()))
	for _, key := range cmd.DeliveredKeys() {
		checked[key.String()] = true
	}

	changes := make(map[kernel.ProductID]order.ItemStatus)
	touched := make([]kernel.ProductID, 0)
	delivered := make([]kernel.ProductID, 0, len(cmd.DeliveredKeys()))
	returned := make([]kernel.ProductID, 0)

	// reach: visible items that went out with a courier (or were already
	// acknowledged); everything else is not the delivery stage's business
	for _, item := range p.visibleItems(cmd.ActorID()) {
		key := item.ProductID()
		from := statusOf(statuses, key)
		if from != order.StatusShipped && from != order.StatusDelivered {
			continue
		}

		target := order.StatusReturned
		if checked[key.String()] {
			target = order.StatusDelivered
		}

		moved, moveErr := moveStatus(from, target)
		if moveErr != nil {
			return moveErr
		}
		if moved != from {
			changes[key] = moved
			touched = append(touched, key)
		}
		switch target {
		case order.StatusDelivered:
			delivered = append(delivered, key)
		case order.StatusReturned:
			returned = append(returned, key)
		}
	}

	if err = saveStatuses(ctx, statusRepo, cmd.OrderID(), changes); err != nil {
		return err
	}

	decision, err := stage.NewDeliveryDecision(delivered, returned)
	if err != nil {
		return err
	}
	if err = stageRepo.SaveDecision(ctx, cmd.OrderID(), decision); err != nil {
		return err
	}

	lock, err := stage.NewLockRecord(cmd.ActorID())
	if err != nil {
		return err
	}
	if err = stageRepo.SaveLock(ctx, cmd.OrderID(), stage.Delivered, lock); err != nil {
		return err
	}

	// delivered is the final ranked stage; advanceMarker is a no-op here but
	// keeps the recorder shape uniform
	if err = h.advanceMarker(ctx, stageRepo, cmd.OrderID(), current, stage.Delivered); err != nil {
		return err
	}

	if err = uow.Commit(ctx); err != nil {
		return err
	}

	h.dispatcher.DispatchStepActivation(ctx, notifications.StepEvent{
		Order:       p.order,
		Stage:       stage.Delivered,
		TriggeredBy: cmd.ActorID(),
		TouchedKeys: touched,
	})
	if len(returned) > 0 {
		h.dispatcher.DispatchSubStepActivation(ctx, notifications.StepEvent{
			Order:       p.order,
			Stage:       stage.Returned,
			TriggeredBy: cmd.ActorID(),
			TouchedKeys: returned,
		})
	}

	return nil
}
