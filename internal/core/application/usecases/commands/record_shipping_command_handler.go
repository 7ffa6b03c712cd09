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

// RecordShippingCommandHandler persists the handover split: shipped keys move
// confirmed -> shipped, held keys flip back shipped -> confirmed. Saving
// commits the shipping stage's lock; the marker advances shipped -> delivered
// through the activation gate.
type RecordShippingCommandHandler struct {
	recorderCore
}

// NewRecordShippingCommandHandler creates a handler for shipping saves.
func NewRecordShippingCommandHandler(
	uowFactory WorkflowUoWFactory,
	snapshots ports.OrderSnapshots,
	admins role.AdminList,
	dispatcher StepDispatcher,
	locks *OrderLocks,
) RecordShippingCommandHandler {
	return RecordShippingCommandHandler{
		recorderCore: newRecorderCore(uowFactory, snapshots, admins, dispatcher, locks),
	}
}

// Handle processes the shipping save.
// The actor's reach is their visible items that a seller confirmed; keys
// outside that scope are ignored rather than failing the save.
func (h *RecordShippingCommandHandler) Handle(ctx context.Context, cmd RecordShippingCommand) error {
	if err := cmd.Validate(); err != nil {
		return err
	}

	h.locks.Lock(cmd.OrderID())
	defer h.locks.Unlock(cmd.OrderID())

	p, err := h.authorize(ctx, cmd.OrderID(), cmd.ActorID(), stage.Shipped)
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

	if err = h.ensureUnlocked(ctx, stageRepo, cmd.OrderID(), stage.Shipped, p.role); err != nil {
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

	// scope: visible items that reached the confirmed status (or already shipped)
	reach := make(map[string]bool)
	for _, item := range p.visibleItems(cmd.ActorID()) {
		switch statusOf(statuses, item.ProductID()) {
		case order.StatusConfirmed, order.StatusShipped:
			reach[item.ProductID().String()] = true
		}
	}

	decision := cmd.Decision()
	changes := make(map[kernel.ProductID]order.ItemStatus)
	touched := make([]kernel.ProductID, 0, len(decision.Shipped())+len(decision.Held()))

	for _, key := range decision.Shipped() {
		if !reach[key.String()] {
			continue
		}
		from := statusOf(statuses, key)
		moved, moveErr := moveStatus(from, order.StatusShipped)
		if moveErr != nil {
			return moveErr
		}
		if moved != from {
			changes[key] = moved
			touched = append(touched, key)
		}
	}

	for _, key := range decision.Held() {
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
	if err = stageRepo.SaveLock(ctx, cmd.OrderID(), stage.Shipped, lock); err != nil {
		return err
	}

	if err = h.advanceMarker(ctx, stageRepo, cmd.OrderID(), current, stage.Shipped); err != nil {
		return err
	}

	if err = uow.Commit(ctx); err != nil {
		return err
	}

	h.dispatcher.DispatchStepActivation(ctx, notifications.StepEvent{
		Order:       p.order,
		Stage:       stage.Shipped,
		TriggeredBy: cmd.ActorID(),
		TouchedKeys: touched,
	})

	return nil
}
