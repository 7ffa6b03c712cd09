package commands

import (
	"context"
	"fmt"

	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/core/domain/model/order"
	"fulfillment/internal/core/domain/model/role"
	"fulfillment/internal/core/domain/model/stage"
	"fulfillment/internal/core/ports"
	"fulfillment/internal/notifications"
)

// RecordReviewCommandHandler persists the buyer's item selection: selected
// keys stay (or return to) pending, unselected keys are cancelled. Items that
// already advanced past review are left untouched. A successful save moves
// the marker review -> confirmed through the activation gate and notifies the
// participants; cancelled items additionally trigger the cancellation
// sub-wave scoped to their stakeholders.
type RecordReviewCommandHandler struct {
	recorderCore
}

// NewRecordReviewCommandHandler creates a handler for review saves.
func NewRecordReviewCommandHandler(
	uowFactory WorkflowUoWFactory,
	snapshots ports.OrderSnapshots,
	admins role.AdminList,
	dispatcher StepDispatcher,
	locks *OrderLocks,
) RecordReviewCommandHandler {
	return RecordReviewCommandHandler{
		recorderCore: newRecorderCore(uowFactory, snapshots, admins, dispatcher, locks),
	}
}

// Handle processes the review save.
// Only the buyer (or an admin) records the review; dropping a previously
// selected item requires the destructive-change confirmation flag.
func (h *RecordReviewCommandHandler) Handle(ctx context.Context, cmd RecordReviewCommand) error {
	if err := cmd.Validate(); err != nil {
		return err
	}

	h.locks.Lock(cmd.OrderID())
	defer h.locks.Unlock(cmd.OrderID())

	p, err := h.authorize(ctx, cmd.OrderID(), cmd.ActorID(), stage.Review)
	if err != nil {
		return err
	}
	// the permission table lets every role open the review step for reading;
	// recording it is the buyer's alone
	if p.role != role.Buyer && p.role != role.Admin {
		return fmt.Errorf("%w: only the buyer records the review", role.ErrPermissionDenied)
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

	current, err := h.currentStage(ctx, stageRepo, cmd.OrderID())
	if err != nil {
		return err
	}

	statuses, err := statusRepo.GetAll(ctx, cmd.OrderID())
	if err != nil {
		return err
	}

	decision := cmd.Decision()
	if !cmd.ConfirmDestructive() {
		for _, key := range decision.Unselected() {
			if statusOf(statuses, key) == order.StatusPending {
				return fmt.Errorf("%w: %s", ErrDestructiveChangeNotConfirmed, key)
			}
		}
	}

	changes := make(map[kernel.ProductID]order.ItemStatus)
	touched := make([]kernel.ProductID, 0, len(decision.Selected())+len(decision.Unselected()))
	cancelled := make([]kernel.ProductID, 0, len(decision.Unselected()))

	for _, key := range decision.Selected() {
		if _, ok := p.order.Item(key); !ok {
			continue
		}
		if statusOf(statuses, key) != order.StatusCancelled {
			continue
		}
		moved, moveErr := moveStatus(order.StatusCancelled, order.StatusPending)
		if moveErr != nil {
			return moveErr
		}
		changes[key] = moved
		touched = append(touched, key)
	}

	for _, key := range decision.Unselected() {
		if _, ok := p.order.Item(key); !ok {
			continue
		}
		// items past review are out of the review's reach
		if statusOf(statuses, key) != order.StatusPending {
			continue
		}
		moved, moveErr := moveStatus(order.StatusPending, order.StatusCancelled)
		if moveErr != nil {
			return moveErr
		}
		changes[key] = moved
		touched = append(touched, key)
		cancelled = append(cancelled, key)
	}

	if err = saveStatuses(ctx, statusRepo, cmd.OrderID(), changes); err != nil {
		return err
	}
	if err = stageRepo.SaveDecision(ctx, cmd.OrderID(), decision); err != nil {
		return err
	}

	if err = h.advanceMarker(ctx, stageRepo, cmd.OrderID(), current, stage.Review); err != nil {
		return err
	}

	if err = uow.Commit(ctx); err != nil {
		return err
	}

	h.dispatcher.DispatchStepActivation(ctx, notifications.StepEvent{
		Order:       p.order,
		Stage:       stage.Review,
		TriggeredBy: cmd.ActorID(),
		TouchedKeys: touched,
	})
	if len(cancelled) > 0 {
		h.dispatcher.DispatchSubStepActivation(ctx, notifications.StepEvent{
			Order:       p.order,
			Stage:       stage.Cancelled,
			TriggeredBy: cmd.ActorID(),
			TouchedKeys: cancelled,
		})
	}

	return nil
}
