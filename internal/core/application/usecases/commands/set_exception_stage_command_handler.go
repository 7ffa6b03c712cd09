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

// SetExceptionStageCommandHandler surfaces an exception stage as the active
// marker without touching item statuses. The sub-wave notification for the
// stage goes to the stakeholders of the items currently carrying the matching
// exception status.
type SetExceptionStageCommandHandler struct {
	recorderCore
}

// NewSetExceptionStageCommandHandler creates a handler for explicit exception
// stage overrides.
func NewSetExceptionStageCommandHandler(
	uowFactory WorkflowUoWFactory,
	snapshots ports.OrderSnapshots,
	admins role.AdminList,
	dispatcher StepDispatcher,
	locks *OrderLocks,
) SetExceptionStageCommandHandler {
	return SetExceptionStageCommandHandler{
		recorderCore: newRecorderCore(uowFactory, snapshots, admins, dispatcher, locks),
	}
}

// Handle processes the marker override.
func (h *SetExceptionStageCommandHandler) Handle(ctx context.Context, cmd SetExceptionStageCommand) error {
	if err := cmd.Validate(); err != nil {
		return err
	}

	h.locks.Lock(cmd.OrderID())
	defer h.locks.Unlock(cmd.OrderID())

	p, err := h.authorize(ctx, cmd.OrderID(), cmd.ActorID(), cmd.Stage())
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

	marker, err := stage.NewMarker(cmd.Stage())
	if err != nil {
		return err
	}
	if err = uow.StageRepository().SaveMarker(ctx, cmd.OrderID(), marker); err != nil {
		return err
	}

	statuses, err := uow.StatusRepository().GetAll(ctx, cmd.OrderID())
	if err != nil {
		return err
	}

	if err = uow.Commit(ctx); err != nil {
		return err
	}

	touched := keysWithStatus(statuses, exceptionStatusFor(cmd.Stage()))
	h.dispatcher.DispatchSubStepActivation(ctx, notifications.StepEvent{
		Order:       p.order,
		Stage:       cmd.Stage(),
		TriggeredBy: cmd.ActorID(),
		TouchedKeys: touched,
	})

	return nil
}

// exceptionStatusFor maps an exception stage to the item status it surfaces.
func exceptionStatusFor(s stage.Stage) order.ItemStatus {
	switch s {
	case stage.Cancelled:
		return order.StatusCancelled
	case stage.Rejected:
		return order.StatusRejected
	case stage.Returned:
		return order.StatusReturned
	default:
		return order.StatusUnknown
	}
}

func keysWithStatus(
	statuses map[kernel.ProductID]order.ItemStatus,
	status order.ItemStatus,
) []kernel.ProductID {
	keys := make([]kernel.ProductID, 0, len(statuses))
	for key, s := range statuses {
		if s == status {
			keys = append(keys, key)
		}
	}
	return keys
}
