package commands_test

import (
	"testing"
	"time"

	"fulfillment/internal/core/application/usecases/commands"
	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/core/domain/model/order"
	"fulfillment/internal/core/domain/model/role"
	"fulfillment/internal/core/domain/model/stage"
	"fulfillment/internal/notifications"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// sellerOrder builds a snapshot where one seller owns both items, so a single
// confirmation save can accept one and reject the other.
func sellerOrder(t *testing.T, orderID kernel.UUID) *order.Order {
	t.Helper()

	item1, err := order.NewOrderItem(testProductID(t, "item1"), "Lamp", 1,
		testActorID(t, "seller_key_1"), nil, "")
	require.NoError(t, err)
	item2, err := order.NewOrderItem(testProductID(t, "item2"), "Desk", 1,
		testActorID(t, "seller_key_1"), nil, "")
	require.NoError(t, err)

	o, err := order.NewOrder(orderID, testActorID(t, "buyer_key_1"),
		"Alex", "", time.Now(), []order.OrderItem{item1, item2})
	require.NoError(t, err)
	return o
}

func TestRecordConfirmationCommandHandler_Handle_Success(t *testing.T) {
	ctx := t.Context()
	orderID := kernel.NewUUID()
	o := sellerOrder(t, orderID)
	seller := testActorID(t, "seller_key_1")
	item1 := testProductID(t, "item1")
	item2 := testProductID(t, "item2")

	cmd, err := commands.NewRecordConfirmationCommand(orderID, seller,
		[]kernel.ProductID{item1}, []kernel.ProductID{item2})
	require.NoError(t, err)

	lock, err := stage.NewLockRecord(seller)
	require.NoError(t, err)

	snapshots := new(MockOrderSnapshots)
	statusRepo := new(MockStatusRepository)
	stageRepo := new(MockStageRepository)
	uow := new(MockWorkflowUoW)
	factory := new(MockWorkflowUoWFactory)
	dispatcher := new(MockStepDispatcher)

	// status writes iterate a map; their relative order is not pinned
	statusRepo.On("Save", ctx, orderID, item1, order.StatusConfirmed).Return(nil).Once()
	statusRepo.On("Save", ctx, orderID, item2, order.StatusRejected).Return(nil).Once()

	mock.InOrder(
		snapshots.On("Get", ctx, orderID).Return(o, nil).Once(),
		factory.On("Create").Return(uow).Once(),
		uow.On("Begin", ctx).Return(nil).Once(),
		uow.On("StageRepository").Return(stageRepo).Once(),
		uow.On("StatusRepository").Return(statusRepo).Once(),
		stageRepo.On("GetLock", ctx, orderID, stage.Confirmed).Return(stage.Unlocked(), nil).Once(),
		stageRepo.On("GetMarker", ctx, orderID).Return(markerAt(t, stage.Confirmed), nil).Once(),
		stageRepo.On("GetDecisionSet", ctx, orderID).Return(stage.DecisionSet{HasReview: true}, nil).Once(),
		statusRepo.On("GetAll", ctx, orderID).Return(map[kernel.ProductID]order.ItemStatus{
			item1: order.StatusPending,
			item2: order.StatusPending,
		}, nil).Once(),
		stageRepo.On("SaveDecision", ctx, orderID, cmd.Decision()).Return(nil).Once(),
		stageRepo.On("SaveLock", ctx, orderID, stage.Confirmed, lock).Return(nil).Once(),
		stageRepo.On("SaveMarker", ctx, orderID, *markerAt(t, stage.Shipped)).Return(nil).Once(),
		uow.On("Commit", ctx).Return(nil).Once(),
		dispatcher.On("DispatchStepActivation", ctx, notifications.StepEvent{
			Order:       o,
			Stage:       stage.Confirmed,
			TriggeredBy: seller,
			TouchedKeys: []kernel.ProductID{item1, item2},
		}).Once(),
		dispatcher.On("DispatchSubStepActivation", ctx, notifications.StepEvent{
			Order:       o,
			Stage:       stage.Rejected,
			TriggeredBy: seller,
			TouchedKeys: []kernel.ProductID{item2},
		}).Once(),
		uow.On("Rollback", ctx).Return(nil).Once(),
	)

	h := commands.NewRecordConfirmationCommandHandler(factory, snapshots, nil, dispatcher, commands.NewOrderLocks())
	require.NoError(t, h.Handle(ctx, cmd))

	snapshots.AssertExpectations(t)
	statusRepo.AssertExpectations(t)
	stageRepo.AssertExpectations(t)
	uow.AssertExpectations(t)
	dispatcher.AssertExpectations(t)
}

func TestRecordConfirmationCommandHandler_Handle_WaveCarriesOnlyActorsItems(t *testing.T) {
	ctx := t.Context()
	orderID := kernel.NewUUID()
	o := testOrder(t, orderID) // item1 belongs to seller_key_1, item2 to seller_key_2
	seller := testActorID(t, "seller_key_1")
	item1 := testProductID(t, "item1")
	item2 := testProductID(t, "item2")

	cmd, err := commands.NewRecordConfirmationCommand(orderID, seller,
		[]kernel.ProductID{item1}, nil)
	require.NoError(t, err)

	lock, err := stage.NewLockRecord(seller)
	require.NoError(t, err)

	snapshots := new(MockOrderSnapshots)
	statusRepo := new(MockStatusRepository)
	stageRepo := new(MockStageRepository)
	uow := new(MockWorkflowUoW)
	factory := new(MockWorkflowUoWFactory)
	dispatcher := new(MockStepDispatcher)

	mock.InOrder(
		snapshots.On("Get", ctx, orderID).Return(o, nil).Once(),
		factory.On("Create").Return(uow).Once(),
		uow.On("Begin", ctx).Return(nil).Once(),
		uow.On("StageRepository").Return(stageRepo).Once(),
		uow.On("StatusRepository").Return(statusRepo).Once(),
		stageRepo.On("GetLock", ctx, orderID, stage.Confirmed).Return(stage.Unlocked(), nil).Once(),
		stageRepo.On("GetMarker", ctx, orderID).Return(markerAt(t, stage.Confirmed), nil).Once(),
		stageRepo.On("GetDecisionSet", ctx, orderID).Return(stage.DecisionSet{HasReview: true}, nil).Once(),
		statusRepo.On("GetAll", ctx, orderID).Return(map[kernel.ProductID]order.ItemStatus{
			item1: order.StatusPending,
			item2: order.StatusPending,
		}, nil).Once(),
		statusRepo.On("Save", ctx, orderID, item1, order.StatusConfirmed).Return(nil).Once(),
		stageRepo.On("SaveDecision", ctx, orderID, cmd.Decision()).Return(nil).Once(),
		stageRepo.On("SaveLock", ctx, orderID, stage.Confirmed, lock).Return(nil).Once(),
		stageRepo.On("SaveMarker", ctx, orderID, *markerAt(t, stage.Shipped)).Return(nil).Once(),
		uow.On("Commit", ctx).Return(nil).Once(),
		// the event names item1 only, so the wave never reaches seller_key_2
		dispatcher.On("DispatchStepActivation", ctx, notifications.StepEvent{
			Order:       o,
			Stage:       stage.Confirmed,
			TriggeredBy: seller,
			TouchedKeys: []kernel.ProductID{item1},
		}).Once(),
		uow.On("Rollback", ctx).Return(nil).Once(),
	)

	h := commands.NewRecordConfirmationCommandHandler(factory, snapshots, nil, dispatcher, commands.NewOrderLocks())
	require.NoError(t, h.Handle(ctx, cmd))

	dispatcher.AssertExpectations(t)
	stageRepo.AssertExpectations(t)
}

func TestRecordConfirmationCommandHandler_Handle_LockedStageRejectsSeller(t *testing.T) {
	ctx := t.Context()
	orderID := kernel.NewUUID()
	o := sellerOrder(t, orderID)
	seller := testActorID(t, "seller_key_1")

	cmd, err := commands.NewRecordConfirmationCommand(orderID, seller,
		[]kernel.ProductID{testProductID(t, "item1")}, nil)
	require.NoError(t, err)

	committed, err := stage.NewLockRecord(seller)
	require.NoError(t, err)

	snapshots := new(MockOrderSnapshots)
	statusRepo := new(MockStatusRepository)
	stageRepo := new(MockStageRepository)
	uow := new(MockWorkflowUoW)
	factory := new(MockWorkflowUoWFactory)

	mock.InOrder(
		snapshots.On("Get", ctx, orderID).Return(o, nil).Once(),
		factory.On("Create").Return(uow).Once(),
		uow.On("Begin", ctx).Return(nil).Once(),
		uow.On("StageRepository").Return(stageRepo).Once(),
		uow.On("StatusRepository").Return(statusRepo).Once(),
		stageRepo.On("GetLock", ctx, orderID, stage.Confirmed).Return(committed, nil).Once(),
		uow.On("Rollback", ctx).Return(nil).Once(),
	)

	h := commands.NewRecordConfirmationCommandHandler(factory, snapshots, nil,
		new(MockStepDispatcher), commands.NewOrderLocks())
	err = h.Handle(ctx, cmd)
	require.ErrorIs(t, err, stage.ErrStageLocked)

	uow.AssertNotCalled(t, "Commit", mock.Anything)
	stageRepo.AssertExpectations(t)
}

func TestRecordConfirmationCommandHandler_Handle_LockedStageAllowsAdmin(t *testing.T) {
	ctx := t.Context()
	orderID := kernel.NewUUID()
	o := sellerOrder(t, orderID)
	admin := testActorID(t, "admin_key_1")
	item1 := testProductID(t, "item1")

	cmd, err := commands.NewRecordConfirmationCommand(orderID, admin,
		[]kernel.ProductID{item1}, nil)
	require.NoError(t, err)

	committed, err := stage.NewLockRecord(testActorID(t, "seller_key_1"))
	require.NoError(t, err)
	adminLock, err := stage.NewLockRecord(admin)
	require.NoError(t, err)

	snapshots := new(MockOrderSnapshots)
	statusRepo := new(MockStatusRepository)
	stageRepo := new(MockStageRepository)
	uow := new(MockWorkflowUoW)
	factory := new(MockWorkflowUoWFactory)
	dispatcher := new(MockStepDispatcher)

	mock.InOrder(
		snapshots.On("Get", ctx, orderID).Return(o, nil).Once(),
		factory.On("Create").Return(uow).Once(),
		uow.On("Begin", ctx).Return(nil).Once(),
		uow.On("StageRepository").Return(stageRepo).Once(),
		uow.On("StatusRepository").Return(statusRepo).Once(),
		stageRepo.On("GetLock", ctx, orderID, stage.Confirmed).Return(committed, nil).Once(),
		stageRepo.On("GetMarker", ctx, orderID).Return(markerAt(t, stage.Shipped), nil).Once(),
		stageRepo.On("GetDecisionSet", ctx, orderID).Return(stage.DecisionSet{HasReview: true, HasConfirmation: true}, nil).Once(),
		statusRepo.On("GetAll", ctx, orderID).Return(map[kernel.ProductID]order.ItemStatus{
			item1: order.StatusConfirmed,
		}, nil).Once(),
		stageRepo.On("SaveDecision", ctx, orderID, cmd.Decision()).Return(nil).Once(),
		stageRepo.On("SaveLock", ctx, orderID, stage.Confirmed, adminLock).Return(nil).Once(),
		uow.On("Commit", ctx).Return(nil).Once(),
		// the re-save still goes out to the participants
		dispatcher.On("DispatchStepActivation", ctx, notifications.StepEvent{
			Order:       o,
			Stage:       stage.Confirmed,
			TriggeredBy: admin,
			TouchedKeys: []kernel.ProductID{},
		}).Once(),
		uow.On("Rollback", ctx).Return(nil).Once(),
	)

	admins := role.AdminList{admin}
	h := commands.NewRecordConfirmationCommandHandler(factory, snapshots, admins, dispatcher, commands.NewOrderLocks())
	require.NoError(t, h.Handle(ctx, cmd))

	// marker already at shipped: the gate refuses a second advance
	stageRepo.AssertNotCalled(t, "SaveMarker", mock.Anything, mock.Anything, mock.Anything)
	stageRepo.AssertExpectations(t)
	uow.AssertExpectations(t)
	dispatcher.AssertExpectations(t)
}

func TestRecordConfirmationCommandHandler_Handle_BuyerIsDenied(t *testing.T) {
	ctx := t.Context()
	orderID := kernel.NewUUID()
	o := sellerOrder(t, orderID)
	buyer := testActorID(t, "buyer_key_1")

	cmd, err := commands.NewRecordConfirmationCommand(orderID, buyer, nil, nil)
	require.NoError(t, err)

	snapshots := new(MockOrderSnapshots)
	snapshots.On("Get", ctx, orderID).Return(o, nil).Once()

	h := commands.NewRecordConfirmationCommandHandler(new(MockWorkflowUoWFactory), snapshots, nil,
		new(MockStepDispatcher), commands.NewOrderLocks())
	err = h.Handle(ctx, cmd)
	require.ErrorIs(t, err, role.ErrPermissionDenied)
}
