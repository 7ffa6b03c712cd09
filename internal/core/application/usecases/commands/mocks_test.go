package commands_test

import (
	"context"
	"testing"
	"time"

	"fulfillment/internal/core/application/usecases/commands"
	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/core/domain/model/order"
	"fulfillment/internal/core/domain/model/stage"
	"fulfillment/internal/core/ports"
	"fulfillment/internal/notifications"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockStatusRepository struct{ mock.Mock }

func (m *MockStatusRepository) Get(ctx context.Context, orderID kernel.UUID, productID kernel.ProductID) (order.ItemStatus, error) {
	args := m.Called(ctx, orderID, productID)
	return args.Get(0).(order.ItemStatus), args.Error(1)
}

func (m *MockStatusRepository) GetAll(ctx context.Context, orderID kernel.UUID) (map[kernel.ProductID]order.ItemStatus, error) {
	args := m.Called(ctx, orderID)
	statuses, _ := args.Get(0).(map[kernel.ProductID]order.ItemStatus)
	return statuses, args.Error(1)
}

func (m *MockStatusRepository) Save(ctx context.Context, orderID kernel.UUID, productID kernel.ProductID, status order.ItemStatus) error {
	args := m.Called(ctx, orderID, productID, status)
	return args.Error(0)
}

type MockStageRepository struct{ mock.Mock }

func (m *MockStageRepository) GetDecision(ctx context.Context, orderID kernel.UUID, s stage.Stage) (stage.Decision, error) {
	args := m.Called(ctx, orderID, s)
	decision, _ := args.Get(0).(stage.Decision)
	return decision, args.Error(1)
}

func (m *MockStageRepository) GetDecisionSet(ctx context.Context, orderID kernel.UUID) (stage.DecisionSet, error) {
	args := m.Called(ctx, orderID)
	return args.Get(0).(stage.DecisionSet), args.Error(1)
}

func (m *MockStageRepository) SaveDecision(ctx context.Context, orderID kernel.UUID, decision stage.Decision) error {
	args := m.Called(ctx, orderID, decision)
	return args.Error(0)
}

func (m *MockStageRepository) GetLock(ctx context.Context, orderID kernel.UUID, s stage.Stage) (stage.LockRecord, error) {
	args := m.Called(ctx, orderID, s)
	return args.Get(0).(stage.LockRecord), args.Error(1)
}

func (m *MockStageRepository) SaveLock(ctx context.Context, orderID kernel.UUID, s stage.Stage, lock stage.LockRecord) error {
	args := m.Called(ctx, orderID, s, lock)
	return args.Error(0)
}

func (m *MockStageRepository) GetMarker(ctx context.Context, orderID kernel.UUID) (*stage.Marker, error) {
	args := m.Called(ctx, orderID)
	marker, _ := args.Get(0).(*stage.Marker)
	return marker, args.Error(1)
}

func (m *MockStageRepository) SaveMarker(ctx context.Context, orderID kernel.UUID, marker stage.Marker) error {
	args := m.Called(ctx, orderID, marker)
	return args.Error(0)
}

type MockWorkflowUoW struct{ mock.Mock }

func (m *MockWorkflowUoW) Begin(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockWorkflowUoW) Commit(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockWorkflowUoW) Rollback(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockWorkflowUoW) StatusRepository() ports.StatusRepository {
	args := m.Called()
	return args.Get(0).(ports.StatusRepository)
}

func (m *MockWorkflowUoW) StageRepository() ports.StageRepository {
	args := m.Called()
	return args.Get(0).(ports.StageRepository)
}

type MockWorkflowUoWFactory struct{ mock.Mock }

func (m *MockWorkflowUoWFactory) Create() commands.WorkflowUoW {
	args := m.Called()
	return args.Get(0).(commands.WorkflowUoW)
}

type MockOrderSnapshots struct{ mock.Mock }

func (m *MockOrderSnapshots) Get(ctx context.Context, orderID kernel.UUID) (*order.Order, error) {
	args := m.Called(ctx, orderID)
	o, _ := args.Get(0).(*order.Order)
	return o, args.Error(1)
}

func (m *MockOrderSnapshots) GetByParticipant(ctx context.Context, actorID kernel.ActorID) ([]*order.Order, error) {
	args := m.Called(ctx, actorID)
	orders, _ := args.Get(0).([]*order.Order)
	return orders, args.Error(1)
}

func (m *MockOrderSnapshots) Add(ctx context.Context, aggregate *order.Order) error {
	args := m.Called(ctx, aggregate)
	return args.Error(0)
}

type MockStepDispatcher struct{ mock.Mock }

func (m *MockStepDispatcher) DispatchStepActivation(ctx context.Context, event notifications.StepEvent) {
	m.Called(ctx, event)
}

func (m *MockStepDispatcher) DispatchSubStepActivation(ctx context.Context, event notifications.StepEvent) {
	m.Called(ctx, event)
}

func testActorID(t *testing.T, value string) kernel.ActorID {
	t.Helper()
	id, err := kernel.NewActorID(value)
	require.NoError(t, err)
	return id
}

func testProductID(t *testing.T, value string) kernel.ProductID {
	t.Helper()
	id, err := kernel.NewProductID(value)
	require.NoError(t, err)
	return id
}

// testOrder builds a two-item snapshot: item1 sold by seller_key_1 and
// carried by courier_key_1, item2 sold by seller_key_2.
func testOrder(t *testing.T, orderID kernel.UUID) *order.Order {
	t.Helper()

	courier, err := order.NewCourierAssignment(testActorID(t, "courier_key_1"), "Pat", "")
	require.NoError(t, err)

	item1, err := order.NewOrderItem(testProductID(t, "item1"), "Lamp", 1,
		testActorID(t, "seller_key_1"), []order.CourierAssignment{courier}, "")
	require.NoError(t, err)
	item2, err := order.NewOrderItem(testProductID(t, "item2"), "Desk", 2,
		testActorID(t, "seller_key_2"), nil, "")
	require.NoError(t, err)

	o, err := order.NewOrder(orderID, testActorID(t, "buyer_key_1"),
		"Alex", "", time.Now(), []order.OrderItem{item1, item2})
	require.NoError(t, err)
	return o
}

func markerAt(t *testing.T, s stage.Stage) *stage.Marker {
	t.Helper()
	m, err := stage.NewMarker(s)
	require.NoError(t, err)
	return &m
}
