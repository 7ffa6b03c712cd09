package snapshotrepo_test

import (
	"context"
	"testing"
	"time"

	"fulfillment/internal/adapters/out/postgres/snapshotrepo"
	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/core/domain/model/order"
	"fulfillment/internal/pkg/errs"

	"github.com/stretchr/testify/suite"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	postgresdriver "gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// OrderSnapshotsIntegrationTestSuite provides integration tests for the order
// snapshot store using PostgreSQL containers to verify persistence behavior.
type OrderSnapshotsIntegrationTestSuite struct {
	suite.Suite
	container *postgres.PostgresContainer
	db        *gorm.DB
	store     *snapshotrepo.GormOrderSnapshots
}

func (suite *OrderSnapshotsIntegrationTestSuite) SetupSuite() {
	ctx := context.Background()

	// Start PostgreSQL container
	container, err := postgres.Run(ctx,
		"postgres:15-alpine",
		postgres.WithDatabase("testdb"),
		postgres.WithUsername("testuser"),
		postgres.WithPassword("testpass"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second),
		),
	)
	suite.Require().NoError(err)
	suite.container = container

	// Get connection string and connect to database
	connStr, err := container.ConnectionString(ctx, "sslmode=disable")
	suite.Require().NoError(err)

	db, err := gorm.Open(postgresdriver.Open(connStr), &gorm.Config{})
	suite.Require().NoError(err)
	suite.db = db

	// Auto-migrate the schema
	suite.Require().NoError(db.AutoMigrate(
		&snapshotrepo.OrderDTO{},
		&snapshotrepo.OrderItemDTO{},
		&snapshotrepo.OrderItemCourierDTO{},
	))
}

func (suite *OrderSnapshotsIntegrationTestSuite) SetupTest() {
	suite.Require().NoError(suite.db.Exec("TRUNCATE TABLE orders, order_items, order_item_couriers").Error)
	suite.store = snapshotrepo.NewGormOrderSnapshots(suite.db)
}

func (suite *OrderSnapshotsIntegrationTestSuite) TearDownSuite() {
	if suite.container != nil {
		suite.Require().NoError(suite.container.Terminate(context.Background()))
	}
}

func (suite *OrderSnapshotsIntegrationTestSuite) TestAddAndGet_RoundTrips() {
	ctx := context.Background()

	snapshot := suite.createSnapshot("buyer_key_1")
	suite.Require().NoError(suite.store.Add(ctx, snapshot))

	retrieved, err := suite.store.Get(ctx, snapshot.ID())
	suite.Require().NoError(err)

	suite.Equal(snapshot.ID(), retrieved.ID())
	suite.Equal(snapshot.BuyerID(), retrieved.BuyerID())
	suite.Equal("Alex", retrieved.BuyerName())
	suite.Require().Len(retrieved.Items(), 2)

	// Item ordering and composition survive the round trip
	first := retrieved.Items()[0]
	suite.Equal("product_1", first.ProductID().String())
	suite.Equal(2, first.Quantity())
	suite.Equal("seller_key_1", first.SellerID().String())
	suite.Require().Len(first.Couriers(), 1)
	suite.Equal("courier_key_1", first.Couriers()[0].CourierID().String())
	suite.Equal("Pat", first.Couriers()[0].Name())

	second := retrieved.Items()[1]
	suite.Equal("product_2", second.ProductID().String())
	suite.Empty(second.Couriers())
}

func (suite *OrderSnapshotsIntegrationTestSuite) TestAdd_SameOrderTwice_ReplacesWhole() {
	ctx := context.Background()

	snapshot := suite.createSnapshot("buyer_key_1")
	suite.Require().NoError(suite.store.Add(ctx, snapshot))

	// The marketplace pushes a revised snapshot: one item dropped
	item := suite.createItem("product_9", "seller_key_2", nil)
	revised, err := order.NewOrder(
		snapshot.ID(), snapshot.BuyerID(), "Alex", "", snapshot.CreatedAt(), []order.OrderItem{item})
	suite.Require().NoError(err)

	suite.Require().NoError(suite.store.Add(ctx, revised))

	retrieved, err := suite.store.Get(ctx, snapshot.ID())
	suite.Require().NoError(err)
	suite.Require().Len(retrieved.Items(), 1)
	suite.Equal("product_9", retrieved.Items()[0].ProductID().String())

	// Stale item and courier rows must be gone
	var itemCount, courierCount int64
	suite.Require().NoError(suite.db.Model(&snapshotrepo.OrderItemDTO{}).Count(&itemCount).Error)
	suite.Require().NoError(suite.db.Model(&snapshotrepo.OrderItemCourierDTO{}).Count(&courierCount).Error)
	suite.Equal(int64(1), itemCount)
	suite.Equal(int64(0), courierCount)
}

func (suite *OrderSnapshotsIntegrationTestSuite) TestGet_NonExistentOrder_ReturnsNotFoundError() {
	ctx := context.Background()

	retrieved, err := suite.store.Get(ctx, kernel.NewUUID())
	suite.Nil(retrieved)
	suite.Require().Error(err)

	var notFoundErr *errs.ObjectNotFoundError
	suite.Require().ErrorAs(err, &notFoundErr)
}

func (suite *OrderSnapshotsIntegrationTestSuite) TestGetByParticipant_FindsEveryRole() {
	ctx := context.Background()

	asBuyer := suite.createSnapshot("actor_key_1")
	suite.Require().NoError(suite.store.Add(ctx, asBuyer))

	sellerItem := suite.createItem("product_1", "actor_key_1", nil)
	asSeller, err := order.NewOrder(
		kernel.NewUUID(), suite.actorID("buyer_key_2"), "", "", time.Now(), []order.OrderItem{sellerItem})
	suite.Require().NoError(err)
	suite.Require().NoError(suite.store.Add(ctx, asSeller))

	courier, err := order.NewCourierAssignment(suite.actorID("actor_key_1"), "", "")
	suite.Require().NoError(err)
	courierItem := suite.createItem("product_1", "seller_key_9", []order.CourierAssignment{courier})
	asCourier, err := order.NewOrder(
		kernel.NewUUID(), suite.actorID("buyer_key_3"), "", "", time.Now(), []order.OrderItem{courierItem})
	suite.Require().NoError(err)
	suite.Require().NoError(suite.store.Add(ctx, asCourier))

	unrelated := suite.createSnapshot("buyer_key_4")
	suite.Require().NoError(suite.store.Add(ctx, unrelated))

	orders, err := suite.store.GetByParticipant(ctx, suite.actorID("actor_key_1"))
	suite.Require().NoError(err)
	suite.Require().Len(orders, 3)

	found := make(map[string]bool, len(orders))
	for _, o := range orders {
		found[o.ID().String()] = true
	}
	suite.True(found[asBuyer.ID().String()], "Should find order where actor is the buyer")
	suite.True(found[asSeller.ID().String()], "Should find order where actor sells an item")
	suite.True(found[asCourier.ID().String()], "Should find order where actor delivers an item")
	suite.False(found[unrelated.ID().String()], "Must not find unrelated orders")
}

func (suite *OrderSnapshotsIntegrationTestSuite) TestGetByParticipant_NoParticipation_ReturnsEmpty() {
	ctx := context.Background()

	suite.Require().NoError(suite.store.Add(ctx, suite.createSnapshot("buyer_key_1")))

	orders, err := suite.store.GetByParticipant(ctx, suite.actorID("stranger_key_1"))
	suite.Require().NoError(err)
	suite.Empty(orders)
}

// createSnapshot builds a two-item order: product_1 owned by seller_key_1 with
// courier_key_1 assigned, product_2 owned by seller_key_2 without couriers.
func (suite *OrderSnapshotsIntegrationTestSuite) createSnapshot(buyerKey string) *order.Order {
	courier, err := order.NewCourierAssignment(suite.actorID("courier_key_1"), "Pat", "555-0101")
	suite.Require().NoError(err)

	items := []order.OrderItem{
		suite.createItem("product_1", "seller_key_1", []order.CourierAssignment{courier}),
		suite.createItem("product_2", "seller_key_2", nil),
	}

	snapshot, err := order.NewOrder(
		kernel.NewUUID(), suite.actorID(buyerKey), "Alex", "555-0100", time.Now(), items)
	suite.Require().NoError(err)
	return snapshot
}

func (suite *OrderSnapshotsIntegrationTestSuite) createItem(
	productKey, sellerKey string, couriers []order.CourierAssignment,
) order.OrderItem {
	productID, err := kernel.NewProductID(productKey)
	suite.Require().NoError(err)

	item, err := order.NewOrderItem(productID, "Item "+productKey, 2, suite.actorID(sellerKey), couriers, "")
	suite.Require().NoError(err)
	return item
}

func (suite *OrderSnapshotsIntegrationTestSuite) actorID(value string) kernel.ActorID {
	actorID, err := kernel.NewActorID(value)
	suite.Require().NoError(err)
	return actorID
}

func TestOrderSnapshotsIntegrationTestSuite(t *testing.T) {
	suite.Run(t, new(OrderSnapshotsIntegrationTestSuite))
}
