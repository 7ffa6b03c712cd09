package snapshotrepo

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/core/domain/model/order"
	"fulfillment/internal/pkg/errs"
)

// GormOrderSnapshots implements ports.OrderSnapshots using GORM.
type GormOrderSnapshots struct {
	db *gorm.DB
}

// NewGormOrderSnapshots creates a new GORM order snapshot store.
func NewGormOrderSnapshots(db *gorm.DB) *GormOrderSnapshots {
	return &GormOrderSnapshots{db: db}
}

// Get retrieves one order snapshot by its identifier.
// Returns errs.ErrObjectNotFound when no order exists.
func (r *GormOrderSnapshots) Get(ctx context.Context, orderID kernel.UUID) (*order.Order, error) {
	if err := orderID.Validate(); err != nil {
		return nil, err
	}

	var dto OrderDTO
	err := r.preloaded(ctx).First(&dto, "id = ?", orderID.Bytes()).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.NewObjectNotFoundError("order", orderID.String())
		}
		return nil, err
	}

	return toDomain(dto)
}

// GetByParticipant retrieves every order the actor participates in as buyer,
// seller, or courier.
func (r *GormOrderSnapshots) GetByParticipant(
	ctx context.Context,
	actorID kernel.ActorID,
) ([]*order.Order, error) {
	if err := actorID.Validate(); err != nil {
		return nil, err
	}

	var ids []uuid.UUID
	err := r.db.WithContext(ctx).Raw(`
		SELECT DISTINCT o.id
		FROM orders o
		LEFT JOIN order_items i ON i.order_id = o.id
		LEFT JOIN order_item_couriers c ON c.order_id = o.id
		WHERE o.buyer_id = ? OR i.seller_id = ? OR c.courier_id = ?
	`, actorID.String(), actorID.String(), actorID.String()).Scan(&ids).Error
	if err != nil {
		return nil, err
	}

	if len(ids) == 0 {
		return []*order.Order{}, nil
	}

	var dtos []OrderDTO
	if err := r.preloaded(ctx).Find(&dtos, "id IN ?", ids).Error; err != nil {
		return nil, err
	}

	orders := make([]*order.Order, 0, len(dtos))
	for _, dto := range dtos {
		o, toErr := toDomain(dto)
		if toErr != nil {
			return nil, toErr
		}
		orders = append(orders, o)
	}
	return orders, nil
}

// Add stores the snapshot pushed by the hosting marketplace, replacing any
// previous snapshot of the same order in whole.
func (r *GormOrderSnapshots) Add(ctx context.Context, aggregate *order.Order) error {
	if err := aggregate.Validate(); err != nil {
		return err
	}

	dto := fromDomain(aggregate)
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		orderID := aggregate.ID().Bytes()
		if err := tx.Delete(&OrderItemCourierDTO{}, "order_id = ?", orderID).Error; err != nil {
			return err
		}
		if err := tx.Delete(&OrderItemDTO{}, "order_id = ?", orderID).Error; err != nil {
			return err
		}
		if err := tx.Delete(&OrderDTO{}, "id = ?", orderID).Error; err != nil {
			return err
		}
		return tx.Create(&dto).Error
	})
}

func (r *GormOrderSnapshots) preloaded(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).
		Preload("Items", func(db *gorm.DB) *gorm.DB {
			return db.Order("position")
		}).
		Preload("Items.Couriers")
}
