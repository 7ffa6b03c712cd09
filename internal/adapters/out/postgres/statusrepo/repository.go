package statusrepo

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/core/domain/model/order"
)

// GormStatusRepository implements ports.StatusRepository using GORM.
type GormStatusRepository struct {
	db *gorm.DB
}

// NewGormStatusRepository creates a new GORM item status repository.
func NewGormStatusRepository(db *gorm.DB) *GormStatusRepository {
	return &GormStatusRepository{db: db}
}

// Get retrieves one item's status. Items that were never saved report the
// initial pending status.
func (r *GormStatusRepository) Get(
	ctx context.Context,
	orderID kernel.UUID,
	productID kernel.ProductID,
) (order.ItemStatus, error) {
	if err := orderID.Validate(); err != nil {
		return order.StatusUnknown, err
	}
	if err := productID.Validate(); err != nil {
		return order.StatusUnknown, err
	}

	var dto ItemStatusDTO
	err := r.db.WithContext(ctx).
		First(&dto, "order_id = ? AND product_id = ?", orderID.Bytes(), productID.String()).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return order.StatusPending, nil
		}
		return order.StatusUnknown, err
	}

	_, status, err := toDomain(dto)
	return status, err
}

// GetAll retrieves every persisted status for the order.
func (r *GormStatusRepository) GetAll(
	ctx context.Context,
	orderID kernel.UUID,
) (map[kernel.ProductID]order.ItemStatus, error) {
	if err := orderID.Validate(); err != nil {
		return nil, err
	}

	var dtos []ItemStatusDTO
	if err := r.db.WithContext(ctx).
		Find(&dtos, "order_id = ?", orderID.Bytes()).Error; err != nil {
		return nil, err
	}

	statuses := make(map[kernel.ProductID]order.ItemStatus, len(dtos))
	for _, dto := range dtos {
		productID, status, err := toDomain(dto)
		if err != nil {
			return nil, err
		}
		statuses[productID] = status
	}
	return statuses, nil
}

// Save upserts one item's status.
func (r *GormStatusRepository) Save(
	ctx context.Context,
	orderID kernel.UUID,
	productID kernel.ProductID,
	status order.ItemStatus,
) error {
	if err := orderID.Validate(); err != nil {
		return err
	}
	if err := productID.Validate(); err != nil {
		return err
	}
	if err := status.Validate(); err != nil {
		return err
	}

	dto := fromDomain(orderID, productID, status)
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "order_id"}, {Name: "product_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"status", "updated_at"}),
		}).
		Create(&dto).Error
}
