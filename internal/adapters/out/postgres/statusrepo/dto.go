// Package statusrepo persists per-item lifecycle statuses. Each row is one
// (order, product) pair; saving is an upsert so exactly one status exists per
// product key at any time.
package statusrepo

import (
	"time"

	"github.com/google/uuid"

	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/core/domain/model/order"
)

// ItemStatusDTO represents the database structure for one item's status.
type ItemStatusDTO struct {
	OrderID   uuid.UUID `gorm:"type:uuid;primaryKey"`
	ProductID string    `gorm:"type:text;primaryKey"`
	Status    string    `gorm:"type:text;not null"`
	UpdatedAt time.Time
}

// TableName specifies the database table name for item statuses.
func (ItemStatusDTO) TableName() string {
	return "item_statuses"
}

func fromDomain(orderID kernel.UUID, productID kernel.ProductID, status order.ItemStatus) ItemStatusDTO {
	return ItemStatusDTO{
		OrderID:   orderID.Bytes(),
		ProductID: productID.String(),
		Status:    status.String(),
	}
}

func toDomain(dto ItemStatusDTO) (kernel.ProductID, order.ItemStatus, error) {
	productID, err := kernel.NewProductID(dto.ProductID)
	if err != nil {
		return kernel.ProductID{}, order.StatusUnknown, err
	}

	status, err := order.ItemStatusFromString(dto.Status)
	if err != nil {
		return kernel.ProductID{}, order.StatusUnknown, err
	}

	return productID, status, nil
}
