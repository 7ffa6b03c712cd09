// Package snapshotrepo persists the order snapshots pushed by the hosting
// marketplace. A snapshot is stored across three tables: the order head, its
// line items, and the courier assignments per item. The workflow engine reads
// snapshots to resolve roles and scope item visibility; it never edits them.
package snapshotrepo

import (
	"time"

	"github.com/google/uuid"

	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/core/domain/model/order"
)

// OrderDTO represents the database structure for the order head.
type OrderDTO struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey"`
	BuyerID    string    `gorm:"type:text;not null;index"`
	BuyerName  string    `gorm:"type:text"`
	BuyerPhone string    `gorm:"type:text"`
	CreatedAt  time.Time

	Items []OrderItemDTO `gorm:"foreignKey:OrderID;references:ID"`
}

// TableName specifies the database table name for order heads.
func (OrderDTO) TableName() string {
	return "orders"
}

// OrderItemDTO represents the database structure for one line item.
// Position preserves the marketplace's item ordering across reloads.
type OrderItemDTO struct {
	OrderID   uuid.UUID `gorm:"type:uuid;primaryKey"`
	ProductID string    `gorm:"type:text;primaryKey"`
	Position  int       `gorm:"not null"`
	Name      string    `gorm:"type:text"`
	Quantity  int       `gorm:"not null"`
	SellerID  string    `gorm:"type:text;not null;index"`
	Note      string    `gorm:"type:text"`

	Couriers []OrderItemCourierDTO `gorm:"foreignKey:OrderID,ProductID;references:OrderID,ProductID"`
}

// TableName specifies the database table name for order line items.
func (OrderItemDTO) TableName() string {
	return "order_items"
}

// OrderItemCourierDTO represents the database structure for one courier
// assignment on a line item.
type OrderItemCourierDTO struct {
	OrderID   uuid.UUID `gorm:"type:uuid;primaryKey"`
	ProductID string    `gorm:"type:text;primaryKey"`
	CourierID string    `gorm:"type:text;primaryKey;index"`
	Name      string    `gorm:"type:text"`
	Phone     string    `gorm:"type:text"`
}

// TableName specifies the database table name for courier assignments.
func (OrderItemCourierDTO) TableName() string {
	return "order_item_couriers"
}

func fromDomain(aggregate *order.Order) OrderDTO {
	items := make([]OrderItemDTO, 0, len(aggregate.Items()))
	for position, item := range aggregate.Items() {
		couriers := make([]OrderItemCourierDTO, 0, len(item.Couriers()))
		for _, c := range item.Couriers() {
			couriers = append(couriers, OrderItemCourierDTO{
				OrderID:   aggregate.ID().Bytes(),
				ProductID: item.ProductID().String(),
				CourierID: c.CourierID().String(),
				Name:      c.Name(),
				Phone:     c.Phone(),
			})
		}

		items = append(items, OrderItemDTO{
			OrderID:   aggregate.ID().Bytes(),
			ProductID: item.ProductID().String(),
			Position:  position,
			Name:      item.Name(),
			Quantity:  item.Quantity(),
			SellerID:  item.SellerID().String(),
			Note:      item.Note(),
			Couriers:  couriers,
		})
	}

	return OrderDTO{
		ID:         aggregate.ID().Bytes(),
		BuyerID:    aggregate.BuyerID().String(),
		BuyerName:  aggregate.BuyerName(),
		BuyerPhone: aggregate.BuyerPhone(),
		CreatedAt:  aggregate.CreatedAt(),
		Items:      items,
	}
}

func toDomain(dto OrderDTO) (*order.Order, error) {
	id, err := kernel.UUIDFromBytes(dto.ID[:])
	if err != nil {
		return nil, err
	}

	buyerID, err := kernel.NewActorID(dto.BuyerID)
	if err != nil {
		return nil, err
	}

	items := make([]order.OrderItem, 0, len(dto.Items))
	for _, itemDTO := range dto.Items {
		item, itemErr := itemToDomain(itemDTO)
		if itemErr != nil {
			return nil, itemErr
		}
		items = append(items, item)
	}

	return order.NewOrder(id, buyerID, dto.BuyerName, dto.BuyerPhone, dto.CreatedAt, items)
}

func itemToDomain(dto OrderItemDTO) (order.OrderItem, error) {
	productID, err := kernel.NewProductID(dto.ProductID)
	if err != nil {
		return order.OrderItem{}, err
	}

	sellerID, err := kernel.NewActorID(dto.SellerID)
	if err != nil {
		return order.OrderItem{}, err
	}

	couriers := make([]order.CourierAssignment, 0, len(dto.Couriers))
	for _, courierDTO := range dto.Couriers {
		courierID, courierErr := kernel.NewActorID(courierDTO.CourierID)
		if courierErr != nil {
			return order.OrderItem{}, courierErr
		}

		assignment, courierErr := order.NewCourierAssignment(courierID, courierDTO.Name, courierDTO.Phone)
		if courierErr != nil {
			return order.OrderItem{}, courierErr
		}
		couriers = append(couriers, assignment)
	}

	return order.NewOrderItem(productID, dto.Name, dto.Quantity, sellerID, couriers, dto.Note)
}
