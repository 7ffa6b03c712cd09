package order

import (
	"errors"
	"fmt"
	"time"

	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/pkg/errs"
	"fulfillment/internal/pkg/guard"
)

var (
	// ErrOrderIsNotConstructed is returned when an Order instance was not created
	// through the NewOrder factory method.
	ErrOrderIsNotConstructed = errors.New("Order must be created via NewOrder constructor")

	// ErrOrderItemIsNotConstructed is returned when an OrderItem was not created
	// through the NewOrderItem factory method.
	ErrOrderItemIsNotConstructed = errors.New("OrderItem must be created via NewOrderItem constructor")

	// ErrOrderHasNoItems is returned when an order snapshot carries no line items.
	ErrOrderHasNoItems = errors.New("order must contain at least one item")

	// ErrDuplicateProductID is returned when two line items share a product identifier.
	ErrDuplicateProductID = errors.New("product identifiers must be unique within an order")
)

// CourierAssignment records one courier attached to a line item, together
// with the display fields the notification layer needs.
type CourierAssignment struct {
	courierID kernel.ActorID
	name      string
	phone     string
}

// NewCourierAssignment creates a validated courier assignment.
// Name and phone are display-only and may be empty.
func NewCourierAssignment(courierID kernel.ActorID, name, phone string) (CourierAssignment, error) {
	if err := courierID.Validate(); err != nil {
		return CourierAssignment{}, err
	}
	return CourierAssignment{courierID: courierID, name: name, phone: phone}, nil
}

// CourierID returns the courier's identifier.
func (c CourierAssignment) CourierID() kernel.ActorID {
	return c.courierID
}

// Name returns the courier's display name.
func (c CourierAssignment) Name() string {
	return c.name
}

// Phone returns the courier's contact phone.
func (c CourierAssignment) Phone() string {
	return c.phone
}

// OrderItem is a single product line within an order snapshot.
//
// Invariant: every item belongs to exactly one seller and zero or more
// couriers. The item itself carries no lifecycle status; statuses are tracked
// separately per product identifier (see ItemStatus).
type OrderItem struct { //nolint:recvcheck //using for validation
	productID kernel.ProductID
	name      string
	quantity  int
	sellerID  kernel.ActorID
	couriers  []CourierAssignment
	note      string

	guard guard.ConstructorGuard
}

// NewOrderItem creates a validated order line item.
// Quantity must be positive; the note is optional free text.
func NewOrderItem(
	productID kernel.ProductID,
	name string,
	quantity int,
	sellerID kernel.ActorID,
	couriers []CourierAssignment,
	note string,
) (OrderItem, error) {
	item := OrderItem{
		couriers: couriers,
		name:     name,
		note:     note,
		guard:    guard.NewConstructorGuard(),
	}

	if err := errors.Join(
		item.setProductID(productID),
		item.setQuantity(quantity),
		item.setSellerID(sellerID),
	); err != nil {
		return OrderItem{}, err
	}

	return item, nil
}

// Validate ensures the item was created through NewOrderItem.
func (i OrderItem) Validate() error {
	return i.guard.Validate(ErrOrderItemIsNotConstructed)
}

// ProductID returns the product identifier, unique within the order.
func (i OrderItem) ProductID() kernel.ProductID {
	return i.productID
}

// Name returns the product display name.
func (i OrderItem) Name() string {
	return i.name
}

// Quantity returns the ordered quantity.
func (i OrderItem) Quantity() int {
	return i.quantity
}

// SellerID returns the owning seller's identifier.
func (i OrderItem) SellerID() kernel.ActorID {
	return i.sellerID
}

// Couriers returns the delivery assignments, possibly empty.
func (i OrderItem) Couriers() []CourierAssignment {
	return i.couriers
}

// Note returns the optional free-text note.
func (i OrderItem) Note() string {
	return i.note
}

// IsAssignedTo reports whether the given courier delivers this item.
func (i OrderItem) IsAssignedTo(courierID kernel.ActorID) bool {
	for _, c := range i.couriers {
		if c.CourierID().IsEqual(courierID) {
			return true
		}
	}
	return false
}

func (i *OrderItem) setProductID(productID kernel.ProductID) error {
	if err := productID.Validate(); err != nil {
		return err
	}
	i.productID = productID
	return nil
}

func (i *OrderItem) setQuantity(quantity int) error {
	if quantity <= 0 {
		return errs.NewValueIsInvalidErrorWithCause("quantity is invalid",
			fmt.Errorf("%d is not greater than 0", quantity))
	}
	i.quantity = quantity
	return nil
}

func (i *OrderItem) setSellerID(sellerID kernel.ActorID) error {
	if err := sellerID.Validate(); err != nil {
		return err
	}
	i.sellerID = sellerID
	return nil
}

// Order is the immutable order snapshot supplied by the hosting marketplace.
// The workflow engine reads it to resolve roles, scope item visibility, and
// compute notification recipients; it never mutates the snapshot.
//
// Order follows these invariants:
//   - Must have a valid unique identifier and owning buyer
//   - Must contain at least one line item
//   - Product identifiers are unique across its items
//   - Can only be created through the NewOrder constructor
type Order struct {
	id         kernel.UUID
	buyerID    kernel.ActorID
	buyerName  string
	buyerPhone string
	createdAt  time.Time
	items      []OrderItem

	isConstructed bool
}

// NewOrder creates a validated order snapshot.
//
// Parameters:
//   - id: unique order identifier
//   - buyerID: owning buyer's identifier
//   - buyerName, buyerPhone: buyer contact fields (display-only, may be empty)
//   - createdAt: snapshot creation timestamp
//   - items: the ordered line items (at least one, unique product ids)
//
// Returns the snapshot, or a validation error joining every violated rule.
func NewOrder(
	id kernel.UUID,
	buyerID kernel.ActorID,
	buyerName string,
	buyerPhone string,
	createdAt time.Time,
	items []OrderItem,
) (*Order, error) {
	o := &Order{
		buyerName:     buyerName,
		buyerPhone:    buyerPhone,
		createdAt:     createdAt,
		isConstructed: true,
	}

	if err := errors.Join(
		o.setID(id),
		o.setBuyerID(buyerID),
		o.setItems(items),
	); err != nil {
		return nil, err
	}

	return o, nil
}

// Validate ensures the Order instance was properly constructed through NewOrder.
func (o *Order) Validate() error {
	if o == nil || !o.isConstructed {
		return ErrOrderIsNotConstructed
	}
	return nil
}

// IsEqual compares two orders by their unique identifiers.
func (o *Order) IsEqual(other *Order) bool {
	return other != nil && o.id.IsEqual(other.id)
}

// ID returns the order's unique identifier.
func (o *Order) ID() kernel.UUID {
	return o.id
}

// BuyerID returns the owning buyer's identifier.
func (o *Order) BuyerID() kernel.ActorID {
	return o.buyerID
}

// BuyerName returns the buyer's display name.
func (o *Order) BuyerName() string {
	return o.buyerName
}

// BuyerPhone returns the buyer's contact phone.
func (o *Order) BuyerPhone() string {
	return o.buyerPhone
}

// CreatedAt returns the snapshot creation timestamp.
func (o *Order) CreatedAt() time.Time {
	return o.createdAt
}

// Items returns the ordered line items.
func (o *Order) Items() []OrderItem {
	return o.items
}

// Item returns the line item for the given product identifier.
func (o *Order) Item(productID kernel.ProductID) (OrderItem, bool) {
	for _, item := range o.items {
		if item.ProductID().IsEqual(productID) {
			return item, true
		}
	}
	return OrderItem{}, false
}

// SellerIDs returns the distinct seller identifiers across all items,
// in first-appearance order.
func (o *Order) SellerIDs() []kernel.ActorID {
	seen := make(map[string]bool, len(o.items))
	sellers := make([]kernel.ActorID, 0, len(o.items))
	for _, item := range o.items {
		key := item.SellerID().String()
		if !seen[key] {
			seen[key] = true
			sellers = append(sellers, item.SellerID())
		}
	}
	return sellers
}

// CourierIDs returns the distinct courier identifiers across all items,
// in first-appearance order.
func (o *Order) CourierIDs() []kernel.ActorID {
	seen := make(map[string]bool)
	couriers := make([]kernel.ActorID, 0)
	for _, item := range o.items {
		for _, c := range item.Couriers() {
			key := c.CourierID().String()
			if !seen[key] {
				seen[key] = true
				couriers = append(couriers, c.CourierID())
			}
		}
	}
	return couriers
}

// ItemsOwnedBy returns the items belonging to the given seller.
func (o *Order) ItemsOwnedBy(sellerID kernel.ActorID) []OrderItem {
	owned := make([]OrderItem, 0, len(o.items))
	for _, item := range o.items {
		if item.SellerID().IsEqual(sellerID) {
			owned = append(owned, item)
		}
	}
	return owned
}

// ItemsAssignedTo returns the items delivered by the given courier.
func (o *Order) ItemsAssignedTo(courierID kernel.ActorID) []OrderItem {
	assigned := make([]OrderItem, 0, len(o.items))
	for _, item := range o.items {
		if item.IsAssignedTo(courierID) {
			assigned = append(assigned, item)
		}
	}
	return assigned
}

func (o *Order) setID(id kernel.UUID) error {
	if err := id.Validate(); err != nil {
		return err
	}
	o.id = id
	return nil
}

func (o *Order) setBuyerID(buyerID kernel.ActorID) error {
	if err := buyerID.Validate(); err != nil {
		return err
	}
	o.buyerID = buyerID
	return nil
}

func (o *Order) setItems(items []OrderItem) error {
	if len(items) == 0 {
		return ErrOrderHasNoItems
	}

	seen := make(map[string]bool, len(items))
	for _, item := range items {
		if err := item.Validate(); err != nil {
			return err
		}
		key := item.ProductID().String()
		if seen[key] {
			return fmt.Errorf("%w: %s", ErrDuplicateProductID, key)
		}
		seen[key] = true
	}

	o.items = items
	return nil
}
