// Package role derives the acting user's capability class from their
// relationship to the order snapshot and provides the static stage
// permission table.
package role

import (
	"errors"
	"fmt"

	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/core/domain/model/order"
	"fulfillment/internal/pkg/errs"
)

var (
	// ErrRoleConflict is returned when an actor is simultaneously buyer and
	// seller on the order set. A participant cannot transact with themselves;
	// this is reported, never silently resolved.
	ErrRoleConflict = errors.New("actor is both buyer and seller on the order")

	// ErrRoleUnresolved is returned when the actor matches no relationship
	// on the order set. No safe default role exists.
	ErrRoleUnresolved = errors.New("no role found for actor")
)

// Role is the capability class of a marketplace participant relative to an
// order: what the actor may see and which stages they may act on.
type Role int

const (
	// RoleUnknown represents an unresolved role. This value (0) helps catch
	// uninitialized Role values.
	RoleUnknown Role = iota

	// Buyer owns the order.
	Buyer

	// Seller owns one or more of the order's line items.
	Seller

	// Courier delivers one or more of the order's line items.
	Courier

	// Admin is on the administrative allow-list and bypasses relationship checks.
	Admin
)

func getRoleStrings() map[Role]string {
	return map[Role]string{
		RoleUnknown: "unknown",
		Buyer:       "buyer",
		Seller:      "seller",
		Courier:     "courier",
		Admin:       "admin",
	}
}

// String returns the lowercase wire name of the role.
func (r Role) String() string {
	if s, ok := getRoleStrings()[r]; ok {
		return s
	}
	return "unknown"
}

// Validate checks that the role is one of the resolved classes.
func (r Role) Validate() error {
	if r < Buyer || r > Admin {
		return errs.NewValueIsInvalidErrorWithCause(
			"role is invalid",
			fmt.Errorf("%d is not a valid role", r),
		)
	}
	return nil
}

// AdminList is the fixed administrative allow-list supplied at session start.
type AdminList []kernel.ActorID

// Contains reports whether the actor is on the allow-list.
func (l AdminList) Contains(actor kernel.ActorID) bool {
	for _, id := range l {
		if id.IsEqual(actor) {
			return true
		}
	}
	return false
}

// Resolve classifies the actor against the order set.
//
// Resolution is a pure function of its inputs:
//   - an allow-listed actor is Admin immediately, bypassing all other checks
//   - an actor that is both buyer and seller fails with ErrRoleConflict
//   - otherwise priority is seller > buyer > courier
//   - no relationship at all fails with ErrRoleUnresolved
func Resolve(actor kernel.ActorID, orders []*order.Order, admins AdminList) (Role, error) {
	if err := actor.Validate(); err != nil {
		return RoleUnknown, err
	}

	if admins.Contains(actor) {
		return Admin, nil
	}

	var isBuyer, isSeller, isCourier bool
	for _, o := range orders {
		if err := o.Validate(); err != nil {
			return RoleUnknown, err
		}

		if o.BuyerID().IsEqual(actor) {
			isBuyer = true
		}
		for _, item := range o.Items() {
			if item.SellerID().IsEqual(actor) {
				isSeller = true
			}
			if item.IsAssignedTo(actor) {
				isCourier = true
			}
		}
	}

	if isBuyer && isSeller {
		return RoleUnknown, fmt.Errorf("%w: %s", ErrRoleConflict, actor)
	}

	switch {
	case isSeller:
		return Seller, nil
	case isBuyer:
		return Buyer, nil
	case isCourier:
		return Courier, nil
	default:
		return RoleUnknown, fmt.Errorf("%w: %s", ErrRoleUnresolved, actor)
	}
}
