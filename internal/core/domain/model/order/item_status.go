package order

import (
	"fmt"

	"fulfillment/internal/pkg/errs"
)

// ItemStatus represents the lifecycle state of a single order line item.
// It implements a state machine with defined transitions so items follow
// the fulfillment workflow without skipping stages.
//
// State transitions:
//
//	Pending ──┬──> Confirmed ──┬──> Shipped ──┬──> Delivered
//	          │        ^       │       ^      │        │
//	          │        │       v       │      │        │
//	          │        └── Rejected    └──────┼────────┘
//	          v                               v   (un-confirm / flip back)
//	      Cancelled <──> Pending          Returned
//
// Cancelled, Rejected, and Returned are exception states reached from the
// review, confirmation, and delivery stages respectively. Cancelled items can
// be re-selected back to Pending while review is still open; Rejected items
// can be flipped back to Confirmed while confirmation is unlocked.
//
// ItemStatus is a value object that validates state transitions and provides
// string representations for persistence and display.
type ItemStatus int

const (
	// StatusUnknown represents an invalid or undefined status.
	// This value (0) helps catch uninitialized ItemStatus values.
	StatusUnknown ItemStatus = iota

	// StatusPending is the initial status of every line item on a fresh order.
	StatusPending

	// StatusConfirmed indicates the owning seller accepted the item.
	StatusConfirmed

	// StatusShipped indicates the item was handed to a courier.
	StatusShipped

	// StatusDelivered indicates the buyer acknowledged receipt of the item.
	StatusDelivered

	// StatusCancelled indicates the buyer dropped the item during review.
	StatusCancelled

	// StatusRejected indicates the seller declined the item during confirmation.
	StatusRejected

	// StatusReturned indicates the item was not accepted at delivery.
	StatusReturned
)

// getItemStatusStrings returns the string representation of every status,
// including StatusUnknown, for display purposes.
func getItemStatusStrings() map[ItemStatus]string {
	return map[ItemStatus]string{
		StatusUnknown:   "unknown",
		StatusPending:   "pending",
		StatusConfirmed: "confirmed",
		StatusShipped:   "shipped",
		StatusDelivered: "delivered",
		StatusCancelled: "cancelled",
		StatusRejected:  "rejected",
		StatusReturned:  "returned",
	}
}

// getAllowedTransitions returns the set of legal lifecycle edges.
// The key is the current status, the value the statuses reachable from it.
func getAllowedTransitions() map[ItemStatus][]ItemStatus {
	return map[ItemStatus][]ItemStatus{
		StatusPending:   {StatusConfirmed, StatusCancelled},
		StatusCancelled: {StatusPending},
		StatusConfirmed: {StatusShipped, StatusRejected},
		StatusRejected:  {StatusConfirmed},
		StatusShipped:   {StatusDelivered, StatusConfirmed, StatusReturned},
		StatusDelivered: {StatusShipped},
	}
}

// Validate checks if the ItemStatus value is one of the closed status set.
// StatusUnknown (0) and out-of-range values are invalid.
func (s ItemStatus) Validate() error {
	if s <= StatusUnknown || s > StatusReturned {
		return errs.NewValueIsInvalidErrorWithCause(
			"item status is invalid",
			fmt.Errorf("%d is not a valid item status", s),
		)
	}
	return nil
}

// String returns the lowercase wire name of the status.
// Implements fmt.Stringer; safe to call on any value, returning "unknown"
// for values outside the closed set.
func (s ItemStatus) String() string {
	if str, ok := getItemStatusStrings()[s]; ok {
		return str
	}
	return "unknown"
}

// ItemStatusFromString parses the lowercase wire name of a status.
// Returns an error for names outside the closed set.
func ItemStatusFromString(value string) (ItemStatus, error) {
	for status, str := range getItemStatusStrings() {
		if str == value && status != StatusUnknown {
			return status, nil
		}
	}
	return StatusUnknown, errs.NewValueIsInvalidErrorWithCause(
		"item status is invalid",
		fmt.Errorf("%q is not a valid item status", value),
	)
}

// CanTransitionTo reports whether moving to target follows a legal edge.
// A transition to the current status itself is always permitted (no-op save).
func (s ItemStatus) CanTransitionTo(target ItemStatus) bool {
	if s == target {
		return true
	}
	for _, allowed := range getAllowedTransitions()[s] {
		if allowed == target {
			return true
		}
	}
	return false
}

// TransitionTo moves the status along a legal edge.
//
// Returns:
//   - (target, nil) when the edge is allowed or target equals the current status
//   - (0, error) when the transition would skip or regress illegally
func (s ItemStatus) TransitionTo(target ItemStatus) (ItemStatus, error) {
	if err := target.Validate(); err != nil {
		return 0, err
	}

	if !s.CanTransitionTo(target) {
		return 0, errs.NewValueIsInvalidErrorWithCause(
			"item status transition is invalid",
			fmt.Errorf("cannot move item from %s to %s", s, target),
		)
	}

	return target, nil
}

// IsException reports whether the status is one of the exception
// classifications surfaced as indicator flags.
func (s ItemStatus) IsException() bool {
	return s == StatusCancelled || s == StatusRejected || s == StatusReturned
}
