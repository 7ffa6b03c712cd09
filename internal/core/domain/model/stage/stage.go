// Package stage provides the fulfillment stage sequence, per-stage decision
// records, lock records, and the current-stage marker.
//
// The ranked sequence is review(1) -> confirmed(2) -> shipped(3) -> delivered(4).
// The exception stages cancelled, rejected, and returned are unranked; they are
// derived facts about subsets of items, surfaced as indicators, and become the
// current-stage marker only through an explicit set, never through the
// activation gate.
package stage

import (
	"errors"
	"fmt"

	"fulfillment/internal/pkg/errs"
)

var (
	// ErrStageAlreadyPassed is returned when activating a stage at or behind
	// the currently active one.
	ErrStageAlreadyPassed = errors.New("stage is already passed, cannot regress")

	// ErrStageOutOfOrder is returned when activating a stage more than one
	// rank ahead of the currently active one.
	ErrStageOutOfOrder = errors.New("stages must be activated in order")

	// ErrStageNotActivatable is returned when an exception stage is pushed
	// through the rank gate; exception stages are set explicitly.
	ErrStageNotActivatable = errors.New("stage cannot be activated through the sequence gate")

	// ErrStageLocked is returned when a non-admin save targets a stage whose
	// lock record is already committed.
	ErrStageLocked = errors.New("stage decisions are locked")
)

// Stage identifies one node of the fulfillment workflow.
type Stage int

const (
	// StageUnknown represents an invalid or undefined stage.
	StageUnknown Stage = iota

	// Review is the buyer's item-selection stage, rank 1.
	Review

	// Confirmed is the seller's accept/reject stage, rank 2.
	Confirmed

	// Shipped is the handover stage, rank 3.
	Shipped

	// Delivered is the receipt acknowledgment stage, rank 4.
	Delivered

	// Cancelled is the exception classification for items dropped at review.
	Cancelled

	// Rejected is the exception classification for items declined at confirmation.
	Rejected

	// Returned is the exception classification for items refused at delivery.
	Returned
)

func getStageIDs() map[Stage]string {
	return map[Stage]string{
		Review:    "step-review",
		Confirmed: "step-confirmed",
		Shipped:   "step-shipped",
		Delivered: "step-delivered",
		Cancelled: "step-cancelled",
		Rejected:  "step-rejected",
		Returned:  "step-returned",
	}
}

func getStageNames() map[Stage]string {
	return map[Stage]string{
		Review:    "Review",
		Confirmed: "Confirmation",
		Shipped:   "Shipping",
		Delivered: "Delivery",
		Cancelled: "Cancellation",
		Rejected:  "Rejection",
		Returned:  "Return",
	}
}

// ID returns the stable wire identifier of the stage ("step-review", ...).
// Returns an empty string for invalid values.
func (s Stage) ID() string {
	return getStageIDs()[s]
}

// DisplayName returns the human-readable stage name used in notifications.
func (s Stage) DisplayName() string {
	return getStageNames()[s]
}

// String implements fmt.Stringer using the wire identifier.
func (s Stage) String() string {
	if id := s.ID(); id != "" {
		return id
	}
	return "unknown"
}

// FromID parses a stage from its wire identifier.
func FromID(id string) (Stage, error) {
	for s, stageID := range getStageIDs() {
		if stageID == id {
			return s, nil
		}
	}
	return StageUnknown, errs.NewValueIsInvalidErrorWithCause(
		"stage is invalid",
		fmt.Errorf("%q is not a valid stage id", id),
	)
}

// Validate checks that the stage is one of the closed stage set.
func (s Stage) Validate() error {
	if s < Review || s > Returned {
		return errs.NewValueIsInvalidErrorWithCause(
			"stage is invalid",
			fmt.Errorf("%d is not a valid stage", s),
		)
	}
	return nil
}

// Rank returns the stage's position in the ranked sequence, or 0 for
// exception stages and invalid values.
func (s Stage) Rank() int {
	switch s {
	case Review:
		return 1
	case Confirmed:
		return 2
	case Shipped:
		return 3
	case Delivered:
		return 4
	default:
		return 0
	}
}

// IsRanked reports whether the stage belongs to the primary sequence.
func (s Stage) IsRanked() bool {
	return s.Rank() > 0
}

// IsException reports whether the stage is one of the terminal exception
// classifications.
func (s Stage) IsException() bool {
	return s == Cancelled || s == Rejected || s == Returned
}

// IsLockable reports whether the stage supports a one-way commit of its
// decisions. Review has no lock; its decisions stay editable until the
// confirmation stage locks.
func (s Stage) IsLockable() bool {
	return s == Confirmed || s == Shipped || s == Delivered
}

// Next returns the successor in the ranked sequence.
// Reports false for Delivered (final) and for unranked stages.
func (s Stage) Next() (Stage, bool) {
	switch s {
	case Review:
		return Confirmed, true
	case Confirmed:
		return Shipped, true
	case Shipped:
		return Delivered, true
	default:
		return StageUnknown, false
	}
}

// ValidateActivation is the central gate for advancing the current-stage
// marker. A ranked target is accepted only when it immediately follows the
// currently active ranked stage; exception stages never pass the gate.
//
// Returns:
//   - nil when target's rank equals current's rank plus one
//   - ErrStageAlreadyPassed when target is at or behind current
//   - ErrStageOutOfOrder when target skips ahead
//   - ErrStageNotActivatable for exception targets
func ValidateActivation(current, target Stage) error {
	if err := target.Validate(); err != nil {
		return err
	}
	if !target.IsRanked() {
		return fmt.Errorf("%w: %s", ErrStageNotActivatable, target)
	}

	currentRank := current.Rank()
	switch {
	case target.Rank() <= currentRank:
		return fmt.Errorf("%w: %s is not after %s", ErrStageAlreadyPassed, target, current)
	case target.Rank() > currentRank+1:
		return fmt.Errorf("%w: %s does not follow %s", ErrStageOutOfOrder, target, current)
	default:
		return nil
	}
}
