package stage

import (
	"errors"
	"fmt"

	"fulfillment/internal/core/domain/model/kernel"
)

var (
	// ErrDecisionKeysOverlap is returned when a product key appears on both
	// sides of a stage decision.
	ErrDecisionKeysOverlap = errors.New("a product key cannot be both selected and unselected")

	// ErrDecisionStageInvalid is returned when rehydrating a decision for a
	// stage that records no decisions.
	ErrDecisionStageInvalid = errors.New("stage does not record decisions")
)

// Decision is the per-stage record of which product keys the responsible role
// accepted and which it declined. Each ranked stage has its own variant so the
// field pairs that are legal together stay together; illegal combinations are
// unrepresentable.
type Decision interface {
	// Stage identifies the stage this decision belongs to.
	Stage() Stage

	// SelectedKeys returns the accepted product keys for the stage.
	SelectedKeys() []kernel.ProductID

	// UnselectedKeys returns the declined product keys for the stage.
	UnselectedKeys() []kernel.ProductID
}

// validateKeySets checks each key and rejects overlap between the two sides.
func validateKeySets(selected, unselected []kernel.ProductID) error {
	seen := make(map[string]bool, len(selected))
	for _, key := range selected {
		if err := key.Validate(); err != nil {
			return err
		}
		seen[key.String()] = true
	}
	for _, key := range unselected {
		if err := key.Validate(); err != nil {
			return err
		}
		if seen[key.String()] {
			return fmt.Errorf("%w: %s", ErrDecisionKeysOverlap, key)
		}
	}
	return nil
}

// ReviewDecision records the buyer's item selection:
// selected keys stay pending, unselected keys are cancelled.
type ReviewDecision struct {
	selected   []kernel.ProductID
	unselected []kernel.ProductID
}

// NewReviewDecision creates a validated review decision.
func NewReviewDecision(selected, unselected []kernel.ProductID) (ReviewDecision, error) {
	if err := validateKeySets(selected, unselected); err != nil {
		return ReviewDecision{}, err
	}
	return ReviewDecision{selected: selected, unselected: unselected}, nil
}

// Stage returns Review.
func (d ReviewDecision) Stage() Stage { return Review }

// Selected returns the keys the buyer kept.
func (d ReviewDecision) Selected() []kernel.ProductID { return d.selected }

// Unselected returns the keys the buyer dropped.
func (d ReviewDecision) Unselected() []kernel.ProductID { return d.unselected }

// SelectedKeys implements Decision.
func (d ReviewDecision) SelectedKeys() []kernel.ProductID { return d.selected }

// UnselectedKeys implements Decision.
func (d ReviewDecision) UnselectedKeys() []kernel.ProductID { return d.unselected }

// ConfirmationDecision records the seller's accept/reject split over the
// buyer-selected items.
type ConfirmationDecision struct {
	selected   []kernel.ProductID
	deselected []kernel.ProductID
}

// NewConfirmationDecision creates a validated confirmation decision.
func NewConfirmationDecision(selected, deselected []kernel.ProductID) (ConfirmationDecision, error) {
	if err := validateKeySets(selected, deselected); err != nil {
		return ConfirmationDecision{}, err
	}
	return ConfirmationDecision{selected: selected, deselected: deselected}, nil
}

// Stage returns Confirmed.
func (d ConfirmationDecision) Stage() Stage { return Confirmed }

// Selected returns the keys the seller confirmed.
func (d ConfirmationDecision) Selected() []kernel.ProductID { return d.selected }

// Deselected returns the keys the seller rejected.
func (d ConfirmationDecision) Deselected() []kernel.ProductID { return d.deselected }

// SelectedKeys implements Decision.
func (d ConfirmationDecision) SelectedKeys() []kernel.ProductID { return d.selected }

// UnselectedKeys implements Decision.
func (d ConfirmationDecision) UnselectedKeys() []kernel.ProductID { return d.deselected }

// ShippingDecision records which confirmed items were handed to a courier
// and which were held back.
type ShippingDecision struct {
	shipped []kernel.ProductID
	held    []kernel.ProductID
}

// NewShippingDecision creates a validated shipping decision.
func NewShippingDecision(shipped, held []kernel.ProductID) (ShippingDecision, error) {
	if err := validateKeySets(shipped, held); err != nil {
		return ShippingDecision{}, err
	}
	return ShippingDecision{shipped: shipped, held: held}, nil
}

// Stage returns Shipped.
func (d ShippingDecision) Stage() Stage { return Shipped }

// Shipped returns the keys handed to a courier.
func (d ShippingDecision) Shipped() []kernel.ProductID { return d.shipped }

// Held returns the keys kept back at confirmation status.
func (d ShippingDecision) Held() []kernel.ProductID { return d.held }

// SelectedKeys implements Decision.
func (d ShippingDecision) SelectedKeys() []kernel.ProductID { return d.shipped }

// UnselectedKeys implements Decision.
func (d ShippingDecision) UnselectedKeys() []kernel.ProductID { return d.held }

// DeliveryDecision records which shipped items the receiver acknowledged;
// everything left unchecked at save is reclassified returned.
type DeliveryDecision struct {
	delivered []kernel.ProductID
	returned  []kernel.ProductID
}

// NewDeliveryDecision creates a validated delivery decision.
func NewDeliveryDecision(delivered, returned []kernel.ProductID) (DeliveryDecision, error) {
	if err := validateKeySets(delivered, returned); err != nil {
		return DeliveryDecision{}, err
	}
	return DeliveryDecision{delivered: delivered, returned: returned}, nil
}

// Stage returns Delivered.
func (d DeliveryDecision) Stage() Stage { return Delivered }

// Delivered returns the acknowledged keys.
func (d DeliveryDecision) Delivered() []kernel.ProductID { return d.delivered }

// Returned returns the keys reclassified as returned.
func (d DeliveryDecision) Returned() []kernel.ProductID { return d.returned }

// SelectedKeys implements Decision.
func (d DeliveryDecision) SelectedKeys() []kernel.ProductID { return d.delivered }

// UnselectedKeys implements Decision.
func (d DeliveryDecision) UnselectedKeys() []kernel.ProductID { return d.returned }

// DecisionFromKeys rehydrates the stage-appropriate decision variant from the
// generic selected/unselected key pair a store persists.
func DecisionFromKeys(s Stage, selected, unselected []kernel.ProductID) (Decision, error) {
	switch s {
	case Review:
		return NewReviewDecision(selected, unselected)
	case Confirmed:
		return NewConfirmationDecision(selected, unselected)
	case Shipped:
		return NewShippingDecision(selected, unselected)
	case Delivered:
		return NewDeliveryDecision(selected, unselected)
	default:
		return nil, fmt.Errorf("%w: %s", ErrDecisionStageInvalid, s)
	}
}
