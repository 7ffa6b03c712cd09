package kernel

import (
	"strings"

	"fulfillment/internal/pkg/errs"
)

// ErrActorIDIsNotConstructed is returned when validating a zero-value ActorID.
var ErrActorIDIsNotConstructed = errs.NewValueIsRequiredError(
	"ActorID must be created via NewActorID",
)

// ErrProductIDIsNotConstructed is returned when validating a zero-value ProductID.
var ErrProductIDIsNotConstructed = errs.NewValueIsRequiredError(
	"ProductID must be created via NewProductID",
)

// ActorID is a value object identifying a marketplace participant. Participant
// identifiers come from the hosting platform's user directory and are treated
// as opaque non-empty strings.
//
// The zero value of ActorID is invalid and must be constructed via NewActorID.
// ActorID is immutable and safe for concurrent use.
//
// Example usage:
//
//	buyer, err := kernel.NewActorID("buyer_key_1")
//	if err != nil {
//	    // handle error
//	}
type ActorID struct {
	value string
}

// NewActorID creates an ActorID from its string form.
// Surrounding whitespace is rejected rather than trimmed, since identifiers
// must round-trip byte-for-byte with the hosting platform.
func NewActorID(value string) (ActorID, error) {
	if value == "" {
		return ActorID{}, errs.NewValueIsRequiredError("actorID")
	}
	if strings.TrimSpace(value) != value {
		return ActorID{}, errs.NewValueIsInvalidError("actorID")
	}
	return ActorID{value: value}, nil
}

// String returns the raw identifier.
func (a ActorID) String() string {
	return a.value
}

// IsEqual compares two actor identifiers for equality.
func (a ActorID) IsEqual(other ActorID) bool {
	return a.value == other.value
}

// Validate checks that the ActorID was constructed via NewActorID.
func (a ActorID) Validate() error {
	if a.value == "" {
		return ErrActorIDIsNotConstructed
	}
	return nil
}

// ProductID is a value object identifying a product line item. Product
// identifiers are unique within a single order and key the per-item lifecycle
// status independently of the order snapshot.
//
// The zero value of ProductID is invalid and must be constructed via NewProductID.
type ProductID struct {
	value string
}

// NewProductID creates a ProductID from its string form.
func NewProductID(value string) (ProductID, error) {
	if value == "" {
		return ProductID{}, errs.NewValueIsRequiredError("productID")
	}
	if strings.TrimSpace(value) != value {
		return ProductID{}, errs.NewValueIsInvalidError("productID")
	}
	return ProductID{value: value}, nil
}

// String returns the raw identifier.
func (p ProductID) String() string {
	return p.value
}

// IsEqual compares two product identifiers for equality.
func (p ProductID) IsEqual(other ProductID) bool {
	return p.value == other.value
}

// Validate checks that the ProductID was constructed via NewProductID.
func (p ProductID) Validate() error {
	if p.value == "" {
		return ErrProductIDIsNotConstructed
	}
	return nil
}
