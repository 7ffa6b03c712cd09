package role

import (
	"errors"

	"fulfillment/internal/core/domain/model/stage"
)

// ErrPermissionDenied is returned when a role opens a stage outside its
// permission set. The action is refused before any state changes.
var ErrPermissionDenied = errors.New("role is not allowed to act on this stage")

// getAllowedStages returns the static permission table: which stages each
// role may open or act on. Admin is permitted every stage.
func getAllowedStages() map[Role][]stage.Stage {
	return map[Role][]stage.Stage{
		Buyer: {
			stage.Review, stage.Delivered,
			stage.Cancelled, stage.Rejected, stage.Returned,
		},
		Seller: {
			stage.Review, stage.Confirmed, stage.Shipped,
			stage.Cancelled, stage.Rejected, stage.Returned,
		},
		Courier: {
			stage.Review, stage.Shipped, stage.Delivered,
			stage.Cancelled, stage.Rejected, stage.Returned,
		},
		Admin: {
			stage.Review, stage.Confirmed, stage.Shipped, stage.Delivered,
			stage.Cancelled, stage.Rejected, stage.Returned,
		},
	}
}

// IsStageAllowed reports whether the role may open the given stage.
func IsStageAllowed(r Role, s stage.Stage) bool {
	for _, allowed := range getAllowedStages()[r] {
		if allowed == s {
			return true
		}
	}
	return false
}

// AllowedStages returns the role's permitted stages for rendering.
func AllowedStages(r Role) []stage.Stage {
	return getAllowedStages()[r]
}
