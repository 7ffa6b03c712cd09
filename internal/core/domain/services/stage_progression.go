package services

import (
	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/core/domain/model/order"
	"fulfillment/internal/core/domain/model/stage"
)

// StageProgressionService is a domain service that decides how the
// current-stage marker moves after a decision recorder saves, and which
// exception indicators the item status set implies.
//
// Marker movement is conditional by design: a recorder's save always stands,
// but the marker only advances when the activation gate accepts the step. A
// confirmation saved while the workflow is still at review keeps the marker
// in place instead of failing the save.
type StageProgressionService struct{}

// NewStageProgressionService creates a new StageProgressionService instance.
func NewStageProgressionService() StageProgressionService {
	return StageProgressionService{}
}

// AdvanceAfterSave computes the marker position after the given ranked stage
// committed its decisions.
//
// Parameters:
//   - current: the currently active stage
//   - completed: the ranked stage whose recorder just saved
//
// Returns:
//   - the new marker and true when the gate accepted the advancement
//   - the zero marker and false when the stage has no successor (Delivered)
//     or the gate refused the step
func (StageProgressionService) AdvanceAfterSave(current, completed stage.Stage) (stage.Marker, bool) {
	target, ok := completed.Next()
	if !ok {
		return stage.Marker{}, false
	}

	if err := stage.ValidateActivation(current, target); err != nil {
		return stage.Marker{}, false
	}

	marker, err := stage.NewMarker(target)
	if err != nil {
		return stage.Marker{}, false
	}
	return marker, true
}

// ExceptionIndicators derives which exception stages have at least one item,
// in the fixed order cancelled, rejected, returned.
func (StageProgressionService) ExceptionIndicators(
	statuses map[kernel.ProductID]order.ItemStatus,
) []stage.Stage {
	var hasCancelled, hasRejected, hasReturned bool
	for _, status := range statuses {
		switch status {
		case order.StatusCancelled:
			hasCancelled = true
		case order.StatusRejected:
			hasRejected = true
		case order.StatusReturned:
			hasReturned = true
		}
	}

	indicators := make([]stage.Stage, 0, 3)
	if hasCancelled {
		indicators = append(indicators, stage.Cancelled)
	}
	if hasRejected {
		indicators = append(indicators, stage.Rejected)
	}
	if hasReturned {
		indicators = append(indicators, stage.Returned)
	}
	return indicators
}
