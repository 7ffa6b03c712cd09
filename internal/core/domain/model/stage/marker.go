package stage

// Marker is the persisted {stage, number} pointer indicating which stage is
// currently active for rendering. It is a cache derived by the sequencer,
// never the source of truth for item statuses.
type Marker struct {
	stage Stage
}

// NewMarker creates a marker pointing at the given stage.
// Exception stages are legal here: the hosting UI may explicitly surface one
// as the active stage, bypassing the rank gate.
func NewMarker(s Stage) (Marker, error) {
	if err := s.Validate(); err != nil {
		return Marker{}, err
	}
	return Marker{stage: s}, nil
}

// Stage returns the marked stage.
func (m Marker) Stage() Stage {
	return m.stage
}

// Number returns the marked stage's rank, 0 for exception stages.
func (m Marker) Number() int {
	return m.stage.Rank()
}

// DecisionSet reports which stage decisions exist in the store. It feeds the
// fallback inference below when no explicit marker was persisted.
type DecisionSet struct {
	HasReview       bool
	HasConfirmation bool
	HasShipping     bool
	HasDelivery     bool
}

// InferCurrentStage determines the active stage on session load.
//
// An explicitly persisted marker always wins. Without one, the position is
// reconstructed from the deepest decision present: a delivery or shipping
// decision implies the workflow reached Delivered, a confirmation decision
// implies Shipped is awaited, a review decision implies Confirmed is awaited,
// and an untouched order starts at Review.
//
// This is a fallback path only: a session that saves through the recorders
// always persists the marker alongside its decisions. Because the checks run
// deepest-first, a missing earlier decision (e.g. review skipped entirely)
// cannot mask a later one.
func InferCurrentStage(marker *Marker, saved DecisionSet) Stage {
	if marker != nil && marker.Stage().Validate() == nil {
		return marker.Stage()
	}

	switch {
	case saved.HasDelivery, saved.HasShipping:
		return Delivered
	case saved.HasConfirmation:
		return Shipped
	case saved.HasReview:
		return Confirmed
	default:
		return Review
	}
}
