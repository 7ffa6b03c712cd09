// Package services provides domain services that orchestrate business rules
// across multiple domain models in the fulfillment workflow.
//
// The package includes:
//   - StageProgressionService: computes marker advancement after a stage save
//     and derives the exception indicators from the item status set
//
// Domain services implement logic that spans the stage sequence and the
// per-item status machine without belonging to either aggregate.
package services
