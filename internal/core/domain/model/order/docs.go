// Package order provides the immutable order snapshot and the per-item
// lifecycle state machine for the fulfillment workflow.
//
// The package includes:
//   - Order: the snapshot aggregate supplied by the hosting marketplace,
//     holding buyer contact data and the ordered line items
//   - OrderItem: a single product line with its owning seller and optional
//     courier assignments
//   - ItemStatus: a state machine tracking each line item's lifecycle
//     independently of the order snapshot
//
// Key business rules:
//   - Every item belongs to exactly one seller and zero or more couriers
//   - Product identifiers are unique within an order
//   - Item statuses move only along the allowed edges of the lifecycle graph;
//     skipping a stage (e.g. pending directly to shipped) is never permitted
//   - The snapshot itself is never mutated by the workflow engine
//
// The package follows Domain-Driven Design principles, providing rich domain
// behavior, encapsulation, and validation to ensure business rules are enforced.
package order
