// Package kernel provides core domain primitives for the fulfillment workflow.
// It implements fundamental building blocks following Domain-Driven Design principles
// that are used throughout the domain model.
//
// The package includes:
//   - UUID: A value object for unique identifiers with validation and comparison capabilities
//   - ActorID: A value object identifying a marketplace participant (buyer, seller, courier, admin)
//   - ProductID: A value object identifying a product line within an order
//
// These primitives enforce domain invariants and validation rules, ensuring that
// domain objects are always in a valid state. They are designed to be immutable
// and thread-safe, making them suitable for concurrent use.
package kernel
