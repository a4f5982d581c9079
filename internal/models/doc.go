// Package models defines the core domain models for the dollar tracker.
//
// # Models
//
//   - User: a registered account; owns the bills it records
//   - Bill: a single tracked currency note, keyed by its serial number
//   - SearchCriteria: sparse filter set for querying the shared collection
//   - BillPatch: partial update applied to a bill by its owner
//
// # Design Principles
//
//  1. **Natural keys where they exist**: bills are addressed by serial number,
//     which is globally unique across the whole collection.
//  2. **Optional means pointer**: printing metadata that may be absent is a
//     pointer field, and absent fields are omitted on the wire.
//  3. **Avoid circular references**: bills carry the owner's numeric ID (and a
//     denormalized username for display), never a *User.
package models
