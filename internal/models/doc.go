// Package models defines the core domain models for TriPlan.
//
// # Aggregates
//
// A Project is the root aggregate. Everything else belongs to exactly one
// project through its ProjectID:
//   - ItineraryItem: a proposed activity, voted on by project members
//   - Bill: a recorded expense, split evenly across the party
//   - ChatMessage: an append-only project chat line
//
// Users are referenced by UserRef ({id, email}) wherever the stored record
// needs to display who did something (added_by, votes, collaborators).
//
// # Design Principles
//
// 1. **No ambient state**: the acting user is always passed explicitly
// 2. **Avoid circular references**: Use ID strings instead of pointers for relationships
// 3. **One canonical shape**: Bill items are normalized to []BillItem at the boundary
package models
