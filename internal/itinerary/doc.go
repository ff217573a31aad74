// Package itinerary holds the pure itinerary logic: ordering and grouping
// items into days, and the vote/status transitions of a single item.
//
// Nothing here touches storage. Callers fetch a snapshot, transform it and
// persist the result; every function is safe to call concurrently and to
// re-run on a newer snapshot.
package itinerary
