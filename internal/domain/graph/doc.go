// Package graph owns the canonical node collection.
//
// All reads and writes of nodes go through Facade, which wraps a Store and
// enforces the collection invariants on every commit:
//   - a content card with no tabs is removed in the same commit that emptied it
//   - an active tab ID that no longer names a tab is repaired to the first tab
//
// Several mutations issued from one handler are grouped in a Batch and applied
// by a single SetNodes call, so observers never see an intermediate state.
package graph
