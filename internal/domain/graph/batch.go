package graph

import "github.com/zhangjie25/VideoBoard-Develop/internal/shared/types"

type update struct {
	id    string
	patch Patch
}

// Batch collects mutations that must become visible together
type Batch struct {
	adds    []types.Node
	updates []update
	removes map[string]bool
}

// NewBatch creates an empty batch
func NewBatch() *Batch {
	return &Batch{removes: make(map[string]bool)}
}

// Add queues a node insertion
func (b *Batch) Add(node types.Node) *Batch {
	b.adds = append(b.adds, node.Clone())
	return b
}

// Update queues a patch. Patches for the same node apply in queue order.
func (b *Batch) Update(id string, patch Patch) *Batch {
	if !patch.IsZero() {
		b.updates = append(b.updates, update{id: id, patch: patch})
	}
	return b
}

// Remove queues a node deletion
func (b *Batch) Remove(id string) *Batch {
	b.removes[id] = true
	return b
}

// Len returns the number of queued operations
func (b *Batch) Len() int {
	return len(b.adds) + len(b.updates) + len(b.removes)
}

// op labels the batch for metrics
func (b *Batch) op() string {
	switch {
	case len(b.adds) > 0:
		return "add"
	case len(b.removes) > 0 && len(b.updates) == 0:
		return "remove"
	case len(b.updates) > 1, len(b.removes) > 0:
		return "batch"
	default:
		return "update"
	}
}
