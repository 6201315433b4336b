package graph

import (
	"go.uber.org/zap"

	"github.com/zhangjie25/VideoBoard-Develop/internal/shared/types"
)

// Patch is a partial update of a node's data. Nil fields are left untouched;
// a non-nil Tabs replaces the whole tab list.
type Patch struct {
	Label       *string
	IsExpanded  *bool
	ActiveTabID *string
	Tabs        []types.Tab
}

// IsZero reports whether the patch changes nothing
func (p Patch) IsZero() bool {
	return p.Label == nil && p.IsExpanded == nil && p.ActiveTabID == nil && p.Tabs == nil
}

func (p Patch) apply(data *types.NodeData) {
	if p.Label != nil {
		data.Label = *p.Label
	}
	if p.IsExpanded != nil {
		data.IsExpanded = *p.IsExpanded
	}
	if p.ActiveTabID != nil {
		data.ActiveTabID = *p.ActiveTabID
	}
	if p.Tabs != nil {
		data.Tabs = types.CloneTabs(p.Tabs)
	}
}

// Recorder receives commit statistics
type Recorder interface {
	RecordCommit(op string, removed int)
}

// Facade is the only path through which the engine touches the node collection
type Facade struct {
	store   Store
	logger  *zap.Logger
	metrics Recorder
}

// NewFacade wraps a store
func NewFacade(store Store, logger *zap.Logger) *Facade {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Facade{store: store, logger: logger}
}

// WithMetrics adds commit tracking to the facade
func (f *Facade) WithMetrics(metrics Recorder) *Facade {
	f.metrics = metrics
	return f
}

// GetNode returns a snapshot of one node
func (f *Facade) GetNode(id string) (types.Node, bool) {
	return f.store.Node(id)
}

// GetAllNodes returns a snapshot of the collection at call time
func (f *Facade) GetAllNodes() []types.Node {
	return f.store.Nodes()
}

// AddNode inserts a node. A content card without tabs is void and is not added.
func (f *Facade) AddNode(node types.Node) {
	node = node.Clone()
	repairActive(&node)
	if isVoid(node) {
		f.logger.Warn("Refusing to add content card without tabs", zap.String("node_id", node.ID))
		return
	}
	f.store.AddNode(node)
	f.record("add", 0)
}

// RemoveNode deletes a node. Missing nodes are ignored.
func (f *Facade) RemoveNode(id string) {
	if _, ok := f.store.Node(id); !ok {
		return
	}
	f.Commit(NewBatch().Remove(id))
}

// UpdateNode merges a patch into one node's data. Missing nodes are ignored.
func (f *Facade) UpdateNode(id string, patch Patch) {
	f.UpdateNodes(map[string]Patch{id: patch})
}

// UpdateNodes merges several patches as one commit
func (f *Facade) UpdateNodes(patches map[string]Patch) {
	b := NewBatch()
	for id, p := range patches {
		b.Update(id, p)
	}
	f.Commit(b)
}

// UpdateTab applies mutate to a single tab of a node, leaving sibling tabs intact.
// Missing nodes or tabs are ignored.
func (f *Facade) UpdateTab(nodeID, tabID string, mutate func(*types.Tab)) {
	node, ok := f.store.Node(nodeID)
	if !ok || types.TabIndex(node.Data.Tabs, tabID) < 0 {
		return
	}

	f.store.SetNodes(func(nodes []types.Node) []types.Node {
		for i := range nodes {
			if nodes[i].ID != nodeID {
				continue
			}
			if idx := types.TabIndex(nodes[i].Data.Tabs, tabID); idx >= 0 {
				mutate(&nodes[i].Data.Tabs[idx])
			}
		}
		return f.normalize(nodes)
	})
	f.record("tab", 0)
}

// Commit applies every operation of the batch with one SetNodes call.
// Removals run first, then updates, then additions.
func (f *Facade) Commit(b *Batch) {
	if b == nil || b.Len() == 0 || !f.touchesAny(b) {
		return
	}

	var removed int
	f.store.SetNodes(func(nodes []types.Node) []types.Node {
		out := nodes[:0]
		for _, n := range nodes {
			if b.removes[n.ID] {
				continue
			}
			for _, u := range b.updates {
				if u.id == n.ID {
					u.patch.apply(&n.Data)
				}
			}
			out = append(out, n)
		}
		for _, n := range b.adds {
			out = append(out, n.Clone())
		}

		total := len(nodes) + len(b.adds)
		out = f.normalize(out)
		removed = total - len(out)
		return out
	})
	f.record(b.op(), removed)
}

// touchesAny reports whether the batch adds a node or references an existing one
func (f *Facade) touchesAny(b *Batch) bool {
	if len(b.adds) > 0 {
		return true
	}
	for id := range b.removes {
		if _, ok := f.store.Node(id); ok {
			return true
		}
	}
	for _, u := range b.updates {
		if _, ok := f.store.Node(u.id); ok {
			return true
		}
	}
	return false
}

// normalize enforces the collection invariants in place
func (f *Facade) normalize(nodes []types.Node) []types.Node {
	out := nodes[:0]
	for _, n := range nodes {
		if isVoid(n) {
			f.logger.Debug("Removing content card without tabs", zap.String("node_id", n.ID))
			continue
		}
		repairActive(&n)
		out = append(out, n)
	}
	return out
}

func (f *Facade) record(op string, removed int) {
	if f.metrics != nil {
		f.metrics.RecordCommit(op, removed)
	}
}

func isVoid(n types.Node) bool {
	return n.Kind.HasTabs() && len(n.Data.Tabs) == 0
}

func repairActive(n *types.Node) {
	d := &n.Data
	if d.ActiveTabID == "" || types.TabIndex(d.Tabs, d.ActiveTabID) >= 0 {
		return
	}
	if len(d.Tabs) > 0 {
		d.ActiveTabID = d.Tabs[0].ID
	} else {
		d.ActiveTabID = ""
	}
}
