package canvas

import (
	"github.com/zhangjie25/VideoBoard-Develop/internal/domain/dnd"
	"github.com/zhangjie25/VideoBoard-Develop/internal/domain/tabs"
	"github.com/zhangjie25/VideoBoard-Develop/internal/shared/types"
)

// NodeView is the render data of one node
type NodeView struct {
	ID             string         `json:"id"`
	Kind           types.NodeKind `json:"type"`
	Position       types.Position `json:"position"`
	Label          string         `json:"label"`
	IsExpanded     bool           `json:"isExpanded"`
	Tabs           []types.Tab    `json:"tabs,omitempty"`
	ActiveTabID    string         `json:"activeTab,omitempty"`
	Animation      tabs.Animation `json:"animation,omitempty"`
	ContentMounted bool           `json:"contentMounted"`
	DropTarget     bool           `json:"dropTarget"`
}

// Snapshot is the full render state pushed to subscribers
type Snapshot struct {
	Version uint64     `json:"version"`
	Nodes   []NodeView `json:"nodes"`
	Drag    dnd.State  `json:"drag"`
}

// view renders a node, preferring local tab state for content cards (must hold lock)
func (w *Workspace) view(n types.Node) NodeView {
	v := NodeView{
		ID:             n.ID,
		Kind:           n.Kind,
		Position:       n.Position,
		Label:          n.Data.Label,
		IsExpanded:     n.Data.IsExpanded,
		Tabs:           n.Data.Tabs,
		ActiveTabID:    n.Data.ActiveTabID,
		ContentMounted: n.Data.IsExpanded,
	}

	if b, ok := w.bundles[n.ID]; ok {
		v.IsExpanded = b.tabs.IsExpanded()
		v.Tabs = b.tabs.Tabs()
		v.ActiveTabID = b.tabs.ActiveTabID()
		v.Animation = b.tabs.Animation()
		v.ContentMounted = b.tabs.ContentMounted()
		v.DropTarget = b.ctrl.DropTarget()
	}
	return v
}

// snapshot renders the whole canvas (must hold lock)
func (w *Workspace) snapshot() Snapshot {
	nodes := w.facade.GetAllNodes()
	views := make([]NodeView, 0, len(nodes))
	for _, n := range nodes {
		views = append(views, w.view(n))
	}
	return Snapshot{
		Version: w.store.Version(),
		Nodes:   views,
		Drag:    w.drag.State(),
	}
}
