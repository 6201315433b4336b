// Package dnd implements the tab drag-and-drop session engine.
//
// Every content card has a Controller. The controllers share one Context that
// describes the drag in flight, so a node can react to a drag it did not start.
// Geometry comes from a HitTester, never from the renderer directly.
//
// Session flow:
//
//	Idle -> Dragging -> {Reordering | HoveringForeignNode} -> {Transferred | Spawned | Cancelled} -> Idle
//
// Drag paths never fail loudly. A drop that references a vanished node or tab
// is a no-op, and a drop without a complete payload is reported as unhandled.
package dnd

import (
	"go.uber.org/zap"

	"github.com/zhangjie25/VideoBoard-Develop/internal/domain/graph"
	"github.com/zhangjie25/VideoBoard-Develop/internal/domain/tabs"
	"github.com/zhangjie25/VideoBoard-Develop/internal/shared/types"
)

// DefaultSpawnMargin is how far outside its source card a tab must be released
// to spawn a new node.
const DefaultSpawnMargin = 50.0

// PendingFlusher commits a node's debounced writes before its canonical state
// is read.
type PendingFlusher interface {
	FlushPending(nodeID string)
}

// Recorder receives session outcomes
type Recorder interface {
	RecordDragOutcome(outcome string)
}

// Deps are the collaborators of a Controller
type Deps struct {
	Context     *Context
	Facade      *graph.Facade
	Hits        HitTester
	Coords      CoordinateMapper
	IDs         tabs.IDSource
	Flusher     PendingFlusher
	Metrics     Recorder
	Logger      *zap.Logger
	SpawnMargin float64
}

// Controller runs the drag state machine for one node
type Controller struct {
	nodeID string
	tabs   *tabs.Store
	deps   Deps
	logger *zap.Logger

	dragging    string // tab this node is dragging out, "" when not the source
	dropTarget  bool
	lastOutcome Outcome
}

// NewController creates the controller of the node owning store
func NewController(store *tabs.Store, deps Deps) *Controller {
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}
	if deps.SpawnMargin <= 0 {
		deps.SpawnMargin = DefaultSpawnMargin
	}
	return &Controller{
		nodeID: store.NodeID(),
		tabs:   store,
		deps:   deps,
		logger: deps.Logger.With(zap.String("node_id", store.NodeID())),
	}
}

// NodeID returns the controlled node
func (c *Controller) NodeID() string { return c.nodeID }

// DropTarget reports whether the node should show the drop highlight
func (c *Controller) DropTarget() bool {
	if !c.dropTarget {
		return false
	}
	st := c.deps.Context.State()
	return st.IsDraggingTab && st.SourceNodeID != c.nodeID
}

// Dragging returns the tab this node is dragging out, or ""
func (c *Controller) Dragging() string { return c.dragging }

// LastOutcome returns how the last drag started here ended
func (c *Controller) LastOutcome() Outcome { return c.lastOutcome }

// Phase returns the session phase while this node is the drag source
func (c *Controller) Phase() Phase {
	if c.dragging == "" {
		return PhaseIdle
	}
	return c.deps.Context.State().Phase
}

// DragStart begins dragging one of this node's tabs
func (c *Controller) DragStart(tabID string) bool {
	if c.tabs.IndexOf(tabID) < 0 {
		return false
	}
	if c.deps.Flusher != nil {
		c.deps.Flusher.FlushPending(c.nodeID)
	}

	c.dragging = tabID
	c.lastOutcome = OutcomeNone
	c.deps.Context.Begin(c.nodeID, tabID)

	c.logger.Debug("Tab drag started", zap.String("tab_id", tabID))
	return true
}

// DragOver handles pointer movement over this node. Over the source node it
// reorders the tab strip; over any other node it marks a drop target.
func (c *Controller) DragOver(ev Event) bool {
	st := c.deps.Context.State()
	if !st.IsDraggingTab {
		return false
	}
	if st.SourceNodeID != c.nodeID {
		return c.DragEnter(ev)
	}
	if c.dragging == "" {
		return false
	}

	c.deps.Context.SetPhase(PhaseReordering)
	c.reorder(ev.Pointer.X)
	return true
}

// reorder moves the dragged tab into the slot of the first tab whose bounds
// contain x. Ties on shared edges go to the leftmost tab.
func (c *Controller) reorder(x float64) {
	for i, tab := range c.tabs.Tabs() {
		rect, ok := c.deps.Hits.BoundsOf(TabRef(c.nodeID, tab.ID))
		if !ok || !rect.ContainsX(x) {
			continue
		}
		if tab.ID != c.dragging {
			c.tabs.MoveTab(c.dragging, i)
		}
		return
	}
}

// DragEnter marks this node as a drop target when a foreign tab enters it
func (c *Controller) DragEnter(ev Event) bool {
	st := c.deps.Context.State()
	if !st.IsDraggingTab || st.SourceNodeID == c.nodeID {
		return false
	}
	if _, ok := c.deps.Facade.GetNode(st.SourceNodeID); !ok {
		return false
	}

	c.dropTarget = true
	c.deps.Context.SetPhase(PhaseHovering)
	return true
}

// DragLeave clears the drop-target marker
func (c *Controller) DragLeave(ev Event) bool {
	if !c.dropTarget {
		return false
	}
	c.dropTarget = false
	if st := c.deps.Context.State(); st.Phase == PhaseHovering {
		c.deps.Context.SetPhase(PhaseDragging)
	}
	return true
}

// Drop transfers the dragged tab into this node. The destination gains a copy
// with a fresh ID and makes it active; the source loses the tab and is deleted
// when empty. Both sides land in one commit.
//
// Only a drop matching the live drag is considered. Once recognized, every
// path settles the drag context, including self drops and stale sources.
func (c *Controller) Drop(ev Event) bool {
	c.dropTarget = false

	p := ev.Payload
	if !p.Valid() {
		return false
	}
	st := c.deps.Context.State()
	if !st.IsDraggingTab || st.SourceNodeID != p.SourceNodeID || st.TabID != p.TabID {
		c.logger.Debug("Ignoring drop outside the live drag",
			zap.String("source_node_id", p.SourceNodeID),
			zap.String("tab_id", p.TabID),
			zap.Bool("dragging", st.IsDraggingTab))
		return false
	}
	if p.SourceNodeID == c.nodeID {
		// dropping back onto the source is at most a reorder
		c.deps.Context.MarkDropped(p.TabID, OutcomeCancelled)
		return true
	}

	if c.deps.Flusher != nil {
		c.deps.Flusher.FlushPending(p.SourceNodeID)
		c.deps.Flusher.FlushPending(c.nodeID)
	}

	source, ok := c.deps.Facade.GetNode(p.SourceNodeID)
	if !ok {
		c.logger.Debug("Ignoring drop from missing node", zap.String("source_node_id", p.SourceNodeID))
		c.deps.Context.MarkDropped(p.TabID, OutcomeCancelled)
		return true
	}
	idx := types.TabIndex(source.Data.Tabs, p.TabID)
	if idx < 0 {
		c.logger.Debug("Ignoring drop of missing tab",
			zap.String("source_node_id", p.SourceNodeID),
			zap.String("tab_id", p.TabID))
		c.deps.Context.MarkDropped(p.TabID, OutcomeCancelled)
		return true
	}

	moved := source.Data.Tabs[idx].Clone()
	moved.ID = c.deps.IDs.NewTabID()
	destTabs := c.tabs.Adopt(moved)

	batch := graph.NewBatch().Update(c.nodeID, graph.Patch{Tabs: destTabs, ActiveTabID: &moved.ID})
	removeTab(batch, source, idx, true)
	c.deps.Facade.Commit(batch)

	c.deps.Context.MarkDropped(p.TabID, OutcomeTransferred)
	c.record(OutcomeTransferred)

	c.logger.Info("Tab transferred",
		zap.String("source_node_id", p.SourceNodeID),
		zap.String("tab_id", p.TabID),
		zap.String("new_tab_id", moved.ID))
	return true
}

// DragEnd finishes a drag started on this node. Unless a drop already settled
// the drag, a release far enough outside the source card and clear of every
// other card spawns a new node. A platform-cancelled gesture takes the same
// path.
func (c *Controller) DragEnd(ev Event) bool {
	tabID := c.dragging
	if tabID == "" {
		return false
	}
	c.dragging = ""
	c.dropTarget = false

	outcome := c.finish(tabID, ev)
	c.lastOutcome = outcome
	c.deps.Context.End(outcome)
	if outcome != OutcomeTransferred {
		c.record(outcome)
	}

	c.logger.Debug("Tab drag ended",
		zap.String("tab_id", tabID),
		zap.String("outcome", string(outcome)),
		zap.Bool("native_cancel", ev.Cancelled))
	return true
}

func (c *Controller) finish(tabID string, ev Event) Outcome {
	if outcome, ok := c.deps.Context.ConsumeDrop(tabID); ok {
		return outcome
	}
	if !c.shouldSpawn(ev.Pointer) {
		return OutcomeCancelled
	}

	if c.deps.Flusher != nil {
		c.deps.Flusher.FlushPending(c.nodeID)
	}
	source, ok := c.deps.Facade.GetNode(c.nodeID)
	if !ok {
		return OutcomeCancelled
	}
	idx := types.TabIndex(source.Data.Tabs, tabID)
	if idx < 0 {
		return OutcomeCancelled
	}

	tab := source.Data.Tabs[idx].Clone()
	tab.ID = c.deps.IDs.NewTabID()
	pos := c.deps.Coords.ScreenToCanvas(ev.Pointer)

	node := types.Node{
		ID:       c.deps.IDs.NewNodeID(),
		Kind:     source.Kind,
		Position: types.Position{X: pos.X, Y: pos.Y},
		Data: types.NodeData{
			Label:       tab.Title,
			IsExpanded:  true,
			ActiveTabID: tab.ID,
			Tabs:        []types.Tab{tab},
		},
	}

	batch := graph.NewBatch().Add(node)
	removeTab(batch, source, idx, false)
	c.deps.Facade.Commit(batch)

	c.logger.Info("Tab spawned into new node",
		zap.String("tab_id", tabID),
		zap.String("new_node_id", node.ID),
		zap.Float64("x", pos.X),
		zap.Float64("y", pos.Y))
	return OutcomeSpawned
}

// shouldSpawn checks the release point against the source card plus margin
// and against every other rendered card.
func (c *Controller) shouldSpawn(p types.Point) bool {
	rect, ok := c.deps.Hits.BoundsOf(NodeRef(c.nodeID))
	if !ok {
		return false
	}
	if rect.Expand(c.deps.SpawnMargin).Contains(p) {
		return false
	}

	for _, n := range c.deps.Facade.GetAllNodes() {
		if n.ID == c.nodeID {
			continue
		}
		if r, ok := c.deps.Hits.BoundsOf(NodeRef(n.ID)); ok && r.Contains(p) {
			return false
		}
	}
	return true
}

// removeTab queues the removal of source's tab at idx. An emptied source is
// deleted. With resetActive the source's first tab becomes active; otherwise
// the selection only moves when the removed tab was the active one.
func removeTab(b *graph.Batch, source types.Node, idx int, resetActive bool) {
	removed := source.Data.Tabs[idx].ID
	remaining := make([]types.Tab, 0, len(source.Data.Tabs)-1)
	remaining = append(remaining, source.Data.Tabs[:idx]...)
	remaining = append(remaining, source.Data.Tabs[idx+1:]...)

	if len(remaining) == 0 {
		b.Remove(source.ID)
		return
	}

	active := source.Data.ActiveTabID
	if resetActive || active == removed {
		active = remaining[0].ID
	}
	b.Update(source.ID, graph.Patch{Tabs: remaining, ActiveTabID: &active})
}

func (c *Controller) record(outcome Outcome) {
	if c.deps.Metrics != nil {
		c.deps.Metrics.RecordDragOutcome(string(outcome))
	}
}
