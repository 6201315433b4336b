package dnd

import "sync"

// Phase is the stage of the current drag session
type Phase string

const (
	PhaseIdle       Phase = "idle"
	PhaseDragging   Phase = "dragging"
	PhaseReordering Phase = "reordering"
	PhaseHovering   Phase = "hovering_foreign_node"
)

// Outcome is how a drag session ended
type Outcome string

const (
	OutcomeNone        Outcome = ""
	OutcomeTransferred Outcome = "transferred"
	OutcomeSpawned     Outcome = "spawned"
	OutcomeCancelled   Outcome = "cancelled"
)

// State is a read-only view of the drag context
type State struct {
	IsDraggingTab bool    `json:"isDraggingTab"`
	SourceNodeID  string  `json:"sourceNodeId,omitempty"`
	TabID         string  `json:"tabId,omitempty"`
	Phase         Phase   `json:"phase"`
	LastOutcome   Outcome `json:"lastOutcome,omitempty"`
}

// Context is the one drag session shared by every node controller.
// Begin publishes a drag, End clears it. A drop clears it as well and leaves a
// marker that the source's drag end consumes.
type Context struct {
	mu          sync.RWMutex
	state       State
	dropped     string  // tab ID settled by the last drop
	dropOutcome Outcome // how that drop settled it
}

// NewContext creates an idle drag context
func NewContext() *Context {
	return &Context{state: State{Phase: PhaseIdle}}
}

// State returns a snapshot of the context
func (c *Context) State() State {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.state
}

// Active reports whether a drag is in progress
func (c *Context) Active() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.state.IsDraggingTab
}

// Begin publishes a new drag of tabID out of sourceNodeID
func (c *Context) Begin(sourceNodeID, tabID string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.state = State{
		IsDraggingTab: true,
		SourceNodeID:  sourceNodeID,
		TabID:         tabID,
		Phase:         PhaseDragging,
	}
	c.dropped = ""
	c.dropOutcome = OutcomeNone
}

// SetPhase moves an active drag between its intermediate phases
func (c *Context) SetPhase(p Phase) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state.IsDraggingTab {
		c.state.Phase = p
	}
}

// MarkDropped records that a drop settled the drag of tabID with outcome and
// clears the drag. The source's drag end reads the outcome via ConsumeDrop.
func (c *Context) MarkDropped(tabID string, outcome Outcome) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.dropped = tabID
	c.dropOutcome = outcome
	c.state = State{Phase: PhaseIdle, LastOutcome: outcome}
}

// ConsumeDrop returns how a drop settled tabID since the last Begin, and
// forgets the marker.
func (c *Context) ConsumeDrop(tabID string) (Outcome, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if tabID == "" || c.dropped != tabID {
		return OutcomeNone, false
	}
	outcome := c.dropOutcome
	c.dropped = ""
	c.dropOutcome = OutcomeNone
	return outcome, true
}

// End clears the drag unconditionally
func (c *Context) End(outcome Outcome) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.state = State{Phase: PhaseIdle, LastOutcome: outcome}
	c.dropped = ""
	c.dropOutcome = OutcomeNone
}
