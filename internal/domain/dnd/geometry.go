package dnd

import "github.com/zhangjie25/VideoBoard-Develop/internal/shared/types"

// ElementKind names what an ElementRef points at
type ElementKind string

const (
	ElementCanvas ElementKind = "canvas"
	ElementNode   ElementKind = "node"
	ElementTab    ElementKind = "tab"
)

// ElementRef addresses a rendered element
type ElementRef struct {
	Kind   ElementKind
	NodeID string
	TabID  string
}

// CanvasRef addresses the canvas viewport element
func CanvasRef() ElementRef { return ElementRef{Kind: ElementCanvas} }

// NodeRef addresses a node's card element
func NodeRef(nodeID string) ElementRef { return ElementRef{Kind: ElementNode, NodeID: nodeID} }

// TabRef addresses a tab handle inside a node
func TabRef(nodeID, tabID string) ElementRef {
	return ElementRef{Kind: ElementTab, NodeID: nodeID, TabID: tabID}
}

// HitTester returns the screen bounds of rendered elements.
// The second result is false when the element is not rendered.
type HitTester interface {
	BoundsOf(ref ElementRef) (types.Rect, bool)
}

// CoordinateMapper translates screen coordinates into canvas coordinates
type CoordinateMapper interface {
	ScreenToCanvas(p types.Point) types.Point
}

// Payload is the drag metadata carried by a drop event
type Payload struct {
	TabID        string `json:"tabId" validate:"required"`
	SourceNodeID string `json:"sourceNodeId" validate:"required"`
}

// Valid reports whether both fields are present
func (p *Payload) Valid() bool {
	return p != nil && p.TabID != "" && p.SourceNodeID != ""
}

// Event is one pointer event of a drag gesture, in screen coordinates.
// Cancelled is set when the platform aborted the gesture.
type Event struct {
	Pointer   types.Point
	Payload   *Payload
	Cancelled bool
}
