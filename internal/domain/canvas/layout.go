package canvas

import (
	"github.com/zhangjie25/VideoBoard-Develop/internal/domain/dnd"
	"github.com/zhangjie25/VideoBoard-Develop/internal/shared/types"
)

// Layout is the rendered geometry reported by the client, in screen pixels
type Layout struct {
	Canvas   types.Rect                       `json:"canvas"`
	Viewport types.Viewport                   `json:"viewport"`
	Nodes    map[string]types.Rect            `json:"nodes,omitempty"`
	Tabs     map[string]map[string]types.Rect `json:"tabs,omitempty"`
}

// BoundsOf implements dnd.HitTester
func (l *Layout) BoundsOf(ref dnd.ElementRef) (types.Rect, bool) {
	switch ref.Kind {
	case dnd.ElementCanvas:
		return l.Canvas, l.Canvas != (types.Rect{})
	case dnd.ElementNode:
		r, ok := l.Nodes[ref.NodeID]
		return r, ok
	case dnd.ElementTab:
		r, ok := l.Tabs[ref.NodeID][ref.TabID]
		return r, ok
	}
	return types.Rect{}, false
}

// ScreenToCanvas implements dnd.CoordinateMapper by undoing the canvas
// offset, the viewport pan and the zoom.
func (l *Layout) ScreenToCanvas(p types.Point) types.Point {
	zoom := l.Viewport.Zoom
	if zoom <= 0 {
		zoom = 1
	}
	return types.Point{
		X: (p.X - l.Canvas.Left - l.Viewport.X) / zoom,
		Y: (p.Y - l.Canvas.Top - l.Viewport.Y) / zoom,
	}
}

// forget drops the geometry of a removed node
func (l *Layout) forget(nodeID string) {
	delete(l.Nodes, nodeID)
	delete(l.Tabs, nodeID)
}
