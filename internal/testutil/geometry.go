package testutil

import (
	"github.com/zhangjie25/VideoBoard-Develop/internal/domain/dnd"
	"github.com/zhangjie25/VideoBoard-Develop/internal/shared/types"
)

// FakeLayout is a HitTester and CoordinateMapper backed by fixed rectangles.
// Screen and canvas coordinates differ by Offset.
type FakeLayout struct {
	Rects  map[dnd.ElementRef]types.Rect
	Offset types.Point
}

// NewFakeLayout creates an empty layout with identity coordinate mapping
func NewFakeLayout() *FakeLayout {
	return &FakeLayout{Rects: make(map[dnd.ElementRef]types.Rect)}
}

// Node sets a node's card bounds
func (l *FakeLayout) Node(nodeID string, r types.Rect) *FakeLayout {
	l.Rects[dnd.NodeRef(nodeID)] = r
	return l
}

// Tab sets a tab handle's bounds
func (l *FakeLayout) Tab(nodeID, tabID string, r types.Rect) *FakeLayout {
	l.Rects[dnd.TabRef(nodeID, tabID)] = r
	return l
}

// TabStrip lays tabs out left to right from left, each width wide
func (l *FakeLayout) TabStrip(nodeID string, left, width float64, tabIDs ...string) *FakeLayout {
	for i, id := range tabIDs {
		x := left + float64(i)*width
		l.Tab(nodeID, id, types.Rect{Left: x, Top: 0, Right: x + width, Bottom: 30})
	}
	return l
}

// BoundsOf implements dnd.HitTester
func (l *FakeLayout) BoundsOf(ref dnd.ElementRef) (types.Rect, bool) {
	r, ok := l.Rects[ref]
	return r, ok
}

// ScreenToCanvas implements dnd.CoordinateMapper
func (l *FakeLayout) ScreenToCanvas(p types.Point) types.Point {
	return types.Point{X: p.X - l.Offset.X, Y: p.Y - l.Offset.Y}
}
