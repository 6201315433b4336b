package types

// Point is a 2D coordinate, in screen or canvas space depending on context
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Rect is an axis-aligned bounding rectangle in screen coordinates
type Rect struct {
	Left   float64 `json:"left"`
	Top    float64 `json:"top"`
	Right  float64 `json:"right"`
	Bottom float64 `json:"bottom"`
}

// Contains reports whether p lies inside r, edges included
func (r Rect) Contains(p Point) bool {
	return p.X >= r.Left && p.X <= r.Right && p.Y >= r.Top && p.Y <= r.Bottom
}

// ContainsX reports whether x falls within the horizontal extent of r, edges included
func (r Rect) ContainsX(x float64) bool {
	return x >= r.Left && x <= r.Right
}

// Expand grows r by margin on every side
func (r Rect) Expand(margin float64) Rect {
	return Rect{
		Left:   r.Left - margin,
		Top:    r.Top - margin,
		Right:  r.Right + margin,
		Bottom: r.Bottom + margin,
	}
}

// Viewport is the canvas pan/zoom transform reported by the renderer
type Viewport struct {
	X    float64 `json:"x"`
	Y    float64 `json:"y"`
	Zoom float64 `json:"zoom"`
}
