// Package types provides the canvas data model shared by every component.
//
// Core Types:
//   - Node: One card on the canvas with its kind, position and data
//   - NodeData: Label, expand flag, tabs and the active tab
//   - Tab: Title and content of one tab
//   - Content: Optional text and multimedia of a tab
//   - Multimedia: Attachment, image and drawing descriptors
//
// Geometry:
//   - Point, Rect: Screen-space pointer positions and element bounds
//   - Viewport: Canvas pan and zoom
//
// Values are plain data. Clone methods deep-copy everything reachable
// through pointers and slices so stores can hand out snapshots.
package types
