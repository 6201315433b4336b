// Package ws streams the canvas over WebSocket.
//
// Each connection receives a snapshot after every change of the workspace and
// drives the drag session with the same events a browser fires on the tab
// strip and on node bodies.
//
// Message Types (Client → Server):
//   - layout: Rendered geometry (canvas rect, viewport, node and tab rects)
//   - drag_start: Begin dragging tabId out of nodeId
//   - drag_over, drag_enter, drag_leave, drop: Pointer events over nodeId
//   - drag_end: Drag finished; an empty nodeId addresses the source
//   - ping: Keep-alive ping
//
// Message Types (Server → Client):
//   - system: Welcome with the connection id
//   - snapshot: Full render state
//   - drag_started: Result of drag_start with the drag context
//   - ack: Whether a drag event was handled
//   - pong: Keep-alive reply
//   - error: Malformed or invalid message
//
// Drag payloads failing validation are dropped, so the event is answered as
// not handled rather than as an error.
//
// Example Usage:
//
//	handler := ws.NewHandler(workspace, metrics, logger)
//	router.GET("/stream", handler.HandleConnection)
package ws
