// Package http exposes the canvas workspace over a JSON API.
//
// Workspace errors map onto status codes: missing nodes or tabs are 404,
// operations the node kind or payload does not support are 400, and a closed
// workspace is 503. Text edits answer 202 because the write is debounced.
package http
