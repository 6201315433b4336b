package content

import (
	"time"

	"go.uber.org/zap"

	"github.com/zhangjie25/VideoBoard-Develop/internal/domain/graph"
	"github.com/zhangjie25/VideoBoard-Develop/internal/domain/pending"
	"github.com/zhangjie25/VideoBoard-Develop/internal/shared/types"
)

// Options tune the editor's timing
type Options struct {
	TextDelay time.Duration
}

// Editor is the content editor of one node. It edits whichever tab it is
// mounted on.
type Editor struct {
	nodeID string
	facade *graph.Facade
	sched  *pending.Scheduler
	opts   Options
	logger *zap.Logger

	text  *TextBuffer
	media *MediaBuffer
}

// NewEditor creates an unmounted editor for a node
func NewEditor(nodeID string, facade *graph.Facade, sched *pending.Scheduler, opts Options, logger *zap.Logger) *Editor {
	if opts.TextDelay <= 0 {
		opts.TextDelay = DefaultTextDelay
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Editor{
		nodeID: nodeID,
		facade: facade,
		sched:  sched,
		opts:   opts,
		logger: logger.With(zap.String("node_id", nodeID)),
	}
}

// TabID returns the mounted tab, or ""
func (e *Editor) TabID() string {
	if e.text == nil {
		return ""
	}
	return e.text.tabID
}

// Mount binds the editor to a tab. Buffers are seeded from the canonical tab
// on first mount and on every tab change; pending text for the previous tab
// is committed first. Returns false when the tab does not exist.
func (e *Editor) Mount(tabID string) bool {
	if e.TabID() == tabID {
		return true
	}

	node, ok := e.facade.GetNode(e.nodeID)
	if !ok {
		return false
	}
	idx := types.TabIndex(node.Data.Tabs, tabID)
	if idx < 0 {
		return false
	}

	e.Flush()
	tab := node.Data.Tabs[idx]
	e.text = newTextBuffer(e.nodeID, tab, e.facade, e.sched, e.opts.TextDelay, e.logger)
	e.media = newMediaBuffer(e.nodeID, tab, e.facade, e.logger)
	return true
}

// Text returns the local text of the mounted tab
func (e *Editor) Text() string {
	if e.text == nil {
		return ""
	}
	return e.text.Value()
}

// Media returns the local media of the mounted tab
func (e *Editor) Media() *types.Multimedia {
	if e.media == nil {
		return nil
	}
	return e.media.Value()
}

// EditText updates the text of the mounted tab; the commit is debounced
func (e *Editor) EditText(text string) bool {
	if e.text == nil {
		return false
	}
	e.text.Set(text)
	return true
}

// SelectMedia stores a media selection for the mounted tab and commits it
func (e *Editor) SelectMedia(p types.MediaPayload) bool {
	if e.media == nil {
		return false
	}
	return e.media.Select(p)
}

// Flush commits pending text now
func (e *Editor) Flush() bool {
	if e.text == nil {
		return false
	}
	return e.text.Flush()
}

// Close drops pending text without committing
func (e *Editor) Close() {
	if e.text != nil {
		e.sched.Cancel(e.text.key())
	}
}
