// Package content buffers tab content edits before they reach the graph.
//
// Text edits are debounced; media selections commit at once. Both buffers are
// seeded from the canonical tab when first mounted and again whenever they are
// bound to a different tab, so one tab's buffer never bleeds into another.
package content

import (
	"time"

	"github.com/google/go-cmp/cmp"
	"go.uber.org/zap"

	"github.com/zhangjie25/VideoBoard-Develop/internal/domain/graph"
	"github.com/zhangjie25/VideoBoard-Develop/internal/domain/pending"
	"github.com/zhangjie25/VideoBoard-Develop/internal/shared/types"
)

// DefaultTextDelay is the quiet period before a text edit is committed
const DefaultTextDelay = 300 * time.Millisecond

// TextBuffer holds the text being edited in one tab
type TextBuffer struct {
	nodeID    string
	tabID     string
	value     string
	committed string

	facade *graph.Facade
	sched  *pending.Scheduler
	delay  time.Duration
	logger *zap.Logger
}

func newTextBuffer(nodeID string, tab types.Tab, facade *graph.Facade, sched *pending.Scheduler, delay time.Duration, logger *zap.Logger) *TextBuffer {
	text := tab.Content.TextValue()
	return &TextBuffer{
		nodeID:    nodeID,
		tabID:     tab.ID,
		value:     text,
		committed: text,
		facade:    facade,
		sched:     sched,
		delay:     delay,
		logger:    logger,
	}
}

// Value returns the local text
func (b *TextBuffer) Value() string { return b.value }

// Set updates the local text and restarts the commit delay
func (b *TextBuffer) Set(text string) {
	b.value = text
	b.sched.Schedule(b.key(), b.delay, b.commit)
}

// Flush commits pending text now
func (b *TextBuffer) Flush() bool {
	return b.sched.Flush(b.key())
}

// Dirty reports whether the local text differs from the last commit
func (b *TextBuffer) Dirty() bool {
	return b.value != b.committed
}

func (b *TextBuffer) commit() {
	if !b.Dirty() {
		return
	}
	text := b.value
	b.facade.UpdateTab(b.nodeID, b.tabID, func(tab *types.Tab) {
		tab.Content.Text = &text
	})
	b.committed = text
	b.logger.Debug("Text committed", zap.String("tab_id", b.tabID), zap.Int("length", len(text)))
}

func (b *TextBuffer) key() pending.Key {
	return pending.Key{Scope: b.nodeID, Field: "text:" + b.tabID}
}

// MediaBuffer holds the media descriptors of one tab
type MediaBuffer struct {
	nodeID    string
	tabID     string
	value     *types.Multimedia
	committed *types.Multimedia

	facade *graph.Facade
	logger *zap.Logger
}

func newMediaBuffer(nodeID string, tab types.Tab, facade *graph.Facade, logger *zap.Logger) *MediaBuffer {
	return &MediaBuffer{
		nodeID:    nodeID,
		tabID:     tab.ID,
		value:     tab.Content.Multimedia.Clone(),
		committed: tab.Content.Multimedia.Clone(),
		facade:    facade,
		logger:    logger,
	}
}

// Value returns a copy of the local media
func (b *MediaBuffer) Value() *types.Multimedia { return b.value.Clone() }

// Select stores a media selection in its slot and commits it immediately.
// Other slots are kept. Returns false for a malformed payload.
func (b *MediaBuffer) Select(p types.MediaPayload) bool {
	next := b.value.Clone()
	if next == nil {
		next = &types.Multimedia{}
	}
	if !next.Set(p) {
		return false
	}
	b.value = next

	if cmp.Equal(b.value, b.committed) {
		return true
	}
	b.facade.UpdateTab(b.nodeID, b.tabID, func(tab *types.Tab) {
		if tab.Content.Multimedia == nil {
			tab.Content.Multimedia = &types.Multimedia{}
		}
		tab.Content.Multimedia.Set(p)
	})
	b.committed = b.value.Clone()

	b.logger.Debug("Media committed", zap.String("tab_id", b.tabID), zap.String("kind", string(p.Kind)))
	return true
}
