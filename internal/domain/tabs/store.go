// Package tabs keeps the per-node tab list and active selection.
//
// A Store is a cache of one node's canonical tabs. Local mutations are
// visible at once and written back through the graph facade; Reconcile pulls
// canonical changes made elsewhere. A Store is not safe for concurrent use and
// must be driven from the canvas event loop.
package tabs

import (
	"fmt"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"go.uber.org/zap"

	"github.com/zhangjie25/VideoBoard-Develop/internal/domain/graph"
	"github.com/zhangjie25/VideoBoard-Develop/internal/domain/pending"
	"github.com/zhangjie25/VideoBoard-Develop/internal/shared/types"
)

// Animation is the cosmetic expand/collapse class shown on the card
type Animation string

const (
	AnimationNone     Animation = ""
	AnimationExpand   Animation = "card-expand"
	AnimationCollapse Animation = "card-collapse"
)

// Pending-write fields used by the store
const (
	FieldTabs      = "tabs"
	FieldExpand    = "expand"
	FieldAnimation = "animation"
)

// IDSource mints identifiers
type IDSource interface {
	NewTabID() string
	NewNodeID() string
}

// Options tune the store's timing
type Options struct {
	PersistDelay      time.Duration
	AnimationDuration time.Duration
}

// DefaultOptions returns the standard timings
func DefaultOptions() Options {
	return Options{
		PersistDelay:      100 * time.Millisecond,
		AnimationDuration: 500 * time.Millisecond,
	}
}

// Store owns one node's local tab state
type Store struct {
	nodeID string
	facade *graph.Facade
	sched  *pending.Scheduler
	ids    IDSource
	opts   Options
	logger *zap.Logger

	tabs      []types.Tab
	activeID  string
	animation Animation
	expanded  bool

	// last canonical values observed by Reconcile
	seenTabs   []types.Tab
	seenActive string

	onChange func()
}

// NewStore creates a store seeded from the canonical node
func NewStore(node types.Node, facade *graph.Facade, sched *pending.Scheduler, ids IDSource, opts Options, logger *zap.Logger) *Store {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Store{
		nodeID:     node.ID,
		facade:     facade,
		sched:      sched,
		ids:        ids,
		opts:       opts,
		logger:     logger.With(zap.String("node_id", node.ID)),
		tabs:       types.CloneTabs(node.Data.Tabs),
		activeID:   node.Data.ActiveTabID,
		expanded:   node.Data.IsExpanded,
		seenTabs:   types.CloneTabs(node.Data.Tabs),
		seenActive: node.Data.ActiveTabID,
	}
	s.validateActive("")
	return s
}

// OnChange registers a callback for local changes that produce no commit,
// such as animation resets and debounced reorders.
func (s *Store) OnChange(fn func()) {
	s.onChange = fn
}

// NodeID returns the owning node's ID
func (s *Store) NodeID() string { return s.nodeID }

// Tabs returns a copy of the local tab list
func (s *Store) Tabs() []types.Tab { return types.CloneTabs(s.tabs) }

// Len returns the number of local tabs
func (s *Store) Len() int { return len(s.tabs) }

// ActiveTabID returns the selected tab, or "" when none
func (s *Store) ActiveTabID() string { return s.activeID }

// Animation returns the current cosmetic class
func (s *Store) Animation() Animation { return s.animation }

// IsExpanded returns the local expand intent
func (s *Store) IsExpanded() bool { return s.expanded }

// ContentMounted reports whether the card body should be rendered.
// A collapsing card stays mounted until its animation finishes.
func (s *Store) ContentMounted() bool {
	return s.expanded || s.animation == AnimationCollapse
}

// IndexOf returns the local position of a tab, or -1
func (s *Store) IndexOf(tabID string) int {
	return types.TabIndex(s.tabs, tabID)
}

// SelectTab makes a tab active and commits the selection immediately
func (s *Store) SelectTab(tabID string) bool {
	if s.IndexOf(tabID) < 0 {
		return false
	}
	s.activeID = tabID
	s.facade.UpdateNode(s.nodeID, graph.Patch{ActiveTabID: &tabID})
	return true
}

// SetTabs replaces the local tab list and schedules persistence
func (s *Store) SetTabs(tabs []types.Tab) {
	prev := s.activeID
	s.tabs = types.CloneTabs(tabs)
	s.validateActive(prev)
	s.schedulePersist()
}

// Move relocates the tab at index from to index to and schedules persistence
func (s *Store) Move(from, to int) bool {
	if from < 0 || from >= len(s.tabs) || to < 0 || to >= len(s.tabs) || from == to {
		return false
	}
	tab := s.tabs[from]
	s.tabs = append(s.tabs[:from], s.tabs[from+1:]...)
	s.tabs = append(s.tabs[:to], append([]types.Tab{tab}, s.tabs[to:]...)...)
	s.schedulePersist()
	return true
}

// MoveTab relocates a tab by ID
func (s *Store) MoveTab(tabID string, to int) bool {
	return s.Move(s.IndexOf(tabID), to)
}

// AddNewTab appends an empty tab titled by its position, selects it and
// commits at once.
func (s *Store) AddNewTab() types.Tab {
	s.sched.Cancel(s.key(FieldTabs))

	tab := types.Tab{
		ID:    s.ids.NewTabID(),
		Title: fmt.Sprintf("Tab %d", len(s.tabs)+1),
	}
	s.tabs = append(s.tabs, tab)
	s.activeID = tab.ID
	s.commitTabs()

	s.logger.Debug("Tab added", zap.String("tab_id", tab.ID))
	return tab.Clone()
}

// Adopt appends a tab moved in from elsewhere and selects it, without
// committing. The caller commits the returned list together with the
// source-side removal.
func (s *Store) Adopt(tab types.Tab) []types.Tab {
	s.sched.Cancel(s.key(FieldTabs))
	s.tabs = append(s.tabs, tab.Clone())
	s.activeID = tab.ID
	return s.Tabs()
}

// ToggleExpand flips the expand intent. Collapsing keeps the body mounted and
// commits after the animation; expanding commits at once. Each toggle
// supersedes the previous pending one.
func (s *Store) ToggleExpand() bool {
	s.sched.Cancel(s.key(FieldExpand))
	s.sched.Cancel(s.key(FieldAnimation))

	if s.expanded {
		s.expanded = false
		s.animation = AnimationCollapse
		s.sched.Schedule(s.key(FieldExpand), s.opts.AnimationDuration, func() {
			s.animation = AnimationNone
			collapsed := false
			s.facade.UpdateNode(s.nodeID, graph.Patch{IsExpanded: &collapsed})
			s.changed()
		})
		return false
	}

	s.expanded = true
	s.animation = AnimationExpand
	expanded := true
	s.facade.UpdateNode(s.nodeID, graph.Patch{IsExpanded: &expanded})
	s.sched.Schedule(s.key(FieldAnimation), s.opts.AnimationDuration, func() {
		s.animation = AnimationNone
		s.changed()
	})
	return true
}

// Flush commits a pending tab persistence immediately
func (s *Store) Flush() bool {
	return s.sched.Flush(s.key(FieldTabs))
}

// Close drops every pending write of the store
func (s *Store) Close() {
	for _, f := range []string{FieldTabs, FieldExpand, FieldAnimation} {
		s.sched.Cancel(s.key(f))
	}
}

// Reconcile pulls the canonical node into the local cache. It acts only when
// the canonical tabs or active tab moved since the last observation, so
// unrelated commits never clobber pending local edits. Returns true when the
// local state changed.
func (s *Store) Reconcile(node types.Node) bool {
	if !s.sched.Pending(s.key(FieldExpand)) {
		s.expanded = node.Data.IsExpanded
	}

	data := node.Data
	if equalTabs(data.Tabs, s.seenTabs) && data.ActiveTabID == s.seenActive {
		return false
	}
	s.seenTabs = types.CloneTabs(data.Tabs)
	s.seenActive = data.ActiveTabID

	changed := false
	if !equalTabs(data.Tabs, s.tabs) {
		s.sched.Cancel(s.key(FieldTabs))
		s.tabs = types.CloneTabs(data.Tabs)
		changed = true
	}

	prev := s.activeID
	s.activeID = data.ActiveTabID
	s.validateActive(prev)
	if s.activeID != prev {
		changed = true
	}

	if changed {
		s.logger.Debug("Reconciled with canonical node",
			zap.Int("tabs", len(s.tabs)),
			zap.String("active_tab", s.activeID))
	}
	return changed
}

// validateActive keeps activeID pointing at a local tab, falling back to
// prev and then to the first tab.
func (s *Store) validateActive(prev string) {
	if s.IndexOf(s.activeID) >= 0 {
		return
	}
	switch {
	case prev != "" && s.IndexOf(prev) >= 0:
		s.activeID = prev
	case len(s.tabs) > 0:
		s.activeID = s.tabs[0].ID
	default:
		s.activeID = ""
	}
}

func (s *Store) schedulePersist() {
	s.sched.Schedule(s.key(FieldTabs), s.opts.PersistDelay, s.commitTabs)
	s.changed()
}

// commitTabs writes the local list and selection. An empty list is never
// persisted; emptying a node is the job of transfer and spawn.
func (s *Store) commitTabs() {
	if len(s.tabs) == 0 {
		return
	}
	active := s.activeID
	s.facade.UpdateNode(s.nodeID, graph.Patch{Tabs: s.Tabs(), ActiveTabID: &active})
}

func (s *Store) changed() {
	if s.onChange != nil {
		s.onChange()
	}
}

func (s *Store) key(field string) pending.Key {
	return pending.Key{Scope: s.nodeID, Field: field}
}

func equalTabs(a, b []types.Tab) bool {
	return cmp.Equal(a, b, cmpopts.EquateEmpty())
}
