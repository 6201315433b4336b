// Package canvas hosts the node-graph editor session.
//
// A Workspace owns the canonical store, one tab store, drag controller and
// content editor per content card, and the geometry reported by the client.
// Every entry point and every timer callback runs under one lock, which makes
// the workspace the event loop of the editor: handlers never interleave, and a
// debounced write always sees the state left by the last handler.
//
// Subscribers receive a Snapshot after each handler that changed something.
// They are called with the lock held and must not call back into the workspace.
package canvas

import (
	"fmt"
	"slices"
	"sync"

	"go.uber.org/zap"

	"github.com/zhangjie25/VideoBoard-Develop/internal/domain/content"
	"github.com/zhangjie25/VideoBoard-Develop/internal/domain/dnd"
	"github.com/zhangjie25/VideoBoard-Develop/internal/domain/graph"
	"github.com/zhangjie25/VideoBoard-Develop/internal/domain/palette"
	"github.com/zhangjie25/VideoBoard-Develop/internal/domain/pending"
	"github.com/zhangjie25/VideoBoard-Develop/internal/domain/tabs"
	"github.com/zhangjie25/VideoBoard-Develop/internal/shared/id"
	"github.com/zhangjie25/VideoBoard-Develop/internal/shared/types"
)

// Metrics receives every event the workspace and its components report
type Metrics interface {
	graph.Recorder
	pending.Recorder
	dnd.Recorder
	SetNodesActive(n int)
}

// Options configure a Workspace
type Options struct {
	Tabs        tabs.Options
	Content     content.Options
	SpawnMargin float64
	Clock       pending.Clock
	IDs         tabs.IDSource
	Palette     *palette.Palette
	Metrics     Metrics
	Logger      *zap.Logger
}

// DefaultOptions returns the standard editor timings with the default ID generator
func DefaultOptions() Options {
	return Options{
		Tabs:        tabs.DefaultOptions(),
		Content:     content.Options{TextDelay: content.DefaultTextDelay},
		SpawnMargin: dnd.DefaultSpawnMargin,
	}
}

// bundle groups the per-node components of a content card
type bundle struct {
	tabs   *tabs.Store
	ctrl   *dnd.Controller
	editor *content.Editor
}

type subscription struct {
	key int
	fn  func(Snapshot)
}

// Workspace is one editing session over a node collection
type Workspace struct {
	mu sync.Mutex

	store   *graph.MemoryStore
	facade  *graph.Facade
	sched   *pending.Scheduler
	drag    *dnd.Context
	layout  Layout
	ids     tabs.IDSource
	palette *palette.Palette
	opts    Options
	logger  *zap.Logger

	bundles     map[string]*bundle // Protected by mu
	subscribers []subscription     // Protected by mu, in subscription order
	nextSub     int                // Protected by mu
	dirty       bool               // Protected by mu
	closed      bool               // Protected by mu
	unsubscribe func()
}

// New creates a workspace over store. The store must only be mutated through
// the workspace afterwards.
func New(store *graph.MemoryStore, opts Options) *Workspace {
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.IDs == nil {
		opts.IDs = id.Default()
	}
	if opts.Palette == nil {
		opts.Palette = palette.Default()
	}

	w := &Workspace{
		store:   store,
		drag:    dnd.NewContext(),
		ids:     opts.IDs,
		palette: opts.Palette,
		opts:    opts,
		logger:  opts.Logger,
		bundles: make(map[string]*bundle),
	}

	w.facade = graph.NewFacade(store, opts.Logger)
	w.sched = pending.NewScheduler(opts.Clock, w.runTimer, opts.Logger)
	if opts.Metrics != nil {
		w.facade.WithMetrics(opts.Metrics)
		w.sched.WithMetrics(opts.Metrics)
	}

	w.mu.Lock()
	w.sync(store.Nodes())
	w.mu.Unlock()

	w.unsubscribe = store.Subscribe(w.onCommit)
	return w
}

// runTimer executes a fired pending write inside the event loop
func (w *Workspace) runTimer(fn func()) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed {
		return
	}
	fn()
	w.publish()
}

// onCommit runs synchronously inside every commit, which always happens
// within a locked handler.
func (w *Workspace) onCommit(c graph.Change) {
	w.sync(c.Nodes)
}

// sync reconciles per-node components with the canonical nodes (must hold lock)
func (w *Workspace) sync(nodes []types.Node) {
	seen := make(map[string]bool, len(nodes))
	for _, n := range nodes {
		seen[n.ID] = true
		if !n.Kind.HasTabs() {
			continue
		}
		if b, ok := w.bundles[n.ID]; ok {
			b.tabs.Reconcile(n)
			continue
		}
		w.bundles[n.ID] = w.newBundle(n)
	}

	for nodeID, b := range w.bundles {
		if seen[nodeID] {
			continue
		}
		b.editor.Close()
		b.tabs.Close()
		w.sched.CancelScope(nodeID)
		w.layout.forget(nodeID)
		delete(w.bundles, nodeID)
		w.logger.Debug("Node components released", zap.String("node_id", nodeID))
	}

	if w.opts.Metrics != nil {
		w.opts.Metrics.SetNodesActive(len(nodes))
	}
	w.dirty = true
}

func (w *Workspace) newBundle(n types.Node) *bundle {
	ts := tabs.NewStore(n, w.facade, w.sched, w.ids, w.opts.Tabs, w.logger)
	ts.OnChange(func() { w.dirty = true })

	var metrics dnd.Recorder
	if w.opts.Metrics != nil {
		metrics = w.opts.Metrics
	}
	ctrl := dnd.NewController(ts, dnd.Deps{
		Context:     w.drag,
		Facade:      w.facade,
		Hits:        &w.layout,
		Coords:      &w.layout,
		IDs:         w.ids,
		Flusher:     flusher{w},
		Metrics:     metrics,
		Logger:      w.logger,
		SpawnMargin: w.opts.SpawnMargin,
	})

	editor := content.NewEditor(n.ID, w.facade, w.sched, w.opts.Content, w.logger)
	if active := ts.ActiveTabID(); active != "" {
		editor.Mount(active)
	}
	return &bundle{tabs: ts, ctrl: ctrl, editor: editor}
}

// flusher commits a node's debounced writes from inside the event loop
type flusher struct{ w *Workspace }

func (f flusher) FlushPending(nodeID string) {
	b, ok := f.w.bundles[nodeID]
	if !ok {
		return
	}
	b.editor.Flush()
	b.tabs.Flush()
}

// publish pushes a snapshot when the last handler changed something (must hold lock)
func (w *Workspace) publish() {
	if !w.dirty || len(w.subscribers) == 0 {
		w.dirty = false
		return
	}
	w.dirty = false

	snap := w.snapshot()
	for _, sub := range w.subscribers {
		sub.fn(snap)
	}
}

// do runs fn inside the event loop
func (w *Workspace) do(fn func() error) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed {
		return ErrClosed
	}
	err := fn()
	w.publish()
	return err
}

// handle runs a drag handler inside the event loop
func (w *Workspace) handle(fn func() bool) bool {
	handled := false
	w.do(func() error {
		handled = fn()
		w.dirty = true
		return nil
	})
	return handled
}

// bundleFor returns the components of a content card (must hold lock)
func (w *Workspace) bundleFor(nodeID string) (*bundle, error) {
	if b, ok := w.bundles[nodeID]; ok {
		return b, nil
	}
	if _, ok := w.facade.GetNode(nodeID); ok {
		return nil, fmt.Errorf("node %s: %w", nodeID, ErrNoTabs)
	}
	return nil, fmt.Errorf("node %s: %w", nodeID, ErrNodeNotFound)
}

// ----------------------------------------------------------------------------
// Nodes
// ----------------------------------------------------------------------------

// Palette returns the items that can be dropped onto the canvas
func (w *Workspace) Palette() []palette.Item {
	return append([]palette.Item(nil), w.palette.Items...)
}

// AddFromPalette creates a node of kind at a screen position. Content cards
// start collapsed with one empty tab.
func (w *Workspace) AddFromPalette(kind types.NodeKind, screen types.Point) (NodeView, error) {
	var view NodeView
	err := w.do(func() error {
		item, ok := w.palette.Find(kind)
		if !ok {
			return fmt.Errorf("%w: %q", ErrUnknownKind, kind)
		}

		pos := w.layout.ScreenToCanvas(screen)
		node := types.Node{
			ID:       w.ids.NewNodeID(),
			Kind:     kind,
			Position: types.Position{X: pos.X, Y: pos.Y},
			Data:     types.NodeData{Label: item.Label},
		}
		if kind.HasTabs() {
			tab := types.Tab{ID: w.ids.NewTabID(), Title: "Tab 1"}
			node.Data.Tabs = []types.Tab{tab}
			node.Data.ActiveTabID = tab.ID
		}

		w.facade.AddNode(node)
		n, _ := w.facade.GetNode(node.ID)
		view = w.view(n)

		w.logger.Info("Node added from palette",
			zap.String("node_id", node.ID),
			zap.String("kind", string(kind)))
		return nil
	})
	return view, err
}

// Nodes returns the render data of every node
func (w *Workspace) Nodes() []NodeView {
	return w.Snapshot().Nodes
}

// Node returns the render data of one node
func (w *Workspace) Node(nodeID string) (NodeView, error) {
	var view NodeView
	err := w.do(func() error {
		n, ok := w.facade.GetNode(nodeID)
		if !ok {
			return fmt.Errorf("node %s: %w", nodeID, ErrNodeNotFound)
		}
		view = w.view(n)
		return nil
	})
	return view, err
}

// Snapshot returns the full render state
func (w *Workspace) Snapshot() Snapshot {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.snapshot()
}

// RemoveNode deletes a node and drops its pending writes
func (w *Workspace) RemoveNode(nodeID string) error {
	return w.do(func() error {
		if _, ok := w.facade.GetNode(nodeID); !ok {
			return fmt.Errorf("node %s: %w", nodeID, ErrNodeNotFound)
		}
		w.facade.RemoveNode(nodeID)
		return nil
	})
}

// SelectTab makes a tab active
func (w *Workspace) SelectTab(nodeID, tabID string) error {
	return w.do(func() error {
		b, err := w.bundleFor(nodeID)
		if err != nil {
			return err
		}
		if !b.tabs.SelectTab(tabID) {
			return fmt.Errorf("tab %s: %w", tabID, ErrTabNotFound)
		}
		b.editor.Mount(tabID)
		return nil
	})
}

// AddTab appends a new empty tab and selects it
func (w *Workspace) AddTab(nodeID string) (types.Tab, error) {
	var tab types.Tab
	err := w.do(func() error {
		b, err := w.bundleFor(nodeID)
		if err != nil {
			return err
		}
		tab = b.tabs.AddNewTab()
		b.editor.Mount(tab.ID)
		return nil
	})
	return tab, err
}

// ToggleExpand flips a card between expanded and collapsed
func (w *Workspace) ToggleExpand(nodeID string) (bool, error) {
	var expanded bool
	err := w.do(func() error {
		b, err := w.bundleFor(nodeID)
		if err != nil {
			return err
		}
		expanded = b.tabs.ToggleExpand()
		w.dirty = true
		return nil
	})
	return expanded, err
}

// EditText updates a tab's text; the commit is debounced
func (w *Workspace) EditText(nodeID, tabID, text string) error {
	return w.do(func() error {
		b, err := w.bundleFor(nodeID)
		if err != nil {
			return err
		}
		if !b.editor.Mount(tabID) {
			return fmt.Errorf("tab %s: %w", tabID, ErrTabNotFound)
		}
		b.editor.EditText(text)
		return nil
	})
}

// SelectMedia stores a media selection on a tab and commits it
func (w *Workspace) SelectMedia(nodeID, tabID string, p types.MediaPayload) error {
	return w.do(func() error {
		b, err := w.bundleFor(nodeID)
		if err != nil {
			return err
		}
		if !b.editor.Mount(tabID) {
			return fmt.Errorf("tab %s: %w", tabID, ErrTabNotFound)
		}
		if !b.editor.SelectMedia(p) {
			return fmt.Errorf("kind %q: %w", p.Kind, ErrInvalidMedia)
		}
		return nil
	})
}

// UpdateLayout replaces the client-reported geometry
func (w *Workspace) UpdateLayout(l Layout) error {
	return w.do(func() error {
		w.layout = l
		return nil
	})
}

// ----------------------------------------------------------------------------
// Drag events
// ----------------------------------------------------------------------------

// DragState returns the shared drag context
func (w *Workspace) DragState() dnd.State {
	return w.drag.State()
}

// DragStart begins dragging a tab out of a node
func (w *Workspace) DragStart(nodeID, tabID string) bool {
	return w.handle(func() bool {
		b, ok := w.bundles[nodeID]
		return ok && b.ctrl.DragStart(tabID)
	})
}

// DragOver handles pointer movement over a node
func (w *Workspace) DragOver(nodeID string, ev dnd.Event) bool {
	return w.handle(func() bool {
		b, ok := w.bundles[nodeID]
		return ok && b.ctrl.DragOver(ev)
	})
}

// DragEnter handles the pointer entering a node
func (w *Workspace) DragEnter(nodeID string, ev dnd.Event) bool {
	return w.handle(func() bool {
		b, ok := w.bundles[nodeID]
		return ok && b.ctrl.DragEnter(ev)
	})
}

// DragLeave handles the pointer leaving a node
func (w *Workspace) DragLeave(nodeID string, ev dnd.Event) bool {
	return w.handle(func() bool {
		b, ok := w.bundles[nodeID]
		return ok && b.ctrl.DragLeave(ev)
	})
}

// Drop handles a release over a node
func (w *Workspace) Drop(nodeID string, ev dnd.Event) bool {
	return w.handle(func() bool {
		b, ok := w.bundles[nodeID]
		return ok && b.ctrl.Drop(ev)
	})
}

// DragEnd finishes the drag. An empty nodeID addresses the drag's source.
// When the source no longer exists the drag context is still cleared.
func (w *Workspace) DragEnd(nodeID string, ev dnd.Event) bool {
	return w.handle(func() bool {
		if nodeID == "" {
			nodeID = w.dragSource()
		}
		if b, ok := w.bundles[nodeID]; ok && b.ctrl.Dragging() != "" {
			return b.ctrl.DragEnd(ev)
		}
		if w.drag.Active() {
			w.drag.End(dnd.OutcomeCancelled)
		}
		return true
	})
}

// dragSource finds the node a drag started from. A drop clears the shared
// context before the source sees its drag end, so the controllers are asked
// as well. (must hold lock)
func (w *Workspace) dragSource() string {
	if src := w.drag.State().SourceNodeID; src != "" {
		return src
	}
	for nodeID, b := range w.bundles {
		if b.ctrl.Dragging() != "" {
			return nodeID
		}
	}
	return ""
}

// ----------------------------------------------------------------------------
// Lifecycle
// ----------------------------------------------------------------------------

// Subscribe registers fn for snapshots. The returned function removes it.
func (w *Workspace) Subscribe(fn func(Snapshot)) func() {
	w.mu.Lock()
	defer w.mu.Unlock()

	key := w.nextSub
	w.nextSub++
	w.subscribers = append(w.subscribers, subscription{key: key, fn: fn})

	return func() {
		w.mu.Lock()
		defer w.mu.Unlock()
		w.subscribers = slices.DeleteFunc(w.subscribers, func(s subscription) bool { return s.key == key })
	}
}

// Flush commits every pending write now
func (w *Workspace) Flush() {
	w.do(func() error {
		for nodeID := range w.bundles {
			flusher{w}.FlushPending(nodeID)
		}
		return nil
	})
}

// Close drops pending writes and detaches from the store
func (w *Workspace) Close() {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed {
		return
	}
	w.closed = true
	w.sched.Close()
	w.unsubscribe()
}
