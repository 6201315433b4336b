package dnd_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zhangjie25/VideoBoard-Develop/internal/domain/dnd"
	"github.com/zhangjie25/VideoBoard-Develop/internal/domain/graph"
	"github.com/zhangjie25/VideoBoard-Develop/internal/domain/pending"
	"github.com/zhangjie25/VideoBoard-Develop/internal/domain/tabs"
	"github.com/zhangjie25/VideoBoard-Develop/internal/shared/types"
	"github.com/zhangjie25/VideoBoard-Develop/internal/testutil"
)

// board wires controllers for a set of nodes the way the canvas does
type board struct {
	t       *testing.T
	clock   *testutil.FakeClock
	store   *graph.MemoryStore
	facade  *graph.Facade
	ctx     *dnd.Context
	layout  *testutil.FakeLayout
	metrics *testutil.MockRecorder
	stores  map[string]*tabs.Store
	ctrls   map[string]*dnd.Controller
	changes []graph.Change
}

func newBoard(t *testing.T, nodes ...types.Node) *board {
	t.Helper()

	b := &board{
		t:       t,
		clock:   testutil.NewFakeClock(),
		store:   graph.NewMemoryStore(nodes...),
		ctx:     dnd.NewContext(),
		layout:  testutil.NewFakeLayout(),
		metrics: testutil.NewMockRecorder(),
		stores:  make(map[string]*tabs.Store),
		ctrls:   make(map[string]*dnd.Controller),
	}
	b.facade = graph.NewFacade(b.store, nil)
	sched := pending.NewScheduler(b.clock, nil, nil)
	ids := &testutil.SequentialIDs{}

	for _, n := range nodes {
		ts := tabs.NewStore(n, b.facade, sched, ids, tabs.DefaultOptions(), nil)
		b.stores[n.ID] = ts
		b.ctrls[n.ID] = dnd.NewController(ts, dnd.Deps{
			Context: b.ctx,
			Facade:  b.facade,
			Hits:    b.layout,
			Coords:  b.layout,
			IDs:     ids,
			Flusher: b,
			Metrics: b.metrics,
		})
	}

	b.store.Subscribe(func(c graph.Change) {
		b.changes = append(b.changes, c)
		for _, n := range c.Nodes {
			if ts, ok := b.stores[n.ID]; ok {
				ts.Reconcile(n)
			}
		}
	})
	return b
}

func (b *board) FlushPending(nodeID string) {
	if ts, ok := b.stores[nodeID]; ok {
		ts.Flush()
	}
}

func (b *board) node(id string) (types.Node, bool) {
	return b.facade.GetNode(id)
}

func (b *board) mustNode(id string) types.Node {
	b.t.Helper()
	n, ok := b.node(id)
	require.True(b.t, ok, "node %s should exist", id)
	return n
}

func at(x, y float64) dnd.Event {
	return dnd.Event{Pointer: types.Point{X: x, Y: y}}
}

func payload(source, tab string) *dnd.Payload {
	return &dnd.Payload{SourceNodeID: source, TabID: tab}
}

// Scenario: drag T2 from A onto B
func TestTransferToForeignNode(t *testing.T) {
	b := newBoard(t,
		testutil.ContentNode("A", 0, 0, testutil.Tab("T1", "Hello", "hello"), testutil.Tab("T2", "World", "world")),
		testutil.ContentNode("B", 500, 0, testutil.Tab("T3", "Other", "")),
	)
	b.layout.Node("A", types.Rect{Left: 0, Top: 0, Right: 200, Bottom: 150}).
		Node("B", types.Rect{Left: 500, Top: 0, Right: 700, Bottom: 150})

	require.True(t, b.ctrls["A"].DragStart("T2"))
	st := b.ctx.State()
	assert.True(t, st.IsDraggingTab)
	assert.Equal(t, "A", st.SourceNodeID)

	assert.True(t, b.ctrls["B"].DragEnter(at(600, 50)))
	assert.True(t, b.ctrls["B"].DropTarget())
	assert.Equal(t, dnd.PhaseHovering, b.ctx.State().Phase)

	assert.True(t, b.ctrls["B"].Drop(dnd.Event{Pointer: types.Point{X: 600, Y: 50}, Payload: payload("A", "T2")}))
	assert.False(t, b.ctrls["B"].DropTarget())
	assert.False(t, b.ctx.Active())

	assert.True(t, b.ctrls["A"].DragEnd(at(600, 50)))
	assert.Equal(t, dnd.OutcomeTransferred, b.ctrls["A"].LastOutcome())

	a := b.mustNode("A")
	assert.Equal(t, []string{"T1"}, testutil.TabIDs(a.Data.Tabs))
	assert.Equal(t, "T1", a.Data.ActiveTabID)

	dest := b.mustNode("B")
	require.Len(t, dest.Data.Tabs, 2)
	moved := dest.Data.Tabs[1]
	assert.Equal(t, "T3", dest.Data.Tabs[0].ID)
	assert.Equal(t, "World", moved.Title)
	assert.Equal(t, "world", moved.Content.TextValue())
	assert.NotEqual(t, "T2", moved.ID)
	assert.Equal(t, moved.ID, dest.Data.ActiveTabID)

	// local caches follow the canonical collection
	assert.Equal(t, []string{"T1"}, testutil.TabIDs(b.stores["A"].Tabs()))
	assert.Equal(t, moved.ID, b.stores["B"].ActiveTabID())

	b.metrics.AssertCalled(t, "RecordDragOutcome", string(dnd.OutcomeTransferred))
	b.metrics.AssertNumberOfCalls(t, "RecordDragOutcome", 1)
}

func TestTransferIsAtomic(t *testing.T) {
	b := newBoard(t,
		testutil.ContentNode("A", 0, 0, testutil.Tab("T1", "Hello", ""), testutil.Tab("T2", "World", "")),
		testutil.ContentNode("B", 500, 0, testutil.Tab("T3", "Other", "")),
	)

	b.ctrls["A"].DragStart("T2")
	b.ctrls["B"].Drop(dnd.Event{Payload: payload("A", "T2")})

	require.Len(t, b.changes, 1)
	count := 0
	for _, n := range b.changes[0].Nodes {
		for _, tab := range n.Data.Tabs {
			if tab.Title == "World" {
				count++
			}
		}
	}
	assert.Equal(t, 1, count, "moved tab must exist exactly once in the committed snapshot")
}

func TestTransferOfLastTabDeletesSource(t *testing.T) {
	b := newBoard(t,
		testutil.ContentNode("A", 0, 0, testutil.Tab("T1", "Hello", "")),
		testutil.ContentNode("B", 500, 0, testutil.Tab("T3", "Other", "")),
	)

	b.ctrls["A"].DragStart("T1")
	b.ctrls["B"].Drop(dnd.Event{Payload: payload("A", "T1")})

	_, ok := b.node("A")
	assert.False(t, ok)
	require.Len(t, b.changes, 1)
	assert.Len(t, b.changes[0].Nodes, 1)
	assert.Len(t, b.mustNode("B").Data.Tabs, 2)
}

// Scenario: drag the only tab of A onto empty canvas
func TestSpawnOnEmptyCanvas(t *testing.T) {
	b := newBoard(t, testutil.ContentNode("A", 0, 0, testutil.Tab("T1", "Hello", "body")))
	b.layout.Node("A", types.Rect{Left: 0, Top: 0, Right: 200, Bottom: 150})

	require.True(t, b.ctrls["A"].DragStart("T1"))
	require.True(t, b.ctrls["A"].DragEnd(at(400, 300)))
	assert.Equal(t, dnd.OutcomeSpawned, b.ctrls["A"].LastOutcome())

	_, ok := b.node("A")
	assert.False(t, ok)

	nodes := b.facade.GetAllNodes()
	require.Len(t, nodes, 1)
	spawned := nodes[0]
	assert.Equal(t, types.KindContentCard, spawned.Kind)
	assert.InDelta(t, 400, spawned.Position.X, 0.001)
	assert.InDelta(t, 300, spawned.Position.Y, 0.001)
	assert.True(t, spawned.Data.IsExpanded)
	assert.Equal(t, "Hello", spawned.Data.Label)
	require.Len(t, spawned.Data.Tabs, 1)
	assert.Equal(t, "Hello", spawned.Data.Tabs[0].Title)
	assert.Equal(t, "body", spawned.Data.Tabs[0].Content.TextValue())
	assert.NotEqual(t, "T1", spawned.Data.Tabs[0].ID)
	assert.Equal(t, spawned.Data.Tabs[0].ID, spawned.Data.ActiveTabID)

	assert.Len(t, b.changes, 1, "spawn and source removal commit together")
	assert.False(t, b.ctx.Active())
}

func TestSpawnTranslatesToCanvasCoordinates(t *testing.T) {
	b := newBoard(t, testutil.ContentNode("A", 0, 0, testutil.Tab("T1", "One", ""), testutil.Tab("T2", "Two", "")))
	b.layout.Node("A", types.Rect{Left: 0, Top: 0, Right: 200, Bottom: 150})
	b.layout.Offset = types.Point{X: 100, Y: 50}

	b.ctrls["A"].DragStart("T1")
	b.ctrls["A"].DragEnd(at(600, 400))

	a := b.mustNode("A")
	assert.Equal(t, []string{"T2"}, testutil.TabIDs(a.Data.Tabs))
	assert.Equal(t, "T2", a.Data.ActiveTabID, "removed tab was active")

	for _, n := range b.facade.GetAllNodes() {
		if n.ID != "A" {
			assert.Equal(t, types.Position{X: 500, Y: 350}, n.Position)
		}
	}
}

func TestSpawnKeepsInactiveSourceSelection(t *testing.T) {
	node := testutil.ContentNode("A", 0, 0, testutil.Tab("T1", "One", ""), testutil.Tab("T2", "Two", ""), testutil.Tab("T3", "Three", ""))
	node.Data.ActiveTabID = "T3"
	b := newBoard(t, node)
	b.layout.Node("A", types.Rect{Left: 0, Top: 0, Right: 200, Bottom: 150})

	b.ctrls["A"].DragStart("T1")
	b.ctrls["A"].DragEnd(at(900, 900))

	a := b.mustNode("A")
	assert.Equal(t, []string{"T2", "T3"}, testutil.TabIDs(a.Data.Tabs))
	assert.Equal(t, "T3", a.Data.ActiveTabID)
}

func TestDragEndWithinMarginCancels(t *testing.T) {
	b := newBoard(t, testutil.ContentNode("A", 0, 0, testutil.Tab("T1", "Hello", "")))
	b.layout.Node("A", types.Rect{Left: 0, Top: 0, Right: 200, Bottom: 150})

	for _, p := range []types.Point{{X: 100, Y: 75}, {X: 250, Y: 75}, {X: -50, Y: -50}, {X: 200, Y: 200}} {
		b.ctrls["A"].DragStart("T1")
		b.ctrls["A"].DragEnd(dnd.Event{Pointer: p})
		assert.Equal(t, dnd.OutcomeCancelled, b.ctrls["A"].LastOutcome(), "pointer %v", p)
	}
	assert.Empty(t, b.changes)
}

// Scenario: release over C is not a recognized drop, the platform cancels
func TestNativeCancelOverForeignNode(t *testing.T) {
	b := newBoard(t,
		testutil.ContentNode("A", 0, 0, testutil.Tab("T1", "Hello", ""), testutil.Tab("T2", "World", "")),
		testutil.ContentNode("C", 800, 600, testutil.Tab("T5", "Other", "")),
	)
	b.layout.Node("A", types.Rect{Left: 0, Top: 0, Right: 200, Bottom: 150}).
		Node("C", types.Rect{Left: 800, Top: 600, Right: 1000, Bottom: 750})

	b.ctrls["A"].DragStart("T2")
	b.ctrls["C"].DragEnter(at(900, 700))
	b.ctrls["A"].DragEnd(dnd.Event{Pointer: types.Point{X: 900, Y: 700}, Cancelled: true})

	st := b.ctx.State()
	assert.False(t, st.IsDraggingTab)
	assert.Empty(t, st.SourceNodeID)
	assert.Equal(t, dnd.OutcomeCancelled, st.LastOutcome)
	assert.False(t, b.ctrls["C"].DropTarget())
	assert.Empty(t, b.changes)
}

func TestNativeCancelOnEmptyCanvasTakesDragEndPath(t *testing.T) {
	b := newBoard(t, testutil.ContentNode("A", 0, 0, testutil.Tab("T1", "One", ""), testutil.Tab("T2", "Two", "")))
	b.layout.Node("A", types.Rect{Left: 0, Top: 0, Right: 200, Bottom: 150})

	b.ctrls["A"].DragStart("T2")
	b.ctrls["A"].DragEnd(dnd.Event{Pointer: types.Point{X: 700, Y: 700}, Cancelled: true})

	assert.Equal(t, dnd.OutcomeSpawned, b.ctrls["A"].LastOutcome())
	assert.Len(t, b.facade.GetAllNodes(), 2)
}

// Scenario: drag T3 leftward over T1
func TestReorderWithinNode(t *testing.T) {
	b := newBoard(t,
		testutil.ContentNode("A", 0, 0, testutil.Tab("T1", "One", ""), testutil.Tab("T2", "Two", ""), testutil.Tab("T3", "Three", "")),
		testutil.ContentNode("B", 500, 0, testutil.Tab("T4", "Four", "")),
	)
	b.layout.TabStrip("A", 0, 60, "T1", "T2", "T3")

	b.ctrls["A"].DragStart("T3")
	assert.True(t, b.ctrls["A"].DragOver(at(30, 10)))
	assert.Equal(t, dnd.PhaseReordering, b.ctx.State().Phase)
	assert.Equal(t, dnd.PhaseReordering, b.ctrls["A"].Phase())
	assert.Equal(t, dnd.PhaseIdle, b.ctrls["B"].Phase())

	assert.Equal(t, []string{"T3", "T1", "T2"}, testutil.TabIDs(b.stores["A"].Tabs()))
	assert.Empty(t, b.changes, "reorder stays local until the debounce elapses")

	b.clock.Advance(100 * time.Millisecond)
	require.Len(t, b.changes, 1)
	assert.Equal(t, []string{"T3", "T1", "T2"}, testutil.TabIDs(b.mustNode("A").Data.Tabs))
	assert.Equal(t, []string{"T4"}, testutil.TabIDs(b.mustNode("B").Data.Tabs))
}

func TestReorderTieGoesToLeftmostTab(t *testing.T) {
	b := newBoard(t, testutil.ContentNode("A", 0, 0, testutil.Tab("T1", "One", ""), testutil.Tab("T2", "Two", ""), testutil.Tab("T3", "Three", "")))
	b.layout.TabStrip("A", 0, 60, "T1", "T2", "T3")

	b.ctrls["A"].DragStart("T3")
	b.ctrls["A"].DragOver(at(60, 10)) // shared edge of T1 and T2

	assert.Equal(t, []string{"T3", "T1", "T2"}, testutil.TabIDs(b.stores["A"].Tabs()))
}

func TestReorderOverDraggedTabIsNoop(t *testing.T) {
	b := newBoard(t, testutil.ContentNode("A", 0, 0, testutil.Tab("T1", "One", ""), testutil.Tab("T2", "Two", "")))
	b.layout.TabStrip("A", 0, 60, "T1", "T2")

	b.ctrls["A"].DragStart("T2")
	b.ctrls["A"].DragOver(at(90, 10))
	b.ctrls["A"].DragOver(at(500, 10))

	assert.Equal(t, []string{"T1", "T2"}, testutil.TabIDs(b.stores["A"].Tabs()))
}

func TestDropOnOwnNodeIsIdempotent(t *testing.T) {
	b := newBoard(t, testutil.ContentNode("A", 0, 0, testutil.Tab("T1", "One", "x"), testutil.Tab("T2", "Two", "y")))
	b.layout.Node("A", types.Rect{Left: 0, Top: 0, Right: 200, Bottom: 150})
	before := b.mustNode("A")

	b.ctrls["A"].DragStart("T2")
	assert.False(t, b.ctrls["A"].DragEnter(at(50, 50)))
	assert.True(t, b.ctrls["A"].Drop(dnd.Event{Pointer: types.Point{X: 50, Y: 50}, Payload: payload("A", "T2")}))
	assert.False(t, b.ctx.Active())
	assert.Equal(t, dnd.PhaseIdle, b.ctx.State().Phase)

	assert.True(t, b.ctrls["A"].DragEnd(at(50, 50)))
	assert.Equal(t, before, b.mustNode("A"))
	assert.Equal(t, dnd.OutcomeCancelled, b.ctrls["A"].LastOutcome())
}

func TestDropWithoutActiveDragIsIgnored(t *testing.T) {
	b := newBoard(t,
		testutil.ContentNode("A", 0, 0, testutil.Tab("T1", "One", ""), testutil.Tab("T2", "Two", "")),
		testutil.ContentNode("B", 500, 0, testutil.Tab("T3", "Other", "")),
	)
	b.layout.Node("A", types.Rect{Left: 0, Top: 0, Right: 200, Bottom: 150}).
		Node("B", types.Rect{Left: 500, Top: 0, Right: 700, Bottom: 150})

	assert.False(t, b.ctrls["B"].Drop(dnd.Event{Payload: payload("A", "T2")}))
	assert.False(t, b.ctx.Active())

	// a late drop after the drag already ended
	require.True(t, b.ctrls["A"].DragStart("T2"))
	require.True(t, b.ctrls["A"].DragEnd(at(100, 75)))
	assert.False(t, b.ctrls["B"].Drop(dnd.Event{Payload: payload("A", "T2")}))

	assert.Empty(t, b.changes)
	assert.Equal(t, []string{"T1", "T2"}, testutil.TabIDs(b.mustNode("A").Data.Tabs))
	assert.Equal(t, []string{"T3"}, testutil.TabIDs(b.mustNode("B").Data.Tabs))
	b.metrics.AssertNotCalled(t, "RecordDragOutcome", string(dnd.OutcomeTransferred))
}

func TestDropMustMatchLiveDrag(t *testing.T) {
	b := newBoard(t,
		testutil.ContentNode("A", 0, 0, testutil.Tab("T1", "One", ""), testutil.Tab("T2", "Two", "")),
		testutil.ContentNode("B", 500, 0, testutil.Tab("T3", "Other", ""), testutil.Tab("T4", "More", "")),
		testutil.ContentNode("C", 1000, 0, testutil.Tab("T5", "Third", "")),
	)

	require.True(t, b.ctrls["A"].DragStart("T1"))
	assert.False(t, b.ctrls["C"].Drop(dnd.Event{Payload: payload("B", "T3")}), "other source")
	assert.False(t, b.ctrls["C"].Drop(dnd.Event{Payload: payload("A", "T2")}), "other tab")

	st := b.ctx.State()
	assert.True(t, st.IsDraggingTab)
	assert.Equal(t, "A", st.SourceNodeID)
	assert.Equal(t, "T1", st.TabID)
	assert.Empty(t, b.changes)
	assert.Equal(t, []string{"T5"}, testutil.TabIDs(b.mustNode("C").Data.Tabs))
}

func TestMalformedPayloadIsNotOurs(t *testing.T) {
	b := newBoard(t,
		testutil.ContentNode("A", 0, 0, testutil.Tab("T1", "One", "")),
		testutil.ContentNode("B", 500, 0, testutil.Tab("T3", "Other", "")),
	)

	b.ctrls["A"].DragStart("T1")
	assert.False(t, b.ctrls["B"].Drop(dnd.Event{}))
	assert.False(t, b.ctrls["B"].Drop(dnd.Event{Payload: &dnd.Payload{TabID: "T1"}}))
	assert.False(t, b.ctrls["B"].Drop(dnd.Event{Payload: &dnd.Payload{SourceNodeID: "A"}}))

	assert.Empty(t, b.changes)
	assert.True(t, b.ctx.Active(), "an unhandled drop leaves the drag to its owner")
}

func TestStaleSourceIsIgnored(t *testing.T) {
	b := newBoard(t,
		testutil.ContentNode("A", 0, 0, testutil.Tab("T1", "One", "")),
		testutil.ContentNode("B", 500, 0, testutil.Tab("T3", "Other", "")),
	)
	b.layout.Node("A", types.Rect{Left: 0, Top: 0, Right: 200, Bottom: 150}).
		Node("B", types.Rect{Left: 500, Top: 0, Right: 700, Bottom: 150})

	b.ctrls["A"].DragStart("T1")
	b.facade.RemoveNode("A")
	b.changes = nil

	assert.False(t, b.ctrls["B"].DragEnter(at(600, 50)))
	assert.False(t, b.ctrls["B"].DropTarget())
	assert.True(t, b.ctrls["B"].Drop(dnd.Event{Payload: payload("A", "T1")}))
	assert.False(t, b.ctx.Active())

	assert.True(t, b.ctrls["A"].DragEnd(at(900, 400)))
	assert.Equal(t, dnd.OutcomeCancelled, b.ctrls["A"].LastOutcome())
	assert.Empty(t, b.changes)
	assert.Equal(t, []string{"T3"}, testutil.TabIDs(b.mustNode("B").Data.Tabs))
}

func TestStaleTabSettlesDragWithoutSpawning(t *testing.T) {
	b := newBoard(t,
		testutil.ContentNode("A", 0, 0, testutil.Tab("T1", "One", ""), testutil.Tab("T2", "Two", "")),
		testutil.ContentNode("B", 500, 0, testutil.Tab("T3", "Other", "")),
	)
	b.layout.Node("A", types.Rect{Left: 0, Top: 0, Right: 200, Bottom: 150}).
		Node("B", types.Rect{Left: 500, Top: 0, Right: 700, Bottom: 150})

	require.True(t, b.ctrls["A"].DragStart("T2"))
	b.facade.UpdateNode("A", graph.Patch{Tabs: []types.Tab{testutil.Tab("T1", "One", "")}})
	b.changes = nil

	assert.True(t, b.ctrls["B"].Drop(dnd.Event{Payload: payload("A", "T2")}))
	assert.False(t, b.ctx.Active())
	assert.Equal(t, dnd.OutcomeCancelled, b.ctx.State().LastOutcome)

	// released clear of every card, but the drop already settled the drag
	assert.True(t, b.ctrls["A"].DragEnd(at(900, 400)))
	assert.Equal(t, dnd.OutcomeCancelled, b.ctrls["A"].LastOutcome())
	assert.Empty(t, b.changes)
	assert.Len(t, b.facade.GetAllNodes(), 2)
}

func TestDragLeaveClearsHighlight(t *testing.T) {
	b := newBoard(t,
		testutil.ContentNode("A", 0, 0, testutil.Tab("T1", "One", "")),
		testutil.ContentNode("B", 500, 0, testutil.Tab("T3", "Other", "")),
	)

	b.ctrls["A"].DragStart("T1")
	assert.True(t, b.ctrls["B"].DragOver(at(600, 50)))
	assert.True(t, b.ctrls["B"].DropTarget())

	assert.True(t, b.ctrls["B"].DragLeave(at(900, 50)))
	assert.False(t, b.ctrls["B"].DropTarget())
	assert.Equal(t, dnd.PhaseDragging, b.ctx.State().Phase)
	assert.False(t, b.ctrls["B"].DragLeave(at(900, 50)))
}

func TestDragStartFlushesPendingReorder(t *testing.T) {
	b := newBoard(t, testutil.ContentNode("A", 0, 0, testutil.Tab("T1", "One", ""), testutil.Tab("T2", "Two", "")))

	b.stores["A"].MoveTab("T2", 0)
	assert.False(t, b.ctrls["A"].DragStart("missing"))
	assert.True(t, b.ctrls["A"].DragStart("T1"))

	assert.Equal(t, []string{"T2", "T1"}, testutil.TabIDs(b.mustNode("A").Data.Tabs))
	assert.Equal(t, "T1", b.ctrls["A"].Dragging())
}

func TestDragEndWithoutDragIsUnhandled(t *testing.T) {
	b := newBoard(t, testutil.ContentNode("A", 0, 0, testutil.Tab("T1", "One", "")))
	assert.False(t, b.ctrls["A"].DragEnd(at(0, 0)))
	assert.False(t, b.ctrls["A"].DragOver(at(0, 0)))
}
