package tabs_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zhangjie25/VideoBoard-Develop/internal/domain/graph"
	"github.com/zhangjie25/VideoBoard-Develop/internal/domain/pending"
	"github.com/zhangjie25/VideoBoard-Develop/internal/domain/tabs"
	"github.com/zhangjie25/VideoBoard-Develop/internal/shared/types"
	"github.com/zhangjie25/VideoBoard-Develop/internal/testutil"
)

type fixture struct {
	clock  *testutil.FakeClock
	store  *graph.MemoryStore
	facade *graph.Facade
	tabs   *tabs.Store
}

func newFixture(t *testing.T, node types.Node) *fixture {
	t.Helper()

	clock := testutil.NewFakeClock()
	store := graph.NewMemoryStore(node)
	facade := graph.NewFacade(store, nil)
	sched := pending.NewScheduler(clock, nil, nil)
	ts := tabs.NewStore(node, facade, sched, &testutil.SequentialIDs{}, tabs.DefaultOptions(), nil)

	store.Subscribe(func(c graph.Change) {
		for _, n := range c.Nodes {
			if n.ID == node.ID {
				ts.Reconcile(n)
			}
		}
	})
	return &fixture{clock: clock, store: store, facade: facade, tabs: ts}
}

func threeTabs() types.Node {
	return testutil.ContentNode("A", 0, 0,
		testutil.Tab("T1", "One", ""),
		testutil.Tab("T2", "Two", ""),
		testutil.Tab("T3", "Three", ""))
}

func (f *fixture) canonical(t *testing.T) types.Node {
	t.Helper()
	n, ok := f.facade.GetNode("A")
	require.True(t, ok)
	return n
}

func TestMoveIsLocalUntilDebounceElapses(t *testing.T) {
	f := newFixture(t, threeTabs())

	require.True(t, f.tabs.Move(2, 0))
	assert.Equal(t, []string{"T3", "T1", "T2"}, testutil.TabIDs(f.tabs.Tabs()))
	assert.Equal(t, []string{"T1", "T2", "T3"}, testutil.TabIDs(f.canonical(t).Data.Tabs))

	f.clock.Advance(100 * time.Millisecond)
	assert.Equal(t, []string{"T3", "T1", "T2"}, testutil.TabIDs(f.canonical(t).Data.Tabs))
}

func TestRapidMovesCoalesceIntoOneCommit(t *testing.T) {
	f := newFixture(t, threeTabs())

	f.tabs.MoveTab("T3", 1)
	f.clock.Advance(50 * time.Millisecond)
	f.tabs.MoveTab("T3", 0)
	f.clock.Advance(50 * time.Millisecond)
	assert.Equal(t, uint64(0), f.store.Version())

	f.clock.Advance(50 * time.Millisecond)
	assert.Equal(t, uint64(1), f.store.Version())
	assert.Equal(t, []string{"T3", "T1", "T2"}, testutil.TabIDs(f.canonical(t).Data.Tabs))
}

func TestMoveRejectsOutOfRange(t *testing.T) {
	f := newFixture(t, threeTabs())

	assert.False(t, f.tabs.Move(0, 0))
	assert.False(t, f.tabs.Move(-1, 0))
	assert.False(t, f.tabs.Move(0, 3))
	assert.False(t, f.tabs.MoveTab("missing", 0))
}

func TestAddNewTabCommitsImmediately(t *testing.T) {
	f := newFixture(t, threeTabs())

	f.tabs.MoveTab("T3", 0)
	tab := f.tabs.AddNewTab()

	assert.Equal(t, "tab_1", tab.ID)
	assert.Equal(t, "Tab 4", tab.Title)
	assert.Equal(t, tab.ID, f.tabs.ActiveTabID())

	n := f.canonical(t)
	assert.Equal(t, []string{"T3", "T1", "T2", "tab_1"}, testutil.TabIDs(n.Data.Tabs))
	assert.Equal(t, tab.ID, n.Data.ActiveTabID)
	assert.Nil(t, n.Data.Tabs[3].Content.Text)

	// the pending reorder was folded into the commit, nothing left to fire
	v := f.store.Version()
	f.clock.Advance(time.Second)
	assert.Equal(t, v, f.store.Version())
}

func TestSelectTab(t *testing.T) {
	f := newFixture(t, threeTabs())

	assert.True(t, f.tabs.SelectTab("T2"))
	assert.Equal(t, "T2", f.canonical(t).Data.ActiveTabID)
	assert.False(t, f.tabs.SelectTab("nope"))
	assert.Equal(t, "T2", f.tabs.ActiveTabID())
}

func TestCollapseCommitsAfterAnimation(t *testing.T) {
	f := newFixture(t, threeTabs())

	changes := 0
	f.tabs.OnChange(func() { changes++ })

	assert.False(t, f.tabs.ToggleExpand())
	assert.Equal(t, tabs.AnimationCollapse, f.tabs.Animation())
	assert.True(t, f.tabs.ContentMounted())
	assert.True(t, f.canonical(t).Data.IsExpanded)

	f.clock.Advance(500 * time.Millisecond)
	assert.False(t, f.canonical(t).Data.IsExpanded)
	assert.Equal(t, tabs.AnimationNone, f.tabs.Animation())
	assert.False(t, f.tabs.ContentMounted())
	assert.Equal(t, 1, changes)
}

func TestExpandCommitsImmediately(t *testing.T) {
	node := threeTabs()
	node.Data.IsExpanded = false
	f := newFixture(t, node)

	assert.True(t, f.tabs.ToggleExpand())
	assert.True(t, f.canonical(t).Data.IsExpanded)
	assert.Equal(t, tabs.AnimationExpand, f.tabs.Animation())

	f.clock.Advance(500 * time.Millisecond)
	assert.Equal(t, tabs.AnimationNone, f.tabs.Animation())
}

func TestRapidToggleLandsFinalState(t *testing.T) {
	f := newFixture(t, threeTabs())

	f.tabs.ToggleExpand() // collapse pending
	f.clock.Advance(200 * time.Millisecond)
	f.tabs.ToggleExpand() // expand, supersedes the collapse
	f.clock.Advance(time.Second)
	assert.True(t, f.canonical(t).Data.IsExpanded)

	f.tabs.ToggleExpand()
	f.tabs.ToggleExpand()
	f.tabs.ToggleExpand() // ends collapsed
	f.clock.Advance(time.Second)
	assert.False(t, f.canonical(t).Data.IsExpanded)
	assert.False(t, f.tabs.IsExpanded())
}

func TestReconcileReplacesOnExternalChange(t *testing.T) {
	f := newFixture(t, threeTabs())
	require.True(t, f.tabs.SelectTab("T3"))

	// a sibling transfer takes T3 away
	f.facade.UpdateNode("A", graph.Patch{Tabs: []types.Tab{
		testutil.Tab("T1", "One", ""),
		testutil.Tab("T2", "Two", ""),
	}})

	assert.Equal(t, []string{"T1", "T2"}, testutil.TabIDs(f.tabs.Tabs()))
	assert.Equal(t, "T1", f.tabs.ActiveTabID())
}

func TestReconcileIgnoresUnrelatedCommits(t *testing.T) {
	f := newFixture(t, threeTabs())

	f.tabs.MoveTab("T3", 0)
	label := "Renamed"
	f.facade.UpdateNode("A", graph.Patch{Label: &label})

	assert.Equal(t, []string{"T3", "T1", "T2"}, testutil.TabIDs(f.tabs.Tabs()))
	f.clock.Advance(100 * time.Millisecond)
	assert.Equal(t, []string{"T3", "T1", "T2"}, testutil.TabIDs(f.canonical(t).Data.Tabs))
}

func TestReconcileCancelsStalePersist(t *testing.T) {
	f := newFixture(t, threeTabs())

	f.tabs.MoveTab("T3", 0)
	f.facade.UpdateNode("A", graph.Patch{Tabs: []types.Tab{testutil.Tab("T9", "External", "")}})
	f.clock.Advance(time.Second)

	assert.Equal(t, []string{"T9"}, testutil.TabIDs(f.canonical(t).Data.Tabs))
	assert.Equal(t, []string{"T9"}, testutil.TabIDs(f.tabs.Tabs()))
}

func TestAdoptSelectsWithoutCommit(t *testing.T) {
	f := newFixture(t, threeTabs())

	list := f.tabs.Adopt(testutil.Tab("T9", "Moved", ""))
	assert.Equal(t, []string{"T1", "T2", "T3", "T9"}, testutil.TabIDs(list))
	assert.Equal(t, "T9", f.tabs.ActiveTabID())
	assert.Equal(t, uint64(0), f.store.Version())
}

func TestEmptyListIsNeverPersisted(t *testing.T) {
	f := newFixture(t, threeTabs())

	f.tabs.SetTabs(nil)
	assert.Equal(t, "", f.tabs.ActiveTabID())
	f.clock.Advance(time.Second)

	assert.Equal(t, uint64(0), f.store.Version())
	assert.Len(t, f.canonical(t).Data.Tabs, 3)
}

func TestFlushAndClose(t *testing.T) {
	f := newFixture(t, threeTabs())

	f.tabs.MoveTab("T2", 0)
	assert.True(t, f.tabs.Flush())
	assert.Equal(t, []string{"T2", "T1", "T3"}, testutil.TabIDs(f.canonical(t).Data.Tabs))
	assert.False(t, f.tabs.Flush())

	f.tabs.MoveTab("T3", 0)
	f.tabs.ToggleExpand()
	f.tabs.Close()
	f.clock.Advance(time.Second)
	assert.Equal(t, []string{"T2", "T1", "T3"}, testutil.TabIDs(f.canonical(t).Data.Tabs))
	assert.True(t, f.canonical(t).Data.IsExpanded)
}
