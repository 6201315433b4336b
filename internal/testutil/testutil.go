// Package testutil provides fakes and fixtures shared by the domain tests.
package testutil

import (
	"fmt"
	"sync"

	"github.com/stretchr/testify/mock"

	"github.com/zhangjie25/VideoBoard-Develop/internal/shared/types"
)

// Tab builds a tab with text content
func Tab(id, title, text string) types.Tab {
	return types.Tab{ID: id, Title: title, Content: types.Content{Text: &text}}
}

// ContentNode builds an expanded content card whose first tab is active
func ContentNode(id string, x, y float64, tabs ...types.Tab) types.Node {
	n := types.Node{
		ID:       id,
		Kind:     types.KindContentCard,
		Position: types.Position{X: x, Y: y},
		Data: types.NodeData{
			Label:      "Default Node",
			IsExpanded: true,
			Tabs:       tabs,
		},
	}
	if len(tabs) > 0 {
		n.Data.ActiveTabID = tabs[0].ID
	}
	return n
}

// TabIDs lists the IDs of a tab slice in order
func TabIDs(tabs []types.Tab) []string {
	ids := make([]string, len(tabs))
	for i, t := range tabs {
		ids[i] = t.ID
	}
	return ids
}

// SequentialIDs is a deterministic ID source: tab_1, tab_2, node_1, ...
type SequentialIDs struct {
	mu    sync.Mutex
	tabs  int
	nodes int
}

// NewTabID returns the next tab ID
func (s *SequentialIDs) NewTabID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tabs++
	return fmt.Sprintf("tab_%d", s.tabs)
}

// NewNodeID returns the next node ID
func (s *SequentialIDs) NewNodeID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nodes++
	return fmt.Sprintf("node_%d", s.nodes)
}

// MockRecorder records metric calls from any domain component
type MockRecorder struct {
	mock.Mock
}

// NewMockRecorder creates a recorder that accepts every call
func NewMockRecorder() *MockRecorder {
	m := new(MockRecorder)
	m.On("RecordCommit", mock.Anything, mock.Anything).Maybe()
	m.On("RecordScheduled", mock.Anything, mock.Anything).Maybe()
	m.On("RecordDragOutcome", mock.Anything).Maybe()
	return m
}

// RecordCommit mocks graph.Recorder
func (m *MockRecorder) RecordCommit(op string, removed int) {
	m.Called(op, removed)
}

// RecordScheduled mocks pending.Recorder
func (m *MockRecorder) RecordScheduled(field, outcome string) {
	m.Called(field, outcome)
}

// RecordDragOutcome mocks dnd.Recorder
func (m *MockRecorder) RecordDragOutcome(outcome string) {
	m.Called(outcome)
}
