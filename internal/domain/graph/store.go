package graph

import (
	"sync"

	"github.com/zhangjie25/VideoBoard-Develop/internal/shared/types"
)

// Store is the canonical node collection the engine reads from and writes to
type Store interface {
	Node(id string) (types.Node, bool)
	Nodes() []types.Node
	SetNodes(update func([]types.Node) []types.Node)
	AddNode(node types.Node)
}

// Change describes one committed replacement of the collection.
// Nodes is shared between listeners and must not be modified.
type Change struct {
	Version uint64
	Nodes   []types.Node
}

// Listener observes committed changes
type Listener func(Change)

// MemoryStore is an in-process Store with change notification
type MemoryStore struct {
	mu        sync.RWMutex
	nodes     []types.Node // Protected by mu
	version   uint64       // Protected by mu
	listeners map[int]Listener
	nextID    int
}

// NewMemoryStore creates a store seeded with the given nodes
func NewMemoryStore(nodes ...types.Node) *MemoryStore {
	return &MemoryStore{
		nodes:     types.CloneNodes(nodes),
		listeners: make(map[int]Listener),
	}
}

// Node returns a copy of the node with the given ID
func (s *MemoryStore) Node(id string) (types.Node, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, n := range s.nodes {
		if n.ID == id {
			return n.Clone(), true
		}
	}
	return types.Node{}, false
}

// Nodes returns a snapshot of the collection
func (s *MemoryStore) Nodes() []types.Node {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return types.CloneNodes(s.nodes)
}

// Version returns the number of commits applied so far
func (s *MemoryStore) Version() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.version
}

// SetNodes replaces the collection with the updater's result as one commit.
// The updater receives a private copy and may modify it freely.
func (s *MemoryStore) SetNodes(update func([]types.Node) []types.Node) {
	s.mu.Lock()
	next := update(types.CloneNodes(s.nodes))
	s.nodes = types.CloneNodes(next)
	s.version++
	change := Change{Version: s.version, Nodes: types.CloneNodes(s.nodes)}
	listeners := s.snapshotListeners()
	s.mu.Unlock()

	s.notify(listeners, change)
}

// AddNode appends a node as one commit
func (s *MemoryStore) AddNode(node types.Node) {
	s.SetNodes(func(nodes []types.Node) []types.Node {
		return append(nodes, node.Clone())
	})
}

// Subscribe registers a listener called after every commit, outside the store lock.
// The returned function removes it.
func (s *MemoryStore) Subscribe(listener Listener) func() {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := s.nextID
	s.nextID++
	s.listeners[id] = listener

	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.listeners, id)
	}
}

// snapshotListeners copies the listener set in registration order (must hold lock)
func (s *MemoryStore) snapshotListeners() []Listener {
	out := make([]Listener, 0, len(s.listeners))
	for id := 0; id < s.nextID; id++ {
		if l, ok := s.listeners[id]; ok {
			out = append(out, l)
		}
	}
	return out
}

func (s *MemoryStore) notify(listeners []Listener, change Change) {
	for _, l := range listeners {
		l(change)
	}
}
