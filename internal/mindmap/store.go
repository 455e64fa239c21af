package mindmap

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"golang.org/x/sync/singleflight"
)

// Labeler produces child labels for a node. Implementations must not fail.
type Labeler interface {
	Generate(ctx context.Context, seed string, depth int) []string
}

type mapState struct {
	mu       sync.Mutex
	id       int
	rootID   string
	order    []string
	nodes    map[string]Node
	children map[string][]string
}

// Store keeps every mindmap in memory for the life of the process.
type Store struct {
	labeler    Labeler
	mu         sync.RWMutex
	nextID     int
	maps       map[int]*mapState
	expansions singleflight.Group
}

func NewStore(labeler Labeler) *Store {
	return &Store{
		labeler: labeler,
		nextID:  1,
		maps:    make(map[int]*mapState),
	}
}

// Create allocates a new map whose root carries the trimmed prompt, and
// attaches the first generation of children.
func (s *Store) Create(ctx context.Context, prompt string) (Mindmap, error) {
	s.mu.Lock()
	mapID := s.nextID
	s.nextID++
	s.mu.Unlock()

	rootID := NodeID(mapID, "", 0)
	state := &mapState{
		id:       mapID,
		rootID:   rootID,
		nodes:    make(map[string]Node),
		children: make(map[string][]string),
	}
	root := Node{ID: rootID, Label: strings.TrimSpace(prompt), Depth: 0}
	state.insert(root)
	state.attach(root, s.labeler.Generate(ctx, prompt, 0))

	s.mu.Lock()
	s.maps[mapID] = state
	s.mu.Unlock()

	return state.snapshot(), nil
}

// Expand attaches generated children to a childless node and returns them.
// A node that already has children is returned unchanged, so repeated calls
// never duplicate.
func (s *Store) Expand(ctx context.Context, mapID int, nodeID string) ([]Node, error) {
	state, err := s.lookup(mapID)
	if err != nil {
		return nil, err
	}

	state.mu.Lock()
	node, ok := state.nodes[nodeID]
	existing := state.childrenOf(nodeID)
	state.mu.Unlock()
	if !ok {
		return nil, fmt.Errorf("%q in mindmap %d: %w", nodeID, mapID, ErrNodeNotFound)
	}
	if len(existing) > 0 {
		return existing, nil
	}

	// Concurrent expansions of the same node share one generation, which must
	// outlive the caller that started it. The label backend bounds its own time.
	key := fmt.Sprintf("%d/%s", mapID, nodeID)
	genCtx := context.WithoutCancel(ctx)
	result, _, _ := s.expansions.Do(key, func() (any, error) {
		labels := s.labeler.Generate(genCtx, node.Label, node.Depth)
		state.mu.Lock()
		defer state.mu.Unlock()
		return state.attach(node, labels), nil
	})
	return cloneNodes(result.([]Node)), nil
}

// Get returns a snapshot of one map with nodes in insertion order.
func (s *Store) Get(mapID int) (Mindmap, error) {
	state, err := s.lookup(mapID)
	if err != nil {
		return Mindmap{}, err
	}
	state.mu.Lock()
	defer state.mu.Unlock()
	return state.snapshot(), nil
}

// Children returns the existing children of a node.
func (s *Store) Children(mapID int, nodeID string) ([]Node, error) {
	state, err := s.lookup(mapID)
	if err != nil {
		return nil, err
	}
	state.mu.Lock()
	defer state.mu.Unlock()
	if _, ok := state.nodes[nodeID]; !ok {
		return nil, fmt.Errorf("%q in mindmap %d: %w", nodeID, mapID, ErrNodeNotFound)
	}
	return state.childrenOf(nodeID), nil
}

// List summarizes every map in creation order.
func (s *Store) List() []Summary {
	s.mu.RLock()
	states := make([]*mapState, 0, len(s.maps))
	for _, state := range s.maps {
		states = append(states, state)
	}
	s.mu.RUnlock()

	sort.Slice(states, func(i, j int) bool { return states[i].id < states[j].id })

	out := make([]Summary, 0, len(states))
	for _, state := range states {
		state.mu.Lock()
		out = append(out, Summary{
			MapID:     state.id,
			RootID:    state.rootID,
			Label:     state.nodes[state.rootID].Label,
			NodeCount: len(state.order),
		})
		state.mu.Unlock()
	}
	return out
}

func (s *Store) lookup(mapID int) (*mapState, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	state, ok := s.maps[mapID]
	if !ok {
		return nil, fmt.Errorf("id %d: %w", mapID, ErrMapNotFound)
	}
	return state, nil
}

// attach creates one child per label under parent unless parent already has
// children, in which case those are returned. Callers hold m.mu for maps that
// are already registered.
func (m *mapState) attach(parent Node, labels []string) []Node {
	if existing := m.childrenOf(parent.ID); len(existing) > 0 {
		return existing
	}
	created := make([]Node, 0, len(labels))
	for i, label := range labels {
		parentID := parent.ID
		child := Node{
			ID:       NodeID(m.id, parent.ID, i+1),
			Label:    label,
			ParentID: &parentID,
			Depth:    parent.Depth + 1,
		}
		m.insert(child)
		created = append(created, child)
	}
	return created
}

func (m *mapState) insert(node Node) {
	m.nodes[node.ID] = node
	m.order = append(m.order, node.ID)
	if node.ParentID != nil {
		m.children[*node.ParentID] = append(m.children[*node.ParentID], node.ID)
	}
}

func (m *mapState) childrenOf(nodeID string) []Node {
	ids := m.children[nodeID]
	out := make([]Node, 0, len(ids))
	for _, id := range ids {
		out = append(out, m.nodes[id])
	}
	return out
}

func (m *mapState) snapshot() Mindmap {
	nodes := make([]Node, 0, len(m.order))
	for _, id := range m.order {
		nodes = append(nodes, m.nodes[id])
	}
	return Mindmap{MapID: m.id, RootID: m.rootID, Nodes: nodes}
}

func cloneNodes(nodes []Node) []Node {
	out := make([]Node, len(nodes))
	copy(out, nodes)
	return out
}
