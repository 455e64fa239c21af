// Package mindmap holds in-memory mindmaps: trees of short labeled nodes
// grown by expanding childless nodes.
package mindmap

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound is returned for unknown map or node ids.
	ErrNotFound     = errors.New("not found")
	ErrMapNotFound  = fmt.Errorf("mindmap %w", ErrNotFound)
	ErrNodeNotFound = fmt.Errorf("node %w", ErrNotFound)
)

type Node struct {
	ID       string  `json:"id"`
	Label    string  `json:"label"`
	ParentID *string `json:"parent_id"`
	Depth    int     `json:"depth"`
}

// IsRoot reports whether the node has no parent.
func (n Node) IsRoot() bool {
	return n.ParentID == nil
}

type Mindmap struct {
	MapID  int    `json:"map_id"`
	RootID string `json:"root_id"`
	Nodes  []Node `json:"nodes"`
}

// Root returns the root node of the map.
func (m Mindmap) Root() Node {
	for _, node := range m.Nodes {
		if node.ID == m.RootID {
			return node
		}
	}
	return Node{ID: m.RootID}
}

// Children returns the direct children of nodeID in insertion order.
func (m Mindmap) Children(nodeID string) []Node {
	var out []Node
	for _, node := range m.Nodes {
		if node.ParentID != nil && *node.ParentID == nodeID {
			out = append(out, node)
		}
	}
	return out
}

type Summary struct {
	MapID     int    `json:"map_id"`
	RootID    string `json:"root_id"`
	Label     string `json:"label"`
	NodeCount int    `json:"node_count"`
}

// NodeID derives a node id from its map, parent and 1-based sibling index.
// The root (empty parentID) is "m{map}:root"; every other node nests its
// parent's full id: "m{map}:{parent}.{index}".
func NodeID(mapID int, parentID string, siblingIndex int) string {
	if parentID == "" {
		return fmt.Sprintf("m%d:root", mapID)
	}
	return fmt.Sprintf("m%d:%s.%d", mapID, parentID, siblingIndex)
}
