// Package search finds mindmap nodes by label.
package search

import (
	"crypto/sha1"
	"encoding/hex"
	"fmt"
)

const (
	defaultLimit = 20
	maxLimit     = 100
)

// Result is a single search hit returned to the caller.
type Result struct {
	MapID   int    `json:"map_id"`
	NodeID  string `json:"node_id"`
	Label   string `json:"label"`
	Depth   int    `json:"depth"`
	Snippet string `json:"snippet"`
}

// Query describes a search request.
type Query struct {
	Text  string
	MapID int // 0 = all maps
	Limit int
}

func (q Query) limit() int {
	switch {
	case q.Limit <= 0:
		return defaultLimit
	case q.Limit > maxLimit:
		return maxLimit
	default:
		return q.Limit
	}
}

// Response is the envelope returned by the search endpoint.
type Response struct {
	Results []Result `json:"results"`
	Total   int      `json:"total"`
	Query   string   `json:"query"`
}

// Searcher can execute a label search.
type Searcher interface {
	Search(q Query) ([]Result, int, error)
	Healthy() bool
}

// NodeRecord is the data we index for a mindmap node.
type NodeRecord struct {
	ID     string `json:"id"`
	MapID  int    `json:"mapId"`
	NodeID string `json:"nodeId"`
	Label  string `json:"label"`
	Depth  int    `json:"depth"`
}

// NewNodeRecord builds an index record. Node ids contain ':' and '.', which
// Meilisearch rejects in primary keys, so the record id is a digest.
func NewNodeRecord(mapID int, nodeID, label string, depth int) NodeRecord {
	sum := sha1.Sum([]byte(fmt.Sprintf("%d/%s", mapID, nodeID)))
	return NodeRecord{
		ID:     hex.EncodeToString(sum[:]),
		MapID:  mapID,
		NodeID: nodeID,
		Label:  label,
		Depth:  depth,
	}
}
