// Package store defines the GraphStore interface for persisting and
// querying a generated network topology.
package store

import (
	"context"

	"github.com/nvandessel/netgen/internal/models"
)

// Node represents a population or handle instance.
type Node struct {
	ID       string                 `json:"id"`
	Kind     string                 `json:"kind"` // "population", "handle"
	Content  map[string]interface{} `json:"content"`
	Metadata map[string]interface{} `json:"metadata,omitempty"`
}

// Edge represents a resolved tract between two nodes.
type Edge struct {
	Source       string  `json:"source"`
	Target       string  `json:"target"`
	Kind         string  `json:"kind"` // "tract", "drive"
	Name         string  `json:"name,omitempty"`
	Receptor     string  `json:"receptor"`
	Connectivity float64 `json:"connectivity"`
	Efficacy     float64 `json:"efficacy"`
	STFT         float64 `json:"stft,omitempty"`
	STFP         float64 `json:"stfp,omitempty"`
}

// Direction specifies edge traversal direction.
type Direction string

const (
	DirectionOutbound Direction = "outbound" // Follow edges from source to target
	DirectionInbound  Direction = "inbound"  // Follow edges from target to source
	DirectionBoth     Direction = "both"     // Follow edges in both directions
)

// GraphStore stores the nodes, edges and events of one generation run.
// Nodes, edges and events are returned in insertion order.
type GraphStore interface {
	// Node operations. Adding an existing ID replaces the node in place.
	AddNode(ctx context.Context, node Node) (string, error)
	GetNode(ctx context.Context, id string) (*Node, error)

	// QueryNodes queries nodes by predicate.
	// Predicate is a map of field names to required values.
	// "kind" and "id" match the node fields; other keys match content, then metadata.
	// e.g., {"kind": "population", "template": "STN"}
	QueryNodes(ctx context.Context, predicate map[string]interface{}) ([]Node, error)

	// Edge operations. An empty nodeID matches every edge; an empty kind
	// matches every kind.
	AddEdge(ctx context.Context, edge Edge) error
	GetEdges(ctx context.Context, nodeID string, direction Direction, kind string) ([]Edge, error)

	// Event operations
	AddEvent(ctx context.Context, event models.Event) error
	Events(ctx context.Context) ([]models.Event, error)

	// Run metadata
	SetMeta(ctx context.Context, key, value string) error
	GetMeta(ctx context.Context, key string) (string, error)

	// Clear removes every node, edge, event and metadata entry.
	Clear(ctx context.Context) error
	Close() error
}

// matchesPredicate checks if a node matches a predicate.
func matchesPredicate(node Node, predicate map[string]interface{}) bool {
	for key, required := range predicate {
		var actual interface{}

		switch key {
		case "kind":
			actual = node.Kind
		case "id":
			actual = node.ID
		default:
			// Check content first, then metadata
			if val, ok := node.Content[key]; ok {
				actual = val
			} else if val, ok := node.Metadata[key]; ok {
				actual = val
			}
		}

		if actual != required {
			return false
		}
	}
	return true
}

// edgeMatches checks an edge against a node, direction and kind filter.
func edgeMatches(e Edge, nodeID string, direction Direction, kind string) bool {
	if kind != "" && e.Kind != kind {
		return false
	}
	if nodeID == "" {
		return true
	}
	switch direction {
	case DirectionOutbound:
		return e.Source == nodeID
	case DirectionInbound:
		return e.Target == nodeID
	case DirectionBoth:
		return e.Source == nodeID || e.Target == nodeID
	}
	return false
}
