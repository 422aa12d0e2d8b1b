package store

import (
	"context"
	"fmt"
	"sync"

	"github.com/nvandessel/netgen/internal/models"
)

// InMemoryGraphStore implements GraphStore for testing and one-shot runs.
type InMemoryGraphStore struct {
	mu     sync.RWMutex
	nodes  map[string]Node
	order  []string
	edges  []Edge
	events []models.Event
	meta   map[string]string
}

// NewInMemoryGraphStore creates a new in-memory store.
func NewInMemoryGraphStore() *InMemoryGraphStore {
	return &InMemoryGraphStore{
		nodes: make(map[string]Node),
		meta:  make(map[string]string),
	}
}

// AddNode adds a node to the store.
func (s *InMemoryGraphStore) AddNode(ctx context.Context, node Node) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if node.ID == "" {
		return "", fmt.Errorf("node ID is required")
	}

	if _, exists := s.nodes[node.ID]; !exists {
		s.order = append(s.order, node.ID)
	}
	s.nodes[node.ID] = node
	return node.ID, nil
}

// GetNode retrieves a node by ID. Returns nil if not found.
func (s *InMemoryGraphStore) GetNode(ctx context.Context, id string) (*Node, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	node, exists := s.nodes[id]
	if !exists {
		return nil, nil
	}
	return &node, nil
}

// QueryNodes returns nodes matching the predicate.
func (s *InMemoryGraphStore) QueryNodes(ctx context.Context, predicate map[string]interface{}) ([]Node, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	results := make([]Node, 0)
	for _, id := range s.order {
		node := s.nodes[id]
		if matchesPredicate(node, predicate) {
			results = append(results, node)
		}
	}
	return results, nil
}

// AddEdge adds an edge to the store.
func (s *InMemoryGraphStore) AddEdge(ctx context.Context, edge Edge) error {
	if edge.Source == "" || edge.Target == "" {
		return fmt.Errorf("edge source and target are required")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.edges = append(s.edges, edge)
	return nil
}

// GetEdges returns edges connected to a node.
func (s *InMemoryGraphStore) GetEdges(ctx context.Context, nodeID string, direction Direction, kind string) ([]Edge, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	results := make([]Edge, 0)
	for _, e := range s.edges {
		if edgeMatches(e, nodeID, direction, kind) {
			results = append(results, e)
		}
	}
	return results, nil
}

// AddEvent appends an event.
func (s *InMemoryGraphStore) AddEvent(ctx context.Context, event models.Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.events = append(s.events, event)
	return nil
}

// Events returns every stored event.
func (s *InMemoryGraphStore) Events(ctx context.Context) ([]models.Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return append([]models.Event(nil), s.events...), nil
}

// SetMeta records a metadata entry.
func (s *InMemoryGraphStore) SetMeta(ctx context.Context, key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.meta[key] = value
	return nil
}

// GetMeta returns a metadata entry, "" if unset.
func (s *InMemoryGraphStore) GetMeta(ctx context.Context, key string) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.meta[key], nil
}

// Clear empties the store.
func (s *InMemoryGraphStore) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.nodes = make(map[string]Node)
	s.order = nil
	s.edges = nil
	s.events = nil
	s.meta = make(map[string]string)
	return nil
}

// Close is a no-op for in-memory storage.
func (s *InMemoryGraphStore) Close() error {
	return nil
}
