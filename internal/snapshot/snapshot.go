// Package snapshot captures a stored generation run into a single
// checksummed file and restores it into any GraphStore.
package snapshot

import (
	"context"
	"fmt"
	"time"

	"github.com/nvandessel/netgen/internal/models"
	"github.com/nvandessel/netgen/internal/store"
)

// Snapshot is the payload of a snapshot file: every node, edge and event
// of one generation run plus its run metadata.
type Snapshot struct {
	CreatedAt time.Time      `json:"created_at"`
	Run       store.RunInfo  `json:"run"`
	Nodes     []store.Node   `json:"nodes"`
	Edges     []store.Edge   `json:"edges"`
	Events    []models.Event `json:"events"`
}

// Capture reads the full contents of gs.
func Capture(ctx context.Context, gs store.GraphStore) (*Snapshot, error) {
	run, err := store.LoadRunInfo(ctx, gs)
	if err != nil {
		return nil, fmt.Errorf("failed to read run info: %w", err)
	}

	nodes, err := gs.QueryNodes(ctx, map[string]interface{}{})
	if err != nil {
		return nil, fmt.Errorf("failed to query nodes: %w", err)
	}

	edges, err := gs.GetEdges(ctx, "", store.DirectionBoth, "")
	if err != nil {
		return nil, fmt.Errorf("failed to get edges: %w", err)
	}

	events, err := gs.Events(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get events: %w", err)
	}

	return &Snapshot{
		CreatedAt: time.Now().UTC(),
		Run:       run,
		Nodes:     nodes,
		Edges:     edges,
		Events:    events,
	}, nil
}

// RestoreResult contains statistics about the restore operation.
type RestoreResult struct {
	NodesRestored  int `json:"nodes_restored"`
	EdgesRestored  int `json:"edges_restored"`
	EventsRestored int `json:"events_restored"`
}

// Restore replaces the contents of gs with snap.
func Restore(ctx context.Context, gs store.GraphStore, snap *Snapshot) (*RestoreResult, error) {
	if err := gs.Clear(ctx); err != nil {
		return nil, fmt.Errorf("failed to clear store: %w", err)
	}

	result := &RestoreResult{}
	for _, n := range snap.Nodes {
		if _, err := gs.AddNode(ctx, n); err != nil {
			return nil, fmt.Errorf("failed to restore node %s: %w", n.ID, err)
		}
		result.NodesRestored++
	}
	for _, e := range snap.Edges {
		if err := gs.AddEdge(ctx, e); err != nil {
			return nil, fmt.Errorf("failed to restore edge %s->%s: %w", e.Source, e.Target, err)
		}
		result.EdgesRestored++
	}
	for _, ev := range snap.Events {
		if err := gs.AddEvent(ctx, ev); err != nil {
			return nil, fmt.Errorf("failed to restore event at %g: %w", ev.Time, err)
		}
		result.EventsRestored++
	}
	if err := store.SaveRunInfo(ctx, gs, snap.Run); err != nil {
		return nil, fmt.Errorf("failed to restore run info: %w", err)
	}
	return result, nil
}
