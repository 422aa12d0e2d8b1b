package store

import (
	"context"
	"testing"
	"time"

	"github.com/nvandessel/netgen/internal/models"
	"github.com/nvandessel/netgen/internal/topology"
)

func sampleResult(t *testing.T) *topology.Result {
	t.Helper()
	p := models.NewPopulation("P", models.Params{"N": 100}, models.NewReceptor("AMPA", nil))
	m := &models.Model{
		Dimensions: models.Dimensions{"root": 1, "side": 2},
		Channel:    models.NewChannel("root", nil, models.NewChannel("side", []*models.Population{p})),
		Connections: []models.ConnectionStatement{{
			Source: "P", Target: "P", Receptor: models.Scalar("AMPA"),
			Pattern: models.Scalar(models.Pattern{Type: "anti"}), Name: "cross",
		}},
		Handles: []models.Handle{{
			Name: "stim", Target: "P", Path: []string{"side"}, Receptor: "AMPA", Connectivity: 50, Efficacy: 1.5,
		}},
		HandleEvents: []models.HandleEvent{{Label: "go", Time: 10, Handle: "stim", Indices: []int{-1}, Freq: 2}},
		TimeLimit:    500,
	}
	res, err := topology.Generate(context.Background(), m, topology.Options{})
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	return res
}

func TestSaveResult(t *testing.T) {
	res := sampleResult(t)

	for name, gs := range backends(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()

			// Stale content from an earlier run is replaced.
			gs.AddNode(ctx, Node{ID: "stale", Kind: "population", Content: map[string]interface{}{}})

			info, err := SaveResult(ctx, gs, res, RunInfo{Model: "model.yaml", Seed: 42})
			if err != nil {
				t.Fatalf("SaveResult() error = %v", err)
			}
			if info.ID == "" || info.CreatedAt.IsZero() {
				t.Errorf("run info not completed: %+v", info)
			}

			pops, _ := gs.QueryNodes(ctx, map[string]interface{}{"kind": "population"})
			if len(pops) != 2 || pops[0].ID != "P_0_0" {
				t.Fatalf("populations = %+v", pops)
			}
			if pops[0].Content["template"] != "P" {
				t.Errorf("content = %+v", pops[0].Content)
			}
			handles, _ := gs.QueryNodes(ctx, map[string]interface{}{"kind": "handle"})
			if len(handles) != 2 {
				t.Errorf("expected 2 handle nodes, got %d", len(handles))
			}

			tracts, _ := gs.GetEdges(ctx, "", DirectionBoth, "tract")
			if len(tracts) != 2 || tracts[0].Source != "P_0_0" || tracts[0].Target != "P_1_0" || tracts[0].Name != "cross" {
				t.Errorf("tracts = %+v", tracts)
			}
			drives, _ := gs.GetEdges(ctx, "", DirectionBoth, "drive")
			if len(drives) != 2 || drives[0].Connectivity != 50 {
				t.Errorf("drives = %+v", drives)
			}

			events, _ := gs.Events(ctx)
			if len(events) != len(res.Events) || events[len(events)-1].Type != "EndTrial" {
				t.Errorf("events = %+v", events)
			}

			loaded, err := LoadRunInfo(ctx, gs)
			if err != nil {
				t.Fatalf("LoadRunInfo() error = %v", err)
			}
			if loaded.ID != info.ID || loaded.Seed != 42 || loaded.Model != "model.yaml" {
				t.Errorf("LoadRunInfo() = %+v, want %+v", loaded, info)
			}
			if !loaded.CreatedAt.Equal(info.CreatedAt.Truncate(time.Second)) {
				t.Errorf("created_at = %v, want %v", loaded.CreatedAt, info.CreatedAt)
			}
		})
	}
}
