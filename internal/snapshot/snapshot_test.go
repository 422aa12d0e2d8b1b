package snapshot

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/nvandessel/netgen/internal/models"
	"github.com/nvandessel/netgen/internal/store"
	"github.com/nvandessel/netgen/internal/topology"
)

// populatedStore returns a memory store holding a small generated network:
// P copies in two sides connected all-to-all, one handle, one event.
func populatedStore(t *testing.T) store.GraphStore {
	t.Helper()
	p := models.NewPopulation("P", models.Params{"N": 50}, models.NewReceptor("AMPA", nil))
	m := &models.Model{
		Dimensions:  models.Dimensions{"side": 2},
		Channel:     models.NewChannel("side", []*models.Population{p}),
		Connections: []models.ConnectionStatement{{Source: "P", Target: "P", Receptor: models.Scalar("AMPA"), Name: "rec"}},
		Handles: []models.Handle{{
			Name: "stim", Target: "P", Path: []string{"side"}, Receptor: "AMPA", Connectivity: 10, Efficacy: 1,
		}},
		HandleEvents: []models.HandleEvent{{Label: "on", Time: 5, Handle: "stim", Indices: []int{0}, Freq: 3}},
		TimeLimit:    200,
	}
	res, err := topology.Generate(context.Background(), m, topology.Options{})
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	gs := store.NewInMemoryGraphStore()
	if _, err := store.SaveResult(context.Background(), gs, res, store.RunInfo{ID: "run-1", Model: "m.yaml", Seed: 7}); err != nil {
		t.Fatalf("SaveResult: %v", err)
	}
	return gs
}

func TestCapture(t *testing.T) {
	snap, err := Capture(context.Background(), populatedStore(t))
	if err != nil {
		t.Fatalf("Capture() error = %v", err)
	}
	// 2 populations + 2 handle copies, 4 tracts + 2 drives, 1 change + EndTrial.
	if len(snap.Nodes) != 4 || len(snap.Edges) != 6 || len(snap.Events) != 2 {
		t.Errorf("counts = %d nodes, %d edges, %d events", len(snap.Nodes), len(snap.Edges), len(snap.Events))
	}
	if snap.Run.ID != "run-1" || snap.Run.Seed != 7 {
		t.Errorf("run = %+v", snap.Run)
	}
}

func TestWriteRead_RoundTrip(t *testing.T) {
	ctx := context.Background()
	snap, err := Capture(ctx, populatedStore(t))
	if err != nil {
		t.Fatal(err)
	}

	path := filepath.Join(t.TempDir(), "snaps", "run.snap")
	header, err := Write(path, snap)
	if err != nil {
		t.Fatalf("Write() error = %v", err)
	}
	if header.RunID != "run-1" || header.NodeCount != 4 || header.EdgeCount != 6 || header.EventCount != 2 {
		t.Errorf("header = %+v", header)
	}
	if !strings.HasPrefix(header.Checksum, "sha256:") {
		t.Errorf("checksum = %s", header.Checksum)
	}

	onDisk, err := ReadHeader(path)
	if err != nil {
		t.Fatalf("ReadHeader() error = %v", err)
	}
	if onDisk.Checksum != header.Checksum {
		t.Errorf("ReadHeader checksum = %s, want %s", onDisk.Checksum, header.Checksum)
	}
	if err := VerifyChecksum(path); err != nil {
		t.Errorf("VerifyChecksum() error = %v", err)
	}

	got, err := Read(path)
	if err != nil {
		t.Fatalf("Read() error = %v", err)
	}
	if len(got.Edges) != len(snap.Edges) {
		t.Fatalf("edges = %d, want %d", len(got.Edges), len(snap.Edges))
	}
	for i := range got.Edges {
		if got.Edges[i] != snap.Edges[i] {
			t.Errorf("edge %d = %+v, want %+v", i, got.Edges[i], snap.Edges[i])
		}
	}
	if got.Events[len(got.Events)-1].Type != "EndTrial" {
		t.Errorf("last event = %+v", got.Events[len(got.Events)-1])
	}
}

func TestRead_DetectsTampering(t *testing.T) {
	snap, err := Capture(context.Background(), populatedStore(t))
	if err != nil {
		t.Fatal(err)
	}
	path := filepath.Join(t.TempDir(), "run.snap")
	if _, err := Write(path, snap); err != nil {
		t.Fatal(err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	data[len(data)-1] ^= 0xff
	if err := os.WriteFile(path, data, 0600); err != nil {
		t.Fatal(err)
	}

	if _, err := Read(path); err == nil || !strings.Contains(err.Error(), "checksum mismatch") {
		t.Errorf("Read() error = %v, want checksum mismatch", err)
	}
	if err := VerifyChecksum(path); err == nil {
		t.Error("VerifyChecksum() should fail on tampered file")
	}
}

func TestReadHeader_Errors(t *testing.T) {
	dir := t.TempDir()
	tests := []struct {
		name    string
		content string
		wantErr string
	}{
		{"not json", "hello\n", "parsing header"},
		{"wrong version", `{"version":9}` + "\n", "unsupported snapshot version"},
		{"no newline", `{"version":1}`, "reading header line"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(dir, strings.ReplaceAll(tt.name, " ", "_"))
			if err := os.WriteFile(path, []byte(tt.content), 0600); err != nil {
				t.Fatal(err)
			}
			_, err := ReadHeader(path)
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("ReadHeader() error = %v, want %q", err, tt.wantErr)
			}
		})
	}
}

func TestRestore(t *testing.T) {
	ctx := context.Background()
	snap, err := Capture(ctx, populatedStore(t))
	if err != nil {
		t.Fatal(err)
	}

	target, err := store.NewSQLiteGraphStore(filepath.Join(t.TempDir(), "netgen.db"))
	if err != nil {
		t.Fatal(err)
	}
	defer target.Close()
	target.AddNode(ctx, store.Node{ID: "old", Kind: "population", Content: map[string]interface{}{}})

	result, err := Restore(ctx, target, snap)
	if err != nil {
		t.Fatalf("Restore() error = %v", err)
	}
	if result.NodesRestored != 4 || result.EdgesRestored != 6 || result.EventsRestored != 2 {
		t.Errorf("result = %+v", result)
	}

	if n, _ := target.GetNode(ctx, "old"); n != nil {
		t.Error("restore should replace existing contents")
	}
	edges, _ := target.GetEdges(ctx, "", store.DirectionBoth, "")
	for i := range edges {
		if edges[i] != snap.Edges[i] {
			t.Errorf("edge %d = %+v, want %+v", i, edges[i], snap.Edges[i])
		}
	}
	info, err := store.LoadRunInfo(ctx, target)
	if err != nil || info.ID != "run-1" || info.Model != "m.yaml" {
		t.Errorf("run info = %+v, %v", info, err)
	}
}
