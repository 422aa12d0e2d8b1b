package store

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/nvandessel/netgen/internal/constants"
	"github.com/nvandessel/netgen/internal/models"
	"github.com/nvandessel/netgen/internal/topology"
)

// Metadata keys written by SaveResult.
const (
	MetaRunID     = "run_id"
	MetaModel     = "model"
	MetaSeed      = "seed"
	MetaCreatedAt = "created_at"
)

// RunInfo identifies one generation run.
type RunInfo struct {
	ID        string    `json:"id"`
	Model     string    `json:"model"`
	Seed      int64     `json:"seed"`
	CreatedAt time.Time `json:"created_at"`
}

type populationContent struct {
	Template  string           `json:"template"`
	Path      []string         `json:"path"`
	Indices   []int            `json:"indices"`
	Data      models.Params    `json:"data"`
	Receptors models.Receptors `json:"receptors"`
}

type handleContent struct {
	Handle  string   `json:"handle"`
	Path    []string `json:"path"`
	Indices []int    `json:"indices"`
}

// SaveResult replaces the contents of gs with a generation result: one
// node per population and handle instance, one edge per tract, the event
// sequence and the run metadata. A missing run ID or creation time is
// filled in; the completed RunInfo is returned.
func SaveResult(ctx context.Context, gs GraphStore, res *topology.Result, info RunInfo) (RunInfo, error) {
	if info.ID == "" {
		info.ID = uuid.NewString()
	}
	if info.CreatedAt.IsZero() {
		info.CreatedAt = time.Now().UTC()
	}

	if err := gs.Clear(ctx); err != nil {
		return info, fmt.Errorf("clearing store: %w", err)
	}

	for _, inst := range res.Instances {
		content, err := toContent(populationContent{
			Template:  inst.Template,
			Path:      inst.Path,
			Indices:   inst.Indices,
			Data:      inst.Data,
			Receptors: inst.Receptors,
		})
		if err != nil {
			return info, fmt.Errorf("encoding %s: %w", inst.ID, err)
		}
		if _, err := gs.AddNode(ctx, Node{ID: inst.ID, Kind: constants.NodeKindPopulation, Content: content}); err != nil {
			return info, err
		}
	}
	for _, hi := range res.Handles {
		content, err := toContent(handleContent{Handle: hi.Handle, Path: hi.Path, Indices: hi.Indices})
		if err != nil {
			return info, fmt.Errorf("encoding %s: %w", hi.ID, err)
		}
		if _, err := gs.AddNode(ctx, Node{ID: hi.ID, Kind: constants.NodeKindHandle, Content: content}); err != nil {
			return info, err
		}
	}

	for _, inst := range res.Instances {
		for _, tr := range inst.Tracts {
			if err := gs.AddEdge(ctx, edgeFromTract(inst.ID, constants.EdgeKindTract, tr)); err != nil {
				return info, err
			}
		}
	}
	for _, hi := range res.Handles {
		for _, tr := range hi.Tracts {
			if err := gs.AddEdge(ctx, edgeFromTract(hi.ID, constants.EdgeKindDrive, tr)); err != nil {
				return info, err
			}
		}
	}

	for _, ev := range res.Events {
		if err := gs.AddEvent(ctx, ev); err != nil {
			return info, err
		}
	}

	if err := SaveRunInfo(ctx, gs, info); err != nil {
		return info, err
	}
	return info, nil
}

// SaveRunInfo writes the run metadata keys.
func SaveRunInfo(ctx context.Context, gs GraphStore, info RunInfo) error {
	meta := map[string]string{
		MetaRunID:     info.ID,
		MetaModel:     info.Model,
		MetaSeed:      strconv.FormatInt(info.Seed, 10),
		MetaCreatedAt: info.CreatedAt.Format(time.RFC3339),
	}
	for k, v := range meta {
		if err := gs.SetMeta(ctx, k, v); err != nil {
			return err
		}
	}
	return nil
}

// LoadRunInfo reads the run metadata written by SaveResult.
func LoadRunInfo(ctx context.Context, gs GraphStore) (RunInfo, error) {
	var info RunInfo
	var err error
	if info.ID, err = gs.GetMeta(ctx, MetaRunID); err != nil {
		return info, err
	}
	if info.Model, err = gs.GetMeta(ctx, MetaModel); err != nil {
		return info, err
	}
	seed, err := gs.GetMeta(ctx, MetaSeed)
	if err != nil {
		return info, err
	}
	if seed != "" {
		if info.Seed, err = strconv.ParseInt(seed, 10, 64); err != nil {
			return info, fmt.Errorf("invalid stored seed %q: %w", seed, err)
		}
	}
	created, err := gs.GetMeta(ctx, MetaCreatedAt)
	if err != nil {
		return info, err
	}
	if created != "" {
		if info.CreatedAt, err = time.Parse(time.RFC3339, created); err != nil {
			return info, fmt.Errorf("invalid stored creation time %q: %w", created, err)
		}
	}
	return info, nil
}

func edgeFromTract(source, kind string, tr models.Tract) Edge {
	return Edge{
		Source:       source,
		Target:       tr.Target,
		Kind:         kind,
		Name:         tr.Name,
		Receptor:     tr.Payload.Receptor,
		Connectivity: tr.Payload.Connectivity,
		Efficacy:     tr.Payload.Efficacy,
		STFT:         tr.Payload.STFT,
		STFP:         tr.Payload.STFP,
	}
}

// toContent converts v into the JSON-decoded map form both backends return.
func toContent(v interface{}) (map[string]interface{}, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	var m map[string]interface{}
	if err := json.Unmarshal(b, &m); err != nil {
		return nil, err
	}
	return m, nil
}
