// Package topology expands a hierarchical network model into population
// instances, connection tracts and stimulus events.
package topology

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand"
	"strings"

	"github.com/nvandessel/netgen/internal/constants"
	"github.com/nvandessel/netgen/internal/logging"
	"github.com/nvandessel/netgen/internal/models"
)

// Options configures a generation run.
type Options struct {
	// Rand feeds the randbool pattern. Nil seeds a stream with DefaultSeed.
	Rand RandSource

	// Logger receives stage summaries. Nil discards.
	Logger *slog.Logger

	// Trace receives one JSONL record per connection template. Nil disables.
	Trace *logging.TraceLogger

	// Strict turns references to unknown names into errors.
	Strict bool
}

// NewRand returns the deterministic randbool stream for seed.
func NewRand(seed int64) RandSource {
	return rand.New(rand.NewSource(seed))
}

// ConnectionStat summarizes one resolved connection template.
type ConnectionStat struct {
	Name     string `json:"name,omitempty"`
	Source   string `json:"source"`
	Target   string `json:"target"`
	Receptor string `json:"receptor"`
	Rows     int    `json:"rows"`
	Cols     int    `json:"cols"`
	Tracts   int    `json:"tracts"`
}

// Result is the output of one generation run.
type Result struct {
	Paths     map[string][]string         `json:"paths"`
	Instances []*models.Instance          `json:"instances"`
	Templates []models.ConnectionTemplate `json:"templates"`
	Handles   []*models.HandleInstance    `json:"handles"`
	Events    []models.Event              `json:"events"`
	Stats     []ConnectionStat            `json:"stats"`
	Issues    []Issue                     `json:"issues,omitempty"`
}

// TractCount returns the number of population to population tracts.
func (r *Result) TractCount() int {
	n := 0
	for _, inst := range r.Instances {
		n += len(inst.Tracts)
	}
	return n
}

// DriveCount returns the number of handle to population tracts.
func (r *Result) DriveCount() int {
	n := 0
	for _, h := range r.Handles {
		n += len(h.Tracts)
	}
	return n
}

// Instance returns the instance with the given identifier, or nil.
func (r *Result) Instance(id string) *models.Instance {
	for _, inst := range r.Instances {
		if inst.ID == id {
			return inst
		}
	}
	return nil
}

// Generate runs the whole pipeline: paths, instances, transforms, handles
// and their external drive, connections, events. The model is not mutated.
func Generate(ctx context.Context, m *models.Model, opts Options) (*Result, error) {
	log := logging.OrDiscard(opts.Logger)
	rnd := opts.Rand
	if rnd == nil {
		rnd = NewRand(constants.DefaultSeed)
	}

	issues := Validate(m)
	var fatal []string
	for _, is := range issues {
		if is.Fatal(opts.Strict) {
			fatal = append(fatal, is.String())
			continue
		}
		log.Warn("model issue", "subject", is.Subject, "message", is.Message)
	}
	if len(fatal) > 0 {
		return nil, fmt.Errorf("model is invalid:\n  %s", strings.Join(fatal, "\n  "))
	}

	paths, err := BuildPaths(m.Channel)
	if err != nil {
		return nil, err
	}
	instances, err := ExpandPopulations(m.Dimensions, m.Channel, paths)
	if err != nil {
		return nil, err
	}
	log.Info("expanded populations", "templates", len(paths), "instances", len(instances))

	templates, err := ExpandConnections(m.Connections)
	if err != nil {
		return nil, err
	}
	if err := ApplyTransforms(instances, templates, m.Transforms); err != nil {
		return nil, err
	}
	log.Debug("expanded connections", "statements", len(m.Connections), "templates", len(templates))

	handleTemplates := append([]models.Handle(nil), m.Handles...)
	handles, err := ExpandHandles(m.Dimensions, handleTemplates, paths, instances, rnd)
	if err != nil {
		return nil, err
	}
	if err := ApplyExternalDrive(instances, handles); err != nil {
		return nil, err
	}
	log.Info("expanded handles", "templates", len(handleTemplates), "instances", len(handles))

	bySource := make(map[string][]*models.Instance)
	for _, inst := range instances {
		bySource[inst.Template] = append(bySource[inst.Template], inst)
	}

	stats := make([]ConnectionStat, 0, len(templates))
	for i := range templates {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		t := &templates[i]
		stat := ConnectionStat{Name: t.Name, Source: t.Source, Target: t.Target, Receptor: t.Receptor}

		srcPath, srcOK := paths[t.Source]
		dstPath, dstOK := paths[t.Target]
		if !srcOK || !dstOK {
			log.Warn("connection references an unknown population", "connection", templateSubject(*t))
			stats = append(stats, stat)
			continue
		}

		matrix, err := BuildMatrix(m.Dimensions, t.Pattern, srcPath, dstPath, rnd)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", templateSubject(*t), err)
		}
		t.Matrix = matrix
		stat.Rows, stat.Cols = matrix.Rows(), matrix.Cols()

		for _, src := range bySource[t.Source] {
			tracts := ResolveTracts(*t, matrix, src, instances)
			src.Tracts = append(src.Tracts, tracts...)
			stat.Tracts += len(tracts)
			for _, tr := range tracts {
				log.Log(ctx, logging.LevelTrace, "tract", "source", src.ID, "target", tr.Target,
					"receptor", tr.Payload.Receptor, "connectivity", tr.Payload.Connectivity, "efficacy", tr.Payload.Efficacy)
			}
		}
		stats = append(stats, stat)

		log.Debug("resolved connection", "connection", templateSubject(*t), "pattern", t.Pattern.String(), "tracts", stat.Tracts)
		opts.Trace.Log(map[string]any{
			"step":       "connection",
			"connection": templateSubject(*t),
			"pattern":    t.Pattern.String(),
			"modulation": t.Modulation.String(),
			"rows":       stat.Rows,
			"cols":       stat.Cols,
			"tracts":     stat.Tracts,
		})
	}

	events := ResolveEvents(m.HandleEvents, handles, m.TimeLimit)
	res := &Result{
		Paths:     paths,
		Instances: instances,
		Templates: templates,
		Handles:   handles,
		Events:    events,
		Stats:     stats,
		Issues:    issues,
	}
	log.Info("generated topology", "instances", len(instances), "tracts", res.TractCount(),
		"drives", res.DriveCount(), "events", len(events))
	opts.Trace.Log(map[string]any{
		"step":      "summary",
		"instances": len(instances),
		"tracts":    res.TractCount(),
		"drives":    res.DriveCount(),
		"events":    len(events),
	})
	return res, nil
}
