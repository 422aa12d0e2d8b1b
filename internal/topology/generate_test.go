package topology

import (
	"context"
	"errors"
	"math/rand"
	"strings"
	"testing"

	"github.com/nvandessel/netgen/internal/constants"
	"github.com/nvandessel/netgen/internal/models"
)

func TestGenerate_SynConnectsWithinSide(t *testing.T) {
	res, err := Generate(context.Background(), sideModel(constants.PatternSyn), Options{})
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if len(res.Instances) != 2 {
		t.Fatalf("expected 2 instances, got %d", len(res.Instances))
	}
	if res.TractCount() != 2 {
		t.Fatalf("expected 2 tracts, got %d", res.TractCount())
	}
	p0, p1 := res.Instance("P_0_0"), res.Instance("P_1_0")
	if p0 == nil || p1 == nil {
		t.Fatalf("missing instances: %+v", res.Instances)
	}
	if !equalStrings(targets(t, p0), []string{"P_0_0"}) || !equalStrings(targets(t, p1), []string{"P_1_0"}) {
		t.Errorf("syn should target self: %v %v", targets(t, p0), targets(t, p1))
	}
}

func TestGenerate_AntiConnectsAcrossSides(t *testing.T) {
	res, err := Generate(context.Background(), sideModel(constants.PatternAnti), Options{})
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if res.TractCount() != 2 {
		t.Fatalf("expected 2 tracts, got %d", res.TractCount())
	}
	if !equalStrings(targets(t, res.Instance("P_0_0")), []string{"P_1_0"}) ||
		!equalStrings(targets(t, res.Instance("P_1_0")), []string{"P_0_0"}) {
		t.Error("anti should target the other side only")
	}
	if len(res.Stats) != 1 || res.Stats[0].Tracts != 2 || res.Stats[0].Rows != 2 {
		t.Errorf("unexpected stats %+v", res.Stats)
	}
}

func TestGenerate_NestedReachesRootInEveryReplicate(t *testing.T) {
	gpi := models.NewPopulation("GPi", nil, receptors("GABA")...)
	stn := models.NewPopulation("STN", nil, receptors("AMPA")...)
	m := &models.Model{
		Dimensions: models.Dimensions{"brain": 1, "choices": 3},
		Channel: models.NewChannel("brain", []*models.Population{gpi},
			models.NewChannel("choices", []*models.Population{stn})),
		Connections: []models.ConnectionStatement{{
			Source: "STN", Target: "GPi", Receptor: models.Scalar("AMPA"),
		}},
	}
	res, err := Generate(context.Background(), m, Options{})
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	for _, id := range []string{"STN_0_0", "STN_1_0", "STN_2_0"} {
		if !equalStrings(targets(t, res.Instance(id)), []string{"GPi_0"}) {
			t.Errorf("%s targets %v, want [GPi_0]", id, targets(t, res.Instance(id)))
		}
	}
}

func TestGenerate_StimulusPipeline(t *testing.T) {
	m := sideModel(constants.PatternSyn)
	m.Handles = []models.Handle{{
		Name: "sensory", Target: "P", Path: []string{"side"},
		Receptor: "AMPA", Connectivity: 800, Efficacy: 2.1,
	}}
	m.HandleEvents = []models.HandleEvent{
		{Label: "right", Time: 50, Handle: "sensory", Indices: []int{1}, Freq: 3},
	}
	m.Transforms = []models.Transform{{Op: constants.TransformPopScale, Factor: 0.5}}

	res, err := Generate(context.Background(), m, Options{})
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if res.DriveCount() != 2 {
		t.Fatalf("expected 2 drive tracts, got %d", res.DriveCount())
	}

	// Handles are never rescaled.
	rec := res.Instance("P_1_0").Receptors.Get("AMPA")
	if rec.Params[constants.ReceptorMeanExtCon] != 800 || rec.Params[constants.ReceptorMeanExtEff] != 2.1 {
		t.Errorf("external drive = %v", rec.Params)
	}
	if res.Instance("P_0_0").Data["N"] != 50 {
		t.Errorf("popscale not applied: N = %v", res.Instance("P_0_0").Data["N"])
	}
	// Connectivity 1 / 0.5 = 2 clamps to 1 and doubles efficacy.
	tr := res.Instance("P_0_0").Tracts[0].Payload
	if tr.Connectivity != 1 || tr.Efficacy != 2 {
		t.Errorf("rescaled tract = %+v", tr)
	}

	if len(res.Events) != 2 {
		t.Fatalf("expected 2 events, got %+v", res.Events)
	}
	if res.Events[0].Population != "P_1_0" || res.Events[0].Time != 50 {
		t.Errorf("unexpected event %+v", res.Events[0])
	}
	if res.Events[1].Type != constants.EventEndTrial || res.Events[1].Time != 100 {
		t.Errorf("expected EndTrial at 100, got %+v", res.Events[1])
	}

	// The model's own templates are untouched.
	if m.Channel.Population("P").Data["N"] != 100 || m.Handles[0].Matrix != nil {
		t.Error("Generate mutated the model")
	}
}

func TestGenerate_RandBoolReproducible(t *testing.T) {
	build := func() *models.Model {
		m := sideModel(constants.PatternRandBool)
		m.Dimensions["side"] = 6
		m.Connections[0].Pattern = models.Scalar(models.Pattern{Type: constants.PatternRandBool, P: 0.5})
		return m
	}
	run := func(seed int64) []string {
		res, err := Generate(context.Background(), build(), Options{Rand: rand.New(rand.NewSource(seed))})
		if err != nil {
			t.Fatalf("Generate: %v", err)
		}
		var out []string
		for _, inst := range res.Instances {
			out = append(out, inst.ID+":"+strings.Join(targets(t, inst), ","))
		}
		return out
	}
	if !equalStrings(run(7), run(7)) {
		t.Error("same seed produced different topologies")
	}
}

func TestGenerate_UnknownNames(t *testing.T) {
	m := sideModel(constants.PatternAll)
	m.Connections = append(m.Connections, models.ConnectionStatement{
		Source: "P", Target: "Ghost", Receptor: models.Scalar("AMPA"),
	})

	res, err := Generate(context.Background(), m, Options{})
	if err != nil {
		t.Fatalf("permissive Generate: %v", err)
	}
	if len(res.Stats) != 2 || res.Stats[1].Tracts != 0 {
		t.Errorf("unknown target should resolve to zero tracts: %+v", res.Stats)
	}
	if len(res.Issues) == 0 {
		t.Error("expected the unknown target to be reported as an issue")
	}

	if _, err := Generate(context.Background(), m, Options{Strict: true}); err == nil {
		t.Error("strict Generate should fail on unknown names")
	}
}

func TestGenerate_ConfigErrors(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*models.Model)
		want   string
	}{
		{"missing dimension", func(m *models.Model) { delete(m.Dimensions, "side") }, "missing dimension"},
		{"malformed broadcast", func(m *models.Model) {
			m.Connections[0].Receptor = models.List("AMPA", "AMPA")
			m.Connections[0].Efficacy = models.List(1.0, 2.0, 3.0)
		}, "malformed broadcast"},
		{"bad transform", func(m *models.Model) {
			m.Transforms = []models.Transform{{Op: "popscale", Factor: 0}}
		}, "invalid transform"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := sideModel(constants.PatternAll)
			tt.mutate(m)
			_, err := Generate(context.Background(), m, Options{})
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Fatalf("expected error containing %q, got %v", tt.want, err)
			}
		})
	}
}

func TestGenerate_Canceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := Generate(ctx, sideModel(constants.PatternAll), Options{})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}
