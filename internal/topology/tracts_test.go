package topology

import (
	"testing"

	"github.com/nvandessel/netgen/internal/constants"
	"github.com/nvandessel/netgen/internal/models"
)

func inst(name string, path []string, idx ...int) *models.Instance {
	return &models.Instance{ID: models.InstanceID(name, idx), Template: name, Path: path, Indices: idx}
}

func TestResolveTracts_Alignment(t *testing.T) {
	outer := []string{"side", "choices"}
	tests := []struct {
		name   string
		source *models.Instance
		target *models.Instance
		want   bool
	}{
		{"same outer replicate", inst("A", outer, 0, 1), inst("B", outer, 1, 1), true},
		{"different outer replicate", inst("A", outer, 0, 0), inst("B", outer, 0, 1), false},
		{"root-level target in same replicate", inst("A", outer, 0, 1), inst("B", []string{"choices"}, 1), true},
		{"root-level target in other replicate", inst("A", outer, 0, 1), inst("B", []string{"choices"}, 0), false},
		{"different dimension names stop the scan", inst("A", []string{"side", "brain"}, 0, 0), inst("B", []string{"side", "choices"}, 0, 1), true},
		{"single level never compared", inst("A", []string{"side"}, 0), inst("B", []string{"side"}, 1), true},
		{"empty source path", inst("A", nil), inst("B", []string{"side"}, 0), true},
	}

	all := models.Matrix{{1, 1}, {1, 1}}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tmpl := models.ConnectionTemplate{Source: "A", Target: "B", Receptor: "AMPA", Connectivity: 1, Efficacy: 1}
			tracts := ResolveTracts(tmpl, all, tt.source, []*models.Instance{tt.target})
			if got := len(tracts) == 1; got != tt.want {
				t.Errorf("connected = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestResolveTracts_DifferentReplicateIgnoresMatrix(t *testing.T) {
	path := []string{"side", "choices"}
	src := inst("A", path, 0, 0)
	candidates := []*models.Instance{inst("B", path, 0, 1), inst("B", path, 1, 1)}
	tmpl := models.ConnectionTemplate{Source: "A", Target: "B", Receptor: "AMPA", Connectivity: 1, Efficacy: 1}
	if tracts := ResolveTracts(tmpl, models.Matrix{{1, 1}, {1, 1}}, src, candidates); len(tracts) != 0 {
		t.Errorf("expected no tracts across replicates, got %+v", tracts)
	}
}

func TestResolveTracts_Modulation(t *testing.T) {
	path := []string{"side"}
	src := inst("A", path, 0)
	candidates := []*models.Instance{inst("B", path, 0), inst("B", path, 1), inst("C", path, 0)}
	matrix := models.Matrix{{0.5, 0}}

	tests := []struct {
		mod     constants.Modulation
		wantCon float64
		wantEff float64
	}{
		{constants.ModulationCon, 0.4 * 0.5, 2},
		{constants.ModulationEff, 0.4, 2 * 0.5},
		{"", 0.4 * 0.5, 2},
	}

	for _, tt := range tests {
		t.Run(string(tt.mod), func(t *testing.T) {
			tmpl := models.ConnectionTemplate{
				Source: "A", Target: "B", Receptor: "NMDA", Name: "excite",
				Connectivity: 0.4, Efficacy: 2, STFT: 3, STFP: 0.2, Modulation: tt.mod,
			}
			tracts := ResolveTracts(tmpl, matrix, src, candidates)
			if len(tracts) != 1 {
				t.Fatalf("expected 1 tract (zero cell and other template skipped), got %d", len(tracts))
			}
			tr := tracts[0]
			if tr.Target != "B_0" || tr.Name != "excite" {
				t.Errorf("unexpected tract %+v", tr)
			}
			p := tr.Payload
			if p.Connectivity != tt.wantCon || p.Efficacy != tt.wantEff {
				t.Errorf("connectivity/efficacy = %v/%v, want %v/%v", p.Connectivity, p.Efficacy, tt.wantCon, tt.wantEff)
			}
			if p.Receptor != "NMDA" || p.STFT != 3 || p.STFP != 0.2 {
				t.Errorf("payload not copied verbatim: %+v", p)
			}
		})
	}
}
