package topology

import (
	"testing"

	"github.com/nvandessel/netgen/internal/models"
)

// seqSource replays a fixed sequence of draws, cycling at the end.
type seqSource struct {
	vals []float64
	n    int
}

func (s *seqSource) Float64() float64 {
	v := s.vals[s.n%len(s.vals)]
	s.n++
	return v
}

func receptors(names ...string) []models.Receptor {
	out := make([]models.Receptor, len(names))
	for i, n := range names {
		out[i] = models.NewReceptor(n, nil)
	}
	return out
}

// sideModel is root{side{P}} with side of cardinality 2.
func sideModel(pattern string) *models.Model {
	p := models.NewPopulation("P", models.Params{"N": 100}, receptors("AMPA")...)
	return &models.Model{
		Dimensions: models.Dimensions{"root": 1, "side": 2},
		Channel: models.NewChannel("root", nil,
			models.NewChannel("side", []*models.Population{p}),
		),
		Connections: []models.ConnectionStatement{{
			Source:       "P",
			Target:       "P",
			Receptor:     models.Scalar("AMPA"),
			Pattern:      models.Scalar(models.Pattern{Type: pattern}),
			Connectivity: models.Scalar(1.0),
		}},
		TimeLimit: 100,
	}
}

func targets(t *testing.T, inst *models.Instance) []string {
	t.Helper()
	out := make([]string, len(inst.Tracts))
	for i, tr := range inst.Tracts {
		out[i] = tr.Target
	}
	return out
}

func equalStrings(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
