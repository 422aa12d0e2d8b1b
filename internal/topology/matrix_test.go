package topology

import (
	"errors"
	"fmt"
	"testing"

	"github.com/nvandessel/netgen/internal/models"
)

func TestBuildMatrix_Patterns(t *testing.T) {
	dims := models.Dimensions{"side": 3}
	path := []string{"side"}

	tests := []struct {
		pattern string
		want    string
	}{
		{"all", "[[1 1 1] [1 1 1] [1 1 1]]"},
		{"syn", "[[1 0 0] [0 1 0] [0 0 1]]"},
		{"anti", "[[0 1 1] [1 0 1] [1 1 0]]"},
	}

	for _, tt := range tests {
		t.Run(tt.pattern, func(t *testing.T) {
			m, err := BuildMatrix(dims, models.Pattern{Type: tt.pattern}, path, path, nil)
			if err != nil {
				t.Fatalf("BuildMatrix: %v", err)
			}
			if got := fmt.Sprint(m); got != tt.want {
				t.Errorf("matrix = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestBuildMatrix_AntiComplementsSyn(t *testing.T) {
	dims := models.Dimensions{"a": 4}
	path := []string{"a"}
	syn, _ := BuildMatrix(dims, models.Pattern{Type: "syn"}, path, path, nil)
	anti, _ := BuildMatrix(dims, models.Pattern{Type: "anti"}, path, path, nil)
	for i := range syn {
		for j := range syn[i] {
			if syn[i][j]+anti[i][j] != 1 {
				t.Fatalf("cell (%d,%d): syn %v anti %v", i, j, syn[i][j], anti[i][j])
			}
		}
	}
}

func TestBuildMatrix_ShapeUsesInnermostDimension(t *testing.T) {
	dims := models.Dimensions{"brain": 1, "choices": 2, "side": 3}
	m, err := BuildMatrix(dims, models.Pattern{Type: "all"},
		[]string{"choices", "brain"}, []string{"side", "choices", "brain"}, nil)
	if err != nil {
		t.Fatalf("BuildMatrix: %v", err)
	}
	if m.Rows() != 2 || m.Cols() != 3 {
		t.Errorf("shape = %dx%d, want 2x3", m.Rows(), m.Cols())
	}

	m, err = BuildMatrix(dims, models.Pattern{Type: "all"}, nil, []string{"side"}, nil)
	if err != nil {
		t.Fatalf("BuildMatrix: %v", err)
	}
	if m.Rows() != 1 || m.Cols() != 3 {
		t.Errorf("empty path shape = %dx%d, want 1x3", m.Rows(), m.Cols())
	}
}

// Unequal cardinalities compare raw indices: only the leading diagonal
// block is populated.
func TestBuildMatrix_SynUnequalCardinalities(t *testing.T) {
	dims := models.Dimensions{"a": 2, "b": 3}
	m, err := BuildMatrix(dims, models.Pattern{Type: "syn"}, []string{"a"}, []string{"b"}, nil)
	if err != nil {
		t.Fatalf("BuildMatrix: %v", err)
	}
	if got := fmt.Sprint(m); got != "[[1 0 0] [0 1 0]]" {
		t.Errorf("matrix = %s", got)
	}
}

func TestBuildMatrix_RandBool(t *testing.T) {
	dims := models.Dimensions{"a": 2}
	path := []string{"a"}

	tests := []struct {
		name  string
		p     float64
		draws []float64
		want  string
	}{
		{"row-major draws", 0.5, []float64{0.1, 0.9, 0.6, 0.4}, "[[1 0] [0 1]]"},
		{"p zero", 0, []float64{0, 0.5}, "[[0 0] [0 0]]"},
		{"p one", 1, []float64{0.999, 0.2}, "[[1 1] [1 1]]"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			src := &seqSource{vals: tt.draws}
			m, err := BuildMatrix(dims, models.Pattern{Type: "randbool", P: tt.p}, path, path, src)
			if err != nil {
				t.Fatalf("BuildMatrix: %v", err)
			}
			if got := fmt.Sprint(m); got != tt.want {
				t.Errorf("matrix = %s, want %s", got, tt.want)
			}
			if src.n != 4 {
				t.Errorf("expected 4 draws, got %d", src.n)
			}
		})
	}
}

func TestBuildMatrix_Errors(t *testing.T) {
	dims := models.Dimensions{"a": 2}
	path := []string{"a"}

	tests := []struct {
		name    string
		pattern models.Pattern
		path1   []string
		rnd     RandSource
		want    error
	}{
		{"unknown tag", models.Pattern{Type: "ring"}, path, nil, ErrInvalidPattern},
		{"probability above one", models.Pattern{Type: "randbool", P: 1.5}, path, &seqSource{vals: []float64{0}}, ErrInvalidPattern},
		{"negative probability", models.Pattern{Type: "randbool", P: -0.1}, path, &seqSource{vals: []float64{0}}, ErrInvalidPattern},
		{"randbool without source", models.Pattern{Type: "randbool", P: 0.5}, path, nil, ErrInvalidPattern},
		{"missing dimension", models.Pattern{Type: "all"}, []string{"ghost"}, nil, ErrMissingDimension},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := BuildMatrix(dims, tt.pattern, tt.path1, path, tt.rnd)
			if !errors.Is(err, tt.want) {
				t.Fatalf("expected %v, got %v", tt.want, err)
			}
		})
	}
}
