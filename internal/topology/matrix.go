package topology

import (
	"github.com/nvandessel/netgen/internal/constants"
	"github.com/nvandessel/netgen/internal/models"
)

// RandSource supplies uniform draws in [0, 1) for the randbool pattern.
// *math/rand.Rand satisfies it.
type RandSource interface {
	Float64() float64
}

// BuildMatrix synthesizes the connectivity matrix of a pattern between two
// ancestry paths. Rows range over the innermost dimension of path1 and
// columns over the innermost dimension of path2; an empty path contributes
// a single index. randbool draws one value per cell in row-major order.
func BuildMatrix(dims models.Dimensions, pattern models.Pattern, path1, path2 []string, rnd RandSource) (models.Matrix, error) {
	if err := checkPattern(pattern, rnd); err != nil {
		return nil, err
	}
	rows, err := innerCardinality(dims, path1)
	if err != nil {
		return nil, err
	}
	cols, err := innerCardinality(dims, path2)
	if err != nil {
		return nil, err
	}

	m := make(models.Matrix, rows)
	for i := range m {
		m[i] = make([]float64, cols)
		for j := range m[i] {
			switch pattern.Type {
			case constants.PatternAll:
				m[i][j] = 1
			case constants.PatternSyn:
				if i == j {
					m[i][j] = 1
				}
			case constants.PatternAnti:
				if i != j {
					m[i][j] = 1
				}
			case constants.PatternRandBool:
				if rnd.Float64() < pattern.P {
					m[i][j] = 1
				}
			}
		}
	}
	return m, nil
}

func checkPattern(p models.Pattern, rnd RandSource) error {
	switch p.Type {
	case constants.PatternAll, constants.PatternSyn, constants.PatternAnti:
		return nil
	case constants.PatternRandBool:
		if p.P < 0 || p.P > 1 {
			return configErr(ErrInvalidPattern, p.String(), "probability must lie in [0, 1]")
		}
		if rnd == nil {
			return configErr(ErrInvalidPattern, p.String(), "no random source")
		}
		return nil
	default:
		return configErr(ErrInvalidPattern, p.String(), "unknown pattern tag")
	}
}

func innerCardinality(dims models.Dimensions, path []string) (int, error) {
	if len(path) == 0 {
		return 1, nil
	}
	n, ok := dims.Cardinality(path[0])
	if !ok {
		return 0, configErr(ErrMissingDimension, path[0], "dimension has no declared cardinality")
	}
	return n, nil
}
