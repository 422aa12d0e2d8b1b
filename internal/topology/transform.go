package topology

import (
	"github.com/nvandessel/netgen/internal/constants"
	"github.com/nvandessel/netgen/internal/models"
)

// ApplyTransforms runs the transform operations in order. popscale
// multiplies every instance size by the factor and divides every template's
// connectivity by it; a connectivity pushed above 1 is clamped to 1 and its
// excess moved into efficacy. An efficacy operation multiplies the efficacy
// of every template whose display name matches. popscale may appear at
// most once.
func ApplyTransforms(instances []*models.Instance, templates []models.ConnectionTemplate, ops []models.Transform) error {
	scaled := false
	for _, op := range ops {
		switch op.Op {
		case constants.TransformPopScale:
			if scaled {
				return configErr(ErrInvalidTransform, op.Op, "applied more than once")
			}
			if op.Factor <= 0 {
				return configErr(ErrInvalidTransform, op.Op, "factor must be positive, got %g", op.Factor)
			}
			scaled = true
			popScale(instances, templates, op.Factor)

		case constants.TransformEfficacy:
			if op.Connection == "" {
				return configErr(ErrInvalidTransform, op.Op, "connection name is required")
			}
			for i := range templates {
				if templates[i].Name == op.Connection {
					templates[i].Efficacy *= op.Factor
				}
			}

		default:
			return configErr(ErrInvalidTransform, op.Op, "unknown operation")
		}
	}
	return nil
}

func popScale(instances []*models.Instance, templates []models.ConnectionTemplate, f float64) {
	for _, inst := range instances {
		if n, ok := inst.Data[constants.ParamSize]; ok {
			inst.Data[constants.ParamSize] = n * f
		}
	}
	for i := range templates {
		t := &templates[i]
		t.Connectivity /= f
		if t.Connectivity > 1 {
			t.Efficacy *= t.Connectivity
			t.Connectivity = 1
		}
	}
}
