package topology

import (
	"github.com/nvandessel/netgen/internal/constants"
	"github.com/nvandessel/netgen/internal/models"
)

// Located is anything with an ancestry path and index tuple: population
// and handle instances.
type Located interface {
	Location() (path []string, indices []int)
}

// ResolveTracts emits the tracts of tmpl from source to every candidate
// whose template is tmpl.Target and whose outer replicates align with the
// source. The innermost indices of both sides select the matrix cell;
// a zero cell emits nothing.
func ResolveTracts(tmpl models.ConnectionTemplate, matrix models.Matrix, source Located, candidates []*models.Instance) []models.Tract {
	srcPath, srcIdx := source.Location()

	var tracts []models.Tract
	for _, target := range candidates {
		if target.Template != tmpl.Target {
			continue
		}
		if !aligned(srcPath, srcIdx, target.Path, target.Indices) {
			continue
		}
		cell := matrix.At(innermost(srcIdx), innermost(target.Indices))
		if cell <= 0 {
			continue
		}

		payload := models.TractPayload{
			Receptor:     tmpl.Receptor,
			Connectivity: tmpl.Connectivity,
			Efficacy:     tmpl.Efficacy,
			STFT:         tmpl.STFT,
			STFP:         tmpl.STFP,
		}
		switch tmpl.Modulation.OrDefault() {
		case constants.ModulationCon:
			payload.Connectivity *= cell
		case constants.ModulationEff:
			payload.Efficacy *= cell
		}
		tracts = append(tracts, models.Tract{Target: target.ID, Name: tmpl.Name, Payload: payload})
	}
	return tracts
}

// aligned compares two locations from the outermost position inward,
// excluding the innermost level. Scanning stops at the first position
// where the dimension names differ; equal names with unequal indices mean
// the two sides live in different replicates.
func aligned(p1 []string, idx1 []int, p2 []string, idx2 []int) bool {
	i1, i2 := len(idx1)-1, len(idx2)-1
	for i1 >= 0 && i2 >= 0 && (i1 > 0 || i2 > 0) {
		if p1[i1] != p2[i2] {
			return true
		}
		if idx1[i1] != idx2[i2] {
			return false
		}
		i1--
		i2--
	}
	return true
}
