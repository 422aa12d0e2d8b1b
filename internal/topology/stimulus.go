package topology

import (
	"fmt"
	"sort"

	"github.com/nvandessel/netgen/internal/constants"
	"github.com/nvandessel/netgen/internal/models"
)

// ExpandHandles expands every handle template over its own path and
// resolves the tracts of each handle instance into the population
// instances. A handle whose target population is unknown still expands,
// with no tracts. The handles' matrices are attached to the slice entries.
func ExpandHandles(dims models.Dimensions, handles []models.Handle, paths map[string][]string, instances []*models.Instance, rnd RandSource) ([]*models.HandleInstance, error) {
	seen := make(map[string]bool, len(handles))
	var out []*models.HandleInstance
	for i := range handles {
		h := &handles[i]
		if seen[h.Name] {
			return nil, configErr(ErrDuplicateName, "handle "+h.Name, "handle declared more than once")
		}
		seen[h.Name] = true

		tuples, err := ExpandIndices(dims, h.Path)
		if err != nil {
			return nil, fmt.Errorf("handle %s: %w", h.Name, err)
		}

		targetPath, known := paths[h.Target]
		if known {
			m, err := BuildMatrix(dims, h.Template().Pattern, h.Path, targetPath, rnd)
			if err != nil {
				return nil, fmt.Errorf("handle %s: %w", h.Name, err)
			}
			h.Matrix = m
		}
		tmpl := h.Template()

		for _, idx := range tuples {
			hi := &models.HandleInstance{
				ID:      models.InstanceID(h.Name, idx),
				Handle:  h.Name,
				Path:    append([]string(nil), h.Path...),
				Indices: idx,
			}
			if known {
				hi.Tracts = ResolveTracts(tmpl, h.Matrix, hi, instances)
			}
			out = append(out, hi)
		}
	}
	return out, nil
}

// ApplyExternalDrive writes every handle tract into its target instance:
// the tract's receptor gets MeanExtCon and MeanExtEff set to the resolved
// connectivity and efficacy. A target lacking the receptor is an error.
func ApplyExternalDrive(instances []*models.Instance, handles []*models.HandleInstance) error {
	byID := make(map[string]*models.Instance, len(instances))
	for _, inst := range instances {
		byID[inst.ID] = inst
	}
	for _, hi := range handles {
		for _, tract := range hi.Tracts {
			inst, ok := byID[tract.Target]
			if !ok {
				return configErr(ErrUnknownName, "handle "+hi.ID, "tract target %s does not exist", tract.Target)
			}
			rec := inst.Receptors.Get(tract.Payload.Receptor)
			if rec == nil {
				return configErr(ErrUnknownReceptor, "handle "+hi.ID,
					"population %s has no receptor %q", inst.ID, tract.Payload.Receptor)
			}
			if rec.Params == nil {
				rec.Params = models.Params{}
			}
			rec.Params[constants.ReceptorMeanExtCon] = tract.Payload.Connectivity
			rec.Params[constants.ReceptorMeanExtEff] = tract.Payload.Efficacy
		}
	}
	return nil
}

// ResolveEvents turns handle events into population events. Each handle
// instance with a matching name and index filter contributes one
// ChangeExtFreq event per tract. The filter is compared position by
// position as far as both the filter and the handle indices reach; -1
// matches any index. Events are sorted by time, stable for ties, and a
// final EndTrial event is appended at timeLimit.
func ResolveEvents(events []models.HandleEvent, handles []*models.HandleInstance, timeLimit float64) []models.Event {
	var out []models.Event
	for _, he := range events {
		for _, hi := range handles {
			if hi.Handle != he.Handle || !matchesFilter(he.Indices, hi.Indices) {
				continue
			}
			for _, tract := range hi.Tracts {
				out = append(out, models.Event{
					Time:       he.Time,
					Type:       constants.EventChangeExtFreq,
					Label:      he.Label,
					Population: tract.Target,
					Receptor:   tract.Payload.Receptor,
					Freq:       he.Freq,
				})
			}
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Time < out[j].Time })
	return append(out, models.Event{Time: timeLimit, Type: constants.EventEndTrial})
}

func matchesFilter(filter, indices []int) bool {
	for i := 0; i < len(filter) && i < len(indices); i++ {
		if filter[i] != -1 && filter[i] != indices[i] {
			return false
		}
	}
	return true
}
