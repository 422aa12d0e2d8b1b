package topology

import (
	"fmt"

	"github.com/nvandessel/netgen/internal/models"
)

// BuildPaths computes the ancestry path of every population template under
// root, innermost dimension first. A channel without a dimension name adds
// no path entry. Population names must be unique across the tree.
func BuildPaths(root *models.Channel) (map[string][]string, error) {
	paths := make(map[string][]string)
	if err := collectPaths(root, nil, paths); err != nil {
		return nil, err
	}
	return paths, nil
}

// collectPaths walks depth first. ancestors is the path of the parent
// channel, innermost first.
func collectPaths(ch *models.Channel, ancestors []string, paths map[string][]string) error {
	if ch == nil {
		return nil
	}
	path := ancestors
	if ch.Dim != "" {
		path = make([]string, 0, len(ancestors)+1)
		path = append(path, ch.Dim)
		path = append(path, ancestors...)
	}
	for _, pop := range ch.Populations {
		if _, dup := paths[pop.Name]; dup {
			return configErr(ErrDuplicateName, pop.Name, "population declared more than once")
		}
		paths[pop.Name] = append([]string(nil), path...)
	}
	for _, child := range ch.Channels {
		if err := collectPaths(child, path, paths); err != nil {
			return err
		}
	}
	return nil
}

// ExpandIndices returns the Cartesian product of index ranges along path,
// in path order with the last position varying fastest. An empty path
// yields a single empty tuple.
func ExpandIndices(dims models.Dimensions, path []string) ([][]int, error) {
	cards := make([]int, len(path))
	for i, dim := range path {
		n, ok := dims.Cardinality(dim)
		if !ok {
			return nil, configErr(ErrMissingDimension, dim, "dimension has no declared cardinality")
		}
		if n < 1 {
			return nil, configErr(ErrMissingDimension, dim, "cardinality must be positive, got %d", n)
		}
		cards[i] = n
	}

	out := [][]int{{}}
	for pos := len(cards) - 1; pos >= 0; pos-- {
		next := make([][]int, 0, len(out)*cards[pos])
		for i := 0; i < cards[pos]; i++ {
			for _, suffix := range out {
				tuple := make([]int, 0, len(suffix)+1)
				tuple = append(tuple, i)
				tuple = append(tuple, suffix...)
				next = append(next, tuple)
			}
		}
		out = next
	}
	return out, nil
}

// ExpandPopulations creates one instance per index tuple of every
// population template, visiting each channel's own populations before its
// descendants. Every instance gets independent copies of the template's
// parameters and receptors.
func ExpandPopulations(dims models.Dimensions, root *models.Channel, paths map[string][]string) ([]*models.Instance, error) {
	var (
		instances []*models.Instance
		err       error
	)
	root.Walk(func(ch *models.Channel) {
		for _, pop := range ch.Populations {
			if err != nil {
				return
			}
			path, ok := paths[pop.Name]
			if !ok {
				err = configErr(ErrUnknownName, pop.Name, "population has no computed path")
				return
			}
			var tuples [][]int
			tuples, err = ExpandIndices(dims, path)
			if err != nil {
				err = fmt.Errorf("population %s: %w", pop.Name, err)
				return
			}
			for _, idx := range tuples {
				instances = append(instances, &models.Instance{
					ID:        models.InstanceID(pop.Name, idx),
					Template:  pop.Name,
					Path:      append([]string(nil), path...),
					Indices:   idx,
					Data:      pop.Data.Clone(),
					DataOrder: append([]string(nil), pop.DataOrder...),
					Receptors: pop.Receptors.Clone(),
				})
			}
		}
	})
	if err != nil {
		return nil, err
	}
	return instances, nil
}

// innermost returns the index of the innermost path position, 0 for an
// empty tuple.
func innermost(indices []int) int {
	if len(indices) == 0 {
		return 0
	}
	return indices[0]
}
