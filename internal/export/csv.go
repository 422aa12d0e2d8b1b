package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/nvandessel/netgen/internal/models"
)

// WriteCSV writes one row per tract: a counter-prefixed connection name,
// the source instance and the target instance.
func WriteCSV(w io.Writer, instances []*models.Instance) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"connection name", "from node", "to node"}); err != nil {
		return fmt.Errorf("writing csv header: %w", err)
	}
	counter := 0
	for _, inst := range instances {
		for _, tract := range inst.Tracts {
			row := []string{strconv.Itoa(counter) + "_" + tract.Name, inst.ID, tract.Target}
			if err := cw.Write(row); err != nil {
				return fmt.Errorf("writing csv row: %w", err)
			}
			counter++
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("writing csv: %w", err)
	}
	return nil
}
