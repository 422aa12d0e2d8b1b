package export

import (
	"fmt"
	"io"

	"github.com/nvandessel/netgen/internal/constants"
	"github.com/nvandessel/netgen/internal/models"
	"github.com/nvandessel/netgen/internal/sanitize"
)

// WritePro writes the event protocol. Label, Population and Receptor lines
// appear only when set; FreqExt only on ChangeExtFreq events. Labels are
// folded onto one line.
func WritePro(w io.Writer, events []models.Event) error {
	lw := newLineWriter(w)
	for _, ev := range events {
		lw.printf("\nEventTime %s\n\n", formatFloat(ev.Time))
		lw.printf("Type=%s\n", ev.Type)
		if label := sanitize.Label(ev.Label); label != "" {
			lw.printf("Label=%s\n", label)
		}
		if ev.Population != "" {
			lw.printf("Population: %s\n", ev.Population)
		}
		if ev.Receptor != "" {
			lw.printf("Receptor: %s\n", ev.Receptor)
		}
		if ev.Type == constants.EventChangeExtFreq {
			lw.param("FreqExt", ev.Freq)
		}
		lw.printf("\nEndEvent\n\n")
	}
	if err := lw.flush(); err != nil {
		return fmt.Errorf("writing pro: %w", err)
	}
	return nil
}
