// Package export writes a generated topology in the formats consumed by the
// downstream simulator and analysis tools.
package export

import (
	"bufio"
	"fmt"
	"io"
	"strconv"

	"github.com/nvandessel/netgen/internal/constants"
	"github.com/nvandessel/netgen/internal/models"
)

// lineWriter accumulates the first write error so the format writers can
// be written as straight-line code.
type lineWriter struct {
	w   *bufio.Writer
	err error
}

func newLineWriter(w io.Writer) *lineWriter {
	return &lineWriter{w: bufio.NewWriter(w)}
}

func (lw *lineWriter) printf(format string, args ...any) {
	if lw.err != nil {
		return
	}
	_, lw.err = fmt.Fprintf(lw.w, format, args...)
}

func (lw *lineWriter) param(key string, v float64) {
	lw.printf("%s=%s\n", key, formatFloat(v))
}

func (lw *lineWriter) flush() error {
	if lw.err != nil {
		return lw.err
	}
	return lw.w.Flush()
}

// formatFloat prints v without exponent and without trailing zeros.
func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// WriteConf writes the network configuration: an index of instance ids,
// then one NeuralPopulation block per instance with its parameters,
// receptors and target tracts. Parameters follow declaration order when it
// is known and lexical order otherwise. Zero tract payload fields are
// omitted.
func WriteConf(w io.Writer, instances []*models.Instance) error {
	lw := newLineWriter(w)

	for _, inst := range instances {
		lw.printf("%% %s\n", inst.ID)
	}

	for _, inst := range instances {
		lw.printf("\n\nNeuralPopulation: %s\n", inst.ID)
		lw.printf("%%-------------------------------------------------------\n\n")
		for _, k := range inst.Data.OrderedKeys(inst.DataOrder) {
			lw.param(k, inst.Data[k])
		}
		for _, r := range inst.Receptors {
			lw.printf("\nReceptor: %s\n", r.Name)
			for _, k := range receptorKeys(r) {
				lw.param(k, r.Params[k])
			}
			lw.printf("EndReceptor\n")
		}
		for _, tract := range inst.Tracts {
			lw.printf("\nTargetPopulation: %s\n", tract.Target)
			writeTractPayload(lw, tract.Payload)
			lw.printf("EndTargetPopulation\n")
		}
		lw.printf("\nEndNeuralPopulation\n")
	}

	if err := lw.flush(); err != nil {
		return fmt.Errorf("writing conf: %w", err)
	}
	return nil
}

func writeTractPayload(lw *lineWriter, p models.TractPayload) {
	if p.Receptor != "" {
		lw.printf("%s=%s\n", constants.TractTargetReceptor, p.Receptor)
	}
	for _, kv := range []struct {
		key string
		v   float64
	}{
		{constants.TractSTFTau, p.STFT},
		{constants.TractSTFP, p.STFP},
		{constants.TractConnectivity, p.Connectivity},
		{constants.TractMeanEff, p.Efficacy},
	} {
		if kv.v != 0 {
			lw.param(kv.key, kv.v)
		}
	}
}

// receptorKeys lists the standard receptor keys first, then any extra keys
// in the receptor's declared order, then the rest lexically.
func receptorKeys(r models.Receptor) []string {
	return r.Params.OrderedKeys(append(append([]string(nil), constants.ReceptorKeys...), r.Order...))
}
