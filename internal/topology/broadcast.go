package topology

import (
	"fmt"

	"github.com/nvandessel/netgen/internal/constants"
	"github.com/nvandessel/netgen/internal/models"
)

// Defaults of omitted connection statement fields.
var (
	defaultPattern      = models.Pattern{Type: constants.PatternAll}
	defaultConnectivity = 1.0
	defaultEfficacy     = 1.0
)

// ExpandConnection turns one statement into fully scalar templates. The
// expansion length is the longest list field; scalars and single-entry
// lists are repeated to that length. Any other list length, including an
// empty list, is a malformed broadcast.
func ExpandConnection(stmt models.ConnectionStatement) ([]models.ConnectionTemplate, error) {
	subject := statementSubject(stmt)

	if stmt.Source == "" || stmt.Target == "" {
		return nil, configErr(ErrUnknownName, subject, "src and targ are required")
	}
	if !stmt.Receptor.IsSet() {
		return nil, configErr(ErrUnknownReceptor, subject, "receptor is required")
	}
	modulation := stmt.Modulation.OrDefault()
	if !modulation.Valid() {
		return nil, configErr(ErrInvalidModulation, subject, "%q is not one of con, eff", stmt.Modulation)
	}

	lengths := map[string]int{}
	if stmt.Receptor.IsList() {
		lengths["receptor"] = stmt.Receptor.Len()
	}
	if stmt.Pattern.IsList() {
		lengths["pattern"] = stmt.Pattern.Len()
	}
	if stmt.Connectivity.IsList() {
		lengths["connectivity"] = stmt.Connectivity.Len()
	}
	if stmt.Efficacy.IsList() {
		lengths["efficacy"] = stmt.Efficacy.Len()
	}
	n, err := broadcastLength(lengths)
	if err != nil {
		return nil, &ConfigError{Kind: ErrMalformedBroadcast, Subject: subject, Detail: err.Error()}
	}

	out := make([]models.ConnectionTemplate, 0, n)
	for i := 0; i < n; i++ {
		tmpl := models.ConnectionTemplate{
			Source:       stmt.Source,
			Target:       stmt.Target,
			Receptor:     stmt.Receptor.At(i),
			Pattern:      defaultPattern,
			Connectivity: defaultConnectivity,
			Efficacy:     defaultEfficacy,
			STFT:         stmt.STFT,
			STFP:         stmt.STFP,
			Modulation:   modulation,
			Name:         stmt.Name,
		}
		if stmt.Pattern.IsSet() {
			tmpl.Pattern = stmt.Pattern.At(i)
		}
		if stmt.Connectivity.IsSet() {
			tmpl.Connectivity = stmt.Connectivity.At(i)
		}
		if stmt.Efficacy.IsSet() {
			tmpl.Efficacy = stmt.Efficacy.At(i)
		}
		out = append(out, tmpl)
	}
	return out, nil
}

// ExpandConnections expands every statement in order.
func ExpandConnections(stmts []models.ConnectionStatement) ([]models.ConnectionTemplate, error) {
	var out []models.ConnectionTemplate
	for _, stmt := range stmts {
		tmpls, err := ExpandConnection(stmt)
		if err != nil {
			return nil, err
		}
		out = append(out, tmpls...)
	}
	return out, nil
}

// broadcastLength returns the common length of the list fields, 1 when
// there are none.
func broadcastLength(lengths map[string]int) (int, error) {
	n := 1
	for _, l := range lengths {
		if l > n {
			n = l
		}
	}
	for _, field := range []string{"receptor", "pattern", "connectivity", "efficacy"} {
		l, ok := lengths[field]
		if !ok {
			continue
		}
		if l == 0 {
			return 0, fmt.Errorf("%s list is empty", field)
		}
		if l != 1 && l != n {
			return 0, fmt.Errorf("%s has %d entries, expected 1 or %d", field, l, n)
		}
	}
	return n, nil
}

func statementSubject(stmt models.ConnectionStatement) string {
	s := fmt.Sprintf("connection %s->%s", stmt.Source, stmt.Target)
	if stmt.Name != "" {
		s += " (" + stmt.Name + ")"
	}
	return s
}

func templateSubject(t models.ConnectionTemplate) string {
	s := fmt.Sprintf("connection %s->%s %s", t.Source, t.Target, t.Receptor)
	if t.Name != "" {
		s += " (" + t.Name + ")"
	}
	return s
}
