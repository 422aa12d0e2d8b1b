package topology

import (
	"errors"
	"fmt"

	"github.com/nvandessel/netgen/internal/constants"
	"github.com/nvandessel/netgen/internal/models"
)

// Severity grades a validation issue.
type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
)

// Issue describes one problem found in a model.
type Issue struct {
	Severity Severity `json:"severity"`
	Kind     string   `json:"kind"`
	Subject  string   `json:"subject"`
	Message  string   `json:"message"`

	kind error
}

// String returns a human-readable description of the issue.
func (i Issue) String() string {
	if i.Kind != "" {
		return fmt.Sprintf("%s: %s: %s: %s", i.Severity, i.Subject, i.Kind, i.Message)
	}
	return fmt.Sprintf("%s: %s: %s", i.Severity, i.Subject, i.Message)
}

// Is reports whether the issue is of the given sentinel kind.
func (i Issue) Is(kind error) bool {
	return i.kind != nil && errors.Is(i.kind, kind)
}

// Fatal reports whether the issue aborts generation. Errors always do;
// with strict set, unknown names and receptors do too.
func (i Issue) Fatal(strict bool) bool {
	if i.Severity == SeverityError {
		return true
	}
	return strict && (i.Is(ErrUnknownName) || i.Is(ErrUnknownReceptor))
}

func newIssue(sev Severity, kind error, subject, format string, args ...any) Issue {
	is := Issue{Severity: sev, Subject: subject, Message: fmt.Sprintf(format, args...), kind: kind}
	if kind != nil {
		is.Kind = kind.Error()
	}
	return is
}

func issueFromError(err error) Issue {
	is := Issue{Severity: SeverityError, Message: err.Error(), kind: err}
	var ce *ConfigError
	if errors.As(err, &ce) {
		is.Kind = ce.Kind.Error()
		is.Subject = ce.Subject
		is.Message = ce.Detail
	}
	return is
}

// Validate checks a model without generating it. It reports references to
// unknown populations, handles and receptors, syn/anti patterns across
// dimensions of different cardinality, malformed statements and invalid
// transforms.
func Validate(m *models.Model) []Issue {
	var issues []Issue
	if m == nil || m.Channel == nil {
		return []Issue{newIssue(SeverityError, ErrUnknownName, "model", "no channel tree")}
	}

	paths, err := BuildPaths(m.Channel)
	if err != nil {
		return []Issue{issueFromError(err)}
	}

	m.Channel.Walk(func(ch *models.Channel) {
		if ch.Dim == "" {
			return
		}
		if _, ok := m.Dimensions.Cardinality(ch.Dim); !ok {
			issues = append(issues, newIssue(SeverityError, ErrMissingDimension, "channel "+ch.Dim,
				"dimension has no declared cardinality"))
		}
	})

	templates := make(map[string]*models.Population)
	m.Channel.Walk(func(ch *models.Channel) {
		for _, p := range ch.Populations {
			templates[p.Name] = p
		}
	})

	for _, stmt := range m.Connections {
		tmpls, err := ExpandConnection(stmt)
		if err != nil {
			issues = append(issues, issueFromError(err))
			continue
		}
		subject := statementSubject(stmt)
		src, srcOK := paths[stmt.Source]
		dst, dstOK := paths[stmt.Target]
		if !srcOK {
			issues = append(issues, newIssue(SeverityWarning, ErrUnknownName, subject,
				"source population %q is not declared; no tracts will be generated", stmt.Source))
		}
		if !dstOK {
			issues = append(issues, newIssue(SeverityWarning, ErrUnknownName, subject,
				"target population %q is not declared; no tracts will be generated", stmt.Target))
		}
		for _, t := range tmpls {
			if err := checkPattern(t.Pattern, zeroSource{}); err != nil {
				issues = append(issues, issueFromError(fmt.Errorf("%s: %w", subject, err)))
			}
			if dstOK && templates[t.Target].Receptors.Get(t.Receptor) == nil {
				issues = append(issues, newIssue(SeverityWarning, ErrUnknownReceptor, templateSubject(t),
					"target population %s has no receptor %q", t.Target, t.Receptor))
			}
			if srcOK && dstOK {
				issues = append(issues, cardinalityIssues(m.Dimensions, t.Pattern, templateSubject(t), src, dst)...)
			}
		}
	}

	handles := make(map[string]models.Handle, len(m.Handles))
	for _, h := range m.Handles {
		subject := "handle " + h.Name
		if _, dup := handles[h.Name]; dup {
			issues = append(issues, newIssue(SeverityError, ErrDuplicateName, subject, "handle declared more than once"))
		}
		handles[h.Name] = h
		for _, dim := range h.Path {
			if _, ok := m.Dimensions.Cardinality(dim); !ok {
				issues = append(issues, newIssue(SeverityError, ErrMissingDimension, subject,
					"path dimension %q has no declared cardinality", dim))
			}
		}
		tmpl := h.Template()
		if err := checkPattern(tmpl.Pattern, zeroSource{}); err != nil {
			issues = append(issues, issueFromError(fmt.Errorf("%s: %w", subject, err)))
		}
		dst, ok := paths[h.Target]
		if !ok {
			issues = append(issues, newIssue(SeverityWarning, ErrUnknownName, subject,
				"target population %q is not declared; the handle drives nothing", h.Target))
			continue
		}
		if templates[h.Target].Receptors.Get(h.Receptor) == nil {
			issues = append(issues, newIssue(SeverityError, ErrUnknownReceptor, subject,
				"target population %s has no receptor %q", h.Target, h.Receptor))
		}
		issues = append(issues, cardinalityIssues(m.Dimensions, tmpl.Pattern, subject, h.Path, dst)...)
	}

	for _, he := range m.HandleEvents {
		subject := fmt.Sprintf("event %q at %g", he.Label, he.Time)
		h, ok := handles[he.Handle]
		if !ok {
			issues = append(issues, newIssue(SeverityWarning, ErrUnknownName, subject,
				"handle %q is not declared; the event resolves to nothing", he.Handle))
			continue
		}
		if len(he.Indices) > len(h.Path) {
			issues = append(issues, newIssue(SeverityWarning, nil, subject,
				"filter has %d indices but handle path has %d; extra indices are ignored", len(he.Indices), len(h.Path)))
		}
		if m.TimeLimit > 0 && he.Time > m.TimeLimit {
			issues = append(issues, newIssue(SeverityWarning, nil, subject,
				"event time is after the time limit %g", m.TimeLimit))
		}
	}

	if err := ApplyTransforms(nil, nil, m.Transforms); err != nil {
		issues = append(issues, issueFromError(err))
	}
	for _, op := range m.Transforms {
		if op.Op != constants.TransformEfficacy || op.Connection == "" {
			continue
		}
		if !hasConnectionName(m.Connections, op.Connection) {
			issues = append(issues, newIssue(SeverityWarning, ErrUnknownName, "transform "+op.Op,
				"no connection is named %q", op.Connection))
		}
	}

	return issues
}

// cardinalityIssues flags syn and anti patterns across innermost
// dimensions of different cardinality. Such matrices compare raw indices,
// so only the leading diagonal block is meaningful.
func cardinalityIssues(dims models.Dimensions, p models.Pattern, subject string, path1, path2 []string) []Issue {
	if p.Type != constants.PatternSyn && p.Type != constants.PatternAnti {
		return nil
	}
	rows, err1 := innerCardinality(dims, path1)
	cols, err2 := innerCardinality(dims, path2)
	if err1 != nil || err2 != nil || rows == cols {
		return nil
	}
	return []Issue{newIssue(SeverityWarning, ErrInvalidPattern, subject,
		"%s pattern over %d x %d indices compares raw indices", p.Type, rows, cols)}
}

func hasConnectionName(stmts []models.ConnectionStatement, name string) bool {
	for _, s := range stmts {
		if s.Name == name {
			return true
		}
	}
	return false
}

// zeroSource lets pattern checks run without a random stream.
type zeroSource struct{}

func (zeroSource) Float64() float64 { return 0 }
