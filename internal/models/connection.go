package models

import (
	"github.com/nvandessel/netgen/internal/constants"
)

// ConnectionStatement is the declarative form of a connection. Receptor,
// Pattern, Connectivity and Efficacy may each be a scalar or a parallel list.
type ConnectionStatement struct {
	Source       string               `json:"src" yaml:"src"`
	Target       string               `json:"targ" yaml:"targ"`
	Receptor     Field[string]        `json:"-" yaml:"receptor"`
	Pattern      Field[Pattern]       `json:"-" yaml:"pattern"`
	Connectivity Field[float64]       `json:"-" yaml:"connectivity"`
	Efficacy     Field[float64]       `json:"-" yaml:"efficacy"`
	STFT         float64              `json:"stft,omitempty" yaml:"stft,omitempty"`
	STFP         float64              `json:"stfp,omitempty" yaml:"stfp,omitempty"`
	Name         string               `json:"name,omitempty" yaml:"name,omitempty"`
	Modulation   constants.Modulation `json:"modulation,omitempty" yaml:"modulation,omitempty"`
}

// Matrix is a connectivity matrix indexed by the innermost index of the
// source (row) and target (column).
type Matrix [][]float64

// Rows returns the number of rows.
func (m Matrix) Rows() int { return len(m) }

// Cols returns the number of columns (0 for an empty matrix).
func (m Matrix) Cols() int {
	if len(m) == 0 {
		return 0
	}
	return len(m[0])
}

// At returns entry (i, j), or 0 when the cell lies outside the matrix.
func (m Matrix) At(i, j int) float64 {
	if i < 0 || i >= len(m) || j < 0 || j >= len(m[i]) {
		return 0
	}
	return m[i][j]
}

// ConnectionTemplate is one fully scalar connection.
type ConnectionTemplate struct {
	Source       string               `json:"src"`
	Target       string               `json:"targ"`
	Receptor     string               `json:"receptor"`
	Pattern      Pattern              `json:"pattern"`
	Connectivity float64              `json:"connectivity"`
	Efficacy     float64              `json:"efficacy"`
	STFT         float64              `json:"stft,omitempty"`
	STFP         float64              `json:"stfp,omitempty"`
	Modulation   constants.Modulation `json:"modulation"`
	Name         string               `json:"name,omitempty"`

	// Matrix is attached by the synthesizer before tract resolution.
	Matrix Matrix `json:"matrix,omitempty"`
}

// Handle is a stimulus source template. It has its own synthetic path and
// connects into real population instances.
type Handle struct {
	Name         string   `json:"name" yaml:"name"`
	Target       string   `json:"targ" yaml:"targ"`
	Path         []string `json:"path" yaml:"path"`
	Receptor     string   `json:"receptor" yaml:"receptor"`
	Connectivity float64  `json:"connectivity" yaml:"connectivity"`
	Efficacy     float64  `json:"efficacy" yaml:"efficacy"`
	Pattern      Pattern  `json:"pattern" yaml:"pattern"`

	Matrix Matrix `json:"matrix,omitempty" yaml:"-"`
}

// Template returns the connection template a handle resolves through. The
// handle's own name doubles as the tract display name.
func (h *Handle) Template() ConnectionTemplate {
	pattern := h.Pattern
	if pattern.Type == "" {
		pattern = Pattern{Type: constants.PatternSyn}
	}
	return ConnectionTemplate{
		Source:       h.Name,
		Target:       h.Target,
		Receptor:     h.Receptor,
		Pattern:      pattern,
		Connectivity: h.Connectivity,
		Efficacy:     h.Efficacy,
		Modulation:   constants.ModulationCon,
		Name:         h.Name,
		Matrix:       h.Matrix,
	}
}

// HandleEvent schedules a frequency change on every handle instance matching
// Indices. An index of -1 matches any value at that position.
type HandleEvent struct {
	Label   string  `json:"label" yaml:"label"`
	Time    float64 `json:"time" yaml:"time"`
	Handle  string  `json:"handle" yaml:"handle"`
	Indices []int   `json:"indices,omitempty" yaml:"indices,omitempty"`
	Freq    float64 `json:"freq" yaml:"freq"`
}

// Transform is one network transform operation.
type Transform struct {
	Op         string  `json:"op" yaml:"op"`
	Connection string  `json:"connection,omitempty" yaml:"connection,omitempty"`
	Factor     float64 `json:"factor" yaml:"factor"`
}
