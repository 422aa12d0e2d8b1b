package models

import (
	"strconv"
	"strings"
)

// TractPayload carries the resolved synaptic parameters of a tract.
type TractPayload struct {
	Receptor     string  `json:"receptor"`
	Connectivity float64 `json:"connectivity"`
	Efficacy     float64 `json:"efficacy"`
	STFT         float64 `json:"stft,omitempty"`
	STFP         float64 `json:"stfp,omitempty"`
}

// Tract is a directed edge owned by its source instance.
type Tract struct {
	Target  string       `json:"target"`
	Name    string       `json:"name,omitempty"`
	Payload TractPayload `json:"payload"`
}

// Instance is one concrete copy of a population template.
type Instance struct {
	ID        string    `json:"id"`
	Template  string    `json:"template"`
	Path      []string  `json:"path"`
	Indices   []int     `json:"indices"`
	Data      Params    `json:"data"`
	DataOrder []string  `json:"data_order,omitempty"`
	Receptors Receptors `json:"receptors"`
	Tracts    []Tract   `json:"tracts,omitempty"`
}

// HandleInstance is one concrete copy of a handle template.
type HandleInstance struct {
	ID      string   `json:"id"`
	Handle  string   `json:"handle"`
	Path    []string `json:"path"`
	Indices []int    `json:"indices"`
	Tracts  []Tract  `json:"tracts,omitempty"`
}

// Event is a timestamped simulator instruction.
type Event struct {
	Time       float64 `json:"time"`
	Type       string  `json:"type"`
	Label      string  `json:"label,omitempty"`
	Population string  `json:"population,omitempty"`
	Receptor   string  `json:"receptor,omitempty"`
	Freq       float64 `json:"freq,omitempty"`
}

// InstanceID derives the unique identifier of an instance: the template
// name followed by "_<index>" for each path position.
func InstanceID(name string, indices []int) string {
	var b strings.Builder
	b.WriteString(name)
	for _, idx := range indices {
		b.WriteByte('_')
		b.WriteString(strconv.Itoa(idx))
	}
	return b.String()
}

// Location returns the ancestry path and index tuple of the instance.
func (i *Instance) Location() ([]string, []int) {
	return i.Path, i.Indices
}

// Location returns the synthetic path and index tuple of the handle instance.
func (h *HandleInstance) Location() ([]string, []int) {
	return h.Path, h.Indices
}
