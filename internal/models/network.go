package models

import (
	"sort"
)

// Params holds named scalar parameters of a population or receptor
// (size, membrane constants, external drive, ...).
type Params map[string]float64

// Clone returns an independent copy of p. A nil Params clones to an empty map.
func (p Params) Clone() Params {
	out := make(Params, len(p))
	for k, v := range p {
		out[k] = v
	}
	return out
}

// Overlay copies every entry of other into p, replacing existing keys.
func (p Params) Overlay(other Params) {
	for k, v := range other {
		p[k] = v
	}
}

// Keys returns the parameter names in lexical order.
func (p Params) Keys() []string {
	keys := make([]string, 0, len(p))
	for k := range p {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// OrderedKeys returns the names of order present in p, in that order,
// followed by the remaining names in lexical order.
func (p Params) OrderedKeys(order []string) []string {
	keys := make([]string, 0, len(p))
	seen := make(map[string]bool, len(p))
	for _, k := range order {
		if _, ok := p[k]; ok && !seen[k] {
			keys = append(keys, k)
			seen[k] = true
		}
	}
	for _, k := range p.Keys() {
		if !seen[k] {
			keys = append(keys, k)
		}
	}
	return keys
}

// appendNew appends the names of keys missing from order.
func appendNew(order, keys []string) []string {
	have := make(map[string]bool, len(order))
	for _, k := range order {
		have[k] = true
	}
	for _, k := range keys {
		if !have[k] {
			order = append(order, k)
			have[k] = true
		}
	}
	return order
}

// Dimensions maps a dimension name to its cardinality, the number of
// replicate indices along that axis.
type Dimensions map[string]int

// Cardinality returns the cardinality of dim and whether it is declared.
func (d Dimensions) Cardinality(dim string) (int, bool) {
	n, ok := d[dim]
	return n, ok
}

// ReceptorSpec is a library receptor declared once in a model file.
type ReceptorSpec struct {
	Name   string `json:"name" yaml:"name"`
	Params Params `json:"params,omitempty" yaml:"params,omitempty"`

	// ParamOrder is the declaration order of Params in the model file.
	ParamOrder []string `json:"-" yaml:"-"`
}

// Receptor is a receptor parameter set attached to a population.
type Receptor struct {
	Name   string `json:"name" yaml:"name"`
	Params Params `json:"params" yaml:"params"`

	// Order is the serialization order of Params; names missing from it
	// follow in lexical order.
	Order []string `json:"order,omitempty" yaml:"-"`
}

// Receptors is an ordered receptor set. Order is declaration order and is
// preserved through expansion so serialized output is stable.
type Receptors []Receptor

// Get returns the receptor called name, or nil.
func (rs Receptors) Get(name string) *Receptor {
	for i := range rs {
		if rs[i].Name == name {
			return &rs[i]
		}
	}
	return nil
}

// Clone deep-copies the receptor set.
func (rs Receptors) Clone() Receptors {
	out := make(Receptors, len(rs))
	for i, r := range rs {
		out[i] = Receptor{Name: r.Name, Params: r.Params.Clone(), Order: append([]string(nil), r.Order...)}
	}
	return out
}

// ReceptorRef attaches a library receptor to a population, optionally
// overriding its external-drive fields for that population only.
type ReceptorRef struct {
	Name    string   `json:"name" yaml:"name"`
	ExtCon  *float64 `json:"ext_con,omitempty" yaml:"ext_con,omitempty"`
	ExtEff  *float64 `json:"ext_eff,omitempty" yaml:"ext_eff,omitempty"`
	ExtFreq *float64 `json:"ext_freq,omitempty" yaml:"ext_freq,omitempty"`
}

// Population is a population template. Its owning channel determines its
// ancestry path.
type Population struct {
	Name string `json:"name" yaml:"name"`

	// Params and ReceptorRefs are the declarative form read from a model file.
	Params       Params        `json:"params,omitempty" yaml:"params,omitempty"`
	ReceptorRefs []ReceptorRef `json:"receptors,omitempty" yaml:"receptors,omitempty"`

	// ParamOrder is the declaration order of Params in the model file.
	ParamOrder []string `json:"-" yaml:"-"`

	// Data and Receptors are the resolved parameter sets copied into each
	// instance. Model.Resolve fills them; NewPopulation sets them directly.
	// DataOrder lists Data names defaults first, as an update appends them.
	Data      Params    `json:"-" yaml:"-"`
	DataOrder []string  `json:"-" yaml:"-"`
	Receptors Receptors `json:"-" yaml:"-"`
}

// NewPopulation builds an already-resolved population template.
func NewPopulation(name string, data Params, receptors ...Receptor) *Population {
	if data == nil {
		data = Params{}
	}
	return &Population{Name: name, Data: data, Receptors: receptors}
}

// Channel is a node of the model tree. It owns one replication dimension,
// a list of population templates and a list of child channels.
type Channel struct {
	Dim         string        `json:"dim" yaml:"dim"`
	Populations []*Population `json:"populations,omitempty" yaml:"populations,omitempty"`
	Channels    []*Channel    `json:"channels,omitempty" yaml:"channels,omitempty"`
}

// NewChannel builds a channel node.
func NewChannel(dim string, pops []*Population, children ...*Channel) *Channel {
	return &Channel{Dim: dim, Populations: pops, Channels: children}
}

// Walk visits c and every descendant depth first, parents before children.
func (c *Channel) Walk(fn func(*Channel)) {
	if c == nil {
		return
	}
	fn(c)
	for _, child := range c.Channels {
		child.Walk(fn)
	}
}

// Population finds a population template anywhere under c.
func (c *Channel) Population(name string) *Population {
	var found *Population
	c.Walk(func(ch *Channel) {
		for _, p := range ch.Populations {
			if found == nil && p.Name == name {
				found = p
			}
		}
	})
	return found
}

// ownPopulation finds a population template owned directly by c.
func (c *Channel) ownPopulation(name string) *Population {
	for _, p := range c.Populations {
		if p.Name == name {
			return p
		}
	}
	return nil
}
