// Package models defines the data model of a structured network description:
// channels, population templates, receptors, connection statements, stimulus
// handles, and the instances and events generated from them.
package models

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/nvandessel/netgen/internal/constants"
	"gopkg.in/yaml.v3"
)

// Model is the complete input of one generation run.
type Model struct {
	Dimensions         Dimensions            `json:"dimensions" yaml:"dimensions"`
	Receptors          []ReceptorSpec        `json:"receptors,omitempty" yaml:"receptors,omitempty"`
	PopulationDefaults Params                `json:"population_defaults,omitempty" yaml:"population_defaults,omitempty"`
	Channel            *Channel              `json:"channel" yaml:"channel"`
	Connections        []ConnectionStatement `json:"connections,omitempty" yaml:"connections,omitempty"`
	Handles            []Handle              `json:"handles,omitempty" yaml:"handles,omitempty"`
	HandleEvents       []HandleEvent         `json:"handle_events,omitempty" yaml:"handle_events,omitempty"`
	TimeLimit          float64               `json:"time_limit" yaml:"time_limit"`
	Transforms         []Transform           `json:"transforms,omitempty" yaml:"transforms,omitempty"`

	// DefaultsOrder is the declaration order of PopulationDefaults.
	DefaultsOrder []string `json:"-" yaml:"-"`
}

// LoadModel reads, decodes and resolves a YAML model file.
func LoadModel(path string) (*Model, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading model file: %w", err)
	}
	m, err := DecodeModel(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return m, nil
}

// DecodeModel decodes a YAML model and resolves receptor references.
// Unknown keys are rejected. The declaration order of every params mapping
// is recorded so parameters serialize in the order they were written.
func DecodeModel(r io.Reader) (*Model, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("reading model: %w", err)
	}

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	var m Model
	if err := dec.Decode(&m); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("parsing model: empty document")
		}
		return nil, fmt.Errorf("parsing model: %w", err)
	}
	if m.Channel == nil {
		return nil, fmt.Errorf("parsing model: channel is required")
	}

	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parsing model: %w", err)
	}
	recordKeyOrder(&m, &doc)

	if err := m.Resolve(); err != nil {
		return nil, err
	}
	return &m, nil
}

// Resolve fills Data and Receptors of every population from the population
// defaults, its own params and the receptor library. Populations that
// already carry resolved data and no declarative fields are left untouched.
func (m *Model) Resolve() error {
	library := make(map[string]ReceptorSpec, len(m.Receptors))
	for _, spec := range m.Receptors {
		if _, dup := library[spec.Name]; dup {
			return fmt.Errorf("receptor %q declared twice", spec.Name)
		}
		library[spec.Name] = spec
	}

	var resolveErr error
	m.Channel.Walk(func(ch *Channel) {
		for _, pop := range ch.Populations {
			if resolveErr != nil {
				return
			}
			if pop.Data != nil && pop.Params == nil && pop.ReceptorRefs == nil {
				continue
			}
			data := m.PopulationDefaults.Clone()
			data.Overlay(pop.Params)
			pop.Data = data
			pop.DataOrder = appendNew(appendNew(nil, m.DefaultsOrder), pop.ParamOrder)

			receptors := make(Receptors, 0, len(pop.ReceptorRefs))
			for _, ref := range pop.ReceptorRefs {
				spec, ok := library[ref.Name]
				if !ok {
					resolveErr = fmt.Errorf("population %s: unknown receptor %q", pop.Name, ref.Name)
					return
				}
				receptors = append(receptors, ref.apply(spec))
			}
			pop.Receptors = receptors
		}
	})
	return resolveErr
}

// NewReceptor returns a receptor carrying every standard key, zero by
// default, overlaid with params.
func NewReceptor(name string, params Params) Receptor {
	p := make(Params, len(constants.ReceptorKeys)+len(params))
	for _, k := range constants.ReceptorKeys {
		p[k] = 0
	}
	p.Overlay(params)
	return Receptor{Name: name, Params: p, Order: append([]string(nil), constants.ReceptorKeys...)}
}

func (ref ReceptorRef) apply(spec ReceptorSpec) Receptor {
	r := NewReceptor(spec.Name, spec.Params)
	r.Order = appendNew(r.Order, spec.ParamOrder)
	if ref.ExtCon != nil {
		r.Params[constants.ReceptorMeanExtCon] = *ref.ExtCon
	}
	if ref.ExtEff != nil {
		r.Params[constants.ReceptorMeanExtEff] = *ref.ExtEff
	}
	if ref.ExtFreq != nil {
		r.Params[constants.ReceptorFreqExt] = *ref.ExtFreq
	}
	return r
}

// recordKeyOrder copies the key order of the params mappings in doc onto
// the decoded model. Populations and receptors are matched by name.
func recordKeyOrder(m *Model, doc *yaml.Node) {
	root := doc
	if root.Kind == yaml.DocumentNode && len(root.Content) > 0 {
		root = root.Content[0]
	}

	m.DefaultsOrder = mappingKeys(mappingValue(root, "population_defaults"))

	specs := make(map[string]*ReceptorSpec, len(m.Receptors))
	for i := range m.Receptors {
		specs[m.Receptors[i].Name] = &m.Receptors[i]
	}
	if seq := mappingValue(root, "receptors"); seq != nil {
		for _, item := range seq.Content {
			if spec, ok := specs[scalarValue(item, "name")]; ok {
				spec.ParamOrder = mappingKeys(mappingValue(item, "params"))
			}
		}
	}

	var walk func(node *yaml.Node, ch *Channel)
	walk = func(node *yaml.Node, ch *Channel) {
		if node == nil || ch == nil {
			return
		}
		if seq := mappingValue(node, "populations"); seq != nil {
			for _, item := range seq.Content {
				if pop := ch.ownPopulation(scalarValue(item, "name")); pop != nil {
					pop.ParamOrder = mappingKeys(mappingValue(item, "params"))
				}
			}
		}
		if seq := mappingValue(node, "channels"); seq != nil {
			for i, item := range seq.Content {
				if i < len(ch.Channels) {
					walk(item, ch.Channels[i])
				}
			}
		}
	}
	walk(mappingValue(root, "channel"), m.Channel)
}

// mappingValue returns the value node of key in a mapping node, or nil.
func mappingValue(node *yaml.Node, key string) *yaml.Node {
	if node == nil || node.Kind != yaml.MappingNode {
		return nil
	}
	for i := 0; i+1 < len(node.Content); i += 2 {
		if node.Content[i].Value == key {
			return node.Content[i+1]
		}
	}
	return nil
}

func scalarValue(node *yaml.Node, key string) string {
	if v := mappingValue(node, key); v != nil && v.Kind == yaml.ScalarNode {
		return v.Value
	}
	return ""
}

// mappingKeys returns the keys of a mapping node in document order.
func mappingKeys(node *yaml.Node) []string {
	if node == nil || node.Kind != yaml.MappingNode {
		return nil
	}
	keys := make([]string, 0, len(node.Content)/2)
	for i := 0; i+1 < len(node.Content); i += 2 {
		keys = append(keys, node.Content[i].Value)
	}
	return keys
}
